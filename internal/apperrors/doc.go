// Package apperrors defines the closed set of failure kinds produced while
// answering a GA4 tool call.
//
// Components return *Error values carrying structured context (upstream HTTP
// status, provider error code, offending field). The human readable message is
// rendered once, at the tool boundary, by the service package.
//
// Refresh tokens and the OAuth client secret must never be placed in an Error.
package apperrors

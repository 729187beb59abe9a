// Package service runs GA4 queries on behalf of end users.
//
// A query resolves the user's stored credentials, exchanges the refresh
// token for an access token, builds the report request, runs it against the
// Data API and normalizes the response. Every outcome, including failures,
// is returned as a JSON-ready envelope; errors are rendered into the
// envelope message here and nowhere else.
//
// The service holds no per-call state. Nothing is cached between calls.
package service

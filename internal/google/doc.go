// Package google exchanges stored Google OAuth refresh tokens for access tokens.
//
// Every call to Refresher.Refresh performs a live exchange against the token
// endpoint; no access token is cached between calls. Failures are classified
// as provider rejections, missing access tokens or transport errors so callers
// can report them distinctly.
package google

package google

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// TokenRefresher is implemented by Refresher. Callers depend on it so the
// exchange can be replaced in tests.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// HTTPClient returns a client that authenticates requests with tok. The
// token is used as is; it is never refreshed by the client.
func HTTPClient(ctx context.Context, tok *oauth2.Token, base *http.Client) *http.Client {
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok))
}

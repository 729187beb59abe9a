package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/teemow/ga4mcp/internal/apperrors"
)

// DefaultTokenURL is Google's OAuth 2.0 token endpoint.
var DefaultTokenURL = google.Endpoint.TokenURL

// Config configures a Refresher.
type Config struct {
	ClientID     string
	ClientSecret string

	// TokenURL overrides the token endpoint. Empty selects DefaultTokenURL.
	TokenURL string

	// Scopes defaults to DefaultOAuthScopes.
	Scopes []string

	// HTTPClient is used for the exchange. Nil uses a client with a 30s timeout.
	HTTPClient *http.Client
}

// Refresher exchanges refresh tokens for access tokens.
type Refresher struct {
	conf       *oauth2.Config
	httpClient *http.Client
}

// NewRefresher creates a Refresher from cfg.
func NewRefresher(cfg Config) (*Refresher, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("google client id is required")
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("google client secret is required")
	}

	endpoint := google.Endpoint
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	// Credentials go in the form body, the way Google documents refresh requests.
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultOAuthScopes
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Refresher{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			Scopes:       scopes,
		},
		httpClient: httpClient,
	}, nil
}

// Refresh exchanges refreshToken for a fresh access token. When the provider
// does not rotate the refresh token, the returned token carries the one that
// was passed in.
func (r *Refresher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, apperrors.New(apperrors.KindTokenExchangeFailed, "google.Refresh", "no refresh token available")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)

	// An already expired token forces the source to hit the endpoint.
	ts := r.conf.TokenSource(ctx, &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Unix(1, 0),
	})
	tok, err := ts.Token()
	if err != nil {
		return nil, classifyRefreshError(err)
	}
	if tok.AccessToken == "" {
		return nil, apperrors.New(apperrors.KindNoAccessToken, "google.Refresh", "No access token received from Google")
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = refreshToken
	}
	return tok, nil
}

// missingAccessToken is the message x/oauth2 uses when a successful token
// response carries no access_token.
const missingAccessToken = "missing access_token"

func classifyRefreshError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return tokenExchangeError(retrieveErr)
	}

	if isNetworkError(err) {
		return &apperrors.Error{
			Kind:    apperrors.KindNetworkError,
			Op:      "google.Refresh",
			Message: "Network error while refreshing token",
			Err:     err,
		}
	}

	if strings.Contains(err.Error(), missingAccessToken) {
		return apperrors.New(apperrors.KindNoAccessToken, "google.Refresh", "No access token received from Google")
	}

	return &apperrors.Error{
		Kind:    apperrors.KindTokenExchangeFailed,
		Op:      "google.Refresh",
		Message: "Failed to refresh token",
		Err:     err,
	}
}

func tokenExchangeError(e *oauth2.RetrieveError) error {
	status := 0
	if e.Response != nil {
		status = e.Response.StatusCode
	}

	code := e.ErrorCode
	if code == "" {
		code = http.StatusText(status)
	}
	if code == "" {
		code = "unknown_error"
	}

	msg := fmt.Sprintf("Failed to refresh token: HTTP %d: %s", status, code)
	if e.ErrorDescription != "" {
		msg += " - " + e.ErrorDescription
	}

	// The raw body is not attached; providers may echo request parameters.
	return &apperrors.Error{
		Kind:    apperrors.KindTokenExchangeFailed,
		Op:      "google.Refresh",
		Message: msg,
		Status:  status,
		Code:    e.ErrorCode,
	}
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

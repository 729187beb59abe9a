package analytics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/teemow/ga4mcp/internal/apperrors"
	"github.com/teemow/ga4mcp/internal/google"
)

// Backend runs reports and reads property metadata.
type Backend interface {
	RunReport(ctx context.Context, property string, req *analyticsdata.RunReportRequest) (*analyticsdata.RunReportResponse, error)
	GetMetadata(ctx context.Context, property string) (*Metadata, error)
}

// BackendFactory creates a Backend authenticated with tok.
type BackendFactory interface {
	NewBackend(ctx context.Context, tok *oauth2.Token) (Backend, error)
}

// Client wraps the Analytics Data service
type Client struct {
	svc *analyticsdata.Service
}

// NewClient creates a client that authenticates with httpClient.
func NewClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := analyticsdata.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Analytics Data service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// RunReport runs req against property ("properties/<id>").
func (c *Client) RunReport(ctx context.Context, property string, req *analyticsdata.RunReportRequest) (*analyticsdata.RunReportResponse, error) {
	resp, err := c.svc.Properties.RunReport(property, req).Context(ctx).Do()
	if err != nil {
		return nil, backendError("analytics.RunReport", err)
	}
	return resp, nil
}

// GetMetadata lists the dimensions and metrics of property, including custom
// definitions.
func (c *Client) GetMetadata(ctx context.Context, property string) (*Metadata, error) {
	md, err := c.svc.Properties.GetMetadata(metadataName(property)).Context(ctx).Do()
	if err != nil {
		return nil, backendError("analytics.GetMetadata", err)
	}
	return toMetadata(md), nil
}

func metadataName(property string) string {
	return strings.TrimSuffix(property, "/") + "/metadata"
}

func backendError(op string, err error) *apperrors.Error {
	e := &apperrors.Error{Kind: apperrors.KindBackendRequestFailed, Op: op, Err: err}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		e.Status = gerr.Code
		if len(gerr.Errors) > 0 {
			e.Code = gerr.Errors[0].Reason
		}
	}
	return e
}

// FactoryConfig configures a Factory.
type FactoryConfig struct {
	// Endpoint overrides the API base URL, e.g. for tests.
	Endpoint string

	// HTTPClient is the base client underneath the OAuth transport.
	HTTPClient *http.Client
}

// Factory creates Clients from access tokens.
type Factory struct {
	cfg FactoryConfig
}

// NewFactory creates a Factory.
func NewFactory(cfg FactoryConfig) *Factory {
	return &Factory{cfg: cfg}
}

// NewBackend implements BackendFactory.
func (f *Factory) NewBackend(ctx context.Context, tok *oauth2.Token) (Backend, error) {
	if tok == nil || tok.AccessToken == "" {
		return nil, apperrors.New(apperrors.KindClientConstructionFailed, "analytics.NewBackend", "access token is empty")
	}

	var opts []option.ClientOption
	if f.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimSuffix(f.cfg.Endpoint, "/")+"/"))
	}

	client, err := NewClient(ctx, google.HTTPClient(ctx, tok, f.cfg.HTTPClient), opts...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindClientConstructionFailed, "analytics.NewBackend", err)
	}
	return client, nil
}

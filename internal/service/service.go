package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"

	"github.com/teemow/ga4mcp/internal/analytics"
	"github.com/teemow/ga4mcp/internal/apperrors"
	"github.com/teemow/ga4mcp/internal/credentials"
	"github.com/teemow/ga4mcp/internal/google"
	"github.com/teemow/ga4mcp/internal/instrumentation"
	"github.com/teemow/ga4mcp/internal/logging"
	"github.com/teemow/ga4mcp/internal/report"
)

// Stage prefixes of failed query messages.
const (
	prefixCredentials = "Failed to retrieve user credentials"
	prefixRefresh     = "Failed to refresh authentication tokens"
	prefixClient      = "Failed to create GA4 client"
	prefixFilters     = "Invalid filters format"
	prefixBuild       = "Failed to build GA4 request"
	prefixAPI         = "GA4 API request failed"
	prefixProcess     = "Failed to process GA4 response"
	prefixUnexpected  = "Unexpected error"
)

// CredentialResolver resolves the stored credentials of a user.
type CredentialResolver interface {
	Resolve(ctx context.Context, userID string) (credentials.Credentials, error)
}

// Options configures a Service.
type Options struct {
	Resolver  CredentialResolver
	Refresher google.TokenRefresher
	Backends  analytics.BackendFactory

	// Builder defaults to report.NewBuilder().
	Builder *report.Builder
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Metrics may be nil.
	Metrics *instrumentation.Metrics
	// Now defaults to time.Now.
	Now func() time.Time
}

// Service answers report, metadata and date range requests.
type Service struct {
	resolver  CredentialResolver
	refresher google.TokenRefresher
	backends  analytics.BackendFactory
	builder   *report.Builder
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
	now       func() time.Time
}

// New creates a Service.
func New(opts Options) (*Service, error) {
	if opts.Resolver == nil {
		return nil, errors.New("credential resolver is required")
	}
	if opts.Refresher == nil {
		return nil, errors.New("token refresher is required")
	}
	if opts.Backends == nil {
		return nil, errors.New("backend factory is required")
	}

	s := &Service{
		resolver:  opts.Resolver,
		refresher: opts.Refresher,
		backends:  opts.Backends,
		builder:   opts.Builder,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		now:       opts.Now,
	}
	if s.builder == nil {
		s.builder = report.NewBuilder()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// stageError prefixes err with the stage it failed in, keeping its kind.
func stageError(prefix string, err error) error {
	return &apperrors.Error{
		Kind:    apperrors.KindOf(err),
		Message: prefix,
		Err:     err,
	}
}

// recovered turns a panic value into an Internal error.
func recovered(v any) error {
	return apperrors.New(apperrors.KindInternal, "service", "%s: %v", prefixUnexpected, v)
}

// Query runs one report for q.UserID.
func (s *Service) Query(ctx context.Context, q report.QueryDescription) (env QueryEnvelope) {
	logger := logging.WithUser(logging.WithOperation(s.logger, "query"), q.UserID)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Unexpected error in query", slog.Any("panic", r))
			env = QueryFailure(recovered(r))
		}
	}()

	logger.Info("Starting GA4 data query")

	if err := s.builder.Validate(q); err != nil {
		return s.queryFailed(logger, err)
	}

	creds, err := s.resolve(ctx, q.UserID)
	if err != nil {
		return s.queryFailed(logger, stageError(prefixCredentials, err))
	}
	logger.Info("Retrieved credentials", logging.Property(creds.PropertyID))
	logger.Debug("Using stored refresh token", slog.String("refresh_token", logging.SanitizeToken(creds.RefreshToken)))

	property := creds.PropertyID
	if q.PropertyID != "" {
		property = q.PropertyID
		logger.Info("Using override property ID", logging.Property(property))
	}

	tok, err := s.refresh(ctx, creds.RefreshToken)
	if err != nil {
		return s.queryFailed(logger, stageError(prefixRefresh, err))
	}

	backend, err := s.backends.NewBackend(ctx, tok)
	if err != nil {
		return s.queryFailed(logger, stageError(prefixClient, err))
	}

	req, err := s.builder.Build(q, property)
	if err != nil {
		prefix := prefixBuild
		if apperrors.IsKind(err, apperrors.KindInvalidFilter) {
			prefix = prefixFilters
		}
		return s.queryFailed(logger, stageError(prefix, err))
	}
	logger.Info("Built request",
		logging.Property(property),
		slog.Any("dimensions", req.DimensionNames()),
		slog.Any("metrics", q.Metrics),
	)

	started := time.Now()
	resp, err := s.runReport(ctx, backend, req, q)
	if err != nil {
		return s.queryFailed(logger, stageError(prefixAPI, err))
	}
	logger.Info("GA4 request completed",
		logging.Service(instrumentation.ServiceAnalyticsData),
		logging.Duration(time.Since(started)),
	)

	rep, err := report.Normalize(resp)
	if err != nil {
		return s.queryFailed(logger, stageError(prefixProcess, err))
	}
	logger.Info("Processed rows",
		logging.RowCount(rep.RowCount()),
		slog.Int64("total_sessions", rep.TotalSessions),
	)
	s.metrics.RecordReportRows(ctx, q.Granularity, property, rep.RowCount())

	return QueryEnvelope{
		Success:  true,
		Data:     rep.Rows,
		RowCount: rep.RowCount(),
		QuerySummary: &QuerySummary{
			TotalSessions: rep.TotalSessions,
			Dimensions:    nonNil(q.Dimensions),
			Metrics:       nonNil(q.Metrics),
			DateRange:     q.DateRangeLabel(),
			PropertyID:    property,
		},
	}
}

func (s *Service) queryFailed(logger *slog.Logger, err error) QueryEnvelope {
	logger.Error("GA4 data query failed", logging.ErrorKind(string(apperrors.KindOf(err))), logging.Err(err))
	return QueryFailure(err)
}

// Dimensions lists the dimensions available on the user's property.
func (s *Service) Dimensions(ctx context.Context, userID string) (env DimensionsEnvelope) {
	logger := logging.WithUser(logging.WithOperation(s.logger, "dimensions"), userID)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Unexpected error listing dimensions", slog.Any("panic", r))
			env = DimensionsFailure(recovered(r))
		}
	}()

	logger.Info("Getting dimensions")
	md, property, err := s.metadata(ctx, userID)
	if err != nil {
		logger.Error("Listing dimensions failed", logging.ErrorKind(string(apperrors.KindOf(err))), logging.Err(err))
		return DimensionsFailure(err)
	}
	logger.Info("Retrieved dimensions", slog.Int("count", len(md.Dimensions)))

	return DimensionsEnvelope{
		Success:    true,
		Dimensions: md.Dimensions,
		Count:      len(md.Dimensions),
		PropertyID: property,
	}
}

// Metrics lists the metrics available on the user's property.
func (s *Service) Metrics(ctx context.Context, userID string) (env MetricsEnvelope) {
	logger := logging.WithUser(logging.WithOperation(s.logger, "metrics"), userID)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Unexpected error listing metrics", slog.Any("panic", r))
			env = MetricsFailure(recovered(r))
		}
	}()

	logger.Info("Getting metrics")
	md, property, err := s.metadata(ctx, userID)
	if err != nil {
		logger.Error("Listing metrics failed", logging.ErrorKind(string(apperrors.KindOf(err))), logging.Err(err))
		return MetricsFailure(err)
	}
	logger.Info("Retrieved metrics", slog.Int("count", len(md.Metrics)))

	return MetricsEnvelope{
		Success:    true,
		Metrics:    md.Metrics,
		Count:      len(md.Metrics),
		PropertyID: property,
	}
}

// DateRanges returns the suggested date ranges for the current day.
func (s *Service) DateRanges() DateRangesEnvelope {
	now := s.now()
	return DateRangesEnvelope{
		Success:     true,
		DateRanges:  report.CommonDateRanges(now),
		CurrentDate: now.Format(report.DateLayout),
	}
}

func (s *Service) metadata(ctx context.Context, userID string) (*analytics.Metadata, string, error) {
	creds, err := s.resolve(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	tok, err := s.refresh(ctx, creds.RefreshToken)
	if err != nil {
		return nil, "", err
	}
	backend, err := s.backends.NewBackend(ctx, tok)
	if err != nil {
		return nil, "", err
	}

	property := report.PropertyName(creds.PropertyID)
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceAnalyticsData, instrumentation.OperationGetMetadata,
		instrumentation.ReportAttributes(logging.AnonymizeUser(userID), property, "", 0, 0)...)
	defer span.End()

	start := time.Now()
	md, err := backend.GetMetadata(ctx, property)
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err, string(apperrors.KindOf(err)))
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	s.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceAnalyticsData, instrumentation.OperationGetMetadata, status, time.Since(start))
	if err != nil {
		return nil, "", err
	}
	if md == nil {
		return nil, "", apperrors.New(apperrors.KindResponseProcessingError, "service.metadata", "empty metadata response")
	}
	return md, creds.PropertyID, nil
}

func (s *Service) resolve(ctx context.Context, userID string) (credentials.Credentials, error) {
	ctx, span := instrumentation.StartSpan(ctx, "credentials.resolve",
		attribute.String(instrumentation.SpanAttrUserHash, logging.AnonymizeUser(userID)))
	defer span.End()

	creds, err := s.resolver.Resolve(ctx, userID)
	result := lookupResult(err)
	s.metrics.RecordCredentialLookup(ctx, result)
	if err != nil {
		instrumentation.SetSpanError(span, err, string(apperrors.KindOf(err)))
	}
	return creds, err
}

func lookupResult(err error) string {
	switch {
	case err == nil:
		return instrumentation.LookupResultFound
	case apperrors.IsKind(err, apperrors.KindCredentialNotFound):
		return instrumentation.LookupResultNotFound
	case apperrors.IsKind(err, apperrors.KindNoValidProperty):
		return instrumentation.LookupResultNoProperty
	default:
		return instrumentation.LookupResultError
	}
}

func (s *Service) refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	tok, err := s.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		s.metrics.RecordTokenRefresh(ctx, instrumentation.RefreshResultFailure, string(apperrors.KindOf(err)))
		return nil, err
	}
	s.metrics.RecordTokenRefresh(ctx, instrumentation.RefreshResultSuccess, "")
	s.logger.Debug("Refreshed user tokens", slog.Time("expiry", tok.Expiry))
	return tok, nil
}

func (s *Service) runReport(ctx context.Context, backend analytics.Backend, req *report.Request, q report.QueryDescription) (*analyticsdata.RunReportResponse, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceAnalyticsData, instrumentation.OperationRunReport,
		instrumentation.ReportAttributes(logging.AnonymizeUser(q.UserID), req.Property, q.Granularity, len(req.Body.Dimensions), len(req.Body.Metrics))...)
	defer span.End()

	start := time.Now()
	resp, err := backend.RunReport(ctx, req.Property, req.Body)
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err, string(apperrors.KindOf(err)))
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	s.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceAnalyticsData, instrumentation.OperationRunReport, status, time.Since(start))
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

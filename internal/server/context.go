package server

import (
	"context"
	"errors"
	"sync"

	"github.com/teemow/ga4mcp/internal/instrumentation"
	"github.com/teemow/ga4mcp/internal/service"
)

// CheckFunc reports whether a dependency is usable.
type CheckFunc func(ctx context.Context) error

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	service     *service.Service
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	checks      map[string]CheckFunc
	closers     []func() error
	mu          sync.RWMutex
	shutdown    bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithMetrics sets the metrics recorder used by tool handlers.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(sc *ServerContext) {
		sc.metrics = m
	}
}

// WithAuditLogger sets the audit logger used by tool handlers.
func WithAuditLogger(al *instrumentation.AuditLogger) Option {
	return func(sc *ServerContext) {
		sc.auditLogger = al
	}
}

// WithReadinessCheck registers a named check run by /readyz.
func WithReadinessCheck(name string, check CheckFunc) Option {
	return func(sc *ServerContext) {
		sc.checks[name] = check
	}
}

// WithCloser registers fn to run on Shutdown, in reverse registration order.
func WithCloser(fn func() error) Option {
	return func(sc *ServerContext) {
		sc.closers = append(sc.closers, fn)
	}
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, svc *service.Service, opts ...Option) (*ServerContext, error) {
	if svc == nil {
		return nil, errors.New("query service is required")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		service: svc,
		checks:  make(map[string]CheckFunc),
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Service returns the GA4 query service.
func (sc *ServerContext) Service() *service.Service {
	return sc.service
}

// Metrics returns the metrics recorder, or nil when not configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	if sc == nil {
		return nil
	}
	return sc.metrics
}

// AuditLogger returns the audit logger, or nil when not configured.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	if sc == nil {
		return nil
	}
	return sc.auditLogger
}

// Checks returns a copy of the registered readiness checks.
func (sc *ServerContext) Checks() map[string]CheckFunc {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	out := make(map[string]CheckFunc, len(sc.checks))
	for name, check := range sc.checks {
		out[name] = check
	}
	return out
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context and runs the registered closers.
// Calling it more than once is a no-op.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()

	var errs []error
	for i := len(sc.closers) - 1; i >= 0; i-- {
		if err := sc.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

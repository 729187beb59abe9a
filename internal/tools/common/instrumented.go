package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/ga4mcp/internal/apperrors"
	"github.com/teemow/ga4mcp/internal/instrumentation"
	"github.com/teemow/ga4mcp/internal/server"
)

// ToolHandler is the mcp-go tool handler signature.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Outcome carries what a handler learned about its call back to the
// instrumentation wrapper.
type Outcome struct {
	// Kind classifies a failed call. Empty on success.
	Kind apperrors.Kind
	// Error is the failure message as returned to the caller.
	Error      string
	PropertyID string
	RowCount   int
}

type outcomeKey struct{}

// SetOutcome records the outcome of the current tool call. It is a no-op
// outside InstrumentedToolHandler.
func SetOutcome(ctx context.Context, o Outcome) {
	if p, ok := ctx.Value(outcomeKey{}).(*Outcome); ok {
		*p = o
	}
}

// InstrumentedToolHandler wraps a tool handler with a tool span, metrics and
// audit logging.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		ctx, span := instrumentation.StartToolSpan(ctx, toolName)
		defer span.End()

		outcome := &Outcome{}
		ctx = context.WithValue(ctx, outcomeKey{}, outcome)

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).WithSpanContext(ctx)
		if userID := UserIDFromArgs(request.GetArguments()); userID != "" {
			invocation.WithUser(userID)
		}

		result, err := handler(ctx, request)
		duration := time.Since(start)

		if outcome.PropertyID != "" {
			invocation.WithProperty(outcome.PropertyID)
		}

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			kind := apperrors.KindOf(err)
			invocation.CompleteWithError(string(kind), err.Error())
			instrumentation.SetSpanError(span, err, string(kind))
			metrics.RecordToolError(ctx, toolName, string(kind))
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			kind := outcome.Kind
			if kind == "" {
				kind = apperrors.KindInternal
			}
			invocation.CompleteWithError(string(kind), outcome.Error)
			instrumentation.SetSpanError(span, apperrors.New(kind, toolName, "%s", outcome.Error), string(kind))
			metrics.RecordToolError(ctx, toolName, string(kind))
		default:
			invocation.WithRowCount(outcome.RowCount).CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		metrics.RecordToolInvocation(ctx, toolName, status, duration)
		auditLogger.LogToolInvocation(invocation)

		return result, err
	}
}

// Package instrumentation provides OpenTelemetry instrumentation for the
// ga4mcp MCP server.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for tool calls, token refreshes, credential lookups and Data API calls
//   - Distributed tracing for tool invocations and Data API calls
//   - Prometheus metrics export via /metrics endpoint on dedicated port
//   - OTLP export support for modern observability platforms
//   - Audit logging of tool invocations with hashed user identifiers
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Data API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Data API operation durations
//
// Credential Metrics:
//   - oauth_token_refresh_total: Counter of token refreshes by result
//   - credential_lookups_total: Counter of credential store lookups by result
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//   - mcp_tool_errors_total: Counter of failed tool calls by tool and error kind
//   - ga4_report_rows: Histogram of rows returned per report by granularity
//
// # Tracing
//
// Spans are created for MCP tool invocations (tool.<name>) and Data API calls
// (google.analyticsdata.<operation>).
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: ga4mcp)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordGoogleAPIOperation(ctx, instrumentation.ServiceAnalyticsData,
//		instrumentation.OperationRunReport, instrumentation.StatusSuccess, time.Since(start))
package instrumentation

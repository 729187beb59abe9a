// Package server holds the runtime pieces shared by the MCP transports.
//
// ServerContext carries the GA4 query service together with the metrics
// recorder and audit logger used by the tool handlers. HTTPServer exposes
// the MCP server over SSE or streamable HTTP next to the health endpoints,
// and MetricsServer serves Prometheus metrics on a dedicated port.
//
// # Health endpoints
//
//   - /healthz: liveness, always ok while the process runs
//   - /readyz: readiness, runs every registered check (e.g. a credential
//     store ping)
//   - /healthz/detailed: status, uptime and per-check results
package server

// Package ga4_tools provides the MCP tools for querying Google Analytics 4.
//
// # Available Tools
//
//   - query_ga4_data: Run a report with dimensions, metrics, a date range,
//     optional filters, ordering and currency
//   - get_available_dimensions: List the dimensions of the user's property
//   - get_available_metrics: List the metrics of the user's property
//   - get_common_date_ranges: Suggest concrete date ranges such as "last_7_days"
//
// # Identity
//
// Tools that reach GA4 take a user_id. The credential store maps it to a
// stored refresh token and default property; there is no per-session login.
//
// # Results
//
// Every tool returns a JSON envelope as text content. Failed calls return
// {"success": false, "error": "..."} with IsError set on the result.
package ga4_tools

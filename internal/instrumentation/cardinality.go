package instrumentation

import "strings"

// Cardinality management helpers for metrics.
//
// Caller supplied strings must never become label values unchecked: GA4
// accepts arbitrary granularity hints and property ids, and every distinct
// value creates a new time series.

// Known granularity label values. Anything else is reported as GranularityCustom.
const (
	GranularityDaily   = "daily"
	GranularityWeekly  = "weekly"
	GranularityMonthly = "monthly"
	GranularityNone    = "none"
	GranularityCustom  = "custom"
)

// GranularityLabel bounds a granularity hint to a fixed label set.
//
// Example:
//
//	GranularityLabel("Daily")  // "daily"
//	GranularityLabel("hour")   // "custom"
//	GranularityLabel("")       // "none"
func GranularityLabel(granularity string) string {
	switch g := strings.ToLower(strings.TrimSpace(granularity)); g {
	case "":
		return GranularityNone
	case GranularityDaily, GranularityWeekly, GranularityMonthly:
		return g
	default:
		return GranularityCustom
	}
}

// Operation types for Data API metrics.
// Status and Service constants are defined in config.go.
const (
	OperationRunReport   = "run_report"
	OperationGetMetadata = "get_metadata"
	OperationRefresh     = "token_refresh"
	OperationLookup      = "credential_lookup"
)

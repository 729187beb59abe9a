package report

import "strings"

const (
	// MaxLimit is the largest row limit accepted for a single report.
	MaxLimit = 10000

	// DefaultLimit is used when the caller does not supply a limit.
	DefaultLimit = MaxLimit

	// DefaultGranularity is applied when the caller does not supply one.
	DefaultGranularity = "daily"

	// SessionsMetric is the metric summed into Report.TotalSessions.
	SessionsMetric = "sessions"
)

// QueryDescription is a single report query as supplied by a caller.
type QueryDescription struct {
	UserID     string
	Dimensions []string
	Metrics    []string
	StartDate  string
	EndDate    string
	Limit      int64

	// Optional. Empty or nil means unset.
	PropertyID       string
	Filters          *FilterSpec
	OrderBy          []OrderClause
	CurrencyCode     string
	Granularity      string
	IncludeEmptyRows *bool
}

// DateRangeLabel renders the date range the way result envelopes echo it.
func (q QueryDescription) DateRangeLabel() string {
	return q.StartDate + " to " + q.EndDate
}

var granularityDimensions = map[string]string{
	"daily":   "date",
	"weekly":  "week",
	"monthly": "month",
}

// GranularityDimension maps a granularity hint to the dimension that buckets
// rows by it. Unknown hints are returned unchanged so newer dimension names
// can be passed straight through.
func GranularityDimension(granularity string) string {
	if dim, ok := granularityDimensions[strings.ToLower(granularity)]; ok {
		return dim
	}
	return granularity
}

// ClampLimit bounds limit to [1, MaxLimit]. A nil limit selects DefaultLimit.
func ClampLimit(limit *int64) int64 {
	switch {
	case limit == nil:
		return DefaultLimit
	case *limit < 1:
		return 1
	case *limit > MaxLimit:
		return MaxLimit
	default:
		return *limit
	}
}

// PropertyName returns the resource name for a property id.
func PropertyName(propertyID string) string {
	if strings.HasPrefix(propertyID, "properties/") {
		return propertyID
	}
	return "properties/" + propertyID
}

package service

import (
	"github.com/teemow/ga4mcp/internal/analytics"
	"github.com/teemow/ga4mcp/internal/apperrors"
	"github.com/teemow/ga4mcp/internal/report"
)

// QueryEnvelope is the result of a report query.
type QueryEnvelope struct {
	Success  bool         `json:"success"`
	Error    string       `json:"error,omitempty"`
	Data     []report.Row `json:"data"`
	RowCount int          `json:"rowCount"`

	// Summary is only set on success.
	*QuerySummary

	// Kind classifies a failure for metrics and audit logs.
	Kind apperrors.Kind `json:"-"`
}

// QuerySummary echoes the query next to a successful result.
type QuerySummary struct {
	TotalSessions int64    `json:"totalSessions"`
	Dimensions    []string `json:"dimensions"`
	Metrics       []string `json:"metrics"`
	DateRange     string   `json:"dateRange"`
	PropertyID    string   `json:"propertyId"`
}

// QueryFailure renders err as a failed query envelope.
func QueryFailure(err error) QueryEnvelope {
	return QueryEnvelope{
		Success: false,
		Error:   err.Error(),
		Data:    []report.Row{},
		Kind:    apperrors.KindOf(err),
	}
}

// DimensionsEnvelope lists the dimensions of a property.
type DimensionsEnvelope struct {
	Success    bool                  `json:"success"`
	Error      string                `json:"error,omitempty"`
	Dimensions []analytics.FieldInfo `json:"dimensions"`
	Count      int                   `json:"count"`
	PropertyID string                `json:"propertyId,omitempty"`

	Kind apperrors.Kind `json:"-"`
}

// DimensionsFailure renders err as a failed dimensions envelope.
func DimensionsFailure(err error) DimensionsEnvelope {
	return DimensionsEnvelope{
		Error:      err.Error(),
		Dimensions: []analytics.FieldInfo{},
		Kind:       apperrors.KindOf(err),
	}
}

// MetricsEnvelope lists the metrics of a property.
type MetricsEnvelope struct {
	Success    bool                  `json:"success"`
	Error      string                `json:"error,omitempty"`
	Metrics    []analytics.FieldInfo `json:"metrics"`
	Count      int                   `json:"count"`
	PropertyID string                `json:"propertyId,omitempty"`

	Kind apperrors.Kind `json:"-"`
}

// MetricsFailure renders err as a failed metrics envelope.
func MetricsFailure(err error) MetricsEnvelope {
	return MetricsEnvelope{
		Error:   err.Error(),
		Metrics: []analytics.FieldInfo{},
		Kind:    apperrors.KindOf(err),
	}
}

// DateRangesEnvelope carries the suggested date ranges.
type DateRangesEnvelope struct {
	Success     bool                        `json:"success"`
	DateRanges  map[string]report.DateRange `json:"dateRanges"`
	CurrentDate string                      `json:"currentDate"`
}

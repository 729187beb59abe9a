package report

import (
	"strconv"
	"strings"

	analyticsdata "google.golang.org/api/analyticsdata/v1beta"

	"github.com/teemow/ga4mcp/internal/apperrors"
)

// Row maps dimension and metric names to their values.
type Row map[string]string

// Report is a normalized report response.
type Report struct {
	Rows          []Row
	TotalSessions int64
}

// RowCount returns the number of rows.
func (r *Report) RowCount() int {
	return len(r.Rows)
}

// Normalize flattens resp into rows keyed by header name.
//
// Any row value without a matching header fails the whole conversion; no
// partial report is returned.
func Normalize(resp *analyticsdata.RunReportResponse) (*Report, error) {
	if resp == nil {
		return nil, processingError("empty report response")
	}

	dimNames := make([]string, len(resp.DimensionHeaders))
	for i, h := range resp.DimensionHeaders {
		if h == nil {
			return nil, processingError("dimension header %d is empty", i)
		}
		dimNames[i] = h.Name
	}
	metricNames := make([]string, len(resp.MetricHeaders))
	for i, h := range resp.MetricHeaders {
		if h == nil {
			return nil, processingError("metric header %d is empty", i)
		}
		metricNames[i] = h.Name
	}

	report := &Report{Rows: make([]Row, 0, len(resp.Rows))}
	for i, row := range resp.Rows {
		if row == nil {
			return nil, processingError("row %d is empty", i)
		}
		if len(row.DimensionValues) > len(dimNames) {
			return nil, processingError("row %d has %d dimension values but %d dimension headers", i, len(row.DimensionValues), len(dimNames))
		}
		if len(row.MetricValues) > len(metricNames) {
			return nil, processingError("row %d has %d metric values but %d metric headers", i, len(row.MetricValues), len(metricNames))
		}

		out := make(Row, len(row.DimensionValues)+len(row.MetricValues))
		for j, v := range row.DimensionValues {
			if v == nil {
				return nil, processingError("row %d dimension %q has no value", i, dimNames[j])
			}
			out[dimNames[j]] = v.Value
		}
		for j, v := range row.MetricValues {
			if v == nil {
				return nil, processingError("row %d metric %q has no value", i, metricNames[j])
			}
			out[metricNames[j]] = v.Value
			if metricNames[j] == SessionsMetric {
				report.TotalSessions += parseCount(v.Value)
			}
		}
		report.Rows = append(report.Rows, out)
	}
	return report, nil
}

// parseCount reads an integer metric value. Anything else counts as zero.
func parseCount(value string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func processingError(format string, args ...any) *apperrors.Error {
	return apperrors.New(apperrors.KindResponseProcessingError, "report.Normalize", format, args...)
}

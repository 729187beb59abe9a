package report

import (
	"strings"

	analyticsdata "google.golang.org/api/analyticsdata/v1beta"

	"github.com/teemow/ga4mcp/internal/apperrors"
)

// Request is a built report request bound to a property.
type Request struct {
	// Property is the resource name, e.g. "properties/123".
	Property string
	Body     *analyticsdata.RunReportRequest
}

// DimensionNames returns the final dimension list, including any injected
// granularity dimension.
func (r *Request) DimensionNames() []string {
	names := make([]string, 0, len(r.Body.Dimensions))
	for _, d := range r.Body.Dimensions {
		names = append(names, d.Name)
	}
	return names
}

// Builder turns query descriptions into report requests.
type Builder struct {
	strictOrderBy bool
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithStrictOrderBy makes malformed ordering clauses an error instead of
// skipping them.
func WithStrictOrderBy(strict bool) BuilderOption {
	return func(b *Builder) {
		b.strictOrderBy = strict
	}
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Validate checks the parts of q that can be rejected without any I/O.
func (b *Builder) Validate(q QueryDescription) error {
	if len(q.Dimensions) == 0 && len(q.Metrics) == 0 {
		return apperrors.New(apperrors.KindInvalidRequest, "report.Build", "At least one dimension or metric must be specified")
	}
	return nil
}

// Build creates the report request for q. defaultProperty is the property
// stored with the user's credentials; q.PropertyID overrides it.
func (b *Builder) Build(q QueryDescription, defaultProperty string) (*Request, error) {
	if err := b.Validate(q); err != nil {
		return nil, err
	}

	propertyID := defaultProperty
	if q.PropertyID != "" {
		propertyID = q.PropertyID
	}
	if strings.TrimSpace(propertyID) == "" {
		return nil, apperrors.New(apperrors.KindInvalidRequest, "report.Build", "no property id to query").WithField("property_id")
	}

	filter, err := q.Filters.Expression()
	if err != nil {
		return nil, err
	}

	orderBys, err := b.orderBys(q.OrderBy)
	if err != nil {
		return nil, err
	}

	body := &analyticsdata.RunReportRequest{
		Dimensions: dimensions(q.Dimensions, q.Granularity),
		Metrics:    metrics(q.Metrics),
		DateRanges: []*analyticsdata.DateRange{{
			StartDate: q.StartDate,
			EndDate:   q.EndDate,
		}},
		DimensionFilter: filter,
		OrderBys:        orderBys,
		Limit:           q.Limit,
		CurrencyCode:    q.CurrencyCode,
	}
	if q.IncludeEmptyRows != nil {
		body.KeepEmptyRows = *q.IncludeEmptyRows
		if !body.KeepEmptyRows {
			body.ForceSendFields = append(body.ForceSendFields, "KeepEmptyRows")
		}
	}

	return &Request{Property: PropertyName(propertyID), Body: body}, nil
}

func dimensions(names []string, granularity string) []*analyticsdata.Dimension {
	dims := make([]*analyticsdata.Dimension, 0, len(names)+1)
	for _, name := range names {
		dims = append(dims, &analyticsdata.Dimension{Name: name})
	}
	if granularity == "" {
		return dims
	}

	gran := GranularityDimension(granularity)
	for _, name := range names {
		if name == gran {
			return dims
		}
	}
	return append(dims, &analyticsdata.Dimension{Name: gran})
}

func metrics(names []string) []*analyticsdata.Metric {
	out := make([]*analyticsdata.Metric, 0, len(names))
	for _, name := range names {
		out = append(out, &analyticsdata.Metric{Name: name})
	}
	return out
}

func (b *Builder) orderBys(clauses []OrderClause) ([]*analyticsdata.OrderBy, error) {
	if len(clauses) == 0 {
		return nil, nil
	}

	out := make([]*analyticsdata.OrderBy, 0, len(clauses))
	for i, c := range clauses {
		switch c.Kind {
		case OrderMetric:
			out = append(out, &analyticsdata.OrderBy{
				Desc:   c.Descending,
				Metric: &analyticsdata.MetricOrderBy{MetricName: c.Name},
			})
		case OrderDimension:
			out = append(out, &analyticsdata.OrderBy{
				Desc:      c.Descending,
				Dimension: &analyticsdata.DimensionOrderBy{DimensionName: c.Name},
			})
		default:
			if b.strictOrderBy {
				return nil, invalidOrder("order_by", "order_by[%d] must contain a metric or a dimension", i)
			}
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

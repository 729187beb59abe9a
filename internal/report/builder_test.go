package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/ga4mcp/internal/apperrors"
)

func baseQuery() QueryDescription {
	return QueryDescription{
		UserID:     "u1",
		Dimensions: []string{"country"},
		Metrics:    []string{"sessions"},
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-07",
		Limit:      10,
	}
}

func TestBuilder_RequiresDimensionOrMetric(t *testing.T) {
	q := baseQuery()
	q.Dimensions = nil
	q.Metrics = nil

	_, err := NewBuilder().Build(q, "123")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidRequest, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "At least one dimension or metric")
}

func TestBuilder_PropertyOverride(t *testing.T) {
	q := baseQuery()

	req, err := NewBuilder().Build(q, "123")
	require.NoError(t, err)
	assert.Equal(t, "properties/123", req.Property)

	q.PropertyID = "456"
	req, err = NewBuilder().Build(q, "123")
	require.NoError(t, err)
	assert.Equal(t, "properties/456", req.Property)

	_, err = NewBuilder().Build(baseQuery(), "")
	assert.Equal(t, apperrors.KindInvalidRequest, apperrors.KindOf(err))
}

func TestBuilder_GranularityInjection(t *testing.T) {
	tests := []struct {
		name        string
		dimensions  []string
		granularity string
		want        []string
	}{
		{"no granularity", []string{"country"}, "", []string{"country"}},
		{"daily appends date", []string{"country"}, "daily", []string{"country", "date"}},
		{"weekly appends week", []string{"country", "city"}, "weekly", []string{"country", "city", "week"}},
		{"monthly appends month", nil, "monthly", []string{"month"}},
		{"case insensitive hint", []string{"country"}, "Monthly", []string{"country", "month"}},
		{"already present", []string{"date", "country"}, "daily", []string{"date", "country"}},
		{"present check is case sensitive", []string{"Date"}, "daily", []string{"Date", "date"}},
		{"unknown passes through", []string{"country"}, "hour", []string{"country", "hour"}},
		{"unknown already present", []string{"hour"}, "hour", []string{"hour"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := baseQuery()
			q.Dimensions = tt.dimensions
			q.Granularity = tt.granularity

			req, err := NewBuilder().Build(q, "123")
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.DimensionNames())
		})
	}
}

func TestBuilder_GranularityAppearsOnce(t *testing.T) {
	for _, g := range []string{"daily", "weekly", "monthly"} {
		gran := GranularityDimension(g)
		for _, dims := range [][]string{nil, {"country"}, {gran}, {"country", gran, "city"}} {
			q := baseQuery()
			q.Dimensions = dims
			q.Granularity = g

			req, err := NewBuilder().Build(q, "123")
			require.NoError(t, err)

			names := req.DimensionNames()
			count := 0
			for _, n := range names {
				if n == gran {
					count++
				}
			}
			assert.Equal(t, 1, count, "granularity %s with %v", g, dims)
			if len(dims) > 0 {
				assert.Equal(t, dims, names[:len(dims)], "existing order preserved")
			}
		}
	}
}

func TestBuilder_OrderBy(t *testing.T) {
	clauses := []OrderClause{
		ByMetric("sessions", true),
		{Kind: OrderMalformed},
		ByDimension("country", false),
	}

	t.Run("lenient skips malformed", func(t *testing.T) {
		q := baseQuery()
		q.OrderBy = clauses

		req, err := NewBuilder().Build(q, "123")
		require.NoError(t, err)
		require.Len(t, req.Body.OrderBys, 2)
		assert.True(t, req.Body.OrderBys[0].Desc)
		assert.Equal(t, "sessions", req.Body.OrderBys[0].Metric.MetricName)
		assert.Nil(t, req.Body.OrderBys[0].Dimension)
		assert.False(t, req.Body.OrderBys[1].Desc)
		assert.Equal(t, "country", req.Body.OrderBys[1].Dimension.DimensionName)
	})

	t.Run("strict rejects malformed", func(t *testing.T) {
		q := baseQuery()
		q.OrderBy = clauses

		_, err := NewBuilder(WithStrictOrderBy(true)).Build(q, "123")
		require.Error(t, err)
		assert.Equal(t, apperrors.KindInvalidRequest, apperrors.KindOf(err))
	})

	t.Run("only malformed leaves ordering unset", func(t *testing.T) {
		q := baseQuery()
		q.OrderBy = []OrderClause{{Kind: OrderMalformed}}

		req, err := NewBuilder().Build(q, "123")
		require.NoError(t, err)
		assert.Nil(t, req.Body.OrderBys)
	})
}

func TestBuilder_Filter(t *testing.T) {
	q := baseQuery()
	q.Filters = NewFlatFilter(FieldValue{"country", "US"}, FieldValue{"deviceCategory", "mobile"})

	req, err := NewBuilder().Build(q, "123")
	require.NoError(t, err)
	require.NotNil(t, req.Body.DimensionFilter)
	require.NotNil(t, req.Body.DimensionFilter.AndGroup)
	assert.Len(t, req.Body.DimensionFilter.AndGroup.Expressions, 2)

	q.Filters = &FilterSpec{}
	_, err = NewBuilder().Build(q, "123")
	assert.Equal(t, apperrors.KindInvalidFilter, apperrors.KindOf(err))
}

func TestBuilder_OptionalFieldsOmitted(t *testing.T) {
	q := baseQuery()
	q.Limit = 0

	req, err := NewBuilder().Build(q, "123")
	require.NoError(t, err)

	raw, err := json.Marshal(req.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	for _, key := range []string{"limit", "currencyCode", "keepEmptyRows", "dimensionFilter", "orderBys"} {
		assert.NotContains(t, body, key)
	}
	assert.Len(t, body["dateRanges"], 1)
}

func TestBuilder_OptionalFieldsSent(t *testing.T) {
	keep := false
	q := baseQuery()
	q.CurrencyCode = "EUR"
	q.IncludeEmptyRows = &keep

	req, err := NewBuilder().Build(q, "123")
	require.NoError(t, err)

	raw, err := json.Marshal(req.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "EUR", body["currencyCode"])
	assert.Equal(t, false, body["keepEmptyRows"])
	assert.Equal(t, "10", body["limit"])
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, ClampLimit(nil))

	tests := []struct {
		in, want int64
	}{
		{0, 1},
		{-5, 1},
		{1, 1},
		{500, 500},
		{10000, 10000},
		{50000, MaxLimit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampLimit(&tt.in), "ClampLimit(%d)", tt.in)
	}
}

func TestPropertyName(t *testing.T) {
	assert.Equal(t, "properties/42", PropertyName("42"))
	assert.Equal(t, "properties/42", PropertyName("properties/42"))
}

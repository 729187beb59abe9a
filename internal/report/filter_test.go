package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/ga4mcp/internal/apperrors"
)

func TestParseFilterSpec_Shapes(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  *FilterSpec
	}{
		{
			name:  "nil",
			input: nil,
			want:  nil,
		},
		{
			name:  "empty object",
			input: map[string]any{},
			want:  nil,
		},
		{
			name:  "blank string",
			input: "  ",
			want:  nil,
		},
		{
			name: "nested",
			input: map[string]any{
				"dimension_filter": map[string]any{
					"filter": map[string]any{
						"field_name":    "country",
						"string_filter": map[string]any{"value": "US"},
					},
				},
			},
			want: &FilterSpec{Shape: ShapeNested, Field: "country", Value: "US"},
		},
		{
			name: "direct",
			input: map[string]any{
				"filter": map[string]any{
					"field_name":    "deviceCategory",
					"string_filter": map[string]any{"value": "mobile"},
				},
			},
			want: &FilterSpec{Shape: ShapeDirect, Field: "deviceCategory", Value: "mobile"},
		},
		{
			name:  "flat single",
			input: map[string]any{"country": "US"},
			want:  &FilterSpec{Shape: ShapeFlat, Pairs: []FieldValue{{"country", "US"}}},
		},
		{
			name:  "flat map uses sorted keys",
			input: map[string]any{"deviceCategory": "mobile", "country": "US"},
			want: &FilterSpec{Shape: ShapeFlat, Pairs: []FieldValue{
				{"country", "US"},
				{"deviceCategory", "mobile"},
			}},
		},
		{
			name:  "flat JSON keeps document order",
			input: `{"deviceCategory": "mobile", "country": "US", "city": "Berlin"}`,
			want: &FilterSpec{Shape: ShapeFlat, Pairs: []FieldValue{
				{"deviceCategory", "mobile"},
				{"country", "US"},
				{"city", "Berlin"},
			}},
		},
		{
			name:  "nested wins over extra keys",
			input: `{"country": "US", "dimension_filter": {"filter": {"field_name": "city", "string_filter": {"value": "Paris"}}}}`,
			want:  &FilterSpec{Shape: ShapeNested, Field: "city", Value: "Paris"},
		},
		{
			name:  "direct wins over flat keys",
			input: `{"filter": {"field_name": "city", "string_filter": {"value": "Paris"}}, "country": "US"}`,
			want:  &FilterSpec{Shape: ShapeDirect, Field: "city", Value: "Paris"},
		},
		{
			name:  "only one predicate is read from a nested filter",
			input: `{"filter": {"field_name": "city", "string_filter": {"value": "Paris", "match_type": "CONTAINS"}, "and": {"x": 1}}}`,
			want:  &FilterSpec{Shape: ShapeDirect, Field: "city", Value: "Paris"},
		},
		{
			name:  "json bytes",
			input: []byte(`{"country": "DE"}`),
			want:  &FilterSpec{Shape: ShapeFlat, Pairs: []FieldValue{{"country", "DE"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilterSpec(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFilterSpec_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"not an object", 42},
		{"array JSON", `["country"]`},
		{"broken JSON", `{"country": `},
		{"flat non-string value", map[string]any{"country": 5}},
		{"nested without filter", map[string]any{"dimension_filter": map[string]any{"other": 1}}},
		{"nested not an object", map[string]any{"dimension_filter": "country"}},
		{"direct missing field name", map[string]any{"filter": map[string]any{"string_filter": map[string]any{"value": "x"}}}},
		{"direct missing value", map[string]any{"filter": map[string]any{"field_name": "country"}}},
		{"direct null", `{"filter": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilterSpec(tt.input)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidFilter), "kind = %s", apperrors.KindOf(err))
		})
	}
}

func TestFilterSpec_Expression(t *testing.T) {
	t.Run("nil spec", func(t *testing.T) {
		var f *FilterSpec
		expr, err := f.Expression()
		require.NoError(t, err)
		assert.Nil(t, expr)
	})

	t.Run("single predicate is not wrapped", func(t *testing.T) {
		expr, err := NewFlatFilter(FieldValue{"country", "US"}).Expression()
		require.NoError(t, err)
		require.NotNil(t, expr.Filter)
		assert.Nil(t, expr.AndGroup)
		assert.Equal(t, "country", expr.Filter.FieldName)
		assert.Equal(t, "US", expr.Filter.StringFilter.Value)
	})

	t.Run("flat entries become an AND group in order", func(t *testing.T) {
		pairs := []FieldValue{{"deviceCategory", "mobile"}, {"country", "US"}, {"city", "Berlin"}}
		expr, err := NewFlatFilter(pairs...).Expression()
		require.NoError(t, err)
		assert.Nil(t, expr.Filter)
		require.NotNil(t, expr.AndGroup)
		require.Len(t, expr.AndGroup.Expressions, len(pairs))
		for i, p := range pairs {
			got := expr.AndGroup.Expressions[i]
			require.NotNil(t, got.Filter)
			assert.Equal(t, p.Field, got.Filter.FieldName)
			assert.Equal(t, p.Value, got.Filter.StringFilter.Value)
		}
	})

	t.Run("direct", func(t *testing.T) {
		expr, err := NewFieldFilter("city", "Paris").Expression()
		require.NoError(t, err)
		assert.Equal(t, "city", expr.Filter.FieldName)
	})

	t.Run("empty value is still sent", func(t *testing.T) {
		expr, err := NewFieldFilter("city", "").Expression()
		require.NoError(t, err)
		assert.Contains(t, expr.Filter.StringFilter.ForceSendFields, "Value")
	})

	t.Run("unknown shape", func(t *testing.T) {
		_, err := (&FilterSpec{}).Expression()
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidFilter))
	})

	t.Run("flat without entries", func(t *testing.T) {
		_, err := NewFlatFilter().Expression()
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidFilter))
	})
}

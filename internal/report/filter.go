package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	analyticsdata "google.golang.org/api/analyticsdata/v1beta"

	"github.com/teemow/ga4mcp/internal/apperrors"
)

// FilterShape identifies which of the accepted filter layouts was supplied.
type FilterShape int

const (
	ShapeUnknown FilterShape = iota
	ShapeNested              // {"dimension_filter": {"filter": {...}}}
	ShapeDirect              // {"filter": {...}}
	ShapeFlat                // {"field": "value", ...}
)

func (s FilterShape) String() string {
	switch s {
	case ShapeNested:
		return "nested"
	case ShapeDirect:
		return "direct"
	case ShapeFlat:
		return "flat"
	default:
		return "unknown"
	}
}

const (
	keyDimensionFilter = "dimension_filter"
	keyFilter          = "filter"
)

// FieldValue is one equality predicate of a flat filter.
type FieldValue struct {
	Field string
	Value string
}

// FilterSpec is a parsed filter. Nested and direct shapes use Field and Value;
// the flat shape uses Pairs.
type FilterSpec struct {
	Shape FilterShape
	Field string
	Value string
	Pairs []FieldValue
}

// NewFlatFilter builds a flat filter from ordered pairs.
func NewFlatFilter(pairs ...FieldValue) *FilterSpec {
	return &FilterSpec{Shape: ShapeFlat, Pairs: pairs}
}

// NewFieldFilter builds a single-predicate filter in the direct shape.
func NewFieldFilter(field, value string) *FilterSpec {
	return &FilterSpec{Shape: ShapeDirect, Field: field, Value: value}
}

type member struct {
	key   string
	value json.RawMessage
}

// ParseFilterSpec parses caller supplied filters.
//
// v may be a JSON object already decoded into map[string]any, a JSON document
// as a string, or raw JSON bytes. Entry order of the flat shape follows the
// document for string and byte input. Decoded maps no longer carry their
// original order, so their entries are taken in sorted key order.
//
// A nil value, an empty string or an empty object yields a nil spec.
func ParseFilterSpec(v any) (*FilterSpec, error) {
	members, err := filterMembers(v)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	// Shape detection by key presence. Once a marker key is found the other
	// keys of the object are not read as predicates.
	if raw, ok := lookup(members, keyDimensionFilter); ok {
		return parseNested(raw)
	}
	if raw, ok := lookup(members, keyFilter); ok {
		field, value, err := parsePredicate(raw, keyFilter)
		if err != nil {
			return nil, err
		}
		return &FilterSpec{Shape: ShapeDirect, Field: field, Value: value}, nil
	}
	return parseFlat(members)
}

func filterMembers(v any) ([]member, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, nil
		}
		return decodeMembers([]byte(t))
	case []byte:
		return decodeMembers(t)
	case json.RawMessage:
		return decodeMembers(t)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		members := make([]member, 0, len(keys))
		for _, k := range keys {
			raw, err := json.Marshal(t[k])
			if err != nil {
				return nil, invalidFilter("filters.%s: %v", k, err)
			}
			members = append(members, member{key: k, value: raw})
		}
		return members, nil
	default:
		return nil, invalidFilter("filters must be an object, got %T", v)
	}
}

// decodeMembers reads the top level members of a JSON object in document order.
func decodeMembers(data []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, invalidFilter("filters are not valid JSON: %v", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, invalidFilter("filters must be a JSON object")
	}

	var members []member
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, invalidFilter("filters are not valid JSON: %v", err)
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, invalidFilter("filters.%s is not valid JSON: %v", key, err)
		}

		// A repeated key keeps its first position and its last value.
		if i, seen := index[key]; seen {
			members[i].value = raw
			continue
		}
		index[key] = len(members)
		members = append(members, member{key: key, value: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, invalidFilter("filters are not valid JSON: %v", err)
	}
	return members, nil
}

func lookup(members []member, key string) (json.RawMessage, bool) {
	for _, m := range members {
		if m.key == key {
			return m.value, true
		}
	}
	return nil, false
}

func parseNested(raw json.RawMessage) (*FilterSpec, error) {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil || wrapper == nil {
		return nil, invalidFilter("filters.%s must be an object", keyDimensionFilter).WithField(keyDimensionFilter)
	}
	inner, ok := wrapper[keyFilter]
	if !ok {
		return nil, invalidFilter("filters.%s must contain a %q object", keyDimensionFilter, keyFilter).WithField(keyDimensionFilter)
	}
	field, value, err := parsePredicate(inner, keyDimensionFilter+"."+keyFilter)
	if err != nil {
		return nil, err
	}
	return &FilterSpec{Shape: ShapeNested, Field: field, Value: value}, nil
}

type predicateJSON struct {
	FieldName    *string `json:"field_name"`
	StringFilter *struct {
		Value *string `json:"value"`
	} `json:"string_filter"`
}

// parsePredicate reads one field_name/string_filter.value pair. Any other keys
// in the object are ignored.
func parsePredicate(raw json.RawMessage, path string) (string, string, error) {
	var p predicateJSON
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", "", invalidFilter("filters.%s: %v", path, err).WithField(path)
	}
	if p.FieldName == nil || *p.FieldName == "" {
		return "", "", invalidFilter("filters.%s.field_name is required", path).WithField(path + ".field_name")
	}
	if p.StringFilter == nil || p.StringFilter.Value == nil {
		return "", "", invalidFilter("filters.%s.string_filter.value is required", path).WithField(path + ".string_filter.value")
	}
	return *p.FieldName, *p.StringFilter.Value, nil
}

func parseFlat(members []member) (*FilterSpec, error) {
	pairs := make([]FieldValue, 0, len(members))
	for _, m := range members {
		if m.key == "" {
			return nil, invalidFilter("filters contain an empty field name")
		}
		var value string
		if err := json.Unmarshal(m.value, &value); err != nil {
			return nil, invalidFilter("filters.%s must be a string value", m.key).WithField(m.key)
		}
		pairs = append(pairs, FieldValue{Field: m.key, Value: value})
	}
	return &FilterSpec{Shape: ShapeFlat, Pairs: pairs}, nil
}

// Expression compiles the spec to a Data API filter expression.
func (f *FilterSpec) Expression() (*analyticsdata.FilterExpression, error) {
	if f == nil {
		return nil, nil
	}
	switch f.Shape {
	case ShapeNested, ShapeDirect:
		if f.Field == "" {
			return nil, invalidFilter("%s filter has no field name", f.Shape)
		}
		return stringEquals(f.Field, f.Value), nil
	case ShapeFlat:
		switch len(f.Pairs) {
		case 0:
			return nil, invalidFilter("flat filter has no entries")
		case 1:
			return stringEquals(f.Pairs[0].Field, f.Pairs[0].Value), nil
		}
		exprs := make([]*analyticsdata.FilterExpression, 0, len(f.Pairs))
		for _, p := range f.Pairs {
			exprs = append(exprs, stringEquals(p.Field, p.Value))
		}
		return &analyticsdata.FilterExpression{
			AndGroup: &analyticsdata.FilterExpressionList{Expressions: exprs},
		}, nil
	default:
		return nil, invalidFilter("unrecognized filter shape")
	}
}

func stringEquals(field, value string) *analyticsdata.FilterExpression {
	sf := &analyticsdata.StringFilter{Value: value}
	if value == "" {
		// Matching the empty string must still send the value.
		sf.ForceSendFields = []string{"Value"}
	}
	return &analyticsdata.FilterExpression{
		Filter: &analyticsdata.Filter{
			FieldName:    field,
			StringFilter: sf,
		},
	}
}

func invalidFilter(format string, args ...any) *apperrors.Error {
	return &apperrors.Error{
		Kind:    apperrors.KindInvalidFilter,
		Op:      "report.ParseFilterSpec",
		Message: fmt.Sprintf(format, args...),
		Field:   "filters",
	}
}

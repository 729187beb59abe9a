package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/teemow/ga4mcp/internal/apperrors"
)

// OrderKind tells whether an ordering clause sorts by a metric or a dimension.
type OrderKind int

const (
	// OrderMalformed marks a clause that names neither a metric nor a dimension.
	OrderMalformed OrderKind = iota
	OrderMetric
	OrderDimension
)

// OrderClause is one sort key of a report.
type OrderClause struct {
	Kind       OrderKind
	Name       string
	Descending bool
}

// ByMetric returns a clause sorting by a metric.
func ByMetric(name string, desc bool) OrderClause {
	return OrderClause{Kind: OrderMetric, Name: name, Descending: desc}
}

// ByDimension returns a clause sorting by a dimension.
func ByDimension(name string, desc bool) OrderClause {
	return OrderClause{Kind: OrderDimension, Name: name, Descending: desc}
}

// ParseOrderBy parses caller supplied ordering clauses. It accepts a list of
// objects, a single object, or either one encoded as a JSON string:
//
//	[{"metric": {"metric_name": "sessions"}, "desc": true},
//	 {"dimension": {"dimension_name": "country"}}]
//
// Clauses that carry neither a metric nor a dimension key are returned with
// Kind OrderMalformed; whether they are skipped is up to the Builder. A clause
// that has the key but lacks the name is an error.
func ParseOrderBy(v any) ([]OrderClause, error) {
	items, err := orderItems(v)
	if err != nil {
		return nil, err
	}

	clauses := make([]OrderClause, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			clauses = append(clauses, OrderClause{Kind: OrderMalformed})
			continue
		}
		clause, err := parseOrderClause(i, obj)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
	return clauses, nil
}

func orderItems(v any) ([]any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return t, nil
	case map[string]any:
		return []any{t}, nil
	case []map[string]any:
		items := make([]any, len(t))
		for i := range t {
			items[i] = t[i]
		}
		return items, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, nil
		}
		var decoded any
		if err := json.Unmarshal([]byte(t), &decoded); err != nil {
			return nil, invalidOrder("", "order_by is not valid JSON: %v", err)
		}
		if _, isString := decoded.(string); isString {
			return nil, invalidOrder("", "order_by must be a list of objects")
		}
		return orderItems(decoded)
	default:
		return nil, invalidOrder("", "order_by must be a list of objects, got %T", v)
	}
}

func parseOrderClause(i int, obj map[string]any) (OrderClause, error) {
	desc, err := orderDescending(i, obj)
	if err != nil {
		return OrderClause{}, err
	}

	if raw, ok := obj["metric"]; ok {
		name, err := nestedName(raw, "metric_name")
		if err != nil {
			return OrderClause{}, invalidOrder(fmt.Sprintf("order_by[%d].metric.metric_name", i), "order_by[%d].metric: %v", i, err)
		}
		return ByMetric(name, desc), nil
	}
	if raw, ok := obj["dimension"]; ok {
		name, err := nestedName(raw, "dimension_name")
		if err != nil {
			return OrderClause{}, invalidOrder(fmt.Sprintf("order_by[%d].dimension.dimension_name", i), "order_by[%d].dimension: %v", i, err)
		}
		return ByDimension(name, desc), nil
	}
	return OrderClause{Kind: OrderMalformed, Descending: desc}, nil
}

func orderDescending(i int, obj map[string]any) (bool, error) {
	for _, key := range []string{"desc", "descending"} {
		raw, ok := obj[key]
		if !ok || raw == nil {
			continue
		}
		b, ok := raw.(bool)
		if !ok {
			return false, invalidOrder(fmt.Sprintf("order_by[%d].%s", i, key), "order_by[%d].%s must be a boolean", i, key)
		}
		return b, nil
	}
	return false, nil
}

func nestedName(raw any, key string) (string, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return "", fmt.Errorf("must be an object with %q", key)
	}
	name, _ := obj[key].(string)
	if name == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return name, nil
}

func invalidOrder(field, format string, args ...any) *apperrors.Error {
	if field == "" {
		field = "order_by"
	}
	return &apperrors.Error{
		Kind:    apperrors.KindInvalidRequest,
		Op:      "report.ParseOrderBy",
		Message: fmt.Sprintf(format, args...),
		Field:   field,
	}
}

package common

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/teemow/ga4mcp/internal/apperrors"
)

const opArgs = "tools.args"

func invalidArg(field, format string, args ...any) *apperrors.Error {
	return apperrors.New(apperrors.KindInvalidArgument, opArgs, format, args...).WithField(field)
}

// UserIDFromArgs returns the trimmed user_id argument, or "" when it is
// missing or not a string.
func UserIDFromArgs(args map[string]any) string {
	v, _ := args["user_id"].(string)
	return strings.TrimSpace(v)
}

// RequiredString returns the trimmed string argument name.
func RequiredString(args map[string]any, name string) (string, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return "", invalidArg(name, "%s is required", name)
	}
	s, ok := raw.(string)
	if !ok {
		return "", invalidArg(name, "%s must be a string", name)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalidArg(name, "%s cannot be empty", name)
	}
	return s, nil
}

// OptionalString returns the trimmed string argument name, or "" when unset.
func OptionalString(args map[string]any, name string) (string, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", invalidArg(name, "%s must be a string", name)
	}
	return strings.TrimSpace(s), nil
}

// OptionalInt returns the integer argument name, or nil when unset. JSON
// numbers must be whole.
func OptionalInt(args map[string]any, name string) (*int64, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return nil, nil
	}

	var n int64
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, invalidArg(name, "%s must be an integer", name)
		}
		n = int64(v)
	case int:
		n = int64(v)
	case int64:
		n = v
	case json.Number:
		parsed, err := v.Int64()
		if err != nil {
			return nil, invalidArg(name, "%s must be an integer", name)
		}
		n = parsed
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, invalidArg(name, "%s must be an integer", name)
		}
		n = parsed
	default:
		return nil, invalidArg(name, "%s must be a number", name)
	}
	return &n, nil
}

// OptionalBool returns the boolean argument name, or nil when unset.
func OptionalBool(args map[string]any, name string) (*bool, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case bool:
		return &v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, invalidArg(name, "%s must be a boolean", name)
		}
		return &b, nil
	default:
		return nil, invalidArg(name, "%s must be a boolean", name)
	}
}

// ParseStringOrArray parses a parameter that can be either a single string,
// an array of strings, or a JSON array encoded as a string. An unset
// parameter yields nil; any empty element is an error.
func ParseStringOrArray(param any, paramName string) ([]string, error) {
	if param == nil {
		return nil, nil
	}

	var result []string

	switch v := param.(type) {
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, invalidArg(paramName, "%s cannot be empty", paramName)
		}
		if strings.HasPrefix(v, "[") {
			if err := json.Unmarshal([]byte(v), &result); err != nil {
				return nil, invalidArg(paramName, "%s must be a string or array of strings", paramName)
			}
			return checkElements(result, paramName)
		}
		result = []string{v}
	case []string:
		result = append(result, v...)
	case []any:
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, invalidArg(paramName, "%s[%d] must be a string", paramName, i)
			}
			result = append(result, str)
		}
	default:
		return nil, invalidArg(paramName, "%s must be a string or array of strings", paramName)
	}

	return checkElements(result, paramName)
}

func checkElements(values []string, paramName string) ([]string, error) {
	for i := range values {
		values[i] = strings.TrimSpace(values[i])
		if values[i] == "" {
			return nil, invalidArg(paramName, "%s[%d] cannot be empty", paramName, i)
		}
	}
	return values, nil
}

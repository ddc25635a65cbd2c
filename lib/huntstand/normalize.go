package huntstand

import (
	"math"
	"strconv"
	"strings"
)

// AsDict returns v when it is a JSON object, otherwise an empty map. Keeps
// the field extractors from ever dereferencing a nil or a scalar.
func AsDict(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// ObjectList flattens the shapes the upstream returns interchangeably:
// a bare list stays as-is, an {"objects": [...]} envelope yields the inner
// list, any other object yields its values, nil yields nothing.
func ObjectList(payload any) []any {
	switch v := payload.(type) {
	case nil:
		return []any{}
	case []any:
		return v
	case map[string]any:
		if objects, ok := v["objects"].([]any); ok {
			return objects
		}
		values := make([]any, 0, len(v))
		for _, item := range v {
			values = append(values, item)
		}
		return values
	}
	return []any{}
}

// SafeID reports whether a candidate hunt area identifier is safe to
// interpolate into a URL: an integer, or a non-empty string of hex digits
// and dashes. Anything else is refused before any request is issued, since
// identifiers are threaded through from upstream responses.
func SafeID(v any) bool {
	switch id := v.(type) {
	case int:
		return true
	case int64:
		return true
	case float64:
		// JSON numbers decode as float64
		return id == math.Trunc(id)
	case string:
		id = strings.TrimSpace(id)
		if id == "" {
			return false
		}
		for _, c := range id {
			switch {
			case c >= '0' && c <= '9':
			case c >= 'a' && c <= 'f':
			case c >= 'A' && c <= 'F':
			case c == '-':
			default:
				return false
			}
		}
		return true
	}
	return false
}

// IDString renders an identifier for URLs and row fields. JSON integers come
// through as float64 and must not pick up a decimal point.
func IDString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(id)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case float64:
		if id == math.Trunc(id) {
			return strconv.FormatInt(int64(id), 10)
		}
		return strconv.FormatFloat(id, 'f', -1, 64)
	}
	return ""
}

// Capitalize upper-cases the first letter and leaves the rest unchanged.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// stringField is the ordered-fallback extractor used everywhere upstream
// shapes vary: it returns the first key holding a non-empty scalar, rendered
// as a string.
func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch s := v.(type) {
		case string:
			if strings.TrimSpace(s) != "" {
				return s
			}
		case float64:
			return IDString(s)
		case bool:
			return strconv.FormatBool(s)
		}
	}
	return ""
}

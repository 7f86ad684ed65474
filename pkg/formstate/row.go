package formstate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Row is the backend data record a form represents. It is an open mapping;
// well-known flags are addressed through Keys.
type Row map[string]any

// UnmarshalJSON accepts objects, null, and the empty array some backends emit
// for an empty record.
func (r *Row) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		*r = nil
		return nil
	case trimmed[0] == '[':
		var list []any
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return fmt.Errorf("formstate: decode row: %w", err)
		}
		if len(list) != 0 {
			return fmt.Errorf("formstate: decode row: unexpected non-empty array")
		}
		*r = Row{}
		return nil
	}
	var values map[string]any
	if err := json.Unmarshal(trimmed, &values); err != nil {
		return fmt.Errorf("formstate: decode row: %w", err)
	}
	*r = Row(values)
	return nil
}

// Clone returns a shallow copy.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Get returns the value stored under key.
func (r Row) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r[key]
	return v, ok
}

// IsTrue reports whether key holds the boolean true.
func (r Row) IsTrue(key string) bool {
	v, _ := r.Get(key)
	b, ok := v.(bool)
	return ok && b
}

// IsFalse reports whether key holds the boolean false. A missing key is not
// false.
func (r Row) IsFalse(key string) bool {
	v, ok := r.Get(key)
	if !ok {
		return false
	}
	b, isBool := v.(bool)
	return isBool && !b
}

// Truthy applies script-style truthiness to the value under key.
func (r Row) Truthy(key string) bool {
	v, _ := r.Get(key)
	return Truthy(v)
}

// String formats the value under key, "" when absent or null.
func (r Row) String(key string) string {
	v, _ := r.Get(key)
	return Stringify(v)
}

// Truthy mirrors the loose truthiness rules of the browser runtime the wire
// format comes from: nil, false, 0, NaN and "" are false.
func Truthy(v any) bool {
	switch typed := v.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		return typed != ""
	case float64:
		return typed != 0 && !math.IsNaN(typed)
	case float32:
		return typed != 0
	case int:
		return typed != 0
	case int64:
		return typed != 0
	case json.Number:
		f, err := typed.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}

// Stringify renders a row value the way it would be written into an input.
func Stringify(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case json.Number:
		return typed.String()
	case []any:
		parts := make([]string, 0, len(typed))
		for _, item := range typed {
			parts = append(parts, Stringify(item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(typed)
	}
}

package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/hugr-lab/ogcfilter/geometry"
)

// Value is the loosely typed value of a filter field. It tells apart a
// value that is missing from the document from an explicit null, and
// otherwise holds what encoding/json decodes: string, float64, bool,
// []any or map[string]any.
type Value struct {
	raw     any
	defined bool
}

// ValueOf wraps v. Go integer types are stored as float64 so that they
// render like decoded JSON numbers.
func ValueOf(v any) Value {
	return Value{raw: normalize(v), defined: true}
}

// Null is an explicit null value.
var Null = Value{defined: true}

func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case float32:
		return float64(x)
	case Value:
		return x.raw
	}
	return v
}

// IsDefined reports whether the value was present.
func (v Value) IsDefined() bool { return v.defined }

// IsNil reports whether the value is missing or null.
func (v Value) IsNil() bool { return !v.defined || v.raw == nil }

// IsZero reports whether the value is missing. It makes omitzero drop
// undefined values when encoding.
func (v Value) IsZero() bool { return !v.defined }

// Raw returns the decoded value.
func (v Value) Raw() any { return v.raw }

// IsEmptyString reports whether the value is the empty string.
func (v Value) IsEmptyString() bool {
	s, ok := v.raw.(string)
	return ok && s == ""
}

// Truthy reports whether the value is set to something other than null,
// false, zero, NaN or the empty string.
func (v Value) Truthy() bool {
	switch x := v.raw.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case bool:
		return x
	}
	return true
}

// Get returns the member key of an object value. The result is undefined
// when v is not an object or has no such member.
func (v Value) Get(key string) Value {
	m, ok := v.raw.(map[string]any)
	if !ok {
		return Value{}
	}
	member, ok := m[key]
	if !ok {
		return Value{}
	}
	return Value{raw: member, defined: true}
}

// Elems returns the elements of an array value.
func (v Value) Elems() ([]Value, bool) {
	arr, ok := v.raw.([]any)
	if !ok {
		return nil, false
	}
	out := make([]Value, len(arr))
	for i, el := range arr {
		out[i] = Value{raw: el, defined: true}
	}
	return out, true
}

// String renders the value as filter text: numbers in shortest form,
// arrays comma joined, missing values as "undefined".
func (v Value) String() string {
	if !v.defined {
		return "undefined"
	}
	switch x := v.raw.(type) {
	case nil:
		return "null"
	case string:
		return x
	case float64:
		return geometry.FormatNumber(x)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		return geometry.JoinCoordinates(x, ",")
	}
	return "[object Object]"
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.raw)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	v.defined = true
	v.raw = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	return json.Unmarshal(data, &v.raw)
}

// ID is a group identifier. Documents use numbers and strings
// interchangeably, so both decode to the same text.
type ID string

func (id ID) MarshalJSON() ([]byte, error) {
	if f, err := strconv.ParseFloat(string(id), 64); err == nil && geometry.FormatNumber(f) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*id = ""
	case float64:
		*id = ID(geometry.FormatNumber(x))
	case string:
		*id = ID(x)
	default:
		return fmt.Errorf("filter: invalid group id %s", data)
	}
	return nil
}

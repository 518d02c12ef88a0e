package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Value is a tagged union over the two shapes a provider output (or a task's
// expected value) can take: a plain string, or a structured JSON value.
// Code that consumes a Value switches on IsStructured instead of sniffing the
// runtime shape of an untyped blob.
type Value struct {
	Str          string
	Structured   any
	IsStructured bool
}

// StringValue wraps a plain string.
func StringValue(s string) Value {
	return Value{Str: s}
}

// StructuredValue wraps a decoded JSON value (map, slice, number, bool).
func StructuredValue(v any) Value {
	return Value{Structured: v, IsStructured: true}
}

// IsZero reports whether the value was never set.
func (v Value) IsZero() bool {
	return !v.IsStructured && v.Str == ""
}

// Text returns the string form: the string itself, or compact JSON for
// structured values.
func (v Value) Text() string {
	if !v.IsStructured {
		return v.Str
	}
	data, err := json.Marshal(v.Structured)
	if err != nil {
		return fmt.Sprintf("%v", v.Structured)
	}
	return string(data)
}

// AsStructured returns the structured form, parsing string values as JSON on
// demand. The second return is false when the value is a string that does not
// parse as JSON.
func (v Value) AsStructured() (any, bool) {
	if v.IsStructured {
		return v.Structured, true
	}
	var parsed any
	if err := json.Unmarshal([]byte(v.Str), &parsed); err != nil {
		return nil, false
	}
	return parsed, true
}

// Equal compares two values. Strings compare after trimming surrounding
// whitespace; structured values compare by JSON-normalized deep equality.
func (v Value) Equal(other Value) bool {
	if v.IsStructured != other.IsStructured {
		return false
	}
	if !v.IsStructured {
		return strings.TrimSpace(v.Str) == strings.TrimSpace(other.Str)
	}
	return reflect.DeepEqual(normalize(v.Structured), normalize(other.Structured))
}

// normalize round-trips a value through JSON so map[string]any/[]any shapes
// and numeric types compare consistently regardless of how they were decoded.
func normalize(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return v
	}
	return out
}

// MarshalJSON writes the underlying value directly, so baseline files carry
// `"output": "text"` or `"output": {...}` with no wrapper object.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsStructured {
		return json.Marshal(v.Structured)
	}
	return json.Marshal(v.Str)
}

// UnmarshalJSON accepts either shape: a JSON string becomes the string
// variant, anything else becomes structured.
func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = StringValue(s)
		return nil
	}
	var structured any
	if err := json.Unmarshal(data, &structured); err != nil {
		return err
	}
	*v = StructuredValue(structured)
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for task files: a scalar string stays a
// string, mappings and sequences become structured values.
func (v *Value) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err == nil {
		*v = StringValue(s)
		return nil
	}
	var structured any
	if err := unmarshal(&structured); err != nil {
		return err
	}
	*v = StructuredValue(normalize(structured))
	return nil
}

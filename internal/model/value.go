package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ValueKind tags the closed set of representations a field value can take.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueNumber
	ValueJSON
)

// Value is a tagged field value. Exactly one representation is meaningful for
// a given kind: Str for strings, Num for numbers, Raw for structured JSON.
// The kind decides which of the two storage columns a value row populates.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Raw  json.RawMessage
}

// StringValue wraps a raw string.
func StringValue(s string) Value {
	return Value{Kind: ValueString, Str: s}
}

// NumberValue wraps an already-parsed number.
func NumberValue(f float64) Value {
	return Value{Kind: ValueNumber, Num: f}
}

// JSONValue wraps structured JSON that is neither a string nor a number.
func JSONValue(raw json.RawMessage) Value {
	return Value{Kind: ValueJSON, Raw: raw}
}

// ValueFromAny converts a decoded JSON value into its tagged form.
func ValueFromAny(v interface{}) Value {
	switch t := v.(type) {
	case string:
		return StringValue(t)
	case float64:
		return NumberValue(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return NumberValue(f)
		}
		return StringValue(t.String())
	case nil:
		return Value{}
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return Value{}
		}
		return JSONValue(raw)
	}
}

// ValueFromRaw converts a raw JSON document into its tagged form.
func ValueFromRaw(raw json.RawMessage) Value {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return StringValue(string(raw))
	}
	return ValueFromAny(v)
}

// IsEmpty reports whether the value carries no data.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case ValueString:
		return v.Str == ""
	case ValueNumber:
		return false
	case ValueJSON:
		trimmed := strings.TrimSpace(string(v.Raw))
		return trimmed == "" || trimmed == "null"
	}
	return true
}

// Float parses the value as a number. Strings are parsed leniently; structured
// JSON never parses. The boolean reports whether a number was obtained.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case ValueNumber:
		return v.Num, true
	case ValueString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// ExportString renders the value for tabular output.
func (v Value) ExportString() string {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ValueJSON:
		if v.IsEmpty() {
			return ""
		}
		return string(v.Raw)
	}
	return ""
}

// MarshalJSON emits the underlying value, not the tagged wrapper.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueString:
		return json.Marshal(v.Str)
	case ValueNumber:
		return json.Marshal(v.Num)
	case ValueJSON:
		if len(v.Raw) == 0 {
			return []byte("null"), nil
		}
		return v.Raw, nil
	}
	return []byte("null"), nil
}

// UnmarshalJSON tags an incoming JSON value.
func (v *Value) UnmarshalJSON(data []byte) error {
	*v = ValueFromRaw(data)
	return nil
}

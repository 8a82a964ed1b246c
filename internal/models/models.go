package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant of a JSON value a Value holds.
type Kind int

const (
	Null Kind = iota
	Bool
	Integer
	Decimal
	String
	Object
	Array
)

var kindNames = [...]string{"null", "boolean", "integer", "decimal", "string", "object", "array"}

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsScalar reports whether the kind is a leaf kind (anything but Object and Array).
func (k Kind) IsScalar() bool {
	return k != Object && k != Array
}

// Value is a parsed JSON value. Only the fields relevant to Kind are set:
// Bool for Bool, Int for Integer, Float for Decimal, Str for String (and the
// original literal for numbers), Members for Object and Items for Array.
type Value struct {
	Kind    Kind
	Bool    bool
	Int     int64
	Float   float64
	Str     string
	Members []Member
	Items   []Value
}

// Member is a single key/value pair of a JSON object. Objects keep their
// members in document order.
type Member struct {
	Key   string
	Value Value
}

// NullValue returns the JSON null.
func NullValue() Value { return Value{Kind: Null} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{Kind: Bool, Bool: b} }

// IntValue wraps an integer.
func IntValue(i int64) Value {
	return Value{Kind: Integer, Int: i, Str: strconv.FormatInt(i, 10)}
}

// DecimalValue wraps a non-integer number.
func DecimalValue(f float64) Value {
	return Value{Kind: Decimal, Float: f, Str: strconv.FormatFloat(f, 'g', -1, 64)}
}

// StringValue wraps a string.
func StringValue(s string) Value { return Value{Kind: String, Str: s} }

// ObjectValue builds an object from members in the given order.
func ObjectValue(members ...Member) Value {
	if members == nil {
		members = []Member{}
	}
	return Value{Kind: Object, Members: members}
}

// ArrayValue builds an array from items.
func ArrayValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: Array, Items: items}
}

// IsNull reports whether v is the JSON null.
func (v Value) IsNull() bool { return v.Kind == Null }

// Len returns the number of members of an object or items of an array, and 0
// for scalars.
func (v Value) Len() int {
	switch v.Kind {
	case Object:
		return len(v.Members)
	case Array:
		return len(v.Items)
	default:
		return 0
	}
}

// Get returns the member value stored under key.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Text renders a scalar for display. Null renders as the empty string;
// containers render as compact JSON.
func (v Value) Text() string {
	switch v.Kind {
	case Null:
		return ""
	case Bool:
		return strconv.FormatBool(v.Bool)
	case Integer, Decimal, String:
		return v.Str
	default:
		return v.JSON()
	}
}

// JSON renders v as compact JSON, preserving member order.
func (v Value) JSON() string {
	var sb strings.Builder
	v.writeJSON(&sb)
	return sb.String()
}

func (v Value) writeJSON(sb *strings.Builder) {
	switch v.Kind {
	case Null:
		sb.WriteString("null")
	case Bool:
		sb.WriteString(strconv.FormatBool(v.Bool))
	case Integer, Decimal:
		sb.WriteString(v.Str)
	case String:
		sb.WriteString(strconv.Quote(v.Str))
	case Object:
		sb.WriteByte('{')
		for i, m := range v.Members {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Quote(m.Key))
			sb.WriteByte(':')
			m.Value.writeJSON(sb)
		}
		sb.WriteByte('}')
	case Array:
		sb.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				sb.WriteByte(',')
			}
			item.writeJSON(sb)
		}
		sb.WriteByte(']')
	}
}

// Interface converts v to the plain Go representation used by encoding
// libraries: nil, bool, int64, float64, string, map[string]any and []any.
// Member order is lost in the map form. Decimals outside the float64 range
// are returned as a json.Number holding the original literal.
func (v Value) Interface() any {
	switch v.Kind {
	case Bool:
		return v.Bool
	case Integer:
		return v.Int
	case Decimal:
		if math.IsInf(v.Float, 0) || math.IsNaN(v.Float) {
			return json.Number(v.Str)
		}
		return v.Float
	case String:
		return v.Str
	case Object:
		m := make(map[string]any, len(v.Members))
		for _, member := range v.Members {
			m[member.Key] = member.Value.Interface()
		}
		return m
	case Array:
		items := make([]any, len(v.Items))
		for i, item := range v.Items {
			items[i] = item.Interface()
		}
		return items
	default:
		return nil
	}
}

// Document is one parsed JSON input together with where it came from.
type Document struct {
	Source string
	Root   Value
}

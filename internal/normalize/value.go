package normalize

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Kind tags a raw field value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a raw field value as it arrived in the payload.
// The zero Value is null.
type Value struct {
	kind Kind
	str  string // string payload, or the literal of a number
	num  float64
	b    bool
	obj  map[string]Value
	list []Value
}

// Null is the null value.
var Null = Value{}

// String builds a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number builds a numeric value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f, str: strconv.FormatFloat(f, 'f', -1, 64)}
}

// Bool builds a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// FromAny converts a decoded JSON tree (encoding/json into any, with or
// without UseNumber) into a Value. Unsupported Go types become null.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null
	case Value:
		return t
	case string:
		return String(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return String(t.String())
		}
		return Value{kind: KindNumber, num: f, str: t.String()}
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Value{kind: KindNumber, num: float64(t), str: strconv.Itoa(t)}
	case int64:
		return Value{kind: KindNumber, num: float64(t), str: strconv.FormatInt(t, 10)}
	case bool:
		return Bool(t)
	case map[string]any:
		obj := make(map[string]Value, len(t))
		for k, item := range t {
			obj[k] = FromAny(item)
		}
		return Value{kind: KindObject, obj: obj}
	case map[string]string:
		obj := make(map[string]Value, len(t))
		for k, item := range t {
			obj[k] = String(item)
		}
		return Value{kind: KindObject, obj: obj}
	case []any:
		list := make([]Value, len(t))
		for i, item := range t {
			list[i] = FromAny(item)
		}
		return Value{kind: KindList, list: list}
	default:
		return Null
	}
}

// Decode parses JSON bytes into a Value, keeping number literals exact.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Null, err
	}
	return FromAny(raw), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

// Any converts back to plain Go values.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return json.Number(v.str)
	case KindBool:
		return v.b
	case KindObject:
		m := make(map[string]any, len(v.obj))
		for k, item := range v.obj {
			m[k] = item.Any()
		}
		return m
	case KindList:
		l := make([]any, len(v.list))
		for i, item := range v.list {
			l[i] = item.Any()
		}
		return l
	default:
		return nil
	}
}

// Kind returns the tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports a null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload of a string value.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// Float returns the payload of a numeric value.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Field returns a member of an object value, null otherwise.
func (v Value) Field(key string) Value {
	if v.kind != KindObject {
		return Null
	}
	return v.obj[key]
}

// Has reports whether an object value carries key.
func (v Value) Has(key string) bool {
	if v.kind != KindObject {
		return false
	}
	_, ok := v.obj[key]
	return ok
}

// Keys returns the member names of an object value.
func (v Value) Keys() []string {
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	return keys
}

// Path descends through objects by dotted key: "CompanyName.value".
// A purely numeric segment indexes into a list.
func (v Value) Path(path string) Value {
	cur := v
	for _, seg := range strings.Split(path, ".") {
		switch cur.kind {
		case KindObject:
			cur = cur.obj[seg]
		case KindList:
			i, err := strconv.Atoi(seg)
			if err != nil {
				return Null
			}
			cur = cur.Index(i)
		default:
			return Null
		}
	}
	return cur
}

// With returns a copy of an object value with key set. A non-object
// receiver yields a one-member object.
func (v Value) With(key string, item Value) Value {
	obj := make(map[string]Value, len(v.obj)+1)
	if v.kind == KindObject {
		for k, existing := range v.obj {
			obj[k] = existing
		}
	}
	obj[key] = item
	return Value{kind: KindObject, obj: obj}
}

// Index returns an element of a list value, null when out of range.
func (v Value) Index(i int) Value {
	if v.kind != KindList || i < 0 || i >= len(v.list) {
		return Null
	}
	return v.list[i]
}

// List returns the elements of a list value.
func (v Value) List() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.list
}

// Len is the element count of a list or object.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindObject:
		return len(v.obj)
	default:
		return 0
	}
}

// Number normalizes a raw value: numbers pass through, strings use ParseNumber.
func (e *Engine) Number(v Value) *float64 {
	switch v.kind {
	case KindNumber:
		if v.str != "" {
			return e.ParseNumber(v.str)
		}
		f := v.num
		return &f
	case KindString:
		return e.ParseNumber(v.str)
	default:
		return nil
	}
}

// Int normalizes a raw value to an integer; non-integral numbers → nil.
func (e *Engine) Int(v Value) *int64 {
	switch v.kind {
	case KindNumber, KindString:
		return e.ParseInt(v.str)
	default:
		return nil
	}
}

// Magnitude normalizes a standalone magnitude suffix.
func (e *Engine) Magnitude(v Value) *float64 {
	if v.kind != KindString {
		return nil
	}
	return e.ParseMagnitude(v.str)
}

// Bool normalizes a raw value to a boolean.
func (e *Engine) Bool(v Value) *bool {
	switch v.kind {
	case KindBool:
		b := v.b
		return &b
	case KindString, KindNumber:
		return e.ParseBool(v.str)
	default:
		return nil
	}
}

// Text normalizes a raw value to a canonical string. Numbers and booleans
// are rendered; objects and lists → nil.
func (e *Engine) Text(v Value) *string {
	switch v.kind {
	case KindString:
		return e.ParseText(v.str)
	case KindNumber:
		s := v.str
		if s == "" {
			s = FormatNumber(v.num)
		}
		return &s
	case KindBool:
		s := strconv.FormatBool(v.b)
		return &s
	default:
		return nil
	}
}

// Date normalizes a raw string value to a time.
func (e *Engine) Date(v Value) *time.Time {
	if v.kind != KindString {
		return nil
	}
	return e.ParseDate(v.str)
}

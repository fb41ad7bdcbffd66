package pricing

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindInvalid Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindObject
)

// Value is a tagged union over the types a pricing condition can touch:
// string, number, bool, list, or a nested object. Rule operands and the
// evaluation context are both expressed as Values, so condition
// evaluation never needs reflection or untyped maps.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	list []Value
	obj  map[string]Value
}

func String(s string) Value { return Value{kind: KindString, str: s} }

func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func List(items ...Value) Value { return Value{kind: KindList, list: items} }

func Object(f map[string]Value) Value { return Value{kind: KindObject, obj: f} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// Num returns the numeric payload and whether the value is a number.
func (v Value) Num() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Str returns the string payload and whether the value is a string.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// Items returns the list payload and whether the value is a list.
func (v Value) Items() ([]Value, bool) {
	return v.list, v.kind == KindList
}

// Equal reports strict equality: the kinds must match and so must the
// payload. Composite values (lists, objects) never compare equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	default:
		return false
	}
}

// Resolve walks a dot-path (e.g. "user.location.region") through nested
// object values. The second return is false when any segment is absent
// or a non-object is traversed; no error is raised.
func (v Value) Resolve(path string) (Value, bool) {
	current := v
	for _, segment := range strings.Split(path, ".") {
		if current.kind != KindObject {
			return Value{}, false
		}
		next, ok := current.obj[segment]
		if !ok {
			return Value{}, false
		}
		current = next
	}
	return current, true
}

// UnmarshalJSON decodes a JSON scalar or array into the matching
// variant. Objects are accepted for completeness; condition operands in
// practice are scalars or lists.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*v = Value{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
	case '[':
		var items []Value
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*v = List(items...)
	case '{':
		var fields map[string]Value
		if err := json.Unmarshal(data, &fields); err != nil {
			return err
		}
		*v = Object(fields)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("unsupported condition value %s: %w", trimmed, err)
		}
		*v = Number(n)
	}
	return nil
}

// MarshalJSON encodes the underlying variant.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case KindObject:
		return json.Marshal(v.obj)
	default:
		return []byte("null"), nil
	}
}

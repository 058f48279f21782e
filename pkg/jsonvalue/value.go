// Package jsonvalue provides the tagged-union JSON value representation shared
// by every Forge subsystem: parsed widget literals, expression results,
// provider state, and logic node props all flow through a jsonvalue.Value
// rather than a bare any.
package jsonvalue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind represents the type of a JSON value.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindObject
	KindArray
	KindString
	KindNumber
	KindInt64
	KindBoolean
)

// String returns a human-readable form of the kind.
func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "Undefined"
	case KindNull:
		return "Null"
	case KindObject:
		return "Object"
	case KindArray:
		return "Array"
	case KindString:
		return "String"
	case KindNumber:
		return "Number"
	case KindInt64:
		return "Int64"
	case KindBoolean:
		return "Boolean"
	default:
		return "Unknown"
	}
}

// Value represents a JSON-like value in memory. It intentionally avoids bare
// any so every subsystem can switch on Kind instead of type-asserting.
type Value struct {
	kind Kind

	obj *orderedmap.OrderedMap[string, *Value]
	arr []*Value

	str  string
	num  float64
	i64  int64
	bool bool
}

// Kind returns the kind of the value. A nil receiver is Undefined.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindUndefined
	}
	return v.kind
}

// NewUndefined returns a value flagged as undefined.
func NewUndefined() *Value { return &Value{kind: KindUndefined} }

// NewNull returns a JSON null value.
func NewNull() *Value { return &Value{kind: KindNull} }

// NewBoolean returns a JSON boolean value.
func NewBoolean(b bool) *Value { return &Value{kind: KindBoolean, bool: b} }

// NewNumber returns a JSON floating-point number value.
func NewNumber(n float64) *Value { return &Value{kind: KindNumber, num: n} }

// NewInt64 returns a JSON integer value that round-trips as a whole number.
func NewInt64(n int64) *Value { return &Value{kind: KindInt64, i64: n} }

// NewString returns a JSON string value.
func NewString(s string) *Value { return &Value{kind: KindString, str: s} }

// NewArray returns an empty JSON array value.
func NewArray() *Value { return &Value{kind: KindArray, arr: make([]*Value, 0)} }

// NewObject returns an empty JSON object value with insertion-order tracking.
func NewObject() *Value {
	return &Value{kind: KindObject, obj: orderedmap.New[string, *Value]()}
}

// ObjectGet returns the value associated with key, or nil if absent or the
// receiver is not an object.
func (v *Value) ObjectGet(key string) *Value {
	if v == nil || v.kind != KindObject {
		return nil
	}
	val, ok := v.obj.Get(key)
	if !ok {
		return nil
	}
	return val
}

// ObjectSet associates key with child, preserving insertion order for new keys.
func (v *Value) ObjectSet(key string, child *Value) {
	if v == nil || v.kind != KindObject {
		return
	}
	v.obj.Set(key, child)
}

// ObjectDelete removes key if present, reporting whether it existed.
func (v *Value) ObjectDelete(key string) bool {
	if v == nil || v.kind != KindObject {
		return false
	}
	return v.obj.Delete(key)
}

// ObjectKeys returns the object's keys in insertion order.
func (v *Value) ObjectKeys() []string {
	if v == nil || v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, v.obj.Len())
	for pair := v.obj.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// ObjectSortedKeys returns the object's keys in lexicographic byte order,
// the order every schema/render consumer must iterate in for deterministic
// output.
func (v *Value) ObjectSortedKeys() []string {
	keys := v.ObjectKeys()
	sort.Strings(keys)
	return keys
}

// ArrayLen returns the number of elements, or zero if not an array.
func (v *Value) ArrayLen() int {
	if v == nil || v.kind != KindArray {
		return 0
	}
	return len(v.arr)
}

// ArrayGet returns the element at index, or nil if out of bounds.
func (v *Value) ArrayGet(index int) *Value {
	if v == nil || v.kind != KindArray || index < 0 || index >= len(v.arr) {
		return nil
	}
	return v.arr[index]
}

// ArrayAppend appends an element to the array.
func (v *Value) ArrayAppend(child *Value) {
	if v == nil || v.kind != KindArray {
		return
	}
	v.arr = append(v.arr, child)
}

// ArrayElements returns a shallow copy of the array's elements.
func (v *Value) ArrayElements() []*Value {
	if v == nil || v.kind != KindArray {
		return nil
	}
	out := make([]*Value, len(v.arr))
	copy(out, v.arr)
	return out
}

// BoolValue returns the boolean payload, false if not a KindBoolean.
func (v *Value) BoolValue() bool {
	if v == nil || v.kind != KindBoolean {
		return false
	}
	return v.bool
}

// StringValue returns the string payload, "" if not a KindString.
func (v *Value) StringValue() string {
	if v == nil || v.kind != KindString {
		return ""
	}
	return v.str
}

// NumberValue returns the value as a float64 regardless of whether it was
// stored as KindNumber or KindInt64; zero otherwise.
func (v *Value) NumberValue() float64 {
	if v == nil {
		return 0
	}
	switch v.kind {
	case KindNumber:
		return v.num
	case KindInt64:
		return float64(v.i64)
	default:
		return 0
	}
}

// Int64Value returns the int64 payload, 0 if not a KindInt64.
func (v *Value) Int64Value() int64 {
	if v == nil || v.kind != KindInt64 {
		return 0
	}
	return v.i64
}

// IsNumeric reports whether the value holds KindNumber or KindInt64.
func (v *Value) IsNumeric() bool {
	return v.Kind() == KindNumber || v.Kind() == KindInt64
}

// Truthy implements the spec's truthiness predicate: false, null, 0, "",
// [], {} are false; everything else is true.
func (v *Value) Truthy() bool {
	switch v.Kind() {
	case KindUndefined, KindNull:
		return false
	case KindBoolean:
		return v.bool
	case KindNumber:
		return v.num != 0
	case KindInt64:
		return v.i64 != 0
	case KindString:
		return v.str != ""
	case KindArray:
		return len(v.arr) > 0
	case KindObject:
		return v.obj.Len() > 0
	default:
		return false
	}
}

// Equal reports structural equality between two values, used throughout the
// merge engine's scalar rule and the expression language's == operator.
func Equal(a, b *Value) bool {
	ak, bk := a.Kind(), b.Kind()
	if ak == KindUndefined && bk == KindUndefined {
		return true
	}
	if ak != bk {
		// KindNumber and KindInt64 compare by numeric value.
		if a.IsNumeric() && b.IsNumeric() {
			return a.NumberValue() == b.NumberValue()
		}
		return false
	}
	switch ak {
	case KindNull:
		return true
	case KindBoolean:
		return a.bool == b.bool
	case KindNumber:
		return a.num == b.num
	case KindInt64:
		return a.i64 == b.i64
	case KindString:
		return a.str == b.str
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if a.obj.Len() != b.obj.Len() {
			return false
		}
		for _, key := range a.ObjectKeys() {
			bv := b.ObjectGet(key)
			if bv == nil {
				return false
			}
			if !Equal(a.ObjectGet(key), bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Clone returns a deep copy, used by the merge engine to avoid aliasing
// between base/left/right and the freshly allocated merged tree.
func Clone(v *Value) *Value {
	if v == nil {
		return nil
	}
	switch v.kind {
	case KindArray:
		out := NewArray()
		for _, elem := range v.arr {
			out.ArrayAppend(Clone(elem))
		}
		return out
	case KindObject:
		out := NewObject()
		for _, key := range v.ObjectKeys() {
			out.ObjectSet(key, Clone(v.ObjectGet(key)))
		}
		return out
	default:
		cp := *v
		return &cp
	}
}

// FromAny builds a Value from decoded JSON/YAML data (map[string]any,
// []any, string, bool, float64/int, nil).
func FromAny(data any) *Value {
	switch val := data.(type) {
	case nil:
		return NewNull()
	case *Value:
		return val
	case bool:
		return NewBoolean(val)
	case string:
		return NewString(val)
	case int:
		return NewInt64(int64(val))
	case int64:
		return NewInt64(val)
	case float64:
		if val == float64(int64(val)) {
			return NewNumber(val)
		}
		return NewNumber(val)
	case []any:
		out := NewArray()
		for _, elem := range val {
			out.ArrayAppend(FromAny(elem))
		}
		return out
	case map[string]any:
		out := NewObject()
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out.ObjectSet(k, FromAny(val[k]))
		}
		return out
	case map[any]any: // gopkg.in/yaml.v3 untyped decode shape
		out := NewObject()
		keys := make([]string, 0, len(val))
		strKeyed := make(map[string]any, len(val))
		for k, v := range val {
			ks := fmt.Sprintf("%v", k)
			keys = append(keys, ks)
			strKeyed[ks] = v
		}
		sort.Strings(keys)
		for _, k := range keys {
			out.ObjectSet(k, FromAny(strKeyed[k]))
		}
		return out
	default:
		return NewUndefined()
	}
}

// ToAny converts a Value into a plain Go value suitable for encoding/json or
// for handing to callers outside the tagged-union boundary.
func ToAny(v *Value) any {
	switch v.Kind() {
	case KindUndefined, KindNull:
		return nil
	case KindBoolean:
		return v.BoolValue()
	case KindNumber:
		return v.NumberValue()
	case KindInt64:
		return v.Int64Value()
	case KindString:
		return v.StringValue()
	case KindArray:
		elems := v.ArrayElements()
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = ToAny(e)
		}
		return out
	case KindObject:
		out := make(map[string]any, v.obj.Len())
		for _, k := range v.ObjectKeys() {
			out[k] = ToAny(v.ObjectGet(k))
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler, preserving object key insertion
// order (encoding/json's map marshaling does not).
func (v *Value) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	switch v.kind {
	case KindUndefined, KindNull:
		return []byte("null"), nil
	case KindBoolean:
		if v.bool {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case KindInt64:
		return []byte(strconv.FormatInt(v.i64, 10)), nil
	case KindNumber:
		return json.Marshal(v.num)
	case KindString:
		return json.Marshal(v.str)
	case KindArray:
		return json.Marshal(v.arr)
	case KindObject:
		var buf []byte
		buf = append(buf, '{')
		for i, key := range v.ObjectKeys() {
			if i > 0 {
				buf = append(buf, ',')
			}
			keyJSON, err := json.Marshal(key)
			if err != nil {
				return nil, err
			}
			buf = append(buf, keyJSON...)
			buf = append(buf, ':')
			valJSON, err := json.Marshal(v.ObjectGet(key))
			if err != nil {
				return nil, err
			}
			buf = append(buf, valJSON...)
		}
		buf = append(buf, '}')
		return buf, nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler. Object key order after decode
// is lexicographic rather than wire order, since encoding/json's map
// decoding does not preserve it.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = *fromDecoded(raw)
	return nil
}

func fromDecoded(raw any) *Value {
	switch val := raw.(type) {
	case nil:
		return NewNull()
	case bool:
		return NewBoolean(val)
	case string:
		return NewString(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return NewInt64(i)
		}
		f, _ := val.Float64()
		return NewNumber(f)
	case []any:
		out := NewArray()
		for _, elem := range val {
			out.ArrayAppend(fromDecoded(elem))
		}
		return out
	case map[string]any:
		out := NewObject()
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out.ObjectSet(k, fromDecoded(val[k]))
		}
		return out
	default:
		return NewUndefined()
	}
}

// ParseNumericLiteral tries a base-10 signed 64-bit integer first, falling
// back to a finite float, mirroring the source parser's "try int64 first,
// then float" literal rule. ok is false if text is neither.
func ParseNumericLiteral(text string) (value *Value, ok bool) {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return NewInt64(i), true
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, false
	}
	return NewNumber(f), true
}


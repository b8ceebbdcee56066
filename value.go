package operand

import (
	"fmt"
	"math"
	"reflect"
	"sort"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindList
	KindMap
	KindStruct
)

// String returns the lowercase name of the kind, used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindStruct:
		return "struct"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is the universal payload container for requests, responses, and
// event data. It is a closed tagged union: exactly one variant is set,
// determined by Kind(). Values are immutable once constructed; conversion
// never mutates the source.
type Value struct {
	kind Kind

	b  bool
	i  int64
	f  float64
	s  string
	bs []byte

	list []Value
	m    map[string]Value

	// Struct variant: an opaque payload plus the type id used to find
	// the codec that produced it.
	structType string
	structVal  any
}

// Null returns the null Value. The zero Value is also null.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating-point Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Bytes returns a byte-slice Value. The slice is not copied; callers
// must not mutate it afterwards.
func Bytes(b []byte) Value { return Value{kind: KindBytes, bs: b} }

// List returns an ordered sequence Value.
func List(vs ...Value) Value { return Value{kind: KindList, list: vs} }

// Map returns a string-keyed map Value. The map is not copied; callers
// must not mutate it afterwards.
func Map(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: KindMap, m: m}
}

// Pair is a key-value entry for NewMap.
type Pair struct {
	Key string
	Val Value
}

// P builds a Pair. Shorthand for map-literal-free construction:
//
//	operand.NewMap(operand.P("a", operand.Float(2)), operand.P("b", operand.Float(3)))
func P(key string, val Value) Pair { return Pair{Key: key, Val: val} }

// NewMap builds a map Value from pairs. Later pairs overwrite earlier
// ones with the same key.
func NewMap(pairs ...Pair) Value {
	m := make(map[string]Value, len(pairs))
	for _, p := range pairs {
		m[p.Key] = p.Val
	}
	return Value{kind: KindMap, m: m}
}

// Struct returns a Value holding an opaque typed payload. typeID must
// match the id the payload's codec was registered under.
func Struct(typeID string, v any) Value {
	return Value{kind: KindStruct, structType: typeID, structVal: v}
}

// From builds a Value from a native Go value. Supported inputs are the
// direct variant types, all Go integer and float widths, []any, and
// map[string]any (converted recursively). Anything else becomes a
// string via fmt.Sprint, which keeps construction total for logging
// and test helpers; use Struct for typed payloads.
func From(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return Int(int64(t))
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case string:
		return String(t)
	case []byte:
		return Bytes(t)
	case []any:
		vs := make([]Value, len(t))
		for i, e := range t {
			vs[i] = From(e)
		}
		return List(vs...)
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, e := range t {
			m[k] = From(e)
		}
		return Map(m)
	default:
		return String(fmt.Sprint(v))
	}
}

// Kind returns the variant held by the Value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the Value is the null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean variant. No coercion from other variants.
func (v Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, &ConversionError{Expected: TagBool, Actual: v.kind}
	}
	return v.b, nil
}

// AsInt64 returns the integer variant.
func (v Value) AsInt64() (int64, error) {
	if v.kind != KindInt {
		return 0, &ConversionError{Expected: TagInt64, Actual: v.kind}
	}
	return v.i, nil
}

// AsInt32 returns the integer variant narrowed to 32 bits. Values
// outside the int32 range fail with an overflow error rather than
// wrapping silently.
func (v Value) AsInt32() (int32, error) {
	if v.kind != KindInt {
		return 0, &ConversionError{Expected: TagInt32, Actual: v.kind}
	}
	if v.i < math.MinInt32 || v.i > math.MaxInt32 {
		return 0, &ConversionError{Expected: TagInt32, Actual: v.kind, Overflow: true}
	}
	return int32(v.i), nil
}

// AsFloat64 returns the float variant, widening from int. This is the
// only implicit numeric conversion.
func (v Value) AsFloat64() (float64, error) {
	switch v.kind {
	case KindFloat:
		return v.f, nil
	case KindInt:
		return float64(v.i), nil
	default:
		return 0, &ConversionError{Expected: TagFloat64, Actual: v.kind}
	}
}

// AsString returns the string variant. Numbers and booleans are
// rejected rather than stringified.
func (v Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", &ConversionError{Expected: TagString, Actual: v.kind}
	}
	return v.s, nil
}

// AsBytes returns the byte-slice variant.
func (v Value) AsBytes() ([]byte, error) {
	if v.kind != KindBytes {
		return nil, &ConversionError{Expected: TagBytes, Actual: v.kind}
	}
	return v.bs, nil
}

// AsList returns the sequence variant. Callers must not mutate the
// returned slice.
func (v Value) AsList() ([]Value, error) {
	if v.kind != KindList {
		return nil, &ConversionError{Expected: TypeTag{kind: tagList}, Actual: v.kind}
	}
	return v.list, nil
}

// AsMap returns the map variant. Callers must not mutate the returned map.
func (v Value) AsMap() (map[string]Value, error) {
	if v.kind != KindMap {
		return nil, &ConversionError{Expected: TypeTag{kind: tagMap}, Actual: v.kind}
	}
	return v.m, nil
}

// Get returns the entry under key when the Value is a map.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	e, ok := v.m[key]
	return e, ok
}

// Len returns the number of elements for list and map variants, and 0
// otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindMap:
		return len(v.m)
	default:
		return 0
	}
}

// StructInfo returns the type id and payload of a struct variant.
func (v Value) StructInfo() (typeID string, payload any, ok bool) {
	if v.kind != KindStruct {
		return "", nil, false
	}
	return v.structType, v.structVal, true
}

// Keys returns the sorted keys of a map variant. Sorted so diagnostics
// and tests are deterministic.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports deep equality of two Values. Int and Float variants
// are distinct even when numerically equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindBytes:
		return string(v.bs) == string(o.bs)
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, e := range v.m {
			oe, ok := o.m[k]
			if !ok || !e.Equal(oe) {
				return false
			}
		}
		return true
	case KindStruct:
		return v.structType == o.structType && reflect.DeepEqual(v.structVal, o.structVal)
	default:
		return false
	}
}

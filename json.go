package operand

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned by FromJSON when the input is not valid JSON.
var ErrInvalidJSON = errors.New("invalid JSON")

// FromJSON builds a Value tree from raw JSON. This is the bridge a
// transport uses to hand decoded payloads to the dispatcher. Numbers
// without a fraction or exponent become Int; everything else with a
// numeric type becomes Float.
func FromJSON(data []byte) (Value, error) {
	if !gjson.ValidBytes(data) {
		return Value{}, ErrInvalidJSON
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

func fromResult(r gjson.Result) Value {
	switch {
	case r.Type == gjson.Null:
		return Null()
	case r.Type == gjson.False:
		return Bool(false)
	case r.Type == gjson.True:
		return Bool(true)
	case r.Type == gjson.String:
		return String(r.String())
	case r.Type == gjson.Number:
		if !strings.ContainsAny(r.Raw, ".eE") {
			return Int(r.Int())
		}
		return Float(r.Float())
	case r.IsArray():
		arr := r.Array()
		vs := make([]Value, len(arr))
		for i, e := range arr {
			vs[i] = fromResult(e)
		}
		return List(vs...)
	case r.IsObject():
		m := make(map[string]Value)
		r.ForEach(func(key, val gjson.Result) bool {
			m[key.String()] = fromResult(val)
			return true
		})
		return Map(m)
	default:
		return Null()
	}
}

// Interface returns the native Go representation of the Value: nil,
// bool, int64, float64, string, []byte, []any, or map[string]any.
// Struct variants return their opaque payload.
func (v Value) Interface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindBytes:
		return v.bs
	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, e := range v.m {
			out[k] = e.Interface()
		}
		return out
	case KindStruct:
		return v.structVal
	default:
		return nil
	}
}

// MarshalJSON renders the Value as JSON. Bytes become base64 strings,
// struct variants marshal their payload directly.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

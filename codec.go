package operand

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

var (
	validate      = validator.New()
	schemaDecoder = schema.NewDecoder()
)

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
}

// Codec converts between Values and one concrete struct type. Codecs
// are registered per type id before first use; struct parameter
// extraction and struct return encoding both go through them.
type Codec interface {
	// Decode converts a Value into the concrete type. Implementations
	// should validate the result before returning it.
	Decode(v Value) (any, error)

	// Encode converts the concrete type back into a Value.
	Encode(v any) (Value, error)
}

var codecTable = struct {
	sync.RWMutex
	m map[string]Codec
}{m: make(map[string]Codec)}

// RegisterCodec installs a codec under typeID, replacing any previous
// codec for the same id. Must be called before the first conversion
// that names the id.
func RegisterCodec(typeID string, c Codec) {
	codecTable.Lock()
	defer codecTable.Unlock()
	codecTable.m[typeID] = c
}

func codecFor(typeID string) (Codec, bool) {
	codecTable.RLock()
	defer codecTable.RUnlock()
	c, ok := codecTable.m[typeID]
	return c, ok
}

// typeName returns the process-stable identity string for a reflect
// type, with pointers stripped.
func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// StructTagFor returns the struct TypeTag for T, keyed by T's
// fully qualified type name.
func StructTagFor[T any]() TypeTag {
	return TagStruct(typeName(reflect.TypeOf((*T)(nil)).Elem()))
}

// RegisterJSONCodec registers a JSONCodec for T under T's type name and
// returns the matching tag. The usual one-liner during startup:
//
//	pointTag := operand.RegisterJSONCodec[Point]()
func RegisterJSONCodec[T any]() TypeTag {
	tag := StructTagFor[T]()
	RegisterCodec(tag.structType, JSONCodec[T]())
	return tag
}

// RegisterSchemaCodec registers a SchemaCodec for T under T's type name
// and returns the matching tag.
func RegisterSchemaCodec[T any]() TypeTag {
	tag := StructTagFor[T]()
	RegisterCodec(tag.structType, SchemaCodec[T]())
	return tag
}

// validateDecoded runs struct validation on a decoded value. Non-struct
// types pass through; the validator only understands structs.
func validateDecoded(v any) error {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	return validate.Struct(v)
}

// JSONCodec returns a Codec that round-trips T through JSON. This is
// the default codec for request/response payloads: the Value is
// rendered to JSON, unmarshaled into T, and validated.
func JSONCodec[T any]() Codec { return jsonCodec[T]{} }

type jsonCodec[T any] struct{}

func (jsonCodec[T]) Decode(v Value) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	if err := validateDecoded(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (jsonCodec[T]) Encode(v any) (Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Value{}, err
	}
	return FromJSON(data)
}

// SchemaCodec returns a Codec that decodes flat string-keyed map
// payloads into T, the shape a gateway produces from query or form
// parameters. Scalar leaves are rendered to strings and fed through
// the schema decoder; validation runs afterwards. Encoding falls back
// to the JSON representation.
func SchemaCodec[T any]() Codec { return schemaCodec[T]{} }

type schemaCodec[T any] struct{}

func (schemaCodec[T]) Decode(v Value) (any, error) {
	m, err := v.AsMap()
	if err != nil {
		return nil, err
	}
	vals := make(url.Values, len(m))
	for k, e := range m {
		s, err := leafString(e)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		vals.Set(k, s)
	}
	var out T
	if err := schemaDecoder.Decode(&out, vals); err != nil {
		return nil, err
	}
	if err := validateDecoded(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (schemaCodec[T]) Encode(v any) (Value, error) {
	return jsonCodec[T]{}.Encode(v)
}

// leafString renders a scalar Value for the schema decoder.
func leafString(v Value) (string, error) {
	switch v.Kind() {
	case KindString:
		s, _ := v.AsString()
		return s, nil
	case KindInt:
		i, _ := v.AsInt64()
		return strconv.FormatInt(i, 10), nil
	case KindFloat:
		f, _ := v.AsFloat64()
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	case KindBool:
		b, _ := v.AsBool()
		return strconv.FormatBool(b), nil
	default:
		return "", &ConversionError{Expected: TagString, Actual: v.Kind()}
	}
}

package operand

import "fmt"

type tagKind int

const (
	tagInt32 tagKind = iota
	tagInt64
	tagFloat64
	tagBool
	tagString
	tagBytes
	tagStruct
	tagList
	tagMap
)

// TypeTag is the declared semantic type of a handler parameter. It is
// decided once at registration time and never re-derived at dispatch
// time. The closed set of parameter tags is Int32, Int64, Float64,
// Bool, String, Bytes, and Struct(type id); list and map tags only
// appear in error reporting.
type TypeTag struct {
	kind       tagKind
	structType string
}

var (
	TagInt32   = TypeTag{kind: tagInt32}
	TagInt64   = TypeTag{kind: tagInt64}
	TagFloat64 = TypeTag{kind: tagFloat64}
	TagBool    = TypeTag{kind: tagBool}
	TagString  = TypeTag{kind: tagString}
	TagBytes   = TypeTag{kind: tagBytes}
)

// TagStruct returns the tag for a struct parameter decoded by the codec
// registered under typeID.
func TagStruct(typeID string) TypeTag {
	return TypeTag{kind: tagStruct, structType: typeID}
}

// StructType returns the type id of a struct tag.
func (t TypeTag) StructType() (string, bool) {
	if t.kind != tagStruct {
		return "", false
	}
	return t.structType, true
}

// String returns the tag name used in error messages.
func (t TypeTag) String() string {
	switch t.kind {
	case tagInt32:
		return "int32"
	case tagInt64:
		return "int64"
	case tagFloat64:
		return "float64"
	case tagBool:
		return "bool"
	case tagString:
		return "string"
	case tagBytes:
		return "bytes"
	case tagStruct:
		return "struct " + t.structType
	case tagList:
		return "list"
	case tagMap:
		return "map"
	default:
		return fmt.Sprintf("tag(%d)", int(t.kind))
	}
}

// ParameterSpec declares one handler parameter: the name callers use in
// map payloads, and the semantic type the value must convert to.
// Declared once at registration; immutable thereafter.
type ParameterSpec struct {
	Name string
	Type TypeTag
}

// Param builds a ParameterSpec.
func Param(name string, t TypeTag) ParameterSpec {
	return ParameterSpec{Name: name, Type: t}
}

// convert turns a Value into the native representation of tag. Struct
// tags delegate to the registered codec; everything else follows the
// Value conversion rules.
func convert(v Value, tag TypeTag) (any, error) {
	switch tag.kind {
	case tagInt32:
		return v.AsInt32()
	case tagInt64:
		return v.AsInt64()
	case tagFloat64:
		return v.AsFloat64()
	case tagBool:
		return v.AsBool()
	case tagString:
		return v.AsString()
	case tagBytes:
		return v.AsBytes()
	case tagStruct:
		return decodeStruct(v, tag)
	case tagList:
		return v.AsList()
	case tagMap:
		return v.AsMap()
	default:
		return nil, &ConversionError{Expected: tag, Actual: v.Kind()}
	}
}

// decodeStruct converts a Value into the typed payload for a struct
// tag. A struct variant carrying the same type id passes through
// without re-decoding; anything else goes through the codec.
func decodeStruct(v Value, tag TypeTag) (any, error) {
	if typeID, payload, ok := v.StructInfo(); ok {
		if typeID == tag.structType {
			return payload, nil
		}
		return nil, &ConversionError{Expected: tag, Actual: v.Kind(),
			Cause: fmt.Errorf("struct type %q does not match %q", typeID, tag.structType)}
	}

	codec, ok := codecFor(tag.structType)
	if !ok {
		return nil, &ConversionError{Expected: tag, Actual: v.Kind(),
			Cause: fmt.Errorf("no codec registered for type %q", tag.structType)}
	}
	decoded, err := codec.Decode(v)
	if err != nil {
		return nil, &ConversionError{Expected: tag, Actual: v.Kind(), Cause: err}
	}
	return decoded, nil
}

// extractArgs assembles the typed argument list for a handler from its
// parameter specs and the dispatch payload.
//
// Policy:
//   - zero parameters: the payload is ignored entirely
//   - one parameter: a map payload carrying the declared name supplies
//     the value; otherwise the whole payload is converted directly, so
//     bare scalars and one-entry maps both work
//   - two or more parameters: the payload must be a map and every
//     parameter is looked up by name
//
// Extraction stops at the first failure; there are no partial results.
func extractArgs(specs []ParameterSpec, payload Value) ([]any, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	if len(specs) == 1 {
		spec := specs[0]
		if entry, ok := payload.Get(spec.Name); ok {
			arg, err := convert(entry, spec.Type)
			if err != nil {
				return nil, &ParameterTypeError{Name: spec.Name, Expected: spec.Type, Actual: entry.Kind(), cause: err}
			}
			return []any{arg}, nil
		}
		arg, err := convert(payload, spec.Type)
		if err != nil {
			if payload.Kind() == KindMap {
				return nil, &MissingParameterError{Name: spec.Name}
			}
			return nil, &ParameterTypeError{Name: spec.Name, Expected: spec.Type, Actual: payload.Kind(), cause: err}
		}
		return []any{arg}, nil
	}

	if payload.Kind() != KindMap {
		return nil, &ConversionError{Expected: TypeTag{kind: tagMap}, Actual: payload.Kind()}
	}

	args := make([]any, len(specs))
	for i, spec := range specs {
		entry, ok := payload.Get(spec.Name)
		if !ok {
			return nil, &MissingParameterError{Name: spec.Name}
		}
		arg, err := convert(entry, spec.Type)
		if err != nil {
			return nil, &ParameterTypeError{Name: spec.Name, Expected: spec.Type, Actual: entry.Kind(), cause: err}
		}
		args[i] = arg
	}
	return args, nil
}

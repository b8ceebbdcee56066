package operand

import (
	"context"
	"fmt"
	"reflect"
)

// tagFor derives the TypeTag for a Go parameter type. This runs once
// when a handler is built, never at dispatch time. Only the closed set
// of marshallable types is accepted; anything else is a build-time
// wiring error and panics.
func tagFor[P any]() TypeTag {
	t := reflect.TypeOf((*P)(nil)).Elem()
	switch t {
	case reflect.TypeOf(int32(0)):
		return TagInt32
	case reflect.TypeOf(int64(0)):
		return TagInt64
	case reflect.TypeOf(float64(0)):
		return TagFloat64
	case reflect.TypeOf(false):
		return TagBool
	case reflect.TypeOf(""):
		return TagString
	case reflect.TypeOf([]byte(nil)):
		return TagBytes
	}

	u := t
	for u.Kind() == reflect.Pointer {
		u = u.Elem()
	}
	if u.Kind() == reflect.Struct {
		return TagStruct(typeName(u))
	}
	panic(fmt.Sprintf("operand: unsupported parameter type %s (use int32, int64, float64, bool, string, []byte, or a struct with a registered codec)", t))
}

// argAs converts an extracted argument to the handler's parameter type.
// Codecs decode struct values, so a *T parameter gets the decoded T
// boxed behind a fresh pointer.
func argAs[P any](v any) (P, error) {
	if p, ok := v.(P); ok {
		return p, nil
	}

	var zero P
	pt := reflect.TypeOf((*P)(nil)).Elem()
	if pt.Kind() == reflect.Pointer && v != nil && reflect.TypeOf(v) == pt.Elem() {
		ptr := reflect.New(pt.Elem())
		ptr.Elem().Set(reflect.ValueOf(v))
		if p, ok := ptr.Interface().(P); ok {
			return p, nil
		}
	}
	return zero, fmt.Errorf("extracted %T where %s was declared", v, pt)
}

// ownerAs recovers the concrete owner pointer captured at registration.
// A mismatch means the caller dispatched with the wrong owner instance
// for the type id; it is reported, not fatal.
func ownerAs[O any](owner any) (*O, error) {
	if o, ok := owner.(*O); ok {
		return o, nil
	}
	if o, ok := owner.(O); ok {
		return &o, nil
	}
	return nil, fmt.Errorf("owner is %T, handler belongs to %s", owner, TypeOf[O]())
}

// encodeReturn normalizes a handler's native return value into the
// response Value. Scalars map to their matching variants, Values pass
// through, and struct results go through their registered codec.
func encodeReturn(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case string:
		return String(t), nil
	case []byte:
		return Bytes(t), nil
	}

	rt := reflect.TypeOf(v)
	if rt.Kind() == reflect.Pointer && reflect.ValueOf(v).IsNil() {
		return Null(), nil
	}
	if c, ok := codecFor(typeName(rt)); ok {
		return c.Encode(v)
	}
	return Value{}, fmt.Errorf("no codec registered for return type %T", v)
}

// Handler0 builds the entry for a parameterless operation. The payload
// is ignored entirely at dispatch.
func Handler0[O, R any](operation string, fn func(ctx context.Context, owner *O) (R, error)) *HandlerEntry {
	return NewHandlerEntry(TypeOf[O](), operation, nil,
		func(ctx context.Context, owner any, _ Value) (Value, error) {
			o, err := ownerAs[O](owner)
			if err != nil {
				return Value{}, err
			}
			res, err := fn(ctx, o)
			if err != nil {
				return Value{}, err
			}
			return encodeReturn(res)
		})
}

// Handler1 builds the entry for a single-parameter operation. Callers
// may send the bare value or a map keyed by the parameter name.
func Handler1[O, P1, R any](operation, p1 string, fn func(ctx context.Context, owner *O, a P1) (R, error)) *HandlerEntry {
	specs := []ParameterSpec{Param(p1, tagFor[P1]())}
	return NewHandlerEntry(TypeOf[O](), operation, specs,
		func(ctx context.Context, owner any, payload Value) (Value, error) {
			o, err := ownerAs[O](owner)
			if err != nil {
				return Value{}, err
			}
			args, err := extractArgs(specs, payload)
			if err != nil {
				return Value{}, err
			}
			a, err := argAs[P1](args[0])
			if err != nil {
				return Value{}, err
			}
			res, err := fn(ctx, o, a)
			if err != nil {
				return Value{}, err
			}
			return encodeReturn(res)
		})
}

// Handler2 builds the entry for a two-parameter operation. The payload
// must be a map carrying both parameter names.
func Handler2[O, P1, P2, R any](operation, p1, p2 string, fn func(ctx context.Context, owner *O, a P1, b P2) (R, error)) *HandlerEntry {
	specs := []ParameterSpec{Param(p1, tagFor[P1]()), Param(p2, tagFor[P2]())}
	return NewHandlerEntry(TypeOf[O](), operation, specs,
		func(ctx context.Context, owner any, payload Value) (Value, error) {
			o, err := ownerAs[O](owner)
			if err != nil {
				return Value{}, err
			}
			args, err := extractArgs(specs, payload)
			if err != nil {
				return Value{}, err
			}
			a, err := argAs[P1](args[0])
			if err != nil {
				return Value{}, err
			}
			b, err := argAs[P2](args[1])
			if err != nil {
				return Value{}, err
			}
			res, err := fn(ctx, o, a, b)
			if err != nil {
				return Value{}, err
			}
			return encodeReturn(res)
		})
}

// Handler3 builds the entry for a three-parameter operation.
func Handler3[O, P1, P2, P3, R any](operation, p1, p2, p3 string, fn func(ctx context.Context, owner *O, a P1, b P2, c P3) (R, error)) *HandlerEntry {
	specs := []ParameterSpec{Param(p1, tagFor[P1]()), Param(p2, tagFor[P2]()), Param(p3, tagFor[P3]())}
	return NewHandlerEntry(TypeOf[O](), operation, specs,
		func(ctx context.Context, owner any, payload Value) (Value, error) {
			o, err := ownerAs[O](owner)
			if err != nil {
				return Value{}, err
			}
			args, err := extractArgs(specs, payload)
			if err != nil {
				return Value{}, err
			}
			a, err := argAs[P1](args[0])
			if err != nil {
				return Value{}, err
			}
			b, err := argAs[P2](args[1])
			if err != nil {
				return Value{}, err
			}
			c, err := argAs[P3](args[2])
			if err != nil {
				return Value{}, err
			}
			res, err := fn(ctx, o, a, b, c)
			if err != nil {
				return Value{}, err
			}
			return encodeReturn(res)
		})
}

// Subscribe0 builds a subscription whose method takes no event payload.
func Subscribe0[O any](topic, method string, fn func(ctx context.Context, owner *O) error) *Subscription {
	return &Subscription{
		Topic: topic, Owner: TypeOf[O](), Method: method,
		invoke: func(ctx context.Context, owner any, _ Value) error {
			o, err := ownerAs[O](owner)
			if err != nil {
				return err
			}
			return fn(ctx, o)
		},
	}
}

// Subscribe1 builds a subscription whose method receives the event
// payload converted to P. Payload shape follows the single-parameter
// extraction policy under the name "payload".
func Subscribe1[O, P any](topic, method string, fn func(ctx context.Context, owner *O, payload P) error) *Subscription {
	specs := []ParameterSpec{Param("payload", tagFor[P]())}
	return &Subscription{
		Topic: topic, Owner: TypeOf[O](), Method: method,
		invoke: func(ctx context.Context, owner any, payload Value) error {
			o, err := ownerAs[O](owner)
			if err != nil {
				return err
			}
			args, err := extractArgs(specs, payload)
			if err != nil {
				return err
			}
			p, err := argAs[P](args[0])
			if err != nil {
				return err
			}
			return fn(ctx, o, p)
		},
	}
}

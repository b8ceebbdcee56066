package operand

import (
	"context"
	"errors"
	"testing"
)

func TestInterceptorOrder(t *testing.T) {
	var order []string

	reg := NewRegistry().
		WithUnaryInterceptor(func(ctx context.Context, info *CallInfo, payload Value, next Invoker) (Value, error) {
			order = append(order, "outer-before")
			v, err := next(ctx, payload)
			order = append(order, "outer-after")
			return v, err
		}).
		WithUnaryInterceptor(func(ctx context.Context, info *CallInfo, payload Value, next Invoker) (Value, error) {
			order = append(order, "inner-before")
			v, err := next(ctx, payload)
			order = append(order, "inner-after")
			return v, err
		})
	reg.MustRegister(Handler0("seven",
		func(ctx context.Context, c *Calc) (int32, error) {
			order = append(order, "handler")
			return 7, nil
		}))
	reg.Seal()

	resp := dispatchCalc(t, reg, "seven", Null())
	if !resp.OK() {
		t.Fatalf("dispatch failed: %s", resp.Message)
	}

	want := []string{"outer-before", "inner-before", "handler", "inner-after", "outer-after"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestInterceptorShortCircuit(t *testing.T) {
	handlerCalled := false

	reg := NewRegistry().
		WithUnaryInterceptor(func(ctx context.Context, info *CallInfo, payload Value, next Invoker) (Value, error) {
			return Value{}, errors.New("denied")
		})
	reg.MustRegister(Handler0("seven",
		func(ctx context.Context, c *Calc) (int32, error) {
			handlerCalled = true
			return 7, nil
		}))
	reg.Seal()

	resp := dispatchCalc(t, reg, "seven", Null())
	wantError(t, resp, "denied")
	if handlerCalled {
		t.Error("handler ran after interceptor short-circuit")
	}
}

func TestInterceptorRewritesPayload(t *testing.T) {
	reg := NewRegistry().
		WithUnaryInterceptor(func(ctx context.Context, info *CallInfo, payload Value, next Invoker) (Value, error) {
			// Inject a default for the missing parameter.
			if _, ok := payload.Get("x"); !ok {
				payload = NewMap(P("x", Float(1)))
			}
			return next(ctx, payload)
		})
	reg.MustRegister(Handler1("negate", "x",
		func(ctx context.Context, c *Calc, x float64) (float64, error) {
			return -x, nil
		}))
	reg.Seal()

	resp := dispatchCalc(t, reg, "negate", NewMap())
	if got := mustFloat(t, resp); got != -1 {
		t.Errorf("got %v, want -1", got)
	}
}

func TestInterceptorSeesCallInfo(t *testing.T) {
	var seen *CallInfo

	reg := NewRegistry().
		WithUnaryInterceptor(func(ctx context.Context, info *CallInfo, payload Value, next Invoker) (Value, error) {
			seen = info
			fromCtx, ok := CallFromContext(ctx)
			if !ok || fromCtx != info {
				t.Error("CallFromContext disagrees with interceptor argument")
			}
			return next(ctx, payload)
		})
	reg.MustRegister(Handler0("seven",
		func(ctx context.Context, c *Calc) (int32, error) { return 7, nil }))
	reg.Seal()

	dispatchCalc(t, reg, "seven", Null())

	if seen == nil {
		t.Fatal("interceptor not called")
	}
	if seen.Operation != "seven" || seen.Owner != TypeOf[Calc]() {
		t.Errorf("call info = %+v", seen)
	}
	if seen.ID == "" {
		t.Error("call id not assigned")
	}
}

func TestChainInterceptorsEmpty(t *testing.T) {
	if chainInterceptors(nil) != nil {
		t.Error("empty chain should be nil")
	}
}

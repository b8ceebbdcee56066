package operand

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// Calc is the owner fixture used across dispatch tests.
type Calc struct {
	lastResult float64
}

func (c *Calc) Add(a, b float64) float64 {
	c.lastResult = a + b
	return c.lastResult
}

// Point round-trips through the JSON codec.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// User exercises post-decode validation.
type User struct {
	Name  string `json:"name" schema:"name" validate:"required"`
	Email string `json:"email" schema:"email" validate:"omitempty,email"`
}

var (
	pointTag = RegisterJSONCodec[Point]()
	_        = RegisterJSONCodec[User]()
)

var errBoom = errors.New("boom")

// newCalcRegistry builds a sealed registry with the standard Calc
// operations used by the dispatch tests.
func newCalcRegistry(t *testing.T) *Registry {
	t.Helper()

	reg := NewRegistry()
	reg.MustRegister(Handler2("add", "a", "b",
		func(ctx context.Context, c *Calc, a, b float64) (float64, error) {
			return c.Add(a, b), nil
		}))
	reg.MustRegister(Handler1("negate", "x",
		func(ctx context.Context, c *Calc, x float64) (float64, error) {
			return -x, nil
		}))
	reg.MustRegister(Handler0("seven",
		func(ctx context.Context, c *Calc) (int32, error) {
			return 7, nil
		}))
	reg.MustRegister(Handler0("fail",
		func(ctx context.Context, c *Calc) (Value, error) {
			return Value{}, errBoom
		}))
	reg.MustRegister(Handler1("norm", "p",
		func(ctx context.Context, c *Calc, p Point) (float64, error) {
			return p.X*p.X + p.Y*p.Y, nil
		}))
	reg.Seal()
	return reg
}

func dispatchCalc(t *testing.T, reg *Registry, operation string, payload Value) Response {
	t.Helper()
	return Dispatch(context.Background(), reg, &Calc{}, TypeOf[Calc](), operation, payload)
}

// mustFloat unwraps a successful response into its float data.
func mustFloat(t *testing.T, resp Response) float64 {
	t.Helper()
	if !resp.OK() {
		t.Fatalf("expected success, got %s: %s", resp.Status, resp.Message)
	}
	if resp.Data == nil {
		t.Fatal("expected data in successful response")
	}
	f, err := resp.Data.AsFloat64()
	if err != nil {
		t.Fatalf("expected float data, got %s", resp.Data.Kind())
	}
	return f
}

// wantError asserts an error response whose message contains want.
func wantError(t *testing.T, resp Response, want string) {
	t.Helper()
	if resp.OK() {
		t.Fatalf("expected error response, got success")
	}
	if !strings.Contains(resp.Message, want) {
		t.Fatalf("expected message containing %q, got %q", want, resp.Message)
	}
}

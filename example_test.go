package operand_test

import (
	"context"
	"fmt"

	"github.com/broady/operand"
)

type Calculator struct {
	last float64
}

func (c *Calculator) Add(ctx context.Context, a, b float64) (float64, error) {
	c.last = a + b
	return c.last, nil
}

func (c *Calculator) Last(ctx context.Context) (float64, error) {
	return c.last, nil
}

func Example() {
	reg := operand.NewRegistry()
	reg.MustRegister(operand.Handler2("add", "a", "b",
		func(ctx context.Context, c *Calculator, a, b float64) (float64, error) {
			return c.Add(ctx, a, b)
		}))
	reg.MustRegister(operand.Handler0("last",
		func(ctx context.Context, c *Calculator) (float64, error) {
			return c.Last(ctx)
		}))
	reg.Seal()

	ctx := context.Background()
	calc := &Calculator{}
	owner := operand.TypeOf[Calculator]()

	resp := operand.Dispatch(ctx, reg, calc, owner, "add",
		operand.NewMap(operand.P("a", operand.Float(2)), operand.P("b", operand.Float(3))))
	sum, _ := resp.Data.AsFloat64()
	fmt.Println(resp.Status, sum)

	resp = operand.Dispatch(ctx, reg, calc, owner, "add",
		operand.NewMap(operand.P("a", operand.Float(2))))
	fmt.Println(resp.Status, resp.Code, resp.Message)

	resp = operand.Dispatch(ctx, reg, calc, owner, "subtract", operand.Null())
	fmt.Println(resp.Status, resp.Code)

	// Output:
	// success 5
	// error missing_parameter missing parameter "b"
	// error unknown_operation
}

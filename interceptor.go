package operand

import "context"

// Invoker is the next stage in an interceptor chain: either the next
// interceptor or the handler itself.
type Invoker func(ctx context.Context, payload Value) (Value, error)

// UnaryInterceptor wraps handler execution for request dispatches.
// Interceptors can inspect or replace the payload, short-circuit by
// returning an error without calling next, observe the outcome, or add
// values to the context. CallFromContext exposes the call metadata.
type UnaryInterceptor func(ctx context.Context, info *CallInfo, payload Value, next Invoker) (Value, error)

// chainInterceptors combines interceptors into a single one. The first
// interceptor in the slice is the outermost (runs first).
func chainInterceptors(interceptors []UnaryInterceptor) UnaryInterceptor {
	if len(interceptors) == 0 {
		return nil
	}
	if len(interceptors) == 1 {
		return interceptors[0]
	}
	return func(ctx context.Context, info *CallInfo, payload Value, next Invoker) (Value, error) {
		chain := next
		for i := len(interceptors) - 1; i >= 1; i-- {
			current := interceptors[i]
			inner := chain
			chain = func(ctx context.Context, payload Value) (Value, error) {
				return current(ctx, info, payload, inner)
			}
		}
		return interceptors[0](ctx, info, payload, chain)
	}
}

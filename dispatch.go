package operand

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Dispatch routes one request to the handler registered under
// (ownerType, operation) and returns the normalized envelope.
//
// Lookup misses and extraction failures become error responses without
// the target method ever running; handler business errors are rendered
// into the envelope, never re-raised. The registry must be sealed;
// dispatching before initialization finished is a wiring bug and
// panics.
//
// Dispatch is synchronous and holds no state of its own: concurrent
// calls are independent, and the handler receives the caller's context
// untouched, so cancellation and deadlines belong to the caller.
func Dispatch(ctx context.Context, reg *Registry, owner any, ownerType TypeID, operation string, payload Value) (resp Response) {
	if !reg.Sealed() {
		panic("operand: Dispatch called before Seal")
	}

	entry, ok := reg.Lookup(ownerType, operation)
	if !ok {
		return errorResponse(&UnknownOperationError{Owner: ownerType, Operation: operation})
	}

	info := &CallInfo{Owner: ownerType, Operation: operation}
	ctx = newCallContext(ctx, info)

	defer func() {
		if rec := recover(); rec != nil {
			reg.log().Error("panic in handler",
				slog.String("owner", string(ownerType)),
				slog.String("operation", operation),
				slog.String("call_id", info.ID),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
			resp = errorResponse(fmt.Errorf("internal error (panic): %v", rec))
		}
	}()

	invoke := func(ctx context.Context, payload Value) (Value, error) {
		return entry.invoke(ctx, owner, payload)
	}

	var result Value
	var err error
	if chain := chainInterceptors(reg.interceptors); chain != nil {
		result, err = chain(ctx, info, payload, invoke)
	} else {
		result, err = invoke(ctx, payload)
	}
	if err != nil {
		return errorResponse(err)
	}
	return successResponse(result)
}

// DispatchEvent delivers an event to every subscription registered for
// the topic on the owner's type. Delivery continues past individual
// failures; the collected errors are joined and returned so the caller
// sees every failing subscriber, not just the first.
func DispatchEvent(ctx context.Context, reg *Registry, owner any, ownerType TypeID, topic string, payload Value) error {
	if !reg.Sealed() {
		panic("operand: DispatchEvent called before Seal")
	}

	info := &CallInfo{Owner: ownerType, Topic: topic}
	ctx = newCallContext(ctx, info)

	var errs []error
	for s := range reg.Subscriptions(topic) {
		if s.Owner != ownerType {
			continue
		}
		if err := s.invoke(ctx, owner, payload); err != nil {
			errs = append(errs, fmt.Errorf("subscription %s on topic %q: %w", s.Method, topic, err))
		}
	}
	return errors.Join(errs...)
}

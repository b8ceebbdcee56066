package operand

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct {
	name string
}

var callInfoKey = &contextKey{"call_info"}

// CallInfo is the per-call metadata the dispatcher attaches to the
// context before running interceptors and the handler. Topic is set
// only for event dispatches, Operation only for request dispatches.
type CallInfo struct {
	// ID is a unique identifier for this dispatch, for log correlation.
	ID        string
	Owner     TypeID
	Operation string
	Topic     string
}

// CallFromContext returns the CallInfo of the current dispatch.
func CallFromContext(ctx context.Context) (*CallInfo, bool) {
	info, ok := ctx.Value(callInfoKey).(*CallInfo)
	return info, ok
}

func newCallContext(ctx context.Context, info *CallInfo) context.Context {
	info.ID = uuid.NewString()
	return context.WithValue(ctx, callInfoKey, info)
}

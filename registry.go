package operand

import (
	"context"
	"iter"
	"log/slog"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
)

// TypeID identifies an owner type in the registry. It is a lookup key
// only; handlers capture their concrete owner type in a closure at
// registration time, so no runtime downcast ever happens at dispatch.
type TypeID string

// TypeOf returns the TypeID for T, derived from the fully qualified
// type name. Pointer-ness is stripped so *Calc and Calc share an id.
func TypeOf[T any]() TypeID {
	return TypeID(typeName(reflect.TypeOf((*T)(nil)).Elem()))
}

// TypeIDOf returns the TypeID for a live instance.
func TypeIDOf(v any) TypeID {
	return TypeID(typeName(reflect.TypeOf(v)))
}

// HandlerEntry is one registered operation: the key it is found under,
// its declared parameters, and the type-erased invoker the generated
// wrapper baked the typed method into. Created once at registration
// and never mutated.
type HandlerEntry struct {
	Operation string
	Owner     TypeID
	Params    []ParameterSpec

	invoke func(ctx context.Context, owner any, payload Value) (Value, error)
}

// NewHandlerEntry builds an entry from a raw invoker. Most callers want
// the typed Handler0..Handler3 builders instead; this is the escape
// hatch for arbitrary arity.
func NewHandlerEntry(owner TypeID, operation string, params []ParameterSpec,
	invoke func(ctx context.Context, owner any, payload Value) (Value, error)) *HandlerEntry {
	return &HandlerEntry{Operation: operation, Owner: owner, Params: params, invoke: invoke}
}

// Subscription is one registered event handler: an owner method bound
// to a topic. Unlike operations, several subscriptions may share a
// topic.
type Subscription struct {
	Topic  string
	Owner  TypeID
	Method string

	invoke func(ctx context.Context, owner any, payload Value) error
}

// Publication declares that an owner type publishes events on a topic.
// Purely descriptive; used for introspection.
type Publication struct {
	Topic       string
	Owner       TypeID
	Description string
}

type registryKey struct {
	owner     TypeID
	operation string
}

// Registry is the process table of handlers, subscriptions, and
// publications. It has two phases: Open, during which the surrounding
// runtime registers everything, and Sealed, after which the entry set
// is immutable and lookups are guaranteed complete.
//
// Registering after Seal and dispatching before Seal both panic: they
// indicate broken wiring, not bad input. Steady-state lookups only take
// a read lock, so concurrent dispatches never block each other.
type Registry struct {
	mu           sync.RWMutex
	sealed       atomic.Bool
	handlers     map[registryKey]*HandlerEntry
	subs         map[string][]*Subscription
	pubs         []Publication
	interceptors []UnaryInterceptor
	logger       *slog.Logger
}

// NewRegistry creates an empty registry in the Open phase.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[registryKey]*HandlerEntry),
		subs:     make(map[string][]*Subscription),
	}
}

// WithLogger sets a custom logger. If not set, slog.Default() is used.
// It returns the registry for chaining.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithUnaryInterceptor adds an interceptor wrapping every dispatch.
// Interceptors run in the order they were added, outermost first.
func (r *Registry) WithUnaryInterceptor(i UnaryInterceptor) *Registry {
	r.interceptors = append(r.interceptors, i)
	return r
}

func (r *Registry) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// Register adds a handler entry. It fails with *DuplicateError when the
// (owner, operation) key is already taken; routing must never be
// ambiguous, so callers should abort startup on this error.
func (r *Registry) Register(e *HandlerEntry) error {
	if r.sealed.Load() {
		panic("operand: Register called after Seal")
	}

	key := registryKey{owner: e.Owner, operation: e.Operation}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[key]; exists {
		return &DuplicateError{Owner: e.Owner, Operation: e.Operation}
	}
	r.handlers[key] = e

	r.log().Debug("registered handler",
		slog.String("owner", string(e.Owner)),
		slog.String("operation", e.Operation),
		slog.Int("params", len(e.Params)))
	return nil
}

// MustRegister is Register that panics on error. Matches the fatal
// nature of duplicate registration when there is no error plumbing at
// the call site.
func (r *Registry) MustRegister(e *HandlerEntry) {
	if err := r.Register(e); err != nil {
		panic("operand: " + err.Error())
	}
}

// RegisterSubscription adds an event subscription. Multiple
// subscriptions may share a topic; delivery order within a topic is
// registration order.
func (r *Registry) RegisterSubscription(s *Subscription) {
	if r.sealed.Load() {
		panic("operand: RegisterSubscription called after Seal")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[s.Topic] = append(r.subs[s.Topic], s)

	r.log().Debug("registered subscription",
		slog.String("owner", string(s.Owner)),
		slog.String("topic", s.Topic),
		slog.String("method", s.Method))
}

// RegisterPublication records a publication declaration.
func (r *Registry) RegisterPublication(p Publication) {
	if r.sealed.Load() {
		panic("operand: RegisterPublication called after Seal")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pubs = append(r.pubs, p)
}

// Seal transitions the registry to read-only. After Seal every
// registration is visible to all lookups; further registration panics.
// Sealing an already-sealed registry is a no-op.
func (r *Registry) Seal() {
	if r.sealed.Swap(true) {
		return
	}
	r.mu.RLock()
	n := len(r.handlers)
	r.mu.RUnlock()
	r.log().Info("registry sealed", slog.Int("handlers", n))
}

// Sealed reports whether the registry has been sealed.
func (r *Registry) Sealed() bool { return r.sealed.Load() }

// Lookup finds the handler for an (owner, operation) key. Before Seal
// the result must not be relied on for completeness.
func (r *Registry) Lookup(owner TypeID, operation string) (*HandlerEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.handlers[registryKey{owner: owner, operation: operation}]
	return e, ok
}

// Operations returns the handlers registered for an owner type, sorted
// by operation name. The sequence is restartable and reflects the entry
// set at the time of each iteration.
func (r *Registry) Operations(owner TypeID) iter.Seq[*HandlerEntry] {
	return func(yield func(*HandlerEntry) bool) {
		r.mu.RLock()
		entries := make([]*HandlerEntry, 0)
		for key, e := range r.handlers {
			if key.owner == owner {
				entries = append(entries, e)
			}
		}
		r.mu.RUnlock()

		sort.Slice(entries, func(i, j int) bool { return entries[i].Operation < entries[j].Operation })
		for _, e := range entries {
			if !yield(e) {
				return
			}
		}
	}
}

// Subscriptions returns the subscriptions for a topic in registration
// order.
func (r *Registry) Subscriptions(topic string) iter.Seq[*Subscription] {
	return func(yield func(*Subscription) bool) {
		r.mu.RLock()
		subs := make([]*Subscription, len(r.subs[topic]))
		copy(subs, r.subs[topic])
		r.mu.RUnlock()

		for _, s := range subs {
			if !yield(s) {
				return
			}
		}
	}
}

// Publications returns the publication declarations for an owner type.
func (r *Registry) Publications(owner TypeID) iter.Seq[Publication] {
	return func(yield func(Publication) bool) {
		r.mu.RLock()
		pubs := make([]Publication, 0)
		for _, p := range r.pubs {
			if p.Owner == owner {
				pubs = append(pubs, p)
			}
		}
		r.mu.RUnlock()

		for _, p := range pubs {
			if !yield(p) {
				return
			}
		}
	}
}

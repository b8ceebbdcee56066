// Package operand is the marshalling and dispatch core for a service
// framework: it turns annotated service methods into uniform handlers a
// runtime node can invoke by name, with type-directed parameter
// extraction and normalized response envelopes.
//
// A code-generation step (outside this package) emits one handler entry
// per annotated method. Entries are collected into a Registry during a
// startup phase, the registry is sealed, and from then on the runtime
// routes every request through Dispatch:
//
//	type Calc struct{}
//
//	func (c *Calc) Add(ctx context.Context, a, b float64) (float64, error) {
//	    return a + b, nil
//	}
//
//	reg := operand.NewRegistry()
//	reg.MustRegister(operand.Handler2("add", "a", "b",
//	    func(ctx context.Context, c *Calc, a, b float64) (float64, error) {
//	        return c.Add(ctx, a, b)
//	    }))
//	reg.Seal()
//
//	resp := operand.Dispatch(ctx, reg, calc, operand.TypeOf[Calc](), "add",
//	    operand.NewMap(operand.P("a", operand.Float(2)), operand.P("b", operand.Float(3))))
//
// # Payloads
//
// Requests and events carry a Value, a closed tagged union of null,
// bool, int, float, string, bytes, list, map, and opaque struct
// payloads. The extractor derives each argument from the payload by
// declared name and type: single-parameter handlers accept either the
// bare value or a one-entry map, multi-parameter handlers require a
// map. Struct parameters are decoded by a Codec registered per type id
// and validated before the handler runs.
//
// # Outcomes
//
// Every dispatch produces a Response envelope. Lookup misses,
// extraction failures, and handler errors all become error envelopes;
// only wiring bugs (duplicate registration, registering after Seal,
// dispatching before Seal) are fatal.
//
// # Events
//
// Methods can also subscribe to topics. DispatchEvent delivers an
// event payload to every subscription for the owner type, continuing
// past individual failures. Topic provides a local latest-wins
// broadcast primitive for wiring publishers to the runtime.
package operand

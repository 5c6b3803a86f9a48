// SPDX-License-Identifier: Apache-2.0

package chain

import (
	"context"
	"sync"
)

// An Operation is one recorded call on a [Chain].
//
// The reducer receives a copy of each recorded Operation with Receiver and
// Index filled in for the current invocation. Args must be treated as
// read-only: the same slice is handed to every invocation of the chain.
type Operation struct {
	// Type is the name the operation was recorded under.
	Type string

	// Args are the arguments passed when the operation was recorded.
	Args []any

	// Receiver is the value the chain was invoked with via [Chain.Call].
	// It is nil for [Chain.Run].
	Receiver any

	// Index is the position of the operation in the chain.
	Index int

	debug func(details []any)
}

// Debug attaches details to this operation's trace entry.
//
// Details accumulate across calls and appear in the trace in the order they
// were attached. Debug does nothing when the chain is not traced.
func (op Operation) Debug(details ...any) {
	if op.debug != nil {
		op.debug(details)
	}
}

// Tracing reports whether details passed to [Operation.Debug] are recorded.
func (op Operation) Tracing() bool {
	return op.debug != nil
}

// A Reducer applies one [Operation] to a payload.
//
// The returned Future carries the next payload. Synchronous reducers return
// [Resolved] or [Rejected]; asynchronous reducers return a pending Future,
// and the next operation waits for it to settle. A nil Future leaves the
// payload unchanged.
//
// Reducers decide what every operation type means. Types a reducer does not
// recognize should usually pass the payload through unchanged.
type Reducer[P any] = func(ctx context.Context, payload P, op Operation) *Future[P]

// A Factory produces new, empty chains that share one reducer and
// configuration.
type Factory[P any] func() *Chain[P]

// New returns a [Factory] of chains replayed through reducer.
//
// If reducer is nil, every operation passes the payload through unchanged.
//
// Example:
//
//	text := chain.New(chain.Dispatch(chain.Handlers[string]{}.
//	    OnSync("upper", func(_ context.Context, s string, _ chain.Operation) (string, error) {
//	        return strings.ToUpper(s), nil
//	    }),
//	))
//
//	shout := text().Invoke("upper")
//	s, err := shout.Run(ctx, "foo").Await(ctx) // "FOO"
func New[P any](reducer Reducer[P], opts ...Option) Factory[P] {
	cfg := &options{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.traceFunc != nil && cfg.traceLabel == "" {
		cfg.traceLabel = defaultTraceLabel
	}
	return func() *Chain[P] {
		return &Chain[P]{
			reducer: reducer,
			options: cfg,
		}
	}
}

// A Chain is an ordered log of recorded operations that can be replayed
// against a payload any number of times.
//
// Recording and replaying are safe for concurrent use. Each invocation
// replays a snapshot of the log taken when it starts, so operations recorded
// afterwards only affect later invocations.
//
// Fluent, typed APIs are built by embedding a Chain and defining methods that
// record through [Chain.Invoke]:
//
//	type Text struct{ *chain.Chain[string] }
//
//	func (t Text) Upper() Text { t.Invoke("upper"); return t }
//	func (t Text) Trim() Text  { t.Invoke("trim"); return t }
type Chain[P any] struct {
	mu         sync.Mutex
	operations []Operation

	reducer Reducer[P]
	options *options
}

// Invoke records an operation of the given type and returns the same chain.
func (c *Chain[P]) Invoke(name string, args ...any) *Chain[P] {
	op := Operation{
		Type: name,
		Args: append([]any(nil), args...),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	op.Index = len(c.operations)
	c.operations = append(c.operations, op)
	return c
}

// Operations returns a copy of the recorded operations in order.
func (c *Chain[P]) Operations() []Operation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Operation(nil), c.operations...)
}

// Len returns the number of recorded operations.
func (c *Chain[P]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.operations)
}

// Run replays the chain against payload with a nil receiver.
//
// Run is the same as [Chain.Call] with a nil receiver.
func (c *Chain[P]) Run(ctx context.Context, payload P) *Future[P] {
	return c.Call(ctx, nil, payload)
}

// Call replays the chain against payload, exposing receiver to the reducer
// as [Operation.Receiver].
//
// The reducer runs once per operation in recorded order. While its results
// are already settled the replay proceeds in the calling goroutine; at the
// first pending result the remainder continues in a new goroutine once that
// result settles. The returned Future is always non-nil.
//
// The first error aborts the replay: later operations are not applied and
// the returned Future rejects with that exact error. A reducer panic rejects
// with a [*RecoveredPanic]. ctx is only consulted while waiting on a pending
// result; if it is done first, the Future rejects with ctx.Err().
func (c *Chain[P]) Call(ctx context.Context, receiver any, payload P) *Future[P] {
	r := &replay[P]{
		reducer:    c.reducer,
		options:    c.options,
		receiver:   receiver,
		operations: c.Operations(),
	}
	if err := r.validate(); err != nil {
		return Rejected[P](err)
	}
	if r.options.traceLabel != "" {
		r.trace = newTrace(r.options.traceLabel, r.operations)
	}
	return r.fold(ctx, payload)
}

// replay is the per-invocation state of a fold over the operation log.
type replay[P any] struct {
	reducer    Reducer[P]
	options    *options
	receiver   any
	operations []Operation

	// trace is nil unless tracing is enabled.
	trace *trace
}

// validate checks the log against the capability table, if any.
func (r *replay[P]) validate() error {
	if r.options.strict == nil {
		return nil
	}
	for _, op := range r.operations {
		if _, ok := r.options.strict[op.Type]; !ok {
			return &UnknownOperationError{Type: op.Type, Index: op.Index}
		}
	}
	return nil
}

// fold applies the reducer synchronously for as long as results are settled.
func (r *replay[P]) fold(ctx context.Context, payload P) *Future[P] {
	current := Resolved(payload)
	for i := range r.operations {
		if current.Pending() {
			return r.resume(ctx, i, current)
		}
		r.settled(i - 1)
		next, err := current.Await(ctx)
		if err != nil {
			return current
		}
		current = r.apply(ctx, i, next)
	}
	return r.finish(ctx, current)
}

// resume continues the fold at operation i after pending settles.
func (r *replay[P]) resume(ctx context.Context, i int, pending *Future[P]) *Future[P] {
	return Go(func() (P, error) {
		payload, err := pending.Await(ctx)
		for ; err == nil && i < len(r.operations); i++ {
			r.settled(i - 1)
			payload, err = r.apply(ctx, i, payload).Await(ctx)
		}
		if err != nil {
			return payload, err
		}
		r.complete(ctx)
		return payload, nil
	})
}

// finish emits the trace once the last result resolves.
func (r *replay[P]) finish(ctx context.Context, last *Future[P]) *Future[P] {
	if r.trace == nil {
		return last
	}
	if last.Pending() {
		return Go(func() (P, error) {
			payload, err := last.Await(ctx)
			if err == nil {
				r.complete(ctx)
			}
			return payload, err
		})
	}
	if _, err := last.Await(ctx); err == nil {
		r.complete(ctx)
	}
	return last
}

// apply runs the reducer for operation i.
func (r *replay[P]) apply(ctx context.Context, i int, payload P) *Future[P] {
	op := r.operations[i]
	op.Receiver = r.receiver
	op.Index = i
	if r.trace != nil {
		op.debug = r.trace.debugFunc(i)
		r.trace.begin(i)
	}
	if r.reducer == nil {
		return Resolved(payload)
	}

	out := callReducer(ctx, r.reducer, payload, op)
	if out == nil {
		return Resolved(payload)
	}
	return out
}

// settled records that the result of operation i has settled.
func (r *replay[P]) settled(i int) {
	if r.trace != nil && i >= 0 {
		r.trace.finish(i)
	}
}

// complete emits the trace of a successful invocation.
func (r *replay[P]) complete(ctx context.Context) {
	if r.trace == nil {
		return
	}
	r.settled(len(r.operations) - 1)

	// A panicking trace destination is dropped like a failed trace write.
	defer func() {
		_ = recover()
	}()
	emitTrace(ctx, r.options, r.trace.complete())
}

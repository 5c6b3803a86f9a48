// SPDX-License-Identifier: Apache-2.0

// Package chain provides a library for building fluent, chainable APIs whose
// meaning is supplied by a single reducer function.
//
// # The Problem
//
// Fluent APIs such as query builders, text pipelines, and request builders
// all share the same mechanics: calls are recorded in order, and something
// later walks the recorded calls to produce a result. Each of them ends up
// re-implementing the recording, the replay, the handling of asynchronous
// steps, and the diagnostics.
//
// Chain separates those mechanics from the semantics. A chain only records
// operations; a caller-supplied [Reducer] decides what each operation does
// when the chain is replayed against a payload.
//
// # Core Concepts
//
// A [Factory] is created once per API with [New]. Every call of the factory
// returns a fresh, empty [Chain]:
//
//	text := chain.New(chain.Dispatch(chain.Handlers[string]{}.
//	    OnSync("upper", upper).
//	    OnSync("trim", trim),
//	))
//
//	c := text().Invoke("trim").Invoke("upper")
//
// [Chain.Invoke] records an [Operation] (a type name plus arguments) and
// returns the same chain, so calls can be chained. Typed, fluent wrappers
// embed a Chain and record through Invoke:
//
//	type Text struct{ *chain.Chain[string] }
//
//	func (t Text) Upper() Text { t.Invoke("upper"); return t }
//
// Recorded chains are replayed with [Chain.Run] or [Chain.Call]. Replay
// folds the operations over the payload, one at a time and in order, and
// always returns a [Future]:
//
//	s, err := c.Run(ctx, "  foo ").Await(ctx) // "FOO"
//
// A chain may be replayed any number of times; replays never interfere with
// one another.
//
// # Asynchronous Reducers
//
// A reducer returns a *[Future]. Synchronous reducers return [Resolved] or
// [Rejected] (or use [Sync]); asynchronous ones return a pending Future, for
// example from [Go]. The next operation always observes the resolved value.
// Synchronous and asynchronous results can be mixed freely in one chain
// without changing the order in which operations run.
//
// # Receivers
//
// [Chain.Call] binds a receiver that every replayed operation exposes as
// [Operation.Receiver]. The same recorded chain can be parameterized per
// invocation this way.
//
// # Error Handling
//
// The first failure, whether a rejected Future or a panic, aborts the
// replay. Remaining operations are skipped and the invocation rejects with
// that exact error; panics are wrapped in [*RecoveredPanic]. Chains created
// with [WithStrict] reject operation types outside a fixed set with
// [*UnknownOperationError].
//
// # Tracing
//
// [WithTrace] records the type of every replayed operation, plus details
// reducers attach via [Operation.Debug], into a [Trace]. Traces are emitted
// only for successful invocations: logged with [log/slog] by default, or
// handed to a function set with [WithTraceFunc].
//
// # Requirements
//
// Chain requires Go 1.24 or later and has minimal external dependencies.
package chain

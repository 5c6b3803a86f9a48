// SPDX-License-Identifier: Apache-2.0

package chain

import (
	"context"
	"io"
	"log/slog"
)

// defaultTraceLabel names traces enabled without an explicit label.
const defaultTraceLabel = "chain"

// An Option configures the chains produced by a [Factory].
type Option func(*options)

// options holds the configuration shared by every chain of one factory.
type options struct {
	// traceLabel enables tracing when non-empty.
	traceLabel string

	// traceFunc receives the trace of each successful invocation.
	// If nil, the trace is logged with slog.
	traceFunc func(context.Context, *Trace)

	// traceLogger overrides the logger from the invocation context.
	traceLogger *slog.Logger

	// traceLevel is the level of the slog record carrying the trace.
	traceLevel slog.Level

	// strict is the capability table; nil disables validation.
	strict map[string]struct{}
}

// WithTrace enables tracing under the given label.
//
// Every successful invocation emits the type of each replayed operation,
// together with any details the reducer attached via [Operation.Debug],
// grouped under label. Failed invocations emit nothing.
//
// By default the trace is logged as a single record on the [slog.Logger]
// returned by [Slogger]. Use [WithTraceFunc] to send it elsewhere.
//
// An empty label disables tracing, unless a trace func or writer is
// configured, in which case the label is "chain" regardless of option order.
func WithTrace(label string) Option {
	return func(o *options) {
		o.traceLabel = label
	}
}

// WithTraceFunc sends traces to fn instead of the logger.
//
// If no label was set with [WithTrace], tracing is enabled with the label
// "chain". fn runs before the invocation's Future resolves.
//
// Example:
//
//	factory := chain.New(reducer,
//	    chain.WithTrace("text"),
//	    chain.WithTraceFunc(chain.WriteTextTo(os.Stderr)),
//	)
func WithTraceFunc(fn func(context.Context, *Trace)) Option {
	return func(o *options) {
		o.traceFunc = fn
	}
}

// WithTraceWriter writes each trace to w in the format of [Trace.WriteText].
//
// It is shorthand for WithTraceFunc(WriteTextTo(w)) and follows the same
// labelling rules. Write failures are ignored.
func WithTraceWriter(w io.Writer) Option {
	return WithTraceFunc(WriteTextTo(w))
}

// WithTraceLogger logs traces to logger instead of the logger carried by the
// invocation context.
func WithTraceLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.traceLogger = logger
	}
}

// WithTraceLevel sets the level of logged traces. The default is
// [slog.LevelInfo].
func WithTraceLevel(level slog.Level) Option {
	return func(o *options) {
		o.traceLevel = level
	}
}

// WithStrict restricts the operation types a chain may replay.
//
// Recording is never refused, but invoking a chain whose log contains a
// type outside names rejects with an [*UnknownOperationError] before the
// reducer sees any operation. Calling WithStrict more than once extends the
// set.
//
// Combined with [Handlers.Names] this validates the log against the
// registered handlers:
//
//	handlers := chain.Handlers[string]{}.OnSync("upper", upper)
//	factory := chain.New(chain.Dispatch(handlers), chain.WithStrict(handlers.Names()...))
func WithStrict(names ...string) Option {
	return func(o *options) {
		if o.strict == nil {
			o.strict = make(map[string]struct{}, len(names))
		}
		for _, name := range names {
			o.strict[name] = struct{}{}
		}
	}
}

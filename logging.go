// SPDX-License-Identifier: Apache-2.0

package chain

import (
	"context"
	"log/slog"
	"time"
)

type sloggerKey struct{}

// Slogger returns the [slog.Logger] from the context, or [slog.Default] if none is set.
//
// Traced chains log to this logger unless [WithTraceLogger] or
// [WithTraceFunc] is configured. It is also useful for reducers that want
// to log through the caller's logger.
func Slogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(sloggerKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// ContextWithSlogger returns a copy of ctx carrying logger.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	ctx = chain.ContextWithSlogger(ctx, logger)
//	out, err := c.Run(ctx, payload).Await(ctx)
func ContextWithSlogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, sloggerKey{}, logger)
}

// WithSlogging wraps a [Reducer] with structured logging that emits log
// records when each operation starts and when its result settles.
//
// Records carry the operation "type" and "index". The finish record adds a
// "duration_ms" attribute, and an "error" attribute if the operation failed.
// The logger is retrieved from the context passed to the chain invocation
// (see [ContextWithSlogger]).
//
// Example:
//
//	factory := chain.New(chain.WithSlogging(slog.LevelDebug, reducer))
//
// This would emit structured log records similar to:
//
//	{"level":"DEBUG","msg":"starting operation","type":"upper","index":0}
//	{"level":"DEBUG","msg":"finished operation","type":"upper","index":0,"duration_ms":0}
func WithSlogging[P any](level slog.Level, reducer Reducer[P]) Reducer[P] {
	return func(ctx context.Context, payload P, op Operation) *Future[P] {
		logger := Slogger(ctx)
		logger.Log(ctx, level, "starting operation", "type", op.Type, "index", op.Index)
		start := time.Now()

		finished := func(err error) {
			attrs := []any{
				"type", op.Type,
				"index", op.Index,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if err != nil {
				attrs = append(attrs, "error", err.Error())
			}
			logger.Log(ctx, level, "finished operation", attrs...)
		}

		var out *Future[P]
		if reducer != nil {
			out = callReducer(ctx, reducer, payload, op)
		}
		if out == nil {
			finished(nil)
			return out
		}
		if !out.Pending() {
			_, err := out.Await(ctx)
			finished(err)
			return out
		}

		// Await without cancellation so the logged outcome is the reducer's.
		detached := context.WithoutCancel(ctx)
		return Go(func() (P, error) {
			value, err := out.Await(detached)
			finished(err)
			return value, err
		})
	}
}

// callReducer calls reducer, turning a panic into a rejected Future.
func callReducer[P any](ctx context.Context, reducer Reducer[P], payload P, op Operation) (out *Future[P]) {
	defer func() {
		if r := recover(); r != nil {
			out = Rejected[P](&RecoveredPanic{Value: r})
		}
	}()
	return reducer(ctx, payload, op)
}

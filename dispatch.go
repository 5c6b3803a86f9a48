// SPDX-License-Identifier: Apache-2.0

package chain

import (
	"context"
	"maps"
	"slices"
)

// SyncReducer is a [Reducer] that produces the next payload directly.
type SyncReducer[P any] = func(ctx context.Context, payload P, op Operation) (P, error)

// Sync lifts a [SyncReducer] into a [Reducer].
//
// Example:
//
//	reducer := chain.Sync(func(_ context.Context, s string, op chain.Operation) (string, error) {
//	    if op.Type == "upper" {
//	        return strings.ToUpper(s), nil
//	    }
//	    return s, nil
//	})
func Sync[P any](fn SyncReducer[P]) Reducer[P] {
	return func(ctx context.Context, payload P, op Operation) *Future[P] {
		next, err := fn(ctx, payload, op)
		if err != nil {
			return Rejected[P](err)
		}
		return Resolved(next)
	}
}

// Handlers is a table of reducers keyed by operation type.
//
// The zero value is ready to use with the On methods, which allocate on
// first use.
type Handlers[P any] map[string]Reducer[P]

// On registers reducer for operations of the given type and returns the
// table, replacing any previous registration.
func (h Handlers[P]) On(name string, reducer Reducer[P]) Handlers[P] {
	if h == nil {
		h = make(Handlers[P])
	}
	h[name] = reducer
	return h
}

// OnSync registers a [SyncReducer] for operations of the given type.
func (h Handlers[P]) OnSync(name string, fn SyncReducer[P]) Handlers[P] {
	return h.On(name, Sync(fn))
}

// Names returns the registered operation types in sorted order.
func (h Handlers[P]) Names() []string {
	return slices.Sorted(maps.Keys(h))
}

// Dispatch returns a [Reducer] that routes each operation to the handler
// registered for its type.
//
// Operations without a handler pass the payload through unchanged, exactly
// as if the chain had no reducer. Use [WithStrict] to reject them instead.
func Dispatch[P any](handlers Handlers[P]) Reducer[P] {
	return func(ctx context.Context, payload P, op Operation) *Future[P] {
		reducer, ok := handlers[op.Type]
		if !ok || reducer == nil {
			return Resolved(payload)
		}
		return reducer(ctx, payload, op)
	}
}

// SPDX-License-Identifier: Apache-2.0

package chain

import (
	"context"
	"sync"
)

// A Future is a value that becomes available later.
//
// A Future settles exactly once, either resolved with a value or rejected
// with an error. Once settled its outcome never changes, and every call to
// [Future.Await] observes the same outcome.
//
// Futures have no cancellation of their own. Callers that want a timeout
// pass a context with a deadline to [Future.Await].
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// settle records the outcome. Only the first call has any effect.
func (f *Future[T]) settle(value T, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// Resolved returns a Future that is already resolved with value.
func Resolved[T any](value T) *Future[T] {
	f := newFuture[T]()
	f.settle(value, nil)
	return f
}

// Rejected returns a Future that is already rejected with err.
//
// If err is nil, the Future resolves to the zero value of T.
func Rejected[T any](err error) *Future[T] {
	var zero T
	f := newFuture[T]()
	f.settle(zero, err)
	return f
}

// Go runs fn in a new goroutine and returns a Future for its result.
//
// If fn panics, the Future is rejected with a [*RecoveredPanic].
//
// Example:
//
//	f := chain.Go(func() (string, error) {
//	    return fetch(ctx, url)
//	})
//	body, err := f.Await(ctx)
func Go[T any](fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	go func() {
		var (
			value T
			err   error
		)
		defer func() {
			if r := recover(); r != nil {
				var zero T
				f.settle(zero, &RecoveredPanic{Value: r})
				return
			}
			f.settle(value, err)
		}()
		value, err = fn()
	}()
	return f
}

// Promise returns a pending Future together with the functions that settle it.
//
// Only the first call to resolve or reject has any effect; later calls are
// ignored.
func Promise[T any]() (f *Future[T], resolve func(T), reject func(error)) {
	f = newFuture[T]()
	resolve = func(value T) {
		f.settle(value, nil)
	}
	reject = func(err error) {
		var zero T
		f.settle(zero, err)
	}
	return f, resolve, reject
}

// Done returns a channel that is closed once the Future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Pending reports whether the Future has not settled yet.
func (f *Future[T]) Pending() bool {
	select {
	case <-f.done:
		return false
	default:
		return true
	}
}

// Await blocks until the Future settles or ctx is done.
//
// A Future that has already settled returns its outcome even when ctx is
// done. Otherwise a done ctx returns ctx.Err().
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
	}

	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the outcome of the Future without blocking.
//
// ok is false while the Future is pending, in which case value and err are
// zero.
func (f *Future[T]) Result() (value T, err error, ok bool) {
	if f.Pending() {
		return value, nil, false
	}
	return f.value, f.err, true
}

// Then returns a Future for the result of applying fn to the resolved value
// of f.
//
// If f rejects, fn is not called and the returned Future rejects with the
// same error. If f has already settled, fn runs before Then returns;
// otherwise it runs in a new goroutine once f settles.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	apply := func() (U, error) {
		<-f.done
		if f.err != nil {
			var zero U
			return zero, f.err
		}
		return fn(f.value)
	}
	if !f.Pending() {
		return settleNow(apply)
	}
	return Go(apply)
}

// settleNow calls fn in the current goroutine and wraps its outcome.
func settleNow[T any](fn func() (T, error)) (out *Future[T]) {
	defer func() {
		if r := recover(); r != nil {
			out = Rejected[T](&RecoveredPanic{Value: r})
		}
	}()
	value, err := fn()
	out = newFuture[T]()
	out.settle(value, err)
	return out
}

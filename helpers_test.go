// SPDX-License-Identifier: Apache-2.0

package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ==== Test Helpers: Error Variables ====

var error1 = errors.New("error 1")
var error2 = errors.New("error 2")

// ==== Test Helpers: Reducers ====

// textHandlers implements a small string API used throughout the tests.
//
//   - "upper" upper-cases the payload
//   - "append" appends Args[0] (a string)
//   - "later" resolves the payload asynchronously after Args[0] (a duration)
//   - "fail" rejects with Args[0] (an error)
//   - "boom" panics with Args[0]
func textHandlers() Handlers[string] {
	return Handlers[string]{}.
		OnSync("upper", func(_ context.Context, s string, _ Operation) (string, error) {
			return strings.ToUpper(s), nil
		}).
		OnSync("append", func(_ context.Context, s string, op Operation) (string, error) {
			return s + op.Args[0].(string), nil
		}).
		On("later", func(_ context.Context, s string, op Operation) *Future[string] {
			delay := op.Args[0].(time.Duration)
			return Go(func() (string, error) {
				time.Sleep(delay)
				return s, nil
			})
		}).
		OnSync("fail", func(_ context.Context, _ string, op Operation) (string, error) {
			return "", op.Args[0].(error)
		}).
		OnSync("boom", func(_ context.Context, _ string, op Operation) (string, error) {
			panic(op.Args[0])
		})
}

// textFactory returns a factory of chains over textHandlers.
func textFactory(opts ...Option) Factory[string] {
	return New(Dispatch(textHandlers()), opts...)
}

// recorder collects the operations a reducer has seen, in call order.
type recorder struct {
	mu  sync.Mutex
	ops []Operation
}

func (r *recorder) record(op Operation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.ops))
	for i, op := range r.ops {
		types[i] = op.Type
	}
	return types
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ops)
}

// counting returns a reducer that adds one to the payload and records every
// operation. Operations of type "async" resolve in a new goroutine.
func (r *recorder) counting() Reducer[int] {
	return func(_ context.Context, n int, op Operation) *Future[int] {
		r.record(op)
		if op.Type == "async" {
			return Go(func() (int, error) {
				time.Sleep(time.Millisecond)
				return n + 1, nil
			})
		}
		return Resolved(n + 1)
	}
}

// ==== Test Helpers: Error Validators ====

// isNil validates that the error is nil.
func isNil(testErr error) error {
	if testErr != nil {
		return fmt.Errorf("unexpected error: %w", testErr)
	}
	return nil
}

// all returns a validator that passes only if all the given validators pass.
func all(validators ...func(error) error) func(error) error {
	return func(testErr error) error {
		for _, validator := range validators {
			if err := validator(testErr); err != nil {
				return err
			}
		}
		return nil
	}
}

// matches returns a validator that checks if the error matches the target error using errors.Is.
func matches(targetErr error) func(error) error {
	return func(testError error) error {
		if !errors.Is(testError, targetErr) {
			return fmt.Errorf("expected error %v to match error %v", testError, targetErr)
		}
		return nil
	}
}

// notMatches returns a validator that checks if the error does not match the target error.
func notMatches(targetErr error) func(error) error {
	return func(testError error) error {
		if errors.Is(testError, targetErr) {
			return fmt.Errorf("expected error %v to not match error %v", testError, targetErr)
		}
		return nil
	}
}

// isRecoveredPanic validates that the error is a RecoveredPanic.
func isRecoveredPanic(testErr error) error {
	var recoveredPanic *RecoveredPanic
	if !errors.As(testErr, &recoveredPanic) {
		return fmt.Errorf("expected RecoveredPanic error, got %v", testErr)
	}
	return nil
}

// isUnknownOperation validates that the error is an UnknownOperationError
// for the given type.
func isUnknownOperation(typ string) func(error) error {
	return func(testErr error) error {
		var unknown *UnknownOperationError
		if !errors.As(testErr, &unknown) {
			return fmt.Errorf("expected UnknownOperationError, got %v", testErr)
		}
		if unknown.Type != typ {
			return fmt.Errorf("expected unknown type %q, got %q", typ, unknown.Type)
		}
		return nil
	}
}

// contains returns a validator that checks if the error message contains the given substring.
func contains(substring string) func(error) error {
	return func(testErr error) error {
		if testErr == nil || !strings.Contains(testErr.Error(), substring) {
			return fmt.Errorf("expected error to contain %q, got %v", substring, testErr)
		}
		return nil
	}
}

// SPDX-License-Identifier: Apache-2.0

package chain

import (
	"fmt"
)

// RecoveredPanic is an error type that wraps a panic value.
//
// A reducer that panics while replaying a chain rejects the invocation with a
// *RecoveredPanic instead of crashing the goroutine that happened to run it.
type RecoveredPanic struct {
	Value any
}

func (p *RecoveredPanic) Error() string {
	return fmt.Sprintf("panic recovered: %v", p.Value)
}

// UnknownOperationError is returned by chains created with [WithStrict] when
// the operation log contains a type that was not registered.
//
// Users can use [errors.As] to detect and inspect it.
type UnknownOperationError struct {
	// Type is the unregistered operation name.
	Type string
	// Index is the position of the operation in the log.
	Index int
}

// Error returns the formatted error message.
func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation %q at index %d", e.Type, e.Index)
}

// SPDX-License-Identifier: Apache-2.0

package chain

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TraceEvent records one replayed operation of a traced invocation.
type TraceEvent struct {
	// Index is the position of the operation in the chain.
	Index int `json:"index"`

	// Type is the operation type.
	Type string `json:"type"`

	// Details are the values attached via [Operation.Debug], in order.
	Details []any `json:"details,omitempty"`

	// Start is when the reducer was called for this operation.
	Start time.Time `json:"start"`

	// Duration is how long the operation's result took to settle.
	Duration time.Duration `json:"duration"`
}

// Trace is the record of one successful invocation of a traced chain.
// All fields are directly accessible for querying and analysis.
type Trace struct {
	// ID uniquely identifies the invocation. It is empty for filtered traces.
	ID string `json:"id,omitempty"`

	// Label is the label the chain's factory was configured with.
	Label string `json:"label"`

	// Events has one entry per operation, in replay order.
	Events []TraceEvent `json:"events"`

	// Start is when the invocation began.
	Start time.Time `json:"start"`

	// Duration is the total time until the invocation resolved.
	// For filtered traces (from Filter), this is the sum of event durations.
	Duration time.Duration `json:"duration"`
}

// trace is the collection infrastructure for a single invocation.
//
// Reducers may call Operation.Debug from goroutines of their own, so all
// access goes through mu.
type trace struct {
	mu     sync.Mutex
	result *Trace
}

// newTrace prepares one event per operation.
func newTrace(label string, operations []Operation) *trace {
	result := &Trace{
		ID:     uuid.Must(uuid.NewV7()).String(),
		Label:  label,
		Start:  time.Now(),
		Events: make([]TraceEvent, len(operations)),
	}
	for i, op := range operations {
		result.Events[i] = TraceEvent{
			Index: i,
			Type:  op.Type,
		}
	}
	return &trace{result: result}
}

// begin marks the start of operation i.
func (t *trace) begin(i int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.result.Events[i].Start = time.Now()
}

// finish records the duration of operation i. Only the first call counts.
func (t *trace) finish(i int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	event := &t.result.Events[i]
	if event.Duration == 0 && !event.Start.IsZero() {
		event.Duration = time.Since(event.Start)
	}
}

// debugFunc returns the Debug hook for operation i.
func (t *trace) debugFunc(i int) func([]any) {
	return func(details []any) {
		t.mu.Lock()
		defer t.mu.Unlock()
		event := &t.result.Events[i]
		event.Details = append(event.Details, details...)
	}
}

// complete finalizes the trace and returns a copy safe to hand out.
func (t *trace) complete() *Trace {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.result.Duration = time.Since(t.result.Start)

	out := *t.result
	out.Events = make([]TraceEvent, len(t.result.Events))
	for i, event := range t.result.Events {
		event.Details = append([]any(nil), event.Details...)
		out.Events[i] = event
	}
	return &out
}

// emitTrace delivers a finished trace to the configured destination.
func emitTrace(ctx context.Context, opts *options, tr *Trace) {
	if opts.traceFunc != nil {
		opts.traceFunc(ctx, tr)
		return
	}

	logger := opts.traceLogger
	if logger == nil {
		logger = Slogger(ctx)
	}
	if !logger.Enabled(ctx, opts.traceLevel) {
		return
	}

	attrs := make([]any, 0, len(tr.Events)+2)
	attrs = append(attrs,
		slog.String("trace_id", tr.ID),
		slog.Int64("duration_ms", tr.Duration.Milliseconds()),
	)
	for _, event := range tr.Events {
		group := []any{slog.String("type", event.Type)}
		if len(event.Details) > 0 {
			group = append(group, slog.Any("details", event.Details))
		}
		attrs = append(attrs, slog.Group(strconv.Itoa(event.Index), group...))
	}
	logger.Log(ctx, opts.traceLevel, tr.Label, attrs...)
}

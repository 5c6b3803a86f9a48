// SPDX-License-Identifier: Apache-2.0

package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// WriteTo serializes the trace as JSON to the given writer.
//
// Returns the number of bytes written and any error.
// The JSON is formatted as a pretty-printed object with a trailing newline.
func (t *Trace) WriteTo(w io.Writer) (int64, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to marshal trace: %w", err)
	}
	data = append(data, '\n')

	n, err := w.Write(data)
	if err != nil {
		return int64(n), fmt.Errorf("failed to write trace: %w", err)
	}
	return int64(n), nil
}

// WriteText outputs a human-readable view of the trace.
//
// The first line carries the label and total duration. Each operation
// follows, indented, with its own duration; attached details are listed
// beneath it.
//
// Example output:
//
//	text (1.2ms)
//	  upper (300µs)
//	    input=foo
//	  split (850µs)
func (t *Trace) WriteText(w io.Writer) (int64, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", t.Label, t.Duration)
	for _, event := range t.Events {
		fmt.Fprintf(&b, "  %s (%s)\n", event.Type, event.Duration)
		for _, detail := range event.Details {
			fmt.Fprintf(&b, "    %v\n", detail)
		}
	}

	n, err := io.WriteString(w, b.String())
	if err != nil {
		return int64(n), fmt.Errorf("failed to write text: %w", err)
	}
	return int64(n), nil
}

// WriteJSONTo returns a trace func that serializes each trace as JSON.
//
// Write failures are ignored; tracing never affects the invocation.
//
//	factory := chain.New(reducer, chain.WithTraceFunc(chain.WriteJSONTo(f)))
func WriteJSONTo(w io.Writer) func(context.Context, *Trace) {
	return func(_ context.Context, trace *Trace) {
		_, _ = trace.WriteTo(w)
	}
}

// WriteTextTo returns a trace func that writes each trace as human-readable
// text.
//
// Write failures are ignored; tracing never affects the invocation.
//
//	factory := chain.New(reducer,
//	    chain.WithTrace("text"),
//	    chain.WithTraceFunc(chain.WriteTextTo(os.Stderr)),
//	)
func WriteTextTo(w io.Writer) func(context.Context, *Trace) {
	return func(_ context.Context, trace *Trace) {
		_, _ = trace.WriteText(w)
	}
}

// SPDX-License-Identifier: Apache-2.0

package chain

import (
	"path/filepath"
	"time"
)

// TraceFilter is a predicate function for filtering trace events.
type TraceFilter func(TraceEvent) bool

// FindEvent returns the first event matching all provided filters, or nil if none match.
//
// Multiple filters are AND'd together.
//
// Example:
//
//	// Find the first slow map operation
//	event := trace.FindEvent(
//	    chain.TypeIs("map"),
//	    chain.MinDuration(time.Second),
//	)
//	if event != nil {
//	    log.Printf("slow map at %d took %v", event.Index, event.Duration)
//	}
func (t *Trace) FindEvent(filters ...TraceFilter) *TraceEvent {
	for i := range t.Events {
		if matchAll(t.Events[i], filters) {
			return &t.Events[i]
		}
	}
	return nil
}

// Filter returns a new Trace containing only events matching all provided filters.
//
// Multiple filters are AND'd together. The original trace is not modified.
//
// The returned trace keeps the label. Its Duration is the sum of the
// durations of the filtered events, and its Start is the earliest start of
// the filtered events, or the original Start if no events match. The ID is
// cleared, since the result no longer describes one invocation.
func (t *Trace) Filter(filters ...TraceFilter) *Trace {
	filtered := make([]TraceEvent, 0, len(t.Events))
	var totalDuration time.Duration
	var earliestStart time.Time

	for _, event := range t.Events {
		if !matchAll(event, filters) {
			continue
		}
		filtered = append(filtered, event)
		totalDuration += event.Duration
		if earliestStart.IsZero() || event.Start.Before(earliestStart) {
			earliestStart = event.Start
		}
	}

	startTime := t.Start
	if !earliestStart.IsZero() {
		startTime = earliestStart
	}

	return &Trace{
		Label:    t.Label,
		Events:   filtered,
		Start:    startTime,
		Duration: totalDuration,
	}
}

func matchAll(event TraceEvent, filters []TraceFilter) bool {
	for _, filter := range filters {
		if !filter(event) {
			return false
		}
	}
	return true
}

// MinDuration returns a filter that matches events with duration >= d.
func MinDuration(d time.Duration) TraceFilter {
	return func(event TraceEvent) bool {
		return event.Duration >= d
	}
}

// MaxDuration returns a filter that matches events with duration <= d.
func MaxDuration(d time.Duration) TraceFilter {
	return func(event TraceEvent) bool {
		return event.Duration <= d
	}
}

// HasDetails returns a filter that matches events with debug details attached.
func HasDetails() TraceFilter {
	return func(event TraceEvent) bool {
		return len(event.Details) > 0
	}
}

// TypeIs returns a filter that matches events of any of the given operation types.
func TypeIs(types ...string) TraceFilter {
	return func(event TraceEvent) bool {
		for _, typ := range types {
			if event.Type == typ {
				return true
			}
		}
		return false
	}
}

// TypeMatches returns a filter that matches events whose operation type
// matches the glob pattern.
//
// Patterns use filepath.Match semantics; see its documentation for the full details
// of matching behavior (e.g., *, ?, and [...] for character sets).
//
// If the pattern is malformed, no events will match (returns false).
func TypeMatches(pattern string) TraceFilter {
	return func(event TraceEvent) bool {
		matched, err := filepath.Match(pattern, event.Type)
		if err != nil {
			// Invalid pattern - fail closed (no matches)
			return false
		}
		return matched
	}
}

// IndexBetween returns a filter that matches events at positions lo through
// hi, inclusive.
func IndexBetween(lo, hi int) TraceFilter {
	return func(event TraceEvent) bool {
		return event.Index >= lo && event.Index <= hi
	}
}

// SPDX-License-Identifier: Apache-2.0

package chain

import (
	"context"
	"slices"
	"sync/atomic"
	"testing"
	"time"
)

func TestAll(t *testing.T) {
	t.Parallel()
	factory := textFactory()
	testCases := []struct {
		name      string
		opts      JoinOptions
		chains    func() []*Chain[string]
		expected  []string
		validator func(error) error
	}{
		{
			name: "Empty",
			chains: func() []*Chain[string] {
				return nil
			},
			expected:  []string{},
			validator: isNil,
		},
		{
			name: "ResultsInChainOrder",
			chains: func() []*Chain[string] {
				return []*Chain[string]{
					factory().Invoke("later", 5*time.Millisecond).Invoke("append", "1"),
					factory().Invoke("upper"),
					factory(),
				}
			},
			expected:  []string{"foo1", "FOO", "foo"},
			validator: isNil,
		},
		{
			name: "Limited",
			opts: JoinOptions{Limit: 1},
			chains: func() []*Chain[string] {
				return []*Chain[string]{
					factory().Invoke("later", time.Millisecond).Invoke("append", "a"),
					factory().Invoke("append", "b"),
				}
			},
			expected:  []string{"fooa", "foob"},
			validator: isNil,
		},
		{
			name: "FirstError",
			chains: func() []*Chain[string] {
				return []*Chain[string]{
					factory().Invoke("upper"),
					factory().Invoke("fail", error1),
				}
			},
			expected:  nil,
			validator: matches(error1),
		},
		{
			name: "JoinErrors",
			opts: JoinOptions{JoinErrors: true},
			chains: func() []*Chain[string] {
				return []*Chain[string]{
					factory().Invoke("fail", error1),
					factory().Invoke("upper"),
					factory().Invoke("later", time.Millisecond).Invoke("fail", error2),
				}
			},
			expected: []string{"", "FOO", ""},
			validator: all(
				matches(error1),
				matches(error2),
				contains("error 1\nerror 2"),
			),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx := t.Context()
			got, err := AllWith(ctx, tc.opts, "foo", tc.chains()...).Await(ctx)
			if verr := tc.validator(err); verr != nil {
				t.Error(verr)
			}
			if tc.expected == nil {
				if got != nil {
					t.Errorf("got %v, want nil", got)
				}
				return
			}
			if !slices.Equal(got, tc.expected) {
				t.Errorf("got %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestAllRunsConcurrently(t *testing.T) {
	t.Parallel()
	var running, peak atomic.Int32
	reducer := func(_ context.Context, n int, _ Operation) *Future[int] {
		return Go(func() (int, error) {
			cur := running.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			running.Add(-1)
			return n + 1, nil
		})
	}
	factory := New(reducer)

	ctx := t.Context()
	got, err := All(ctx, 0,
		factory().Invoke("step"),
		factory().Invoke("step"),
		factory().Invoke("step"),
	).Await(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(got, []int{1, 1, 1}) {
		t.Errorf("got %v, want [1 1 1]", got)
	}
	if peak.Load() < 2 {
		t.Errorf("chains did not overlap (peak %d)", peak.Load())
	}
}

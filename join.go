// SPDX-License-Identifier: Apache-2.0

package chain

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// JoinOptions specifies how chains are invoked concurrently by [AllWith].
type JoinOptions struct {
	// Limit controls how many chains may run at once.
	//
	// Numbers less than or equal to zero indicate no limit.
	Limit int

	// JoinErrors controls error handling.
	//
	// By default, when false, the first chain that fails cancels the context
	// of the rest, and this first error is returned. (This is the behavior
	// of the `errgroup` package.)
	//
	// If enabled, all chains are run to completion regardless of errors, and
	// a combined `errors.Join` error of all failures, in chain order, is
	// returned.
	JoinErrors bool
}

// All invokes every chain against the same payload concurrently.
//
// All is the same as [AllWith] with the default [JoinOptions].
func All[P any](ctx context.Context, payload P, chains ...*Chain[P]) *Future[[]P] {
	return AllWith(ctx, JoinOptions{}, payload, chains...)
}

// AllWith invokes every chain against the same payload concurrently and
// resolves to their results in chain order.
//
// Each invocation is independent; none of them observes the others. If the
// payload is shared mutable state, ensure access to it is thread-safe.
//
// Example:
//
//	results, err := chain.AllWith(ctx,
//	    chain.JoinOptions{Limit: 2},
//	    "foo",
//	    text().Invoke("upper"),
//	    text().Invoke("reverse"),
//	).Await(ctx)
func AllWith[P any](
	ctx context.Context,
	opts JoinOptions,
	payload P,
	chains ...*Chain[P],
) *Future[[]P] {
	return Go(func() ([]P, error) {
		results := make([]P, len(chains))
		errs := make([]error, len(chains))

		group, subCtx := errgroup.WithContext(ctx)
		if opts.Limit > 0 {
			group.SetLimit(opts.Limit)
		}
		for i, c := range chains {
			group.Go(func() error {
				value, err := c.Run(subCtx, payload).Await(subCtx)
				if err != nil {
					if opts.JoinErrors {
						errs[i] = err
						return nil
					}
					return err
				}
				results[i] = value
				return nil
			})
		}

		if err := group.Wait(); err != nil {
			return nil, err
		}
		if err := errors.Join(errs...); err != nil {
			return results, err
		}
		return results, nil
	})
}

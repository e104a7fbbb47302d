// Package batch applies one id-keyed operation to many ids with bounded
// concurrency.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/intellinbox/pkg/logger"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Default batch configuration constants.
const (
	defaultWorkers = 4
)

// Func is the operation applied to each id.
type Func func(ctx context.Context, id int64) error

// Failure pairs an id with the error its operation returned.
type Failure struct {
	ID  int64
	Err error
}

func (f Failure) Error() string {
	return fmt.Sprintf("id %d: %v", f.ID, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Result lists the outcome per id, in input order.
type Result struct {
	Succeeded []int64
	Failed    []Failure
	// Skipped holds ids never dispatched because ctx ended first.
	Skipped  []int64
	Duration time.Duration

	cause error
}

// Err joins every failure, or returns nil when all ids succeeded. Skipped
// ids are reported with the context's error.
func (r Result) Err() error {
	errs := make([]error, 0, len(r.Failed)+1)
	for _, f := range r.Failed {
		errs = append(errs, f)
	}
	if len(r.Skipped) > 0 {
		errs = append(errs, fmt.Errorf("%d ids skipped: %w", len(r.Skipped), r.cause))
	}
	return errors.Join(errs...)
}

type runner struct {
	workers int
	name    string
	logger  logger.Logger
	limiter *rate.Limiter
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeSucceeded
	outcomeFailed
)

// Run applies fn to every distinct id with at most the configured number
// of calls in flight. A failing id does not stop the others. Once ctx is
// done no further ids are dispatched.
func Run(ctx context.Context, ids []int64, fn Func, opts ...Option) Result {
	r := &runner{
		workers: defaultWorkers,
		name:    "batch",
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	start := time.Now()
	unique := dedupe(ids)
	outcomes := make([]outcome, len(unique))
	errs := make([]error, len(unique))

	// Errors are collected per id rather than returned to the group so
	// one failure does not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(r.workers)

dispatch:
	for i, id := range unique {
		select {
		case <-ctx.Done():
			break dispatch
		default:
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if r.limiter != nil {
				if err := r.limiter.Wait(ctx); err != nil {
					if ctx.Err() == nil {
						outcomes[i], errs[i] = outcomeFailed, err
					}
					return nil
				}
			}
			if err := fn(ctx, id); err != nil {
				outcomes[i], errs[i] = outcomeFailed, err
				r.logger.Warn(ctx, "operation failed",
					logger.String("batch", r.name),
					logger.Int64("id", id),
					logger.Error(err))
				return nil
			}
			outcomes[i] = outcomeSucceeded
			return nil
		})
	}
	_ = g.Wait()

	res := Result{Duration: time.Since(start), cause: ctx.Err()}
	for i, id := range unique {
		switch outcomes[i] {
		case outcomeSucceeded:
			res.Succeeded = append(res.Succeeded, id)
		case outcomeFailed:
			res.Failed = append(res.Failed, Failure{ID: id, Err: errs[i]})
		default:
			res.Skipped = append(res.Skipped, id)
		}
	}

	r.logger.Debug(ctx, "batch completed",
		logger.String("batch", r.name),
		logger.Int("succeeded", len(res.Succeeded)),
		logger.Int("failed", len(res.Failed)),
		logger.Int("skipped", len(res.Skipped)),
		logger.Duration("duration", res.Duration))
	return res
}

// dedupe drops repeated ids, keeping first occurrences in order.
func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

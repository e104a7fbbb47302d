package batch

import (
	"github.com/okian/intellinbox/pkg/logger"
	"golang.org/x/time/rate"
)

// Option applies a configuration option to a Run.
type Option func(*runner)

// WithWorkers bounds how many ids are in flight at once.
func WithWorkers(n int) Option {
	return func(r *runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithName labels progress logs.
func WithName(name string) Option {
	return func(r *runner) {
		if name != "" {
			r.name = name
		}
	}
}

// WithLogger sets the logger used for per-id failures and the summary.
func WithLogger(l logger.Logger) Option {
	return func(r *runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRateLimit caps dispatch at perSecond calls per second across all
// workers. Zero or less leaves dispatch unthrottled.
func WithRateLimit(perSecond float64) Option {
	return func(r *runner) {
		if perSecond > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

package livestore

import (
	"time"

	"github.com/okian/scorebook/pkg/logger"
)

// Option applies a configuration option to the Publisher.
type Option func(*Publisher)

// WithRetries sets how many times a failed write is retried.
func WithRetries(n int) Option {
	return func(p *Publisher) {
		if n >= 0 {
			p.retries = n
		}
	}
}

// WithBackoff sets the delay before the first retry; it doubles per attempt.
func WithBackoff(d time.Duration) Option {
	return func(p *Publisher) {
		if d >= 0 {
			p.backoff = d
		}
	}
}

// WithLogger sets the publisher logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.log = l
		}
	}
}

// WithClearedLanes sets how many cleared matches keep rejecting late live
// writes before their bookkeeping is dropped.
func WithClearedLanes(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.maxCleared = n
		}
	}
}

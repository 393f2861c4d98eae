package service

import (
	"time"

	"github.com/okian/scorebook/internal/adapters/livestore"
	workerpool "github.com/okian/scorebook/internal/adapters/mq/worker"
	"github.com/okian/scorebook/internal/domain/fixture"
	"github.com/okian/scorebook/internal/domain/match"
	"github.com/okian/scorebook/internal/domain/standings"
	"github.com/okian/scorebook/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of result workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the result queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many score event ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLiveStore sets the live store. The caller keeps ownership and closes it.
func WithLiveStore(store livestore.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithArchive stores every completed result.
func WithArchive(a workerpool.Archiver) Option {
	return func(s *Service) {
		if a != nil {
			s.archive = a
		}
	}
}

// WithNotifier announces every completed result.
func WithNotifier(n workerpool.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithMatchPolicy sets the over and wicket limits that end an innings.
func WithMatchPolicy(p match.Policy) Option {
	return func(s *Service) {
		if p.MaxOvers >= 0 && p.MaxWickets >= 0 {
			s.matchPolicy = p
		}
	}
}

// WithPointsScheme sets the standings points scheme.
func WithPointsScheme(sc standings.Scheme) Option {
	return func(s *Service) {
		if sc.Win >= sc.Tie && sc.Tie >= sc.Loss {
			s.scheme = sc
		}
	}
}

// WithOddTeam sets how a knockout draw treats an unpaired team.
func WithOddTeam(o fixture.OddTeam) Option {
	return func(s *Service) {
		if o == fixture.OddTeamDrop || o == fixture.OddTeamWalkover {
			s.oddTeam = o
		}
	}
}

// WithPublishRetry sets the live store retry budget.
func WithPublishRetry(retries int, backoff time.Duration) Option {
	return func(s *Service) {
		if retries >= 0 {
			s.publishRetries = retries
		}
		if backoff > 0 {
			s.publishBackoff = backoff
		}
	}
}

// WithClock sets the time source for match timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMatchIDs sets the match id source. Ids must be unique across tournaments.
func WithMatchIDs(fn func(n int) string) Option {
	return func(s *Service) {
		if fn != nil {
			s.matchIDs = fn
		}
	}
}

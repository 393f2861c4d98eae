package livestore

import (
	"context"
	"sync"
	"time"

	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/pkg/logger"
	"github.com/okian/scorebook/pkg/metrics"
)

const (
	defaultRetries = 3
	defaultBackoff = 50 * time.Millisecond
	maxBackoff     = 2 * time.Second

	defaultClearedLanes = 1024
)

// Record kinds used for metrics labels.
const (
	KindTournament  = "tournament"
	KindMatch       = "match"
	KindLive        = "live"
	KindResult      = "result"
	KindPointsTable = "points_table"
)

// Publisher mirrors domain state into a Store. Writes are retried with
// exponential backoff. Live state of one match is written in Seq order and a
// stale Seq is dropped, so readers never see a match move backwards.
// Lanes of cleared matches are kept for the most recent maxCleared matches.
type Publisher struct {
	store      Store
	retries    int
	backoff    time.Duration
	maxCleared int
	log        logger.Logger

	mu      sync.Mutex
	lanes   map[string]*lane
	cleared []string // cleared match ids, oldest first
}

// lane serialises live writes of one match.
type lane struct {
	mu      sync.Mutex
	lastSeq uint64
	cleared bool
}

// NewPublisher creates a publisher over store.
func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:      store,
		retries:    defaultRetries,
		backoff:    defaultBackoff,
		maxCleared: defaultClearedLanes,
		lanes:      make(map[string]*lane),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.Named("publisher")
	}
	return p
}

// Store returns the underlying store.
func (p *Publisher) Store() Store { return p.store }

// PublishLive writes liveMatches/{matchId}. A state older than the last one
// written, or any state after ClearLive, is skipped without error.
func (p *Publisher) PublishLive(ctx context.Context, st model.LiveMatchState) error {
	const op = "livestore.PublishLive"
	if st.MatchID == "" {
		return model.NewError(op, model.ErrMissingTournamentContext, "live state has no match id")
	}
	l := p.lane(st.MatchID)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cleared || (l.lastSeq > 0 && st.Seq <= l.lastSeq) {
		p.log.Debug(ctx, "skipping stale live state",
			logger.String("match_id", st.MatchID), logger.Any("seq", st.Seq), logger.Any("last_seq", l.lastSeq))
		return nil
	}
	if err := p.write(ctx, op, KindLive, LiveMatchPath(st.MatchID), st); err != nil {
		return err
	}
	l.lastSeq = st.Seq
	return nil
}

// ClearLive removes liveMatches/{matchId}. Later PublishLive calls for the
// match are ignored until maxCleared newer matches have been cleared.
func (p *Publisher) ClearLive(ctx context.Context, matchID string) error {
	const op = "livestore.ClearLive"
	l := p.lane(matchID)
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.cleared {
		l.cleared = true
		p.retire(matchID)
	}
	return p.retry(ctx, op, KindLive, func(ctx context.Context) error {
		return p.store.Remove(ctx, LiveMatchPath(matchID))
	})
}

// PublishTournament writes tournaments/{tournamentId}.
func (p *Publisher) PublishTournament(ctx context.Context, t model.Tournament) error {
	return p.write(ctx, "livestore.PublishTournament", KindTournament, TournamentPath(t.ID), t)
}

// PublishMatch writes tournaments/{tournamentId}/matches/{matchId}.
func (p *Publisher) PublishMatch(ctx context.Context, m model.Match) error {
	return p.write(ctx, "livestore.PublishMatch", KindMatch, MatchPath(m.TournamentID, m.ID), m)
}

// PublishResult writes results/{tournamentId}/{matchId}.
func (p *Publisher) PublishResult(ctx context.Context, r model.Result) error {
	return p.write(ctx, "livestore.PublishResult", KindResult, ResultPath(r.TournamentID, r.MatchID), r)
}

// PublishPointsTable writes tournaments/{tournamentId}/pointsTable.
func (p *Publisher) PublishPointsTable(ctx context.Context, tournamentID string, rows []model.StandingsRow) error {
	return p.write(ctx, "livestore.PublishPointsTable", KindPointsTable, PointsTablePath(tournamentID), rows)
}

func (p *Publisher) lane(matchID string) *lane {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.lanes[matchID]
	if !ok {
		l = &lane{}
		p.lanes[matchID] = l
	}
	return l
}

// retire records a cleared match and forgets the oldest ones beyond maxCleared.
func (p *Publisher) retire(matchID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cleared = append(p.cleared, matchID)
	for len(p.cleared) > p.maxCleared {
		delete(p.lanes, p.cleared[0])
		p.cleared = p.cleared[1:]
	}
}

func (p *Publisher) write(ctx context.Context, op, kind, path string, value any) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	return p.retry(ctx, op, kind, func(ctx context.Context) error {
		return p.store.Write(ctx, path, value)
	})
}

func (p *Publisher) retry(ctx context.Context, op, kind string, fn func(context.Context) error) error {
	start := time.Now()
	wait := p.backoff
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(ctx); err == nil {
			metrics.RecordPublishLatency(kind, float64(time.Since(start).Microseconds())/1000.0)
			return nil
		}
		if attempt >= p.retries || ctx.Err() != nil {
			break
		}
		metrics.RecordPublishRetry()
		p.log.Warn(ctx, "live store write failed, retrying",
			logger.String("op", op), logger.Int("attempt", attempt+1), logger.Error(err))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}
		wait = min(wait*2, maxBackoff)
	}
	metrics.RecordPublishFailure(kind)
	metrics.RecordErrorByComponent("publisher", kind)
	p.log.Error(ctx, "live store write failed", logger.String("op", op), logger.Error(err))
	return model.WrapError(op, model.ErrPersistenceUnavailable, err)
}

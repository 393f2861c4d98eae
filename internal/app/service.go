// Package service wires the scoring domain to the live store and the result
// pipeline, and implements the operations exposed by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/xid"

	"github.com/okian/scorebook/internal/adapters/livestore"
	resultqueue "github.com/okian/scorebook/internal/adapters/mq/queue"
	workerpool "github.com/okian/scorebook/internal/adapters/mq/worker"
	"github.com/okian/scorebook/internal/domain/dedupe"
	"github.com/okian/scorebook/internal/domain/fixture"
	"github.com/okian/scorebook/internal/domain/match"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/passcode"
	"github.com/okian/scorebook/internal/domain/scoring"
	"github.com/okian/scorebook/internal/domain/standings"
	"github.com/okian/scorebook/internal/domain/types"
	"github.com/okian/scorebook/pkg/logger"
	"github.com/okian/scorebook/pkg/metrics"
)

// Request and response shapes shared with the HTTP layer.
type (
	CreateTournamentInput = types.CreateTournamentInput
	CreatedTournament     = types.CreatedTournament
	MatchUpdate           = types.MatchUpdate
	TournamentSummary     = types.TournamentSummary
)

// tournamentEntry guards one tournament and the machines of its matches.
// tableMu orders points table publishes and is taken before mu.
type tournamentEntry struct {
	mu       sync.Mutex
	tableMu  sync.Mutex
	t        model.Tournament
	machines map[string]*match.Machine
}

// Service implements the API dependencies for the scorebook.
type Service struct {
	mu sync.RWMutex

	tournaments map[string]*tournamentEntry
	matchIndex  map[string]string // match id -> tournament id

	// Core components
	store       livestore.Store
	ownsStore   bool
	publisher   *livestore.Publisher
	deduper     dedupe.Deduper
	resultQueue resultqueue.Queue
	workerPool  *workerpool.Pool
	scoring     *scoring.Model
	archive     workerpool.Archiver
	notifier    workerpool.Notifier

	// Configuration
	workerCount    int
	queueSize      int
	dedupeSize     int
	matchPolicy    match.Policy
	scheme         standings.Scheme
	oddTeam        fixture.OddTeam
	publishRetries int
	publishBackoff time.Duration
	now            func() time.Time
	matchIDs       func(n int) string

	// State
	started bool

	logger logger.Logger
}

// New constructs a Service. Call Start to run the result pipeline.
func New(opts ...Option) *Service {
	s := &Service{
		tournaments:    make(map[string]*tournamentEntry),
		matchIndex:     make(map[string]string),
		workerCount:    runtime.NumCPU(),
		queueSize:      1024,
		dedupeSize:     100000,
		scheme:         standings.DefaultScheme,
		oddTeam:        fixture.OddTeamDrop,
		publishRetries: 3,
		publishBackoff: 50 * time.Millisecond,
		now:            time.Now,
		matchIDs:       func(int) string { return xid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if s.store == nil {
		s.store = livestore.NewMemoryStore()
		s.ownsStore = true
	}
	s.publisher = livestore.NewPublisher(s.store,
		livestore.WithRetries(s.publishRetries),
		livestore.WithBackoff(s.publishBackoff),
	)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.resultQueue = resultqueue.NewInMemoryQueue(resultqueue.WithCapacity(s.queueSize))
	s.scoring = scoring.NewModel()
	return s
}

// Start runs the worker pool that archives results and recomputes standings.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.resultQueue.IsClosed() {
		return errors.New("service: cannot restart a stopped service")
	}

	s.logger.Info(ctx, "starting scorebook service...")

	var opts []workerpool.Option
	if s.archive != nil {
		opts = append(opts, workerpool.WithArchive(s.archive))
	}
	if s.notifier != nil {
		opts = append(opts, workerpool.WithNotifier(s.notifier))
	}
	s.workerPool = workerpool.NewPool(s.workerCount, s.resultQueue, s, opts...)
	// Workers outlive the request context that started them.
	s.workerPool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "scorebook service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Any("matchPolicy", s.matchPolicy),
	)
	return nil
}

// Stop drains the result queue and releases the live store if the service
// created it.
func (s *Service) Stop() {
	s.mu.Lock()

	ctx := context.Background()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	pool := s.workerPool
	s.mu.Unlock()

	s.logger.Info(ctx, "stopping scorebook service...")

	// Workers call back into the service, so the lock is not held while draining.
	if pool != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := pool.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(ctx, "result pipeline did not drain", logger.Error(err))
		}
		cancel()
	}
	if s.ownsStore {
		_ = s.store.Close()
	}

	s.logger.Info(ctx, "scorebook service stopped")
}

// Store returns the live store the service publishes to.
func (s *Service) Store() livestore.Store { return s.store }

// CreateTournament validates the roster, generates fixtures and issues the
// match-start passcode.
func (s *Service) CreateTournament(ctx context.Context, in CreateTournamentInput) (CreatedTournament, error) {
	const op = "service.CreateTournament"

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return CreatedTournament{}, model.NewError(op, model.ErrInvalidInput, "tournament name is required")
	}
	teams := make([]model.Team, len(in.Teams))
	for i, t := range in.Teams {
		teams[i] = model.Team{Name: strings.TrimSpace(t.Name), Players: append([]model.Player(nil), t.Players...)}
	}

	id := uuid.NewString()
	sched, err := fixture.Generate(id, teams, in.SchedulePolicy,
		fixture.WithOddTeam(s.oddTeam),
		fixture.WithMatchIDs(s.matchIDs),
	)
	if err != nil {
		return CreatedTournament{}, err
	}
	code, err := passcode.Generate()
	if err != nil {
		return CreatedTournament{}, fmt.Errorf("%s: generate passcode: %w", op, err)
	}

	t := model.Tournament{
		ID:             id,
		Name:           name,
		GameType:       strings.TrimSpace(in.GameType),
		Teams:          teams,
		SchedulePolicy: in.SchedulePolicy,
		Matches:        sched.Matches,
		PointsTable:    standings.Compute(teams, sched.Matches, standings.WithScheme(s.scheme)),
		Unpaired:       sched.Unpaired,
		PasscodeHash:   passcode.Hash(code),
		CreatedAt:      s.now().UTC(),
	}
	if len(sched.Unpaired) > 0 {
		s.logger.Warn(ctx, "knockout draw left teams without a match",
			logger.String("tournament_id", id), logger.Any("unpaired", sched.Unpaired))
	}

	s.mu.Lock()
	s.tournaments[id] = &tournamentEntry{t: t, machines: make(map[string]*match.Machine)}
	for _, m := range t.Matches {
		s.matchIndex[m.ID] = id
	}
	count := len(s.tournaments)
	s.mu.Unlock()
	metrics.UpdateTournaments(count)

	s.logger.Info(ctx, "tournament created",
		logger.String("tournament_id", id),
		logger.Int("teams", len(teams)),
		logger.Int("matches", len(t.Matches)),
	)

	out := CreatedTournament{Tournament: cloneTournament(&t), Passcode: code}
	err = s.publishTournament(ctx, &t)
	out.Published = err == nil
	return out, err
}

// Tournament returns a copy of the tournament.
func (s *Service) Tournament(_ context.Context, tournamentID string) (model.Tournament, error) {
	e, err := s.entry("service.Tournament", tournamentID)
	if err != nil {
		return model.Tournament{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneTournament(&e.t), nil
}

// Tournaments lists every tournament, oldest first.
func (s *Service) Tournaments(_ context.Context) []TournamentSummary {
	entries := s.entries()
	out := make([]TournamentSummary, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		sum := TournamentSummary{
			ID:             e.t.ID,
			Name:           e.t.Name,
			GameType:       e.t.GameType,
			SchedulePolicy: e.t.SchedulePolicy,
			Teams:          len(e.t.Teams),
			Matches:        len(e.t.Matches),
			CreatedAt:      e.t.CreatedAt,
		}
		for _, m := range e.t.Matches {
			switch m.Status {
			case model.StatusLive:
				sum.Live++
			case model.StatusCompleted:
				sum.Completed++
			}
		}
		e.mu.Unlock()
		out = append(out, sum)
	}
	return out
}

// LiveMatches reads the live state of every match in progress from the live
// store, in tournament and then schedule order. Matches whose live state was
// never published are left out.
func (s *Service) LiveMatches(ctx context.Context) ([]model.LiveMatchState, error) {
	const op = "service.LiveMatches"

	var ids []string
	for _, e := range s.entries() {
		e.mu.Lock()
		for _, m := range e.t.Matches {
			if m.Status == model.StatusLive {
				ids = append(ids, m.ID)
			}
		}
		e.mu.Unlock()
	}

	out := make([]model.LiveMatchState, 0, len(ids))
	for _, id := range ids {
		snap, err := s.store.Read(ctx, livestore.LiveMatchPath(id))
		if err != nil {
			return nil, model.WrapError(op, model.ErrPersistenceUnavailable, err)
		}
		if !snap.Exists {
			continue
		}
		var st model.LiveMatchState
		if err := snap.Decode(&st); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// Matches returns the tournament's matches in schedule order.
func (s *Service) Matches(ctx context.Context, tournamentID string) ([]model.Match, error) {
	t, err := s.Tournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return t.Matches, nil
}

// Standings computes the points table from the tournament's completed matches.
func (s *Service) Standings(_ context.Context, tournamentID string) ([]model.StandingsRow, error) {
	e, err := s.entry("service.Standings", tournamentID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return standings.Compute(e.t.Teams, e.t.Matches, standings.WithScheme(s.scheme)), nil
}

// RecomputeStandings rebuilds the stored points table and publishes it.
// Concurrent calls for one tournament publish in the order they computed, so
// the last table written always covers every completed match.
func (s *Service) RecomputeStandings(ctx context.Context, tournamentID string) error {
	e, err := s.entry("service.RecomputeStandings", tournamentID)
	if err != nil {
		return err
	}
	e.tableMu.Lock()
	defer e.tableMu.Unlock()

	e.mu.Lock()
	rows := standings.Compute(e.t.Teams, e.t.Matches, standings.WithScheme(s.scheme))
	e.t.PointsTable = rows
	e.mu.Unlock()

	metrics.RecordStandingsRecompute()
	return s.publisher.PublishPointsTable(ctx, tournamentID, rows)
}

// StartMatch checks the passcode and moves a scheduled match to Live.
func (s *Service) StartMatch(ctx context.Context, matchID, code string) (MatchUpdate, error) {
	const op = "service.StartMatch"

	e, err := s.entryForMatch(op, matchID)
	if err != nil {
		return MatchUpdate{}, err
	}

	e.mu.Lock()
	if !passcode.Verify(e.t.PasscodeHash, code) {
		e.mu.Unlock()
		return MatchUpdate{}, model.NewError(op, model.ErrAuthorizationFailure, "passcode does not match tournament %s", e.t.ID)
	}
	if _, ok := e.machines[matchID]; ok {
		e.mu.Unlock()
		return MatchUpdate{}, model.NewError(op, model.ErrInvalidStateTransition, "cannot start match %s: it has already started", matchID)
	}
	rec, _ := e.t.Match(matchID)
	if rec.Status != model.StatusScheduled {
		e.mu.Unlock()
		return MatchUpdate{}, model.NewError(op, model.ErrInvalidStateTransition, "cannot start match %s: it is %s", matchID, rec.Status)
	}
	mc, err := match.New(*rec,
		match.WithPolicy(s.matchPolicy),
		match.WithScoringModel(s.scoring),
		match.WithClock(s.now),
	)
	if err != nil {
		e.mu.Unlock()
		return MatchUpdate{}, err
	}
	live, err := mc.Start()
	if err != nil {
		e.mu.Unlock()
		return MatchUpdate{}, err
	}
	e.machines[matchID] = mc
	*rec = mc.Match()
	snapshot := *rec
	e.mu.Unlock()

	metrics.RecordMatchStarted()
	s.logger.Info(ctx, "match started",
		logger.String("tournament_id", live.TournamentID),
		logger.String("match_id", matchID),
		logger.String("batting", live.BattingTeam),
	)

	err = errors.Join(
		s.publisher.PublishLive(ctx, live),
		s.publisher.PublishMatch(ctx, snapshot),
	)
	return MatchUpdate{Live: live, Published: err == nil}, err
}

// ApplyEvent applies one ball outcome. A repeated eventID for the same match
// is acknowledged as a duplicate and not applied again.
func (s *Service) ApplyEvent(ctx context.Context, matchID, eventID, event string) (MatchUpdate, error) {
	const op = "service.ApplyEvent"

	ev, err := s.scoring.ParseEvent(event)
	if err != nil {
		return MatchUpdate{}, err
	}
	e, mc, err := s.machine(op, "apply "+string(ev), matchID)
	if err != nil {
		return MatchUpdate{}, err
	}

	if eventID != "" && s.deduper.SeenAndRecord(ctx, matchID, eventID) {
		metrics.RecordDuplicateEvent()
		s.logger.Debug(ctx, "duplicate score event",
			logger.String("match_id", matchID), logger.String("event_id", eventID))
		return MatchUpdate{Live: mc.Live(), Duplicate: true, Published: true}, nil
	}

	step, err := mc.Apply(ev)
	if err != nil {
		if eventID != "" {
			s.deduper.Unrecord(ctx, matchID, eventID)
		}
		return MatchUpdate{}, err
	}
	metrics.RecordScoreEvent(string(ev))
	return s.afterStep(ctx, e, mc, step)
}

// EndInnings closes the open innings.
func (s *Service) EndInnings(ctx context.Context, matchID string) (MatchUpdate, error) {
	const op = "service.EndInnings"

	e, mc, err := s.machine(op, "end innings", matchID)
	if err != nil {
		return MatchUpdate{}, err
	}
	step, err := mc.EndInnings()
	if err != nil {
		return MatchUpdate{}, err
	}
	return s.afterStep(ctx, e, mc, step)
}

// EndMatch decides the winner, archives the result, clears the live state and
// hands the result to the standings pipeline.
func (s *Service) EndMatch(ctx context.Context, matchID string) (MatchUpdate, error) {
	const op = "service.EndMatch"

	e, mc, err := s.machine(op, "end match", matchID)
	if err != nil {
		return MatchUpdate{}, err
	}
	res, err := mc.EndMatch()
	if err != nil {
		return MatchUpdate{}, err
	}
	snapshot := s.syncRecord(e, mc)

	outcome := "win"
	if res.Winner == model.TieResult {
		outcome = "tie"
	}
	metrics.RecordMatchCompleted(outcome)
	s.logger.Info(ctx, "match completed",
		logger.String("tournament_id", res.TournamentID),
		logger.String("match_id", matchID),
		logger.String("winner", res.Winner),
		logger.Int("first_innings_runs", res.FirstInnings.Runs),
		logger.Int("second_innings_runs", res.SecondInnings.Runs),
	)

	s.deduper.Forget(ctx, matchID)
	err = s.publishCompleted(ctx, &res, &snapshot)
	s.submitResult(ctx, res)

	return MatchUpdate{Live: mc.Live(), Result: &res, Published: err == nil}, err
}

// Republish writes the current state of a match (and its tournament's
// points table) to the live store again.
func (s *Service) Republish(ctx context.Context, matchID string) (MatchUpdate, error) {
	const op = "service.Republish"

	e, err := s.entryForMatch(op, matchID)
	if err != nil {
		return MatchUpdate{}, err
	}
	e.mu.Lock()
	mc := e.machines[matchID]
	rec, _ := e.t.Match(matchID)
	snapshot := *rec
	tid := e.t.ID
	e.mu.Unlock()

	out := MatchUpdate{}
	var errs []error
	switch {
	case mc == nil:
		errs = append(errs, s.publisher.PublishMatch(ctx, snapshot))
	case mc.Phase() == match.Completed:
		res := resultFromMatch(&snapshot)
		out.Live = mc.Live()
		out.Result = &res
		errs = append(errs, s.publishCompleted(ctx, &res, &snapshot))
	default:
		out.Live = mc.Live()
		errs = append(errs,
			s.publisher.PublishLive(ctx, out.Live),
			s.publisher.PublishMatch(ctx, snapshot),
		)
	}
	errs = append(errs, s.RecomputeStandings(ctx, tid))

	err = errors.Join(errs...)
	out.Published = err == nil
	return out, err
}

// LiveState reads liveMatches/{matchId} from the live store.
func (s *Service) LiveState(ctx context.Context, matchID string) (model.LiveMatchState, error) {
	const op = "service.LiveState"
	if matchID == "" {
		return model.LiveMatchState{}, model.NewError(op, model.ErrMissingTournamentContext, "match id is required")
	}
	snap, err := s.store.Read(ctx, livestore.LiveMatchPath(matchID))
	if err != nil {
		return model.LiveMatchState{}, model.WrapError(op, model.ErrPersistenceUnavailable, err)
	}
	if !snap.Exists {
		return model.LiveMatchState{}, model.NewError(op, model.ErrNotFound, "match %s is not live", matchID)
	}
	var st model.LiveMatchState
	if err := snap.Decode(&st); err != nil {
		return model.LiveMatchState{}, err
	}
	return st, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	live := 0
	for _, e := range s.tournaments {
		e.mu.Lock()
		for _, mc := range e.machines {
			if mc.Phase() != match.Completed {
				live++
			}
		}
		e.mu.Unlock()
	}
	queueLen := s.resultQueue.Len(ctx)

	metrics.UpdateTournaments(len(s.tournaments))
	return map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"queueLength":   queueLen,
		"dedupeSize":    s.dedupeSize,
		"dedupeEntries": s.deduper.Size(),
		"tournaments":   len(s.tournaments),
		"liveMatches":   live,
	}
}

// entries returns every tournament ordered by creation. ID and CreatedAt
// never change after creation, so they are read without e.mu.
func (s *Service) entries() []*tournamentEntry {
	s.mu.RLock()
	out := make([]*tournamentEntry, 0, len(s.tournaments))
	for _, e := range s.tournaments {
		out = append(out, e)
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b *tournamentEntry) int {
		if c := a.t.CreatedAt.Compare(b.t.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.t.ID, b.t.ID)
	})
	return out
}

func (s *Service) entry(op, tournamentID string) (*tournamentEntry, error) {
	if tournamentID == "" {
		return nil, model.NewError(op, model.ErrMissingTournamentContext, "tournament id is required")
	}
	s.mu.RLock()
	e, ok := s.tournaments[tournamentID]
	s.mu.RUnlock()
	if !ok {
		return nil, model.NewError(op, model.ErrNotFound, "tournament %s does not exist", tournamentID)
	}
	return e, nil
}

func (s *Service) entryForMatch(op, matchID string) (*tournamentEntry, error) {
	if matchID == "" {
		return nil, model.NewError(op, model.ErrMissingTournamentContext, "match id is required")
	}
	s.mu.RLock()
	tid, ok := s.matchIndex[matchID]
	var e *tournamentEntry
	if ok {
		e, ok = s.tournaments[tid]
	}
	s.mu.RUnlock()
	if !ok {
		return nil, model.NewError(op, model.ErrMissingTournamentContext, "match %s does not belong to any tournament", matchID)
	}
	return e, nil
}

// machine resolves the machine of a started match.
func (s *Service) machine(op, action, matchID string) (*tournamentEntry, *match.Machine, error) {
	e, err := s.entryForMatch(op, matchID)
	if err != nil {
		return nil, nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if mc, ok := e.machines[matchID]; ok {
		return e, mc, nil
	}
	rec, _ := e.t.Match(matchID)
	return nil, nil, model.NewError(op, model.ErrInvalidStateTransition,
		"cannot %s on match %s: it is %s and has not been started", action, matchID, rec.Status)
}

// syncRecord copies the machine's view into the tournament's match record.
func (s *Service) syncRecord(e *tournamentEntry, mc *match.Machine) model.Match {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := mc.Match()
	if rec, ok := e.t.Match(m.ID); ok {
		*rec = m
	}
	return m
}

func (s *Service) afterStep(ctx context.Context, e *tournamentEntry, mc *match.Machine, step match.Step) (MatchUpdate, error) {
	out := MatchUpdate{Live: step.Live, Closed: step.Closed}
	errs := []error{s.publisher.PublishLive(ctx, step.Live)}
	if step.Closed != nil {
		metrics.RecordInningsEnded()
		s.logger.Info(ctx, "innings closed",
			logger.String("match_id", step.Live.MatchID),
			logger.String("team", step.Closed.Team),
			logger.Int("runs", step.Closed.Runs),
			logger.Int("wickets", step.Closed.Wickets),
		)
		snapshot := s.syncRecord(e, mc)
		errs = append(errs, s.publisher.PublishMatch(ctx, snapshot))
	}
	err := errors.Join(errs...)
	out.Published = err == nil
	return out, err
}

func (s *Service) publishTournament(ctx context.Context, t *model.Tournament) error {
	errs := []error{s.publisher.PublishTournament(ctx, *t)}
	for _, m := range t.Matches {
		errs = append(errs, s.publisher.PublishMatch(ctx, m))
	}
	errs = append(errs, s.publisher.PublishPointsTable(ctx, t.ID, t.PointsTable))
	return errors.Join(errs...)
}

func (s *Service) publishCompleted(ctx context.Context, res *model.Result, m *model.Match) error {
	return errors.Join(
		s.publisher.PublishResult(ctx, *res),
		s.publisher.ClearLive(ctx, res.MatchID),
		s.publisher.PublishMatch(ctx, *m),
	)
}

// submitResult hands the result to the workers. If the queue cannot take it
// the points table is recomputed inline so it never goes stale.
func (s *Service) submitResult(ctx context.Context, res model.Result) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	if started {
		err := s.resultQueue.Enqueue(ctx, res)
		if err == nil {
			return
		}
		s.logger.Warn(ctx, "result queue rejected result, recomputing inline",
			logger.String("match_id", res.MatchID), logger.Error(err))
	}
	if err := s.RecomputeStandings(ctx, res.TournamentID); err != nil {
		s.logger.Error(ctx, "standings recompute failed",
			logger.String("tournament_id", res.TournamentID), logger.Error(err))
	}
}

func resultFromMatch(m *model.Match) model.Result {
	r := model.Result{
		TournamentID: m.TournamentID,
		MatchID:      m.ID,
		TeamA:        m.TeamA,
		TeamB:        m.TeamB,
		Winner:       m.Winner,
		Status:       model.ResultStatusCompleted,
	}
	if len(m.Innings) == 2 {
		r.FirstInnings, r.SecondInnings = m.Innings[0], m.Innings[1]
	}
	if m.CompletedAt != nil {
		r.CompletedAt = *m.CompletedAt
	}
	return r
}

func cloneTournament(t *model.Tournament) model.Tournament {
	out := *t
	out.Teams = append([]model.Team(nil), t.Teams...)
	out.Matches = make([]model.Match, len(t.Matches))
	for i, m := range t.Matches {
		m.Innings = append([]model.InningsScore(nil), m.Innings...)
		out.Matches[i] = m
	}
	out.PointsTable = append([]model.StandingsRow(nil), t.PointsTable...)
	out.Unpaired = append([]string(nil), t.Unpaired...)
	return out
}

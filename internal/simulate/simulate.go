// Package simulate plays a whole tournament against a running scorebook API
// and checks the published standings against a local computation.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"

	"github.com/rs/xid"

	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/scoring"
	"github.com/okian/scorebook/internal/domain/standings"
	"github.com/okian/scorebook/internal/domain/types"
	"github.com/okian/scorebook/pkg/logger"
)

// ErrStandingsMismatch is returned when the server table differs from the
// locally computed one.
var ErrStandingsMismatch = errors.New("standings mismatch")

// Config drives one simulation run.
type Config struct {
	BaseURL string
	Name    string
	Teams   []string
	Policy  model.SchedulePolicy
	Seed    uint64
	// Overs and Wickets bound each simulated innings.
	Overs   int
	Wickets int
	Scheme  standings.Scheme
	Client  *http.Client
}

// Report summarises a run.
type Report struct {
	TournamentID string               `json:"tournamentId"`
	Scheduled    int                  `json:"scheduled"`
	Played       int                  `json:"played"`
	Events       int                  `json:"events"`
	Results      []model.Result       `json:"results"`
	Standings    []model.StandingsRow `json:"standings"`
	Unpaired     []string             `json:"unpaired,omitempty"`
}

type weighted struct {
	event  scoring.Event
	weight int
}

// ballOutcomes is a rough distribution of what happens on a delivery.
var ballOutcomes = []weighted{ //nolint:gochecknoglobals // read-only table
	{scoring.DotBall, 35},
	{scoring.Single, 30},
	{scoring.Double, 8},
	{scoring.Boundary, 10},
	{scoring.Six, 4},
	{scoring.Wicket, 5},
	{scoring.Wide, 3},
	{scoring.NoBall, 1},
	{scoring.Bye, 2},
	{scoring.LegBye, 2},
}

// Runner plays tournaments.
type Runner struct {
	cfg    Config
	api    *Client
	rng    *rand.Rand
	log    logger.Logger
	events int
}

// NewRunner validates cfg and creates a runner.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base url is required")
	}
	if len(cfg.Teams) < 2 {
		return nil, fmt.Errorf("at least 2 teams are required, got %d", len(cfg.Teams))
	}
	if cfg.Policy == "" {
		cfg.Policy = model.RoundRobin
	}
	if !cfg.Policy.Valid() {
		return nil, fmt.Errorf("unknown schedule policy %q", cfg.Policy)
	}
	if cfg.Overs <= 0 {
		return nil, fmt.Errorf("overs must be positive, got %d", cfg.Overs)
	}
	if cfg.Wickets <= 0 {
		return nil, fmt.Errorf("wickets must be positive, got %d", cfg.Wickets)
	}
	if cfg.Name == "" {
		cfg.Name = "Simulated Cup"
	}
	if cfg.Scheme == (standings.Scheme{}) {
		cfg.Scheme = standings.DefaultScheme
	}
	return &Runner{
		cfg: cfg,
		api: NewClient(cfg.BaseURL, cfg.Client),
		rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x5c0eb00c)), //nolint:gosec // deterministic simulation
		log: logger.Named("simulate"),
	}, nil
}

// Run creates a tournament, plays every scheduled match and verifies the
// standings. The report is returned even when verification fails.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	teams := make([]model.Team, len(r.cfg.Teams))
	for i, name := range r.cfg.Teams {
		teams[i] = model.Team{Name: name}
	}
	created, err := r.api.CreateTournament(ctx, types.CreateTournamentInput{
		Name:           r.cfg.Name,
		GameType:       "cricket",
		Teams:          teams,
		SchedulePolicy: r.cfg.Policy,
	})
	if err != nil {
		return Report{}, fmt.Errorf("create tournament: %w", err)
	}
	t := created.Tournament
	rep := Report{TournamentID: t.ID, Scheduled: len(t.Matches), Unpaired: t.Unpaired}
	r.log.Info(ctx, "tournament created",
		logger.String("tournament_id", t.ID),
		logger.Int("matches", len(t.Matches)),
	)

	for _, m := range t.Matches {
		if m.Status != model.StatusScheduled {
			continue
		}
		res, err := r.playMatch(ctx, m, created.Passcode)
		if err != nil {
			return rep, fmt.Errorf("match %s (%s v %s): %w", m.ID, m.TeamA, m.TeamB, err)
		}
		rep.Results = append(rep.Results, res)
		rep.Played++
		r.log.Info(ctx, "match played",
			logger.String("match_id", m.ID),
			logger.String("winner", res.Winner),
			logger.Int("first_innings_runs", res.FirstInnings.Runs),
			logger.Int("second_innings_runs", res.SecondInnings.Runs),
		)
	}
	rep.Events = r.events

	rows, err := r.api.Standings(ctx, t.ID)
	if err != nil {
		return rep, fmt.Errorf("fetch standings: %w", err)
	}
	rep.Standings = rows
	return rep, Verify(teams, t.Matches, rep.Results, rows, r.cfg.Scheme)
}

func (r *Runner) playMatch(ctx context.Context, m model.Match, passcode string) (model.Result, error) {
	if _, err := r.api.StartMatch(ctx, m.ID, passcode); err != nil {
		return model.Result{}, fmt.Errorf("start: %w", err)
	}
	for innings := 0; innings < 2; innings++ {
		if err := r.playInnings(ctx, m.ID); err != nil {
			return model.Result{}, fmt.Errorf("innings %d: %w", innings+1, err)
		}
	}
	up, err := r.api.EndMatch(ctx, m.ID)
	if err != nil {
		return model.Result{}, fmt.Errorf("end match: %w", err)
	}
	if up.Result == nil {
		return model.Result{}, errors.New("end match returned no result")
	}
	return *up.Result, nil
}

// playInnings bowls until the over or wicket limit, then closes the innings
// unless the server already closed it under its own policy.
func (r *Runner) playInnings(ctx context.Context, matchID string) error {
	limit := r.cfg.Overs * model.BallsPerOver
	// extras do not count as deliveries; cap the loop regardless
	for attempts := 0; attempts < limit*4; attempts++ {
		up, err := r.api.Score(ctx, matchID, xid.New().String(), string(r.nextBall()))
		if err != nil {
			return fmt.Errorf("score: %w", err)
		}
		r.events++
		if up.Closed != nil {
			return nil
		}
		if up.Live.Balls >= limit || up.Live.Wickets >= r.cfg.Wickets {
			break
		}
	}
	if _, err := r.api.EndInnings(ctx, matchID); err != nil {
		return fmt.Errorf("end innings: %w", err)
	}
	return nil
}

func (r *Runner) nextBall() scoring.Event {
	total := 0
	for _, o := range ballOutcomes {
		total += o.weight
	}
	n := r.rng.IntN(total)
	for _, o := range ballOutcomes {
		if n < o.weight {
			return o.event
		}
		n -= o.weight
	}
	return scoring.DotBall
}

// Verify recomputes the table from the scheduled matches and the played
// results and compares it with got.
func Verify(teams []model.Team, scheduled []model.Match, results []model.Result, got []model.StandingsRow, scheme standings.Scheme) error {
	byMatch := make(map[string]model.Result, len(results))
	for _, res := range results {
		byMatch[res.MatchID] = res
	}
	matches := make([]model.Match, 0, len(scheduled))
	for _, m := range scheduled {
		if res, ok := byMatch[m.ID]; ok {
			m.Status = model.StatusCompleted
			m.Winner = res.Winner
			m.Innings = []model.InningsScore{res.FirstInnings, res.SecondInnings}
		}
		matches = append(matches, m)
	}
	want := standings.Compute(teams, matches, standings.WithScheme(scheme))
	if len(want) != len(got) {
		return fmt.Errorf("%w: %d rows, want %d", ErrStandingsMismatch, len(got), len(want))
	}
	for i := range want {
		if want[i] != got[i] {
			return fmt.Errorf("%w: row %d is %+v, want %+v", ErrStandingsMismatch, i+1, got[i], want[i])
		}
	}
	return nil
}

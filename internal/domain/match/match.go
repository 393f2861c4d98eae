// Package match implements the per-match scoring state machine.
//
// A Machine owns one match's live state. Every operation is serialised by the
// machine's own mutex and either succeeds completely or leaves the state
// untouched.
package match

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/scoring"
)

// Phase is the position of a match in its lifecycle.
type Phase string

// Phases in order.
const (
	NotStarted       Phase = "NotStarted"
	FirstInnings     Phase = "FirstInnings"
	SecondInnings    Phase = "SecondInnings"
	InningsConcluded Phase = "InningsConcluded"
	Completed        Phase = "Completed"
)

// Policy ends an innings automatically once a limit is reached. Zero disables a limit.
type Policy struct {
	MaxOvers   int `json:"maxOvers"`
	MaxWickets int `json:"maxWickets"`
}

func (p Policy) reached(t scoring.Tally) bool {
	if p.MaxWickets > 0 && t.Wickets >= p.MaxWickets {
		return true
	}
	return p.MaxOvers > 0 && t.Balls >= p.MaxOvers*model.BallsPerOver
}

// State is the serialisable record of a machine.
type State struct {
	TournamentID string               `json:"tournamentId"`
	MatchID      string               `json:"matchId"`
	TeamA        string               `json:"teamA"`
	TeamB        string               `json:"teamB"`
	Phase        Phase                `json:"phase"`
	Tally        scoring.Tally        `json:"tally"`
	Innings      []model.InningsScore `json:"innings,omitempty"`
	Winner       string               `json:"winner,omitempty"`
	Policy       Policy               `json:"policy"`
	Seq          uint64               `json:"seq"`
	StartedAt    time.Time            `json:"startedAt"`
	CompletedAt  time.Time            `json:"completedAt"`
	LastUpdated  time.Time            `json:"lastUpdated"`
}

// Step is the outcome of a ball or an innings transition.
type Step struct {
	Live model.LiveMatchState
	// Closed is set when this step closed an innings.
	Closed *model.InningsScore
}

// Machine is the authoritative writer for one match.
type Machine struct {
	mu      sync.Mutex
	scoring *scoring.Model
	now     func() time.Time
	st      State
}

// New creates a machine for a scheduled match.
func New(m model.Match, opts ...Option) (*Machine, error) {
	const op = "match.New"
	if m.TournamentID == "" || m.ID == "" {
		return nil, model.NewError(op, model.ErrMissingTournamentContext, "match %q has no tournament or match id", m.ID)
	}
	if m.TeamA == "" || m.TeamB == "" {
		return nil, model.NewError(op, model.ErrInvalidInput, "match %s needs two teams", m.ID)
	}
	if m.Status != "" && m.Status != model.StatusScheduled {
		return nil, model.NewError(op, model.ErrInvalidStateTransition, "match %s is %s, not Scheduled", m.ID, m.Status)
	}
	mc := newMachine(opts)
	mc.st = State{
		TournamentID: m.TournamentID,
		MatchID:      m.ID,
		TeamA:        m.TeamA,
		TeamB:        m.TeamB,
		Phase:        NotStarted,
		Policy:       mc.st.Policy,
	}
	return mc, nil
}

// Restore rebuilds a machine from a State previously returned by State.
func Restore(st State, opts ...Option) (*Machine, error) {
	const op = "match.Restore"
	if st.TournamentID == "" || st.MatchID == "" {
		return nil, model.NewError(op, model.ErrMissingTournamentContext, "state has no tournament or match id")
	}
	if err := st.validate(); err != nil {
		return nil, model.WrapError(op, model.ErrInvalidInput, err)
	}
	mc := newMachine(append([]Option{WithPolicy(st.Policy)}, opts...))
	st.Policy = mc.st.Policy
	st.Innings = append([]model.InningsScore(nil), st.Innings...)
	mc.st = st
	return mc, nil
}

// inningsFor is the number of closed innings each phase carries.
var inningsFor = map[Phase]int{ //nolint:gochecknoglobals // read-only table
	NotStarted:       0,
	FirstInnings:     0,
	SecondInnings:    1,
	InningsConcluded: 2,
	Completed:        2,
}

// validate checks that the phase agrees with the rest of the state.
func (st *State) validate() error {
	want, ok := inningsFor[st.Phase]
	if !ok {
		return fmt.Errorf("unknown phase %q", st.Phase)
	}
	if st.TeamA == "" || st.TeamB == "" {
		return errors.New("state needs two teams")
	}
	if len(st.Innings) != want {
		return fmt.Errorf("phase %s needs %d closed innings, got %d", st.Phase, want, len(st.Innings))
	}
	if st.Tally.Runs < 0 || st.Tally.Wickets < 0 || st.Tally.Balls < 0 {
		return fmt.Errorf("tally %+v is negative", st.Tally)
	}
	if st.Phase != Completed {
		if st.Winner != "" {
			return fmt.Errorf("phase %s cannot have a winner", st.Phase)
		}
		return nil
	}
	switch st.Winner {
	case st.TeamA, st.TeamB, model.TieResult:
		return nil
	case "":
		return errors.New("completed match has no winner")
	default:
		return fmt.Errorf("winner %q is not a team of the match", st.Winner)
	}
}

func newMachine(opts []Option) *Machine {
	mc := &Machine{scoring: scoring.NewModel(), now: time.Now}
	for _, opt := range opts {
		opt(mc)
	}
	return mc
}

// Start moves the match from NotStarted to the first innings with TeamA batting.
func (m *Machine) Start() (model.LiveMatchState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.st.Phase != NotStarted {
		return model.LiveMatchState{}, m.reject("match.Start", "start", "it has already started")
	}
	now := m.now()
	m.st.Phase = FirstInnings
	m.st.Tally = scoring.Tally{}
	m.st.StartedAt = now
	m.touch(now)
	return m.liveLocked(), nil
}

// Apply applies one ball outcome to the open innings.
func (m *Machine) Apply(e scoring.Event) (Step, error) {
	const op = "match.Apply"
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.inningsOpen() {
		return Step{}, m.reject(op, "apply "+string(e), "no innings is open")
	}
	next, err := m.scoring.Apply(m.st.Tally, e)
	if err != nil {
		return Step{}, err
	}
	m.st.Tally = next
	var closed *model.InningsScore
	if m.st.Policy.reached(next) {
		closed = m.closeInningsLocked()
	}
	m.touch(m.now())
	return Step{Live: m.liveLocked(), Closed: closed}, nil
}

// EndInnings snapshots the open innings. After the first innings TeamB bats
// from a clean scoreboard; after the second the match waits for EndMatch.
func (m *Machine) EndInnings() (Step, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.inningsOpen() {
		return Step{}, m.reject("match.EndInnings", "end innings", "no innings is open")
	}
	closed := m.closeInningsLocked()
	m.touch(m.now())
	return Step{Live: m.liveLocked(), Closed: closed}, nil
}

// EndMatch decides the winner by strict run comparison and completes the match.
func (m *Machine) EndMatch() (model.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.st.Phase != InningsConcluded {
		return model.Result{}, m.reject("match.EndMatch", "end match", "both innings must end first")
	}
	first, second := m.st.Innings[0], m.st.Innings[1]
	winner := model.TieResult
	switch {
	case first.Runs > second.Runs:
		winner = m.st.TeamA
	case second.Runs > first.Runs:
		winner = m.st.TeamB
	}
	now := m.now()
	m.st.Winner = winner
	m.st.Phase = Completed
	m.st.CompletedAt = now
	m.touch(now)
	return model.Result{
		TournamentID:  m.st.TournamentID,
		MatchID:       m.st.MatchID,
		TeamA:         m.st.TeamA,
		TeamB:         m.st.TeamB,
		FirstInnings:  first,
		SecondInnings: second,
		Winner:        winner,
		Status:        model.ResultStatusCompleted,
		CompletedAt:   now,
	}, nil
}

// Live returns the live mirror of the current innings.
func (m *Machine) Live() model.LiveMatchState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.liveLocked()
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.Phase
}

// Match returns the match record as the machine sees it.
func (m *Machine) Match() model.Match {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := model.Match{
		ID:           m.st.MatchID,
		TournamentID: m.st.TournamentID,
		TeamA:        m.st.TeamA,
		TeamB:        m.st.TeamB,
		Status:       m.statusLocked(),
		Winner:       m.st.Winner,
		Innings:      append([]model.InningsScore(nil), m.st.Innings...),
	}
	if !m.st.StartedAt.IsZero() {
		t := m.st.StartedAt
		out.StartedAt = &t
	}
	if !m.st.CompletedAt.IsZero() {
		t := m.st.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

// State returns a copy of the serialisable state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.st
	st.Innings = append([]model.InningsScore(nil), m.st.Innings...)
	return st
}

func (m *Machine) inningsOpen() bool {
	return m.st.Phase == FirstInnings || m.st.Phase == SecondInnings
}

func (m *Machine) closeInningsLocked() *model.InningsScore {
	t := m.st.Tally
	snap := model.InningsScore{
		Team:    m.battingLocked(),
		Runs:    t.Runs,
		Wickets: t.Wickets,
		Overs:   t.Overs(),
		Balls:   t.Balls,
	}
	m.st.Innings = append(m.st.Innings, snap)
	if m.st.Phase == FirstInnings {
		m.st.Phase = SecondInnings
		m.st.Tally = scoring.Tally{}
	} else {
		m.st.Phase = InningsConcluded
	}
	return &snap
}

func (m *Machine) touch(now time.Time) {
	m.st.Seq++
	m.st.LastUpdated = now
}

func (m *Machine) battingLocked() string {
	if m.st.Phase == FirstInnings || m.st.Phase == NotStarted {
		return m.st.TeamA
	}
	return m.st.TeamB
}

func (m *Machine) statusLocked() model.Status {
	switch m.st.Phase {
	case NotStarted:
		return model.StatusScheduled
	case Completed:
		return model.StatusCompleted
	default:
		return model.StatusLive
	}
}

func (m *Machine) inningNumberLocked() int {
	switch m.st.Phase {
	case NotStarted:
		return 0
	case FirstInnings:
		return 1
	default:
		return 2
	}
}

func (m *Machine) liveLocked() model.LiveMatchState {
	t := m.st.Tally
	return model.LiveMatchState{
		TournamentID:  m.st.TournamentID,
		MatchID:       m.st.MatchID,
		TeamA:         m.st.TeamA,
		TeamB:         m.st.TeamB,
		Runs:          t.Runs,
		Wickets:       t.Wickets,
		Balls:         t.Balls,
		Overs:         t.Overs(),
		BattingTeam:   m.battingLocked(),
		InningNumber:  m.inningNumberLocked(),
		InningsClosed: m.st.Phase == InningsConcluded || m.st.Phase == Completed,
		Status:        m.statusLocked(),
		Seq:           m.st.Seq,
		LastUpdated:   m.st.LastUpdated,
	}
}

func (m *Machine) reject(op, action, why string) error {
	return model.NewError(op, model.ErrInvalidStateTransition,
		"cannot %s on match %s in phase %s: %s", action, m.st.MatchID, m.st.Phase, why)
}

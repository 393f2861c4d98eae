// Package scoring defines the ball outcome vocabulary and the arithmetic that
// turns outcomes into runs, wickets and legal deliveries.
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/scorebook/internal/domain/model"
)

// Event names one ball outcome.
type Event string

// Built-in events.
const (
	DotBall  Event = "DotBall"
	Single   Event = "Single"
	Double   Event = "Double"
	Boundary Event = "Boundary"
	Six      Event = "Six"
	Wicket   Event = "Wicket"
	Wide     Event = "Wide"
	NoBall   Event = "NoBall"
	Bye      Event = "Bye"
	LegBye   Event = "LegBye"
)

// Effect is the change an event applies to a tally. Legal deliveries advance the over.
type Effect struct {
	Runs    int
	Wickets int
	Legal   bool
}

// Tally is the live (runs, wickets, balls) tuple of one innings.
type Tally struct {
	Runs    int `json:"runs"`
	Wickets int `json:"wickets"`
	Balls   int `json:"balls"`
}

// Overs is the number of completed overs.
func (t Tally) Overs() int { return t.Balls / model.BallsPerOver }

// BallInOver is the ball number within the current over.
func (t Tally) BallInOver() int { return t.Balls % model.BallsPerOver }

// OversDisplay renders overs as "O.B".
func (t Tally) OversDisplay() string {
	return fmt.Sprintf("%d.%d", t.Overs(), t.BallInOver())
}

func defaultEffects() map[Event]Effect {
	return map[Event]Effect{
		DotBall:  {Legal: true},
		Single:   {Runs: 1, Legal: true},
		Double:   {Runs: 2, Legal: true},
		Boundary: {Runs: 4, Legal: true},
		Six:      {Runs: 6, Legal: true},
		Wicket:   {Wickets: 1, Legal: true},
		Wide:     {Runs: 1},
		NoBall:   {Runs: 1},
		Bye:      {Runs: 1, Legal: true},
		LegBye:   {Runs: 1, Legal: true},
	}
}

// Model maps events to their effects. It is immutable after construction and safe for concurrent use.
type Model struct {
	effects map[Event]Effect
	aliases map[string]Event
}

// NewModel creates a model with the built-in events plus any registered by options.
func NewModel(opts ...Option) *Model {
	m := &Model{effects: defaultEffects()}
	for _, opt := range opts {
		opt(m)
	}
	m.aliases = make(map[string]Event, len(m.effects))
	for e := range m.effects {
		m.aliases[normalize(string(e))] = e
	}
	return m
}

// Apply returns the tally after e. The input tally is not modified.
func (m *Model) Apply(t Tally, e Event) (Tally, error) {
	eff, ok := m.effects[e]
	if !ok {
		return t, model.NewError("scoring.Apply", model.ErrInvalidInput, "unknown score event %q", e)
	}
	t.Runs += eff.Runs
	t.Wickets += eff.Wickets
	if eff.Legal {
		t.Balls++
	}
	return t, nil
}

// Effect returns the registered effect of e.
func (m *Model) Effect(e Event) (Effect, bool) {
	eff, ok := m.effects[e]
	return eff, ok
}

// Events lists registered events in name order.
func (m *Model) Events() []Event {
	out := make([]Event, 0, len(m.effects))
	for e := range m.effects {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseEvent resolves a client spelling such as "Dot Ball", "dotball" or "leg-bye".
func (m *Model) ParseEvent(s string) (Event, error) {
	if e, ok := m.aliases[normalize(s)]; ok {
		return e, nil
	}
	return "", model.NewError("scoring.ParseEvent", model.ErrInvalidInput, "unknown score event %q", s)
}

func normalize(s string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}

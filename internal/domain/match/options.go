package match

import (
	"time"

	"github.com/okian/scorebook/internal/domain/scoring"
)

// Option applies a configuration option to a Machine.
type Option func(*Machine)

// WithPolicy sets the automatic innings limits. Negative limits are ignored.
func WithPolicy(p Policy) Option {
	return func(m *Machine) {
		if p.MaxOvers >= 0 && p.MaxWickets >= 0 {
			m.st.Policy = p
		}
	}
}

// WithScoringModel sets the event model used by Apply.
func WithScoringModel(sm *scoring.Model) Option {
	return func(m *Machine) {
		if sm != nil {
			m.scoring = sm
		}
	}
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

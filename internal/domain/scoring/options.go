package scoring

// Option applies a configuration option to the Model.
type Option func(*Model)

// WithEvent registers an additional event or overrides a built-in one.
func WithEvent(e Event, eff Effect) Option {
	return func(m *Model) {
		if e != "" && eff.Runs >= 0 && eff.Wickets >= 0 {
			m.effects[e] = eff
		}
	}
}

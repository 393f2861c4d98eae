package standings

// Option applies a configuration option to Compute.
type Option func(*calculator)

// WithScheme sets the points scheme. Schemes where a tie beats a win or a
// loss beats a tie are ignored.
func WithScheme(s Scheme) Option {
	return func(c *calculator) {
		if s.Win >= s.Tie && s.Tie >= s.Loss {
			c.scheme = s
		}
	}
}

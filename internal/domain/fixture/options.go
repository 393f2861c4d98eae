package fixture

// Option applies a configuration option to Generate.
type Option func(*generator)

// WithOddTeam sets the knockout handling of an odd team out.
func WithOddTeam(o OddTeam) Option {
	return func(g *generator) {
		if o == OddTeamDrop || o == OddTeamWalkover {
			g.oddTeam = o
		}
	}
}

// WithMatchIDs sets the match id source; n counts from 1 in schedule order.
func WithMatchIDs(fn func(n int) string) Option {
	return func(g *generator) {
		if fn != nil {
			g.matchID = fn
		}
	}
}

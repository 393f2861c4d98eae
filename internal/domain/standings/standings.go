// Package standings derives the points table from completed matches.
//
// The table is always recomputed from the full match list; rows are never
// patched incrementally.
package standings

import (
	"sort"

	"github.com/okian/scorebook/internal/domain/model"
)

// Scheme is the points awarded per completed match.
type Scheme struct {
	Win  int `json:"win"`
	Tie  int `json:"tie"`
	Loss int `json:"loss"`
}

// DefaultScheme awards 2 for a win, 1 for a tie and 0 for a loss.
var DefaultScheme = Scheme{Win: 2, Tie: 1, Loss: 0} //nolint:gochecknoglobals // read-only default

type calculator struct {
	scheme Scheme
}

// Compute returns one row per team, ranked by points, wins and run
// difference, then roster order. Matches that are not completed, walkovers and
// matches involving teams outside the roster are ignored.
func Compute(teams []model.Team, matches []model.Match, opts ...Option) []model.StandingsRow {
	c := calculator{scheme: DefaultScheme}
	for _, opt := range opts {
		opt(&c)
	}

	rows := make([]model.StandingsRow, len(teams))
	index := make(map[string]int, len(teams))
	for i, t := range teams {
		rows[i] = model.StandingsRow{Team: t.Name}
		index[t.Name] = i
	}

	for i := range matches {
		m := &matches[i]
		if m.Status != model.StatusCompleted || m.Walkover {
			continue
		}
		ai, okA := index[m.TeamA]
		bi, okB := index[m.TeamB]
		if !okA || !okB || ai == bi {
			continue
		}
		a, b := &rows[ai], &rows[bi]
		a.Played++
		b.Played++
		c.addRuns(m, a, b)

		switch m.Winner {
		case m.TeamA:
			c.win(a, b)
		case m.TeamB:
			c.win(b, a)
		case model.TieResult:
			a.Tied++
			b.Tied++
			a.Points += c.scheme.Tie
			b.Points += c.scheme.Tie
		}
	}

	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		rx, ry := rows[order[x]], rows[order[y]]
		if rx.Points != ry.Points {
			return rx.Points > ry.Points
		}
		if rx.Won != ry.Won {
			return rx.Won > ry.Won
		}
		return rx.RunsFor-rx.RunsAgainst > ry.RunsFor-ry.RunsAgainst
	})
	out := make([]model.StandingsRow, len(rows))
	for i, idx := range order {
		out[i] = rows[idx]
	}
	return out
}

func (c calculator) win(w, l *model.StandingsRow) {
	w.Won++
	l.Lost++
	w.Points += c.scheme.Win
	l.Points += c.scheme.Loss
}

func (c calculator) addRuns(m *model.Match, a, b *model.StandingsRow) {
	for _, in := range m.Innings {
		switch in.Team {
		case m.TeamA:
			a.RunsFor += in.Runs
			b.RunsAgainst += in.Runs
		case m.TeamB:
			b.RunsFor += in.Runs
			a.RunsAgainst += in.Runs
		}
	}
}

// Row returns the row for team, if present.
func Row(rows []model.StandingsRow, team string) (model.StandingsRow, bool) {
	for _, r := range rows {
		if r.Team == team {
			return r, true
		}
	}
	return model.StandingsRow{}, false
}

// Package fixture generates the match list of a tournament from its roster.
package fixture

import (
	"strconv"
	"strings"

	"github.com/okian/scorebook/internal/domain/model"
)

// OddTeam selects what a knockout draw does with an unpaired last team.
type OddTeam string

// Odd team handling.
const (
	// OddTeamDrop leaves the team without a match and reports it in Schedule.Unpaired.
	OddTeamDrop OddTeam = "drop"
	// OddTeamWalkover gives the team a completed walkover match.
	OddTeamWalkover OddTeam = "walkover"
)

// Schedule is the output of Generate.
type Schedule struct {
	Matches  []model.Match `json:"matches"`
	Unpaired []string      `json:"unpaired,omitempty"`
}

type generator struct {
	oddTeam OddTeam
	matchID func(n int) string
}

// DefaultMatchID numbers matches match_1, match_2, ...
func DefaultMatchID(n int) string {
	return "match_" + strconv.Itoa(n)
}

// Generate derives the ordered match list for teams under policy.
//
// RoundRobin emits one match per unordered pair (i, j), i < j, in lexicographic
// order. Knockout pairs consecutive teams. All matches start Scheduled.
func Generate(tournamentID string, teams []model.Team, policy model.SchedulePolicy, opts ...Option) (Schedule, error) {
	const op = "fixture.Generate"
	g := generator{oddTeam: OddTeamDrop, matchID: DefaultMatchID}
	for _, opt := range opts {
		opt(&g)
	}

	if tournamentID == "" {
		return Schedule{}, model.NewError(op, model.ErrMissingTournamentContext, "tournament id is required")
	}
	if len(teams) < 2 {
		return Schedule{}, model.NewError(op, model.ErrInvalidInput, "at least 2 teams are required, got %d", len(teams))
	}
	seen := make(map[string]struct{}, len(teams))
	for i, t := range teams {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return Schedule{}, model.NewError(op, model.ErrInvalidInput, "team %d has no name", i+1)
		}
		if _, dup := seen[name]; dup {
			return Schedule{}, model.NewError(op, model.ErrInvalidInput, "team name %q is not unique", name)
		}
		seen[name] = struct{}{}
	}

	var s Schedule
	switch policy {
	case model.RoundRobin:
		s = g.roundRobin(tournamentID, teams)
	case model.Knockout:
		s = g.knockout(tournamentID, teams)
	default:
		return Schedule{}, model.NewError(op, model.ErrInvalidInput, "unknown schedule policy %q", policy)
	}
	return s, nil
}

func (g generator) roundRobin(tid string, teams []model.Team) Schedule {
	n := len(teams)
	matches := make([]model.Match, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			matches = append(matches, g.scheduled(tid, len(matches)+1, teams[i].Name, teams[j].Name))
		}
	}
	return Schedule{Matches: matches}
}

func (g generator) knockout(tid string, teams []model.Team) Schedule {
	n := len(teams)
	matches := make([]model.Match, 0, n/2+1)
	for i := 0; i+1 < n; i += 2 {
		matches = append(matches, g.scheduled(tid, len(matches)+1, teams[i].Name, teams[i+1].Name))
	}
	s := Schedule{Matches: matches}
	if n%2 == 0 {
		return s
	}
	last := teams[n-1].Name
	if g.oddTeam == OddTeamWalkover {
		s.Matches = append(s.Matches, model.Match{
			ID:           g.matchID(len(s.Matches) + 1),
			TournamentID: tid,
			TeamA:        last,
			Status:       model.StatusCompleted,
			Winner:       last,
			Walkover:     true,
		})
		return s
	}
	s.Unpaired = []string{last}
	return s
}

func (g generator) scheduled(tid string, n int, a, b string) model.Match {
	return model.Match{
		ID:           g.matchID(n),
		TournamentID: tid,
		TeamA:        a,
		TeamB:        b,
		Status:       model.StatusScheduled,
	}
}

// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// BallsPerOver is the number of legal deliveries in an over.
const BallsPerOver = 6

// TieResult is the winner value of a match with equal scores.
const TieResult = "Tie"

// Status is the lifecycle state of a match.
type Status string

// Match statuses.
const (
	StatusScheduled Status = "Scheduled"
	StatusLive      Status = "Live"
	StatusCompleted Status = "Completed"
)

// SchedulePolicy selects how fixtures are generated from a roster.
type SchedulePolicy string

// Schedule policies.
const (
	RoundRobin SchedulePolicy = "RoundRobin"
	Knockout   SchedulePolicy = "Knockout"
)

// Valid reports whether p is a known policy.
func (p SchedulePolicy) Valid() bool {
	return p == RoundRobin || p == Knockout
}

// Player is a member of a team roster.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Team is a named roster, unique by name within a tournament.
type Team struct {
	Name    string   `json:"name"`
	Players []Player `json:"players,omitempty"`
}

// InningsScore is the immutable snapshot of a closed innings.
type InningsScore struct {
	Team    string `json:"team"`
	Runs    int    `json:"runs"`
	Wickets int    `json:"wickets"`
	Overs   int    `json:"overs"`
	Balls   int    `json:"balls"`
}

// Match is a fixture between two teams. Winner is empty until the match is completed.
type Match struct {
	ID           string         `json:"id"`
	TournamentID string         `json:"tournamentId"`
	TeamA        string         `json:"teamA"`
	TeamB        string         `json:"teamB,omitempty"`
	Status       Status         `json:"status"`
	Winner       string         `json:"winner,omitempty"`
	Innings      []InningsScore `json:"innings,omitempty"`
	Walkover     bool           `json:"walkover,omitempty"`
	StartedAt    *time.Time     `json:"startedAt,omitempty"`
	CompletedAt  *time.Time     `json:"completedAt,omitempty"`
}

// Validate checks the structural invariants of a match record.
func (m *Match) Validate() error {
	const op = "model.Match.Validate"
	if m.ID == "" || m.TournamentID == "" {
		return NewError(op, ErrMissingTournamentContext, "match %q has no tournament or match id", m.ID)
	}
	completed := m.Status == StatusCompleted
	if completed != (m.Winner != "") {
		return NewError(op, ErrInvalidInput, "match %s: winner must be set if and only if status is Completed (status=%s winner=%q)",
			m.ID, m.Status, m.Winner)
	}
	if m.Winner != "" && m.Winner != m.TeamA && m.Winner != m.TeamB && m.Winner != TieResult {
		return NewError(op, ErrInvalidInput, "match %s: winner %q is not a participant", m.ID, m.Winner)
	}
	if len(m.Innings) > 2 {
		return NewError(op, ErrInvalidInput, "match %s: %d innings recorded, at most 2 allowed", m.ID, len(m.Innings))
	}
	for i, in := range m.Innings {
		if in.Balls < 0 || in.Overs != in.Balls/BallsPerOver {
			return NewError(op, ErrInvalidInput, "match %s innings %d: overs %d do not match balls %d", m.ID, i+1, in.Overs, in.Balls)
		}
	}
	return nil
}

// Tournament owns its teams and matches. The passcode is only kept as a hash.
type Tournament struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	GameType       string         `json:"gameType"`
	Teams          []Team         `json:"teams"`
	SchedulePolicy SchedulePolicy `json:"schedulePolicy"`
	Matches        []Match        `json:"matches"`
	PointsTable    []StandingsRow `json:"pointsTable"`
	Unpaired       []string       `json:"unpaired,omitempty"`
	PasscodeHash   string         `json:"-"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Match returns the tournament's match with the given id.
func (t *Tournament) Match(id string) (*Match, bool) {
	for i := range t.Matches {
		if t.Matches[i].ID == id {
			return &t.Matches[i], true
		}
	}
	return nil, false
}

// LiveMatchState mirrors the innings currently being scored.
type LiveMatchState struct {
	TournamentID  string    `json:"tournamentId"`
	MatchID       string    `json:"matchId"`
	TeamA         string    `json:"teamA"`
	TeamB         string    `json:"teamB"`
	Runs          int       `json:"runs"`
	Wickets       int       `json:"wickets"`
	Balls         int       `json:"balls"`
	Overs         int       `json:"overs"`
	BattingTeam   string    `json:"battingTeam"`
	InningNumber  int       `json:"inningNumber"`
	InningsClosed bool      `json:"inningsClosed"`
	Status        Status    `json:"status"`
	Seq           uint64    `json:"seq"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// Score renders the live tuple as "runs/wickets (overs.ball)".
func (s LiveMatchState) Score() string {
	return fmt.Sprintf("%d/%d (%d.%d)", s.Runs, s.Wickets, s.Overs, s.Balls%BallsPerOver)
}

// Result is the archived outcome of a completed match.
type Result struct {
	TournamentID  string       `json:"tournamentId"`
	MatchID       string       `json:"matchId"`
	TeamA         string       `json:"teamA"`
	TeamB         string       `json:"teamB"`
	FirstInnings  InningsScore `json:"firstInnings"`
	SecondInnings InningsScore `json:"secondInnings"`
	Winner        string       `json:"winner"`
	Status        string       `json:"status"`
	CompletedAt   time.Time    `json:"completedAt"`
}

// ResultStatusCompleted is the status recorded on archived results.
const ResultStatusCompleted = "completed"

// StandingsRow is one team's line in the points table.
type StandingsRow struct {
	Team        string `json:"team"`
	Played      int    `json:"played"`
	Won         int    `json:"won"`
	Lost        int    `json:"lost"`
	Tied        int    `json:"tied"`
	Points      int    `json:"points"`
	RunsFor     int    `json:"runsFor"`
	RunsAgainst int    `json:"runsAgainst"`
}

// Package types contains request and response shapes shared by the service
// and the HTTP layer.
package types

import (
	"time"

	"github.com/okian/scorebook/internal/domain/model"
)

// CreateTournamentInput describes a new tournament.
type CreateTournamentInput struct {
	Name           string               `json:"name"`
	GameType       string               `json:"gameType"`
	Teams          []model.Team         `json:"teams"`
	SchedulePolicy model.SchedulePolicy `json:"schedulePolicy"`
}

// CreatedTournament is returned once, on creation. The passcode is never
// stored in plain text and cannot be read back later.
type CreatedTournament struct {
	Tournament model.Tournament `json:"tournament"`
	Passcode   string           `json:"passcode"`
	Published  bool             `json:"published"`
}

// MatchUpdate is the outcome of a match operation. When Published is false
// the in-memory transition succeeded but the live store write did not.
type MatchUpdate struct {
	Live      model.LiveMatchState `json:"live"`
	Closed    *model.InningsScore  `json:"inningsClosed,omitempty"`
	Result    *model.Result        `json:"result,omitempty"`
	Duplicate bool                 `json:"duplicate,omitempty"`
	Published bool                 `json:"published"`
}

// TournamentSummary is one entry of the tournament list.
type TournamentSummary struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	GameType       string               `json:"gameType"`
	SchedulePolicy model.SchedulePolicy `json:"schedulePolicy"`
	Teams          int                  `json:"teams"`
	Matches        int                  `json:"matches"`
	Live           int                  `json:"live"`
	Completed      int                  `json:"completed"`
	CreatedAt      time.Time            `json:"createdAt"`
}

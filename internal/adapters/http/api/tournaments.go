package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/scorebook/internal/domain/model"
)

// TournamentDependencies defines the tournament operations used by handlers.
type TournamentDependencies interface {
	CreateTournament(ctx context.Context, in CreateTournamentInput) (CreatedTournament, error)
	Tournaments(ctx context.Context) []TournamentSummary
	Tournament(ctx context.Context, tournamentID string) (model.Tournament, error)
	Matches(ctx context.Context, tournamentID string) ([]model.Match, error)
	Standings(ctx context.Context, tournamentID string) ([]model.StandingsRow, error)
}

// TournamentHandler handles tournament requests.
type TournamentHandler struct {
	deps TournamentDependencies
}

// NewTournamentHandler creates a new tournament handler.
func NewTournamentHandler(deps TournamentDependencies) *TournamentHandler {
	return &TournamentHandler{deps: deps}
}

// HandleCreate handles POST /tournaments. The response is the only place the
// passcode is ever shown.
func (h *TournamentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_tournament"
	var in CreateTournamentInput
	if err := decode(r, op, &in); err != nil {
		writeFailure(w, err)
		return
	}
	created, err := h.deps.CreateTournament(r.Context(), in)
	writeMutation(w, http.StatusCreated, created, err)
}

// HandleList handles GET /tournaments.
func (h *TournamentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Tournaments(r.Context()))
}

// HandleGet handles GET /tournaments/{id}.
func (h *TournamentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	t, err := h.deps.Tournament(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleMatches handles GET /tournaments/{id}/matches.
func (h *TournamentHandler) HandleMatches(w http.ResponseWriter, r *http.Request) {
	ms, err := h.deps.Matches(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ms)
}

// HandleStandings handles GET /tournaments/{id}/standings.
func (h *TournamentHandler) HandleStandings(w http.ResponseWriter, r *http.Request) {
	rows, err := h.deps.Standings(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/scorebook/internal/domain/model"
)

// LiveDependencies reads the live store mirror of matches in progress.
type LiveDependencies interface {
	LiveState(ctx context.Context, matchID string) (model.LiveMatchState, error)
	LiveMatches(ctx context.Context) ([]model.LiveMatchState, error)
}

// LiveHandler handles spectator reads.
type LiveHandler struct {
	deps LiveDependencies
}

// NewLiveHandler creates a new live handler.
func NewLiveHandler(deps LiveDependencies) *LiveHandler {
	return &LiveHandler{deps: deps}
}

// HandleGet handles GET /live/{id}.
func (h *LiveHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	st, err := h.deps.LiveState(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleList handles GET /live.
func (h *LiveHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	states, err := h.deps.LiveMatches(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, states)
}

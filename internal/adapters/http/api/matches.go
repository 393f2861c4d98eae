package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// MatchDependencies defines the match state machine operations.
type MatchDependencies interface {
	StartMatch(ctx context.Context, matchID, passcode string) (MatchUpdate, error)
	ApplyEvent(ctx context.Context, matchID, eventID, event string) (MatchUpdate, error)
	EndInnings(ctx context.Context, matchID string) (MatchUpdate, error)
	EndMatch(ctx context.Context, matchID string) (MatchUpdate, error)
	Republish(ctx context.Context, matchID string) (MatchUpdate, error)
}

// startRequest is the body of POST /matches/{id}/start.
type startRequest struct {
	Passcode string `json:"passcode"`
}

// eventRequest is the body of POST /matches/{id}/events.
type eventRequest struct {
	EventID string `json:"event_id"`
	Event   string `json:"event"`
}

// MatchHandler handles match requests.
type MatchHandler struct {
	deps MatchDependencies
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps MatchDependencies) *MatchHandler {
	return &MatchHandler{deps: deps}
}

// HandleStart handles POST /matches/{id}/start.
func (h *MatchHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_match"
	var req startRequest
	if err := decode(r, op, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if strings.TrimSpace(req.Passcode) == "" {
		writeFailure(w, NewKind(op, ErrBadRequest, "missing passcode"))
		return
	}
	up, err := h.deps.StartMatch(r.Context(), mux.Vars(r)["id"], req.Passcode)
	writeMutation(w, http.StatusOK, up, err)
}

// HandleEvent handles POST /matches/{id}/events.
func (h *MatchHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	var req eventRequest
	if err := decode(r, op, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if strings.TrimSpace(req.Event) == "" {
		writeFailure(w, NewKind(op, ErrBadRequest, "missing event"))
		return
	}
	up, err := h.deps.ApplyEvent(r.Context(), mux.Vars(r)["id"], strings.TrimSpace(req.EventID), req.Event)
	writeMutation(w, http.StatusOK, up, err)
}

// HandleEndInnings handles POST /matches/{id}/end-innings.
func (h *MatchHandler) HandleEndInnings(w http.ResponseWriter, r *http.Request) {
	up, err := h.deps.EndInnings(r.Context(), mux.Vars(r)["id"])
	writeMutation(w, http.StatusOK, up, err)
}

// HandleEndMatch handles POST /matches/{id}/end-match.
func (h *MatchHandler) HandleEndMatch(w http.ResponseWriter, r *http.Request) {
	up, err := h.deps.EndMatch(r.Context(), mux.Vars(r)["id"])
	writeMutation(w, http.StatusOK, up, err)
}

// HandleRepublish handles POST /matches/{id}/republish.
func (h *MatchHandler) HandleRepublish(w http.ResponseWriter, r *http.Request) {
	up, err := h.deps.Republish(r.Context(), mux.Vars(r)["id"])
	writeMutation(w, http.StatusOK, up, err)
}

// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	TournamentDependencies
	MatchDependencies
	LiveDependencies
}

// Shapes shared with the service.
type (
	CreateTournamentInput = types.CreateTournamentInput
	CreatedTournament     = types.CreatedTournament
	MatchUpdate           = types.MatchUpdate
	TournamentSummary     = types.TournamentSummary
)

// Server wires HTTP routes for the scorebook API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	tournamentHandler *TournamentHandler
	matchHandler      *MatchHandler
	liveHandler       *LiveHandler
	stream            http.Handler
}

// NewServer creates a new API server with all handlers. stream serves the
// spectator websocket and may be nil.
func NewServer(deps Dependencies, statsProvider StatsProvider, stream http.Handler) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		tournamentHandler: NewTournamentHandler(deps),
		matchHandler:      NewMatchHandler(deps),
		liveHandler:       NewLiveHandler(deps),
		stream:            stream,
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	route := func(path string, h http.HandlerFunc, method string) {
		r.HandleFunc(path, MetricsMiddleware(h, path)).Methods(method)
	}

	route("/healthz", s.healthHandler.HandleHealth, http.MethodGet)
	route("/stats", s.statsHandler.HandleStats, http.MethodGet)

	route("/tournaments", s.tournamentHandler.HandleCreate, http.MethodPost)
	route("/tournaments", s.tournamentHandler.HandleList, http.MethodGet)
	route("/tournaments/{id}", s.tournamentHandler.HandleGet, http.MethodGet)
	route("/tournaments/{id}/matches", s.tournamentHandler.HandleMatches, http.MethodGet)
	route("/tournaments/{id}/standings", s.tournamentHandler.HandleStandings, http.MethodGet)

	route("/matches/{id}/start", s.matchHandler.HandleStart, http.MethodPost)
	route("/matches/{id}/events", s.matchHandler.HandleEvent, http.MethodPost)
	route("/matches/{id}/end-innings", s.matchHandler.HandleEndInnings, http.MethodPost)
	route("/matches/{id}/end-match", s.matchHandler.HandleEndMatch, http.MethodPost)
	route("/matches/{id}/republish", s.matchHandler.HandleRepublish, http.MethodPost)

	route("/live", s.liveHandler.HandleList, http.MethodGet)
	route("/live/{id}", s.liveHandler.HandleGet, http.MethodGet)
	if s.stream != nil {
		route("/live/{id}/ws", s.stream.ServeHTTP, http.MethodGet)
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = model.Message(err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps an error kind onto a status and error code.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}

// writeMutation answers a state-changing request. A persistence failure after
// the transition succeeded is reported as 202 with the new state; the body
// carries published=false.
func writeMutation(w http.ResponseWriter, okStatus int, body any, err error) {
	switch {
	case err == nil:
		writeJSON(w, okStatus, body)
	case errors.Is(err, model.ErrPersistenceUnavailable):
		w.Header().Set("X-Publish-Error", model.Message(err))
		writeJSON(w, http.StatusAccepted, body)
	default:
		writeFailure(w, err)
	}
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, model.ErrMissingTournamentContext):
		return http.StatusNotFound, "missing_tournament_context"
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, model.ErrAuthorizationFailure):
		return http.StatusForbidden, "authorization_failure"
	case errors.Is(err, model.ErrInvalidStateTransition):
		return http.StatusConflict, "invalid_state_transition"
	case errors.Is(err, model.ErrPersistenceUnavailable):
		return http.StatusServiceUnavailable, "persistence_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decode reads a JSON body. An empty body leaves v untouched.
func decode(r *http.Request, op string, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

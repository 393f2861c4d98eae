// Package ws streams live match state to spectators over websockets.
package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/okian/scorebook/internal/adapters/livestore"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/pkg/logger"
	"github.com/okian/scorebook/pkg/metrics"
)

const (
	defaultWriteTimeout = 5 * time.Second
	defaultPingInterval = 30 * time.Second
)

// Frame is one message on the stream. Exists is false once the match has
// left the live set.
type Frame struct {
	Exists bool                  `json:"exists"`
	State  *model.LiveMatchState `json:"state,omitempty"`
}

// Hub upgrades spectator requests and forwards live store changes of one
// match to each connection.
type Hub struct {
	upgrader     websocket.Upgrader
	store        livestore.Store
	log          logger.Logger
	writeTimeout time.Duration
	pingInterval time.Duration
}

// NewHub creates a hub reading from store.
func NewHub(store livestore.Store, opts ...Option) *Hub {
	h := &Hub{
		upgrader:     websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		store:        store,
		log:          logger.Named("ws"),
		writeTimeout: defaultWriteTimeout,
		pingInterval: defaultPingInterval,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP handles GET /live/{id}/ws.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", logger.String("match_id", matchID), logger.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	// Only the latest frame matters; a slow reader skips intermediate ones.
	frames := make(chan Frame, 1)
	unsub, err := h.store.Subscribe(ctx, livestore.LiveMatchPath(matchID), func(s livestore.Snapshot) {
		push(frames, toFrame(s))
	})
	if err != nil {
		h.log.Error(ctx, "subscribe failed", logger.String("match_id", matchID), logger.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "live store unavailable"),
			time.Now().Add(h.writeTimeout))
		return
	}
	defer unsub()

	metrics.AddSpectators(1)
	defer metrics.AddSpectators(-1)
	h.log.Debug(ctx, "spectator connected", logger.String("match_id", matchID))

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			h.log.Debug(ctx, "spectator disconnected", logger.String("match_id", matchID))
			return
		case f := <-frames:
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := conn.WriteJSON(f); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.writeTimeout)); err != nil {
				return
			}
		}
	}
}

func toFrame(s livestore.Snapshot) Frame {
	var st model.LiveMatchState
	if err := s.Decode(&st); err != nil {
		return Frame{}
	}
	return Frame{Exists: true, State: &st}
}

// push replaces any undelivered frame with f.
func push(ch chan Frame, f Frame) {
	for {
		select {
		case ch <- f:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

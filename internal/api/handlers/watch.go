package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/nasdaq/internal/session"
)

const (
	watchWriteWait  = 10 * time.Second
	watchPongWait   = 60 * time.Second
	watchPingPeriod = (watchPongWait * 9) / 10

	// DefaultWatchInterval is how often Watch samples the session state.
	DefaultWatchInterval = time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WithWatchInterval overrides the sampling interval (tests)
func (h *SessionHandler) WithWatchInterval(d time.Duration) *SessionHandler {
	h.watchInterval = d
	return h
}

// Watch streams the credential snapshot over a websocket. The current
// snapshot is sent on connect, then again whenever it changes.
// GET /api/v1/session/watch
func (h *SessionHandler) Watch(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		h.logger.WithError(err).Warn("Session watch upgrade failed")
		return
	}
	defer conn.Close()

	// The reader only services pongs and notices the peer going away.
	done := make(chan struct{})
	_ = conn.SetReadDeadline(time.Now().Add(watchPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(watchPongWait))
	})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	poll := time.NewTicker(h.watchInterval)
	defer poll.Stop()
	ping := time.NewTicker(watchPingPeriod)
	defer ping.Stop()

	var last *session.Snapshot
	for {
		snap := h.sessions.Snapshot()
		if last == nil || !sameSnapshot(*last, snap) {
			_ = conn.SetWriteDeadline(time.Now().Add(watchWriteWait))
			if err := conn.WriteJSON(snap); err != nil {
				h.logger.WithError(err).Debug("Session watch write failed")
				return
			}
			last = &snap
		}

		select {
		case <-done:
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(watchWriteWait)); err != nil {
				return
			}
		case <-poll.C:
		}
	}
}

func sameSnapshot(a, b session.Snapshot) bool {
	return a.State == b.State &&
		a.Mints == b.Mints &&
		a.Failures == b.Failures &&
		a.LastError == b.LastError &&
		sameTime(a.ExpiresAt, b.ExpiresAt)
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/nasdaq/internal/scheduler"
	"github.com/wonny/nasdaq/internal/session"
	"github.com/wonny/nasdaq/pkg/logger"
)

// Sessions is the session manager as seen by the API.
type Sessions interface {
	GetValidCredential(ctx context.Context) (session.Credential, error)
	Invalidate()
	Snapshot() session.Snapshot
}

// JobStats reports scheduled job statistics; *scheduler.Scheduler implements it.
type JobStats interface {
	GetJobStats() map[string]scheduler.JobStats
}

// SessionHandler exposes credential state. Cookie values are never returned.
type SessionHandler struct {
	sessions Sessions
	jobs     JobStats // nil when no scheduler runs
	service  string
	logger   *logger.Logger

	watchInterval time.Duration
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions Sessions, jobs JobStats, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		jobs:     jobs,
		service:  logger.ServiceName,
		logger:   log,

		watchInterval: DefaultWatchInterval,
	}
}

// Health reports service and credential health. It never mints.
// GET /health
func (h *SessionHandler) Health(w http.ResponseWriter, r *http.Request) {
	snap := h.sessions.Snapshot()

	status := "ok"
	if snap.LastError != "" && snap.State != session.StateFresh {
		status = "degraded"
	}

	body := map[string]interface{}{
		"status":  status,
		"service": h.service,
		"session": snap,
	}
	if h.jobs != nil {
		body["jobs"] = h.jobs.GetJobStats()
	}

	respondJSON(w, http.StatusOK, body)
}

// GetSession returns the credential snapshot
// GET /api/v1/session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	respondData(w, h.sessions.Snapshot())
}

// Refresh forces a new credential
// POST /api/v1/session/refresh
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.sessions.Invalidate()

	if _, err := h.sessions.GetValidCredential(r.Context()); err != nil {
		h.logger.WithError(err).Error("Forced refresh failed")
		respondError(w, fetchStatus(err), err.Error())
		return
	}

	respondData(w, h.sessions.Snapshot())
}

package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/nasdaq/internal/session"
	"github.com/wonny/nasdaq/pkg/logger"
)

// Sessions is the part of *session.Manager the warmer drives.
type Sessions interface {
	GetValidCredential(ctx context.Context) (session.Credential, error)
	Invalidate()
	Snapshot() session.Snapshot
}

// CredentialWarmerJob keeps the session credential fresh ahead of traffic.
// It goes through GetValidCredential, so it shares the single-flight refresh
// with request paths and never mints in parallel with them.
type CredentialWarmerJob struct {
	sessions Sessions
	schedule string
	lead     time.Duration
	now      func() time.Time
	logger   *logger.Logger
}

// NewCredentialWarmerJob creates the warmer. A credential that expires
// within lead is renewed early; lead 0 only replaces stale credentials.
func NewCredentialWarmerJob(sessions Sessions, schedule string, lead time.Duration, log *logger.Logger) *CredentialWarmerJob {
	return &CredentialWarmerJob{
		sessions: sessions,
		schedule: schedule,
		lead:     lead,
		now:      time.Now,
		logger:   log,
	}
}

// WithClock replaces the time source (tests)
func (j *CredentialWarmerJob) WithClock(now func() time.Time) *CredentialWarmerJob {
	j.now = now
	return j
}

// CredentialWarmerName is the warmer's job name
const CredentialWarmerName = "credential_warmer"

// Name returns the job name
func (j *CredentialWarmerJob) Name() string {
	return CredentialWarmerName
}

// Schedule returns the cron schedule
func (j *CredentialWarmerJob) Schedule() string {
	return j.schedule
}

// Run renews the credential when it is stale or about to expire
func (j *CredentialWarmerJob) Run(ctx context.Context) error {
	snap := j.sessions.Snapshot()
	if snap.State == session.StateFresh && snap.ExpiresAt != nil && j.lead > 0 &&
		snap.ExpiresAt.Sub(j.now()) <= j.lead {
		j.logger.WithField("expires_at", snap.ExpiresAt).Info("Credential near expiry, renewing early")
		j.sessions.Invalidate()
	}

	cred, err := j.sessions.GetValidCredential(ctx)
	if err != nil {
		return fmt.Errorf("warm credential: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"credential_id": cred.ID,
		"expires_at":    cred.ExpiresAt(),
	}).Debug("Credential warm")
	return nil
}

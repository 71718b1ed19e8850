package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wonny/nasdaq/pkg/config"
	"github.com/wonny/nasdaq/pkg/logger"
)

const (
	// DefaultTTL is the credential lifetime when none is configured.
	DefaultTTL = time.Duration(config.DefaultCookieTTLSeconds) * time.Second

	// DefaultMintTimeout bounds a single mint.
	DefaultMintTimeout = 60 * time.Second

	// storeTimeout bounds best-effort store calls made inside a refresh.
	storeTimeout = 5 * time.Second

	refreshKey = "refresh"
)

// State is the manager's lifecycle position.
type State int

const (
	StateAbsent State = iota
	StateRefreshing
	StateFresh
	StateStale
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateRefreshing:
		return "refreshing"
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	default:
		return "unknown"
	}
}

// MarshalText lets State render as its name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for _, st := range []State{StateAbsent, StateRefreshing, StateFresh, StateStale} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown session state %q", text)
}

// Snapshot is a point-in-time view for health reporting.
type Snapshot struct {
	State       State      `json:"state"`
	CookieNames []string   `json:"cookie_names,omitempty"`
	MintedAt    *time.Time `json:"minted_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	TTL         string     `json:"ttl"`
	Mints       int64      `json:"mints"`
	Failures    int64      `json:"failures"`
	LastError   string     `json:"last_error,omitempty"`
}

// Manager owns the current credential and decides when to mint a new one.
// ⭐ SSOT: the only writer of the shared credential is refresh()
//
// Concurrent callers that find the credential stale share one refresh:
// the Minter is never invoked twice at the same time.
type Manager struct {
	minter      Minter
	store       CredentialStore
	logger      *logger.Logger
	ttl         time.Duration
	mintTimeout time.Duration
	now         func() time.Time

	group singleflight.Group

	mu          sync.RWMutex
	current     *Credential
	invalidated bool // held credential forced stale
	skipStore   bool // next refresh must not adopt the stored credential
	refreshing  bool
	lastErr     error

	mints    atomic.Int64
	failures atomic.Int64
}

// NewManager creates a manager from config
func NewManager(cfg *config.Config, minter Minter, log *logger.Logger) *Manager {
	ttl := cfg.Nasdaq.CookieTTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	mintTimeout := cfg.Nasdaq.MintTimeout
	if mintTimeout <= 0 {
		mintTimeout = DefaultMintTimeout
	}

	return &Manager{
		minter:      minter,
		logger:      log.WithComponent("session"),
		ttl:         ttl,
		mintTimeout: mintTimeout,
		now:         time.Now,
	}
}

// WithClock replaces the time source (tests)
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// WithStore installs a persistence hook
func (m *Manager) WithStore(store CredentialStore) *Manager {
	m.store = store
	return m
}

// WithTTL overrides the configured credential lifetime
func (m *Manager) WithTTL(ttl time.Duration) *Manager {
	m.ttl = ttl
	return m
}

// WithMintTimeout overrides the configured mint bound
func (m *Manager) WithMintTimeout(d time.Duration) *Manager {
	m.mintTimeout = d
	return m
}

// TTL returns the lifetime stamped on minted credentials
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// GetValidCredential returns a credential that is fresh at the instant of return.
// A fresh credential is returned without side effects. Otherwise the caller
// joins (or starts) the single in-flight refresh and receives its outcome.
func (m *Manager) GetValidCredential(ctx context.Context) (Credential, error) {
	if cred, ok := m.fresh(); ok {
		return cred, nil
	}

	// The refresh outlives the caller that happened to start it.
	flightCtx := context.WithoutCancel(ctx)
	ch := m.group.DoChan(refreshKey, func() (interface{}, error) {
		return m.refresh(flightCtx)
	})

	select {
	case <-ctx.Done():
		return Credential{}, fmt.Errorf("%w: %w", ErrCredentialUnavailable, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return Credential{}, res.Err
		}
		return res.Val.(Credential), nil
	}
}

// Invalidate marks the held credential stale. The next call refreshes and
// will not reload the rejected credential from the store.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.invalidated = true
	m.skipStore = true
	m.logger.Info("Credential invalidated")
}

// Reject invalidates cred only if it is still the held credential.
// Two requests rejected with the same cookies cause one refresh, not two.
func (m *Manager) Reject(cred Credential) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil || m.current.ID != cred.ID || m.invalidated {
		return false
	}
	m.invalidated = true
	m.skipStore = true
	m.logger.WithField("credential_id", cred.ID).Info("Credential rejected upstream, invalidated")
	return true
}

// State reports the lifecycle position
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stateLocked(m.now())
}

// Snapshot returns a health view of the manager
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		State:    m.stateLocked(m.now()),
		TTL:      m.ttl.String(),
		Mints:    m.mints.Load(),
		Failures: m.failures.Load(),
	}
	if m.current != nil {
		snap.CookieNames = m.current.Names()
		mintedAt, expiresAt := m.current.MintedAt, m.current.ExpiresAt()
		snap.MintedAt = &mintedAt
		snap.ExpiresAt = &expiresAt
	}
	if m.lastErr != nil {
		snap.LastError = m.lastErr.Error()
	}
	return snap
}

func (m *Manager) stateLocked(now time.Time) State {
	switch {
	case m.refreshing:
		return StateRefreshing
	case m.current == nil:
		return StateAbsent
	case !m.invalidated && m.current.IsFresh(now):
		return StateFresh
	default:
		return StateStale
	}
}

// fresh returns the held credential when it may be used as is
func (m *Manager) fresh() (Credential, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil || m.invalidated || !m.current.IsFresh(m.now()) {
		return Credential{}, false
	}
	return *m.current, true
}

// refresh runs inside the single flight
func (m *Manager) refresh(ctx context.Context) (Credential, error) {
	// A caller that queued behind a finished flight finds a fresh credential here.
	if cred, ok := m.fresh(); ok {
		return cred, nil
	}

	m.mu.Lock()
	m.refreshing = true
	skipStore := m.skipStore
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.refreshing = false
		m.mu.Unlock()
	}()

	if cred, ok := m.adoptStored(ctx, skipStore); ok {
		return cred, nil
	}

	start := m.now()
	minted, err := m.mint(ctx)
	if err == nil && minted.IsZero() {
		err = ErrNoCookies
	}
	if err != nil {
		m.failures.Add(1)
		m.mu.Lock()
		// The previous credential, stale or not, is kept.
		m.lastErr = err
		m.mu.Unlock()

		m.logger.WithError(err).WithField("elapsed", m.now().Sub(start).String()).Error("Credential refresh failed")
		return Credential{}, fmt.Errorf("%w: %w", ErrCredentialUnavailable, err)
	}

	cred := NewCredential(minted.Cookies, m.now(), m.ttl)
	m.install(cred)
	m.mints.Add(1)

	m.logger.WithFields(map[string]interface{}{
		"credential_id": cred.ID,
		"cookies":       len(cred.Cookies),
		"expires_at":    cred.ExpiresAt(),
	}).Info("Credential refreshed")

	if m.store != nil {
		sctx, cancel := context.WithTimeout(ctx, storeTimeout)
		if err := m.store.Save(sctx, cred); err != nil {
			m.logger.WithError(err).Warn("Credential store save failed")
		}
		cancel()
	}

	return cred, nil
}

// Restore adopts a fresh stored credential without minting. It reports
// whether a fresh credential is held afterwards. A credential already held,
// or a refresh in progress, is never replaced.
func (m *Manager) Restore(ctx context.Context) bool {
	if _, ok := m.fresh(); ok {
		return true
	}
	if m.store == nil {
		return false
	}

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	stored, ok, err := m.store.Load(sctx)
	if err != nil {
		m.logger.WithError(err).Warn("Credential store load failed")
		return false
	}
	if !ok || !stored.IsFresh(m.now()) {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil || m.refreshing {
		return false
	}
	m.current = &stored
	m.logger.WithField("credential_id", stored.ID).Info("Credential restored from store")
	return true
}

// adoptStored takes a fresh credential from the store instead of minting.
// After an invalidation the stored copy is the rejected one, so it is deleted instead.
func (m *Manager) adoptStored(ctx context.Context, skipStore bool) (Credential, bool) {
	if m.store == nil {
		return Credential{}, false
	}

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if skipStore {
		if err := m.store.Delete(sctx); err != nil {
			m.logger.WithError(err).Warn("Credential store delete failed")
		}
		return Credential{}, false
	}

	stored, ok, err := m.store.Load(sctx)
	if err != nil {
		m.logger.WithError(err).Warn("Credential store load failed")
		return Credential{}, false
	}
	if !ok || !stored.IsFresh(m.now()) {
		return Credential{}, false
	}

	m.install(stored)
	m.logger.WithField("credential_id", stored.ID).Info("Credential adopted from store")
	return stored, true
}

func (m *Manager) install(cred Credential) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = &cred
	m.invalidated = false
	m.skipStore = false
	m.lastErr = nil
}

type mintResult struct {
	cred Credential
	err  error
}

// mint calls the Minter bounded by mintTimeout. A Minter that ignores its
// context is abandoned; its goroutine finishes into a buffered channel.
func (m *Manager) mint(ctx context.Context) (Credential, error) {
	mctx, cancel := context.WithTimeout(ctx, m.mintTimeout)
	defer cancel()

	done := make(chan mintResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- mintResult{err: fmt.Errorf("minter panicked: %v", r)}
			}
		}()
		cred, err := m.minter.Mint(mctx)
		done <- mintResult{cred: cred, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && errors.Is(res.err, context.DeadlineExceeded) {
			return Credential{}, fmt.Errorf("%w after %s: %w", ErrMintTimeout, m.mintTimeout, res.err)
		}
		return res.cred, res.err
	case <-mctx.Done():
		return Credential{}, fmt.Errorf("%w after %s", ErrMintTimeout, m.mintTimeout)
	}
}

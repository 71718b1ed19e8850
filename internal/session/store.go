package session

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/nasdaq/pkg/redis"
)

// CredentialStore persists the current credential across processes.
// Optional: the manager is correct without one.
type CredentialStore interface {
	// Load returns the stored credential, or ok=false when none exists.
	Load(ctx context.Context) (cred Credential, ok bool, err error)
	Save(ctx context.Context, cred Credential) error
	Delete(ctx context.Context) error
}

// RedisStore keeps the credential in Redis with an expiry equal to its remaining lifetime.
type RedisStore struct {
	cache *redis.Cache
	key   string
	now   func() time.Time
}

// NewRedisStore creates a store keyed by the site host.
func NewRedisStore(cache *redis.Cache, host string) *RedisStore {
	return &RedisStore{
		cache: cache,
		key:   redis.CredentialKey(host),
		now:   time.Now,
	}
}

// Load implements CredentialStore.
func (s *RedisStore) Load(ctx context.Context) (Credential, bool, error) {
	var cred Credential
	found, err := s.cache.Get(ctx, s.key, &cred)
	if err != nil {
		return Credential{}, false, fmt.Errorf("load credential: %w", err)
	}
	if !found || cred.IsZero() {
		return Credential{}, false, nil
	}
	return cred, true, nil
}

// Save implements CredentialStore. Expired credentials are not written.
func (s *RedisStore) Save(ctx context.Context, cred Credential) error {
	remaining := cred.ExpiresAt().Sub(s.now())
	if err := s.cache.Set(ctx, s.key, cred, remaining); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// Delete implements CredentialStore.
func (s *RedisStore) Delete(ctx context.Context) error {
	if err := s.cache.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

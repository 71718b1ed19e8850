package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const credentialSchema = `
	CREATE TABLE IF NOT EXISTS session_credentials (
		host       TEXT PRIMARY KEY,
		credential JSONB NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	)
`

// PostgresStore keeps the credential in a one-row-per-host table.
// Rows past expires_at are treated as absent.
type PostgresStore struct {
	pool *pgxpool.Pool
	host string
	now  func() time.Time
}

// NewPostgresStore creates a store keyed by the site host.
func NewPostgresStore(pool *pgxpool.Pool, host string) *PostgresStore {
	return &PostgresStore{
		pool: pool,
		host: host,
		now:  time.Now,
	}
}

// EnsureSchema creates the credential table if needed
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, credentialSchema); err != nil {
		return fmt.Errorf("create credential table: %w", err)
	}
	return nil
}

// Load implements CredentialStore.
func (s *PostgresStore) Load(ctx context.Context) (Credential, bool, error) {
	query := `
		SELECT credential
		FROM session_credentials
		WHERE host = $1 AND expires_at > $2
	`

	var payload []byte
	err := s.pool.QueryRow(ctx, query, s.host, s.now()).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return Credential{}, false, nil
	}
	if err != nil {
		return Credential{}, false, fmt.Errorf("load credential: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(payload, &cred); err != nil {
		return Credential{}, false, fmt.Errorf("decode credential: %w", err)
	}
	if cred.IsZero() {
		return Credential{}, false, nil
	}
	return cred, true, nil
}

// Save implements CredentialStore. Expired credentials are not written.
func (s *PostgresStore) Save(ctx context.Context, cred Credential) error {
	expiresAt := cred.ExpiresAt()
	if !expiresAt.After(s.now()) {
		return nil
	}

	payload, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}

	query := `
		INSERT INTO session_credentials (host, credential, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (host) DO UPDATE SET
			credential = EXCLUDED.credential,
			expires_at = EXCLUDED.expires_at
	`
	if _, err := s.pool.Exec(ctx, query, s.host, payload, expiresAt); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// Delete implements CredentialStore.
func (s *PostgresStore) Delete(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM session_credentials WHERE host = $1`, s.host); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

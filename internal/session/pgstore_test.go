package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/nasdaq/pkg/config"
	"github.com/wonny/nasdaq/pkg/database"
)

func TestPostgresStore(t *testing.T) {
	// Skip if DATABASE_URL is not set
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	ctx := context.Background()
	db, err := database.New(ctx, cfg)
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db.Pool, "test.nasdaq.invalid")
	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.Delete(ctx))

	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	cred := NewCredential(map[string]string{"ak_bmsc": "pg"}, time.Now(), time.Hour)
	require.NoError(t, store.Save(ctx, cred))

	got, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, cred.ID, got.ID)
	assert.Equal(t, cred.Cookies, got.Cookies)

	expired := NewCredential(map[string]string{"ak_bmsc": "old"}, time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, store.Save(ctx, expired))
	got, _, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, cred.ID, got.ID, "expired credentials are not written")

	require.NoError(t, store.Delete(ctx))
	_, ok, err = store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

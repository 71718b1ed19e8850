package commands

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/wonny/nasdaq/internal/nasdaq"
	"github.com/wonny/nasdaq/internal/normalize"
	"github.com/wonny/nasdaq/internal/session"
	"github.com/wonny/nasdaq/pkg/config"
	"github.com/wonny/nasdaq/pkg/database"
	"github.com/wonny/nasdaq/pkg/httputil"
	"github.com/wonny/nasdaq/pkg/logger"
	"github.com/wonny/nasdaq/pkg/redis"
)

// deps is the wired object graph shared by every command
type deps struct {
	cfg      *config.Config
	log      *logger.Logger
	redis    *redis.Client
	db       *database.DB // nil unless Postgres backs the credential store
	sessions *session.Manager
	client   *nasdaq.Client
}

// buildDeps loads config and wires the client stack in dependency order.
func buildDeps(ctx context.Context) (*deps, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
		cfg.LogFormat = "console"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to Redis (disabled client when REDIS_ENABLED=false)
	rc, err := redis.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	if rc.Enabled() {
		log.Debug("Connected to redis")
	}

	// 4. HTTP client: browser TLS fingerprint, local and shared rate limits.
	// The homepage minter shares its transport.
	httpClient := httputil.New(cfg, log).WithCloudflareBypass()
	if rc.Enabled() {
		httpClient.WithRateLimiter(redis.NewRateLimiter(rc, "ratelimit"), redis.NasdaqAPIRateLimit)
	}

	// 5. Credential store: Redis, else Postgres, else process-local
	host := hostOf(cfg.Nasdaq.APIBaseURL)
	sessions := session.NewManager(cfg, session.NewMinter(cfg, httpClient.HTTPClient(), log), log)
	var db *database.DB
	switch {
	case rc.Enabled():
		sessions.WithStore(session.NewRedisStore(redis.NewCache(rc, "nasdaq"), host))
	case cfg.Database.URL != "":
		db, err = database.New(ctx, cfg)
		if err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		store := session.NewPostgresStore(db.Pool, host)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			_ = rc.Close()
			return nil, err
		}
		sessions.WithStore(store)
		log.Debug("Credential store: postgres")
	}

	// 6. Normalization engine
	engine := normalize.New(normalize.Options{
		EmptyMarkers: cfg.Nasdaq.EmptyMarkers,
		DateLayouts:  cfg.Nasdaq.DateLayouts,
	})

	// 7. NASDAQ client
	client := nasdaq.NewClient(cfg, httpClient, sessions, engine, log)

	return &deps{
		cfg:      cfg,
		log:      log,
		redis:    rc,
		db:       db,
		sessions: sessions,
		client:   client,
	}, nil
}

// Close releases the Redis and database connections
func (d *deps) Close() {
	if d.db != nil {
		d.db.Close()
	}
	if err := d.redis.Close(); err != nil {
		d.log.WithError(err).Warn("Redis close failed")
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

// commandContext bounds a one-shot CLI call: a cold mint plus the upstream request.
func commandContext(parent context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, cfg.Nasdaq.MintTimeout+cfg.Nasdaq.HTTPTimeout+10*time.Second)
}

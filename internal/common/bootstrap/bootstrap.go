package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/aiagents/collab-hub/internal/common/config"
	"github.com/aiagents/collab-hub/internal/common/constants"
	commoncrypto "github.com/aiagents/collab-hub/internal/common/crypto"
	"github.com/aiagents/collab-hub/internal/common/db"
	commonhttp "github.com/aiagents/collab-hub/internal/common/http"
	"github.com/aiagents/collab-hub/internal/common/logger"
	postrepo "github.com/aiagents/collab-hub/internal/post/repository"
	userdomain "github.com/aiagents/collab-hub/internal/user/domain"
	userrepo "github.com/aiagents/collab-hub/internal/user/repository"
)

type App struct {
	Log          *logger.Logger
	Config       config.Config
	Pool         *pgxpool.Pool
	Directory    userrepo.Directory
	DemoAccounts []userdomain.DemoAccount
	Posts        postrepo.Store
}

// NewApp loads configuration and opens the storage backends it selects.
func NewApp(ctx context.Context, serviceName string) (*App, error) {
	log, err := logger.New(os.Getenv("LOG_DIR"), serviceName, os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	app := &App{Log: log, Config: cfg}

	if cfg.UsesPostgres() {
		pool, err := db.NewPool(ctx, log, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		app.Pool = pool
		db.StartPoolMetrics(ctx, db.BackendPostgres, db.PgxPoolStats(pool), constants.DBPoolMetricsInterval)
	}

	if err := app.initDirectory(ctx); err != nil {
		app.Close()
		return nil, err
	}
	if err := app.initPosts(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) initDirectory(ctx context.Context) error {
	hasher := commoncrypto.NewBcryptHasher(0)
	seeds := userrepo.DemoSeeds()

	if a.Config.DemoAccountsEnabled {
		a.DemoAccounts = userrepo.DemoAccounts(seeds)
	}

	switch a.Config.UserDirectory {
	case config.DirectoryPostgres:
		dir, err := userrepo.NewPgDirectory(ctx, a.Pool, hasher, a.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize user directory: %w", err)
		}
		if a.Config.DemoAccountsEnabled {
			for _, seed := range seeds {
				if err := dir.Upsert(ctx, seed); err != nil {
					return fmt.Errorf("failed to seed demo user %s: %w", seed.Email, err)
				}
			}
		}
		a.Directory = dir
	default:
		dir, err := userrepo.NewStaticDirectory(seeds, hasher)
		if err != nil {
			return fmt.Errorf("failed to initialize user directory: %w", err)
		}
		a.Directory = dir
	}

	a.Log.Infof("user directory: %s", a.Config.UserDirectory)
	return nil
}

func (a *App) initPosts(ctx context.Context) error {
	switch a.Config.PostStore {
	case config.PostStorePostgres:
		store, err := postrepo.NewPgStore(ctx, a.Pool, a.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize post store: %w", err)
		}
		a.Posts = store
	case config.PostStoreMemory:
		a.Posts = postrepo.NewMemoryStore()
	default:
		store, err := postrepo.OpenSQLiteStore(ctx, a.Config.PostsDBPath, a.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize post store: %w", err)
		}
		db.StartPoolMetrics(ctx, db.BackendSQLite, store.PoolStats, constants.DBPoolMetricsInterval)
		a.Posts = store
	}

	a.Log.Infof("post store: %s", a.Config.PostStore)
	return nil
}

// HealthChecks probes the storage backends the app opened.
func (a *App) HealthChecks() map[string]commonhttp.HealthCheck {
	checks := make(map[string]commonhttp.HealthCheck)
	if a.Pool != nil {
		checks["postgres"] = a.Pool.Ping
	}
	if p, ok := a.Posts.(interface{ Ping(context.Context) error }); ok {
		checks["post_store"] = p.Ping
	}
	return checks
}

func (a *App) Close() {
	if a.Posts != nil {
		if err := a.Posts.Close(); err != nil {
			a.Log.Errorf("failed to close post store: %v", err)
		}
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}

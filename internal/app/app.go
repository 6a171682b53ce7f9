// Package app opens a workspace: its database, schema and gateways.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"planforge/internal/config"
	"planforge/internal/db"
	"planforge/internal/metrics"
	"planforge/internal/migrate"
	"planforge/internal/repo"
)

type Options struct {
	Workspace string
	Config    *config.Config
	Logger    *zap.Logger
	// Registerer receives the gateway metrics. Nil disables them.
	Registerer prometheus.Registerer
}

// App is an opened workspace.
type App struct {
	DB       *sql.DB
	Store    *repo.Store
	Gateways repo.Gateways
	Config   *config.Config
	Log      *zap.Logger
}

// Open opens the workspace database, applies pending migrations and builds
// the gateways.
func Open(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	conn, err := db.Open(db.Config{Workspace: opts.Workspace, Dir: cfg.Database.Dir})
	if err != nil {
		return nil, err
	}
	pending, err := migrate.Pending(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if len(pending) > 0 {
		log.Info("applying migrations", zap.Int("count", len(pending)))
		if err := migrate.Migrate(conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	storeOpts := []repo.Option{repo.WithLogger(log)}
	if opts.Registerer != nil {
		m, err := metrics.NewGateway(opts.Registerer)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		storeOpts = append(storeOpts, repo.WithMetrics(m))
	}
	store, err := repo.NewStore(conn, storeOpts...)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		conn.Close()
		return nil, err
	}
	return &App{
		DB:       conn,
		Store:    store,
		Gateways: repo.NewGateways(store),
		Config:   cfg,
		Log:      log,
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}

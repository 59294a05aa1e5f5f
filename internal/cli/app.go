package cli

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/mattn/go-sqlite3"

	"brewlake/internal/config"
	internaldb "brewlake/internal/db"
	"brewlake/internal/fetch"
	"brewlake/internal/pipeline"
	"brewlake/internal/quality"
	"brewlake/internal/repository"
	"brewlake/internal/store"
)

// app holds the wired application components shared by all commands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	duck   *sql.DB
	meta   *sql.DB
	runs   *repository.RunRepo
	svc    *pipeline.Service
}

// newApp loads configuration (env file, then environment, then YAML
// overlay), opens the DuckDB engine and the SQLite metastore, runs
// migrations, and wires the pipeline service.
func newApp(configFile, envFile string) (*app, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyFile(configFile); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	duck, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	meta, err := internaldb.OpenSQLite(cfg.MetaDBPath)
	if err != nil {
		_ = duck.Close()
		return nil, err
	}
	if err := internaldb.RunMigrations(meta); err != nil {
		_ = duck.Close()
		_ = meta.Close()
		return nil, err
	}

	st := store.New(duck, logger.With("component", "store"))
	fetcher := fetch.NewClient(cfg.BaseURL, cfg.PageSize, cfg.FetchTimeout, cfg.FetchDelay,
		logger.With("component", "fetcher"))
	gate := quality.NewGate(st, logger.With("component", "quality"))
	runs := repository.NewRunRepo(meta)
	svc := pipeline.NewService(cfg, st, fetcher, gate, runs, logger)

	return &app{
		cfg:    cfg,
		logger: logger,
		duck:   duck,
		meta:   meta,
		runs:   runs,
		svc:    svc,
	}, nil
}

func (a *app) Close() {
	if err := a.duck.Close(); err != nil {
		a.logger.Warn("closing duckdb", "error", err)
	}
	if err := a.meta.Close(); err != nil {
		a.logger.Warn("closing metastore", "error", err)
	}
}

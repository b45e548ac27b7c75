package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/p-n-ai/apprentice/internal/api"
	"github.com/p-n-ai/apprentice/internal/content"
	"github.com/p-n-ai/apprentice/internal/kv"
	"github.com/p-n-ai/apprentice/internal/platform/config"
	"github.com/p-n-ai/apprentice/internal/platform/database"
	"github.com/p-n-ai/apprentice/internal/progress"
)

const sweepInterval = time.Minute

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg.Log, os.Stdout))

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	loader, err := content.NewLoader(cfg.ContentPath)
	if err != nil {
		slog.Error("failed to load content", "path", cfg.ContentPath, "error", err)
		os.Exit(1)
	}

	medium, db, err := openStorage(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}
	if c, ok := medium.(io.Closer); ok {
		defer c.Close()
	}

	hub := api.NewHub()
	store := progress.New(medium,
		progress.WithPrefix(cfg.Storage.Prefix),
		progress.WithEventLogger(hub),
	)
	if cfg.Storage.AuditEvents {
		store.AddEventLogger(progress.NewPostgresEventLogger(db.Pool))
	}

	sessions := api.NewRegistry(cfg.Quiz.SessionTTL)
	go sessions.Run(ctx, sweepInterval)

	opts := []api.Option{
		api.WithHub(hub),
		api.WithRegistry(sessions),
		api.WithSampleSize(cfg.Quiz.SampleSize),
	}
	if hc, ok := medium.(kv.HealthChecker); ok {
		opts = append(opts, api.WithHealthCheck(hc))
	}
	server := api.NewServer(loader, store, opts...)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting",
			"addr", srv.Addr,
			"backend", cfg.Storage.Backend,
			"templates", len(loader.Templates()),
			"quizzes", len(loader.Pools()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// newLogger builds the process logger from the log settings.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// openStorage opens the progress medium and, when needed, the database behind it.
func openStorage(ctx context.Context, cfg *config.Config) (kv.Store, *database.DB, error) {
	opts := kv.Options{
		Backend:     cfg.Storage.Backend,
		FilePath:    cfg.Storage.FilePath,
		MemoryQuota: cfg.Storage.MemoryQuota,
		RedisURL:    cfg.Cache.URL,
	}

	var db *database.DB
	if cfg.NeedsDatabase() {
		var err error
		db, err = database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		opts.Pool = db.Pool
	}

	medium, err := kv.Open(ctx, opts)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, nil, err
	}
	return medium, db, nil
}

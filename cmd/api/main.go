package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"

	"care-feedback-go/internal/actionable"
	"care-feedback-go/internal/config"
	"care-feedback-go/internal/dataset"
	"care-feedback-go/internal/httpapi"
	"care-feedback-go/internal/logger"
	"care-feedback-go/internal/pipeline"
	"care-feedback-go/internal/roster"
	"care-feedback-go/internal/storage"
	"care-feedback-go/internal/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.FromEnv().WithError(err).Fatal("invalid configuration")
	}

	log := logger.New(logger.Options{Environment: cfg.Environment, Level: cfg.LogLevel})
	log.WithField("service", "care-feedback-go").Info("starting service")

	loc, err := cfg.Location()
	if err != nil {
		log.WithError(err).Fatal("failed to load timezone")
	}
	types.Location = loc

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open analysis storage")
	}
	src, closeRoster, err := openRoster(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open roster")
	}
	defer closeRoster()

	loader := dataset.NewLoader(store, dataset.NewFloorNames(cfg.FloorTokens), log)
	p := pipeline.New(loader, src, log)
	h := httpapi.NewHandler(p, loader, src, log)
	if profiles, ok := src.(roster.ProfileSource); ok {
		h.WithProfiles(profiles, loadChecklist(cfg, log))
	}

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      h.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("graceful shutdown failed")
		}
	}()

	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server terminated")
	}
	log.Info("server stopped")
}

func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (storage.ObjectStore, error) {
	var store storage.ObjectStore
	switch cfg.StorageBackend {
	case config.StorageDir:
		log.WithField("data_dir", cfg.DataDir).Info("serving analysis files from directory")
		store = storage.NewDirStore(cfg.DataDir)
	default:
		m, err := storage.NewMinIOStore(storage.MinIOConfig{
			Endpoint:        cfg.MinIO.Endpoint,
			AccessKeyID:     cfg.MinIO.AccessKeyID,
			SecretAccessKey: cfg.MinIO.SecretAccessKey,
			UseSSL:          cfg.MinIO.UseSSL,
			Bucket:          cfg.MinIO.Bucket,
		}, log)
		if err != nil {
			return nil, err
		}
		if err := waitFor(ctx, log, "minio", cfg.StartupTimeout, m.Ping); err != nil {
			return nil, err
		}
		store = m
	}

	if cfg.RedisAddr == "" {
		return store, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		// CachedStore falls back to direct reads while redis is down
		log.WithError(err).Warn("redis not reachable at startup")
	}
	return storage.NewCachedStore(store, client, cfg.BlobCacheTTL, log), nil
}

func openRoster(ctx context.Context, cfg *config.Config, log *logger.Logger) (roster.Source, func(), error) {
	switch cfg.RosterSource {
	case config.RosterHTTP:
		return roster.NewHTTPClient(cfg.RosterAPIURL, log), func() {}, nil
	case config.RosterXLSX:
		x, err := roster.LoadXLSX(cfg.RosterXLSXPath, log)
		if err != nil {
			return nil, nil, err
		}
		return x, func() {}, nil
	default:
		db, err := roster.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := waitFor(ctx, log, "postgres", cfg.StartupTimeout, func(ctx context.Context) error {
			return db.PingContext(ctx)
		}); err != nil {
			db.Close()
			return nil, nil, err
		}
		return roster.NewPostgresRepository(db, log), closeDB(db, log), nil
	}
}

func loadChecklist(cfg *config.Config, log *logger.Logger) actionable.Checklist {
	if cfg.ChecklistPath == "" {
		log.Warn("CHECKLIST_CATALOG_PATH not set, checklist answers will not be categorized")
		return nil
	}
	c, err := actionable.LoadChecklist(cfg.ChecklistPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load checklist catalog")
	}
	return c
}

func closeDB(db *sql.DB, log *logger.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.WithError(err).Warn("closing database")
		}
	}
}

// waitFor retries check with exponential backoff until it succeeds or
// timeout elapses.
func waitFor(ctx context.Context, log *logger.Logger, name string, timeout time.Duration, check func(context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = timeout
	operation := func() error {
		err := check(ctx)
		if err != nil {
			log.WithError(err).WithField("dependency", name).Warn("dependency not ready")
		}
		return err
	}
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return fmt.Errorf("%s not ready after %s: %w", name, timeout, err)
	}
	log.WithField("dependency", name).Info("dependency ready")
	return nil
}

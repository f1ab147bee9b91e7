package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neexbeast/travel-explorer/internal/api"
	"github.com/neexbeast/travel-explorer/internal/config"
	"github.com/neexbeast/travel-explorer/internal/destination"
	"github.com/neexbeast/travel-explorer/internal/history"
	"github.com/neexbeast/travel-explorer/internal/storage"
	"github.com/neexbeast/travel-explorer/migrations"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

type storePinger interface {
	Ping(ctx context.Context) error
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := context.Background()

	// PostgreSQL and Redis are optional; the aggregate works without either.
	// Interface values stay nil (not typed-nil) when a store is absent.
	var (
		catalog  api.FeaturedCatalog = destination.StaticCatalog{}
		lookups  api.LookupRecorder
		searches api.SearchHistory
		dbPing   storePinger
		rdPing   storePinger
	)

	if cfg.DatabaseURL != "" {
		pool, err := storage.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer pool.Close()

		var migrationFS fs.FS = migrations.FS
		if cfg.MigrationsDir != "" {
			migrationFS = os.DirFS(cfg.MigrationsDir)
		}
		applied, err := storage.RunMigrations(ctx, pool, migrationFS)
		if err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		log.Info("migrations applied", "files", applied)

		repo := storage.NewRepository(pool)
		catalog, lookups, dbPing = repo, repo, pool
	} else {
		log.Info("DATABASE_URL not set, using built-in featured list and no lookup log")
	}

	if cfg.RedisURL != "" {
		client, err := history.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer func() { _ = client.Close() }()

		h := history.New(client)
		searches, rdPing = h, h
	} else {
		log.Info("REDIS_URL not set, search history disabled")
	}

	// Wire dependencies.
	rnd := destination.DefaultRand()
	geo := destination.NewGeocoder(log)
	places := destination.NewPlacesClient(cfg.OpenTripMapKey, geo, cfg.Places, rnd, log)
	fetcher := destination.NewFetcher(
		destination.NewWeatherClient(cfg.WeatherKey, rnd, log),
		destination.NewPhotoClient(cfg.UnsplashKey, cfg.PhotoDelay, log),
		places,
		rnd,
		log,
	)

	keys := api.KeyStatus{
		Weather: cfg.WeatherKey != "",
		Photos:  cfg.UnsplashKey != "",
		Places:  cfg.OpenTripMapKey != "",
	}
	log.Info("provider keys", "weather", keys.Weather, "photos", keys.Photos, "places", keys.Places)
	if cfg.BearerToken == "" {
		log.Warn("BEARER_TOKEN not set, diagnostics endpoint disabled")
	}

	handlers := api.NewHandlers(fetcher, places, catalog, searches, lookups, keys, log)
	router := api.NewRouter(handlers, cfg.BearerToken, cfg.UpstreamTimeout, dbPing, rdPing, log)

	// Provider work stops at UpstreamTimeout; the margin covers bookkeeping
	// and writing the response.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("server goroutine panicked", "recover", r)
				errCh <- fmt.Errorf("server panicked: %v", r)
			}
		}()
		log.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listening: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server shut down cleanly")
	return nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/travelguider/internal/api"
	"github.com/neexbeast/travelguider/internal/backend"
	"github.com/neexbeast/travelguider/internal/config"
	"github.com/neexbeast/travelguider/internal/planner"
	"github.com/neexbeast/travelguider/internal/session"
	"github.com/neexbeast/travelguider/internal/storage"
)

func main() {
	configPath := flag.String("config", "travelguider.yaml", "path to the optional YAML config file")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(log, *configPath); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	ctx := context.Background()

	// Connect to PostgreSQL.
	pool, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if err := storage.RunMigrations(ctx, pool, storage.Migrations()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("migrations applied")

	// Connect to Redis.
	redisClient, err := session.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	// Wire dependencies. Each traveler's planner talks to the backend with
	// that traveler's own session token.
	sessions := session.NewRedisStore(redisClient)
	client := backend.NewClient(cfg.Backend.BaseURL, nil,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithLogger(log.With("component", "backend")),
	)
	planners := planner.NewPool(func(clientID string) planner.Submitter {
		return client.WithTokens(session.New(sessions, clientID))
	}, log.With("component", "planner"))

	repo := storage.NewRepository(pool)
	handlers := api.NewHandlers(planners, sessions, client, repo, log)

	dbPinger := &pgxPoolPinger{pool: pool}
	redisPinger := &redisPingerAdapter{client: redisClient}

	router := api.NewRouter(handlers, cfg.APIToken, dbPinger, redisPinger, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Backend.Timeout + 15*time.Second,
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
		log.Info("server starting", "port", cfg.Port, "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

// pgxPoolPinger adapts pgxpool.Pool to the api.dbPinger interface.
type pgxPoolPinger struct {
	pool interface {
		Ping(ctx context.Context) error
	}
}

func (p *pgxPoolPinger) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// redisPingerAdapter adapts redis.Client to the api.redisPinger interface.
type redisPingerAdapter struct {
	client *redis.Client
}

func (r *redisPingerAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

package main

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/flowboard/internal/auth"
	"github.com/gosuda/flowboard/internal/automation"
	"github.com/gosuda/flowboard/internal/board"
	"github.com/gosuda/flowboard/internal/config"
	"github.com/gosuda/flowboard/internal/domain"
	"github.com/gosuda/flowboard/internal/event"
	"github.com/gosuda/flowboard/internal/notify"
	"github.com/gosuda/flowboard/internal/pipeline"
	"github.com/gosuda/flowboard/internal/realtime"
	"github.com/gosuda/flowboard/internal/server"
	"github.com/gosuda/flowboard/internal/store/memory"
	"github.com/gosuda/flowboard/internal/store/postgres"
	redisstore "github.com/gosuda/flowboard/internal/store/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg.Log)

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	bus := event.New(event.WithMaxCascade(cfg.Bus.MaxCascade))

	hubOpts := []realtime.HubOption{realtime.WithSendBuffer(cfg.Realtime.SendBuffer)}
	if hosts := originHosts(cfg.Server.CORSOrigins); len(hosts) > 0 {
		hubOpts = append(hubOpts, realtime.WithOriginPatterns(hosts...))
	}
	hub := realtime.NewHub(hubOpts...)

	// Without Redis the relay pushes straight into the local hub. With Redis
	// every process publishes and a bridge feeds the local hub from the
	// channels, so clients on any instance see every event.
	var out realtime.Broadcaster = hub
	if cfg.Redis.Enabled() {
		pubsub, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer pubsub.Close()

		out = realtime.NewRedisBroadcaster(pubsub)
		bridge := realtime.NewBridge(pubsub, hub)
		go bridge.Run(ctx)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("realtime fan-out through redis")
	}

	boards := board.NewService(store, bus)
	notifications := notify.NewService(store.Notifications(), bus)
	consumers := pipeline.Wire(bus, pipeline.Deps{
		Store:         store,
		Archiver:      boards,
		Notifications: notifications,
		Broadcaster:   out,
	})

	// Create HTTP server with all routes wired.
	srv := server.New(ctx, cfg, server.Services{
		Auth:          auth.NewService(store.Users(), bus, cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL),
		Boards:        boards,
		Automations:   automation.NewService(store.Automations()),
		Activity:      consumers.Activity,
		AccountLogs:   consumers.AccountLogs,
		Notifications: notifications,
		Hub:           hub,
	})

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("store", cfg.Store).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
			cancel()
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}

func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}

// openStore returns the configured domain store and its release function.
func openStore(ctx context.Context, cfg *config.Config) (domain.Store, func(), error) {
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("using in-memory store; all data is lost on exit")
		return memory.New(), func() {}, nil
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return nil, nil, fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, store.Close, nil
}

// originHosts turns CORS origins into websocket origin host patterns.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			hosts = append(hosts, "*")
			continue
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			continue
		}
		hosts = append(hosts, u.Host)
	}
	return hosts
}

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/config"
	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/logging"
	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/server"
	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/session"
	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/store"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupStore(cfg *config.Config) *store.Store {
	st, err := store.Open(cfg.DataFile)
	if err != nil {
		slog.Error("Failed to open account store", "error", err, "path", cfg.DataFile)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := st.Reconcile(ctx, cfg.Credentials()); err != nil {
		slog.Error("Failed to reconcile configured accounts", "error", err)
		os.Exit(1)
	}

	return st
}

func runGracefulShutdown(srv *server.Server, sweeper *session.Sweeper, cancel context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		sweeper.Stop()
		cancel()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "data_file", cfg.DataFile)

	st := setupStore(cfg)

	sessions := session.NewService(st, clock, session.Options{
		LoginRedirectURL:        cfg.LoginRedirectURL,
		DeclineMessage:          cfg.DeclineMessage,
		HeartbeatDebounce:       cfg.HeartbeatDebounce,
		LogoutReleasesOwnership: cfg.LogoutReleasesOwnership,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := session.NewSweeper(st, clock, cfg.SweepInterval, cfg.InactivityThreshold)
	go sweeper.Start(ctx)

	srv := server.NewServer(cfg, sessions, st)

	done := runGracefulShutdown(srv, sweeper, cancel)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}

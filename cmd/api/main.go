package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/vaughan-dsouza/thepath/internal/config"
	"github.com/vaughan-dsouza/thepath/internal/db"
	"github.com/vaughan-dsouza/thepath/internal/handlers"
	"github.com/vaughan-dsouza/thepath/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("could not load config")
	}

	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	store, err := db.Connect(startCtx, cfg.Database, log)
	if err != nil {
		cancel()
		log.Fatal().Err(err).Msg("db connect")
	}
	if err := store.EnsureSchema(startCtx); err != nil {
		cancel()
		_ = store.Close()
		log.Fatal().Err(err).Msg("db schema")
	}
	cancel()

	h := handlers.NewHandler(store)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      h.Routes(log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("env", cfg.Env).
			Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	if err := store.Close(); err != nil {
		log.Error().Err(err).Msg("db close")
	}

	log.Info().Msg("server exited")
}

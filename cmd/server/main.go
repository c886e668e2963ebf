package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"tasknest/internal/config"
	"tasknest/internal/serverapp"
	"tasknest/internal/store"
)

const snapshotFile = "tasks.snapshot.json"

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("service", "tasknest").Logger()

	cfgPath := os.Getenv("TASKNEST_CONFIG")
	if cfgPath == "" {
		cfgPath = "tasknest.yml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfgPath).Msg("load config")
	}

	// Rebuild the store from the durable snapshot. A corrupt snapshot means
	// the id counter cannot be trusted, so we refuse to serve rather than
	// silently reset to empty.
	snapPath := filepath.Join(cfg.DataDir, snapshotFile)
	st, err := store.Load(snapPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", snapPath).Msg("load task snapshot")
	}

	handler, err := serverapp.NewHandler(serverapp.Options{
		Config: cfg,
		Store:  st,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("build server")
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("serve")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}

	// Serialize the live state before the process goes away.
	if err := st.Save(snapPath); err != nil {
		logger.Fatal().Err(err).Str("path", snapPath).Msg("save task snapshot")
	}
	logger.Info().Str("path", snapPath).Msg("snapshot saved")
}

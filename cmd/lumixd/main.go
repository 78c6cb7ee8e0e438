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

	"github.com/lumix-stream/lumix/internal/config"
	"github.com/lumix-stream/lumix/internal/logging"
	"github.com/lumix-stream/lumix/internal/server"
)

func main() {
	cfg := config.LoadServer()

	logging.Configure(logging.Config{Level: cfg.LogLevel, Service: "lumixd"})
	log := logging.WithComponent("main")

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		log.Fatal().Err(err).Msg("create data directory")
	}

	store, err := server.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer store.Close()

	srv := server.New(cfg, store, logging.WithComponent("api"))

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("db", cfg.DBPath).
			Str("subtitles", cfg.SubtitlesDir).
			Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"pickomino/config"
	"pickomino/engine"
	"pickomino/logger"
	"pickomino/server"
)

func main() {
	logger.Init()
	cfg := config.Load()
	log.Info().
		Int("workers", cfg.Workers).
		Int("batchSize", cfg.BatchSize).
		Bool("chanceNodes", cfg.ChanceNodes).
		Msg("Config loaded")

	eng := engine.New(engine.Config{
		Exploration:    cfg.Exploration,
		Workers:        cfg.Workers,
		BatchSize:      cfg.BatchSize,
		SampleInterval: cfg.SampleInterval,
		ChanceNodes:    cfg.ChanceNodes,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.New(eng).Routes(),
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Advisor listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}

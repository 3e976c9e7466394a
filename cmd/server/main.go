package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/informator/internal/backend"
	"github.com/Nixie-Tech-LLC/informator/internal/registry"
)

func main() {
	cfg := LoadEnvironment()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := backend.OpenKV(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.KVBackend).Msg("failed to open store")
	}
	defer closeStore()

	changes, closeBus, err := backend.OpenBus(cfg, "server")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect change bus")
	}
	defer closeBus()

	reg := registry.New(store, registry.WithNotifier(changes))
	if err := reg.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load screens")
	}

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, cfg, store, changes, reg, InitStorage(cfg))

	srv := &http.Server{Addr: cfg.ServerAddress, Handler: r}
	go func() {
		log.Info().Str("address", cfg.ServerAddress).Str("backend", cfg.KVBackend).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

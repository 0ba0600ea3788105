package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "sentitrip/internal/adapters/http_server"
	"sentitrip/internal/adapters/observability"
	"sentitrip/internal/adapters/sentiment"
	"sentitrip/internal/app"
	"sentitrip/internal/shared"
	"sentitrip/internal/storage/backend"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := backend.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("store init failed")
	}
	defer closeStore()

	analyzer, err := sentiment.New(cfg.SentimentURL, cfg.SentimentConnectTimeout, cfg.SentimentReadTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize sentiment client")
	}
	ing := app.NewIngestionService(store, analyzer, app.WithLogger(log.Logger))
	q := app.NewQueryService(store)

	// http
	srv := server.New(cfg.SentimentConnectTimeout + cfg.SentimentReadTimeout + 15*time.Second)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{C: ing, Q: q, WriteRPS: cfg.SubmitRPS})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", cfg.HTTPAddr).
			Str("backend", cfg.StoreBackend).
			Str("analyzer", cfg.SentimentURL).
			Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

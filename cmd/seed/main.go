package main

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"sentitrip/internal/adapters/observability"
	"sentitrip/internal/app"
	"sentitrip/internal/domain"
	"sentitrip/internal/shared"
	"sentitrip/internal/storage/backend"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("file", cfg.SeedFile).
		Str("backend", cfg.StoreBackend).
		Int("workers", cfg.SeedWorkers).
		Msg("seed starting")

	dests, err := readSeedFile(cfg.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.SeedFile).Msg("read seed file failed")
	}

	store, closeStore, err := backend.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer closeStore()

	// seeding never submits reviews, so no analyzer is wired
	ing := app.NewIngestionService(store, nil, app.WithLogger(log.Logger))
	n := seed(ctx, ing, dests, cfg.SeedWorkers)
	log.Info().Int("created", n).Int("total", len(dests)).Msg("seed completed")
}

func readSeedFile(path string) ([]domain.Destination, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Destination, 0, len(raw))
	for i, m := range raw {
		d, ok := app.MapSeedDestination(m)
		if !ok {
			log.Warn().Int("index", i).Msg("seed entry has no name, skipped")
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func seed(ctx context.Context, ing *app.IngestionService, dests []domain.Destination, workers int) int {
	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg      sync.WaitGroup
		created atomic.Int64
	)
	for _, d := range dests {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Error().Err(err).Msg("semaphore acquire failed")
			break
		}
		wg.Add(1)
		go func(d domain.Destination) {
			defer wg.Done()
			defer sem.Release(1)

			out, err := ing.CreateDestination(ctx, d.Name, d.Description)
			if err != nil {
				log.Warn().Str("name", d.Name).Err(err).Msg("create destination failed")
				return
			}
			created.Add(1)
			log.Info().Int64("id", out.ID).Str("name", out.Name).Msg("destination created")
		}(d)
	}
	wg.Wait()
	return int(created.Load())
}

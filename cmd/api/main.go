package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/denisok6893-rgb/casa-match/internal/config"
	"github.com/denisok6893-rgb/casa-match/internal/extractor"
	"github.com/denisok6893-rgb/casa-match/internal/httpapi"
	"github.com/denisok6893-rgb/casa-match/internal/logger"
	"github.com/denisok6893-rgb/casa-match/internal/matching"
	"github.com/denisok6893-rgb/casa-match/internal/search"
	"github.com/denisok6893-rgb/casa-match/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = zl.Sync() }()

	store, err := storage.Open(cfg.SQLite.Path)
	if err != nil {
		zl.Fatal("open sqlite", zap.String("path", cfg.SQLite.Path), zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	if err := store.EnsureSchema(); err != nil {
		zl.Fatal("ensure schema", zap.Error(err))
	}

	if cfg.SQLite.SeedPath != "" {
		if err := seedListings(store, cfg.SQLite.SeedPath, zl); err != nil {
			zl.Fatal("seed listings", zap.Error(err))
		}
	}

	ext, err := extractor.NewOpenAI(extractor.Config{
		BaseURL: cfg.OpenAI.BaseURL,
		Token:   cfg.OpenAI.Token,
		Model:   cfg.OpenAI.Model,
	}, zl)
	if err != nil {
		zl.Fatal("init extractor", zap.Error(err))
	}

	scorer := matching.NewScorer(cfg.Matching)
	svc := search.NewService(ext, store, store, scorer, zl, search.Options{
		ExtractTimeout: cfg.Extractor.Timeout,
		StoreTimeout:   cfg.Store.Timeout,
	})

	srv := httpapi.NewServer(svc, store, store, zl)

	zl.Info("API listening", zap.String("address", cfg.HTTP.Address))
	if err := srv.Routes().Run(cfg.HTTP.Address); err != nil {
		zl.Fatal("server error", zap.Error(err))
	}
}

// seedListings loads the seed file on first run only; an already
// populated table is left alone.
func seedListings(store *storage.Store, path string, zl *zap.Logger) error {
	ctx := context.Background()

	n, err := store.CountListings(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	listings, err := storage.LoadListingsFromFile(path)
	if err != nil {
		return err
	}
	if err := store.UpsertListings(ctx, listings); err != nil {
		return err
	}
	zl.Info("seeded listings", zap.Int("count", len(listings)), zap.String("path", path))
	return nil
}

// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

// Command bookgraph runs the recommendation API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bookgraph/bookgraph/internal/api"
	"github.com/bookgraph/bookgraph/internal/config"
	"github.com/bookgraph/bookgraph/internal/contribution"
	"github.com/bookgraph/bookgraph/internal/embedding"
	"github.com/bookgraph/bookgraph/internal/logging"
	"github.com/bookgraph/bookgraph/internal/recommend"
	"github.com/bookgraph/bookgraph/internal/search"
	"github.com/bookgraph/bookgraph/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("bookgraph exited with error")
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(cfg.Logging)
	logging.Info().
		Str("driver", cfg.Database.Driver).
		Int("port", cfg.Server.Port).
		Msg("bookgraph starting")

	st, err := openStore(cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	client := embedding.NewClient(embedding.ClientConfig{
		BaseURL:           cfg.Embedding.BaseURL,
		Model:             cfg.Embedding.Model,
		Timeout:           cfg.Embedding.Timeout,
		RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		Burst:             cfg.Embedding.Burst,
	})
	provider, err := embedding.NewCache(client, embedding.CacheConfig{
		Path: cfg.Embedding.CachePath,
		TTL:  cfg.Embedding.CacheTTL,
	})
	if err != nil {
		return fmt.Errorf("embedding cache: %w", err)
	}
	defer provider.Close()

	engine, err := recommend.NewEngine(st, cfg.Engine)
	if err != nil {
		return err
	}

	srv := api.NewServer(cfg.Server, st, engine,
		search.NewService(st, provider, cfg.Engine.DefaultLimit),
		contribution.NewService(st, provider))

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", httpServer.Addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logging.Info().Msg("bookgraph stopped")
	return nil
}

func openStore(cfg config.DatabaseConfig) (store.Store, error) {
	switch cfg.Driver {
	case "memory":
		return store.NewMemory(), nil
	default:
		return store.NewDuckDB(store.DuckDBOptions{
			Path:      cfg.Path,
			MaxMemory: cfg.MaxMemory,
			Threads:   cfg.Threads,
		})
	}
}

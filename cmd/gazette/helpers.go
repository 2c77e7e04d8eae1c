package main

import (
	"fmt"
	"log/slog"

	"gazette/internal/collector"
	"gazette/internal/config"
	"gazette/internal/history"
	"gazette/internal/notifications"
	"gazette/internal/services/arxiv"
	"gazette/internal/services/latex"
)

// buildCollector wires the full pipeline. The caller owns the returned
// history store and must close it.
func buildCollector(cfg *config.Config, logger *slog.Logger) (*collector.Collector, *history.Store, error) {
	store, err := history.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open history store: %w", err)
	}

	c := collector.New(cfg, collector.Deps{
		Fetcher:  arxiv.NewClient(cfg, logger),
		Compiler: latex.NewCompiler(cfg, logger),
		Recorder: store,
		Notifier: notifications.NewService(cfg),
	}, logger)
	return c, store, nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/ingest"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/lemma"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	force := flag.Bool("force", false, "replace an existing index")
	positional := flag.Bool("positional", false, "build a positional index (overrides index.positional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *positional {
		cfg.Index.Positional = true
	}

	logger.SetupWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting indexer",
		"dir", cfg.Index.Dir,
		"positional", cfg.Index.Positional,
		"store", cfg.Index.Store,
		"source", cfg.Ingest.Source,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer)
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer shutdown(context.Background())
	}

	resolver, err := lemma.FromConfig(cfg.Lemma)
	if err != nil {
		slog.Error("failed to load lemma resolver", "error", err)
		os.Exit(1)
	}
	src, err := ingest.FromConfig(cfg)
	if err != nil {
		slog.Error("failed to create ingest source", "error", err)
		os.Exit(1)
	}

	engine := indexer.NewEngine(cfg, resolver, m)
	if err := engine.Run(ctx, src, *force); err != nil {
		if errors.Is(err, apperrors.ErrIndexExists) {
			slog.Warn("index already exists, use -force to rebuild", "dir", cfg.Index.Dir)
			os.Exit(1)
		}
		slog.Error("index build failed", "error", err)
		os.Exit(1)
	}

	slog.Info("indexer finished")
}

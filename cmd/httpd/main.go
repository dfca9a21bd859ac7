// Command httpd runs the analyzer HTTP service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/crisislens/analyzer/internal/analyzer/event"
	"github.com/crisislens/analyzer/internal/analyzer/language"
	"github.com/crisislens/analyzer/internal/analyzer/location"
	"github.com/crisislens/analyzer/internal/analyzer/sentiment"
	"github.com/crisislens/analyzer/internal/analyzer/translate"
	"github.com/crisislens/analyzer/internal/api"
	"github.com/crisislens/analyzer/internal/config"
	"github.com/crisislens/analyzer/internal/logging"
	"github.com/crisislens/analyzer/internal/pipeline"
	"github.com/crisislens/analyzer/internal/registry"
	"github.com/crisislens/analyzer/internal/stage"
	"github.com/crisislens/analyzer/internal/storage"
	"github.com/crisislens/analyzer/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "analyzer: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", os.Getenv("ANALYZER_CONFIG"), "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("starting analyzer",
		logging.String("service", cfg.Service.Name),
		logging.Int("port", cfg.Service.Port))

	tel := telemetry.NewProvider()

	reg := registry.New(logger, cfg.Pipeline.ProbeTimeout)
	if err := registerAnalyzers(reg, cfg, logger); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	snap := reg.Probe(ctx)
	publishAvailability(tel, snap)

	store, indexer, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	orchestrator := pipeline.New(reg, logger, tel, pipeline.Config{
		LowConfidenceLanguage: cfg.Pipeline.LowConfidenceLanguage,
		ProcessTimeout:        cfg.Pipeline.ProcessTimeout,
	})

	handler := api.NewHandler(orchestrator, &probingRegistry{reg: reg, tel: tel}, store, indexer, logger)
	server := api.NewServer(handler, cfg.Service.Port, tel.Handler(), logger, cfg.Logging.Level == "debug")

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	return server.Shutdown(context.Background())
}

// registerAnalyzers wires every stage's candidates in priority order: the
// sidecar-backed implementation first, the embedded fallback second. The
// registry appends the neutral fallback itself.
func registerAnalyzers(reg *registry.Registry, cfg *config.Config, logger logging.Logger) error {
	candidates := []stage.Analyzer{
		language.NewLingua(logger),
		language.NewScript(),
		translate.NewClient(cfg.Sidecars.TranslateURL, float64(cfg.Sidecars.TranslateRPS), logger),
		sentiment.NewRemote(cfg.Sidecars.SentimentURL, logger),
		sentiment.NewLexicon(logger),
		event.NewRemote(cfg.Sidecars.EventURL, logger),
		event.NewKeyword(event.DefaultRules(), logger),
		location.NewRemote(cfg.Sidecars.NERURL, logger),
		location.NewGazetteer(logger),
	}
	for _, a := range candidates {
		if err := reg.Register(a); err != nil {
			return err
		}
	}
	return nil
}

func buildStorage(ctx context.Context, cfg *config.Config, logger logging.Logger) (storage.Store, api.Indexer, error) {
	var (
		store storage.Store
		err   error
	)
	switch cfg.Storage.Driver {
	case "postgres":
		store, err = storage.NewPostgres(ctx, cfg.Storage.PostgresDSN)
	case "sqlite":
		store, err = storage.NewSQLite(ctx, cfg.Storage.SQLitePath)
	default:
		store = storage.NewMemory()
	}
	if err != nil {
		return nil, nil, err
	}
	logger.Info("storage ready", logging.String("driver", cfg.Storage.Driver))

	var indexer api.Indexer
	if cfg.Storage.ElasticsearchURL != "" {
		ix, err := storage.NewIndexer(ctx, cfg.Storage.ElasticsearchURL, "")
		if err != nil {
			// Search indexing is an enrichment; the service runs without it.
			logger.Warn("elasticsearch unavailable, indexing disabled", logging.Error(err))
		} else {
			indexer = ix
			logger.Info("elasticsearch indexing enabled")
		}
	}
	return store, indexer, nil
}

// probingRegistry adapts the registry for the API and republishes
// availability gauges after each reprobe.
type probingRegistry struct {
	reg *registry.Registry
	tel *telemetry.Provider
}

func (p *probingRegistry) Snapshot() *registry.Snapshot { return p.reg.Snapshot() }

func (p *probingRegistry) Probe(ctx context.Context) *registry.Snapshot {
	snap := p.reg.Probe(ctx)
	publishAvailability(p.tel, snap)
	return snap
}

func publishAvailability(tel *telemetry.Provider, snap *registry.Snapshot) {
	for stageName, descs := range snap.All() {
		for _, d := range descs {
			tel.SetAvailability(string(stageName), d.ImplementationID, d.Available)
		}
	}
}

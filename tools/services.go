package tools

import (
	"fmt"
	"log/slog"

	"github.com/hacktricks-mcp/mcp-server/internal/config"
	"github.com/hacktricks-mcp/mcp-server/internal/corpus"
	"github.com/hacktricks-mcp/mcp-server/internal/lookup"
	"github.com/hacktricks-mcp/mcp-server/internal/runtime"
	"github.com/hacktricks-mcp/mcp-server/internal/search"
)

// Services holds the components every tool handler works with.
// They are built once from the configuration and are safe for concurrent use.
type Services struct {
	Config     *config.Config
	Corpus     *corpus.Corpus
	Engine     *search.Engine
	Aggregator *search.Aggregator
	Resolver   *lookup.Resolver
	Aliases    lookup.Aliases
	Prober     runtime.Prober
	Data       DataProvider
	Logger     *slog.Logger
}

// ServiceOptions replaces production collaborators, mostly in tests
type ServiceOptions struct {
	Runner     search.Runner
	Filesystem corpus.Filesystem
	Prober     *runtime.Prober
	Data       DataProvider
}

// NewServices wires the corpus, search engine, aggregator and lookup resolver
func NewServices(cfg *config.Config, logger *slog.Logger, opts ServiceOptions) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c, err := corpus.New(cfg.Corpus.Root, corpus.Options{
		AssetsDir:  cfg.Corpus.AssetsDir,
		IndexFile:  cfg.Corpus.IndexFile,
		MaxDepth:   cfg.Corpus.MaxDepth,
		Filesystem: opts.Filesystem,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}

	aliases, err := lookup.LoadAliases(cfg.Lookup.AliasesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load aliases: %w", err)
	}

	engine := search.NewEngine(c, search.EngineOptions{
		Binary:    cfg.Search.RgPath,
		Timeout:   cfg.Search.Timeout,
		Runner:    opts.Runner,
		Logger:    logger,
		RateLimit: cfg.Search.RateLimit,
		Burst:     cfg.Search.Burst,
	})
	aggregator := search.NewAggregator(engine, c, search.AggregatorOptions{
		DefaultLimit:    cfg.Search.DefaultLimit,
		MaxLimit:        cfg.Search.MaxLimit,
		ReadConcurrency: cfg.Search.ReadConcurrency,
		Logger:          logger,
	})
	resolver := lookup.NewResolver(aggregator, c, lookup.Options{
		Aliases:       aliases,
		Candidates:    cfg.Lookup.Candidates,
		MaxCodeBlocks: cfg.Lookup.MaxCodeBlocks,
		Logger:        logger,
	})

	prober := runtime.DefaultProber()
	if opts.Prober != nil {
		prober = *opts.Prober
	}
	data := opts.Data
	if data == nil {
		data = NewEmbeddedDataProvider()
	}

	return &Services{
		Config:     cfg,
		Corpus:     c,
		Engine:     engine,
		Aggregator: aggregator,
		Resolver:   resolver,
		Aliases:    aliases,
		Prober:     prober,
		Data:       data,
		Logger:     logger,
	}, nil
}

// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/markdave123-py/DocShare/internal/config"
	"github.com/markdave123-py/DocShare/internal/core"
	db "github.com/markdave123-py/DocShare/internal/core/database"
	"github.com/markdave123-py/DocShare/internal/core/ingestion_engine"
	"github.com/markdave123-py/DocShare/internal/core/llm"
	objectclient "github.com/markdave123-py/DocShare/internal/core/object-client"
	"github.com/markdave123-py/DocShare/internal/services"
)

type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	Indexer      *ingestion_engine.DocumentIndexer
	Server       *Server

	closers []io.Closer
}

// Services groups everything the HTTP layer calls into.
type Services struct {
	Users     *services.UserService
	Documents *services.DocumentService
	Forum     *services.ForumService
	Stats     *services.StatsService
}

// NewApp connects every backend and wires the HTTP server. The indexer
// workers live until ctx is cancelled.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := slog.Default().With("component", "app")

	initCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	a := &App{}

	dbClient, err := db.NewDatabaseClient(initCtx, cfg)
	if err != nil {
		return nil, err
	}
	a.DBClient = dbClient
	a.closers = append(a.closers, dbClient)
	log.Info("database initialized and ready")

	if cfg.StorageEnabled() {
		objClient, err := objectclient.NewS3Client(initCtx, cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.ObjectClient = objClient
		log.Info("object storage enabled", "bucket", cfg.BucketName)
	} else {
		log.Info("object storage not configured, originals will not be stored")
	}

	pipeline, closer, err := NewSummaryPipeline(initCtx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}
	extractor := ingestion_engine.NewDocconvExtractor(cfg.MinTextLength)

	embedder, err := llm.NewEmbedder(initCtx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("couldn't initialize the embedder: %w", err)
	}
	if c, ok := embedder.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	a.Indexer = ingestion_engine.NewDocumentIndexer(dbClient, embedder)
	a.Indexer.Start(ctx, cfg.IndexWorkers)

	var queue services.IndexQueue
	if a.Indexer.Enabled() {
		queue = a.Indexer
	}

	svc := Services{
		Users:     services.NewUserService(dbClient),
		Documents: services.NewDocumentService(extractor, pipeline, a.ObjectClient),
		Forum:     services.NewForumService(dbClient, queue, embedder),
		Stats:     services.NewStatsService(dbClient),
	}
	a.Server = NewServer(cfg, svc)
	return a, nil
}

// NewSummaryPipeline builds the provider client and the orchestrator around
// it. The returned closer, when non-nil, releases the provider client.
func NewSummaryPipeline(ctx context.Context, cfg *config.Config) (*ingestion_engine.SummaryPipeline, io.Closer, error) {
	styles := ingestion_engine.DefaultStyles()
	if cfg.StylesFile != "" {
		loaded, err := config.LoadStyles(cfg.StylesFile)
		if err != nil {
			return nil, nil, err
		}
		styles = loaded
	}

	client, err := llm.NewSummarizer(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't initialize the summarizer: %w", err)
	}
	closer, _ := client.(io.Closer)

	limited := llm.RateLimited(client, cfg.ProviderRPS, cfg.MaxConcurrency)
	pipeline := ingestion_engine.NewSummaryPipeline(limited, ingestion_engine.SummaryConfig{
		ChunkSize:      cfg.ChunkSize,
		MaxDepth:       cfg.MaxDepth,
		MaxConcurrency: cfg.MaxConcurrency,
		Styles:         styles,
		KeyPointsFrom:  keyPointsSource(styles),
	})
	return pipeline, closer, nil
}

// keyPointsSource prefers the medium style and falls back to the first one.
func keyPointsSource(styles []core.Style) string {
	for _, s := range styles {
		if s.Name == "medium" {
			return s.Name
		}
	}
	if len(styles) > 0 {
		return styles[0].Name
	}
	return ""
}

func (a *App) Close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		slog.Default().Warn("closing resources", "component", "app", "error", err)
	}
}

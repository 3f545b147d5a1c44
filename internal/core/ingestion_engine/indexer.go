package ingestion_engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/markdave123-py/DocShare/internal/core"
)

const indexQueueSize = 64

var _ Indexer = (*DocumentIndexer)(nil)

// DocumentIndexer embeds title and summary of shared documents and stores the
// vector on the document row.
//
// db:        persistence for documents and their embeddings.
// embedder:  embedding provider; nil disables indexing.
// jobs:      bounded in-memory queue of document IDs.
type DocumentIndexer struct {
	db       core.DbClient
	embedder core.EmbeddingProvider
	jobs     chan string
	timeout  time.Duration
	log      *slog.Logger
}

// NewDocumentIndexer constructs the indexer with a bounded job queue (64).
func NewDocumentIndexer(db core.DbClient, emb core.EmbeddingProvider) *DocumentIndexer {
	return &DocumentIndexer{
		db:       db,
		embedder: emb,
		jobs:     make(chan string, indexQueueSize),
		timeout:  2 * time.Minute,
		log:      slog.Default().With("component", "indexer"),
	}
}

// Enabled reports whether an embedder is configured.
func (i *DocumentIndexer) Enabled() bool {
	return i.embedder != nil
}

// Start runs numWorkers goroutines reading from the jobs channel until ctx is done.
func (i *DocumentIndexer) Start(ctx context.Context, numWorkers int) {
	if !i.Enabled() {
		i.log.Info("no embedder configured, indexing disabled")
		return
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}

	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					i.log.Debug("worker shutting down", "worker", w)
					return
				case docID := <-i.jobs:
					i.log.Debug("indexing document", "doc_id", docID, "worker", w)
					if err := i.ProcessOne(ctx, docID); err != nil {
						i.log.Error("indexing failed", "doc_id", docID, "error", err)
					}
				}
			}
		}(w)
	}
}

// Enqueue schedules a document for indexing. A full queue drops the job so
// the calling request never blocks on it.
func (i *DocumentIndexer) Enqueue(docID string) {
	if !i.Enabled() {
		return
	}
	select {
	case i.jobs <- docID:
	default:
		i.log.Warn("index queue full, dropping job", "doc_id", docID)
	}
}

// ProcessOne embeds a single document and stores the vector.
func (i *DocumentIndexer) ProcessOne(ctx context.Context, docID string) error {
	if !i.Enabled() {
		return core.ErrSearchUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	doc, err := i.db.GetDocumentByID(ctx, docID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("document %s: %w", docID, core.ErrNotFound)
	}

	input := strings.TrimSpace(doc.Title + "\n\n" + doc.Summary)
	vecs, err := i.embedder.EmbedTexts(ctx, []string{input})
	if err != nil {
		return fmt.Errorf("embed document: %w", err)
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return fmt.Errorf("embed document: expected 1 vector, got %d", len(vecs))
	}

	if err := i.db.SetDocumentEmbedding(ctx, docID, vecs[0]); err != nil {
		return fmt.Errorf("store embedding: %w", err)
	}
	return nil
}

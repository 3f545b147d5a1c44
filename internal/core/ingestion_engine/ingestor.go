package ingestion_engine

import "context"

// Indexer embeds shared documents in the background so the forum can be
// searched semantically.
type Indexer interface {
	Start(ctx context.Context, numWorkers int)
	Enqueue(docID string)
	ProcessOne(ctx context.Context, docID string) error
}

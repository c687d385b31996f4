// Package retrieve implements the read path: relevance-ranked full-text
// search with a recency-bounded window scan as the fallback.
package retrieve

import (
	"context"
	"io"
	"log/slog"

	"github.com/tzachyh/telescan/internal/database"
	"github.com/tzachyh/telescan/internal/timewindow"
)

const (
	// PrimaryLimit caps relevance-ranked search results.
	PrimaryLimit = 8
	// FallbackLimit caps the window scan used when search yields nothing.
	FallbackLimit = 300
)

// Retriever answers queries from the store. It never writes.
type Retriever struct {
	store  database.Store
	logger *slog.Logger
}

// New creates a Retriever over the given store.
func New(store database.Store, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Retriever{store: store, logger: logger.With("component", "retriever")}
}

// Retrieve returns evidence for the query. When the relevance search finds
// nothing (sparse corpus, no lexical overlap) it falls back to scanning the
// whole window most-recent-first, on the premise that some evidence is
// better than none for summarization. An empty result means neither path
// found anything.
func (r *Retriever) Retrieve(ctx context.Context, query string, window timewindow.Window) ([]database.Evidence, error) {
	hits, err := r.store.Search(ctx, query, PrimaryLimit)
	if err != nil {
		return nil, err
	}
	if len(hits) > 0 {
		r.logger.DebugContext(ctx, "Relevance search hit", "query", query, "count", len(hits))
		return hits, nil
	}

	r.logger.InfoContext(ctx, "Relevance search empty, scanning window", "query", query)
	items, err := r.store.ScanWindow(ctx, window.Start, window.End, FallbackLimit)
	if err != nil {
		return nil, err
	}
	return items, nil
}

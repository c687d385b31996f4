// Package ingest implements the write path: it pulls messages from the
// external source, applies identity, signature and window filters,
// normalizes the text, and upserts into the store idempotently.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tzachyh/telescan/internal/database"
	"github.com/tzachyh/telescan/internal/source"
	"github.com/tzachyh/telescan/internal/textnorm"
	"github.com/tzachyh/telescan/internal/timewindow"
)

// Ingestor runs ingestion passes over one configured stream.
// The store's uniqueness constraint makes repeated passes convergent, so a
// pass never needs to know what earlier passes saw.
type Ingestor struct {
	src    source.Client
	store  database.Store
	logger *slog.Logger

	sourceName      string
	authorHandle    string
	authorSignature string
}

// New creates an Ingestor for sourceName. authorHandle and authorSignature
// are optional filters: when set, only messages from the resolved sender,
// respectively with a matching normalized attribution string, are kept.
func New(src source.Client, store database.Store, sourceName, authorHandle, authorSignature string, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Ingestor{
		src:             src,
		store:           store,
		logger:          logger.With("component", "ingestor"),
		sourceName:      sourceName,
		authorHandle:    authorHandle,
		authorSignature: authorSignature,
	}
}

// author is the attribution value persisted on each record.
func (ing *Ingestor) author() string {
	if ing.authorHandle != "" {
		return ing.authorHandle
	}
	return ing.authorSignature
}

// Ingest runs one full pass over the source, storing every message that
// passes the filters. It returns the number of newly inserted records and
// the total index size after the pass. A storage failure on one message is
// logged and skipped; the pass always finishes.
func (ing *Ingestor) Ingest(ctx context.Context, window timewindow.Window) (added, total int64, err error) {
	var authorID int64
	if ing.authorHandle != "" {
		authorID, err = ing.src.Resolve(ctx, ing.authorHandle)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to resolve author %q: %w", ing.authorHandle, err)
		}
	}

	wantSig := ""
	if ing.authorSignature != "" {
		wantSig = strings.ToLower(textnorm.Normalize(ing.authorSignature))
	}

	var scanned int64
	err = ing.src.Messages(ctx, func(m source.Message) error {
		scanned++

		if !window.In(m.Date) {
			return nil
		}
		if authorID != 0 && m.SenderID != authorID {
			return nil
		}
		if wantSig != "" {
			sig := strings.ToLower(textnorm.Normalize(m.Signature))
			if sig != wantSig {
				return nil
			}
		}

		text := textnorm.Normalize(m.Text)
		if text == "" {
			// Pure-media or empty messages carry no retrievable evidence.
			return nil
		}

		post := &database.Post{
			Source: ing.sourceName,
			Author: ing.author(),
			MID:    m.ID,
			TS:     m.Date.In(window.Loc).Unix(),
			Link:   database.Permalink(ing.sourceName, m.ID),
			Text:   text,
		}

		inserted, insErr := ing.store.InsertPost(ctx, post)
		if insErr != nil {
			// One bad write must not abort the pass; a later pass will
			// pick the message up again.
			ing.logger.WarnContext(ctx, "Failed to store message, skipping",
				"mid", m.ID, "error", insErr)
			return nil
		}
		if inserted {
			added++
		}
		return nil
	})
	if err != nil {
		return added, 0, fmt.Errorf("source traversal failed: %w", err)
	}

	total, err = ing.store.CountIndexed(ctx)
	if err != nil {
		return added, 0, fmt.Errorf("failed to count indexed posts: %w", err)
	}

	ing.logger.InfoContext(ctx, "Ingestion pass finished",
		"scanned", scanned, "added", added, "total", total)
	return added, total, nil
}

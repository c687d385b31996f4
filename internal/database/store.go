package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tzachyh/telescan/internal/textnorm"
)

// Store defines the interface for post persistence and retrieval.
// The ingestor is the only writer; retrieval and summarization read only.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// InsertPost inserts a post and its full-text index entry atomically.
	// A post whose (source, mid) already exists is left untouched and
	// reported as inserted=false; this is not an error.
	InsertPost(ctx context.Context, post *Post) (inserted bool, err error)

	// Search returns up to limit evidence items ranked by bm25 relevance
	// (best first), ties broken most recent first. The query is normalized
	// the same way stored text is, so diacritics and whitespace differences
	// never cause spurious misses.
	Search(ctx context.Context, query string, limit int) ([]Evidence, error)

	// ScanWindow returns evidence for all posts with ts in [start, end],
	// most recent first, capped at limit.
	ScanWindow(ctx context.Context, start, end time.Time, limit int) ([]Evidence, error)

	// CountIndexed reports the number of full-text index entries.
	CountIndexed(ctx context.Context) (int64, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	loc    *time.Location
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx. Display dates
// on evidence items are rendered in loc.
func NewStore(db *sqlx.DB, loc *time.Location, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if loc == nil {
		loc = time.UTC
	}
	return &sqlxStore{
		db:     db,
		loc:    loc,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) InsertPost(ctx context.Context, post *Post) (bool, error) {
	if post == nil {
		return false, fmt.Errorf("cannot insert nil post")
	}
	if post.Source == "" {
		return false, fmt.Errorf("post must have a non-empty source")
	}
	if post.Text == "" {
		return false, fmt.Errorf("post must have non-empty text")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for inserting post",
			"source", post.Source, "mid", post.MID, "error", err)
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				if !errors.Is(rollbackErr, sql.ErrTxDone) {
					s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
				}
			}
		}
	}()

	query := `
        INSERT INTO posts (source, author, mid, ts, link, text)
        VALUES (:source, :author, :mid, :ts, :link, :text)
        ON CONFLICT (source, mid) DO NOTHING;
    `

	result, err := tx.NamedExecContext(ctx, query, post)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error inserting post", "source", post.Source, "mid", post.MID, "error", err)
		return false, fmt.Errorf("failed to insert post (source %s, mid %d): %w", post.Source, post.MID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		// Replay of an already-stored message: no index mutation either.
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("failed to commit transaction: %w", err)
		}
		tx = nil
		s.logger.DebugContext(ctx, "Post already stored, skipping", "source", post.Source, "mid", post.MID)
		return false, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("failed to read inserted post id: %w", err)
	}
	post.ID = id

	// The FTS row shares the post's local id so search hits join back to the
	// posts table. Rolling back on failure keeps the record and index in
	// lockstep: no post without an index entry, no orphan entries.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO posts_fts (rowid, text, source, author) VALUES (?, ?, ?, ?)`,
		id, post.Text, post.Source, post.Author)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error inserting full-text index entry",
			"source", post.Source, "mid", post.MID, "error", err)
		return false, fmt.Errorf("failed to index post (source %s, mid %d): %w", post.Source, post.MID, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction",
			"source", post.Source, "mid", post.MID, "error", err)
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Post stored", "source", post.Source, "mid", post.MID, "id", id)
	return true, nil
}

// matchExpression turns a free-form query into an FTS5 MATCH expression.
// Each normalized token is individually quoted so user punctuation cannot be
// parsed as FTS5 syntax; adjacent quoted terms are an implicit AND.
func matchExpression(query string) string {
	tokens := strings.Fields(textnorm.Normalize(query))
	if len(tokens) == 0 {
		return ""
	}
	quoted := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		quoted = append(quoted, `"`+strings.ReplaceAll(tok, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}

func (s *sqlxStore) Search(ctx context.Context, query string, limit int) ([]Evidence, error) {
	expr := matchExpression(query)
	if expr == "" {
		return nil, nil
	}

	var items []Evidence
	q := `
        SELECT p.text, p.ts, p.link
        FROM posts_fts f JOIN posts p ON p.id = f.rowid
        WHERE posts_fts MATCH ?
        ORDER BY bm25(posts_fts) ASC, p.ts DESC
        LIMIT ?;
    `

	err := s.db.SelectContext(ctx, &items, q, expr, limit)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		// A MATCH the tokenizer rejects means no lexical overlap is
		// possible; callers treat that the same as zero hits.
		if strings.Contains(err.Error(), "fts5") {
			s.logger.WarnContext(ctx, "Full-text query rejected, treating as no hits", "query", query, "error", err)
			return nil, nil
		}
		s.logger.ErrorContext(ctx, "Error searching posts", "query", query, "error", err)
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}

	s.stampDates(items)
	return items, nil
}

func (s *sqlxStore) ScanWindow(ctx context.Context, start, end time.Time, limit int) ([]Evidence, error) {
	var items []Evidence
	q := `
        SELECT text, ts, link
        FROM posts
        WHERE ts BETWEEN ? AND ?
        ORDER BY ts DESC
        LIMIT ?;
    `

	err := s.db.SelectContext(ctx, &items, q, start.Unix(), end.Unix(), limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error scanning window", "start", start, "end", end, "error", err)
		return nil, fmt.Errorf("failed to scan window: %w", err)
	}

	s.stampDates(items)
	return items, nil
}

func (s *sqlxStore) CountIndexed(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM posts_fts`); err != nil {
		return 0, fmt.Errorf("failed to count index entries: %w", err)
	}
	return count, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}

func (s *sqlxStore) stampDates(items []Evidence) {
	for i := range items {
		items[i].DateStr = stampDate(items[i].TS, s.loc)
	}
}

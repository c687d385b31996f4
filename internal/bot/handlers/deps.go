package handlers

import (
	"log/slog"

	"github.com/tzachyh/telescan/internal/config"
	"github.com/tzachyh/telescan/internal/ingest"
	"github.com/tzachyh/telescan/internal/retrieve"
	"github.com/tzachyh/telescan/internal/summarize"
	"github.com/tzachyh/telescan/internal/timewindow"
)

// HandlerDeps provides dependencies for Telegram command handlers. Window
// is resolved once at startup; every command operates on the same bounds
// for the process lifetime.
type HandlerDeps struct {
	Logger     *slog.Logger
	Config     *config.Config
	Ingestor   *ingest.Ingestor
	Retriever  *retrieve.Retriever
	Summarizer *summarize.Summarizer
	Window     timewindow.Window
}

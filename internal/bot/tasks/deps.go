// Package tasks implements scheduled tasks for the telescan bot: periodic
// channel scans and database maintenance.
package tasks

import (
	"log/slog"

	"github.com/tzachyh/telescan/internal/database"
	"github.com/tzachyh/telescan/internal/ingest"
	"github.com/tzachyh/telescan/internal/timewindow"
)

// TaskDeps contains all dependencies required by scheduled tasks. Window is
// the startup-resolved window shared with the command handlers.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    database.Store
	Ingestor *ingest.Ingestor
	Window   timewindow.Window
}

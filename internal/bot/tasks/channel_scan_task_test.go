package tasks_test

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/tzachyh/telescan/internal/bot/tasks"
	"github.com/tzachyh/telescan/internal/database"
	"github.com/tzachyh/telescan/internal/ingest"
	"github.com/tzachyh/telescan/internal/source"
	"github.com/tzachyh/telescan/internal/timewindow"
)

type fakeSource struct {
	msgs []source.Message
}

func (f *fakeSource) Resolve(context.Context, string) (int64, error) { return 0, nil }

func (f *fakeSource) Messages(_ context.Context, fn func(source.Message) error) error {
	for _, m := range f.msgs {
		if err := fn(m); err != nil {
			return err
		}
	}
	return nil
}

type fakeStore struct {
	byKey map[string]database.Post
}

func newFakeStore() *fakeStore {
	return &fakeStore{byKey: make(map[string]database.Post)}
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) InsertPost(_ context.Context, p *database.Post) (bool, error) {
	key := p.Source + "/" + strconv.FormatInt(p.MID, 10)
	if _, ok := f.byKey[key]; ok {
		return false, nil
	}
	f.byKey[key] = *p
	return true, nil
}

func (f *fakeStore) Search(context.Context, string, int) ([]database.Evidence, error) {
	return nil, nil
}

func (f *fakeStore) ScanWindow(context.Context, time.Time, time.Time, int) ([]database.Evidence, error) {
	return nil, nil
}

func (f *fakeStore) CountIndexed(context.Context) (int64, error) {
	return int64(len(f.byKey)), nil
}

func (f *fakeStore) RunSQLMaintenance(context.Context) error { return nil }

// The scan task must operate on the window it was constructed with, not on
// bounds recomputed at run time. A message dated inside the fixed window is
// stored even though it is far outside any lookback anchored to the current
// clock, a message dated now is skipped, and repeated runs share the bounds.
func TestChannelScanTaskUsesInjectedWindow(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	window := timewindow.Window{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, loc),
		End:   time.Date(2025, 1, 7, 23, 59, 59, 0, loc),
		Loc:   loc,
	}

	src := &fakeSource{msgs: []source.Message{
		{ID: 1, Date: time.Date(2025, 1, 3, 12, 0, 0, 0, loc), Text: "בתוך החלון"},
		{ID: 2, Date: time.Now(), Text: "מחוץ לחלון"},
	}}
	store := newFakeStore()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps := tasks.TaskDeps{
		Logger:   log,
		Store:    store,
		Ingestor: ingest.New(src, store, "@somechannel", "", "", nil),
		Window:   window,
	}

	registry := tasks.RegisterAllTasks(deps)
	scan, ok := registry["channel_scan"]
	if !ok {
		t.Fatal("channel_scan task not registered")
	}

	for i := 0; i < 2; i++ {
		if err := scan(context.Background()); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}

	if len(store.byKey) != 1 {
		t.Fatalf("stored %d posts, want exactly the one dated inside the fixed window", len(store.byKey))
	}
	if _, ok := store.byKey["@somechannel/1"]; !ok {
		t.Error("post inside the fixed window was not stored")
	}
}

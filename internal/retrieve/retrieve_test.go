package retrieve_test

import (
	"context"
	"testing"
	"time"

	"github.com/tzachyh/telescan/internal/database"
	"github.com/tzachyh/telescan/internal/retrieve"
	"github.com/tzachyh/telescan/internal/timewindow"
)

type fakeStore struct {
	searchHits  []database.Evidence
	windowItems []database.Evidence

	searchLimit int
	scanLimit   int
	scanStart   time.Time
	scanEnd     time.Time
	scanned     bool
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) InsertPost(context.Context, *database.Post) (bool, error) {
	return false, nil
}

func (f *fakeStore) Search(_ context.Context, _ string, limit int) ([]database.Evidence, error) {
	f.searchLimit = limit
	return f.searchHits, nil
}

func (f *fakeStore) ScanWindow(_ context.Context, start, end time.Time, limit int) ([]database.Evidence, error) {
	f.scanned = true
	f.scanStart, f.scanEnd, f.scanLimit = start, end, limit
	return f.windowItems, nil
}

func (f *fakeStore) CountIndexed(context.Context) (int64, error) { return 0, nil }

func (f *fakeStore) RunSQLMaintenance(context.Context) error { return nil }

func testWindow() timewindow.Window {
	loc := time.UTC
	return timewindow.Window{
		Start: time.Date(2025, 9, 10, 0, 0, 0, 0, loc),
		End:   time.Date(2025, 9, 30, 0, 0, 0, 0, loc),
		Loc:   loc,
	}
}

func TestRetrievePrimaryPath(t *testing.T) {
	t.Parallel()

	store := &fakeStore{searchHits: []database.Evidence{{Text: "hit"}}}
	r := retrieve.New(store, nil)

	got, err := r.Retrieve(context.Background(), "query", testWindow())
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 1 || got[0].Text != "hit" {
		t.Errorf("got %+v, want the search hit", got)
	}
	if store.scanned {
		t.Error("window scan ran despite search hits")
	}
	if store.searchLimit != retrieve.PrimaryLimit {
		t.Errorf("search limit = %d, want %d", store.searchLimit, retrieve.PrimaryLimit)
	}
}

func TestRetrieveFallbackPath(t *testing.T) {
	t.Parallel()

	w := testWindow()
	store := &fakeStore{windowItems: []database.Evidence{{Text: "newer"}, {Text: "older"}}}
	r := retrieve.New(store, nil)

	got, err := r.Retrieve(context.Background(), "no lexical overlap", w)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 2 || got[0].Text != "newer" {
		t.Errorf("got %+v, want window items in store order", got)
	}
	if !store.scanned {
		t.Fatal("fallback scan did not run")
	}
	if !store.scanStart.Equal(w.Start) || !store.scanEnd.Equal(w.End) {
		t.Errorf("scan bounds = [%v, %v], want window bounds", store.scanStart, store.scanEnd)
	}
	if store.scanLimit != retrieve.FallbackLimit {
		t.Errorf("scan limit = %d, want %d", store.scanLimit, retrieve.FallbackLimit)
	}
}

func TestRetrieveBothPathsEmpty(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	r := retrieve.New(store, nil)

	got, err := r.Retrieve(context.Background(), "anything", testWindow())
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %+v, want no evidence", got)
	}
}

package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tzachyh/telescan/internal/database"
	"github.com/tzachyh/telescan/internal/ingest"
	"github.com/tzachyh/telescan/internal/source"
	"github.com/tzachyh/telescan/internal/timewindow"
)

type fakeSource struct {
	messages   []source.Message
	handles    map[string]int64
	resolveErr error
}

func (f *fakeSource) Resolve(_ context.Context, handle string) (int64, error) {
	if f.resolveErr != nil {
		return 0, f.resolveErr
	}
	id, ok := f.handles[handle]
	if !ok {
		return 0, fmt.Errorf("unknown handle %q", handle)
	}
	return id, nil
}

func (f *fakeSource) Messages(_ context.Context, fn func(source.Message) error) error {
	for _, m := range f.messages {
		if err := fn(m); err != nil {
			return err
		}
	}
	return nil
}

// fakeStore keeps first-seen posts keyed by (source, mid) and can fail
// individual inserts.
type fakeStore struct {
	posts   map[string]*database.Post
	order   []string
	failMID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{posts: make(map[string]*database.Post)}
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) InsertPost(_ context.Context, post *database.Post) (bool, error) {
	if f.failMID != 0 && post.MID == f.failMID {
		return false, errors.New("storage unavailable")
	}
	key := fmt.Sprintf("%s/%d", post.Source, post.MID)
	if _, ok := f.posts[key]; ok {
		return false, nil
	}
	cp := *post
	f.posts[key] = &cp
	f.order = append(f.order, key)
	return true, nil
}

func (f *fakeStore) Search(context.Context, string, int) ([]database.Evidence, error) {
	return nil, nil
}

func (f *fakeStore) ScanWindow(context.Context, time.Time, time.Time, int) ([]database.Evidence, error) {
	return nil, nil
}

func (f *fakeStore) CountIndexed(context.Context) (int64, error) {
	return int64(len(f.posts)), nil
}

func (f *fakeStore) RunSQLMaintenance(context.Context) error { return nil }

func testWindow(t *testing.T) timewindow.Window {
	t.Helper()

	loc, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		t.Fatalf("loading reference zone: %v", err)
	}
	return timewindow.Window{
		Start: time.Date(2025, 9, 10, 0, 0, 0, 0, loc),
		End:   time.Date(2025, 9, 30, 23, 59, 59, 0, loc),
		Loc:   loc,
	}
}

func msgAt(id int64, t time.Time, text string) source.Message {
	return source.Message{ID: id, Date: t, Text: text}
}

func TestIngestFilters(t *testing.T) {
	t.Parallel()

	w := testWindow(t)
	src := &fakeSource{messages: []source.Message{
		msgAt(1, w.Start.Add(-time.Second), "before window"),
		msgAt(2, w.Start, "exactly at start"),
		msgAt(3, w.Start.Add(24*time.Hour), "  \t ‏ "), // normalizes to empty
		msgAt(4, w.End, "exactly at end"),
		msgAt(5, w.End.Add(time.Second), "after window"),
	}}
	store := newFakeStore()

	ing := ingest.New(src, store, "@somechannel", "", "", nil)
	added, total, err := ing.Ingest(context.Background(), w)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if added != 2 || total != 2 {
		t.Errorf("added=%d total=%d, want 2/2", added, total)
	}
	if _, ok := store.posts["@somechannel/2"]; !ok {
		t.Error("start-bound message missing")
	}
	if _, ok := store.posts["@somechannel/4"]; !ok {
		t.Error("end-bound message missing")
	}
}

func TestIngestIdentityFilter(t *testing.T) {
	t.Parallel()

	w := testWindow(t)
	inside := w.Start.Add(time.Hour)
	src := &fakeSource{
		handles: map[string]int64{"@author": 777},
		messages: []source.Message{
			{ID: 1, SenderID: 777, Date: inside, Text: "by author"},
			{ID: 2, SenderID: 888, Date: inside, Text: "by someone else"},
			{ID: 3, Date: inside, Text: "no sender"},
		},
	}
	store := newFakeStore()

	ing := ingest.New(src, store, "@somechannel", "@author", "", nil)
	added, _, err := ing.Ingest(context.Background(), w)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}
	got := store.posts["@somechannel/1"]
	if got == nil {
		t.Fatal("author message missing")
	}
	if got.Author != "@author" {
		t.Errorf("stored author = %q, want handle", got.Author)
	}
}

func TestIngestSignatureFilter(t *testing.T) {
	t.Parallel()

	w := testWindow(t)
	inside := w.Start.Add(time.Hour)
	src := &fakeSource{messages: []source.Message{
		{ID: 1, Signature: "שָׁלוֹם", Date: inside, Text: "signed with niqqud"},
		{ID: 2, Signature: "someone else", Date: inside, Text: "wrong signature"},
		{ID: 3, Date: inside, Text: "unsigned"},
	}}
	store := newFakeStore()

	ing := ingest.New(src, store, "@somechannel", "", "שלום", nil)
	added, _, err := ing.Ingest(context.Background(), w)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}
	if _, ok := store.posts["@somechannel/1"]; !ok {
		t.Error("normalized-signature match missing")
	}
}

func TestIngestIdempotent(t *testing.T) {
	t.Parallel()

	w := testWindow(t)
	src := &fakeSource{messages: []source.Message{
		msgAt(1, w.Start.Add(time.Hour), "one"),
		msgAt(2, w.Start.Add(2*time.Hour), "two"),
	}}
	store := newFakeStore()
	ing := ingest.New(src, store, "@somechannel", "", "", nil)
	ctx := context.Background()

	added, total, err := ing.Ingest(ctx, w)
	if err != nil || added != 2 || total != 2 {
		t.Fatalf("first pass: added=%d total=%d err=%v", added, total, err)
	}

	added, total, err = ing.Ingest(ctx, w)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if added != 0 {
		t.Errorf("second pass added = %d, want 0", added)
	}
	if total != 2 {
		t.Errorf("second pass total = %d, want 2", total)
	}
}

func TestIngestSurvivesPerMessageFailure(t *testing.T) {
	t.Parallel()

	w := testWindow(t)
	src := &fakeSource{messages: []source.Message{
		msgAt(1, w.Start.Add(time.Hour), "one"),
		msgAt(2, w.Start.Add(2*time.Hour), "two"),
		msgAt(3, w.Start.Add(3*time.Hour), "three"),
	}}
	store := newFakeStore()
	store.failMID = 2

	ing := ingest.New(src, store, "@somechannel", "", "", nil)
	added, total, err := ing.Ingest(context.Background(), w)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if added != 2 || total != 2 {
		t.Errorf("added=%d total=%d, want 2/2 despite the failed write", added, total)
	}
}

func TestIngestResolveFailurePropagates(t *testing.T) {
	t.Parallel()

	w := testWindow(t)
	src := &fakeSource{resolveErr: errors.New("network down")}
	ing := ingest.New(src, newFakeStore(), "@somechannel", "@author", "", nil)

	if _, _, err := ing.Ingest(context.Background(), w); err == nil {
		t.Fatal("expected resolve failure to propagate")
	}
}

package app

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/calderonm/spinqueue/internal/domain"
	"github.com/calderonm/spinqueue/internal/logger"
	"github.com/calderonm/spinqueue/internal/store"
)

// recordingHub captures published events for assertions.
type recordingHub struct {
	mu     sync.Mutex
	events []domain.Event
}

func (h *recordingHub) Publish(ev domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
}

func (h *recordingHub) all() []domain.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.Event(nil), h.events...)
}

func setupService(t *testing.T) (*RequestService, *recordingHub) {
	t.Helper()
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hub := &recordingHub{}
	return NewRequestService(db, hub, logger.Default()), hub
}

func TestSubmit_Validation(t *testing.T) {
	svc, hub := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		song   string
		artist string
	}{
		{"missing song", "", "Daft Punk"},
		{"missing artist", "One More Time", ""},
		{"both missing", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tt.song, tt.artist)
			if !domain.IsValidation(err) {
				t.Errorf("Expected ValidationError, got %v", err)
			}
		})
	}

	// No row was written and nothing was broadcast.
	rows, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected no rows after rejected submissions, got %d", len(rows))
	}
	if evs := hub.all(); len(evs) != 0 {
		t.Errorf("Expected no broadcasts after rejected submissions, got %+v", evs)
	}
}

func TestSubmit_DeduplicatesByNormalizedKey(t *testing.T) {
	svc, hub := setupService(t)
	ctx := context.Background()

	variants := []struct{ song, artist string }{
		{"Shape of You (feat. Ed Sheeran)!!", "Ed Sheeran"},
		{"shape of you ft Ed Sheeran", "ED SHEERAN"},
		{"Shape Of You  ed sheeran", "ed   sheeran!"},
	}

	for i, v := range variants {
		ev, err := svc.Submit(ctx, v.song, v.artist)
		if err != nil {
			t.Fatalf("Submit %d failed: %v", i, err)
		}
		wantAction := domain.ActionUpdate
		if i == 0 {
			wantAction = domain.ActionInsert
		}
		if ev.Action != wantAction {
			t.Errorf("Submit %d: expected action %s, got %s", i, wantAction, ev.Action)
		}
		if ev.Data.VoteCount != i+1 {
			t.Errorf("Submit %d: expected vote_count %d, got %d", i, i+1, ev.Data.VoteCount)
		}
	}

	rows, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected one deduplicated row, got %d", len(rows))
	}
	if rows[0].VoteCount != len(variants) {
		t.Errorf("Expected vote_count %d, got %d", len(variants), rows[0].VoteCount)
	}
	// First submission's display strings win.
	if rows[0].SongName != variants[0].song {
		t.Errorf("Expected display string %q, got %q", variants[0].song, rows[0].SongName)
	}

	// Exactly one broadcast per successful submission, all from the API path.
	evs := hub.all()
	if len(evs) != len(variants) {
		t.Fatalf("Expected %d broadcasts, got %d", len(variants), len(evs))
	}
	for i, ev := range evs {
		if ev.Source != domain.SourceAPI {
			t.Errorf("Broadcast %d: expected api source, got %q", i, ev.Source)
		}
	}
}

func TestSubmit_DistinctPairsAreIndependent(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, "Song One", "Artist A"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := svc.Submit(ctx, "Song One", "Artist B"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	rows, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 independent rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.VoteCount != 1 {
			t.Errorf("Expected vote_count 1 for %q, got %d", r.SongName, r.VoteCount)
		}
	}
}

func TestCleanup(t *testing.T) {
	svc, hub := setupService(t)
	ctx := context.Background()

	for _, song := range []string{"one", "two", "three"} {
		if _, err := svc.Submit(ctx, song, "artist"); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	n, err := svc.Cleanup(ctx)
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 rows removed, got %d", n)
	}

	rows, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected empty queue after cleanup, got %d rows", len(rows))
	}

	evs := hub.all()
	last := evs[len(evs)-1]
	if last.Action != domain.ActionCleanup {
		t.Errorf("Expected final broadcast to be cleanup, got %s", last.Action)
	}
	if last.Data != nil {
		t.Error("Expected cleanup event to carry no row payload")
	}
	if last.DeletedCount != 3 {
		t.Errorf("Expected deletedCount 3, got %d", last.DeletedCount)
	}
}

package store

import (
	"context"
	"testing"
	"time"

	"github.com/calderonm/spinqueue/internal/domain"
	"github.com/calderonm/spinqueue/internal/logger"
)

func drainEvents(f *PollFeed) []domain.Event {
	var evs []domain.Event
	for {
		select {
		case ev := <-f.events:
			evs = append(evs, ev)
		default:
			return evs
		}
	}
}

func TestPollFeed_Fingerprint(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := NewPollFeed(db, time.Second, logger.Default())

	count, votes, err := f.fingerprint()
	if err != nil {
		t.Fatalf("fingerprint failed: %v", err)
	}
	if count != 0 || votes != 0 {
		t.Errorf("Expected empty fingerprint, got count=%d votes=%d", count, votes)
	}

	req, _, err := db.Upsert(ctx, "song", "artist", "song", "artist")
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	count, votes, _ = f.fingerprint()
	if count != 1 || votes != 1 {
		t.Errorf("Expected count=1 votes=1, got count=%d votes=%d", count, votes)
	}

	// A vote moves the sum but not the count.
	if _, err := db.IncrementVote(ctx, req.ID); err != nil {
		t.Fatalf("IncrementVote failed: %v", err)
	}
	count, votes, _ = f.fingerprint()
	if count != 1 || votes != 2 {
		t.Errorf("Expected count=1 votes=2, got count=%d votes=%d", count, votes)
	}
}

func TestPollFeed_EmitDiff(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := NewPollFeed(db, time.Second, logger.Default())

	// Insert shows up as an insert event.
	req, _, err := db.Upsert(ctx, "song", "artist", "song", "artist")
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	f.emitDiff()
	evs := drainEvents(f)
	if len(evs) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(evs))
	}
	if evs[0].Action != domain.ActionInsert {
		t.Errorf("Expected insert, got %s", evs[0].Action)
	}
	if evs[0].Source != domain.SourceFeed {
		t.Errorf("Expected feed source, got %q", evs[0].Source)
	}
	if evs[0].Data == nil || evs[0].Data.ID != req.ID {
		t.Errorf("Expected row %s in event payload", req.ID)
	}

	// Vote bump shows up as an update event.
	if _, err := db.IncrementVote(ctx, req.ID); err != nil {
		t.Fatalf("IncrementVote failed: %v", err)
	}
	f.emitDiff()
	evs = drainEvents(f)
	if len(evs) != 1 || evs[0].Action != domain.ActionUpdate {
		t.Fatalf("Expected 1 update event, got %+v", evs)
	}
	if evs[0].Data.VoteCount != 2 {
		t.Errorf("Expected vote_count 2 in update payload, got %d", evs[0].Data.VoteCount)
	}

	// Cleanup shows up as per-row delete events.
	if _, err := db.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}
	f.emitDiff()
	evs = drainEvents(f)
	if len(evs) != 1 || evs[0].Action != domain.ActionDelete {
		t.Fatalf("Expected 1 delete event, got %+v", evs)
	}
	if evs[0].Data.ID != req.ID {
		t.Errorf("Expected deleted row id %s, got %s", req.ID, evs[0].Data.ID)
	}

	// No change, no events.
	f.emitDiff()
	if evs := drainEvents(f); len(evs) != 0 {
		t.Errorf("Expected no events without changes, got %+v", evs)
	}
}

func TestPollFeed_StartStop(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	f := NewPollFeed(db, 10*time.Millisecond, logger.Default())
	f.Start()

	if _, _, err := db.Upsert(ctx, "live song", "artist", "live song", "artist"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	select {
	case ev := <-f.Events():
		if ev.Action != domain.ActionInsert {
			t.Errorf("Expected insert from live poller, got %s", ev.Action)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for poller event")
	}

	f.Stop()
	// Channel is closed after Stop.
	if _, ok := <-f.Events(); ok {
		t.Error("Expected events channel closed after Stop")
	}
}

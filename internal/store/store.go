// Package store implements the request ledger on top of a relational
// database, plus the change-feed that mirrors row-level changes back into
// the broadcast path. Two backends are supported: an embedded SQLite file
// and an external Postgres.
package store

import (
	"context"
	"fmt"

	"github.com/calderonm/spinqueue/internal/config"
	"github.com/calderonm/spinqueue/internal/constants"
	"github.com/calderonm/spinqueue/internal/domain"
	"github.com/calderonm/spinqueue/internal/logger"
)

// Ledger is the persistence contract the submission coordinator works
// against. Every operation is a single logical unit of work; failures are
// reported as *domain.StoreError and are not retried.
type Ledger interface {
	// FindByNormalizedKey returns the row for the normalized pair, or nil
	// when no such row exists.
	FindByNormalizedKey(ctx context.Context, normSong, normArtist string) (*domain.SongRequest, error)

	// Insert creates a new row with vote_count = 1. ID and CreatedAt are
	// assigned by the ledger.
	Insert(ctx context.Context, req *domain.SongRequest) (*domain.SongRequest, error)

	// IncrementVote bumps vote_count by one using store-side arithmetic
	// keyed by id, so concurrent increments cannot lose votes.
	IncrementVote(ctx context.Context, id string) (*domain.SongRequest, error)

	// Upsert inserts the pair with vote_count = 1 or, when the normalized
	// pair already exists, increments its vote_count. The unique index on
	// (normalized_song, normalized_artist) makes this race-free; display
	// strings and created_at are never overwritten on the increment path.
	// created reports whether a new row was made.
	Upsert(ctx context.Context, songName, artistName, normSong, normArtist string) (req *domain.SongRequest, created bool, err error)

	// ListAll returns every row ordered by vote_count descending, then
	// created_at ascending.
	ListAll(ctx context.Context) ([]*domain.SongRequest, error)

	// ClearAll removes every row and returns how many were removed.
	ClearAll(ctx context.Context) (int, error)

	Close() error
}

// Feed is a stream of row-level change notifications, independent of the
// coordinator's own broadcasts. Events carry Source "feed".
type Feed interface {
	Events() <-chan domain.Event
	Start()
	Stop()
}

// Open builds the ledger and its change-feed for the configured driver.
func Open(cfg *config.Config, log *logger.Logger) (Ledger, Feed, error) {
	switch cfg.DBDriver {
	case constants.DriverSQLite:
		db, err := NewSQLiteDB(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return db, NewPollFeed(db, constants.DefaultFeedInterval, log), nil
	case constants.DriverPostgres:
		db, err := NewPostgresDB(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return db, NewListenFeed(cfg.DatabaseURL, log), nil
	default:
		return nil, nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

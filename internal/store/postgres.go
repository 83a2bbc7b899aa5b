package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/calderonm/spinqueue/internal/domain"
)

// PostgresDB is the ledger backed by an external Postgres. Besides the
// table itself the schema installs a trigger that NOTIFYs every row change
// on the channel consumed by ListenFeed.
type PostgresDB struct {
	*sqlx.DB
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS song_requests (
	id TEXT PRIMARY KEY,
	song_name TEXT NOT NULL,
	artist_name TEXT NOT NULL,
	normalized_song TEXT NOT NULL,
	normalized_artist TEXT NOT NULL,
	vote_count INTEGER NOT NULL DEFAULT 1 CHECK (vote_count >= 1),
	created_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_song_requests_normalized
	ON song_requests(normalized_song, normalized_artist);

CREATE INDEX IF NOT EXISTS idx_song_requests_order
	ON song_requests(vote_count DESC, created_at ASC);

CREATE OR REPLACE FUNCTION song_requests_notify() RETURNS trigger AS $$
DECLARE
	payload json;
BEGIN
	IF TG_OP = 'DELETE' THEN
		payload = json_build_object('action', TG_OP, 'row', row_to_json(OLD));
	ELSE
		payload = json_build_object('action', TG_OP, 'row', row_to_json(NEW));
	END IF;
	PERFORM pg_notify('song_requests_changes', payload::text);
	RETURN NULL;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_song_requests_notify ON song_requests;
CREATE TRIGGER trg_song_requests_notify
	AFTER INSERT OR UPDATE OR DELETE ON song_requests
	FOR EACH ROW EXECUTE FUNCTION song_requests_notify();
`

func NewPostgresDB(databaseURL string) (*PostgresDB, error) {
	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}
	if _, err := db.Exec(pgSchema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &PostgresDB{db}, nil
}

func (db *PostgresDB) Close() error {
	return db.DB.Close()
}

func (db *PostgresDB) FindByNormalizedKey(ctx context.Context, normSong, normArtist string) (*domain.SongRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM song_requests
		WHERE normalized_song = $1 AND normalized_artist = $2 LIMIT 1`

	req := &domain.SongRequest{}
	err := db.GetContext(ctx, req, query, normSong, normArtist)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.StoreError{Op: "find", Err: err}
	}
	return req, nil
}

func (db *PostgresDB) Insert(ctx context.Context, req *domain.SongRequest) (*domain.SongRequest, error) {
	req.ID = uuid.New().String()
	req.VoteCount = 1
	req.CreatedAt = time.Now().UTC()

	query := `INSERT INTO song_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := db.ExecContext(ctx, query,
		req.ID, req.SongName, req.ArtistName, req.NormalizedSong, req.NormalizedArtist, req.VoteCount, req.CreatedAt)
	if err != nil {
		return nil, &domain.StoreError{Op: "insert", Err: err}
	}
	return req, nil
}

func (db *PostgresDB) IncrementVote(ctx context.Context, id string) (*domain.SongRequest, error) {
	query := `UPDATE song_requests SET vote_count = vote_count + 1 WHERE id = $1
		RETURNING ` + requestColumns

	req := &domain.SongRequest{}
	if err := db.GetContext(ctx, req, query, id); err != nil {
		return nil, &domain.StoreError{Op: "increment", Err: err}
	}
	return req, nil
}

func (db *PostgresDB) Upsert(ctx context.Context, songName, artistName, normSong, normArtist string) (*domain.SongRequest, bool, error) {
	query := `INSERT INTO song_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, 1, $6)
		ON CONFLICT (normalized_song, normalized_artist)
		DO UPDATE SET vote_count = song_requests.vote_count + 1
		RETURNING ` + requestColumns

	req := &domain.SongRequest{}
	err := db.GetContext(ctx, req, query,
		uuid.New().String(), songName, artistName, normSong, normArtist, time.Now().UTC())
	if err != nil {
		return nil, false, &domain.StoreError{Op: "upsert", Err: err}
	}
	return req, req.VoteCount == 1, nil
}

func (db *PostgresDB) ListAll(ctx context.Context) ([]*domain.SongRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM song_requests
		ORDER BY vote_count DESC, created_at ASC`

	var reqs []*domain.SongRequest
	if err := db.SelectContext(ctx, &reqs, query); err != nil {
		return nil, &domain.StoreError{Op: "list", Err: err}
	}
	return reqs, nil
}

func (db *PostgresDB) ClearAll(ctx context.Context) (int, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM song_requests`)
	if err != nil {
		return 0, &domain.StoreError{Op: "clear", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &domain.StoreError{Op: "clear", Err: err}
	}
	return int(n), nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/calderonm/spinqueue/internal/domain"
)

const requestColumns = `id, song_name, artist_name, normalized_song, normalized_artist, vote_count, created_at`

func (db *DB) FindByNormalizedKey(ctx context.Context, normSong, normArtist string) (*domain.SongRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM song_requests
		WHERE normalized_song = ? AND normalized_artist = ? LIMIT 1`

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

func (db *DB) Insert(ctx context.Context, req *domain.SongRequest) (*domain.SongRequest, error) {
	req.ID = uuid.New().String()
	req.VoteCount = 1
	req.CreatedAt = time.Now().UTC()

	query := `INSERT INTO song_requests (` + requestColumns + `)
		VALUES (:id, :song_name, :artist_name, :normalized_song, :normalized_artist, :vote_count, :created_at)`

	if _, err := db.NamedExecContext(ctx, query, req); err != nil {
		return nil, &domain.StoreError{Op: "insert", Err: err}
	}
	return req, nil
}

func (db *DB) IncrementVote(ctx context.Context, id string) (*domain.SongRequest, error) {
	query := `UPDATE song_requests SET vote_count = vote_count + 1 WHERE id = ?
		RETURNING ` + requestColumns

	req := &domain.SongRequest{}
	err := db.GetContext(ctx, req, query, id)
	if err != nil {
		return nil, &domain.StoreError{Op: "increment", Err: err}
	}
	return req, nil
}

func (db *DB) Upsert(ctx context.Context, songName, artistName, normSong, normArtist string) (*domain.SongRequest, bool, error) {
	query := `INSERT INTO song_requests (` + requestColumns + `)
		VALUES (?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT(normalized_song, normalized_artist)
		DO UPDATE SET vote_count = vote_count + 1
		RETURNING ` + requestColumns

	req := &domain.SongRequest{}
	err := db.GetContext(ctx, req, query,
		uuid.New().String(), songName, artistName, normSong, normArtist, time.Now().UTC())
	if err != nil {
		return nil, false, &domain.StoreError{Op: "upsert", Err: err}
	}
	// The increment path always leaves vote_count >= 2.
	return req, req.VoteCount == 1, nil
}

func (db *DB) ListAll(ctx context.Context) ([]*domain.SongRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM song_requests
		ORDER BY vote_count DESC, created_at ASC`

	var reqs []*domain.SongRequest
	if err := db.SelectContext(ctx, &reqs, query); err != nil {
		return nil, &domain.StoreError{Op: "list", Err: err}
	}
	return reqs, nil
}

func (db *DB) ClearAll(ctx context.Context) (int, error) {
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

package domain

import "time"

// SongRequest is one queue entry. There is at most one row per
// (normalized_song, normalized_artist) pair; repeat submissions bump
// VoteCount instead of creating new rows.
type SongRequest struct {
	ID               string    `json:"id" db:"id"`
	SongName         string    `json:"song_name" db:"song_name"`
	ArtistName       string    `json:"artist_name" db:"artist_name"`
	NormalizedSong   string    `json:"normalized_song" db:"normalized_song"`
	NormalizedArtist string    `json:"normalized_artist" db:"normalized_artist"`
	VoteCount        int       `json:"vote_count" db:"vote_count"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// Action identifies what happened to the queue.
type Action string

const (
	ActionInsert  Action = "insert"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionCleanup Action = "cleanup"
)

// Event sources. The same logical change can arrive on both channels, so
// dashboard clients de-duplicate by (row id, action), not by arrival count.
const (
	SourceAPI  = "api"
	SourceFeed = "feed"
)

// Event is one state-change notification fanned out to dashboard sessions.
// Data is nil for cleanup events; DeletedCount is set only for cleanup.
type Event struct {
	Action       Action       `json:"action"`
	Data         *SongRequest `json:"data,omitempty"`
	Source       string       `json:"source,omitempty"`
	DeletedCount int          `json:"deletedCount,omitempty"`
}

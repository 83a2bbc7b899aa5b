package store

const Schema = `
CREATE TABLE IF NOT EXISTS song_requests (
	id TEXT PRIMARY KEY,
	song_name TEXT NOT NULL,
	artist_name TEXT NOT NULL,
	normalized_song TEXT NOT NULL,
	normalized_artist TEXT NOT NULL,
	vote_count INTEGER NOT NULL DEFAULT 1 CHECK (vote_count >= 1),
	created_at DATETIME NOT NULL
);

-- One row per distinct normalized pair; the insert-or-increment upsert
-- relies on this index for conflict detection.
CREATE UNIQUE INDEX IF NOT EXISTS idx_song_requests_normalized
	ON song_requests(normalized_song, normalized_artist);

CREATE INDEX IF NOT EXISTS idx_song_requests_order
	ON song_requests(vote_count DESC, created_at ASC);
`

// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort         = "4000"
	DefaultDBDriver     = "sqlite"
	DefaultDBPath       = "spinqueue.db"
	DefaultHTTPTimeout  = 10 * time.Second
	DefaultRetryCount   = 3
	DefaultRetryBase    = 1 * time.Second
	DefaultFeedInterval = 1 * time.Second
	ShutdownTimeout     = 5 * time.Second
)

// Supported ledger drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Broadcast tuning
const (
	// SessionBuffer is the per-dashboard-session event queue depth. A
	// session that falls this far behind starts losing events rather
	// than blocking the publisher.
	SessionBuffer = 32

	WriteWait  = 10 * time.Second
	PongWait   = 60 * time.Second
	PingPeriod = 50 * time.Second
)

// Postgres change-feed channel name, must match the schema trigger.
const FeedChannel = "song_requests_changes"

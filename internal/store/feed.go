package store

import (
	"context"
	"sync"
	"time"

	"github.com/calderonm/spinqueue/internal/constants"
	"github.com/calderonm/spinqueue/internal/domain"
	"github.com/calderonm/spinqueue/internal/logger"
)

// PollFeed derives a change-feed from a SQLite ledger by polling a cheap
// table fingerprint and diffing row snapshots when it moves. SQLite has no
// server-side notification channel, so this stands in for the Postgres
// LISTEN/NOTIFY feed with the same event contract.
type PollFeed struct {
	db       *DB
	interval time.Duration
	events   chan domain.Event
	logger   *logger.Logger

	prev      map[string]*domain.SongRequest
	lastCount int
	lastVotes int

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewPollFeed(db *DB, interval time.Duration, log *logger.Logger) *PollFeed {
	ctx, cancel := context.WithCancel(context.Background())
	return &PollFeed{
		db:       db,
		interval: interval,
		events:   make(chan domain.Event, constants.SessionBuffer),
		logger:   log.WithComponent("pollfeed"),
		prev:     make(map[string]*domain.SongRequest),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (f *PollFeed) Events() <-chan domain.Event {
	return f.events
}

func (f *PollFeed) Start() {
	// Prime the snapshot synchronously so a restart does not replay the
	// whole table as inserts.
	f.lastCount, f.lastVotes, _ = f.fingerprint()
	if rows, err := f.db.ListAll(f.ctx); err == nil {
		f.prev = indexByID(rows)
	}

	f.wg.Add(1)
	go f.run()
}

func (f *PollFeed) Stop() {
	f.cancel()
	f.wg.Wait()
	close(f.events)
}

func (f *PollFeed) run() {
	defer f.wg.Done()
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-f.ctx.Done():
			return
		case <-ticker.C:
			count, votes, err := f.fingerprint()
			if err != nil {
				f.logger.Error("fingerprint query failed", "error", err)
				continue
			}
			if count == f.lastCount && votes == f.lastVotes {
				continue
			}
			f.lastCount, f.lastVotes = count, votes
			f.emitDiff()
		}
	}
}

// fingerprint changes whenever a row is inserted, voted on, or deleted:
// inserts and deletes move the count, increments move the vote sum.
func (f *PollFeed) fingerprint() (count, votes int, err error) {
	row := struct {
		Count int `db:"count"`
		Votes int `db:"votes"`
	}{}
	err = f.db.GetContext(f.ctx, &row,
		`SELECT COUNT(*) AS count, COALESCE(SUM(vote_count), 0) AS votes FROM song_requests`)
	return row.Count, row.Votes, err
}

func (f *PollFeed) emitDiff() {
	rows, err := f.db.ListAll(f.ctx)
	if err != nil {
		f.logger.Error("list for diff failed", "error", err)
		return
	}
	curr := indexByID(rows)

	for id, req := range curr {
		old, ok := f.prev[id]
		switch {
		case !ok:
			f.emit(domain.Event{Action: domain.ActionInsert, Data: req, Source: domain.SourceFeed})
		case req.VoteCount != old.VoteCount:
			f.emit(domain.Event{Action: domain.ActionUpdate, Data: req, Source: domain.SourceFeed})
		}
	}
	for id, old := range f.prev {
		if _, ok := curr[id]; !ok {
			f.emit(domain.Event{Action: domain.ActionDelete, Data: old, Source: domain.SourceFeed})
		}
	}
	f.prev = curr
}

func (f *PollFeed) emit(ev domain.Event) {
	select {
	case f.events <- ev:
	case <-f.ctx.Done():
	}
}

func indexByID(rows []*domain.SongRequest) map[string]*domain.SongRequest {
	m := make(map[string]*domain.SongRequest, len(rows))
	for _, r := range rows {
		m[r.ID] = r
	}
	return m
}

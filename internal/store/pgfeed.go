package store

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/calderonm/spinqueue/internal/constants"
	"github.com/calderonm/spinqueue/internal/domain"
	"github.com/calderonm/spinqueue/internal/logger"
)

// ListenFeed republishes Postgres NOTIFY payloads from the trigger in
// pgSchema as change-feed events. Reconnects are handled by pq.Listener;
// notifications sent while disconnected are lost, which matches the
// best-effort delivery contract of the broadcast path.
type ListenFeed struct {
	listener *pq.Listener
	events   chan domain.Event
	logger   *logger.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// notifyPayload mirrors the JSON built by the song_requests_notify trigger.
type notifyPayload struct {
	Action string `json:"action"` // INSERT, UPDATE or DELETE
	Row    struct {
		ID               string `json:"id"`
		SongName         string `json:"song_name"`
		ArtistName       string `json:"artist_name"`
		NormalizedSong   string `json:"normalized_song"`
		NormalizedArtist string `json:"normalized_artist"`
		VoteCount        int    `json:"vote_count"`
		CreatedAt        string `json:"created_at"`
	} `json:"row"`
}

func NewListenFeed(databaseURL string, log *logger.Logger) *ListenFeed {
	ctx, cancel := context.WithCancel(context.Background())
	l := log.WithComponent("listenfeed")

	listener := pq.NewListener(databaseURL, time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			l.Warn("listener connection event", "event", int(ev), "error", err)
		}
	})

	return &ListenFeed{
		listener: listener,
		events:   make(chan domain.Event, constants.SessionBuffer),
		logger:   l,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (f *ListenFeed) Events() <-chan domain.Event {
	return f.events
}

func (f *ListenFeed) Start() {
	if err := f.listener.Listen(constants.FeedChannel); err != nil {
		f.logger.Error("failed to LISTEN", "channel", constants.FeedChannel, "error", err)
	}
	f.wg.Add(1)
	go f.run()
}

func (f *ListenFeed) Stop() {
	f.cancel()
	f.wg.Wait()
	if err := f.listener.Close(); err != nil {
		f.logger.Warn("listener close failed", "error", err)
	}
	close(f.events)
}

func (f *ListenFeed) run() {
	defer f.wg.Done()

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-f.ctx.Done():
			return
		case n := <-f.listener.Notify:
			// nil notification signals a reconnect
			if n == nil {
				continue
			}
			ev, ok := f.decode(n.Extra)
			if !ok {
				continue
			}
			select {
			case f.events <- ev:
			case <-f.ctx.Done():
				return
			}
		case <-ping.C:
			if err := f.listener.Ping(); err != nil {
				f.logger.Warn("listener ping failed", "error", err)
			}
		}
	}
}

func (f *ListenFeed) decode(payload string) (domain.Event, bool) {
	var p notifyPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		f.logger.Warn("undecodable notification dropped", "error", err)
		return domain.Event{}, false
	}

	var action domain.Action
	switch strings.ToUpper(p.Action) {
	case "INSERT":
		action = domain.ActionInsert
	case "UPDATE":
		action = domain.ActionUpdate
	case "DELETE":
		action = domain.ActionDelete
	default:
		f.logger.Warn("unknown notification action dropped", "action", p.Action)
		return domain.Event{}, false
	}

	req := &domain.SongRequest{
		ID:               p.Row.ID,
		SongName:         p.Row.SongName,
		ArtistName:       p.Row.ArtistName,
		NormalizedSong:   p.Row.NormalizedSong,
		NormalizedArtist: p.Row.NormalizedArtist,
		VoteCount:        p.Row.VoteCount,
	}
	if t, err := time.Parse(time.RFC3339Nano, p.Row.CreatedAt); err == nil {
		req.CreatedAt = t
	}

	return domain.Event{Action: action, Data: req, Source: domain.SourceFeed}, true
}

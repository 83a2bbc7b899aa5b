// Package app holds the submission coordinator: the normalize → upsert →
// broadcast pipeline behind the public API.
package app

import (
	"context"

	"github.com/calderonm/spinqueue/internal/domain"
	"github.com/calderonm/spinqueue/internal/logger"
	"github.com/calderonm/spinqueue/internal/normalize"
	"github.com/calderonm/spinqueue/internal/store"
)

// Publisher is the broadcast sink. Publish must not block; delivery to
// individual sessions is best-effort.
type Publisher interface {
	Publish(ev domain.Event)
}

type RequestService struct {
	Ledger store.Ledger
	Hub    Publisher
	Logger *logger.Logger
}

func NewRequestService(ledger store.Ledger, hub Publisher, log *logger.Logger) *RequestService {
	return &RequestService{
		Ledger: ledger,
		Hub:    hub,
		Logger: log.WithComponent("requests"),
	}
}

// Submit records one attendee request. A first submission of a normalized
// (song, artist) pair creates a row with one vote; a repeat submission
// bumps the existing row's vote count. The returned event mirrors what is
// broadcast to dashboards. Nothing is broadcast on failure.
func (s *RequestService) Submit(ctx context.Context, songName, artistName string) (domain.Event, error) {
	if songName == "" {
		return domain.Event{}, &domain.ValidationError{Field: "song_name", Message: "is required"}
	}
	if artistName == "" {
		return domain.Event{}, &domain.ValidationError{Field: "artist_name", Message: "is required"}
	}

	normSong, normArtist := normalize.Key(songName, artistName)

	req, created, err := s.Ledger.Upsert(ctx, songName, artistName, normSong, normArtist)
	if err != nil {
		return domain.Event{}, err
	}

	action := domain.ActionUpdate
	if created {
		action = domain.ActionInsert
	}
	ev := domain.Event{Action: action, Data: req, Source: domain.SourceAPI}

	s.Logger.WithRequest(songName, artistName).Info("request recorded",
		"action", action, "id", req.ID, "votes", req.VoteCount)
	s.Hub.Publish(ev)
	return ev, nil
}

// List returns the queue ordered by vote_count descending with earlier
// submissions winning ties.
func (s *RequestService) List(ctx context.Context) ([]*domain.SongRequest, error) {
	return s.Ledger.ListAll(ctx)
}

// Cleanup unconditionally empties the queue and broadcasts a single
// cleanup event so dashboards can distinguish a reset from row changes.
// The caller is responsible for authorization.
func (s *RequestService) Cleanup(ctx context.Context) (int, error) {
	n, err := s.Ledger.ClearAll(ctx)
	if err != nil {
		return 0, err
	}

	s.Logger.Info("queue cleared", "deleted", n)
	s.Hub.Publish(domain.Event{Action: domain.ActionCleanup, Source: domain.SourceAPI, DeletedCount: n})
	return n, nil
}

package downloads

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/debrideck/debrideck/internal/debrid"
	"github.com/debrideck/debrideck/internal/notify"
)

// Row is one display-ready list entry.
type Row struct {
	Key       string       `json:"key"`
	Kind      debrid.Kind  `json:"kind"`
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	TypeLabel string       `json:"type_label"`
	SizeLabel string       `json:"size_label"`
	Status    StatusBadge  `json:"status"`
	CreatedAt time.Time    `json:"created_at"`

	// CanRequestLink gates the link action: the UI renders it only when
	// true, it is never merely disabled.
	CanRequestLink bool `json:"can_request_link"`
}

// ListResult is the response of a list query.
type ListResult struct {
	Items   []Row  `json:"items"`
	Total   int    `json:"total"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// Service holds the aggregated download list and its loading/error
// state. The list is replaced wholesale on every refresh; a failed
// refresh keeps the previous list visible (stale-while-revalidate).
type Service struct {
	aggregator *Aggregator
	creds      CredentialSource
	hub        notify.Broadcaster
	logger     zerolog.Logger

	mu       sync.Mutex
	items    []debrid.TaggedDownload
	loaded   bool
	lastErr  error
	inflight int
	seq      uint64 // most recently issued refresh
}

// NewService creates the download list service.
func NewService(aggregator *Aggregator, creds CredentialSource, hub notify.Broadcaster, logger zerolog.Logger) *Service {
	return &Service{
		aggregator: aggregator,
		creds:      creds,
		hub:        hub,
		logger:     logger.With().Str("component", "downloads").Logger(),
	}
}

// Refresh re-runs aggregation and replaces the held list. Only the most
// recently issued refresh may apply its result; a slow pass that has
// been superseded is discarded so it cannot overwrite newer data.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.inflight++
	s.mu.Unlock()

	cred, err := s.creds.Credential(ctx)
	var items []debrid.TaggedDownload
	if err == nil {
		items, err = s.aggregator.FetchAll(ctx, cred)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--

	if seq != s.seq {
		s.logger.Debug().Uint64("seq", seq).Msg("discarding superseded refresh result")
		return nil
	}

	if err != nil {
		s.lastErr = err
		s.logger.Error().Err(err).Msg("refresh failed")
		s.broadcast(EventError, ErrorPayload{Error: err.Error()})
		return err
	}

	s.items = items
	s.loaded = true
	s.lastErr = nil
	s.broadcast(EventUpdated, UpdatedPayload{Count: len(items)})
	return nil
}

// List returns display rows for the items matching the query, along
// with the current loading/error state. Querying never refetches.
func (s *Service) List(query string) ListResult {
	s.mu.Lock()
	items := s.items
	loading := s.inflight > 0
	lastErr := s.lastErr
	s.mu.Unlock()

	visible := FilterByName(items, query)
	rows := make([]Row, 0, len(visible))
	for _, d := range visible {
		rows = append(rows, Row{
			Key:            d.Key(),
			Kind:           d.Kind,
			ID:             d.ID,
			Name:           d.Name,
			TypeLabel:      TypeLabel(d.Kind),
			SizeLabel:      FormatSize(d.Size),
			Status:         StatusOf(d),
			CreatedAt:      d.CreatedAt,
			CanRequestLink: IsReady(d),
		})
	}

	result := ListResult{
		Items:   rows,
		Total:   len(rows),
		Loading: loading,
	}
	if lastErr != nil {
		result.Error = lastErr.Error()
	}
	return result
}

// Item returns the held record for a (kind, id) pair.
func (s *Service) Item(kind debrid.Kind, id int64) (debrid.TaggedDownload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.items {
		if d.Kind == kind && d.ID == id {
			return d, true
		}
	}
	return debrid.TaggedDownload{}, false
}

// Loading reports whether a refresh is in flight.
func (s *Service) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

func (s *Service) broadcast(event string, payload interface{}) {
	if s.hub == nil {
		return
	}
	if err := s.hub.Broadcast(event, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", event).Msg("failed to broadcast")
	}
}

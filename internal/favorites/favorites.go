package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"portal-analytics/internal/analytics"
	"portal-analytics/internal/storage"
)

const StorageKey = "favorites"

// Tracker is the part of the analytics buffer favorites report to.
type Tracker interface {
	Track(eventType analytics.EventType, data map[string]any)
}

type document struct {
	Events []string `json:"events"`
	POIs   []string `json:"pois"`
}

// Store keeps favorite event and POI ids and reports every toggle.
type Store struct {
	mu      sync.RWMutex
	events  []string
	pois    []string
	store   storage.Store
	tracker Tracker
}

func New(store storage.Store, tracker Tracker) *Store {
	return &Store{store: store, tracker: tracker}
}

// Load replaces the in-memory lists with the stored ones. A malformed document
// is ignored.
func (s *Store) Load(ctx context.Context) error {
	data, err := s.store.Get(ctx, StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load favorites: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn().Err(err).Msg("ignoring invalid favorites document")
		return nil
	}
	s.mu.Lock()
	s.events = doc.Events
	s.pois = doc.POIs
	s.mu.Unlock()
	return nil
}

func (s *Store) ToggleEvent(ctx context.Context, id, title string) bool {
	s.mu.Lock()
	var added bool
	s.events, added = toggle(s.events, id)
	doc := s.snapshotLocked()
	s.mu.Unlock()

	s.save(ctx, doc)
	s.report(added, map[string]any{"type": "event", "id": id, "title": title})
	return added
}

func (s *Store) TogglePOI(ctx context.Context, id, name string) bool {
	s.mu.Lock()
	var added bool
	s.pois, added = toggle(s.pois, id)
	doc := s.snapshotLocked()
	s.mu.Unlock()

	s.save(ctx, doc)
	s.report(added, map[string]any{"type": "poi", "id": id, "name": name})
	return added
}

func (s *Store) IsEventFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return contains(s.events, id)
}

func (s *Store) IsPOIFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return contains(s.pois, id)
}

func (s *Store) Events() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.events...)
}

func (s *Store) POIs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.pois...)
}

func (s *Store) snapshotLocked() document {
	return document{
		Events: append([]string{}, s.events...),
		POIs:   append([]string{}, s.pois...),
	}
}

func (s *Store) save(ctx context.Context, doc document) {
	data, err := json.Marshal(doc)
	if err == nil {
		err = s.store.Set(ctx, StorageKey, data)
	}
	if err != nil {
		log.Warn().Err(err).Msg("failed to persist favorites")
	}
}

func (s *Store) report(added bool, data map[string]any) {
	if s.tracker == nil {
		return
	}
	eventType := analytics.EventFavoriteRemove
	if added {
		eventType = analytics.EventFavoriteAdd
	}
	s.tracker.Track(eventType, data)
}

// toggle removes id when present, appends it otherwise; it reports whether id was added.
func toggle(ids []string, id string) ([]string, bool) {
	out := make([]string, 0, len(ids)+1)
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	if len(out) == len(ids) {
		return append(out, id), true
	}
	return out, false
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

package favorites

import (
	"context"
	"errors"
	"testing"

	"portal-analytics/internal/analytics"
	"portal-analytics/internal/storage"
)

type tracked struct {
	eventType analytics.EventType
	data      map[string]any
}

type memTracker struct{ calls []tracked }

func (m *memTracker) Track(t analytics.EventType, data map[string]any) {
	m.calls = append(m.calls, tracked{t, data})
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, storage.ErrNotFound }
func (brokenStore) Set(context.Context, string, []byte) error   { return errors.New("disk full") }

func TestToggleEventTracksAndPersists(t *testing.T) {
	store := storage.NewMemoryStore()
	tr := &memTracker{}
	fav := New(store, tr)
	ctx := context.Background()

	if !fav.ToggleEvent(ctx, "ev-1", "Jazz night") {
		t.Fatalf("first toggle should add")
	}
	if !fav.IsEventFavorite("ev-1") {
		t.Fatalf("event not marked favorite")
	}
	if fav.ToggleEvent(ctx, "ev-1", "Jazz night") {
		t.Fatalf("second toggle should remove")
	}

	if len(tr.calls) != 2 {
		t.Fatalf("want 2 tracked events, got %d", len(tr.calls))
	}
	if tr.calls[0].eventType != analytics.EventFavoriteAdd || tr.calls[1].eventType != analytics.EventFavoriteRemove {
		t.Fatalf("unexpected event types: %+v", tr.calls)
	}
	if tr.calls[0].data["type"] != "event" || tr.calls[0].data["id"] != "ev-1" || tr.calls[0].data["title"] != "Jazz night" {
		t.Fatalf("unexpected payload: %v", tr.calls[0].data)
	}

	fav.TogglePOI(ctx, "poi-3", "Solina")
	reloaded := New(store, nil)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(reloaded.Events()) != 0 || !reloaded.IsPOIFavorite("poi-3") {
		t.Fatalf("unexpected reloaded state: events=%v pois=%v", reloaded.Events(), reloaded.POIs())
	}
	if tr.calls[2].data["name"] != "Solina" {
		t.Fatalf("poi payload missing name: %v", tr.calls[2].data)
	}
}

func TestToggleSurvivesStorageFailure(t *testing.T) {
	tr := &memTracker{}
	fav := New(brokenStore{}, tr)
	if !fav.TogglePOI(context.Background(), "poi-1", "Tarnica") {
		t.Fatalf("toggle should add despite storage failure")
	}
	if !fav.IsPOIFavorite("poi-1") || len(tr.calls) != 1 {
		t.Fatalf("in-memory state or tracking lost")
	}
}

func TestLoadIgnoresInvalidDocument(t *testing.T) {
	store := storage.NewMemoryStore()
	_ = store.Set(context.Background(), StorageKey, []byte("not json"))
	fav := New(store, nil)
	if err := fav.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(fav.Events()) != 0 || len(fav.POIs()) != 0 {
		t.Fatalf("expected empty lists")
	}
}

func TestToggleKeepsOrder(t *testing.T) {
	ids, _ := toggle([]string{"a", "b", "c"}, "b")
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "c" {
		t.Fatalf("unexpected %v", ids)
	}
	ids, added := toggle(ids, "d")
	if !added || ids[2] != "d" {
		t.Fatalf("unexpected %v", ids)
	}
}

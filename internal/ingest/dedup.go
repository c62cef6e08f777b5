package ingest

import (
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog/log"

	"portal-analytics/internal/analytics"
)

// Deduper remembers recently stored events so a batch re-sent after a lost
// response is not stored twice.
type Deduper struct {
	cache *ristretto.Cache
	ttl   time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewDeduper(ttl time.Duration) (*Deduper, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e7,     // ~10x expected keys
		MaxCost:     1 << 20, // cost 1 per key
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Dur("ttl", ttl).Msg("dedup cache initialized")
	return &Deduper{cache: cache, ttl: ttl, inflight: make(map[string]struct{})}, nil
}

// Key identifies an event by what the client sets once at creation.
func Key(e analytics.Event) string {
	return strings.Join([]string{
		e.SessionID,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
		string(e.Type),
		e.SubjectID,
	}, "|")
}

// Reserve reports whether key is neither stored nor being stored by another
// request. A reserved key must be passed to Commit or Release.
func (d *Deduper) Reserve(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, busy := d.inflight[key]; busy {
		return false
	}
	if _, stored := d.cache.Get(key); stored {
		return false
	}
	d.inflight[key] = struct{}{}
	return true
}

// Commit records reserved keys as stored.
func (d *Deduper) Commit(keys []string) {
	for _, k := range keys {
		d.cache.SetWithTTL(k, struct{}{}, 1, d.ttl)
	}
	d.cache.Wait()
	d.Release(keys)
}

// Release drops reservations without storing, so a retry is accepted.
func (d *Deduper) Release(keys []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, k := range keys {
		delete(d.inflight, k)
	}
}

func (d *Deduper) Close() {
	d.cache.Close()
}

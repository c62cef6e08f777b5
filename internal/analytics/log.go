package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"portal-analytics/internal/storage"
)

const (
	DefaultLogKey      = "analytics_queue"
	DefaultLogCapacity = 100
)

var errCorruptLog = errors.New("corrupt analytics log")

// Log это диагностический журнал, куда копируется каждое событие.
type Log interface {
	Append(ctx context.Context, ev Event) error
}

// PersistentLog хранит последние события JSON-массивом под одним ключом.
// Обратно в очередь отправки он не читается.
type PersistentLog struct {
	store    storage.Store
	key      string
	capacity int
	mu       sync.Mutex
}

func NewPersistentLog(store storage.Store, key string, capacity int) *PersistentLog {
	if key == "" {
		key = DefaultLogKey
	}
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &PersistentLog{store: store, key: key, capacity: capacity}
}

// Append добавляет ev и отбрасывает самые старые записи сверх capacity.
func (l *PersistentLog) Append(ctx context.Context, ev Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	events, err := l.loadUnlocked(ctx)
	if err != nil {
		if !errors.Is(err, errCorruptLog) {
			return err
		}
		// повреждённый журнал перезаписывается
		events = nil
	}
	events = append(events, ev)
	if len(events) > l.capacity {
		events = events[len(events)-l.capacity:]
	}
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encode log: %w", err)
	}
	if err := l.store.Set(ctx, l.key, data); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// Load возвращает сохранённые события, старые первыми.
func (l *PersistentLog) Load(ctx context.Context) ([]Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadUnlocked(ctx)
}

func (l *PersistentLog) loadUnlocked(ctx context.Context) ([]Event, error) {
	data, err := l.store.Get(ctx, l.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read log: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorruptLog, err)
	}
	return events, nil
}

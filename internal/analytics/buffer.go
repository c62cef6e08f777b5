package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultFlushDelay = 5 * time.Second

type FlushPolicy string

const (
	// PolicyDebounce перезапускает таймер на каждый Track: сброс происходит
	// через FlushDelay после последнего вызова.
	PolicyDebounce FlushPolicy = "debounce"
	// PolicyInterval отдаёт расписание внешнему планировщику и сбрасывает
	// очередь досрочно при MaxPending событиях.
	PolicyInterval FlushPolicy = "interval"
)

// Sender доставляет один пакет. nil означает, что пакет принят.
type Sender interface {
	Send(ctx context.Context, events []Event) error
}

// Timer управляет запланированным сбросом.
type Timer interface {
	Stop() bool
}

type Options struct {
	Sender     Sender
	Log        Log
	Session    SessionContext
	Probe      Probe
	Policy     FlushPolicy
	FlushDelay time.Duration
	MaxPending int

	// Для тестов; нулевые значения используют реальные часы.
	Now       func() time.Time
	AfterFunc func(d time.Duration, f func()) Timer
	NewID     func() string
}

// Buffer копит события в памяти и отправляет их пакетами.
// Ошибки доставки и хранилища наружу не возвращаются.
type Buffer struct {
	sender     Sender
	log        Log
	session    SessionContext
	probe      Probe
	policy     FlushPolicy
	delay      time.Duration
	maxPending int
	now        func() time.Time
	afterFunc  func(d time.Duration, f func()) Timer
	newID      func() string

	flushMu sync.Mutex // держится от снимка очереди до возврата пакета

	mu        sync.Mutex
	sessionID string
	pending   []Event
	timer     Timer
	timerGen  uint64
	forcing   bool
}

func NewBuffer(opts Options) *Buffer {
	b := &Buffer{
		sender:     opts.Sender,
		log:        opts.Log,
		session:    opts.Session,
		probe:      opts.Probe,
		policy:     opts.Policy,
		delay:      opts.FlushDelay,
		maxPending: opts.MaxPending,
		now:        opts.Now,
		afterFunc:  opts.AfterFunc,
		newID:      opts.NewID,
	}
	if b.policy == "" {
		b.policy = PolicyDebounce
	}
	if b.delay <= 0 {
		b.delay = DefaultFlushDelay
	}
	if b.probe == nil {
		b.probe = StaticProbe{Width: desktopMinWidth}
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.afterFunc == nil {
		b.afterFunc = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}
	if b.newID == nil {
		b.newID = newSessionID
	}
	return b
}

// SessionID возвращает идентификатор сессии, общий для всех событий буфера.
func (b *Buffer) SessionID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessionIDLocked()
}

func (b *Buffer) sessionIDLocked() string {
	if b.sessionID == "" {
		b.sessionID = b.newID()
	}
	return b.sessionID
}

// Track записывает одно действие пользователя. Для вызывающего никогда не завершается ошибкой.
func (b *Buffer) Track(eventType EventType, data map[string]any) {
	ev := b.newEvent(eventType, data)

	if b.log != nil {
		if err := b.log.Append(context.Background(), ev); err != nil {
			log.Debug().Err(err).Str("event_type", string(eventType)).Msg("analytics log append failed")
		}
	}

	b.mu.Lock()
	b.pending = append(b.pending, ev)
	forceFlush := false
	switch b.policy {
	case PolicyInterval:
		forceFlush = !b.forcing && b.maxPending > 0 && len(b.pending) >= b.maxPending
		if forceFlush {
			b.forcing = true
		}
	default:
		b.rescheduleLocked()
	}
	b.mu.Unlock()

	if forceFlush {
		go b.Flush(context.Background())
	}
}

// PageView отправляет page_view с путём страницы.
func (b *Buffer) PageView(page string) {
	b.Track(EventPageView, map[string]any{"page": page})
}

func (b *Buffer) newEvent(eventType EventType, data map[string]any) Event {
	subject, language := "", ""
	if b.session != nil {
		subject = b.session.SubjectID()
		language = b.session.Language()
	}
	ua := b.probe.UserAgent()
	return Event{
		Timestamp:  b.now().UTC().Truncate(time.Millisecond),
		SessionID:  b.SessionID(),
		SubjectID:  subject,
		DeviceType: DeviceTypeForWidth(b.probe.ViewportWidth()),
		OS:         DetectOS(ua),
		Browser:    DetectBrowser(ua),
		Language:   language,
		Type:       eventType,
		Data:       data,
	}
}

func (b *Buffer) rescheduleLocked() {
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timerGen++
	gen := b.timerGen
	b.timer = b.afterFunc(b.delay, func() {
		b.mu.Lock()
		if b.timerGen == gen {
			b.timer = nil
		}
		b.mu.Unlock()
		b.Flush(context.Background())
	})
}

// Flush отправляет всю очередь одним пакетом. Очередь очищается до запроса;
// при ошибке пакет возвращается перед более новыми событиями.
// Одновременно выполняется не больше одной отправки.
func (b *Buffer) Flush(ctx context.Context) {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	b.mu.Lock()
	b.forcing = false
	if len(b.pending) == 0 {
		b.mu.Unlock()
		return
	}
	batch := b.pending
	b.pending = nil
	b.mu.Unlock()

	if err := b.sender.Send(ctx, batch); err != nil {
		b.mu.Lock()
		requeued := make([]Event, 0, len(batch)+len(b.pending))
		requeued = append(requeued, batch...)
		b.pending = append(requeued, b.pending...)
		b.mu.Unlock()
		log.Debug().Err(err).Int("events", len(batch)).Msg("analytics flush failed, re-queued")
		return
	}
	log.Debug().Int("events", len(batch)).Msg("analytics batch delivered")
}

// Close отменяет запланированный сброс и делает последнюю попытку доставки.
func (b *Buffer) Close(ctx context.Context) {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.timerGen++
	b.mu.Unlock()
	b.Flush(ctx)
}

// Pending возвращает копию неотправленных событий.
func (b *Buffer) Pending() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, len(b.pending))
	copy(out, b.pending)
	return out
}

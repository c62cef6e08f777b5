package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const DefaultReportSpec = "0 21 * * *"

// Scheduler управляет периодическими задачами: интервальным сбросом буфера
// и ежедневным отчётом.
type Scheduler struct {
	cron       *cron.Cron
	ctx        context.Context
	cancel     context.CancelFunc
	reportSpec string
	reportFunc func(ctx context.Context) error

	mu      sync.Mutex
	started bool
}

// New создает новый планировщик (UTC)
func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		ctx:        ctx,
		cancel:     cancel,
		reportSpec: DefaultReportSpec,
	}
}

// AddInterval регистрирует задачу, выполняемую каждые d.
func (s *Scheduler) AddInterval(d time.Duration, fn func(ctx context.Context)) error {
	if d <= 0 {
		return fmt.Errorf("interval must be positive, got %s", d)
	}
	_, err := s.cron.AddFunc("@every "+d.String(), func() {
		fn(s.ctx)
	})
	return err
}

// SetReportFunction устанавливает функцию отчёта и cron-выражение для неё.
// Пустое выражение означает ежедневно в 21:00 UTC.
func (s *Scheduler) SetReportFunction(spec string, f func(ctx context.Context) error) {
	if spec != "" {
		s.reportSpec = spec
	}
	s.reportFunc = f
}

// Start запускает планировщик
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	if s.reportFunc != nil {
		spec := s.reportSpec
		_, err := s.cron.AddFunc(spec, func() {
			log.Info().Str("spec", spec).Msg("triggered analytics report")
			if err := s.reportFunc(s.ctx); err != nil {
				log.Error().Err(err).Msg("analytics report failed")
			}
		})
		if err != nil {
			return fmt.Errorf("schedule report %q: %w", spec, err)
		}
	}

	if len(s.cron.Entries()) == 0 {
		log.Warn().Msg("scheduler has no jobs, not starting")
		return nil
	}

	s.cron.Start()
	s.started = true
	log.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler started")
	return nil
}

// Stop останавливает планировщик и дожидается выполняющихся задач
func (s *Scheduler) Stop() {
	s.mu.Lock()
	started := s.started
	s.started = false
	s.mu.Unlock()

	if started {
		<-s.cron.Stop().Done()
	}
	s.cancel()
	log.Info().Msg("scheduler stopped")
}

// IsRunning проверяет, запущен ли планировщик
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

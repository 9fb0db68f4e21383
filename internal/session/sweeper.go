package session

import (
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// Sweeper periodically removes idle sessions.
type Sweeper struct {
	scheduler *gocron.Scheduler
	registry  *Registry
	interval  time.Duration
	logger    zerolog.Logger
}

// NewSweeper creates a sweeper. Interval defaults to one minute.
func NewSweeper(registry *Registry, interval time.Duration, logger zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		scheduler: gocron.NewScheduler(time.UTC),
		registry:  registry,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the sweep and starts the scheduler in the background.
func (s *Sweeper) Start() error {
	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.sweep)
	if err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler.
func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}

func (s *Sweeper) sweep() {
	removed := s.registry.Sweep()
	if removed > 0 {
		s.logger.Info().
			Int("removed", removed).
			Int("remaining", s.registry.Len()).
			Msg("swept idle sessions")
	}
}

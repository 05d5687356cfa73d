package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/example/examtrainer/internal/cache"
)

// SweepInterval is how often expired catalog-count entries are evicted.
const SweepInterval = 5 * time.Minute

// Scheduler manages the engine's periodic background tasks.
type Scheduler struct {
	scheduler *gocron.Scheduler
	counts    *cache.CatalogCounts
	log       *zap.SugaredLogger
}

// New creates a new scheduler instance
func New(counts *cache.CatalogCounts, log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		counts:    counts,
		log:       log,
	}
}

// Start begins running all scheduled tasks in the background.
func (s *Scheduler) Start() {
	s.scheduler.Every(SweepInterval).Do(s.sweepCatalogCounts)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) sweepCatalogCounts() {
	if evicted := s.counts.Sweep(); evicted > 0 {
		s.log.Debugw("evicted expired catalog counts", "entries", evicted)
	}
}

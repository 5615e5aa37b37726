package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"cosmo-agent/internal/metrics"
	"cosmo-agent/internal/model"

	"github.com/labstack/gommon/log"
)

var ErrCycleInProgress = errors.New("reconciliation cycle already in progress")

type SyncService interface {
	RunOnce(ctx context.Context) (*model.CycleReport, error)
	Status() model.SchedulerStatus
}

// Scheduler runs reconciliation cycles on a fixed interval. At most one cycle
// runs at any time; ticks and triggers arriving meanwhile are dropped.
type Scheduler struct {
	interval  time.Duration
	reconcile ReconcileService
	logger    *log.Logger

	running   sync.Mutex
	isRunning atomic.Bool

	mu           sync.RWMutex
	last         *model.CycleReport
	cyclesRun    int
	cyclesFailed int
}

func NewScheduler(interval time.Duration, reconcile ReconcileService, logger *log.Logger) *Scheduler {
	return &Scheduler{
		interval:  interval,
		reconcile: reconcile,
		logger:    logger,
	}
}

// Start blocks until ctx is cancelled. The first cycle runs one interval after start.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Infoj(log.JSON{"message": "store timer started", "interval": s.interval.String()})

	for {
		select {
		case <-ctx.Done():
			s.logger.Infoj(log.JSON{"message": "store timer stopped"})
			return
		case <-ticker.C:
			// a started cycle is never cut short; its errors are logged by the
			// cycle itself and the timer keeps going
			s.RunOnce(context.WithoutCancel(ctx))
		}
	}
}

// RunOnce runs a cycle now unless one is already running.
func (s *Scheduler) RunOnce(ctx context.Context) (*model.CycleReport, error) {
	if !s.running.TryLock() {
		metrics.CyclesSkippedTotal.Inc()
		s.logger.Warnj(log.JSON{"message": "cycle skipped, previous cycle still running"})
		return nil, ErrCycleInProgress
	}
	defer s.running.Unlock()

	s.isRunning.Store(true)
	defer s.isRunning.Store(false)

	start := time.Now()
	report, err := s.reconcile.RunCycle(ctx)
	metrics.CycleDuration.Observe(time.Since(start).Seconds())

	s.mu.Lock()
	s.cyclesRun++
	if err != nil {
		s.cyclesFailed++
	}
	if report != nil {
		s.last = report
	}
	s.mu.Unlock()

	return report, err
}

func (s *Scheduler) Status() model.SchedulerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return model.SchedulerStatus{
		Interval:     s.interval.String(),
		Running:      s.isRunning.Load(),
		CyclesRun:    s.cyclesRun,
		CyclesFailed: s.cyclesFailed,
		LastCycle:    s.last,
	}
}

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reloader rebuilds the dataset.
type Reloader interface {
	Reload(ctx context.Context) error
}

type Scheduler struct {
	reloader Reloader
	logger   *zap.Logger
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	entryID  cron.EntryID
	running  bool
	inFlight bool
	mu       sync.Mutex
	lastRun  time.Time
	lastErr  error
	runs     int
}

func NewScheduler(reloader Reloader, schedule string, timeout time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		reloader: reloader,
		logger:   logger,
		schedule: schedule,
		timeout:  timeout,
		cron:     cron.New(),
	}
}

func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	id, err := s.cron.AddFunc(s.schedule, s.runReload)
	if err != nil {
		return fmt.Errorf("invalid reload schedule %q: %w", s.schedule, err)
	}
	s.entryID = id
	s.cron.Start()
	s.running = true

	s.logger.Info("Scheduler started",
		zap.String("schedule", s.schedule),
		zap.Time("next_run", s.cron.Entry(id).Next))
	return nil
}

func (s *Scheduler) runReload() {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		s.logger.Debug("Skipping reload, previous run still in progress")
		return
	}
	s.inFlight = true
	s.lastRun = time.Now()
	s.mu.Unlock()

	startTime := time.Now()
	s.logger.Info("Starting scheduled reload", zap.Time("start_time", startTime))

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.reloader.Reload(ctx)

	s.mu.Lock()
	s.inFlight = false
	s.lastErr = err
	s.runs++
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Scheduled reload failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(startTime)))
		return
	}
	s.logger.Info("Scheduled reload completed",
		zap.Duration("duration", time.Since(startTime)))
}

// Stop halts the schedule and waits for a running reload to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}

// GetStatus reports the schedule and the outcome of the last run. It backs the
// scheduler section of the health endpoint.
func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"running":   s.running,
		"schedule":  s.schedule,
		"last_run":  s.lastRun,
		"runs":      s.runs,
		"in_flight": s.inFlight,
	}
	if s.running {
		status["next_run"] = s.cron.Entry(s.entryID).Next
	}
	if s.lastErr != nil {
		status["last_error"] = s.lastErr.Error()
	}
	return status
}

package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DataStore hands the current Dataset to readers. Datasets are published
// whole and never mutated, so readers need no locking; the first Publish
// closes the ready channel that every waiting consumer blocks on.
type DataStore struct {
	current   atomic.Pointer[Dataset]
	ready     chan struct{}
	readyOnce sync.Once
	logger    *zap.Logger

	mu          sync.Mutex
	loadCount   int
	failCount   int
	lastError   string
	lastAttempt time.Time
}

func NewDataStore(logger *zap.Logger) *DataStore {
	return &DataStore{
		ready:  make(chan struct{}),
		logger: logger,
	}
}

func (s *DataStore) Publish(d *Dataset) {
	s.current.Store(d)

	s.mu.Lock()
	s.loadCount++
	s.lastError = ""
	s.lastAttempt = time.Now()
	s.mu.Unlock()

	s.readyOnce.Do(func() { close(s.ready) })

	s.logger.Info("Dataset published",
		zap.String("dataset_id", d.ID),
		zap.Time("loaded_at", d.LoadedAt))
}

// RecordFailure notes a failed load. The previously published dataset, if
// any, stays current.
func (s *DataStore) RecordFailure(err error) {
	s.mu.Lock()
	s.failCount++
	s.lastError = err.Error()
	s.lastAttempt = time.Now()
	s.mu.Unlock()
}

func (s *DataStore) Current() (*Dataset, error) {
	d := s.current.Load()
	if d == nil {
		return nil, ErrDatasetNotReady
	}
	return d, nil
}

// Ready is closed once the first dataset has been published.
func (s *DataStore) Ready() <-chan struct{} {
	return s.ready
}

// Wait blocks until a dataset is available or ctx is done.
func (s *DataStore) Wait(ctx context.Context) (*Dataset, error) {
	select {
	case <-s.ready:
		return s.Current()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *DataStore) GetStats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := map[string]interface{}{
		"load_count":    s.loadCount,
		"failure_count": s.failCount,
		"last_attempt":  s.lastAttempt,
	}
	if s.lastError != "" {
		stats["last_error"] = s.lastError
	}
	if d := s.current.Load(); d != nil {
		stats["dataset_id"] = d.ID
		stats["loaded_at"] = d.LoadedAt
	}
	return stats
}

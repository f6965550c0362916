package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingReloader struct {
	calls atomic.Int32
	err   error
}

func (r *countingReloader) Reload(ctx context.Context) error {
	r.calls.Add(1)
	return r.err
}

func TestSchedulerStart(t *testing.T) {
	t.Run("invalid schedule", func(t *testing.T) {
		s := NewScheduler(&countingReloader{}, "not a schedule", time.Second, zap.NewNop())
		assert.Error(t, s.Start())
	})

	t.Run("start and stop", func(t *testing.T) {
		s := NewScheduler(&countingReloader{}, "@every 1h", time.Second, zap.NewNop())
		require.NoError(t, s.Start())
		require.NoError(t, s.Start())

		status := s.GetStatus()
		assert.Equal(t, true, status["running"])
		assert.Contains(t, status, "next_run")

		s.Stop()
		assert.Equal(t, false, s.GetStatus()["running"])
	})
}

func TestSchedulerRunReload(t *testing.T) {
	reloader := &countingReloader{err: errors.New("load failed")}
	s := NewScheduler(reloader, "@every 1h", time.Second, zap.NewNop())

	s.runReload()

	status := s.GetStatus()
	assert.Equal(t, 1, status["runs"])
	assert.Equal(t, false, status["in_flight"])
	assert.Equal(t, "load failed", status["last_error"])
	assert.EqualValues(t, 1, reloader.calls.Load())
}

func TestSchedulerRunsOnSchedule(t *testing.T) {
	reloader := &countingReloader{}
	s := NewScheduler(reloader, "@every 1s", time.Second, zap.NewNop())
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return reloader.calls.Load() >= 1
	}, 3*time.Second, 20*time.Millisecond)
	assert.NotContains(t, s.GetStatus(), "last_error")
}

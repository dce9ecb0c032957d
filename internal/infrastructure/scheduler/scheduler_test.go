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

func TestScheduler_Add(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	run := func(ctx context.Context) error { return nil }

	assert.ErrorIs(t, s.Add(Job{Interval: time.Second, Run: run}), ErrInvalidJob)
	assert.ErrorIs(t, s.Add(Job{Name: "a", Run: run}), ErrInvalidJob)
	assert.ErrorIs(t, s.Add(Job{Name: "a", Interval: time.Second}), ErrInvalidJob)

	require.NoError(t, s.Add(Job{Name: "a", Interval: time.Second, Run: run}))
	assert.ErrorIs(t, s.Add(Job{Name: "a", Interval: time.Second, Run: run}), ErrDuplicateJob)

	st, ok := s.State("a")
	require.True(t, ok)
	assert.Equal(t, JobStatusPending, st.Status)

	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	assert.ErrorIs(t, s.Add(Job{Name: "b", Interval: time.Second, Run: run}), ErrSchedulerRunning)
}

func TestScheduler_RunsPeriodically(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	var runs atomic.Int32
	require.NoError(t, s.Add(Job{
		Name:     "tick",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	}))

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	st, _ := s.State("tick")
	assert.Equal(t, JobStatusSuccess, st.Status)
	assert.GreaterOrEqual(t, st.Runs, 3)

	// no runs after Stop
	after := runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestScheduler_RunAtStartAndFailure(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	done := make(chan struct{})
	require.NoError(t, s.Add(Job{
		Name:       "purge",
		Interval:   time.Hour,
		RunAtStart: true,
		Run: func(ctx context.Context) error {
			defer close(done)
			return errors.New("disk full")
		},
	}))

	require.NoError(t, s.Start(context.Background()))
	<-done
	assert.Eventually(t, func() bool {
		st, _ := s.State("purge")
		return st.Status == JobStatusFailed
	}, time.Second, time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	st, _ := s.State("purge")
	assert.Equal(t, "disk full", st.Error)
	assert.Equal(t, 1, st.Runs)
}

func TestScheduler_StopCancelsRunningJob(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	started := make(chan struct{})
	require.NoError(t, s.Add(Job{
		Name:       "slow",
		Interval:   time.Hour,
		RunAtStart: true,
		Run: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		},
	}))

	require.NoError(t, s.Start(context.Background()))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
	assert.NoError(t, s.Stop(ctx))
}

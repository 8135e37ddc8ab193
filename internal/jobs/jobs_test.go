package jobs

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

type refresherFunc func(ctx context.Context) error

func (f refresherFunc) Refresh(ctx context.Context) error { return f(ctx) }

func TestScheduler_AddRemove(t *testing.T) {
	s := NewScheduler(zap.NewNop())

	require.NoError(t, s.AddJob("b", "*/5 * * * *", func() {}))
	require.NoError(t, s.AddJob("a", "*/30 * * * * *", func() {}))
	require.NoError(t, s.AddJob("c", "@every 1m", func() {}))
	assert.Equal(t, []string{"a", "b", "c"}, s.JobNames())

	assert.Error(t, s.AddJob("a", "@hourly", func() {}), "duplicate name")
	assert.Error(t, s.AddJob("bad", "not a schedule", func() {}))

	require.NoError(t, s.RemoveJob("b"))
	assert.Error(t, s.RemoveJob("b"))
	assert.Equal(t, []string{"a", "c"}, s.JobNames())
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := NewScheduler(zap.NewNop())

	var runs atomic.Int32
	require.NoError(t, s.AddJob("tick", "@every 1s", func() { runs.Add(1) }))

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 5*time.Second, 50*time.Millisecond)
	<-s.Stop().Done()
}

func TestScheduler_RecoversFromPanic(t *testing.T) {
	s := NewScheduler(zap.NewNop())

	var runs atomic.Int32
	require.NoError(t, s.AddJob("panics", "@every 1s", func() {
		runs.Add(1)
		panic("boom")
	}))

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 5*time.Second, 50*time.Millisecond)
	<-s.Stop().Done()
}

func TestRefreshJob_Run(t *testing.T) {
	t.Run("applies timeout and reports success", func(t *testing.T) {
		var hadDeadline bool
		var reported error = errors.New("not called")

		job := NewRefreshJob(refresherFunc(func(ctx context.Context) error {
			_, hadDeadline = ctx.Deadline()
			return nil
		}), zap.NewNop(), time.Second, func(err error) { reported = err })

		job.Run()
		assert.True(t, hadDeadline)
		assert.NoError(t, reported)
	})

	t.Run("reports failure", func(t *testing.T) {
		boom := errors.New("backend down")
		var reported error

		job := NewRefreshJob(refresherFunc(func(context.Context) error { return boom }),
			zap.NewNop(), time.Second, func(err error) { reported = err })

		job.Run()
		assert.ErrorIs(t, reported, boom)
	})

	t.Run("nil callback", func(t *testing.T) {
		job := NewRefreshJob(refresherFunc(func(context.Context) error { return nil }), zap.NewNop(), time.Second, nil)
		assert.NotPanics(t, job.Run)
	})
}

func TestRegisterRefreshJob(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	r := refresherFunc(func(context.Context) error { return nil })

	require.NoError(t, RegisterRefreshJob(s, r, zap.NewNop(), "@every 1m", time.Second, nil))
	assert.Equal(t, []string{RefreshJobName}, s.JobNames())
	assert.Error(t, RegisterRefreshJob(s, r, zap.NewNop(), "@every 1m", time.Second, nil))
}

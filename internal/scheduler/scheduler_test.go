package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GamblerIX/duanju/internal/testutil"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New(testutil.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func TestRegisterTask(t *testing.T) {
	s := newTestScheduler(t)

	cfg := TaskConfig{
		ID:   "sweep",
		Name: "Sweep",
		Cron: "* * * * *",
		Func: func(ctx context.Context) error { return nil },
	}
	require.NoError(t, s.RegisterTask(cfg))

	t.Run("duplicate id is rejected", func(t *testing.T) {
		err := s.RegisterTask(cfg)
		assert.Error(t, err)
	})

	t.Run("invalid cron is rejected", func(t *testing.T) {
		err := s.RegisterTask(TaskConfig{
			ID:   "broken",
			Cron: "not a cron",
			Func: func(ctx context.Context) error { return nil },
		})
		assert.Error(t, err)
	})
}

func TestRunNow(t *testing.T) {
	s := newTestScheduler(t)

	ran := make(chan struct{})
	require.NoError(t, s.RegisterTask(TaskConfig{
		ID:   "prewarm",
		Name: "Prewarm",
		Cron: "*/10 * * * *",
		Func: func(ctx context.Context) error {
			close(ran)
			return nil
		},
	}))

	t.Run("unknown task", func(t *testing.T) {
		err := s.RunNow("ghost")
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("triggers the task once", func(t *testing.T) {
		require.NoError(t, s.RunNow("prewarm"))
		select {
		case <-ran:
		case <-time.After(time.Second):
			t.Fatal("task did not run")
		}
	})
}

func TestListTasks(t *testing.T) {
	s := newTestScheduler(t)

	require.NoError(t, s.RegisterTask(TaskConfig{
		ID:          "sweep",
		Name:        "Sweep",
		Description: "Removes expired cache entries",
		Cron:        "* * * * *",
		Func:        func(ctx context.Context) error { return nil },
	}))

	list := s.ListTasks()
	require.Len(t, list, 1)
	assert.Equal(t, "sweep", list[0].ID)
	assert.Equal(t, "* * * * *", list[0].Cron)
	assert.False(t, list[0].Running)
	assert.Nil(t, list[0].LastRun)
}

func TestRunNowRecordsLastRun(t *testing.T) {
	s := newTestScheduler(t)

	done := make(chan struct{})
	require.NoError(t, s.RegisterTask(TaskConfig{
		ID:   "sweep",
		Cron: "* * * * *",
		Func: func(ctx context.Context) error {
			close(done)
			return nil
		},
	}))

	require.NoError(t, s.RunNow("sweep"))
	<-done

	require.Eventually(t, func() bool {
		list := s.ListTasks()
		return len(list) == 1 && list[0].LastRun != nil
	}, time.Second, 5*time.Millisecond)
}

package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	calls atomic.Int32
	err   error
}

func (j *countingJob) Execute(ctx context.Context, now time.Time) (int, error) {
	j.calls.Add(1)
	return 1, j.err
}

func TestManager_RunsJobs(t *testing.T) {
	m, err := NewManager(20 * time.Millisecond)
	require.NoError(t, err)

	ok := &countingJob{}
	failing := &countingJob{err: errors.New("db down")}
	require.NoError(t, m.Register("ok", ok))
	require.NoError(t, m.Register("failing", failing))

	m.Start()
	assert.Eventually(t, func() bool {
		return ok.calls.Load() >= 2 && failing.calls.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)
	m.Stop()

	after := ok.calls.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, after, ok.calls.Load(), "после Stop задачи не запускаются")
}

type blockingJob struct{}

func (blockingJob) Execute(ctx context.Context, now time.Time) (int, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func TestManager_StopCancelsRunningJob(t *testing.T) {
	m, err := NewManager(10 * time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, m.Register("blocking", blockingJob{}))
	m.Start()
	time.Sleep(50 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop не дождался отмены задачи")
	}
}

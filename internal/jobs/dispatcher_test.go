package jobs

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftaldev/redline/internal/core"
)

type blockingJob struct {
	started chan struct{}
	release chan struct{}
	runs    atomic.Int64
}

func (j *blockingJob) Run(_ context.Context, _ *core.ReviewEvent) error {
	select {
	case j.started <- struct{}{}:
	default:
	}
	<-j.release
	j.runs.Add(1)
	return nil
}

func TestDispatcherProcessesQueuedEvents(t *testing.T) {
	job := &blockingJob{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	close(job.release)

	d := NewDispatcher(job, 2, slog.Default())
	for range 5 {
		require.NoError(t, d.Dispatch(context.Background(), &core.ReviewEvent{RepoFullName: "a/b", PRNumber: 1}))
	}
	d.Stop()

	assert.Equal(t, int64(5), job.runs.Load())
}

func TestDispatcherQueueFull(t *testing.T) {
	job := &blockingJob{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}

	d := NewDispatcher(job, 1, slog.Default())

	// Occupy the single worker, then wait until it has picked up the event
	// so the queue capacity below is exact.
	require.NoError(t, d.Dispatch(context.Background(), &core.ReviewEvent{RepoFullName: "a/b"}))
	select {
	case <-job.started:
	case <-time.After(time.Second):
		t.Fatal("worker never started processing")
	}

	for range 100 {
		require.NoError(t, d.Dispatch(context.Background(), &core.ReviewEvent{RepoFullName: "a/b"}))
	}

	err := d.Dispatch(context.Background(), &core.ReviewEvent{RepoFullName: "a/b"})
	assert.ErrorContains(t, err, "queue is full")

	close(job.release)
	d.Stop()
	assert.Equal(t, int64(101), job.runs.Load())
}

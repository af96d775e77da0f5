package plagiarism

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	counter *atomic.Int64
}

func (j countingJob) Execute(ctx context.Context) error {
	j.counter.Add(1)
	return nil
}

func TestWorkerPool_RunsJobs(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 3)
	defer pool.Close()

	assert.Equal(t, 3, pool.Size())

	var counter atomic.Int64
	for i := 0; i < 50; i++ {
		require.NoError(t, pool.Submit(countingJob{counter: &counter}))
	}

	assert.Eventually(t, func() bool { return counter.Load() == 50 }, 2*time.Second, 5*time.Millisecond)
}

func TestWorkerPool_DefaultSize(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 0)
	defer pool.Close()

	assert.GreaterOrEqual(t, pool.Size(), 1)
}

func TestWorkerPool_SubmitAfterClose(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1)
	pool.Close()

	var counter atomic.Int64
	assert.Error(t, pool.Submit(countingJob{counter: &counter}))

	select {
	case <-pool.Done():
	default:
		t.Fatal("Done should be closed after Close")
	}
}

package async

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProcessor struct {
	mu   sync.Mutex
	seen []uuid.UUID
}

func (p *recordingProcessor) Process(_ context.Context, jobID uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, jobID)
	return nil
}

func (p *recordingProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}

func TestQueueProcessesAllJobs(t *testing.T) {
	proc := &recordingProcessor{}
	q := NewJobQueue(proc, nil, WithWorkers(3), WithQueueSize(16))

	ids := make([]uuid.UUID, 10)
	for i := range ids {
		ids[i] = uuid.New()
		require.NoError(t, q.Enqueue(context.Background(), ids[i]))
	}

	require.Eventually(t, func() bool {
		return proc.count() == len(ids)
	}, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	q.Shutdown(ctx)
}

func TestQueueShutdownDrains(t *testing.T) {
	proc := &recordingProcessor{}
	q := NewJobQueue(proc, nil, WithWorkers(1), WithQueueSize(32))

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(context.Background(), uuid.New()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	q.Shutdown(ctx)
	assert.Equal(t, 5, proc.count())

	// enqueue after shutdown is a logged no-op
	require.NoError(t, q.Enqueue(context.Background(), uuid.New()))
	assert.Equal(t, 5, proc.count())
}

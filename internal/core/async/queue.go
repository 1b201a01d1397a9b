package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Processor is the unit of work a queue worker runs for one job.
type Processor interface {
	Process(ctx context.Context, jobID uuid.UUID) error
}

// JobQueue fans submitted jobs out to a fixed worker pool. Enqueue applies
// backpressure when the buffer is full; Shutdown drains in-flight work.
type JobQueue struct {
	proc    Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan uuid.UUID
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*JobQueue)

func WithWorkers(n int) Option {
	return func(q *JobQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *JobQueue) {
		if n > 0 {
			q.ch = make(chan uuid.UUID, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *JobQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewJobQueue(proc Processor, logger *slog.Logger, opts ...Option) *JobQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &JobQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 5 * time.Minute,
		ch:      make(chan uuid.UUID, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *JobQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("queue.worker.started", "worker_id", workerID)

				for jobID := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					err := q.proc.Process(ctx, jobID)
					cancel()

					if err != nil {
						q.logger.Error("queue.process.failed",
							"worker_id", workerID, "job_id", jobID.String(), "error", err)
					} else {
						q.logger.Info("queue.process.ok",
							"worker_id", workerID, "job_id", jobID.String())
					}
				}

				q.logger.Info("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *JobQueue) Enqueue(_ context.Context, jobID uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.rejected_shutdown", "job_id", jobID.String())
		return nil
	}
	select {
	case q.ch <- jobID:
		q.logger.Info("queue.enqueue.ok", "job_id", jobID.String())
	default:
		q.logger.Warn("queue.enqueue.backpressure", "job_id", jobID.String())
		q.ch <- jobID
	}
	return nil
}

func (q *JobQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Info("queue.shutdown.drained")
	}
}

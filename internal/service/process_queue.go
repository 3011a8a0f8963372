package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"papyr/internal/config"
	"papyr/internal/domain"
)

// ProcessFunc runs one document through the pipeline and performs the
// terminal status write before returning.
type ProcessFunc func(ctx context.Context, doc *domain.Document)

// JobHandle lets a submitter observe a queued processing run.
type JobHandle struct {
	DocumentID uuid.UUID
	done       chan struct{}
}

// Done returns a channel that closes after the run's terminal write.
func (h *JobHandle) Done() <-chan struct{} {
	return h.done
}

type processJob struct {
	doc    *domain.Document
	handle *JobHandle
}

// ProcessQueue is a bounded in-process job queue with a fixed worker
// pool. Submissions never block: a full queue is reported to the
// caller instead.
type ProcessQueue struct {
	jobs       chan *processJob
	workers    int
	jobTimeout time.Duration
	wg         sync.WaitGroup
}

// NewProcessQueue creates a queue sized from configuration.
func NewProcessQueue(cfg *config.QueueConfig) *ProcessQueue {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	size := cfg.Size
	if size <= 0 {
		size = 64
	}
	timeout := time.Duration(cfg.JobTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &ProcessQueue{
		jobs:       make(chan *processJob, size),
		workers:    workers,
		jobTimeout: timeout,
	}
}

// Submit enqueues doc for processing and returns a handle whose Done
// channel closes once the run reaches a terminal status. Returns
// domain.ErrQueueSaturated when the queue is full.
func (q *ProcessQueue) Submit(doc *domain.Document) (*JobHandle, error) {
	handle := &JobHandle{
		DocumentID: doc.ID,
		done:       make(chan struct{}),
	}
	select {
	case q.jobs <- &processJob{doc: doc, handle: handle}:
		return handle, nil
	default:
		return nil, domain.ErrQueueSaturated
	}
}

// Start launches the worker pool and blocks until ctx is cancelled and
// all in-flight jobs have finished.
func (q *ProcessQueue) Start(ctx context.Context, process ProcessFunc) {
	log.Printf("processQueue.Start: starting %d workers (queue size %d)", q.workers, cap(q.jobs))
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i, process)
	}
	<-ctx.Done()
	q.wg.Wait()
	log.Printf("processQueue.Start: all workers stopped")
}

func (q *ProcessQueue) worker(ctx context.Context, id int, process ProcessFunc) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-q.jobs:
			q.run(id, job, process)
		}
	}
}

func (q *ProcessQueue) run(workerID int, job *processJob, process ProcessFunc) {
	defer close(job.handle.done)

	// Detached from the server lifecycle so an in-flight run survives
	// shutdown of the accepting side; bounded by the job timeout.
	jobCtx, cancel := context.WithTimeout(context.Background(), q.jobTimeout)
	defer cancel()

	log.Printf("processQueue.worker[%d]: processing document %s", workerID, job.doc.ID)
	process(jobCtx, job.doc)
}

// Depth reports the number of jobs waiting in the queue.
func (q *ProcessQueue) Depth() int {
	return len(q.jobs)
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/gridlock/internal/config"
	"github.com/dgallion1/gridlock/internal/loader"
	"github.com/dgallion1/gridlock/internal/ocr"
)

// ErrStopped is returned by Submit once the orchestrator has been stopped.
var ErrStopped = errors.New("pipeline stopped")

// sweepInterval bounds how often expired jobs are evicted.
const sweepInterval = 5 * time.Minute

// Orchestrator feeds merge jobs from a bounded queue to a fixed set of workers.
type Orchestrator struct {
	store    *JobStore
	pending  chan *Job
	rec      ocr.Recognizer
	log      *slog.Logger
	workers  int
	capacity int
	loadOpts loader.Options

	mu      sync.RWMutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator sizes the queue and worker pool from cfg. rec may be nil
// when every job carries its text. Call Start to begin processing.
func NewOrchestrator(cfg config.Config, rec ocr.Recognizer, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store:    NewJobStore(cfg.JobTTL),
		pending:  make(chan *Job, cfg.MaxQueueSize),
		rec:      rec,
		log:      log,
		workers:  max(cfg.WorkerCount, 1),
		capacity: cfg.MaxQueueSize,
		loadOpts: loader.Options{
			PDFPage:              1,
			PDFFallbackPdftotext: cfg.PDFFallbackPdftotext,
		},
	}
}

// Start launches the workers and the expiry sweep. They run until ctx is
// done or Stop is called.
func (o *Orchestrator) Start(ctx context.Context) {
	ctx, o.cancel = context.WithCancel(ctx)
	for i := range o.workers {
		w := NewWorker(o.rec, o.log.With("worker", i), o.loadOpts)
		o.wg.Go(func() { o.drain(ctx, w) })
	}
	o.wg.Go(func() { o.sweep(ctx) })
}

func (o *Orchestrator) drain(ctx context.Context, w *Worker) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-o.pending:
			if !ok {
				return
			}
			w.Process(ctx, job)
		}
	}
}

func (o *Orchestrator) sweep(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := o.store.Cleanup(); n > 0 {
				o.log.Debug("evicted expired jobs", "count", n)
			}
		}
	}
}

// Stop cancels in-flight work and waits for the workers to exit. It is safe
// to call more than once.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.pending)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit registers job and queues it. A full queue fails the job at once
// instead of blocking the caller.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		return ErrStopped
	}

	o.store.Put(job)
	select {
	case o.pending <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.capacity)
	}
}

// GetJob returns the job with the given ID, or nil once it has expired.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.store.Get(id)
}

// QueueDepth reports how many jobs are waiting for a worker.
func (o *Orchestrator) QueueDepth() int {
	return len(o.pending)
}

package windfield

import (
	"context"
	"fmt"
	"log"
	"sync"

	"surfscout/internal/geo"
)

// Job is one interpolation work item. Interpolation runs after the session
// and its raw fields are already committed, so a failed job is reported on
// the pool's error channel and never rolls anything back.
type Job struct {
	Field          Field
	Polygon        geo.Polygon
	CellSizeMeters int
	Power          float64
}

// Sink persists one interpolated field atomically as a unit.
type Sink interface {
	SaveInterpolated(field Interpolated) error
}

// Notifier announces a completed interpolation, e.g. over MQTT. May be nil.
type Notifier interface {
	NotifyInterpolated(field Interpolated)
}

// Pool is the bounded worker pool for background interpolation. Session
// saves submit jobs and return immediately; workers interpolate, persist,
// and notify. Once started a job runs to completion even if the originating
// request is gone.
type Pool struct {
	jobs     chan Job
	errs     chan error
	workers  int
	sink     Sink
	notifier Notifier
	wg       sync.WaitGroup
	once     sync.Once

	mu      sync.Mutex
	stopped bool
}

func NewPool(workers, queueSize int, sink Sink, notifier Notifier) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 16
	}
	return &Pool{
		jobs:     make(chan Job, queueSize),
		errs:     make(chan error, queueSize),
		workers:  workers,
		sink:     sink,
		notifier: notifier,
	}
}

// Start launches the workers and an error drain that logs failures
// out-of-band. Returns immediately.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-p.jobs:
					if !ok {
						return
					}
					p.run(job)
				}
			}
		}()
	}

	go func() {
		for err := range p.errs {
			log.Printf("windfield: interpolation job failed: %v", err)
		}
	}()
}

// Submit enqueues a job. Returns false when the queue is full or the pool
// has been stopped; the caller treats that the same as any other
// interpolation failure, since the session data is already committed.
// Detached enrichment goroutines can outlive the server's drain, so a
// submit racing Stop must not hit the closed queue.
func (p *Pool) Submit(job Job) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return false
	}
	select {
	case p.jobs <- job:
		return true
	default:
		p.errs <- fmt.Errorf("queue full, dropping job for session %d at %s",
			job.Field.SessionID, job.Field.At.Format("15:04"))
		return false
	}
}

func (p *Pool) run(job Job) {
	cellSize := job.CellSizeMeters
	if cellSize <= 0 {
		cellSize = DefaultCellSizeMeters
	}

	result, err := Interpolate(job.Field, job.Polygon, cellSize, job.Power)
	if err != nil {
		p.errs <- err
		return
	}
	if err := p.sink.SaveInterpolated(result); err != nil {
		p.errs <- fmt.Errorf("persist interpolated field for session %d: %w", result.SessionID, err)
		return
	}
	if p.notifier != nil {
		p.notifier.NotifyInterpolated(result)
	}
}

// Stop closes the queue and waits for in-flight jobs to finish. Later
// Submit calls return false instead of panicking on the closed queue.
func (p *Pool) Stop() {
	p.once.Do(func() {
		p.mu.Lock()
		p.stopped = true
		close(p.jobs)
		p.mu.Unlock()
		p.wg.Wait()
		close(p.errs)
	})
}

package worker

import (
	"context"
	"sync"
)

// Job is a unit of work executed by a pool worker
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is produced by a Job
type Result interface {
	// Position is the submission index of the job that produced the result
	Position() int
	GetError() error
}

// Pool runs jobs on a fixed number of goroutines
type Pool struct {
	workers    int
	jobQueue   chan Job
	results    chan Result
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once

	// collector drains results while jobs are still being submitted
	collected []Result
	drained   chan struct{}
	started   bool
}

// NewPool creates a pool bound to parent; cancelling parent stops the workers
func NewPool(parent context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(parent)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan Job, workers*2),
		results:    make(chan Result, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
		drained:    make(chan struct{}),
	}
}

// Start launches the workers and the result collector
func (p *Pool) Start() {
	p.started = true
	go p.collect()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) collect() {
	defer close(p.drained)
	for result := range p.results {
		p.collected = append(p.collected, result)
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job; it returns false if the pool was cancelled first
func (p *Pool) Submit(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- job:
		return true
	}
}

// Wait closes the queue, waits for the workers and returns results ordered by Position
func (p *Pool) Wait() []Result {
	close(p.jobQueue)
	p.wg.Wait()
	p.closeResults()
	p.cancelFunc()

	if !p.started {
		return nil
	}
	<-p.drained

	return orderByPosition(p.collected)
}

// Shutdown cancels in-flight work and releases the workers
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}

// orderByPosition places each result at its submission index.
// Results whose position falls outside the collected range keep arrival order at the end.
func orderByPosition(results []Result) []Result {
	ordered := make([]Result, len(results))
	var overflow []Result
	for _, r := range results {
		pos := r.Position()
		if pos >= 0 && pos < len(ordered) && ordered[pos] == nil {
			ordered[pos] = r
			continue
		}
		overflow = append(overflow, r)
	}

	out := ordered[:0]
	for _, r := range ordered {
		if r != nil {
			out = append(out, r)
		}
	}
	return append(out, overflow...)
}

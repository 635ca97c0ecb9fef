package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// mockResult implements Result
type mockResult struct {
	pos int
	err error
}

func (r *mockResult) Position() int   { return r.pos }
func (r *mockResult) GetError() error { return r.err }

// mockJob implements Job
type mockJob struct {
	pos       int
	duration  time.Duration
	shouldErr bool
	executed  *int32 // atomic counter
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{pos: j.pos, err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{pos: j.pos, err: errors.New("job error")}
	}
	return &mockResult{pos: j.pos}
}

func TestNewPool(t *testing.T) {
	ctx := context.Background()

	if p := NewPool(ctx, 5); p.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p.workers)
	}
	if p := NewPool(ctx, 0); p.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p.workers)
	}
	if p := NewPool(ctx, -1); p.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p.workers)
	}
}

func TestPool_Execution(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	var executed int32
	count := 10

	for i := 0; i < count; i++ {
		pool.Submit(&mockJob{pos: i, executed: &executed})
	}

	results := pool.Wait()

	if len(results) != count {
		t.Errorf("expected %d results, got %d", count, len(results))
	}
	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d executed jobs, got %d", count, executed)
	}
}

func TestPool_ResultsInSubmissionOrder(t *testing.T) {
	pool := NewPool(context.Background(), 4)
	pool.Start()

	count := 12
	for i := 0; i < count; i++ {
		// later jobs finish first
		pool.Submit(&mockJob{pos: i, duration: time.Duration(count-i) * time.Millisecond})
	}

	results := pool.Wait()
	for i, r := range results {
		if r.Position() != i {
			t.Fatalf("expected position %d at index %d, got %d", i, i, r.Position())
		}
	}
}

// concurrencyJob tracks max concurrent executions
type concurrencyJob struct {
	start    func()
	end      func()
	duration time.Duration
}

func (j *concurrencyJob) Execute(ctx context.Context) Result {
	if j.start != nil {
		j.start()
	}
	time.Sleep(j.duration)
	if j.end != nil {
		j.end()
	}
	return &mockResult{}
}

func TestPool_Concurrency(t *testing.T) {
	workers := 10
	pool := NewPool(context.Background(), workers)
	pool.Start()

	var current int32
	var maxConcurrent int32
	var completed int32
	var mu sync.Mutex

	totalJobs := 50

	for i := 0; i < totalJobs; i++ {
		pool.Submit(&concurrencyJob{
			start: func() {
				curr := atomic.AddInt32(&current, 1)
				mu.Lock()
				if curr > maxConcurrent {
					maxConcurrent = curr
				}
				mu.Unlock()
			},
			end: func() {
				atomic.AddInt32(&current, -1)
				atomic.AddInt32(&completed, 1)
			},
			duration: 10 * time.Millisecond,
		})
	}

	pool.Wait()

	if atomic.LoadInt32(&completed) != int32(totalJobs) {
		t.Errorf("expected %d completed jobs, got %d", totalJobs, completed)
	}

	mu.Lock()
	max := maxConcurrent
	mu.Unlock()

	if max > int32(workers) {
		t.Errorf("max concurrency %d exceeded workers %d", max, workers)
	}
}

func TestPool_ErrorHandling(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	pool.Submit(&mockJob{pos: 0, shouldErr: true})
	pool.Submit(&mockJob{pos: 1})

	results := pool.Wait()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].GetError() == nil {
		t.Error("expected error on first result")
	}
	if results[1].GetError() != nil {
		t.Errorf("expected no error on second result, got %v", results[1].GetError())
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	// the queue has free slots after shutdown, so refusal must not depend on select order
	for i := 0; i < 50; i++ {
		pool := NewPool(context.Background(), 2)
		pool.Start()
		pool.Shutdown()

		done := make(chan bool)
		go func() {
			done <- pool.Submit(&mockJob{})
		}()

		select {
		case accepted := <-done:
			if accepted {
				t.Fatalf("run %d: expected Submit to refuse work after shutdown", i)
			}
		case <-time.After(1 * time.Second):
			t.Fatal("Submit after shutdown blocked")
		}
	}
}

func TestPool_ManyJobsBeforeWait(t *testing.T) {
	workers := 2
	count := workers*5 + 30

	pool := NewPool(context.Background(), workers)
	pool.Start()

	done := make(chan []Result)
	go func() {
		for i := 0; i < count; i++ {
			if !pool.Submit(&mockJob{pos: i}) {
				t.Errorf("expected job %d to be accepted", i)
			}
		}
		done <- pool.Wait()
	}()

	select {
	case results := <-done:
		if len(results) != count {
			t.Fatalf("expected %d results, got %d", count, len(results))
		}
		for i, r := range results {
			if r.Position() != i {
				t.Fatalf("expected position %d at index %d, got %d", i, i, r.Position())
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("submitting more jobs than the buffers hold stalled")
	}
}

func TestPool_WaitWithoutStart(t *testing.T) {
	pool := NewPool(context.Background(), 1)
	if results := pool.Wait(); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestPool_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(&concurrencyJob{start: func() { close(started) }, duration: 20 * time.Millisecond})
	<-started
	cancel()

	done := make(chan struct{})
	go func() {
		pool.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Wait did not return after parent cancel")
	}
}

func TestPool_Shutdown(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	started := make(chan struct{})

	pool.Submit(&concurrencyJob{
		start: func() {
			close(started)
		},
		duration: 200 * time.Millisecond,
	})

	<-started
	pool.Shutdown()

	done := make(chan struct{})
	go func() {
		for range pool.results {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Shutdown timed out")
	}
}

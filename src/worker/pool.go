package worker

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"

	"ai-anywhere/src/session"
)

// Job is one pipeline cycle. It runs on a worker goroutine, never on the
// event loop.
type Job func(ctx context.Context) (session.Result, error)

// ResultCallback is invoked on job completion (from a worker goroutine).
// The event loop should pass a closure that posts back into the event loop safely.
type ResultCallback func(res session.Result, err error)

// Pool is a fixed-size worker pool with a 1-slot input queue (strict back-pressure).
type Pool struct {
	jobs chan job
	wg   sync.WaitGroup
}

type job struct {
	ctx context.Context
	run Job
	cb  ResultCallback
}

// New creates a worker pool. Size defaults to NumCPU when size<=0. Queue is 1 slot.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{jobs: make(chan job, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				res, err := runJob(j)
				log.Printf("Worker: job completed, err=%v", err)
				j.cb(res, err)
			}
		}()
	}
}

// runJob turns a panic inside the job into an error so the callback still
// fires and the loop leaves its busy state.
func runJob(j job) (res session.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in worker job: %v", r)
			err = fmt.Errorf("worker: job panicked: %v", r)
		}
	}()
	if err := j.ctx.Err(); err != nil {
		return session.Result{}, err
	}
	return j.run(j.ctx)
}

// Submit enqueues a job if the single-slot queue is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, run Job, cb ResultCallback) bool {
	select {
	case p.jobs <- job{ctx: ctx, run: run, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}

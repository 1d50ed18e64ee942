package concurrent

import (
	"errors"
	"sync"
	"time"
)

type JobFunc[T any, G any] func(job T) G

type WorkerPool[T any, G any] struct {
	numWorkers int
	jobQueue   chan T
	results    chan G
	wg         sync.WaitGroup
}

func NewWorkerPool[T any, G any](numWorkers, jobQueueSize int) *WorkerPool[T, G] {
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan T, jobQueueSize),
		results:    make(chan G, jobQueueSize),
	}
}

func (wp *WorkerPool[any, G]) worker(id int, jobFunc JobFunc[any, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		res := jobFunc(job)
		wp.results <- res
	}
}

func (wp *WorkerPool[any, G]) Start(jobFunc JobFunc[any, G]) {
	for i := 1; i <= wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i, jobFunc)
	}
}

func (wp *WorkerPool[any, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[any, G]) AddJob(job any) {
	wp.jobQueue <- job
}

func (wp *WorkerPool[any, G]) CollectResults() chan G {
	return wp.results
}

func (wp *WorkerPool[any, G]) Close() {
	close(wp.jobQueue)
}

var ErrScheduleTimeout = errors.New("schedule error: timed out")

/*
TaskPool. goroutine pool with a bounded queue for the websocket server,
ref: https://sergey.kamardin.org/articles/million-websocket-and-go/

unlike WorkerPool, tasks are arbitrary closures and the pool can reject work
when every worker is busy for longer than the caller tolerates.
*/
type TaskPool struct {
	sem  chan struct{}
	work chan func()
}

// NewTaskPool. spawn tasks up to maxWorkers goroutines, queue holds tasks
// waiting for a free worker.
func NewTaskPool(maxWorkers, queueSize, spawn int) *TaskPool {
	if spawn <= 0 && queueSize > 0 {
		panic("dead queue configuration detected")
	}
	if spawn > maxWorkers {
		panic("spawn > max workers")
	}
	p := &TaskPool{
		sem:  make(chan struct{}, maxWorkers),
		work: make(chan func(), queueSize),
	}
	for i := 0; i < spawn; i++ {
		p.sem <- struct{}{}
		go p.worker(func() {})
	}

	return p
}

func (p *TaskPool) Schedule(task func()) error {
	return p.schedule(task, nil)
}

func (p *TaskPool) ScheduleTimeout(timeout time.Duration, task func()) error {
	return p.schedule(task, time.After(timeout))
}

func (p *TaskPool) schedule(task func(), timeout <-chan time.Time) error {
	select {
	case <-timeout:
		return ErrScheduleTimeout
	case p.work <- task:
		return nil
	case p.sem <- struct{}{}:
		go p.worker(task)
		return nil
	}
}

func (p *TaskPool) worker(task func()) {
	defer func() { <-p.sem }()

	task()

	for task := range p.work {
		task()
	}
}

func (p *TaskPool) Close() {
	close(p.work)
}

package thumbnail

import (
	"fmt"
	"sync"

	"photocat/internal/catalog"
)

// Task is one unit of thumbnail work.
type Task struct {
	Name string
	Run  func() error
}

// Pool runs tasks on a fixed number of workers over a bounded queue.
// Errors and panics are logged per task and never reach the submitter.
type Pool struct {
	mu     sync.RWMutex
	tasks  chan Task
	wg     sync.WaitGroup
	closed bool
	logger catalog.Logger
}

// NewPool starts workers goroutines consuming a queue of queueSize tasks.
func NewPool(workers, queueSize int, logger catalog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	p := &Pool{
		tasks:  make(chan Task, queueSize),
		logger: logger,
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work()
	}
	return p
}

func (p *Pool) work() {
	defer p.wg.Done()
	for task := range p.tasks {
		if err := p.run(task); err != nil {
			p.logger.Error("thumbnail task failed", "task", task.Name, "error", err)
		}
	}
}

func (p *Pool) run(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return task.Run()
}

// Submit queues task, blocking while the queue is full. Tasks submitted
// after Close are dropped.
func (p *Pool) Submit(task Task) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.logger.Warn("thumbnail pool closed, task dropped", "task", task.Name)
		return
	}
	p.tasks <- task
}

// Close stops accepting tasks and waits for queued ones to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}

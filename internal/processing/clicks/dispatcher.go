package clicks

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"go.uber.org/zap"
)

type Task func(ctx context.Context)

type DispatcherOptions struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
}

// Dispatcher runs tasks on a fixed pool of workers fed by a bounded queue.
// Submit never blocks: when the queue is full the task is dropped.
type Dispatcher struct {
	queue       chan Task
	taskTimeout time.Duration

	// mu orders Submit's send against Shutdown closing stopCh, so nothing
	// lands in the queue after the workers have drained it.
	mu      sync.RWMutex
	stopped bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	workers sync.WaitGroup

	dropped atomic.Int64
}

func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	const (
		defaultWorkers     = 4
		defaultQueueSize   = 1024
		defaultTaskTimeout = 5 * time.Second
	)

	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.TaskTimeout <= 0 {
		opts.TaskTimeout = defaultTaskTimeout
	}

	d := &Dispatcher{
		queue:       make(chan Task, opts.QueueSize),
		taskTimeout: opts.TaskTimeout,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}

	d.workers.Add(opts.Workers)
	for range opts.Workers {
		go d.loop()
	}
	go func() {
		d.workers.Wait()
		close(d.doneCh)
	}()

	return d
}

// Submit queues a task and reports whether it was accepted.
func (d *Dispatcher) Submit(task Task) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		d.dropped.Add(1)
		return false
	}

	select {
	case d.queue <- task:
		return true
	default:
		d.dropped.Add(1)
		return false
	}
}

func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Stopped reports whether Shutdown has been called.
func (d *Dispatcher) Stopped() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stopped
}

// Shutdown stops accepting work and waits for queued tasks to finish or for
// ctx to expire, whichever comes first.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.stopCh)
	}
	d.mu.Unlock()

	select {
	case <-d.doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) loop() {
	defer d.workers.Done()

	for {
		select {
		case task := <-d.queue:
			d.run(task)
		case <-d.stopCh:
			d.drain()
			return
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case task := <-d.queue:
			d.run(task)
		default:
			return
		}
	}
}

func (d *Dispatcher) run(task Task) {
	ctx, cancel := context.WithTimeout(context.Background(), d.taskTimeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("click task panicked", zap.String("panic", fmt.Sprint(rec)))
		}
	}()

	task(ctx)
}

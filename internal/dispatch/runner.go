// Package dispatch provides the apply context: a single goroutine that runs
// every task touching outfit state, one at a time, in the order posted.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// DefaultQueueSize bounds the number of pending tasks.
const DefaultQueueSize = 64

var (
	ErrStopped   = errors.New("runner stopped")
	ErrQueueFull = errors.New("runner queue full")
)

type Runner struct {
	tasks  chan func()
	done   chan struct{}
	once   sync.Once
	logger *zap.Logger
}

func NewRunner(queueSize int, logger *zap.Logger) *Runner {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		tasks:  make(chan func(), queueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Post enqueues task without blocking. It reports false when the queue is
// full or the runner has stopped.
func (r *Runner) Post(task func()) bool {
	select {
	case <-r.done:
		return false
	default:
	}
	select {
	case r.tasks <- task:
		return true
	default:
		return false
	}
}

// Do runs task on the runner and waits for its result.
func (r *Runner) Do(ctx context.Context, task func() error) error {
	result := make(chan error, 1)
	wrapped := func() {
		defer func() {
			if rec := recover(); rec != nil {
				result <- fmt.Errorf("task panicked: %v", rec)
			}
		}()
		result <- task()
	}

	select {
	case <-r.done:
		return ErrStopped
	case r.tasks <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes tasks until ctx is done. Tasks still queued at that point are
// dropped.
func (r *Runner) Run(ctx context.Context) error {
	defer r.once.Do(func() { close(r.done) })
	for {
		select {
		case <-ctx.Done():
			return nil
		case task := <-r.tasks:
			r.run(task)
		}
	}
}

func (r *Runner) run(task func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("task panicked", zap.Any("panic", rec), zap.Stack("stack"))
		}
	}()
	task()
}

// Done is closed once Run has returned.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

package transfer

import (
	"context"

	"github.com/rise-and-shine/filexfer/filestate"
)

// Status is the state of a Task.
type Status int

const (
	// StatusRunning means the task has not finished yet.
	StatusRunning Status = iota
	// StatusSucceeded means the task returned a value.
	StatusSucceeded
	// StatusFailed means the task returned an error other than cancellation.
	StatusFailed
	// StatusCancelled means the task observed cancellation.
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Task is a transfer running in the background. It reaches exactly one
// terminal status: succeeded, failed or cancelled.
type Task[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc

	result T
	err    error
}

func runTask[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Task[T] {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task[T]{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go func() {
		defer close(t.done)
		defer cancel()
		t.result, t.err = fn(ctx)
	}()

	return t
}

// Done is closed when the task reaches a terminal status.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Cancel requests cancellation. It does not wait for the task to stop.
func (t *Task[T]) Cancel() {
	t.cancel()
}

// Wait blocks until the task finishes and returns its outcome.
func (t *Task[T]) Wait() (T, error) {
	<-t.done
	return t.result, t.err
}

// Status returns the current status without blocking.
func (t *Task[T]) Status() Status {
	select {
	case <-t.done:
	default:
		return StatusRunning
	}

	switch {
	case t.err == nil:
		return StatusSucceeded
	case IsCancelled(t.err):
		return StatusCancelled
	default:
		return StatusFailed
	}
}

// SaveAsync runs Save in the background.
func (c *Controller) SaveAsync(
	ctx context.Context,
	state filestate.State,
	payload Payload,
	progress ProgressFunc,
) *Task[filestate.State] {
	return runTask(ctx, func(ctx context.Context) (filestate.State, error) {
		return c.Save(ctx, state, payload, progress)
	})
}

// FetchAsync runs Fetch in the background.
func (c *Controller) FetchAsync(ctx context.Context, state filestate.State, progress ProgressFunc) *Task[string] {
	return runTask(ctx, func(ctx context.Context) (string, error) {
		return c.Fetch(ctx, state, progress)
	})
}

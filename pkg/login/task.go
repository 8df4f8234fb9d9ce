package login

import (
	"context"

	"github.com/google/uuid"
)

// Task is a handle to one background unit of work. The HTTP layer
// returns before the task completes; its outcome is recorded on the
// session and mirrored here for callers that want to wait.
type Task struct {
	ID   string
	Name string

	done chan struct{}
	err  error
}

func newTask(name string) *Task {
	return &Task{
		ID:   uuid.NewString(),
		Name: name,
		done: make(chan struct{}),
	}
}

// Done is closed when the task finishes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the task's outcome. Only valid after Done is closed.
func (t *Task) Err() error {
	return t.err
}

// Wait blocks until the task finishes or the context is cancelled.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Task) finish(err error) {
	t.err = err
	close(t.done)
}

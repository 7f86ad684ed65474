package controller

import (
	"context"
	"sync"

	"github.com/goliatone/go-formsync/pkg/transport"
)

// Task is the handle of one asynchronous operation.
type Task struct {
	op     transport.Operation
	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	once     sync.Once
	envelope *transport.Envelope
	err      error
	followUp *Task
}

func newTask(ctx context.Context, op transport.Operation) *Task {
	if ctx == nil {
		ctx = context.Background()
	}
	inner, cancel := context.WithCancel(ctx)
	return &Task{
		op:     op,
		parent: ctx,
		ctx:    inner,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

func completedTask(op transport.Operation, env *transport.Envelope, err error) *Task {
	t := newTask(context.Background(), op)
	t.finish(env, err)
	return t
}

// Op names the operation.
func (t *Task) Op() transport.Operation { return t.op }

// Done is closed once the task finished, including any follow-up refresh.
func (t *Task) Done() <-chan struct{} { return t.done }

// Cancel aborts the task. A cancelled task applies nothing.
func (t *Task) Cancel() { t.cancel() }

// Wait blocks until the task finished and returns its outcome.
func (t *Task) Wait() (*transport.Envelope, error) {
	<-t.done
	return t.envelope, t.err
}

// Err returns the outcome error without blocking; nil while running.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// FollowUp returns the refresh started after a successful submit or delete,
// or nil.
func (t *Task) FollowUp() *Task {
	<-t.done
	return t.followUp
}

func (t *Task) finish(env *transport.Envelope, err error) {
	t.once.Do(func() {
		t.envelope = env
		t.err = err
		t.cancel()
		close(t.done)
	})
}

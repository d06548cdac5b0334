package watcher

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"autorefresh/internal/logging"
)

const defaultLoopQueueSize = 64

// Task is a pending scheduled callback.
type Task interface {
	// Cancel prevents the callback from running. It reports whether the
	// callback was still pending; cancelling twice is harmless.
	Cancel() bool
}

// Dispatcher runs callbacks one at a time, never concurrently with each other.
type Dispatcher interface {
	Schedule(delay time.Duration, fn func()) Task
}

// EventLoop is a Dispatcher backed by a single goroutine.
type EventLoop struct {
	queue     chan func()
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	logger    *logging.Logger
}

func NewEventLoop(logger *logging.Logger) *EventLoop {
	loop := &EventLoop{
		queue:   make(chan func(), defaultLoopQueueSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		logger:  logger,
	}
	go loop.run()
	return loop
}

func (loop *EventLoop) run() {
	defer close(loop.stopped)
	for {
		select {
		case fn := <-loop.queue:
			loop.invoke(fn)
		case <-loop.done:
			return
		}
	}
}

func (loop *EventLoop) invoke(fn func()) {
	defer func() {
		if recovered := recover(); recovered != nil && loop.logger != nil {
			loop.logger.Error("event loop callback panicked", map[string]string{
				logging.FieldError: fmt.Sprint(recovered),
			})
		}
	}()
	fn()
}

// Post queues fn without waiting for it. It reports false once the loop is closed.
func (loop *EventLoop) Post(fn func()) bool {
	if loop == nil || fn == nil {
		return false
	}
	select {
	case <-loop.done:
		return false
	default:
	}
	select {
	case loop.queue <- fn:
		return true
	case <-loop.done:
		return false
	}
}

// Do runs fn on the loop and waits for it. It must not be called from a
// callback already running on the loop.
func (loop *EventLoop) Do(fn func()) error {
	finished := make(chan struct{})
	if !loop.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrLoopClosed
	}
	select {
	case <-finished:
		return nil
	case <-loop.stopped:
		select {
		case <-finished:
			return nil
		default:
			return ErrLoopClosed
		}
	}
}

// Schedule posts fn to the loop after delay.
func (loop *EventLoop) Schedule(delay time.Duration, fn func()) Task {
	task := &loopTask{}
	task.timer = time.AfterFunc(delay, func() {
		loop.Post(func() {
			if task.state.CompareAndSwap(taskPending, taskFired) {
				fn()
			}
		})
	})
	return task
}

// Close stops the loop. Queued callbacks that have not started are dropped.
func (loop *EventLoop) Close() {
	if loop == nil {
		return
	}
	loop.closeOnce.Do(func() {
		close(loop.done)
	})
	<-loop.stopped
}

const (
	taskPending int32 = iota
	taskFired
	taskCancelled
)

type loopTask struct {
	timer *time.Timer
	state atomic.Int32
}

func (task *loopTask) Cancel() bool {
	if task == nil {
		return false
	}
	if task.timer != nil {
		task.timer.Stop()
	}
	return task.state.CompareAndSwap(taskPending, taskCancelled)
}

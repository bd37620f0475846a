// Package sched provides the serialized execution context that every document
// mutation runs on.
package sched

import (
	"context"
	"fmt"
	"sync"
)

// Executor runs posted tasks one at a time, in the order they were posted.
type Executor interface {
	Post(task func())
}

// Serial is an Executor backed by an unbounded FIFO queue drained by Run.
// Post never blocks, so it may be called from transport goroutines and from
// tasks running on the queue itself.
type Serial struct {
	mu     sync.Mutex
	queue  []func()
	signal chan struct{}
}

// NewSerial returns an idle Serial executor.
func NewSerial() *Serial {
	return &Serial{signal: make(chan struct{}, 1)}
}

// Post enqueues task.
func (s *Serial) Post(task func()) {
	s.mu.Lock()
	s.queue = append(s.queue, task)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// Run drains the queue until ctx is cancelled. Tasks posted while a task runs
// are picked up in the next turn.
func (s *Serial) Run(ctx context.Context) error {
	for {
		for _, task := range s.take() {
			if ctx.Err() != nil {
				break
			}
			task()
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("executor stopped: %w", ctx.Err())
		case <-s.signal:
		}
	}
}

// take removes and returns every queued task.
func (s *Serial) take() []func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.queue
	s.queue = nil
	return tasks
}

// Manual is an Executor that runs tasks only when asked. It is meant for
// tests and single-threaded tools.
type Manual struct {
	queue []func()
}

// Post enqueues task.
func (m *Manual) Post(task func()) {
	m.queue = append(m.queue, task)
}

// Pending returns the number of queued tasks.
func (m *Manual) Pending() int {
	return len(m.queue)
}

// Drain runs queued tasks, including ones they post, until the queue is empty.
// It returns the number of tasks run.
func (m *Manual) Drain() int {
	n := 0
	for len(m.queue) > 0 {
		task := m.queue[0]
		m.queue = m.queue[1:]
		task()
		n++
	}
	return n
}

package engine

import "sync"

// EventQueue is a FIFO of events with the NextEvent, WaitNextEvent and
// EventHandled semantics of Engine. It is safe for concurrent use.
type EventQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	events []Event
	closed bool
}

func NewEventQueue() *EventQueue {
	q := &EventQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *EventQueue) Push(ev Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.events = append(q.events, ev)
	q.cond.Broadcast()
}

func (q *EventQueue) Next() Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return nil
	}
	return q.events[0]
}

// Wait blocks until the queue is non-empty and returns its head, or returns
// nil once the queue is closed.
func (q *EventQueue) Wait() Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.events) == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return nil
	}
	return q.events[0]
}

func (q *EventQueue) Handled() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return
	}
	q.events[0] = nil
	q.events = q.events[1:]
}

func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

func (q *EventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.events = nil
	q.cond.Broadcast()
}

// ABOUTME: Per-session FIFO queue of requests awaiting a human decision
// ABOUTME: Peek is stable: a peeked head is what the next Dequeue returns

// Package queue orders pending request events per session so the operator
// always has one deterministic "next thing to decide", even when an agent
// fires several model calls concurrently. Sessions are fully independent.
package queue

import (
	"sync"

	"github.com/kevinaud/adk-sim-plugin/proto/simv1"
)

// RequestQueue holds not-yet-decided request events, FIFO per session.
// Queues are created lazily on first Enqueue.
type RequestQueue struct {
	mu     sync.Mutex
	queues map[string][]*simv1.SessionEvent
	// peeked holds a head that Peek has handed out but Dequeue has not yet
	// consumed, so peek-then-dequeue never shows two callers different heads.
	peeked map[string]*simv1.SessionEvent
}

// NewRequestQueue creates an empty queue set.
func NewRequestQueue() *RequestQueue {
	return &RequestQueue{
		queues: make(map[string][]*simv1.SessionEvent),
		peeked: make(map[string]*simv1.SessionEvent),
	}
}

// Enqueue appends the event to its session's queue.
func (q *RequestQueue) Enqueue(event *simv1.SessionEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queues[event.SessionId] = append(q.queues[event.SessionId], event)
}

// Dequeue removes and returns the session's head. A previously peeked head
// is returned (and cleared) first. ok is false when the session has no
// pending requests.
func (q *RequestQueue) Dequeue(sessionID string) (*simv1.SessionEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if head, ok := q.peeked[sessionID]; ok {
		delete(q.peeked, sessionID)
		return head, true
	}
	return q.popLocked(sessionID)
}

// Peek returns the session's head without consuming it. Repeated peeks
// return the same event until a Dequeue consumes it.
func (q *RequestQueue) Peek(sessionID string) (*simv1.SessionEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if head, ok := q.peeked[sessionID]; ok {
		return head, true
	}
	head, ok := q.popLocked(sessionID)
	if !ok {
		return nil, false
	}
	q.peeked[sessionID] = head
	return head, true
}

// IsEmpty reports whether the session has no pending requests, peeked or queued.
func (q *RequestQueue) IsEmpty(sessionID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.peeked[sessionID]; ok {
		return false
	}
	return len(q.queues[sessionID]) == 0
}

// Len returns the number of pending requests for the session.
func (q *RequestQueue) Len(sessionID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.queues[sessionID])
	if _, ok := q.peeked[sessionID]; ok {
		n++
	}
	return n
}

// popLocked removes and returns the head of the session's queue, cleaning
// up the map entry when the queue drains. Caller holds q.mu.
func (q *RequestQueue) popLocked(sessionID string) (*simv1.SessionEvent, bool) {
	queue := q.queues[sessionID]
	if len(queue) == 0 {
		return nil, false
	}
	head := queue[0]
	if len(queue) == 1 {
		delete(q.queues, sessionID)
	} else {
		q.queues[sessionID] = queue[1:]
	}
	return head, true
}

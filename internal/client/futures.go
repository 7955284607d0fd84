// ABOUTME: Registry of in-flight turns awaiting a human decision
// ABOUTME: Resolve is idempotent so replayed or duplicated events are harmless

package client

import (
	"fmt"
	"sync"

	"github.com/kevinaud/adk-sim-plugin/proto/simv1"
)

// FutureRegistry correlates decision events with the blocked intercept calls
// that are waiting for them, keyed by turn id.
type FutureRegistry struct {
	mu      sync.Mutex
	pending map[string]chan *simv1.GenericLlmResponse
}

// NewFutureRegistry creates an empty registry.
func NewFutureRegistry() *FutureRegistry {
	return &FutureRegistry{
		pending: make(map[string]chan *simv1.GenericLlmResponse),
	}
}

// Create registers a pending turn and returns the channel its decision will
// arrive on. The channel yields exactly one value, or closes on CancelAll.
// A duplicate turn id is an error.
func (r *FutureRegistry) Create(turnID string) (<-chan *simv1.GenericLlmResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pending[turnID]; exists {
		return nil, fmt.Errorf("turn %s already pending", turnID)
	}
	ch := make(chan *simv1.GenericLlmResponse, 1)
	r.pending[turnID] = ch
	return ch, nil
}

// Resolve delivers the decision for a turn. Returns true the first time;
// false for unknown or already-resolved turns, which makes it safe against
// history replay after a reconnect.
func (r *FutureRegistry) Resolve(turnID string, resp *simv1.GenericLlmResponse) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.pending[turnID]
	if !ok {
		return false
	}
	delete(r.pending, turnID)
	ch <- resp
	close(ch)
	return true
}

// cancel closes one pending future without delivering a decision.
func (r *FutureRegistry) cancel(turnID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ch, ok := r.pending[turnID]; ok {
		close(ch)
		delete(r.pending, turnID)
	}
}

// CancelAll closes every pending channel and returns how many were pending.
// Waiters see a closed channel and treat it as cancellation.
func (r *FutureRegistry) CancelAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.pending)
	for turnID, ch := range r.pending {
		close(ch)
		delete(r.pending, turnID)
	}
	return n
}

// Len returns the number of pending turns.
func (r *FutureRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// HasPending reports whether the turn is still awaiting a decision.
func (r *FutureRegistry) HasPending(turnID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[turnID]
	return ok
}

// ABOUTME: Per-session fan-out pub/sub with atomic history-replay on subscribe
// ABOUTME: A per-session lock covers history fetch + registration so no event is lost or doubled

// Package broadcast delivers session events to any number of live observers.
// A new subscriber first receives the session's full history, then one
// synthetic HistoryComplete marker, then live events in broadcast order.
package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/kevinaud/adk-sim-plugin/proto/simv1"
)

// liveBufferSize is the extra channel capacity beyond preloaded history,
// matching the fan-out hub pattern used elsewhere (64 events).
const liveBufferSize = 64

// HistoryFunc fetches the events a fresh subscriber must replay, normally
// the store's EventsBySession.
type HistoryFunc func(ctx context.Context) ([]*simv1.SessionEvent, error)

// topic is the subscriber set for one session. Its mutex serializes history
// fetch + registration against broadcasts: an event broadcast while a
// subscriber is replaying history blocks until the channel is registered,
// so the subscriber sees it live instead of missing it.
type topic struct {
	mu   sync.Mutex
	subs map[string]chan *simv1.SessionEvent
	// pending counts in-flight Subscribe calls that hold a reference to
	// this topic but have not registered yet; cleanup skips such topics.
	pending int
	// closed is set by Close so an in-flight Subscribe cannot register on
	// an orphaned topic after shutdown.
	closed bool
}

// EventBroadcaster provides per-session pub/sub. Events are not queued for
// subscribers that do not exist yet; late joiners get them via history replay.
type EventBroadcaster struct {
	mu     sync.RWMutex
	topics map[string]*topic
	closed bool
	logger *slog.Logger
}

// NewEventBroadcaster creates a broadcaster. Pass nil logger for default.
func NewEventBroadcaster(logger *slog.Logger) *EventBroadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventBroadcaster{
		topics: make(map[string]*topic),
		logger: logger.With("component", "broadcaster"),
	}
}

// Subscribe registers a subscriber for the session and returns a channel
// that first yields the history reported by historyFn, then one
// HistoryComplete marker, then live events until the subscriber detaches.
// The subscription is cleaned up when ctx is cancelled.
//
// The session lock is held across the history fetch and the registration:
// that is the invariant that makes the replay/live boundary gapless and
// duplicate-free.
func (b *EventBroadcaster) Subscribe(ctx context.Context, sessionID string, historyFn HistoryFunc) (<-chan *simv1.SessionEvent, string, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, "", fmt.Errorf("broadcaster is closed")
	}
	tp, ok := b.topics[sessionID]
	if !ok {
		tp = &topic{subs: make(map[string]chan *simv1.SessionEvent)}
		b.topics[sessionID] = tp
	}
	tp.pending++
	b.mu.Unlock()

	tp.mu.Lock()
	tp.pending--
	if tp.closed {
		tp.mu.Unlock()
		return nil, "", fmt.Errorf("broadcaster is closed")
	}

	history, err := historyFn(ctx)
	if err != nil {
		tp.mu.Unlock()
		b.removeTopicIfEmpty(sessionID)
		return nil, "", fmt.Errorf("fetching history: %w", err)
	}

	subID := uuid.New().String()
	ch := make(chan *simv1.SessionEvent, len(history)+1+liveBufferSize)
	for _, ev := range history {
		ch <- ev
	}
	ch <- &simv1.SessionEvent{
		SessionId: sessionID,
		Payload: &simv1.HistoryCompletePayload{
			HistoryComplete: &simv1.HistoryComplete{EventCount: int32(len(history))},
		},
	}
	tp.subs[subID] = ch
	tp.mu.Unlock()

	b.logger.Debug("subscriber added",
		"session_id", sessionID,
		"sub_id", subID,
		"history_events", len(history))

	go func() {
		<-ctx.Done()
		b.Unsubscribe(sessionID, subID)
	}()

	return ch, subID, nil
}

// Broadcast delivers the event to every current subscriber of the session.
// A no-op when no one is subscribed. Sends are non-blocking: events are
// dropped for subscribers whose channels are full.
func (b *EventBroadcaster) Broadcast(sessionID string, event *simv1.SessionEvent) {
	b.mu.RLock()
	tp, ok := b.topics[sessionID]
	b.mu.RUnlock()
	if !ok {
		return
	}

	tp.mu.Lock()
	defer tp.mu.Unlock()
	for subID, ch := range tp.subs {
		select {
		case ch <- event:
		default:
			b.logger.Warn("dropped event for slow subscriber",
				"session_id", sessionID,
				"sub_id", subID,
				"event_id", event.EventId)
		}
	}
}

// Unsubscribe removes a subscription and closes its channel. The last
// subscriber's departure removes the session's topic entirely.
func (b *EventBroadcaster) Unsubscribe(sessionID, subID string) {
	b.mu.RLock()
	tp, ok := b.topics[sessionID]
	b.mu.RUnlock()
	if !ok {
		return
	}

	tp.mu.Lock()
	ch, exists := tp.subs[subID]
	if exists {
		delete(tp.subs, subID)
		close(ch)
	}
	tp.mu.Unlock()

	if exists {
		b.logger.Debug("subscriber removed", "session_id", sessionID, "sub_id", subID)
		b.removeTopicIfEmpty(sessionID)
	}
}

// removeTopicIfEmpty deletes the session's topic when no subscribers remain
// and no Subscribe call is in flight. Holds the map lock and the topic lock
// together so a racing Subscribe either sees the topic before deletion
// (pending > 0 keeps it alive) or creates a fresh one afterwards.
func (b *EventBroadcaster) removeTopicIfEmpty(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tp, ok := b.topics[sessionID]
	if !ok {
		return
	}
	tp.mu.Lock()
	empty := len(tp.subs) == 0 && tp.pending == 0
	tp.mu.Unlock()
	if empty {
		delete(b.topics, sessionID)
	}
}

// SubscriberCount returns the number of live subscribers for the session.
func (b *EventBroadcaster) SubscriberCount(sessionID string) int {
	b.mu.RLock()
	tp, ok := b.topics[sessionID]
	b.mu.RUnlock()
	if !ok {
		return 0
	}
	tp.mu.Lock()
	defer tp.mu.Unlock()
	return len(tp.subs)
}

// Close shuts down the broadcaster and closes all subscriber channels.
// Subsequent Subscribe calls fail; Broadcast becomes a no-op.
func (b *EventBroadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for sessionID, tp := range b.topics {
		tp.mu.Lock()
		tp.closed = true
		for subID, ch := range tp.subs {
			close(ch)
			delete(tp.subs, subID)
		}
		tp.mu.Unlock()
		delete(b.topics, sessionID)
	}

	b.logger.Debug("broadcaster closed")
}

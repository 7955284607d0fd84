// ABOUTME: Tests for atomic history-replay subscribe and per-session fan-out
// ABOUTME: Covers the replay/live boundary race, ordering, cleanup, concurrency

package broadcast

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinaud/adk-sim-plugin/proto/simv1"
)

func makeEvent(eventID, sessionID string) *simv1.SessionEvent {
	return &simv1.SessionEvent{
		EventId:   eventID,
		SessionId: sessionID,
		TurnId:    "turn-" + eventID,
		Payload:   &simv1.LlmRequestPayload{LlmRequest: &simv1.GenericLlmRequest{}},
	}
}

func noHistory(context.Context) ([]*simv1.SessionEvent, error) {
	return nil, nil
}

func recvOne(t *testing.T, ch <-chan *simv1.SessionEvent) *simv1.SessionEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed unexpectedly")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestBroadcaster_ReplayThenMarkerThenLive(t *testing.T) {
	b := NewEventBroadcaster(nil)
	defer b.Close()

	history := []*simv1.SessionEvent{
		makeEvent("h1", "s1"),
		makeEvent("h2", "s1"),
		makeEvent("h3", "s1"),
	}
	ch, _, err := b.Subscribe(t.Context(), "s1", func(context.Context) ([]*simv1.SessionEvent, error) {
		return history, nil
	})
	require.NoError(t, err)

	for _, want := range []string{"h1", "h2", "h3"} {
		assert.Equal(t, want, recvOne(t, ch).EventId)
	}

	marker := recvOne(t, ch)
	require.NotNil(t, marker.GetHistoryComplete(), "marker must follow history")
	assert.Equal(t, int32(3), marker.GetHistoryComplete().EventCount)

	b.Broadcast("s1", makeEvent("live1", "s1"))
	assert.Equal(t, "live1", recvOne(t, ch).EventId)
}

func TestBroadcaster_EmptyHistoryStillEmitsMarker(t *testing.T) {
	b := NewEventBroadcaster(nil)
	defer b.Close()

	ch, _, err := b.Subscribe(t.Context(), "s1", noHistory)
	require.NoError(t, err)

	marker := recvOne(t, ch)
	require.NotNil(t, marker.GetHistoryComplete())
	assert.Equal(t, int32(0), marker.GetHistoryComplete().EventCount)
}

func TestBroadcaster_BroadcastDuringHistoryFetchIsNotLost(t *testing.T) {
	// The hard case: an event is broadcast while a new subscriber is still
	// fetching history. The session lock must hold that broadcast back
	// until the channel is registered, so the subscriber sees it exactly
	// once, after the marker.
	b := NewEventBroadcaster(nil)
	defer b.Close()

	fetching := make(chan struct{})
	release := make(chan struct{})
	history := []*simv1.SessionEvent{makeEvent("h1", "s1")}

	type subResult struct {
		ch  <-chan *simv1.SessionEvent
		err error
	}
	done := make(chan subResult, 1)
	go func() {
		ch, _, err := b.Subscribe(t.Context(), "s1", func(context.Context) ([]*simv1.SessionEvent, error) {
			close(fetching)
			<-release
			return history, nil
		})
		done <- subResult{ch, err}
	}()

	<-fetching
	// Broadcast while the subscriber is mid-fetch; this blocks on the
	// session lock until registration completes.
	go b.Broadcast("s1", makeEvent("racing", "s1"))
	time.Sleep(20 * time.Millisecond)
	close(release)

	res := <-done
	require.NoError(t, res.err)

	assert.Equal(t, "h1", recvOne(t, res.ch).EventId)
	require.NotNil(t, recvOne(t, res.ch).GetHistoryComplete())
	assert.Equal(t, "racing", recvOne(t, res.ch).EventId, "racing broadcast must arrive live, exactly once")

	select {
	case ev := <-res.ch:
		t.Fatalf("unexpected duplicate event %q", ev.EventId)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroadcaster_OrderingPreservedPerSession(t *testing.T) {
	b := NewEventBroadcaster(nil)
	defer b.Close()

	ch, _, err := b.Subscribe(t.Context(), "s1", noHistory)
	require.NoError(t, err)
	recvOne(t, ch) // marker

	for i := range 20 {
		b.Broadcast("s1", makeEvent(fmt.Sprintf("e%02d", i), "s1"))
	}
	for i := range 20 {
		assert.Equal(t, fmt.Sprintf("e%02d", i), recvOne(t, ch).EventId)
	}
}

func TestBroadcaster_FanOutDeliversToAllSubscribers(t *testing.T) {
	b := NewEventBroadcaster(nil)
	defer b.Close()

	var chans []<-chan *simv1.SessionEvent
	for range 3 {
		ch, _, err := b.Subscribe(t.Context(), "s1", noHistory)
		require.NoError(t, err)
		recvOne(t, ch) // marker
		chans = append(chans, ch)
	}

	b.Broadcast("s1", makeEvent("e1", "s1"))
	for i, ch := range chans {
		assert.Equal(t, "e1", recvOne(t, ch).EventId, "subscriber %d", i)
	}
}

func TestBroadcaster_SessionsAreIsolated(t *testing.T) {
	b := NewEventBroadcaster(nil)
	defer b.Close()

	ch1, _, err := b.Subscribe(t.Context(), "s1", noHistory)
	require.NoError(t, err)
	ch2, _, err := b.Subscribe(t.Context(), "s2", noHistory)
	require.NoError(t, err)
	recvOne(t, ch1)
	recvOne(t, ch2)

	b.Broadcast("s1", makeEvent("e1", "s1"))

	assert.Equal(t, "e1", recvOne(t, ch1).EventId)
	select {
	case ev := <-ch2:
		t.Fatalf("session s2 received s1 event %q", ev.EventId)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroadcaster_BroadcastWithNoSubscribersIsNoOp(t *testing.T) {
	b := NewEventBroadcaster(nil)
	defer b.Close()

	// Must not panic or queue anything.
	b.Broadcast("nobody", makeEvent("e1", "nobody"))
	assert.Equal(t, 0, b.SubscriberCount("nobody"))
}

func TestBroadcaster_UnsubscribeClosesChannelAndCleansUp(t *testing.T) {
	b := NewEventBroadcaster(nil)
	defer b.Close()

	ch, subID, err := b.Subscribe(t.Context(), "s1", noHistory)
	require.NoError(t, err)
	recvOne(t, ch)
	require.Equal(t, 1, b.SubscriberCount("s1"))

	b.Unsubscribe("s1", subID)

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed after unsubscribe")
	case <-time.After(time.Second):
		t.Fatal("channel not closed after unsubscribe")
	}
	assert.Equal(t, 0, b.SubscriberCount("s1"))

	// Broadcasting after the last detach must not panic.
	b.Broadcast("s1", makeEvent("e1", "s1"))
}

func TestBroadcaster_ContextCancellationUnsubscribes(t *testing.T) {
	b := NewEventBroadcaster(nil)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, _, err := b.Subscribe(ctx, "s1", noHistory)
	require.NoError(t, err)
	recvOne(t, ch)

	cancel()

	require.Eventually(t, func() bool {
		return b.SubscriberCount("s1") == 0
	}, time.Second, 10*time.Millisecond, "cancellation must promptly unregister the subscriber")
}

func TestBroadcaster_HistoryErrorPropagates(t *testing.T) {
	b := NewEventBroadcaster(nil)
	defer b.Close()

	_, _, err := b.Subscribe(t.Context(), "s1", func(context.Context) ([]*simv1.SessionEvent, error) {
		return nil, fmt.Errorf("store exploded")
	})
	require.Error(t, err)
	assert.Equal(t, 0, b.SubscriberCount("s1"))
}

func TestBroadcaster_SubscribeAfterCloseFails(t *testing.T) {
	b := NewEventBroadcaster(nil)
	b.Close()

	_, _, err := b.Subscribe(t.Context(), "s1", noHistory)
	assert.Error(t, err)
}

func TestBroadcaster_ConcurrentSubscribeAndBroadcast(t *testing.T) {
	b := NewEventBroadcaster(nil)
	defer b.Close()

	var wg sync.WaitGroup
	ctx := t.Context()

	for range 10 {
		wg.Go(func() {
			ch, _, err := b.Subscribe(ctx, "s1", noHistory)
			if err != nil {
				return
			}
			for range 5 {
				select {
				case <-ch:
				case <-time.After(500 * time.Millisecond):
					return
				}
			}
		})
	}

	for range 10 {
		wg.Go(func() {
			for i := range 10 {
				b.Broadcast("s1", makeEvent(fmt.Sprintf("c%d", i), "s1"))
			}
		})
	}

	wg.Wait()
	// Passing means no deadlock and no panic under contention.
}

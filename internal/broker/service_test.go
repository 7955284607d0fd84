// ABOUTME: Tests for the SimulatorService RPC implementation
// ABOUTME: Covers the full request/decision round trip, queue behavior, and error codes

package broker

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/kevinaud/adk-sim-plugin/internal/broadcast"
	"github.com/kevinaud/adk-sim-plugin/internal/queue"
	"github.com/kevinaud/adk-sim-plugin/internal/session"
	"github.com/kevinaud/adk-sim-plugin/internal/store"
	"github.com/kevinaud/adk-sim-plugin/proto/simv1"
)

type testService struct {
	svc   *Service
	queue *queue.RequestQueue
}

func newTestService(t *testing.T) *testService {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	logger := slog.Default()
	sessions := session.NewManager(s, logger)
	q := queue.NewRequestQueue()
	b := broadcast.NewEventBroadcaster(logger)
	t.Cleanup(b.Close)

	return &testService{
		svc:   NewService(sessions, s, q, b, nil, nil, logger),
		queue: q,
	}
}

// fakeSubscribeStream implements simv1.SimulatorService_SubscribeServer for
// in-process testing.
type fakeSubscribeStream struct {
	grpc.ServerStream
	ctx    context.Context
	events chan *simv1.SessionEvent
}

func newFakeStream(ctx context.Context) *fakeSubscribeStream {
	return &fakeSubscribeStream{ctx: ctx, events: make(chan *simv1.SessionEvent, 128)}
}

func (f *fakeSubscribeStream) Context() context.Context { return f.ctx }

func (f *fakeSubscribeStream) Send(resp *simv1.SubscribeResponse) error {
	f.events <- resp.Event
	return nil
}

func (f *fakeSubscribeStream) SetHeader(metadata.MD) error  { return nil }
func (f *fakeSubscribeStream) SendHeader(metadata.MD) error { return nil }
func (f *fakeSubscribeStream) SetTrailer(metadata.MD)       {}
func (f *fakeSubscribeStream) SendMsg(any) error            { return nil }
func (f *fakeSubscribeStream) RecvMsg(any) error            { return nil }

func recvEvent(t *testing.T, ch <-chan *simv1.SessionEvent) *simv1.SessionEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for streamed event")
		return nil
	}
}

func createSession(t *testing.T, ts *testService) string {
	t.Helper()
	resp, err := ts.svc.CreateSession(t.Context(), &simv1.CreateSessionRequest{Description: "test run"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Session.Id)
	return resp.Session.Id
}

func TestService_CreateAndListSessions(t *testing.T) {
	ts := newTestService(t)

	resp, err := ts.svc.CreateSession(t.Context(), &simv1.CreateSessionRequest{Description: "first"})
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Session.Description)
	assert.Equal(t, simv1.SessionStatusActive, resp.Session.Status)
	assert.NotNil(t, resp.Session.CreatedAt)

	list, err := ts.svc.ListSessions(t.Context(), &simv1.ListSessionsRequest{})
	require.NoError(t, err)
	require.Len(t, list.Sessions, 1)
	assert.Equal(t, resp.Session.Id, list.Sessions[0].Id)
}

func TestService_SubmitRequestEnqueuesAndPersists(t *testing.T) {
	ts := newTestService(t)
	sessionID := createSession(t, ts)

	resp, err := ts.svc.SubmitRequest(t.Context(), &simv1.SubmitRequestRequest{
		SessionId: sessionID,
		TurnId:    "turn-1",
		AgentName: "researcher",
		Request:   &simv1.GenericLlmRequest{Model: "gemini-2.0-flash"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.EventId)

	head, ok := ts.queue.Peek(sessionID)
	require.True(t, ok)
	assert.Equal(t, "turn-1", head.TurnId)
	assert.Equal(t, "researcher", head.AgentName)
}

func TestService_FullRoundTrip(t *testing.T) {
	ts := newTestService(t)
	sessionID := createSession(t, ts)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	stream := newFakeStream(ctx)

	streamDone := make(chan error, 1)
	go func() {
		streamDone <- ts.svc.Subscribe(&simv1.SubscribeRequest{SessionId: sessionID, ClientId: "ui"}, stream)
	}()

	marker := recvEvent(t, stream.events)
	require.NotNil(t, marker.GetHistoryComplete())
	assert.Equal(t, int32(0), marker.GetHistoryComplete().EventCount)

	_, err := ts.svc.SubmitRequest(t.Context(), &simv1.SubmitRequestRequest{
		SessionId: sessionID,
		TurnId:    "turn-1",
		AgentName: "researcher",
		Request:   &simv1.GenericLlmRequest{Model: "gemini-2.0-flash"},
	})
	require.NoError(t, err)

	reqEvent := recvEvent(t, stream.events)
	require.NotNil(t, reqEvent.GetLlmRequest())
	assert.Equal(t, "turn-1", reqEvent.TurnId)
	assert.Equal(t, "researcher", reqEvent.AgentName)

	_, err = ts.svc.SubmitDecision(t.Context(), &simv1.SubmitDecisionRequest{
		SessionId: sessionID,
		TurnId:    "turn-1",
		Response:  simv1.TextResponse("approved, proceed"),
	})
	require.NoError(t, err)

	decEvent := recvEvent(t, stream.events)
	require.NotNil(t, decEvent.GetLlmResponse())
	assert.Equal(t, "turn-1", decEvent.TurnId)
	assert.Empty(t, decEvent.AgentName, "decisions come from the UI, not an agent")

	assert.True(t, ts.queue.IsEmpty(sessionID), "decision must consume the queue head")

	cancel()
	require.NoError(t, <-streamDone)
}

func TestService_SubscribeReplaysHistory(t *testing.T) {
	ts := newTestService(t)
	sessionID := createSession(t, ts)

	_, err := ts.svc.SubmitRequest(t.Context(), &simv1.SubmitRequestRequest{
		SessionId: sessionID,
		TurnId:    "turn-1",
		AgentName: "planner",
		Request:   &simv1.GenericLlmRequest{},
	})
	require.NoError(t, err)
	_, err = ts.svc.SubmitDecision(t.Context(), &simv1.SubmitDecisionRequest{
		SessionId: sessionID,
		TurnId:    "turn-1",
		Response:  simv1.TextResponse("ok"),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	stream := newFakeStream(ctx)
	go func() { _ = ts.svc.Subscribe(&simv1.SubscribeRequest{SessionId: sessionID}, stream) }()

	first := recvEvent(t, stream.events)
	require.NotNil(t, first.GetLlmRequest())
	second := recvEvent(t, stream.events)
	require.NotNil(t, second.GetLlmResponse())
	marker := recvEvent(t, stream.events)
	require.NotNil(t, marker.GetHistoryComplete())
	assert.Equal(t, int32(2), marker.GetHistoryComplete().EventCount)
}

func TestService_DecisionWithEmptyQueueStillRecorded(t *testing.T) {
	ts := newTestService(t)
	sessionID := createSession(t, ts)

	resp, err := ts.svc.SubmitDecision(t.Context(), &simv1.SubmitDecisionRequest{
		SessionId: sessionID,
		TurnId:    "turn-1",
		Response:  simv1.TextResponse("unsolicited"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.EventId)
}

func TestService_UnknownSessionIsNotFound(t *testing.T) {
	ts := newTestService(t)

	_, err := ts.svc.SubmitRequest(t.Context(), &simv1.SubmitRequestRequest{
		SessionId: "nope",
		TurnId:    "turn-1",
		Request:   &simv1.GenericLlmRequest{},
	})
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = ts.svc.SubmitDecision(t.Context(), &simv1.SubmitDecisionRequest{
		SessionId: "nope",
		TurnId:    "turn-1",
		Response:  simv1.TextResponse("x"),
	})
	assert.Equal(t, codes.NotFound, status.Code(err))

	stream := newFakeStream(t.Context())
	err = ts.svc.Subscribe(&simv1.SubscribeRequest{SessionId: "nope"}, stream)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestService_MissingFieldsAreInvalidArgument(t *testing.T) {
	ts := newTestService(t)
	sessionID := createSession(t, ts)

	cases := []struct {
		name string
		call func() error
	}{
		{"request missing session", func() error {
			_, err := ts.svc.SubmitRequest(t.Context(), &simv1.SubmitRequestRequest{TurnId: "t", Request: &simv1.GenericLlmRequest{}})
			return err
		}},
		{"request missing turn", func() error {
			_, err := ts.svc.SubmitRequest(t.Context(), &simv1.SubmitRequestRequest{SessionId: sessionID, Request: &simv1.GenericLlmRequest{}})
			return err
		}},
		{"request missing payload", func() error {
			_, err := ts.svc.SubmitRequest(t.Context(), &simv1.SubmitRequestRequest{SessionId: sessionID, TurnId: "t"})
			return err
		}},
		{"decision missing response", func() error {
			_, err := ts.svc.SubmitDecision(t.Context(), &simv1.SubmitDecisionRequest{SessionId: sessionID, TurnId: "t"})
			return err
		}},
		{"subscribe missing session", func() error {
			return ts.svc.Subscribe(&simv1.SubscribeRequest{}, newFakeStream(t.Context()))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			require.Error(t, err)
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}
}

func TestService_QueueIsFIFOAcrossAgents(t *testing.T) {
	ts := newTestService(t)
	sessionID := createSession(t, ts)

	for _, turn := range []string{"turn-1", "turn-2", "turn-3"} {
		_, err := ts.svc.SubmitRequest(t.Context(), &simv1.SubmitRequestRequest{
			SessionId: sessionID,
			TurnId:    turn,
			AgentName: "agent-" + turn,
			Request:   &simv1.GenericLlmRequest{},
		})
		require.NoError(t, err)
	}

	for _, turn := range []string{"turn-1", "turn-2", "turn-3"} {
		head, ok := ts.queue.Peek(sessionID)
		require.True(t, ok)
		assert.Equal(t, turn, head.TurnId)
		_, err := ts.svc.SubmitDecision(t.Context(), &simv1.SubmitDecisionRequest{
			SessionId: sessionID,
			TurnId:    turn,
			Response:  simv1.TextResponse("go"),
		})
		require.NoError(t, err)
	}
	assert.True(t, ts.queue.IsEmpty(sessionID))
}

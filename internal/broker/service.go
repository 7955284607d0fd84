// ABOUTME: SimulatorService RPC implementation tying store, queue, and broadcaster together
// ABOUTME: Submit paths persist first, then mutate the queue, then broadcast

package broker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/kevinaud/adk-sim-plugin/internal/broadcast"
	"github.com/kevinaud/adk-sim-plugin/internal/notify"
	"github.com/kevinaud/adk-sim-plugin/internal/queue"
	"github.com/kevinaud/adk-sim-plugin/internal/session"
	"github.com/kevinaud/adk-sim-plugin/internal/store"
	"github.com/kevinaud/adk-sim-plugin/proto/simv1"
)

// Service implements simv1.SimulatorServiceServer.
//
// Submit ordering is persist -> queue -> broadcast: the durable record
// exists even if no one is watching, and a subscriber joining between the
// queue mutation and the broadcast still sees the event via history replay.
type Service struct {
	sessions    *session.Manager
	store       store.Store
	queue       *queue.RequestQueue
	broadcaster *broadcast.EventBroadcaster
	notifier    notify.Notifier
	// sessionURL renders the operator-facing control URL for a session id.
	sessionURL func(sessionID string) string
	logger     *slog.Logger
}

// NewService wires the simulator service. notifier may be nil (no
// announcements); sessionURL may be nil (no URL in announcements).
func NewService(sessions *session.Manager, s store.Store, q *queue.RequestQueue, b *broadcast.EventBroadcaster, notifier notify.Notifier, sessionURL func(string) string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if sessionURL == nil {
		sessionURL = func(string) string { return "" }
	}
	return &Service{
		sessions:    sessions,
		store:       s,
		queue:       q,
		broadcaster: b,
		notifier:    notifier,
		sessionURL:  sessionURL,
		logger:      logger.With("component", "simulator-service"),
	}
}

// CreateSession creates a fresh ACTIVE session.
func (s *Service) CreateSession(ctx context.Context, req *simv1.CreateSessionRequest) (*simv1.CreateSessionResponse, error) {
	sess, err := s.sessions.Create(ctx, req.Description)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "creating session: %v", err)
	}

	s.announce(func(ctx context.Context) error {
		return s.notifier.SessionStarted(ctx, sess, s.sessionURL(sess.Id))
	})

	return &simv1.CreateSessionResponse{Session: sess}, nil
}

// ListSessions pages through sessions, newest first.
func (s *Service) ListSessions(ctx context.Context, req *simv1.ListSessionsRequest) (*simv1.ListSessionsResponse, error) {
	sessions, nextToken, err := s.sessions.List(ctx, int(req.PageSize), req.PageToken)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "listing sessions: %v", err)
	}
	return &simv1.ListSessionsResponse{
		Sessions:      sessions,
		NextPageToken: nextToken,
	}, nil
}

// SubmitRequest records an intercepted model call: persist the event,
// enqueue it for the operator, broadcast it to subscribers.
func (s *Service) SubmitRequest(ctx context.Context, req *simv1.SubmitRequestRequest) (*simv1.SubmitRequestResponse, error) {
	if req.SessionId == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id is required")
	}
	if req.TurnId == "" {
		return nil, status.Error(codes.InvalidArgument, "turn_id is required")
	}
	if req.Request == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if err := s.requireSession(ctx, req.SessionId); err != nil {
		return nil, err
	}

	event := &simv1.SessionEvent{
		EventId:   uuid.New().String(),
		SessionId: req.SessionId,
		Timestamp: timestamppb.New(time.Now().UTC()),
		TurnId:    req.TurnId,
		AgentName: req.AgentName,
		Payload:   &simv1.LlmRequestPayload{LlmRequest: req.Request},
	}

	if err := s.store.InsertEvent(ctx, event); err != nil {
		return nil, status.Errorf(codes.Internal, "persisting request event: %v", err)
	}
	s.queue.Enqueue(event)
	s.broadcaster.Broadcast(req.SessionId, event)

	s.logger.Info("request submitted",
		"session_id", req.SessionId,
		"turn_id", req.TurnId,
		"agent_name", req.AgentName,
		"event_id", event.EventId,
	)

	s.announce(func(ctx context.Context) error {
		return s.notifier.DecisionPending(ctx, event)
	})

	return &simv1.SubmitRequestResponse{EventId: event.EventId}, nil
}

// SubmitDecision records a human decision. Decisions are attributed to the
// UI, never to an agent, so the event's agent name is empty. The queue head
// is dequeued unconditionally: decisions are expected to resolve the
// current head, and a mismatch is logged rather than errored.
func (s *Service) SubmitDecision(ctx context.Context, req *simv1.SubmitDecisionRequest) (*simv1.SubmitDecisionResponse, error) {
	if req.SessionId == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id is required")
	}
	if req.TurnId == "" {
		return nil, status.Error(codes.InvalidArgument, "turn_id is required")
	}
	if req.Response == nil {
		return nil, status.Error(codes.InvalidArgument, "response is required")
	}
	if err := s.requireSession(ctx, req.SessionId); err != nil {
		return nil, err
	}

	event := &simv1.SessionEvent{
		EventId:   uuid.New().String(),
		SessionId: req.SessionId,
		Timestamp: timestamppb.New(time.Now().UTC()),
		TurnId:    req.TurnId,
		AgentName: "",
		Payload:   &simv1.LlmResponsePayload{LlmResponse: req.Response},
	}

	if err := s.store.InsertEvent(ctx, event); err != nil {
		return nil, status.Errorf(codes.Internal, "persisting decision event: %v", err)
	}

	head, ok := s.queue.Dequeue(req.SessionId)
	switch {
	case !ok:
		s.logger.Warn("decision submitted with empty queue; recorded anyway",
			"session_id", req.SessionId,
			"turn_id", req.TurnId,
		)
	case head.TurnId != req.TurnId:
		s.logger.Warn("decision turn does not match queue head",
			"session_id", req.SessionId,
			"decision_turn_id", req.TurnId,
			"head_turn_id", head.TurnId,
		)
	}

	s.broadcaster.Broadcast(req.SessionId, event)

	s.logger.Info("decision submitted",
		"session_id", req.SessionId,
		"turn_id", req.TurnId,
		"event_id", event.EventId,
	)

	return &simv1.SubmitDecisionResponse{EventId: event.EventId}, nil
}

// Subscribe replays the session's history, emits the HistoryComplete
// marker, then streams live events until the client disconnects.
func (s *Service) Subscribe(req *simv1.SubscribeRequest, stream simv1.SimulatorService_SubscribeServer) error {
	if req.SessionId == "" {
		return status.Error(codes.InvalidArgument, "session_id is required")
	}
	ctx := stream.Context()
	if err := s.requireSession(ctx, req.SessionId); err != nil {
		return err
	}

	historyFn := func(ctx context.Context) ([]*simv1.SessionEvent, error) {
		return s.store.EventsBySession(ctx, req.SessionId)
	}

	ch, subID, err := s.broadcaster.Subscribe(ctx, req.SessionId, historyFn)
	if err != nil {
		return status.Errorf(codes.Internal, "subscribing: %v", err)
	}
	defer s.broadcaster.Unsubscribe(req.SessionId, subID)

	s.logger.Info("subscriber attached",
		"session_id", req.SessionId,
		"client_id", req.ClientId,
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("subscriber detached",
				"session_id", req.SessionId,
				"client_id", req.ClientId,
			)
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if err := stream.Send(&simv1.SubscribeResponse{Event: event}); err != nil {
				return err
			}
		}
	}
}

// requireSession maps a missing session to codes.NotFound.
func (s *Service) requireSession(ctx context.Context, sessionID string) error {
	_, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return status.Errorf(codes.NotFound, "session %s not found", sessionID)
	}
	if err != nil {
		return status.Errorf(codes.Internal, "looking up session: %v", err)
	}
	return nil
}

// announce runs a notifier call off the RPC path; failures are logged only.
func (s *Service) announce(fn func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.logger.Warn("notification failed", "error", err)
		}
	}()
}

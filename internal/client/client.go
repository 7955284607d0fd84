// ABOUTME: Thin gRPC client for the simulator service
// ABOUTME: Connect and Close are idempotent; the wire codec is applied per call

package client

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/kevinaud/adk-sim-plugin/proto/simv1"
)

// SimulatorClient wraps the gRPC connection to the simulator server.
type SimulatorClient struct {
	target string

	mu   sync.Mutex
	conn *grpc.ClientConn
	svc  simv1.SimulatorServiceClient
}

// NewSimulatorClient creates a client for the given server URL. The URL is
// normalized with ParseServerURL; no connection is made until Connect.
func NewSimulatorClient(serverURL string) (*SimulatorClient, error) {
	target, err := ParseServerURL(serverURL)
	if err != nil {
		return nil, err
	}
	return &SimulatorClient{target: target}, nil
}

// Target returns the normalized host:port the client dials.
func (c *SimulatorClient) Target() string {
	return c.target
}

// Connect establishes the gRPC connection. Calling it on a connected client
// is a no-op.
func (c *SimulatorClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}
	conn, err := grpc.NewClient(c.target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", c.target, err)
	}
	c.conn = conn
	c.svc = simv1.NewSimulatorServiceClient(conn)
	return nil
}

// Close tears down the connection. Safe to call repeatedly.
func (c *SimulatorClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.svc = nil
	return err
}

func (c *SimulatorClient) service() (simv1.SimulatorServiceClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.svc == nil {
		return nil, fmt.Errorf("client is not connected")
	}
	return c.svc, nil
}

// CreateSession creates a new session on the server.
func (c *SimulatorClient) CreateSession(ctx context.Context, description string) (*simv1.SimulatorSession, error) {
	svc, err := c.service()
	if err != nil {
		return nil, err
	}
	resp, err := svc.CreateSession(ctx, &simv1.CreateSessionRequest{Description: description})
	if err != nil {
		return nil, err
	}
	return resp.Session, nil
}

// ListSessions fetches one page of sessions, newest first.
func (c *SimulatorClient) ListSessions(ctx context.Context, pageSize int32, pageToken string) (*simv1.ListSessionsResponse, error) {
	svc, err := c.service()
	if err != nil {
		return nil, err
	}
	return svc.ListSessions(ctx, &simv1.ListSessionsRequest{PageSize: pageSize, PageToken: pageToken})
}

// SubmitRequest submits an intercepted model call and returns the event id.
func (c *SimulatorClient) SubmitRequest(ctx context.Context, sessionID, turnID, agentName string, req *simv1.GenericLlmRequest) (string, error) {
	svc, err := c.service()
	if err != nil {
		return "", err
	}
	resp, err := svc.SubmitRequest(ctx, &simv1.SubmitRequestRequest{
		SessionId: sessionID,
		TurnId:    turnID,
		AgentName: agentName,
		Request:   req,
	})
	if err != nil {
		return "", err
	}
	return resp.EventId, nil
}

// SubmitDecision submits a decision for a turn and returns the event id.
func (c *SimulatorClient) SubmitDecision(ctx context.Context, sessionID, turnID string, resp *simv1.GenericLlmResponse) (string, error) {
	svc, err := c.service()
	if err != nil {
		return "", err
	}
	out, err := svc.SubmitDecision(ctx, &simv1.SubmitDecisionRequest{
		SessionId: sessionID,
		TurnId:    turnID,
		Response:  resp,
	})
	if err != nil {
		return "", err
	}
	return out.EventId, nil
}

// Subscribe opens the event stream for a session.
func (c *SimulatorClient) Subscribe(ctx context.Context, sessionID, clientID string) (simv1.SimulatorService_SubscribeClient, error) {
	svc, err := c.service()
	if err != nil {
		return nil, err
	}
	return svc.Subscribe(ctx, &simv1.SubscribeRequest{SessionId: sessionID, ClientId: clientID})
}

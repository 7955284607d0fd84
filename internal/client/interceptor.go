// ABOUTME: The interception entry point: blocks agent model calls on human decisions
// ABOUTME: Runs a reconnecting listen loop that resolves futures from the event stream

package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kevinaud/adk-sim-plugin/proto/simv1"
)

// Reconnect backoff: starts at initialBackoff, doubles per failure, capped at
// maxBackoff, resets once a resubscribe delivers an event.
const (
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 30 * time.Second
)

// ErrCancelled is returned from Intercept when the interceptor shuts down
// while the call is still awaiting a decision.
var ErrCancelled = errors.New("interception cancelled")

// Interceptor routes agent model calls through the simulator. Each
// intercepted call is submitted to the server and blocks until a human
// decision for its turn arrives on the session event stream.
type Interceptor struct {
	cfg     Config
	client  *SimulatorClient
	futures *FutureRegistry
	logger  *slog.Logger
	// out receives the session banner; defaults to stdout.
	out io.Writer

	clientID     string
	shuttingDown atomic.Bool

	mu           sync.Mutex
	sessionID    string
	cancelListen context.CancelFunc
	listenDone   chan struct{}
}

// NewInterceptor creates an interceptor with the given configuration. Pass
// nil logger for the default.
func NewInterceptor(cfg Config, logger *slog.Logger) (*Interceptor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c, err := NewSimulatorClient(cfg.ServerURL)
	if err != nil {
		return nil, err
	}
	return &Interceptor{
		cfg:      cfg,
		client:   c,
		futures:  NewFutureRegistry(),
		logger:   logger.With("component", "interceptor"),
		out:      os.Stdout,
		clientID: "plugin-" + uuid.New().String(),
	}, nil
}

// SessionID returns the active session id, empty before Start.
func (i *Interceptor) SessionID() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.sessionID
}

// Start connects to the server, creates a session, prints the operator
// banner, and spawns the listen loop. description may come from
// ADK_SIM_SESSION_DESCRIPTION via ConfigFromEnv.
func (i *Interceptor) Start(ctx context.Context, description string) error {
	if description == "" {
		description = i.cfg.SessionDescription
	}

	if err := i.client.Connect(); err != nil {
		return err
	}

	session, err := i.client.CreateSession(ctx, description)
	if err != nil {
		_ = i.client.Close()
		return fmt.Errorf("creating session: %w", err)
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	i.mu.Lock()
	i.sessionID = session.Id
	i.cancelListen = cancel
	i.listenDone = done
	i.mu.Unlock()

	i.printBanner(i.sessionURL(session.Id))
	i.logger.Info("simulator session started",
		"session_id", session.Id,
		"server", i.client.Target(),
	)

	go func() {
		defer close(done)
		i.listenLoop(listenCtx, session.Id)
	}()
	return nil
}

// Intercept submits the model call and blocks until the human decision
// arrives. Agents outside the configured target list are not intercepted:
// the call returns (nil, nil) and the real model should run.
func (i *Interceptor) Intercept(ctx context.Context, agentName string, req *simv1.GenericLlmRequest) (*simv1.GenericLlmResponse, error) {
	if !i.cfg.ShouldIntercept(agentName) {
		i.logger.Debug("agent not targeted, passing through", "agent_name", agentName)
		return nil, nil
	}

	sessionID := i.SessionID()
	if sessionID == "" {
		return nil, fmt.Errorf("interceptor not started")
	}

	turnID := uuid.New().String()
	future, err := i.futures.Create(turnID)
	if err != nil {
		return nil, err
	}

	if _, err := i.client.SubmitRequest(ctx, sessionID, turnID, agentName, req); err != nil {
		i.futures.cancel(turnID)
		return nil, fmt.Errorf("submitting request: %w", err)
	}

	i.logger.Info("awaiting decision", "agent_name", agentName, "turn_id", turnID)

	select {
	case resp, ok := <-future:
		if !ok {
			return nil, ErrCancelled
		}
		return resp, nil
	case <-ctx.Done():
		i.futures.cancel(turnID)
		return nil, ctx.Err()
	}
}

// Close cancels all pending interceptions, stops the listen loop, and closes
// the connection. Safe to call repeatedly.
func (i *Interceptor) Close() error {
	if i.shuttingDown.Swap(true) {
		return nil
	}

	cancelled := i.futures.CancelAll()
	if cancelled > 0 {
		i.logger.Warn("cancelled pending interceptions on shutdown", "count", cancelled)
	}

	i.mu.Lock()
	cancel := i.cancelListen
	done := i.listenDone
	i.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	return i.client.Close()
}

// listenLoop subscribes to the session stream and resolves futures from
// decision events. Stream failures reconnect with exponential backoff,
// resubscribing with the same session id so history replay restores any
// decision missed during the outage.
func (i *Interceptor) listenLoop(ctx context.Context, sessionID string) {
	backoff := initialBackoff

	for {
		if ctx.Err() != nil || i.shuttingDown.Load() {
			return
		}

		stream, err := i.client.Subscribe(ctx, sessionID, i.clientID)
		if err != nil {
			if !i.waitBackoff(ctx, &backoff, err) {
				return
			}
			i.reconnect()
			continue
		}

		if err := i.consumeStream(ctx, stream, &backoff); err != nil {
			if ctx.Err() != nil || i.shuttingDown.Load() {
				return
			}
			if !i.waitBackoff(ctx, &backoff, err) {
				return
			}
			i.reconnect()
		}
	}
}

// consumeStream receives events until the stream fails. The backoff resets
// after the first successful receive.
func (i *Interceptor) consumeStream(ctx context.Context, stream simv1.SimulatorService_SubscribeClient, backoff *time.Duration) error {
	for {
		resp, err := stream.Recv()
		if err != nil {
			return err
		}
		*backoff = initialBackoff

		event := resp.Event
		if event == nil {
			continue
		}
		switch {
		case event.GetLlmResponse() != nil:
			resolved := i.futures.Resolve(event.TurnId, event.GetLlmResponse())
			i.logger.Debug("decision event received",
				"turn_id", event.TurnId,
				"resolved", resolved,
			)
		case event.GetHistoryComplete() != nil:
			i.logger.Debug("history replay complete",
				"event_count", event.GetHistoryComplete().EventCount,
			)
		default:
			// Request events echo our own submissions; nothing to do.
			i.logger.Debug("ignoring event", "payload_type", event.PayloadType())
		}
	}
}

// waitBackoff sleeps for the current backoff, doubling it for next time.
// Returns false when the context ends during the wait.
func (i *Interceptor) waitBackoff(ctx context.Context, backoff *time.Duration, cause error) bool {
	i.logger.Warn("event stream lost, reconnecting",
		"error", cause,
		"retry_in", backoff.String(),
	)
	select {
	case <-time.After(*backoff):
	case <-ctx.Done():
		return false
	}
	*backoff = min(*backoff*2, maxBackoff)
	return true
}

// reconnect tears down and re-establishes the gRPC connection.
func (i *Interceptor) reconnect() {
	_ = i.client.Close()
	if err := i.client.Connect(); err != nil {
		i.logger.Warn("reconnect failed", "error", err)
	}
}

// sessionURL builds the operator-facing control URL. The web UI dev server
// conventionally runs on port 4200 next to the simulator server.
func (i *Interceptor) sessionURL(sessionID string) string {
	host := "localhost"
	if h, _, err := net.SplitHostPort(i.client.Target()); err == nil && h != "" {
		host = h
	}
	return fmt.Sprintf("http://%s:4200/session/%s", host, sessionID)
}

// printBanner writes the four-line session banner to i.out.
func (i *Interceptor) printBanner(url string) {
	border := strings.Repeat("=", 64)
	fmt.Fprintln(i.out, border)
	fmt.Fprintln(i.out, "[ADK Simulator] Session Started")
	fmt.Fprintln(i.out, "View and Control at: "+url)
	fmt.Fprintln(i.out, border)
}

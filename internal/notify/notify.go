// ABOUTME: Operator notifications for session and pending-request announcements
// ABOUTME: Matrix-backed implementation plus a Nop for unconfigured deployments

// Package notify announces simulator activity to a human operator's chat so
// they notice when an agent is blocked waiting on a decision.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/id"

	"github.com/kevinaud/adk-sim-plugin/proto/simv1"
)

// Notifier announces simulator activity. Implementations must be safe for
// concurrent use; the broker calls them from fire-and-forget goroutines.
type Notifier interface {
	// SessionStarted announces a new session and where to control it.
	SessionStarted(ctx context.Context, session *simv1.SimulatorSession, url string) error
	// DecisionPending announces a request now waiting on a human decision.
	DecisionPending(ctx context.Context, event *simv1.SessionEvent) error
}

// Nop is the notifier used when no chat integration is configured.
type Nop struct{}

func (Nop) SessionStarted(context.Context, *simv1.SimulatorSession, string) error { return nil }
func (Nop) DecisionPending(context.Context, *simv1.SessionEvent) error            { return nil }

// MatrixConfig configures the Matrix notifier.
type MatrixConfig struct {
	Homeserver  string
	UserID      string
	AccessToken string
	RoomID      string
}

// MatrixNotifier sends plain-text announcements to a single Matrix room.
type MatrixNotifier struct {
	client *mautrix.Client
	roomID id.RoomID
	logger *slog.Logger
}

// NewMatrixNotifier creates a notifier posting to cfg.RoomID.
func NewMatrixNotifier(cfg MatrixConfig, logger *slog.Logger) (*MatrixNotifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := mautrix.NewClient(cfg.Homeserver, id.UserID(cfg.UserID), cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("creating matrix client: %w", err)
	}
	return &MatrixNotifier{
		client: client,
		roomID: id.RoomID(cfg.RoomID),
		logger: logger.With("component", "matrix-notifier"),
	}, nil
}

func (n *MatrixNotifier) SessionStarted(ctx context.Context, session *simv1.SimulatorSession, url string) error {
	text := fmt.Sprintf("Simulator session started: %s\n%s", session.Description, url)
	if session.Description == "" {
		text = fmt.Sprintf("Simulator session started\n%s", url)
	}
	return n.send(ctx, text)
}

func (n *MatrixNotifier) DecisionPending(ctx context.Context, event *simv1.SessionEvent) error {
	text := fmt.Sprintf("Decision pending for agent %q (session %s, turn %s)",
		event.AgentName, event.SessionId, event.TurnId)
	return n.send(ctx, text)
}

func (n *MatrixNotifier) send(ctx context.Context, text string) error {
	if _, err := n.client.SendText(ctx, n.roomID, text); err != nil {
		return fmt.Errorf("sending matrix message: %w", err)
	}
	n.logger.Debug("notification sent", "room_id", n.roomID)
	return nil
}

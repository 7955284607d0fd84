// ABOUTME: Terminal observer and controller for the simulator over native gRPC
// ABOUTME: Slash-command REPL: list sessions, watch a stream, submit decisions

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/kevinaud/adk-sim-plugin/internal/client"
	"github.com/kevinaud/adk-sim-plugin/proto/simv1"
)

func main() {
	_ = godotenv.Load()

	server := flag.String("server", client.DefaultServerURL, "Simulator server address")
	flag.Parse()

	fmt.Printf("adk-sim-tui connected to %s\n", *server)
	fmt.Println("Type /help for commands. Ctrl+C to quit.")
	fmt.Println()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *server); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nGoodbye!")
}

// watchState tracks the session being watched and its undecided turns.
type watchState struct {
	mu        sync.Mutex
	sessionID string
	pending   []string
	cancel    context.CancelFunc
}

func (w *watchState) current() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sessionID
}

func (w *watchState) addPending(turnID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, turnID)
}

func (w *watchState) removePending(turnID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, t := range w.pending {
		if t == turnID {
			w.pending = append(w.pending[:i], w.pending[i+1:]...)
			return
		}
	}
}

func (w *watchState) nextPending() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return "", false
	}
	return w.pending[0], true
}

func (w *watchState) stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.sessionID = ""
	w.pending = nil
	w.cancel = nil
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (w *watchState) start(sessionID string, cancel context.CancelFunc) {
	w.stop()
	w.mu.Lock()
	w.sessionID = sessionID
	w.cancel = cancel
	w.mu.Unlock()
}

func run(ctx context.Context, server string) error {
	c, err := client.NewSimulatorClient(server)
	if err != nil {
		return err
	}
	if err := c.Connect(); err != nil {
		return err
	}
	defer c.Close()

	watch := &watchState{}
	defer watch.stop()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if sessionID := watch.current(); sessionID != "" {
			fmt.Printf("[%s]> ", shortID(sessionID))
		} else {
			fmt.Print("> ")
		}

		inputCh := make(chan string, 1)
		errCh := make(chan error, 1)
		go func() {
			if scanner.Scan() {
				inputCh <- scanner.Text()
			} else if err := scanner.Err(); err != nil {
				errCh <- err
			} else {
				errCh <- io.EOF
			}
		}()

		var input string
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		case input = <-inputCh:
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		switch {
		case input == "/quit" || input == "/exit" || input == "/q":
			return nil
		case input == "/help":
			printHelp()
		case input == "/sessions":
			if err := listSessions(ctx, c); err != nil {
				fmt.Printf("[error] %v\n", err)
			}
		case strings.HasPrefix(input, "/watch"):
			arg := strings.TrimSpace(strings.TrimPrefix(input, "/watch"))
			if arg == "" {
				fmt.Println("Usage: /watch <session-id>")
				break
			}
			startWatch(ctx, c, watch, arg)
		case strings.HasPrefix(input, "/decide"):
			text := strings.TrimSpace(strings.TrimPrefix(input, "/decide"))
			if err := decide(ctx, c, watch, text); err != nil {
				fmt.Printf("[error] %v\n", err)
			}
		case input == "/complete":
			if watch.current() == "" {
				fmt.Println("Not watching a session.")
				break
			}
			watch.stop()
			fmt.Println("Stopped watching.")
		default:
			fmt.Println("Unknown command. /help for commands.")
		}
		fmt.Println()
	}
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  /sessions            List sessions, newest first")
	fmt.Println("  /watch <session-id>  Stream a session's events")
	fmt.Println("  /decide <text>       Decide the next pending turn of the watched session")
	fmt.Println("  /complete            Stop watching the current session")
	fmt.Println("  /quit                Exit")
}

func listSessions(ctx context.Context, c *client.SimulatorClient) error {
	resp, err := c.ListSessions(ctx, 0, "")
	if err != nil {
		return err
	}
	if len(resp.Sessions) == 0 {
		fmt.Println("No sessions.")
		return nil
	}
	for _, s := range resp.Sessions {
		created := ""
		if s.CreatedAt != nil {
			created = s.CreatedAt.AsTime().Local().Format("2006-01-02 15:04:05")
		}
		desc := s.Description
		if desc == "" {
			desc = "(no description)"
		}
		fmt.Printf("  %s  %-9s  %s  %s\n", s.Id, s.Status, created, desc)
	}
	if resp.NextPageToken != "" {
		fmt.Println("  ... more sessions exist")
	}
	return nil
}

// startWatch subscribes to the session and streams events to stdout until
// /complete, a new /watch, or exit.
func startWatch(ctx context.Context, c *client.SimulatorClient, watch *watchState, sessionID string) {
	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := c.Subscribe(streamCtx, sessionID, "tui")
	if err != nil {
		cancel()
		fmt.Printf("[error] subscribing: %v\n", err)
		return
	}

	watch.start(sessionID, cancel)
	fmt.Printf("Watching %s (replaying history)...\n", sessionID)

	go func() {
		for {
			resp, err := stream.Recv()
			if err != nil {
				if streamCtx.Err() == nil {
					fmt.Printf("\n[stream closed] %v\n> ", err)
				}
				return
			}
			printEvent(watch, resp.Event)
		}
	}()
}

func printEvent(watch *watchState, ev *simv1.SessionEvent) {
	if ev == nil {
		return
	}
	ts := ""
	if ev.Timestamp != nil {
		ts = ev.Timestamp.AsTime().Local().Format("15:04:05")
	}

	switch {
	case ev.GetLlmRequest() != nil:
		watch.addPending(ev.TurnId)
		color.New(color.FgGreen).Printf("\n%s REQUEST  agent=%s turn=%s\n", ts, ev.AgentName, shortID(ev.TurnId))
		printRequest(ev.GetLlmRequest())
	case ev.GetLlmResponse() != nil:
		watch.removePending(ev.TurnId)
		color.New(color.FgCyan).Printf("\n%s DECISION turn=%s\n", ts, shortID(ev.TurnId))
		printResponse(ev.GetLlmResponse())
	case ev.GetHistoryComplete() != nil:
		color.New(color.FgHiBlack).Printf("\n--- history complete (%d events), now live ---\n", ev.GetHistoryComplete().EventCount)
	}
	fmt.Print("> ")
}

func printRequest(req *simv1.GenericLlmRequest) {
	if req.Model != "" {
		fmt.Printf("  model: %s\n", req.Model)
	}
	for _, content := range req.Contents {
		for _, part := range content.Parts {
			switch {
			case part.GetText() != "":
				fmt.Printf("  [%s] %s\n", content.Role, truncate(part.GetText(), 200))
			case part.GetFunctionCall() != nil:
				fmt.Printf("  [%s] tool call: %s\n", content.Role, part.GetFunctionCall().Name)
			case part.GetFunctionResponse() != nil:
				fmt.Printf("  [%s] tool result: %s\n", content.Role, part.GetFunctionResponse().Name)
			}
		}
	}
}

func printResponse(resp *simv1.GenericLlmResponse) {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text := part.GetText(); text != "" {
				fmt.Printf("  %s\n", truncate(text, 200))
			}
		}
	}
}

func decide(ctx context.Context, c *client.SimulatorClient, watch *watchState, text string) error {
	if text == "" {
		return fmt.Errorf("usage: /decide <text>")
	}
	sessionID := watch.current()
	if sessionID == "" {
		return fmt.Errorf("not watching a session; /watch one first")
	}
	turnID, ok := watch.nextPending()
	if !ok {
		return fmt.Errorf("no pending requests in this session")
	}

	callCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	eventID, err := c.SubmitDecision(callCtx, sessionID, turnID, simv1.TextResponse(text))
	if err != nil {
		return err
	}
	fmt.Printf("Decision submitted for turn %s (event %s)\n", shortID(turnID), shortID(eventID))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

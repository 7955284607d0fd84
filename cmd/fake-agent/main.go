// ABOUTME: Demo agent that routes scripted model calls through the simulator
// ABOUTME: Usage: fake-agent [-addr localhost:50051] [-name researcher] [-description "demo run"]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/kevinaud/adk-sim-plugin/internal/client"
	"github.com/kevinaud/adk-sim-plugin/proto/simv1"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", "", "Simulator server address (defaults to ADK_SIM_SERVER_URL)")
	name := flag.String("name", "fake-agent", "Agent name reported with each request")
	description := flag.String("description", "fake-agent demo run", "Session description")
	flag.Parse()

	if err := run(*addr, *name, *description); err != nil {
		log.Fatal(err)
	}
}

// scriptedCalls are the model calls the fake agent plays through the
// simulator, one turn each.
var scriptedCalls = []string{
	"Plan the next step for researching Go pub/sub libraries.",
	"Summarize the findings so far in three bullet points.",
	"Draft a closing message for the user.",
}

func run(addr, agentName, description string) error {
	cfg := client.ConfigFromEnv()
	if addr != "" {
		cfg.ServerURL = addr
	}

	interceptor, err := client.NewInterceptor(cfg, nil)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := interceptor.Start(ctx, description); err != nil {
		return fmt.Errorf("starting interceptor: %w", err)
	}
	defer interceptor.Close()

	for i, prompt := range scriptedCalls {
		req := &simv1.GenericLlmRequest{
			Model: "gemini-2.0-flash",
			Contents: []*simv1.Content{{
				Role:  "user",
				Parts: []*simv1.Part{simv1.NewTextPart(prompt)},
			}},
		}

		fmt.Fprintf(os.Stderr, "[%d/%d] submitting model call, waiting for decision...\n", i+1, len(scriptedCalls))
		resp, err := interceptor.Intercept(ctx, agentName, req)
		if errors.Is(err, context.Canceled) || errors.Is(err, client.ErrCancelled) {
			fmt.Fprintln(os.Stderr, "cancelled, exiting")
			return nil
		}
		if err != nil {
			return fmt.Errorf("intercepting call %d: %w", i+1, err)
		}
		if resp == nil {
			fmt.Fprintf(os.Stderr, "[%d/%d] agent %q not targeted, would call the real model\n", i+1, len(scriptedCalls), agentName)
			continue
		}

		fmt.Printf("decision for call %d:\n", i+1)
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if text := part.GetText(); text != "" {
					fmt.Printf("  %s\n", text)
				}
			}
		}
	}

	fmt.Fprintln(os.Stderr, "all scripted calls decided, done")
	return nil
}

// ABOUTME: Environment configuration for the intercepting client
// ABOUTME: Server URL parsing accepts bare hosts and http/https/grpc schemes

// Package client is the agent-side half of the simulator: it submits
// intercepted model calls to the server and blocks each call until a human
// decision arrives on the event stream.
package client

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
)

// Default connection values.
const (
	DefaultServerURL = "localhost:50051"
	defaultGRPCPort  = "50051"
	defaultTLSPort   = "443"
)

// Config holds the intercepting client's environment configuration.
type Config struct {
	// ServerURL is the simulator server address, from ADK_SIM_SERVER_URL.
	ServerURL string
	// TargetAgents restricts interception to the named agents. Nil means
	// intercept everything. From ADK_SIM_TARGET_AGENTS, comma-separated.
	TargetAgents []string
	// SessionDescription labels the session in the UI, from
	// ADK_SIM_SESSION_DESCRIPTION.
	SessionDescription string
}

// ConfigFromEnv reads the client configuration from the environment.
func ConfigFromEnv() Config {
	cfg := Config{
		ServerURL:          os.Getenv("ADK_SIM_SERVER_URL"),
		SessionDescription: os.Getenv("ADK_SIM_SESSION_DESCRIPTION"),
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	if raw := os.Getenv("ADK_SIM_TARGET_AGENTS"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				cfg.TargetAgents = append(cfg.TargetAgents, trimmed)
			}
		}
	}
	return cfg
}

// ShouldIntercept reports whether calls from the named agent go through the
// simulator. An empty target list intercepts all agents.
func (c Config) ShouldIntercept(agentName string) bool {
	if len(c.TargetAgents) == 0 {
		return true
	}
	for _, target := range c.TargetAgents {
		if target == agentName {
			return true
		}
	}
	return false
}

// ParseServerURL normalizes a server URL into a host:port dial target.
// Accepted forms: "host", "host:port", "http://host[:port]",
// "https://host[:port]", "grpc://host[:port]". The default port is 50051,
// except 443 for https URLs.
func ParseServerURL(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("server URL is empty")
	}

	if !strings.Contains(raw, "://") {
		return ensurePort(raw, defaultGRPCPort)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing server URL %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("server URL %q has no host", raw)
	}

	switch u.Scheme {
	case "http", "grpc":
		return ensurePort(u.Host, defaultGRPCPort)
	case "https":
		return ensurePort(u.Host, defaultTLSPort)
	default:
		return "", fmt.Errorf("unsupported server URL scheme %q", u.Scheme)
	}
}

func ensurePort(hostport, defaultPort string) (string, error) {
	if _, _, err := net.SplitHostPort(hostport); err == nil {
		return hostport, nil
	}
	if strings.Contains(hostport, ":") && !strings.HasPrefix(hostport, "[") {
		return "", fmt.Errorf("invalid server address %q", hostport)
	}
	return net.JoinHostPort(hostport, defaultPort), nil
}

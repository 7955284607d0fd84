// ABOUTME: Tests for client env configuration and server URL normalization
// ABOUTME: Covers target-agent filtering and every accepted URL form

package client

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("ADK_SIM_SERVER_URL", "")
	t.Setenv("ADK_SIM_TARGET_AGENTS", "")
	t.Setenv("ADK_SIM_SESSION_DESCRIPTION", "")

	cfg := ConfigFromEnv()
	assert.Equal(t, DefaultServerURL, cfg.ServerURL)
	assert.Nil(t, cfg.TargetAgents)
	assert.Empty(t, cfg.SessionDescription)
}

func TestConfigFromEnv_ParsesTargetAgents(t *testing.T) {
	t.Setenv("ADK_SIM_SERVER_URL", "sim.example.com:9000")
	t.Setenv("ADK_SIM_TARGET_AGENTS", " researcher, planner ,,writer ")
	t.Setenv("ADK_SIM_SESSION_DESCRIPTION", "nightly run")

	cfg := ConfigFromEnv()
	assert.Equal(t, "sim.example.com:9000", cfg.ServerURL)
	assert.Equal(t, []string{"researcher", "planner", "writer"}, cfg.TargetAgents)
	assert.Equal(t, "nightly run", cfg.SessionDescription)
}

func TestConfig_ShouldIntercept(t *testing.T) {
	all := Config{}
	assert.True(t, all.ShouldIntercept("anyone"))

	scoped := Config{TargetAgents: []string{"researcher", "planner"}}
	assert.True(t, scoped.ShouldIntercept("researcher"))
	assert.True(t, scoped.ShouldIntercept("planner"))
	assert.False(t, scoped.ShouldIntercept("writer"))
}

func TestParseServerURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"localhost", "localhost:50051"},
		{"localhost:9000", "localhost:9000"},
		{"sim.example.com", "sim.example.com:50051"},
		{"http://sim.example.com", "sim.example.com:50051"},
		{"http://sim.example.com:8080", "sim.example.com:8080"},
		{"grpc://sim.example.com:9000", "sim.example.com:9000"},
		{"https://sim.example.com", "sim.example.com:443"},
		{"https://sim.example.com:8443", "sim.example.com:8443"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseServerURL(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseServerURL_Rejects(t *testing.T) {
	for _, in := range []string{"", "ftp://sim.example.com", "http://"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseServerURL(in)
			assert.Error(t, err)
		})
	}
}

func TestInterceptor_BannerFormat(t *testing.T) {
	i, err := NewInterceptor(Config{ServerURL: "sim.example.com:50051"}, nil)
	require.NoError(t, err)

	var buf strings.Builder
	i.out = &buf
	i.printBanner(i.sessionURL("session-abc-123"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Repeat("=", 64), lines[0])
	assert.Equal(t, "[ADK Simulator] Session Started", lines[1])
	assert.Equal(t, "View and Control at: http://sim.example.com:4200/session/session-abc-123", lines[2])
	assert.Equal(t, strings.Repeat("=", 64), lines[3])
}

// ABOUTME: Broker orchestrator that coordinates the gRPC and HTTP servers
// ABOUTME: Manages store, queue, broadcaster, and notifier lifecycle

// Package broker hosts the simulator service: it owns the durable store, the
// per-session request queue, the event broadcaster, and the two server
// frontends (native gRPC and the browser HTTP gateway).
package broker

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
	"tailscale.com/ipn/ipnstate"
	"tailscale.com/tsnet"

	"github.com/kevinaud/adk-sim-plugin/internal/broadcast"
	"github.com/kevinaud/adk-sim-plugin/internal/config"
	"github.com/kevinaud/adk-sim-plugin/internal/notify"
	"github.com/kevinaud/adk-sim-plugin/internal/queue"
	"github.com/kevinaud/adk-sim-plugin/internal/session"
	"github.com/kevinaud/adk-sim-plugin/internal/store"
	"github.com/kevinaud/adk-sim-plugin/internal/web"
	"github.com/kevinaud/adk-sim-plugin/proto/simv1"
)

// Broker orchestrates the simulator server components. It manages the gRPC
// server for agent and TUI connections and the HTTP server for the browser UI.
type Broker struct {
	config      *config.Config
	store       store.Store
	sessions    *session.Manager
	queue       *queue.RequestQueue
	broadcaster *broadcast.EventBroadcaster
	service     *Service
	grpcServer  *grpc.Server
	httpServer  *http.Server
	tsnetServer *tsnet.Server
	logger      *slog.Logger
}

// initStore creates and returns a store based on config and environment.
func initStore(cfg *config.Config) (store.Store, error) {
	dbPath := cfg.Database.Path
	if envPath := os.Getenv("ADK_SIM_DB_PATH"); envPath != "" {
		dbPath = envPath
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// initNotifier builds the configured notifier, or a Nop when Matrix is not
// enabled.
func initNotifier(cfg *config.Config, logger *slog.Logger) (notify.Notifier, error) {
	if !cfg.Notify.Matrix.Enabled {
		return notify.Nop{}, nil
	}
	n, err := notify.NewMatrixNotifier(notify.MatrixConfig{
		Homeserver:  cfg.Notify.Matrix.Homeserver,
		UserID:      cfg.Notify.Matrix.UserID,
		AccessToken: cfg.Notify.Matrix.AccessToken,
		RoomID:      cfg.Notify.Matrix.RoomID,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing matrix notifier: %w", err)
	}
	logger.Info("matrix notifications enabled", "room_id", cfg.Notify.Matrix.RoomID)
	return n, nil
}

// newGRPCServer creates the gRPC server with keepalive parameters tuned for
// long-lived agent streams.
func newGRPCServer() *grpc.Server {
	return grpc.NewServer(
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    15 * time.Second,
			Timeout: 5 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.ForceServerCodec(simv1.Codec()),
	)
}

// New creates a new Broker instance with the given configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Broker, error) {
	s, err := initStore(cfg)
	if err != nil {
		return nil, err
	}

	notifier, err := initNotifier(cfg, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	sessions := session.NewManager(s, logger.With("component", "session-manager"))
	requestQueue := queue.NewRequestQueue()
	broadcaster := broadcast.NewEventBroadcaster(logger.With("component", "broadcaster"))

	sessionURL := func(sessionID string) string {
		if cfg.Web.SessionURLBase == "" {
			return ""
		}
		return cfg.Web.SessionURLBase + "/session/" + sessionID
	}

	service := NewService(sessions, s, requestQueue, broadcaster, notifier, sessionURL, logger)

	grpcServer := newGRPCServer()
	simv1.RegisterSimulatorServiceServer(grpcServer, service)

	b := &Broker{
		config:      cfg,
		store:       s,
		sessions:    sessions,
		queue:       requestQueue,
		broadcaster: broadcaster,
		service:     service,
		grpcServer:  grpcServer,
		logger:      logger.With("component", "broker"),
	}

	webHandler := web.NewHandler(web.Config{
		Backend: service,
		Store:   s,
		UIDir:   cfg.Web.UIDir,
		Logger:  logger,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/health", b.handleHealth)
	mux.HandleFunc("/health/ready", b.handleReady)
	mux.Handle("/", webHandler)

	b.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return b, nil
}

// Service returns the simulator service for in-process callers.
func (b *Broker) Service() *Service {
	return b.service
}

// Run starts the broker servers and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if a server fails.
func (b *Broker) Run(ctx context.Context) error {
	grpcListener, httpListener, err := b.setupListeners(ctx)
	if err != nil {
		return err
	}

	errCh := b.startServers(grpcListener, httpListener)
	serverErr := b.waitForShutdownSignal(ctx, errCh)

	shutdownErr := b.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// setupListeners creates listeners based on configuration (Tailscale or TCP).
func (b *Broker) setupListeners(ctx context.Context) (grpcLn, httpLn net.Listener, err error) {
	if b.config.Tailscale.Enabled {
		return b.setupTailscaleListeners(ctx)
	}
	return b.setupTCPListeners()
}

// setupTCPListeners creates standard TCP listeners for gRPC and HTTP.
func (b *Broker) setupTCPListeners() (grpcLn, httpLn net.Listener, err error) {
	b.logger.Info("starting broker",
		"grpc_addr", b.config.Server.GRPCAddr,
		"http_addr", b.config.Server.HTTPAddr,
	)

	grpcLn, err = net.Listen("tcp", b.config.Server.GRPCAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("listening on gRPC address: %w", err)
	}

	httpLn, err = net.Listen("tcp", b.config.Server.HTTPAddr)
	if err != nil {
		_ = grpcLn.Close()
		return nil, nil, fmt.Errorf("listening on HTTP address: %w", err)
	}

	return grpcLn, httpLn, nil
}

// resolveTailscaleStateDir returns the state directory, using default if not configured.
func resolveTailscaleStateDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for tailscale state (set tailscale.state_dir explicitly): %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "adk-sim", "tailscale"), nil
}

// resolveTailscaleAuthKey returns the auth key from config or environment.
func resolveTailscaleAuthKey(configured string) (string, error) {
	authKey := configured
	if authKey == "" {
		authKey = os.Getenv("TS_AUTHKEY")
	}
	if authKey == "" {
		return "", errors.New("tailscale auth key required: set auth_key in config or TS_AUTHKEY environment variable")
	}
	return authKey, nil
}

// setupTailscaleListeners creates a tsnet server and returns listeners for gRPC and HTTP.
func (b *Broker) setupTailscaleListeners(ctx context.Context) (grpcLn, httpLn net.Listener, err error) {
	tsCfg := b.config.Tailscale

	stateDir, err := resolveTailscaleStateDir(tsCfg.StateDir)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return nil, nil, fmt.Errorf("creating tailscale state dir: %w", err)
	}

	authKey, err := resolveTailscaleAuthKey(tsCfg.AuthKey)
	if err != nil {
		return nil, nil, err
	}

	b.tsnetServer = &tsnet.Server{
		Hostname:  tsCfg.Hostname,
		Dir:       stateDir,
		Ephemeral: tsCfg.Ephemeral,
		AuthKey:   authKey,
	}

	b.logger.Info("starting tailscale node", "hostname", tsCfg.Hostname, "state_dir", stateDir, "ephemeral", tsCfg.Ephemeral)
	status, err := b.tsnetServer.Up(ctx)
	if err != nil {
		_ = b.tsnetServer.Close()
		return nil, nil, fmt.Errorf("starting tailscale: %w", err)
	}
	b.logTailscaleStatus(tsCfg.Hostname, status)

	grpcLn, err = b.tsnetServer.Listen("tcp", ":50051")
	if err != nil {
		_ = b.tsnetServer.Close()
		return nil, nil, fmt.Errorf("listening on tailscale gRPC port: %w", err)
	}

	httpLn, err = b.createTailscaleHTTPListener(tsCfg, grpcLn)
	if err != nil {
		return nil, nil, err
	}
	return grpcLn, httpLn, nil
}

// logTailscaleStatus logs info about the tailscale node status.
func (b *Broker) logTailscaleStatus(hostname string, status *ipnstate.Status) {
	var tsAddr, dnsName string
	if len(status.TailscaleIPs) > 0 {
		tsAddr = status.TailscaleIPs[0].String()
	} else {
		b.logger.Warn("tailscale node has no IP addresses assigned")
	}
	if status.Self != nil {
		dnsName = status.Self.DNSName
	}
	b.logger.Info("tailscale node ready", "hostname", hostname, "tailscale_ip", tsAddr, "dns_name", dnsName)
}

// createTailscaleHTTPListener creates the appropriate HTTP listener based on config.
func (b *Broker) createTailscaleHTTPListener(tsCfg config.TailscaleConfig, grpcLn net.Listener) (net.Listener, error) {
	if !tsCfg.HTTPS {
		ln, err := b.tsnetServer.Listen("tcp", ":80")
		if err != nil {
			_ = grpcLn.Close()
			_ = b.tsnetServer.Close()
			return nil, fmt.Errorf("listening on tailscale HTTP port: %w", err)
		}
		return ln, nil
	}

	b.logger.Info("enabling HTTPS with Tailscale certs on :443")
	ln, err := b.tsnetServer.Listen("tcp", ":443")
	if err != nil {
		_ = grpcLn.Close()
		_ = b.tsnetServer.Close()
		return nil, fmt.Errorf("listening on tailscale HTTPS port: %w", err)
	}
	lc, err := b.tsnetServer.LocalClient()
	if err != nil {
		_ = ln.Close()
		_ = grpcLn.Close()
		_ = b.tsnetServer.Close()
		return nil, fmt.Errorf("getting tailscale local client: %w", err)
	}
	return tls.NewListener(ln, &tls.Config{
		GetCertificate: lc.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}), nil
}

// startServers starts gRPC and HTTP servers in goroutines, returning error channel.
func (b *Broker) startServers(grpcLn, httpLn net.Listener) chan error {
	errCh := make(chan error, 2)

	go func() {
		b.logger.Info("gRPC server listening", "addr", grpcLn.Addr().String())
		if err := b.grpcServer.Serve(grpcLn); err != nil {
			errCh <- fmt.Errorf("gRPC server: %w", err)
		}
	}()

	go func() {
		b.logger.Info("HTTP server listening", "addr", httpLn.Addr().String())
		if err := b.httpServer.Serve(httpLn); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return errCh
}

// waitForShutdownSignal waits for context cancellation or server error.
func (b *Broker) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		b.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		b.logger.Error("server error", "error", err)
		b.drainErrors(errCh)
		return err
	}
}

// drainErrors drains any remaining errors from the channel.
func (b *Broker) drainErrors(errCh chan error) {
	select {
	case additionalErr := <-errCh:
		b.logger.Error("additional server error", "error", additionalErr)
	default:
	}
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (b *Broker) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), b.config.Server.ShutdownTimeout)
	defer cancel()
	return b.Shutdown(ctx)
}

// shutdownGRPCServer gracefully stops the gRPC server or force-stops on context cancel.
func (b *Broker) shutdownGRPCServer(ctx context.Context) {
	stopped := make(chan struct{})
	go func() {
		b.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		b.grpcServer.Stop()
	}
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown gracefully stops all broker servers and releases resources.
func (b *Broker) Shutdown(ctx context.Context) error {
	b.logger.Info("shutting down broker")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", b.httpServer.Shutdown(ctx))

	b.shutdownGRPCServer(ctx)

	if b.tsnetServer != nil {
		errs = appendCloseError(errs, "tailscale shutdown", b.tsnetServer.Close())
	}

	b.broadcaster.Close()
	errs = appendCloseError(errs, "store close", b.store.Close())

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// handleHealth returns 200 OK if the server is alive.
func (b *Broker) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK once the store answers queries.
func (b *Broker) handleReady(w http.ResponseWriter, r *http.Request) {
	_, _, err := b.store.ListSessions(r.Context(), 1, "")
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = fmt.Fprintf(w, "store not ready: %v", err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

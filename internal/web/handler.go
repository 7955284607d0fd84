// ABOUTME: HTTP frontend for browser clients: gRPC-Web gateway plus SPA serving
// ABOUTME: Unary gRPC-Web calls are dispatched in-process, no loopback connection

// Package web translates browser gRPC-Web requests into direct in-process
// calls on the simulator service and serves the bundled frontend.
package web

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kevinaud/adk-sim-plugin/internal/store"
	"github.com/kevinaud/adk-sim-plugin/proto/simv1"
)

const servicePath = "/adksim.v1.SimulatorService"

// Backend is the unary surface of the simulator service the gateway exposes
// to browsers. Subscribe is deliberately absent: server streaming over
// gRPC-Web needs a different transport and browsers poll instead.
type Backend interface {
	CreateSession(ctx context.Context, req *simv1.CreateSessionRequest) (*simv1.CreateSessionResponse, error)
	ListSessions(ctx context.Context, req *simv1.ListSessionsRequest) (*simv1.ListSessionsResponse, error)
	SubmitRequest(ctx context.Context, req *simv1.SubmitRequestRequest) (*simv1.SubmitRequestResponse, error)
	SubmitDecision(ctx context.Context, req *simv1.SubmitDecisionRequest) (*simv1.SubmitDecisionResponse, error)
}

// Config configures the web handler.
type Config struct {
	Backend Backend
	// Store is read directly for the server-rendered transcript view.
	Store store.Store
	// UIDir is the bundled frontend directory; empty or missing means the
	// SPA routes answer "Frontend not bundled".
	UIDir  string
	Logger *slog.Logger
}

// Handler serves the browser-facing HTTP surface.
type Handler struct {
	backend Backend
	store   store.Store
	uiDir   string
	router  chi.Router
	logger  *slog.Logger
}

// NewHandler builds the router: gRPC-Web endpoints, the transcript view, and
// static SPA serving.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		backend: cfg.Backend,
		store:   cfg.Store,
		uiDir:   cfg.UIDir,
		logger:  logger.With("component", "web"),
	}

	r := chi.NewRouter()
	r.Post(servicePath+"/{method}", h.handleGRPCWeb)
	r.Options(servicePath+"/{method}", h.handlePreflight)
	r.Get("/session/{id}/transcript", h.handleTranscript)
	r.NotFound(h.handleSPA)
	h.router = r
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// dispatch routes a decoded request message to the backend method.
func (h *Handler) dispatch(ctx context.Context, method string, msg []byte) (simv1.Message, error) {
	switch method {
	case "CreateSession":
		req := new(simv1.CreateSessionRequest)
		if err := req.UnmarshalWire(msg); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "decoding request: %v", err)
		}
		return h.backend.CreateSession(ctx, req)
	case "ListSessions":
		req := new(simv1.ListSessionsRequest)
		if err := req.UnmarshalWire(msg); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "decoding request: %v", err)
		}
		return h.backend.ListSessions(ctx, req)
	case "SubmitRequest":
		req := new(simv1.SubmitRequestRequest)
		if err := req.UnmarshalWire(msg); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "decoding request: %v", err)
		}
		return h.backend.SubmitRequest(ctx, req)
	case "SubmitDecision":
		req := new(simv1.SubmitDecisionRequest)
		if err := req.UnmarshalWire(msg); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "decoding request: %v", err)
		}
		return h.backend.SubmitDecision(ctx, req)
	default:
		return nil, status.Errorf(codes.Unimplemented, "unknown method: %s", method)
	}
}

// handleGRPCWeb translates one unary gRPC-Web POST into a backend call.
func (h *Handler) handleGRPCWeb(w http.ResponseWriter, r *http.Request) {
	method := chi.URLParam(r, "method")
	isText := strings.Contains(r.Header.Get("Content-Type"), "grpc-web-text")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "reading body", http.StatusBadRequest)
		return
	}

	msg, err := decodeGRPCWebPayload(body, isText)
	if err != nil {
		h.logger.Warn("bad gRPC-Web payload", "method", method, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.dispatch(r.Context(), method, msg)
	if err != nil {
		st := status.Convert(err)
		h.logger.Warn("gRPC-Web call failed",
			"method", method,
			"code", st.Code().String(),
			"error", st.Message(),
		)
		h.writeGRPCWebError(w, st, isText)
		return
	}

	payload, err := resp.MarshalWire()
	if err != nil {
		h.writeGRPCWebError(w, status.New(codes.Internal, "encoding response"), isText)
		return
	}

	writeGRPCWebHeaders(w, isText)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(encodeGRPCWebResponse(payload, isText))
}

// handlePreflight answers CORS preflight for the gRPC-Web endpoints.
func (h *Handler) handlePreflight(w http.ResponseWriter, r *http.Request) {
	hdr := w.Header()
	hdr.Set("Access-Control-Allow-Origin", "*")
	hdr.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	hdr.Set("Access-Control-Allow-Headers", "content-type, x-grpc-web, x-user-agent")
	hdr.Set("Access-Control-Max-Age", "86400")
	w.WriteHeader(http.StatusNoContent)
}

// handleSPA serves the bundled frontend with index.html fallback so
// client-side routes resolve on hard refresh.
func (h *Handler) handleSPA(w http.ResponseWriter, r *http.Request) {
	if h.uiDir == "" {
		http.Error(w, "Frontend not bundled", http.StatusNotFound)
		return
	}

	// Serve the exact file when it exists; anything else falls back to
	// index.html for client-side routing.
	requested := filepath.Join(h.uiDir, filepath.Clean("/"+r.URL.Path))
	if info, err := os.Stat(requested); err == nil && !info.IsDir() {
		http.ServeFile(w, r, requested)
		return
	}

	index := filepath.Join(h.uiDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		http.Error(w, "Frontend not bundled", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, index)
}

func writeGRPCWebHeaders(w http.ResponseWriter, isText bool) {
	hdr := w.Header()
	hdr.Set("Content-Type", grpcWebContentType(isText))
	hdr.Set("Access-Control-Allow-Origin", "*")
	hdr.Set("Access-Control-Expose-Headers", "grpc-status,grpc-message")
}

func (h *Handler) writeGRPCWebError(w http.ResponseWriter, st *status.Status, isText bool) {
	trailers := fmt.Sprintf("grpc-status:%d\r\ngrpc-message:%s\r\n", st.Code(), st.Message())
	frame := encodeFrame(0x80, []byte(trailers))
	if isText {
		frame = []byte(base64.StdEncoding.EncodeToString(frame))
	}
	writeGRPCWebHeaders(w, isText)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(frame)
}

func grpcWebContentType(isText bool) string {
	if isText {
		return "application/grpc-web-text"
	}
	return "application/grpc-web+proto"
}

// decodeGRPCWebPayload strips the gRPC-Web frame: 1 flag byte, 4-byte
// big-endian length, then the message.
func decodeGRPCWebPayload(body []byte, isText bool) ([]byte, error) {
	if isText {
		decoded, err := base64.StdEncoding.DecodeString(string(body))
		if err != nil {
			return nil, fmt.Errorf("decoding base64 payload: %w", err)
		}
		body = decoded
	}
	if len(body) < 5 {
		return nil, fmt.Errorf("invalid gRPC-Web payload: too short (%d bytes)", len(body))
	}
	length := binary.BigEndian.Uint32(body[1:5])
	if uint32(len(body)-5) < length {
		return nil, fmt.Errorf("invalid gRPC-Web payload: truncated message")
	}
	return body[5 : 5+length], nil
}

// encodeGRPCWebResponse wraps the payload in a message frame followed by an
// OK trailer frame.
func encodeGRPCWebResponse(payload []byte, isText bool) []byte {
	resp := append(encodeFrame(0, payload), encodeFrame(0x80, []byte("grpc-status:0\r\n"))...)
	if isText {
		return []byte(base64.StdEncoding.EncodeToString(resp))
	}
	return resp
}

func encodeFrame(flag byte, payload []byte) []byte {
	frame := make([]byte, 5+len(payload))
	frame[0] = flag
	binary.BigEndian.PutUint32(frame[1:5], uint32(len(payload)))
	copy(frame[5:], payload)
	return frame
}

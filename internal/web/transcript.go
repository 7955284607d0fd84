// ABOUTME: Server-rendered HTML transcript of a session's event history
// ABOUTME: Text parts render as markdown so operators can read without the SPA

package web

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/kevinaud/adk-sim-plugin/internal/store"
	"github.com/kevinaud/adk-sim-plugin/proto/simv1"
)

var transcriptTmpl = template.Must(template.New("transcript").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Session {{.SessionID}} transcript</title>
<style>
body { font-family: sans-serif; max-width: 56rem; margin: 2rem auto; padding: 0 1rem; }
.event { border: 1px solid #ddd; border-radius: 6px; margin: 1rem 0; padding: 0.5rem 1rem; }
.event.request { border-left: 4px solid #2a6; }
.event.decision { border-left: 4px solid #26a; }
.meta { color: #666; font-size: 0.85rem; }
pre { background: #f6f6f6; padding: 0.5rem; overflow-x: auto; }
</style>
</head>
<body>
<h1>Session transcript</h1>
<p class="meta">{{.SessionID}}{{if .Description}} &mdash; {{.Description}}{{end}} ({{.Status}})</p>
{{range .Entries}}
<div class="event {{.Kind}}">
<p class="meta">{{.Heading}}</p>
{{range .Parts}}{{.}}{{end}}
</div>
{{else}}
<p>No events yet.</p>
{{end}}
</body>
</html>
`))

type transcriptEntry struct {
	Kind    string
	Heading string
	Parts   []template.HTML
}

type transcriptData struct {
	SessionID   string
	Description string
	Status      string
	Entries     []transcriptEntry
}

// handleTranscript renders a session's history as a standalone HTML page.
func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := r.Context()

	session, err := h.store.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("loading session for transcript", "session_id", sessionID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	events, err := h.store.EventsBySession(ctx, sessionID)
	if err != nil {
		h.logger.Error("loading events for transcript", "session_id", sessionID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := transcriptData{
		SessionID:   session.Id,
		Description: session.Description,
		Status:      session.Status.String(),
		Entries:     make([]transcriptEntry, 0, len(events)),
	}
	for _, ev := range events {
		data.Entries = append(data.Entries, renderEntry(ev))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := transcriptTmpl.Execute(w, data); err != nil {
		h.logger.Error("rendering transcript", "session_id", sessionID, "error", err)
	}
}

func renderEntry(ev *simv1.SessionEvent) transcriptEntry {
	ts := ""
	if ev.Timestamp != nil {
		ts = ev.Timestamp.AsTime().Format("2006-01-02 15:04:05")
	}

	if req := ev.GetLlmRequest(); req != nil {
		heading := fmt.Sprintf("%s · request from %s (turn %s)", ts, ev.AgentName, ev.TurnId)
		var parts []template.HTML
		for _, content := range req.Contents {
			parts = append(parts, renderContent(content)...)
		}
		return transcriptEntry{Kind: "request", Heading: heading, Parts: parts}
	}

	if resp := ev.GetLlmResponse(); resp != nil {
		heading := fmt.Sprintf("%s · decision (turn %s)", ts, ev.TurnId)
		var parts []template.HTML
		for _, cand := range resp.Candidates {
			if cand.Content != nil {
				parts = append(parts, renderContent(cand.Content)...)
			}
		}
		return transcriptEntry{Kind: "decision", Heading: heading, Parts: parts}
	}

	return transcriptEntry{Kind: "other", Heading: ts}
}

// renderContent converts one content's parts to HTML fragments. Text parts go
// through the markdown renderer; tool parts show name and JSON payload.
func renderContent(content *simv1.Content) []template.HTML {
	var out []template.HTML
	for _, part := range content.Parts {
		switch {
		case part.GetText() != "":
			out = append(out, renderMarkdown(part.GetText()))
		case part.GetFunctionCall() != nil:
			fc := part.GetFunctionCall()
			out = append(out, renderToolBlock("call", fc.Name, protojson.Format(fc.Args)))
		case part.GetFunctionResponse() != nil:
			fr := part.GetFunctionResponse()
			out = append(out, renderToolBlock("result", fr.Name, protojson.Format(fr.Response)))
		}
	}
	return out
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(text), &buf); err != nil {
		var esc strings.Builder
		template.HTMLEscape(&esc, []byte(text))
		return template.HTML("<pre>" + esc.String() + "</pre>")
	}
	return template.HTML(buf.String())
}

func renderToolBlock(kind, name, body string) template.HTML {
	var esc strings.Builder
	template.HTMLEscape(&esc, []byte(body))
	var nameEsc strings.Builder
	template.HTMLEscape(&nameEsc, []byte(name))
	return template.HTML(fmt.Sprintf("<p class=\"meta\">tool %s: %s</p><pre>%s</pre>", kind, nameEsc.String(), esc.String()))
}

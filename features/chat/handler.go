package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"portfolio/backend/internal/knowledge"
	"portfolio/backend/internal/middleware"
)

type RepoSource interface {
	FetchRepos(ctx context.Context) ([]knowledge.Repo, error)
}

type Handler struct {
	session    *Session
	source     RepoSource
	resumePath string
}

func NewHandler(session *Session, source RepoSource, resumePath string) *Handler {
	return &Handler{session: session, source: source, resumePath: resumePath}
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Response string `json:"response"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

type StatusResponse struct {
	Initialized bool   `json:"initialized"`
	Message     string `json:"message"`
}

type InitializeResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// Status reports whether the chatbot is ready to answer.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{Initialized: h.session.Ready()}
	if resp.Initialized {
		resp.Message = "Chatbot is ready"
	} else {
		resp.Message = "Chatbot is initializing..."
	}
	writeJSON(w, http.StatusOK, resp)
}

// Chat answers a single message. Not-ready sessions get a 503; a provider
// failure is reported in-band with success=false so the frontend can render
// it as a chat bubble instead of a broken page.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, ChatResponse{Success: false, Error: "message is required"})
		return
	}

	if !h.session.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, ChatResponse{
			Success: false,
			Error:   "Chatbot is still initializing. Please try again in a moment.",
		})
		return
	}

	answer, err := h.session.Ask(ctx, req.Message)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate response", "error", err, "correlationId", correlationID)
		writeJSON(w, http.StatusOK, ChatResponse{
			Success: false,
			Error:   fmt.Sprintf("Failed to generate response: %v", err),
		})
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Response: answer, Success: true})
}

// Stream answers a single message as a server-sent event stream of answer
// fragments, terminated by a [DONE] event.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, ChatResponse{Success: false, Error: "message is required"})
		return
	}

	if !h.session.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, ChatResponse{
			Success: false,
			Error:   "Chatbot is still initializing. Please try again in a moment.",
		})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, ChatResponse{Success: false, Error: "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	err := h.session.AskStream(ctx, req.Message, func(fragment string) error {
		if _, werr := fmt.Fprintf(w, "data: %s\n\n", fragment); werr != nil {
			return werr
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "stream aborted", "error", err, "correlationId", correlationID)
		return
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// Initialize fetches the configured user's repositories and (re)builds the
// knowledge base. Against an already-ready session this is a no-op.
func (h *Handler) Initialize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	repos, err := h.source.FetchRepos(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch repositories", "error", err, "correlationId", correlationID)
		writeJSON(w, http.StatusInternalServerError, InitializeResponse{
			Message: fmt.Sprintf("failed to fetch repositories: %v", err),
			Success: false,
		})
		return
	}

	if len(repos) == 0 {
		writeJSON(w, http.StatusOK, InitializeResponse{Message: "No repositories found", Success: false})
		return
	}

	if err := h.session.Initialize(ctx, repos, LoadResume(ctx, h.resumePath)); err != nil {
		slog.ErrorContext(ctx, "initialization failed", "error", err, "correlationId", correlationID)
		writeJSON(w, http.StatusInternalServerError, InitializeResponse{
			Message: fmt.Sprintf("initialization failed: %v", err),
			Success: false,
		})
		return
	}

	writeJSON(w, http.StatusOK, InitializeResponse{
		Message: fmt.Sprintf("Initialized with %d repositories", len(repos)),
		Success: true,
	})
}

// LoadResume reads the résumé PDF if one is configured. A missing file is
// normal and only logged.
func LoadResume(ctx context.Context, path string) []byte {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		slog.WarnContext(ctx, "resume not available", "path", path, "error", err)
		return nil
	}
	return data
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"portfolio/backend/features/chat"
	"portfolio/backend/features/contact"
	"portfolio/backend/features/projects"
	"portfolio/backend/features/stats"
	"portfolio/backend/internal/config"
	"portfolio/backend/internal/knowledge"
	"portfolio/backend/internal/middleware"
	"portfolio/backend/internal/retrieval"
	"portfolio/backend/internal/text"
)

// Source is the GitHub-backed repository source shared by the chat,
// projects, and stats features.
type Source interface {
	FetchRepos(ctx context.Context) ([]knowledge.Repo, error)
	FetchLanguages(ctx context.Context, repo string) (map[string]int, error)
}

type App struct {
	Handler http.Handler
	Session *chat.Session

	cfg    *config.Config
	source Source
}

// New wires features into an HTTP handler. db may be nil; the contact
// endpoint is only registered when a database is configured.
func New(
	cfg *config.Config,
	db *sql.DB,
	store retrieval.VectorStore,
	embedder retrieval.Embedder,
	llm chat.LLM,
	source Source,
	queryLogger *retrieval.QueryLogger,
) (*App, error) {
	splitter, err := text.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	profile := config.DefaultProfile()
	builder := knowledge.NewBuilder(profile, config.DefaultSkills(), config.FeaturedProjects(), knowledge.ExtractPDFText)
	retriever := retrieval.NewService(embedder, store, cfg.RetrievalK, queryLogger)

	session := chat.NewSession(builder, splitter, retriever, llm, profile.Name)
	chatHandler := chat.NewHandler(session, source, cfg.ResumePath)
	projectsHandler := projects.NewHandler(source, source, projects.NewService())
	statsHandler := stats.NewHandler(source, source)

	cors := middleware.CORS(cfg.AllowedOrigins)
	wrap := func(h http.HandlerFunc) http.Handler {
		return middleware.CorrelationID(cors(h))
	}

	mux := http.NewServeMux()

	mux.Handle("GET /{$}", wrap(root))
	mux.Handle("GET /health", wrap(health))

	mux.Handle("GET /api/chat/status", wrap(chatHandler.Status))
	mux.Handle("POST /api/chat", wrap(chatHandler.Chat))
	mux.Handle("POST /api/chat/stream", wrap(chatHandler.Stream))
	mux.Handle("POST /api/chat/initialize", wrap(chatHandler.Initialize))

	mux.Handle("GET /api/projects", wrap(projectsHandler.List))
	mux.Handle("GET /api/stats", wrap(statsHandler.GetStats))

	if db != nil {
		contactHandler := contact.NewHandler(contact.NewPostgresRepo(db))
		mux.Handle("POST /api/contact", wrap(contactHandler.Create))
		mux.Handle("GET /api/contact/messages", wrap(contactHandler.List))
	}

	// method-specific patterns never match preflight requests
	mux.Handle("OPTIONS /", cors(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})))

	return &App{Handler: mux, Session: session, cfg: cfg, source: source}, nil
}

// InitializeKnowledgeBase builds the index at startup. Source failures are
// not fatal: the session still reaches ready on the personal-info document.
func (a *App) InitializeKnowledgeBase(ctx context.Context) {
	repos, err := a.source.FetchRepos(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to load repositories, initializing with personal info only", "error", err)
	} else {
		slog.InfoContext(ctx, "loaded repositories", "count", len(repos))
	}

	resume := chat.LoadResume(ctx, a.cfg.ResumePath)

	if err := a.Session.Initialize(ctx, repos, resume); err != nil {
		slog.ErrorContext(ctx, "knowledge base initialization failed", "error", err)
		return
	}
	slog.InfoContext(ctx, "knowledge base ready", "repositories", len(repos))
}

func root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"message": "Portfolio AI Chatbot API",
		"status":  "running",
		"docs":    "/docs",
	})
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

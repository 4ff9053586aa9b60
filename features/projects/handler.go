package projects

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"portfolio/backend/internal/knowledge"
	"portfolio/backend/internal/middleware"
)

// languageRepoLimit caps per-repo language lookups to stay well inside the
// GitHub rate limit.
const languageRepoLimit = 20

type RepoSource interface {
	FetchRepos(ctx context.Context) ([]knowledge.Repo, error)
}

type LanguageSource interface {
	FetchLanguages(ctx context.Context, repo string) (map[string]int, error)
}

type Handler struct {
	source    RepoSource
	languages LanguageSource
	service   *Service
}

func NewHandler(source RepoSource, languages LanguageSource, service *Service) *Handler {
	return &Handler{source: source, languages: languages, service: service}
}

// List serves GET /api/projects with optional category, q, min_stars, and
// sort query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	q := r.URL.Query()

	minStars := 0
	if raw := q.Get("min_stars"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.writeError(ctx, w, "VALIDATION_ERROR", "min_stars must be a non-negative integer", http.StatusBadRequest)
			return
		}
		minStars = parsed
	}

	repos, err := h.source.FetchRepos(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch repositories", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "UPSTREAM_ERROR", "failed to fetch repositories", http.StatusBadGateway)
		return
	}

	repos = h.service.Filter(repos, q.Get("category"), q.Get("q"), minStars)
	repos = Sort(repos, q.Get("sort"))
	result := h.service.Enrich(repos, h.fetchLanguages(ctx, repos))

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"data": result,
		"meta": map[string]int{"count": len(result)},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// fetchLanguages collects language byte counts for the listed repos. A
// failed lookup drops that repo's entry, never the listing.
func (h *Handler) fetchLanguages(ctx context.Context, repos []knowledge.Repo) map[string]map[string]int {
	correlationID := middleware.GetCorrelationID(ctx)

	out := make(map[string]map[string]int)
	for i, repo := range repos {
		if i >= languageRepoLimit {
			break
		}
		langs, err := h.languages.FetchLanguages(ctx, repo.Name)
		if err != nil {
			slog.WarnContext(ctx, "failed to fetch languages", "repo", repo.Name, "error", err, "correlationId", correlationID)
			continue
		}
		out[repo.Name] = langs
	}
	return out
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

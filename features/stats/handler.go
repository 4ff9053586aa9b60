package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

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
	repos     RepoSource
	languages LanguageSource
}

func NewHandler(repos RepoSource, languages LanguageSource) *Handler {
	return &Handler{repos: repos, languages: languages}
}

type StatsResponse struct {
	TotalRepos  int            `json:"total_repos"`
	TotalStars  int            `json:"total_stars"`
	TotalForks  int            `json:"total_forks"`
	Languages   map[string]int `json:"languages"`
	PublicRepos int            `json:"public_repos"`
}

// GetStats aggregates stars, forks, and language byte counts across the
// user's repositories. A failed per-repo language lookup is skipped.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	repos, err := h.repos.FetchRepos(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch repositories", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "UPSTREAM_ERROR", "failed to fetch repositories", http.StatusBadGateway)
		return
	}

	resp := StatsResponse{
		TotalRepos:  len(repos),
		PublicRepos: len(repos),
		Languages:   make(map[string]int),
	}

	for _, repo := range repos {
		resp.TotalStars += repo.Stars
		resp.TotalForks += repo.Forks
	}

	for i, repo := range repos {
		if i >= languageRepoLimit {
			break
		}
		langs, err := h.languages.FetchLanguages(ctx, repo.Name)
		if err != nil {
			slog.WarnContext(ctx, "failed to fetch languages", "repo", repo.Name, "error", err, "correlationId", correlationID)
			continue
		}
		for lang, bytes := range langs {
			resp.Languages[lang] += bytes
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": resp}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
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

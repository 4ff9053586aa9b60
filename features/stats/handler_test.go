package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/backend/internal/knowledge"
)

type fakeSource struct {
	repos     []knowledge.Repo
	reposErr  error
	languages map[string]map[string]int
	langErr   map[string]error
	langCalls int
}

func (f *fakeSource) FetchRepos(context.Context) ([]knowledge.Repo, error) {
	return f.repos, f.reposErr
}

func (f *fakeSource) FetchLanguages(_ context.Context, repo string) (map[string]int, error) {
	f.langCalls++
	if err := f.langErr[repo]; err != nil {
		return nil, err
	}
	return f.languages[repo], nil
}

func TestGetStats(t *testing.T) {
	src := &fakeSource{
		repos: []knowledge.Repo{
			{Name: "studybuddy", Stars: 12, Forks: 2},
			{Name: "promptboost", Stars: 5, Forks: 1},
		},
		languages: map[string]map[string]int{
			"studybuddy":  {"Python": 50000, "HTML": 1000},
			"promptboost": {"Python": 20000},
		},
	}
	h := NewHandler(src, src)

	rec := httptest.NewRecorder()
	h.GetStats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data StatsResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, 2, resp.Data.TotalRepos)
	assert.Equal(t, 17, resp.Data.TotalStars)
	assert.Equal(t, 3, resp.Data.TotalForks)
	assert.Equal(t, 2, resp.Data.PublicRepos)
	assert.Equal(t, map[string]int{"Python": 70000, "HTML": 1000}, resp.Data.Languages)
}

func TestGetStats_LanguageErrorSkipped(t *testing.T) {
	src := &fakeSource{
		repos: []knowledge.Repo{
			{Name: "studybuddy", Stars: 12},
			{Name: "broken"},
		},
		languages: map[string]map[string]int{
			"studybuddy": {"Python": 50000},
		},
		langErr: map[string]error{"broken": errors.New("rate limited")},
	}
	h := NewHandler(src, src)

	rec := httptest.NewRecorder()
	h.GetStats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data StatsResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, map[string]int{"Python": 50000}, resp.Data.Languages)
}

func TestGetStats_LanguageLookupCapped(t *testing.T) {
	src := &fakeSource{}
	for i := 0; i < 30; i++ {
		src.repos = append(src.repos, knowledge.Repo{Name: fmt.Sprintf("repo-%d", i)})
	}
	h := NewHandler(src, src)

	rec := httptest.NewRecorder()
	h.GetStats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, src.langCalls)
}

func TestGetStats_SourceError(t *testing.T) {
	src := &fakeSource{reposErr: errors.New("github down")}
	h := NewHandler(src, src)

	rec := httptest.NewRecorder()
	h.GetStats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "UPSTREAM_ERROR")
}

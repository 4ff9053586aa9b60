// Package githubsrc fetches the portfolio owner's public repositories and
// maps them to knowledge-base repo records.
package githubsrc

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"portfolio/backend/internal/knowledge"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	gh       *gh.Client
	username string
}

// NewClient builds a client for the given user. The token is optional; an
// unauthenticated client works for public repos at a lower rate limit.
func NewClient(username, token string) *Client {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	} else {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = defaultTimeout

	return &Client{gh: gh.NewClient(httpClient), username: username}
}

// SetBaseURL points the client at a different API endpoint, used in tests.
func (c *Client) SetBaseURL(raw string) error {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	c.gh.BaseURL = parsed
	return nil
}

// FetchRepos lists all public repositories of the configured user, following
// pagination to the end.
func (c *Client) FetchRepos(ctx context.Context) ([]knowledge.Repo, error) {
	opts := &gh.RepositoryListByUserOptions{
		Type:        "owner",
		Sort:        "updated",
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var all []knowledge.Repo
	for {
		repos, resp, err := c.gh.Repositories.ListByUser(ctx, c.username, opts)
		if err != nil {
			return nil, fmt.Errorf("list repos for %s: %w", c.username, err)
		}

		for _, r := range repos {
			all = append(all, mapRepo(r))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// FetchLanguages returns the language byte counts for one repository.
func (c *Client) FetchLanguages(ctx context.Context, repo string) (map[string]int, error) {
	langs, _, err := c.gh.Repositories.ListLanguages(ctx, c.username, repo)
	if err != nil {
		return nil, fmt.Errorf("list languages for %s/%s: %w", c.username, repo, err)
	}
	return langs, nil
}

func mapRepo(r *gh.Repository) knowledge.Repo {
	repo := knowledge.Repo{
		Name:        r.GetName(),
		Description: r.GetDescription(),
		Language:    r.GetLanguage(),
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		Topics:      r.Topics,
		HTMLURL:     r.GetHTMLURL(),
		SizeKB:      r.GetSize(),
		License:     r.GetLicense().GetSPDXID(),
	}
	if ts := r.GetCreatedAt(); !ts.IsZero() {
		repo.CreatedAt = ts.Time
	}
	if ts := r.GetUpdatedAt(); !ts.IsZero() {
		repo.UpdatedAt = ts.Time
	}
	return repo
}

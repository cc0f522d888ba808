// Package github provides the facade client for the GitHub REST v3 API.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tmazur/worklens/internal/apiclient"
	"github.com/tmazur/worklens/internal/config"
	"github.com/tmazur/worklens/internal/logging"
	"github.com/tmazur/worklens/pkg/models"
)

// Client encapsulates the GitHub API client. All operations are expressed
// through the shared pagination engine; none of them carry retry or
// rate-limit logic of their own.
type Client struct {
	engine   *apiclient.Engine
	pageSize int
}

// NewClient creates a new GitHub API client from configuration. It derives
// the API base URL from the configured domain (github.com or a GitHub
// Enterprise host) and composes the transport, auth strategy, retry policy,
// and rate-limit tracker behind a pagination engine.
func NewClient(cfg *config.Config) (*Client, error) {
	if err := config.ValidateGitHubConfig(cfg); err != nil {
		return nil, err
	}

	domain := cfg.GitHub.Domain
	if domain == "" {
		domain = "github.com"
	}

	// Construct API URL based on domain
	var apiURL string
	if domain == "github.com" {
		apiURL = "https://api.github.com/"
	} else {
		apiURL = fmt.Sprintf("https://%s/api/v3/", domain)
	}

	logging.Info("github configuration",
		"domain", domain,
		"api_url", apiURL,
		"token", logging.MaskSensitive(cfg.GitHub.Token))

	transport := newTransport(cfg, apiURL)
	auth := apiclient.GitHubAuth(apiclient.NewTokenCredential(cfg.GitHub.Token))
	engine := apiclient.NewEngine(
		transport,
		auth,
		apiclient.GitHubDefaults(),
		apiclient.NewTracker(),
		cfg.HTTP.MaxPages,
		"application/json",
		logging.GetLogger(),
	)

	return &Client{engine: engine, pageSize: cfg.HTTP.PageSize}, nil
}

// newTransport selects the HTTP backend configured for this run.
func newTransport(cfg *config.Config, baseURL string) apiclient.Transport {
	if cfg.HTTP.Backend == "resty" {
		return apiclient.NewRestyTransport(baseURL, cfg.HTTP.Timeout)
	}
	return apiclient.NewNetTransport(baseURL, cfg.HTTP.Timeout)
}

// RateLimit returns the current rate-limit snapshot for UI and logging.
func (c *Client) RateLimit() apiclient.RateLimitState {
	return c.engine.Tracker().State()
}

// parseRepository splits an "owner/repo" string, failing with a validation
// error before any network call when the format is wrong.
func parseRepository(repository string) (string, string, error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", apiclient.NewError(apiclient.KindValidation,
			"invalid repository format: %s, expected format: owner/repo", repository)
	}
	return parts[0], parts[1], nil
}

// commitResponse mirrors the fields of the list-commits endpoint this client
// consumes.
type commitResponse struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author struct {
			Name  string    `json:"name"`
			Email string    `json:"email"`
			Date  time.Time `json:"date"`
		} `json:"author"`
		Message string `json:"message"`
	} `json:"commit"`
	Author *struct {
		Login string `json:"login"`
	} `json:"author"`
}

// pullResponse mirrors the fields of the list-pulls endpoint.
type pullResponse struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	State  string `json:"state"`
	User   *struct {
		Login string `json:"login"`
	} `json:"user"`
	CreatedAt time.Time  `json:"created_at"`
	MergedAt  *time.Time `json:"merged_at"`
	ClosedAt  *time.Time `json:"closed_at"`
}

// issueResponse mirrors the fields of the list-issues endpoint. PullRequest
// is set when the record is actually a pull request; the issues API returns
// both.
type issueResponse struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	State  string `json:"state"`
	User   *struct {
		Login string `json:"login"`
	} `json:"user"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at"`
	Labels    []struct {
		Name string `json:"name"`
	} `json:"labels"`
	PullRequest *json.RawMessage `json:"pull_request"`
}

// commentResponse mirrors the fields of the issue-comments endpoint.
type commentResponse struct {
	User *struct {
		Login string `json:"login"`
	} `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

// ListCommits retrieves all commits in a repository authored inside the
// [since, until] window. The repository should be in the format
// "owner/repo". The boolean result reports whether the page ceiling
// truncated the fetch.
func (c *Client) ListCommits(ctx context.Context, repository string, since, until time.Time) ([]models.Commit, bool, error) {
	owner, repo, err := parseRepository(repository)
	if err != nil {
		return nil, false, err
	}

	query := url.Values{}
	if !since.IsZero() {
		query.Set("since", since.Format(time.RFC3339))
	}
	if !until.IsZero() {
		query.Set("until", until.Format(time.RFC3339))
	}

	var commits []models.Commit
	spec := apiclient.RequestSpec{
		Path:  fmt.Sprintf("repos/%s/%s/commits", owner, repo),
		Query: query,
	}

	res, err := c.engine.FetchAll(ctx, spec, apiclient.NewPageCursor(c.pageSize), func(body []byte) (apiclient.Page, error) {
		var page []commitResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return apiclient.Page{}, err
		}
		for _, raw := range page {
			author := raw.Commit.Author.Name
			if raw.Author != nil && raw.Author.Login != "" {
				author = raw.Author.Login
			}
			commits = append(commits, models.Commit{
				SHA:         raw.SHA,
				Repository:  repository,
				Author:      author,
				AuthorEmail: raw.Commit.Author.Email,
				Message:     raw.Commit.Message,
				AuthoredAt:  raw.Commit.Author.Date,
			})
		}
		return apiclient.Page{Count: len(page)}, nil
	})
	if err != nil {
		logging.Error("failed to fetch github commits", "repository", repository, "error", err)
		return commits, res.Truncated, err
	}

	logging.Debug("fetched github commits",
		"repository", repository,
		"count", res.Records,
		"pages", res.Pages)
	return commits, res.Truncated, nil
}

// ListPullRequests retrieves pull requests in a repository. state may be
// "open", "closed", or "all". The repository should be in the format
// "owner/repo".
func (c *Client) ListPullRequests(ctx context.Context, repository, state string) ([]models.PullRequest, bool, error) {
	owner, repo, err := parseRepository(repository)
	if err != nil {
		return nil, false, err
	}
	if state == "" {
		state = "all"
	}

	query := url.Values{}
	query.Set("state", state)
	query.Set("sort", "created")
	query.Set("direction", "desc")

	var pulls []models.PullRequest
	spec := apiclient.RequestSpec{
		Path:  fmt.Sprintf("repos/%s/%s/pulls", owner, repo),
		Query: query,
	}

	res, err := c.engine.FetchAll(ctx, spec, apiclient.NewPageCursor(c.pageSize), func(body []byte) (apiclient.Page, error) {
		var page []pullResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return apiclient.Page{}, err
		}
		for _, raw := range page {
			author := ""
			if raw.User != nil {
				author = raw.User.Login
			}
			pulls = append(pulls, models.PullRequest{
				Number:     raw.Number,
				Repository: repository,
				Title:      raw.Title,
				Author:     author,
				State:      raw.State,
				CreatedAt:  raw.CreatedAt,
				MergedAt:   raw.MergedAt,
				ClosedAt:   raw.ClosedAt,
			})
		}
		return apiclient.Page{Count: len(page)}, nil
	})
	if err != nil {
		logging.Error("failed to fetch github pull requests", "repository", repository, "error", err)
		return pulls, res.Truncated, err
	}

	logging.Debug("fetched github pull requests",
		"repository", repository,
		"count", res.Records,
		"pages", res.Pages)
	return pulls, res.Truncated, nil
}

// ListIssues retrieves issues in a repository, filtering out pull requests,
// which the issues API also returns. state may be "open", "closed", or
// "all"; a non-zero since limits results to issues updated after it.
func (c *Client) ListIssues(ctx context.Context, repository, state string, since time.Time) ([]models.Issue, bool, error) {
	owner, repo, err := parseRepository(repository)
	if err != nil {
		return nil, false, err
	}
	if state == "" {
		state = "all"
	}

	query := url.Values{}
	query.Set("state", state)
	if !since.IsZero() {
		query.Set("since", since.Format(time.RFC3339))
	}

	var issues []models.Issue
	spec := apiclient.RequestSpec{
		Path:  fmt.Sprintf("repos/%s/%s/issues", owner, repo),
		Query: query,
	}

	res, err := c.engine.FetchAll(ctx, spec, apiclient.NewPageCursor(c.pageSize), func(body []byte) (apiclient.Page, error) {
		var page []issueResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return apiclient.Page{}, err
		}
		for _, raw := range page {
			// Skip pull requests (they're also returned by the issues API)
			if raw.PullRequest != nil {
				continue
			}
			author := ""
			if raw.User != nil {
				author = raw.User.Login
			}
			labels := make([]string, 0, len(raw.Labels))
			for _, label := range raw.Labels {
				labels = append(labels, label.Name)
			}
			issues = append(issues, models.Issue{
				Number:     raw.Number,
				Repository: repository,
				Title:      raw.Title,
				Author:     author,
				State:      raw.State,
				CreatedAt:  raw.CreatedAt,
				ClosedAt:   raw.ClosedAt,
				Labels:     labels,
			})
		}
		return apiclient.Page{Count: len(page)}, nil
	})
	if err != nil {
		logging.Error("failed to fetch github issues", "repository", repository, "error", err)
		return issues, res.Truncated, err
	}

	logging.Debug("fetched github issues",
		"repository", repository,
		"count", len(issues),
		"pages", res.Pages)
	return issues, res.Truncated, nil
}

// ListIssueComments retrieves issue and pull request comments across a
// repository, created after since when non-zero.
func (c *Client) ListIssueComments(ctx context.Context, repository string, since time.Time) ([]models.IssueComment, bool, error) {
	owner, repo, err := parseRepository(repository)
	if err != nil {
		return nil, false, err
	}

	query := url.Values{}
	if !since.IsZero() {
		query.Set("since", since.Format(time.RFC3339))
	}

	var comments []models.IssueComment
	spec := apiclient.RequestSpec{
		Path:  fmt.Sprintf("repos/%s/%s/issues/comments", owner, repo),
		Query: query,
	}

	res, err := c.engine.FetchAll(ctx, spec, apiclient.NewPageCursor(c.pageSize), func(body []byte) (apiclient.Page, error) {
		var page []commentResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return apiclient.Page{}, err
		}
		for _, raw := range page {
			author := ""
			if raw.User != nil {
				author = raw.User.Login
			}
			comments = append(comments, models.IssueComment{
				Repository: repository,
				Author:     author,
				CreatedAt:  raw.CreatedAt,
			})
		}
		return apiclient.Page{Count: len(page)}, nil
	})
	if err != nil {
		logging.Error("failed to fetch github comments", "repository", repository, "error", err)
		return comments, res.Truncated, err
	}

	logging.Debug("fetched github comments",
		"repository", repository,
		"count", res.Records,
		"pages", res.Pages)
	return comments, res.Truncated, nil
}

// Package jira provides the facade client for the Jira REST API. It speaks
// v2 (Server/DC) or v3 (Cloud), selected by a probe at construction.
package jira

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

// Client handles interactions with the Jira API. All operations are
// expressed through the shared pagination engine.
type Client struct {
	engine   *apiclient.Engine
	version  int
	pageSize int
}

// NewClient creates a new Jira client from configuration and probes the
// instance's API version. A 200 from the v3 endpoint selects v3, a 404
// selects v2, and any inconclusive outcome (network failure, 5xx, auth
// errors) falls back to v2; auth problems still surface from the first real
// operation.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	if err := config.ValidateJiraConfig(cfg); err != nil {
		return nil, err
	}

	baseURL := strings.TrimSuffix(cfg.Jira.URL, "/")

	logging.Info("jira configuration",
		"url", baseURL,
		"username", cfg.Jira.Username,
		"token", logging.MaskSensitive(cfg.Jira.Token))

	var transport apiclient.Transport
	if cfg.HTTP.Backend == "resty" {
		transport = apiclient.NewRestyTransport(baseURL, cfg.HTTP.Timeout)
	} else {
		transport = apiclient.NewNetTransport(baseURL, cfg.HTTP.Timeout)
	}

	auth := apiclient.JiraAuth(apiclient.NewBasicCredential(cfg.Jira.Username, cfg.Jira.Token))
	engine := apiclient.NewEngine(
		transport,
		auth,
		apiclient.JiraDefaults(),
		apiclient.NewTracker(),
		cfg.HTTP.MaxPages,
		"application/json",
		logging.GetLogger(),
	)

	version := probeVersion(ctx, transport, auth)
	logging.Info("jira api version selected", "version", version)

	return &Client{engine: engine, version: version, pageSize: cfg.HTTP.PageSize}, nil
}

// probeVersion issues a single unretried v3 request to detect the API
// version the instance serves.
func probeVersion(ctx context.Context, transport apiclient.Transport, auth apiclient.AuthStrategy) int {
	headers, err := auth.Headers()
	if err != nil {
		return 2
	}

	env, err := transport.Execute(ctx, apiclient.RequestSpec{Path: "rest/api/3/myself"}, headers)
	if err != nil {
		logging.Debug("jira version probe inconclusive, assuming v2", "error", err)
		return 2
	}
	switch {
	case env.StatusCode >= 200 && env.StatusCode < 300:
		return 3
	case env.StatusCode == 404:
		return 2
	default:
		logging.Debug("jira version probe inconclusive, assuming v2", "status_code", env.StatusCode)
		return 2
	}
}

// Version returns the API version the client selected at construction.
func (c *Client) Version() int {
	return c.version
}

// RateLimit returns the current rate-limit snapshot for UI and logging.
func (c *Client) RateLimit() apiclient.RateLimitState {
	return c.engine.Tracker().State()
}

// apiPath prefixes an endpoint with the selected API version.
func (c *Client) apiPath(endpoint string) string {
	return fmt.Sprintf("rest/api/%d/%s", c.version, endpoint)
}

// jiraTime unwraps Jira's timestamp format, which carries milliseconds and a
// zone offset without a colon (e.g. "2024-05-01T10:30:00.000+0200").
type jiraTime struct {
	time.Time
}

func (t *jiraTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05.000-0700", time.RFC3339} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized jira timestamp %q", s)
}

// searchResponse mirrors the envelope of the search endpoint.
type searchResponse struct {
	StartAt    int             `json:"startAt"`
	MaxResults int             `json:"maxResults"`
	Total      int             `json:"total"`
	Issues     []issueResponse `json:"issues"`
}

// issueResponse mirrors the fields of a searched issue.
type issueResponse struct {
	Key    string `json:"key"`
	Fields struct {
		Summary   string `json:"summary"`
		IssueType struct {
			Name string `json:"name"`
		} `json:"issuetype"`
		Status struct {
			Name string `json:"name"`
		} `json:"status"`
		Assignee *struct {
			DisplayName string `json:"displayName"`
		} `json:"assignee"`
		Reporter *struct {
			DisplayName string `json:"displayName"`
		} `json:"reporter"`
		Created        jiraTime  `json:"created"`
		ResolutionDate *jiraTime `json:"resolutiondate"`
	} `json:"fields"`
}

// commentsResponse mirrors the envelope of the issue-comments endpoint.
type commentsResponse struct {
	StartAt    int `json:"startAt"`
	MaxResults int `json:"maxResults"`
	Total      int `json:"total"`
	Comments   []struct {
		Author struct {
			DisplayName string `json:"displayName"`
		} `json:"author"`
		Created jiraTime `json:"created"`
	} `json:"comments"`
}

// searchFields is the field set requested from the search endpoint.
const searchFields = "summary,issuetype,status,assignee,reporter,created,resolutiondate"

// SearchIssues runs a JQL search and returns all matching issues. The
// boolean result reports whether the page ceiling truncated the fetch.
func (c *Client) SearchIssues(ctx context.Context, jql string) ([]models.JiraIssue, bool, error) {
	if strings.TrimSpace(jql) == "" {
		return nil, false, apiclient.NewError(apiclient.KindValidation, "jql query is empty")
	}

	query := url.Values{}
	query.Set("jql", jql)
	query.Set("fields", searchFields)

	var issues []models.JiraIssue
	spec := apiclient.RequestSpec{
		Path:  c.apiPath("search"),
		Query: query,
	}

	res, err := c.engine.FetchAll(ctx, spec, apiclient.NewOffsetCursor(c.pageSize), func(body []byte) (apiclient.Page, error) {
		var page searchResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return apiclient.Page{}, err
		}
		for _, raw := range page.Issues {
			issues = append(issues, convertIssue(raw))
		}
		return apiclient.Page{
			Count: len(page.Issues),
			Done:  page.StartAt+len(page.Issues) >= page.Total,
		}, nil
	})
	if err != nil {
		logging.Error("failed to search jira issues", "jql", jql, "error", err)
		return issues, res.Truncated, err
	}

	logging.Debug("fetched jira issues",
		"jql", jql,
		"count", res.Records,
		"pages", res.Pages)
	return issues, res.Truncated, nil
}

// ListComments retrieves all comments on one issue.
func (c *Client) ListComments(ctx context.Context, issueKey string) ([]models.JiraComment, bool, error) {
	if strings.TrimSpace(issueKey) == "" {
		return nil, false, apiclient.NewError(apiclient.KindValidation, "issue key is empty")
	}

	var comments []models.JiraComment
	spec := apiclient.RequestSpec{
		Path: c.apiPath(fmt.Sprintf("issue/%s/comment", issueKey)),
	}

	res, err := c.engine.FetchAll(ctx, spec, apiclient.NewOffsetCursor(c.pageSize), func(body []byte) (apiclient.Page, error) {
		var page commentsResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return apiclient.Page{}, err
		}
		for _, raw := range page.Comments {
			comments = append(comments, models.JiraComment{
				IssueKey:  issueKey,
				Author:    raw.Author.DisplayName,
				CreatedAt: raw.Created.Time,
			})
		}
		return apiclient.Page{
			Count: len(page.Comments),
			Done:  page.StartAt+len(page.Comments) >= page.Total,
		}, nil
	})
	if err != nil {
		logging.Error("failed to fetch jira comments", "issue", issueKey, "error", err)
		return comments, res.Truncated, err
	}

	return comments, res.Truncated, nil
}

// convertIssue translates the upstream issue shape to the caller-facing
// record type.
func convertIssue(raw issueResponse) models.JiraIssue {
	issue := models.JiraIssue{
		Key:       raw.Key,
		Project:   projectKey(raw.Key),
		Summary:   raw.Fields.Summary,
		Type:      raw.Fields.IssueType.Name,
		Status:    raw.Fields.Status.Name,
		CreatedAt: raw.Fields.Created.Time,
	}
	if raw.Fields.Assignee != nil {
		issue.Assignee = raw.Fields.Assignee.DisplayName
	}
	if raw.Fields.Reporter != nil {
		issue.Reporter = raw.Fields.Reporter.DisplayName
	}
	if raw.Fields.ResolutionDate != nil && !raw.Fields.ResolutionDate.IsZero() {
		resolved := raw.Fields.ResolutionDate.Time
		issue.ResolvedAt = &resolved
	}
	return issue
}

// projectKey extracts the project portion of an issue key, "ABC" from
// "ABC-123".
func projectKey(issueKey string) string {
	if idx := strings.Index(issueKey, "-"); idx > 0 {
		return issueKey[:idx]
	}
	return issueKey
}

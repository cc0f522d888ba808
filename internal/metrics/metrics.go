// Package metrics aggregates fetched activity records into per-user rows.
package metrics

import (
	"sort"
	"time"

	"github.com/tmazur/worklens/pkg/models"
)

// UserActivity holds the computed metrics for a single user.
type UserActivity struct {
	// User is the GitHub login or Jira display name the row belongs to
	User string

	// Commits is the number of commits authored in the window
	Commits int

	// PullRequests is the number of pull requests opened in the window
	PullRequests int

	// MergedPullRequests is the number of those pull requests that merged
	MergedPullRequests int

	// AvgMergeHours is the mean open-to-merge time of merged pull
	// requests, 0 when none merged
	AvgMergeHours float64

	// IssuesOpened is the number of issues created in the window
	IssuesOpened int

	// IssuesClosed is the number of authored issues closed in the window
	IssuesClosed int

	// Comments is the number of issue and pull request comments written
	Comments int

	// JiraIssuesCreated is the number of Jira issues reported in the window
	JiraIssuesCreated int

	// JiraIssuesResolved is the number of assigned Jira issues resolved
	// in the window
	JiraIssuesResolved int

	// JiraComments is the number of Jira comments written
	JiraComments int
}

// total is the row's overall activity count, used for ordering.
func (u *UserActivity) total() int {
	return u.Commits + u.PullRequests + u.IssuesOpened + u.Comments +
		u.JiraIssuesCreated + u.JiraIssuesResolved + u.JiraComments
}

// Report is the aggregated result of one run.
type Report struct {
	// GeneratedAt is when the report was produced
	GeneratedAt time.Time

	// Since and Until bound the reporting window; zero values mean
	// unbounded
	Since time.Time
	Until time.Time

	// Sources lists the repositories and projects that contributed data
	Sources []string

	// Rows holds one entry per user, ordered by descending total activity
	Rows []UserActivity

	// Truncated is set when any fetch hit the page ceiling, meaning the
	// numbers are lower bounds
	Truncated bool

	// Failures lists sources that could not be fully processed
	Failures []models.SourceFailure
}

// Aggregator accumulates records and produces a Report. The zero value is
// not usable; construct with NewAggregator.
type Aggregator struct {
	since time.Time
	until time.Time

	sources []string
	rows    map[string]*UserActivity
	// mergeHours accumulates open-to-merge durations per user until Finalize
	mergeHours map[string]float64
	truncated  bool
	failures   []models.SourceFailure
}

// NewAggregator creates an aggregator for the given reporting window. Zero
// time bounds leave the corresponding side unbounded.
func NewAggregator(since, until time.Time) *Aggregator {
	return &Aggregator{
		since:      since,
		until:      until,
		rows:       make(map[string]*UserActivity),
		mergeHours: make(map[string]float64),
	}
}

// inWindow reports whether a timestamp falls inside the reporting window.
func (a *Aggregator) inWindow(t time.Time) bool {
	if !a.since.IsZero() && t.Before(a.since) {
		return false
	}
	if !a.until.IsZero() && t.After(a.until) {
		return false
	}
	return true
}

func (a *Aggregator) row(user string) *UserActivity {
	if user == "" {
		user = "(unknown)"
	}
	r, ok := a.rows[user]
	if !ok {
		r = &UserActivity{User: user}
		a.rows[user] = r
	}
	return r
}

// AddSource records a repository or project that contributed data.
func (a *Aggregator) AddSource(source string) {
	a.sources = append(a.sources, source)
}

// MarkTruncated flags the report as a lower bound because a fetch hit the
// page ceiling.
func (a *Aggregator) MarkTruncated() {
	a.truncated = true
}

// AddFailure records a source that could not be fully processed.
func (a *Aggregator) AddFailure(source, reason string) {
	a.failures = append(a.failures, models.SourceFailure{Source: source, Reason: reason})
}

// AddCommits folds commits into the per-user rows.
func (a *Aggregator) AddCommits(commits []models.Commit) {
	for _, c := range commits {
		if !a.inWindow(c.AuthoredAt) {
			continue
		}
		a.row(c.Author).Commits++
	}
}

// AddPullRequests folds pull requests into the per-user rows. Merge time is
// counted for pull requests that merged, regardless of when the merge
// happened.
func (a *Aggregator) AddPullRequests(pulls []models.PullRequest) {
	for _, p := range pulls {
		if !a.inWindow(p.CreatedAt) {
			continue
		}
		row := a.row(p.Author)
		row.PullRequests++
		if p.MergedAt != nil {
			row.MergedPullRequests++
			a.mergeHours[row.User] += p.MergedAt.Sub(p.CreatedAt).Hours()
		}
	}
}

// AddIssues folds issues into the per-user rows.
func (a *Aggregator) AddIssues(issues []models.Issue) {
	for _, i := range issues {
		if a.inWindow(i.CreatedAt) {
			a.row(i.Author).IssuesOpened++
		}
		if i.ClosedAt != nil && a.inWindow(*i.ClosedAt) {
			a.row(i.Author).IssuesClosed++
		}
	}
}

// AddComments folds issue comments into the per-user rows.
func (a *Aggregator) AddComments(comments []models.IssueComment) {
	for _, c := range comments {
		if !a.inWindow(c.CreatedAt) {
			continue
		}
		a.row(c.Author).Comments++
	}
}

// AddJiraIssues folds Jira issues into the per-user rows. Creation counts
// toward the reporter, resolution toward the assignee.
func (a *Aggregator) AddJiraIssues(issues []models.JiraIssue) {
	for _, i := range issues {
		if a.inWindow(i.CreatedAt) {
			a.row(i.Reporter).JiraIssuesCreated++
		}
		if i.ResolvedAt != nil && a.inWindow(*i.ResolvedAt) {
			a.row(i.Assignee).JiraIssuesResolved++
		}
	}
}

// AddJiraComments folds Jira comments into the per-user rows.
func (a *Aggregator) AddJiraComments(comments []models.JiraComment) {
	for _, c := range comments {
		if !a.inWindow(c.CreatedAt) {
			continue
		}
		a.row(c.Author).JiraComments++
	}
}

// Finalize computes derived values and returns the report. Rows are ordered
// by descending total activity, ties broken by user name, so output is
// deterministic.
func (a *Aggregator) Finalize() *Report {
	rows := make([]UserActivity, 0, len(a.rows))
	for _, r := range a.rows {
		if r.MergedPullRequests > 0 {
			r.AvgMergeHours = a.mergeHours[r.User] / float64(r.MergedPullRequests)
		}
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool {
		ti, tj := rows[i].total(), rows[j].total()
		if ti != tj {
			return ti > tj
		}
		return rows[i].User < rows[j].User
	})

	return &Report{
		GeneratedAt: time.Now(),
		Since:       a.since,
		Until:       a.until,
		Sources:     a.sources,
		Rows:        rows,
		Truncated:   a.truncated,
		Failures:    a.failures,
	}
}

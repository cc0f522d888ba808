// Package models defines data structures shared across the application.
package models

import (
	"time"
)

// Commit represents a single commit fetched from a GitHub repository.
type Commit struct {
	// SHA is the full commit hash
	SHA string

	// Repository is the "owner/repo" the commit belongs to
	Repository string

	// Author is the GitHub login of the commit author, falling back to the
	// git author name when the commit is not linked to an account
	Author string

	// AuthorEmail is the git author email
	AuthorEmail string

	// Message is the full commit message
	Message string

	// AuthoredAt is the git author timestamp
	AuthoredAt time.Time
}

// PullRequest represents a GitHub pull request.
type PullRequest struct {
	// Number is the pull request number in GitHub (e.g., 42)
	Number int

	// Repository is the "owner/repo" the pull request belongs to
	Repository string

	// Title is the pull request's title
	Title string

	// Author is the GitHub login of the pull request author
	Author string

	// State is "open" or "closed"
	State string

	// CreatedAt is the timestamp when the pull request was opened
	CreatedAt time.Time

	// MergedAt is the timestamp when the pull request was merged, nil if unmerged
	MergedAt *time.Time

	// ClosedAt is the timestamp when the pull request was closed, nil if open
	ClosedAt *time.Time
}

// Issue represents a GitHub issue with its essential fields.
type Issue struct {
	// Number is the issue number in GitHub (e.g., 42)
	Number int

	// Repository is the "owner/repo" the issue belongs to
	Repository string

	// Title is the issue's title or summary
	Title string

	// Author is the GitHub login of the issue author
	Author string

	// State is the current state of the issue
	State string

	// CreatedAt is the timestamp when the issue was created
	CreatedAt time.Time

	// ClosedAt is the timestamp when the issue was closed, nil if open
	ClosedAt *time.Time

	// Labels is a slice of label names attached to the issue
	Labels []string
}

// IssueComment represents a comment on a GitHub issue or pull request.
type IssueComment struct {
	// Repository is the "owner/repo" the comment belongs to
	Repository string

	// Author is the GitHub login of the comment author
	Author string

	// CreatedAt is the timestamp when the comment was created
	CreatedAt time.Time
}

// JiraIssue represents a Jira issue with its key properties.
type JiraIssue struct {
	// Key is the full Jira issue identifier (e.g., "ABC-123")
	Key string

	// Project is the Jira project key (e.g., "ABC")
	Project string

	// Summary is the issue's summary field
	Summary string

	// Type is the Jira issue type (e.g., "Story", "Bug", "Task")
	Type string

	// Status is the current workflow status name
	Status string

	// Assignee is the display name of the current assignee, empty if unassigned
	Assignee string

	// Reporter is the display name of the issue reporter
	Reporter string

	// CreatedAt is the timestamp when the issue was created
	CreatedAt time.Time

	// ResolvedAt is the timestamp when the issue was resolved, nil if unresolved
	ResolvedAt *time.Time
}

// JiraComment represents a comment on a Jira issue.
type JiraComment struct {
	// IssueKey is the Jira issue the comment belongs to
	IssueKey string

	// Author is the display name of the comment author
	Author string

	// CreatedAt is the timestamp when the comment was created
	CreatedAt time.Time
}

// SourceFailure records a repository or project that could not be fully
// processed during a run.
type SourceFailure struct {
	// Source is the repository ("owner/repo") or Jira project key
	Source string

	// Reason is a printable, credential-free description of the failure
	Reason string
}

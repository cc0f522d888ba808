package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmazur/worklens/pkg/models"
)

func ts(day int) time.Time {
	return time.Date(2024, 5, day, 12, 0, 0, 0, time.UTC)
}

func tsPtr(day int) *time.Time {
	t := ts(day)
	return &t
}

func TestAggregateCommitsRespectsWindow(t *testing.T) {
	agg := NewAggregator(ts(10), ts(20))
	agg.AddCommits([]models.Commit{
		{Author: "ann", AuthoredAt: ts(12)},
		{Author: "ann", AuthoredAt: ts(15)},
		{Author: "ann", AuthoredAt: ts(25)}, // after window
		{Author: "bob", AuthoredAt: ts(5)},  // before window
	})

	report := agg.Finalize()
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "ann", report.Rows[0].User)
	assert.Equal(t, 2, report.Rows[0].Commits)
}

func TestAggregateUnboundedWindow(t *testing.T) {
	agg := NewAggregator(time.Time{}, time.Time{})
	agg.AddCommits([]models.Commit{
		{Author: "ann", AuthoredAt: ts(1)},
		{Author: "ann", AuthoredAt: time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)},
	})

	report := agg.Finalize()
	require.Len(t, report.Rows, 1)
	assert.Equal(t, 2, report.Rows[0].Commits)
}

func TestAggregateMergeHours(t *testing.T) {
	created := ts(1)
	mergedFast := created.Add(2 * time.Hour)
	mergedSlow := created.Add(10 * time.Hour)

	agg := NewAggregator(time.Time{}, time.Time{})
	agg.AddPullRequests([]models.PullRequest{
		{Author: "ann", CreatedAt: created, MergedAt: &mergedFast},
		{Author: "ann", CreatedAt: created, MergedAt: &mergedSlow},
		{Author: "ann", CreatedAt: created}, // unmerged, excluded from mean
	})

	report := agg.Finalize()
	require.Len(t, report.Rows, 1)
	row := report.Rows[0]
	assert.Equal(t, 3, row.PullRequests)
	assert.Equal(t, 2, row.MergedPullRequests)
	assert.InDelta(t, 6.0, row.AvgMergeHours, 0.001)
}

func TestAggregateIssuesOpenedAndClosed(t *testing.T) {
	agg := NewAggregator(ts(10), ts(20))
	agg.AddIssues([]models.Issue{
		// Opened before the window, closed inside it: counts only as closed.
		{Author: "ann", CreatedAt: ts(1), ClosedAt: tsPtr(15)},
		// Opened inside the window, still open.
		{Author: "ann", CreatedAt: ts(12)},
	})

	report := agg.Finalize()
	require.Len(t, report.Rows, 1)
	assert.Equal(t, 1, report.Rows[0].IssuesOpened)
	assert.Equal(t, 1, report.Rows[0].IssuesClosed)
}

func TestAggregateJiraAttribution(t *testing.T) {
	agg := NewAggregator(time.Time{}, time.Time{})
	agg.AddJiraIssues([]models.JiraIssue{
		{Key: "P-1", Reporter: "bob", Assignee: "ann", CreatedAt: ts(1), ResolvedAt: tsPtr(3)},
	})

	report := agg.Finalize()
	require.Len(t, report.Rows, 2)

	byUser := map[string]UserActivity{}
	for _, row := range report.Rows {
		byUser[row.User] = row
	}
	assert.Equal(t, 1, byUser["bob"].JiraIssuesCreated)
	assert.Equal(t, 0, byUser["bob"].JiraIssuesResolved)
	assert.Equal(t, 1, byUser["ann"].JiraIssuesResolved)
}

func TestFinalizeOrdering(t *testing.T) {
	agg := NewAggregator(time.Time{}, time.Time{})
	agg.AddCommits([]models.Commit{
		{Author: "quiet", AuthoredAt: ts(1)},
		{Author: "busy", AuthoredAt: ts(1)},
		{Author: "busy", AuthoredAt: ts(2)},
		{Author: "also-quiet", AuthoredAt: ts(1)},
	})

	report := agg.Finalize()
	require.Len(t, report.Rows, 3)
	assert.Equal(t, "busy", report.Rows[0].User)
	// Ties broken by name.
	assert.Equal(t, "also-quiet", report.Rows[1].User)
	assert.Equal(t, "quiet", report.Rows[2].User)
}

func TestUnknownAuthorBucket(t *testing.T) {
	agg := NewAggregator(time.Time{}, time.Time{})
	agg.AddComments([]models.IssueComment{{Author: "", CreatedAt: ts(1)}})

	report := agg.Finalize()
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "(unknown)", report.Rows[0].User)
}

func TestTruncationAndFailures(t *testing.T) {
	agg := NewAggregator(time.Time{}, time.Time{})
	agg.AddSource("o/r")
	agg.MarkTruncated()
	agg.AddFailure("o/r", "commits: server_error (status 502): bad gateway")

	report := agg.Finalize()
	assert.True(t, report.Truncated)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "o/r", report.Failures[0].Source)
	assert.Equal(t, []string{"o/r"}, report.Sources)
}

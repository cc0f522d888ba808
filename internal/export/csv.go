// Package export renders aggregated reports as CSV or HTML.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/tmazur/worklens/internal/metrics"
)

// csvHeader is the fixed column set of the CSV report.
var csvHeader = []string{
	"user",
	"commits",
	"pull_requests",
	"merged_pull_requests",
	"avg_merge_hours",
	"issues_opened",
	"issues_closed",
	"comments",
	"jira_issues_created",
	"jira_issues_resolved",
	"jira_comments",
}

// WriteCSV renders the report as CSV: a header row followed by one row per
// user.
func WriteCSV(w io.Writer, report *metrics.Report) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, row := range report.Rows {
		record := []string{
			row.User,
			strconv.Itoa(row.Commits),
			strconv.Itoa(row.PullRequests),
			strconv.Itoa(row.MergedPullRequests),
			strconv.FormatFloat(row.AvgMergeHours, 'f', 1, 64),
			strconv.Itoa(row.IssuesOpened),
			strconv.Itoa(row.IssuesClosed),
			strconv.Itoa(row.Comments),
			strconv.Itoa(row.JiraIssuesCreated),
			strconv.Itoa(row.JiraIssuesResolved),
			strconv.Itoa(row.JiraComments),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row for %s: %w", row.User, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

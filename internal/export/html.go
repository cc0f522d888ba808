package export

import (
	"fmt"
	"html/template"
	"io"

	"github.com/tmazur/worklens/internal/metrics"
)

// reportTemplate renders a self-contained HTML page. Styling stays minimal
// on purpose; the report is meant to be attached or archived, not served.
const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Activity Report</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.4em 0.8em; text-align: right; }
th { background: #f0f0f0; }
td:first-child, th:first-child { text-align: left; }
.banner { background: #fff3cd; border: 1px solid #ffe69c; padding: 0.6em 1em; margin-bottom: 1em; }
.failures { color: #842029; }
.meta { color: #555; margin-bottom: 1em; }
</style>
</head>
<body>
<h1>Activity Report</h1>
<p class="meta">
Generated {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}
{{- if not .Since.IsZero}} &middot; from {{.Since.Format "2006-01-02"}}{{end}}
{{- if not .Until.IsZero}} &middot; to {{.Until.Format "2006-01-02"}}{{end}}
{{- if .Sources}} &middot; sources: {{range $i, $s := .Sources}}{{if $i}}, {{end}}{{$s}}{{end}}{{end}}
</p>
{{if .Truncated}}<div class="banner">Results were truncated by the page ceiling; counts are lower bounds.</div>{{end}}
{{if .Failures}}<div class="banner failures">Some sources failed:
<ul>{{range .Failures}}<li>{{.Source}}: {{.Reason}}</li>{{end}}</ul>
</div>{{end}}
<table>
<tr>
<th>User</th><th>Commits</th><th>PRs</th><th>Merged PRs</th><th>Avg merge (h)</th>
<th>Issues opened</th><th>Issues closed</th><th>Comments</th>
<th>Jira created</th><th>Jira resolved</th><th>Jira comments</th>
</tr>
{{range .Rows}}
<tr>
<td>{{.User}}</td>
<td>{{.Commits}}</td>
<td>{{.PullRequests}}</td>
<td>{{.MergedPullRequests}}</td>
<td>{{printf "%.1f" .AvgMergeHours}}</td>
<td>{{.IssuesOpened}}</td>
<td>{{.IssuesClosed}}</td>
<td>{{.Comments}}</td>
<td>{{.JiraIssuesCreated}}</td>
<td>{{.JiraIssuesResolved}}</td>
<td>{{.JiraComments}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`

var htmlTemplate = template.Must(template.New("report").Parse(reportTemplate))

// WriteHTML renders the report as a standalone HTML page.
func WriteHTML(w io.Writer, report *metrics.Report) error {
	if err := htmlTemplate.Execute(w, report); err != nil {
		return fmt.Errorf("rendering html report: %w", err)
	}
	return nil
}

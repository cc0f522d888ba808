package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tmazur/worklens/internal/config"
	"github.com/tmazur/worklens/internal/jira"
	"github.com/tmazur/worklens/internal/logging"
	"github.com/tmazur/worklens/internal/metrics"
)

// jiraCmd fetches activity from one or more Jira projects and produces a
// report. A failing project does not abort the run.
var jiraCmd = &cobra.Command{
	Use:   "jira",
	Short: "Report activity from Jira projects",
	Long: `Report issue and comment activity from one or more Jira projects.

Each project is queried with a JQL search scoped to the reporting window.
Use --jql to replace the generated query entirely; projects are then used
only to label the report.

Example:
  worklens jira -p PROJ -p OTHER --since 2024-01-01 -o report.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := cmd.Flags().GetStringArray("project")
		if err != nil {
			return err
		}
		jqlOverride, err := cmd.Flags().GetString("jql")
		if err != nil {
			return err
		}
		withComments, err := cmd.Flags().GetBool("comments")
		if err != nil {
			return err
		}
		if len(projects) == 0 && jqlOverride == "" {
			return fmt.Errorf("%w: at least one project must be specified using --project (or supply --jql)", config.ErrInvalid)
		}

		since, until, err := parseWindow(cmd)
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		client, err := jira.NewClient(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		logging.Info("starting jira report",
			"projects", projects,
			"api_version", client.Version(),
			"since", since,
			"until", until)

		agg := metrics.NewAggregator(since, until)
		ctx := cmd.Context()

		sources := projects
		if jqlOverride != "" {
			sources = []string{"jql"}
		}

		for _, source := range sources {
			agg.AddSource(source)

			jql := jqlOverride
			if jql == "" {
				jql = buildProjectJQL(source, cmd)
			}

			issues, truncated, err := client.SearchIssues(ctx, jql)
			agg.AddJiraIssues(issues)
			if truncated {
				agg.MarkTruncated()
			}
			if err != nil {
				agg.AddFailure(source, fmt.Sprintf("search: %v", err))
				continue
			}

			if withComments {
				for _, issue := range issues {
					comments, truncated, err := client.ListComments(ctx, issue.Key)
					agg.AddJiraComments(comments)
					if truncated {
						agg.MarkTruncated()
					}
					if err != nil {
						agg.AddFailure(source, fmt.Sprintf("comments for %s: %v", issue.Key, err))
						break
					}
				}
			}

			logging.Info("project processed", "project", source, "issues", len(issues))

			if state := client.RateLimit(); state.Known() {
				logging.Debug("jira rate limit", "retry_after", state.RetryAfter)
			}
		}

		return finishRun(cmd, agg.Finalize())
	},
}

// buildProjectJQL generates the search query for one project, scoped to the
// reporting window when one is set.
func buildProjectJQL(project string, cmd *cobra.Command) string {
	clauses := []string{fmt.Sprintf("project = %q", project)}
	if s, _ := cmd.Flags().GetString("since"); s != "" {
		clauses = append(clauses, fmt.Sprintf("updated >= %q", s))
	}
	if u, _ := cmd.Flags().GetString("until"); u != "" {
		clauses = append(clauses, fmt.Sprintf("created <= %q", u))
	}
	return strings.Join(clauses, " AND ") + " ORDER BY created DESC"
}

func init() {
	rootCmd.AddCommand(jiraCmd)
	jiraCmd.Flags().StringArrayP("project", "p", []string{}, "Jira project key (can be specified multiple times)")
	jiraCmd.Flags().String("jql", "", "JQL query overriding the generated per-project search")
	jiraCmd.Flags().Bool("comments", false, "Also fetch per-issue comments (one extra request per issue)")
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tmazur/worklens/internal/config"
	"github.com/tmazur/worklens/internal/github"
	"github.com/tmazur/worklens/internal/logging"
	"github.com/tmazur/worklens/internal/metrics"
)

// githubCmd fetches activity from one or more GitHub repositories and
// produces a report. A failing repository does not abort the run; failures
// are collected and reported at the end.
var githubCmd = &cobra.Command{
	Use:   "github",
	Short: "Report activity from GitHub repositories",
	Long: `Report commit, pull request, issue, and comment activity from one or
more GitHub repositories.

Example:
  worklens github -r owner/repo -r owner/other --since 2024-01-01 --format html -o report.html`,
	RunE: func(cmd *cobra.Command, args []string) error {
		repositories, err := cmd.Flags().GetStringArray("repository")
		if err != nil {
			return err
		}
		if len(repositories) == 0 {
			return fmt.Errorf("%w: at least one repository must be specified using --repository", config.ErrInvalid)
		}

		since, until, err := parseWindow(cmd)
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		client, err := github.NewClient(cfg)
		if err != nil {
			return err
		}

		logging.Info("starting github report",
			"repositories", repositories,
			"since", since,
			"until", until)

		agg := metrics.NewAggregator(since, until)
		ctx := cmd.Context()

		for _, repository := range repositories {
			agg.AddSource(repository)
			failed := false

			commits, truncated, err := client.ListCommits(ctx, repository, since, until)
			agg.AddCommits(commits)
			if truncated {
				agg.MarkTruncated()
			}
			if err != nil {
				agg.AddFailure(repository, fmt.Sprintf("commits: %v", err))
				failed = true
			}

			pulls, truncated, err := client.ListPullRequests(ctx, repository, "all")
			agg.AddPullRequests(pulls)
			if truncated {
				agg.MarkTruncated()
			}
			if err != nil {
				agg.AddFailure(repository, fmt.Sprintf("pull requests: %v", err))
				failed = true
			}

			issues, truncated, err := client.ListIssues(ctx, repository, "all", since)
			agg.AddIssues(issues)
			if truncated {
				agg.MarkTruncated()
			}
			if err != nil {
				agg.AddFailure(repository, fmt.Sprintf("issues: %v", err))
				failed = true
			}

			comments, truncated, err := client.ListIssueComments(ctx, repository, since)
			agg.AddComments(comments)
			if truncated {
				agg.MarkTruncated()
			}
			if err != nil {
				agg.AddFailure(repository, fmt.Sprintf("comments: %v", err))
				failed = true
			}

			if failed {
				logging.Warn("repository processed with errors", "repository", repository)
			} else {
				logging.Info("repository processed", "repository", repository)
			}

			if state := client.RateLimit(); state.Known() {
				logging.Debug("github rate limit",
					"remaining", state.Remaining,
					"reset_at", state.ResetAt)
			}
		}

		return finishRun(cmd, agg.Finalize())
	},
}

func init() {
	rootCmd.AddCommand(githubCmd)
	githubCmd.Flags().StringArrayP("repository", "r", []string{}, "GitHub repository name, e.g. 'owner/repo' (can be specified multiple times)")
}

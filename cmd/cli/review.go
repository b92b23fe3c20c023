package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/driftaldev/redline/internal/core"
	"github.com/driftaldev/redline/internal/github"
	"github.com/driftaldev/redline/internal/gitutil"
	"github.com/driftaldev/redline/internal/render"
	"github.com/driftaldev/redline/internal/wire"
)

var postReview bool

var reviewCmd = &cobra.Command{
	Use:   "review [pr-url]",
	Short: "Review a GitHub pull request",
	Long: `Review a GitHub pull request. The repository is cloned and indexed,
the diff is analyzed role by role, and the report is printed to the terminal.
With --post the report is also published to the pull request as a review
with inline comments.

Examples:
  redline review https://github.com/owner/repo/pull/123
  redline review --post https://github.com/owner/repo/pull/123`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().BoolVar(&postReview, "post", false, "Post the review to the pull request")
	reviewCmd.Flags().BoolVar(&outputJSON, "json", false, "Print the report as JSON")
	reviewCmd.Flags().BoolVar(&outputMarkdown, "markdown", false, "Print the report as markdown")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	owner, repoName, prNumber, err := gitutil.ParsePullRequestURL(args[0])
	if err != nil {
		return fmt.Errorf("invalid pull request URL: %w\n\nexpected format: https://github.com/owner/repo/pull/123", err)
	}

	appInstance, cleanup, err := wire.InitializeApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer cleanup()

	token := resolveToken(appInstance.Cfg.GitHub.Token)
	if token == "" {
		return fmt.Errorf("no GitHub token configured\n\nset REDLINE_GITHUB_TOKEN or pass --github-token")
	}
	ghClient := github.NewPATClient(ctx, token, appInstance.Logger)

	pr, err := ghClient.GetPullRequest(ctx, owner, repoName, prNumber)
	if err != nil {
		return fmt.Errorf("failed to fetch pull request: %w", err)
	}

	event := &core.ReviewEvent{
		RepoOwner:    owner,
		RepoName:     repoName,
		RepoFullName: fmt.Sprintf("%s/%s", owner, repoName),
		RepoCloneURL: pr.GetBase().GetRepo().GetCloneURL(),
		Language:     pr.GetBase().GetRepo().GetLanguage(),
		PRNumber:     prNumber,
		PRTitle:      pr.GetTitle(),
		PRBody:       pr.GetBody(),
		HeadSHA:      pr.GetHead().GetSHA(),
		BaseRef:      pr.GetBase().GetRef(),
	}

	color.New(color.FgCyan, color.Bold).Printf("Reviewing %s#%d: %s\n", event.RepoFullName, prNumber, pr.GetTitle())

	results, patches, err := appInstance.ReviewJob.ReviewPullRequest(ctx, event, ghClient, token)
	if err != nil {
		return err
	}

	if postReview {
		statusUpdater := github.NewStatusUpdater(ghClient, appInstance.Logger)
		summary := render.Markdown(results)
		if err := statusUpdater.PostReview(ctx, event, summary, results, patches); err != nil {
			return fmt.Errorf("failed to post review: %w", err)
		}
		color.New(color.FgGreen).Println("✓ review posted")
	}

	return printResults(results)
}

// printResults writes the report in the selected output format.
func printResults(results *core.ReviewResults) error {
	switch {
	case outputJSON:
		return render.JSON(os.Stdout, results)
	case outputMarkdown:
		fmt.Println(render.Markdown(results))
		return nil
	default:
		render.Terminal(os.Stdout, results)
		return nil
	}
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/driftaldev/redline/internal/core"
	"github.com/driftaldev/redline/internal/pipeline"
	"github.com/driftaldev/redline/internal/render"
	"github.com/driftaldev/redline/internal/tui"
	"github.com/driftaldev/redline/internal/wire"
)

var (
	baseRef      string
	outputPretty bool
)

var localCmd = &cobra.Command{
	Use:   "local [path]",
	Short: "Review the local working tree against a base ref",
	Long: `Review uncommitted and unpushed changes of a local repository. The
working tree is diffed against --base (merge-base semantics, like a pull
request would be) and the changed files are analyzed.

Examples:
  redline local
  redline local ~/src/service --base origin/main
  redline local --json > report.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLocal,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	localCmd.Flags().StringVar(&baseRef, "base", "origin/main", "Base ref to diff against")
	localCmd.Flags().BoolVar(&outputJSON, "json", false, "Print the report as JSON")
	localCmd.Flags().BoolVar(&outputMarkdown, "markdown", false, "Print the report as markdown")
	localCmd.Flags().BoolVar(&outputPretty, "pretty", false, "Render the markdown report in the terminal")
	rootCmd.AddCommand(localCmd)
}

func runLocal(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) == 1 {
		path = args[0]
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	ctx := cmd.Context()
	appInstance, cleanup, err := wire.InitializeApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer cleanup()

	event := core.LocalReviewEvent(absPath, "", baseRef)

	var results *core.ReviewResults
	switch {
	case outputJSON || outputMarkdown:
		// Machine-readable output: no progress UI on stdout.
		results, err = appInstance.ReviewJob.ReviewLocal(ctx, event, nil)
	case !term.IsTerminal(int(os.Stdout.Fd())):
		results, err = appInstance.ReviewJob.ReviewLocal(ctx, event, plainProgress)
	default:
		results, err = tui.Run(func(progress pipeline.ProgressFunc) (*core.ReviewResults, error) {
			return appInstance.ReviewJob.ReviewLocal(ctx, event, progress)
		})
	}
	if err != nil {
		return err
	}

	if outputPretty {
		fmt.Print(render.Pretty(results))
		return nil
	}
	return printResults(results)
}

// plainProgress reports analysis progress line by line when stdout is not a
// terminal, e.g. in CI or when piped.
func plainProgress(completed, total int, step string) {
	if total == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", completed, total, step)
}

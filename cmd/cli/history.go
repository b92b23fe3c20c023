package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/driftaldev/redline/internal/wire"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent review runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show")
	historyCmd.Flags().BoolVar(&outputJSON, "json", false, "Print the history as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	appInstance, cleanup, err := wire.InitializeApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer cleanup()

	runs, err := appInstance.Store.GetRecentRuns(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to load run history: %w", err)
	}

	if outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("no review runs recorded yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tREPO\tPR\tISSUES\tCRIT\tHIGH\tRISK\tSTATUS\tDURATION\tWHEN")
	for _, run := range runs {
		pr := "-"
		if run.PRNumber > 0 {
			pr = fmt.Sprintf("#%d", run.PRNumber)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\t%s\n",
			run.ID,
			run.RepoFullName,
			pr,
			run.IssueCount,
			run.CriticalCount,
			run.HighCount,
			run.RiskScore,
			run.Status,
			(time.Duration(run.DurationMillis) * time.Millisecond).Round(100*time.Millisecond),
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	return w.Flush()
}

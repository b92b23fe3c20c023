package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/driftaldev/redline/internal/wire"
)

var forceIndex bool

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Build or refresh the semantic index of a local repository",
	Long: `Index a local repository into the vector store so reviews can search
it for related code. Unchanged repositories are skipped unless --force is
given; --force also rebuilds after an embedder model change.

Examples:
  redline index .
  redline index ~/src/service --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	indexCmd.Flags().BoolVarP(&forceIndex, "force", "f", false, "Re-index every file, not just changed ones")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
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

	scanResult, err := appInstance.RepoMgr.ScanLocalRepo(ctx, absPath, "", forceIndex)
	if err != nil {
		return fmt.Errorf("failed to scan repository: %w", err)
	}

	if len(scanResult.FilesToAddOrUpdate) == 0 && len(scanResult.FilesToDelete) == 0 {
		color.New(color.FgGreen).Printf("✓ %s is up to date\n", scanResult.RepoFullName)
		return nil
	}

	rec, err := appInstance.RepoMgr.GetRepoRecord(ctx, scanResult.RepoFullName)
	if err != nil {
		return fmt.Errorf("failed to load repository record: %w", err)
	}

	fmt.Printf("indexing %s: %d files to update, %d deleted\n",
		scanResult.RepoFullName, len(scanResult.FilesToAddOrUpdate), len(scanResult.FilesToDelete))

	if err := appInstance.RepoMgr.Index(ctx, rec, scanResult, nil); err != nil {
		return fmt.Errorf("failed to index repository: %w", err)
	}

	color.New(color.FgGreen).Printf("✓ indexed %s at %s\n", scanResult.RepoFullName, shortSHA(scanResult.HeadSHA))
	return nil
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

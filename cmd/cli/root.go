package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	githubToken string
	verbose     bool

	outputJSON     bool
	outputMarkdown bool
)

var rootCmd = &cobra.Command{
	Use:   "redline",
	Short: "redline reviews code changes with role-based AI analysis",
	Long: `Redline reviews pull requests and local working trees. Each change is
classified, enriched with repository context from a semantic index, and
analyzed in parallel by security, performance, and logic reviewers.`,
	SilenceUsage: true,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&githubToken, "github-token", "t", "", "GitHub personal access token")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

// initConfig makes REDLINE_* environment variables visible to the flags.
func initConfig() {
	viper.SetEnvPrefix("REDLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

// resolveToken prefers the --github-token flag over the configured token.
func resolveToken(configured string) string {
	if githubToken != "" {
		return githubToken
	}
	return configured
}

// Package main provides the entry point for the phpstand daemon and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kimulaco/phpstan-vscode/cmd/phpstand/commands"
	"github.com/kimulaco/phpstan-vscode/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "phpstand",
		Short: "phpstand - PHPStan check orchestration daemon",
		Long: `phpstand coordinates PHPStan checks for editors and CI.

Commands:
  check     Run a one-shot project check
  lsp       Start the language server (stdio mode)`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands.
	rootCmd.AddCommand(commands.NewCheckCommand())
	rootCmd.AddCommand(commands.NewLSPCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "phpstand %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}

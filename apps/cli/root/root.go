package root

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command for the teacher dashboard ops CLI. Subcommands
// (jobs, courses, etc.) are attached here.
var rootCmd = &cobra.Command{
	Use:           "teacherdash",
	Short:         "Teacher dashboard ops CLI",
	Long:          "Operational utilities for the teacher dashboard backend (generation job status, stored course lookups).",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the mutable root command for wiring from subpackages.
func Root() *cobra.Command {
	return rootCmd
}

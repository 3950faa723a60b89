package cmd

import (
	"github.com/spf13/cobra"
)

// NewVersionCmd creates the version command
func NewVersionCmd(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("storagebucket version %s\n", info.Version)
			cmd.Printf("Build date: %s\n", info.BuildDate)
			cmd.Printf("Git commit: %s\n", info.GitCommit)
		},
	}
}

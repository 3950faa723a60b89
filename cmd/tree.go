package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/JoeSaf/StorageBuckets/app"
	"github.com/JoeSaf/StorageBuckets/config"
)

// NewTreeCmd creates the tree command
func NewTreeCmd() *cobra.Command {
	var term string

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the uploads area and buckets as a tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showTree(cmd, term)
		},
	}

	cmd.Flags().StringVarP(&term, "search", "s", "", "Only show names containing this text (case-insensitive)")

	return cmd
}

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Show files and buckets whose name contains a term",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showTree(cmd, strings.Join(args, " "))
		},
	}
}

func showTree(cmd *cobra.Command, term string) error {
	return withApp(cmd, func(a *app.App, _ config.Config) error {
		if err := printOutcome(cmd, a.Execute(app.Search{Term: term})); err != nil {
			return err
		}
		printTree(cmd, a.View().Tree)
		return nil
	})
}

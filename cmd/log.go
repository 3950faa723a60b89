package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/JoeSaf/StorageBuckets/app"
	"github.com/JoeSaf/StorageBuckets/config"
)

// NewLogCmd creates the log command
func NewLogCmd() *cobra.Command {
	var activity bool

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the upload log",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App, _ config.Config) error {
				if activity {
					entries, err := a.Activity()
					if err != nil {
						return err
					}
					if len(entries) == 0 {
						cmd.Println("No activity recorded.")
						return nil
					}
					for _, e := range entries {
						cmd.Printf("%s  %-13s %s", e.Timestamp, e.Action, strings.Join(e.Sources, ", "))
						if e.Dest != "" {
							cmd.Printf(" -> %s", e.Dest)
						}
						if len(e.Errors) > 0 {
							cmd.Printf("  (%d failed)", len(e.Errors))
						}
						cmd.Println()
					}
					return nil
				}

				history, err := a.Storage().History()
				if err != nil {
					return err
				}
				if len(history) == 0 {
					cmd.Println("No uploads recorded.")
					return nil
				}
				cmd.Printf("Uploads (%d):\n", len(history))
				for _, rec := range history {
					cmd.Printf("  %s  %s -> %s\n", rec.UploadTime, rec.FileName, rec.Destination)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&activity, "activity", false, "Show the activity journal instead")

	return cmd
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JoeSaf/StorageBuckets/app"
	"github.com/JoeSaf/StorageBuckets/config"
)

// NewBucketCmd creates the bucket command
func NewBucketCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bucket",
		Short: "Bucket management commands",
	}

	cmd.AddCommand(
		newBucketCreateCmd(),
		newBucketDeleteCmd(),
		newBucketListCmd(),
	)

	return cmd
}

func newBucketCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "Create a bucket",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App, _ config.Config) error {
				var create app.Command
				if len(args) == 1 {
					create = app.CreateBucket{Name: args[0]}
				} else {
					c, err := app.CreateBucketFlow(a, prompter(cmd))
					if err != nil {
						return err
					}
					create = c
				}
				return printOutcome(cmd, a.Execute(create))
			})
		},
	}
}

func newBucketDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a bucket and all of its files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App, _ config.Config) error {
				if len(args) == 0 {
					c, err := app.DeleteBucketFlow(a, prompter(cmd))
					if err != nil {
						return err
					}
					if c == nil {
						return nil
					}
					return printOutcome(cmd, a.Execute(c))
				}

				name := args[0]
				confirmed := yes
				switch {
				case confirmed:
				case !a.Storage().BucketExists(name):
					// Let the command report the unknown name
					confirmed = true
				default:
					ok, err := prompter(cmd).Confirm("Delete Bucket", fmt.Sprintf("Delete bucket '%s' and all of its files?", name))
					if err != nil {
						return err
					}
					confirmed = ok
				}
				return printOutcome(cmd, a.Execute(app.DeleteBucket{Name: name, Confirmed: confirmed}))
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func newBucketListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List buckets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App, _ config.Config) error {
				buckets, err := a.Storage().ListBuckets()
				if err != nil {
					return fmt.Errorf("failed to list buckets: %w", err)
				}
				if len(buckets) == 0 {
					cmd.Println("No buckets found.")
					return nil
				}
				cmd.Printf("Buckets (%d):\n", len(buckets))
				for _, b := range buckets {
					cmd.Printf("  %s\n", b)
				}
				return nil
			})
		},
	}
}

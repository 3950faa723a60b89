package cmd

import (
	"github.com/spf13/cobra"

	"github.com/JoeSaf/StorageBuckets/app"
	"github.com/JoeSaf/StorageBuckets/config"
)

// NewDownloadCmd creates the download command
func NewDownloadCmd() *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:   "download <id|path>...",
		Short: "Copy stored files out to a directory",
		Long: "Copy stored files, addressed by their tree IDs (uploads/<file> or buckets/<bucket>/<file>), " +
			"or by their paths on disk, into the download folder under --dest. Without --dest the destination is asked for.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App, _ config.Config) error {
				ids := nodeIDs(a, args)
				download := app.Download{NodeIDs: ids, Dest: dest}
				if dest == "" {
					c, err := app.DownloadFlow(a, prompter(cmd), ids)
					if err != nil {
						return err
					}
					if c == nil {
						return nil
					}
					download = c.(app.Download)
				}

				spinner := NewProgressSpinner(cmd.ErrOrStderr(), "Downloading", len(ids))
				download.OnItem = spinner.Item
				out := a.Execute(download)
				spinner.Stop()
				return printOutcome(cmd, out)
			})
		},
	}

	cmd.Flags().StringVarP(&dest, "dest", "d", "", "Destination directory")

	return cmd
}

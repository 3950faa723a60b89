package cmd

import (
	"github.com/spf13/cobra"

	"github.com/JoeSaf/StorageBuckets/app"
	"github.com/JoeSaf/StorageBuckets/config"
	"github.com/JoeSaf/StorageBuckets/storage"
)

// NewUploadCmd creates the upload command
func NewUploadCmd() *cobra.Command {
	var bucket string

	cmd := &cobra.Command{
		Use:   "upload [files...]",
		Short: "Upload files to the uploads area or a bucket",
		Long:  "Upload files to the uploads area, or into --bucket (created if missing). Without arguments the files and the bucket are asked for.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App, _ config.Config) error {
				var upload app.Upload
				if len(args) == 0 {
					c, err := app.UploadFlow(a, prompter(cmd))
					if err != nil {
						return err
					}
					upload = c.(app.Upload)
				} else {
					upload = app.Upload{Sources: storage.SourcesFromPaths(args), Bucket: bucket}
				}

				if len(upload.Sources) == 0 {
					return printOutcome(cmd, a.Execute(upload))
				}

				spinner := NewProgressSpinner(cmd.ErrOrStderr(), "Uploading", len(upload.Sources))
				upload.OnItem = spinner.Item
				out := a.Execute(upload)
				spinner.Stop()
				return printOutcome(cmd, out)
			})
		},
	}

	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "Bucket to upload into (default: uploads area)")

	return cmd
}

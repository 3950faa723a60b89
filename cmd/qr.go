package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JoeSaf/StorageBuckets/app"
	"github.com/JoeSaf/StorageBuckets/config"
	"github.com/JoeSaf/StorageBuckets/qr"
)

// NewQRCmd creates the qr command
func NewQRCmd() *cobra.Command {
	var out string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "qr <id|path>",
		Short: "Show the QR code for a stored file",
		Long:  "Show the QR code encoding a stored file's location. The code is generated once per location and reused afterwards.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App, _ config.Config) error {
				if err := printOutcome(cmd, a.Execute(app.ShowQR{NodeID: nodeIDs(a, args)[0]})); err != nil {
					return err
				}
				code := a.View().QR
				if code == nil {
					return nil
				}

				if !quiet {
					qr.PrintTerminal(cmd.OutOrStdout(), code.Payload)
				}
				if out != "" {
					data, err := code.PNG()
					if err != nil {
						return err
					}
					if err := os.WriteFile(out, data, 0644); err != nil {
						return fmt.Errorf("failed to write %s: %w", out, err)
					}
					cmd.Printf("Saved %s\n", out)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Also write the image as PNG to this file")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not draw the code in the terminal")

	return cmd
}

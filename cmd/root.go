// Package cmd holds the storagebucket command line.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JoeSaf/StorageBuckets/app"
	"github.com/JoeSaf/StorageBuckets/config"
	"github.com/JoeSaf/StorageBuckets/qr"
	"github.com/JoeSaf/StorageBuckets/records"
	"github.com/JoeSaf/StorageBuckets/scan"
	"github.com/JoeSaf/StorageBuckets/storage"
)

// BuildInfo is stamped into the binary at build time.
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// NewRootCmd creates the storagebucket command with every subcommand
func NewRootCmd(info BuildInfo) *cobra.Command {
	root := &cobra.Command{
		Use:          "storagebucket",
		Short:        "Store files in an uploads area or in named buckets",
		Long:         "Upload files into a flat uploads area or into named buckets, browse and search them as a tree, download them again and show QR codes for their locations.",
		SilenceUsage: true,
	}
	config.AddFlags(root.PersistentFlags())

	root.AddCommand(
		NewServeCmd(info.Version),
		NewUploadCmd(),
		NewBucketCmd(),
		NewTreeCmd(),
		NewSearchCmd(),
		NewDownloadCmd(),
		NewQRCmd(),
		NewLogCmd(),
		NewVersionCmd(info),
	)
	return root
}

// loadConfig reads the configuration with the command's flags on top and
// applies the log level.
func loadConfig(cmd *cobra.Command) (config.Config, *viper.Viper, error) {
	v := viper.New()
	cfg, err := config.Load(v, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	config.ApplyLogLevel(cfg.LogLevel)
	return cfg, v, nil
}

// openApp wires storage, record stores and the QR service for cfg. The
// returned function releases the record stores.
func openApp(cfg config.Config) (*app.App, func(), error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	set, err := records.Open(cfg.RecordOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open records: %w", err)
	}

	st := storage.New(cfg.Layout(), set.Uploads)
	codes := qr.NewService(cfg.Path(cfg.QRDir), set.QR, cfg.QRSize)
	a := app.New(st, codes, set.Activity, app.Options{
		DownloadFolder: cfg.DownloadFolder,
		ReadOnly:       cfg.ReadOnly,
	})
	return a, func() { set.Close() }, nil
}

// withApp loads the configuration, opens the app, calls fn and releases
// everything afterwards.
func withApp(cmd *cobra.Command, fn func(a *app.App, cfg config.Config) error) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, closeApp, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer closeApp()
	return fn(a, cfg)
}

func prompter(cmd *cobra.Command) app.Prompter {
	return newLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout())
}

// nodeIDs maps command arguments to tree node IDs. An argument naming a
// stored file on disk is replaced by that file's ID; anything else is kept
// as an ID.
func nodeIDs(a *app.App, args []string) []string {
	tree := a.View().Tree
	ids := make([]string, len(args))
	for i, arg := range args {
		ids[i] = arg
		if node := findFile(tree, arg); node != nil {
			ids[i] = node.ID
		}
	}
	return ids
}

// findFile looks arg up as a relative or absolute path of a stored file.
func findFile(tree *scan.FileData, arg string) *scan.FileData {
	if tree == nil {
		return nil
	}
	candidates := []string{filepath.Clean(arg)}
	if abs, err := filepath.Abs(arg); err == nil {
		candidates = append(candidates, abs)
		if wd, err := os.Getwd(); err == nil {
			if rel, err := filepath.Rel(wd, abs); err == nil {
				candidates = append(candidates, rel)
			}
		}
	}
	for _, p := range candidates {
		if node := tree.FindByPath(p); node != nil && node.IsFile() {
			return node
		}
	}
	return nil
}

// printOutcome shows an outcome; error outcomes become the command error.
func printOutcome(cmd *cobra.Command, out app.Outcome) error {
	switch {
	case out.Silent():
		return nil
	case out.Level == app.Error:
		return errors.New(out.Title + ": " + out.Message)
	case out.Level == app.Warning:
		cmd.PrintErrf("%s: %s\n", out.Title, out.Message)
	default:
		cmd.Printf("%s: %s\n", out.Title, out.Message)
	}
	return nil
}

func printTree(cmd *cobra.Command, tree *scan.FileData) {
	if tree == nil {
		return
	}
	for _, r := range tree.Rows() {
		indent := strings.Repeat("  ", r.Depth)
		if r.Kind == scan.KindFile {
			cmd.Printf("%s%s  %s  [%s]\n", indent, r.Name, r.Size, r.ID)
		} else {
			cmd.Printf("%s%s/\n", indent, r.Name)
		}
	}
}

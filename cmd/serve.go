package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"

	"github.com/JoeSaf/StorageBuckets/config"
	"github.com/JoeSaf/StorageBuckets/web"
)

// NewServeCmd creates the serve command
func NewServeCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the storage browser on localhost",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, v, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			a, closeApp, err := openApp(cfg)
			if err != nil {
				return err
			}
			defer closeApp()

			config.Watch(v)

			srv, err := web.New(a, web.Options{
				Version: version,
				TusDir:  cfg.Path(".uploads"),
			})
			if err != nil {
				return err
			}

			log.Infof("Serving files from: %s", cfg.Layout().Root)
			if cfg.ReadOnly {
				log.Info("Read-only mode: uploads and bucket changes are disabled")
			}

			// Setup signal handler for graceful shutdown
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			errChan := make(chan error, 1)
			go func() {
				errChan <- srv.Listen("127.0.0.1:" + cfg.Port)
			}()

			select {
			case err := <-errChan:
				return err
			case <-sigChan:
				log.Info("Received interrupt signal, shutting down...")
				return srv.Shutdown()
			}
		},
	}
}

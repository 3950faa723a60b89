package main

import (
	"os"

	"github.com/JoeSaf/StorageBuckets/cmd"
)

var (
	// Version information - these will be set at build time
	version   = "0.1.0"   // Default version
	buildDate = "unknown" // Will be set during build
	gitCommit = "unknown" // Will be set during build
)

func main() {
	root := cmd.NewRootCmd(cmd.BuildInfo{
		Version:   version,
		BuildDate: buildDate,
		GitCommit: gitCommit,
	})
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

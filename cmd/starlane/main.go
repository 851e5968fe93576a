package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/starlane-io/starlane/cmd/starlane/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "starlane",
	Short: "Starlane messaging core",
	Long: `
  ┌─┐┌┬┐┌─┐┬─┐┬  ┌─┐┌┐┌┌─┐
  └─┐ │ ├─┤├┬┘│  ├─┤│││├┤
  └─┘ ┴ ┴ ┴┴└─┴─┘┴ ┴┘└┘└─┘
  Messaging Core

  Starlane routes waves through a particle mesh: Points address particles,
  Surfaces address a particle's layer and topic, and a Traversal carries a
  wave through the occupied layer stack between Fabric and Core.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

func init() {
	rootCmd.SetVersionTemplate("starlane version {{.Version}}\n")

	rootCmd.PersistentFlags().StringP("config", "c", "starlane.yaml", "Path to star config file")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable human-readable event logging")

	rootCmd.AddCommand(commands.NewStarCmd())
	rootCmd.AddCommand(commands.NewMonitorCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	serverURL  string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "CLI client for the media portal discovery daemon",
	Long: `portal - CLI client for the media portal discovery daemon

Inspect and steer automatic discovery of books, audiobooks and movies:
toggle discovery, tune intervals and genre weights, force a cycle and
browse ingested records and the event log.

Run 'portald' to start the daemon.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL(), "Server URL (env PORTAL_SERVER)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("portal {{.Version}}\n")
}

func defaultServerURL() string {
	if u := os.Getenv("PORTAL_SERVER"); u != "" {
		return u
	}
	return "http://localhost:8585"
}

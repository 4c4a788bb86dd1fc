package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var forceCmd = &cobra.Command{
	Use:   "force <category>",
	Short: "Run a discovery cycle now",
	Long: `Request a one-shot discovery cycle for a category.

The request is stored in the settings file and consumed by the daemon's
next tick, which happens immediately when the daemon is running.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: categoryNames,
	RunE:      runForceCmd,
}

func init() {
	rootCmd.AddCommand(forceCmd)
}

func runForceCmd(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	resp, err := client.Force(args[0])
	if err != nil {
		return fmt.Errorf("force failed: %w", err)
	}

	if jsonOutput {
		printJSON(resp)
		return nil
	}

	if resp.Woken {
		fmt.Printf("Forced %s discovery: starting now\n", resp.Category)
	} else {
		fmt.Printf("Forced %s discovery: queued (no running loop for this category)\n", resp.Category)
	}
	return nil
}

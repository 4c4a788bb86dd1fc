package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediaportal/internal/scheduler"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Daemon and discovery loop status",
	Long: `Show daemon health, record counts and the state of each category's
discovery loop: last and next run, cycle counts and the last outcome.`,
	Args: cobra.NoArgs,
	RunE: runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	status, err := client.Status()
	if err != nil {
		return fmt.Errorf("status check failed: %w", err)
	}

	if jsonOutput {
		printJSON(status)
		return nil
	}

	printStatus(serverURL, status)
	return nil
}

func printStatus(server string, s *StatusResponse) {
	discovery := "enabled"
	if !s.Enabled {
		discovery = "disabled"
	}
	fmt.Printf("portal | Server: %s (%s) | Uptime: %s | Discovery: %s\n\n", server, s.Status, s.Uptime, discovery)

	fmt.Println("Library")
	for _, c := range categoryNames {
		n, ok := s.Records[c]
		if !ok {
			fmt.Printf("  %-11s not configured\n", c+":")
			continue
		}
		fmt.Printf("  %-11s %d records\n", c+":", n)
	}
	fmt.Println()

	if len(s.Categories) == 0 {
		fmt.Println("No discovery loops running")
		return
	}
	fmt.Println("Discovery")
	for i := range s.Categories {
		printCategoryStatus(&s.Categories[i])
	}
}

func printCategoryStatus(st *scheduler.Status) {
	state := "idle"
	switch {
	case st.Running:
		state = "running"
	case !st.Enabled:
		state = "disabled"
	}

	lastRun, nextRun := "never", "now"
	if st.LastRun != nil {
		lastRun = formatTimeAgo(st.LastRun.Unix())
	}
	if st.NextRun != nil {
		nextRun = formatTimeAgo(st.NextRun.Unix())
	}

	fmt.Printf("  %-11s %-8s last: %-10s next: %-10s cycles: %d  ingested: %d\n",
		string(st.Category)+":", state, lastRun, nextRun, st.Cycles, st.Ingested)

	if c := st.LastCycle; c != nil {
		outcome := c.Reason
		if c.RecordID != 0 {
			outcome = fmt.Sprintf("ingested #%d %s", c.RecordID, truncate(c.Title, 40))
		}
		fmt.Printf("  %11s last cycle: genre=%s attempts=%d %s\n", "", c.Genre, c.Attempts, outcome)
	}
	if st.Panics > 0 {
		fmt.Printf("  %11s panics: %d (%s)\n", "", st.Panics, truncate(strings.TrimSpace(st.LastPanic), 60))
	}
}

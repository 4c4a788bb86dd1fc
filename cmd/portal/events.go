package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent discovery events",
	Long: `Show the discovery event log, newest first.

Examples:
  portal events                      # Last 20 events
  portal events --since 2h           # Everything in the last two hours
  portal events --category movies    # Movie events only`,
	Args: cobra.NoArgs,
	RunE: runEventsCmd,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	eventsCmd.Flags().String("since", "", "Only events after this RFC 3339 time or duration (e.g. 2h)")
	eventsCmd.Flags().StringP("category", "c", "", "Only events of this category")
}

func runEventsCmd(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	since, _ := cmd.Flags().GetString("since")
	category, _ := cmd.Flags().GetString("category")

	client := NewClient(serverURL)
	events, err := client.Events(EventQuery{Limit: limit, Since: since, Category: category})
	if err != nil {
		return fmt.Errorf("failed to fetch events: %w", err)
	}

	if jsonOutput {
		printJSON(events)
		return nil
	}

	printEvents(events)
	return nil
}

func printEvents(events *ListEventsResponse) {
	if len(events.Items) == 0 {
		fmt.Println("No events")
		return
	}

	fmt.Printf("Events (%d):\n\n", events.Total)
	fmt.Printf("  %-10s %-20s %-14s %s\n", "TIME", "TYPE", "ENTITY", "DETAIL")
	fmt.Println("  " + strings.Repeat("-", 72))

	for _, e := range events.Items {
		t, _ := time.Parse(time.RFC3339, e.OccurredAt)
		entity := e.EntityType
		if e.EntityID != 0 {
			entity = fmt.Sprintf("%s/%d", e.EntityType, e.EntityID)
		}
		fmt.Printf("  %-10s %-20s %-14s %s\n", formatTimeAgo(t.Unix()), e.EventType, entity, eventDetail(e))
	}
}

// eventDetail picks the most telling payload fields for a one-line summary.
func eventDetail(e EventResponse) string {
	var parts []string
	for _, key := range []string{"genre", "title", "reason", "progress", "removed", "job"} {
		v, ok := e.Payload[key]
		if !ok || v == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", key, v))
	}
	return truncate(strings.Join(parts, " "), 60)
}

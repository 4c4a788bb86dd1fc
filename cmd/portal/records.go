package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var recordsCmd = &cobra.Command{
	Use:   "records <category>",
	Short: "List ingested records",
	Long: `List records of a category, newest first.

Examples:
  portal records books                     # Latest 20 books
  portal records movies -q "интерстеллар"  # Fuzzy title/director search
  portal records audiobooks --genre Фантастика`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: categoryNames,
	RunE:      runRecordsList,
}

var recordsShowCmd = &cobra.Command{
	Use:   "show <category> <id>",
	Short: "Show one record",
	Args:  cobra.ExactArgs(2),
	RunE:  runRecordsShow,
}

func init() {
	rootCmd.AddCommand(recordsCmd)
	recordsCmd.AddCommand(recordsShowCmd)

	recordsCmd.Flags().StringP("query", "q", "", "Fuzzy search by title or creator")
	recordsCmd.Flags().String("genre", "", "Filter by genre")
	recordsCmd.Flags().IntP("limit", "n", 20, "Maximum records to show")
	recordsCmd.Flags().Int("offset", 0, "Records to skip")

	recordsShowCmd.Flags().Bool("events", false, "Include the record's event history")
}

func runRecordsList(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	genre, _ := cmd.Flags().GetString("genre")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	client := NewClient(serverURL)
	resp, err := client.Records(args[0], RecordQuery{Search: query, Genre: genre, Limit: limit, Offset: offset})
	if err != nil {
		return fmt.Errorf("failed to fetch records: %w", err)
	}

	if jsonOutput {
		printJSON(resp)
		return nil
	}

	printRecords(args[0], resp)
	return nil
}

func printRecords(category string, resp *ListRecordsResponse) {
	if len(resp.Items) == 0 {
		fmt.Printf("No %s found\n", category)
		return
	}

	if resp.Query != "" {
		fmt.Printf("Matches for %q (%d):\n\n", resp.Query, resp.Total)
	} else {
		fmt.Printf("%s (%d of %d):\n\n", strings.ToUpper(category[:1])+category[1:], len(resp.Items), resp.Total)
	}
	fmt.Printf("  %-5s %-36s %-24s %-6s %s\n", "ID", "TITLE", "CREATOR", "YEAR", "ADDED")
	fmt.Println("  " + strings.Repeat("-", 86))

	for _, r := range resp.Items {
		year := "-"
		if r.Year != nil {
			year = strconv.Itoa(*r.Year)
		}
		fmt.Printf("  %-5d %-36s %-24s %-6s %s\n",
			r.ID, truncate(r.Title, 36), truncate(r.Creator, 24), year, formatTimeAgo(r.AddedAt.Unix()))
	}
}

func runRecordsShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid ID: %s", args[1])
	}
	withEvents, _ := cmd.Flags().GetBool("events")

	client := NewClient(serverURL)
	rec, err := client.Record(args[0], id)
	if err != nil {
		return fmt.Errorf("failed to fetch record: %w", err)
	}

	var history *ListEventsResponse
	if withEvents {
		history, err = client.RecordEvents(args[0], id)
		if err != nil {
			return fmt.Errorf("failed to fetch events: %w", err)
		}
	}

	if jsonOutput {
		if history != nil {
			printJSON(map[string]any{"record": rec, "events": history})
		} else {
			printJSON(rec)
		}
		return nil
	}

	printRecordDetail(rec)
	if history != nil {
		fmt.Println()
		printEvents(history)
	}
	return nil
}

func printRecordDetail(r *RecordResponse) {
	fmt.Printf("%s #%d: %s\n", r.Category, r.ID, r.Title)
	fmt.Printf("  Creator:     %s\n", r.Creator)
	if r.Year != nil {
		fmt.Printf("  Year:        %d\n", *r.Year)
	}
	if r.Genre != "" {
		fmt.Printf("  Genre:       %s\n", r.Genre)
	}
	if r.Rating > 0 {
		fmt.Printf("  Rating:      %.1f\n", r.Rating)
	}
	if r.TotalPages > 0 {
		fmt.Printf("  Pages:       %d\n", r.TotalPages)
	}
	if r.Narrator != "" {
		fmt.Printf("  Narrator:    %s\n", r.Narrator)
	}
	if r.DurationSeconds > 0 {
		fmt.Printf("  Duration:    %s\n", time.Duration(r.DurationSeconds)*time.Second)
	}
	if r.Quality != "" {
		fmt.Printf("  Quality:     %s\n", r.Quality)
	}
	if r.Translation != "" {
		fmt.Printf("  Translation: %s\n", r.Translation)
	}
	if r.SizeBytes > 0 {
		fmt.Printf("  Size:        %s\n", formatSize(r.SizeBytes))
	}
	if r.FilePath != nil {
		fmt.Printf("  File:        %s\n", *r.FilePath)
	}
	if r.ThumbnailPath != nil {
		fmt.Printf("  Thumbnail:   %s\n", *r.ThumbnailPath)
	}
	if r.SourceURL != "" {
		fmt.Printf("  Source:      %s\n", r.SourceURL)
	}
	fmt.Printf("  Added:       %s\n", r.AddedAt.Local().Format("2006-01-02 15:04"))
	if r.Description != "" {
		fmt.Printf("\n  %s\n", truncate(r.Description, 400))
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediaportal/internal/postprocess"
)

var epubCmd = &cobra.Command{
	Use:   "epub",
	Short: "Local EPUB tools (no server needed)",
}

var epubPagesCmd = &cobra.Command{
	Use:   "pages <file.epub>...",
	Short: "Count the pages of EPUB files",
	Long: `Count pages the way the book ingester does: one page per spine
entry that resolves to a manifest item. EPUBs under 10 pages are rejected
during ingestion.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEpubPages,
}

func init() {
	rootCmd.AddCommand(epubCmd)
	epubCmd.AddCommand(epubPagesCmd)
}

type epubPages struct {
	File  string `json:"file"`
	Pages int    `json:"pages"`
	Error string `json:"error,omitempty"`
}

func runEpubPages(cmd *cobra.Command, args []string) error {
	results := make([]epubPages, 0, len(args))
	failed := 0
	for _, path := range args {
		r := epubPages{File: path}
		pages, err := postprocess.CountEpubPages(path)
		if err != nil {
			r.Error = err.Error()
			failed++
		} else {
			r.Pages = pages
		}
		results = append(results, r)
	}

	if jsonOutput {
		printJSON(results)
	} else {
		for _, r := range results {
			if r.Error != "" {
				fmt.Printf("%-6s %s (%s)\n", "error", r.File, r.Error)
				continue
			}
			fmt.Printf("%-6d %s\n", r.Pages, r.File)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be read", failed, len(args))
	}
	return nil
}

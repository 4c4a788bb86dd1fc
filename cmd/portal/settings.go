package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change discovery settings",
	Long: `Show or change the discovery settings file shared with the daemon.

Examples:
  portal settings                          # Show current settings
  portal settings disable                  # Pause discovery
  portal settings interval movies 240      # Run movie discovery every 4 hours
  portal settings genres Фантастика=2 Детективы=1`,
	Args: cobra.NoArgs,
	RunE: runSettingsShow,
}

var settingsEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable automatic discovery",
	Args:  cobra.NoArgs,
	RunE:  func(cmd *cobra.Command, args []string) error { return runSetEnabled(true) },
}

var settingsDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable automatic discovery",
	Args:  cobra.NoArgs,
	RunE:  func(cmd *cobra.Command, args []string) error { return runSetEnabled(false) },
}

var settingsIntervalCmd = &cobra.Command{
	Use:       "interval <category> <minutes>",
	Short:     "Set a category's discovery interval",
	Args:      cobra.ExactArgs(2),
	ValidArgs: categoryNames,
	RunE:      runSetInterval,
}

var settingsGenresCmd = &cobra.Command{
	Use:   "genres <genre=weight>...",
	Short: "Replace the genre priority weights",
	Long: `Replace the genre priority weights used to pick each cycle's genre.

A weight of 0 excludes a genre; with no positive weights a genre is
picked uniformly from the source's vocabulary.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSetGenres,
}

var categoryNames = []string{"books", "audiobooks", "movies"}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsEnableCmd, settingsDisableCmd, settingsIntervalCmd, settingsGenresCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	resp, err := client.Settings()
	if err != nil {
		return fmt.Errorf("failed to fetch settings: %w", err)
	}
	return printSettings(resp)
}

func runSetEnabled(enabled bool) error {
	client := NewClient(serverURL)
	resp, err := client.SetEnabled(enabled)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return printSettings(resp)
}

func runSetInterval(cmd *cobra.Command, args []string) error {
	minutes, err := strconv.Atoi(args[1])
	if err != nil || minutes <= 0 {
		return fmt.Errorf("invalid interval: %s (want a positive number of minutes)", args[1])
	}

	client := NewClient(serverURL)
	resp, err := client.SetInterval(args[0], minutes)
	if err != nil {
		return fmt.Errorf("failed to update interval: %w", err)
	}
	return printSettings(resp)
}

func runSetGenres(cmd *cobra.Command, args []string) error {
	weights, err := parseGenreWeights(args)
	if err != nil {
		return err
	}

	client := NewClient(serverURL)
	resp, err := client.SetGenres(weights)
	if err != nil {
		return fmt.Errorf("failed to update genres: %w", err)
	}
	return printSettings(resp)
}

// parseGenreWeights parses "genre=weight" arguments. A bare genre weighs 1.
func parseGenreWeights(args []string) (map[string]float64, error) {
	weights := make(map[string]float64, len(args))
	for _, arg := range args {
		genre, raw, found := strings.Cut(arg, "=")
		genre = strings.TrimSpace(genre)
		if genre == "" {
			return nil, fmt.Errorf("invalid genre weight %q", arg)
		}
		w := 1.0
		if found {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil || v < 0 {
				return nil, fmt.Errorf("invalid weight for %s: %q", genre, raw)
			}
			w = v
		}
		weights[genre] = w
	}
	return weights, nil
}

func printSettings(resp *SettingsResponse) error {
	if jsonOutput {
		printJSON(resp)
		return nil
	}

	s := resp.Settings
	state := "enabled"
	if !s.Enabled {
		state = "disabled"
	}
	fmt.Printf("Discovery: %s (%s)\n\n", state, resp.Path)

	fmt.Println("Intervals")
	fmt.Printf("  Default:     %d min\n", s.IntervalMinutes)
	fmt.Printf("  Books:       %d min%s\n", s.IntervalFor("books"), forceMark(s.ForceRunBooks))
	fmt.Printf("  Audiobooks:  %d min%s\n", s.IntervalFor("audiobooks"), forceMark(s.ForceRunAudiobooks))
	fmt.Printf("  Movies:      %d min%s\n", s.IntervalFor("movies"), forceMark(s.ForceRunMovies))
	fmt.Println()

	fmt.Println("Movie filters")
	fmt.Printf("  Min size:    %.1f GB\n", s.MinFileSizeGB)
	fmt.Printf("  Min rating:  %.1f\n", s.MinRating)
	fmt.Printf("  Min year:    %d\n", s.MinYear)
	fmt.Println()

	fmt.Println("Genre priorities")
	if len(s.GenrePriorities) == 0 {
		fmt.Println("  (none, genres are picked uniformly)")
		return nil
	}
	genres := make([]string, 0, len(s.GenrePriorities))
	for g := range s.GenrePriorities {
		genres = append(genres, g)
	}
	sort.Slice(genres, func(i, j int) bool {
		wi, wj := s.GenrePriorities[genres[i]], s.GenrePriorities[genres[j]]
		if wi != wj {
			return wi > wj
		}
		return genres[i] < genres[j]
	})
	for _, g := range genres {
		fmt.Printf("  %-24s %g\n", g, s.GenrePriorities[g])
	}
	return nil
}

func forceMark(pending bool) string {
	if pending {
		return "  (forced run pending)"
	}
	return ""
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediaportal/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration file",
	Long:  "Writes an annotated default config.toml. Without a path it is written to the XDG config directory.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates config.toml syntax, required fields, and environment variable substitution without starting the daemon.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

var configShowCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Print the effective configuration",
	Long:  "Prints the configuration after environment substitution and defaults, with credentials masked.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configTestCmd, configShowCmd)
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	if err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func configPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return config.Discover()
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	path, err := configPath(args)
	if err != nil {
		return err
	}

	fmt.Printf("Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.ConfigError
		if errors.As(err, &configErr) {
			printConfigErrors(os.Stdout, configErr)
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(cfg)
	fmt.Println("\nConfiguration valid!")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := configPath(args)
	if err != nil {
		return err
	}
	cfg, err := config.LoadWithoutValidation(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return cfg.Redacted().Render(cmd.OutOrStdout())
}

func printConfigErrors(w io.Writer, e *config.ConfigError) {
	for _, section := range e.Sections() {
		if section == "" {
			fmt.Fprintln(w, "General:")
		} else {
			fmt.Fprintf(w, "[%s]\n", section)
		}
		for _, problem := range e.Section(section) {
			fmt.Fprintf(w, "  - %s\n", problem)
		}
		fmt.Fprintln(w)
	}
}

func printConfigSummary(cfg *config.Config) {
	fmt.Println("Configuration Summary:")
	fmt.Printf("  Server:      %s:%d (log: %s)\n", cfg.Server.Host, cfg.Server.Port, cfg.Server.LogLevel)
	fmt.Printf("  Databases:   %s\n", cfg.Database.Dir)
	fmt.Printf("  Uploads:     %s\n", cfg.Storage.UploadsDir)
	fmt.Printf("  Settings:    %s\n", cfg.Discovery.SettingsPath)
	fmt.Printf("  Categories:  %s\n", strings.Join(cfg.Discovery.Categories, ", "))
	fmt.Printf("  Sources:     %s, %s, %s\n", cfg.Sources.FlibustaURL, cfg.Sources.AudiobooURL, cfg.Sources.KinorushURL)

	torrent := cfg.Torrent.Backend
	switch {
	case cfg.Torrent.Backend == config.BackendQBittorrent && cfg.Torrent.QBittorrent != nil:
		torrent += " @ " + cfg.Torrent.QBittorrent.URL
	case cfg.Torrent.Backend == config.BackendRain && cfg.Torrent.Rain != nil:
		torrent += " @ " + cfg.Torrent.Rain.URL
	}
	fmt.Printf("  Torrents:    %s (timeout %s)\n", torrent, cfg.Torrent.Timeout)
	fmt.Printf("  Encoder:     %s\n", cfg.Encoder.FFmpegPath)
}

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/intact-sh/intact/pkg/intact/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage intact configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/intact/config.yaml (if set)
  2. ~/.config/intact/config.yaml

Environment variables can override config file settings using the INTACT_ prefix:
  INTACT_ALGORITHM=blake2b
  INTACT_MAX_DEPTH=3
  INTACT_LOG_LEVEL=debug`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in your default editor.

The editor is determined by:
  1. $VISUAL environment variable
  2. $EDITOR environment variable
  3. Falls back to 'vi'

If the config file doesn't exist, a default one will be created first.`,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a commented default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Printf("Config file: %s\n\n", configFile)
	} else {
		fmt.Println("Config file: (using defaults, no file found)")
		fmt.Println()
	}

	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	fmt.Printf("algorithm:          %s\n", cfg.Algorithm)
	fmt.Printf("workers:            %d\n", cfg.Workers)
	fmt.Printf("recursive:          %t\n", cfg.Recursive)
	fmt.Printf("max_depth:          %d\n", cfg.MaxDepth)
	fmt.Printf("hidden:             %t\n", cfg.Hidden)
	fmt.Printf("read_only:          %t\n", cfg.ReadOnly)
	fmt.Printf("backend:            %s\n", cfg.Backend)
	fmt.Printf("output:             %s\n", cfg.Output)
	fmt.Printf("include:            %v\n", cfg.Include)
	fmt.Printf("exclude:            %v\n", cfg.Exclude)
	fmt.Printf("xattr:              %t\n", cfg.Xattr)
	fmt.Printf("log.level:          %s\n", cfg.Log.Level)
	fmt.Printf("log.destination:    %s\n", cfg.Log.Destination)
	fmt.Printf("history.enabled:    %t\n", cfg.History.Enabled)
	fmt.Printf("history.limit:      %d\n", cfg.History.Limit)
	fmt.Printf("watch.settle:       %s\n", cfg.Watch.Settle)

	fmt.Println("\nEnvironment Overrides:")
	fmt.Println("----------------------")
	envVars := []string{
		"INTACT_ALGORITHM",
		"INTACT_WORKERS",
		"INTACT_RECURSIVE",
		"INTACT_MAX_DEPTH",
		"INTACT_HIDDEN",
		"INTACT_READ_ONLY",
		"INTACT_BACKEND",
		"INTACT_OUTPUT",
		"INTACT_INCLUDE",
		"INTACT_EXCLUDE",
		"INTACT_XATTR",
		"INTACT_LOG_LEVEL",
		"INTACT_LOG_DESTINATION",
		"INTACT_HISTORY_ENABLED",
		"INTACT_HISTORY_LIMIT",
		"INTACT_WATCH_SETTLE",
	}

	anyOverrides := false
	for _, name := range envVars {
		if val := os.Getenv(name); val != "" {
			fmt.Printf("%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Println("(none)")
	}

	return nil
}

// runConfigEdit opens the config file in an editor.
func runConfigEdit(cmd *cobra.Command, args []string) error {
	// Ensure config file exists
	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}

	configPath, err := config.Path()
	if err != nil {
		return err
	}

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}

	return nil
}

// runConfigInit creates a default config file.
func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath, err := config.Path()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); err == nil {
		printInfo("Config file already exists: %s", configPath)
		printInfo("Use 'intact config edit' to modify it.")
		return nil
	}

	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}

	printInfo("Created default config file: %s", configPath)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	configPath, err := config.Path()
	if err != nil {
		return err
	}

	fmt.Println(configPath)
	return nil
}

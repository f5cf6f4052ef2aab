package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/intact-sh/intact/pkg/intact/config"
)

// errInterrupted marks a run stopped by SIGINT or SIGTERM so main can
// exit with the conventional 130.
var errInterrupted = errors.New("interrupted")

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "intact [directory]",
		Short: "Audit directory trees against checksum manifests",
		Long: `Intact walks a directory tree, hashes every file, and reconciles the
digests against a per-directory checksum manifest (sha256sums, b2sums, ...).
New, changed, and vanished files are reported, and the manifests are
rewritten so the next run has a fresh baseline.

Examples:
  intact                        # Audit the current directory
  intact -r /srv/archive        # Audit a tree recursively
  intact -a blake2b -t 8 .      # blake2b digests on 8 workers
  intact --read-only -o json .  # Verify only, report as JSON
  intact watch -r .             # Re-audit whenever files change
  intact history                # Show past runs`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		PersistentPreRunE: initializeLogging,
		RunE:              runAudit,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/intact/config.yaml)")
	rootCmd.PersistentFlags().StringP("algorithm", "a", "", "digest algorithm (md5, sha1, sha224, sha256, sha384, sha512, blake2b)")
	rootCmd.PersistentFlags().BoolP("recursive", "r", false, "descend into subdirectories")
	rootCmd.PersistentFlags().IntP("max-depth", "m", config.DefaultMaxDepth, "recursion depth limit (-1 = unbounded, implies --recursive)")
	rootCmd.PersistentFlags().BoolP("hidden", "d", false, "audit hidden files and directories")
	rootCmd.PersistentFlags().IntP("workers", "t", 0, "worker count (0 = all available CPUs)")
	rootCmd.PersistentFlags().StringSlice("include", nil, "rsync-style patterns naming what to audit (repeatable)")
	rootCmd.PersistentFlags().StringSlice("exclude", nil, "rsync-style patterns naming what to skip (repeatable)")
	rootCmd.PersistentFlags().Bool("read-only", false, "verify only, never rewrite manifests")
	rootCmd.PersistentFlags().String("backend", "", "digest backend (auto, native, command)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "report format (pretty, plain, json, yaml, tsv)")
	rootCmd.PersistentFlags().Bool("xattr", false, "mirror fresh checksums into extended attributes")
	rootCmd.PersistentFlags().Bool("no-history", false, "do not record this run in the history store")
	rootCmd.PersistentFlags().String("log-level", "", "minimum log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log", "", "log destination (stderr, syslog, or a file path)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "log errors only")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable styled output")

	// Bind flags to viper
	_ = viper.BindPFlag("algorithm", rootCmd.PersistentFlags().Lookup("algorithm"))
	_ = viper.BindPFlag("recursive", rootCmd.PersistentFlags().Lookup("recursive"))
	_ = viper.BindPFlag("max_depth", rootCmd.PersistentFlags().Lookup("max-depth"))
	_ = viper.BindPFlag("hidden", rootCmd.PersistentFlags().Lookup("hidden"))
	_ = viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	_ = viper.BindPFlag("include", rootCmd.PersistentFlags().Lookup("include"))
	_ = viper.BindPFlag("exclude", rootCmd.PersistentFlags().Lookup("exclude"))
	_ = viper.BindPFlag("read_only", rootCmd.PersistentFlags().Lookup("read-only"))
	_ = viper.BindPFlag("backend", rootCmd.PersistentFlags().Lookup("backend"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("xattr", rootCmd.PersistentFlags().Lookup("xattr"))
	_ = viper.BindPFlag("no_history", rootCmd.PersistentFlags().Lookup("no-history"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.destination", rootCmd.PersistentFlags().Lookup("log"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("no_color", rootCmd.PersistentFlags().Lookup("no-color"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		// Add config paths in order of precedence
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "intact"))
		}
		if homeDir, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "intact"))
		}
	}

	viper.SetEnvPrefix("INTACT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// printInfo prints a message unless quiet mode is enabled.
func printInfo(format string, args ...interface{}) {
	if !viper.GetBool("quiet") {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

package main

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/intact-sh/intact/pkg/intact/audit"
	"github.com/intact-sh/intact/pkg/intact/config"
	"github.com/intact-sh/intact/pkg/intact/logging"
)

// initializeLogging configures the process-wide log destination and
// level before any command runs.
func initializeLogging(_ *cobra.Command, _ []string) error {
	levelName := viper.GetString("log.level")
	if levelName == "" {
		levelName = config.DefaultLogLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return err
	}
	if viper.GetBool("quiet") {
		level = logging.LevelError
	}

	if viper.GetBool("no_color") {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	return logging.Init(logging.Config{
		Level:       level,
		Destination: viper.GetString("log.destination"),
	})
}

// banner logs the startup line an audit leaves in its trail. It runs
// after the auditor is built so the backend probe result is known.
func banner(a *audit.Auditor) {
	logging.Get("intact").Info("starting",
		"version", version,
		"command", strings.Join(os.Args, " "),
		"root", a.Root(),
		"algorithm", a.Algorithm(),
		"backend", a.Backend(),
		"workers", a.Workers(),
		"log", viper.GetString("log.destination"),
	)
}

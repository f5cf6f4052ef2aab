package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/intact-sh/intact/pkg/intact/audit"
	"github.com/intact-sh/intact/pkg/intact/config"
)

// buildAuditOptions assembles engine options from the resolved flag,
// environment, and config values. The max_depth knob folds into the
// engine's two fields: -1 audits without a depth limit, 0 audits the
// root alone, and a positive limit implies recursion.
func buildAuditOptions(root string) audit.Options {
	opts := audit.Options{
		Root:      root,
		Algorithm: viper.GetString("algorithm"),
		Backend:   viper.GetString("backend"),
		Workers:   viper.GetInt("workers"),
		Recursive: viper.GetBool("recursive"),
		Hidden:    viper.GetBool("hidden"),
		ReadOnly:  viper.GetBool("read_only"),
		Xattr:     viper.GetBool("xattr"),
		Include:   viper.GetStringSlice("include"),
		Exclude:   viper.GetStringSlice("exclude"),
	}

	switch depth := viper.GetInt("max_depth"); {
	case depth < 0:
		// Unbounded; --recursive alone decides.
	case depth == 0:
		opts.Recursive = false
	default:
		opts.MaxDepth = depth
		opts.Recursive = true
	}

	return opts
}

// outputFormat resolves the report format, degrading the pretty
// default to plain when stdout is not a terminal.
func outputFormat(cmd *cobra.Command) string {
	format := viper.GetString("output")
	flag := cmd.Flag("output")
	explicit := flag != nil && flag.Changed
	if format == config.DefaultOutput && !explicit && !isatty.IsTerminal(os.Stdout.Fd()) {
		return "plain"
	}
	return format
}

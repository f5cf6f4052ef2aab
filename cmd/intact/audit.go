package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/intact-sh/intact/pkg/intact/audit"
	"github.com/intact-sh/intact/pkg/intact/config"
	"github.com/intact-sh/intact/pkg/intact/history"
	"github.com/intact-sh/intact/pkg/intact/logging"
	"github.com/intact-sh/intact/pkg/intact/output"
	"github.com/intact-sh/intact/pkg/intact/types"
)

// runAudit is the root command handler: one audit of one tree.
func runAudit(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	format := outputFormat(cmd)
	formatter, err := output.Get(format)
	if err != nil {
		return fmt.Errorf("unknown output format %q: available formats are %v", format, output.Available())
	}

	auditor, err := audit.New(buildAuditOptions(root))
	if err != nil {
		return err
	}

	banner(auditor)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := auditor.Run(ctx)
	if err != nil {
		return err
	}

	recordHistory(report)

	if err := emit(formatter, report); err != nil {
		return err
	}

	if report.Summary.Interrupted {
		return errInterrupted
	}
	return nil
}

// emit renders one report to stdout.
func emit(formatter output.Formatter, report *types.Report) error {
	var buf bytes.Buffer
	if err := formatter.Format(&buf, report); err != nil {
		return fmt.Errorf("formatting report: %w", err)
	}
	fmt.Print(buf.String())
	return nil
}

// recordHistory appends the run to the history store and prunes old
// entries. Best effort: a failing store never fails the audit.
func recordHistory(report *types.Report) {
	if viper.GetBool("no_history") || !viper.GetBool("history.enabled") {
		return
	}

	logger := logging.Get("history")

	if err := config.EnsureStateDir(); err != nil {
		logger.Warn("cannot record run", "error", err)
		return
	}
	store, err := history.Open(config.HistoryPath())
	if err != nil {
		logger.Warn("cannot record run", "error", err)
		return
	}
	defer store.Close()

	run, err := store.Record(report)
	if err != nil {
		logger.Warn("cannot record run", "error", err)
		return
	}
	logger.Debug("run recorded", "id", run.ID)

	if keep := viper.GetInt("history.limit"); keep > 0 {
		if _, err := store.Prune(keep); err != nil {
			logger.Warn("cannot prune history", "error", err)
		}
	}
}

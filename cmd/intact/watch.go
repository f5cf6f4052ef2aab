package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/intact-sh/intact/pkg/intact/audit"
	"github.com/intact-sh/intact/pkg/intact/output"
	"github.com/intact-sh/intact/pkg/intact/types"
	"github.com/intact-sh/intact/pkg/intact/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Re-audit a tree whenever it changes",
	Long: `Audit the tree once, then keep watching it and re-audit after each
burst of filesystem changes has settled. Every run prints a report and,
unless disabled, lands in the history store.

Stop with Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// runWatch drives watch mode until interrupted.
func runWatch(cmd *cobra.Command, args []string) error {
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

	watcher, err := watch.New(watch.Options{
		Auditor: auditor,
		Settle:  viper.GetDuration("watch.settle"),
		OnReport: func(report *types.Report) {
			recordHistory(report)
			if err := emit(formatter, report); err != nil {
				printError("%v", err)
			}
		},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watcher.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return errInterrupted
		}
		return err
	}
	return nil
}

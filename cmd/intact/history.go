package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/intact-sh/intact/pkg/intact/config"
	"github.com/intact-sh/intact/pkg/intact/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View past audit runs",
	Long: `View the history of audit runs recorded in the local store.

Each completed audit is recorded with its root, algorithm, and summary
counters unless --no-history is given or history is disabled in the
configuration.`,
	RunE: runHistory,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old history entries",
	Long:  `Remove all but the newest runs from the history store.`,
	RunE:  runHistoryPrune,
}

var (
	historyLimit    int
	historyKeep     int
	historyPath     string
	historySince    time.Duration
	historyProblems bool
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of runs to show")
	historyCmd.Flags().StringVarP(&historyPath, "path", "p", "", "only show runs whose root matches this glob (** crosses directories)")
	historyCmd.Flags().DurationVar(&historySince, "since", 0, "only show runs started within this window (e.g. 24h)")
	historyCmd.Flags().BoolVar(&historyProblems, "problems", false, "only show runs that found problems")
	historyPruneCmd.Flags().IntVarP(&historyKeep, "keep", "k", 0, "runs to keep (default: the configured history limit)")

	historyCmd.AddCommand(historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}

// openHistory opens the history store at its configured location.
func openHistory() (*history.Store, error) {
	if err := config.EnsureStateDir(); err != nil {
		return nil, err
	}
	return history.Open(config.HistoryPath())
}

// runHistory lists recent runs, newest first.
func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return fmt.Errorf("opening history store: %w", err)
	}
	defer store.Close()

	filter := history.Filter{
		Root:         historyPath,
		Since:        historySince,
		ProblemsOnly: historyProblems,
	}

	// Fetch everything when filtering so the limit caps what survives
	// the filter, not what feeds it.
	fetch := historyLimit
	if filter.Active() {
		fetch = 0
	}

	runs, err := store.List(fetch)
	if err != nil {
		return fmt.Errorf("listing history: %w", err)
	}

	runs, err = filter.Apply(runs)
	if err != nil {
		return fmt.Errorf("filtering history: %w", err)
	}
	if historyLimit > 0 && len(runs) > historyLimit {
		runs = runs[:historyLimit]
	}

	if len(runs) == 0 {
		if filter.Active() {
			printInfo("No recorded runs match.")
			return nil
		}
		printInfo("No audit runs recorded.")
		printInfo("Run 'intact [directory]' to audit a tree.")
		return nil
	}

	fmt.Printf("\n%-16s  %-32s  %-8s  %7s  %6s  %9s\n", "WHEN", "ROOT", "ALGO", "FILES", "DRIFT", "DURATION")
	fmt.Println(strings.Repeat("-", 88))

	for _, run := range runs {
		fmt.Printf("%-16s  %-32s  %-8s  %7d  %6d  %9s\n",
			humanize.Time(run.Start),
			truncateString(run.Root, 32),
			run.Algorithm,
			run.Summary.Files,
			run.Summary.Drifted,
			run.Summary.Duration.Round(time.Millisecond),
		)
	}

	fmt.Println(strings.Repeat("-", 88))
	fmt.Printf("\nShowing %d runs. Use --limit to see more.\n", len(runs))

	return nil
}

// runHistoryPrune drops everything but the newest runs.
func runHistoryPrune(cmd *cobra.Command, args []string) error {
	keep := historyKeep
	if keep <= 0 {
		keep = viper.GetInt("history.limit")
	}
	if keep <= 0 {
		keep = config.DefaultHistoryLimit
	}

	store, err := openHistory()
	if err != nil {
		return fmt.Errorf("opening history store: %w", err)
	}
	defer store.Close()

	removed, err := store.Prune(keep)
	if err != nil {
		return fmt.Errorf("pruning history: %w", err)
	}

	printInfo("Removed %d runs, keeping at most %d.", removed, keep)
	return nil
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

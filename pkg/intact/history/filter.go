package history

import (
	"fmt"
	"time"

	"github.com/gobwas/glob"
)

// Filter narrows a run listing at display time. The zero value keeps
// every run.
type Filter struct {
	// Root is a glob matched against each run's root path. A `*` stops
	// at path separators, `**` crosses them. Empty keeps every root.
	Root string

	// Since keeps runs that started within the window, measured back
	// from now. Zero keeps runs of any age.
	Since time.Duration

	// ProblemsOnly drops runs whose summary counted no warnings.
	ProblemsOnly bool
}

// Active reports whether any criterion is set.
func (f Filter) Active() bool {
	return f != (Filter{})
}

// Apply returns the runs that pass every criterion, preserving order.
func (f Filter) Apply(runs []Run) ([]Run, error) {
	if !f.Active() {
		return runs, nil
	}

	var root glob.Glob
	if f.Root != "" {
		g, err := glob.Compile(f.Root, '/')
		if err != nil {
			return nil, fmt.Errorf("bad path pattern %q: %w", f.Root, err)
		}
		root = g
	}

	var cutoff time.Time
	if f.Since > 0 {
		cutoff = time.Now().Add(-f.Since)
	}

	kept := make([]Run, 0, len(runs))
	for _, run := range runs {
		if root != nil && !root.Match(run.Root) {
			continue
		}
		if !cutoff.IsZero() && run.Start.Before(cutoff) {
			continue
		}
		if f.ProblemsOnly && run.Summary.Warnings() == 0 {
			continue
		}
		kept = append(kept, run)
	}
	return kept, nil
}

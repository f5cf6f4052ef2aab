// Package watch re-audits a tree whenever its contents change,
// debounced by a settle period.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/intact-sh/intact/pkg/intact/audit"
	"github.com/intact-sh/intact/pkg/intact/digest"
	"github.com/intact-sh/intact/pkg/intact/logging"
	"github.com/intact-sh/intact/pkg/intact/types"
)

// DefaultSettle is how long the tree must stay quiet before a
// re-audit.
const DefaultSettle = 2 * time.Second

// manifestNames holds the manifest filenames of every supported
// algorithm. Rewriting a manifest must not trigger the next audit.
var manifestNames = func() map[string]bool {
	set := make(map[string]bool)
	for _, name := range digest.ManifestNames() {
		set[name] = true
	}
	return set
}()

// Options configures a watcher.
type Options struct {
	// Auditor runs the audits. Required.
	Auditor *audit.Auditor

	// Settle is the quiet period after the last event before the next
	// audit. Zero selects DefaultSettle.
	Settle time.Duration

	// OnReport is called after every completed audit, including the
	// initial one. Optional.
	OnReport func(*types.Report)
}

// Watcher keeps a tree audited while it changes.
type Watcher struct {
	auditor  *audit.Auditor
	settle   time.Duration
	onReport func(*types.Report)
	logger   *logging.Logger
}

// New validates opts and builds a Watcher.
func New(opts Options) (*Watcher, error) {
	if opts.Auditor == nil {
		return nil, errors.New("watch: auditor is required")
	}
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	return &Watcher{
		auditor:  opts.Auditor,
		settle:   opts.Settle,
		onReport: opts.OnReport,
		logger:   logging.Get("watch"),
	}, nil
}

// Run audits once, then blocks re-auditing on changes until the
// context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.audit(ctx, fsw); err != nil {
		return err
	}

	settle := time.NewTimer(w.settle)
	settle.Stop()
	defer settle.Stop()

	w.logger.Info("watching", "root", w.auditor.Root(), "settle", w.settle)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.ignored(event.Name) {
				continue
			}
			w.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			settle.Reset(w.settle)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-settle.C:
			if err := w.audit(ctx, fsw); err != nil {
				return err
			}
		}
	}
}

// audit runs one audit, brings the notification set in line with the
// directories that run visited, and then reports. Syncing first means
// a caller reacting to the report can already rely on the watches.
func (w *Watcher) audit(ctx context.Context, fsw *fsnotify.Watcher) error {
	report, err := w.auditor.Run(ctx)
	if err != nil {
		return err
	}
	w.sync(fsw)
	if w.onReport != nil {
		w.onReport(report)
	}
	if report.Summary.Interrupted {
		return ctx.Err()
	}
	return nil
}

// sync adds watches for directories the last audit visited and drops
// watches for ones it no longer did. Failures are logged, never fatal;
// a directory that vanished will be retried after the next audit.
func (w *Watcher) sync(fsw *fsnotify.Watcher) {
	want := make(map[string]bool)
	for _, dir := range w.auditor.LastDirs() {
		want[dir] = true
	}

	for _, path := range fsw.WatchList() {
		if !want[path] {
			_ = fsw.Remove(path)
			continue
		}
		delete(want, path)
	}
	for path := range want {
		if err := fsw.Add(path); err != nil {
			w.logger.Warn("cannot watch", "path", path, "error", err)
		}
	}
}

// ignored filters events the audit itself produces: manifest rewrites
// and their staging files.
func (w *Watcher) ignored(path string) bool {
	base := filepath.Base(path)
	if manifestNames[base] {
		return true
	}
	for name := range manifestNames {
		if strings.HasPrefix(base, "."+name+".") {
			return true
		}
	}
	return false
}

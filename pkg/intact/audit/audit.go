// Package audit orchestrates an integrity run: inventory traversal,
// the checksum worker pool, and per-directory manifest reconciliation.
package audit

import (
	"context"
	"errors"
	"io/fs"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/intact-sh/intact/pkg/intact/digest"
	"github.com/intact-sh/intact/pkg/intact/inventory"
	"github.com/intact-sh/intact/pkg/intact/logging"
	"github.com/intact-sh/intact/pkg/intact/manifest"
	"github.com/intact-sh/intact/pkg/intact/pattern"
	"github.com/intact-sh/intact/pkg/intact/tuner"
	"github.com/intact-sh/intact/pkg/intact/types"
)

// Auditor runs audits over one root. It is reusable; watch mode calls
// Run repeatedly on the same instance.
type Auditor struct {
	opts    Options
	algo    digest.Algorithm
	backend digest.Backend
	matcher *pattern.Matcher
	workers int
	logger  *logging.Logger

	// Live counters, reset at the start of every run.
	filesHashed  atomic.Int64
	bytesHashed  atomic.Int64
	filesSkipped atomic.Int64
	hashFailures atomic.Int64

	// lastDirs records the directories of the most recent run, for
	// watch mode to keep its notification set in step.
	mu       sync.Mutex
	lastDirs []string
}

// New validates opts and builds an Auditor.
func New(opts Options) (*Auditor, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	algo, err := digest.Lookup(opts.Algorithm)
	if err != nil {
		return nil, err
	}
	backend, err := digest.Select(algo, opts.Backend)
	if err != nil {
		return nil, err
	}
	matcher, err := opts.matcher()
	if err != nil {
		return nil, err
	}
	workers, err := opts.workers()
	if err != nil {
		return nil, err
	}

	return &Auditor{
		opts:    opts,
		algo:    algo,
		backend: backend,
		matcher: matcher,
		workers: workers,
		logger:  logging.Get("audit"),
	}, nil
}

// Root returns the resolved absolute root.
func (a *Auditor) Root() string { return a.opts.Root }

// Workers returns the resolved pool size.
func (a *Auditor) Workers() int { return a.workers }

// Algorithm returns the resolved algorithm.
func (a *Auditor) Algorithm() digest.Algorithm { return a.algo }

// Backend returns the selected digest backend kind.
func (a *Auditor) Backend() string { return a.backend.Kind() }

// LastDirs returns the directory paths of the most recent run.
func (a *Auditor) LastDirs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.lastDirs...)
}

// hashResult carries one worker's outcome back to the collector. An
// empty digest records a failed or skipped hash.
type hashResult struct {
	path   string
	digest string
}

// Run executes one audit. Warnings and findings never produce an
// error; the error return is reserved for setup failures such as an
// unreadable root. On cancellation the partial report carries the
// interrupted flag.
func (a *Auditor) Run(ctx context.Context) (*types.Report, error) {
	a.filesHashed.Store(0)
	a.bytesHashed.Store(0)
	a.filesSkipped.Store(0)
	a.hashFailures.Store(0)

	start := time.Now()
	a.logger.Info("audit started",
		"root", a.opts.Root,
		"algorithm", a.algo.Name,
		"backend", a.backend.Kind(),
		"workers", a.workers,
		"read_only", a.opts.ReadOnly)

	builder := inventory.New(inventory.Options{
		Root:      a.opts.Root,
		Algo:      a.algo,
		Matcher:   a.matcher,
		Recursive: a.opts.Recursive,
		MaxDepth:  a.opts.MaxDepth,
		Hidden:    a.opts.Hidden,
	})

	dirs, err := builder.Build(ctx)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return a.finish(start, dirs, nil, builder, true), nil
	default:
		return nil, err
	}

	if a.opts.ReadOnly {
		dirs = a.dropManifestless(dirs)
	}

	if err := a.hashFiles(ctx, dirs); err != nil {
		return a.finish(start, dirs, nil, builder, true), nil
	}

	results := a.reconcile(ctx, dirs)
	return a.finish(start, dirs, results, builder, ctx.Err() != nil), nil
}

// dropManifestless removes directories that have no manifest. In
// read-only mode there is nothing to compare them against, so none of
// their files are hashed.
func (a *Auditor) dropManifestless(dirs []*types.Directory) []*types.Directory {
	kept := dirs[:0]
	for _, d := range dirs {
		if !d.HasManifest {
			a.logger.Info("no manifest, skipped in read-only mode", "path", d.Path)
			continue
		}
		kept = append(kept, d)
	}
	return kept
}

// hashFiles runs phase 1: a bounded pool digests every file, and a
// single collector folds the results back into the inventory records.
// Workers never touch the records themselves.
func (a *Auditor) hashFiles(ctx context.Context, dirs []*types.Directory) error {
	var files []*types.File
	for _, d := range dirs {
		files = append(files, d.Files...)
	}
	if len(files) == 0 {
		return ctx.Err()
	}

	work := make(chan *types.File, tuner.QueueSize(a.workers))
	results := make(chan hashResult, tuner.QueueSize(a.workers))

	var wg sync.WaitGroup
	for i := 0; i < a.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.hashWorker(ctx, work, results)
		}()
	}

	index := make(map[string]*types.File, len(files))
	for _, f := range files {
		index[f.Path] = f
	}
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for res := range results {
			if f, ok := index[res.path]; ok {
				f.Checksum = res.digest
			}
		}
	}()

enqueue:
	for _, f := range files {
		select {
		case work <- f:
		case <-ctx.Done():
			break enqueue
		}
	}
	close(work)
	wg.Wait()
	close(results)
	<-collected

	return ctx.Err()
}

// hashWorker consumes files until the work channel closes. Unreadable
// or vanished files are skipped with a warning; other failures count
// as errors. Both report an empty digest so the record is explicitly
// cleared. Cancellation stops hashing but keeps draining.
func (a *Auditor) hashWorker(ctx context.Context, work <-chan *types.File, results chan<- hashResult) {
	for f := range work {
		if ctx.Err() != nil {
			continue
		}

		sum, err := a.backend.Digest(ctx, f.Path)
		switch {
		case err == nil:
			a.filesHashed.Add(1)
			a.bytesHashed.Add(f.Size)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			continue
		case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
			a.logger.Warn("cannot hash", "path", f.Path, "error", err)
			a.filesSkipped.Add(1)
			sum = ""
		default:
			a.logger.Error("hash failed", "path", f.Path, "error", err)
			a.hashFailures.Add(1)
			sum = ""
		}
		results <- hashResult{path: f.Path, digest: sum}
	}
}

// reconcile runs phase 2: a bounded pool reconciles each directory
// against its manifest and streams the results back.
func (a *Auditor) reconcile(ctx context.Context, dirs []*types.Directory) []manifest.Result {
	rec := manifest.NewReconciler(a.algo, a.opts.ReadOnly, a.opts.Xattr)

	work := make(chan *types.Directory, tuner.QueueSize(a.workers))
	results := make(chan manifest.Result, tuner.QueueSize(a.workers))

	var wg sync.WaitGroup
	for i := 0; i < a.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range work {
				if ctx.Err() != nil {
					continue
				}
				results <- rec.Reconcile(d)
			}
		}()
	}

	var collected []manifest.Result
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range results {
			collected = append(collected, r)
		}
	}()

enqueue:
	for _, d := range dirs {
		select {
		case work <- d:
		case <-ctx.Done():
			break enqueue
		}
	}
	close(work)
	wg.Wait()
	close(results)
	<-done

	return collected
}

// finish aggregates counters and findings into the report.
func (a *Auditor) finish(start time.Time, dirs []*types.Directory, results []manifest.Result, builder *inventory.Builder, interrupted bool) *types.Report {
	paths := make([]string, len(dirs))
	for i, d := range dirs {
		paths[i] = d.Path
	}
	a.mu.Lock()
	a.lastDirs = paths
	a.mu.Unlock()

	summary := types.Summary{
		Directories:  len(dirs),
		DirsSkipped:  int(builder.DirsSkipped()),
		FilesSkipped: int(builder.FilesSkipped() + a.filesSkipped.Load()),
		FilesHashed:  int(a.filesHashed.Load()),
		BytesHashed:  a.bytesHashed.Load(),
		HashFailures: int(a.hashFailures.Load()),
		Duration:     time.Since(start),
		Interrupted:  interrupted,
	}
	for _, d := range dirs {
		summary.Files += len(d.Files)
	}

	var findings []types.Finding
	for _, res := range results {
		summary.Matched += res.Matched
		if res.Written {
			summary.ManifestsWritten++
		}
		if res.WriteErr != nil {
			summary.WriteFailures++
		}
		if res.Skipped {
			summary.DirsSkipped++
		}
		findings = append(findings, res.Findings...)
	}
	for _, f := range findings {
		switch f.Kind {
		case types.FindingNew:
			summary.New++
		case types.FindingDrift:
			summary.Drifted++
		case types.FindingStale:
			summary.Stale++
		case types.FindingVanished:
			summary.Vanished++
		}
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Path != findings[j].Path {
			return findings[i].Path < findings[j].Path
		}
		return findings[i].Kind < findings[j].Kind
	})

	a.logger.Info("audit finished",
		"directories", summary.Directories,
		"files", summary.Files,
		"hashed", summary.FilesHashed,
		"bytes", summary.BytesHashed,
		"warnings", summary.Warnings(),
		"duration", summary.Duration,
		"interrupted", summary.Interrupted)

	return &types.Report{
		Root:      a.opts.Root,
		Algorithm: a.algo.Name,
		Backend:   a.backend.Kind(),
		Workers:   a.workers,
		ReadOnly:  a.opts.ReadOnly,
		Start:     start,
		Findings:  findings,
		Summary:   summary,
	}
}

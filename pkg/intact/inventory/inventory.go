// Package inventory walks the audited tree and produces the ordered
// directory and file records the checksum phase consumes.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"

	"github.com/intact-sh/intact/pkg/intact/digest"
	"github.com/intact-sh/intact/pkg/intact/logging"
	"github.com/intact-sh/intact/pkg/intact/pattern"
	"github.com/intact-sh/intact/pkg/intact/types"
)

// manifestNames holds the manifest filenames of every supported
// algorithm. None of them is ever an audit target.
var manifestNames = func() map[string]bool {
	set := make(map[string]bool)
	for _, name := range digest.ManifestNames() {
		set[name] = true
	}
	return set
}()

// Options configures a traversal.
type Options struct {
	// Root is the directory to audit.
	Root string

	// Algo selects the manifest filename recorded per directory.
	Algo digest.Algorithm

	// Matcher filters entries by the configured patterns. Nil means no
	// filtering.
	Matcher *pattern.Matcher

	// Recursive descends below the root.
	Recursive bool

	// MaxDepth bounds the descent in path components below the root.
	// Zero means unbounded. A positive value implies Recursive.
	MaxDepth int

	// Hidden includes dot entries, which are otherwise skipped.
	Hidden bool
}

// Builder performs the concurrent walk and collects directory records.
type Builder struct {
	opts   Options
	logger *logging.Logger

	root string

	dirsSkipped  atomic.Int64
	filesSkipped atomic.Int64

	mu   sync.Mutex
	dirs map[string]*types.Directory
}

// New creates a Builder for the given options.
func New(opts Options) *Builder {
	if opts.MaxDepth > 0 {
		opts.Recursive = true
	}
	if opts.Matcher == nil {
		opts.Matcher, _ = pattern.NewMatcher(pattern.ModeExclude, nil)
	}
	return &Builder{
		opts:   opts,
		logger: logging.Get("inventory"),
		dirs:   make(map[string]*types.Directory),
	}
}

// DirsSkipped reports how many directories were dropped because they
// vanished or could not be read.
func (b *Builder) DirsSkipped() int64 { return b.dirsSkipped.Load() }

// FilesSkipped reports how many files were dropped before hashing.
func (b *Builder) FilesSkipped() int64 { return b.filesSkipped.Load() }

// Build walks the tree and returns directory records sorted by path,
// each with its files sorted by name, so results are deterministic
// regardless of traversal concurrency. On cancellation the records
// collected so far are returned along with the context error.
func (b *Builder) Build(ctx context.Context) ([]*types.Directory, error) {
	root, err := b.validateRoot()
	if err != nil {
		return nil, err
	}
	b.root = root

	conf := fastwalk.Config{
		Follow: false, // Symlinks are recorded, never followed.
	}

	walkCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		<-walkCtx.Done()
		close(done)
	}()

	walkErr := fastwalk.Walk(&conf, root, b.callback(done))
	if walkErr != nil && !errors.Is(walkErr, context.Canceled) && !errors.Is(walkErr, fastwalk.ErrSkipFiles) {
		return nil, fmt.Errorf("walk %s: %w", root, walkErr)
	}

	b.mu.Lock()
	dirs := make([]*types.Directory, 0, len(b.dirs))
	for _, d := range b.dirs {
		dirs = append(dirs, d)
	}
	b.mu.Unlock()

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Path < dirs[j].Path })
	for _, d := range dirs {
		sort.Slice(d.Files, func(i, j int) bool { return d.Files[i].Name < d.Files[j].Name })
	}
	return dirs, ctx.Err()
}

// validateRoot resolves the root to an absolute path and verifies it
// is a directory.
func (b *Builder) validateRoot() (string, error) {
	root, err := filepath.Abs(b.opts.Root)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s: not a directory", root)
	}
	return root, nil
}

// callback returns the fastwalk visitor. It runs concurrently across
// directories; all shared state goes through the builder's mutex or
// atomic counters.
func (b *Builder) callback(done <-chan struct{}) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		select {
		case <-done:
			return fastwalk.ErrSkipFiles
		default:
		}

		if err != nil {
			b.logger.Warn("cannot visit", "path", path, "error", err)
			if d != nil && d.IsDir() {
				// The record from the first visit is useless if the
				// directory could not be listed.
				b.dropDir(path)
				b.dirsSkipped.Add(1)
				return fastwalk.SkipDir
			}
			b.filesSkipped.Add(1)
			return nil
		}

		// The root is audited unconditionally; hidden and pattern
		// checks apply only below it.
		if path == b.root {
			b.addDir(path, 0)
			return nil
		}

		rel := pattern.Rel(b.root, path)
		name := d.Name()

		if d.IsDir() {
			depth := strings.Count(rel, "/")
			switch {
			case !b.opts.Recursive:
				return fastwalk.SkipDir
			case b.opts.MaxDepth > 0 && depth > b.opts.MaxDepth:
				b.logger.Debug("beyond max depth", "path", path)
				return fastwalk.SkipDir
			case !b.opts.Hidden && strings.HasPrefix(name, "."):
				b.logger.Debug("hidden directory skipped", "path", path)
				return fastwalk.SkipDir
			case b.opts.Matcher.Excluded(rel, true):
				b.logger.Debug("directory excluded", "path", path)
				return fastwalk.SkipDir
			}
			b.addDir(path, depth)
			return nil
		}

		parent := filepath.Dir(path)
		if manifestNames[name] {
			if name == b.opts.Algo.ManifestName {
				b.markManifest(parent)
			}
			return nil
		}
		if !b.opts.Hidden && strings.HasPrefix(name, ".") {
			return nil
		}
		if b.opts.Matcher.Excluded(rel, false) {
			b.logger.Debug("file excluded", "path", path)
			return nil
		}
		if !d.Type().IsRegular() {
			b.logger.Warn("not a regular file", "path", path, "type", d.Type().String())
			b.filesSkipped.Add(1)
			return nil
		}
		info, err := d.Info()
		if err != nil {
			b.logger.Warn("cannot stat file", "path", path, "error", err)
			b.filesSkipped.Add(1)
			return nil
		}
		if !readable(path) {
			b.logger.Warn("file not readable", "path", path)
			b.filesSkipped.Add(1)
			return nil
		}

		b.addFile(parent, &types.File{
			Path:    path,
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	}
}

func (b *Builder) addDir(path string, depth int) {
	w := writable(path)
	if !w {
		b.logger.Warn("directory not writable", "path", path)
	}
	dir := &types.Directory{
		Path:         path,
		Depth:        depth,
		ManifestPath: filepath.Join(path, b.opts.Algo.ManifestName),
		Writable:     w,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.dirs[path]; !ok {
		b.dirs[path] = dir
	}
}

func (b *Builder) dropDir(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.dirs, path)
}

func (b *Builder) addFile(parent string, f *types.File) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if d, ok := b.dirs[parent]; ok {
		d.Files = append(d.Files, f)
	}
}

func (b *Builder) markManifest(parent string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if d, ok := b.dirs[parent]; ok {
		d.HasManifest = true
	}
}

package audit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/intact-sh/intact/pkg/intact/digest"
	"github.com/intact-sh/intact/pkg/intact/pattern"
	"github.com/intact-sh/intact/pkg/intact/tuner"
)

// Options configures an audit run.
type Options struct {
	// Root is the directory to audit.
	Root string

	// Algorithm names the checksum algorithm. Empty selects sha256.
	Algorithm string

	// Backend forces the digest backend: auto, native, or command.
	// Empty selects auto.
	Backend string

	// Workers sizes both worker pools. Zero selects the detected
	// parallelism.
	Workers int

	// Recursive descends below the root. A positive MaxDepth implies
	// it.
	Recursive bool

	// MaxDepth bounds recursion in path components below the root.
	// Zero means unbounded.
	MaxDepth int

	// Hidden audits dot entries too.
	Hidden bool

	// ReadOnly compares without writing manifests. Directories without
	// a manifest are skipped entirely.
	ReadOnly bool

	// Xattr mirrors freshly recorded digests into extended attributes.
	Xattr bool

	// Include switches the matcher to include mode with these
	// patterns. Mutually exclusive with Exclude.
	Include []string

	// Exclude lists exclude-mode patterns.
	Exclude []string
}

// normalize applies defaults and resolves the root.
func (o *Options) normalize() error {
	if o.Algorithm == "" {
		o.Algorithm = "sha256"
	}
	if o.Backend == "" {
		o.Backend = digest.KindAuto
	}
	if o.MaxDepth > 0 {
		o.Recursive = true
	}

	root, err := filepath.Abs(o.Root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root %s: not a directory", root)
	}
	o.Root = root
	return nil
}

// matcher builds the pattern matcher the options describe.
func (o *Options) matcher() (*pattern.Matcher, error) {
	switch {
	case len(o.Include) > 0 && len(o.Exclude) > 0:
		return nil, errors.New("include and exclude patterns are mutually exclusive")
	case len(o.Include) > 0:
		return pattern.NewMatcher(pattern.ModeInclude, o.Include)
	default:
		return pattern.NewMatcher(pattern.ModeExclude, o.Exclude)
	}
}

// workers resolves the pool size against the host.
func (o *Options) workers() (int, error) {
	return tuner.Resolve(o.Workers, tuner.Detect())
}

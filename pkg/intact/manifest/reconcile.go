package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/intact-sh/intact/pkg/intact/digest"
	"github.com/intact-sh/intact/pkg/intact/logging"
	"github.com/intact-sh/intact/pkg/intact/types"
)

// Reconciler folds computed checksums into per-directory manifests.
// Each directory is reconciled by exactly one worker, so manifest I/O
// needs no locking.
type Reconciler struct {
	algo     digest.Algorithm
	readOnly bool
	xattr    bool
	logger   *logging.Logger
}

// NewReconciler returns a reconciler recording digests computed with
// algo. In read-only mode it compares and reports but never writes,
// neither manifests nor extended attributes.
func NewReconciler(algo digest.Algorithm, readOnly, xattr bool) *Reconciler {
	return &Reconciler{
		algo:     algo,
		readOnly: readOnly,
		xattr:    xattr,
		logger:   logging.Get("reconcile"),
	}
}

// Result describes the outcome of reconciling one directory.
type Result struct {
	Dir *types.Directory

	// Findings carries new, drift, stale, vanished, and error entries
	// for this directory.
	Findings []types.Finding

	// Matched counts files whose digest equals the recorded one.
	Matched int

	// Written reports that the manifest was rewritten.
	Written bool

	// WriteErr is the manifest write failure, if any.
	WriteErr error

	// Skipped reports that the directory was not reconciled because
	// its manifest exists but could not be read.
	Skipped bool
}

// Reconcile compares dir's computed checksums against its manifest,
// emits findings for every difference, and rewrites the manifest
// unless it is unchanged or the reconciler is read-only.
func (r *Reconciler) Reconcile(dir *types.Directory) Result {
	res := Result{Dir: dir}

	stored := make(Manifest)
	hadManifest := false
	switch m, err := Load(dir.ManifestPath); {
	case err == nil:
		stored = m
		hadManifest = true
	case errors.Is(err, fs.ErrNotExist):
		// First audit of this directory.
	default:
		r.logger.Warn("cannot read manifest", "path", dir.ManifestPath, "error", err)
		res.Findings = append(res.Findings, types.Finding{
			Kind:   types.FindingError,
			Path:   dir.ManifestPath,
			Detail: fmt.Sprintf("manifest unreadable: %v", err),
		})
		res.Skipped = true
		return res
	}

	merged := make(Manifest, len(dir.Files))
	seen := make(map[string]bool, len(dir.Files))

	for _, f := range dir.Files {
		seen[f.Name] = true

		if _, err := os.Lstat(f.Path); errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("file vanished during audit", "path", f.Path)
			res.Findings = append(res.Findings, types.Finding{
				Kind: types.FindingVanished,
				Path: f.Path,
			})
			continue
		}

		if f.Checksum == "" {
			// Hashing failed and was already reported. Keep whatever
			// the manifest last recorded.
			if prev, ok := stored[f.Name]; ok {
				merged[f.Name] = prev
			}
			continue
		}

		prev, ok := stored[f.Name]
		switch {
		case !ok:
			r.logger.Info("first recorded checksum", "path", f.Path, "digest", f.Checksum)
			res.Findings = append(res.Findings, types.Finding{
				Kind: types.FindingNew,
				Path: f.Path,
			})
		case prev == f.Checksum:
			r.logger.Debug("checksum matches", "path", f.Path)
			res.Matched++
		default:
			r.logger.Warn("checksum drift",
				"path", f.Path,
				"recorded", prev,
				"computed", f.Checksum,
				"modified", f.ModTime.Format(time.RFC3339))
			res.Findings = append(res.Findings, types.Finding{
				Kind:    types.FindingDrift,
				Path:    f.Path,
				Detail:  fmt.Sprintf("digest changed (modified %s)", f.ModTime.Format(time.RFC3339)),
				ModTime: f.ModTime,
			})
		}
		merged[f.Name] = f.Checksum

		if r.xattr && !r.readOnly && (!ok || prev != f.Checksum) {
			if err := digest.SetXattr(f.Path, r.algo, f.Checksum); err != nil {
				r.logger.Warn("cannot mirror digest to xattr", "path", f.Path, "error", err)
			}
		}
	}

	for name, prev := range stored {
		if seen[name] {
			continue
		}
		path := filepath.Join(dir.Path, name)
		if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("recorded file no longer on disk", "path", path)
			res.Findings = append(res.Findings, types.Finding{
				Kind: types.FindingStale,
				Path: path,
			})
			continue
		}
		// Still on disk but absent from this run's inventory, so it
		// was excluded or depth-limited. Keep the old record.
		merged[name] = prev
	}

	if r.readOnly {
		return res
	}
	if !hadManifest && len(merged) == 0 {
		// Nothing recorded and nothing to record.
		return res
	}
	if hadManifest && maps.Equal(stored, merged) {
		r.logger.Debug("manifest unchanged", "path", dir.ManifestPath)
		return res
	}

	if err := Write(dir.ManifestPath, merged); err != nil {
		r.logger.Error("cannot write manifest", "path", dir.ManifestPath, "error", err)
		res.WriteErr = err
		res.Findings = append(res.Findings, types.Finding{
			Kind:   types.FindingError,
			Path:   dir.ManifestPath,
			Detail: fmt.Sprintf("manifest write failed: %v", err),
		})
		return res
	}
	r.logger.Info("manifest written", "path", dir.ManifestPath, "entries", len(merged))
	res.Written = true
	return res
}

// Package types defines the shared data model for integrity audits:
// the File and Directory records produced by the inventory walk, the
// Finding events emitted during reconciliation, and the Summary
// counters reported at the end of a run.
package types

import (
	"time"

	"github.com/dustin/go-humanize"
)

// File represents one regular file under audit.
type File struct {
	// Path is the absolute path to the file.
	Path string `json:"path"`

	// Name is the file's basename, the key used in manifest files.
	Name string `json:"name"`

	// Size is the file size in bytes at inventory time.
	Size int64 `json:"size"`

	// ModTime is the last-modification time at inventory time.
	ModTime time.Time `json:"mod_time"`

	// Checksum is the hex digest of the file content. It is empty
	// until the checksum phase completes for this file and immutable
	// afterwards.
	Checksum string `json:"checksum,omitempty"`
}

// Directory represents one filesystem directory in scope, owning the
// regular files selected for checksumming.
type Directory struct {
	// Path is the absolute path to the directory.
	Path string `json:"path"`

	// Depth is the number of path components below the audit root.
	// The root itself is depth 0.
	Depth int `json:"depth"`

	// ManifestPath is the absolute path of the directory's manifest
	// file for the configured algorithm.
	ManifestPath string `json:"manifest_path"`

	// HasManifest reports whether the manifest file existed at
	// inventory time.
	HasManifest bool `json:"has_manifest"`

	// Writable reports whether the directory was writable at
	// inventory time. A manifest write into a read-only directory is
	// expected to fail.
	Writable bool `json:"writable"`

	// Files are the audit targets owned by this directory, sorted by
	// name. The slice is fixed once inventory completes.
	Files []*File `json:"files"`
}

// TotalSize returns the sum of the directory's file sizes in bytes.
func (d *Directory) TotalSize() int64 {
	var total int64
	for _, f := range d.Files {
		total += f.Size
	}
	return total
}

// FindingKind classifies a reconciliation finding.
type FindingKind string

const (
	// FindingNew marks a file recorded in the manifest for the first
	// time.
	FindingNew FindingKind = "new"

	// FindingDrift marks a file whose fresh digest differs from its
	// stored manifest entry.
	FindingDrift FindingKind = "drift"

	// FindingStale marks a manifest entry whose file no longer exists
	// on disk.
	FindingStale FindingKind = "stale"

	// FindingVanished marks a file that disappeared between inventory
	// and reconciliation.
	FindingVanished FindingKind = "vanished"

	// FindingError marks a per-directory failure such as an
	// unreadable or unwritable manifest.
	FindingError FindingKind = "error"
)

// Finding records one reportable reconciliation event.
type Finding struct {
	Kind FindingKind `json:"kind"`

	// Path is the absolute path the finding refers to.
	Path string `json:"path"`

	// Detail is a short human-readable explanation.
	Detail string `json:"detail,omitempty"`

	// ModTime is the file's last-modified time where relevant; drift
	// findings carry it, most others leave it zero.
	ModTime time.Time `json:"mod_time"`
}

// Summary aggregates the counters for one audit run.
type Summary struct {
	// Directories is the number of directories audited.
	Directories int `json:"directories"`

	// DirsSkipped counts directories dropped with a warning
	// (unreadable, or an unreadable manifest).
	DirsSkipped int `json:"dirs_skipped"`

	// Files is the number of files inventoried.
	Files int `json:"files"`

	// FilesSkipped counts files dropped with a warning before or
	// during hashing (special, unreadable, vanished).
	FilesSkipped int `json:"files_skipped"`

	// FilesHashed is the number of files digested successfully.
	FilesHashed int `json:"files_hashed"`

	// BytesHashed is the total content size digested.
	BytesHashed int64 `json:"bytes_hashed"`

	// New counts files recorded for the first time.
	New int `json:"new"`

	// Matched counts files whose digests matched the stored entry.
	Matched int `json:"matched"`

	// Drifted counts files whose digests differed from the stored
	// entry.
	Drifted int `json:"drifted"`

	// Stale counts manifest entries with no file on disk.
	Stale int `json:"stale"`

	// Vanished counts files that disappeared mid-run.
	Vanished int `json:"vanished"`

	// HashFailures counts digest computations that failed.
	HashFailures int `json:"hash_failures"`

	// ManifestsWritten counts manifest files created or rewritten.
	ManifestsWritten int `json:"manifests_written"`

	// WriteFailures counts manifest writes that failed.
	WriteFailures int `json:"write_failures"`

	// Duration is the elapsed wall-clock time of the run.
	Duration time.Duration `json:"duration"`

	// Interrupted reports whether the run was cancelled before both
	// phases drained.
	Interrupted bool `json:"interrupted"`
}

// Warnings returns the number of events the run logged at warning
// level or above. A clean, unchanged tree audits with zero warnings.
func (s *Summary) Warnings() int {
	return s.DirsSkipped + s.FilesSkipped + s.Drifted + s.Stale +
		s.Vanished + s.HashFailures + s.WriteFailures
}

// Report is the complete result of one audit run.
type Report struct {
	// Root is the absolute path of the audited tree.
	Root string `json:"root"`

	// Algorithm is the digest algorithm name.
	Algorithm string `json:"algorithm"`

	// Backend is the digest backend that served the run ("native" or
	// "command").
	Backend string `json:"backend"`

	// Workers is the pool size used for both phases.
	Workers int `json:"workers"`

	// ReadOnly reports whether manifest writes were disabled.
	ReadOnly bool `json:"read_only"`

	// Start is when the run began.
	Start time.Time `json:"start"`

	// Findings are the reconciliation events, sorted by path.
	Findings []Finding `json:"findings"`

	// Summary holds the aggregate counters.
	Summary Summary `json:"summary"`
}

// FormatSize formats a byte count as a human-readable IEC string.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}

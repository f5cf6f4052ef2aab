// Package manifest reads, reconciles, and rewrites the per-directory
// checksum manifests that record what an audited tree looked like.
package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/intact-sh/intact/pkg/intact/digest"
)

// Manifest maps file basenames to hex digests.
type Manifest map[string]string

// selfNames holds the manifest filenames of every supported algorithm.
// Entries naming one of these are self-referential and never survive a
// load.
var selfNames = func() map[string]bool {
	set := make(map[string]bool)
	for _, name := range digest.ManifestNames() {
		set[name] = true
	}
	return set
}()

// Parse reads manifest lines from r. The first whitespace-delimited
// token of a line is the digest and the last is the basename; anything
// between is ignored, so output from other checksum tools loads fine.
func Parse(r io.Reader) (Manifest, error) {
	m := make(Manifest)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		name := fields[len(fields)-1]
		if selfNames[name] {
			continue
		}
		m[name] = strings.ToLower(fields[0])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan manifest: %w", err)
	}
	return m, nil
}

// Load parses the manifest at path. Open errors come back unwrapped so
// callers can tell a missing manifest from an unreadable one.
func Load(path string) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Write persists m to path with entries sorted by basename, so
// rewriting an unchanged manifest is byte-stable. Content is staged in
// a hidden temp file in the same directory and renamed into place.
func Write(path string, m Manifest) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("stage manifest: %w", err)
	}
	defer os.Remove(tmp.Name())

	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	w := bufio.NewWriter(tmp)
	for _, name := range names {
		fmt.Fprintf(w, "%s  %s\n", m[name], name)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close manifest: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish manifest: %w", err)
	}
	return nil
}

// Package digest computes hex content digests for audit targets. A
// fixed catalog enumerates the supported algorithms; each can be
// served by an in-process streaming hash or by the platform's
// checksum program, chosen explicitly or probed at startup.
package digest

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"os/exec"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/intact-sh/intact/pkg/intact/logging"
)

// Algorithm describes one supported digest algorithm.
type Algorithm struct {
	// Name is the configuration name ("sha512").
	Name string

	// Command is the external checksum program ("sha512sum").
	Command string

	// ManifestName is the per-directory manifest filename
	// ("sha512sums").
	ManifestName string

	newHash func() hash.Hash
}

// Errors reported during backend construction.
var (
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	ErrUnknownBackend   = errors.New("unknown backend")
)

// catalog enumerates every supported algorithm. The engine receives
// one entry at construction time; nothing registers into this at
// runtime.
var catalog = []Algorithm{
	{Name: "md5", Command: "md5sum", ManifestName: "md5sums", newHash: md5.New},
	{Name: "sha1", Command: "sha1sum", ManifestName: "sha1sums", newHash: sha1.New},
	{Name: "sha224", Command: "sha224sum", ManifestName: "sha224sums", newHash: sha256.New224},
	{Name: "sha256", Command: "sha256sum", ManifestName: "sha256sums", newHash: sha256.New},
	{Name: "sha384", Command: "sha384sum", ManifestName: "sha384sums", newHash: sha512.New384},
	{Name: "sha512", Command: "sha512sum", ManifestName: "sha512sums", newHash: sha512.New},
	{Name: "blake2b", Command: "b2sum", ManifestName: "b2sums", newHash: newBlake2b},
}

func newBlake2b() hash.Hash {
	h, err := blake2b.New512(nil)
	if err != nil {
		// New512 fails only for a non-nil key.
		panic(err)
	}
	return h
}

// Lookup finds a catalog entry by configuration name.
func Lookup(name string) (Algorithm, error) {
	for _, a := range catalog {
		if a.Name == name {
			return a, nil
		}
	}
	return Algorithm{}, fmt.Errorf("%w: %q (choose from %s)",
		ErrUnknownAlgorithm, name, strings.Join(Names(), ", "))
}

// Names returns the catalog's algorithm names, sorted.
func Names() []string {
	names := make([]string, len(catalog))
	for i, a := range catalog {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}

// ManifestNames returns the manifest filename of every supported
// algorithm. Files carrying these names are never audit targets.
func ManifestNames() []string {
	names := make([]string, len(catalog))
	for i, a := range catalog {
		names[i] = a.ManifestName
	}
	return names
}

// Backend computes the hex digest of a file's content.
type Backend interface {
	// Digest hashes the file at path. Cancellation of ctx takes
	// precedence over read errors.
	Digest(ctx context.Context, path string) (string, error)

	// Kind names the backend implementation.
	Kind() string
}

// Backend kinds accepted by Select.
const (
	KindAuto    = "auto"
	KindNative  = "native"
	KindCommand = "command"
)

// Select builds the backend serving an algorithm. "native" and
// "command" force one implementation; "auto" probes PATH for the
// algorithm's checksum program and falls back to the in-process
// hash.
func Select(algo Algorithm, kind string) (Backend, error) {
	logger := logging.Get("digest")
	switch kind {
	case KindNative:
		return NewNative(algo), nil
	case KindCommand:
		path, err := exec.LookPath(algo.Command)
		if err != nil {
			return nil, fmt.Errorf("locating %s: %w", algo.Command, err)
		}
		return NewCommand(algo, path), nil
	case KindAuto, "":
		logger.Debug("checking for checksum program", "command", algo.Command)
		if path, err := exec.LookPath(algo.Command); err == nil {
			logger.Info("found checksum program", "path", path)
			return NewCommand(algo, path), nil
		}
		logger.Info("checksum program not found, using in-process hash",
			"command", algo.Command, "algorithm", algo.Name)
		return NewNative(algo), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
	}
}

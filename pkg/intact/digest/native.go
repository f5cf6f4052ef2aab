package digest

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// nativeBlockSize bounds per-read memory while streaming file
// content through the hash.
const nativeBlockSize = 128 * 1024

// Native computes digests with an in-process streaming hash.
type Native struct {
	algo Algorithm
}

// NewNative returns a Backend backed by the algorithm's in-process
// hash function.
func NewNative(algo Algorithm) *Native {
	return &Native{algo: algo}
}

// Kind implements Backend.
func (n *Native) Kind() string { return KindNative }

// Digest implements Backend. Content is read in fixed-size blocks so
// memory stays bounded for arbitrarily large files; cancellation is
// checked between blocks.
func (n *Native) Digest(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := n.algo.newHash()
	buf := make([]byte, nativeBlockSize)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		nr, err := f.Read(buf)
		if nr > 0 {
			_, _ = h.Write(buf[:nr])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

//go:build unix

package inventory

import "golang.org/x/sys/unix"

// readable reports whether the calling process may open path for
// reading.
func readable(path string) bool {
	return unix.Access(path, unix.R_OK) == nil
}

// writable reports whether the calling process may create entries in
// path.
func writable(path string) bool {
	return unix.Access(path, unix.W_OK) == nil
}

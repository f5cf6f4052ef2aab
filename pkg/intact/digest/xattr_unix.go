//go:build linux || darwin

package digest

import "golang.org/x/sys/unix"

// xattrPrefix namespaces mirrored digests in user extended
// attributes.
const xattrPrefix = "user.checksum."

// SetXattr mirrors a computed digest onto the file as the extended
// attribute user.checksum.<algorithm>.
func SetXattr(path string, algo Algorithm, digest string) error {
	return unix.Setxattr(path, xattrPrefix+algo.Name, []byte(digest), 0)
}

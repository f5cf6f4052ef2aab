//go:build !linux && !darwin

package digest

import "errors"

// SetXattr is unavailable on this platform.
func SetXattr(string, Algorithm, string) error {
	return errors.New("extended attributes are not supported on this platform")
}

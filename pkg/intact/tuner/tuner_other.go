//go:build !darwin && !linux

package tuner

import "runtime"

// Detect reports the host's logical CPU count. Memory detection is
// not implemented for this platform.
func Detect() SystemResources {
	return SystemResources{CPUCores: runtime.NumCPU()}
}

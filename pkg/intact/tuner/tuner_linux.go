//go:build linux

package tuner

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// Detect reports the host's logical CPU count and physical memory.
func Detect() SystemResources {
	res := SystemResources{CPUCores: runtime.NumCPU()}
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err == nil {
		res.TotalRAM = uint64(info.Totalram) * uint64(info.Unit)
	}
	return res
}

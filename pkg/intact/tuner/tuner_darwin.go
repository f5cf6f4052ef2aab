//go:build darwin

package tuner

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// Detect reports the host's logical CPU count and physical memory.
func Detect() SystemResources {
	res := SystemResources{CPUCores: runtime.NumCPU()}
	if mem, err := unix.SysctlUint64("hw.memsize"); err == nil {
		res.TotalRAM = mem
	}
	return res
}

// Package tuner inspects the host to size the audit worker pools.
package tuner

import (
	"errors"
	"fmt"
)

// SystemResources describes the detected host capacity.
type SystemResources struct {
	// CPUCores is the number of logical CPUs available.
	CPUCores int

	// TotalRAM is the physical memory in bytes, zero when detection
	// is unavailable on the platform.
	TotalRAM uint64
}

// ErrInvalidWorkers is returned when a requested worker count falls
// outside the valid range for the host.
var ErrInvalidWorkers = errors.New("invalid worker count")

// Resolve maps a requested worker count to a usable one. Zero selects
// the detected parallelism; any explicit value must lie between 1 and
// the detected parallelism.
func Resolve(requested int, res SystemResources) (int, error) {
	cores := res.CPUCores
	if cores < 1 {
		cores = 1
	}
	if requested == 0 {
		return cores, nil
	}
	if requested < 1 || requested > cores {
		return 0, fmt.Errorf("%w: %d not in 1..%d", ErrInvalidWorkers, requested, cores)
	}
	return requested, nil
}

// QueueSize returns the work-queue capacity for a worker pool. The
// queue is bounded to the pool size so producers block instead of
// buffering the whole inventory.
func QueueSize(workers int) int {
	if workers < 1 {
		return 1
	}
	return workers
}

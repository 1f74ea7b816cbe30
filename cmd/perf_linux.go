//go:build linux

package cmd

import (
	perf "github.com/hodgesds/perf-utils"
)

// countInstructions reads the retired instruction counter around f. It fails
// without perf_event access, e.g. under a restrictive perf_event_paranoid.
func countInstructions(f func() error) (uint64, error) {
	pv, err := perf.CPUInstructions(f)
	if err != nil {
		return 0, err
	}
	return pv.Value, nil
}

package utils

import (
	"fmt"
	"math"
	"runtime"
)

func GetMemUsage() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	// For info on each, see: https://golang.org/pkg/runtime/#MemStats
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}
	return fmt.Sprintf("Alloc = %v MiB TotalAlloc = %v MiB Sys = %v MiB NumGC = %v",
		bToMb(m.Alloc), bToMb(m.TotalAlloc), bToMb(m.Sys), m.NumGC)
}

func IsNan(A any) bool {
	switch v := A.(type) {
	case float64:
		return math.IsNaN(v)
	case []float64:
		for _, f := range v {
			if math.IsNaN(f) {
				return true
			}
		}
	case Matrix:
		return IsNan(v.Data())
	}
	return false
}

// MaxAbsDiff returns max |a[i]-b[i]|; the slices must be the same length.
func MaxAbsDiff(a, b []float64) (d float64) {
	if len(a) != len(b) {
		panic(fmt.Errorf("length mismatch: %d and %d", len(a), len(b)))
	}
	for i := range a {
		d = math.Max(d, math.Abs(a[i]-b[i]))
	}
	return
}

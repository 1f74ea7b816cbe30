package utils

import "sync/atomic"

var (
	blasBackend = "gonum"
	// batchedBLAS gates the batched Gemm path. gonum always installs its
	// pure Go kernels, so this is a switch rather than a probe.
	batchedBLAS atomic.Bool
)

func init() {
	batchedBLAS.Store(blasDefault)
}

// BLASBackend names the implementation behind blas64: "gonum" for the pure
// Go kernels, "netlib" when built with the netlib tag.
func BLASBackend() string {
	return blasBackend
}

// HaveBLAS reports whether the batched BLAS path is enabled. It is on unless
// built with the noblas tag or turned off with SetBLASEnabled.
func HaveBLAS() bool {
	return batchedBLAS.Load()
}

// SetBLASEnabled turns the batched BLAS path on or off and returns the
// previous setting.
func SetBLASEnabled(on bool) (was bool) {
	return batchedBLAS.Swap(on)
}

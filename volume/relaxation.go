package volume

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/dgops/ranges"
	"github.com/notargets/dgops/target"
	"github.com/notargets/dgops/types"
)

// GaussSeidelSweep performs one forward Gauss-Seidel sweep on the block
// system scale[k] * M * x_k = rhs_k for every element k. The previous iterate
// is read from vt.Operand and the new one is written to vt.Result, with rows
// below the diagonal taken from the values already updated in this sweep:
//
//	Result[d+i] = (rhs[d+i] - sum_{j<i} s M(i,j) Result[d+j]
//	                        - sum_{j>i} s M(i,j) Operand[o+j]) / (s M(i,i))
//
// where o and d are the starts of the source and destination ranges of k.
// Callers copy Result into Operand and sweep again until converged.
func GaussSeidelSweep(src, dest ranges.ElementRanges, scale []float64, M mat.Matrix,
	vt *target.VectorTarget, rhs []float64) (err error) {
	var (
		n, nc = M.Dims()
	)
	if n != nc {
		return fmt.Errorf("%w: relaxation needs a square block, have %dx%d",
			types.ErrDimensionMismatch, n, nc)
	}
	if len(rhs) != len(vt.Result) || len(vt.Operand) != len(vt.Result) {
		return fmt.Errorf("%w: rhs %d, result %d, operand %d",
			types.ErrDimensionMismatch, len(rhs), len(vt.Result), len(vt.Operand))
	}
	if err = validate(src, dest, scale, true, M, vt); err != nil {
		return
	}
	for k, s := range scale {
		for i := 0; i < n; i++ {
			if s*M.At(i, i) == 0 {
				return fmt.Errorf("%w: element %d row %d", types.ErrSingularBlock, k, i)
			}
		}
	}
	var (
		result  = vt.Result
		operand = vt.Operand
	)
	for k, sr := range src.All() {
		var (
			s = scale[k]
			o = sr.Start
			d = dest.At(k).Start
		)
		for i := 0; i < n; i++ {
			acc := rhs[d+i]
			for j := 0; j < i; j++ {
				acc -= s * M.At(i, j) * result[d+j]
			}
			for j := i + 1; j < n; j++ {
				acc -= s * M.At(i, j) * operand[o+j]
			}
			result[d+i] = acc / (s * M.At(i, i))
		}
	}
	return
}

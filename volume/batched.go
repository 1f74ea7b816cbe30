package volume

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/dgops/ranges"
	"github.com/notargets/dgops/target"
	"github.com/notargets/dgops/utils"
)

// ApplyBatched is the unscaled form of ApplyScaledBatched. The operand is
// multiplied in place without a workspace copy.
func ApplyBatched(src, dest ranges.Uniform, M mat.Matrix, vt *target.VectorTarget) (err error) {
	if err = validateBatched(src, dest, nil, false, M, vt); err != nil {
		return
	}
	applyBatched(src, dest, nil, M, vt)
	return
}

// ApplyScaledBatched computes Result[dest_i] += scale[i] * M * Operand[src_i]
// for all elements with one GEMM. Each source block is a row of X
// (count x ns) and each destination block a row of C (count x nd), so the
// whole application is C += X * M^T.
func ApplyScaledBatched(src, dest ranges.Uniform, scale []float64, M mat.Matrix,
	vt *target.VectorTarget) (err error) {
	if err = validateBatched(src, dest, scale, true, M, vt); err != nil {
		return
	}
	applyBatched(src, dest, scale, M, vt)
	return
}

func validateBatched(src, dest ranges.Uniform, scale []float64, scaled bool, M mat.Matrix,
	vt *target.VectorTarget) error {
	if vt == nil || !utils.HaveBLAS() {
		return fmt.Errorf("%w: requires a vector target and a BLAS backend", ErrBatchedUnavailable)
	}
	return validate(src, dest, scale, scaled, M, vt)
}

func applyBatched(src, dest ranges.Uniform, scale []float64, M mat.Matrix, vt *target.VectorTarget) {
	var (
		count = src.Len()
		ns    = src.ElSize()
		nd    = dest.ElSize()
	)
	if count == 0 || ns == 0 || nd == 0 {
		return
	}
	X := blas64.General{Rows: count, Cols: ns, Stride: ns,
		Data: vt.Operand[src.Start():src.End()]}
	if scale != nil {
		work := make([]float64, count*ns)
		for i, s := range scale {
			row := X.Data[i*ns : (i+1)*ns]
			for j, v := range row {
				work[i*ns+j] = s * v
			}
		}
		X.Data = work
	}
	C := blas64.General{Rows: count, Cols: nd, Stride: nd,
		Data: vt.Result[dest.Start():dest.End()]}
	blas64.Gemm(blas.NoTrans, blas.Trans, 1, X, utils.RawGeneral(M), 1, C)
}

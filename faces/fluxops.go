package faces

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/dgops/flux"
	"github.com/notargets/dgops/target"
	"github.com/notargets/dgops/types"
	"github.com/notargets/dgops/utils"
)

// PerformLocalFlux adds J * local * fmm(i, j) at (FaceIndices[i],
// FaceIndices[j]) for every face.
func (fg *FaceGroup) PerformLocalFlux(fl flux.Flux, fmm mat.Matrix, tgt target.Target) (err error) {
	if err = fg.validate(fmm, tgt, true, false); err != nil {
		return
	}
	for f := range fg.faces {
		fi := &fg.faces[f]
		addFaceBlock(tgt, fi.FaceIndices, fi.FaceIndices, fi.Face.FaceJacobian*fl.LocalCoeff(fi.Face), fmm)
	}
	return
}

// PerformNeighborFlux adds J * neighbor * fmm(i, j) at (FaceIndices[i],
// OppositeIndices[j]) for every face, where neighbor is evaluated against the
// opposing face or, on a boundary, against nothing.
func (fg *FaceGroup) PerformNeighborFlux(fl flux.Flux, fmm mat.Matrix, tgt target.Target) (err error) {
	if err = fg.validate(fmm, tgt, false, true); err != nil {
		return
	}
	for f := range fg.faces {
		fi := &fg.faces[f]
		addFaceBlock(tgt, fi.FaceIndices, fi.OppositeIndices,
			fi.Face.FaceJacobian*fl.NeighborCoeff(fi.Face, fg.Opposite(f)), fmm)
	}
	return
}

// PerformBothFluxes is PerformLocalFlux and PerformNeighborFlux in one pass.
func (fg *FaceGroup) PerformBothFluxes(fl flux.Flux, fmm mat.Matrix, tgt target.Target) (err error) {
	if err = fg.validate(fmm, tgt, true, true); err != nil {
		return
	}
	var (
		n, _ = fmm.Dims()
	)
	for f := range fg.faces {
		var (
			fi       = &fg.faces[f]
			J        = fi.Face.FaceJacobian
			local    = J * fl.LocalCoeff(fi.Face)
			neighbor = J * fl.NeighborCoeff(fi.Face, fg.Opposite(f))
		)
		for i := 0; i < n; i++ {
			row := fi.FaceIndices[i]
			for j := 0; j < n; j++ {
				v := fmm.At(i, j)
				tgt.AddCoefficient(row, fi.FaceIndices[j], local*v)
				tgt.AddCoefficient(row, fi.OppositeIndices[j], neighbor*v)
			}
		}
	}
	return
}

func addFaceBlock(tgt target.Target, rowIdx, colIdx []int, coeff float64, fmm mat.Matrix) {
	n, _ := fmm.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			tgt.AddCoefficient(rowIdx[i], colIdx[j], coeff*fmm.At(i, j))
		}
	}
}

// validate checks the face mass matrix against every face and every index
// against the target. Face indices are rows, and also columns when the local
// block is applied; opposite indices are columns of the neighbor block.
func (fg *FaceGroup) validate(fmm mat.Matrix, tgt target.Target, local, neighbor bool) error {
	nr, nc := fmm.Dims()
	if nr != nc {
		return fmt.Errorf("%w: face mass matrix is %dx%d", types.ErrDimensionMismatch, nr, nc)
	}
	rows, cols := tgt.Dims()
	for f := range fg.faces {
		fi := &fg.faces[f]
		if len(fi.FaceIndices) != nr || len(fi.OppositeIndices) != nr {
			return fmt.Errorf("%w: face %d has %d nodes, face mass matrix has %d",
				types.ErrDimensionMismatch, f, len(fi.FaceIndices), nr)
		}
		if nr == 0 {
			continue
		}
		idx := utils.Index(fi.FaceIndices)
		if lo, hi := idx.Min(), idx.Max(); lo < 0 || hi >= rows || (local && hi >= cols) {
			return fmt.Errorf("%w: face %d indices [%d, %d] outside %dx%d target",
				types.ErrSizeMismatch, f, lo, hi, rows, cols)
		}
		opp := utils.Index(fi.OppositeIndices)
		if lo, hi := opp.Min(), opp.Max(); neighbor && (lo < 0 || hi >= cols) {
			return fmt.Errorf("%w: face %d opposite indices [%d, %d] outside %dx%d target",
				types.ErrSizeMismatch, f, lo, hi, rows, cols)
		}
	}
	return nil
}

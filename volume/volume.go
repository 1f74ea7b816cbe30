/*
Package volume applies a dense per-element operator to every element of a
discretization. Source and destination DOFs are described by element ranges,
and each application accumulates dest_i += s_i * M * src_i into a target.

Two interchangeable paths exist. The generic path hands every element block
to the target. The batched path treats uniform ranges on a vector target as
one row-major matrix and performs a single BLAS GEMM.
*/
package volume

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/dgops/ranges"
	"github.com/notargets/dgops/target"
	"github.com/notargets/dgops/types"
	"github.com/notargets/dgops/utils"
)

var ErrBatchedUnavailable = errors.New("batched application unavailable")

type Strategy uint8

const (
	// Auto uses the batched path whenever its requirements hold
	Auto Strategy = iota
	Generic
	Batched
)

var strategyNames = map[Strategy]string{
	Auto:    "auto",
	Generic: "generic",
	Batched: "batched",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", uint8(s))
}

func NewStrategy(label string) (s Strategy, err error) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return Auto, nil
	}
	for s, name := range strategyNames {
		if name == label {
			return s, nil
		}
	}
	err = fmt.Errorf("unknown strategy %q, want one of auto, generic, batched", label)
	return
}

// Applier applies element-wise operators using a fixed Strategy. The zero
// value uses Auto.
type Applier struct {
	Strategy Strategy
}

func Apply(src, dest ranges.ElementRanges, M mat.Matrix, tgt target.Target) error {
	return Applier{}.Apply(src, dest, M, tgt)
}

func ApplyScaled(src, dest ranges.ElementRanges, scale []float64, M mat.Matrix, tgt target.Target) error {
	return Applier{}.ApplyScaled(src, dest, scale, M, tgt)
}

// Apply accumulates dest_i += M * src_i for every element pair. Nothing is
// written unless every precondition holds.
func (a Applier) Apply(src, dest ranges.ElementRanges, M mat.Matrix, tgt target.Target) (err error) {
	if err = validate(src, dest, nil, false, M, tgt); err != nil {
		return
	}
	return a.apply(src, dest, nil, M, tgt)
}

// ApplyScaled accumulates dest_i += scale[i] * M * src_i.
func (a Applier) ApplyScaled(src, dest ranges.ElementRanges, scale []float64, M mat.Matrix,
	tgt target.Target) (err error) {
	if err = validate(src, dest, scale, true, M, tgt); err != nil {
		return
	}
	return a.apply(src, dest, scale, M, tgt)
}

// apply runs a validated application, a nil scale meaning unscaled.
func (a Applier) apply(src, dest ranges.ElementRanges, scale []float64, M mat.Matrix,
	tgt target.Target) error {
	if a.Strategy != Generic {
		us, ud, vt, ok := batchable(src, dest, tgt)
		if ok {
			applyBatched(us, ud, scale, M, vt)
			return nil
		}
		if a.Strategy == Batched {
			return fmt.Errorf("%w: requires uniform ranges, a vector target and a BLAS backend",
				ErrBatchedUnavailable)
		}
	}
	applyGeneric(src, dest, scale, M, tgt)
	return nil
}

func applyGeneric(src, dest ranges.ElementRanges, scale []float64, M mat.Matrix, tgt target.Target) {
	for i, s := range src.All() {
		d := dest.At(i)
		if scale == nil {
			tgt.AddCoefficients(d.Start, d.End, s.Start, s.End, M)
		} else {
			tgt.AddScaledCoefficients(d.Start, d.End, s.Start, s.End, scale[i], M)
		}
	}
}

func batchable(src, dest ranges.ElementRanges, tgt target.Target) (us, ud ranges.Uniform,
	vt *target.VectorTarget, ok bool) {
	if vt, ok = tgt.(*target.VectorTarget); !ok || !utils.HaveBLAS() {
		return us, ud, nil, false
	}
	if us, ok = ranges.AsUniform(src); !ok {
		return
	}
	ud, ok = ranges.AsUniform(dest)
	return
}

func validate(src, dest ranges.ElementRanges, scale []float64, scaled bool, M mat.Matrix,
	tgt target.Target) error {
	if src.Len() != dest.Len() {
		return fmt.Errorf("%w: %d source ranges, %d destination ranges",
			types.ErrSizeMismatch, src.Len(), dest.Len())
	}
	if scaled && len(scale) != src.Len() {
		return fmt.Errorf("%w: %d scale factors for %d elements",
			types.ErrSizeMismatch, len(scale), src.Len())
	}
	var (
		nr, nc     = M.Dims()
		rows, cols = tgt.Dims()
	)
	for i, s := range src.All() {
		d := dest.At(i)
		if s.Len() != nc || d.Len() != nr {
			return fmt.Errorf("%w: element %d maps %d to %d DOFs, operator is %dx%d",
				types.ErrDimensionMismatch, i, s.Len(), d.Len(), nr, nc)
		}
	}
	var (
		dMin, dMax = ranges.Extent(dest)
		sMin, sMax = ranges.Extent(src)
	)
	if dMin < 0 || sMin < 0 || dMax > rows || sMax > cols {
		return fmt.Errorf("%w: ranges span [%d,%d)x[%d,%d), target is %dx%d",
			types.ErrSizeMismatch, dMin, dMax, sMin, sMax, rows, cols)
	}
	return nil
}

package faces

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/dgops/flux"
	"github.com/notargets/dgops/target"
	"github.com/notargets/dgops/types"
)

// oppositeH reports the opposing face's H as the neighbor coefficient, -1 on
// a boundary
var oppositeH = flux.Func{
	Local: func(face flux.Face) float64 { return face.H },
	Neighbor: func(face flux.Face, opp flux.Opposite) float64 {
		if of, ok := opp.Face(); ok {
			return of.H
		}
		return -1
	},
}

func twoFaces(t *testing.T) (fg *FaceGroup) {
	fg = NewFaceGroup(2)
	id, err := fg.AddFace([]int{0, 1}, []int{2, 3},
		flux.Face{ElementID: 0, FaceJacobian: 2, H: 3, Normal: []float64{1}})
	require.NoError(t, err)
	assert.Equal(t, 0, id)
	id, err = fg.AddFace([]int{2, 3}, []int{0, 1},
		flux.Face{ElementID: 1, FaceJacobian: 0.5, H: 5, Normal: []float64{-1}})
	require.NoError(t, err)
	assert.Equal(t, 1, id)
	return
}

func TestFaceGroup(t *testing.T) {
	fg := twoFaces(t)
	assert.Equal(t, 2, fg.Len())
	assert.False(t, fg.Opposite(0).Present())

	_, err := fg.AddFace([]int{0, 1}, []int{2}, flux.Face{})
	assert.True(t, errors.Is(err, types.ErrSizeMismatch))
	assert.Equal(t, 2, fg.Len())

	// One bad pair rejects the whole batch
	err = fg.ConnectFaces([]Connection{{0, 1}, {1, 5}})
	assert.True(t, errors.Is(err, types.ErrInvalidReference))
	_, ok := fg.At(0).OppositeID()
	assert.False(t, ok)
	err = fg.ConnectFaces([]Connection{{-1, 0}})
	assert.True(t, errors.Is(err, types.ErrInvalidReference))

	require.NoError(t, fg.ConnectFaces([]Connection{{Local: 0, Opposite: 1}}))
	of, ok := fg.Opposite(0).Face()
	require.True(t, ok)
	assert.Equal(t, 1, of.ElementID)
	id, ok := fg.At(0).OppositeID()
	assert.True(t, ok)
	assert.Equal(t, 1, id)
	// One directional
	assert.False(t, fg.Opposite(1).Present())

	// Growing the group keeps the relation
	for i := 0; i < 10; i++ {
		_, err = fg.AddFace([]int{0, 1}, []int{0, 1}, flux.Face{})
		require.NoError(t, err)
	}
	of, ok = fg.Opposite(0).Face()
	require.True(t, ok)
	assert.Equal(t, 5., of.H)

	fg.Clear()
	assert.Equal(t, 0, fg.Len())
}

func TestNeighborUsesOpposite(t *testing.T) {
	var (
		fg  = twoFaces(t)
		fmm = mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	)
	require.NoError(t, fg.ConnectFaces([]Connection{{0, 1}}))
	mt := target.NewMatrixTarget(4, 4)
	require.NoError(t, fg.PerformNeighborFlux(oppositeH, fmm, mt))
	m := mt.Matrix()
	// Face 0: J=2 times B's H=5
	assert.Equal(t, 10., m.At(0, 2))
	assert.Equal(t, 10., m.At(1, 3))
	assert.Equal(t, 0., m.At(0, 3))
	// Face 1 is a boundary: J=0.5 times -1
	assert.Equal(t, -0.5, m.At(2, 0))
	assert.Equal(t, -0.5, m.At(3, 1))

	mt = target.NewMatrixTarget(4, 4)
	require.NoError(t, fg.PerformLocalFlux(oppositeH, fmm, mt))
	m = mt.Matrix()
	assert.Equal(t, 6., m.At(0, 0))
	assert.Equal(t, 2.5, m.At(3, 3))
	assert.Equal(t, 4, mt.NNZ())
}

func TestBothEqualsParts(t *testing.T) {
	var (
		fg  = twoFaces(t)
		fmm = mat.NewDense(2, 2, []float64{2, 1, 1, 2})
		fl  = flux.StrongForm{Weak: flux.LaxFriedrichs{Velocity: []float64{1.5}}, Velocity: []float64{1.5}}
		u   = []float64{1, -2, 0.5, 4}
	)
	require.NoError(t, fg.ConnectFaces([]Connection{{0, 1}, {1, 0}}))
	for _, f := range []flux.Flux{fl, oppositeH, flux.Penalty{Factor: 3}} {
		var (
			both     = target.NewVectorTarget(u, make([]float64, 4))
			parts    = target.NewVectorTarget(u, make([]float64, 4))
			bothM    = target.NewMatrixTarget(4, 4)
			localM   = target.NewMatrixTarget(4, 4)
			neighbor = target.NewMatrixTarget(4, 4)
		)
		require.NoError(t, fg.PerformBothFluxes(f, fmm, both))
		require.NoError(t, fg.PerformLocalFlux(f, fmm, parts))
		require.NoError(t, fg.PerformNeighborFlux(f, fmm, parts))
		assert.InDeltaSlice(t, parts.Result, both.Result, 1.e-14)

		require.NoError(t, fg.PerformBothFluxes(f, fmm, bothM))
		require.NoError(t, fg.PerformLocalFlux(f, fmm, localM))
		require.NoError(t, fg.PerformNeighborFlux(f, fmm, neighbor))
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				sameElement := i/2 == j/2
				if sameElement {
					assert.InDelta(t, localM.Matrix().At(i, j), bothM.Matrix().At(i, j), 1.e-14)
					assert.Equal(t, 0., neighbor.Matrix().At(i, j))
				} else {
					assert.InDelta(t, neighbor.Matrix().At(i, j), bothM.Matrix().At(i, j), 1.e-14)
					assert.Equal(t, 0., localM.Matrix().At(i, j))
				}
			}
		}
	}
}

func TestFluxPreconditions(t *testing.T) {
	var (
		fg  = twoFaces(t)
		vt  = target.NewVectorTarget([]float64{1, 1, 1, 1}, []float64{9, 9, 9, 9})
		I2  = mat.NewDense(2, 2, []float64{1, 0, 0, 1})
		I3  = mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
		all = []func(flux.Flux, mat.Matrix, target.Target) error{
			fg.PerformLocalFlux, fg.PerformNeighborFlux, fg.PerformBothFluxes,
		}
	)
	for _, perform := range all {
		err := perform(oppositeH, mat.NewDense(2, 3, nil), vt)
		assert.True(t, errors.Is(err, types.ErrDimensionMismatch))
		err = perform(oppositeH, I3, vt)
		assert.True(t, errors.Is(err, types.ErrDimensionMismatch))
		small := target.NewVectorTarget([]float64{1, 1, 1}, []float64{9, 9, 9})
		err = perform(oppositeH, I2, small)
		assert.True(t, errors.Is(err, types.ErrSizeMismatch))
		assert.Equal(t, []float64{9, 9, 9}, small.Result)
		assert.Equal(t, []float64{9, 9, 9, 9}, vt.Result)
	}
}

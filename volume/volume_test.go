package volume

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/dgops/ranges"
	"github.com/notargets/dgops/target"
	"github.com/notargets/dgops/types"
	"github.com/notargets/dgops/utils"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func randomSlice(rng *rand.Rand, n int) (r []float64) {
	r = make([]float64, n)
	for i := range r {
		r[i] = 2*rng.Float64() - 1
	}
	return
}

func randomMatrix(rng *rand.Rand, nr, nc int) *mat.Dense {
	return mat.NewDense(nr, nc, randomSlice(rng, nr*nc))
}

// nonuniformOf produces the same ranges as ur through the nonuniform variant
func nonuniformOf(ur ranges.Uniform) *ranges.Nonuniform {
	nr := ranges.NewNonuniform(ur.Len())
	for _, er := range ur.All() {
		nr.Append(er.Start, er.End)
	}
	return nr
}

func TestStrategy(t *testing.T) {
	for _, s := range []Strategy{Auto, Generic, Batched} {
		got, err := NewStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	s, err := NewStrategy("")
	require.NoError(t, err)
	assert.Equal(t, Auto, s)
	_, err = NewStrategy("gpu")
	assert.Error(t, err)
	assert.Equal(t, "Strategy(9)", Strategy(9).String())
}

func TestApplyIdentity(t *testing.T) {
	var (
		src  = ranges.NewUniform(0, 2, 2)
		dest = ranges.NewUniform(0, 2, 2)
		I    = mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	)
	for _, s := range []Strategy{Generic, Batched, Auto} {
		vt := target.NewVectorTarget([]float64{1, 2, 3, 4}, make([]float64, 4))
		require.NoError(t, Applier{Strategy: s}.Apply(src, dest, I, vt))
		assert.Equal(t, []float64{1, 2, 3, 4}, vt.Result, s.String())
	}
	// Through the package helper and a nonuniform description
	vt := target.NewVectorTarget([]float64{1, 2, 3, 4}, make([]float64, 4))
	require.NoError(t, Apply(nonuniformOf(src), nonuniformOf(dest), I, vt))
	assert.Equal(t, []float64{1, 2, 3, 4}, vt.Result)
}

func TestGenericEqualsBatched(t *testing.T) {
	var (
		rng   = rand.New(rand.NewSource(1))
		K     = 7
		ns    = 4
		nd    = 3
		src   = ranges.NewUniform(2, ns, K)
		dest  = ranges.NewUniform(1, nd, K)
		M     = randomMatrix(rng, nd, ns)
		u     = randomSlice(rng, src.End())
		scale = randomSlice(rng, K)
	)
	{ // Unscaled
		var (
			gen = target.NewVectorTarget(u, make([]float64, dest.End()))
			bat = target.NewVectorTarget(u, make([]float64, dest.End()))
		)
		require.NoError(t, Applier{Strategy: Generic}.Apply(src, dest, M, gen))
		require.NoError(t, ApplyBatched(src, dest, M, bat))
		assert.InDeltaSlice(t, gen.Result, bat.Result, 1.e-13)
		assert.Equal(t, 0., bat.Result[0])
	}
	{ // Scaled, with the generic path reached through a non vector target
		var (
			gen = target.NewSynchronized(target.NewVectorTarget(u, make([]float64, dest.End())))
			bat = target.NewVectorTarget(u, make([]float64, dest.End()))
		)
		require.NoError(t, ApplyScaled(src, dest, scale, M, gen))
		require.NoError(t, ApplyScaledBatched(src, dest, scale, M, bat))
		assert.InDeltaSlice(t, gen.Unwrap().(*target.VectorTarget).Result, bat.Result, 1.e-13)
	}
	{ // Unit scale factors match the unscaled application
		var (
			ones = []float64{1, 1, 1, 1, 1, 1, 1}
			a    = target.NewVectorTarget(u, make([]float64, dest.End()))
			b    = target.NewVectorTarget(u, make([]float64, dest.End()))
		)
		for _, s := range []Strategy{Generic, Batched} {
			require.NoError(t, Applier{Strategy: s}.Apply(src, dest, M, a))
			require.NoError(t, Applier{Strategy: s}.ApplyScaled(src, dest, ones, M, b))
		}
		assert.InDeltaSlice(t, a.Result, b.Result, 1.e-14)
	}
}

func TestApplyAccumulates(t *testing.T) {
	var (
		src  = ranges.NewUniform(0, 1, 3)
		dest = ranges.NewUniform(0, 1, 3)
		M    = mat.NewDense(1, 1, []float64{2})
		vt   = target.NewVectorTarget([]float64{1, 2, 3}, []float64{10, 10, 10})
	)
	require.NoError(t, Applier{Strategy: Batched}.Apply(src, dest, M, vt))
	require.NoError(t, Applier{Strategy: Generic}.Apply(src, dest, M, vt))
	assert.Equal(t, []float64{14, 18, 22}, vt.Result)
}

func TestApplyPreconditions(t *testing.T) {
	var (
		M      = mat.NewDense(2, 2, []float64{1, 2, 3, 4})
		three  = ranges.NewUniform(0, 2, 3)
		two    = ranges.NewUniform(0, 2, 2)
		result = []float64{1, 1, 1, 1, 1, 1}
		vt     = target.NewVectorTarget([]float64{1, 2, 3, 4, 5, 6}, result)
		before = append([]float64{}, result...)
	)
	for _, s := range []Strategy{Generic, Batched, Auto} {
		a := Applier{Strategy: s}
		err := a.Apply(three, two, M, vt)
		assert.True(t, errors.Is(err, types.ErrSizeMismatch), s.String())
		err = a.ApplyScaled(two, two, []float64{1, 2, 3}, M, vt)
		assert.True(t, errors.Is(err, types.ErrSizeMismatch))
		err = a.Apply(ranges.NewUniform(0, 3, 2), ranges.NewUniform(0, 2, 2), M, vt)
		assert.True(t, errors.Is(err, types.ErrDimensionMismatch))
		// Last element spills past the end of the target
		err = a.Apply(ranges.NewUniform(0, 2, 4), ranges.NewUniform(0, 2, 4), M, vt)
		assert.True(t, errors.Is(err, types.ErrSizeMismatch))
		assert.Equal(t, before, vt.Result)
	}
	// Forcing the batched path where it cannot run
	var (
		mt  = target.NewMatrixTarget(6, 6)
		irr = ranges.NewNonuniform()
	)
	irr.Append(0, 2)
	irr.Append(4, 6)
	err := Applier{Strategy: Batched}.Apply(two, two, M, mt)
	assert.True(t, errors.Is(err, ErrBatchedUnavailable))
	assert.Equal(t, 0, mt.NNZ())
	err = Applier{Strategy: Batched}.Apply(irr, two, M, vt)
	assert.True(t, errors.Is(err, ErrBatchedUnavailable))
	assert.Equal(t, before, vt.Result)
	err = ApplyScaledBatched(two, two, []float64{1, 1}, M, nil)
	assert.True(t, errors.Is(err, ErrBatchedUnavailable))
	// Auto falls back to the generic path
	require.NoError(t, Apply(irr, two, M, vt))
	assert.Equal(t, []float64{6, 12, 18, 40, 1, 1}, vt.Result)
}

func TestMatrixAssembly(t *testing.T) {
	var (
		rng   = rand.New(rand.NewSource(3))
		K     = 5
		ur    = ranges.NewUniform(0, 3, K)
		M     = randomMatrix(rng, 3, 3)
		scale = randomSlice(rng, K)
		u     = randomSlice(rng, ur.End())
		vt    = target.NewVectorTarget(u, make([]float64, ur.End()))
		mt    = target.NewMatrixTarget(ur.End(), ur.End())
	)
	require.NoError(t, ApplyScaled(ur, ur, scale, M, vt))
	require.NoError(t, ApplyScaled(ur, ur, scale, M, mt))
	var y mat.VecDense
	y.MulVec(mt.CSR(), mat.NewVecDense(len(u), u))
	assert.InDeltaSlice(t, vt.Result, y.RawVector().Data, 1.e-14)
	assert.Equal(t, 9*K, mt.NNZ())
}

func TestParallelEqualsSerial(t *testing.T) {
	var (
		rng   = rand.New(rand.NewSource(2))
		K     = 37
		src   = ranges.NewUniform(0, 5, K)
		dest  = ranges.NewUniform(0, 5, K)
		M     = randomMatrix(rng, 5, 5)
		u     = randomSlice(rng, src.End())
		scale = randomSlice(rng, K)
		ctx   = context.Background()
	)
	serial := target.NewVectorTarget(u, make([]float64, dest.End()))
	require.NoError(t, ApplyScaled(src, dest, scale, M, serial))
	for _, s := range []Strategy{Generic, Batched, Auto} {
		for _, np := range []int{1, 3, 8, 64} {
			var (
				p  = NewParallel(s, np)
				vt = target.NewVectorTarget(u, make([]float64, dest.End()))
			)
			require.NoError(t, p.ApplyScaled(ctx, src, dest, scale, M, vt))
			assert.InDeltaSlice(t, serial.Result, vt.Result, 1.e-13)

			vt = target.NewVectorTarget(u, make([]float64, dest.End()))
			require.NoError(t, p.ApplyScaled(ctx, nonuniformOf(src), nonuniformOf(dest), scale, M, vt))
			assert.InDeltaSlice(t, serial.Result, vt.Result, 1.e-13)
		}
	}
	{ // Every element writes the same destination block
		var (
			same = ranges.NewNonuniform(K)
			ones = make([]float64, K)
			vt   = target.NewVectorTarget(u, make([]float64, 5))
			st   = target.NewSynchronized(vt)
			I    = mat.NewDense(5, 5, []float64{1, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 1, 0, 0,
				0, 0, 0, 1, 0, 0, 0, 0, 0, 1})
		)
		for k := 0; k < K; k++ {
			same.Append(0, 5)
			ones[k] = 1
		}
		require.NoError(t, NewParallel(Auto, 4).ApplyScaled(ctx, src, same, ones, I, st))
		for i := 0; i < 5; i++ {
			var sum float64
			for k := 0; k < K; k++ {
				sum += u[5*k+i]
			}
			assert.InDelta(t, sum, vt.Result[i], 1.e-12)
		}
	}
	{ // Failures surface before any shard runs
		var (
			p  = NewParallel(Batched, 4)
			vt = target.NewVectorTarget(u, make([]float64, dest.End()))
		)
		err := p.ApplyScaled(ctx, src, dest, scale[:3], M, vt)
		assert.True(t, errors.Is(err, types.ErrSizeMismatch))
		err = p.Apply(ctx, src, dest, M, target.NewMatrixTarget(dest.End(), src.End()))
		assert.True(t, errors.Is(err, ErrBatchedUnavailable))
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		err = p.Apply(cancelled, src, dest, M, vt)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Equal(t, make([]float64, dest.End()), vt.Result)
	}
}

func TestParallelMatrixTarget(t *testing.T) {
	var (
		rng    = rand.New(rand.NewSource(4))
		K      = 2000
		ur     = ranges.NewUniform(0, 3, K)
		M      = randomMatrix(rng, 3, 3)
		serial = target.NewMatrixTarget(ur.End(), ur.End())
		ctx    = context.Background()
	)
	require.NoError(t, Apply(ur, ur, M, serial))
	for _, s := range []Strategy{Generic, Auto} {
		mt := target.NewMatrixTarget(ur.End(), ur.End())
		require.NoError(t, NewParallel(s, 8).Apply(ctx, ur, ur, M, mt))
		assert.Equal(t, 9*K, mt.NNZ())
		for _, ij := range [][2]int{{0, 0}, {1, 2}, {3*K - 1, 3*K - 3}, {3 * 700, 3*700 + 2}} {
			assert.Equal(t, serial.Matrix().At(ij[0], ij[1]), mt.Matrix().At(ij[0], ij[1]))
		}
	}
}

func TestBLASDisabled(t *testing.T) {
	was := utils.SetBLASEnabled(false)
	defer utils.SetBLASEnabled(was)
	var (
		rng    = rand.New(rand.NewSource(5))
		ur     = ranges.NewUniform(0, 4, 6)
		M      = randomMatrix(rng, 4, 4)
		u      = randomSlice(rng, ur.End())
		scale  = randomSlice(rng, ur.Len())
		auto   = target.NewVectorTarget(u, make([]float64, ur.End()))
		gen    = target.NewVectorTarget(u, make([]float64, ur.End()))
		forced = target.NewVectorTarget(u, make([]float64, ur.End()))
	)
	// Auto falls back to the generic path
	require.NoError(t, ApplyScaled(ur, ur, scale, M, auto))
	require.NoError(t, Applier{Strategy: Generic}.ApplyScaled(ur, ur, scale, M, gen))
	assert.Equal(t, gen.Result, auto.Result)
	err := Applier{Strategy: Batched}.ApplyScaled(ur, ur, scale, M, forced)
	assert.True(t, errors.Is(err, ErrBatchedUnavailable))
	err = ApplyScaledBatched(ur, ur, scale, M, forced)
	assert.True(t, errors.Is(err, ErrBatchedUnavailable))
	assert.Equal(t, make([]float64, ur.End()), forced.Result)
}

func TestTargetBounds(t *testing.T) {
	var (
		I    = mat.NewDense(2, 2, []float64{1, 0, 0, 1})
		vt   = target.NewVectorTarget([]float64{1, 2, 3, 4}, make([]float64, 4))
		fits = ranges.NewUniform(0, 2, 2)
		past = ranges.NewNonuniform()
	)
	past.Append(0, 2)
	past.Append(4, 6)
	assert.True(t, errors.Is(Apply(past, past, I, vt), types.ErrSizeMismatch))
	assert.True(t, errors.Is(Apply(fits, past, I, vt), types.ErrSizeMismatch))
	assert.True(t, errors.Is(Apply(past, fits, I, vt), types.ErrSizeMismatch))
	assert.Equal(t, make([]float64, 4), vt.Result)
	require.NoError(t, Apply(fits, fits, I, vt))
	assert.Equal(t, vt.Operand, vt.Result)
}

func TestGaussSeidelSweep(t *testing.T) {
	var (
		K     = 4
		n     = 3
		ur    = ranges.NewUniform(0, n, K)
		scale = []float64{0.5, 1, 2, 0.25}
		// Symmetric positive definite block, so the sweep converges
		M = mat.NewDense(n, n, []float64{
			4, 1, 0,
			1, 3, 1,
			0, 1, 2,
		})
		x    = []float64{1, -2, 3, 0.5, 0.25, -1, 2, 2, 2, -3, 0, 1}
		rhs  = make([]float64, ur.End())
		iter = target.NewVectorTarget(make([]float64, ur.End()), make([]float64, ur.End()))
	)
	require.NoError(t, ApplyScaled(ur, ur, scale, M, target.NewVectorTarget(x, rhs)))
	for it := 0; it < 100; it++ {
		require.NoError(t, GaussSeidelSweep(ur, ur, scale, M, iter, rhs))
		copy(iter.Operand, iter.Result)
	}
	assert.InDeltaSlice(t, x, iter.Result, 1.e-12)

	{ // One sweep from zero on a diagonal block is the exact inverse
		var (
			D  = mat.NewDense(2, 2, []float64{2, 0, 0, 4})
			vt = target.NewVectorTarget(make([]float64, 2), make([]float64, 2))
		)
		require.NoError(t, GaussSeidelSweep(ranges.NewUniform(0, 2, 1), ranges.NewUniform(0, 2, 1),
			[]float64{0.5}, D, vt, []float64{3, 8}))
		assert.Equal(t, []float64{3, 4}, vt.Result)
	}
}

func TestGaussSeidelPreconditions(t *testing.T) {
	var (
		ur  = ranges.NewUniform(0, 2, 2)
		M   = mat.NewDense(2, 2, []float64{1, 2, 3, 4})
		vt  = target.NewVectorTarget(make([]float64, 4), []float64{7, 7, 7, 7})
		rhs = []float64{1, 2, 3, 4}
	)
	err := GaussSeidelSweep(ur, ur, []float64{1, 1}, mat.NewDense(2, 3, nil), vt, rhs)
	assert.True(t, errors.Is(err, types.ErrDimensionMismatch))
	err = GaussSeidelSweep(ur, ur, []float64{1, 1}, M, vt, rhs[:3])
	assert.True(t, errors.Is(err, types.ErrDimensionMismatch))
	err = GaussSeidelSweep(ur, ranges.NewUniform(0, 2, 1), []float64{1, 1}, M, vt, rhs)
	assert.True(t, errors.Is(err, types.ErrSizeMismatch))
	err = GaussSeidelSweep(ur, ur, []float64{1}, M, vt, rhs)
	assert.True(t, errors.Is(err, types.ErrSizeMismatch))
	err = GaussSeidelSweep(ur, ur, []float64{1, 0}, M, vt, rhs)
	assert.True(t, errors.Is(err, types.ErrSingularBlock))
	assert.Equal(t, []float64{7, 7, 7, 7}, vt.Result)
}

func benchmarkApply(b *testing.B, s Strategy, K, np int) {
	var (
		rng   = rand.New(rand.NewSource(4))
		ur    = ranges.NewUniform(0, np, K)
		M     = randomMatrix(rng, np, np)
		scale = randomSlice(rng, K)
		vt    = target.NewVectorTarget(randomSlice(rng, ur.End()), make([]float64, ur.End()))
		a     = Applier{Strategy: s}
	)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := a.ApplyScaled(ur, ur, scale, M, vt); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGeneric(b *testing.B) { benchmarkApply(b, Generic, 10000, 10) }

func BenchmarkBatched(b *testing.B) {
	b.Logf("BLAS backend: %s", utils.BLASBackend())
	benchmarkApply(b, Batched, 10000, 10)
}

package volume

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/dgops/ranges"
	"github.com/notargets/dgops/target"
	"github.com/notargets/dgops/utils"
)

// Parallel shards the elements into ParallelDegree contiguous buckets and
// applies each bucket on its own goroutine. A VectorTarget is written
// directly, so its destination ranges must be disjoint across elements.
// Every other target shares state between blocks and is wrapped in a
// target.Synchronized unless it already is one.
type Parallel struct {
	Applier
	ParallelDegree int
}

func NewParallel(strategy Strategy, parallelDegree int) *Parallel {
	return &Parallel{Applier: Applier{Strategy: strategy}, ParallelDegree: parallelDegree}
}

func (p *Parallel) Apply(ctx context.Context, src, dest ranges.ElementRanges, M mat.Matrix,
	tgt target.Target) (err error) {
	if err = validate(src, dest, nil, false, M, tgt); err != nil {
		return
	}
	return p.run(ctx, src, dest, nil, M, tgt)
}

func (p *Parallel) ApplyScaled(ctx context.Context, src, dest ranges.ElementRanges, scale []float64,
	M mat.Matrix, tgt target.Target) (err error) {
	if err = validate(src, dest, scale, true, M, tgt); err != nil {
		return
	}
	return p.run(ctx, src, dest, scale, M, tgt)
}

func (p *Parallel) run(ctx context.Context, src, dest ranges.ElementRanges, scale []float64,
	M mat.Matrix, tgt target.Target) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Strategy == Batched {
		// Decided once so a forced batch fails before any shard writes
		if _, _, _, ok := batchable(src, dest, tgt); !ok {
			return p.Applier.apply(src, dest, scale, M, tgt)
		}
	}
	tgt = synchronize(tgt)
	var (
		pm   = utils.NewPartitionMap(p.ParallelDegree, src.Len())
		g, c = errgroup.WithContext(ctx)
	)
	for b := 0; b < pm.ParallelDegree; b++ {
		kMin, kMax := pm.GetBucketRange(b)
		if kMin == kMax {
			continue
		}
		g.Go(func() error {
			if err := c.Err(); err != nil {
				return err
			}
			var sc []float64
			if scale != nil {
				sc = scale[kMin:kMax]
			}
			return p.Applier.apply(ranges.Slice(src, kMin, kMax), ranges.Slice(dest, kMin, kMax),
				sc, M, tgt)
		})
	}
	return g.Wait()
}

func synchronize(tgt target.Target) target.Target {
	switch tgt.(type) {
	case *target.VectorTarget, *target.Synchronized:
		return tgt
	}
	return target.NewSynchronized(tgt)
}

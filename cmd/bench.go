package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/notargets/dgops/DG1D"
	"github.com/notargets/dgops/InputParameters"
	"github.com/notargets/dgops/target"
	"github.com/notargets/dgops/utils"
	"github.com/notargets/dgops/volume"
)

// benchCmd represents the bench command
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Times generic, batched and parallel application of the mass operator",
	Long: `
Applies the scaled mass operator J_k M over every element with each strategy,
checks that all paths agree and reports the time per application. On linux
the retired instruction count of one application is reported as well.

dgops bench -k 10000 -n 7 --iterations 50 -p 4`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			ip      *InputParameters.InputParameters1D
			results []BenchResult
		)
		if ip, err = resolveParameters(); err != nil {
			return
		}
		ip.Print()
		iterations, _ := cmd.Flags().GetInt("iterations")
		if results, err = runBench(ip, iterations); err != nil {
			return
		}
		printBench(results)
		fmt.Println(utils.GetMemUsage())
		return
	},
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.Flags().Int("iterations", 20, "applications timed per strategy")
}

type BenchResult struct {
	Name         string
	PerOp        time.Duration
	Instructions uint64 // Zero when the counter is unavailable
	MaxDiff      float64
}

type benchCase struct {
	name  string
	apply func(vt *target.VectorTarget) error
}

func runBench(ip *InputParameters.InputParameters1D, iterations int) (results []BenchResult, err error) {
	var (
		d         *DG1D.Discretization
		reference []float64
	)
	if iterations < 1 {
		return nil, fmt.Errorf("iterations must be positive, have %d", iterations)
	}
	if d, err = newDiscretization(ip); err != nil {
		return
	}
	var (
		u        = d.InterpolateVolumeFunction(func(x float64) float64 { return x * x })
		ctx      = context.Background()
		parallel = volume.NewParallel(volume.Auto, max(ip.ParallelDegree, 1))
		cases    = []benchCase{
			{"Generic", func(vt *target.VectorTarget) error {
				return volume.Applier{Strategy: volume.Generic}.ApplyScaled(d.Elements, d.Elements, d.J, d.Mass, vt)
			}},
			{"Batched", func(vt *target.VectorTarget) error {
				return volume.ApplyScaledBatched(d.Elements, d.Elements, d.J, d.Mass, vt)
			}},
			{fmt.Sprintf("Parallel(%d)", parallel.ParallelDegree), func(vt *target.VectorTarget) error {
				return parallel.ApplyScaled(ctx, d.Elements, d.Elements, d.J, d.Mass, vt)
			}},
		}
	)
	for _, bc := range cases {
		var (
			r     = d.VolumeZeros()
			vt    = target.NewVectorTarget(u, r)
			res   = BenchResult{Name: bc.name}
			start time.Time
		)
		if err = bc.apply(vt); err != nil {
			if errors.Is(err, volume.ErrBatchedUnavailable) {
				logger.Warn("skipping batched strategy", zap.Error(err))
				err = nil
				continue
			}
			return nil, err
		}
		if reference == nil {
			reference = append([]float64{}, r...)
		}
		res.MaxDiff = utils.MaxAbsDiff(reference, r)
		start = time.Now()
		for i := 0; i < iterations; i++ {
			if err = bc.apply(vt); err != nil {
				return nil, err
			}
		}
		res.PerOp = time.Since(start) / time.Duration(iterations)
		if res.Instructions, err = countInstructions(func() error { return bc.apply(vt) }); err != nil {
			logger.Debug("instruction counter unavailable", zap.String("case", bc.name), zap.Error(err))
			err = nil
		}
		logger.Info("timed volume application",
			zap.String("case", res.Name),
			zap.Duration("perOp", res.PerOp),
			zap.Uint64("instructions", res.Instructions),
			zap.Float64("maxDiff", res.MaxDiff))
		results = append(results, res)
	}
	return
}

func printBench(results []BenchResult) {
	fmt.Printf("%-16s%16s%16s%16s\n", "Strategy", "Time/Op", "Instructions", "Max Diff")
	for _, res := range results {
		instr := "-"
		if res.Instructions != 0 {
			instr = fmt.Sprintf("%d", res.Instructions)
		}
		fmt.Printf("%-16s%16v%16s%16.5e\n", res.Name, res.PerOp, instr, res.MaxDiff)
	}
}

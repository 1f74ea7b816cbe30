package cmd

import (
	"fmt"
	"math"
	"time"

	"github.com/notargets/avs/chart2d"
	utils2 "github.com/notargets/avs/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/notargets/dgops/DG1D"
	"github.com/notargets/dgops/InputParameters"
	"github.com/notargets/dgops/utils"
)

// residualCmd represents the residual command
var residualCmd = &cobra.Command{
	Use:   "residual",
	Short: "Strong form advection residual of sin(x) against the exact -a cos(x)",
	Long: `
Evaluates the strong form DG residual of u_t + a u_x = 0 for u = sin(x) once,
through the volume differentiation operator and the interior and boundary flux
lifts, and reports the largest deviation from the exact value -a cos(x).

dgops residual -k 32 -n 3 --flux central --graph`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			ip     *InputParameters.InputParameters1D
			report *ResidualReport
		)
		if ip, err = resolveParameters(); err != nil {
			return
		}
		ip.Print()
		graph, _ := cmd.Flags().GetBool("graph")
		delay, _ := cmd.Flags().GetInt("delay")
		if report, err = runResidual(ip); err != nil {
			return
		}
		fmt.Printf("%8.5e\t= Max Residual Error\n", report.MaxError)
		if graph {
			plotResidual(report, time.Duration(delay)*time.Millisecond)
		}
		return
	},
}

func init() {
	rootCmd.AddCommand(residualCmd)
	residualCmd.Flags().BoolP("graph", "g", false, "plot the residual and the exact value")
	residualCmd.Flags().IntP("delay", "d", 10000, "milliseconds to keep the plot open")
}

type ResidualReport struct {
	Dofs, Np       int
	X, Residual    []float64
	Exact          []float64
	MaxError       float64
	Elapsed        time.Duration
	Strategy, BLAS string
}

func runResidual(ip *InputParameters.InputParameters1D) (report *ResidualReport, err error) {
	var (
		d     *DG1D.Discretization
		rhs   []float64
		start = time.Now()
	)
	ft, err := ip.Flux()
	if err != nil {
		return
	}
	if d, err = newDiscretization(ip); err != nil {
		return
	}
	adv := DG1D.NewAdvection(d, ip.Velocity, ft, math.Sin)
	if rhs, err = adv.Residual(d.InterpolateVolumeFunction(math.Sin)); err != nil {
		return
	}
	if utils.IsNan(rhs) {
		return nil, fmt.Errorf("residual contains NaN for K=%d, N=%d", ip.Elements, ip.PolynomialOrder)
	}
	report = &ResidualReport{
		Dofs:     d.Ndof(),
		Np:       d.Np,
		X:        d.X,
		Residual: rhs,
		Exact: d.InterpolateVolumeFunction(func(x float64) float64 {
			return -ip.Velocity * math.Cos(x)
		}),
		Elapsed:  time.Since(start),
		Strategy: ip.Strategy,
		BLAS:     utils.BLASBackend(),
	}
	report.MaxError = utils.MaxAbsDiff(report.Residual, report.Exact)
	logger.Info("evaluated advection residual",
		zap.Int("dofs", report.Dofs),
		zap.String("flux", ft.String()),
		zap.Float64("maxError", report.MaxError),
		zap.Duration("elapsed", report.Elapsed))
	return
}

// plotResidual draws the residual and the exact value element by element so
// discontinuities between elements stay visible.
func plotResidual(report *ResidualReport, delay time.Duration) {
	var (
		yMin, yMax = float32(math.MaxFloat32), -float32(math.MaxFloat32)
		residual   []float32
		exact      []float32
	)
	for i := range report.X {
		for _, f := range []float64{report.Residual[i], report.Exact[i]} {
			yMin, yMax = min(yMin, float32(f)), max(yMax, float32(f))
		}
		if i%report.Np == 0 {
			continue
		}
		residual = append(residual,
			float32(report.X[i-1]), float32(report.Residual[i-1]),
			float32(report.X[i]), float32(report.Residual[i]))
		exact = append(exact,
			float32(report.X[i-1]), float32(report.Exact[i-1]),
			float32(report.X[i]), float32(report.Exact[i]))
	}
	margin := 0.05 * (yMax - yMin)
	ch := chart2d.NewChart2D(float32(report.X[0]), float32(report.X[len(report.X)-1]),
		yMin-margin, yMax+margin, 1024, 768, utils2.WHITE, utils2.BLACK)
	ch.AddLine(exact, utils2.RED)
	ch.AddLine(residual, utils2.GREEN)
	time.Sleep(delay)
}

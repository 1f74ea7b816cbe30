package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/notargets/dgops/DG1D"
	"github.com/notargets/dgops/InputParameters"
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("input", "I", "", "YAML file of input parameters, see InputParameters1D")
	flags.IntP("elements", "k", 0, "number of elements")
	flags.IntP("order", "n", 0, "polynomial degree")
	flags.Float64("xmin", 0, "left end of the domain")
	flags.Float64("xmax", 0, "right end of the domain")
	flags.Float64("velocity", 0, "advection speed")
	flags.String("flux", "", "numerical flux: central or lax")
	flags.String("strategy", "", "volume operator strategy: auto, generic or batched")
	flags.IntP("parallel", "p", 0, "number of goroutines sharding the volume operators")
	for _, key := range []string{"input", "elements", "order", "xmin", "xmax", "velocity", "flux",
		"strategy", "parallel"} {
		if err := viper.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(err)
		}
	}
}

// resolveParameters starts from the defaults, overlays the input file and
// then any value set by flag, environment or config file.
func resolveParameters() (ip *InputParameters.InputParameters1D, err error) {
	ip = InputParameters.NewInputParameters1D()
	if file := viper.GetString("input"); len(file) != 0 {
		var data []byte
		if data, err = os.ReadFile(file); err != nil {
			return nil, err
		}
		if err = ip.Parse(data); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", file, err)
		}
	}
	if viper.IsSet("elements") {
		ip.Elements = viper.GetInt("elements")
	}
	if viper.IsSet("order") {
		ip.PolynomialOrder = viper.GetInt("order")
	}
	if viper.IsSet("xmin") {
		ip.XMin = viper.GetFloat64("xmin")
	}
	if viper.IsSet("xmax") {
		ip.XMax = viper.GetFloat64("xmax")
	}
	if viper.IsSet("velocity") {
		ip.Velocity = viper.GetFloat64("velocity")
	}
	if viper.IsSet("flux") {
		ip.FluxType = viper.GetString("flux")
	}
	if viper.IsSet("strategy") {
		ip.Strategy = viper.GetString("strategy")
	}
	if viper.IsSet("parallel") {
		ip.ParallelDegree = viper.GetInt("parallel")
	}
	if err = ip.Validate(); err != nil {
		return nil, err
	}
	return
}

func newDiscretization(ip *InputParameters.InputParameters1D) (d *DG1D.Discretization, err error) {
	s, err := ip.ApplyStrategy()
	if err != nil {
		return
	}
	VX, EToV := DG1D.SimpleMesh1D(ip.XMin, ip.XMax, ip.Elements)
	return DG1D.NewDiscretization(ip.PolynomialOrder, VX, EToV,
		DG1D.WithLogger(logger),
		DG1D.WithStrategy(s),
		DG1D.WithParallelDegree(ip.ParallelDegree))
}

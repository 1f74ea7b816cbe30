package DG1D

import (
	"fmt"

	"github.com/notargets/dgops/flux"
	"github.com/notargets/dgops/types"
)

// Advection is the strong form operator of u_t + a u_x = 0. Inflow supplies
// the exterior value on the inflow boundary; the outflow boundary uses the
// interior value.
type Advection struct {
	D        *Discretization
	Velocity float64
	Flux     flux.Flux
	Inflow   func(x float64) float64
}

func NewAdvection(d *Discretization, velocity float64, ft flux.FluxType,
	inflow func(x float64) float64) (a *Advection) {
	v := []float64{velocity}
	a = &Advection{
		D:        d,
		Velocity: velocity,
		Flux:     flux.StrongForm{Weak: flux.NewAdvectionFlux(ft, v), Velocity: v},
		Inflow:   inflow,
	}
	return
}

// Residual evaluates -a u_x + M^-1 (face terms) for the field u.
func (a *Advection) Residual(u []float64) (rhs []float64, err error) {
	var (
		d                 = a.D
		du, fi, fIn, fOut []float64
		bIn, bOut         []float64
	)
	if du, err = d.Differentiate(u); err != nil {
		return
	}
	if fi, err = d.LiftInteriorFlux(a.Flux, u); err != nil {
		return
	}
	if bIn, err = d.InterpolateBoundaryFunction(a.Inflow, types.BC_In); err != nil {
		return
	}
	if fIn, err = d.LiftBoundaryFlux(a.Flux, u, bIn, types.BC_In); err != nil {
		return
	}
	if bOut, err = d.BoundarizeVolumeField(u, types.BC_Out); err != nil {
		return
	}
	if fOut, err = d.LiftBoundaryFlux(a.Flux, u, bOut, types.BC_Out); err != nil {
		return
	}
	for i := range fi {
		fi[i] += fIn[i] + fOut[i]
	}
	if rhs, err = d.ApplyInverseMassMatrix(fi); err != nil {
		return nil, fmt.Errorf("lifting face terms: %w", err)
	}
	for i := range rhs {
		rhs[i] -= a.Velocity * du[i]
	}
	return
}

package DG1D

import (
	"fmt"

	"github.com/notargets/dgops/flux"
	"github.com/notargets/dgops/target"
	"github.com/notargets/dgops/types"
	"github.com/notargets/dgops/utils"
	"github.com/notargets/dgops/volume"
)

// PerformMassOperator adds the block diagonal mass matrix J_k M into tgt.
func (d *Discretization) PerformMassOperator(tgt target.Target) error {
	return d.performScaled(d.J, d.Mass, tgt)
}

func (d *Discretization) PerformInverseMassOperator(tgt target.Target) error {
	return d.performScaled(d.Rx, d.InvMass, tgt)
}

// PerformDifferentiationOperator adds d/dx = rx Dr into tgt.
func (d *Discretization) PerformDifferentiationOperator(tgt target.Target) error {
	return d.performScaled(d.Rx, d.Dr, tgt)
}

// PerformMinvSTOperator adds M_k^-1 S^T into tgt. The stiffness matrix does
// not depend on the element size in 1D, so only the inverse mass scales.
func (d *Discretization) PerformMinvSTOperator(tgt target.Target) error {
	return d.performScaled(d.Rx, d.MinvST, tgt)
}

func (d *Discretization) apply(perform func(tgt target.Target) error, u []float64) (r []float64, err error) {
	if err = d.checkVolume(u); err != nil {
		return
	}
	r = d.VolumeZeros()
	if err = perform(target.NewVectorTarget(u, r)); err != nil {
		return nil, err
	}
	return
}

func (d *Discretization) ApplyMassMatrix(u []float64) ([]float64, error) {
	return d.apply(d.PerformMassOperator, u)
}

func (d *Discretization) ApplyInverseMassMatrix(u []float64) ([]float64, error) {
	return d.apply(d.PerformInverseMassOperator, u)
}

func (d *Discretization) Differentiate(u []float64) ([]float64, error) {
	return d.apply(d.PerformDifferentiationOperator, u)
}

func (d *Discretization) ApplyMinvST(u []float64) ([]float64, error) {
	return d.apply(d.PerformMinvSTOperator, u)
}

// Assemble collects a volume operator into a global sparse matrix.
func (d *Discretization) Assemble(perform func(tgt target.Target) error) (mt *target.MatrixTarget, err error) {
	mt = target.NewMatrixTarget(d.Ndof(), d.Ndof())
	if err = perform(mt); err != nil {
		return nil, err
	}
	return
}

func (d *Discretization) AssembleMassMatrix() (*target.MatrixTarget, error) {
	return d.Assemble(d.PerformMassOperator)
}

// LiftInteriorFlux returns the face integrals of the flux over all interior
// faces, weighted by the face mass matrix. Apply the inverse mass matrix to
// obtain the lifted contribution.
func (d *Discretization) LiftInteriorFlux(fl flux.Flux, u []float64) (r []float64, err error) {
	if err = d.checkVolume(u); err != nil {
		return
	}
	r = d.VolumeZeros()
	if err = d.Interior.PerformBothFluxes(fl, d.FaceMass, target.NewVectorTarget(u, r)); err != nil {
		return nil, err
	}
	return
}

// LiftBoundaryFlux is LiftInteriorFlux for the boundary faces of tag, with
// the exterior values taken from the boundary field b. The flux sees no
// opposite face on these faces.
func (d *Discretization) LiftBoundaryFlux(fl flux.Flux, u, b []float64, tag types.BCFLAG) (r []float64, err error) {
	var bf *boundaryFaces
	if bf, err = d.boundaryFor(tag); err != nil {
		return
	}
	if err = d.checkVolume(u); err != nil {
		return
	}
	if len(b) != len(bf.points) {
		err = fmt.Errorf("%w: boundary field has %d values, %s boundary has %d",
			types.ErrSizeMismatch, len(b), tag, len(bf.points))
		return
	}
	r = d.VolumeZeros()
	if err = bf.group.PerformLocalFlux(fl, d.FaceMass, target.NewVectorTarget(u, r)); err != nil {
		return nil, err
	}
	if err = bf.group.PerformNeighborFlux(fl, d.FaceMass, target.NewVectorTarget(b, r)); err != nil {
		return nil, err
	}
	return
}

// SolveMass solves M x = rhs by repeated block Gauss-Seidel sweeps, stopping
// when an update changes no value by more than tol.
func (d *Discretization) SolveMass(rhs []float64, tol float64, maxIter int) (x []float64, iters int, err error) {
	if err = d.checkVolume(rhs); err != nil {
		return
	}
	vt := target.NewVectorTarget(d.VolumeZeros(), d.VolumeZeros())
	for iters = 1; iters <= maxIter; iters++ {
		if err = volume.GaussSeidelSweep(d.Elements, d.Elements, d.J, d.Mass, vt, rhs); err != nil {
			return
		}
		change := utils.MaxAbsDiff(vt.Result, vt.Operand)
		copy(vt.Operand, vt.Result)
		if change <= tol {
			x = vt.Result
			return
		}
	}
	err = fmt.Errorf("mass solve did not converge to %g in %d sweeps", tol, maxIter)
	return
}

package flux

import (
	"fmt"
	"math"
	"strings"
)

// Central is the average flux (n·v) {u}.
type Central struct {
	Velocity []float64
}

func (f Central) LocalCoeff(face Face) float64 { return 0.5 * dot(face.Normal, f.Velocity) }

func (f Central) NeighborCoeff(face Face, _ Opposite) float64 {
	return 0.5 * dot(face.Normal, f.Velocity)
}

// LaxFriedrichs is the upwinded flux (n·v) {u} + |v|/2 (u_int - u_ext).
type LaxFriedrichs struct {
	Velocity []float64
}

func (f LaxFriedrichs) LocalCoeff(face Face) float64 {
	return 0.5*dot(face.Normal, f.Velocity) + 0.5*norm(f.Velocity)
}

func (f LaxFriedrichs) NeighborCoeff(face Face, _ Opposite) float64 {
	return 0.5*dot(face.Normal, f.Velocity) - 0.5*norm(f.Velocity)
}

// StrongForm turns a weak numerical flux f* into the strong-form face term
// (n·v) u_int - f*.
type StrongForm struct {
	Weak     Flux
	Velocity []float64
}

func (f StrongForm) LocalCoeff(face Face) float64 {
	return dot(face.Normal, f.Velocity) - f.Weak.LocalCoeff(face)
}

func (f StrongForm) NeighborCoeff(face Face, opp Opposite) float64 {
	return -f.Weak.NeighborCoeff(face, opp)
}

// Penalty is the interior penalty weight Factor·Order²/h with h the smaller
// element size of the two sides, or this side's size on a boundary. The
// local coefficient uses this side only; the neighbor coefficient is the
// negated two-sided weight, so a jump u_int - u_ext is penalized.
type Penalty struct {
	Factor float64
}

func (f Penalty) LocalCoeff(face Face) float64 {
	return f.weight(face.Order, face.H)
}

func (f Penalty) NeighborCoeff(face Face, opp Opposite) float64 {
	var (
		order = face.Order
		h     = face.H
	)
	if of, ok := opp.Face(); ok {
		if of.Order > order {
			order = of.Order
		}
		h = math.Min(h, of.H)
	}
	return -f.weight(order, h)
}

func (f Penalty) weight(order int, h float64) float64 {
	if h == 0 {
		return 0
	}
	return f.Factor * float64(order*order) / h
}

// Func adapts plain functions to Flux.
type Func struct {
	Local    func(face Face) float64
	Neighbor func(face Face, opp Opposite) float64
}

func (f Func) LocalCoeff(face Face) float64 {
	if f.Local == nil {
		return 0
	}
	return f.Local(face)
}

func (f Func) NeighborCoeff(face Face, opp Opposite) float64 {
	if f.Neighbor == nil {
		return 0
	}
	return f.Neighbor(face, opp)
}

type FluxType uint8

const (
	FLUX_Central FluxType = iota
	FLUX_LaxFriedrichs
)

func (ft FluxType) String() string {
	switch ft {
	case FLUX_LaxFriedrichs:
		return "Lax Friedrichs"
	}
	return "Central"
}

func NewFluxType(label string) (ft FluxType, err error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "central", "average":
		ft = FLUX_Central
	case "lax", "lf", "upwind", "laxfriedrichs":
		ft = FLUX_LaxFriedrichs
	default:
		err = fmt.Errorf("unknown flux type %q", label)
	}
	return
}

// NewAdvectionFlux returns the weak-form advection flux of the given type.
func NewAdvectionFlux(ft FluxType, velocity []float64) Flux {
	switch ft {
	case FLUX_LaxFriedrichs:
		return LaxFriedrichs{Velocity: velocity}
	}
	return Central{Velocity: velocity}
}

func dot(a, b []float64) (d float64) {
	for i := 0; i < len(a) && i < len(b); i++ {
		d += a[i] * b[i]
	}
	return
}

func norm(a []float64) float64 {
	return math.Sqrt(dot(a, a))
}

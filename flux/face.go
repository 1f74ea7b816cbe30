// Package flux supplies the per-face data and the numerical-flux
// coefficients used by the face coupling operators.
package flux

// Face holds the geometric data of one element face.
type Face struct {
	ElementID, FaceID int
	// FaceJacobian scales reference-face integrals to the physical face.
	FaceJacobian float64
	// H is the element size normal to the face, Order the polynomial order.
	H      float64
	Order  int
	Normal []float64
}

// Opposite is the face across from another face, or nothing on a boundary.
// The zero value is the boundary case.
type Opposite struct {
	face    Face
	present bool
}

func Across(face Face) Opposite { return Opposite{face: face, present: true} }

func Boundary() Opposite { return Opposite{} }

func (o Opposite) Present() bool { return o.present }

// Face returns the opposite face data, with ok false on a boundary.
func (o Opposite) Face() (face Face, ok bool) {
	return o.face, o.present
}

// Flux provides the numerical-flux weights applied to a face's own DOFs
// (local) and to the neighbor's DOFs (neighbor). NeighborCoeff must give a
// usable value for boundary faces, where opp is absent and the neighbor DOFs
// hold boundary data.
type Flux interface {
	LocalCoeff(face Face) float64
	NeighborCoeff(face Face, opp Opposite) float64
}

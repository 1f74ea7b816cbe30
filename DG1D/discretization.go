/*
Package DG1D builds a nodal discontinuous Galerkin discretization of a 1D
interval and exposes its element-wise and face operators. Volume operators
are applied through the volume package over uniform element ranges and face
terms through face groups, so every operator can also be assembled into a
global sparse matrix.
*/
package DG1D

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/dgops/faces"
	"github.com/notargets/dgops/flux"
	"github.com/notargets/dgops/ranges"
	"github.com/notargets/dgops/target"
	"github.com/notargets/dgops/types"
	"github.com/notargets/dgops/utils"
	"github.com/notargets/dgops/volume"
)

type Discretization struct {
	K, N, Np, Nfp, NFaces int
	VX                    []float64
	EToV, EToE, EToF      [][2]int
	FMask                 [2]int
	R, X                  []float64 // Reference and physical node locations
	J, Rx                 []float64 // Per element jacobian and its inverse
	// Reference element operators, read only
	V, Vinv, Dr, Mass, InvMass, MinvST, FaceMass utils.Matrix
	Elements                                   ranges.Uniform
	// Interior faces, connected in both directions
	Interior *faces.FaceGroup
	FaceMap  map[types.FaceKey]int
	// BCType tags each boundary face
	BCType   map[types.FaceKey]types.BCFLAG
	boundary map[types.BCFLAG]*boundaryFaces

	applier  volume.Applier
	parallel *volume.Parallel
	log      *zap.Logger
}

// boundaryFaces is the face group of one boundary tag. Opposite indices of
// the group address a boundary vector holding Nfp values per face.
type boundaryFaces struct {
	group  *faces.FaceGroup
	keys   []types.FaceKey
	points []float64
}

type Option func(d *Discretization)

func WithLogger(log *zap.Logger) Option {
	return func(d *Discretization) {
		if log != nil {
			d.log = log
		}
	}
}

func WithStrategy(s volume.Strategy) Option {
	return func(d *Discretization) { d.applier.Strategy = s }
}

// WithParallelDegree shards volume operators over np goroutines when np > 1.
func WithParallelDegree(np int) Option {
	return func(d *Discretization) {
		if np > 1 {
			d.parallel = volume.NewParallel(d.applier.Strategy, np)
		} else {
			d.parallel = nil
		}
	}
}

func NewDiscretization(N int, VX []float64, EToV [][2]int, opts ...Option) (d *Discretization, err error) {
	if N < 1 {
		err = fmt.Errorf("polynomial order must be at least 1, have %d", N)
		return
	}
	if len(EToV) == 0 {
		err = fmt.Errorf("mesh has no elements")
		return
	}
	d = &Discretization{
		K:      len(EToV),
		N:      N,
		Np:     N + 1,
		Nfp:    1,
		NFaces: 2,
		VX:     VX,
		EToV:   EToV,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.parallel != nil {
		d.parallel.Strategy = d.applier.Strategy
	}
	if err = d.startup(); err != nil {
		return nil, err
	}
	d.EToE, d.EToF = Connect1D(EToV)
	if err = d.buildFaces(); err != nil {
		return nil, err
	}
	d.log.Debug("built 1D discretization",
		zap.Int("elements", d.K),
		zap.Int("order", d.N),
		zap.Int("dofs", d.Ndof()),
		zap.Int("interiorFaces", d.Interior.Len()),
		zap.Int("boundaryFaces", d.boundary[types.BC_None].group.Len()),
		zap.Stringer("strategy", d.applier.Strategy),
		zap.String("blas", utils.BLASBackend()))
	return
}

func (d *Discretization) startup() (err error) {
	d.R = JacobiGL(0, 0, d.N)
	d.V = Vandermonde1D(d.N, d.R)
	if d.Vinv, err = d.V.Inverse(); err != nil {
		return fmt.Errorf("inverting the Vandermonde matrix: %w", err)
	}
	d.Dr = GradVandermonde1D(d.R, d.N).Mul(d.Vinv)
	d.InvMass = d.V.Mul(d.V.T())
	d.Mass = d.Vinv.Transpose().Mul(d.Vinv)
	// M^-1 S^T with the stiffness matrix S = M Dr
	d.MinvST = d.InvMass.Mul(d.Mass.Mul(d.Dr).T())
	d.FaceMass = utils.NewMatrix(d.Nfp, d.Nfp, []float64{1})
	d.FMask = [2]int{0, d.Np - 1}

	d.V.SetReadOnly("V")
	d.Vinv.SetReadOnly("Vinv")
	d.Dr.SetReadOnly("Dr")
	d.InvMass.SetReadOnly("InvMass")
	d.Mass.SetReadOnly("Mass")
	d.MinvST.SetReadOnly("MinvST")
	d.FaceMass.SetReadOnly("FaceMass")

	d.Elements = ranges.NewUniform(0, d.Np, d.K)
	d.X = make([]float64, d.Ndof())
	d.J = make([]float64, d.K)
	d.Rx = make([]float64, d.K)
	for k, ev := range d.EToV {
		if ev[0] < 0 || ev[1] >= len(d.VX) || ev[0] >= len(d.VX) || ev[1] < 0 {
			return fmt.Errorf("%w: element %d vertices %v outside %d vertices",
				types.ErrInvalidReference, k, ev, len(d.VX))
		}
		var (
			va, vb = d.VX[ev[0]], d.VX[ev[1]]
		)
		if !(vb-va > utils.NODETOL) {
			return fmt.Errorf("element %d has non positive length [%v, %v]", k, va, vb)
		}
		// x = VX(va) + 0.5*(r+1)*(VX(vb)-VX(va))
		for i, r := range d.R {
			d.X[k*d.Np+i] = va + 0.5*(r+1)*(vb-va)
		}
		d.J[k] = 0.5 * (vb - va)
		d.Rx[k] = 1 / d.J[k]
	}
	return
}

func (d *Discretization) faceData(k, f int) flux.Face {
	normal := -1.
	if f == 1 {
		normal = 1
	}
	return flux.Face{
		ElementID:    k,
		FaceID:       f,
		FaceJacobian: 1,
		H:            2 * d.J[k],
		Order:        d.N,
		Normal:       []float64{normal},
	}
}

// buildFaces creates the interior face group with both directions wired and
// one boundary face group per tag, inflow on left facing boundaries and
// outflow on right facing ones.
func (d *Discretization) buildFaces() (err error) {
	var (
		conns []faces.Connection
		bdry  []types.FaceKey
	)
	d.Interior = faces.NewFaceGroup(d.NFaces * d.K)
	d.FaceMap = make(map[types.FaceKey]int)
	d.BCType = make(map[types.FaceKey]types.BCFLAG)
	for k := 0; k < d.K; k++ {
		for f := 0; f < d.NFaces; f++ {
			key := types.NewFaceKey(k, f)
			k2, f2 := d.EToE[k][f], d.EToF[k][f]
			if k2 == k && f2 == f {
				bdry = append(bdry, key)
				if f == 0 {
					d.BCType[key] = types.BC_In
				} else {
					d.BCType[key] = types.BC_Out
				}
				continue
			}
			var id int
			id, err = d.Interior.AddFace(d.faceNodes(k, f), d.faceNodes(k2, f2), d.faceData(k, f))
			if err != nil {
				return
			}
			d.FaceMap[key] = id
		}
	}
	for key, id := range d.FaceMap {
		k2, f2 := d.EToE[key.Element()][key.Face()], d.EToF[key.Element()][key.Face()]
		conns = append(conns, faces.Connection{Local: id, Opposite: d.FaceMap[types.NewFaceKey(k2, f2)]})
	}
	if err = d.Interior.ConnectFaces(conns); err != nil {
		return
	}

	d.boundary = make(map[types.BCFLAG]*boundaryFaces)
	for _, tag := range []types.BCFLAG{types.BC_None, types.BC_In, types.BC_Out} {
		bf := &boundaryFaces{group: faces.NewFaceGroup()}
		for _, key := range bdry {
			if tag != types.BC_None && d.BCType[key] != tag {
				continue
			}
			var (
				k, f = key.Element(), key.Face()
				vi   = d.volumeIndex(k, f)
				bi   = len(bf.points)
			)
			if _, err = bf.group.AddFace(d.faceNodes(k, f), utils.NewRange(bi, bi+d.Nfp),
				d.faceData(k, f)); err != nil {
				return
			}
			bf.keys = append(bf.keys, key)
			bf.points = append(bf.points, d.X[vi])
		}
		d.boundary[tag] = bf
	}
	return
}

func (d *Discretization) volumeIndex(k, f int) int { return k*d.Np + d.FMask[f] }

// faceNodes lists the volume indices of the Nfp nodes on face f of element k.
func (d *Discretization) faceNodes(k, f int) utils.Index {
	return utils.NewRange(0, d.Nfp).Add(d.volumeIndex(k, f))
}

func (d *Discretization) Ndof() int { return d.K * d.Np }

func (d *Discretization) VolumeZeros() []float64 { return make([]float64, d.Ndof()) }

func (d *Discretization) boundaryFor(tag types.BCFLAG) (bf *boundaryFaces, err error) {
	var ok bool
	if bf, ok = d.boundary[tag]; !ok {
		err = fmt.Errorf("no boundary tagged %s", tag)
	}
	return
}

// BoundaryZeros returns a zero boundary vector for tag, BC_None meaning all
// boundary faces.
func (d *Discretization) BoundaryZeros(tag types.BCFLAG) []float64 {
	bf, err := d.boundaryFor(tag)
	if err != nil {
		return nil
	}
	return make([]float64, len(bf.points))
}

// BoundaryFaces lists the faces behind the entries of tag's boundary vector.
func (d *Discretization) BoundaryFaces(tag types.BCFLAG) []types.FaceKey {
	bf, err := d.boundaryFor(tag)
	if err != nil {
		return nil
	}
	return bf.keys
}

func (d *Discretization) InterpolateVolumeFunction(f func(x float64) float64) (u []float64) {
	u = make([]float64, len(d.X))
	for i, x := range d.X {
		u[i] = f(x)
	}
	return
}

func (d *Discretization) InterpolateBoundaryFunction(f func(x float64) float64,
	tag types.BCFLAG) (b []float64, err error) {
	var bf *boundaryFaces
	if bf, err = d.boundaryFor(tag); err != nil {
		return
	}
	b = make([]float64, len(bf.points))
	for i, x := range bf.points {
		b[i] = f(x)
	}
	return
}

// BoundarizeVolumeField restricts a volume field to the boundary nodes of tag.
func (d *Discretization) BoundarizeVolumeField(u []float64, tag types.BCFLAG) (b []float64, err error) {
	var bf *boundaryFaces
	if bf, err = d.boundaryFor(tag); err != nil {
		return
	}
	if err = d.checkVolume(u); err != nil {
		return
	}
	b = make([]float64, len(bf.points))
	for i := 0; i < bf.group.Len(); i++ {
		fi := bf.group.At(i)
		for j, vi := range fi.FaceIndices {
			b[fi.OppositeIndices[j]] = u[vi]
		}
	}
	return
}

// VolumizeBoundaryField places boundary values of tag at their volume nodes,
// zero elsewhere.
func (d *Discretization) VolumizeBoundaryField(b []float64, tag types.BCFLAG) (u []float64, err error) {
	var bf *boundaryFaces
	if bf, err = d.boundaryFor(tag); err != nil {
		return
	}
	if len(b) != len(bf.points) {
		err = fmt.Errorf("%w: boundary field has %d values, %s boundary has %d",
			types.ErrSizeMismatch, len(b), tag, len(bf.points))
		return
	}
	u = d.VolumeZeros()
	for i := 0; i < bf.group.Len(); i++ {
		fi := bf.group.At(i)
		for j, vi := range fi.FaceIndices {
			u[vi] = b[fi.OppositeIndices[j]]
		}
	}
	return
}

func (d *Discretization) checkVolume(u []float64) error {
	if len(u) != d.Ndof() {
		return fmt.Errorf("%w: field has %d values, discretization has %d DOFs",
			types.ErrSizeMismatch, len(u), d.Ndof())
	}
	return nil
}

func (d *Discretization) performScaled(scale []float64, M mat.Matrix, tgt target.Target) error {
	if d.parallel == nil {
		return d.applier.ApplyScaled(d.Elements, d.Elements, scale, M, tgt)
	}
	return d.parallel.ApplyScaled(context.Background(), d.Elements, d.Elements, scale, M, tgt)
}

package utils

import (
	"fmt"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a row-major dense matrix that can be frozen after setup. The
// reference operators of a discretization are built once and then marked
// read only, so any accidental write during operator application panics.
type Matrix struct {
	M        *mat.Dense
	readOnly bool
	name     string
}

func NewMatrix(nr, nc int, dataO ...[]float64) (R Matrix) {
	var m *mat.Dense
	if len(dataO) != 0 {
		if len(dataO[0]) != nr*nc {
			err := fmt.Errorf("mismatch in allocation: NewMatrix nr,nc = %v,%v, len(data[0]) = %v",
				nr, nc, len(dataO[0]))
			panic(err)
		}
		m = mat.NewDense(nr, nc, dataO[0])
	} else {
		m = mat.NewDense(nr, nc, nil)
	}
	R = Matrix{
		M:    m,
		name: "unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

func NewMatrixFrom(A mat.Matrix) (R Matrix) {
	R = Matrix{
		M:    mat.DenseCopyOf(A),
		name: "unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m Matrix) Dims() (r, c int)          { return m.M.Dims() }
func (m Matrix) At(i, j int) float64       { return m.M.At(i, j) }
func (m Matrix) T() mat.Matrix             { return m.M.T() }
func (m Matrix) RawMatrix() blas64.General { return m.M.RawMatrix() }
func (m Matrix) Data() []float64           { return m.M.RawMatrix().Data }
func (m Matrix) Name() string              { return m.name }
func (m Matrix) IsReadOnly() bool          { return m.readOnly }

func (m *Matrix) SetReadOnly(name ...string) Matrix {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m Matrix) Set(i, j int, val float64) Matrix { // Changes receiver
	m.checkWritable()
	m.M.Set(i, j, val)
	return m
}

func (m Matrix) Scale(a float64) Matrix { // Changes receiver
	m.checkWritable()
	m.M.Scale(a, m.M)
	return m
}

func (m Matrix) Copy() (R Matrix) { // Does not change receiver
	R = NewMatrixFrom(m.M)
	return
}

func (m Matrix) Transpose() (R Matrix) { // Does not change receiver
	R = NewMatrixFrom(m.M.T())
	return
}

func (m Matrix) Mul(A mat.Matrix) (R Matrix) { // Does not change receiver
	var (
		nr, _ = m.Dims()
		_, nc = A.Dims()
	)
	R = NewMatrix(nr, nc)
	R.M.Mul(m.M, A)
	return
}

func (m Matrix) Inverse() (R Matrix, err error) {
	var (
		nr, nc = m.Dims()
	)
	if nr != nc {
		err = fmt.Errorf("unable to invert, matrix is %d x %d", nr, nc)
		return
	}
	R = m.Copy()
	iPiv := make([]int, nr)
	if ok := lapack64.Getrf(R.RawMatrix(), iPiv); !ok {
		err = fmt.Errorf("unable to invert, matrix is singular")
		return
	}
	work := make([]float64, nr*nc)
	if ok := lapack64.Getri(R.RawMatrix(), iPiv, work, nr*nc); !ok {
		err = fmt.Errorf("unable to invert, matrix is singular")
	}
	return
}

func (m Matrix) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

// RawGeneral returns a row-major BLAS view of A, sharing storage when A
// exposes it and copying otherwise.
func RawGeneral(A mat.Matrix) blas64.General {
	if rm, ok := A.(mat.RawMatrixer); ok {
		return rm.RawMatrix()
	}
	return mat.DenseCopyOf(A).RawMatrix()
}

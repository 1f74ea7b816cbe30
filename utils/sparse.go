package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// DOK is an accumulating dictionary-of-keys sparse matrix, used to assemble
// global operators one coefficient at a time and then compress them to CSR.
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		M:    sparse.NewDOK(nr, nc),
		name: "unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }
func (m DOK) NNZ() int            { return m.M.NNZ() }

func (m *DOK) SetReadOnly(name ...string) DOK {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

// Accumulate adds val into entry (i, j).
func (m DOK) Accumulate(i, j int, val float64) { // Changes receiver
	m.checkWritable()
	m.M.Set(i, j, m.M.At(i, j)+val)
}

func (m DOK) Reset() { // Changes receiver
	var (
		nr, nc = m.Dims()
	)
	m.checkWritable()
	*m.M = *sparse.NewDOK(nr, nc)
}

func (m DOK) ToCSR() *sparse.CSR {
	return m.M.ToCSR()
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

package DG1D

import (
	"fmt"

	"github.com/james-bowman/sparse"
)

// SimpleMesh1D divides [xmin, xmax] into K equal elements. EToV holds the
// left and right vertex of each element.
func SimpleMesh1D(xmin, xmax float64, K int) (VX []float64, EToV [][2]int) {
	if K < 1 || !(xmax > xmin) {
		panic(fmt.Errorf("invalid 1D mesh: %d elements on [%v, %v]", K, xmin, xmax))
	}
	VX = make([]float64, K+1)
	h := (xmax - xmin) / float64(K)
	for i := range VX {
		VX[i] = xmin + float64(i)*h
	}
	VX[K] = xmax
	EToV = make([][2]int, K)
	for k := range EToV {
		EToV[k] = [2]int{k, k + 1}
	}
	return
}

// Connect1D finds the element and face across every face from the sparse
// face to face product FToV * FToV^T. A face matched to itself is a boundary.
func Connect1D(EToV [][2]int) (EToE, EToF [][2]int) {
	var (
		NFaces     = 2
		K          = len(EToV)
		Nv         int
		TotalFaces = NFaces * K
	)
	for _, ev := range EToV {
		Nv = max(Nv, ev[0]+1, ev[1]+1)
	}
	SpFToV := sparse.NewDOK(TotalFaces, Nv)
	var sk int
	for k := 0; k < K; k++ {
		for face := 0; face < NFaces; face++ {
			SpFToV.Set(sk, EToV[k][face], 1)
			sk++
		}
	}
	FToV := SpFToV.ToCSR()
	SpFToF := sparse.NewCSR(TotalFaces, TotalFaces, nil, nil, nil)
	SpFToF.Mul(FToV, FToV.T())

	EToE = make([][2]int, K)
	EToF = make([][2]int, K)
	for k := range EToE {
		EToE[k] = [2]int{k, k}
		EToF[k] = [2]int{0, 1}
	}
	// Off diagonal entries are faces sharing a vertex
	SpFToF.DoNonZero(func(i, j int, v float64) {
		if i == j || v != 1 {
			return
		}
		EToE[i/NFaces][i%NFaces] = j / NFaces
		EToF[i/NFaces][i%NFaces] = j % NFaces
	})
	return
}

package DG1D

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/dgops/utils"
)

// JacobiGL returns the N+1 Gauss-Lobatto nodes of the Jacobi polynomial
// P_N^(alpha,beta) on [-1, 1].
func JacobiGL(alpha, beta float64, N int) (X []float64) {
	X = make([]float64, N+1)
	if N == 0 {
		return
	}
	X[0] = -1
	X[N] = 1
	if N == 1 {
		return
	}
	xint, _ := JacobiGQ(alpha+1, beta+1, N-2)
	copy(X[1:N], xint)
	return
}

// JacobiGQ returns the N+1 Gauss quadrature nodes and weights for the
// weight (1-x)^alpha (1+x)^beta, from the eigen decomposition of the Jacobi
// matrix.
func JacobiGQ(alpha, beta float64, N int) (X, W []float64) {
	var (
		fac, ip1   float64
		h1, d0, d1 []float64
	)
	if N == 0 {
		X = []float64{-(alpha - beta) / (alpha + beta + 2.)}
		W = []float64{2.}
		return
	}

	h1 = make([]float64, N+1)
	for i := 0; i < N+1; i++ {
		h1[i] = 2*float64(i) + alpha + beta
	}

	// main diagonal: -1/2*(alpha^2-beta^2)./(h1+2)./h1
	d0 = make([]float64, N+1)
	fac = -.5 * (alpha*alpha - beta*beta)
	for i := 0; i < N+1; i++ {
		val := h1[i]
		d0[i] = fac / (val * (val + 2.))
	}
	// Handle division by zero
	eps := 1.e-16
	if alpha+beta < 10*eps {
		d0[0] = 0.
	}

	// 1st upper diagonal
	d1 = make([]float64, N)
	for i := 0; i < N; i++ {
		ip1 = float64(i + 1)
		val := h1[i]
		d1[i] = 2. / (val + 2.)
		d1[i] *= math.Sqrt(ip1 * (ip1 + alpha + beta) * (ip1 + alpha) * (ip1 + beta) / ((val + 1.) * (val + 3.)))
	}

	JJ := mat.NewSymDense(N+1, nil)
	for i := 0; i < N+1; i++ {
		JJ.SetSym(i, i, d0[i])
		if i < N {
			JJ.SetSym(i, i+1, d1[i])
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		panic("eigenvalue decomposition failed")
	}
	X = eig.Values(nil)

	var VVr mat.Dense
	eig.VectorsTo(&VVr)
	W = make([]float64, N+1)
	g0 := gamma0(alpha, beta)
	for i := range W {
		v := VVr.At(0, i)
		W[i] = v * v * g0
	}
	return
}

// JacobiP evaluates the normalized Jacobi polynomial P_N^(alpha,beta) at r.
func JacobiP(r []float64, alpha, beta float64, N int) (p []float64) {
	var (
		Nc  = len(r)
		rg  = 1. / math.Sqrt(gamma0(alpha, beta))
		ab  = alpha + beta
		a1  = alpha + 1.
		b1  = beta + 1.
		ab1 = ab + 1.
	)
	pm1 := make([]float64, Nc)
	for i := range pm1 {
		pm1[i] = rg
	}
	if N == 0 {
		return pm1
	}

	rg1 := 1. / math.Sqrt(gamma1(alpha, beta))
	p = make([]float64, Nc)
	for i := range p {
		p[i] = rg1 * ((ab+2.0)*r[i]/2.0 + (alpha-beta)/2.0)
	}
	if N == 1 {
		return
	}

	aold := 2.0 * math.Sqrt(a1*b1/(ab+3.0)) / (ab + 2.0)
	for i := 0; i < N-1; i++ {
		ip1 := float64(i + 1)
		h1 := 2.0*ip1 + ab
		anew := 2.0 / (h1 + 2.0) * math.Sqrt((ip1+1)*(ip1+ab1)*(ip1+a1)*(ip1+b1)/(h1+1.0)/(h1+3.0))
		bnew := -(alpha*alpha - beta*beta) / h1 / (h1 + 2.0)
		next := make([]float64, Nc)
		for j := range next {
			next[j] = (-aold*pm1[j] + (r[j]-bnew)*p[j]) / anew
		}
		pm1, p = p, next
		aold = anew
	}
	return
}

func GradJacobiP(r []float64, alpha, beta float64, N int) (p []float64) {
	if N == 0 {
		p = make([]float64, len(r))
		return
	}
	p = JacobiP(r, alpha+1, beta+1, N-1)
	fN := float64(N)
	fac := math.Sqrt(fN * (fN + alpha + beta + 1))
	for i, val := range p {
		p[i] = val * fac
	}
	return
}

func Vandermonde1D(N int, R []float64) (V utils.Matrix) {
	V = utils.NewMatrix(len(R), N+1)
	for j := 0; j < N+1; j++ {
		for i, val := range JacobiP(R, 0, 0, j) {
			V.Set(i, j, val)
		}
	}
	return
}

func GradVandermonde1D(R []float64, N int) (Vr utils.Matrix) {
	Vr = utils.NewMatrix(len(R), N+1)
	for j := 0; j < N+1; j++ {
		for i, val := range GradJacobiP(R, 0, 0, j) {
			Vr.Set(i, j, val)
		}
	}
	return
}

func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	a1 := alpha + 1.
	b1 := beta + 1.
	return math.Gamma(a1) * math.Gamma(b1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

func gamma1(alpha, beta float64) float64 {
	ab := alpha + beta
	a1 := alpha + 1.
	b1 := beta + 1.
	return a1 * b1 * gamma0(alpha, beta) / (ab + 3.0)
}

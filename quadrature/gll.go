// Package quadrature provides Gauss-Lobatto-Legendre rules and Lagrange
// polynomial kernels used by both the horizontal spectral elements and the
// vertical finite elements.
package quadrature

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/stratus-model/stratus/model"
	"github.com/stratus-model/stratus/utils"
)

// JacobiGQ computes the N+1 point Gauss quadrature rule for the Jacobi
// polynomial family (alpha, beta) on [-1,1], via eigenvalue factorization of
// the symmetric tridiagonal Jacobi matrix.
func JacobiGQ(alpha, beta float64, N int) (X, W utils.Vector) {
	var (
		x, w       []float64
		fac        float64
		h1, d0, d1 []float64
		VVr        *mat.Dense
	)
	if N == 0 {
		x = []float64{-(alpha - beta) / (alpha + beta + 2.)}
		w = []float64{2.}
		return utils.NewVector(len(x), x), utils.NewVector(len(w), w)
	}

	h1 = make([]float64, N+1)
	for i := 0; i < N+1; i++ {
		h1[i] = 2*float64(i) + alpha + beta
	}

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

	var ip1 float64
	d1 = make([]float64, N)
	for i := 0; i < N; i++ {
		ip1 = float64(i + 1)
		val := h1[i]
		d1[i] = 2. / (val + 2.)
		d1[i] *= math.Sqrt(ip1 * (ip1 + alpha + beta) * (ip1 + alpha) * (ip1 + beta) / ((val + 1.) * (val + 3.)))
	}

	JJ := utils.NewSymTriDiagonal(d0, d1)

	var eig mat.EigenSym
	ok := eig.Factorize(JJ, true)
	if !ok {
		panic("eigenvalue decomposition failed")
	}
	x = eig.Values(x)
	X = utils.NewVector(N+1, x)

	VVr = mat.NewDense(len(x), len(x), nil)
	eig.VectorsTo(VVr)
	W = utils.NewVector(len(x), VVr.RawRowView(0)).POW(2).Scale(gamma0(alpha, beta))
	return X, W
}

// LobattoPoints returns the nOrder Gauss-Lobatto-Legendre points and weights
// on the interval [a, b]. Orders 2 through 8 are supported. The weights use
// the closed formula w_i = 2 / (N (N+1) P_N(x_i)^2), scaled so that the
// weights sum to the interval length.
func LobattoPoints(nOrder int, a, b float64) (X, W utils.Vector, err error) {
	if nOrder < 2 || nOrder > 8 {
		err = model.Errorf(model.ConfigurationError,
			"Gauss-Lobatto order %d out of supported range [2,8]", nOrder)
		return
	}

	N := nOrder - 1
	x := make([]float64, nOrder)
	x[0] = -1
	x[N] = 1
	if N > 1 {
		// Interior GLL points are the Gauss points of the (1,1) Jacobi family
		xint, _ := JacobiGQ(1, 1, N-2)
		for i := 1; i < N; i++ {
			x[i] = xint.AtVec(i - 1)
		}
	}

	w := make([]float64, nOrder)
	fN := float64(N)
	for i := 0; i < nOrder; i++ {
		p := legendre(N, x[i])
		w[i] = 2. / (fN * (fN + 1.) * p * p)
	}

	// Map to [a, b]
	half := 0.5 * (b - a)
	for i := 0; i < nOrder; i++ {
		x[i] = a + half*(x[i]+1.)
		w[i] *= half
	}
	X = utils.NewVector(nOrder, x)
	W = utils.NewVector(nOrder, w)
	return
}

// legendre evaluates the Legendre polynomial P_n at x by recurrence.
func legendre(n int, x float64) (p float64) {
	var (
		pm1 = 1.
		p0  = x
	)
	if n == 0 {
		return pm1
	}
	p = p0
	for k := 2; k <= n; k++ {
		fk := float64(k)
		p = ((2.*fk-1.)*x*p0 - (fk-1.)*pm1) / fk
		pm1, p0 = p0, p
	}
	return
}

// legendreDeriv evaluates dP_n/dx at x.
func legendreDeriv(n int, x float64) (dp float64) {
	if n == 0 {
		return 0
	}
	if math.Abs(x*x-1.) < 1.e-15 {
		// P'_n(1) = n(n+1)/2, P'_n(-1) = (-1)^(n-1) n(n+1)/2
		dp = float64(n) * float64(n+1) / 2.
		if x < 0 && n%2 == 0 {
			dp = -dp
		}
		return
	}
	dp = float64(n) / (x*x - 1.) * (x*legendre(n, x) - legendre(n-1, x))
	return
}

func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	a1 := alpha + 1.
	b1 := beta + 1.
	return math.Gamma(a1) * math.Gamma(b1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

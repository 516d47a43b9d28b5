package quadrature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLobattoPoints(t *testing.T) {
	// Order 4 on [-1,1]: interior points at +-1/sqrt(5)
	X, W, err := LobattoPoints(4, -1, 1)
	require.NoError(t, err)
	assert.InDelta(t, -1, X.AtVec(0), 1.e-14)
	assert.InDelta(t, -1/math.Sqrt(5), X.AtVec(1), 1.e-12)
	assert.InDelta(t, 1/math.Sqrt(5), X.AtVec(2), 1.e-12)
	assert.InDelta(t, 1, X.AtVec(3), 1.e-14)
	assert.InDelta(t, 1./6., W.AtVec(0), 1.e-12)
	assert.InDelta(t, 5./6., W.AtVec(1), 1.e-12)

	// Weights sum to interval length for all supported orders and intervals
	for order := 2; order <= 8; order++ {
		X, W, err = LobattoPoints(order, 0, 1)
		require.NoError(t, err)
		assert.InDelta(t, 1., W.Copy().Sum(), 1.e-13, "order %d", order)
		assert.Equal(t, 0., X.AtVec(0))
		assert.Equal(t, 1., X.AtVec(order-1))
	}

	_, _, err = LobattoPoints(9, 0, 1)
	assert.Error(t, err)
}

func TestLobattoQuadratureExactness(t *testing.T) {
	// An n-point GLL rule is exact for polynomials of degree 2n-3
	X, W, err := LobattoPoints(5, 0, 2)
	require.NoError(t, err)
	var integral float64
	for i := 0; i < X.Len(); i++ {
		x := X.AtVec(i)
		integral += W.AtVec(i) * (x*x*x*x*x*x*x + 2*x*x - 1)
	}
	// exact: 2^8/8 + 2*8/3 - 2
	exact := 32. + 16./3. - 2.
	assert.InDelta(t, exact, integral, 1.e-11)
}

func TestLagrangeCoeffs(t *testing.T) {
	points := []float64{0, 0.25, 0.6, 1}

	// Partition of unity at arbitrary evaluation points
	for _, x := range []float64{-0.2, 0, 0.1, 0.25, 0.5, 0.99, 1.3} {
		c := LagrangeCoeffs(points, x)
		var sum float64
		for _, v := range c {
			sum += v
		}
		assert.InDelta(t, 1., sum, 1.e-12, "x=%v", x)
	}

	// Indicator property on the sample points
	c := LagrangeCoeffs(points, 0.6)
	assert.Equal(t, []float64{0, 0, 1, 0}, c)

	// Exact reproduction of a cubic
	f := func(x float64) float64 { return 2*x*x*x - x*x + 3*x - 5 }
	x := 0.37
	c = LagrangeCoeffs(points, x)
	var interp float64
	for i, p := range points {
		interp += c[i] * f(p)
	}
	assert.InDelta(t, f(x), interp, 1.e-12)
}

func TestLagrangeDerivCoeffs(t *testing.T) {
	points := []float64{0, 0.3, 0.7, 1}

	// Derivative coefficients sum to zero
	for _, x := range []float64{0, 0.15, 0.3, 0.5, 1} {
		c := LagrangeDerivCoeffs(points, x)
		var sum float64
		for _, v := range c {
			sum += v
		}
		assert.InDelta(t, 0., sum, 1.e-12, "x=%v", x)
	}

	// Exact derivative of a cubic, including at a sample point
	f := func(x float64) float64 { return x*x*x - 2*x*x + x }
	df := func(x float64) float64 { return 3*x*x - 4*x + 1 }
	for _, x := range []float64{0.3, 0.55} {
		c := LagrangeDerivCoeffs(points, x)
		var d float64
		for i, p := range points {
			d += c[i] * f(p)
		}
		assert.InDelta(t, df(x), d, 1.e-11)
	}
}

func TestFluxCorrectionDerivs(t *testing.T) {
	// Integrate g' over [0,1] with a fine trapezoid rule; g(1)-g(0) = 1
	n := 2001
	pts := make([]float64, n)
	for i := range pts {
		pts[i] = float64(i) / float64(n-1)
	}
	for order := 2; order <= 5; order++ {
		d := FluxCorrectionDerivs(FluxCorrectionRadau, order, pts)
		var integral float64
		for i := 0; i < n-1; i++ {
			integral += 0.5 * (d[i] + d[i+1]) / float64(n-1)
		}
		assert.InDelta(t, 1., integral, 1.e-5, "order %d", order)
	}
}

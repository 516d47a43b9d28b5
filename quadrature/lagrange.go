package quadrature

import "math"

// LagrangeCoeffs fills the Lagrange basis coefficients L_i(x) for the given
// sample points, evaluated by the barycentric formula. The coefficients sum
// to one for any x.
func LagrangeCoeffs(points []float64, x float64) (coeffs []float64) {
	var (
		n = len(points)
	)
	coeffs = make([]float64, n)

	// On a sample point the basis is the indicator
	for i, xi := range points {
		if x == xi {
			coeffs[i] = 1
			return
		}
	}

	w := barycentricWeights(points)
	var sum float64
	for i := 0; i < n; i++ {
		coeffs[i] = w[i] / (x - points[i])
		sum += coeffs[i]
	}
	for i := 0; i < n; i++ {
		coeffs[i] /= sum
	}
	return
}

// LagrangeDerivCoeffs fills the derivative coefficients L'_i(x). The direct
// product form is used so that x may coincide with a sample point. The
// coefficients sum to zero for any x.
func LagrangeDerivCoeffs(points []float64, x float64) (coeffs []float64) {
	var (
		n = len(points)
	)
	coeffs = make([]float64, n)
	for j := 0; j < n; j++ {
		var sum float64
		for m := 0; m < n; m++ {
			if m == j {
				continue
			}
			prod := 1. / (points[j] - points[m])
			for k := 0; k < n; k++ {
				if k == j || k == m {
					continue
				}
				prod *= (x - points[k]) / (points[j] - points[k])
			}
			sum += prod
		}
		coeffs[j] = sum
	}
	return
}

func barycentricWeights(points []float64) (w []float64) {
	var (
		n = len(points)
	)
	w = make([]float64, n)
	for j := 0; j < n; j++ {
		w[j] = 1
		for k := 0; k < n; k++ {
			if k == j {
				continue
			}
			w[j] /= points[j] - points[k]
		}
		if math.IsInf(w[j], 0) {
			panic("coincident interpolation points")
		}
	}
	return
}

package quadrature

// FluxCorrectionType selects the family of flux correction functions. Only
// the right-Radau family (type 2) is used by the column operators.
type FluxCorrectionType int

const (
	FluxCorrectionRadau FluxCorrectionType = 2
)

// FluxCorrectionDerivs evaluates the derivative of the flux correction
// function g at the given points in [0,1], where g satisfies g(0) = 0 and
// g(1) = 1 so that the correction attaches to the edge the coordinate
// approaches. For the Radau family of order n, g is the reflected right
// Radau polynomial
//
//	g(s) = (-1)^p / 2 * (P_p - P_{p-1})(1 - 2s),  p = n - 1.
func FluxCorrectionDerivs(fcType FluxCorrectionType, nOrder int, points []float64) (derivs []float64) {
	if fcType != FluxCorrectionRadau {
		panic("unsupported flux correction type")
	}
	var (
		p    = nOrder - 1
		sign = -1.
	)
	if p%2 == 1 {
		sign = 1.
	}
	derivs = make([]float64, len(points))
	for i, s := range points {
		x := 1. - 2.*s
		// The -2 chain rule factor from the reflection is folded into sign
		derivs[i] = sign * (legendreDeriv(p, x) - legendreDeriv(p-1, x))
	}
	return
}

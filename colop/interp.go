package colop

import (
	"math"

	"github.com/stratus-model/stratus/model"
	"github.com/stratus-model/stratus/quadrature"
)

// NewInterp builds an interpolation operator from the given source locations
// (levels or interfaces) onto the output coordinates retaOut. With
// zeroBoundaries set, rows whose output coincides with the global bottom
// (REta = 0) or top (REta = 1) are left identically zero.
func NewInterp(
	source Location,
	nVerticalOrder int,
	retaNode, retaREdge, retaOut []float64,
	zeroBoundaries bool,
) (op *Operator, err error) {
	var (
		nRElementsIn  = len(retaNode)
		nRElementsOut = len(retaOut)
	)
	if err = verifyColumn(nRElementsIn, len(retaREdge), nVerticalOrder); err != nil {
		return
	}
	nFiniteElementsIn := nRElementsIn / nVerticalOrder

	if source == Interfaces {
		op = newOperator(nRElementsIn+1, nRElementsOut)
	} else {
		op = newOperator(nRElementsIn, nRElementsOut)
	}

	lBegin := 0
	lEnd := nRElementsOut
	if zeroBoundaries && math.Abs(retaOut[0]) < paramEpsilon {
		lBegin = 1
	}
	if zeroBoundaries && math.Abs(retaOut[nRElementsOut-1]-1.0) < paramEpsilon {
		lEnd = nRElementsOut - 1
	}

	for l := lBegin; l < lEnd; l++ {
		a, onREdge := locateElement(retaREdge, nVerticalOrder, nFiniteElementsIn, retaOut[l])

		if source == Interfaces {
			// Continuous basis: an edge output is an interface sample itself
			if onREdge {
				op.Coeff.Set(l, (a+1)*nVerticalOrder, 1.0)
				op.Begin[l] = (a + 1) * nVerticalOrder
				op.End[l] = (a+1)*nVerticalOrder + 1
			} else {
				setCoeffs(op, l, a*nVerticalOrder,
					quadrature.LagrangeCoeffs(
						retaREdge[a*nVerticalOrder:(a+1)*nVerticalOrder+1],
						retaOut[l]))
				op.Begin[l] = a * nVerticalOrder
				op.End[l] = (a+1)*nVerticalOrder + 1
			}
			continue
		}

		// Discontinuous basis
		switch {
		case nVerticalOrder == 1 && l == 0:
			// Override the default O(dx) interpolant at the bottom
			setCoeffs(op, l, a*nVerticalOrder,
				quadrature.LagrangeCoeffs(
					retaNode[a*nVerticalOrder:a*nVerticalOrder+2],
					retaOut[l]))
			op.Begin[l] = a * nVerticalOrder
			op.End[l] = (a + 2) * nVerticalOrder

		case nVerticalOrder == 1 && l == nRElementsOut-1:
			setCoeffs(op, l, (a-1)*nVerticalOrder,
				quadrature.LagrangeCoeffs(
					retaNode[(a-1)*nVerticalOrder:(a-1)*nVerticalOrder+2],
					retaOut[l]))
			op.Begin[l] = (a - 1) * nVerticalOrder
			op.End[l] = (a + 1) * nVerticalOrder

		default:
			setCoeffs(op, l, a*nVerticalOrder,
				quadrature.LagrangeCoeffs(
					retaNode[a*nVerticalOrder:(a+1)*nVerticalOrder],
					retaOut[l]))
			op.Begin[l] = a * nVerticalOrder
			op.End[l] = (a + 1) * nVerticalOrder
		}

		// An output on an interior finite element edge blends the left and
		// right one-sided interpolants, weighted by the opposing error.
		if onREdge {
			wL, wR := errorWeights(retaREdge, nVerticalOrder, a)

			right := quadrature.LagrangeCoeffs(
				retaNode[(a+1)*nVerticalOrder:(a+2)*nVerticalOrder],
				retaOut[l])

			for k := op.Begin[l]; k < op.End[l]; k++ {
				op.Coeff.Set(l, k, op.Coeff.At(l, k)*wL)
			}
			newEnd := op.End[l] + nVerticalOrder
			for k, c := range right {
				op.Coeff.Set(l, op.End[l]+k, c*wR)
			}
			op.End[l] = newEnd
		}
	}
	return
}

func setCoeffs(op *Operator, l, offset int, coeffs []float64) {
	for k, c := range coeffs {
		op.Coeff.Set(l, offset+k, c)
	}
}

func verifyColumn(nRElementsIn, nREdge, nVerticalOrder int) error {
	if nRElementsIn == 0 {
		return model.Errorf(model.ConfigurationError,
			"at least one row required for the level coordinate")
	}
	if nREdge != nRElementsIn+1 {
		return model.Errorf(model.ConfigurationError,
			"level / interface coordinate mismatch: %d levels, %d interfaces",
			nRElementsIn, nREdge)
	}
	if nRElementsIn%nVerticalOrder != 0 {
		return model.Errorf(model.ConfigurationError,
			"column levels %d not divisible by vertical order %d",
			nRElementsIn, nVerticalOrder)
	}
	return nil
}

package colop

import (
	"github.com/stratus-model/stratus/model"
	"github.com/stratus-model/stratus/quadrature"
)

// NewDiffFluxCorrection builds the first derivative operator on the
// discontinuous level basis by the flux correction method: the local strong
// derivative within each element plus correction terms proportional to the
// jump between the edge-extrapolated value and the tangent-weighted edge
// average, shaped by the derivative of the right-Radau correction function.
// The result is a globally continuous first derivative.
func NewDiffFluxCorrection(
	nVerticalOrder int,
	retaNode, retaREdge, retaOut []float64,
	zeroBoundaries bool,
) (op *Operator, err error) {
	var (
		nRElementsIn  = len(retaNode)
		nRElementsOut = len(retaOut)
		p             = nVerticalOrder
	)
	if err = verifyColumn(nRElementsIn, len(retaREdge), p); err != nil {
		return
	}
	nFiniteElements := nRElementsIn / p

	op = newOperator(nRElementsIn, nRElementsOut)

	for l := 0; l < nRElementsOut; l++ {
		a, onREdge := locateElement(retaREdge, p, nFiniteElements, retaOut[l])

		if retaOut[l] < retaREdge[0] || retaOut[l] > retaREdge[nRElementsIn] {
			err = model.Errorf(model.MeshError,
				"flux correction output coordinate %v out of range", retaOut[l])
			return
		}

		deltaREta := retaREdge[(a+1)*p] - retaREdge[a*p]

		// Local strong derivative within the containing element
		setCoeffs(op, l, a*p,
			quadrature.LagrangeDerivCoeffs(retaNode[a*p:(a+1)*p], retaOut[l]))

		if onREdge {
			setCoeffs(op, l, (a+1)*p,
				quadrature.LagrangeDerivCoeffs(retaNode[(a+1)*p:(a+2)*p], retaOut[l]))
			for k := 0; k < nRElementsIn; k++ {
				op.Coeff.Set(l, k, op.Coeff.At(l, k)*0.5*deltaREta)
			}
		} else {
			for k := 0; k < nRElementsIn; k++ {
				op.Coeff.Set(l, k, op.Coeff.At(l, k)*deltaREta)
			}
		}

		// Correction function derivatives at the output point, measured from
		// the left (gR) and right (gL) edges of the containing element
		sR := (retaOut[l] - retaREdge[a*p]) / deltaREta
		derivR := quadrature.FluxCorrectionDerivs(
			quadrature.FluxCorrectionRadau, p+1, []float64{sR})[0]
		derivL := -quadrature.FluxCorrectionDerivs(
			quadrature.FluxCorrectionRadau, p+1, []float64{1.0 - sR})[0]

		// Interpolants of each neighboring element onto the shared edges
		coeffLR := quadrature.LagrangeCoeffs(retaNode[a*p:(a+1)*p], retaREdge[a*p])
		coeffRL := quadrature.LagrangeCoeffs(retaNode[a*p:(a+1)*p], retaREdge[(a+1)*p])

		var coeffLL, coeffRR []float64
		if a != 0 {
			coeffLL = quadrature.LagrangeCoeffs(retaNode[(a-1)*p:a*p], retaREdge[a*p])
		}
		if a != nFiniteElements-1 {
			coeffRR = quadrature.LagrangeCoeffs(retaNode[(a+1)*p:(a+2)*p], retaREdge[(a+1)*p])
		}

		// Left edge correction
		if a != 0 {
			if !onREdge {
				for k := 0; k < p; k++ {
					ix := (a-1)*p + k
					op.Coeff.Set(l, ix, op.Coeff.At(l, ix)+0.5*derivL*coeffLL[k])
				}
			}
			for k := 0; k < p; k++ {
				ix := a*p + k
				op.Coeff.Set(l, ix, op.Coeff.At(l, ix)-0.5*derivL*coeffLR[k])
			}
		} else if !zeroBoundaries && nFiniteElements != 1 {
			for k := 0; k < p; k++ {
				ixA := a*p + k
				ixB := (a+1)*p + k
				op.Coeff.Set(l, ixA, op.Coeff.At(l, ixA)+0.5*derivL*coeffRL[k])
				op.Coeff.Set(l, ixB, op.Coeff.At(l, ixB)-0.5*derivL*coeffRR[k])
			}
		}

		// Right edge correction
		if a != nFiniteElements-1 {
			for k := 0; k < p; k++ {
				ix := (a+1)*p + k
				op.Coeff.Set(l, ix, op.Coeff.At(l, ix)+0.5*derivR*coeffRR[k])
			}
			for k := 0; k < p; k++ {
				ix := a*p + k
				op.Coeff.Set(l, ix, op.Coeff.At(l, ix)-0.5*derivR*coeffRL[k])
			}
		} else if !zeroBoundaries && nFiniteElements != 1 {
			for k := 0; k < p; k++ {
				ixA := a*p + k
				ixB := (a-1)*p + k
				op.Coeff.Set(l, ixA, op.Coeff.At(l, ixA)+0.5*derivR*coeffLR[k])
				op.Coeff.Set(l, ixB, op.Coeff.At(l, ixB)-0.5*derivR*coeffLL[k])
			}
		}

		for k := 0; k < nRElementsIn; k++ {
			op.Coeff.Set(l, k, op.Coeff.At(l, k)/deltaREta)
		}

		if a != 0 {
			op.Begin[l] = (a - 1) * p
		} else {
			op.Begin[l] = a * p
		}
		if a != nFiniteElements-1 {
			op.End[l] = (a + 2) * p
		} else {
			op.End[l] = (a + 1) * p
		}
	}
	return
}

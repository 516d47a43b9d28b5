package colop

import (
	"github.com/stratus-model/stratus/model"
	"github.com/stratus-model/stratus/quadrature"
)

// NewDiff builds the first derivative operator by the interface method: the
// derivative is taken through the single polynomial spanning the p+1
// interface samples of the containing finite element, with error-weighted
// blending of the one-sided derivatives at interior element edges. When the
// source is levels, the result is composed with the levels-to-interfaces
// interpolation operator.
func NewDiff(
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
	nFiniteElements := nRElementsIn / nVerticalOrder

	op = newOperator(nRElementsIn+1, nRElementsOut)

	for l := 0; l < nRElementsOut; l++ {
		a, onREdge := locateElement(retaREdge, nVerticalOrder, nFiniteElements, retaOut[l])

		setCoeffs(op, l, a*nVerticalOrder,
			quadrature.LagrangeDerivCoeffs(
				retaREdge[a*nVerticalOrder:(a+1)*nVerticalOrder+1],
				retaOut[l]))

		if !onREdge {
			op.Begin[l] = a * nVerticalOrder
			op.End[l] = (a+1)*nVerticalOrder + 1
			continue
		}

		// Blend one-sided derivatives across the interior edge
		wL, wR := errorWeights(retaREdge, nVerticalOrder, a)

		right := quadrature.LagrangeDerivCoeffs(
			retaREdge[(a+1)*nVerticalOrder:(a+2)*nVerticalOrder+1],
			retaOut[l])

		for k := 0; k <= nVerticalOrder; k++ {
			ix := a*nVerticalOrder + k
			op.Coeff.Set(l, ix, op.Coeff.At(l, ix)*wL)
		}
		for k := 0; k <= nVerticalOrder; k++ {
			ix := (a+1)*nVerticalOrder + k
			op.Coeff.Set(l, ix, op.Coeff.At(l, ix)+wR*right[k])
		}

		op.Begin[l] = a * nVerticalOrder
		op.End[l] = (a+2)*nVerticalOrder + 1
	}

	if source == Levels {
		var opInterp *Operator
		opInterp, err = NewInterp(
			Levels, nVerticalOrder, retaNode, retaREdge, retaREdge, zeroBoundaries)
		if err != nil {
			return
		}
		op.ComposeWith(opInterp)
	}
	return
}

// NewDiffGLLNodes builds the first derivative operator on a continuous basis
// whose nodes are shared GLL points, so that element a spans nodes
// [a(p-1), (a+1)(p-1)], that is p nodes.
func NewDiffGLLNodes(
	nVerticalOrder int,
	retaNode, retaOut []float64,
) (op *Operator, err error) {
	var (
		nRElementsIn  = len(retaNode)
		nRElementsOut = len(retaOut)
		pm1           = nVerticalOrder - 1
	)
	if nRElementsIn == 0 {
		err = model.Errorf(model.ConfigurationError,
			"at least one row required for the node coordinate")
		return
	}
	if pm1 < 1 {
		err = model.Errorf(model.ConfigurationError,
			"continuous GLL derivative requires vertical order >= 2, have %d",
			nVerticalOrder)
		return
	}
	if (nRElementsIn-1)%pm1 != 0 {
		err = model.Errorf(model.ConfigurationError,
			"node count %d incompatible with vertical order %d",
			nRElementsIn, nVerticalOrder)
		return
	}
	nFiniteElements := (nRElementsIn - 1) / pm1

	op = newOperator(nRElementsIn, nRElementsOut)

	for l := 0; l < nRElementsOut; l++ {
		a, onREdge := locateElement(retaNode, pm1, nFiniteElements, retaOut[l])

		setCoeffs(op, l, a*pm1,
			quadrature.LagrangeDerivCoeffs(
				retaNode[a*pm1:a*pm1+nVerticalOrder],
				retaOut[l]))

		if !onREdge {
			op.Begin[l] = a * pm1
			op.End[l] = a*pm1 + nVerticalOrder
			continue
		}

		wL, wR := errorWeights(retaNode, pm1, a)

		right := quadrature.LagrangeDerivCoeffs(
			retaNode[(a+1)*pm1:(a+1)*pm1+nVerticalOrder],
			retaOut[l])

		for k := 0; k < nVerticalOrder; k++ {
			ix := a*pm1 + k
			op.Coeff.Set(l, ix, op.Coeff.At(l, ix)*wL)
		}
		for k := 0; k < nVerticalOrder; k++ {
			ix := (a+1)*pm1 + k
			op.Coeff.Set(l, ix, op.Coeff.At(l, ix)+wR*right[k])
		}

		op.Begin[l] = a * pm1
		op.End[l] = (a+1)*pm1 + nVerticalOrder
	}
	return
}

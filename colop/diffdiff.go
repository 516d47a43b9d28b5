package colop

import (
	"github.com/stratus-model/stratus/model"
	"github.com/stratus-model/stratus/quadrature"
)

// NewDiffDiffGLLNodes builds the second derivative operator on a continuous
// GLL node basis from the elementwise identity D2 = -M^-1 (D^T M D), summing
// element contributions with doubled mass weights on shared contact nodes
// and one-sided flux terms at the global top and bottom.
func NewDiffDiffGLLNodes(
	nVerticalOrder int,
	retaNode []float64,
) (op *Operator, err error) {
	var (
		nRElementsIn = len(retaNode)
		pm1          = nVerticalOrder - 1
	)
	if nRElementsIn == 0 {
		err = model.Errorf(model.ConfigurationError,
			"at least one row required for the node coordinate")
		return
	}
	if pm1 < 1 {
		err = model.Errorf(model.ConfigurationError,
			"second derivative requires vertical order >= 2, have %d",
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

	op = newOperator(nRElementsIn, nRElementsIn)

	localDiff := make([][]float64, nVerticalOrder)

	for a := 0; a < nFiniteElements; a++ {
		gll, w, errQ := quadrature.LobattoPoints(
			nVerticalOrder, retaNode[a*pm1], retaNode[(a+1)*pm1])
		if errQ != nil {
			err = errQ
			return
		}

		for i := 0; i < nVerticalOrder; i++ {
			localDiff[i] = quadrature.LagrangeDerivCoeffs(
				retaNode[a*pm1:a*pm1+nVerticalOrder], gll.AtVec(i))
		}

		for j := 0; j < nVerticalOrder; j++ {
			jx := j + a*pm1

			wLocal := w.AtVec(j)
			if j == 0 && a != 0 {
				wLocal *= 2.0
			}
			if j == nVerticalOrder-1 && a != nFiniteElements-1 {
				wLocal *= 2.0
			}

			for i := 0; i < nVerticalOrder; i++ {
				ix := i + a*pm1
				var sum float64
				for s := 0; s < nVerticalOrder; s++ {
					sum -= localDiff[s][j] * localDiff[s][i] * w.AtVec(s) / wLocal
				}
				op.Coeff.Set(jx, ix, op.Coeff.At(jx, ix)+sum)
			}
		}

		// One-sided flux terms at the global boundaries
		if a == 0 {
			for i := 0; i < nVerticalOrder; i++ {
				op.Coeff.Set(0, i, op.Coeff.At(0, i)-localDiff[0][i]/w.AtVec(0))
			}
		}
		if a == nFiniteElements-1 {
			jx := nRElementsIn - 1
			for i := 0; i < nVerticalOrder; i++ {
				ix := a*pm1 + i
				op.Coeff.Set(jx, ix,
					op.Coeff.At(jx, ix)+localDiff[nVerticalOrder-1][i]/w.AtVec(nVerticalOrder-1))
			}
		}
	}

	// Band supports cover the elements touching each node
	for jx := 0; jx < nRElementsIn; jx++ {
		a := jx / pm1
		if a >= nFiniteElements {
			a = nFiniteElements - 1
		}
		begin := a * pm1
		end := (a+1)*pm1 + 1
		if jx%pm1 == 0 && a > 0 {
			begin = (a - 1) * pm1
		}
		op.Begin[jx] = begin
		op.End[jx] = end
	}
	return
}

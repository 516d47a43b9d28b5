// Package colop builds the banded linear operators that interpolate and
// differentiate columns of data between model levels (a discontinuous nodal
// basis) and model interfaces (a continuous edge basis).
package colop

import (
	"github.com/stratus-model/stratus/utils"
)

// Location identifies the vertical placement of a column of values.
type Location uint8

const (
	Levels Location = iota
	Interfaces
)

func (l Location) String() string {
	if l == Interfaces {
		return "interfaces"
	}
	return "levels"
}

const paramEpsilon = 1.0e-12

// Operator is a banded column operator: row l maps input entries
// [Begin[l], End[l]) onto output l through the coefficients Coeff.
// Operators are immutable once constructed.
type Operator struct {
	Coeff      utils.Matrix
	Begin, End utils.Index
	nIn, nOut  int
}

func newOperator(nIn, nOut int) (op *Operator) {
	op = &Operator{
		Coeff: utils.NewMatrix(nOut, nIn),
		Begin: utils.NewIndex(nOut),
		End:   utils.NewIndex(nOut),
		nIn:   nIn,
		nOut:  nOut,
	}
	return
}

func (op *Operator) Dims() (nOut, nIn int) { return op.nOut, op.nIn }

// Apply maps an input column onto a freshly allocated output column.
func (op *Operator) Apply(in utils.Vector) (out utils.Vector) {
	out = utils.NewVector(op.nOut)
	op.ApplyTo(in.DataP(), out.DataP())
	return
}

// ApplyTo maps in onto out using only the banded support of each row.
func (op *Operator) ApplyTo(in, out []float64) {
	for l := 0; l < op.nOut; l++ {
		var sum float64
		for k := op.Begin[l]; k < op.End[l]; k++ {
			sum += op.Coeff.At(l, k) * in[k]
		}
		out[l] = sum
	}
}

// ComposeWith replaces op with the composition op * inner, so that applying
// the result is equivalent to applying inner first. Row supports become the
// union of the inner supports spanned by each row.
func (op *Operator) ComposeWith(inner *Operator) {
	var (
		nOutInner, nInInner = inner.Dims()
	)
	if op.nIn != nOutInner {
		panic("operator composition dimension mismatch")
	}
	coeff := utils.NewMatrix(op.nOut, nInInner)
	begin := utils.NewIndex(op.nOut)
	end := utils.NewIndex(op.nOut)

	for l := 0; l < op.nOut; l++ {
		begin[l] = nInInner
		end[l] = 0
		for k := op.Begin[l]; k < op.End[l]; k++ {
			c := op.Coeff.At(l, k)
			if c == 0 {
				continue
			}
			for m := inner.Begin[k]; m < inner.End[k]; m++ {
				coeff.Set(l, m, coeff.At(l, m)+c*inner.Coeff.At(k, m))
			}
			if inner.Begin[k] < begin[l] {
				begin[l] = inner.Begin[k]
			}
			if inner.End[k] > end[l] {
				end[l] = inner.End[k]
			}
		}
		if begin[l] > end[l] {
			begin[l], end[l] = 0, 0
		}
	}

	op.Coeff = coeff
	op.Begin = begin
	op.End = end
	op.nIn = nInInner
}

// Bandwidth returns the widest row support.
func (op *Operator) Bandwidth() (bw int) {
	for l := 0; l < op.nOut; l++ {
		if w := op.End[l] - op.Begin[l]; w > bw {
			bw = w
		}
	}
	return
}

// locateElement finds the finite element a containing retaOut, and whether
// the point sits on an interior finite element edge (within tolerance).
func locateElement(retaREdge []float64, nOrder, nFiniteElements int, retaOut float64) (a int, onREdge bool) {
	for a = 0; a < nFiniteElements-1; a++ {
		next := retaREdge[(a+1)*nOrder] - paramEpsilon
		if retaOut < next {
			break
		}
		if retaOut < next+2.0*paramEpsilon {
			onREdge = true
			break
		}
	}
	return
}

// errorWeights returns the one-sided interpolant weights at an interior
// finite element edge, weighting each side by the other side's error
// estimate dREta^nOrder.
func errorWeights(retaREdge []float64, nOrder, a int) (wL, wR float64) {
	var (
		deltaL = retaREdge[(a+1)*nOrder] - retaREdge[a*nOrder]
		deltaR = retaREdge[(a+2)*nOrder] - retaREdge[(a+1)*nOrder]
	)
	errL := utils.POW(deltaL, nOrder)
	errR := utils.POW(deltaR, nOrder)
	wL = errR / (errL + errR)
	wR = errL / (errL + errR)
	return
}

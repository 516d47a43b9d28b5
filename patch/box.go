package patch

import (
	"github.com/stratus-model/stratus/model"
	"github.com/stratus-model/stratus/quadrature"
)

// Box is the index space of one patch: a rectangle of spectral elements with
// a halo ring of whole elements on every side. Node indices run over
// (elements + 2 halo) * order entries per direction; the interior occupies
// [AInteriorBegin, AInteriorEnd) x [BInteriorBegin, BInteriorEnd).
type Box struct {
	Order int // GLL nodes per element edge
	Halo  int // halo width in elements

	// Interior element ranges in global element indices
	AElemBegin, AElemEnd int
	BElemBegin, BElemEnd int

	// Element widths and domain origin
	DeltaA, DeltaB float64
	OriginA, OriginB float64

	// Node and element edge coordinates, including halos
	aNodes, bNodes []float64
	aEdges, bEdges []float64
}

// NewBox builds the box for the element range [aBegin,aEnd) x [bBegin,bEnd)
// on a domain whose first element corner sits at (originA, originB).
func NewBox(
	order, halo int,
	aBegin, aEnd, bBegin, bEnd int,
	originA, originB, deltaA, deltaB float64,
) (b *Box, err error) {
	if order < 1 || halo < 1 {
		err = model.Errorf(model.ConfigurationError,
			"invalid patch box: order %d, halo %d", order, halo)
		return
	}
	if aEnd <= aBegin || bEnd <= bBegin {
		err = model.Errorf(model.ConfigurationError,
			"empty patch box element range [%d,%d)x[%d,%d)",
			aBegin, aEnd, bBegin, bEnd)
		return
	}
	b = &Box{
		Order:      order,
		Halo:       halo,
		AElemBegin: aBegin,
		AElemEnd:   aEnd,
		BElemBegin: bBegin,
		BElemEnd:   bEnd,
		DeltaA:     deltaA,
		DeltaB:     deltaB,
		OriginA:    originA,
		OriginB:    originB,
	}

	// Reference GLL offsets within one element
	gll, _, errQ := quadrature.LobattoPoints(order, 0, 1)
	if errQ != nil && order > 1 {
		err = errQ
		return
	}

	fill := func(elemBegin, nElem int, origin, delta float64) (nodes, edges []float64) {
		total := nElem + 2*halo
		nodes = make([]float64, total*order)
		edges = make([]float64, total+1)
		for e := 0; e < total; e++ {
			x0 := origin + float64(elemBegin-halo+e)*delta
			edges[e] = x0
			for i := 0; i < order; i++ {
				var xi float64
				if order == 1 {
					xi = 0.5
				} else {
					xi = gll.AtVec(i)
				}
				nodes[e*order+i] = x0 + xi*delta
			}
		}
		edges[total] = origin + float64(elemBegin-halo+total)*delta
		return
	}

	b.aNodes, b.aEdges = fill(aBegin, aEnd-aBegin, originA, deltaA)
	b.bNodes, b.bEdges = fill(bBegin, bEnd-bBegin, originB, deltaB)
	return
}

func (b *Box) ElementCountA() int { return b.AElemEnd - b.AElemBegin }
func (b *Box) ElementCountB() int { return b.BElemEnd - b.BElemBegin }

func (b *Box) ATotalWidth() int { return (b.ElementCountA() + 2*b.Halo) * b.Order }
func (b *Box) BTotalWidth() int { return (b.ElementCountB() + 2*b.Halo) * b.Order }

func (b *Box) AInteriorBegin() int { return b.Halo * b.Order }
func (b *Box) AInteriorEnd() int   { return b.AInteriorBegin() + b.ElementCountA()*b.Order }
func (b *Box) BInteriorBegin() int { return b.Halo * b.Order }
func (b *Box) BInteriorEnd() int   { return b.BInteriorBegin() + b.ElementCountB()*b.Order }

func (b *Box) ANode(i int) float64 { return b.aNodes[i] }
func (b *Box) BNode(j int) float64 { return b.bNodes[j] }

// AEdge returns the element edge coordinate left of local element e.
func (b *Box) AEdge(e int) float64 { return b.aEdges[e] }
func (b *Box) BEdge(e int) float64 { return b.bEdges[e] }

// IsInterior reports whether node (i, j) lies in the patch interior.
func (b *Box) IsInterior(i, j int) bool {
	return i >= b.AInteriorBegin() && i < b.AInteriorEnd() &&
		j >= b.BInteriorBegin() && j < b.BInteriorEnd()
}

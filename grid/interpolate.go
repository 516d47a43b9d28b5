package grid

import (
	"github.com/stratus-model/stratus/model"
	"github.com/stratus-model/stratus/quadrature"
	"github.com/stratus-model/stratus/utils"
)

// InterpDataKind selects which per-patch data InterpolateData samples.
type InterpDataKind uint8

const (
	InterpState InterpDataKind = iota
	InterpStateREdge
	InterpTopography
	InterpVorticity
	InterpDivergence
)

// InterpolateData evaluates patch data at arbitrary (alpha, beta) points by
// elementwise Lagrange interpolation over the GLL nodes. Points outside the
// patch domain are rejected. With subtractRef set, the reference state is
// removed from sampled state values. The result is indexed
// (component, level, point).
func (p *Patch) InterpolateData(
	alpha, beta []float64,
	kind InterpDataKind,
	slotIx int,
	subtractRef bool,
) (out []utils.Matrix, err error) {
	const eps = 1.0e-10

	if len(alpha) != len(beta) {
		err = model.Errorf(model.MeshError,
			"point vectors must have equal length: %d vs %d", len(alpha), len(beta))
		return
	}

	var (
		g     = p.grid
		order = g.Cfg.HorizontalOrder
		box   = p.Box
	)

	// Resolve the sampled fields
	var fields []utils.Matrix
	var refs []utils.Matrix
	switch kind {
	case InterpState:
		fields = p.Slots[slotIx].Node
		refs = p.RefNode
	case InterpStateREdge:
		fields = p.Slots[slotIx].REdge
		refs = p.RefREdge
	case InterpTopography:
		fields = []utils.Matrix{p.Topography.ToMatrix().Transpose()}
	case InterpVorticity:
		fields = []utils.Matrix{p.Vorticity}
	case InterpDivergence:
		fields = []utils.Matrix{p.Divergence}
	default:
		err = model.Errorf(model.MeshError, "invalid interpolation data kind %d", kind)
		return
	}

	nRows, _ := fields[0].Dims()
	out = make([]utils.Matrix, len(fields))
	for c := range out {
		out[c] = utils.NewMatrix(nRows, len(alpha))
	}

	for n := range alpha {
		// Verify the point lies within the patch domain
		aMin := box.AEdge(box.Halo)
		aMax := box.AEdge(box.Halo + box.ElementCountA())
		bMin := box.BEdge(box.Halo)
		bMax := box.BEdge(box.Halo + box.ElementCountB())
		if alpha[n] < aMin-eps || alpha[n] > aMax+eps ||
			beta[n] < bMin-eps || beta[n] > bMax+eps {
			err = model.Errorf(model.MeshError,
				"interpolation point (%v, %v) outside patch domain", alpha[n], beta[n])
			return
		}

		// Containing element, clamped into the patch
		iA := int((alpha[n] - aMin) / box.DeltaA)
		iB := int((beta[n] - bMin) / box.DeltaB)
		iA = clamp(iA, 0, box.ElementCountA()-1)
		iB = clamp(iB, 0, box.ElementCountB()-1)

		i0 := box.AInteriorBegin() + iA*order
		j0 := box.BInteriorBegin() + iB*order

		// Interpolation coefficients over the element's GLL nodes
		aPts := make([]float64, order)
		bPts := make([]float64, order)
		for s := 0; s < order; s++ {
			aPts[s] = box.ANode(i0 + s)
			bPts[s] = box.BNode(j0 + s)
		}
		aCoeff := quadrature.LagrangeCoeffs(aPts, alpha[n])
		bCoeff := quadrature.LagrangeCoeffs(bPts, beta[n])

		for c, field := range fields {
			for k := 0; k < nRows; k++ {
				var val float64
				for m := 0; m < order; m++ {
					for q := 0; q < order; q++ {
						w := aCoeff[m] * bCoeff[q]
						val += w * field.At(k, p.IJ(i0+m, j0+q))
						if subtractRef && refs != nil {
							val -= w * refs[c].At(k, p.IJ(i0+m, j0+q))
						}
					}
				}
				out[c].Set(k, n, val)
			}
		}
	}
	return
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

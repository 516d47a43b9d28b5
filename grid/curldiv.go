package grid

import (
	"github.com/stratus-model/stratus/eqset"
	"github.com/stratus-model/stratus/utils"
)

// ComputeCurlAndDiv evaluates vorticity and divergence diagnostics from the
// horizontal velocity components through the spectral derivative matrix.
// The curl differentiates the raw velocity components; on the identity
// Cartesian metric this agrees with the covariant form.
func (p *Patch) ComputeCurlAndDiv(dataUa, dataUb utils.Matrix) {
	var (
		g     = p.grid
		order = g.Cfg.HorizontalOrder
		nLev  = g.NLevels()
	)

	conUa := make([]float64, order*order)
	conUb := make([]float64, order*order)

	for k := 0; k < nLev; k++ {
		for a := 0; a < p.Box.ElementCountA(); a++ {
			for b := 0; b < p.Box.ElementCountB(); b++ {
				iA0 := p.Box.AInteriorBegin() + a*order
				iB0 := p.Box.BInteriorBegin() + b*order

				// Contravariant velocity at each node of the element
				for i := 0; i < order; i++ {
					for j := 0; j < order; j++ {
						ij := p.IJ(iA0+i, iB0+j)
						conUa[i*order+j] =
							p.ContraMetric2DA[0].AtVec(ij)*dataUa.At(k, ij) +
								p.ContraMetric2DA[1].AtVec(ij)*dataUb.At(k, ij)
						conUb[i*order+j] =
							p.ContraMetric2DB[0].AtVec(ij)*dataUa.At(k, ij) +
								p.ContraMetric2DB[1].AtVec(ij)*dataUb.At(k, ij)
					}
				}

				for i := 0; i < order; i++ {
					for j := 0; j < order; j++ {
						ij := p.IJ(iA0+i, iB0+j)

						var dDaJUa, dDbJUb, dDaUb, dDbUa float64
						for s := 0; s < order; s++ {
							ijS := p.IJ(iA0+s, iB0+j)
							dDaJUa += g.DxBasis1D.At(s, i) *
								p.Jacobian2D.AtVec(ijS) * conUa[s*order+j]
							dDaUb += g.DxBasis1D.At(s, i) * dataUb.At(k, ijS)

							ijT := p.IJ(iA0+i, iB0+s)
							dDbJUb += g.DxBasis1D.At(s, j) *
								p.Jacobian2D.AtVec(ijT) * conUb[i*order+s]
							dDbUa += g.DxBasis1D.At(s, j) * dataUa.At(k, ijT)
						}

						dDaJUa /= p.Box.DeltaA
						dDbJUb /= p.Box.DeltaB
						dDaUb /= p.Box.DeltaA
						dDbUa /= p.Box.DeltaB

						oj := 1. / p.Jacobian2D.AtVec(ij)
						p.Vorticity.Set(k, ij, (dDaUb-dDbUa)*oj)
						p.Divergence.Set(k, ij, (dDaJUa+dDbJUb)*oj)
					}
				}
			}
		}
	}
}

// ComputeVorticityDivergence fills the vorticity and divergence diagnostics
// from the horizontal velocity of a state slot, then makes them continuous
// through direct stiffness summation.
func (g *Grid) ComputeVorticityDivergence(slotIx int) {
	for _, p := range g.Patches {
		p.ComputeCurlAndDiv(
			p.Slots[slotIx].Node[eqset.UIx],
			p.Slots[slotIx].Node[eqset.VIx])
	}
	g.ApplyDSSField(func(p *Patch) utils.Matrix { return p.Vorticity }, KindScalar)
	g.ApplyDSSField(func(p *Patch) utils.Matrix { return p.Divergence }, KindScalar)
}

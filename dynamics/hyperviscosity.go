package dynamics

import (
	"github.com/stratus-model/stratus/eqset"
	"github.com/stratus-model/stratus/grid"
	"github.com/stratus-model/stratus/utils"
)

func pressureOf(g *grid.Grid, rho, theta float64) float64 {
	return eqset.Pressure(g.Phys, rho, theta)
}

// laplacian evaluates the spectral-element Laplacian of one node-resident
// field: the gradient is taken elementwise, made continuous by DSS, and the
// divergence of the continuous gradient is taken elementwise again.
func (h *Horizontal) laplacian(sel grid.FieldSelector) (out map[*grid.Patch]utils.Matrix) {
	var (
		g     = h.Grid
		order = g.Cfg.HorizontalOrder
	)
	gradA := make(map[*grid.Patch]utils.Matrix)
	gradB := make(map[*grid.Patch]utils.Matrix)
	out = make(map[*grid.Patch]utils.Matrix)

	for _, p := range g.Patches {
		field := sel(p)
		nLev, nIJ := field.Dims()
		ga := utils.NewMatrix(nLev, nIJ)
		gb := utils.NewMatrix(nLev, nIJ)

		for k := 0; k < nLev; k++ {
			for a := 0; a < p.Box.ElementCountA(); a++ {
				for b := 0; b < p.Box.ElementCountB(); b++ {
					i0 := p.Box.AInteriorBegin() + a*order
					j0 := p.Box.BInteriorBegin() + b*order
					for i := 0; i < order; i++ {
						for j := 0; j < order; j++ {
							var da, db float64
							for s := 0; s < order; s++ {
								da += g.DxBasis1D.At(s, i) * field.At(k, p.IJ(i0+s, j0+j))
								db += g.DxBasis1D.At(s, j) * field.At(k, p.IJ(i0+i, j0+s))
							}
							ij := p.IJ(i0+i, j0+j)
							ga.Set(k, ij, da/p.Box.DeltaA)
							gb.Set(k, ij, db/p.Box.DeltaB)
						}
					}
				}
			}
		}
		gradA[p] = ga
		gradB[p] = gb
	}

	g.ApplyDSSField(func(p *grid.Patch) utils.Matrix { return gradA[p] }, grid.KindScalar)
	g.ApplyDSSField(func(p *grid.Patch) utils.Matrix { return gradB[p] }, grid.KindScalar)

	for _, p := range g.Patches {
		ga, gb := gradA[p], gradB[p]
		nLev, nIJ := ga.Dims()
		lap := utils.NewMatrix(nLev, nIJ)
		for k := 0; k < nLev; k++ {
			for a := 0; a < p.Box.ElementCountA(); a++ {
				for b := 0; b < p.Box.ElementCountB(); b++ {
					i0 := p.Box.AInteriorBegin() + a*order
					j0 := p.Box.BInteriorBegin() + b*order
					for i := 0; i < order; i++ {
						for j := 0; j < order; j++ {
							var da, db float64
							for s := 0; s < order; s++ {
								da += g.DxBasis1D.At(s, i) * ga.At(k, p.IJ(i0+s, j0+j))
								db += g.DxBasis1D.At(s, j) * gb.At(k, p.IJ(i0+i, j0+s))
							}
							ij := p.IJ(i0+i, j0+j)
							lap.Set(k, ij, da/p.Box.DeltaA+db/p.Box.DeltaB)
						}
					}
				}
			}
		}
		out[p] = lap
	}
	g.ApplyDSSField(func(p *grid.Patch) utils.Matrix { return out[p] }, grid.KindScalar)
	return
}

// gradient evaluates the elementwise spectral gradient of one field,
// made continuous by DSS.
func (h *Horizontal) gradient(sel grid.FieldSelector) (gradA, gradB map[*grid.Patch]utils.Matrix) {
	var (
		g     = h.Grid
		order = g.Cfg.HorizontalOrder
	)
	gradA = make(map[*grid.Patch]utils.Matrix)
	gradB = make(map[*grid.Patch]utils.Matrix)

	for _, p := range g.Patches {
		field := sel(p)
		nLev, nIJ := field.Dims()
		ga := utils.NewMatrix(nLev, nIJ)
		gb := utils.NewMatrix(nLev, nIJ)
		for k := 0; k < nLev; k++ {
			for a := 0; a < p.Box.ElementCountA(); a++ {
				for b := 0; b < p.Box.ElementCountB(); b++ {
					i0 := p.Box.AInteriorBegin() + a*order
					j0 := p.Box.BInteriorBegin() + b*order
					for i := 0; i < order; i++ {
						for j := 0; j < order; j++ {
							var da, db float64
							for s := 0; s < order; s++ {
								da += g.DxBasis1D.At(s, i) * field.At(k, p.IJ(i0+s, j0+j))
								db += g.DxBasis1D.At(s, j) * field.At(k, p.IJ(i0+i, j0+s))
							}
							ij := p.IJ(i0+i, j0+j)
							ga.Set(k, ij, da/p.Box.DeltaA)
							gb.Set(k, ij, db/p.Box.DeltaB)
						}
					}
				}
			}
		}
		gradA[p] = ga
		gradB[p] = gb
	}
	g.ApplyDSSField(func(p *grid.Patch) utils.Matrix { return gradA[p] }, grid.KindScalar)
	g.ApplyDSSField(func(p *grid.Patch) utils.Matrix { return gradB[p] }, grid.KindScalar)
	return
}

// applyHyperviscosity adds fourth-order damping, scaled by
// (dA dB)^2 / referenceLength^2 times the configured strengths: the scalar
// form (Laplacian applied twice with DSS in between) on scalar components
// and w, and the divergence-damping form (gradient of the damped
// divergence) on the horizontal momentum.
func (h *Horizontal) applyHyperviscosity(inIx, tendIx int) {
	var (
		g = h.Grid
	)
	refLen := g.Cfg.ReferenceLength
	if refLen <= 0 {
		return
	}
	scale := func(p *grid.Patch, nu float64) float64 {
		area := p.Box.DeltaA * p.Box.DeltaB
		return nu * utils.POW(area, 2) / (refLen * refLen)
	}
	addScaled := func(tendField, src utils.Matrix, s float64) {
		nLev, nIJ := tendField.Dims()
		for k := 0; k < nLev; k++ {
			for ij := 0; ij < nIJ; ij++ {
				tendField.Set(k, ij, tendField.At(k, ij)-s*src.At(k, ij))
			}
		}
	}

	// Scalar hyperviscosity on theta, rho and w
	if h.NuScalar > 0 {
		for _, c := range []int{eqset.TIx, eqset.WIx, eqset.RIx} {
			c := c
			lap := h.laplacian(func(p *grid.Patch) utils.Matrix {
				return p.Slot(inIx).Node[c]
			})
			lap2 := h.laplacian(func(p *grid.Patch) utils.Matrix {
				return lap[p]
			})
			for _, p := range g.Patches {
				addScaled(p.Slot(tendIx).Node[c], lap2[p], scale(p, h.NuScalar))
			}
		}
	}

	// Divergence damping on the horizontal momentum: the gradient of the
	// damped velocity divergence
	if h.NuDiv > 0 {
		gau, _ := h.gradient(func(p *grid.Patch) utils.Matrix {
			return p.Slot(inIx).Node[eqset.UIx]
		})
		_, gbv := h.gradient(func(p *grid.Patch) utils.Matrix {
			return p.Slot(inIx).Node[eqset.VIx]
		})
		div := make(map[*grid.Patch]utils.Matrix)
		for _, p := range g.Patches {
			d := gau[p]
			d.Add(gbv[p])
			div[p] = d
		}
		lapDiv := h.laplacian(func(p *grid.Patch) utils.Matrix { return div[p] })
		dA, dB := h.gradient(func(p *grid.Patch) utils.Matrix { return lapDiv[p] })
		for _, p := range g.Patches {
			s := scale(p, h.NuDiv)
			addScaled(p.Slot(tendIx).Node[eqset.UIx], dA[p], s)
			addScaled(p.Slot(tendIx).Node[eqset.VIx], dB[p], s)
		}
	}
}

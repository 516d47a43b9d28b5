package grid

import (
	"github.com/stratus-model/stratus/eqset"
	"github.com/stratus-model/stratus/model"
	"github.com/stratus-model/stratus/patch"
	"github.com/stratus-model/stratus/utils"
)

// ApplyBoundaryConditions imposes no-flow at the rigid ground and lid, and
// fills the ghost layers of reflective lateral walls. Periodic sides are
// covered by the halo exchange and need no treatment here.
func (g *Grid) ApplyBoundaryConditions(slotIx int) {
	for _, p := range g.Patches {
		p.applyWallGhosts(slotIx)
		p.applyNoFlow(slotIx)
	}
}

// applyNoFlow sets the vertical velocity at the bottom surface so that the
// flow follows the terrain, and zeroes it at the rigid lid. The form of the
// contraction depends on the configured velocity representation; both
// satisfy the same zero-normal-flow contract.
func (p *Patch) applyNoFlow(slotIx int) {
	var (
		g    = p.grid
		slot = p.Slots[slotIx]
		kTop = g.NLevels() - 1
	)

	noFlowW := func(u, v float64, ij int, onEdge bool) float64 {
		if g.Cfg.VelocityRep == model.VelocityCovariant {
			var mXi0, mXi1, mXi2, dxz float64
			if onEdge {
				mXi0 = p.ContraMetricXiREdge[0].At(0, ij)
				mXi1 = p.ContraMetricXiREdge[1].At(0, ij)
				mXi2 = p.ContraMetricXiREdge[2].At(0, ij)
				dxz = p.DerivRREdge[2].At(0, ij)
			} else {
				mXi0 = p.ContraMetricXi[0].At(0, ij)
				mXi1 = p.ContraMetricXi[1].At(0, ij)
				mXi2 = p.ContraMetricXi[2].At(0, ij)
				dxz = p.DerivRNode[2].At(0, ij)
			}
			return -(mXi0*u + mXi1*v) / (mXi2 * dxz)
		}
		// Contravariant: the physical vertical velocity rides the slope
		var da, db float64
		if onEdge {
			da = p.DerivRREdge[0].At(0, ij)
			db = p.DerivRREdge[1].At(0, ij)
		} else {
			da = p.DerivRNode[0].At(0, ij)
			db = p.DerivRNode[1].At(0, ij)
		}
		return u*da + v*db
	}

	for ij := 0; ij < p.nIJ; ij++ {
		if g.WOnInterfaces() {
			u := slot.REdge[eqset.UIx].At(0, ij)
			v := slot.REdge[eqset.VIx].At(0, ij)
			slot.REdge[eqset.WIx].Set(0, ij, noFlowW(u, v, ij, true))
			slot.REdge[eqset.WIx].Set(g.NLevels(), ij, 0.)
		} else {
			u := slot.Node[eqset.UIx].At(0, ij)
			v := slot.Node[eqset.VIx].At(0, ij)
			slot.Node[eqset.WIx].Set(0, ij, noFlowW(u, v, ij, false))
			slot.Node[eqset.WIx].Set(kTop, ij, 0.)
		}
	}
}

// applyWallGhosts mirrors the interior into the halo across reflective
// walls, flipping the wall-perpendicular velocity component.
func (p *Patch) applyWallGhosts(slotIx int) {
	var (
		g    = p.grid
		slot = p.Slots[slotIx]
		h    = p.haloWidth()
		ib   = p.Box.AInteriorBegin()
		ie   = p.Box.AInteriorEnd()
		jb   = p.Box.BInteriorBegin()
		je   = p.Box.BInteriorEnd()
	)

	mirror := func(field utils.Matrix, c int, dir patch.Direction) {
		nLev, _ := field.Dims()
		sign := 1.0
		switch dir {
		case patch.DirLeft, patch.DirRight:
			if c == eqset.UIx {
				sign = -1.0
			}
		case patch.DirBottom, patch.DirTop:
			if c == eqset.VIx {
				sign = -1.0
			}
		}
		for k := 0; k < nLev; k++ {
			for d := 0; d < h; d++ {
				switch dir {
				case patch.DirLeft:
					for j := 0; j < p.nB; j++ {
						field.Set(k, p.IJ(ib-1-d, j), sign*field.At(k, p.IJ(ib+d, j)))
					}
				case patch.DirRight:
					for j := 0; j < p.nB; j++ {
						field.Set(k, p.IJ(ie+d, j), sign*field.At(k, p.IJ(ie-1-d, j)))
					}
				case patch.DirBottom:
					for i := 0; i < p.nA; i++ {
						field.Set(k, p.IJ(i, jb-1-d), sign*field.At(k, p.IJ(i, jb+d)))
					}
				case patch.DirTop:
					for i := 0; i < p.nA; i++ {
						field.Set(k, p.IJ(i, je+d), sign*field.At(k, p.IJ(i, je-1-d)))
					}
				}
			}
		}
	}

	for _, dir := range []patch.Direction{
		patch.DirLeft, patch.DirRight, patch.DirBottom, patch.DirTop,
	} {
		if g.Conn.Neighbors[p.Index][dir].Patch != patch.NoNeighbor {
			continue
		}
		for c := 0; c < eqset.NumComponents; c++ {
			mirror(slot.Node[c], c, dir)
			mirror(slot.REdge[c], c, dir)
		}
		for c := range slot.Tracers {
			mirror(slot.Tracers[c], eqset.TIx, dir)
		}
	}
}

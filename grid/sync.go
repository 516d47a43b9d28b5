package grid

import (
	"github.com/stratus-model/stratus/eqset"
)

// SyncEdgeState refreshes the interface-resident copies of the node-resident
// components by columnwise interpolation, and mirrors w back onto the
// location it is not prognostic on. Called after each stage so that both
// vertical representations of the slot agree.
func (g *Grid) SyncEdgeState(slotIx int) {
	var (
		nLev = g.NLevels()
		nInt = g.NInterfaces()
	)
	colN := make([]float64, nLev)
	colE := make([]float64, nInt)

	for _, p := range g.Patches {
		slot := p.Slots[slotIx]
		for ij := 0; ij < p.nIJ; ij++ {
			up := func(c int) {
				for k := 0; k < nLev; k++ {
					colN[k] = slot.Node[c].At(k, ij)
				}
				g.Ops.InterpNodeToREdge.ApplyTo(colN, colE)
				for k := 0; k < nInt; k++ {
					slot.REdge[c].Set(k, ij, colE[k])
				}
			}
			up(eqset.UIx)
			up(eqset.VIx)
			up(eqset.TIx)
			up(eqset.RIx)

			if g.WOnInterfaces() {
				for k := 0; k < nInt; k++ {
					colE[k] = slot.REdge[eqset.WIx].At(k, ij)
				}
				g.Ops.InterpREdgeToNode.ApplyTo(colE, colN)
				for k := 0; k < nLev; k++ {
					slot.Node[eqset.WIx].Set(k, ij, colN[k])
				}
			} else {
				up(eqset.WIx)
			}
		}
	}
}

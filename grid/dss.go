package grid

import (
	"github.com/stratus-model/stratus/patch"
	"github.com/stratus-model/stratus/utils"
)

// ComponentKind tells direct stiffness summation how a field transforms
// across a patch seam with orientation-switching flags.
type ComponentKind uint8

const (
	KindScalar ComponentKind = iota
	KindVelocityA
	KindVelocityB
)

// seamSign returns the sign carried by halo contributions of the component
// across the given seam, honoring the neighbor's switch flags.
func seamSign(kind ComponentKind, dir patch.Direction, nbr patch.Neighbor) float64 {
	if kind == KindScalar {
		return 1
	}
	perpendicular := (kind == KindVelocityA) ==
		(dir == patch.DirLeft || dir == patch.DirRight)
	if perpendicular && nbr.SwitchPerpendicular {
		return -1
	}
	if !perpendicular && nbr.SwitchParallel {
		return -1
	}
	return 1
}

// ApplyDSSField averages the duplicated degrees of freedom of one field:
// coincident nodes at shared element edges inside each patch, and seam nodes
// across patches using freshly exchanged halo data. The operation is
// idempotent once duplicated values agree.
func (g *Grid) ApplyDSSField(sel FieldSelector, kind ComponentKind) {
	g.ExchangeField(sel)

	for _, p := range g.Patches {
		p.dssDirectionA(sel(p), kind)
	}
	for _, p := range g.Patches {
		p.dssDirectionB(sel(p), kind)
	}
}

// dssDirectionA averages coincident node pairs along constant-x lines: the
// duplicated edge nodes between horizontally adjacent elements, and the
// patch seam lines against the halo. All j rows participate, including halo
// rows, so that the later B-direction pass sees seam-consistent values.
func (p *Patch) dssDirectionA(field utils.Matrix, kind ComponentKind) {
	var (
		g       = p.grid
		order   = p.Box.Order
		nLev, _ = field.Dims()
		ib      = p.Box.AInteriorBegin()
		ie      = p.Box.AInteriorEnd()
	)
	average := func(iLeft, iRight int, signHalo float64, haloIsLeft bool) {
		for k := 0; k < nLev; k++ {
			for j := 0; j < p.nB; j++ {
				vL := field.At(k, p.IJ(iLeft, j))
				vR := field.At(k, p.IJ(iRight, j))
				if haloIsLeft {
					vL *= signHalo
				} else {
					vR *= signHalo
				}
				avg := 0.5 * (vL + vR)
				if haloIsLeft {
					field.Set(k, p.IJ(iRight, j), avg)
				} else {
					field.Set(k, p.IJ(iLeft, j), avg)
				}
			}
		}
	}

	// Interior element seams: the right edge node of element e coincides
	// with the left edge node of element e+1
	for e := 1; e < p.Box.ElementCountA(); e++ {
		i2 := ib + e*order
		i1 := i2 - 1
		for k := 0; k < nLev; k++ {
			for j := 0; j < p.nB; j++ {
				avg := 0.5 * (field.At(k, p.IJ(i1, j)) + field.At(k, p.IJ(i2, j)))
				field.Set(k, p.IJ(i1, j), avg)
				field.Set(k, p.IJ(i2, j), avg)
			}
		}
	}

	// Patch seams against halo data
	if nbr := g.Conn.Neighbors[p.Index][patch.DirLeft]; nbr.Patch != patch.NoNeighbor {
		average(ib-1, ib, seamSign(kind, patch.DirLeft, nbr), true)
	}
	if nbr := g.Conn.Neighbors[p.Index][patch.DirRight]; nbr.Patch != patch.NoNeighbor {
		average(ie-1, ie, seamSign(kind, patch.DirRight, nbr), false)
	}
}

func (p *Patch) dssDirectionB(field utils.Matrix, kind ComponentKind) {
	var (
		g       = p.grid
		order   = p.Box.Order
		nLev, _ = field.Dims()
		jb      = p.Box.BInteriorBegin()
		je      = p.Box.BInteriorEnd()
		ib      = p.Box.AInteriorBegin()
		ie      = p.Box.AInteriorEnd()
	)
	average := func(jLow, jHigh int, signHalo float64, haloIsLow bool) {
		for k := 0; k < nLev; k++ {
			for i := ib; i < ie; i++ {
				vL := field.At(k, p.IJ(i, jLow))
				vH := field.At(k, p.IJ(i, jHigh))
				if haloIsLow {
					vL *= signHalo
				} else {
					vH *= signHalo
				}
				avg := 0.5 * (vL + vH)
				if haloIsLow {
					field.Set(k, p.IJ(i, jHigh), avg)
				} else {
					field.Set(k, p.IJ(i, jLow), avg)
				}
			}
		}
	}

	for e := 1; e < p.Box.ElementCountB(); e++ {
		j2 := jb + e*order
		j1 := j2 - 1
		for k := 0; k < nLev; k++ {
			for i := ib; i < ie; i++ {
				avg := 0.5 * (field.At(k, p.IJ(i, j1)) + field.At(k, p.IJ(i, j2)))
				field.Set(k, p.IJ(i, j1), avg)
				field.Set(k, p.IJ(i, j2), avg)
			}
		}
	}

	if nbr := g.Conn.Neighbors[p.Index][patch.DirBottom]; nbr.Patch != patch.NoNeighbor {
		average(jb-1, jb, seamSign(kind, patch.DirBottom, nbr), true)
	}
	if nbr := g.Conn.Neighbors[p.Index][patch.DirTop]; nbr.Patch != patch.NoNeighbor {
		average(je-1, je, seamSign(kind, patch.DirTop, nbr), false)
	}
}

// ApplyDSS runs direct stiffness summation over every component of a state
// slot, on both levels and interfaces.
func (g *Grid) ApplyDSS(slotIx int) {
	nComp := len(g.Patches[0].Slots[slotIx].Node)
	for c := 0; c < nComp; c++ {
		c := c
		kind := KindScalar
		switch c {
		case 0:
			kind = KindVelocityA
		case 1:
			kind = KindVelocityB
		}
		g.ApplyDSSField(func(p *Patch) utils.Matrix { return p.Slots[slotIx].Node[c] }, kind)
		g.ApplyDSSField(func(p *Patch) utils.Matrix { return p.Slots[slotIx].REdge[c] }, kind)
	}
	for c := 0; c < g.Eqs.NumTracers; c++ {
		c := c
		g.ApplyDSSField(func(p *Patch) utils.Matrix { return p.Slots[slotIx].Tracers[c] }, KindScalar)
	}
}

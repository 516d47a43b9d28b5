package grid

import (
	"github.com/stratus-model/stratus/patch"
	"github.com/stratus-model/stratus/utils"
)

// FieldSelector picks one per-patch 3D field (levels or interfaces resident).
type FieldSelector func(p *Patch) utils.Matrix

// haloWidth returns the halo strip width in nodes.
func (p *Patch) haloWidth() int { return p.Box.Halo * p.Box.Order }

// sideStrip returns the index ranges of the interior strip to send for one
// direction.
func (p *Patch) sideStrip(dir patch.Direction) (i0, i1, j0, j1 int) {
	var (
		h  = p.haloWidth()
		ib = p.Box.AInteriorBegin()
		ie = p.Box.AInteriorEnd()
		jb = p.Box.BInteriorBegin()
		je = p.Box.BInteriorEnd()
	)
	switch dir {
	case patch.DirRight:
		return ie - h, ie, jb, je
	case patch.DirLeft:
		return ib, ib + h, jb, je
	case patch.DirTop:
		return ib, ie, je - h, je
	case patch.DirBottom:
		return ib, ie, jb, jb + h
	case patch.DirTopRight:
		return ie - h, ie, je - h, je
	case patch.DirTopLeft:
		return ib, ib + h, je - h, je
	case patch.DirBottomLeft:
		return ib, ib + h, jb, jb + h
	case patch.DirBottomRight:
		return ie - h, ie, jb, jb + h
	}
	return 0, 0, 0, 0
}

// haloStrip returns the index ranges of the halo region filled from one
// incoming direction.
func (p *Patch) haloStrip(dir patch.Direction) (i0, i1, j0, j1 int) {
	var (
		h  = p.haloWidth()
		ib = p.Box.AInteriorBegin()
		ie = p.Box.AInteriorEnd()
		jb = p.Box.BInteriorBegin()
		je = p.Box.BInteriorEnd()
	)
	switch dir {
	case patch.DirRight:
		return ie, ie + h, jb, je
	case patch.DirLeft:
		return ib - h, ib, jb, je
	case patch.DirTop:
		return ib, ie, je, je + h
	case patch.DirBottom:
		return ib, ie, jb - h, jb
	case patch.DirTopRight:
		return ie, ie + h, je, je + h
	case patch.DirTopLeft:
		return ib - h, ib, je, je + h
	case patch.DirBottomLeft:
		return ib - h, ib, jb - h, jb
	case patch.DirBottomRight:
		return ie, ie + h, jb - h, jb
	}
	return 0, 0, 0, 0
}

func (p *Patch) packSide(field utils.Matrix, dir patch.Direction) (data []float64) {
	var (
		nLev, _        = field.Dims()
		i0, i1, j0, j1 = p.sideStrip(dir)
	)
	data = make([]float64, 0, nLev*(i1-i0)*(j1-j0))
	for k := 0; k < nLev; k++ {
		for i := i0; i < i1; i++ {
			for j := j0; j < j1; j++ {
				data = append(data, field.At(k, p.IJ(i, j)))
			}
		}
	}
	return
}

func (p *Patch) unpackSide(field utils.Matrix, dir patch.Direction, data []float64, reverse bool) {
	var (
		nLev, _        = field.Dims()
		i0, i1, j0, j1 = p.haloStrip(dir)
	)
	var ix int
	for k := 0; k < nLev; k++ {
		for i := i0; i < i1; i++ {
			for j := j0; j < j1; j++ {
				val := data[ix]
				if reverse {
					// Reverse-ordered seams index the strip from its far end
					ri := i1 - 1 - (i - i0) + i0
					field.Set(k, p.IJ(ri, j), val)
				} else {
					field.Set(k, p.IJ(i, j), val)
				}
				ix++
			}
		}
	}
}

// ExchangeField posts every side of every patch and then fills the halo
// strips, completing one halo exchange for a single 3D field.
func (g *Grid) ExchangeField(sel FieldSelector) {
	for _, p := range g.Patches {
		field := sel(p)
		for d := patch.Direction(0); d < patch.NumDirections; d++ {
			if g.Conn.Neighbors[p.Index][d].Patch == patch.NoNeighbor {
				continue
			}
			g.Exchanger.Post(p.Index, d, p.packSide(field, d))
		}
	}
	for _, p := range g.Patches {
		field := sel(p)
		msgs := g.Exchanger.Collect(p.Index)
		for d, data := range msgs {
			nbr := g.Conn.Neighbors[p.Index][d]
			p.unpackSide(field, d, data, nbr.Reverse)
		}
	}
}

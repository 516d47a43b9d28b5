package patch

import (
	"github.com/james-bowman/sparse"
)

// Connectivity holds, for every patch, the neighbor descriptor on each of
// the eight directions.
type Connectivity struct {
	Neighbors [][NumDirections]Neighbor
}

// BuildConnectivity derives the patch-to-patch adjacency for a regular
// tiling of nPA x nPB patches. Lateral wrap is controlled per axis
// (periodic or wall). The four cardinal adjacencies are recovered from the
// side-to-seam incidence product, mirroring a face-to-face connectivity
// assembly; corner adjacencies follow from composing the cardinal maps.
func BuildConnectivity(nPA, nPB int, periodicA, periodicB bool) (c *Connectivity) {
	var (
		nP       = nPA * nPB
		nSides   = 4 * nP
		nSeamsA  = nPA + 1
		nSeamsB  = nPB + 1
		nSeams   = nSeamsA*nPB + nSeamsB*nPA // vertical + horizontal seams
	)
	c = &Connectivity{
		Neighbors: make([][NumDirections]Neighbor, nP),
	}
	for p := range c.Neighbors {
		for d := range c.Neighbors[p] {
			c.Neighbors[p][d] = Neighbor{Patch: NoNeighbor, Dir: Direction(d).Opposite()}
		}
	}

	// Seam ids: vertical seam s at column edge a, row b; horizontal seam at
	// row edge b, column a. Periodic wrap folds the last edge onto edge 0.
	vSeam := func(a, b int) int {
		if periodicA {
			a = a % nPA
		}
		return a + b*nSeamsA
	}
	hSeam := func(a, b int) int {
		if periodicB {
			b = b % nPB
		}
		return nSeamsA*nPB + b + a*nSeamsB
	}

	// Side-to-seam incidence
	incidence := sparse.NewDOK(nSides, nSeams)
	sideID := func(p int, d Direction) int { return 4*p + int(d) }
	for pb := 0; pb < nPB; pb++ {
		for pa := 0; pa < nPA; pa++ {
			p := pa + pb*nPA
			incidence.Set(sideID(p, DirLeft), vSeam(pa, pb), 1)
			incidence.Set(sideID(p, DirRight), vSeam(pa+1, pb), 1)
			incidence.Set(sideID(p, DirBottom), hSeam(pa, pb), 1)
			incidence.Set(sideID(p, DirTop), hSeam(pa, pb+1), 1)
		}
	}

	// Sides sharing a seam appear as off-diagonal entries of S * S^T
	csr := incidence.ToCSR()
	sideToSide := sparse.NewCSR(nSides, nSides, nil, nil, nil)
	sideToSide.Mul(csr, csr.T())

	for s1 := 0; s1 < nSides; s1++ {
		for s2 := 0; s2 < nSides; s2++ {
			if s1 == s2 || sideToSide.At(s1, s2) == 0 {
				continue
			}
			p1, d1 := s1/4, Direction(s1%4)
			p2 := s2 / 4
			if p1 == p2 {
				// A single-patch periodic axis connects a patch to itself
				if Direction(s2%4) != d1.Opposite() {
					continue
				}
			}
			c.Neighbors[p1][d1] = Neighbor{Patch: p2, Dir: d1.Opposite()}
		}
	}

	// Corner adjacencies compose the cardinal maps
	corner := func(p int, d1, d2, dc Direction) {
		n1 := c.Neighbors[p][d1]
		if n1.Patch == NoNeighbor {
			return
		}
		n2 := c.Neighbors[n1.Patch][d2]
		if n2.Patch == NoNeighbor {
			return
		}
		c.Neighbors[p][dc] = Neighbor{Patch: n2.Patch, Dir: dc.Opposite()}
	}
	for p := 0; p < nP; p++ {
		corner(p, DirTop, DirRight, DirTopRight)
		corner(p, DirTop, DirLeft, DirTopLeft)
		corner(p, DirBottom, DirLeft, DirBottomLeft)
		corner(p, DirBottom, DirRight, DirBottomRight)
	}
	return
}

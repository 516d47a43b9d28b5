package grid

import (
	"github.com/stratus-model/stratus/eqset"
	"github.com/stratus-model/stratus/patch"
	"github.com/stratus-model/stratus/utils"
)

// StateSlot is one named data instance: a node-resident field, an
// edge-resident field, and per-instance tracer arrays. Fields are stored as
// (levels x horizontal DOF) matrices per component.
type StateSlot struct {
	Node    []utils.Matrix
	REdge   []utils.Matrix
	Tracers []utils.Matrix
}

// Patch couples one patch box to the per-DOF data arrays living on it. The
// grid owns patches by index; the grid handle here is non-owning.
type Patch struct {
	Index int
	Box   *patch.Box

	grid *Grid

	nA, nB, nIJ int

	// Horizontal coordinates and Coriolis parameter at each node
	XNode, YNode utils.Vector
	CoriolisF    utils.Vector

	// Topography and its spectral derivatives
	Topography             utils.Vector
	TopoDerivA, TopoDerivB utils.Vector

	// 2D metric (identity on the Cartesian grid)
	Jacobian2D                       utils.Vector
	ContraMetric2DA, ContraMetric2DB [2]utils.Vector
	CovMetric2DA, CovMetric2DB       [2]utils.Vector

	// Physical heights on levels and interfaces
	ZLevels, ZInterfaces utils.Matrix

	// Pointwise 3D Jacobian and quadrature areas
	Jacobian, JacobianREdge       utils.Matrix
	ElementArea, ElementAreaREdge utils.Matrix

	// 3D metric tensors on levels
	ContraMetricA, ContraMetricB, ContraMetricXi [3]utils.Matrix
	CovMetricA, CovMetricB, CovMetricXi          [3]utils.Matrix

	// Contravariant metric on interfaces
	ContraMetricAREdge, ContraMetricBREdge, ContraMetricXiREdge [3]utils.Matrix

	// Derivatives of the vertical coordinate transform {dZ/da, dZ/db, dZ/dxi}
	DerivRNode, DerivRREdge [3]utils.Matrix

	// Rayleigh friction strength
	RayleighNode, RayleighREdge utils.Matrix

	// Diagnostics
	Vorticity, Divergence utils.Matrix

	// State instances and the time-independent reference state
	Slots              []*StateSlot
	RefNode, RefREdge  []utils.Matrix

	initialized bool
}

func newPatch(g *Grid, index int, box *patch.Box) (p *Patch) {
	p = &Patch{
		Index: index,
		Box:   box,
		grid:  g,
		nA:    box.ATotalWidth(),
		nB:    box.BTotalWidth(),
	}
	p.nIJ = p.nA * p.nB
	return
}

// IJ flattens a local (i, j) node pair into the horizontal DOF index.
func (p *Patch) IJ(i, j int) int { return i*p.nB + j }

// Dims returns the total node counts including halos.
func (p *Patch) Dims() (nA, nB int) { return p.nA, p.nB }

// InitializeData allocates every per-DOF array on the patch, sized to the
// fixed mesh topology.
func (p *Patch) InitializeData() {
	var (
		g     = p.grid
		nLev  = g.NLevels()
		nInt  = g.NInterfaces()
		nComp = eqset.NumComponents
	)
	newV := func() utils.Vector { return utils.NewVector(p.nIJ) }
	newM := func(rows int) utils.Matrix { return utils.NewMatrix(rows, p.nIJ) }

	p.XNode, p.YNode = newV(), newV()
	p.CoriolisF = newV()
	p.Topography, p.TopoDerivA, p.TopoDerivB = newV(), newV(), newV()

	p.Jacobian2D = newV()
	for c := 0; c < 2; c++ {
		p.ContraMetric2DA[c], p.ContraMetric2DB[c] = newV(), newV()
		p.CovMetric2DA[c], p.CovMetric2DB[c] = newV(), newV()
	}

	p.ZLevels, p.ZInterfaces = newM(nLev), newM(nInt)
	p.Jacobian, p.JacobianREdge = newM(nLev), newM(nInt)
	p.ElementArea, p.ElementAreaREdge = newM(nLev), newM(nInt)
	for c := 0; c < 3; c++ {
		p.ContraMetricA[c], p.ContraMetricB[c], p.ContraMetricXi[c] =
			newM(nLev), newM(nLev), newM(nLev)
		p.CovMetricA[c], p.CovMetricB[c], p.CovMetricXi[c] =
			newM(nLev), newM(nLev), newM(nLev)
		p.ContraMetricAREdge[c], p.ContraMetricBREdge[c], p.ContraMetricXiREdge[c] =
			newM(nInt), newM(nInt), newM(nInt)
		p.DerivRNode[c], p.DerivRREdge[c] = newM(nLev), newM(nInt)
	}

	p.RayleighNode, p.RayleighREdge = newM(nLev), newM(nInt)
	p.Vorticity, p.Divergence = newM(nLev), newM(nLev)

	p.Slots = make([]*StateSlot, g.Cfg.NumStateSlots)
	for s := range p.Slots {
		slot := &StateSlot{
			Node:    make([]utils.Matrix, nComp),
			REdge:   make([]utils.Matrix, nComp),
			Tracers: make([]utils.Matrix, g.Eqs.NumTracers),
		}
		for c := 0; c < nComp; c++ {
			slot.Node[c] = newM(nLev)
			slot.REdge[c] = newM(nInt)
		}
		for c := 0; c < g.Eqs.NumTracers; c++ {
			slot.Tracers[c] = newM(nLev)
		}
		p.Slots[s] = slot
	}

	p.RefNode = make([]utils.Matrix, nComp)
	p.RefREdge = make([]utils.Matrix, nComp)
	for c := 0; c < nComp; c++ {
		p.RefNode[c] = newM(nLev)
		p.RefREdge[c] = newM(nInt)
	}

	// Node coordinates come straight from the box
	for i := 0; i < p.nA; i++ {
		for j := 0; j < p.nB; j++ {
			ij := p.IJ(i, j)
			p.XNode.SetVal(ij, p.Box.ANode(i))
			p.YNode.SetVal(ij, p.Box.BNode(j))
		}
	}

	p.initialized = true
}

// InitializeData allocates data on every patch.
func (g *Grid) InitializeData() {
	for _, p := range g.Patches {
		p.InitializeData()
	}
	g.logger().WithField("patches", len(g.Patches)).Info("grid data initialized")
}

// Slot returns the state slot with the given index.
func (p *Patch) Slot(ix int) *StateSlot { return p.Slots[ix] }

// CopySlot copies the full state of slot src into slot dst.
func (p *Patch) CopySlot(dst, src int) {
	var (
		d = p.Slots[dst]
		s = p.Slots[src]
	)
	for c := range s.Node {
		d.Node[c].M.Copy(s.Node[c].M)
		d.REdge[c].M.Copy(s.REdge[c].M)
	}
	for c := range s.Tracers {
		d.Tracers[c].M.Copy(s.Tracers[c].M)
	}
}

// ZeroSlot clears every field of a slot.
func (p *Patch) ZeroSlot(ix int) {
	s := p.Slots[ix]
	for c := range s.Node {
		s.Node[c].Scale(0)
		s.REdge[c].Scale(0)
	}
	for c := range s.Tracers {
		s.Tracers[c].Scale(0)
	}
}

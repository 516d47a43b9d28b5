package dynamics

import (
	"github.com/stratus-model/stratus/eqset"
	"github.com/stratus-model/stratus/grid"
	"github.com/stratus-model/stratus/model"
)

// Vertical assembles the implicit column operator: vertical flux-form
// advection through the staggering-selected column derivative, the pressure
// gradient and gravity coupling of theta, rho and w, and Rayleigh friction
// toward the reference state.
type Vertical struct {
	Grid   *grid.Grid
	Solver SolverOptions
}

func NewVertical(g *grid.Grid, opts SolverOptions) *Vertical {
	return &Vertical{Grid: g, Solver: opts}
}

// column is the scratch workspace for one column solve.
type column struct {
	g    *grid.Grid
	p    *grid.Patch
	ij   int
	nLev int
	nW   int // w DOFs: nLev on levels, nLev+1 on interfaces
	nq   int

	wOnEdges bool

	// frozen per-column geometry
	jacN, jacE     []float64
	dxzN, dxzE     []float64
	dazN, dazE     []float64
	dbzN, dbzE     []float64
	sigmaN, sigmaE []float64
	refN           [][]float64 // reference state per component on nodes
	refWE          []float64   // reference rho*w on edges

	// scratch
	rhoE    []float64
	uE, vE  []float64
	thetaE  []float64
	mf      []float64
	fluxCol []float64
	derivN  []float64
	derivE  []float64
	presCol []float64
}

// offsets of each component inside the column vector
func (c *column) offU() int   { return 0 }
func (c *column) offV() int   { return c.nLev }
func (c *column) offTh() int  { return 2 * c.nLev }
func (c *column) offW() int   { return 3 * c.nLev }
func (c *column) offRho() int { return 3*c.nLev + c.nW }

func newColumn(g *grid.Grid, p *grid.Patch, ij int) (c *column) {
	var (
		nLev = g.NLevels()
		nInt = g.NInterfaces()
	)
	c = &column{
		g:        g,
		p:        p,
		ij:       ij,
		nLev:     nLev,
		wOnEdges: g.WOnInterfaces(),
	}
	if c.wOnEdges {
		c.nW = nInt
	} else {
		c.nW = nLev
	}
	c.nq = 4*nLev + c.nW

	c.jacN = make([]float64, nLev)
	c.jacE = make([]float64, nInt)
	c.dxzN = make([]float64, nLev)
	c.dxzE = make([]float64, nInt)
	c.dazN = make([]float64, nLev)
	c.dazE = make([]float64, nInt)
	c.dbzN = make([]float64, nLev)
	c.dbzE = make([]float64, nInt)
	c.sigmaN = make([]float64, nLev)
	c.sigmaE = make([]float64, nInt)
	for k := 0; k < nLev; k++ {
		c.jacN[k] = p.Jacobian.At(k, ij)
		c.dxzN[k] = p.DerivRNode[2].At(k, ij)
		c.dazN[k] = p.DerivRNode[0].At(k, ij)
		c.dbzN[k] = p.DerivRNode[1].At(k, ij)
		c.sigmaN[k] = p.RayleighNode.At(k, ij)
	}
	for k := 0; k < nInt; k++ {
		c.jacE[k] = p.JacobianREdge.At(k, ij)
		c.dxzE[k] = p.DerivRREdge[2].At(k, ij)
		c.dazE[k] = p.DerivRREdge[0].At(k, ij)
		c.dbzE[k] = p.DerivRREdge[1].At(k, ij)
		c.sigmaE[k] = p.RayleighREdge.At(k, ij)
	}

	c.refN = make([][]float64, eqset.NumComponents)
	for comp := range c.refN {
		c.refN[comp] = make([]float64, nLev)
		for k := 0; k < nLev; k++ {
			c.refN[comp][k] = p.RefNode[comp].At(k, ij)
		}
	}
	c.refWE = make([]float64, nInt)
	for k := 0; k < nInt; k++ {
		c.refWE[k] = p.RefREdge[eqset.WIx].At(k, ij)
	}

	c.rhoE = make([]float64, nInt)
	c.uE = make([]float64, nInt)
	c.vE = make([]float64, nInt)
	c.thetaE = make([]float64, nInt)
	c.mf = make([]float64, nInt)
	c.fluxCol = make([]float64, nInt)
	c.derivN = make([]float64, nLev)
	c.derivE = make([]float64, nInt)
	c.presCol = make([]float64, nLev)
	return
}

// load copies the column state of one slot into q.
func (c *column) load(slotIx int, q []float64) {
	slot := c.p.Slot(slotIx)
	for k := 0; k < c.nLev; k++ {
		q[c.offU()+k] = slot.Node[eqset.UIx].At(k, c.ij)
		q[c.offV()+k] = slot.Node[eqset.VIx].At(k, c.ij)
		q[c.offTh()+k] = slot.Node[eqset.TIx].At(k, c.ij)
		q[c.offRho()+k] = slot.Node[eqset.RIx].At(k, c.ij)
	}
	if c.wOnEdges {
		for k := 0; k < c.nW; k++ {
			q[c.offW()+k] = slot.REdge[eqset.WIx].At(k, c.ij)
		}
	} else {
		for k := 0; k < c.nW; k++ {
			q[c.offW()+k] = slot.Node[eqset.WIx].At(k, c.ij)
		}
	}
}

// store writes q back into the column state of one slot.
func (c *column) store(slotIx int, q []float64) {
	slot := c.p.Slot(slotIx)
	for k := 0; k < c.nLev; k++ {
		slot.Node[eqset.UIx].Set(k, c.ij, q[c.offU()+k])
		slot.Node[eqset.VIx].Set(k, c.ij, q[c.offV()+k])
		slot.Node[eqset.TIx].Set(k, c.ij, q[c.offTh()+k])
		slot.Node[eqset.RIx].Set(k, c.ij, q[c.offRho()+k])
	}
	if c.wOnEdges {
		for k := 0; k < c.nW; k++ {
			slot.REdge[eqset.WIx].Set(k, c.ij, q[c.offW()+k])
		}
	} else {
		for k := 0; k < c.nW; k++ {
			slot.Node[eqset.WIx].Set(k, c.ij, q[c.offW()+k])
		}
	}
}

// tendency evaluates the vertical tendency F(q) of the conserved column
// state into f.
func (c *column) tendency(q, f []float64) {
	var (
		g    = c.g
		ops  = g.Ops
		pc   = g.Phys
		nLev = c.nLev
		nInt = nLev + 1
	)
	for i := range f {
		f[i] = 0
	}

	rho := q[c.offRho() : c.offRho()+nLev]

	// Edge-interpolated density, velocities and theta
	ops.InterpNodeToREdge.ApplyTo(rho, c.rhoE)
	ops.InterpNodeToREdge.ApplyTo(q[c.offU():c.offU()+nLev], c.uE)
	ops.InterpNodeToREdge.ApplyTo(q[c.offV():c.offV()+nLev], c.vE)
	ops.InterpNodeToREdge.ApplyTo(q[c.offTh():c.offTh()+nLev], c.thetaE)

	// Pressure on nodes
	for k := 0; k < nLev; k++ {
		theta := q[c.offTh()+k] / rho[k]
		c.presCol[k] = eqset.Pressure(pc, rho[k], theta)
	}

	if c.wOnEdges {
		// Contravariant vertical velocity and mass flux on interfaces
		for k := 0; k < nInt; k++ {
			w := q[c.offW()+k] / c.rhoE[k]
			u := c.uE[k] / c.rhoE[k]
			v := c.vE[k] / c.rhoE[k]
			uxi := (w - u*c.dazE[k] - v*c.dbzE[k]) / c.dxzE[k]
			c.mf[k] = c.jacE[k] * c.rhoE[k] * uxi
		}

		// Continuity
		ops.DiffREdgeToNode.ApplyTo(c.mf, c.derivN)
		for k := 0; k < nLev; k++ {
			f[c.offRho()+k] -= c.derivN[k] / c.jacN[k]
		}

		// Advection of theta, u and v by the interface mass flux
		advect := func(edgeVals []float64, off int) {
			for k := 0; k < nInt; k++ {
				c.fluxCol[k] = c.mf[k] * edgeVals[k] / c.rhoE[k]
			}
			ops.DiffREdgeToNode.ApplyTo(c.fluxCol, c.derivN)
			for k := 0; k < nLev; k++ {
				f[off+k] -= c.derivN[k] / c.jacN[k]
			}
		}
		advect(c.thetaE, c.offTh())
		advect(c.uE, c.offU())
		advect(c.vE, c.offV())

		// Vertical momentum: advection, pressure gradient and gravity
		wN := c.derivN // reuse scratch for node-resident w
		wEdge := make([]float64, nInt)
		for k := 0; k < nInt; k++ {
			wEdge[k] = q[c.offW()+k] / c.rhoE[k]
		}
		ops.InterpREdgeToNode.ApplyTo(wEdge, wN)
		fluxN := make([]float64, nLev)
		for k := 0; k < nLev; k++ {
			u := q[c.offU()+k] / rho[k]
			v := q[c.offV()+k] / rho[k]
			uxiN := (wN[k] - u*c.dazN[k] - v*c.dbzN[k]) / c.dxzN[k]
			fluxN[k] = c.jacN[k] * rho[k] * wN[k] * uxiN
		}
		ops.DiffNodeToREdge.ApplyTo(fluxN, c.derivE)
		dp := make([]float64, nInt)
		ops.DiffNodeToREdge.ApplyTo(c.presCol, dp)
		for k := 0; k < nInt; k++ {
			f[c.offW()+k] -= c.derivE[k] / c.jacE[k]
			f[c.offW()+k] -= dp[k] / c.dxzE[k]
			f[c.offW()+k] -= c.rhoE[k] * pc.G
		}
	} else {
		// Everything on levels: flux-correction derivatives keep the first
		// derivative continuous on the discontinuous basis
		uxi := make([]float64, nLev)
		for k := 0; k < nLev; k++ {
			w := q[c.offW()+k] / rho[k]
			u := q[c.offU()+k] / rho[k]
			v := q[c.offV()+k] / rho[k]
			uxi[k] = (w - u*c.dazN[k] - v*c.dbzN[k]) / c.dxzN[k]
		}

		fluxN := make([]float64, nLev)
		advect := func(vals []float64, off int) {
			for k := 0; k < nLev; k++ {
				fluxN[k] = c.jacN[k] * vals[k] * uxi[k]
			}
			ops.DiffNodeToNode.ApplyTo(fluxN, c.derivN)
			for k := 0; k < nLev; k++ {
				f[off+k] -= c.derivN[k] / c.jacN[k]
			}
		}
		advect(rho, c.offRho())
		advect(q[c.offTh():c.offTh()+nLev], c.offTh())
		advect(q[c.offU():c.offU()+nLev], c.offU())
		advect(q[c.offV():c.offV()+nLev], c.offV())
		advect(q[c.offW():c.offW()+nLev], c.offW())

		ops.DiffNodeToNode.ApplyTo(c.presCol, c.derivN)
		for k := 0; k < nLev; k++ {
			f[c.offW()+k] -= c.derivN[k] / c.dxzN[k]
			f[c.offW()+k] -= rho[k] * pc.G
		}
	}

	// Rayleigh friction toward the reference state
	c.addRayleigh(q, f)
}

func (c *column) addRayleigh(q, f []float64) {
	var (
		nLev = c.nLev
	)
	for k := 0; k < nLev; k++ {
		s := c.sigmaN[k]
		if s == 0 {
			continue
		}
		f[c.offU()+k] -= s * (q[c.offU()+k] - c.refN[eqset.UIx][k])
		f[c.offV()+k] -= s * (q[c.offV()+k] - c.refN[eqset.VIx][k])
		f[c.offTh()+k] -= s * (q[c.offTh()+k] - c.refN[eqset.TIx][k])
		f[c.offRho()+k] -= s * (q[c.offRho()+k] - c.refN[eqset.RIx][k])
	}
	if c.wOnEdges {
		for k := 0; k < c.nW; k++ {
			if s := c.sigmaE[k]; s != 0 {
				f[c.offW()+k] -= s * (q[c.offW()+k] - c.refWE[k])
			}
		}
	} else {
		for k := 0; k < c.nW; k++ {
			if s := c.sigmaN[k]; s != 0 {
				f[c.offW()+k] -= s * (q[c.offW()+k] - c.refN[eqset.WIx][k])
			}
		}
	}
}

// noFlowW evaluates the bottom no-flow vertical momentum from the column's
// horizontal momentum, matching the grid boundary condition.
func (c *column) noFlowW(q []float64) float64 {
	if c.wOnEdges {
		u := c.uE[0]
		v := c.vE[0]
		if c.g.Cfg.VelocityRep == model.VelocityCovariant {
			mXi0 := c.p.ContraMetricXiREdge[0].At(0, c.ij)
			mXi1 := c.p.ContraMetricXiREdge[1].At(0, c.ij)
			mXi2 := c.p.ContraMetricXiREdge[2].At(0, c.ij)
			return -(mXi0*u + mXi1*v) / (mXi2 * c.dxzE[0])
		}
		return u*c.dazE[0] + v*c.dbzE[0]
	}
	u := q[c.offU()]
	v := q[c.offV()]
	if c.g.Cfg.VelocityRep == model.VelocityCovariant {
		mXi0 := c.p.ContraMetricXi[0].At(0, c.ij)
		mXi1 := c.p.ContraMetricXi[1].At(0, c.ij)
		mXi2 := c.p.ContraMetricXi[2].At(0, c.ij)
		return -(mXi0*u + mXi1*v) / (mXi2 * c.dxzN[0])
	}
	return u*c.dazN[0] + v*c.dbzN[0]
}

// residual evaluates R(q) = q - rhs - dtau F(q), with boundary rows pinning
// the vertical momentum to the no-flow ground and rigid lid values.
func (c *column) residual(q, rhs []float64, dtau float64, res []float64) {
	f := make([]float64, c.nq)
	c.tendency(q, f)
	for i := range res {
		res[i] = q[i] - rhs[i] - dtau*f[i]
	}

	// Boundary rows replace the momentum equation
	res[c.offW()] = q[c.offW()] - c.noFlowW(q)
	res[c.offW()+c.nW-1] = q[c.offW()+c.nW-1]
}

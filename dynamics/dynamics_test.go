package dynamics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratus-model/stratus/eqset"
	"github.com/stratus-model/stratus/grid"
	"github.com/stratus-model/stratus/model"
	"github.com/stratus-model/stratus/phys"
	"github.com/stratus-model/stratus/testcase"
)

func bubbleGrid(t *testing.T, nLev int, stagger model.VerticalStaggering) *grid.Grid {
	t.Helper()
	tc := testcase.NewThermalBubble()
	cfg := grid.Config{
		Bounds:          tc.Bounds(),
		NElemA:          4,
		NElemB:          1,
		NLev:            nLev,
		HorizontalOrder: 4,
		VerticalOrder:   1,
		PeriodicA:       true,
		PeriodicB:       true,
		Staggering:      stagger,
		NumStateSlots:   6,
	}
	g, err := grid.New(phys.New(), cfg, tc.ZTop(), nil)
	require.NoError(t, err)
	g.InitializeData()
	require.NoError(t, g.EvaluateTestCase(tc, 0, 0))
	return g
}

// A horizontally uniform state has no horizontal tendency.
func TestHorizontalTendencyUniform(t *testing.T) {
	g := bubbleGrid(t, 16, model.StaggerCharneyPhillips)
	h := NewHorizontal(g, 0, 0)

	// Replace the bubble with its horizontally uniform reference state
	for _, p := range g.Patches {
		for c := 0; c < eqset.NumComponents; c++ {
			copy(p.Slot(0).Node[c].DataP(), p.RefNode[c].DataP())
			copy(p.Slot(0).REdge[c].DataP(), p.RefREdge[c].DataP())
		}
	}

	h.Tendency(0, 1)

	for _, p := range g.Patches {
		tend := p.Slot(1)
		for c := 0; c < eqset.NumComponents; c++ {
			for k := 0; k < g.NLevels(); k++ {
				for i := p.Box.AInteriorBegin(); i < p.Box.AInteriorEnd(); i++ {
					for j := p.Box.BInteriorBegin(); j < p.Box.BInteriorEnd(); j++ {
						assert.InDelta(t, 0., tend.Node[c].At(k, p.IJ(i, j)), 1.e-6,
							"component %d level %d", c, k)
					}
				}
			}
		}
	}
}

// The hydrostatically balanced reference state has a small vertical momentum
// residual, bounded by the discretization error, and no mass or theta
// tendency.
func TestVerticalTendencyHydrostatic(t *testing.T) {
	for _, stagger := range []model.VerticalStaggering{
		model.StaggerLevels, model.StaggerCharneyPhillips,
	} {
		g := bubbleGrid(t, 64, stagger)
		v := NewVertical(g, DefaultSolverOptions())

		v.Tendency(0, 1)

		for _, p := range g.Patches {
			tend := p.Slot(1)
			i := p.Box.AInteriorBegin() + 1
			j := p.Box.BInteriorBegin()
			ij := p.IJ(i, j)
			for k := 0; k < g.NLevels(); k++ {
				assert.InDelta(t, 0., tend.Node[eqset.RIx].At(k, ij), 1.e-8,
					"stagger %v rho level %d", stagger, k)
				assert.InDelta(t, 0., tend.Node[eqset.TIx].At(k, ij), 1.e-8,
					"stagger %v theta level %d", stagger, k)
			}
			// Momentum residual bounded by discretization error of the
			// pressure derivative
			if stagger == model.StaggerLevels {
				for k := 1; k < g.NLevels()-1; k++ {
					assert.InDelta(t, 0., tend.Node[eqset.WIx].At(k, ij), 0.2,
						"stagger %v w level %d", stagger, k)
				}
			} else {
				for k := 1; k < g.NInterfaces()-1; k++ {
					assert.InDelta(t, 0., tend.REdge[eqset.WIx].At(k, ij), 0.2,
						"stagger %v w interface %d", stagger, k)
				}
			}
		}
	}
}

// The column solver converges on a gently perturbed column and leaves a
// small residual.
func TestImplicitColumnSolve(t *testing.T) {
	g := bubbleGrid(t, 16, model.StaggerCharneyPhillips)
	v := NewVertical(g, DefaultSolverOptions())

	// Slot 1 = rhs (the unperturbed state); slot 0 = initial guess
	for _, p := range g.Patches {
		p.CopySlot(1, 0)
	}

	dtau := 0.05
	require.NoError(t, v.SolveImplicit(1, 0, dtau))

	// Verify the residual at one interior column
	p := g.Patches[0]
	i := p.Box.AInteriorBegin() + 2
	j := p.Box.BInteriorBegin()
	ij := p.IJ(i, j)

	c := newTestColumn(g, p, ij)
	q := make([]float64, c.nq)
	rhs := make([]float64, c.nq)
	res := make([]float64, c.nq)
	c.load(0, q)
	c.load(1, rhs)
	c.residual(q, rhs, dtau, res)
	assert.Less(t, norm2(res), 1.e-6)
}

func newTestColumn(g *grid.Grid, p *grid.Patch, ij int) *column {
	return newColumn(g, p, ij)
}

// Non-convergence surfaces as a recoverable solver error.
func TestSolverNonConvergenceIsRecoverable(t *testing.T) {
	g := bubbleGrid(t, 16, model.StaggerCharneyPhillips)
	opts := DefaultSolverOptions()
	opts.MaxNewton = 1
	opts.MaxKrylov = 1
	opts.Tolerance = 1.e-15
	opts.AbsTolerance = 1.e-30
	v := NewVertical(g, opts)

	// A large dtau with a perturbed guess defeats a single Newton step
	for _, p := range g.Patches {
		p.CopySlot(1, 0)
		p.Slot(0).Node[eqset.WIx].AddScalar(5.0)
		p.Slot(0).REdge[eqset.WIx].AddScalar(5.0)
	}
	err := v.SolveImplicit(1, 0, 500.0)
	if err != nil {
		assert.True(t, model.IsRecoverable(err))
	}
}

// GMRES with the block preconditioner solves the linearized system well
// enough that one Newton step contracts the residual strongly.
func TestNewtonContraction(t *testing.T) {
	g := bubbleGrid(t, 16, model.StaggerCharneyPhillips)
	p := g.Patches[0]
	ij := p.IJ(p.Box.AInteriorBegin()+1, p.Box.BInteriorBegin())

	c := newColumn(g, p, ij)
	q := make([]float64, c.nq)
	rhs := make([]float64, c.nq)
	res := make([]float64, c.nq)
	c.load(0, q)
	copy(rhs, q)

	// Perturb w away from the solution
	for k := 1; k < c.nW-1; k++ {
		q[c.offW()+k] += 0.1
	}
	dtau := 0.05

	c.residual(q, rhs, dtau, res)
	n0 := norm2(res)
	require.Greater(t, n0, 0.)

	lu := c.buildPreconditioner(q, dtau)
	dq, ok := c.gmres(q, rhs, dtau, res, lu, DefaultSolverOptions())
	require.True(t, ok)
	for i := range q {
		q[i] += dq[i]
	}
	c.residual(q, rhs, dtau, res)
	assert.Less(t, norm2(res), 0.5*n0)
}

// Hyperviscosity damps a rough field: the damping term opposes the high
// frequency component.
func TestHyperviscositySign(t *testing.T) {
	g := bubbleGrid(t, 8, model.StaggerCharneyPhillips)
	h := NewHorizontal(g, 1.0, 1.0)
	g.Cfg.ReferenceLength = 1000.

	// Superimpose a rough theta perturbation
	for _, p := range g.Patches {
		th := p.Slot(0).Node[eqset.TIx]
		for k := 0; k < g.NLevels(); k++ {
			for ij := 0; ij < p.Box.ATotalWidth()*p.Box.BTotalWidth(); ij++ {
				x := p.XNode.AtVec(ij)
				th.Set(k, ij, th.At(k, ij)+5.*math.Sin(16.*math.Pi*x/1000.))
			}
		}
	}

	h.Tendency(0, 1)

	// The damping pushes theta back toward smoothness: tendency anti-
	// correlates with the rough component
	var corr float64
	for _, p := range g.Patches {
		tend := p.Slot(1).Node[eqset.TIx]
		for i := p.Box.AInteriorBegin(); i < p.Box.AInteriorEnd(); i++ {
			for j := p.Box.BInteriorBegin(); j < p.Box.BInteriorEnd(); j++ {
				ij := p.IJ(i, j)
				rough := 5. * math.Sin(16.*math.Pi*p.XNode.AtVec(ij)/1000.)
				corr += rough * tend.At(0, ij)
			}
		}
	}
	assert.Less(t, corr, 0.)
}

package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratus-model/stratus/colop"
	"github.com/stratus-model/stratus/eqset"
	"github.com/stratus-model/stratus/model"
	"github.com/stratus-model/stratus/phys"
	"github.com/stratus-model/stratus/testcase"
	"github.com/stratus-model/stratus/utils"
)

func bubbleGrid(t *testing.T, nPatchA int) (*Grid, testcase.TestCase) {
	t.Helper()
	tc := testcase.NewThermalBubble()
	cfg := Config{
		Bounds:          tc.Bounds(),
		NElemA:          4,
		NElemB:          2,
		NLev:            8,
		HorizontalOrder: 4,
		VerticalOrder:   1,
		NPatchA:         nPatchA,
		PeriodicA:       true,
		PeriodicB:       true,
		Staggering:      model.StaggerCharneyPhillips,
		NumStateSlots:   4,
	}
	g, err := New(phys.New(), cfg, tc.ZTop(), nil)
	require.NoError(t, err)
	g.InitializeData()
	require.NoError(t, g.EvaluateTestCase(tc, 0, 0))
	return g, tc
}

func TestNewGridValidation(t *testing.T) {
	tc := testcase.NewThermalBubble()
	cfg := Config{
		Bounds:          tc.Bounds(),
		NElemA:          4,
		NElemB:          2,
		NLev:            7,
		HorizontalOrder: 4,
		VerticalOrder:   2,
	}
	_, err := New(phys.New(), cfg, tc.ZTop(), nil)
	require.Error(t, err)
	cat, ok := model.CategoryOf(err)
	assert.True(t, ok)
	assert.Equal(t, model.ConfigurationError, cat)

	// 2D problems require vertical order 1
	cfg.NLev = 8
	cfg.Dimensionality = 2
	_, err = New(phys.New(), cfg, tc.ZTop(), nil)
	require.Error(t, err)
}

func TestNormalizedAreas(t *testing.T) {
	g, _ := bubbleGrid(t, 1)

	var wn, we float64
	for _, w := range g.WNode {
		wn += w
	}
	for _, w := range g.WEdge {
		we += w
	}
	assert.InDelta(t, 1., wn, 1.e-13)
	assert.InDelta(t, 1., we, 1.e-13)
}

// Metric identity on a flat-topography box: the contravariant and covariant
// metrics are exact inverses and J = dz/dxi.
func TestMetricIdentityFlat(t *testing.T) {
	g, _ := bubbleGrid(t, 1)
	p := g.Patches[0]

	nLev := g.NLevels()
	for k := 0; k < nLev; k++ {
		for _, ij := range []int{
			p.IJ(p.Box.AInteriorBegin(), p.Box.BInteriorBegin()),
			p.IJ(p.Box.AInteriorEnd()-1, p.Box.BInteriorEnd()-1),
		} {
			con := utils.NewMatrix(3, 3, []float64{
				p.ContraMetricA[0].At(k, ij), p.ContraMetricA[1].At(k, ij), p.ContraMetricA[2].At(k, ij),
				p.ContraMetricB[0].At(k, ij), p.ContraMetricB[1].At(k, ij), p.ContraMetricB[2].At(k, ij),
				p.ContraMetricXi[0].At(k, ij), p.ContraMetricXi[1].At(k, ij), p.ContraMetricXi[2].At(k, ij),
			})
			cov := utils.NewMatrix(3, 3, []float64{
				p.CovMetricA[0].At(k, ij), p.CovMetricA[1].At(k, ij), p.CovMetricA[2].At(k, ij),
				p.CovMetricB[0].At(k, ij), p.CovMetricB[1].At(k, ij), p.CovMetricB[2].At(k, ij),
				p.CovMetricXi[0].At(k, ij), p.CovMetricXi[1].At(k, ij), p.CovMetricXi[2].At(k, ij),
			})
			prod := con.Mul(cov)
			for r := 0; r < 3; r++ {
				for c := 0; c < 3; c++ {
					want := 0.
					if r == c {
						want = 1.
					}
					assert.InDelta(t, want, prod.At(r, c), 1.e-14)
				}
			}

			// J > 0 and equals dz/dxi on the flat box
			assert.Greater(t, p.Jacobian.At(k, ij), 0.)
			assert.InDelta(t, g.ZTop, p.Jacobian.At(k, ij), 1.e-9)
		}
	}
}

// Metric inverse identity with real topography.
func TestMetricIdentityTerrain(t *testing.T) {
	tc := testcase.NewScharMountain()
	cfg := Config{
		Bounds:          tc.Bounds(),
		NElemA:          8,
		NElemB:          1,
		NLev:            10,
		HorizontalOrder: 4,
		VerticalOrder:   1,
		PeriodicA:       true,
		PeriodicB:       true,
		Staggering:      model.StaggerCharneyPhillips,
	}
	g, err := New(phys.New(), cfg, tc.ZTop(), nil)
	require.NoError(t, err)
	g.InitializeData()
	require.NoError(t, g.EvaluateTestCase(tc, 0, 0))

	p := g.Patches[0]
	ij := p.IJ(p.Box.AInteriorBegin()+5, p.Box.BInteriorBegin())
	for k := 0; k < g.NLevels(); k++ {
		con := utils.NewMatrix(3, 3, []float64{
			p.ContraMetricA[0].At(k, ij), p.ContraMetricA[1].At(k, ij), p.ContraMetricA[2].At(k, ij),
			p.ContraMetricB[0].At(k, ij), p.ContraMetricB[1].At(k, ij), p.ContraMetricB[2].At(k, ij),
			p.ContraMetricXi[0].At(k, ij), p.ContraMetricXi[1].At(k, ij), p.ContraMetricXi[2].At(k, ij),
		})
		cov := utils.NewMatrix(3, 3, []float64{
			p.CovMetricA[0].At(k, ij), p.CovMetricA[1].At(k, ij), p.CovMetricA[2].At(k, ij),
			p.CovMetricB[0].At(k, ij), p.CovMetricB[1].At(k, ij), p.CovMetricB[2].At(k, ij),
			p.CovMetricXi[0].At(k, ij), p.CovMetricXi[1].At(k, ij), p.CovMetricXi[2].At(k, ij),
		})
		prod := con.Mul(cov)
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				want := 0.
				if r == c {
					want = 1.
				}
				assert.InDelta(t, want, prod.At(r, c), 1.e-10)
			}
		}
		assert.Greater(t, p.Jacobian.At(k, ij), 0.)
	}
}

// Direct stiffness summation is idempotent and conserves the area-weighted
// integral, within one patch and across patch seams.
func TestDSSIdempotentAndConservative(t *testing.T) {
	for _, nPatchA := range []int{1, 2} {
		g, _ := bubbleGrid(t, nPatchA)

		// Seed a deterministic non-continuous field
		for _, p := range g.Patches {
			u := p.Slots[0].Node[eqset.UIx]
			for k := 0; k < g.NLevels(); k++ {
				for ij := 0; ij < p.nIJ; ij++ {
					x := p.XNode.AtVec(ij)
					y := p.YNode.AtVec(ij)
					u.Set(k, ij, math.Sin(x*0.01)+math.Cos(y*0.007)+float64(k)*0.1+float64(ij%7))
				}
			}
		}

		integral := func() (s float64) {
			for _, p := range g.Patches {
				u := p.Slots[0].Node[eqset.UIx]
				for k := 0; k < g.NLevels(); k++ {
					for i := p.Box.AInteriorBegin(); i < p.Box.AInteriorEnd(); i++ {
						for j := p.Box.BInteriorBegin(); j < p.Box.BInteriorEnd(); j++ {
							ij := p.IJ(i, j)
							s += p.ElementArea.At(k, ij) * u.At(k, ij)
						}
					}
				}
			}
			return
		}

		sel := func(p *Patch) utils.Matrix { return p.Slots[0].Node[eqset.UIx] }

		before := integral()
		g.ApplyDSSField(sel, KindScalar)
		after := integral()
		assert.InDelta(t, before, after, math.Abs(before)*1.e-13,
			"conservation with %d patches", nPatchA)

		// Idempotence: a second application leaves the interior unchanged
		snapshot := make(map[*Patch][]float64)
		for _, p := range g.Patches {
			snapshot[p] = append([]float64{}, sel(p).DataP()...)
		}
		g.ApplyDSSField(sel, KindScalar)
		for _, p := range g.Patches {
			u := sel(p)
			for k := 0; k < g.NLevels(); k++ {
				for i := p.Box.AInteriorBegin(); i < p.Box.AInteriorEnd(); i++ {
					for j := p.Box.BInteriorBegin(); j < p.Box.BInteriorEnd(); j++ {
						ij := p.IJ(i, j)
						assert.InDelta(t, snapshot[p][k*p.nIJ+ij], u.At(k, ij), 1.e-14)
					}
				}
			}
		}

		// Coincident element edge nodes agree after DSS
		p := g.Patches[0]
		u := sel(p)
		i2 := p.Box.AInteriorBegin() + p.Box.Order
		i1 := i2 - 1
		for k := 0; k < g.NLevels(); k++ {
			assert.Equal(t, u.At(k, p.IJ(i1, p.Box.BInteriorBegin()+1)),
				u.At(k, p.IJ(i2, p.Box.BInteriorBegin()+1)))
		}
	}
}

// After boundary conditions, the contravariant velocity has no component
// along the upward surface normal at the ground.
func TestNoFlowBoundaryCondition(t *testing.T) {
	tc := testcase.NewScharMountain()
	cfg := Config{
		Bounds:          tc.Bounds(),
		NElemA:          8,
		NElemB:          1,
		NLev:            10,
		HorizontalOrder: 4,
		VerticalOrder:   1,
		PeriodicA:       true,
		PeriodicB:       true,
		Staggering:      model.StaggerCharneyPhillips,
	}
	g, err := New(phys.New(), cfg, tc.ZTop(), nil)
	require.NoError(t, err)
	g.InitializeData()
	require.NoError(t, g.EvaluateTestCase(tc, 0, 0))

	g.ApplyBoundaryConditions(0)

	for _, p := range g.Patches {
		slot := p.Slots[0]
		for i := p.Box.AInteriorBegin(); i < p.Box.AInteriorEnd(); i++ {
			for j := p.Box.BInteriorBegin(); j < p.Box.BInteriorEnd(); j++ {
				ij := p.IJ(i, j)
				u := slot.REdge[eqset.UIx].At(0, ij)
				v := slot.REdge[eqset.VIx].At(0, ij)
				w := slot.REdge[eqset.WIx].At(0, ij)
				// normal ~ (-dz/da, -dz/db, 1)
				dot := w - u*p.DerivRREdge[0].At(0, ij) - v*p.DerivRREdge[1].At(0, ij)
				assert.InDelta(t, 0., dot, 1.e-12)

				// Rigid lid
				assert.Equal(t, 0., slot.REdge[eqset.WIx].At(g.NLevels(), ij))
			}
		}
	}
}

// The grid's derivative operators annihilate constants, and the
// levels-to-interfaces interpolation reproduces the linear reference
// coordinate.
func TestColumnOperatorSet(t *testing.T) {
	g, _ := bubbleGrid(t, 1)

	constN := utils.NewVectorConstant(g.NLevels(), 3.5)
	constE := utils.NewVectorConstant(g.NInterfaces(), 3.5)

	for name, pair := range map[string]struct {
		op *colop.Operator
		in utils.Vector
	}{
		"diff node to node":   {g.Ops.DiffNodeToNode, constN},
		"diff node to redge":  {g.Ops.DiffNodeToREdge, constN},
		"diff redge to node":  {g.Ops.DiffREdgeToNode, constE},
		"diff redge to redge": {g.Ops.DiffREdgeToREdge, constE},
	} {
		out := pair.op.Apply(pair.in)
		for l := 0; l < out.Len(); l++ {
			assert.InDelta(t, 0., out.AtVec(l), 1.e-12, "%s row %d", name, l)
		}
	}

	// Interpolation reproduces the reference coordinate
	ord := utils.NewVector(g.NLevels(), append([]float64{}, g.REtaLevels...))
	out := g.Ops.InterpNodeToREdge.Apply(ord)
	for l := 0; l <= g.NLevels(); l++ {
		assert.InDelta(t, g.REtaInterfaces[l], out.AtVec(l), 1.e-12)
	}
}

func TestInterpolateData(t *testing.T) {
	g, _ := bubbleGrid(t, 1)
	p := g.Patches[0]

	// theta (rho theta in conservative form) is smooth; sampling at a node
	// reproduces the nodal value
	iA := p.Box.AInteriorBegin() + 1
	jB := p.Box.BInteriorBegin() + 1
	alpha := []float64{p.Box.ANode(iA)}
	beta := []float64{p.Box.BNode(jB)}

	out, err := p.InterpolateData(alpha, beta, InterpState, 0, false)
	require.NoError(t, err)
	ij := p.IJ(iA, jB)
	for k := 0; k < g.NLevels(); k++ {
		assert.InDelta(t, p.Slots[0].Node[eqset.TIx].At(k, ij),
			out[eqset.TIx].At(k, 0), 1.e-9)
	}

	// Subtracting the reference leaves only the bubble perturbation
	out, err = p.InterpolateData(alpha, beta, InterpState, 0, true)
	require.NoError(t, err)
	for k := 0; k < g.NLevels(); k++ {
		diff := p.Slots[0].Node[eqset.TIx].At(k, ij) - p.RefNode[eqset.TIx].At(k, ij)
		assert.InDelta(t, diff, out[eqset.TIx].At(k, 0), 1.e-9)
	}

	// Points outside the patch are rejected
	_, err = p.InterpolateData([]float64{-999999}, []float64{0}, InterpState, 0, false)
	require.Error(t, err)
	cat, _ := model.CategoryOf(err)
	assert.Equal(t, model.MeshError, cat)
}

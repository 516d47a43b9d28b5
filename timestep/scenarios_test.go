package timestep

import (
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratus-model/stratus/dynamics"
	"github.com/stratus-model/stratus/eqset"
	"github.com/stratus-model/stratus/grid"
	"github.com/stratus-model/stratus/model"
	"github.com/stratus-model/stratus/phys"
	"github.com/stratus-model/stratus/testcase"
)

// The thermal bubble setup is mirror symmetric about x = 500; a few steps
// of the full HEVI pipeline must preserve that symmetry.
func TestBubbleSymmetry(t *testing.T) {
	in := makeIntegrator(t, ARK2, 0.05)
	g := in.Grid

	for s := 0; s < 3; s++ {
		require.NoError(t, in.Step())
	}

	p := g.Patches[0]
	theta := p.Slot(SlotActive).Node[eqset.TIx]

	// Pair interior nodes with their mirror images by coordinate
	type node struct{ i, j int }
	mirror := make(map[node]node)
	for i := p.Box.AInteriorBegin(); i < p.Box.AInteriorEnd(); i++ {
		x := p.Box.ANode(i)
		xm := 1000. - x
		for im := p.Box.AInteriorBegin(); im < p.Box.AInteriorEnd(); im++ {
			if math.Abs(p.Box.ANode(im)-xm) < 1.e-9 {
				mirror[node{i, p.Box.BInteriorBegin()}] = node{im, p.Box.BInteriorBegin()}
				break
			}
		}
	}
	require.NotEmpty(t, mirror)

	for n, m := range mirror {
		for k := 0; k < g.NLevels(); k++ {
			v1 := theta.At(k, p.IJ(n.i, n.j))
			v2 := theta.At(k, p.IJ(m.i, m.j))
			rel := math.Abs(v1 - v2)
			if s := math.Abs(v1); s > 1 {
				rel /= s
			}
			assert.Less(t, rel, 1.e-3, "level %d", k)
		}
	}
}

// Literal long-running validation scenarios. These integrate hundreds of
// model seconds and are gated behind an environment switch.
func TestThermalBubbleScenario(t *testing.T) {
	if os.Getenv("STRATUS_LONG_TESTS") == "" {
		t.Skip("set STRATUS_LONG_TESTS to run the 700 s bubble scenario")
	}

	tc := testcase.NewThermalBubble()
	cfg := grid.Config{
		Bounds:          tc.Bounds(),
		NElemA:          9, // 36 base DOFs at order 4
		NElemB:          1,
		NLev:            72,
		HorizontalOrder: 4,
		VerticalOrder:   1,
		PeriodicA:       true,
		PeriodicB:       true,
		Staggering:      model.StaggerCharneyPhillips,
		ReferenceLength: 1100000.0,
		NumStateSlots:   RequiredSlots(ARK2),
	}
	g, err := grid.New(phys.New(), cfg, tc.ZTop(), nil)
	require.NoError(t, err)
	g.InitializeData()
	require.NoError(t, g.EvaluateTestCase(tc, 0, SlotActive))
	g.ApplyDSS(SlotActive)
	g.ApplyBoundaryConditions(SlotActive)

	h := dynamics.NewHorizontal(g, 1.0, 1.0)
	v := dynamics.NewVertical(g, dynamics.DefaultSolverOptions())
	in, err := New(g, h, v, ARK2, 0.01, nil)
	require.NoError(t, err)

	for in.Time < 700.-1.e-9 {
		require.NoError(t, in.Step())
	}

	// Locate the maximum potential temperature perturbation
	var maxPert, zAtMax float64
	p := g.Patches[0]
	for k := 0; k < g.NLevels(); k++ {
		for i := p.Box.AInteriorBegin(); i < p.Box.AInteriorEnd(); i++ {
			for j := p.Box.BInteriorBegin(); j < p.Box.BInteriorEnd(); j++ {
				ij := p.IJ(i, j)
				rho := p.Slot(SlotActive).Node[eqset.RIx].At(k, ij)
				theta := p.Slot(SlotActive).Node[eqset.TIx].At(k, ij) / rho
				refTheta := p.RefNode[eqset.TIx].At(k, ij) / p.RefNode[eqset.RIx].At(k, ij)
				if pert := theta - refTheta; pert > maxPert {
					maxPert = pert
					zAtMax = p.ZLevels.At(k, ij)
				}
			}
		}
	}

	assert.InDelta(t, 700., zAtMax, 100.)
	assert.Greater(t, maxPert, 0.48)
	assert.Less(t, maxPert, 0.52)
}

func TestGravityWaveScenario(t *testing.T) {
	if os.Getenv("STRATUS_LONG_TESTS") == "" {
		t.Skip("set STRATUS_LONG_TESTS to run the 3000 s gravity wave scenario")
	}

	tc := testcase.NewGravityWave()
	cfg := grid.Config{
		Bounds:          tc.Bounds(),
		NElemA:          75,
		NElemB:          1,
		NLev:            20,
		HorizontalOrder: 4,
		VerticalOrder:   1,
		PeriodicA:       true,
		PeriodicB:       true,
		Staggering:      model.StaggerCharneyPhillips,
		ReferenceLength: 1100000.0,
		NumStateSlots:   RequiredSlots(ARK3),
	}
	g, err := grid.New(phys.New(), cfg, tc.ZTop(), nil)
	require.NoError(t, err)
	g.InitializeData()
	require.NoError(t, g.EvaluateTestCase(tc, 0, SlotActive))
	g.ApplyDSS(SlotActive)
	g.ApplyBoundaryConditions(SlotActive)

	h := dynamics.NewHorizontal(g, 1.0, 1.0)
	v := dynamics.NewVertical(g, dynamics.DefaultSolverOptions())
	in, err := New(g, h, v, ARK3, 0.5, nil)
	require.NoError(t, err)

	for in.Time < 3000.-1.e-9 {
		require.NoError(t, in.Step())
	}

	// L2 error of w against the linear analytic solution after 3000 s
	var l2, vol float64
	p := g.Patches[0]
	for k := 0; k < g.NInterfaces(); k++ {
		for i := p.Box.AInteriorBegin(); i < p.Box.AInteriorEnd(); i++ {
			ij := p.IJ(i, p.Box.BInteriorBegin())
			rho := p.Slot(SlotActive).REdge[eqset.RIx].At(k, ij)
			w := p.Slot(SlotActive).REdge[eqset.WIx].At(k, ij) / rho
			exact := gravityWaveAnalyticW(tc, phys.New(),
				p.XNode.AtVec(ij), p.ZInterfaces.At(k, ij), in.Time)
			diff := w - exact
			l2 += diff * diff
			vol++
		}
	}
	assert.Less(t, math.Sqrt(l2/vol), 2.e-4)
}

// gravityWaveAnalyticW evaluates the linear Boussinesq solution for the
// vertical velocity of the inertia-gravity wave case: the initial buoyancy
// perturbation is expanded into horizontal Fourier modes against the first
// vertical mode sin(pi z / H); each mode starts at rest and oscillates at
// the dispersion frequency N k / sqrt(k^2 + m^2) while advecting with the
// mean flow. The Lorentzian spectrum has the closed form pi a exp(-|k| a).
func gravityWaveAnalyticW(gw *testcase.GravityWave, pc phys.Constants, x, z, t float64) float64 {
	var (
		b0 = pc.G * gw.DTheta / gw.Theta0
		m  = math.Pi / gw.H
		w  float64
	)
	for n := 1; ; n++ {
		k := 2. * math.Pi * float64(n) / gw.L
		// Fourier coefficient of 1/(1+x'^2/a^2) on the periodic domain
		c := 2. * math.Pi * gw.A / gw.L * math.Exp(-k*gw.A)
		if c < 1.e-18 && n > 8 {
			break
		}
		om := gw.N * k / math.Sqrt(k*k+m*m)
		w += c * (om / (gw.N * gw.N)) * math.Sin(om*t) *
			math.Cos(k*(x-gw.XC-gw.U0*t))
	}
	return b0 * w * math.Sin(m*z)
}

func TestScharMountainScenario(t *testing.T) {
	if os.Getenv("STRATUS_LONG_TESTS") == "" {
		t.Skip("set STRATUS_LONG_TESTS to run the Schar mountain wave scenario")
	}

	tc := testcase.NewScharMountain()
	cfg := grid.Config{
		Bounds:          tc.Bounds(),
		NElemA:          50,
		NElemB:          1,
		NLev:            60,
		HorizontalOrder: 4,
		VerticalOrder:   1,
		PeriodicA:       true,
		PeriodicB:       true,
		Staggering:      model.StaggerCharneyPhillips,
		ReferenceLength: 1100000.0,
		NumStateSlots:   RequiredSlots(ARK3),
	}
	g, err := grid.New(phys.New(), cfg, tc.ZTop(), nil)
	require.NoError(t, err)
	g.InitializeData()
	require.NoError(t, g.EvaluateTestCase(tc, 0, SlotActive))
	g.ApplyDSS(SlotActive)
	g.ApplyBoundaryConditions(SlotActive)

	h := dynamics.NewHorizontal(g, 1.0, 1.0)
	v := dynamics.NewVertical(g, dynamics.DefaultSolverOptions())
	in, err := New(g, h, v, ARK3, 0.5, nil)
	require.NoError(t, err)

	for in.Time < 3600.-1.e-9 {
		require.NoError(t, in.Step())
	}

	// The wave pattern stays bounded below the sponge and is absorbed
	// within it
	p := g.Patches[0]
	for k := 0; k < g.NInterfaces(); k++ {
		for i := p.Box.AInteriorBegin(); i < p.Box.AInteriorEnd(); i++ {
			ij := p.IJ(i, p.Box.BInteriorBegin())
			z := p.ZInterfaces.At(k, ij)
			rho := p.Slot(SlotActive).REdge[eqset.RIx].At(k, ij)
			w := p.Slot(SlotActive).REdge[eqset.WIx].At(k, ij) / rho
			if z < 12000. {
				assert.Less(t, math.Abs(w), 2.5, "z=%v", z)
			} else if z > 19000. {
				assert.Less(t, math.Abs(w), 0.5, "sponge z=%v", z)
			}
		}
	}
}

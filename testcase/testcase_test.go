package testcase

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stratus-model/stratus/eqset"
	"github.com/stratus-model/stratus/phys"
)

// hydrostaticResidual measures d p / d z + rho g with centered differences
// of the case's reference state.
func hydrostaticResidual(tc TestCase, pc phys.Constants, z float64) float64 {
	var (
		h     = 0.5
		lo    = make([]float64, eqset.NumComponents)
		hi    = make([]float64, eqset.NumComponents)
		state = make([]float64, eqset.NumComponents)
	)
	tc.EvaluateReferenceState(pc, z-h, 0, 0, lo)
	tc.EvaluateReferenceState(pc, z+h, 0, 0, hi)
	tc.EvaluateReferenceState(pc, z, 0, 0, state)

	dpdz := (eqset.Pressure(pc, hi[eqset.RIx], hi[eqset.TIx]) -
		eqset.Pressure(pc, lo[eqset.RIx], lo[eqset.TIx])) / (2 * h)
	return dpdz + state[eqset.RIx]*pc.G
}

func TestThermalBubble(t *testing.T) {
	pc := phys.New()
	tb := NewThermalBubble()

	assert.Equal(t, 0., tb.EvaluateTopography(pc, 500, 0))
	assert.Equal(t, 1000., tb.ZTop())

	// Perturbation peaks at the bubble center and vanishes outside RC
	state := make([]float64, eqset.NumComponents)
	tb.EvaluatePointwiseState(pc, 0, tb.ZC, tb.XC, 0, state, nil)
	assert.InDelta(t, 300.5, state[eqset.TIx], 1.e-12)
	tb.EvaluatePointwiseState(pc, 0, tb.ZC, tb.XC+300, 0, state, nil)
	assert.Equal(t, 300., state[eqset.TIx])

	// Reference state is hydrostatically balanced
	for _, z := range []float64{100, 350, 900} {
		assert.InDelta(t, 0., hydrostaticResidual(tb, pc, z), 1.e-4, "z=%v", z)
	}
}

func TestGravityWave(t *testing.T) {
	pc := phys.New()
	gw := NewGravityWave()

	state := make([]float64, eqset.NumComponents)
	gw.EvaluatePointwiseState(pc, 0, 5000, gw.XC, 0, state, nil)
	thetaBar := gw.Theta0 * math.Exp(gw.N*gw.N/pc.G*5000)
	assert.InDelta(t, thetaBar+gw.DTheta, state[eqset.TIx], 1.e-9)
	assert.Equal(t, gw.U0, state[eqset.UIx])

	for _, z := range []float64{500, 5000, 9500} {
		assert.InDelta(t, 0., hydrostaticResidual(gw, pc, z), 1.e-4, "z=%v", z)
	}
}

func TestScharMountain(t *testing.T) {
	pc := phys.New()
	sm := NewScharMountain()

	// Ridge peaks at x=0 and decays under the envelope
	assert.InDelta(t, sm.H0, sm.EvaluateTopography(pc, 0, 0), 1.e-12)
	assert.Less(t, sm.EvaluateTopography(pc, 20000, 0), 1.)
	assert.GreaterOrEqual(t, sm.EvaluateTopography(pc, 3000, 0), 0.)

	// Sponge is zero below the damping base and rises to Sigma0 at the top
	assert.Equal(t, 0., sm.EvaluateRayleighStrength(10000, 0, 0))
	assert.InDelta(t, sm.Sigma0, sm.EvaluateRayleighStrength(sm.ZTopV, 0, 0), 1.e-12)
	assert.True(t, sm.HasRayleighFriction())

	for _, z := range []float64{1000, 11000, 20000} {
		assert.InDelta(t, 0., hydrostaticResidual(sm, pc, z), 1.e-4, "z=%v", z)
	}
}

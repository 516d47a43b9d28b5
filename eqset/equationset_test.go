package eqset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratus-model/stratus/phys"
)

func TestConvertComponentsRoundTrip(t *testing.T) {
	es, err := New(3, 0)
	require.NoError(t, err)

	state := []float64{10, -3, 300, 0.5, 1.2}
	orig := append([]float64{}, state...)

	es.ConvertToConservative(state)
	assert.InDelta(t, 12., state[UIx], 1.e-12)
	assert.InDelta(t, 360., state[TIx], 1.e-12)
	assert.Equal(t, 1.2, state[RIx])

	es.ConvertToPrimitive(state)
	for c := range state {
		assert.InDelta(t, orig[c], state[c], 1.e-12)
	}

	_, err = New(4, 0)
	assert.Error(t, err)
}

func TestPressureAndSoundSpeed(t *testing.T) {
	pc := phys.New()

	// At the reference state rho theta = p0 / Rd, pressure equals p0
	rho := pc.P0 / (pc.Rd * 300.)
	p := Pressure(pc, rho, 300.)
	assert.InDelta(t, pc.P0, p, 1.e-6)
	assert.InDelta(t, 1., Exner(pc, p), 1.e-12)

	// c^2 = Gamma p / rho at that point
	c2 := SoundSpeedSquared(pc, rho, 300.)
	assert.InDelta(t, pc.Gamma()*p/rho, c2, 1.e-6)

	// dP/d(rho theta) is consistent with a finite difference
	rt := rho * 300.
	h := rt * 1.e-6
	fd := (Pressure(pc, (rt+h)/300., 300.) - Pressure(pc, (rt-h)/300., 300.)) / (2 * h)
	assert.InDelta(t, fd, DPressureDRhoTheta(pc, rt), math.Abs(fd)*1.e-5)
}

package testcase

import (
	"math"

	"github.com/stratus-model/stratus/eqset"
	"github.com/stratus-model/stratus/phys"
)

// GravityWave is the inertia-gravity wave of Skamarock and Klemp (1994): a
// small potential temperature perturbation advected through a uniformly
// stratified channel, with a known linear solution.
type GravityWave struct {
	Theta0 float64 // surface potential temperature
	N      float64 // Brunt-Vaisala frequency
	U0     float64 // background flow
	DTheta float64 // perturbation amplitude
	A      float64 // perturbation half width
	XC     float64 // perturbation center
	H      float64 // channel depth
	L      float64 // channel length
}

func NewGravityWave() *GravityWave {
	return &GravityWave{
		Theta0: 300.,
		N:      0.01,
		U0:     20.,
		DTheta: 0.01,
		A:      5000.,
		XC:     100000.,
		H:      10000.,
		L:      300000.,
	}
}

func (gw *GravityWave) Name() string { return "GravityWave" }

func (gw *GravityWave) Bounds() [6]float64 {
	return [6]float64{0, gw.L, -gw.L / 2, gw.L / 2, 0, gw.H}
}

func (gw *GravityWave) TracerCount() int { return 0 }

func (gw *GravityWave) ZTop() float64 { return gw.H }

func (gw *GravityWave) HasReferenceState() bool { return true }

func (gw *GravityWave) EvaluateTopography(pc phys.Constants, x, y float64) float64 {
	return 0.
}

func (gw *GravityWave) EvaluateReferenceState(pc phys.Constants, z, x, y float64, state []float64) {
	state[eqset.UIx] = gw.U0
	state[eqset.VIx] = 0.
	state[eqset.WIx] = 0.

	n2og := gw.N * gw.N / pc.G
	thetaBar := gw.Theta0 * math.Exp(n2og*z)
	state[eqset.TIx] = thetaBar

	// Exner pressure in hydrostatic balance with the stratification
	exner := 1. + pc.G*pc.G/(pc.Cp*gw.Theta0*gw.N*gw.N)*(math.Exp(-n2og*z)-1.)
	state[eqset.RIx] = pc.P0 / (pc.Rd * thetaBar) * math.Pow(exner, pc.Cv/pc.Rd)
}

func (gw *GravityWave) EvaluatePointwiseState(pc phys.Constants, t, z, x, y float64, state, tracers []float64) {
	gw.EvaluateReferenceState(pc, z, x, y, state)

	dx := x - gw.XC
	state[eqset.TIx] += gw.DTheta * math.Sin(math.Pi*z/gw.H) /
		(1. + dx*dx/(gw.A*gw.A))
}

func (gw *GravityWave) HasRayleighFriction() bool { return false }

func (gw *GravityWave) EvaluateRayleighStrength(z, x, y float64) float64 { return 0. }

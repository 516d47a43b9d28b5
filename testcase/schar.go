package testcase

import (
	"math"

	"github.com/stratus-model/stratus/eqset"
	"github.com/stratus-model/stratus/phys"
)

// ScharMountain is the steady mountain wave of Schar et al. (2002): uniform
// stratified flow over a wavelike ridge, with a Rayleigh sponge below the
// model top to absorb upward-propagating waves.
type ScharMountain struct {
	H0     float64 // peak topography height
	AC     float64 // mountain envelope half width
	Lambda float64 // ridge wavelength
	U0     float64 // background flow
	N      float64 // Brunt-Vaisala frequency
	Theta0 float64
	ZTopV  float64
	ZDamp  float64 // sponge base height
	Sigma0 float64 // sponge strength
	L      float64 // domain length
}

func NewScharMountain() *ScharMountain {
	return &ScharMountain{
		H0:     250.,
		AC:     5000.,
		Lambda: 4000.,
		U0:     10.,
		N:      0.01,
		Theta0: 280.,
		ZTopV:  21000.,
		ZDamp:  12500.,
		Sigma0: 0.02,
		L:      100000.,
	}
}

func (sm *ScharMountain) Name() string { return "ScharMountain" }

func (sm *ScharMountain) Bounds() [6]float64 {
	return [6]float64{-sm.L / 2, sm.L / 2, -sm.L / 2, sm.L / 2, 0, sm.ZTopV}
}

func (sm *ScharMountain) TracerCount() int { return 0 }

func (sm *ScharMountain) ZTop() float64 { return sm.ZTopV }

func (sm *ScharMountain) HasReferenceState() bool { return true }

func (sm *ScharMountain) EvaluateTopography(pc phys.Constants, x, y float64) float64 {
	cosp := math.Cos(math.Pi * x / sm.Lambda)
	return sm.H0 * math.Exp(-x*x/(sm.AC*sm.AC)) * cosp * cosp
}

func (sm *ScharMountain) EvaluateReferenceState(pc phys.Constants, z, x, y float64, state []float64) {
	state[eqset.UIx] = sm.U0
	state[eqset.VIx] = 0.
	state[eqset.WIx] = 0.

	n2og := sm.N * sm.N / pc.G
	thetaBar := sm.Theta0 * math.Exp(n2og*z)
	state[eqset.TIx] = thetaBar

	exner := 1. + pc.G*pc.G/(pc.Cp*sm.Theta0*sm.N*sm.N)*(math.Exp(-n2og*z)-1.)
	state[eqset.RIx] = pc.P0 / (pc.Rd * thetaBar) * math.Pow(exner, pc.Cv/pc.Rd)
}

func (sm *ScharMountain) EvaluatePointwiseState(pc phys.Constants, t, z, x, y float64, state, tracers []float64) {
	sm.EvaluateReferenceState(pc, z, x, y, state)
}

func (sm *ScharMountain) HasRayleighFriction() bool { return true }

// EvaluateRayleighStrength ramps the sponge from zero at the sponge base to
// Sigma0 at the model top.
func (sm *ScharMountain) EvaluateRayleighStrength(z, x, y float64) float64 {
	if z < sm.ZDamp {
		return 0.
	}
	s := math.Sin(0.5 * math.Pi * (z - sm.ZDamp) / (sm.ZTopV - sm.ZDamp))
	return sm.Sigma0 * s * s
}

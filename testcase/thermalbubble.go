package testcase

import (
	"math"

	"github.com/stratus-model/stratus/eqset"
	"github.com/stratus-model/stratus/phys"
)

// ThermalBubble is the rising thermal bubble of Giraldo et al. (2007): a
// cosine potential temperature perturbation in a neutrally stratified
// 1 km box.
type ThermalBubble struct {
	ThetaBar float64 // background potential temperature
	ThetaC   float64 // perturbation amplitude
	RC       float64 // bubble radius
	XC, ZC   float64 // bubble center
}

func NewThermalBubble() *ThermalBubble {
	return &ThermalBubble{
		ThetaBar: 300.0,
		ThetaC:   0.5,
		RC:       250.,
		XC:       500.,
		ZC:       350.,
	}
}

func (tb *ThermalBubble) Name() string { return "ThermalBubble" }

func (tb *ThermalBubble) Bounds() [6]float64 {
	return [6]float64{0, 1000, -1000, 1000, 0, 1000}
}

func (tb *ThermalBubble) TracerCount() int { return 0 }

func (tb *ThermalBubble) ZTop() float64 { return 1000. }

func (tb *ThermalBubble) HasReferenceState() bool { return true }

func (tb *ThermalBubble) EvaluateTopography(pc phys.Constants, x, y float64) float64 {
	return 0.
}

// thetaPrime is the cosine bubble perturbation, zero outside radius RC.
func (tb *ThermalBubble) thetaPrime(x, z float64) float64 {
	r := math.Sqrt((x-tb.XC)*(x-tb.XC) + (z-tb.ZC)*(z-tb.ZC))
	if r > tb.RC {
		return 0.
	}
	return 0.5 * tb.ThetaC * (1. + math.Cos(math.Pi*r/tb.RC))
}

func (tb *ThermalBubble) EvaluateReferenceState(pc phys.Constants, z, x, y float64, state []float64) {
	state[eqset.UIx] = 0.
	state[eqset.VIx] = 0.
	state[eqset.WIx] = 0.
	state[eqset.TIx] = tb.ThetaBar

	exner := 1. - pc.G/(pc.Cp*tb.ThetaBar)*z
	state[eqset.RIx] = pc.P0 / (pc.Rd * tb.ThetaBar) * math.Pow(exner, pc.Cv/pc.Rd)
}

func (tb *ThermalBubble) EvaluatePointwiseState(pc phys.Constants, t, z, x, y float64, state, tracers []float64) {
	tb.EvaluateReferenceState(pc, z, x, y, state)
	state[eqset.TIx] = tb.ThetaBar + tb.thetaPrime(x, z)
}

func (tb *ThermalBubble) HasRayleighFriction() bool { return false }

func (tb *ThermalBubble) EvaluateRayleighStrength(z, x, y float64) float64 { return 0. }

// Package eqset enumerates the prognostic variables of the nonhydrostatic
// primitive equations and the pointwise thermodynamic relations between
// them.
package eqset

import (
	"math"

	"github.com/stratus-model/stratus/model"
	"github.com/stratus-model/stratus/phys"
)

// Prognostic component indices.
const (
	UIx = 0
	VIx = 1
	TIx = 2 // potential temperature
	WIx = 3
	RIx = 4 // density

	NumComponents = 5
)

// EquationSet describes the variable layout and form of the state vector.
type EquationSet struct {
	Dimensionality int // 2 for an xz slice, 3 for a full box
	NumTracers     int
	Conservative   bool // state carries (rho u, rho v, rho theta, rho w, rho)
}

func New(dimensionality, numTracers int) (es EquationSet, err error) {
	if dimensionality != 2 && dimensionality != 3 {
		err = model.Errorf(model.ConfigurationError,
			"dimensionality must be 2 or 3, have %d", dimensionality)
		return
	}
	if numTracers < 0 {
		err = model.Errorf(model.ConfigurationError,
			"negative tracer count %d", numTracers)
		return
	}
	es = EquationSet{
		Dimensionality: dimensionality,
		NumTracers:     numTracers,
		Conservative:   true,
	}
	return
}

// ConvertToConservative converts a pointwise primitive state
// (u, v, theta, w, rho) in place to (rho u, rho v, rho theta, rho w, rho).
func (es EquationSet) ConvertToConservative(state []float64) {
	rho := state[RIx]
	state[UIx] *= rho
	state[VIx] *= rho
	state[TIx] *= rho
	state[WIx] *= rho
}

// ConvertToPrimitive is the inverse of ConvertToConservative.
func (es EquationSet) ConvertToPrimitive(state []float64) {
	orho := 1. / state[RIx]
	state[UIx] *= orho
	state[VIx] *= orho
	state[TIx] *= orho
	state[WIx] *= orho
}

// Pressure evaluates the equation of state p = p0 (Rd rho theta / p0)^(Cp/Cv)
// from density and potential temperature.
func Pressure(pc phys.Constants, rho, theta float64) float64 {
	return pc.P0 * math.Pow(pc.Rd*rho*theta/pc.P0, pc.Cp/pc.Cv)
}

// Exner evaluates the Exner pressure (p/p0)^(Rd/Cp).
func Exner(pc phys.Constants, p float64) float64 {
	return math.Pow(p/pc.P0, pc.Rd/pc.Cp)
}

// SoundSpeedSquared evaluates c^2 = Cp Rd theta / Cv * (p/p0)^(Rd/Cp - 1)
// at a point.
func SoundSpeedSquared(pc phys.Constants, rho, theta float64) float64 {
	p := Pressure(pc, rho, theta)
	return pc.Cp * pc.Rd * theta / pc.Cv * math.Pow(p/pc.P0, pc.Rd/pc.Cp-1.)
}

// DPressureDRhoTheta is the derivative of pressure with respect to the
// conserved quantity rho*theta, used by the implicit column preconditioner.
func DPressureDRhoTheta(pc phys.Constants, rhoTheta float64) float64 {
	gm := pc.Cp / pc.Cv
	return gm * pc.P0 * math.Pow(pc.Rd/pc.P0, gm) * math.Pow(rhoTheta, gm-1.)
}

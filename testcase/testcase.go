// Package testcase defines the initialization contract the model requires
// from a test configuration, and the standard nonhydrostatic cases.
package testcase

import (
	"github.com/stratus-model/stratus/phys"
)

// TestCase supplies the pure-function hooks used to build the grid geometry
// and initial state. Implementations must be stateless after construction.
type TestCase interface {
	Name() string

	// Bounds returns the Cartesian domain extents
	// {x_min, x_max, y_min, y_max, z_min, z_max}.
	Bounds() [6]float64

	TracerCount() int
	ZTop() float64

	HasReferenceState() bool
	// EvaluateReferenceState fills the primitive hydrostatically balanced
	// background state {u, v, theta, w, rho} at a point.
	EvaluateReferenceState(pc phys.Constants, z, x, y float64, state []float64)

	// EvaluateTopography returns the surface height at (x, y); it must be
	// non-negative and strictly below ZTop.
	EvaluateTopography(pc phys.Constants, x, y float64) float64

	// EvaluatePointwiseState fills the primitive initial state and tracers
	// at a point.
	EvaluatePointwiseState(pc phys.Constants, t, z, x, y float64, state, tracers []float64)

	HasRayleighFriction() bool
	EvaluateRayleighStrength(z, x, y float64) float64
}

package grid

import (
	"github.com/stratus-model/stratus/model"
)

// VerticalStretch maps the reference coordinate eta in [0,1] onto the
// stretched coordinate F(eta) in [0,1], with strictly positive derivative so
// that the terrain-following map stays monotone.
type VerticalStretch interface {
	Name() string
	Evaluate(eta float64) (stretch, deriv float64)
}

// UniformStretch is the identity map.
type UniformStretch struct{}

func (UniformStretch) Name() string { return "uniform" }

func (UniformStretch) Evaluate(eta float64) (float64, float64) {
	return eta, 1.
}

// CubicStretch refines the grid near the ground: F(eta) = r eta + (1-r) eta^3
// with refinement ratio r in (0, 1].
type CubicStretch struct {
	Refine float64
}

func (CubicStretch) Name() string { return "cubic" }

func (s CubicStretch) Evaluate(eta float64) (float64, float64) {
	r := s.Refine
	return r*eta + (1.-r)*eta*eta*eta, r + 3.*(1.-r)*eta*eta
}

// NewStretch resolves a persisted stretch identifier.
func NewStretch(name string, refine float64) (VerticalStretch, error) {
	switch name {
	case "", "uniform":
		return UniformStretch{}, nil
	case "cubic":
		if refine <= 0 || refine > 1 {
			return nil, model.Errorf(model.ConfigurationError,
				"cubic stretch refinement ratio %v outside (0,1]", refine)
		}
		return CubicStretch{Refine: refine}, nil
	}
	return nil, model.Errorf(model.ConfigurationError,
		"unknown vertical stretch %q", name)
}

package grid

import (
	"github.com/stratus-model/stratus/eqset"
	"github.com/stratus-model/stratus/model"
	"github.com/stratus-model/stratus/testcase"
)

// EvaluateTestCase samples the test case into the given state slot, fills
// the reference state, and converts the sampled primitive variables into the
// conservative form carried by the model.
func (g *Grid) EvaluateTestCase(tc testcase.TestCase, t float64, slotIx int) (err error) {
	if err = g.EvaluateTopography(tc); err != nil {
		return
	}
	if err = g.EvaluateGeometricTerms(); err != nil {
		return
	}

	// Coordinate scale height check for terrain features
	var topoMax float64
	for _, p := range g.Patches {
		if m := p.Topography.Max(); m > topoMax {
			topoMax = m
		}
	}
	if sl := 10.0 * topoMax; sl > 0 && sl >= g.ZTop {
		return model.Errorf(model.ConfigurationError,
			"coordinate scale height %v exceeds model top %v", sl, g.ZTop)
	}

	g.HasRefState = tc.HasReferenceState()

	for _, p := range g.Patches {
		if err = p.evaluateTestCase(tc, t, slotIx); err != nil {
			return
		}
	}
	g.logger().WithField("case", tc.Name()).Info("test case evaluated")
	return
}

func (p *Patch) evaluateTestCase(tc testcase.TestCase, t float64, slotIx int) (err error) {
	if !p.initialized {
		return model.Errorf(model.ConfigurationError,
			"InitializeData must be called before EvaluateTestCase")
	}
	if slotIx < 0 || slotIx >= len(p.Slots) {
		return model.Errorf(model.ConfigurationError,
			"state slot %d out of range", slotIx)
	}
	var (
		g     = p.grid
		nLev  = g.NLevels()
		nInt  = g.NInterfaces()
		nComp = eqset.NumComponents
		slot  = p.Slots[slotIx]
	)

	var (
		state   = make([]float64, nComp)
		ref     = make([]float64, nComp)
		tracers = make([]float64, g.Eqs.NumTracers)
	)

	// Rayleigh friction strength per DOF
	if tc.HasRayleighFriction() {
		for ij := 0; ij < p.nIJ; ij++ {
			x, y := p.XNode.AtVec(ij), p.YNode.AtVec(ij)
			for k := 0; k < nLev; k++ {
				p.RayleighNode.Set(k, ij,
					tc.EvaluateRayleighStrength(p.ZLevels.At(k, ij), x, y))
			}
			for k := 0; k < nInt; k++ {
				p.RayleighREdge.Set(k, ij,
					tc.EvaluateRayleighStrength(p.ZInterfaces.At(k, ij), x, y))
			}
		}
	}

	// State and reference state on model levels
	for ij := 0; ij < p.nIJ; ij++ {
		x, y := p.XNode.AtVec(ij), p.YNode.AtVec(ij)
		for k := 0; k < nLev; k++ {
			z := p.ZLevels.At(k, ij)

			tc.EvaluatePointwiseState(g.Phys, t, z, x, y, state, tracers)
			g.Eqs.ConvertToConservative(state)
			for c := 0; c < nComp; c++ {
				slot.Node[c].Set(k, ij, state[c])
			}
			for c := 0; c < g.Eqs.NumTracers; c++ {
				slot.Tracers[c].Set(k, ij, tracers[c])
			}

			if g.HasRefState {
				tc.EvaluateReferenceState(g.Phys, z, x, y, ref)
				g.Eqs.ConvertToConservative(ref)
				for c := 0; c < nComp; c++ {
					p.RefNode[c].Set(k, ij, ref[c])
				}
			}
		}

		// State and reference state on model interfaces
		for k := 0; k < nInt; k++ {
			z := p.ZInterfaces.At(k, ij)

			tc.EvaluatePointwiseState(g.Phys, t, z, x, y, state, tracers)
			g.Eqs.ConvertToConservative(state)
			for c := 0; c < nComp; c++ {
				slot.REdge[c].Set(k, ij, state[c])
			}

			if g.HasRefState {
				tc.EvaluateReferenceState(g.Phys, z, x, y, ref)
				g.Eqs.ConvertToConservative(ref)
				for c := 0; c < nComp; c++ {
					p.RefREdge[c].Set(k, ij, ref[c])
				}
			}
		}
	}
	return
}

package dynamics

import (
	"github.com/stratus-model/stratus/eqset"
	"github.com/stratus-model/stratus/model"
)

// SolveImplicit solves the column problem R(q) = q - rhs - dtau F(q) = 0 in
// every interior column. Slot rhsIx holds the stage right hand side; slot
// stateIx provides the initial guess and receives the solution. Per-column
// non-convergence aborts the stage with a recoverable solver error.
func (v *Vertical) SolveImplicit(rhsIx, stateIx int, dtau float64) (err error) {
	var (
		g = v.Grid
	)
	for _, p := range g.Patches {
		for i := p.Box.AInteriorBegin(); i < p.Box.AInteriorEnd(); i++ {
			for j := p.Box.BInteriorBegin(); j < p.Box.BInteriorEnd(); j++ {
				ij := p.IJ(i, j)
				c := newColumn(g, p, ij)

				q := make([]float64, c.nq)
				rhs := make([]float64, c.nq)
				c.load(stateIx, q)
				c.load(rhsIx, rhs)

				if err = c.solveColumn(q, rhs, dtau, v.Solver); err != nil {
					return
				}
				c.store(stateIx, q)
			}
		}
	}
	return
}

// Tendency evaluates the explicit vertical tendency of slot inIx into slot
// tendIx for every interior column.
func (v *Vertical) Tendency(inIx, tendIx int) {
	var (
		g = v.Grid
	)
	for _, p := range g.Patches {
		p.ZeroSlot(tendIx)
		for i := p.Box.AInteriorBegin(); i < p.Box.AInteriorEnd(); i++ {
			for j := p.Box.BInteriorBegin(); j < p.Box.BInteriorEnd(); j++ {
				ij := p.IJ(i, j)
				c := newColumn(g, p, ij)

				q := make([]float64, c.nq)
				f := make([]float64, c.nq)
				c.load(inIx, q)
				c.tendency(q, f)
				c.store(tendIx, f)
			}
		}
	}
}

// CheckState guards against non-physical density anywhere in a slot, which
// would poison the equation of state.
func (v *Vertical) CheckState(slotIx int) error {
	for _, p := range v.Grid.Patches {
		rho := p.Slot(slotIx).Node[eqset.RIx]
		for i := p.Box.AInteriorBegin(); i < p.Box.AInteriorEnd(); i++ {
			for j := p.Box.BInteriorBegin(); j < p.Box.BInteriorEnd(); j++ {
				for k := 0; k < v.Grid.NLevels(); k++ {
					if rho.At(k, p.IJ(i, j)) <= 0 {
						return model.RecoverableErrorf(
							"non-positive density at patch=%d k=%d", p.Index, k)
					}
				}
			}
		}
	}
	return nil
}

package timestep

import (
	"github.com/sirupsen/logrus"

	"github.com/stratus-model/stratus/dynamics"
	"github.com/stratus-model/stratus/grid"
	"github.com/stratus-model/stratus/model"
)

// Slot aliases. The active slot always holds the accepted state at the end
// of a step; saved holds the pre-step state for a retry.
const (
	SlotActive = 0
	SlotSaved  = 1
	SlotRHS    = 2
	SlotStage  = 3
	slotFixed  = 4
)

// RequiredSlots returns the state slot count a scheme needs: the four fixed
// aliases plus, for the IMEX schemes, one explicit and one implicit tendency
// slot per stage, or, for Strang splitting, three scratch slots.
func RequiredSlots(s Scheme) int {
	switch s {
	case Strang:
		return slotFixed + 3
	case ARK2:
		return slotFixed + 6
	case ARK3:
		return slotFixed + 8
	case ARK4:
		return slotFixed + 12
	}
	return slotFixed + 12
}

func slotExp(stage int) int { return slotFixed + 2*stage }
func slotImp(stage int) int { return slotFixed + 2*stage + 1 }

// Integrator advances the model state through HEVI IMEX steps, coordinating
// the explicit horizontal operator, the implicit column solver and the
// grid's exchange, summation and boundary machinery.
type Integrator struct {
	Grid  *grid.Grid
	Horiz *dynamics.Horizontal
	Vert  *dynamics.Vertical

	Scheme  Scheme
	tableau Tableau

	Dt float64

	// Delta-t halving retry policy for recoverable solver failures
	RetryOnFailure bool
	MaxRetries     int

	Time     float64
	StepNum  int
	log      *logrus.Entry
}

func New(
	g *grid.Grid,
	h *dynamics.Horizontal,
	v *dynamics.Vertical,
	scheme Scheme,
	dt float64,
	log *logrus.Entry,
) (in *Integrator, err error) {
	if dt <= 0 {
		err = model.Errorf(model.ConfigurationError, "non-positive time step %v", dt)
		return
	}
	if g.Cfg.NumStateSlots < RequiredSlots(scheme) {
		err = model.Errorf(model.ConfigurationError,
			"scheme %v needs %d state slots, grid has %d",
			scheme, RequiredSlots(scheme), g.Cfg.NumStateSlots)
		return
	}
	in = &Integrator{
		Grid:           g,
		Horiz:          h,
		Vert:           v,
		Scheme:         scheme,
		Dt:             dt,
		RetryOnFailure: true,
		MaxRetries:     3,
		log:            log,
	}
	if scheme != Strang {
		if in.tableau, err = NewTableau(scheme); err != nil {
			return
		}
	}
	return
}

// copyAll copies slot src to dst on every patch.
func (in *Integrator) copyAll(dst, src int) {
	for _, p := range in.Grid.Patches {
		p.CopySlot(dst, src)
	}
}

type term struct {
	slot  int
	coeff float64
}

// combine sets dst = base + sum coeff * slot over every field of every
// patch.
func (in *Integrator) combine(dst, base int, terms []term) {
	for _, p := range in.Grid.Patches {
		d := p.Slot(dst)
		b := p.Slot(base)
		apply := func(get func(s *grid.StateSlot) []float64) {
			dData := get(d)
			bData := get(b)
			copy(dData, bData)
			for _, t := range terms {
				if t.coeff == 0 {
					continue
				}
				sData := get(p.Slot(t.slot))
				for n := range dData {
					dData[n] += t.coeff * sData[n]
				}
			}
		}
		for c := range d.Node {
			c := c
			apply(func(s *grid.StateSlot) []float64 { return s.Node[c].DataP() })
			apply(func(s *grid.StateSlot) []float64 { return s.REdge[c].DataP() })
		}
		for c := range d.Tracers {
			c := c
			apply(func(s *grid.StateSlot) []float64 { return s.Tracers[c].DataP() })
		}
	}
}

// finishStage applies the post-stage sequence: halo exchange, direct
// stiffness summation and boundary conditions on the stage state.
func (in *Integrator) finishStage(slotIx int) {
	in.Grid.ApplyDSS(slotIx)
	in.Grid.SyncEdgeState(slotIx)
	in.Grid.ApplyBoundaryConditions(slotIx)
}

// implicitTendency reconstructs I = (y - rhs) / dtau into slot tendIx.
func (in *Integrator) implicitTendency(tendIx, yIx, rhsIx int, dtau float64) {
	in.combine(tendIx, yIx, []term{{slot: rhsIx, coeff: -1}})
	for _, p := range in.Grid.Patches {
		s := p.Slot(tendIx)
		for c := range s.Node {
			s.Node[c].Scale(1 / dtau)
			s.REdge[c].Scale(1 / dtau)
		}
		for c := range s.Tracers {
			s.Tracers[c].Scale(1 / dtau)
		}
	}
}

// Step advances the active state from Time to Time + Dt, halving the step
// and retrying from the saved state on a recoverable solver failure.
func (in *Integrator) Step() (err error) {
	in.copyAll(SlotSaved, SlotActive)

	dt := in.Dt
	nSub := 1
	for attempt := 0; ; attempt++ {
		// A retry takes nSub halved substeps so the state still reaches
		// Time + Dt
		for s := 0; s < nSub && err == nil; s++ {
			if in.Scheme == Strang {
				err = in.stepStrang(dt)
			} else {
				err = in.stepARK(dt)
			}
		}
		if err == nil {
			break
		}
		if !in.RetryOnFailure || !model.IsRecoverable(err) || attempt >= in.MaxRetries {
			return err
		}
		dt *= 0.5
		nSub *= 2
		err = nil
		in.copyAll(SlotActive, SlotSaved)
		in.logger().WithFields(logrus.Fields{
			"step": in.StepNum, "dt": dt, "attempt": attempt + 1,
		}).Warn("solver failure, retrying with halved time step")
	}

	in.Time += in.Dt
	in.StepNum++
	return nil
}

// stepARK runs one additive Runge-Kutta step over the paired tableaux.
func (in *Integrator) stepARK(dt float64) (err error) {
	var (
		t      = in.tableau
		stages = t.Stages
	)

	// Stage 0 state is the step's initial state
	in.copyAll(SlotStage, SlotActive)
	in.Horiz.Tendency(SlotStage, slotExp(0))
	in.Vert.Tendency(SlotStage, slotImp(0))

	for i := 1; i < stages; i++ {
		// Assemble the stage right hand side from prior tendencies
		terms := make([]term, 0, 2*i)
		for j := 0; j < i; j++ {
			terms = append(terms,
				term{slot: slotExp(j), coeff: dt * t.AExp[i][j]},
				term{slot: slotImp(j), coeff: dt * t.AImp[i][j]})
		}
		in.combine(SlotRHS, SlotActive, terms)

		gamma := t.AImp[i][i]
		if gamma == 0 {
			in.copyAll(SlotStage, SlotRHS)
			in.Vert.Tendency(SlotStage, slotImp(i))
		} else {
			// Initial guess: previous stage state
			dtau := dt * gamma
			if err = in.Vert.SolveImplicit(SlotRHS, SlotStage, dtau); err != nil {
				return
			}
			in.implicitTendency(slotImp(i), SlotStage, SlotRHS, dtau)
		}

		in.finishStage(SlotStage)
		in.Horiz.Tendency(SlotStage, slotExp(i))
	}

	// Final combination with the shared weights
	terms := make([]term, 0, 2*stages)
	for j := 0; j < stages; j++ {
		terms = append(terms,
			term{slot: slotExp(j), coeff: dt * t.B[j]},
			term{slot: slotImp(j), coeff: dt * t.B[j]})
	}
	in.combine(SlotStage, SlotActive, terms)
	in.finishStage(SlotStage)

	if err = in.Vert.CheckState(SlotStage); err != nil {
		return
	}
	in.copyAll(SlotActive, SlotStage)
	return
}

// stepStrang advances by Strang splitting: a half implicit column step, a
// full explicit horizontal step with three-stage SSP Runge-Kutta, and a
// second half implicit step.
func (in *Integrator) stepStrang(dt float64) (err error) {
	var (
		half = 0.5 * dt
	)

	// First half vertical step
	in.copyAll(SlotRHS, SlotActive)
	in.copyAll(SlotStage, SlotActive)
	if err = in.Vert.SolveImplicit(SlotRHS, SlotStage, half); err != nil {
		return
	}
	in.finishStage(SlotStage)

	// Explicit SSP RK3 on the horizontal operator
	var (
		s0 = SlotStage
		u1 = slotFixed
		u2 = slotFixed + 1
		ht = slotFixed + 2
	)
	in.Horiz.Tendency(s0, ht)
	in.combine(u1, s0, []term{{slot: ht, coeff: dt}})
	in.finishStage(u1)

	in.Horiz.Tendency(u1, ht)
	// u2 = 3/4 s0 + 1/4 (u1 + dt H(u1))
	in.copyAll(u2, s0)
	in.scaleSlot(u2, 0.75)
	in.accumulate(u2, u1, 0.25)
	in.accumulate(u2, ht, 0.25*dt)
	in.finishStage(u2)

	in.Horiz.Tendency(u2, ht)
	// s = 1/3 s0 + 2/3 (u2 + dt H(u2))
	in.scaleSlot(s0, 1./3.)
	in.accumulate(s0, u2, 2./3.)
	in.accumulate(s0, ht, 2.*dt/3.)
	in.finishStage(s0)

	// Second half vertical step
	in.copyAll(SlotRHS, s0)
	if err = in.Vert.SolveImplicit(SlotRHS, s0, half); err != nil {
		return
	}
	in.finishStage(s0)

	if err = in.Vert.CheckState(s0); err != nil {
		return
	}
	in.copyAll(SlotActive, s0)
	return
}

func (in *Integrator) scaleSlot(slotIx int, a float64) {
	for _, p := range in.Grid.Patches {
		s := p.Slot(slotIx)
		for c := range s.Node {
			s.Node[c].Scale(a)
			s.REdge[c].Scale(a)
		}
		for c := range s.Tracers {
			s.Tracers[c].Scale(a)
		}
	}
}

func (in *Integrator) accumulate(dst, src int, a float64) {
	for _, p := range in.Grid.Patches {
		d := p.Slot(dst)
		s := p.Slot(src)
		add := func(dd, ss []float64) {
			for n := range dd {
				dd[n] += a * ss[n]
			}
		}
		for c := range d.Node {
			add(d.Node[c].DataP(), s.Node[c].DataP())
			add(d.REdge[c].DataP(), s.REdge[c].DataP())
		}
		for c := range d.Tracers {
			add(d.Tracers[c].DataP(), s.Tracers[c].DataP())
		}
	}
}

func (in *Integrator) logger() *logrus.Entry {
	if in.log == nil {
		in.log = logrus.NewEntry(logrus.StandardLogger())
	}
	return in.log
}

// Package dynamics provides the explicit horizontal spectral-element
// operator, the implicit vertical column operator, and the Newton-Krylov
// solver coupling them inside a HEVI step.
package dynamics

import (
	"github.com/stratus-model/stratus/eqset"
	"github.com/stratus-model/stratus/grid"
	"github.com/stratus-model/stratus/utils"
)

// Horizontal evaluates the explicit horizontal tendency of the conservative
// state: flux-form advection, the terrain-corrected pressure gradient,
// Coriolis forcing and optional hyperviscosity. Element seams are left for
// direct stiffness summation to resolve.
type Horizontal struct {
	Grid *grid.Grid

	// Hyperviscosity strengths (scalar and divergence damping); zero
	// disables the corresponding pass.
	NuScalar float64
	NuDiv    float64
}

func NewHorizontal(g *grid.Grid, nuScalar, nuDiv float64) *Horizontal {
	return &Horizontal{Grid: g, NuScalar: nuScalar, NuDiv: nuDiv}
}

// Tendency reads the state in slot inIx and writes the horizontal tendency
// into slot tendIx.
func (h *Horizontal) Tendency(inIx, tendIx int) {
	for _, p := range h.Grid.Patches {
		h.patchTendency(p, inIx, tendIx)
	}
	if h.NuScalar > 0 || h.NuDiv > 0 {
		h.applyHyperviscosity(inIx, tendIx)
	}
}

func (h *Horizontal) patchTendency(p *grid.Patch, inIx, tendIx int) {
	var (
		g     = h.Grid
		order = g.Cfg.HorizontalOrder
		nLev  = g.NLevels()
		nInt  = g.NInterfaces()
		in    = p.Slot(inIx)
		tend  = p.Slot(tendIx)
	)
	p.ZeroSlot(tendIx)

	var (
		dNdN = g.Ops.DiffNodeToNode
	)

	// Pressure and its vertical derivative per column; the vertical
	// derivative feeds the terrain correction of the horizontal gradient.
	nA, nB := p.Dims()
	nIJ := nA * nB
	pres := utils.NewMatrix(nLev, nIJ)
	dPresDXi := utils.NewMatrix(nLev, nIJ)
	colIn := make([]float64, nLev)
	colOut := make([]float64, nLev)
	for ij := 0; ij < nIJ; ij++ {
		for k := 0; k < nLev; k++ {
			rhoTheta := in.Node[eqset.TIx].At(k, ij)
			rho := in.Node[eqset.RIx].At(k, ij)
			if rho <= 0 {
				continue
			}
			pk := pressureOf(g, rho, rhoTheta/rho)
			pres.Set(k, ij, pk)
			colIn[k] = pk
		}
		dNdN.ApplyTo(colIn, colOut)
		for k := 0; k < nLev; k++ {
			dPresDXi.Set(k, ij, colOut[k])
		}
	}

	wOnEdges := g.WOnInterfaces()

	for k := 0; k < nLev; k++ {
		for a := 0; a < p.Box.ElementCountA(); a++ {
			for b := 0; b < p.Box.ElementCountB(); b++ {
				i0 := p.Box.AInteriorBegin() + a*order
				j0 := p.Box.BInteriorBegin() + b*order

				for i := 0; i < order; i++ {
					for j := 0; j < order; j++ {
						ij := p.IJ(i0+i, j0+j)
						jac := p.Jacobian.At(k, ij)

						// Elementwise derivative sums over the GLL line
						var dFaRho, dFbRho, dFaU, dFbU, dFaV, dFbV float64
						var dFaTh, dFbTh, dFaW, dFbW, dPa, dPb float64
						for s := 0; s < order; s++ {
							ijA := p.IJ(i0+s, j0+j)
							ijB := p.IJ(i0+i, j0+s)
							da := g.DxBasis1D.At(s, i)
							db := g.DxBasis1D.At(s, j)

							jA := p.Jacobian.At(k, ijA)
							jB := p.Jacobian.At(k, ijB)
							rhoA := in.Node[eqset.RIx].At(k, ijA)
							rhoB := in.Node[eqset.RIx].At(k, ijB)
							uA := in.Node[eqset.UIx].At(k, ijA) / rhoA
							vB := in.Node[eqset.VIx].At(k, ijB) / rhoB

							dFaRho += da * jA * in.Node[eqset.RIx].At(k, ijA) * uA
							dFbRho += db * jB * in.Node[eqset.RIx].At(k, ijB) * vB
							dFaU += da * jA * in.Node[eqset.UIx].At(k, ijA) * uA
							dFbU += db * jB * in.Node[eqset.UIx].At(k, ijB) * vB
							dFaV += da * jA * in.Node[eqset.VIx].At(k, ijA) * uA
							dFbV += db * jB * in.Node[eqset.VIx].At(k, ijB) * vB
							dFaTh += da * jA * in.Node[eqset.TIx].At(k, ijA) * uA
							dFbTh += db * jB * in.Node[eqset.TIx].At(k, ijB) * vB
							if !wOnEdges {
								dFaW += da * jA * in.Node[eqset.WIx].At(k, ijA) * uA
								dFbW += db * jB * in.Node[eqset.WIx].At(k, ijB) * vB
							}
							dPa += da * pres.At(k, ijA)
							dPb += db * pres.At(k, ijB)
						}

						dFaRho /= p.Box.DeltaA
						dFbRho /= p.Box.DeltaB
						dFaU /= p.Box.DeltaA
						dFbU /= p.Box.DeltaB
						dFaV /= p.Box.DeltaA
						dFbV /= p.Box.DeltaB
						dFaTh /= p.Box.DeltaA
						dFbTh /= p.Box.DeltaB
						dFaW /= p.Box.DeltaA
						dFbW /= p.Box.DeltaB
						dPa /= p.Box.DeltaA
						dPb /= p.Box.DeltaB

						// Terrain correction of the horizontal pressure
						// gradient
						dxz := p.DerivRNode[2].At(k, ij)
						daz := p.DerivRNode[0].At(k, ij)
						dbz := p.DerivRNode[1].At(k, ij)
						dpXi := dPresDXi.At(k, ij)
						gradPa := dPa - daz/dxz*dpXi
						gradPb := dPb - dbz/dxz*dpXi

						f := p.CoriolisF.AtVec(ij)
						rhoU := in.Node[eqset.UIx].At(k, ij)
						rhoV := in.Node[eqset.VIx].At(k, ij)

						oj := 1. / jac
						tend.Node[eqset.RIx].Set(k, ij, -(dFaRho+dFbRho)*oj)
						tend.Node[eqset.UIx].Set(k, ij,
							-(dFaU+dFbU)*oj-gradPa+f*rhoV)
						tend.Node[eqset.VIx].Set(k, ij,
							-(dFaV+dFbV)*oj-gradPb-f*rhoU)
						tend.Node[eqset.TIx].Set(k, ij, -(dFaTh+dFbTh)*oj)
						if !wOnEdges {
							tend.Node[eqset.WIx].Set(k, ij, -(dFaW+dFbW)*oj)
						}
					}
				}
			}
		}
	}

	// Horizontal advection of interface-resident w by the edge velocity
	if wOnEdges {
		for k := 0; k < nInt; k++ {
			for a := 0; a < p.Box.ElementCountA(); a++ {
				for b := 0; b < p.Box.ElementCountB(); b++ {
					i0 := p.Box.AInteriorBegin() + a*order
					j0 := p.Box.BInteriorBegin() + b*order

					for i := 0; i < order; i++ {
						for j := 0; j < order; j++ {
							ij := p.IJ(i0+i, j0+j)
							jac := p.JacobianREdge.At(k, ij)

							var dFaW, dFbW float64
							for s := 0; s < order; s++ {
								ijA := p.IJ(i0+s, j0+j)
								ijB := p.IJ(i0+i, j0+s)
								rhoA := in.REdge[eqset.RIx].At(k, ijA)
								rhoB := in.REdge[eqset.RIx].At(k, ijB)
								dFaW += g.DxBasis1D.At(s, i) *
									p.JacobianREdge.At(k, ijA) *
									in.REdge[eqset.WIx].At(k, ijA) *
									in.REdge[eqset.UIx].At(k, ijA) / rhoA
								dFbW += g.DxBasis1D.At(s, j) *
									p.JacobianREdge.At(k, ijB) *
									in.REdge[eqset.WIx].At(k, ijB) *
									in.REdge[eqset.VIx].At(k, ijB) / rhoB
							}
							dFaW /= p.Box.DeltaA
							dFbW /= p.Box.DeltaB

							tend.REdge[eqset.WIx].Set(k, ij, -(dFaW+dFbW)/jac)
						}
					}
				}
			}
		}
	}

	// Tracer advection rides the mass flux
	for c := 0; c < g.Eqs.NumTracers; c++ {
		for k := 0; k < nLev; k++ {
			for a := 0; a < p.Box.ElementCountA(); a++ {
				for b := 0; b < p.Box.ElementCountB(); b++ {
					i0 := p.Box.AInteriorBegin() + a*order
					j0 := p.Box.BInteriorBegin() + b*order
					for i := 0; i < order; i++ {
						for j := 0; j < order; j++ {
							ij := p.IJ(i0+i, j0+j)
							var dFa, dFb float64
							for s := 0; s < order; s++ {
								ijA := p.IJ(i0+s, j0+j)
								ijB := p.IJ(i0+i, j0+s)
								rhoA := in.Node[eqset.RIx].At(k, ijA)
								rhoB := in.Node[eqset.RIx].At(k, ijB)
								dFa += g.DxBasis1D.At(s, i) *
									p.Jacobian.At(k, ijA) *
									in.Tracers[c].At(k, ijA) *
									in.Node[eqset.UIx].At(k, ijA) / rhoA
								dFb += g.DxBasis1D.At(s, j) *
									p.Jacobian.At(k, ijB) *
									in.Tracers[c].At(k, ijB) *
									in.Node[eqset.VIx].At(k, ijB) / rhoB
							}
							dFa /= p.Box.DeltaA
							dFb /= p.Box.DeltaB
							tend.Tracers[c].Set(k, ij, -(dFa+dFb)/p.Jacobian.At(k, ij))
						}
					}
				}
			}
		}
	}
}

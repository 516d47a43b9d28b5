package grid

import (
	"math"

	"github.com/stratus-model/stratus/model"
	"github.com/stratus-model/stratus/testcase"
)

// EvaluateTopography samples the test case topography at every node and
// computes its derivatives through the spectral derivative matrix.
func (g *Grid) EvaluateTopography(tc testcase.TestCase) (err error) {
	for _, p := range g.Patches {
		if err = p.evaluateTopography(tc); err != nil {
			return
		}
	}
	return
}

func (p *Patch) evaluateTopography(tc testcase.TestCase) (err error) {
	var (
		g     = p.grid
		order = g.Cfg.HorizontalOrder
	)
	for i := 0; i < p.nA; i++ {
		for j := 0; j < p.nB; j++ {
			ij := p.IJ(i, j)
			zs := tc.EvaluateTopography(g.Phys, p.XNode.AtVec(ij), p.YNode.AtVec(ij))
			if zs >= g.ZTop {
				err = model.Errorf(model.ConfigurationError,
					"topography %v exceeds model top %v at (%v, %v)",
					zs, g.ZTop, p.XNode.AtVec(ij), p.YNode.AtVec(ij))
				return
			}
			p.Topography.SetVal(ij, zs)
		}
	}

	// Spectral derivatives within each interior element
	for a := 0; a < p.Box.ElementCountA(); a++ {
		for b := 0; b < p.Box.ElementCountB(); b++ {
			iElemA := p.Box.AInteriorBegin() + a*order
			iElemB := p.Box.BInteriorBegin() + b*order

			for i := 0; i < order; i++ {
				for j := 0; j < order; j++ {
					iA := iElemA + i
					iB := iElemB + j

					var dDaZs, dDbZs float64
					for s := 0; s < order; s++ {
						dDaZs += g.DxBasis1D.At(s, i) *
							p.Topography.AtVec(p.IJ(iElemA+s, iB))
						dDbZs += g.DxBasis1D.At(s, j) *
							p.Topography.AtVec(p.IJ(iA, iElemB+s))
					}
					dDaZs /= p.Box.DeltaA
					dDbZs /= p.Box.DeltaB

					ij := p.IJ(iA, iB)
					p.TopoDerivA.SetVal(ij, dDaZs)
					p.TopoDerivB.SetVal(ij, dDbZs)
				}
			}
		}
	}
	return
}

// EvaluateGeometricTerms computes heights, vertical coordinate derivatives,
// metric tensors and quadrature areas at every node and interface.
func (g *Grid) EvaluateGeometricTerms() (err error) {
	// Verify normalized areas
	var wNodeSum, wEdgeSum float64
	for _, w := range g.WNode {
		wNodeSum += w
	}
	for _, w := range g.WEdge {
		wEdgeSum += w
	}
	if math.Abs(wNodeSum-1.0) > 1.e-13 {
		return model.Errorf(model.GeometryError,
			"normalized level areas sum to %1.15e", wNodeSum)
	}
	if math.Abs(wEdgeSum-1.0) > 1.e-13 {
		return model.Errorf(model.GeometryError,
			"normalized interface areas sum to %1.15e", wEdgeSum)
	}

	for _, p := range g.Patches {
		if err = p.evaluateGeometricTerms(); err != nil {
			return
		}
	}
	return
}

func (p *Patch) evaluateGeometricTerms() (err error) {
	var (
		g     = p.grid
		order = g.Cfg.HorizontalOrder
		nLev  = g.NLevels()
	)

	// Coriolis parameter on a beta plane about the reference latitude; an
	// unset reference latitude runs without rotation
	if g.Cfg.RefLat != 0 {
		var (
			y0    = 0.5 * (g.Cfg.Bounds[3] + g.Cfg.Bounds[2])
			fp    = 2.0 * g.Phys.Omega * math.Sin(g.Cfg.RefLat)
			betap = 2.0 * g.Phys.Omega * math.Cos(g.Cfg.RefLat) / g.Phys.EarthRadius
		)
		for ij := 0; ij < p.nIJ; ij++ {
			p.CoriolisF.SetVal(ij, fp+betap*(p.YNode.AtVec(ij)-y0))
		}
	}

	for a := 0; a < p.Box.ElementCountA(); a++ {
		for b := 0; b < p.Box.ElementCountB(); b++ {
			iElemA := p.Box.AInteriorBegin() + a*order
			iElemB := p.Box.BInteriorBegin() + b*order

			for i := 0; i < order; i++ {
				for j := 0; j < order; j++ {
					iA := iElemA + i
					iB := iElemB + j
					ij := p.IJ(iA, iB)

					zs := p.Topography.AtVec(ij)
					dDaZs := p.TopoDerivA.AtVec(ij)
					dDbZs := p.TopoDerivB.AtVec(ij)

					// 2D metric is the identity on the Cartesian grid
					p.Jacobian2D.SetVal(ij, 1.0)
					p.ContraMetric2DA[0].SetVal(ij, 1.0)
					p.ContraMetric2DA[1].SetVal(ij, 0.0)
					p.ContraMetric2DB[0].SetVal(ij, 0.0)
					p.ContraMetric2DB[1].SetVal(ij, 1.0)
					p.CovMetric2DA[0].SetVal(ij, 1.0)
					p.CovMetric2DA[1].SetVal(ij, 0.0)
					p.CovMetric2DB[0].SetVal(ij, 0.0)
					p.CovMetric2DB[1].SetVal(ij, 1.0)

					wi := g.GLLWeights1D.AtVec(i)
					wj := g.GLLWeights1D.AtVec(j)

					// Gal-Chen and Somerville terrain following coordinate
					// on model levels
					for k := 0; k < nLev; k++ {
						stretch, dStretch := g.Stretch.Evaluate(g.REtaLevels[k])

						z := zs + (g.ZTop-zs)*stretch
						dDaZ := (1.0 - stretch) * dDaZs
						dDbZ := (1.0 - stretch) * dDbZs
						dDxZ := (g.ZTop - zs) * dStretch

						if dDxZ <= 0 {
							err = model.Errorf(model.GeometryError,
								"vertical map not monotone at level %d (dZ/dxi = %v)", k, dDxZ)
							return
						}

						p.ZLevels.Set(k, ij, z)
						jac := dDxZ * p.Jacobian2D.AtVec(ij)
						p.Jacobian.Set(k, ij, jac)
						p.ElementArea.Set(k, ij,
							jac*wi*p.Box.DeltaA*wj*p.Box.DeltaB*g.WNode[k])

						p.ContraMetricA[0].Set(k, ij, 1.0)
						p.ContraMetricA[1].Set(k, ij, 0.0)
						p.ContraMetricA[2].Set(k, ij, -dDaZ/dDxZ)

						p.ContraMetricB[0].Set(k, ij, 0.0)
						p.ContraMetricB[1].Set(k, ij, 1.0)
						p.ContraMetricB[2].Set(k, ij, -dDbZ/dDxZ)

						p.ContraMetricXi[0].Set(k, ij, -dDaZ/dDxZ)
						p.ContraMetricXi[1].Set(k, ij, -dDbZ/dDxZ)
						p.ContraMetricXi[2].Set(k, ij,
							(1.0+dDaZ*dDaZ+dDbZ*dDbZ)/(dDxZ*dDxZ))

						p.CovMetricA[0].Set(k, ij, 1.0+dDaZ*dDaZ)
						p.CovMetricA[1].Set(k, ij, dDaZ*dDbZ)
						p.CovMetricA[2].Set(k, ij, dDaZ*dDxZ)

						p.CovMetricB[0].Set(k, ij, dDbZ*dDaZ)
						p.CovMetricB[1].Set(k, ij, 1.0+dDbZ*dDbZ)
						p.CovMetricB[2].Set(k, ij, dDbZ*dDxZ)

						p.CovMetricXi[0].Set(k, ij, dDaZ*dDxZ)
						p.CovMetricXi[1].Set(k, ij, dDbZ*dDxZ)
						p.CovMetricXi[2].Set(k, ij, dDxZ*dDxZ)

						p.DerivRNode[0].Set(k, ij, dDaZ)
						p.DerivRNode[1].Set(k, ij, dDbZ)
						p.DerivRNode[2].Set(k, ij, dDxZ)
					}

					// Metric terms at vertical interfaces
					for k := 0; k <= nLev; k++ {
						stretch, dStretch := g.Stretch.Evaluate(g.REtaInterfaces[k])

						z := zs + (g.ZTop-zs)*stretch
						dDaZ := (1.0 - stretch) * dDaZs
						dDbZ := (1.0 - stretch) * dDbZs
						dDxZ := (g.ZTop - zs) * dStretch

						if dDxZ <= 0 {
							err = model.Errorf(model.GeometryError,
								"vertical map not monotone at interface %d (dZ/dxi = %v)", k, dDxZ)
							return
						}

						p.ZInterfaces.Set(k, ij, z)
						jac := dDxZ * p.Jacobian2D.AtVec(ij)
						p.JacobianREdge.Set(k, ij, jac)
						p.ElementAreaREdge.Set(k, ij,
							jac*wi*p.Box.DeltaA*wj*p.Box.DeltaB*g.WEdge[k])

						p.ContraMetricAREdge[0].Set(k, ij, 1.0)
						p.ContraMetricAREdge[1].Set(k, ij, 0.0)
						p.ContraMetricAREdge[2].Set(k, ij, -dDaZ/dDxZ)

						p.ContraMetricBREdge[0].Set(k, ij, 0.0)
						p.ContraMetricBREdge[1].Set(k, ij, 1.0)
						p.ContraMetricBREdge[2].Set(k, ij, -dDbZ/dDxZ)

						p.ContraMetricXiREdge[0].Set(k, ij, -dDaZ/dDxZ)
						p.ContraMetricXiREdge[1].Set(k, ij, -dDbZ/dDxZ)
						p.ContraMetricXiREdge[2].Set(k, ij,
							(1.0+dDaZ*dDaZ+dDbZ*dDbZ)/(dDxZ*dDxZ))

						p.DerivRREdge[0].Set(k, ij, dDaZ)
						p.DerivRREdge[1].Set(k, ij, dDbZ)
						p.DerivRREdge[2].Set(k, ij, dDxZ)
					}
				}
			}
		}
	}
	return
}

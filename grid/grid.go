// Package grid owns the degrees of freedom of the model: the patch arena,
// per-patch coordinate, metric and state arrays, and the direct stiffness
// summation and boundary condition machinery that join them.
package grid

import (
	"github.com/sirupsen/logrus"

	"github.com/stratus-model/stratus/colop"
	"github.com/stratus-model/stratus/eqset"
	"github.com/stratus-model/stratus/model"
	"github.com/stratus-model/stratus/patch"
	"github.com/stratus-model/stratus/phys"
	"github.com/stratus-model/stratus/quadrature"
	"github.com/stratus-model/stratus/utils"
)

// ColumnOperatorSet bundles the banded column operators built once per grid
// and read concurrently thereafter.
type ColumnOperatorSet struct {
	InterpNodeToREdge *colop.Operator
	InterpREdgeToNode *colop.Operator
	DiffNodeToNode    *colop.Operator // flux correction method
	DiffNodeToREdge   *colop.Operator // interface method, composed with interp
	DiffREdgeToNode   *colop.Operator // interface method
	DiffREdgeToREdge  *colop.Operator
}

// Config carries everything needed to reconstruct the mesh deterministically.
type Config struct {
	Bounds          [6]float64 // {x0, x1, y0, y1, z0, z1}
	NElemA, NElemB  int        // base resolution in elements
	NLev            int        // vertical levels
	HorizontalOrder int
	VerticalOrder   int
	NPatchA, NPatchB int // patch tiling (defaults to 1 x 1)
	HaloElements    int  // defaults to 1
	PeriodicA       bool
	PeriodicB       bool
	RefLat          float64
	ReferenceLength float64
	Staggering      model.VerticalStaggering
	VelocityRep     model.VelocityRepresentation
	StretchName     string
	StretchRefine   float64
	Dimensionality  int
	NumTracers      int
	NumStateSlots   int // at least 4
}

// Grid is the arena that owns all patches by index. Patches reference the
// grid through a non-owning handle established at construction.
type Grid struct {
	Phys phys.Constants
	Eqs  eqset.EquationSet
	Cfg  Config

	ZTop    float64
	Stretch VerticalStretch

	// Vertical reference coordinate and normalized areas
	REtaLevels     []float64
	REtaInterfaces []float64
	WNode, WEdge   []float64

	// Horizontal spectral kernels on the reference element [0,1]
	GLLNodes1D   utils.Vector
	GLLWeights1D utils.Vector
	DxBasis1D    utils.Matrix // DxBasis1D[s][i] = dL_s/dxi at node i

	Ops ColumnOperatorSet

	Conn      *patch.Connectivity
	Exchanger patch.Exchanger
	Patches   []*Patch

	HasRefState bool

	log *logrus.Entry
}

// New validates the configuration and constructs the grid topology. Data
// arrays are not allocated until InitializeData.
func New(pc phys.Constants, cfg Config, zTop float64, log *logrus.Entry) (g *Grid, err error) {
	if cfg.NPatchA == 0 {
		cfg.NPatchA = 1
	}
	if cfg.NPatchB == 0 {
		cfg.NPatchB = 1
	}
	if cfg.HaloElements == 0 {
		cfg.HaloElements = 1
	}
	if cfg.NumStateSlots < 4 {
		cfg.NumStateSlots = 4
	}
	if cfg.Dimensionality == 0 {
		cfg.Dimensionality = 3
	}

	if cfg.NElemA < 1 || cfg.NElemB < 1 || cfg.NLev < 1 {
		err = model.Errorf(model.ConfigurationError,
			"invalid resolution %dx%dx%d", cfg.NElemA, cfg.NElemB, cfg.NLev)
		return
	}
	if cfg.HorizontalOrder < 2 || cfg.HorizontalOrder > 8 {
		err = model.Errorf(model.ConfigurationError,
			"horizontal order %d outside [2,8]", cfg.HorizontalOrder)
		return
	}
	if cfg.VerticalOrder < 1 {
		err = model.Errorf(model.ConfigurationError,
			"vertical order %d must be positive", cfg.VerticalOrder)
		return
	}
	if cfg.NLev%cfg.VerticalOrder != 0 {
		err = model.Errorf(model.ConfigurationError,
			"levels %d not divisible by vertical order %d",
			cfg.NLev, cfg.VerticalOrder)
		return
	}
	if cfg.Dimensionality == 2 && cfg.VerticalOrder != 1 {
		err = model.Errorf(model.ConfigurationError,
			"2D problems require vertical order 1, have %d", cfg.VerticalOrder)
		return
	}
	if cfg.NElemA%cfg.NPatchA != 0 || cfg.NElemB%cfg.NPatchB != 0 {
		err = model.Errorf(model.ConfigurationError,
			"patch tiling %dx%d does not divide resolution %dx%d",
			cfg.NPatchA, cfg.NPatchB, cfg.NElemA, cfg.NElemB)
		return
	}
	if zTop <= cfg.Bounds[4] {
		err = model.Errorf(model.ConfigurationError,
			"model top %v below domain base %v", zTop, cfg.Bounds[4])
		return
	}

	var stretch VerticalStretch
	if stretch, err = NewStretch(cfg.StretchName, cfg.StretchRefine); err != nil {
		return
	}

	var eqs eqset.EquationSet
	if eqs, err = eqset.New(cfg.Dimensionality, cfg.NumTracers); err != nil {
		return
	}

	g = &Grid{
		Phys:    pc,
		Eqs:     eqs,
		Cfg:     cfg,
		ZTop:    zTop,
		Stretch: stretch,
		log:     log,
	}

	g.initVerticalCoordinate()
	if err = g.initHorizontalBasis(); err != nil {
		return
	}
	if err = g.initColumnOperators(); err != nil {
		return
	}

	// Patch arena and connectivity
	g.Conn = patch.BuildConnectivity(cfg.NPatchA, cfg.NPatchB, cfg.PeriodicA, cfg.PeriodicB)
	g.Exchanger = patch.NewLocalExchanger(g.Conn)

	var (
		elemPerPatchA = cfg.NElemA / cfg.NPatchA
		elemPerPatchB = cfg.NElemB / cfg.NPatchB
		deltaA        = (cfg.Bounds[1] - cfg.Bounds[0]) / float64(cfg.NElemA)
		deltaB        = (cfg.Bounds[3] - cfg.Bounds[2]) / float64(cfg.NElemB)
	)
	for pb := 0; pb < cfg.NPatchB; pb++ {
		for pa := 0; pa < cfg.NPatchA; pa++ {
			var box *patch.Box
			box, err = patch.NewBox(
				cfg.HorizontalOrder, cfg.HaloElements,
				pa*elemPerPatchA, (pa+1)*elemPerPatchA,
				pb*elemPerPatchB, (pb+1)*elemPerPatchB,
				cfg.Bounds[0], cfg.Bounds[2], deltaA, deltaB)
			if err != nil {
				return
			}
			g.Patches = append(g.Patches, newPatch(g, len(g.Patches), box))
		}
	}
	return
}

// initVerticalCoordinate fills the uniform reference levels, interfaces and
// their normalized areas.
func (g *Grid) initVerticalCoordinate() {
	var (
		n = g.Cfg.NLev
	)
	g.REtaLevels = make([]float64, n)
	g.REtaInterfaces = make([]float64, n+1)
	g.WNode = make([]float64, n)
	g.WEdge = make([]float64, n+1)
	for k := 0; k < n; k++ {
		g.REtaLevels[k] = (float64(k) + 0.5) / float64(n)
		g.WNode[k] = 1. / float64(n)
	}
	for k := 0; k <= n; k++ {
		g.REtaInterfaces[k] = float64(k) / float64(n)
		g.WEdge[k] = 1. / float64(n)
	}
	g.WEdge[0] = 0.5 / float64(n)
	g.WEdge[n] = 0.5 / float64(n)
}

// initHorizontalBasis computes the GLL nodes, weights and the spectral
// derivative matrix on the reference element.
func (g *Grid) initHorizontalBasis() (err error) {
	var (
		p = g.Cfg.HorizontalOrder
	)
	if g.GLLNodes1D, g.GLLWeights1D, err = quadrature.LobattoPoints(p, 0, 1); err != nil {
		return
	}
	g.DxBasis1D = utils.NewMatrix(p, p)
	pts := g.GLLNodes1D.DataP()
	for i := 0; i < p; i++ {
		c := quadrature.LagrangeDerivCoeffs(pts, pts[i])
		for s := 0; s < p; s++ {
			g.DxBasis1D.Set(s, i, c[s])
		}
	}
	return
}

// initColumnOperators builds the full vertical operator set; the same six
// operators are built for every staggering.
func (g *Grid) initColumnOperators() (err error) {
	var (
		p     = g.Cfg.VerticalOrder
		node  = g.REtaLevels
		redge = g.REtaInterfaces
		ops   ColumnOperatorSet
	)
	if ops.InterpNodeToREdge, err = colop.NewInterp(
		colop.Levels, p, node, redge, redge, false); err != nil {
		return
	}
	if ops.InterpREdgeToNode, err = colop.NewInterp(
		colop.Interfaces, p, node, redge, node, false); err != nil {
		return
	}
	if ops.DiffNodeToNode, err = colop.NewDiffFluxCorrection(
		p, node, redge, node, false); err != nil {
		return
	}
	if ops.DiffNodeToREdge, err = colop.NewDiff(
		colop.Levels, p, node, redge, redge, false); err != nil {
		return
	}
	if ops.DiffREdgeToNode, err = colop.NewDiff(
		colop.Interfaces, p, node, redge, node, false); err != nil {
		return
	}
	if ops.DiffREdgeToREdge, err = colop.NewDiff(
		colop.Interfaces, p, node, redge, redge, false); err != nil {
		return
	}
	g.Ops = ops
	return
}

// NLevels returns the number of model levels.
func (g *Grid) NLevels() int { return g.Cfg.NLev }

// NInterfaces returns the number of model interfaces.
func (g *Grid) NInterfaces() int { return g.Cfg.NLev + 1 }

// WOnInterfaces reports whether w is stored on interfaces under the
// configured staggering.
func (g *Grid) WOnInterfaces() bool {
	return g.Cfg.Staggering != model.StaggerLevels
}

func (g *Grid) logger() *logrus.Entry {
	if g.log == nil {
		g.log = logrus.NewEntry(logrus.StandardLogger())
	}
	return g.log
}

// Package output samples the model state onto a regular output mesh and
// writes NetCDF-shaped records.
package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"

	"github.com/stratus-model/stratus/eqset"
	"github.com/stratus-model/stratus/grid"
	"github.com/stratus-model/stratus/model"
	"github.com/stratus-model/stratus/utils"
)

var varNames = []string{"U", "V", "Theta", "W", "Rho"}

// Manager samples state frames and writes one NetCDF record per frame.
type Manager struct {
	Grid *grid.Grid

	Dir           string
	Prefix        string
	NOutX, NOutY  int
	SubtractRef   bool
	WithDiagnostics bool

	frame int
	log   *logrus.Entry
}

func NewManager(g *grid.Grid, dir, prefix string, subtractRef bool, log *logrus.Entry) (m *Manager) {
	m = &Manager{
		Grid:        g,
		Dir:         dir,
		Prefix:      prefix,
		NOutX:       g.Cfg.NElemA*g.Cfg.HorizontalOrder + 1,
		NOutY:       g.Cfg.NElemB*g.Cfg.HorizontalOrder + 1,
		SubtractRef: subtractRef,
		log:         log,
	}
	if m.Prefix == "" {
		m.Prefix = "out"
	}
	return
}

// sample fills one (k, j, i) array per component on the regular output mesh.
func (m *Manager) sample(slotIx int) (arrays []*sparse.DenseArray, err error) {
	var (
		g    = m.Grid
		nLev = g.NLevels()
	)
	arrays = make([]*sparse.DenseArray, eqset.NumComponents)
	for c := range arrays {
		arrays[c] = sparse.ZerosDense(nLev, m.NOutY, m.NOutX)
	}

	xs := m.axis(g.Cfg.Bounds[0], g.Cfg.Bounds[1], m.NOutX)
	ys := m.axis(g.Cfg.Bounds[2], g.Cfg.Bounds[3], m.NOutY)

	for _, p := range g.Patches {
		// Points owned by this patch
		var alpha, beta []float64
		var js, is []int
		aMin := p.Box.AEdge(p.Box.Halo)
		aMax := p.Box.AEdge(p.Box.Halo + p.Box.ElementCountA())
		bMin := p.Box.BEdge(p.Box.Halo)
		bMax := p.Box.BEdge(p.Box.Halo + p.Box.ElementCountB())
		for j, y := range ys {
			if y < bMin || y > bMax {
				continue
			}
			for i, x := range xs {
				if x < aMin || x > aMax {
					continue
				}
				alpha = append(alpha, x)
				beta = append(beta, y)
				js = append(js, j)
				is = append(is, i)
			}
		}
		if len(alpha) == 0 {
			continue
		}

		var vals []utils.Matrix
		vals, err = p.InterpolateData(alpha, beta, grid.InterpState, slotIx, m.SubtractRef)
		if err != nil {
			return
		}
		for c := 0; c < eqset.NumComponents; c++ {
			for n := range alpha {
				for k := 0; k < nLev; k++ {
					arrays[c].Set(vals[c].At(k, n), k, js[n], is[n])
				}
			}
		}
	}
	return
}

// sampleDiagnostic fills one (k, j, i) array for a single-component data
// kind such as vorticity or divergence.
func (m *Manager) sampleDiagnostic(kind grid.InterpDataKind) (arr *sparse.DenseArray, err error) {
	var (
		g    = m.Grid
		nLev = g.NLevels()
	)
	arr = sparse.ZerosDense(nLev, m.NOutY, m.NOutX)

	xs := m.axis(g.Cfg.Bounds[0], g.Cfg.Bounds[1], m.NOutX)
	ys := m.axis(g.Cfg.Bounds[2], g.Cfg.Bounds[3], m.NOutY)

	for _, p := range g.Patches {
		var alpha, beta []float64
		var js, is []int
		aMin := p.Box.AEdge(p.Box.Halo)
		aMax := p.Box.AEdge(p.Box.Halo + p.Box.ElementCountA())
		bMin := p.Box.BEdge(p.Box.Halo)
		bMax := p.Box.BEdge(p.Box.Halo + p.Box.ElementCountB())
		for j, y := range ys {
			if y < bMin || y > bMax {
				continue
			}
			for i, x := range xs {
				if x < aMin || x > aMax {
					continue
				}
				alpha = append(alpha, x)
				beta = append(beta, y)
				js = append(js, j)
				is = append(is, i)
			}
		}
		if len(alpha) == 0 {
			continue
		}
		var vals []utils.Matrix
		vals, err = p.InterpolateData(alpha, beta, kind, 0, false)
		if err != nil {
			return
		}
		for n := range alpha {
			for k := 0; k < nLev; k++ {
				arr.Set(vals[0].At(k, n), k, js[n], is[n])
			}
		}
	}
	return
}

func (m *Manager) axis(lo, hi float64, n int) (xs []float64) {
	xs = make([]float64, n)
	for i := range xs {
		xs[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return
}

// WriteFrame samples the slot and writes a NetCDF record with axis
// variables for the x edges, y edges, model levels and frame time.
func (m *Manager) WriteFrame(slotIx int, time float64) (err error) {
	var (
		g    = m.Grid
		nLev = g.NLevels()
	)
	arrays, err := m.sample(slotIx)
	if err != nil {
		return
	}

	h := cdf.NewHeader(
		[]string{"time", "lev", "y", "x"},
		[]int{1, nLev, m.NOutY, m.NOutX})
	h.AddVariable("x", []string{"x"}, []float64{0})
	h.AddAttribute("x", "units", "m")
	h.AddVariable("y", []string{"y"}, []float64{0})
	h.AddAttribute("y", "units", "m")
	h.AddVariable("lev", []string{"lev"}, []float64{0})
	h.AddAttribute("lev", "description", "reference vertical coordinate of model levels")
	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddAttribute("time", "units", "s")
	for _, v := range varNames {
		h.AddVariable(v, []string{"lev", "y", "x"}, []float64{0})
		if m.SubtractRef {
			h.AddAttribute(v, "reference_state", "subtracted")
		}
	}
	if m.WithDiagnostics {
		h.AddVariable("Vorticity", []string{"lev", "y", "x"}, []float64{0})
		h.AddVariable("Divergence", []string{"lev", "y", "x"}, []float64{0})
	}
	h.Define()
	for _, e := range h.Check() {
		if e != nil {
			return model.Errorf(model.IOError, "invalid output header: %v", e)
		}
	}

	name := filepath.Join(m.Dir, fmt.Sprintf("%s_%04d.nc", m.Prefix, m.frame))
	ff, err := os.Create(name)
	if err != nil {
		return model.WrapIO(err, "creating output file %s", name)
	}
	defer ff.Close()

	f, err := cdf.Create(ff, h)
	if err != nil {
		return model.WrapIO(err, "writing output header %s", name)
	}

	writeVar := func(v string, begin, end []int, data []float64) {
		if err != nil {
			return
		}
		w := f.Writer(v, begin, end)
		if _, werr := w.Write(data); werr != nil {
			err = model.WrapIO(werr, "writing %s to %s", v, name)
		}
	}

	writeVar("x", []int{0}, []int{m.NOutX},
		m.axis(g.Cfg.Bounds[0], g.Cfg.Bounds[1], m.NOutX))
	writeVar("y", []int{0}, []int{m.NOutY},
		m.axis(g.Cfg.Bounds[2], g.Cfg.Bounds[3], m.NOutY))
	writeVar("lev", []int{0}, []int{nLev}, g.REtaLevels)
	writeVar("time", []int{0}, []int{1}, []float64{time})
	shape3 := []int{nLev, m.NOutY, m.NOutX}
	for c, v := range varNames {
		writeVar(v, []int{0, 0, 0}, shape3, arrays[c].Elements)
	}
	if m.WithDiagnostics {
		m.Grid.ComputeVorticityDivergence(slotIx)
		for name2, kind := range map[string]grid.InterpDataKind{
			"Vorticity": grid.InterpVorticity, "Divergence": grid.InterpDivergence,
		} {
			var arr *sparse.DenseArray
			if arr, err = m.sampleDiagnostic(kind); err != nil {
				return
			}
			writeVar(name2, []int{0, 0, 0}, shape3, arr.Elements)
		}
	}
	if err != nil {
		return
	}

	if m.log != nil {
		m.log.WithFields(logrus.Fields{
			"file": name, "time": time,
		}).Info("wrote output frame")
	}
	m.frame++
	return
}

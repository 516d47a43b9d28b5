package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratus-model/stratus/grid"
	"github.com/stratus-model/stratus/model"
	"github.com/stratus-model/stratus/phys"
	"github.com/stratus-model/stratus/testcase"
)

func TestWriteFrame(t *testing.T) {
	tc := testcase.NewThermalBubble()
	cfg := grid.Config{
		Bounds:          tc.Bounds(),
		NElemA:          3,
		NElemB:          1,
		NLev:            6,
		HorizontalOrder: 4,
		VerticalOrder:   1,
		PeriodicA:       true,
		PeriodicB:       true,
		Staggering:      model.StaggerCharneyPhillips,
	}
	g, err := grid.New(phys.New(), cfg, tc.ZTop(), nil)
	require.NoError(t, err)
	g.InitializeData()
	require.NoError(t, g.EvaluateTestCase(tc, 0, 0))

	dir := t.TempDir()
	m := NewManager(g, dir, "bubble", false, nil)
	require.NoError(t, m.WriteFrame(0, 0.))
	require.NoError(t, m.WriteFrame(0, 10.))

	// Frames are numbered consecutively
	name := filepath.Join(dir, "bubble_0001.nc")
	fi, err := os.Stat(name)
	require.NoError(t, err)
	assert.Greater(t, fi.Size(), int64(0))

	// The record reads back with the declared shape
	ff, err := os.Open(name)
	require.NoError(t, err)
	defer ff.Close()
	f, err := cdf.Open(ff)
	require.NoError(t, err)

	dims := f.Header.Lengths("Theta")
	require.Len(t, dims, 3)
	assert.Equal(t, 6, dims[0])
	assert.Equal(t, m.NOutY, dims[1])
	assert.Equal(t, m.NOutX, dims[2])

	r := f.Reader("Theta", nil, nil)
	buf := r.Zero(-1)
	_, err = r.Read(buf)
	require.NoError(t, err)
	vals := buf.([]float64)
	require.Len(t, vals, 6*m.NOutY*m.NOutX)
	// Conservative theta (rho theta) near the surface is around 300 rho
	assert.Greater(t, vals[0], 100.)
}

// Reference subtraction leaves only the perturbation.
func TestWriteFrameSubtractReference(t *testing.T) {
	tc := testcase.NewThermalBubble()
	cfg := grid.Config{
		Bounds:          tc.Bounds(),
		NElemA:          3,
		NElemB:          1,
		NLev:            6,
		HorizontalOrder: 4,
		VerticalOrder:   1,
		PeriodicA:       true,
		PeriodicB:       true,
	}
	g, err := grid.New(phys.New(), cfg, tc.ZTop(), nil)
	require.NoError(t, err)
	g.InitializeData()
	require.NoError(t, g.EvaluateTestCase(tc, 0, 0))

	m := NewManager(g, t.TempDir(), "", true, nil)
	arrays, err := m.sample(0)
	require.NoError(t, err)

	// Perturbation is bounded by rho * thetaC, up to interpolation overshoot
	for _, v := range arrays[2].Elements {
		assert.Less(t, v, 1.0)
		assert.Greater(t, v, -0.1)
	}
}

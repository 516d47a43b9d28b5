package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBox(t *testing.T) {
	b, err := NewBox(4, 1, 0, 3, 0, 2, 0, -1000, 100, 500)
	require.NoError(t, err)

	assert.Equal(t, 3, b.ElementCountA())
	assert.Equal(t, 2, b.ElementCountB())
	assert.Equal(t, (3+2)*4, b.ATotalWidth())
	assert.Equal(t, 4, b.AInteriorBegin())
	assert.Equal(t, 16, b.AInteriorEnd())

	// Halo element sits left of the domain origin
	assert.InDelta(t, -100., b.AEdge(0), 1.e-12)
	assert.InDelta(t, 0., b.AEdge(1), 1.e-12)

	// First interior node is the left GLL endpoint of element 0
	assert.InDelta(t, 0., b.ANode(b.AInteriorBegin()), 1.e-12)
	// Last node of element 0 and first of element 1 coincide
	assert.InDelta(t, 100., b.ANode(b.AInteriorBegin()+3), 1.e-12)
	assert.InDelta(t, 100., b.ANode(b.AInteriorBegin()+4), 1.e-12)

	assert.True(t, b.IsInterior(4, 4))
	assert.False(t, b.IsInterior(3, 4))

	_, err = NewBox(4, 1, 0, 0, 0, 2, 0, 0, 1, 1)
	assert.Error(t, err)
}

func TestConnectivityPeriodic(t *testing.T) {
	c := BuildConnectivity(3, 2, true, true)
	require.Len(t, c.Neighbors, 6)

	// Patch layout: 0 1 2 / 3 4 5 (row-major, b increasing upward)
	assert.Equal(t, 1, c.Neighbors[0][DirRight].Patch)
	assert.Equal(t, 2, c.Neighbors[0][DirLeft].Patch)
	assert.Equal(t, 3, c.Neighbors[0][DirTop].Patch)
	assert.Equal(t, 3, c.Neighbors[0][DirBottom].Patch)
	assert.Equal(t, DirLeft, c.Neighbors[0][DirRight].Dir)

	// Corners compose cardinal hops
	assert.Equal(t, 4, c.Neighbors[0][DirTopRight].Patch)
	assert.Equal(t, 5, c.Neighbors[0][DirTopLeft].Patch)
}

func TestConnectivityWalls(t *testing.T) {
	c := BuildConnectivity(2, 2, false, false)

	assert.Equal(t, NoNeighbor, c.Neighbors[0][DirLeft].Patch)
	assert.Equal(t, NoNeighbor, c.Neighbors[0][DirBottom].Patch)
	assert.Equal(t, 1, c.Neighbors[0][DirRight].Patch)
	assert.Equal(t, 2, c.Neighbors[0][DirTop].Patch)
	assert.Equal(t, 3, c.Neighbors[0][DirTopRight].Patch)
	assert.Equal(t, NoNeighbor, c.Neighbors[0][DirTopLeft].Patch)
	assert.Equal(t, NoNeighbor, c.Neighbors[3][DirTopRight].Patch)
	assert.Equal(t, 0, c.Neighbors[3][DirBottomLeft].Patch)
}

func TestLocalExchanger(t *testing.T) {
	c := BuildConnectivity(2, 1, true, false)
	ex := NewLocalExchanger(c)

	ex.Post(0, DirRight, []float64{1, 2})
	ex.Post(0, DirLeft, []float64{3})
	ex.Post(1, DirRight, []float64{4})
	ex.Post(1, DirLeft, []float64{5, 6})
	// Walls drop the message
	ex.Post(0, DirTop, []float64{9})
	ex.Post(0, DirBottom, []float64{9})

	got := ex.Collect(1)
	assert.Equal(t, []float64{1, 2}, got[DirLeft])
	assert.Equal(t, []float64{3}, got[DirRight])

	got = ex.Collect(0)
	assert.Equal(t, []float64{4}, got[DirLeft])
	assert.Equal(t, []float64{5, 6}, got[DirRight])
}

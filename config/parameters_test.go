package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndValidate(t *testing.T) {
	data := []byte(`
Title: Schar mountain waves
Case: schar
ResolutionX: 50
ResolutionY: 1
Levels: 40
HorizontalOrder: 4
VerticalOrder: 1
DeltaT: 0.5
EndTime: 3600
TimeScheme: ark3
BCs:
  x: periodic
  "y": reflective
`)
	var p Parameters
	require.NoError(t, p.Parse(data))
	assert.Equal(t, "schar", p.Case)
	assert.Equal(t, 50, p.ResolutionX)
	assert.Equal(t, "ark3", p.TimeScheme)
	assert.True(t, p.Periodic("x"))
	assert.False(t, p.Periodic("y"))
	assert.True(t, p.Periodic("z"))
	require.NoError(t, p.Validate())

	p.Levels = 41
	p.VerticalOrder = 2
	assert.Error(t, p.Validate())

	p.VerticalOrder = 0
	assert.Error(t, p.Validate())
}

func TestDefaults(t *testing.T) {
	p := Default()
	require.NoError(t, p.Validate())
	assert.Equal(t, 36, p.ResolutionX)
	assert.Equal(t, 72, p.Levels)
	assert.Equal(t, 4, p.HorizontalOrder)
	assert.Equal(t, 1, p.VerticalOrder)
}

func TestParseRejectsGarbage(t *testing.T) {
	var p Parameters
	assert.Error(t, p.Parse([]byte("Title: [unclosed")))
}

package phys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstants(t *testing.T) {
	c := New()
	assert.Equal(t, 287.0, c.Rd)
	assert.InDelta(t, 287.0/1004.5, c.Kappa(), 1.e-15)
	assert.InDelta(t, 1004.5/717.5, c.Gamma(), 1.e-15)

	// Options produce a modified copy without touching the default
	f := New(WithOmega(0))
	assert.Equal(t, 0., f.Omega)
	assert.Equal(t, 7.29212e-5, New().Omega)
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	err := Errorf(GeometryError, "jacobian non-positive at k=%d", 3)
	cat, ok := CategoryOf(err)
	assert.True(t, ok)
	assert.Equal(t, GeometryError, cat)
	assert.Contains(t, err.Error(), "geometry error")
	assert.Contains(t, err.Error(), "jacobian non-positive at k=3")
	assert.False(t, IsRecoverable(err))

	serr := RecoverableErrorf("JFNK failed to converge in column (%d,%d)", 1, 2)
	assert.True(t, IsRecoverable(serr))
	cat, _ = CategoryOf(serr)
	assert.Equal(t, SolverError, cat)
}

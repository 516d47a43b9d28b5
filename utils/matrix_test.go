package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatrixOps(t *testing.T) {
	A := NewMatrix(2, 2, []float64{1, 2, 3, 4})
	B := A.Copy().Scale(2)
	assert.Equal(t, 2., B.At(0, 0))
	assert.Equal(t, 8., B.At(1, 1))
	// Copy did not alias
	assert.Equal(t, 1., A.At(0, 0))

	C := A.Mul(A)
	assert.Equal(t, 7., C.At(0, 0))
	assert.Equal(t, 22., C.At(1, 1))

	v := A.MulVec(NewVector(2, []float64{1, 1}))
	assert.Equal(t, 3., v.AtVec(0))
	assert.Equal(t, 7., v.AtVec(1))

	assert.Equal(t, 4., A.SumCols().AtVec(0))
	assert.Equal(t, 7., A.SumRows().AtVec(1))

	Ainv, err := A.Inverse()
	assert.NoError(t, err)
	I := A.Mul(Ainv)
	assert.InDelta(t, 1., I.At(0, 0), 1.e-14)
	assert.InDelta(t, 0., I.At(0, 1), 1.e-14)
}

func TestVectorOps(t *testing.T) {
	v := NewVector(3, []float64{1, 2, 3})
	assert.Equal(t, 6., v.Copy().Sum())
	assert.Equal(t, 3., v.Max())
	assert.Equal(t, 1., v.Min())
	assert.InDelta(t, math.Sqrt(14), v.Norm(), 1.e-15)
	assert.Equal(t, 14., v.Dot(v))

	w := v.Copy().Apply(func(x float64) float64 { return x * x })
	assert.Equal(t, 9., w.AtVec(2))

	R := NewVector(2, []float64{1, 2}).Outer(NewVector(2, []float64{3, 4}))
	assert.Equal(t, 8., R.At(1, 1))
}

func TestIndex(t *testing.T) {
	I := NewRange(2, 5)
	assert.Equal(t, Index{2, 3, 4, 5}, I)
	assert.Equal(t, Index{4, 5, 6, 7}, I.Add(2))
	assert.Equal(t, Index{4, 2}, I.Subset(Index{2, 0}))
}

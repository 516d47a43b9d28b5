package utils

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

type Vector struct {
	V *mat.VecDense
}

func NewVector(n int, dataO ...[]float64) (v Vector) {
	var (
		data []float64
	)
	if len(dataO) != 0 {
		data = dataO[0]
	}
	v = Vector{
		mat.NewVecDense(n, data),
	}
	return
}

func NewVectorConstant(n int, val float64) (v Vector) {
	var (
		data = make([]float64, n)
	)
	for i := range data {
		data[i] = val
	}
	v = Vector{
		mat.NewVecDense(n, data),
	}
	return
}

func (v Vector) Len() int             { return v.V.Len() }
func (v Vector) AtVec(i int) float64  { return v.V.AtVec(i) }
func (v Vector) DataP() []float64     { return v.V.RawVector().Data }
func (v Vector) SetVal(i int, val float64) Vector {
	v.V.SetVec(i, val)
	return v
}

func (v Vector) Copy() (r Vector) {
	r = NewVector(v.Len())
	r.V.CopyVec(v.V)
	return
}

// Set assigns val to every element, changing the receiver.
func (v Vector) Set(val float64) Vector {
	data := v.DataP()
	for i := range data {
		data[i] = val
	}
	return v
}

func (v Vector) Scale(a float64) Vector {
	v.V.ScaleVec(a, v.V)
	return v
}

func (v Vector) AddScalar(a float64) Vector {
	data := v.DataP()
	for i := range data {
		data[i] += a
	}
	return v
}

func (v Vector) Add(a Vector) Vector {
	v.V.AddVec(v.V, a.V)
	return v
}

func (v Vector) Subtract(a Vector) Vector {
	v.V.SubVec(v.V, a.V)
	return v
}

func (v Vector) ElMul(a Vector) Vector {
	v.V.MulElemVec(v.V, a.V)
	return v
}

func (v Vector) Apply(f func(float64) float64) Vector {
	data := v.DataP()
	for i, val := range data {
		data[i] = f(val)
	}
	return v
}

func (v Vector) POW(p int) Vector {
	data := v.DataP()
	for i, val := range data {
		data[i] = POW(val, p)
	}
	return v
}

func (v Vector) Dot(a Vector) float64 { return mat.Dot(v.V, a.V) }

func (v Vector) Norm() float64 { return mat.Norm(v.V, 2) }

func (v Vector) Sum() (sum float64) {
	for _, val := range v.DataP() {
		sum += val
	}
	return
}

func (v Vector) Min() (min float64) {
	min = math.Inf(1)
	for _, val := range v.DataP() {
		if val < min {
			min = val
		}
	}
	return
}

func (v Vector) Max() (max float64) {
	max = math.Inf(-1)
	for _, val := range v.DataP() {
		if val > max {
			max = val
		}
	}
	return
}

// Outer forms the outer product v ⊗ b.
func (v Vector) Outer(b Vector) (R Matrix) {
	var (
		nr, nc = v.Len(), b.Len()
	)
	R = NewMatrix(nr, nc)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			R.Set(i, j, v.AtVec(i)*b.AtVec(j))
		}
	}
	return
}

func (v Vector) ToMatrix() (R Matrix) {
	R = NewMatrix(v.Len(), 1, v.DataP())
	return
}

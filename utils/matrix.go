package utils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

type Matrix struct {
	M *mat.Dense
}

func NewMatrix(nr, nc int, dataO ...[]float64) (R Matrix) {
	var (
		data []float64
	)
	if len(dataO) != 0 {
		data = dataO[0]
		if len(data) < nr*nc {
			err := fmt.Errorf("mismatch in data sizes, have %d, need %d", len(data), nr*nc)
			panic(err)
		}
	}
	R = Matrix{
		mat.NewDense(nr, nc, data),
	}
	return
}

// NewDiagMatrix returns a square matrix with d on the diagonal.
func NewDiagMatrix(n int, d []float64) (R Matrix) {
	R = NewMatrix(n, n)
	for i := 0; i < n; i++ {
		R.Set(i, i, d[i])
	}
	return
}

func (m Matrix) Dims() (r, c int)    { return m.M.Dims() }
func (m Matrix) At(i, j int) float64 { return m.M.At(i, j) }
func (m Matrix) DataP() []float64    { return m.M.RawMatrix().Data }

func (m Matrix) Copy() (R Matrix) {
	var (
		nr, nc = m.Dims()
	)
	R = NewMatrix(nr, nc)
	R.M.CloneFrom(m.M)
	return
}

func (m Matrix) Transpose() (R Matrix) {
	var (
		nr, nc = m.Dims()
	)
	R = NewMatrix(nc, nr)
	R.M.CloneFrom(m.M.T())
	return
}

func (m Matrix) Mul(A Matrix) (R Matrix) {
	var (
		nrM, _ = m.Dims()
		_, ncA = A.Dims()
	)
	R = NewMatrix(nrM, ncA)
	R.M.Mul(m.M, A.M)
	return
}

func (m Matrix) MulVec(v Vector) (R Vector) {
	var (
		nr, _ = m.Dims()
	)
	R = NewVector(nr)
	R.V.MulVec(m.M, v.V)
	return
}

func (m Matrix) Set(i, j int, val float64) Matrix {
	m.M.Set(i, j, val)
	return m
}

func (m Matrix) SetRow(i int, data []float64) Matrix {
	m.M.SetRow(i, data)
	return m
}

func (m Matrix) SetCol(j int, data []float64) Matrix {
	m.M.SetCol(j, data)
	return m
}

func (m Matrix) Add(A Matrix) Matrix {
	m.M.Add(m.M, A.M)
	return m
}

func (m Matrix) Subtract(A Matrix) Matrix {
	m.M.Sub(m.M, A.M)
	return m
}

func (m Matrix) Scale(a float64) Matrix {
	m.M.Scale(a, m.M)
	return m
}

func (m Matrix) AddScalar(a float64) Matrix {
	data := m.DataP()
	for i := range data {
		data[i] += a
	}
	return m
}

func (m Matrix) ElMul(A Matrix) Matrix {
	m.M.MulElem(m.M, A.M)
	return m
}

func (m Matrix) ElDiv(A Matrix) Matrix {
	m.M.DivElem(m.M, A.M)
	return m
}

func (m Matrix) Apply(f func(float64) float64) Matrix {
	data := m.DataP()
	for i, val := range data {
		data[i] = f(val)
	}
	return m
}

func (m Matrix) Apply2(A Matrix, f func(float64, float64) float64) Matrix {
	var (
		data  = m.DataP()
		dataA = A.DataP()
	)
	for i, val := range data {
		data[i] = f(val, dataA[i])
	}
	return m
}

func (m Matrix) POW(p int) Matrix {
	data := m.DataP()
	for i, val := range data {
		data[i] = POW(val, p)
	}
	return m
}

func (m Matrix) Row(i int) (V Vector) {
	var (
		_, nc = m.Dims()
	)
	V = NewVector(nc)
	for j := 0; j < nc; j++ {
		V.V.SetVec(j, m.At(i, j))
	}
	return
}

func (m Matrix) Col(j int) (V Vector) {
	var (
		nr, _ = m.Dims()
	)
	V = NewVector(nr)
	for i := 0; i < nr; i++ {
		V.V.SetVec(i, m.At(i, j))
	}
	return
}

func (m Matrix) SumRows() (V Vector) {
	var (
		nr, nc = m.Dims()
	)
	V = NewVector(nr)
	for i := 0; i < nr; i++ {
		var sum float64
		for j := 0; j < nc; j++ {
			sum += m.At(i, j)
		}
		V.V.SetVec(i, sum)
	}
	return
}

func (m Matrix) SumCols() (V Vector) {
	var (
		nr, nc = m.Dims()
	)
	V = NewVector(nc)
	for j := 0; j < nc; j++ {
		var sum float64
		for i := 0; i < nr; i++ {
			sum += m.At(i, j)
		}
		V.V.SetVec(j, sum)
	}
	return
}

func (m Matrix) Min() (min float64) {
	min = math.Inf(1)
	for _, val := range m.DataP() {
		if val < min {
			min = val
		}
	}
	return
}

func (m Matrix) Max() (max float64) {
	max = math.Inf(-1)
	for _, val := range m.DataP() {
		if val > max {
			max = val
		}
	}
	return
}

func (m Matrix) Inverse() (R Matrix, err error) {
	var (
		nr, nc = m.Dims()
	)
	R = NewMatrix(nr, nc)
	err = R.M.Inverse(m.M)
	return
}

// LUSolve solves m * X = b for X.
func (m Matrix) LUSolve(b Vector) (X Vector, err error) {
	var (
		lu mat.LU
	)
	lu.Factorize(m.M)
	X = NewVector(b.Len())
	err = lu.SolveVecTo(X.V, false, b.V)
	return
}

func POW(x float64, pp int) (y float64) {
	p := pp
	if p < 0 {
		p = -p
	}
	y = 1
	for i := 0; i < p; i++ {
		y *= x
	}
	if pp < 0 {
		y = 1 / y
	}
	return
}

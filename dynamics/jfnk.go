package dynamics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/stratus-model/stratus/eqset"
	"github.com/stratus-model/stratus/model"
)

// SolverOptions controls the per-column Newton-Krylov solve.
type SolverOptions struct {
	Tolerance     float64 // nonlinear residual tolerance (relative to the first residual)
	AbsTolerance  float64
	MaxNewton     int
	MaxKrylov     int
	UseLineSearch bool
}

func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Tolerance:     1.e-8,
		AbsTolerance:  1.e-8,
		MaxNewton:     20,
		MaxKrylov:     60,
		UseLineSearch: true,
	}
}

// buildPreconditioner assembles the linearized acoustic block system
// M = I - dtau L, where L couples theta, w and rho through the pressure
// gradient, gravity and the mass flux divergence with frozen coefficients.
// Horizontal momentum rows stay identity apart from implicit Rayleigh terms.
func (c *column) buildPreconditioner(q []float64, dtau float64) (lu *mat.LU) {
	var (
		g    = c.g
		ops  = g.Ops
		pc   = g.Phys
		nLev = c.nLev
		nq   = c.nq
	)
	M := mat.NewDense(nq, nq, nil)
	for i := 0; i < nq; i++ {
		M.Set(i, i, 1)
	}

	// Frozen coefficients from the current iterate
	rho := q[c.offRho() : c.offRho()+nLev]
	dPdRT := make([]float64, nLev)
	for k := 0; k < nLev; k++ {
		dPdRT[k] = eqset.DPressureDRhoTheta(pc, q[c.offTh()+k])
	}

	if c.wOnEdges {
		var (
			dWtoN = ops.DiffREdgeToNode
			dNtoW = ops.DiffNodeToREdge
			iNtoE = ops.InterpNodeToREdge
		)
		thetaBarE := make([]float64, c.nW)
		for k := 0; k < c.nW; k++ {
			if c.rhoE[k] != 0 {
				thetaBarE[k] = c.thetaE[k] / c.rhoE[k]
			}
		}

		// rho and theta rows against w columns
		for k := 0; k < nLev; k++ {
			for l := dWtoN.Begin[k]; l < dWtoN.End[k]; l++ {
				d := dWtoN.Coeff.At(k, l) * c.jacE[l] /
					(c.dxzE[l] * c.jacN[k])
				M.Set(c.offRho()+k, c.offW()+l, dtau*d)
				M.Set(c.offTh()+k, c.offW()+l, dtau*d*thetaBarE[l])
			}
		}

		// w rows: pressure gradient against theta, gravity against rho
		for l := 1; l < c.nW-1; l++ {
			for k := dNtoW.Begin[l]; k < dNtoW.End[l]; k++ {
				M.Set(c.offW()+l, c.offTh()+k,
					dtau*dNtoW.Coeff.At(l, k)*dPdRT[k]/c.dxzE[l])
			}
			for k := iNtoE.Begin[l]; k < iNtoE.End[l]; k++ {
				M.Set(c.offW()+l, c.offRho()+k,
					dtau*iNtoE.Coeff.At(l, k)*pc.G)
			}
		}
	} else {
		dNtoN := ops.DiffNodeToNode
		for k := 0; k < nLev; k++ {
			theta := q[c.offTh()+k] / rho[k]
			for l := dNtoN.Begin[k]; l < dNtoN.End[k]; l++ {
				d := dNtoN.Coeff.At(k, l) * c.jacN[l] /
					(c.dxzN[l] * c.jacN[k])
				M.Set(c.offRho()+k, c.offW()+l, dtau*d)
				M.Set(c.offTh()+k, c.offW()+l, dtau*d*theta)
			}
		}
		for l := 1; l < c.nW-1; l++ {
			for k := dNtoN.Begin[l]; k < dNtoN.End[l]; k++ {
				M.Set(c.offW()+l, c.offTh()+k,
					dtau*dNtoN.Coeff.At(l, k)*dPdRT[k]/c.dxzN[l])
			}
			M.Set(c.offW()+l, c.offRho()+l,
				M.At(c.offW()+l, c.offRho()+l)+dtau*pc.G)
		}
	}

	// Implicit Rayleigh contributions on the diagonal
	for k := 0; k < nLev; k++ {
		if s := c.sigmaN[k]; s != 0 {
			for _, off := range []int{c.offU(), c.offV(), c.offTh(), c.offRho()} {
				M.Set(off+k, off+k, M.At(off+k, off+k)+dtau*s)
			}
		}
	}

	lu = &mat.LU{}
	lu.Factorize(M)
	return
}

// gmres solves J x = b by GMRES with right preconditioning, where J v is
// approximated by finite differences of the residual about q. It runs a
// single Arnoldi cycle of at most MaxKrylov iterations without restarts.
func (c *column) gmres(
	q, rhs []float64, dtau float64,
	r0 []float64, // current residual R(q); the system solves J x = -r0
	lu *mat.LU,
	opts SolverOptions,
) (x []float64, ok bool) {
	var (
		nq = c.nq
		m  = opts.MaxKrylov
	)
	if m > nq {
		m = nq
	}

	b := make([]float64, nq)
	for i := range b {
		b[i] = -r0[i]
	}
	normB := norm2(b)
	x = make([]float64, nq)
	if normB == 0 {
		return x, true
	}

	var (
		qNorm = norm2(q)
		scr   = make([]float64, nq)
		rPert = make([]float64, nq)
	)

	// Finite-difference Jacobian-vector product about q
	jv := func(v, out []float64) {
		normV := norm2(v)
		if normV == 0 {
			for i := range out {
				out[i] = 0
			}
			return
		}
		eps := math.Sqrt(1.e-16) * (1. + qNorm) / normV
		for i := range scr {
			scr[i] = q[i] + eps*v[i]
		}
		c.residual(scr, rhs, dtau, rPert)
		oeps := 1. / eps
		for i := range out {
			out[i] = (rPert[i] - r0[i]) * oeps
		}
	}

	precond := func(v, out []float64) {
		in := mat.NewVecDense(nq, v)
		res := mat.NewVecDense(nq, out)
		if err := lu.SolveVecTo(res, false, in); err != nil {
			copy(out, v)
		}
	}

	var (
		V  = make([][]float64, m+1)
		H  = make([][]float64, m+1)
		cs = make([]float64, m+1)
		sn = make([]float64, m+1)
		s  = make([]float64, m+1)
		w  = make([]float64, nq)
		z  = make([]float64, nq)
	)
	for i := range V {
		V[i] = make([]float64, nq)
		H[i] = make([]float64, m)
	}

	beta := normB
	for i := range b {
		V[0][i] = b[i] / beta
	}
	s[0] = beta

	tol := opts.Tolerance * normB
	if tol < opts.AbsTolerance {
		tol = opts.AbsTolerance
	}

	var nIter int
	for j := 0; j < m; j++ {
		nIter = j + 1

		// w = J M^-1 v_j
		precond(V[j], z)
		jv(z, w)

		// Arnoldi with modified Gram-Schmidt
		for i := 0; i <= j; i++ {
			H[i][j] = dot(w, V[i])
			axpy(-H[i][j], V[i], w)
		}
		H[j+1][j] = norm2(w)
		if H[j+1][j] < 1.e-14 {
			// Breakdown: the Krylov space is exhausted
			nIter = j + 1
			applyGivensColumn(H, cs, sn, s, j)
			break
		}
		for i := range w {
			V[j+1][i] = w[i] / H[j+1][j]
		}

		applyGivensColumn(H, cs, sn, s, j)

		if math.Abs(s[j+1]) < tol {
			break
		}
	}

	// Back substitution for the Hessenberg least squares problem
	y := make([]float64, nIter)
	for i := nIter - 1; i >= 0; i-- {
		sum := s[i]
		for k := i + 1; k < nIter; k++ {
			sum -= H[i][k] * y[k]
		}
		if H[i][i] == 0 {
			return x, false
		}
		y[i] = sum / H[i][i]
	}

	// x = M^-1 (V y)
	for i := range scr {
		scr[i] = 0
	}
	for j := 0; j < nIter; j++ {
		axpy(y[j], V[j], scr)
	}
	precond(scr, x)
	return x, true
}

// applyGivensColumn reduces column j of the Hessenberg matrix with the
// accumulated Givens rotations and appends the new rotation.
func applyGivensColumn(H [][]float64, cs, sn, s []float64, j int) {
	for i := 0; i < j; i++ {
		h1 := cs[i]*H[i][j] + sn[i]*H[i+1][j]
		h2 := -sn[i]*H[i][j] + cs[i]*H[i+1][j]
		H[i][j], H[i+1][j] = h1, h2
	}
	denom := math.Hypot(H[j][j], H[j+1][j])
	if denom == 0 {
		cs[j], sn[j] = 1, 0
	} else {
		cs[j] = H[j][j] / denom
		sn[j] = H[j+1][j] / denom
	}
	H[j][j] = cs[j]*H[j][j] + sn[j]*H[j+1][j]
	H[j+1][j] = 0
	s[j+1] = -sn[j] * s[j]
	s[j] = cs[j] * s[j]
}

// solveColumn runs Newton iterations with finite-difference Jacobian-vector
// products until the column residual is reduced below tolerance.
func (c *column) solveColumn(q, rhs []float64, dtau float64, opts SolverOptions) (err error) {
	var (
		res  = make([]float64, c.nq)
		qNew = make([]float64, c.nq)
	)
	c.residual(q, rhs, dtau, res)
	norm0 := norm2(res)
	if norm0 < opts.AbsTolerance {
		return nil
	}
	tol := opts.Tolerance * norm0
	if tol < opts.AbsTolerance {
		tol = opts.AbsTolerance
	}

	for iter := 0; iter < opts.MaxNewton; iter++ {
		lu := c.buildPreconditioner(q, dtau)
		dq, ok := c.gmres(q, rhs, dtau, res, lu, opts)
		if !ok {
			return model.RecoverableErrorf(
				"GMRES breakdown in column patch=%d ij=%d", c.p.Index, c.ij)
		}

		// Line search: halve the step until the residual decreases
		lambda := 1.0
		normNew := math.Inf(1)
		for ls := 0; ls < 6; ls++ {
			for i := range qNew {
				qNew[i] = q[i] + lambda*dq[i]
			}
			c.residual(qNew, rhs, dtau, res)
			normNew = norm2(res)
			if normNew < norm0*(1.-1.e-4*lambda) || !opts.UseLineSearch {
				break
			}
			lambda *= 0.5
		}
		copy(q, qNew)
		norm0 = normNew

		if norm0 < tol {
			return nil
		}
	}
	return model.RecoverableErrorf(
		"JFNK failed to converge in column patch=%d ij=%d (residual %e)",
		c.p.Index, c.ij, norm0)
}

func norm2(v []float64) (n float64) {
	for _, x := range v {
		n += x * x
	}
	return math.Sqrt(n)
}

func dot(a, b []float64) (d float64) {
	for i := range a {
		d += a[i] * b[i]
	}
	return
}

func axpy(a float64, x, y []float64) {
	for i := range x {
		y[i] += a * x[i]
	}
}

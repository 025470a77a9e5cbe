package tridiag

// sweep holds the working coefficients of one column and the scratch space
// of the Thomas algorithm.
type sweep struct {
	a, b, c, d []float64
	cp, dp     []float64
}

func newSweep(nk int) *sweep {
	return &sweep{
		a:  make([]float64, nk),
		b:  make([]float64, nk),
		c:  make([]float64, nk),
		d:  make([]float64, nk),
		cp: make([]float64, nk),
		dp: make([]float64, nk),
	}
}

// load fills the working coefficients of the column starting at base. Cells
// below the bottom index become the identity row with a zero right-hand
// side. The bottom cell has no coupling to the level below it and the top
// cell none to the level above.
func (s *sweep) load(p Problem, base, ks int, water []bool) {
	nk := len(s.a)
	a, b, c, d := p.A.Data(), p.B.Data(), p.C.Data(), p.D.Data()

	for k := 0; k < nk; k++ {
		i := base + k

		if k < ks {
			water[k] = false
			s.a[k], s.b[k], s.c[k], s.d[k] = 0, 1, 0, 0

			continue
		}

		water[k] = true
		s.a[k], s.b[k], s.c[k], s.d[k] = a[i], b[i], c[i], d[i]

		if k == ks {
			s.a[k] = 0

			if p.BEdge != nil {
				s.b[k] = p.BEdge.Data()[i]
			}

			if p.DEdge != nil {
				s.d[k] = p.DEdge.Data()[i]
			}
		}
	}

	s.c[nk-1] = 0
}

// solve runs forward elimination and back substitution into x.
func (s *sweep) solve(x []float64) {
	nk := len(s.a)
	if nk == 0 {
		return
	}

	s.cp[0] = s.c[0] / s.b[0]
	s.dp[0] = s.d[0] / s.b[0]

	for k := 1; k < nk; k++ {
		denom := s.b[k] - s.a[k]*s.cp[k-1]
		s.cp[k] = s.c[k] / denom
		s.dp[k] = (s.d[k] - s.a[k]*s.dp[k-1]) / denom
	}

	x[nk-1] = s.dp[nk-1]
	for k := nk - 2; k >= 0; k-- {
		x[k] = s.dp[k] - s.cp[k]*x[k+1]
	}
}

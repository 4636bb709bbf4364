package scalar

// SeedDual returns x lifted to dual numbers with a unit derivative along
// direction dir. A negative dir seeds nothing.
func SeedDual(x []float64, dir int) []Dual {
	out := make([]Dual, len(x))
	for i, v := range x {
		out[i] = Dual{Real: v}
	}
	if dir >= 0 && dir < len(x) {
		out[dir].Emag = 1
	}
	return out
}

// SeedHyperDual returns x lifted to hyper-dual numbers with ε₁ seeded along
// direction i and ε₂ along direction j.
func SeedHyperDual(x []float64, i, j int) []HyperDual {
	out := make([]HyperDual, len(x))
	for k, v := range x {
		out[k] = HyperDual{Real: v}
	}
	out[i].E1mag = 1
	out[j].E2mag = 1
	return out
}

// Gradient evaluates ∇f at x by forward-mode differentiation, one pass per
// direction.
func Gradient(x []float64, f func([]Dual) (Dual, error)) ([]float64, error) {
	grad := make([]float64, len(x))
	for i := range x {
		y, err := f(SeedDual(x, i))
		if err != nil {
			return nil, err
		}
		grad[i] = y.Emag
	}
	return grad, nil
}

// Jacobian evaluates ∂f/∂x at x. The result is row-major, rows indexed by
// the outputs of f.
func Jacobian(x []float64, f func([]Dual) ([]Dual, error)) ([][]float64, error) {
	var jac [][]float64
	for j := range x {
		y, err := f(SeedDual(x, j))
		if err != nil {
			return nil, err
		}
		if jac == nil {
			jac = make([][]float64, len(y))
			for i := range jac {
				jac[i] = make([]float64, len(x))
			}
		}
		for i := range y {
			jac[i][j] = y[i].Emag
		}
	}
	return jac, nil
}

// Hessian evaluates ∇²f at x with hyper-dual numbers. Only the upper
// triangle is evaluated; the result is symmetric.
func Hessian(x []float64, f func([]HyperDual) (HyperDual, error)) ([][]float64, error) {
	n := len(x)
	hess := make([][]float64, n)
	for i := range hess {
		hess[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			y, err := f(SeedHyperDual(x, i, j))
			if err != nil {
				return nil, err
			}
			hess[i][j] = y.E1E2mag
			hess[j][i] = y.E1E2mag
		}
	}
	return hess, nil
}

package model

import (
	"github.com/san-kum/dyncontact/internal/linalg"
)

// The Eval methods compute a quantity on first use and cache it in ctx
// until the velocities change. Returned slices and matrices are owned by
// ctx and must not be modified.

// EvalConstraintVelocities returns vc = J·v.
func (m *Model[T]) EvalConstraintVelocities(ctx *Context[T]) ([]T, error) {
	if err := m.checkContext(ctx); err != nil {
		return nil, err
	}
	c := &ctx.cache
	if !c.constraintVelocitiesValid {
		if c.constraintVelocities == nil {
			c.constraintVelocities = make([]T, m.NumConstraintEquations())
		}
		m.bundle.J().MulVecTo(c.constraintVelocities, ctx.v)
		c.constraintVelocitiesValid = true
	}
	return c.constraintVelocities, nil
}

// EvalMomentumGain returns A·(v − v*).
func (m *Model[T]) EvalMomentumGain(ctx *Context[T]) ([]T, error) {
	if err := m.checkContext(ctx); err != nil {
		return nil, err
	}
	c := &ctx.cache
	if !c.momentumGainValid {
		c.momentumGain = m.MultiplyByDynamicsMatrix(linalg.Sub(ctx.v, m.vStar))
		c.momentumGainValid = true
	}
	return c.momentumGain, nil
}

// EvalMomentumCost returns ½·(v − v*)ᵀ·A·(v − v*).
func (m *Model[T]) EvalMomentumCost(ctx *Context[T]) (T, error) {
	var zero T
	gain, err := m.EvalMomentumGain(ctx)
	if err != nil {
		return zero, err
	}
	c := &ctx.cache
	if !c.momentumCostValid {
		c.momentumCost = linalg.Dot(linalg.Sub(ctx.v, m.vStar), gain).Scale(0.5)
		c.momentumCostValid = true
	}
	return c.momentumCost, nil
}

// EvalUnprojectedImpulses returns y = −R⁻¹⊙(vc − v̂).
func (m *Model[T]) EvalUnprojectedImpulses(ctx *Context[T]) ([]T, error) {
	vc, err := m.EvalConstraintVelocities(ctx)
	if err != nil {
		return nil, err
	}
	c := &ctx.cache
	if !c.unprojectedImpulsesValid {
		if c.unprojectedImpulses == nil {
			c.unprojectedImpulses = make([]T, len(vc))
		}
		m.bundle.CalcUnprojectedImpulses(vc, c.unprojectedImpulses)
		c.unprojectedImpulsesValid = true
	}
	return c.unprojectedImpulses, nil
}

// EvalImpulses returns γ = P(y), constraint by constraint.
func (m *Model[T]) EvalImpulses(ctx *Context[T]) ([]T, error) {
	y, err := m.EvalUnprojectedImpulses(ctx)
	if err != nil {
		return nil, err
	}
	c := &ctx.cache
	if !c.impulsesValid {
		if c.impulses == nil {
			c.impulses = make([]T, len(y))
		}
		m.bundle.ProjectImpulses(y, c.impulses)
		c.impulsesValid = true
	}
	return c.impulses, nil
}

// EvalCost returns ℓ(v) = ½·(v − v*)ᵀ·A·(v − v*) + ½·γᵀ·diag(R)·γ.
func (m *Model[T]) EvalCost(ctx *Context[T]) (T, error) {
	var zero T
	momentum, err := m.EvalMomentumCost(ctx)
	if err != nil {
		return zero, err
	}
	gamma, err := m.EvalImpulses(ctx)
	if err != nil {
		return zero, err
	}
	c := &ctx.cache
	if !c.costValid {
		c.cost = momentum.Add(linalg.WeightedSquaredNorm(gamma, m.bundle.R()).Scale(0.5))
		c.costValid = true
	}
	return c.cost, nil
}

// EvalCostGradient returns ∇ℓ = A·(v − v*) − Jᵀ·γ.
func (m *Model[T]) EvalCostGradient(ctx *Context[T]) ([]T, error) {
	gain, err := m.EvalMomentumGain(ctx)
	if err != nil {
		return nil, err
	}
	gamma, err := m.EvalImpulses(ctx)
	if err != nil {
		return nil, err
	}
	c := &ctx.cache
	if !c.gradientValid {
		if c.gradient == nil {
			c.gradient = make([]T, len(gain))
		}
		m.bundle.J().MulTransVecTo(c.gradient, gamma)
		for i := range c.gradient {
			c.gradient[i] = gain[i].Sub(c.gradient[i])
		}
		c.gradientValid = true
	}
	return c.gradient, nil
}

// EvalConstraintsHessian returns the blocks Gᵢ, in cluster order, of the
// block diagonal G such that ∇²ℓ = A + Jᵀ·G·J.
func (m *Model[T]) EvalConstraintsHessian(ctx *Context[T]) ([]*linalg.Matrix[T], error) {
	y, err := m.EvalUnprojectedImpulses(ctx)
	if err != nil {
		return nil, err
	}
	c := &ctx.cache
	if !c.hessianValid {
		if c.impulses == nil {
			c.impulses = make([]T, len(y))
		}
		c.hessian = m.bundle.ProjectImpulsesAndCalcConstraintsHessian(y, c.impulses)
		c.impulsesValid = true
		c.hessianValid = true
	}
	return c.hessian, nil
}

// EvalCostHessian assembles the dense Hessian A + Jᵀ·G·J. It is meant for
// diagnostics on small problems.
func (m *Model[T]) EvalCostHessian(ctx *Context[T]) (*linalg.Matrix[T], error) {
	G, err := m.EvalConstraintsHessian(ctx)
	if err != nil {
		return nil, err
	}
	nv := m.NumVelocities()
	H := linalg.NewMatrix[T](nv, nv)
	for c, a := range m.dynamics {
		s := m.cliqueStart[c]
		for i := 0; i < a.Rows(); i++ {
			for j := 0; j < a.Cols(); j++ {
				H.Set(s+i, s+j, a.At(i, j))
			}
		}
	}

	J := m.bundle.J().Dense()
	GJ := linalg.NewMatrix[T](J.Rows(), nv)
	for k, g := range G {
		s := m.bundle.EquationStart(k)
		for i := 0; i < g.Rows(); i++ {
			for j := 0; j < nv; j++ {
				var sum T
				for l := 0; l < g.Cols(); l++ {
					sum = sum.Add(g.At(i, l).Mul(J.At(s+l, j)))
				}
				GJ.Set(s+i, j, sum)
			}
		}
	}
	H.AddInPlace(J.Transpose().Mul(GJ))
	return H, nil
}

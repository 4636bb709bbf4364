package constraint

import (
	"fmt"
	"math"

	"github.com/san-kum/dyncontact/internal/scalar"
)

// Parameters describe a compliant constraint: a spring of stiffness k and
// damping τ·k acting along the constraint function g. A positive Beta
// enables the near-rigid regime, where R never drops below β²/(4π²)·wᵢ.
type Parameters struct {
	Stiffness       float64 // k, +Inf for a rigid constraint
	DissipationTime float64 // τ
	Beta            float64 // 0 disables near-rigid regularization
}

func (p Parameters) Validate() error {
	switch {
	case math.IsNaN(p.Stiffness) || p.Stiffness <= 0:
		return fmt.Errorf("stiffness %g: %w", p.Stiffness, ErrInvalidParameter)
	case math.IsNaN(p.DissipationTime) || math.IsInf(p.DissipationTime, 0) || p.DissipationTime < 0:
		return fmt.Errorf("dissipation time %g: %w", p.DissipationTime, ErrInvalidParameter)
	case math.IsNaN(p.Beta) || math.IsInf(p.Beta, 0) || p.Beta < 0:
		return fmt.Errorf("beta %g: %w", p.Beta, ErrInvalidParameter)
	case math.IsInf(p.Stiffness, 1) && p.Beta == 0:
		return fmt.Errorf("rigid constraint needs beta > 0: %w", ErrInvalidParameter)
	}
	return nil
}

// complianceBias returns v̂ = −g/(δt + τ).
func complianceBias[T scalar.Scalar[T]](p Parameters, g []T, timeStep T) []T {
	d := timeStep.Add(scalar.Of[T](p.DissipationTime))
	out := make([]T, len(g))
	for i, gi := range g {
		out[i] = gi.Neg().Div(d)
	}
	return out
}

// complianceRegularization returns R = 1/(δt·(δt + τ)·k) for each of the n
// equations, raised to β²/(4π²)·wᵢ in the near-rigid regime.
func complianceRegularization[T scalar.Scalar[T]](p Parameters, n int, timeStep, wi T) []T {
	var r T
	if !math.IsInf(p.Stiffness, 1) {
		tau := scalar.Of[T](p.DissipationTime)
		r = scalar.Of[T](1).Div(timeStep.Mul(timeStep.Add(tau)).Scale(p.Stiffness))
	}
	if p.Beta > 0 {
		r = scalar.Max(r, wi.Scale(p.Beta*p.Beta/(4*math.Pi*math.Pi)))
	}
	out := make([]T, n)
	for i := range out {
		out[i] = r
	}
	return out
}

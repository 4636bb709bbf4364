package scan

import (
	"github.com/san-kum/dyncontact/internal/model"
	"github.com/san-kum/dyncontact/internal/scalar"
)

// Point is the model fully evaluated at one velocity, in reduced order.
type Point struct {
	V            []float64
	Vc           []float64
	Gamma        []float64
	Gradient     []float64
	Cost         float64
	MomentumCost float64
}

// Inspect evaluates everything Point holds at v using ctx.
func Inspect(m *model.Model[scalar.Float], ctx *model.Context[scalar.Float], v []float64) (Point, error) {
	if err := m.SetVelocities(ctx, scalar.Floats(v)); err != nil {
		return Point{}, err
	}
	vc, err := m.EvalConstraintVelocities(ctx)
	if err != nil {
		return Point{}, err
	}
	gamma, err := m.EvalImpulses(ctx)
	if err != nil {
		return Point{}, err
	}
	grad, err := m.EvalCostGradient(ctx)
	if err != nil {
		return Point{}, err
	}
	cost, err := m.EvalCost(ctx)
	if err != nil {
		return Point{}, err
	}
	momentum, err := m.EvalMomentumCost(ctx)
	if err != nil {
		return Point{}, err
	}
	return Point{
		V:            append([]float64(nil), v...),
		Vc:           scalar.Values(vc),
		Gamma:        scalar.Values(gamma),
		Gradient:     scalar.Values(grad),
		Cost:         float64(cost),
		MomentumCost: float64(momentum),
	}, nil
}

// MomentumCosts extracts the momentum cost of every sample.
func MomentumCosts(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.MomentumCost
	}
	return out
}

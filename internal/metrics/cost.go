package metrics

import (
	"math"

	"github.com/san-kum/dyncontact/internal/scan"
)

type MinCost struct {
	name string
	min  float64
}

func NewMinCost() *MinCost {
	return &MinCost{name: "min_cost", min: math.Inf(1)}
}

func (c *MinCost) Name() string { return c.name }

func (c *MinCost) Observe(s scan.Sample) {
	c.min = math.Min(c.min, s.Cost)
}

func (c *MinCost) Value() float64 { return c.min }
func (c *MinCost) Reset()         { c.min = math.Inf(1) }

// ArgMin is the α of the lowest cost seen, first one on ties.
type ArgMin struct {
	name    string
	alpha   float64
	cost    float64
	samples int
}

func NewArgMin() *ArgMin {
	return &ArgMin{name: "argmin_alpha"}
}

func (a *ArgMin) Name() string { return a.name }

func (a *ArgMin) Observe(s scan.Sample) {
	if a.samples == 0 || s.Cost < a.cost {
		a.alpha, a.cost = s.Alpha, s.Cost
	}
	a.samples++
}

func (a *ArgMin) Value() float64 {
	if a.samples == 0 {
		return math.NaN()
	}
	return a.alpha
}

func (a *ArgMin) Reset() {
	a.alpha, a.cost, a.samples = 0, 0, 0
}

type MaxGradient struct {
	name string
	max  float64
}

func NewMaxGradient() *MaxGradient {
	return &MaxGradient{name: "max_gradient_norm"}
}

func (g *MaxGradient) Name() string { return g.name }

func (g *MaxGradient) Observe(s scan.Sample) {
	g.max = math.Max(g.max, s.GradientNorm)
}

func (g *MaxGradient) Value() float64 { return g.max }
func (g *MaxGradient) Reset()         { g.max = 0 }

// ConstraintShare is the mean fraction of the cost carried by the
// constraints, ½γᵀRγ / ℓ. Samples with zero cost are skipped.
type ConstraintShare struct {
	name    string
	sum     float64
	samples int
}

func NewConstraintShare() *ConstraintShare {
	return &ConstraintShare{name: "constraint_share"}
}

func (c *ConstraintShare) Name() string { return c.name }

func (c *ConstraintShare) Observe(s scan.Sample) {
	if s.Cost == 0 {
		return
	}
	c.sum += (s.Cost - s.MomentumCost) / s.Cost
	c.samples++
}

func (c *ConstraintShare) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ConstraintShare) Reset() {
	c.sum = 0
	c.samples = 0
}

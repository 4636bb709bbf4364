package metrics

import (
	"math"

	"github.com/san-kum/dyncontact/internal/scan"
)

// Convexity counts the places where the slope along the line decreases by
// more than tol·(1 + |slope|). The cost is convex, so anything above zero
// points at an inconsistent gradient.
type Convexity struct {
	name       string
	tol        float64
	prev       float64
	samples    int
	violations int
}

func NewConvexity(tol float64) *Convexity {
	return &Convexity{name: "convexity_violations", tol: tol}
}

func (c *Convexity) Name() string { return c.name }

func (c *Convexity) Observe(s scan.Sample) {
	if c.samples > 0 && s.Slope < c.prev-c.tol*(1+math.Abs(c.prev)) {
		c.violations++
	}
	c.prev = s.Slope
	c.samples++
}

func (c *Convexity) Value() float64 { return float64(c.violations) }

func (c *Convexity) Reset() {
	c.prev = 0
	c.samples = 0
	c.violations = 0
}

// Package metrics summarizes a scan of the cost along a line.
package metrics

import "github.com/san-kum/dyncontact/internal/scan"

// Metric accumulates samples in increasing α order.
type Metric interface {
	Name() string
	Observe(s scan.Sample)
	Value() float64
	Reset()
}

// Default returns the metrics stored with every scan.
func Default() []Metric {
	return []Metric{
		NewMinCost(),
		NewArgMin(),
		NewMaxGradient(),
		NewConstraintShare(),
		NewConvexity(1e-9),
	}
}

// Collect resets ms, feeds them samples and returns their values by name.
func Collect(samples []scan.Sample, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for _, s := range samples {
			m.Observe(s)
		}
		out[m.Name()] = m.Value()
	}
	return out
}

// Package scan evaluates a model along a line through velocity space.
// Samples are spread over workers, each with its own model context.
package scan

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/dyncontact/internal/model"
	"github.com/san-kum/dyncontact/internal/scalar"
)

var (
	ErrLineSize   = errors.New("scan: line does not match model velocities")
	ErrNoSamples  = errors.New("scan: at least one sample required")
	ErrBadWorkers = errors.New("scan: worker count must be positive")
)

// Line is v(α) = From + α·Direction in reduced velocity space.
type Line struct {
	From      []float64
	Direction []float64
}

// Between returns the line with v(0) = from and v(1) = to.
func Between(from, to []float64) Line {
	dir := make([]float64, len(to))
	floats.SubTo(dir, to, from)
	return Line{From: append([]float64(nil), from...), Direction: dir}
}

// At returns v(α).
func (l Line) At(alpha float64) []float64 {
	v := append([]float64(nil), l.From...)
	floats.AddScaled(v, alpha, l.Direction)
	return v
}

// Sample is the model evaluated at v(Alpha). Slope is the directional
// derivative dℓ/dα = ∇ℓ·Direction.
type Sample struct {
	Alpha        float64 `json:"alpha"`
	Cost         float64 `json:"cost"`
	MomentumCost float64 `json:"momentum_cost"`
	GradientNorm float64 `json:"gradient_norm"`
	Slope        float64 `json:"slope"`
}

// Alphas returns n equally spaced values from lo to hi inclusive.
func Alphas(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Options control how a scan is split across goroutines.
type Options struct {
	Workers  int
	MinChunk int
}

func DefaultOptions() Options {
	return Options{Workers: runtime.GOMAXPROCS(0), MinChunk: 4}
}

// Run evaluates m at v(α) for every α. Results keep the order of alphas.
func Run(ctx context.Context, m *model.Model[scalar.Float], line Line, alphas []float64, opts Options) ([]Sample, error) {
	nv := m.NumVelocities()
	if len(line.From) != nv || len(line.Direction) != nv {
		return nil, fmt.Errorf("line of size %d/%d, model has %d velocities: %w",
			len(line.From), len(line.Direction), nv, ErrLineSize)
	}
	if len(alphas) == 0 {
		return nil, ErrNoSamples
	}
	if opts.Workers <= 0 {
		return nil, fmt.Errorf("%d workers: %w", opts.Workers, ErrBadWorkers)
	}

	n := len(alphas)
	workers := opts.Workers
	if opts.MinChunk > 0 && n/opts.MinChunk < workers {
		workers = n / opts.MinChunk
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (n + workers - 1) / workers

	samples := make([]Sample, n)
	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < n; start += chunk {
		start, end := start, min(start+chunk, n)
		g.Go(func() error {
			mctx := m.MakeContext()
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				s, err := evaluate(m, mctx, line, alphas[i])
				if err != nil {
					return fmt.Errorf("alpha %g: %w", alphas[i], err)
				}
				samples[i] = s
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return samples, nil
}

func evaluate(m *model.Model[scalar.Float], ctx *model.Context[scalar.Float], line Line, alpha float64) (Sample, error) {
	if err := m.SetVelocities(ctx, scalar.Floats(line.At(alpha))); err != nil {
		return Sample{}, err
	}
	cost, err := m.EvalCost(ctx)
	if err != nil {
		return Sample{}, err
	}
	momentum, err := m.EvalMomentumCost(ctx)
	if err != nil {
		return Sample{}, err
	}
	grad, err := m.EvalCostGradient(ctx)
	if err != nil {
		return Sample{}, err
	}
	g := scalar.Values(grad)
	return Sample{
		Alpha:        alpha,
		Cost:         float64(cost),
		MomentumCost: float64(momentum),
		GradientNorm: floats.Norm(g, 2),
		Slope:        floats.Dot(g, line.Direction),
	}, nil
}

// Minimum returns the index of the sample with the lowest cost, or -1.
func Minimum(samples []Sample) int {
	best := -1
	for i, s := range samples {
		if best < 0 || s.Cost < samples[best].Cost {
			best = i
		}
	}
	return best
}

// Costs extracts the cost of every sample.
func Costs(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Cost
	}
	return out
}

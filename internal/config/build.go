package config

import (
	"fmt"

	"github.com/san-kum/dyncontact/internal/linalg"
	"github.com/san-kum/dyncontact/internal/problem"
	"github.com/san-kum/dyncontact/internal/scalar"
)

// Build validates f and assembles it into a problem with scalar type T.
func Build[T scalar.Scalar[T]](f *ProblemFile) (*problem.Problem[T], error) {
	return BuildWith(f, NewRegistry[T]())
}

// BuildWith is Build with a caller supplied registry.
func BuildWith[T scalar.Scalar[T]](f *ProblemFile, r *Registry[T]) (*problem.Problem[T], error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	dyn := make([]*linalg.Matrix[T], len(f.Cliques))
	var vStar []T
	for c, s := range f.Cliques {
		if len(s.MassMatrix) > 0 {
			a, err := linalg.NewMatrixFromRows[T](s.MassMatrix)
			if err != nil {
				return nil, fmt.Errorf("clique %d: %w", c, err)
			}
			dyn[c] = a
		} else {
			dyn[c] = linalg.ScaledIdentity(s.Size, scalar.Of[T](s.Mass))
		}
		if len(s.VStar) > 0 {
			vStar = append(vStar, scalar.FromFloats[T](s.VStar)...)
		} else {
			vStar = append(vStar, make([]T, f.CliqueSize(c))...)
		}
	}

	p, err := problem.New(scalar.Of[T](f.TimeStep), dyn, vStar)
	if err != nil {
		return nil, err
	}

	for i, s := range f.Constraints {
		build, err := r.Get(s.Kind)
		if err != nil {
			return nil, fmt.Errorf("constraint %d: %w", i, err)
		}
		j := make([]*linalg.Matrix[T], len(s.Cliques))
		for k, c := range s.Cliques {
			if len(s.Jacobians) == 0 {
				j[k] = linalg.Identity[T](f.CliqueSize(c))
				continue
			}
			if j[k], err = linalg.NewMatrixFromRows[T](s.Jacobians[k]); err != nil {
				return nil, fmt.Errorf("constraint %d: %w", i, err)
			}
		}
		c, err := build(s, j)
		if err != nil {
			return nil, fmt.Errorf("constraint %d: %w", i, err)
		}
		if _, err := p.AddConstraint(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// EvaluationPoint returns f.Velocity, or v* when it is not set.
func (f *ProblemFile) EvaluationPoint() []float64 {
	if len(f.Velocity) > 0 {
		return append([]float64(nil), f.Velocity...)
	}
	var v []float64
	for c, s := range f.Cliques {
		if len(s.VStar) > 0 {
			v = append(v, s.VStar...)
		} else {
			v = append(v, make([]float64, f.CliqueSize(c))...)
		}
	}
	return v
}

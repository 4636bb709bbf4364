package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/dyncontact/internal/constraint"
	"github.com/san-kum/dyncontact/internal/linalg"
	"github.com/san-kum/dyncontact/internal/scalar"
)

// Builder creates a constraint of one kind from its spec and Jacobian
// blocks, one per referenced clique.
type Builder[T scalar.Scalar[T]] func(s ConstraintSpec, j []*linalg.Matrix[T]) (constraint.Constraint[T], error)

// Registry maps constraint kinds to builders.
type Registry[T scalar.Scalar[T]] struct {
	builders map[string]Builder[T]
}

var kindChecks = map[string]func(ConstraintSpec, int) error{
	"holonomic": checkCompliant,
	"spring":    checkCompliant,
	"limit":     checkCompliant,
	"explicit":  checkExplicit,
}

func NewRegistry[T scalar.Scalar[T]]() *Registry[T] {
	r := &Registry[T]{builders: make(map[string]Builder[T])}

	r.builders["holonomic"] = func(s ConstraintSpec, j []*linalg.Matrix[T]) (constraint.Constraint[T], error) {
		base, err := newBase(s, j)
		if err != nil {
			return nil, err
		}
		c, err := constraint.NewHolonomic(base, parameters(s))
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	r.builders["spring"] = r.builders["holonomic"]
	r.builders["limit"] = func(s ConstraintSpec, j []*linalg.Matrix[T]) (constraint.Constraint[T], error) {
		base, err := newBase(s, j)
		if err != nil {
			return nil, err
		}
		c, err := constraint.NewLimit(base, parameters(s))
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	r.builders["explicit"] = func(s ConstraintSpec, j []*linalg.Matrix[T]) (constraint.Constraint[T], error) {
		p, err := constraint.ParseProjection(s.Projection)
		if err != nil {
			return nil, err
		}
		reg := scalar.FromFloats[T](s.Regularization)
		vHat := make([]T, len(reg))
		if len(s.Bias) > 0 {
			vHat = scalar.FromFloats[T](s.Bias)
		}
		var c *constraint.Explicit[T]
		if len(j) == 2 {
			c, err = constraint.NewExplicitPair(s.Cliques[0], j[0], s.Cliques[1], j[1], reg, vHat, p)
		} else {
			c, err = constraint.NewExplicitSingle(s.Cliques[0], j[0], reg, vHat, p)
		}
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	return r
}

// Register adds or replaces the builder for kind.
func (r *Registry[T]) Register(kind string, b Builder[T]) {
	r.builders[kind] = b
}

func (r *Registry[T]) Get(kind string) (Builder[T], error) {
	b, ok := r.builders[kind]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	return b, nil
}

func (r *Registry[T]) ListKinds() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newBase[T scalar.Scalar[T]](s ConstraintSpec, j []*linalg.Matrix[T]) (constraint.Base[T], error) {
	n := j[0].Rows()
	g := make([]T, n)
	if len(s.G) > 0 {
		g = scalar.FromFloats[T](s.G)
	}
	if len(j) == 2 {
		return constraint.NewTwoClique(s.Cliques[0], s.Cliques[1], g, j[0], j[1])
	}
	return constraint.NewSingleClique(s.Cliques[0], g, j[0])
}

// parameters fills in DefaultStiffness. An omitted dissipation_time is an
// undamped constraint.
func parameters(s ConstraintSpec) constraint.Parameters {
	p := constraint.Parameters{
		Stiffness:       s.Stiffness,
		DissipationTime: s.DissipationTime,
		Beta:            s.Beta,
	}
	if p.Stiffness == 0 {
		p.Stiffness = DefaultStiffness
	}
	return p
}

func checkCompliant(s ConstraintSpec, _ int) error {
	if len(s.Regularization) > 0 || len(s.Bias) > 0 {
		return errors.New("regularization and bias apply to explicit constraints only")
	}
	if s.Projection != "" {
		return errors.New("projection applies to explicit constraints only")
	}
	return parameters(s).Validate()
}

func checkExplicit(s ConstraintSpec, n int) error {
	if len(s.Regularization) == 0 {
		return errors.New("explicit constraint needs a regularization")
	}
	if len(s.Bias) > 0 && len(s.Bias) != n {
		return fmt.Errorf("bias has %d entries, want %d", len(s.Bias), n)
	}
	return nil
}

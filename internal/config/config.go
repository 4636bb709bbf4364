// Package config reads and writes contact problems as YAML and builds
// them into problem.Problem values.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/dyncontact/internal/constraint"
)

const (
	DefaultTimeStep  = 1e-3
	DefaultStiffness = 1e4
)

var (
	ErrInvalidFile   = errors.New("config: invalid problem file")
	ErrUnknownKind   = errors.New("config: unknown constraint kind")
	ErrUnknownPreset = errors.New("config: unknown preset")
)

// ProblemFile is the YAML form of a contact problem. Velocity is the
// evaluation point in the full velocity space; v* is used when it is empty.
type ProblemFile struct {
	Name        string           `yaml:"name,omitempty"`
	TimeStep    float64          `yaml:"time_step" validate:"gt=0"`
	Cliques     []CliqueSpec     `yaml:"cliques" validate:"required,min=1,dive"`
	Constraints []ConstraintSpec `yaml:"constraints" validate:"dive"`
	Velocity    []float64        `yaml:"velocity,omitempty"`
}

// CliqueSpec describes one clique. Its mass matrix is either Mass·I of
// the given Size or the explicit MassMatrix.
type CliqueSpec struct {
	Name       string      `yaml:"name,omitempty"`
	Size       int         `yaml:"size,omitempty" validate:"gte=0"`
	Mass       float64     `yaml:"mass,omitempty" validate:"gte=0"`
	MassMatrix [][]float64 `yaml:"mass_matrix,omitempty"`
	VStar      []float64   `yaml:"v_star,omitempty"`
}

// ConstraintSpec describes one constraint. Which fields apply depends on
// Kind; see Registry.
type ConstraintSpec struct {
	Kind            string        `yaml:"kind" validate:"required"`
	Cliques         []int         `yaml:"cliques" validate:"min=1,max=2,dive,gte=0"`
	Jacobians       [][][]float64 `yaml:"jacobians,omitempty"`
	G               []float64     `yaml:"g,omitempty"`
	Stiffness       float64       `yaml:"stiffness,omitempty" validate:"gte=0"`
	DissipationTime float64       `yaml:"dissipation_time,omitempty" validate:"gte=0"`
	Beta            float64       `yaml:"beta,omitempty" validate:"gte=0"`
	Regularization  []float64     `yaml:"regularization,omitempty" validate:"dive,gt=0"`
	Bias            []float64     `yaml:"bias,omitempty"`
	Projection      string        `yaml:"projection,omitempty" validate:"omitempty,oneof=identity clamp"`
}

var validate = validator.New()

func Load(path string) (*ProblemFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a problem file.
func Parse(data []byte) (*ProblemFile, error) {
	f := &ProblemFile{TimeStep: DefaultTimeStep}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func Save(path string, f *ProblemFile) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CliqueSize returns the number of velocities of clique c.
func (f *ProblemFile) CliqueSize(c int) int {
	s := f.Cliques[c]
	if len(s.MassMatrix) > 0 {
		return len(s.MassMatrix)
	}
	return s.Size
}

// NumVelocities returns the total number of velocities.
func (f *ProblemFile) NumVelocities() int {
	n := 0
	for c := range f.Cliques {
		n += f.CliqueSize(c)
	}
	return n
}

// Validate runs the struct tag checks and the cross-field checks that
// tags cannot express.
func (f *ProblemFile) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	for c, s := range f.Cliques {
		if err := checkClique(s); err != nil {
			return fmt.Errorf("%w: clique %d: %v", ErrInvalidFile, c, err)
		}
	}
	for i, s := range f.Constraints {
		if err := f.checkConstraint(s); err != nil {
			return fmt.Errorf("%w: constraint %d: %v", ErrInvalidFile, i, err)
		}
	}
	if len(f.Velocity) > 0 && len(f.Velocity) != f.NumVelocities() {
		return fmt.Errorf("%w: velocity has %d entries, want %d", ErrInvalidFile, len(f.Velocity), f.NumVelocities())
	}
	return nil
}

func checkClique(s CliqueSpec) error {
	switch {
	case len(s.MassMatrix) > 0 && s.Mass > 0:
		return errors.New("mass and mass_matrix are exclusive")
	case len(s.MassMatrix) == 0 && (s.Mass <= 0 || s.Size <= 0):
		return errors.New("need mass and size, or mass_matrix")
	case len(s.MassMatrix) > 0 && s.Size > 0 && s.Size != len(s.MassMatrix):
		return fmt.Errorf("size %d does not match %d mass_matrix rows", s.Size, len(s.MassMatrix))
	}
	n := s.Size
	if len(s.MassMatrix) > 0 {
		n = len(s.MassMatrix)
		for i, row := range s.MassMatrix {
			if len(row) != n {
				return fmt.Errorf("mass_matrix row %d has %d entries, want %d", i, len(row), n)
			}
		}
	}
	if len(s.VStar) > 0 && len(s.VStar) != n {
		return fmt.Errorf("v_star has %d entries, want %d", len(s.VStar), n)
	}
	return nil
}

func (f *ProblemFile) checkConstraint(s ConstraintSpec) error {
	check, ok := kindChecks[s.Kind]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownKind, s.Kind)
	}
	if len(s.Cliques) == 2 && s.Cliques[0] == s.Cliques[1] {
		return constraint.ErrSameClique
	}
	for _, c := range s.Cliques {
		if c >= len(f.Cliques) {
			return fmt.Errorf("clique %d of %d", c, len(f.Cliques))
		}
	}
	if len(s.Jacobians) > 0 && len(s.Jacobians) != len(s.Cliques) {
		return fmt.Errorf("%d jacobians for %d cliques", len(s.Jacobians), len(s.Cliques))
	}
	n := f.numEquations(s)
	if n <= 0 {
		return errors.New("cannot infer the number of equations")
	}
	for k, c := range s.Cliques {
		if len(s.Jacobians) == 0 {
			if f.CliqueSize(c) != n {
				return fmt.Errorf("identity jacobian needs %d equations, clique %d has %d velocities", n, c, f.CliqueSize(c))
			}
			continue
		}
		j := s.Jacobians[k]
		if len(j) != n {
			return fmt.Errorf("jacobian %d has %d rows, want %d", k, len(j), n)
		}
		for r, row := range j {
			if len(row) != f.CliqueSize(c) {
				return fmt.Errorf("jacobian %d row %d has %d entries, want %d", k, r, len(row), f.CliqueSize(c))
			}
		}
	}
	if len(s.G) > 0 && len(s.G) != n {
		return fmt.Errorf("g has %d entries, want %d", len(s.G), n)
	}
	return check(s, n)
}

// numEquations infers nᵢ from, in order, the regularization, g, the first
// Jacobian or the size of the first clique.
func (f *ProblemFile) numEquations(s ConstraintSpec) int {
	switch {
	case len(s.Regularization) > 0:
		return len(s.Regularization)
	case len(s.G) > 0:
		return len(s.G)
	case len(s.Jacobians) > 0:
		return len(s.Jacobians[0])
	case len(s.Cliques) > 0 && s.Cliques[0] < len(f.Cliques):
		return f.CliqueSize(s.Cliques[0])
	}
	return 0
}

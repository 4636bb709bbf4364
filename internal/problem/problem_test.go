package problem

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/dyncontact/internal/constraint"
	"github.com/san-kum/dyncontact/internal/linalg"
	"github.com/san-kum/dyncontact/internal/scalar"
)

type F = scalar.Float

func twoParticles(t *testing.T) *Problem[F] {
	t.Helper()
	p, err := New[F](1e-3,
		[]*linalg.Matrix[F]{linalg.ScaledIdentity[F](3, 1.5), linalg.ScaledIdentity[F](3, 3)},
		make([]F, 6))
	require.NoError(t, err)
	return p
}

func explicit(t *testing.T, clique, n, cols int) constraint.Constraint[F] {
	t.Helper()
	r := make([]F, n)
	for i := range r {
		r[i] = 1
	}
	c, err := constraint.NewExplicitSingle(clique, linalg.NewMatrix[F](n, cols), r, make([]F, n), constraint.Identity)
	require.NoError(t, err)
	return c
}

func TestNewValidation(t *testing.T) {
	id := linalg.Identity[F](2)
	notSym, _ := linalg.NewMatrixFromRows[F]([][]float64{{2, 1}, {0, 2}})
	indefinite, _ := linalg.NewMatrixFromRows[F]([][]float64{{1, 2}, {2, 1}})

	tests := []struct {
		name     string
		dt       F
		dynamics []*linalg.Matrix[F]
		vStar    []F
		want     error
	}{
		{"valid", 0.01, []*linalg.Matrix[F]{id}, []F{1, 2}, nil},
		{"no cliques", 0.01, nil, nil, nil},
		{"zero step", 0, []*linalg.Matrix[F]{id}, []F{1, 2}, ErrInvalidTimeStep},
		{"nan step", F(math.NaN()), []*linalg.Matrix[F]{id}, []F{1, 2}, ErrInvalidTimeStep},
		{"short v*", 0.01, []*linalg.Matrix[F]{id}, []F{1}, ErrDimensionMismatch},
		{"non square", 0.01, []*linalg.Matrix[F]{linalg.NewMatrix[F](2, 3)}, []F{1, 2}, linalg.ErrNotSquare},
		{"asymmetric", 0.01, []*linalg.Matrix[F]{notSym}, []F{1, 2}, linalg.ErrNotSymmetric},
		{"indefinite", 0.01, []*linalg.Matrix[F]{indefinite}, []F{1, 2}, linalg.ErrNotPositiveDefinite},
		{"nil block", 0.01, []*linalg.Matrix[F]{nil}, []F{1, 2}, ErrInvalidDynamics},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.dt, tt.dynamics, tt.vStar)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAddConstraint(t *testing.T) {
	p := twoParticles(t)

	idx, err := p.AddConstraint(explicit(t, 0, 3, 3))
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	_, err = p.AddConstraint(explicit(t, 2, 3, 3))
	assert.ErrorIs(t, err, ErrCliqueOutOfRange)
	var cerr *ConstraintError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, 1, cerr.Index)

	_, err = p.AddConstraint(explicit(t, 1, 3, 2))
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	pair, err := constraint.NewExplicitPair(1, linalg.NewMatrix[F](2, 3), 0, linalg.NewMatrix[F](2, 3),
		[]F{1, 1}, []F{0, 0}, constraint.Clamp)
	require.NoError(t, err)
	idx, err = p.AddConstraint(pair)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	assert.Equal(t, 2, p.NumConstraints())
	assert.Equal(t, 5, p.NumConstraintEquations())
	assert.Equal(t, 6, p.NumVelocities())
	assert.Equal(t, 2, p.NumCliques())
	assert.Equal(t, []int{3, 3}, p.CliqueSizes())
	assert.Equal(t, 3, p.VelocityStart(1))
	assert.Same(t, pair, p.Constraint(1))
	assert.Equal(t, F(1e-3), p.TimeStep())
	assert.Len(t, p.VStar(), 6)
	assert.Len(t, p.DynamicsMatrix(), 2)

	g, err := p.Graph()
	require.NoError(t, err)
	assert.Equal(t, 1, g.NumClusters())
	assert.Equal(t, []int{0, 1}, g.Cluster(0).Cliques)
}

// cliqueOverride reports clique references that constraint.Base would
// refuse to build.
type cliqueOverride struct {
	constraint.Constraint[F]
	numCliques int
	second     int
}

func (c cliqueOverride) NumCliques() int                         { return c.numCliques }
func (c cliqueOverride) SecondClique() int                       { return c.second }
func (c cliqueOverride) SecondCliqueJacobian() *linalg.Matrix[F] { return c.FirstCliqueJacobian() }

func TestAddConstraint_CliqueReferences(t *testing.T) {
	single := explicit(t, 0, 1, 3)

	tests := []struct {
		name string
		c    constraint.Constraint[F]
		want error
	}{
		{"same clique twice", cliqueOverride{single, 2, 0}, constraint.ErrSameClique},
		{"no cliques", cliqueOverride{single, 0, -1}, ErrCliqueCount},
		{"three cliques", cliqueOverride{single, 3, 1}, ErrCliqueCount},
		{"distinct pair", cliqueOverride{single, 2, 1}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := twoParticles(t)
			_, err := p.AddConstraint(tt.c)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, p.NumConstraints())
		})
	}
}

package config

import (
	"fmt"
	"math"
	"sort"
)

// Presets are built-in problems. Each call returns a fresh copy.
var Presets = map[string]func() *ProblemFile{
	"spring_mass": springMass,
	"dummy":       dummy,
	"chain":       chain,
}

func GetPreset(name string) (*ProblemFile, error) {
	fn, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownPreset, name)
	}
	return fn(), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// springMass: two 3D particles under gravity, only the first one tied to
// the origin by a spring-damper.
func springMass() *ProblemFile {
	const dt, g = 1e-3, 10.0
	return &ProblemFile{
		Name:     "spring_mass",
		TimeStep: dt,
		Cliques: []CliqueSpec{
			{Name: "particle1", Size: 3, Mass: 1.5, VStar: []float64{0, 0, -dt * g}},
			{Name: "particle2", Size: 3, Mass: 3, VStar: []float64{0, 0, -dt * g}},
		},
		Constraints: []ConstraintSpec{
			{Kind: "spring", Cliques: []int{0}, G: []float64{0.01, -0.02, 0.05}, Stiffness: 100, DissipationTime: 0.1},
		},
		Velocity: []float64{1, 2, 3, 0, 0, 0},
	}
}

// dummy: three cliques with non trivial mass matrices, a clamped
// constraint on the first clique and one coupling the other two.
func dummy() *ProblemFile {
	return &ProblemFile{
		Name:     "dummy",
		TimeStep: 1e-3,
		Cliques: []CliqueSpec{
			{MassMatrix: [][]float64{{2, 1}, {1, 2}}, VStar: []float64{1, 2}},
			{MassMatrix: [][]float64{{4, 1, 2}, {1, 5, 3}, {2, 3, 6}}, VStar: []float64{3, 4, 5}},
			{MassMatrix: [][]float64{{7, 1, 2, 3}, {1, 8, 4, 5}, {2, 4, 9, 6}, {3, 5, 6, 10}}, VStar: []float64{6, 7, 8, 9}},
		},
		Constraints: []ConstraintSpec{
			{
				Kind:           "explicit",
				Cliques:        []int{0},
				Jacobians:      [][][]float64{linearIndex(3, 2)},
				Regularization: []float64{1, 2, 3},
				Bias:           []float64{1, 2, 0.2},
				Projection:     "clamp",
			},
			{
				Kind:           "explicit",
				Cliques:        []int{1, 2},
				Jacobians:      [][][]float64{linearIndex(5, 3), linearIndex(5, 4)},
				Regularization: []float64{1, 2, 3, 4, 5},
				Bias:           []float64{100, 200, 300, 400, 500},
				Projection:     "clamp",
			},
		},
		Velocity: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9},
	}
}

// chain: planar particles linked by springs, the first one anchored, a
// rigid link regularized in the near-rigid regime, a floor under the last
// linked particle and one particle left free.
func chain() *ProblemFile {
	const dt, g = 1e-2, 9.81
	id := [][]float64{{1, 0}, {0, 1}}
	neg := [][]float64{{-1, 0}, {0, -1}}
	fall := []float64{0, -dt * g}
	return &ProblemFile{
		Name:     "chain",
		TimeStep: dt,
		Cliques: []CliqueSpec{
			{Name: "p0", Size: 2, Mass: 1, VStar: fall},
			{Name: "p1", Size: 2, Mass: 1, VStar: fall},
			{Name: "p2", Size: 2, Mass: 2, VStar: fall},
			{Name: "free", Size: 2, Mass: 1, VStar: fall},
		},
		Constraints: []ConstraintSpec{
			{Kind: "holonomic", Cliques: []int{0}, G: []float64{0, -0.01}, Stiffness: 1e3, DissipationTime: 0.05},
			{
				Kind: "holonomic", Cliques: []int{0, 1}, Jacobians: [][][]float64{id, neg},
				G: []float64{0.002, 0}, Stiffness: 5e2, DissipationTime: 0.05,
			},
			{
				Kind: "holonomic", Cliques: []int{1, 2}, Jacobians: [][][]float64{id, neg},
				G: []float64{0, 0.001}, Stiffness: math.Inf(1), Beta: 0.1,
			},
			{
				Kind: "limit", Cliques: []int{2}, Jacobians: [][][]float64{{{0, 1}}},
				G: []float64{0.001}, Stiffness: 1e4, DissipationTime: 0.01,
			},
		},
	}
}

// linearIndex returns a rows×cols matrix whose entries are their
// column-major linear index, starting at 1.
func linearIndex(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		for j := range m[i] {
			m[i][j] = float64(j*rows + i + 1)
		}
	}
	return m
}

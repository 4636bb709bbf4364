package model_test

import (
	"math"

	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/dyncontact/internal/constraint"
	"github.com/san-kum/dyncontact/internal/graph"
	"github.com/san-kum/dyncontact/internal/linalg"
	"github.com/san-kum/dyncontact/internal/problem"
	"github.com/san-kum/dyncontact/internal/scalar"
)

// Two 3D particles. Only the first one is tied to the origin by a
// spring-damper; the second one moves freely.
const (
	springTimeStep = 1e-3
	mass1          = 1.5
	mass2          = 3.0
	stiffness      = 100.0
	dissipation    = 0.1
	gravity        = 10.0
)

func springMassProblem[T scalar.Scalar[T]](q, v []float64) *problem.Problem[T] {
	vStar := make([]float64, 6)
	copy(vStar, v)
	vStar[2] -= springTimeStep * gravity
	vStar[5] -= springTimeStep * gravity

	p, err := problem.New(scalar.Of[T](springTimeStep),
		[]*linalg.Matrix[T]{
			linalg.ScaledIdentity(3, scalar.Of[T](mass1)),
			linalg.ScaledIdentity(3, scalar.Of[T](mass2)),
		},
		scalar.FromFloats[T](vStar))
	Expect(err).NotTo(HaveOccurred())

	base, err := constraint.NewSingleClique(0, scalar.FromFloats[T](q[:3]), linalg.Identity[T](3))
	Expect(err).NotTo(HaveOccurred())
	spring, err := constraint.NewHolonomic(base, constraint.Parameters{Stiffness: stiffness, DissipationTime: dissipation})
	Expect(err).NotTo(HaveOccurred())
	_, err = p.AddConstraint(spring)
	Expect(err).NotTo(HaveOccurred())
	return p
}

// makeJacobian fills a rows×cols matrix with its column-major linear
// index, starting at 1.
func makeJacobian[T scalar.Scalar[T]](rows, cols int) *linalg.Matrix[T] {
	m := linalg.NewMatrix[T](rows, cols)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			m.Set(i, j, scalar.Of[T](float64(j*rows+i+1)))
		}
	}
	return m
}

func linSpaced(n int, lo, hi float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

var dummyBlocks = [][][]float64{
	{{2, 1}, {1, 2}},
	{{4, 1, 2}, {1, 5, 3}, {2, 3, 6}},
	{{7, 1, 2, 3}, {1, 8, 4, 5}, {2, 4, 9, 6}, {3, 5, 6, 10}},
}

// dummyProblem has three cliques of sizes 2, 3 and 4, a clamped constraint
// on clique 0 and a clamped constraint coupling cliques 1 and 2.
func dummyProblem[T scalar.Scalar[T]]() *problem.Problem[T] {
	dyn := make([]*linalg.Matrix[T], len(dummyBlocks))
	for i, rows := range dummyBlocks {
		a, err := linalg.NewMatrixFromRows[T](rows)
		Expect(err).NotTo(HaveOccurred())
		dyn[i] = a
	}
	p, err := problem.New(scalar.Of[T](1e-3), dyn, scalar.FromFloats[T](linSpaced(9, 1, 9)))
	Expect(err).NotTo(HaveOccurred())

	c0, err := constraint.NewExplicitSingle(0, makeJacobian[T](3, 2),
		scalar.FromFloats[T](linSpaced(3, 1, 3)),
		scalar.FromFloats[T]([]float64{1, 2, 0.2}),
		constraint.Clamp)
	Expect(err).NotTo(HaveOccurred())
	_, err = p.AddConstraint(c0)
	Expect(err).NotTo(HaveOccurred())

	r := linSpaced(5, 1, 5)
	vHat := make([]float64, 5)
	for i := range r {
		vHat[i] = 100 * r[i]
	}
	c1, err := constraint.NewExplicitPair(1, makeJacobian[T](5, 3), 2, makeJacobian[T](5, 4),
		scalar.FromFloats[T](r), scalar.FromFloats[T](vHat), constraint.Clamp)
	Expect(err).NotTo(HaveOccurred())
	_, err = p.AddConstraint(c1)
	Expect(err).NotTo(HaveOccurred())
	return p
}

// Near-rigid parameters for the coupling constraint of reorderedProblem.
// With these values R is set by the Delassus estimate, not by k.
var nearRigid = constraint.Parameters{Stiffness: 1e6, DissipationTime: 0.1, Beta: 1}

// reorderedProblem has four cliques of sizes 2, 3, 1 and 2. Clique 2 is
// free. Constraint 0 clamps clique 3, constraint 1 acts on clique 1 alone
// and constraint 2 couples cliques 3 and 0, so clusters are {3, 0} with
// constraints {0, 2} and {1} with constraint {1}.
func reorderedProblem[T scalar.Scalar[T]]() *problem.Problem[T] {
	blocks := [][][]float64{
		{{2, 1}, {1, 2}},
		{{4, 1, 2}, {1, 5, 3}, {2, 3, 6}},
		{{5}},
		{{3, 1}, {1, 4}},
	}
	dyn := make([]*linalg.Matrix[T], len(blocks))
	for i, rows := range blocks {
		a, err := linalg.NewMatrixFromRows[T](rows)
		Expect(err).NotTo(HaveOccurred())
		dyn[i] = a
	}
	p, err := problem.New(scalar.Of[T](1e-3), dyn, scalar.FromFloats[T](linSpaced(8, -1, 2)))
	Expect(err).NotTo(HaveOccurred())

	c0, err := constraint.NewExplicitSingle(3, makeJacobian[T](2, 2),
		scalar.FromFloats[T]([]float64{1, 3}),
		scalar.FromFloats[T]([]float64{1, -2}),
		constraint.Clamp)
	Expect(err).NotTo(HaveOccurred())
	c1, err := constraint.NewExplicitSingle(1, makeJacobian[T](1, 3),
		scalar.FromFloats[T]([]float64{2}),
		scalar.FromFloats[T]([]float64{0.5}),
		constraint.Identity)
	Expect(err).NotTo(HaveOccurred())
	base, err := constraint.NewTwoClique(3, 0, scalar.FromFloats[T]([]float64{0.01, -0.02}),
		makeJacobian[T](2, 2), linalg.Identity[T](2))
	Expect(err).NotTo(HaveOccurred())
	c2, err := constraint.NewHolonomic(base, nearRigid)
	Expect(err).NotTo(HaveOccurred())

	for _, c := range []constraint.Constraint[T]{c0, c1, c2} {
		_, err = p.AddConstraint(c)
		Expect(err).NotTo(HaveOccurred())
	}
	return p
}

// delassusReference returns ‖Wᵢ‖/nᵢ for every constraint, in original
// constraint order, with Wᵢ = Σ J A⁻¹ Jᵀ computed densely.
func delassusReference(p *problem.Problem[scalar.Float]) []float64 {
	out := make([]float64, p.NumConstraints())
	for i := range out {
		c := p.Constraint(i)
		n := c.NumConstraintEquations()
		W := mat.NewDense(n, n, nil)
		add := func(clique int, jac *linalg.Matrix[scalar.Float]) {
			var chol mat.Cholesky
			a := p.DynamicsMatrix()[clique].Dense()
			ExpectWithOffset(2, chol.Factorize(mat.NewSymDense(a.RawMatrix().Rows, a.RawMatrix().Data))).To(BeTrue())
			var x, w mat.Dense
			ExpectWithOffset(2, chol.SolveTo(&x, jac.Dense().T())).To(Succeed())
			w.Mul(jac.Dense(), &x)
			W.Add(W, &w)
		}
		add(c.FirstClique(), c.FirstCliqueJacobian())
		if c.NumCliques() == 2 {
			add(c.SecondClique(), c.SecondCliqueJacobian())
		}
		out[i] = mat.Norm(W, 2) / float64(n)
	}
	return out
}

// inClusterOrder rearranges per-constraint values from original order to
// the order clusters list their constraints.
func inClusterOrder(g *graph.Graph, x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, cl := range g.Clusters() {
		for _, k := range cl.Constraints {
			out = append(out, x[k])
		}
	}
	return out
}

func arbitraryV() []float64 {
	return []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}
}

// expectClose compares element-wise with a tolerance relative to the
// largest magnitude in want.
func expectClose(got, want []float64, rel float64) {
	ExpectWithOffset(1, got).To(HaveLen(len(want)))
	scale := 1.0
	for _, w := range want {
		scale = math.Max(scale, math.Abs(w))
	}
	for i := range want {
		ExpectWithOffset(1, got[i]).To(BeNumerically("~", want[i], rel*scale), "entry %d", i)
	}
}

func flatten(m [][]float64) []float64 {
	var out []float64
	for _, row := range m {
		out = append(out, row...)
	}
	return out
}

package model_test

import (
	"bytes"
	"log/slog"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/dyncontact/internal/graph"
	"github.com/san-kum/dyncontact/internal/linalg"
	"github.com/san-kum/dyncontact/internal/model"
	"github.com/san-kum/dyncontact/internal/permutation"
	"github.com/san-kum/dyncontact/internal/problem"
	"github.com/san-kum/dyncontact/internal/scalar"
)

type F = scalar.Float

var _ = Describe("SpringMass", func() {
	var (
		m   *model.Model[F]
		ctx *model.Context[F]
	)

	build := func(q, v []float64) {
		var err error
		m, err = model.New(springMassProblem[F](q, v))
		Expect(err).NotTo(HaveOccurred())
		ctx = m.MakeContext()
	}

	BeforeEach(func() {
		build(make([]float64, 6), make([]float64, 6))
	})

	It("keeps only the constrained particle", func() {
		Expect(m.Problem().NumCliques()).To(Equal(2))
		Expect(m.Problem().NumVelocities()).To(Equal(6))
		Expect(m.NumCliques()).To(Equal(1))
		Expect(m.NumVelocities()).To(Equal(3))
		Expect(m.NumConstraints()).To(Equal(1))
		Expect(m.NumConstraintEquations()).To(Equal(3))
	})

	It("permutes velocities of the first clique only", func() {
		v1, err := permutation.Apply(m.VelocitiesPermutation(), []F{1, 2, 3, 4, 5, 6})
		Expect(err).NotTo(HaveOccurred())
		Expect(v1).To(Equal([]F{1, 2, 3}))
	})

	It("reduces the problem data", func() {
		build(make([]float64, 6), []float64{1, 2, 3, 4, 5, 6})
		Expect(m.TimeStep()).To(Equal(m.Problem().TimeStep()))

		Expect(m.DynamicsMatrix()).To(HaveLen(1))
		Expect(m.DynamicsMatrix()[0].Equal(linalg.ScaledIdentity[F](3, mass1))).To(BeTrue())

		dtg := springTimeStep * gravity
		vStar := []F{1, 2, F(3 - dtg)}
		Expect(m.VStar()).To(Equal(vStar))
		Expect(m.PStar()).To(Equal([]F{mass1 * vStar[0], mass1 * vStar[1], mass1 * vStar[2]}))

		invSqrt := F(1 / math.Sqrt(mass1))
		Expect(m.InvSqrtDynamicsMatrix()).To(Equal([]F{invSqrt, invSqrt, invSqrt}))
	})

	It("approximates the Delassus diagonal in closed form", func() {
		w := m.DelassusDiagonal()
		Expect(w).To(HaveLen(1))
		want := 1 / mass1 / math.Sqrt(3)
		Expect(float64(w[0])).To(BeNumerically("~", want, 1e-14*want))
		Expect(want).To(BeNumerically("~", 0.3849, 1e-4))
	})

	It("reads back the velocities it was given", func() {
		v := []F{1, 2, 3}
		Expect(m.SetVelocities(ctx, v)).To(Succeed())
		got, err := m.GetVelocities(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(v))

		v[0] = 7
		got, _ = m.GetVelocities(ctx)
		Expect(got[0]).To(Equal(F(1)))
	})

	It("evaluates constraint velocities with an identity Jacobian", func() {
		Expect(m.SetVelocities(ctx, []F{1, 2, 3})).To(Succeed())
		vc, err := m.EvalConstraintVelocities(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(vc).To(Equal([]F{1, 2, 3}))
	})

	It("evaluates the momentum gain and cost", func() {
		v := []F{1, 2, 3}
		Expect(m.SetVelocities(ctx, v)).To(Succeed())
		vStar := m.VStar()

		gain, err := m.EvalMomentumGain(ctx)
		Expect(err).NotTo(HaveOccurred())
		for i := range v {
			Expect(gain[i]).To(Equal(mass1 * (v[i] - vStar[i])))
		}

		cost, err := m.EvalMomentumCost(ctx)
		Expect(err).NotTo(HaveOccurred())
		var sq float64
		for i := range v {
			d := float64(v[i] - vStar[i])
			sq += d * d
		}
		want := 0.5 * mass1 * sq
		Expect(float64(cost)).To(BeNumerically("~", want, 1e-14*want))
	})

	It("produces the spring impulse", func() {
		build([]float64{0.01, -0.02, 0.03, 0, 0, 0}, make([]float64, 6))
		v := []F{0.5, -0.25, 1}
		Expect(m.SetVelocities(ctx, v)).To(Succeed())
		gamma, err := m.EvalImpulses(ctx)
		Expect(err).NotTo(HaveOccurred())

		// γ = −δt·(k·x + τ·k·v) = −R⁻¹·(v − v̂).
		q := []float64{0.01, -0.02, 0.03}
		for i := range q {
			want := -springTimeStep * (stiffness*q[i] + dissipation*stiffness*float64(v[i]) +
				springTimeStep*stiffness*float64(v[i]))
			Expect(float64(gamma[i])).To(BeNumerically("~", want, 1e-12))
		}
	})

	It("expands reduced velocities to the full problem", func() {
		build(make([]float64, 6), []float64{0, 0, 0, 4, 5, 6})
		full, err := m.ExpandVelocities([]F{1, 2, 3})
		Expect(err).NotTo(HaveOccurred())
		dtg := springTimeStep * gravity
		Expect(full).To(Equal([]F{1, 2, 3, 4, 5, F(6 - dtg)}))

		_, err = m.ExpandVelocities([]F{1})
		Expect(err).To(MatchError(model.ErrVelocitiesSize))
	})

	It("reduces full velocities to the participating cliques", func() {
		build(make([]float64, 6), make([]float64, 6))
		reduced, err := m.ReduceVelocities([]F{1, 2, 3, 4, 5, 6})
		Expect(err).NotTo(HaveOccurred())
		Expect(reduced).To(Equal([]F{1, 2, 3}))

		full, err := m.ExpandVelocities(reduced)
		Expect(err).NotTo(HaveOccurred())
		Expect(full[:3]).To(Equal(reduced))

		_, err = m.ReduceVelocities([]F{1, 2, 3})
		Expect(err).To(MatchError(model.ErrVelocitiesSize))
	})

	It("logs its sizes when built", func() {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		_, err := model.New(springMassProblem[F](make([]float64, 6), make([]float64, 6)), model.WithLogger(logger))
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("velocities=3"))
		Expect(buf.String()).To(ContainSubstring("dropped_cliques=1"))
	})
})

var _ = Describe("Dummy", func() {
	var (
		p   *problem.Problem[F]
		m   *model.Model[F]
		ctx *model.Context[F]

		// Dense references in the reduced space.
		A *mat.Dense
		J *mat.Dense
		R []float64
	)

	BeforeEach(func() {
		p = dummyProblem[F]()
		Expect(p.NumCliques()).To(Equal(3))
		Expect(p.NumVelocities()).To(Equal(9))
		Expect(p.NumConstraints()).To(Equal(2))
		Expect(p.NumConstraintEquations()).To(Equal(8))

		var err error
		m, err = model.New(p)
		Expect(err).NotTo(HaveOccurred())
		ctx = m.MakeContext()

		A = mat.NewDense(9, 9, nil)
		offset := 0
		for _, a := range m.DynamicsMatrix() {
			n := a.Rows()
			A.Slice(offset, offset+n, offset, offset+n).(*mat.Dense).Copy(a.Dense())
			offset += n
		}
		J = m.ConstraintsBundle().J().Dense().Dense()
		R = scalar.Values(m.ConstraintsBundle().R())
	})

	It("keeps every clique", func() {
		Expect(m.NumCliques()).To(Equal(3))
		Expect(m.NumVelocities()).To(Equal(9))
		Expect(m.NumConstraints()).To(Equal(2))
		Expect(m.NumConstraintEquations()).To(Equal(8))
		Expect(m.Graph().NumClusters()).To(Equal(2))
	})

	It("uses identity permutations for this layout", func() {
		for i := 0; i < 9; i++ {
			Expect(m.VelocitiesPermutation().PermutedIndex(i)).To(Equal(i))
		}
		Expect(m.ImpulsesPermutation().DomainSize()).To(Equal(8))
		for i := 0; i < 8; i++ {
			Expect(m.ImpulsesPermutation().PermutedIndex(i)).To(Equal(i))
		}
	})

	It("computes p* = A·v* exactly", func() {
		var want mat.VecDense
		want.MulVec(A, mat.NewVecDense(9, scalar.Values(m.VStar())))
		Expect(scalar.Values(m.PStar())).To(Equal(want.RawVector().Data))
		Expect(m.VStar()).To(Equal(scalar.Floats(linSpaced(9, 1, 9))))
	})

	It("matches an independent Delassus diagonal", func() {
		want := inClusterOrder(m.Graph(), delassusReference(p))
		expectClose(scalar.Values(m.DelassusDiagonal()), want, 1e-13)
	})

	It("computes the momentum gain A·(v − v*)", func() {
		v := scalar.Floats(arbitraryV())
		Expect(m.SetVelocities(ctx, v)).To(Succeed())
		gain, err := m.EvalMomentumGain(ctx)
		Expect(err).NotTo(HaveOccurred())

		dv := linalg.Sub(v, m.VStar())
		Expect(gain).To(Equal(m.MultiplyByDynamicsMatrix(dv)))

		var want mat.VecDense
		want.MulVec(A, mat.NewVecDense(9, scalar.Values(dv)))
		expectClose(scalar.Values(gain), want.RawVector().Data, 1e-15)
	})

	It("evaluates constraint velocities and impulses", func() {
		v := arbitraryV()
		Expect(m.SetVelocities(ctx, scalar.Floats(v))).To(Succeed())

		var vc mat.VecDense
		vc.MulVec(J, mat.NewVecDense(9, v))
		got, err := m.EvalConstraintVelocities(ctx)
		Expect(err).NotTo(HaveOccurred())
		expectClose(scalar.Values(got), vc.RawVector().Data, 1e-15)

		vHat := scalar.Values(m.ConstraintsBundle().VHat())
		wantY := make([]float64, 8)
		wantGamma := make([]float64, 8)
		for i := range wantY {
			wantY[i] = (vHat[i] - vc.AtVec(i)) / R[i]
			wantGamma[i] = math.Max(0, wantY[i])
		}
		y, err := m.EvalUnprojectedImpulses(ctx)
		Expect(err).NotTo(HaveOccurred())
		expectClose(scalar.Values(y), wantY, 1e-14)

		gamma, err := m.EvalImpulses(ctx)
		Expect(err).NotTo(HaveOccurred())
		expectClose(scalar.Values(gamma), wantGamma, 1e-14)

		// The clamp must be active on some equations for this v.
		Expect(wantY).To(ContainElement(BeNumerically("<", 0)))
	})

	It("splits the cost into momentum and regularizer terms", func() {
		Expect(m.SetVelocities(ctx, scalar.Floats(arbitraryV()))).To(Succeed())
		momentum, err := m.EvalMomentumCost(ctx)
		Expect(err).NotTo(HaveOccurred())
		gamma, err := m.EvalImpulses(ctx)
		Expect(err).NotTo(HaveOccurred())
		cost, err := m.EvalCost(ctx)
		Expect(err).NotTo(HaveOccurred())

		var reg float64
		for i, g := range gamma {
			reg += float64(g) * R[i] * float64(g)
		}
		want := float64(momentum) + 0.5*reg
		Expect(float64(cost)).To(BeNumerically("~", want, 1e-14*math.Abs(want)))
	})

	DescribeTable("gradient matches automatic differentiation",
		func(v []float64) {
			Expect(m.SetVelocities(ctx, scalar.Floats(v))).To(Succeed())
			grad, err := m.EvalCostGradient(ctx)
			Expect(err).NotTo(HaveOccurred())

			dm, err := model.New(dummyProblem[scalar.Dual]())
			Expect(err).NotTo(HaveOccurred())
			dctx := dm.MakeContext()
			want, err := scalar.Gradient(v, func(vd []scalar.Dual) (scalar.Dual, error) {
				if err := dm.SetVelocities(dctx, vd); err != nil {
					return scalar.Dual{}, err
				}
				return dm.EvalCost(dctx)
			})
			Expect(err).NotTo(HaveOccurred())
			expectClose(scalar.Values(grad), want, 1e-13)
		},
		Entry("arbitrary v", arbitraryV()),
		Entry("zero v", make([]float64, 9)),
		Entry("v*", linSpaced(9, 1, 9)),
		Entry("mixed signs", []float64{-3, 2.5, 40, -7, 0.5, 12, -1, 9, -20}),
	)

	DescribeTable("Hessian A + JᵀGJ matches automatic differentiation",
		func(v []float64) {
			Expect(m.SetVelocities(ctx, scalar.Floats(v))).To(Succeed())
			H, err := m.EvalCostHessian(ctx)
			Expect(err).NotTo(HaveOccurred())

			G, err := m.EvalConstraintsHessian(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(G).To(HaveLen(2))
			Expect(G[0].Rows()).To(Equal(3))
			Expect(G[1].Rows()).To(Equal(5))

			// Jacobian of the analytic gradient, differentiated with duals.
			dm, err := model.New(dummyProblem[scalar.Dual]())
			Expect(err).NotTo(HaveOccurred())
			dctx := dm.MakeContext()
			jac, err := scalar.Jacobian(v, func(vd []scalar.Dual) ([]scalar.Dual, error) {
				if err := dm.SetVelocities(dctx, vd); err != nil {
					return nil, err
				}
				return dm.EvalCostGradient(dctx)
			})
			Expect(err).NotTo(HaveOccurred())
			expectClose(H.Values(), flatten(jac), 1e-13)

			// Second derivative of the cost itself, with hyper-duals.
			hm, err := model.New(dummyProblem[scalar.HyperDual]())
			Expect(err).NotTo(HaveOccurred())
			hctx := hm.MakeContext()
			hess, err := scalar.Hessian(v, func(vh []scalar.HyperDual) (scalar.HyperDual, error) {
				if err := hm.SetVelocities(hctx, vh); err != nil {
					return scalar.HyperDual{}, err
				}
				return hm.EvalCost(hctx)
			})
			Expect(err).NotTo(HaveOccurred())
			expectClose(H.Values(), flatten(hess), 1e-13)
		},
		Entry("arbitrary v", arbitraryV()),
		Entry("mixed signs", []float64{-3, 2.5, 40, -7, 0.5, 12, -1, 9, -20}),
	)

	It("caches until the velocities change", func() {
		Expect(m.SetVelocities(ctx, scalar.Floats(arbitraryV()))).To(Succeed())
		g1, err := m.EvalCostGradient(ctx)
		Expect(err).NotTo(HaveOccurred())
		first := append([]F(nil), g1...)
		c1, _ := m.EvalCost(ctx)

		g2, _ := m.EvalCostGradient(ctx)
		Expect(&g2[0]).To(BeIdenticalTo(&g1[0]))

		Expect(m.SetVelocities(ctx, make([]F, 9))).To(Succeed())
		c2, _ := m.EvalCost(ctx)
		Expect(c2).NotTo(Equal(c1))
		g3, _ := m.EvalCostGradient(ctx)
		Expect(g3).NotTo(Equal(first))
	})

	It("keeps contexts independent", func() {
		other := m.MakeContext()
		Expect(m.SetVelocities(ctx, scalar.Floats(arbitraryV()))).To(Succeed())
		Expect(m.SetVelocities(other, make([]F, 9))).To(Succeed())
		c1, _ := m.EvalCost(ctx)
		c2, _ := m.EvalCost(other)
		Expect(c1).NotTo(Equal(c2))
		again, _ := m.EvalCost(ctx)
		Expect(again).To(Equal(c1))
	})
})

var _ = Describe("Reordered", func() {
	var (
		p   *problem.Problem[F]
		m   *model.Model[F]
		ctx *model.Context[F]
	)

	BeforeEach(func() {
		p = reorderedProblem[F]()
		var err error
		m, err = model.New(p)
		Expect(err).NotTo(HaveOccurred())
		ctx = m.MakeContext()
	})

	It("orders clusters by first appearance and drops the free clique", func() {
		Expect(m.Graph().Clusters()).To(Equal([]graph.Cluster{
			{Cliques: []int{3, 0}, Constraints: []int{0, 2}},
			{Cliques: []int{1}, Constraints: []int{1}},
		}))
		Expect(m.NumCliques()).To(Equal(3))
		Expect(m.NumVelocities()).To(Equal(7))
		Expect(m.NumConstraintEquations()).To(Equal(5))
	})

	It("permutes velocities clique by clique", func() {
		vel := m.VelocitiesPermutation()
		want := map[int]int{6: 0, 7: 1, 0: 2, 1: 3, 2: 4, 3: 5, 4: 6}
		for i, j := range want {
			Expect(vel.PermutedIndex(i)).To(Equal(j), "velocity %d", i)
		}
		Expect(vel.Participates(5)).To(BeFalse())

		reduced, err := m.ReduceVelocities([]F{0, 1, 2, 3, 4, 5, 6, 7})
		Expect(err).NotTo(HaveOccurred())
		Expect(reduced).To(Equal([]F{6, 7, 0, 1, 2, 3, 4}))
	})

	It("permutes impulses equation by equation", func() {
		imp := m.ImpulsesPermutation()
		Expect(imp.DomainSize()).To(Equal(5))
		for i, j := range []int{0, 1, 4, 2, 3} {
			Expect(imp.PermutedIndex(i)).To(Equal(j), "equation %d", i)
		}
	})

	It("keeps the Delassus diagonal in cluster order", func() {
		ref := delassusReference(p)
		w := scalar.Values(m.DelassusDiagonal())
		expectClose(w, inClusterOrder(m.Graph(), ref), 1e-13)
		Expect(w[1]).To(BeNumerically("~", ref[2], 1e-13*ref[2]))
		Expect(w[2]).To(BeNumerically("~", ref[1], 1e-13*ref[1]))
	})

	It("regularizes the coupling constraint with its own Delassus estimate", func() {
		w := float64(m.DelassusDiagonal()[1])
		want := nearRigid.Beta * nearRigid.Beta / (4 * math.Pi * math.Pi) * w
		R := scalar.Values(m.ConstraintsBundle().R())
		Expect(R).To(HaveLen(5))
		Expect(R[2]).To(BeNumerically("~", want, 1e-14*want))
		Expect(R[3]).To(BeNumerically("~", want, 1e-14*want))
		Expect(R[:2]).To(Equal([]float64{1, 3}))
		Expect(R[4]).To(Equal(2.0))
	})

	It("scatters impulses back to original equations", func() {
		Expect(m.SetVelocities(ctx, scalar.Floats(linSpaced(7, -2, 1)))).To(Succeed())
		gamma, err := m.EvalImpulses(ctx)
		Expect(err).NotTo(HaveOccurred())

		orig := make([]F, 5)
		Expect(permutation.ApplyInverse(m.ImpulsesPermutation(), gamma, orig)).To(Succeed())
		Expect(orig[4]).To(Equal(gamma[3]))
		Expect(orig[2]).To(Equal(gamma[4]))
	})

	DescribeTable("gradient and Hessian match automatic differentiation",
		func(v []float64) {
			Expect(m.SetVelocities(ctx, scalar.Floats(v))).To(Succeed())
			grad, err := m.EvalCostGradient(ctx)
			Expect(err).NotTo(HaveOccurred())
			H, err := m.EvalCostHessian(ctx)
			Expect(err).NotTo(HaveOccurred())

			G, err := m.EvalConstraintsHessian(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(G).To(HaveLen(3))
			Expect(G[0].Rows()).To(Equal(2))
			Expect(G[1].Rows()).To(Equal(2))
			Expect(G[2].Rows()).To(Equal(1))

			dm, err := model.New(reorderedProblem[scalar.Dual]())
			Expect(err).NotTo(HaveOccurred())
			dctx := dm.MakeContext()
			wantGrad, err := scalar.Gradient(v, func(vd []scalar.Dual) (scalar.Dual, error) {
				if err := dm.SetVelocities(dctx, vd); err != nil {
					return scalar.Dual{}, err
				}
				return dm.EvalCost(dctx)
			})
			Expect(err).NotTo(HaveOccurred())
			expectClose(scalar.Values(grad), wantGrad, 1e-13)

			hm, err := model.New(reorderedProblem[scalar.HyperDual]())
			Expect(err).NotTo(HaveOccurred())
			hctx := hm.MakeContext()
			hess, err := scalar.Hessian(v, func(vh []scalar.HyperDual) (scalar.HyperDual, error) {
				if err := hm.SetVelocities(hctx, vh); err != nil {
					return scalar.HyperDual{}, err
				}
				return hm.EvalCost(hctx)
			})
			Expect(err).NotTo(HaveOccurred())
			expectClose(H.Values(), flatten(hess), 1e-13)
		},
		Entry("ramp", linSpaced(7, -2, 1)),
		Entry("mixed signs", []float64{3, -1.5, 0.25, -4, 2, -0.5, 1}),
		Entry("zero v", make([]float64, 7)),
	)
})

var _ = Describe("Errors", func() {
	It("rejects evaluation before velocities are set", func() {
		m, err := model.New(dummyProblem[F]())
		Expect(err).NotTo(HaveOccurred())
		ctx := m.MakeContext()

		_, err = m.EvalCost(ctx)
		Expect(err).To(MatchError(model.ErrVelocitiesNotSet))
		_, err = m.EvalCostGradient(ctx)
		Expect(err).To(MatchError(model.ErrVelocitiesNotSet))
		_, err = m.EvalConstraintsHessian(ctx)
		Expect(err).To(MatchError(model.ErrVelocitiesNotSet))
		_, err = m.GetVelocities(ctx)
		Expect(err).To(MatchError(model.ErrVelocitiesNotSet))
	})

	It("rejects velocities of the wrong size", func() {
		m, err := model.New(dummyProblem[F]())
		Expect(err).NotTo(HaveOccurred())
		err = m.SetVelocities(m.MakeContext(), make([]F, 4))
		Expect(err).To(MatchError(model.ErrVelocitiesSize))
	})

	It("rejects contexts from another model", func() {
		m1, err := model.New(dummyProblem[F]())
		Expect(err).NotTo(HaveOccurred())
		m2, err := model.New(dummyProblem[F]())
		Expect(err).NotTo(HaveOccurred())
		ctx := m1.MakeContext()
		Expect(m1.SetVelocities(ctx, make([]F, 9))).To(Succeed())

		Expect(m2.SetVelocities(ctx, make([]F, 9))).To(MatchError(model.ErrForeignContext))
		_, err = m2.EvalImpulses(ctx)
		Expect(err).To(MatchError(model.ErrForeignContext))
		_, err = m2.EvalImpulses(nil)
		Expect(err).To(MatchError(model.ErrForeignContext))
	})

	It("rejects problems without participating cliques", func() {
		p, err := problem.New[F](1e-3, []*linalg.Matrix[F]{linalg.Identity[F](2)}, []F{0, 0})
		Expect(err).NotTo(HaveOccurred())
		_, err = model.New(p)
		Expect(err).To(MatchError(model.ErrNoParticipatingCliques))
	})
})

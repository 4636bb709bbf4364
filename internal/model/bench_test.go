package model_test

import (
	"testing"

	"github.com/onsi/gomega"

	"github.com/san-kum/dyncontact/internal/model"
	"github.com/san-kum/dyncontact/internal/scalar"
)

func benchModel(b *testing.B) (*model.Model[F], *model.Context[F]) {
	gomega.RegisterTestingT(b)
	m, err := model.New(dummyProblem[F]())
	if err != nil {
		b.Fatal(err)
	}
	return m, m.MakeContext()
}

func BenchmarkEvalCost(b *testing.B) {
	m, ctx := benchModel(b)
	v := scalar.Floats(arbitraryV())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.SetVelocities(ctx, v)
		_, _ = m.EvalCost(ctx)
	}
}

func BenchmarkEvalCostGradient(b *testing.B) {
	m, ctx := benchModel(b)
	v := scalar.Floats(arbitraryV())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.SetVelocities(ctx, v)
		_, _ = m.EvalCostGradient(ctx)
	}
}

func BenchmarkEvalCostHessian(b *testing.B) {
	m, ctx := benchModel(b)
	v := scalar.Floats(arbitraryV())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.SetVelocities(ctx, v)
		_, _ = m.EvalCostHessian(ctx)
	}
}

func BenchmarkNew(b *testing.B) {
	gomega.RegisterTestingT(b)
	for i := 0; i < b.N; i++ {
		if _, err := model.New(dummyProblem[F]()); err != nil {
			b.Fatal(err)
		}
	}
}

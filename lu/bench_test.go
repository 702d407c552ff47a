package lu_test

import (
	"testing"

	"github.com/sparsekit/sparsekit/lu"
)

func BenchmarkFactor(b *testing.B) {
	a := gridLaplacian(b, 10)
	sym, err := lu.Analyze(a)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := lu.Factor(a, sym); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRefactor(b *testing.B) {
	a := gridLaplacian(b, 10)
	sym, err := lu.Analyze(a)
	if err != nil {
		b.Fatal(err)
	}
	num, err := lu.Factor(a, sym)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := num.Refactor(a); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSolve(b *testing.B) {
	a := gridLaplacian(b, 10)
	sym, err := lu.Analyze(a)
	if err != nil {
		b.Fatal(err)
	}
	num, err := lu.Factor(a, sym)
	if err != nil {
		b.Fatal(err)
	}
	rhs := make([]float64, a.Cols())
	for i := range rhs {
		rhs[i] = float64(i%7) + 1
	}
	x := make([]float64, len(rhs))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		copy(x, rhs)
		if err := num.Solve(x); err != nil {
			b.Fatal(err)
		}
	}
}

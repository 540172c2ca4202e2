package diffeq_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/galdyn/internal/diffeq"
)

type linearOscillator struct{}

func (linearOscillator) VectorField(t float64, y diffeq.State, _ any) (diffeq.State, error) {
	return diffeq.State{y[1], -y[0]}, nil
}

func (linearOscillator) Jacobian(t float64, y diffeq.State, _ any) (*mat.Dense, error) {
	return mat.NewDense(2, 2, []float64{0, 1, -1, 0}), nil
}

var _ = Describe("Sensitivity", func() {
	const T = 2.5
	cot := diffeq.State{0.3, -1.2}
	c, s := math.Cos(T), math.Sin(T)
	want := []float64{c*cot[0] - s*cot[1], s*cot[0] + c*cot[1]}

	DescribeTable("matches the analytic state transition matrix",
		func(term diffeq.Term, adj diffeq.Adjoint) {
			opts := diffeq.DefaultOptions()
			opts.Adjoint = adj
			opts.Controller = diffeq.NewPIDController(1e-9, 1e-9)
			got, err := diffeq.Sensitivity(context.Background(), term, diffeq.Dopri5{}, 0, T, 0.01,
				diffeq.State{1, 0.5}, cot, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(2))
			for i := range want {
				Expect(got[i]).To(BeNumerically("~", want[i], 1e-5))
			}
		},
		Entry("direct, exact jacobian", linearOscillator{}, diffeq.DirectAdjoint{}),
		Entry("checkpoint, exact jacobian", linearOscillator{}, diffeq.CheckpointAdjoint{}),
		Entry("direct, finite differences", oscillator, diffeq.DirectAdjoint{}),
		Entry("checkpoint, finite differences", oscillator, diffeq.CheckpointAdjoint{}),
	)

	It("holds Args fixed", func() {
		// y' = -k y with k from Args: dy(T)/dy0 = exp(-k T) and nothing for k.
		term := diffeq.TermFunc(func(t float64, y diffeq.State, args any) (diffeq.State, error) {
			return diffeq.State{-args.(float64) * y[0]}, nil
		})
		for _, adj := range []diffeq.Adjoint{diffeq.DirectAdjoint{}, diffeq.CheckpointAdjoint{}} {
			opts := diffeq.DefaultOptions()
			opts.Adjoint = adj
			opts.Args = 0.7
			opts.Controller = diffeq.NewPIDController(1e-9, 1e-9)
			got, err := diffeq.Sensitivity(context.Background(), term, diffeq.Dopri5{}, 0, 2, 0.01,
				diffeq.State{3}, diffeq.State{1}, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(1))
			Expect(got[0]).To(BeNumerically("~", math.Exp(-1.4), 1e-6))
		}
	})

	It("differentiates a nonlinear decay", func() {
		// y' = -y², y(T) = y0 / (1 + y0 T), dy(T)/dy0 = 1 / (1 + y0 T)².
		term := diffeq.TermFunc(func(t float64, y diffeq.State, _ any) (diffeq.State, error) {
			return diffeq.State{-y[0] * y[0]}, nil
		})
		y0 := 2.0
		for _, adj := range []diffeq.Adjoint{diffeq.DirectAdjoint{}, diffeq.CheckpointAdjoint{}} {
			opts := diffeq.DefaultOptions()
			opts.Adjoint = adj
			got, err := diffeq.Sensitivity(context.Background(), term, diffeq.Dopri5{}, 0, 1, 0.01,
				diffeq.State{y0}, diffeq.State{1}, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(got[0]).To(BeNumerically("~", 1/math.Pow(1+y0, 2), 1e-5))
		}
	})

	It("rejects a cotangent of the wrong size", func() {
		_, err := diffeq.Sensitivity(context.Background(), oscillator, diffeq.Dopri5{}, 0, 1, 0.01,
			diffeq.State{1, 0}, diffeq.State{1}, diffeq.DefaultOptions())
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Jacobian", func() {
	It("falls back to finite differences", func() {
		j, err := diffeq.Jacobian(oscillator, 0, diffeq.State{0.2, 0.7}, nil)
		Expect(err).NotTo(HaveOccurred())
		want := mat.NewDense(2, 2, []float64{0, 1, -1, 0})
		Expect(mat.EqualApprox(j, want, 1e-8)).To(BeTrue())
	})
})

package diffeq_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/galdyn/internal/diffeq"
)

var decay = diffeq.TermFunc(func(t float64, y diffeq.State, _ any) (diffeq.State, error) {
	return diffeq.State{-y[0]}, nil
})

// oscillator is x'' = -x laid out as [x, v].
var oscillator = diffeq.TermFunc(func(t float64, y diffeq.State, _ any) (diffeq.State, error) {
	return diffeq.State{y[1], -y[0]}, nil
})

func energy(y diffeq.State) float64 { return 0.5 * (y[0]*y[0] + y[1]*y[1]) }

var _ = Describe("Solve", func() {
	var (
		ctx  context.Context
		opts diffeq.Options
	)

	BeforeEach(func() {
		ctx = context.Background()
		opts = diffeq.DefaultOptions()
	})

	It("publishes its defaults", func() {
		Expect(opts.MaxSteps).To(Equal(diffeq.DefaultMaxSteps))
		Expect(opts.Throw).To(BeTrue())
		Expect(opts.SaveAt).To(Equal(diffeq.SaveAt{T1: true}))
		Expect(opts.Adjoint).To(Equal(diffeq.CheckpointAdjoint{}))
		Expect(opts.Event).To(BeNil())
		Expect(opts.Controller).To(BeAssignableToTypeOf(&diffeq.PIDController{}))
	})

	It("saves exponential decay at requested times", func() {
		opts.Controller = diffeq.NewPIDController(1e-5, 1e-5)
		opts.SaveAt = diffeq.SaveAt{Ts: []float64{0, 1, 2, 3}}
		sol, err := diffeq.Solve(ctx, decay, diffeq.Dopri5{}, 0, 3, 0.1, diffeq.State{1}, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Result).To(Equal(diffeq.Successful))
		Expect(sol.Ts).To(Equal([]float64{0, 1, 2, 3}))
		for i, tm := range sol.Ts {
			Expect(sol.Ys[i][0]).To(BeNumerically("~", math.Exp(-tm), 1e-4))
		}
		Expect(sol.Stats.NumAccepted).To(BeNumerically(">", 0))
		Expect(sol.Stats.NumEvals).To(BeNumerically(">=", 6*sol.Stats.NumSteps))
	})

	It("chooses its own first step", func() {
		sol, err := diffeq.Solve(ctx, decay, diffeq.Dopri5{}, 0, 1, 0, diffeq.State{1}, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Ts).To(Equal([]float64{1}))
		Expect(sol.Last()[0]).To(BeNumerically("~", math.Exp(-1), 1e-6))
	})

	It("integrates backward in time", func() {
		opts.SaveAt = diffeq.SaveAt{T0: true, T1: true}
		sol, err := diffeq.Solve(ctx, decay, diffeq.Dopri5{}, 2, 0, 0.1, diffeq.State{math.Exp(-2)}, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Ts).To(Equal([]float64{2, 0}))
		Expect(sol.Last()[0]).To(BeNumerically("~", 1, 1e-6))
	})

	It("records t0 once when Ts repeats it", func() {
		opts.SaveAt = diffeq.SaveAt{T0: true, Ts: []float64{0, 0.5, 1}}
		sol, err := diffeq.Solve(ctx, decay, diffeq.Dopri5{}, 0, 1, 0.1, diffeq.State{1}, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Ts).To(Equal([]float64{0, 0.5, 1}))
		Expect(sol.Ys).To(HaveLen(3))
		Expect(sol.Ys[0][0]).To(Equal(1.0))
	})

	DescribeTable("conserves the oscillator energy",
		func(solver diffeq.Solver, ctrl diffeq.StepSizeController, tol float64) {
			opts.Controller = ctrl
			opts.MaxSteps = 0
			y0 := diffeq.State{1, 0}
			sol, err := diffeq.Solve(ctx, oscillator, solver, 0, 100, 0.01, y0, opts)
			Expect(err).NotTo(HaveOccurred())
			drift := math.Abs(energy(sol.Last())-energy(y0)) / energy(y0)
			Expect(drift).To(BeNumerically("<", tol))
		},
		Entry("dopri5", diffeq.Dopri5{}, diffeq.NewPIDController(1e-9, 1e-9), 1e-6),
		Entry("rk4", diffeq.RK4{}, diffeq.ConstantStepSize{}, 1e-6),
		Entry("leapfrog", diffeq.Leapfrog{}, diffeq.ConstantStepSize{}, 1e-4),
	)

	It("reports running out of steps", func() {
		opts.MaxSteps = 3
		opts.Controller = diffeq.ConstantStepSize{}
		_, err := diffeq.Solve(ctx, decay, diffeq.RK4{}, 0, 1, 0.01, diffeq.State{1}, opts)
		Expect(err).To(MatchError(diffeq.ErrMaxStepsReached))
		var ie *diffeq.IntegrationError
		Expect(errors.As(err, &ie)).To(BeTrue())
		Expect(ie.Step).To(Equal(3))
		Expect(ie.Result).To(Equal(diffeq.MaxStepsReached))

		opts.Throw = false
		sol, err := diffeq.Solve(ctx, decay, diffeq.RK4{}, 0, 1, 0.01, diffeq.State{1}, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Result).To(Equal(diffeq.MaxStepsReached))
		Expect(sol.Result.Failed()).To(BeTrue())
		Expect(sol.Ts[0]).To(BeNumerically("~", 0.03, 1e-12))
	})

	It("flags a blow-up", func() {
		blowUp := diffeq.TermFunc(func(t float64, y diffeq.State, _ any) (diffeq.State, error) {
			return diffeq.State{y[0] * y[0]}, nil
		})
		opts.Throw = false
		sol, err := diffeq.Solve(ctx, blowUp, diffeq.Dopri5{}, 0, 2, 0.01, diffeq.State{1}, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Result).To(BeElementOf(diffeq.MaxStepsReached, diffeq.StepSizeTooSmall, diffeq.NonFinite))
		Expect(sol.Last()[0]).To(BeNumerically(">", 100))
	})

	It("rejects an adaptive controller without an error estimate", func() {
		_, err := diffeq.Solve(ctx, decay, diffeq.RK4{}, 0, 1, 0.1, diffeq.State{1}, opts)
		Expect(err).To(MatchError(diffeq.ErrNoErrorEstimate))
	})

	It("needs dt0 for constant steps", func() {
		opts.Controller = diffeq.ConstantStepSize{}
		_, err := diffeq.Solve(ctx, decay, diffeq.RK4{}, 0, 1, 0, diffeq.State{1}, opts)
		Expect(err).To(MatchError(diffeq.ErrBadStep))
	})

	It("validates save times", func() {
		opts.SaveAt = diffeq.SaveAt{Ts: []float64{0.5, 0.2}}
		_, err := diffeq.Solve(ctx, decay, diffeq.Dopri5{}, 0, 1, 0.1, diffeq.State{1}, opts)
		Expect(err).To(MatchError(diffeq.ErrBadSaveAt))

		opts.SaveAt = diffeq.SaveAt{Ts: []float64{2}}
		_, err = diffeq.Solve(ctx, decay, diffeq.Dopri5{}, 0, 1, 0.1, diffeq.State{1}, opts)
		Expect(err).To(MatchError(diffeq.ErrBadSaveAt))
	})

	It("stops on an event", func() {
		opts.Event = &diffeq.Event{Cond: func(t float64, y diffeq.State, _ any) bool { return y[0] < 0 }}
		sol, err := diffeq.Solve(ctx, oscillator, diffeq.Dopri5{}, 0, 10, 0.01, diffeq.State{1, 0}, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Result).To(Equal(diffeq.EventOccurred))
		Expect(sol.Ts[0]).To(BeNumerically(">", math.Pi/2))
		Expect(sol.Ts[0]).To(BeNumerically("<", 3))
	})

	It("stops when the context is canceled", func() {
		c, cancel := context.WithCancel(ctx)
		cancel()
		sol, err := diffeq.Solve(c, decay, diffeq.Dopri5{}, 0, 1, 0.1, diffeq.State{1}, opts)
		Expect(err).To(MatchError(context.Canceled))
		Expect(sol.Result).To(Equal(diffeq.Canceled))
	})

	It("records every step", func() {
		opts.Controller = diffeq.ConstantStepSize{}
		opts.SaveAt = diffeq.SaveAt{Steps: true, T1: true}
		sol, err := diffeq.Solve(ctx, decay, diffeq.RK4{}, 0, 1, 0.25, diffeq.State{1}, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Ts).To(Equal([]float64{0, 0.25, 0.5, 0.75, 1}))
	})

	It("warm starts from a previous solution", func() {
		opts.Controller = diffeq.NewPIDController(1e-9, 1e-9)
		whole, err := diffeq.Solve(ctx, oscillator, diffeq.Dopri5{}, 0, 4, 0.1, diffeq.State{1, 0}, opts)
		Expect(err).NotTo(HaveOccurred())

		first, err := diffeq.Solve(ctx, oscillator, diffeq.Dopri5{}, 0, 2, 0.1, diffeq.State{1, 0}, opts)
		Expect(err).NotTo(HaveOccurred())
		opts.SolverState = first.SolverState
		opts.ControllerState = first.ControllerState
		second, err := diffeq.Solve(ctx, oscillator, diffeq.Dopri5{}, 2, 4, 0, first.Last(), opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Stats.NumEvals).To(Equal(6 * second.Stats.NumSteps))
		for i := range whole.Last() {
			Expect(second.Last()[i]).To(BeNumerically("~", whole.Last()[i], 1e-7))
		}
	})
})

var _ = Describe("DenseInterpolation", func() {
	DescribeTable("reproduces the saved states",
		func(solver diffeq.Solver, ctrl diffeq.StepSizeController, tol float64) {
			opts := diffeq.DefaultOptions()
			opts.Controller = ctrl
			opts.SaveAt = diffeq.SaveAt{Ts: []float64{0, 0.3, 1.7, 2.2, 5}, Dense: true}
			sol, err := diffeq.Solve(context.Background(), oscillator, solver, 0, 5, 0.05, diffeq.State{1, 0}, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Interpolation.Len()).To(BeNumerically(">", 1))
			for i, tm := range sol.Ts {
				got := sol.Interpolation.Evaluate(tm)
				Expect(got[0]).To(BeNumerically("~", sol.Ys[i][0], 1e-12))
				Expect(got[0]).To(BeNumerically("~", math.Cos(tm), tol))
				Expect(got[1]).To(BeNumerically("~", -math.Sin(tm), tol))
			}
			mid := sol.Interpolation.Evaluate(1.234)
			Expect(mid[0]).To(BeNumerically("~", math.Cos(1.234), tol))
		},
		Entry("dopri5", diffeq.Dopri5{}, diffeq.NewPIDController(1e-8, 1e-8), 1e-6),
		Entry("rk4", diffeq.RK4{}, diffeq.ConstantStepSize{}, 1e-5),
	)

	It("runs backward", func() {
		opts := diffeq.DefaultOptions()
		opts.SaveAt = diffeq.SaveAt{Dense: true}
		sol, err := diffeq.Solve(context.Background(), decay, diffeq.Dopri5{}, 1, 0, 0.1, diffeq.State{math.Exp(-1)}, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Ts).To(BeEmpty())
		Expect(sol.Interpolation.Evaluate(0.4)[0]).To(BeNumerically("~", math.Exp(-0.4), 1e-6))
	})
})

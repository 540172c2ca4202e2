package integrate_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/galdyn/internal/coords"
	"github.com/san-kum/galdyn/internal/diffeq"
	"github.com/san-kum/galdyn/internal/fields"
	"github.com/san-kum/galdyn/internal/integrate"
	"github.com/san-kum/galdyn/internal/params"
	"github.com/san-kum/galdyn/internal/potential"
	"github.com/san-kum/galdyn/internal/units"
)

func kepler() *fields.HamiltonianField {
	p, err := potential.NewKepler(units.Galactic, params.MustConstant(units.Scalar(1e12, units.Msun), "mass"))
	Expect(err).NotTo(HaveOccurred())
	return fields.NewHamiltonianField(p)
}

func linspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = a + (b-a)*float64(i)/float64(n-1)
	}
	return out
}

var _ = Describe("DiffEqSolver", func() {
	It("copies the diffeq defaults", func() {
		Expect(integrate.Defaults.MaxSteps).To(Equal(diffeq.DefaultMaxSteps))
		Expect(integrate.Defaults.Throw).To(Equal(diffeq.DefaultThrow))
		Expect(integrate.Defaults.SaveAt).To(Equal(diffeq.DefaultSaveAt()))
		Expect(integrate.Defaults.Adjoint).To(Equal(diffeq.DefaultAdjoint()))
		Expect(integrate.Defaults.Event).To(BeNil())

		s := integrate.NewDiffEqSolver(diffeq.Dopri5{})
		Expect(s.Controller).To(BeIdenticalTo(integrate.Defaults.StepSizeController))
	})

	It("forwards to the solver", func() {
		s := &integrate.DiffEqSolver{Solver: diffeq.Dopri5{}, Controller: diffeq.NewPIDController(1e-5, 1e-5)}
		term := diffeq.TermFunc(func(t float64, y diffeq.State, _ any) (diffeq.State, error) {
			return diffeq.State{-y[0]}, nil
		})
		sol, err := s.Solve(context.Background(), term, 0, 3, 0.1, diffeq.State{1},
			integrate.WithSaveAt(diffeq.SaveAt{Ts: []float64{0, 1, 2, 3}}))
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Ts).To(Equal([]float64{0, 1, 2, 3}))
		Expect(sol.Ys[1][0]).To(BeNumerically("~", 0.36788, 1e-4))
		Expect(sol.Ys[3][0]).To(BeNumerically("~", 0.04979, 1e-4))
	})

	It("honors throw and max steps", func() {
		s := integrate.NewDiffEqSolver(diffeq.Dopri5{})
		term := diffeq.TermFunc(func(t float64, y diffeq.State, _ any) (diffeq.State, error) {
			return diffeq.State{math.Cos(t)}, nil
		})
		_, err := s.Solve(context.Background(), term, 0, 100, 0.01, diffeq.State{0}, integrate.WithMaxSteps(2))
		Expect(err).To(MatchError(diffeq.ErrMaxStepsReached))

		sol, err := s.Solve(context.Background(), term, 0, 100, 0.01, diffeq.State{0},
			integrate.WithMaxSteps(2), integrate.WithThrow(false))
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Result).To(Equal(diffeq.MaxStepsReached))
	})

	It("resumes from a warm start", func() {
		s := integrate.NewDiffEqSolver(diffeq.Dopri5{})
		f := kepler()
		y0 := diffeq.State{10, 0, 0, 0, 0.5, 0}
		first, err := s.Solve(context.Background(), f, 0, 50, 0, y0)
		Expect(err).NotTo(HaveOccurred())
		second, err := s.Solve(context.Background(), f, 50, 100, 0, first.Last(), integrate.WithWarmStart(first))
		Expect(err).NotTo(HaveOccurred())
		whole, err := s.Solve(context.Background(), f, 0, 100, 0, y0)
		Expect(err).NotTo(HaveOccurred())
		for i := range y0 {
			Expect(second.Last()[i]).To(BeNumerically("~", whole.Last()[i], 1e-5))
		}
	})
})

var _ = Describe("Integrator", func() {
	var (
		ctx context.Context
		f   *fields.HamiltonianField
		w0  *coords.PhaseSpacePosition
		in  *integrate.Integrator
	)

	BeforeEach(func() {
		ctx = context.Background()
		f = kepler()
		var err error
		w0, err = coords.NewPhaseSpacePosition(
			units.MustNew([]float64{10, 0, 0, 0, 8, 0}, []int{2, 3}, units.Kpc),
			units.MustNew([]float64{0, 550, 0, -650, 0, 100}, []int{2, 3}, units.KmPerS),
			nil)
		Expect(err).NotTo(HaveOccurred())
		in = integrate.NewIntegrator()
		in.Workers = 2
	})

	It("returns the final state with the batch shape", func() {
		orbit, err := in.Run(ctx, f, w0, units.Scalar(0, units.Gyr), units.Scalar(0.5, units.Gyr))
		Expect(err).NotTo(HaveOccurred())
		Expect(orbit.Q.Shape).To(Equal([]int{2, 3}))
		Expect(orbit.P.Unit.String()).To(Equal("kpc / Myr"))
		Expect(orbit.T.Value[0]).To(BeNumerically("~", 500, 1e-9))
		Expect(orbit.Failed()).To(BeFalse())
		Expect(orbit.Interpolant).To(BeNil())
	})

	It("conserves energy and angular momentum", func() {
		in.Solver.Controller = diffeq.NewPIDController(1e-10, 1e-10)
		in.Options = []integrate.Option{integrate.WithMaxSteps(0)}
		ts := units.MustNew(linspace(0, 1000, 21), []int{21}, units.Myr)
		orbit, err := in.Run(ctx, f, w0, units.Scalar(0, units.Myr), units.Scalar(1, units.Gyr), integrate.SaveTimes(ts))
		Expect(err).NotTo(HaveOccurred())
		Expect(orbit.Q.Shape).To(Equal([]int{2, 21, 3}))

		for i := 0; i < 2; i++ {
			var e0, l0 float64
			for j := 0; j < 21; j++ {
				k := (i*21 + j) * 3
				q, p := orbit.Q.Value[k:k+3], orbit.P.Value[k:k+3]
				e, err := f.Energy(ts.Value[j], diffeq.State{q[0], q[1], q[2], p[0], p[1], p[2]})
				Expect(err).NotTo(HaveOccurred())
				lz := q[0]*p[1] - q[1]*p[0]
				if j == 0 {
					e0, l0 = e, lz
					continue
				}
				Expect(e).To(BeNumerically("~", e0, 1e-5*math.Abs(e0)))
				Expect(lz).To(BeNumerically("~", l0, 1e-5*math.Abs(l0)))
			}
		}
	})

	It("closes a circular orbit after one period", func() {
		g, err := units.GIn(units.Galactic)
		Expect(err).NotTo(HaveOccurred())
		vc := math.Sqrt(g * 1e12 / 10)
		period := 2 * math.Pi * 10 / vc

		w, err := coords.NewPhaseSpacePosition(units.Vector(units.Kpc, 10, 0, 0),
			units.Vector(units.MustParse("kpc / Myr"), 0, vc, 0), nil)
		Expect(err).NotTo(HaveOccurred())
		orbit, err := in.Run(ctx, f, w, units.Scalar(0, units.Myr), units.Scalar(period, units.Myr))
		Expect(err).NotTo(HaveOccurred())
		Expect(orbit.Q.Value[0]).To(BeNumerically("~", 10, 1e-4))
		Expect(orbit.Q.Value[1]).To(BeNumerically("~", 0, 1e-4))
		Expect(orbit.P.Value[1]).To(BeNumerically("~", vc, 1e-5))
	})

	Describe("Interpolant", func() {
		var (
			orbit *integrate.Orbit
			ts    units.Quantity
		)

		BeforeEach(func() {
			ts = units.MustNew(linspace(0, 1, 11), []int{11}, units.Gyr)
			var err error
			orbit, err = in.Run(ctx, f, w0, units.Scalar(0, units.Gyr), units.Scalar(1, units.Gyr),
				integrate.SaveTimes(ts), integrate.Interpolated())
			Expect(err).NotTo(HaveOccurred())
			Expect(orbit.Interpolant).NotTo(BeNil())
		})

		It("reproduces the saved states", func() {
			w, err := orbit.Interpolant.Evaluate(ts)
			Expect(err).NotTo(HaveOccurred())
			Expect(w.Q.Shape).To(Equal([]int{2, 11, 3}))
			Expect(w.T.Unit.String()).To(Equal("Gyr"))
			for i := range orbit.Q.Value {
				Expect(w.Q.Value[i]).To(BeNumerically("~", orbit.Q.Value[i], 1e-7))
				Expect(w.P.Value[i]).To(BeNumerically("~", orbit.P.Value[i], 1e-7))
			}
		})

		It("drops the time axis for a scalar query", func() {
			w, err := orbit.Interpolant.Evaluate(units.Scalar(300, units.Myr))
			Expect(err).NotTo(HaveOccurred())
			Expect(w.Q.Shape).To(Equal([]int{2, 3}))
			Expect(w.BatchShape()).To(Equal(w0.BatchShape()))
			for i := 0; i < 3; i++ {
				Expect(w.Q.Value[i]).To(BeNumerically("~", orbit.Q.Value[3*3+i], 1e-7))
			}
		})

		It("strips the query to the integrator's time unit", func() {
			a, err := orbit.Interpolant.Evaluate(units.Scalar(0.45, units.Gyr))
			Expect(err).NotTo(HaveOccurred())
			b, err := orbit.Interpolant.Evaluate(units.Scalar(450, units.Myr))
			Expect(err).NotTo(HaveOccurred())
			for i := range a.Q.Value {
				Expect(a.Q.Value[i]).To(BeNumerically("~", b.Q.Value[i], 1e-9))
			}

			_, err = orbit.Interpolant.Evaluate(units.Scalar(1, units.Kpc))
			Expect(err).To(MatchError(units.ErrDimensionMismatch))
		})

		It("exposes the dense output per orbit", func() {
			d := orbit.Interpolant.Orbit(1)
			Expect(d).NotTo(BeNil())
			y := d.Evaluate(1000)
			for i := 0; i < 3; i++ {
				Expect(y[i]).To(BeNumerically("~", orbit.Q.Value[(11+10)*3+i], 1e-7))
			}
			Expect(orbit.Interpolant.Orbit(2)).To(BeNil())
		})
	})

	It("marks orbits that ran out of steps", func() {
		in.Options = []integrate.Option{integrate.WithMaxSteps(3), integrate.WithThrow(false)}
		ts := units.MustNew(linspace(0, 1000, 5), []int{5}, units.Myr)
		orbit, err := in.Run(ctx, f, w0, units.Scalar(0, units.Myr), units.Scalar(1000, units.Myr), integrate.SaveTimes(ts))
		Expect(err).NotTo(HaveOccurred())
		Expect(orbit.Failed()).To(BeTrue())
		Expect(orbit.Results[0]).To(Equal(diffeq.MaxStepsReached))
		Expect(orbit.Q.Value[0]).To(Equal(10.0))
		Expect(math.IsNaN(orbit.Q.Value[len(orbit.Q.Value)-1])).To(BeTrue())

		in.Options = []integrate.Option{integrate.WithMaxSteps(3)}
		_, err = in.Run(ctx, f, w0, units.Scalar(0, units.Myr), units.Scalar(1000, units.Myr))
		Expect(err).To(MatchError(diffeq.ErrMaxStepsReached))
	})

	It("keeps the state an event stopped at", func() {
		below := &diffeq.Event{Cond: func(t float64, y diffeq.State, _ any) bool { return y[1] < 0 }}
		in.Options = []integrate.Option{integrate.WithEvent(below)}
		orbit, err := in.Run(ctx, f, w0, units.Scalar(0, units.Myr), units.Scalar(1000, units.Myr))
		Expect(err).NotTo(HaveOccurred())
		Expect(orbit.Results).To(Equal([]diffeq.Result{diffeq.EventOccurred, diffeq.Successful}))
		Expect(orbit.Failed()).To(BeFalse())

		Expect(orbit.T.Shape).To(Equal([]int{2}))
		Expect(orbit.T.Value[0]).To(BeNumerically(">", 0))
		Expect(orbit.T.Value[0]).To(BeNumerically("<", 1000))
		Expect(orbit.T.Value[1]).To(BeNumerically("~", 1000, 1e-9))
		for _, v := range orbit.Q.Value {
			Expect(math.IsNaN(v)).To(BeFalse())
		}
		Expect(orbit.Q.Value[1]).To(BeNumerically("<", 0))

		// The kept state lies on the orbit's energy surface.
		q, p := orbit.Q.Value[:3], orbit.P.Value[:3]
		e, err := f.Energy(orbit.T.Value[0], diffeq.State{q[0], q[1], q[2], p[0], p[1], p[2]})
		Expect(err).NotTo(HaveOccurred())
		q0, p0, err := w0.ValuesIn(units.Galactic)
		Expect(err).NotTo(HaveOccurred())
		e0, err := f.Energy(0, diffeq.State{q0[0], q0[1], q0[2], p0[0], p0[1], p0[2]})
		Expect(err).NotTo(HaveOccurred())
		Expect(e).To(BeNumerically("~", e0, 1e-4*math.Abs(e0)))
	})

	It("drops the time axis for a scalar save time", func() {
		orbit, err := in.Run(ctx, f, w0, units.Scalar(0, units.Myr), units.Scalar(1000, units.Myr),
			integrate.SaveTimes(units.Scalar(300, units.Myr)), integrate.Interpolated())
		Expect(err).NotTo(HaveOccurred())
		Expect(orbit.Q.Shape).To(Equal([]int{2, 3}))
		Expect(orbit.P.Shape).To(Equal([]int{2, 3}))

		w, err := orbit.Interpolant.Evaluate(units.Scalar(300, units.Myr))
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Q.Shape).To(Equal(orbit.Q.Shape))
		for i := range w.Q.Value {
			Expect(w.Q.Value[i]).To(BeNumerically("~", orbit.Q.Value[i], 1e-7))
		}
	})

	It("rejects a start time that is not a time", func() {
		_, err := in.Run(ctx, f, w0, units.Scalar(0, units.Kpc), units.Scalar(1, units.Gyr))
		Expect(err).To(MatchError(units.ErrDimensionMismatch))
	})
})

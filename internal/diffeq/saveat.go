package diffeq

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// SaveAt selects what a solve records. Ts must lie in [t0, t1] and be
// ordered in the direction of integration.
type SaveAt struct {
	T0    bool
	T1    bool
	Ts    []float64
	Steps bool
	Dense bool
}

func (s SaveAt) validate(t0, t1 float64) error {
	dir := math.Copysign(1, t1-t0)
	prev := t0
	for i, t := range s.Ts {
		if dir*(t-t0) < 0 || dir*(t-t1) > 0 {
			return fmt.Errorf("%w: ts[%d]=%g outside [%g, %g]", ErrBadSaveAt, i, t, t0, t1)
		}
		if dir*(t-prev) < 0 {
			return fmt.Errorf("%w: ts[%d]=%g out of order", ErrBadSaveAt, i, t)
		}
		prev = t
	}
	return nil
}

// Event stops a solve at the end of the first accepted step where Cond
// returns true.
type Event struct {
	Cond func(t float64, y State, args any) bool
}

// ProgressMeter is told how far a solve has got, as a fraction in [0, 1].
type ProgressMeter interface {
	Start()
	Update(frac float64)
	Close()
}

// NoProgressMeter reports nothing.
type NoProgressMeter struct{}

func (NoProgressMeter) Start()         {}
func (NoProgressMeter) Update(float64) {}
func (NoProgressMeter) Close()         {}

// LogProgressMeter logs progress every Every (a fraction, default 0.1).
type LogProgressMeter struct {
	Log   logrus.FieldLogger
	Every float64
	next  float64
}

func (m *LogProgressMeter) Start() {
	if m.Log == nil {
		m.Log = logrus.StandardLogger()
	}
	if m.Every <= 0 {
		m.Every = 0.1
	}
	m.next = m.Every
}

func (m *LogProgressMeter) Update(frac float64) {
	if frac < m.next {
		return
	}
	m.Log.WithField("progress", fmt.Sprintf("%.0f%%", 100*frac)).Info("integrating")
	for m.next <= frac {
		m.next += m.Every
	}
}

func (m *LogProgressMeter) Close() {
	m.Log.WithField("progress", "100%").Debug("integration finished")
}

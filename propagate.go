package perturb

import (
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	kitlog "github.com/go-kit/log"

	"github.com/orbforge/perturb/integrator"
)

// StepSize is the default step size of propagation.
const StepSize = 10 * time.Second

/* Handles the propagation of a perturbed Cartesian state. */

// Propagation integrates a Cartesian state under the two-body pull of its
// origin body plus the configured perturbations. Position providers of the
// perturbations must be bound to the propagation start as their epoch,
// since the integration clock hands them elapsed seconds.
type Propagation struct {
	Name                       string
	R, V                       []float64 // Position (km) and velocity (km/s), updated in place
	Origin                     Body
	StartDT, StopDT, CurrentDT time.Time
	perts                      Perturbations
	step                       time.Duration
	logger                     kitlog.Logger
	stopChan                   chan bool
	histChan                   chan<- State
	wg                         sync.WaitGroup
	done, collided             bool
}

// NewPropagation is the same as NewPrecisePropagation with the default step size.
func NewPropagation(name string, R, V []float64, origin Body, start, end time.Time, perts Perturbations, conf ExportConfig) *Propagation {
	return NewPrecisePropagation(name, R, V, origin, start, end, perts, StepSize, conf)
}

// NewPrecisePropagation returns a new Propagation instance with a custom
// provided time step. An end date at or before the start stops immediately.
func NewPrecisePropagation(name string, R, V []float64, origin Body, start, end time.Time, perts Perturbations, step time.Duration, conf ExportConfig) *Propagation {
	// Must switch to UTC as all ephemeris data is in UTC.
	if start.Location() != time.UTC {
		start = start.UTC()
	}
	if end.Location() != time.UTC {
		end = end.UTC()
	}
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	logger = kitlog.With(logger, "prop", name)

	p := &Propagation{Name: name,
		R: append([]float64(nil), R...), V: append([]float64(nil), V...),
		Origin: origin, StartDT: start, StopDT: end, CurrentDT: start,
		perts: perts, step: step, logger: logger, stopChan: make(chan bool, 1)}

	// If no output is configured, then nothing will be written.
	if !conf.IsUseless() {
		histChan := make(chan State, 1000) // a 1k entry buffer
		p.histChan = histChan
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			StreamStates(conf, histChan)
		}()
		// Write the first data point.
		histChan <- State{start, 0, append([]float64(nil), R...), append([]float64(nil), V...)}
	}

	if !end.After(start) {
		p.logger.Log("level", "warning", "subsys", "astro", "message", "end date before start, nothing to propagate")
	}
	return p
}

// LogStatus logs the current state of the propagation.
func (p *Propagation) LogStatus() {
	p.logger.Log("level", "info", "subsys", "astro", "date", p.CurrentDT, "r(km)", Norm(p.R), "v(km/s)", Norm(p.V))
}

// Propagate starts the propagation. Blocking until the end date is reached
// or StopPropagation is called.
func (p *Propagation) Propagate() {
	p.LogStatus()
	integrator.NewRK4(0, p.step.Seconds(), p).Solve() // Blocking.
	p.done = true
	duration := p.CurrentDT.Sub(p.StartDT)
	durStr := duration.String()
	if duration.Hours() > 24 {
		durStr += fmt.Sprintf(" (~%.3fd)", duration.Hours()/24)
	}
	p.logger.Log("level", "notice", "subsys", "astro", "status", "finished", "duration", durStr)
	p.LogStatus()
	p.wg.Wait() // Don't return until we're done writing all the files.
}

// PropagateUntil propagates until the given time is reached.
func (p *Propagation) PropagateUntil(dt time.Time) {
	p.StopDT = dt.UTC()
	p.Propagate()
}

// StopPropagation is used to stop the propagation before it is completed.
func (p *Propagation) StopPropagation() {
	p.stopChan <- true
}

// Stop implements the stop call of the integrator.
// To stop the propagation early, call StopPropagation().
func (p *Propagation) Stop(t float64) bool {
	select {
	case <-p.stopChan:
		// There is a request to stop.
	default:
		if p.StartDT.Add(time.Duration(t * float64(time.Second))).Before(p.StopDT) {
			return false
		}
		// We've reached the end of the simulation.
	}
	if p.histChan != nil {
		close(p.histChan)
	}
	return true
}

// GetState implements the state call of the integrator: R and V as a six-state.
func (p *Propagation) GetState() []float64 {
	s := make([]float64, 6)
	copy(s[:3], p.R)
	copy(s[3:], p.V)
	return s
}

// SetState implements the state update call of the integrator.
func (p *Propagation) SetState(t float64, s []float64) {
	p.CurrentDT = p.StartDT.Add(time.Duration(t * float64(time.Second)))
	copy(p.R, s[:3])
	copy(p.V, s[3:6])
	if p.histChan != nil {
		p.histChan <- State{p.CurrentDT, t, append([]float64(nil), p.R...), append([]float64(nil), p.V...)}
	}

	// Orbit sanity check and warning.
	if rNorm := Norm(p.R); !p.collided && rNorm < p.Origin.Radius {
		p.collided = true
		p.logger.Log("level", "critical", "subsys", "astro", "collided", p.Origin.Name, "dt", p.CurrentDT, "r", rNorm, "radius", p.Origin.Radius)
	} else if p.collided && rNorm > p.Origin.Radius*1.1 {
		// Now further than the 10% dead zone.
		p.collided = false
		p.logger.Log("level", "critical", "subsys", "astro", "revived", p.Origin.Name, "dt", p.CurrentDT)
	}
}

// Func implements the derivative call of the integrator: the Cartesian
// two-body acceleration of the origin body plus all perturbations. A NaN
// state panics with a dump, as that is always a geometry or unit error of
// the scenario rather than something to integrate through.
func (p *Propagation) Func(t float64, f []float64) []float64 {
	fDot := make([]float64, 6) // init return vector
	bodyAcc := -p.Origin.GM() / math.Pow(Norm(f[:3]), 3)
	// d\vec{R}/dt
	fDot[0] = f[3]
	fDot[1] = f[4]
	fDot[2] = f[5]
	// d\vec{V}/dt
	fDot[3] = bodyAcc * f[0]
	fDot[4] = bodyAcc * f[1]
	fDot[5] = bodyAcc * f[2]

	pert := p.perts.Accel(t, f, p.Origin)
	for i := 0; i < 3; i++ {
		fDot[i+3] += pert[i]
	}
	for i := 0; i < 6; i++ {
		if math.IsNaN(fDot[i]) {
			panic(fmt.Errorf("fDot[%d]=NaN @ dt=%s\nR=%+v\tV=%+v", i, p.CurrentDT, f[:3], f[3:6]))
		}
	}
	return fDot
}

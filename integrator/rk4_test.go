package integrator

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func assertPanic(t *testing.T, f func()) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("code did not panic")
		}
	}()
	f()
}

// balbasi1D is the radiative cooling problem used to vet the integrator:
// dθ/dt = -2.2067e-12 (θ⁴ - 81e8) with θ(0) = 1200 K, whose solution at
// t=480 s is 647.57 K.
type balbasi1D struct {
	state []float64
}

func (b *balbasi1D) GetState() []float64 {
	return b.state
}

func (b *balbasi1D) SetState(t float64, s []float64) {
	b.state = s
}

func (b *balbasi1D) Stop(t float64) bool {
	return t >= 480
}

func (b *balbasi1D) Func(t float64, s []float64) []float64 {
	return []float64{-2.2067e-12 * (math.Pow(s[0], 4) - 81e8)}
}

func TestRK4Balbasi(t *testing.T) {
	b := &balbasi1D{state: []float64{1200}}
	iterNum, xi := NewRK4(0, 30, b).Solve()
	if iterNum != 16 {
		t.Fatalf("expected 16 iterations, got %d", iterNum)
	}
	if xi != 480 {
		t.Fatalf("expected to stop at t=480, got %f", xi)
	}
	if !scalar.EqualWithinAbs(b.state[0], 647.57, 0.1) {
		t.Fatalf("θ(480) = %f K", b.state[0])
	}
}

func TestRK4StepSizeIndependence(t *testing.T) {
	coarse := &balbasi1D{state: []float64{1200}}
	NewRK4(0, 30, coarse).Solve()
	fine := &balbasi1D{state: []float64{1200}}
	NewRK4(0, 10, fine).Solve()
	if !scalar.EqualWithinAbs(coarse.state[0], fine.state[0], 0.5) {
		t.Fatalf("fourth order convergence fail: %f K vs %f K", coarse.state[0], fine.state[0])
	}
}

func TestRK4Panics(t *testing.T) {
	assertPanic(t, func() { NewRK4(0, 0, &balbasi1D{state: []float64{1200}}) })
	assertPanic(t, func() { NewRK4(0, -30, &balbasi1D{state: []float64{1200}}) })
	assertPanic(t, func() { NewRK4(0, 30, nil) })
}

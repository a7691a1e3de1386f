package perturb

import (
	"math"
	"testing"
	"time"
)

func TestSunProvider(t *testing.T) {
	epoch := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	sun := NewSunProvider(epoch)
	r0 := sun.PositionAt(0)
	dist := Norm(r0)
	if dist < 0.97*AU || dist > 1.03*AU {
		t.Fatalf("Earth-Sun distance of %f km", dist)
	}
	// About 0.9856 deg of apparent motion per day.
	r1 := sun.PositionAt(secsPerDay)
	chord := Norm([]float64{r1[0] - r0[0], r1[1] - r0[1], r1[2] - r0[2]})
	if chord < 2.0e6 || chord > 3.2e6 {
		t.Fatalf("the Sun moved %f km in a day", chord)
	}
}

func TestMoonProvider(t *testing.T) {
	epoch := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	moon := NewMoonProvider(epoch)
	r0 := moon.PositionAt(0)
	dist := Norm(r0)
	if dist < 356400 || dist > 406700 {
		t.Fatalf("Earth-Moon distance of %f km", dist)
	}
	// About 13 deg of orbital motion per day.
	r1 := moon.PositionAt(secsPerDay)
	chord := Norm([]float64{r1[0] - r0[0], r1[1] - r0[1], r1[2] - r0[2]})
	if chord < 6e4 || chord > 1.1e5 {
		t.Fatalf("the Moon moved %f km in a day", chord)
	}
	// The Moon stays within 5.3 deg of the ecliptic, so under ~29 deg of the
	// equator.
	if math.Abs(r0[2]) > dist*math.Sin(29*math.Pi/180) {
		t.Fatalf("z component of %f km", r0[2])
	}
}

func TestStaticProvider(t *testing.T) {
	fixed := Static([]float64{1, 2, 3})
	for _, t0 := range []float64{0, 3600, -secsPerDay} {
		if !vectorsEqual(fixed.PositionAt(t0), []float64{1, 2, 3}, 0) {
			t.Fatal("static provider moved")
		}
	}
}

func TestPlanetProviderPanics(t *testing.T) {
	// VSOP87 is disabled without a configuration.
	assertPanic(t, func() {
		NewPlanetProvider(Venus, time.Now())
	})
}

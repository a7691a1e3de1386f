package perturb

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestJ2Perturbation(t *testing.T) {
	state := []float64{7000, 0, 0, 0, 7.5460536, 0}
	zeroed := J2Perturbation(0, state, Earth.GM(), J2Params{J2: 0, R: Earth.Radius})
	if !vectorsEqual(zeroed, []float64{0, 0, 0}, 0) {
		t.Fatal("J2=0 must not perturb")
	}

	accel := J2Perturbation(0, state, Earth.GM(), J2Params{J2: Earth.J2, R: Earth.Radius})
	if accel[1] != 0 || accel[2] != 0 {
		t.Fatalf("equatorial J2 acceleration must be radial, got %+v", accel)
	}
	if !scalar.EqualWithinAbs(accel[0], -1.0967e-5, 1e-8) {
		t.Fatalf("unexpected equatorial J2 acceleration: %+v", accel)
	}

	// The equatorial bulge pushes a polar satellite away from the attractor.
	polar := J2Perturbation(0, []float64{0, 0, 7000, 7.5, 0, 0}, Earth.GM(), J2Params{J2: Earth.J2, R: Earth.Radius})
	if polar[2] <= 0 || polar[0] != 0 || polar[1] != 0 {
		t.Fatalf("unexpected polar J2 acceleration: %+v", polar)
	}
	for i := 0; i < 3; i++ {
		if math.IsNaN(accel[i]) || math.IsInf(accel[i], 0) {
			t.Fatalf("J2 acceleration not finite: %+v", accel)
		}
	}
}

func TestJ3Perturbation(t *testing.T) {
	state := []float64{7000, 0, 0, 0, 7.5460536, 0}
	zeroed := J3Perturbation(0, state, Earth.GM(), J3Params{J3: 0, R: Earth.Radius})
	if !vectorsEqual(zeroed, []float64{0, 0, 0}, 0) {
		t.Fatal("J3=0 must not perturb")
	}

	// In the equator plane the J3 asymmetry acts only out of plane.
	accel := J3Perturbation(0, state, Earth.GM(), J3Params{J3: Earth.J3, R: Earth.Radius})
	if accel[0] != 0 || accel[1] != 0 {
		t.Fatalf("equatorial J3 acceleration must be normal to the plane, got %+v", accel)
	}
	if !scalar.EqualWithinAbs(accel[2], -2.3375e-8, 1e-11) {
		t.Fatalf("unexpected equatorial J3 acceleration: %+v", accel)
	}
}

func TestAtmosphericDrag(t *testing.T) {
	p := DragParams{R: Earth.Radius, CD: 2.2, Area: 4e-6, Mass: 100, H0: EarthH0, Rho0: EarthRho0}
	still := AtmosphericDrag(0, []float64{Earth.Radius + 300, 0, 0, 0, 0, 0}, Earth.GM(), p)
	if !vectorsEqual(still, []float64{0, 0, 0}, 0) {
		t.Fatal("no drag without velocity")
	}

	accel := AtmosphericDrag(0, []float64{Earth.Radius + 300, 0, 0, 0, 7.7258, 0}, Earth.GM(), p)
	if accel[0] != 0 || accel[2] != 0 || accel[1] >= 0 {
		t.Fatalf("drag must oppose the velocity, got %+v", accel)
	}

	// At the attractor surface the density is exactly Rho0.
	sea := AtmosphericDrag(0, []float64{p.R, 0, 0, 0, 7.5, 0}, Earth.GM(), p)
	if !scalar.EqualWithinAbs(sea[1], -3031.875, 1e-9) {
		t.Fatalf("unexpected surface level drag: %+v", sea)
	}
}

func TestThirdBody(t *testing.T) {
	moonAt := Static([]float64{384400, 0, 0})
	p := ThirdBodyParams{GM: Moon.GM(), Body: moonAt}

	// The direct and indirect terms cancel exactly at the attractor center.
	center := ThirdBody(0, []float64{0, 0, 0, 0, 0, 0}, Earth.GM(), p)
	if !vectorsEqual(center, []float64{0, 0, 0}, 0) {
		t.Fatalf("net third body pull at the attractor center: %+v", center)
	}

	// The tidal acceleration stretches along the line of centers.
	near := ThirdBody(0, []float64{7000, 0, 0, 0, 7.5, 0}, Earth.GM(), p)
	far := ThirdBody(0, []float64{-7000, 0, 0, 0, -7.5, 0}, Earth.GM(), p)
	if near[0] <= 0 || far[0] >= 0 {
		t.Fatalf("near side %+v, far side %+v", near, far)
	}
	if !scalar.EqualWithinAbs(near[0], 1.2422e-9, 1e-12) {
		t.Fatalf("unexpected near side pull: %+v", near)
	}

	massless := ThirdBody(0, []float64{7000, 0, 0, 0, 7.5, 0}, Earth.GM(), ThirdBodyParams{GM: 0, Body: moonAt})
	if !vectorsEqual(massless, []float64{0, 0, 0}, 0) {
		t.Fatal("massless third body must not perturb")
	}
}

func TestIlluminated(t *testing.T) {
	R := Earth.Radius
	rSat := []float64{7000, 0, 0}
	for _, test := range []struct {
		rStar []float64
		lit   bool
	}{
		{[]float64{-1.5e8, 0, 0}, false}, // Dead center of the shadow cone
		{[]float64{-1.5e8, 2.5e6, 0}, false},
		{[]float64{1.5e8, 0, 0}, true}, // Same side as the star
		{[]float64{0, 1.5e8, 0}, true},
	} {
		if got := Illuminated(rSat, test.rStar, R); got != test.lit {
			t.Fatalf("Illuminated(%+v, %+v) = %v", rSat, test.rStar, got)
		}
	}
	// Above the terminator the star is still in view.
	if !Illuminated([]float64{0, 7000, 0}, []float64{-1.5e8, 0, 0}, R) {
		t.Fatal("a satellite above the terminator must see the star")
	}
}

func TestRadiationPressure(t *testing.T) {
	sunAt := Static([]float64{1.496e8, 0, 0})
	p := RadiationParams{R: Earth.Radius, CR: 1.0, Area: 1e-6, Mass: 100, WdivC: WdivcSun, Star: sunAt}

	// Inside the shadow cone the acceleration vanishes entirely, whatever
	// the spacecraft looks like.
	for _, cr := range []float64{1.0, 1.5, 2.0} {
		for _, area := range []float64{1e-6, 4e-6, 2e-5} {
			pEcl := RadiationParams{R: Earth.Radius, CR: cr, Area: area, Mass: 100, WdivC: WdivcSun, Star: sunAt}
			eclipsed := RadiationPressure(0, []float64{-7000, 0, 0, 0, 0, 0}, Earth.GM(), pEcl)
			if !vectorsEqual(eclipsed, []float64{0, 0, 0}, 0) {
				t.Fatalf("radiation pressure with CR=%.1f A=%.0e inside the shadow cone: %+v", cr, area, eclipsed)
			}
		}
	}

	lit := RadiationPressure(0, []float64{7000, 0, 0, 0, 0, 0}, Earth.GM(), p)
	if lit[0] >= 0 || lit[1] != 0 || lit[2] != 0 {
		t.Fatalf("radiation pressure must push away from the star, got %+v", lit)
	}
	// 4.54e-6 N/m² at 1 AU for CR A/m of 1e-8 km²/kg.
	if !scalar.EqualWithinAbs(lit[0], -4.54e-11, 5e-14) {
		t.Fatalf("unexpected radiation pressure: %+v", lit)
	}
}

func TestPerturbationsAccel(t *testing.T) {
	state := []float64{-2906.4, 5957.4, 2249.8, -5.7729, -3.9073, 2.8903}
	var none Perturbations
	if !vectorsEqual(none.Accel(0, state, Earth), []float64{0, 0, 0}, 0) {
		t.Fatal("empty perturbations must not perturb")
	}

	moonAt := Static([]float64{-384400, 0, 0})
	sunAt := Static([]float64{1.496e8, 0, 0})
	drag := &DragParams{R: Earth.Radius, CD: 2.2, Area: 4e-6, Mass: 100, H0: EarthH0, Rho0: EarthRho0}
	srp := &RadiationParams{R: Earth.Radius, CR: 1.3, Area: 4e-6, Mass: 100, WdivC: WdivcSun, Star: sunAt}
	perts := Perturbations{Jn: 3, Drag: drag, Third: []ThirdBodyParams{{GM: Moon.GM(), Body: moonAt}}, SRP: srp}

	got := perts.Accel(0, state, Earth)
	want := make([]float64, 3)
	for _, part := range [][]float64{
		J2Perturbation(0, state, Earth.GM(), J2Params{J2: Earth.J2, R: Earth.Radius}),
		J3Perturbation(0, state, Earth.GM(), J3Params{J3: Earth.J3, R: Earth.Radius}),
		AtmosphericDrag(0, state, Earth.GM(), *drag),
		ThirdBody(0, state, Earth.GM(), ThirdBodyParams{GM: Moon.GM(), Body: moonAt}),
		RadiationPressure(0, state, Earth.GM(), *srp),
	} {
		for i := 0; i < 3; i++ {
			want[i] += part[i]
		}
	}
	if !floats.Equal(got, want) {
		t.Fatalf("summed perturbations fail:\ngot  %+v\nwant %+v", got, want)
	}
	for i := 0; i < 3; i++ {
		if math.IsNaN(got[i]) || math.IsInf(got[i], 0) {
			t.Fatalf("summed acceleration not finite: %+v", got)
		}
	}

	// No oblateness harmonics about the Sun.
	if !vectorsEqual(Perturbations{Jn: 2}.Accel(0, []float64{1e6, 0, 0, 0, 100, 0}, Sun), []float64{0, 0, 0}, 0) {
		t.Fatal("harmonics about the Sun must be ignored")
	}
}

func TestPertArbitrary(t *testing.T) {
	state := []float64{6524.834, 6862.875, 6448.296, 4.901327, 5.533756, -1.976341}
	pertForce := []float64{1, 2, 3}
	perts := Perturbations{}
	perts.Arbitrary = func(t0 float64, s []float64) []float64 {
		return pertForce
	}
	if !floats.Equal(pertForce, perts.Accel(0, state, Earth)) {
		t.Fatal("arbitrary perturbations fail")
	}
}

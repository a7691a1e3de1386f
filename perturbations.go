// Package perturb provides the perturbing accelerations of orbital
// propagation beyond the two-body term: oblateness harmonics (J2, J3),
// atmospheric drag, third-body gravity, and solar radiation pressure with
// eclipse determination. Every model is a pure, stateless function of time
// and the Cartesian state, meant to be summed inside an integrator's
// derivative evaluation, so they are safe to call concurrently.
//
// Units are the caller's responsibility and must be consistent (the bodies
// of this package use km, s, kg). Degenerate geometry, such as a zero-length
// position vector or an attractor radius exceeding a body distance, is not
// validated here and propagates NaN/Inf per IEEE-754; the propagation
// driver traps NaN states instead.
package perturb

import "math"

// PositionProvider returns the position of a moving body (a perturbing
// third body, a star) at a given time offset in seconds. Implementations
// must be safe for concurrent use; the ephemeris providers of this package
// and any fixed-position function qualify.
type PositionProvider interface {
	PositionAt(t0 float64) []float64
}

// PositionProviderFunc adapts a plain function to a PositionProvider.
type PositionProviderFunc func(t0 float64) []float64

// PositionAt implements the PositionProvider interface.
func (f PositionProviderFunc) PositionAt(t0 float64) []float64 {
	return f(t0)
}

// J2Params configures J2Perturbation.
type J2Params struct {
	J2 float64 // Oblateness factor of the attractor
	R  float64 // Equatorial radius of the attractor (km)
}

// J3Params configures J3Perturbation.
type J3Params struct {
	J3 float64 // Second oblateness factor of the attractor
	R  float64 // Equatorial radius of the attractor (km)
}

// DragParams configures AtmosphericDrag with an exponential atmosphere
// rho(H) = Rho0 * exp(-(H-R)/H0).
type DragParams struct {
	R    float64 // Equatorial radius of the attractor (km)
	CD   float64 // Dimensionless drag coefficient
	Area float64 // Frontal area of the spacecraft (km²)
	Mass float64 // Mass of the spacecraft (kg)
	H0   float64 // Atmospheric scale height (km)
	Rho0 float64 // Density pre-factor of the exponent (kg/km³)
}

// ThirdBodyParams configures ThirdBody.
type ThirdBodyParams struct {
	GM   float64          // Gravitational parameter of the perturbing body (km³/s²)
	Body PositionProvider // Position of the perturbing body in the attractor frame
}

// RadiationParams configures RadiationPressure.
type RadiationParams struct {
	R     float64          // Equatorial radius of the attractor (km)
	CR    float64          // Dimensionless radiation pressure coefficient, 1 ≤ CR ≤ 2
	Area  float64          // Effective spacecraft area (km²)
	Mass  float64          // Mass of the spacecraft (kg)
	WdivC float64          // Star radiated power divided by the speed of light (see WdivcSun)
	Star  PositionProvider // Position of the star in the attractor frame
}

// J2Perturbation returns the J2 acceleration (km/s²) on a body at the given
// six-component state in the attractor frame. The time t0 is unused by the
// formula and kept for uniformity with the other models. The formula is
// given in Curtis, (12.30).
func J2Perturbation(t0 float64, state []float64, k float64, p J2Params) []float64 {
	x, y, z := state[0], state[1], state[2]
	r := Norm(state[:3])

	factor := (3.0 / 2.0) * k * p.J2 * (p.R * p.R) / math.Pow(r, 5)
	zr := 5.0 * z * z / (r * r)

	return []float64{
		factor * (zr - 1) * x,
		factor * (zr - 1) * y,
		factor * (zr - 3) * z,
	}
}

// J3Perturbation returns the J3 acceleration (km/s²) on a body at the given
// state in the attractor frame. The formula is given in Curtis, problem 12.8.
func J3Perturbation(t0 float64, state []float64, k float64, p J3Params) []float64 {
	x, y, z := state[0], state[1], state[2]
	r := Norm(state[:3])

	factor := (1.0 / 2.0) * k * p.J3 * math.Pow(p.R, 3) / math.Pow(r, 5)
	cosφ := z / r
	cosφ2 := cosφ * cosφ

	aX := 5.0 * x / r * (7.0*cosφ2*cosφ - 3.0*cosφ)
	aY := 5.0 * y / r * (7.0*cosφ2*cosφ - 3.0*cosφ)
	aZ := 3.0 * (35.0/3.0*cosφ2*cosφ2 - 10.0*cosφ2 + 1)
	return []float64{aX * factor, aY * factor, aZ * factor}
}

// AtmosphericDrag returns the drag deceleration (km/s²) of an exponential
// atmosphere model, following Curtis, section 12.4. The altitude proxy is
// the full radial distance with the attractor radius subtracted in the
// density exponent, so the model only holds for near-circular orbits
// referenced from the attractor center; below the surface it grows without
// clamping.
func AtmosphericDrag(t0 float64, state []float64, k float64, p DragParams) []float64 {
	h := Norm(state[:3])
	v := Norm(state[3:])

	b := p.CD * p.Area / p.Mass
	rho := p.Rho0 * math.Exp(-(h-p.R)/p.H0)

	coef := -(1.0 / 2.0) * rho * b * v
	return []float64{coef * state[3], coef * state[4], coef * state[5]}
}

// ThirdBody returns the perturbing acceleration (km/s²) of a third body on
// the orbiting spacecraft: the direct pull toward the third body minus the
// indirect term from its pull on the attractor. The attractor parameter k
// is unused; only the third body's GM matters.
func ThirdBody(t0 float64, state []float64, k float64, p ThirdBodyParams) []float64 {
	bodyR := p.Body.PositionAt(t0)
	deltaR := []float64{bodyR[0] - state[0], bodyR[1] - state[1], bodyR[2] - state[2]}

	delta3 := math.Pow(Norm(deltaR), 3)
	body3 := math.Pow(Norm(bodyR), 3)

	accel := make([]float64, 3)
	for i := 0; i < 3; i++ {
		accel[i] = p.GM*deltaR[i]/delta3 - p.GM*bodyR[i]/body3
	}
	return accel
}

// Illuminated determines whether a satellite is in direct light of a star,
// i.e. outside the shadow cone cast by the attractor, using algorithm 12.3
// from Curtis. rSat and rStar are the satellite and star positions in the
// attractor frame and R is the attractor radius; both positions must lie
// outside the attractor surface or the arc cosines leave their domain.
//
// This predicate runs on every radiation pressure evaluation of every
// integration step, so it stays free of allocations.
func Illuminated(rSat, rStar []float64, R float64) bool {
	satNorm := Norm(rSat)
	starNorm := Norm(rStar)
	dot := rSat[0]*rStar[0] + rSat[1]*rStar[1] + rSat[2]*rStar[2]

	θ := math.Acos(dot / (satNorm * starNorm))
	θ1 := math.Acos(R / satNorm)
	θ2 := math.Acos(R / starNorm)
	return θ < θ1+θ2
}

// RadiationPressure returns the radiation pressure acceleration (km/s²) on
// a spacecraft, zeroed entirely while the spacecraft is eclipsed by the
// attractor (binary illumination, no penumbra grading). We follow Curtis,
// section 12.9. Note that the pressure is evaluated at the star-to-attractor
// distance, not at the star-to-spacecraft distance. The attractor parameter
// k is unused.
func RadiationPressure(t0 float64, state []float64, k float64, p RadiationParams) []float64 {
	rStar := p.Star.PositionAt(t0)
	starNorm := Norm(rStar)
	pS := p.WdivC / (starNorm * starNorm)

	ν := 0.0
	if Illuminated(state[:3], rStar, p.R) {
		ν = 1.0
	}

	coef := -ν * pS * (p.CR * p.Area / p.Mass) / starNorm
	return []float64{coef * rStar[0], coef * rStar[1], coef * rStar[2]}
}

// Perturbations defines which perturbations to account for during a
// propagation. The zero value perturbs nothing.
type Perturbations struct {
	Jn        uint8                                       // Harmonic factors to use (only up to 3 supported)
	Drag      *DragParams                                 // Exponential-atmosphere drag, if any
	Third     []ThirdBodyParams                           // Perturbing third bodies, if any
	SRP       *RadiationParams                            // Solar (or stellar) radiation pressure, if any
	Arbitrary func(t0 float64, state []float64) []float64 // Additional arbitrary perturbation
}

func (p Perturbations) isEmpty() bool {
	return p.Jn <= 1 && p.Drag == nil && len(p.Third) == 0 && p.SRP == nil && p.Arbitrary == nil
}

// Accel returns the summed perturbing acceleration on the given state about
// the given attractor. Harmonic coefficients and the attractor radius are
// read off the body; the other models carry their own parameters.
func (p Perturbations) Accel(t0 float64, state []float64, body Body) []float64 {
	accel := make([]float64, 3)
	if p.isEmpty() {
		return accel
	}
	if p.Jn >= 2 && !body.Equals(Sun) {
		// Ignore any Jn about the Sun.
		addTo(accel, J2Perturbation(t0, state, body.GM(), J2Params{J2: body.J(2), R: body.Radius}))
		if p.Jn >= 3 {
			addTo(accel, J3Perturbation(t0, state, body.GM(), J3Params{J3: body.J(3), R: body.Radius}))
		}
	}
	if p.Drag != nil {
		addTo(accel, AtmosphericDrag(t0, state, body.GM(), *p.Drag))
	}
	for _, third := range p.Third {
		addTo(accel, ThirdBody(t0, state, body.GM(), third))
	}
	if p.SRP != nil {
		addTo(accel, RadiationPressure(t0, state, body.GM(), *p.SRP))
	}
	if p.Arbitrary != nil {
		addTo(accel, p.Arbitrary(t0, state))
	}
	return accel
}

func addTo(accel, part []float64) {
	accel[0] += part[0]
	accel[1] += part[1]
	accel[2] += part[2]
}

package perturb

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	pp "github.com/soniakeys/meeus/v3/planetposition"
	"github.com/soniakeys/meeus/v3/solar"
)

// The built-in providers return geocentric equatorial coordinates in km, so
// they are meant for propagations about Earth. Other attractor frames are
// the caller's job, through any PositionProvider implementation.

const secsPerDay = 86400.0

// Mean obliquity of the ecliptic at J2000, for rotating VSOP87 ecliptic
// coordinates into the equatorial frame of the other providers.
const j2000Obliquity = 23.43929111 * math.Pi / 180

// Static returns a provider pinned to a fixed position, for tests and for
// geometry checks where the body barely moves over the propagation span.
func Static(r []float64) PositionProvider {
	return PositionProviderFunc(func(t0 float64) []float64 { return r })
}

type sunProvider struct {
	epochJD float64
}

// NewSunProvider returns the geocentric equatorial position of the Sun (km)
// at epoch + t0 seconds, from the solar theory of Meeus chapter 25. Note
// that the whole ephemeris is analytic: no data files are loaded.
func NewSunProvider(epoch time.Time) PositionProvider {
	return sunProvider{epochJD: julian.TimeToJD(epoch.UTC())}
}

func (s sunProvider) PositionAt(t0 float64) []float64 {
	jde := s.epochJD + t0/secsPerDay
	T := base.J2000Century(jde)
	λ := solar.ApparentLongitude(T)
	r := solar.Radius(T) * AU
	ε := nutation.MeanObliquity(jde)
	return eclipticToEquatorial(λ.Rad(), 0, r, ε.Rad())
}

type moonProvider struct {
	epochJD float64
}

// NewMoonProvider returns the geocentric equatorial position of the Moon
// (km) at epoch + t0 seconds, from the abridged ELP-2000/82 theory of Meeus
// chapter 47. Like the Sun provider it needs no data files.
func NewMoonProvider(epoch time.Time) PositionProvider {
	return moonProvider{epochJD: julian.TimeToJD(epoch.UTC())}
}

func (m moonProvider) PositionAt(t0 float64) []float64 {
	jde := m.epochJD + t0/secsPerDay
	λ, β, Δ := moonposition.Position(jde)
	ε := nutation.MeanObliquity(jde)
	return eclipticToEquatorial(λ.Rad(), β.Rad(), Δ, ε.Rad())
}

type planetProvider struct {
	epochJD float64
	planet  *pp.V87Planet
	earth   *pp.V87Planet
}

// NewPlanetProvider returns the geocentric equatorial position of a planet
// (km) from the VSOP87 ephemerides, as the heliocentric difference with
// Earth. The VSOP87 data directory must be enabled in the configuration
// (see config.go); panics when it is not, or when the body has no VSOP87
// theory.
func NewPlanetProvider(body Body, epoch time.Time) PositionProvider {
	conf := perturbConfig()
	if !conf.VSOP87 {
		panic("VSOP87 is disabled: set vsop87 enabled and its directory in the configuration")
	}
	var num int
	switch body.Name {
	case "Venus":
		num = pp.Venus
	case "Mars":
		num = pp.Mars
	case "Jupiter":
		num = pp.Jupiter
	default:
		panic(fmt.Errorf("no VSOP87 ephemeris for %s", body))
	}
	planet, err := pp.LoadPlanetPath(num, conf.VSOP87Dir)
	if err != nil {
		panic(fmt.Errorf("could not load VSOP87 theory of %s: %s", body, err))
	}
	earth, err := pp.LoadPlanetPath(pp.Earth, conf.VSOP87Dir)
	if err != nil {
		panic(fmt.Errorf("could not load VSOP87 theory of Earth: %s", err))
	}
	return planetProvider{epochJD: julian.TimeToJD(epoch.UTC()), planet: planet, earth: earth}
}

func (p planetProvider) PositionAt(t0 float64) []float64 {
	jde := p.epochJD + t0/secsPerDay
	pl := helioEcliptic(p.planet, jde)
	ea := helioEcliptic(p.earth, jde)
	sε, cε := math.Sincos(j2000Obliquity)
	x := pl[0] - ea[0]
	y := pl[1] - ea[1]
	z := pl[2] - ea[2]
	return []float64{x, y*cε - z*sε, y*sε + z*cε}
}

// helioEcliptic returns the heliocentric ecliptic-of-J2000 Cartesian
// position of a VSOP87 planet in km.
func helioEcliptic(v *pp.V87Planet, jde float64) []float64 {
	l, b, r := v.Position2000(jde)
	r *= AU
	sB, cB := math.Sincos(b.Rad())
	sL, cL := math.Sincos(l.Rad())
	return []float64{r * cB * cL, r * cB * sL, r * sB}
}

// eclipticToEquatorial rotates geocentric ecliptic spherical coordinates
// (radians, km) about the vernal equinox by the obliquity ε.
func eclipticToEquatorial(λ, β, r, ε float64) []float64 {
	sλ, cλ := math.Sincos(λ)
	sβ, cβ := math.Sincos(β)
	sε, cε := math.Sincos(ε)
	return []float64{
		r * cβ * cλ,
		r * (cβ*sλ*cε - sβ*sε),
		r * (cβ*sλ*sε + sβ*cε),
	}
}

package perturb

import (
	"fmt"
	"strings"
)

const (
	// AU is one astronomical unit in kilometers.
	AU = 1.49597870700e8

	// WdivcSun is the Sun's radiated power divided by the speed of light,
	// folded with the inverse-square geometry: WdivcSun / r² (r in km) is the
	// radiation pressure in kg/(km·s²), i.e. 4.54e-6 N/m² at 1 AU. Use it as
	// the WdivC of RadiationParams for Sun-lit spacecraft.
	WdivcSun = 1.0160e14

	// EarthRho0 is the sea-level atmospheric density of Earth in kg/km³.
	EarthRho0 = 1.225e9

	// EarthH0 is the reference atmospheric scale height of Earth in km.
	EarthH0 = 8.5
)

// Body defines a celestial body: the central attractor of a propagation, the
// source of an oblateness or drag perturbation, or a perturbing third body.
type Body struct {
	Name   string
	Radius float64 // Equatorial radius (km)
	μ      float64 // Gravitational parameter (km³/s²)
	SOI    float64 // Sphere of influence with respect to the Sun (km)
	J2     float64
	J3     float64
	J4     float64
}

// GM returns μ (which is unexported because it's a lowercase letter).
func (b Body) GM() float64 {
	return b.μ
}

// J returns the perturbing J_n factor for the provided n.
// Currently only J2 through J4 are supported.
func (b Body) J(n uint8) float64 {
	switch n {
	case 2:
		return b.J2
	case 3:
		return b.J3
	case 4:
		return b.J4
	default:
		return 0.0
	}
}

// String implements the Stringer interface.
func (b Body) String() string {
	return b.Name + " body"
}

// Equals returns whether the provided body is the same.
func (b *Body) Equals(o Body) bool {
	return b.Name == o.Name && b.Radius == o.Radius && b.μ == o.μ && b.SOI == o.SOI && b.J2 == o.J2
}

// BodyFromString returns the body from its name.
func BodyFromString(name string) (Body, error) {
	switch strings.ToLower(name) {
	case "sun":
		return Sun, nil
	case "venus":
		return Venus, nil
	case "earth":
		return Earth, nil
	case "moon":
		return Moon, nil
	case "mars":
		return Mars, nil
	case "jupiter":
		return Jupiter, nil
	default:
		return Body{}, fmt.Errorf("undefined body '%s'", name)
	}
}

/* Definitions */

// Sun is our closest star.
var Sun = Body{"Sun", 695700, 1.32712440017987e11, -1, 0, 0, 0}

// Venus is poisonous.
var Venus = Body{"Venus", 6051.8, 3.24858599e5, 0.616e6, 0.000027, 0, 0}

// Earth is home.
var Earth = Body{"Earth", 6378.1363, 3.98600433e5, 924645.0, 1082.6269e-6, -2.5324e-6, -1.6204e-6}

// Moon is the usual third body of an Earth orbit.
var Moon = Body{"Moon", 1737.4, 4902.800066, 66183, 202.7e-6, 0, 0}

// Mars is the vacation place.
var Mars = Body{"Mars", 3396.19, 4.28283100e4, 576000, 1964e-6, 36e-6, -18e-6}

// Jupiter is big.
var Jupiter = Body{"Jupiter", 71492.0, 1.266865361e8, 48.2e6, 0.01475, 0, -0.00058}

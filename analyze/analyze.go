/*Package analyze contains the analytic solutions and measurements used to
validate simulation output: channel flow profiles, the Shan-Chen equation of
state, and droplet pressure jumps for Laplace law fits.
*/
package analyze

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/phil-mansfield/golbm/geom"
	"github.com/phil-mansfield/golbm/lattice"
)

// ChannelProfile returns the steady-state velocity of a channel nLat nodes
// wide, bounded by wall nodes on both sides, driven by a pressure gradient
// dPdL through a fluid with dynamic viscosity mu. Walls sit halfway between
// the last wall node and the first fluid node, and wall nodes have zero
// velocity.
func ChannelProfile(nLat, wall int, dPdL, mu float64) []float64 {
	u := make([]float64, nLat)
	hw := float64(nLat-2*wall) / 2
	mid := float64(nLat-1) / 2

	for i := wall; i < nLat-wall; i++ {
		s := float64(i) - mid
		u[i] = dPdL / (2 * mu) * (hw*hw - s*s)
	}
	return u
}

// MaxChannelVelocity returns the centerline velocity of a channel of
// half-width h.
func MaxChannelVelocity(h, dPdL, mu float64) float64 {
	return dPdL * h * h / (2 * mu)
}

// DynamicViscosity returns rho cs^2 (tau - 1/2).
func DynamicViscosity(rho, tau float64) float64 {
	return rho * lattice.Viscosity(tau)
}

// Pressure is the two-component Shan-Chen equation of state.
func Pressure(rho1, rho2, g float64) float64 {
	return (rho1+rho2)*lattice.Cs2 + g*lattice.Cs2*rho1*rho2
}

// PressureField evaluates Pressure at every node.
func PressureField(rho1, rho2 []float64, g float64) ([]float64, error) {
	if len(rho1) != len(rho2) {
		return nil, fmt.Errorf(
			"Density fields have %d and %d nodes.", len(rho1), len(rho2),
		)
	}
	p := make([]float64, len(rho1))
	for i := range p {
		p[i] = Pressure(rho1[i], rho2[i], g)
	}
	return p, nil
}

// DropletPressureJump returns the pressure at node inside minus the
// pressure at node outside.
func DropletPressureJump(
	rho1, rho2 []float64, g float64, inside, outside int,
) float64 {
	pIn := Pressure(rho1[inside], rho2[inside], g)
	pOut := Pressure(rho1[outside], rho2[outside], g)
	return pIn - pOut
}

// EquivalentRadius returns the radius of the sharp circular droplet with
// the same excess mass as the droplet component rho, whose bulk densities
// are read at the nodes inside and outside.
func EquivalentRadius(rho []float64, inside, outside int) (float64, error) {
	in, out := rho[inside], rho[outside]
	if in <= out {
		return 0, fmt.Errorf(
			"Droplet density %g is not larger than its surroundings, %g.",
			in, out,
		)
	}
	excess := floats.Sum(rho) - out*float64(len(rho))
	return math.Sqrt(excess / (in - out) / math.Pi), nil
}

// SurfaceTension fits the Laplace law dp = sigma / R + c to a set of
// droplets and returns sigma and the intercept c.
func SurfaceTension(dp, radius []float64) (sigma, c float64, err error) {
	if len(dp) != len(radius) {
		return 0, 0, fmt.Errorf(
			"Have %d pressure jumps but %d radii.", len(dp), len(radius),
		)
	} else if len(dp) < 2 {
		return 0, 0, fmt.Errorf("Need at least two droplets to fit.")
	}

	inv := make([]float64, len(radius))
	for i, r := range radius {
		if r <= 0 {
			return 0, 0, fmt.Errorf("Radius %d is non-positive, %g.", i, r)
		}
		inv[i] = 1 / r
	}
	c, sigma = stat.LinearRegression(inv, dp, nil, false)
	return sigma, c, nil
}

// Mass returns the sum of a field over the fluid nodes of a mask.
func Mass(field []float64, mask *geom.Mask) (float64, error) {
	if len(field) != mask.Area {
		return 0, fmt.Errorf(
			"Field has %d nodes, but the mask has %d.", len(field), mask.Area,
		)
	}
	fluid := make([]float64, mask.Area)
	for idx := range fluid {
		if mask.FluidAt(idx) {
			fluid[idx] = 1
		}
	}
	return floats.Dot(field, fluid), nil
}

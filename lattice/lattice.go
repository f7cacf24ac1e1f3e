/*Package lattice contains the D2Q9 velocity set shared by every other part of
golbm. Nothing in this package is ever mutated after initialization.

Directions are ordered as
    6 2 5
    3 0 1
    7 4 8
so that direction 0 is the rest population and direction k+2 (mod 4, within
the axis and diagonal groups) is the reflection of direction k.
*/
package lattice

const (
	// Q is the number of discrete velocities.
	Q = 9
	// Cs2 is the squared lattice speed of sound.
	Cs2 = 1.0 / 3.0
)

var (
	Cx = [Q]int{0, 1, 0, -1, 0, 1, -1, -1, 1}
	Cy = [Q]int{0, 0, 1, 0, -1, 1, 1, -1, -1}

	// W are the equilibrium weights.
	W = [Q]float64{
		4.0 / 9,
		1.0 / 9, 1.0 / 9, 1.0 / 9, 1.0 / 9,
		1.0 / 36, 1.0 / 36, 1.0 / 36, 1.0 / 36,
	}

	// InteractionW are the weights of the Shan-Chen neighbor sums. The rest
	// direction does not take part.
	InteractionW = [Q]float64{
		0,
		1.0 / 9, 1.0 / 9, 1.0 / 9, 1.0 / 9,
		1.0 / 36, 1.0 / 36, 1.0 / 36, 1.0 / 36,
	}

	// Opposite maps each direction to its bounce-back partner.
	Opposite = [Q]int{0, 3, 4, 1, 2, 7, 8, 5, 6}
)

// Dot returns the dot product between the k-th lattice velocity and (x, y).
func Dot(k int, x, y float64) float64 {
	return float64(Cx[k])*x + float64(Cy[k])*y
}

// Equilibrium returns the second order equilibrium population in direction k
// for a node with density rho and velocity (ux, uy).
func Equilibrium(k int, rho, ux, uy float64) float64 {
	cu := Dot(k, ux, uy)
	usq := ux*ux + uy*uy
	return W[k] * rho * (1 + 3*cu + 4.5*cu*cu - 1.5*usq)
}

// EquilibriumAll writes all Q equilibrium populations into out.
func EquilibriumAll(rho, ux, uy float64, out *[Q]float64) {
	usq := 1.5 * (ux*ux + uy*uy)
	for k := 0; k < Q; k++ {
		cu := Dot(k, ux, uy)
		out[k] = W[k] * rho * (1 + 3*cu + 4.5*cu*cu - usq)
	}
}

// Viscosity returns the kinematic viscosity of a BGK fluid with relaxation
// time tau.
func Viscosity(tau float64) float64 { return Cs2 * (tau - 0.5) }

// RelaxationTime is the inverse of Viscosity.
func RelaxationTime(nu float64) float64 { return nu/Cs2 + 0.5 }

package golbm

import (
	"github.com/phil-mansfield/golbm/lattice"
)

// collide relaxes every population of the fluid nodes in [lowY, highY)
// towards equilibrium and adds the forcing source term. It only reads and
// writes the node it is updating, so it can run in place.
func (sim *Simulation) collide(lowY, highY int) {
	n, nx := sim.n, sim.mask.Nx
	var feq [lattice.Q]float64

	for c := range sim.fluids {
		f := sim.f[c]
		rho, fx, fy := sim.rho[c], sim.fx[c], sim.fy[c]
		tau := sim.fluids[c].Tau
		omega := 1 / tau
		pref := 3 * (1 - 0.5/tau)

		for idx := lowY * nx; idx < highY*nx; idx++ {
			if sim.mask.SolidAt(idx) {
				continue
			}

			lattice.EquilibriumAll(rho[idx], sim.eqX[idx], sim.eqY[idx], &feq)
			Fx, Fy := fx[idx], fy[idx]
			for k := 0; k < lattice.Q; k++ {
				i := k*n + idx
				src := pref * lattice.W[k] * lattice.Dot(k, Fx, Fy)
				f[i] += omega*(feq[k]-f[i]) + src
			}
		}
	}
}

// stream moves the populations of every node in [lowY, highY) into the spare
// buffer. Populations which would arrive from a solid node are replaced by
// the reflection of the population leaving towards it.
func (sim *Simulation) stream(lowY, highY int) {
	n, nx := sim.n, sim.mask.Nx

	for c := range sim.fluids {
		f, out := sim.f[c], sim.spare[c]

		for k := 0; k < lattice.Q; k++ {
			opp := lattice.Opposite[k]
			// x - c_k is the neighbor of x along the opposite direction.
			src := sim.neighbors[opp]

			for idx := lowY * nx; idx < highY*nx; idx++ {
				if sim.mask.SolidAt(idx) {
					out[k*n+idx] = 0
					continue
				}

				s := int(src[idx])
				if sim.mask.FluidAt(s) {
					out[k*n+idx] = f[k*n+s]
				} else {
					out[k*n+idx] = f[opp*n+idx]
				}
			}
		}
	}
}

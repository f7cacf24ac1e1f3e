package golbm

import (
	"github.com/phil-mansfield/golbm/lattice"
)

// updateMacroscopic recomputes densities, forces and velocities from the
// current populations. Forces read neighboring densities, so the two sweeps
// are separated by a join.
func (sim *Simulation) updateMacroscopic() {
	sim.parallel(sim.moments)
	sim.parallel(sim.forces)
}

// moments computes the density and momentum of every component.
func (sim *Simulation) moments(lowY, highY int) {
	n, nx := sim.n, sim.mask.Nx

	for c := range sim.fluids {
		f := sim.f[c]
		rho, jx, jy := sim.rho[c], sim.jx[c], sim.jy[c]

		for idx := lowY * nx; idx < highY*nx; idx++ {
			if sim.mask.SolidAt(idx) {
				rho[idx], jx[idx], jy[idx] = 0, 0, 0
				continue
			}

			r, x, y := 0.0, 0.0, 0.0
			for k := 0; k < lattice.Q; k++ {
				fk := f[k*n+idx]
				r += fk
				x += fk * float64(lattice.Cx[k])
				y += fk * float64(lattice.Cy[k])
			}
			rho[idx], jx[idx], jy[idx] = r, x, y
		}
	}
}

// forces computes the total force on every component, the velocity of every
// component, and the common velocity used by the equilibrium.
func (sim *Simulation) forces(lowY, highY int) {
	nx := sim.mask.Nx
	comps := len(sim.fluids)
	coupled := comps == 2 && sim.g != 0

	for idx := lowY * nx; idx < highY*nx; idx++ {
		if sim.mask.SolidAt(idx) {
			for c := 0; c < comps; c++ {
				sim.fx[c][idx], sim.fy[c][idx] = 0, 0
				sim.ux[c][idx], sim.uy[c][idx] = 0, 0
			}
			sim.eqX[idx], sim.eqY[idx] = 0, 0
			continue
		}

		extX, extY := sim.force.At(idx)
		numX, numY, den := 0.0, 0.0, 0.0

		for c := 0; c < comps; c++ {
			rho := sim.rho[c][idx]
			Fx, Fy := extX, extY

			if coupled {
				sx, sy := sim.neighborSum(sim.rho[1-c], idx)
				Fx -= sim.g * rho * sx
				Fy -= sim.g * rho * sy
			}
			if gads := sim.fluids[c].AdhesionG; gads != 0 {
				sx, sy := sim.solidSum(idx)
				Fx -= gads * rho * sx
				Fy -= gads * rho * sy
			}
			sim.fx[c][idx], sim.fy[c][idx] = Fx, Fy

			px := sim.jx[c][idx] + Fx/2
			py := sim.jy[c][idx] + Fy/2
			if rho > 0 {
				sim.ux[c][idx], sim.uy[c][idx] = px/rho, py/rho
			} else {
				sim.ux[c][idx], sim.uy[c][idx] = 0, 0
			}

			tau := sim.fluids[c].Tau
			numX += px / tau
			numY += py / tau
			den += rho / tau
		}

		if den > 0 {
			sim.eqX[idx], sim.eqY[idx] = numX/den, numY/den
		} else {
			sim.eqX[idx], sim.eqY[idx] = 0, 0
		}
	}
}

// neighborSum returns sum_k w_k field(x + c_k) c_k around node idx. Solid
// nodes hold zero density and so do not contribute.
func (sim *Simulation) neighborSum(field []float64, idx int) (sx, sy float64) {
	for k := 1; k < lattice.Q; k++ {
		v := lattice.InteractionW[k] * field[sim.neighbors[k][idx]]
		sx += v * float64(lattice.Cx[k])
		sy += v * float64(lattice.Cy[k])
	}
	return sx, sy
}

// solidSum returns sum_k w_k s(x + c_k) c_k around node idx, where s is one
// at solid nodes.
func (sim *Simulation) solidSum(idx int) (sx, sy float64) {
	for k := 1; k < lattice.Q; k++ {
		if sim.mask.FluidAt(int(sim.neighbors[k][idx])) {
			continue
		}
		sx += lattice.InteractionW[k] * float64(lattice.Cx[k])
		sy += lattice.InteractionW[k] * float64(lattice.Cy[k])
	}
	return sx, sy
}

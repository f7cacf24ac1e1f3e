package golbm

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// The observers below copy the fields they return, so the results stay
// valid after further steps.

// Density returns the density of component c at every node.
func (sim *Simulation) Density(c int) []float64 { return clone(sim.rho[c]) }

// VelocityX returns the x velocity of component c at every node, including
// the half-step force correction.
func (sim *Simulation) VelocityX(c int) []float64 { return clone(sim.ux[c]) }

func (sim *Simulation) VelocityY(c int) []float64 { return clone(sim.uy[c]) }

// ForceX returns the total force acting on component c.
func (sim *Simulation) ForceX(c int) []float64 { return clone(sim.fx[c]) }

func (sim *Simulation) ForceY(c int) []float64 { return clone(sim.fy[c]) }

// Populations returns the direction-major populations of component c.
func (sim *Simulation) Populations(c int) []float64 { return clone(sim.f[c]) }

// Mass returns the total mass of component c.
func (sim *Simulation) Mass(c int) float64 { return floats.Sum(sim.f[c]) }

// Snapshot returns the macroscopic fields of every component.
func (sim *Simulation) Snapshot() *Snapshot {
	nx, ny := sim.mask.Nx, sim.mask.Ny
	snap := &Snapshot{
		Step:       sim.step,
		Components: make([]ComponentSnapshot, len(sim.fluids)),
	}
	for c := range sim.fluids {
		snap.Components[c] = ComponentSnapshot{
			Name:      sim.fluids[c].Name,
			Density:   mat.NewDense(ny, nx, clone(sim.rho[c])),
			VelocityX: mat.NewDense(ny, nx, clone(sim.ux[c])),
			VelocityY: mat.NewDense(ny, nx, clone(sim.uy[c])),
		}
	}
	return snap
}

// Checkpoint returns a copy of the restartable state of the simulation.
func (sim *Simulation) Checkpoint() *Checkpoint {
	cp := &Checkpoint{
		Nx: sim.mask.Nx, Ny: sim.mask.Ny, Step: sim.step,
		Populations: make([][]float64, len(sim.f)),
	}
	for c := range sim.f {
		cp.Populations[c] = clone(sim.f[c])
	}
	return cp
}

func clone(xs []float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	return out
}

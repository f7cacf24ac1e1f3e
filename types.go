package golbm

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/phil-mansfield/golbm/lattice"
)

const (
	// MaxComponents is the largest number of fluid components a Simulation
	// can couple.
	MaxComponents = 2
)

// Fluid describes one component of the simulated fluid.
type Fluid struct {
	Name string
	// Tau is the BGK relaxation time. The kinematic viscosity is
	// cs^2 (Tau - 1/2), so Tau must be larger than 1/2.
	Tau float64
	// AdhesionG couples the component to solid nodes. Positive values
	// repel the component from solids.
	AdhesionG float64
}

// Viscosity returns the kinematic viscosity of the component.
func (fl *Fluid) Viscosity() float64 { return lattice.Viscosity(fl.Tau) }

// Params are the physical parameters of a run which are independent of the
// geometry and the initial state.
type Params struct {
	Fluids []Fluid
	// G is the Shan-Chen coupling between the two components. It is ignored
	// for single component runs.
	G     float64
	Force Force
	// Threads is the number of workers used per phase. Zero uses one
	// worker per CPU.
	Threads int
}

// CheckInit validates the parameters against an nx x ny domain.
func (p *Params) CheckInit(nx, ny int) error {
	if len(p.Fluids) == 0 {
		return fmt.Errorf("At least one fluid component is required.")
	} else if len(p.Fluids) > MaxComponents {
		return fmt.Errorf(
			"At most %d fluid components are supported, but %d were given.",
			MaxComponents, len(p.Fluids),
		)
	}

	for i := range p.Fluids {
		fl := &p.Fluids[i]
		if fl.Name == "" {
			fl.Name = fmt.Sprintf("fluid%d", i)
		}
		if fl.Tau <= 0.5 {
			return fmt.Errorf(
				"Tau of fluid '%s' must be larger than 0.5, but is %g.",
				fl.Name, fl.Tau,
			)
		}
	}

	if p.Threads < 0 {
		return fmt.Errorf(
			"Thread count must be non-negative, but is %d.", p.Threads,
		)
	}

	return p.Force.Validate(nx * ny)
}

// Emitter is called by Run at snapshot boundaries. A returned error aborts
// the run.
type Emitter func(sim *Simulation) error

// Snapshot holds the macroscopic fields of every component at one step.
// Matrices have Ny rows and Nx columns, so element (y, x) is node (x, y).
type Snapshot struct {
	Step       int
	Components []ComponentSnapshot
}

// ComponentSnapshot holds the fields of one component of a Snapshot.
type ComponentSnapshot struct {
	Name                          string
	Density, VelocityX, VelocityY *mat.Dense
}

// Checkpoint is the full restartable state of a Simulation. Populations
// holds one direction-major slice per component: population k of node idx
// is at Populations[c][k*Nx*Ny + idx].
type Checkpoint struct {
	Nx, Ny      int
	Step        int
	Populations [][]float64
}

// Validate returns an error if the checkpoint is inconsistent with itself or
// cannot be used with the given mask dimensions and component count.
func (cp *Checkpoint) Validate(nx, ny, components int) error {
	if cp.Nx != nx || cp.Ny != ny {
		return fmt.Errorf(
			"Checkpoint is %d x %d, but the simulation is %d x %d.",
			cp.Nx, cp.Ny, nx, ny,
		)
	} else if len(cp.Populations) != components {
		return fmt.Errorf(
			"Checkpoint has %d components, but the simulation has %d.",
			len(cp.Populations), components,
		)
	} else if cp.Step < 0 {
		return fmt.Errorf("Checkpoint step %d is negative.", cp.Step)
	}

	for c, f := range cp.Populations {
		if len(f) != lattice.Q*nx*ny {
			return fmt.Errorf(
				"Component %d of checkpoint has %d populations, expected %d.",
				c, len(f), lattice.Q*nx*ny,
			)
		}
	}
	return nil
}

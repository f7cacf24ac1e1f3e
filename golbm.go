/*Package golbm runs two-dimensional lattice Boltzmann simulations of single
and two component fluids on a D2Q9 lattice with BGK collisions.

A Simulation owns every population of the run. It is created from a
geom.Mask, a set of Params and either an InitialCondition (New) or a
Checkpoint (Restore), and is then advanced with Step or Run. Macroscopic
fields can be read between steps.

Two component runs couple the fluids through a Shan-Chen interaction force.
External body forces and solid adhesion are added to the same force field,
which enters the collision as a source term and shifts the equilibrium
velocity by half a time step.
*/
package golbm

import (
	"errors"
	"log"
	"runtime"

	"github.com/phil-mansfield/golbm/geom"
	"github.com/phil-mansfield/golbm/lattice"
)

// State is the lifecycle stage of a Simulation.
type State int

const (
	Uninitialized State = iota
	Initialized
	Running
	// Checkpointed is the state while Run hands the simulation to an
	// Emitter.
	Checkpointed
	Completed
)

var stateNames = []string{
	"Uninitialized", "Initialized", "Running", "Checkpointed", "Completed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "State(?)"
	}
	return stateNames[s]
}

var (
	ErrNotInitialized = errors.New("Simulation has not been initialized.")
	ErrCompleted      = errors.New("Simulation has already completed.")
)

type Simulation struct {
	mask   *geom.Mask
	fluids []Fluid
	g      float64
	force  Force
	n      int

	// f[c][k*n + idx]. spare is the streaming target and is swapped with f
	// after every step.
	f, spare [][]float64

	rho        [][]float64
	jx, jy     [][]float64
	fx, fy     [][]float64
	ux, uy     [][]float64
	eqX, eqY   []float64
	neighbors  [lattice.Q][]int32
	workspaces []workspace

	step  int
	state State

	log bool
	ms  runtime.MemStats
}

// New creates a simulation on the given mask and sets its populations to
// equilibrium at rest with the densities of init.
func New(
	mask *geom.Mask, params Params, init InitialCondition,
) (*Simulation, error) {
	sim, err := newSimulation(mask, params)
	if err != nil {
		return nil, err
	}

	rhos, err := init.Densities(mask, len(sim.fluids))
	if err != nil {
		return nil, err
	}

	var feq [lattice.Q]float64
	for c := range sim.fluids {
		f := sim.f[c]
		for idx := 0; idx < sim.n; idx++ {
			if mask.SolidAt(idx) {
				continue
			}
			lattice.EquilibriumAll(rhos[c][idx], 0, 0, &feq)
			for k := 0; k < lattice.Q; k++ {
				f[k*sim.n+idx] = feq[k]
			}
		}
	}

	sim.updateMacroscopic()
	sim.state = Initialized
	return sim, nil
}

// Restore creates a simulation which continues from a checkpoint. The
// checkpoint must have been taken on the same geometry with the same number
// of components.
func Restore(mask *geom.Mask, params Params, cp *Checkpoint) (*Simulation, error) {
	sim, err := newSimulation(mask, params)
	if err != nil {
		return nil, err
	}

	if err := cp.Validate(mask.Nx, mask.Ny, len(sim.fluids)); err != nil {
		return nil, err
	}
	for c := range sim.f {
		copy(sim.f[c], cp.Populations[c])
		for k := 0; k < lattice.Q; k++ {
			for idx := 0; idx < sim.n; idx++ {
				if mask.SolidAt(idx) {
					sim.f[c][k*sim.n+idx] = 0
				}
			}
		}
	}
	sim.step = cp.Step

	sim.updateMacroscopic()
	sim.state = Initialized
	return sim, nil
}

func newSimulation(mask *geom.Mask, params Params) (*Simulation, error) {
	if mask == nil {
		return nil, errors.New("Simulation requires a geometry mask.")
	}
	params.Fluids = append([]Fluid{}, params.Fluids...)
	if err := params.CheckInit(mask.Nx, mask.Ny); err != nil {
		return nil, err
	}

	sim := &Simulation{}
	sim.mask = mask
	sim.fluids = params.Fluids
	sim.g = params.G
	sim.force = params.Force
	sim.n = mask.Area

	comps := len(sim.fluids)
	sim.f = makeFields(comps, lattice.Q*sim.n)
	sim.spare = makeFields(comps, lattice.Q*sim.n)
	sim.rho = makeFields(comps, sim.n)
	sim.jx = makeFields(comps, sim.n)
	sim.jy = makeFields(comps, sim.n)
	sim.fx = makeFields(comps, sim.n)
	sim.fy = makeFields(comps, sim.n)
	sim.ux = makeFields(comps, sim.n)
	sim.uy = makeFields(comps, sim.n)
	sim.eqX = make([]float64, sim.n)
	sim.eqY = make([]float64, sim.n)

	sim.neighbors = neighborTable(&mask.Grid)
	sim.workspaces = newWorkspaces(params.Threads, mask.Ny)

	return sim, nil
}

func makeFields(comps, n int) [][]float64 {
	fs := make([][]float64, comps)
	for c := range fs {
		fs[c] = make([]float64, n)
	}
	return fs
}

// Log turns progress logging during Run on or off.
func (sim *Simulation) Log(flag bool) { sim.log = flag }

func (sim *Simulation) State() State { return sim.state }

// CurrentStep returns the number of steps taken, including those taken
// before a restart.
func (sim *Simulation) CurrentStep() int { return sim.step }

func (sim *Simulation) Mask() *geom.Mask { return sim.mask }

func (sim *Simulation) Fluids() []Fluid { return append([]Fluid{}, sim.fluids...) }

func (sim *Simulation) Workers() int { return len(sim.workspaces) }

// Step advances the simulation by one time step: collision, streaming, and
// recomputation of the macroscopic fields.
func (sim *Simulation) Step() error {
	switch sim.state {
	case Uninitialized:
		return ErrNotInitialized
	case Completed:
		return ErrCompleted
	}
	sim.state = Running

	sim.parallel(sim.collide)
	sim.parallel(sim.stream)
	sim.f, sim.spare = sim.spare, sim.f
	sim.updateMacroscopic()

	sim.step++
	return nil
}

// Run steps the simulation until it has taken steps steps in total and then
// moves it to Completed. emit, if non-nil, is called after every step that
// is a multiple of every and after the final step. A non-positive every
// only emits the final step.
func (sim *Simulation) Run(steps, every int, emit Emitter) error {
	switch sim.state {
	case Uninitialized:
		return ErrNotInitialized
	case Completed:
		return ErrCompleted
	}

	if sim.log {
		log.Printf(
			"Running %d x %d domain from step %d to %d with %d workers.",
			sim.mask.Nx, sim.mask.Ny, sim.step, steps, sim.Workers(),
		)
	}

	for sim.step < steps {
		if err := sim.Step(); err != nil {
			return err
		}

		final := sim.step == steps
		if emit == nil || !(final || (every > 0 && sim.step%every == 0)) {
			continue
		}

		if sim.log {
			runtime.ReadMemStats(&sim.ms)
			log.Printf(
				"Step %d: mass %v, Alloc: %5d MB, Sys: %5d MB",
				sim.step, sim.masses(), sim.ms.Alloc>>20, sim.ms.Sys>>20,
			)
		}

		sim.state = Checkpointed
		if err := emit(sim); err != nil {
			sim.state = Running
			return err
		}
		sim.state = Running
	}

	sim.state = Completed
	return nil
}

func (sim *Simulation) masses() []float64 {
	ms := make([]float64, len(sim.fluids))
	for c := range ms {
		ms[c] = sim.Mass(c)
	}
	return ms
}

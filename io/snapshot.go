package io

import (
	"fmt"
	"log"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/phil-mansfield/golbm"
	"github.com/phil-mansfield/golbm/lattice"
)

// Field names used in snapshot file names.
const (
	DensityField   = "density"
	VelocityXField = "ux"
	VelocityYField = "uy"
)

// SnapshotName returns the path of one macroscopic field of one component.
func SnapshotName(dir, prefix, fluid, field string, step int) string {
	return filepath.Join(
		dir, fmt.Sprintf("%s_%s_%s_%d.txt", prefix, fluid, field, step),
	)
}

// PopulationName returns the path of one direction of a population dump.
func PopulationName(dir, prefix, fluid string, step, k int) string {
	return filepath.Join(
		dir, fmt.Sprintf("%s_%s_f_%d_%d.txt", prefix, fluid, step, k),
	)
}

// CheckpointName returns the path of a binary checkpoint.
func CheckpointName(dir, prefix string, step int) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%d.lbm", prefix, step))
}

// WriteSnapshot writes the density and velocity fields of every component.
func WriteSnapshot(dir, prefix string, snap *golbm.Snapshot) error {
	for _, comp := range snap.Components {
		fields := []struct {
			name string
			m    *mat.Dense
		}{
			{DensityField, comp.Density},
			{VelocityXField, comp.VelocityX},
			{VelocityYField, comp.VelocityY},
		}
		for _, field := range fields {
			fname := SnapshotName(dir, prefix, comp.Name, field.name, snap.Step)
			if err := WriteMatrix(fname, field.m); err != nil {
				return err
			}
		}
	}
	return nil
}

// WritePopulations writes a checkpoint as one text matrix per component and
// direction. names gives the file name of each component.
func WritePopulations(
	dir, prefix string, names []string, cp *golbm.Checkpoint,
) error {
	if len(names) != len(cp.Populations) {
		return fmt.Errorf(
			"Have %d component names for %d components.",
			len(names), len(cp.Populations),
		)
	}

	n := cp.Nx * cp.Ny
	for c, f := range cp.Populations {
		for k := 0; k < lattice.Q; k++ {
			m := mat.NewDense(cp.Ny, cp.Nx, f[k*n:(k+1)*n])
			fname := PopulationName(dir, prefix, names[c], cp.Step, k)
			if err := WriteMatrix(fname, m); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadPopulations reads a checkpoint written by WritePopulations.
func ReadPopulations(
	dir, prefix string, names []string, step, nx, ny int,
) (*golbm.Checkpoint, error) {
	n := nx * ny
	cp := &golbm.Checkpoint{
		Nx: nx, Ny: ny, Step: step,
		Populations: make([][]float64, len(names)),
	}

	for c, name := range names {
		cp.Populations[c] = make([]float64, lattice.Q*n)
		for k := 0; k < lattice.Q; k++ {
			fname := PopulationName(dir, prefix, name, step, k)
			f, err := ReadField(fname, nx, ny)
			if err != nil {
				return nil, err
			}
			copy(cp.Populations[c][k*n:(k+1)*n], f)
		}
	}
	return cp, nil
}

// SnapshotWriter is a golbm.Emitter which writes snapshots and checkpoints
// into Dir. Steps which are multiples of SnapshotEvery get text snapshots,
// multiples of CheckpointEvery get a binary checkpoint (and a population
// dump if SavePopulations is set), and the final step gets both.
type SnapshotWriter struct {
	Dir, Prefix     string
	Steps           int
	SnapshotEvery   int
	CheckpointEvery int
	SavePopulations bool
	Log             bool
}

// Interval returns how often Run must call Emit.
func (w *SnapshotWriter) Interval() int {
	return gcd(w.SnapshotEvery, w.CheckpointEvery)
}

func gcd(a, b int) int {
	if a <= 0 {
		return b
	} else if b <= 0 {
		return a
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func multiple(step, every int) bool { return every > 0 && step%every == 0 }

// Emit writes the outputs due at the simulation's current step.
func (w *SnapshotWriter) Emit(sim *golbm.Simulation) error {
	step := sim.CurrentStep()
	final := step == w.Steps

	if final || multiple(step, w.SnapshotEvery) {
		if w.Log {
			log.Printf("Writing snapshot %d.", step)
		}
		if err := WriteSnapshot(w.Dir, w.Prefix, sim.Snapshot()); err != nil {
			return err
		}
	}

	if final || multiple(step, w.CheckpointEvery) {
		if w.Log {
			log.Printf("Writing checkpoint %d.", step)
		}
		cp := sim.Checkpoint()
		fname := CheckpointName(w.Dir, w.Prefix, step)
		if err := WriteCheckpoint(fname, cp); err != nil {
			return err
		}

		if w.SavePopulations {
			fls := sim.Fluids()
			names := make([]string, len(fls))
			for i := range fls {
				names[i] = fls[i].Name
			}
			if err := WritePopulations(w.Dir, w.Prefix, names, cp); err != nil {
				return err
			}
		}
	}
	return nil
}

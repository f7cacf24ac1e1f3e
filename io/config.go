package io

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/golbm"
	"github.com/phil-mansfield/golbm/geom"
)

// ExampleRunConfig is printed by -ExampleConfig Run.
const ExampleRunConfig = `[Run]

#######################
# Required Parameters #
#######################

# Domain size in nodes.
Nx = 200
Ny = 100

# Total number of steps. A restarted run continues from the step of its
# checkpoint up to Steps.
Steps = 20000

# Directory that output files are written to.
Output = path/to/output/dir

#######################
# Optional Parameters #
#######################

# Prefix of every output file. Defaults to "lbm".
# Prefix = droplet

# Text snapshots of density and velocity are written every SnapshotEvery
# steps, binary checkpoints every CheckpointEvery steps. Both are always
# written at the final step.
# SnapshotEvery = 1000
# CheckpointEvery = 5000

# Also write every checkpoint as one text matrix per component and direction.
# SavePopulations = false

# The solid geometry is either a 0/1 text matrix (1 = fluid) or a geometry
# configuration file (see -ExampleConfig Geometry). With neither, the domain
# is fully periodic.
# Geometry = path/to/mask.txt
# GeometryConfig = path/to/geometry.config

# Fluid order when more than one [Fluid] section is given.
# Fluids = water, oil

# Restart from a binary checkpoint, or from population dumps with the
# given path prefix at RestartStep.
# Restart = path/to/lbm_5000.lbm
# RestartDumps = path/to/output/dir/lbm
# RestartStep = 5000

# Threads = 0
# LogFile = path/to/log.txt
# ProfileFile = path/to/cpu.prof

[Fluid "water"]
# Relaxation time, must be larger than 0.5.
Tau = 1.0
# Bulk density, and the density of the component when dissolved in another.
Density = 2.0
# DissolvedDensity = 0.06
# AdhesionG = 0.0

# [Fluid "oil"]
# Tau = 1.0
# Density = 2.0
# DissolvedDensity = 0.06

# [Interaction]
# Shan-Chen coupling between the two components.
# G = 1.5

[Force]
# One of None, Uniform, Field. Field reads one text matrix per component of
# the force.
Type = Uniform
X = 1e-6
Y = 0
# FieldX = path/to/fx.txt
# FieldY = path/to/fy.txt

# [Droplet]
# Fills a Circle (Radius) or Rectangle (HalfX, HalfY) with Fluid and the rest
# of the domain with the other component.
# Fluid = oil
# Shape = Circle
# X = 100
# Y = 50
# Radius = 20

# [Perturbation]
# Random relative density perturbation of a uniform mixture.
# Amplitude = 0.01
# Seed = 1
`

type RunSection struct {
	// Required
	Nx, Ny int
	Steps  int
	Output string

	// Optional
	Prefix          string
	SnapshotEvery   int
	CheckpointEvery int
	SavePopulations bool
	Geometry        string
	GeometryConfig  string
	Fluids          string
	Restart         string
	RestartDumps    string
	RestartStep     int
	Threads         int
	LogFile         string
	ProfileFile     string
}

func (run *RunSection) CheckInit() error {
	if run.Nx <= 0 || run.Ny <= 0 {
		return fmt.Errorf(
			"Nx and Ny must be positive, but are %d and %d.", run.Nx, run.Ny,
		)
	} else if run.Steps <= 0 {
		return fmt.Errorf("Steps must be positive, but is %d.", run.Steps)
	} else if run.Output == "" {
		return fmt.Errorf("Need to specify an Output directory.")
	}

	if run.Prefix == "" {
		run.Prefix = "lbm"
	}
	if run.SnapshotEvery < 0 || run.CheckpointEvery < 0 {
		return fmt.Errorf("SnapshotEvery and CheckpointEvery must be non-negative.")
	}
	if run.Geometry != "" && run.GeometryConfig != "" {
		return fmt.Errorf("Only one of Geometry and GeometryConfig may be set.")
	}
	if run.Restart != "" && run.RestartDumps != "" {
		return fmt.Errorf("Only one of Restart and RestartDumps may be set.")
	}
	if run.RestartStep < 0 {
		return fmt.Errorf(
			"RestartStep must be non-negative, but is %d.", run.RestartStep,
		)
	}
	if run.Threads < 0 {
		return fmt.Errorf("Threads must be non-negative, but is %d.", run.Threads)
	}
	return nil
}

type FluidConfig struct {
	// Required
	Tau float64

	// Optional
	Density          float64
	DissolvedDensity float64
	AdhesionG        float64
}

func (fl *FluidConfig) CheckInit(name string) error {
	if fl.Tau <= 0.5 {
		return fmt.Errorf(
			"Tau of Fluid '%s' must be larger than 0.5, but is %g.",
			name, fl.Tau,
		)
	}
	if fl.Density == 0 {
		fl.Density = 1
	} else if fl.Density < 0 {
		return fmt.Errorf(
			"Fluid '%s' given a negative Density, %g.", name, fl.Density,
		)
	}
	if fl.DissolvedDensity < 0 {
		return fmt.Errorf(
			"Fluid '%s' given a negative DissolvedDensity, %g.",
			name, fl.DissolvedDensity,
		)
	}
	return nil
}

type InteractionConfig struct {
	G float64
}

type ForceConfig struct {
	Type           string
	X, Y           float64
	FieldX, FieldY string
}

func (fc *ForceConfig) CheckInit() error {
	switch strings.ToLower(fc.Type) {
	case "", "none":
		fc.Type = "None"
	case "uniform":
		fc.Type = "Uniform"
	case "field":
		fc.Type = "Field"
		if fc.FieldX == "" || fc.FieldY == "" {
			return fmt.Errorf("A Field force needs both FieldX and FieldY.")
		}
	default:
		return fmt.Errorf(
			"Force Type must be None, Uniform, or Field, but is '%s'.",
			fc.Type,
		)
	}
	return nil
}

type DropletConfig struct {
	Fluid        string
	Shape        string
	X, Y         float64
	Radius       float64
	HalfX, HalfY float64
}

func (d *DropletConfig) IsSet() bool { return d.Fluid != "" }

func (d *DropletConfig) CheckInit(nx, ny int) error {
	if !d.IsSet() {
		return nil
	}
	switch strings.ToLower(d.Shape) {
	case "", "circle":
		d.Shape = "Circle"
		if d.Radius <= 0 {
			return fmt.Errorf(
				"Droplet needs a positive Radius, but has %g.", d.Radius,
			)
		}
	case "rectangle":
		d.Shape = "Rectangle"
		if d.HalfX <= 0 || d.HalfY <= 0 {
			return fmt.Errorf(
				"Droplet needs positive HalfX and HalfY, but has %g and %g.",
				d.HalfX, d.HalfY,
			)
		}
	default:
		return fmt.Errorf(
			"Droplet Shape must be Circle or Rectangle, but is '%s'.", d.Shape,
		)
	}

	if d.X < 0 || d.X >= float64(nx) || d.Y < 0 || d.Y >= float64(ny) {
		return fmt.Errorf(
			"Droplet center (%g, %g) is outside the %d x %d domain.",
			d.X, d.Y, nx, ny,
		)
	}
	return nil
}

type PerturbationConfig struct {
	Amplitude float64
	Seed      int64
}

// RunConfig is the gcfg file which configures a simulation.
type RunConfig struct {
	Run          RunSection
	Fluid        map[string]*FluidConfig
	Interaction  InteractionConfig
	Force        ForceConfig
	Droplet      DropletConfig
	Perturbation PerturbationConfig

	// dir is the directory of the config file. Relative paths in the file
	// are resolved against it.
	dir string
	// names is the component order.
	names []string
}

// ReadRunConfig reads and validates a run config file.
func ReadRunConfig(fname string) (*RunConfig, error) {
	rc := &RunConfig{}
	if err := gcfg.ReadFileInto(rc, fname); err != nil {
		return nil, err
	}
	rc.dir = filepath.Dir(fname)
	if err := rc.CheckInit(); err != nil {
		return nil, err
	}
	return rc, nil
}

// ReadRunConfigString parses a run config held in memory. Relative paths are
// resolved against the working directory.
func ReadRunConfigString(text string) (*RunConfig, error) {
	rc := &RunConfig{}
	if err := gcfg.ReadStringInto(rc, text); err != nil {
		return nil, err
	}
	rc.dir = "."
	if err := rc.CheckInit(); err != nil {
		return nil, err
	}
	return rc, nil
}

func (rc *RunConfig) CheckInit() error {
	if err := rc.Run.CheckInit(); err != nil {
		return err
	}

	if len(rc.Fluid) == 0 {
		return fmt.Errorf("Need at least one [Fluid] section.")
	} else if len(rc.Fluid) > golbm.MaxComponents {
		return fmt.Errorf(
			"At most %d [Fluid] sections may be given, but there are %d.",
			golbm.MaxComponents, len(rc.Fluid),
		)
	}
	for name, fl := range rc.Fluid {
		if err := fl.CheckInit(name); err != nil {
			return err
		}
	}

	names, err := rc.fluidOrder()
	if err != nil {
		return err
	}
	rc.names = names

	if err := rc.Force.CheckInit(); err != nil {
		return err
	}
	if err := rc.Droplet.CheckInit(rc.Run.Nx, rc.Run.Ny); err != nil {
		return err
	}
	if rc.Droplet.IsSet() {
		if _, ok := rc.Fluid[rc.Droplet.Fluid]; !ok {
			return fmt.Errorf(
				"Droplet Fluid '%s' has no [Fluid] section.", rc.Droplet.Fluid,
			)
		}
	}

	a := rc.Perturbation.Amplitude
	if a < 0 || a >= 1 || math.IsNaN(a) {
		return fmt.Errorf(
			"Perturbation Amplitude must be in [0, 1), but is %g.", a,
		)
	}
	return nil
}

func (rc *RunConfig) fluidOrder() ([]string, error) {
	if rc.Run.Fluids == "" {
		if len(rc.Fluid) > 1 {
			return nil, fmt.Errorf(
				"Run.Fluids must give the component order when more than " +
					"one [Fluid] section is given.",
			)
		}
		for name := range rc.Fluid {
			return []string{name}, nil
		}
	}

	names := strings.FieldsFunc(rc.Run.Fluids, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(names) != len(rc.Fluid) {
		return nil, fmt.Errorf(
			"Run.Fluids lists %d fluids, but there are %d [Fluid] sections.",
			len(names), len(rc.Fluid),
		)
	}
	seen := map[string]bool{}
	for _, name := range names {
		if _, ok := rc.Fluid[name]; !ok {
			return nil, fmt.Errorf(
				"Run.Fluids lists '%s', which has no [Fluid] section.", name,
			)
		} else if seen[name] {
			return nil, fmt.Errorf("Run.Fluids lists '%s' twice.", name)
		}
		seen[name] = true
	}
	return names, nil
}

// FluidNames returns the fluid names in component order.
func (rc *RunConfig) FluidNames() []string { return append([]string{}, rc.names...) }

// Path resolves a path from the config file.
func (rc *RunConfig) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(rc.dir, p)
}

// Params builds the simulation parameters, reading force fields if needed.
func (rc *RunConfig) Params() (golbm.Params, error) {
	p := golbm.Params{
		Fluids:  make([]golbm.Fluid, len(rc.names)),
		G:       rc.Interaction.G,
		Threads: rc.Run.Threads,
	}
	for i, name := range rc.names {
		fl := rc.Fluid[name]
		p.Fluids[i] = golbm.Fluid{
			Name: name, Tau: fl.Tau, AdhesionG: fl.AdhesionG,
		}
	}

	switch rc.Force.Type {
	case "None":
		p.Force = golbm.NoForce()
	case "Uniform":
		p.Force = golbm.Uniform(rc.Force.X, rc.Force.Y)
	case "Field":
		nx, ny := rc.Run.Nx, rc.Run.Ny
		fx, err := ReadField(rc.Path(rc.Force.FieldX), nx, ny)
		if err != nil {
			return p, err
		}
		fy, err := ReadField(rc.Path(rc.Force.FieldY), nx, ny)
		if err != nil {
			return p, err
		}
		p.Force = golbm.Field(fx, fy)
	}
	return p, nil
}

// Mask builds the geometry of the run.
func (rc *RunConfig) Mask() (*geom.Mask, error) {
	nx, ny := rc.Run.Nx, rc.Run.Ny

	switch {
	case rc.Run.Geometry != "":
		mask, err := ReadMask(rc.Path(rc.Run.Geometry))
		if err != nil {
			return nil, err
		}
		if err := mask.CheckDims(nx, ny); err != nil {
			return nil, err
		}
		return mask, nil

	case rc.Run.GeometryConfig != "":
		gc, err := ReadGeometryConfig(rc.Path(rc.Run.GeometryConfig))
		if err != nil {
			return nil, err
		}
		return gc.Mask(nx, ny)
	}
	return geom.NewMask(nx, ny)
}

// InitialCondition returns the starting state described by the [Droplet]
// and [Perturbation] sections, or a uniform state if neither is set.
func (rc *RunConfig) InitialCondition() golbm.InitialCondition {
	density := make([]float64, len(rc.names))
	dissolved := make([]float64, len(rc.names))
	comp := 0
	for i, name := range rc.names {
		density[i] = rc.Fluid[name].Density
		dissolved[i] = rc.Fluid[name].DissolvedDensity
		if name == rc.Droplet.Fluid {
			comp = i
		}
	}

	d := &rc.Droplet
	switch {
	case d.IsSet() && d.Shape == "Rectangle":
		return &golbm.FluidRectangle{
			Component: comp, X: d.X, Y: d.Y, HalfX: d.HalfX, HalfY: d.HalfY,
			Density: density, Dissolved: dissolved,
		}
	case d.IsSet():
		return &golbm.Droplet{
			Component: comp, X: d.X, Y: d.Y, Radius: d.Radius,
			Density: density, Dissolved: dissolved,
		}
	case rc.Perturbation.Amplitude > 0:
		return &golbm.Perturbed{
			Density:   density,
			Amplitude: rc.Perturbation.Amplitude,
			Seed:      rc.Perturbation.Seed,
		}
	}
	return golbm.UniformDensity(density)
}

// Checkpoint returns the restart state of the run, or nil if the run starts
// from its initial condition.
func (rc *RunConfig) Checkpoint() (*golbm.Checkpoint, error) {
	switch {
	case rc.Run.Restart != "":
		return ReadCheckpoint(rc.Path(rc.Run.Restart))
	case rc.Run.RestartDumps != "":
		path := rc.Path(rc.Run.RestartDumps)
		dir, prefix := filepath.Split(path)
		return ReadPopulations(
			dir, prefix, rc.names, rc.Run.RestartStep, rc.Run.Nx, rc.Run.Ny,
		)
	}
	return nil, nil
}

// Simulation builds the simulation described by the config, restoring it
// from a checkpoint if one is configured.
func (rc *RunConfig) Simulation() (*golbm.Simulation, error) {
	mask, err := rc.Mask()
	if err != nil {
		return nil, err
	}
	params, err := rc.Params()
	if err != nil {
		return nil, err
	}

	cp, err := rc.Checkpoint()
	if err != nil {
		return nil, err
	} else if cp != nil {
		return golbm.Restore(mask, params, cp)
	}
	return golbm.New(mask, params, rc.InitialCondition())
}

// Writer returns the emitter which writes the run's output files.
func (rc *RunConfig) Writer() *SnapshotWriter {
	return &SnapshotWriter{
		Dir:             rc.Path(rc.Run.Output),
		Prefix:          rc.Run.Prefix,
		Steps:           rc.Run.Steps,
		SnapshotEvery:   rc.Run.SnapshotEvery,
		CheckpointEvery: rc.Run.CheckpointEvery,
		SavePopulations: rc.Run.SavePopulations,
	}
}

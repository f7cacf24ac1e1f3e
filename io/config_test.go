package io

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/phil-mansfield/golbm"
	"github.com/phil-mansfield/golbm/geom"
)

const dropletConfig = `
[Run]
Nx = 40
Ny = 30
Steps = 100
Output = out
Fluids = water, oil
SnapshotEvery = 50

[Fluid "oil"]
Tau = 0.8
Density = 2.0
DissolvedDensity = 0.06

[Fluid "water"]
Tau = 1.0
Density = 1.5
DissolvedDensity = 0.05
AdhesionG = 0.1

[Interaction]
G = 1.5

[Droplet]
Fluid = oil
X = 20
Y = 15
Radius = 6
`

func TestExampleRunConfig(t *testing.T) {
	rc, err := ReadRunConfigString(ExampleRunConfig)
	require.NoError(t, err)

	assert.Equal(t, "lbm", rc.Run.Prefix)
	assert.Equal(t, []string{"water"}, rc.FluidNames())

	params, err := rc.Params()
	require.NoError(t, err)
	require.Len(t, params.Fluids, 1)
	assert.Equal(t, "water", params.Fluids[0].Name)
	assert.Equal(t, 1.0, params.Fluids[0].Tau)
	assert.Equal(t, golbm.Uniform(1e-6, 0), params.Force)

	assert.Equal(t, golbm.UniformDensity{2}, rc.InitialCondition())

	mask, err := rc.Mask()
	require.NoError(t, err)
	assert.Equal(t, 200*100, mask.FluidCount())

	cp, err := rc.Checkpoint()
	require.NoError(t, err)
	assert.Nil(t, cp)
}

func TestDropletConfig(t *testing.T) {
	rc, err := ReadRunConfigString(dropletConfig)
	require.NoError(t, err)
	assert.Equal(t, []string{"water", "oil"}, rc.FluidNames())

	params, err := rc.Params()
	require.NoError(t, err)
	assert.Equal(t, 1.5, params.G)
	assert.Equal(t, golbm.NoForce(), params.Force)
	assert.Equal(t, []golbm.Fluid{
		{Name: "water", Tau: 1, AdhesionG: 0.1},
		{Name: "oil", Tau: 0.8},
	}, params.Fluids)

	assert.Equal(t, &golbm.Droplet{
		Component: 1, X: 20, Y: 15, Radius: 6,
		Density: []float64{1.5, 2}, Dissolved: []float64{0.05, 0.06},
	}, rc.InitialCondition())

	sim, err := rc.Simulation()
	require.NoError(t, err)
	assert.Equal(t, golbm.Initialized, sim.State())

	w := rc.Writer()
	assert.Equal(t, "out", w.Dir)
	assert.Equal(t, 100, w.Steps)
	assert.Equal(t, 50, w.Interval())
}

func TestInitialConditionSections(t *testing.T) {
	rect := strings.Replace(dropletConfig, "Radius = 6",
		"Shape = Rectangle\nHalfX = 4\nHalfY = 3", 1)
	rc, err := ReadRunConfigString(rect)
	require.NoError(t, err)
	assert.Equal(t, &golbm.FluidRectangle{
		Component: 1, X: 20, Y: 15, HalfX: 4, HalfY: 3,
		Density: []float64{1.5, 2}, Dissolved: []float64{0.05, 0.06},
	}, rc.InitialCondition())

	noDrop := dropletConfig[:strings.Index(dropletConfig, "[Droplet]")]
	perturbed := noDrop + "[Perturbation]\nAmplitude = 0.01\nSeed = 42\n"
	rc, err = ReadRunConfigString(perturbed)
	require.NoError(t, err)
	assert.Equal(t, &golbm.Perturbed{
		Density: []float64{1.5, 2}, Amplitude: 0.01, Seed: 42,
	}, rc.InitialCondition())
}

func TestRunConfigErrors(t *testing.T) {
	tests := []struct {
		name, old, new string
	}{
		{"no size", "Nx = 40", ""},
		{"no steps", "Steps = 100", "Steps = 0"},
		{"no output", "Output = out", ""},
		{"small tau", "Tau = 0.8", "Tau = 0.5"},
		{"negative density", "Density = 2.0", "Density = -2.0"},
		{"no order", "Fluids = water, oil", ""},
		{"short order", "Fluids = water, oil", "Fluids = water"},
		{"unknown fluid", "Fluids = water, oil", "Fluids = water, air"},
		{"repeated fluid", "Fluids = water, oil", "Fluids = water, water"},
		{"force type", "[Interaction]", "[Force]\nType = Sideways\n[Interaction]"},
		{"field files", "[Interaction]", "[Force]\nType = Field\n[Interaction]"},
		{"droplet fluid", "Fluid = oil", "Fluid = air"},
		{"droplet radius", "Radius = 6", "Radius = 0"},
		{"droplet shape", "Radius = 6", "Radius = 6\nShape = Blob"},
		{"droplet center", "X = 20", "X = 40"},
		{"amplitude", "[Droplet]", "[Perturbation]\nAmplitude = 1\n[Droplet]"},
		{"two geometries", "SnapshotEvery = 50",
			"Geometry = a.txt\nGeometryConfig = b.config"},
		{"two restarts", "SnapshotEvery = 50",
			"Restart = a.lbm\nRestartDumps = out/lbm"},
		{"threads", "SnapshotEvery = 50", "Threads = -1"},
		{"unknown variable", "SnapshotEvery = 50", "Snapshots = 50"},
		{"three fluids", "[Interaction]",
			"[Fluid \"air\"]\nTau = 1\n[Interaction]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Replace(dropletConfig, tt.old, tt.new, 1)
			require.NotEqual(t, dropletConfig, text)
			_, err := ReadRunConfigString(text)
			assert.Error(t, err)
		})
	}
}

func TestRunConfigFiles(t *testing.T) {
	dir := t.TempDir()
	nx, ny := 30, 12

	fx := mat.NewDense(ny, nx, nil)
	fy := mat.NewDense(ny, nx, nil)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			fx.Set(y, x, 1e-6*float64(y))
		}
	}
	require.NoError(t, WriteMatrix(filepath.Join(dir, "fx.txt"), fx))
	require.NoError(t, WriteMatrix(filepath.Join(dir, "fy.txt"), fy))

	geometry := "[Walls \"w\"]\nThickness = 1\n[Circle \"c\"]\n" +
		"Diameter = 5\nX = 10\nY = 6\n"
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "geometry.config"), []byte(geometry), 0644,
	))

	cfg := `[Run]
Nx = 30
Ny = 12
Steps = 20
Output = .
Prefix = field
GeometryConfig = geometry.config

[Fluid "water"]
Tau = 0.9

[Force]
Type = Field
FieldX = fx.txt
FieldY = fy.txt
`
	fname := filepath.Join(dir, "run.config")
	require.NoError(t, os.WriteFile(fname, []byte(cfg), 0644))

	rc, err := ReadRunConfig(fname)
	require.NoError(t, err)

	mask, err := rc.Mask()
	require.NoError(t, err)
	assert.Equal(t, 2*nx+21, mask.SolidCount())

	params, err := rc.Params()
	require.NoError(t, err)
	assert.Equal(t, golbm.FieldForce, params.Force.Kind)
	assert.Equal(t, fx.At(5, 3), params.Force.FieldX[mask.Idx(3, 5)])

	sim, err := rc.Simulation()
	require.NoError(t, err)
	w := rc.Writer()
	require.NoError(t, sim.Run(w.Steps, w.Interval(), w.Emit))
	assert.FileExists(t, CheckpointName(dir, "field", 20))
	assert.FileExists(t, SnapshotName(dir, "field", "water", DensityField, 20))

	// Restart the same run from its own checkpoint and from a mask file.
	require.NoError(t, WriteMask(filepath.Join(dir, "mask.txt"), mask))
	restart := strings.Replace(cfg, "GeometryConfig = geometry.config",
		"Geometry = mask.txt\nRestart = field_20.lbm", 1)
	restart = strings.Replace(restart, "Steps = 20", "Steps = 30", 1)
	require.NoError(t, os.WriteFile(fname, []byte(restart), 0644))

	rc, err = ReadRunConfig(fname)
	require.NoError(t, err)
	sim2, err := rc.Simulation()
	require.NoError(t, err)
	assert.Equal(t, 20, sim2.CurrentStep())
	assert.Equal(t, sim.Populations(0), sim2.Populations(0))
}

func TestRunConfigMaskMismatch(t *testing.T) {
	dir := t.TempDir()
	mask, err := geom.NewMask(10, 10)
	require.NoError(t, err)
	require.NoError(t, WriteMask(filepath.Join(dir, "mask.txt"), mask))

	cfg := "[Run]\nNx = 12\nNy = 10\nSteps = 1\nOutput = .\n" +
		"Geometry = mask.txt\n[Fluid \"a\"]\nTau = 1\n"
	fname := filepath.Join(dir, "run.config")
	require.NoError(t, os.WriteFile(fname, []byte(cfg), 0644))

	rc, err := ReadRunConfig(fname)
	require.NoError(t, err)
	_, err = rc.Mask()
	assert.Error(t, err)
	_, err = rc.Simulation()
	assert.Error(t, err)
}

func TestExampleGeometryConfig(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "geometry.config")
	require.NoError(t, os.WriteFile(fname, []byte(ExampleGeometryConfig), 0644))

	gc, err := ReadGeometryConfig(fname)
	require.NoError(t, err)

	shapes, err := gc.Shapes()
	require.NoError(t, err)
	names := []string{}
	for _, s := range shapes {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"Walls channel", "Rectangle block", "Square box", "Ellipse lens",
		"Circle post", "Array posts",
	}, names)
	assert.Equal(t, geom.StaggeredArray, shapes[5].Shape.Kind)
	assert.Len(t, shapes[5].Shape.Centers(), 3*10+2*9)

	mask, err := gc.Mask(300, 50)
	require.NoError(t, err)
	assert.Equal(t, 600+55+25+37+37+48*21, mask.SolidCount())
}

func TestGeometryConfigErrors(t *testing.T) {
	tests := []struct {
		name, text string
	}{
		{"thickness", "[Walls \"w\"]\nAxis = X\n"},
		{"axis", "[Walls \"w\"]\nThickness = 1\nAxis = Z\n"},
		{"object", "[Array \"a\"]\nObject = Star\nLX = 3\nXF = 20\nYF = 20\n"},
		{"layout", "[Array \"a\"]\nObject = Square\nLX = 3\nXF = 20\n" +
			"YF = 20\nLayout = Hexagonal\n"},
		{"counts", "[Array \"a\"]\nObject = Square\nLX = 3\nXF = 20\n" +
			"YF = 20\nNumX = 3\n"},
		{"overlap", "[Square \"a\"]\nLength = 5\nX = 10\nY = 10\n" +
			"[Circle \"b\"]\nDiameter = 5\nX = 12\nY = 10\n"},
		{"bounds", "[Circle \"b\"]\nDiameter = 9\nX = 2\nY = 10\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fname := filepath.Join(t.TempDir(), "geometry.config")
			require.NoError(t, os.WriteFile(fname, []byte(tt.text), 0644))
			gc, err := ReadGeometryConfig(fname)
			require.NoError(t, err)
			_, err = gc.Mask(30, 30)
			assert.Error(t, err)
		})
	}

	_, err := ReadGeometryConfig(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

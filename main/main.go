package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"sort"
	"strings"

	"github.com/phil-mansfield/golbm/compare"
	"github.com/phil-mansfield/golbm/io"
)

type FileGroup struct {
	log, prof *os.File
}

func (fg *FileGroup) Close() {
	if fg.log != nil {
		err := fg.log.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
		fg.log = nil
	}

	if fg.prof != nil {
		pprof.StopCPUProfile()
		err := fg.prof.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
		fg.prof = nil
	}
}

func (fg *FileGroup) StartProfile(fname string) {
	if fname == "" || fg.prof != nil {
		return
	}

	var err error
	fg.prof, err = os.Create(fname)
	if err != nil {
		log.Fatal(err.Error())
	}
	err = pprof.StartCPUProfile(fg.prof)
	if err != nil {
		log.Fatal(err.Error())
	}
}

func main() {
	var (
		run, geometry, cmp, exampleConfig string
		out, profile                      string
		nx, ny                            int
		rtol, atol                        float64
		verbose                           bool
	)
	vars := map[string]*string{
		"Run":           &run,
		"Geometry":      &geometry,
		"Compare":       &cmp,
		"ExampleConfig": &exampleConfig,
	}

	flag.StringVar(&run, "Run", "", "Configuration file for [Run] mode.")
	flag.StringVar(
		&geometry, "Geometry", "",
		"Geometry configuration file for [Geometry] mode, which writes the "+
			"resulting mask to -Out.",
	)
	flag.StringVar(
		&cmp, "Compare", "",
		"Text matrix for [Compare] mode. It is compared against the "+
			"reference matrix given as the only positional argument.",
	)
	flag.StringVar(
		&exampleConfig, "ExampleConfig", "",
		"Prints an example configuration file of the specified type to "+
			"stdout. Accepted arguments are 'Run' and 'Geometry'.",
	)

	flag.StringVar(&out, "Out", "", "Output mask file for [Geometry] mode.")
	flag.IntVar(&nx, "Nx", 0, "Domain width for [Geometry] mode.")
	flag.IntVar(&ny, "Ny", 0, "Domain height for [Geometry] mode.")
	flag.Float64Var(&rtol, "RTol", 1e-5, "Relative tolerance for [Compare] mode.")
	flag.Float64Var(&atol, "ATol", 1e-4, "Absolute tolerance for [Compare] mode.")
	flag.BoolVar(&verbose, "Log", false, "Log progress while running.")
	flag.StringVar(&profile, "PProf", "", "Write a CPU profile to this file.")

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	fg := &FileGroup{}
	defer fg.Close()
	fg.StartProfile(profile)

	switch modeName {
	case "Run":
		rc, err := io.ReadRunConfig(run)
		if err != nil {
			log.Fatal(err.Error())
		}
		runMain(rc, verbose, fg)

	case "Geometry":
		if nx <= 0 || ny <= 0 {
			log.Fatal("[Geometry] mode needs positive -Nx and -Ny values.")
		} else if out == "" {
			log.Fatal("[Geometry] mode needs an -Out file.")
		}
		geometryMain(geometry, nx, ny, out)

	case "Compare":
		args := flag.Args()
		if len(args) != 1 {
			log.Fatal("[Compare] mode needs exactly one reference file.")
		}
		if !compareMain(cmp, args[0], rtol, atol) {
			fg.Close()
			os.Exit(1)
		}

	case "ExampleConfig":
		switch strings.ToLower(exampleConfig) {
		case "run":
			fmt.Print(io.ExampleRunConfig)
		case "geometry":
			fmt.Print(io.ExampleGeometryConfig)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. Only recognized " +
					"arguments are 'Run' and 'Geometry'.",
			)
		}
	default:
		panic("Impossible")
	}
}

func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" {
			setNames = append(setNames, name)
		}
	}
	sort.Strings(setNames)

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but golbm "+
				"only accepts one mode flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

func runMain(rc *io.RunConfig, verbose bool, fg *FileGroup) {
	var err error

	if rc.Run.LogFile != "" {
		fg.log, err = os.Create(rc.Path(rc.Run.LogFile))
		if err != nil {
			log.Fatal(err.Error())
		}
		log.SetOutput(fg.log)
	}
	fg.StartProfile(rc.Path(rc.Run.ProfileFile))

	log.Println("Running Run main.")

	sim, err := rc.Simulation()
	if err != nil {
		log.Fatal(err.Error())
	}
	sim.Log(verbose)

	w := rc.Writer()
	w.Log = verbose
	if err = os.MkdirAll(w.Dir, 0777); err != nil {
		log.Fatal(err.Error())
	}

	if sim.CurrentStep() >= w.Steps {
		log.Fatalf(
			"Restarted at step %d, but Steps is only %d.",
			sim.CurrentStep(), w.Steps,
		)
	}

	log.Printf(
		"Running %s from step %d to step %d with %d workers.",
		strings.Join(rc.FluidNames(), "/"), sim.CurrentStep(), w.Steps,
		sim.Workers(),
	)

	if err = sim.Run(w.Steps, w.Interval(), w.Emit); err != nil {
		log.Fatal(err.Error())
	}

	for c, name := range rc.FluidNames() {
		log.Printf("Final mass of %s: %.10g", name, sim.Mass(c))
	}
}

func geometryMain(fname string, nx, ny int, out string) {
	gc, err := io.ReadGeometryConfig(fname)
	if err != nil {
		log.Fatal(err.Error())
	}

	shapes, err := gc.Shapes()
	if err != nil {
		log.Fatal(err.Error())
	}
	mask, err := gc.Mask(nx, ny)
	if err != nil {
		log.Fatal(err.Error())
	}

	for _, s := range shapes {
		log.Printf(
			"%s: %d solid nodes", s.Name, s.Shape.ExpectedCount(nx, ny),
		)
	}
	log.Printf(
		"Writing %d x %d mask with %d solid nodes to %s",
		nx, ny, mask.SolidCount(), out,
	)

	if err = io.WriteMask(out, mask); err != nil {
		log.Fatal(err.Error())
	}
}

func compareMain(a, b string, rtol, atol float64) bool {
	r, err := compare.Files(a, b, rtol, atol)
	if err != nil {
		log.Fatal(err.Error())
	}
	fmt.Println(r)
	return r.OK()
}

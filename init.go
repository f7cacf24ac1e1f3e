package golbm

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/phil-mansfield/golbm/geom"
)

// InitialCondition gives the starting density of every component at every
// node. Solid nodes are ignored.
type InitialCondition interface {
	Densities(mask *geom.Mask, components int) ([][]float64, error)
}

// UniformDensity fills the domain with one constant density per component.
type UniformDensity []float64

func (u UniformDensity) Densities(
	mask *geom.Mask, components int,
) ([][]float64, error) {
	if err := checkDensities("Uniform", u, components); err != nil {
		return nil, err
	}
	rhos := makeFields(components, mask.Area)
	for c := range rhos {
		for idx := range rhos[c] {
			rhos[c][idx] = u[c]
		}
	}
	return rhos, nil
}

// Droplet places a circle of one component inside the other. Inside the
// circle the droplet's component has its bulk Density and every other
// component has its Dissolved density; outside, the roles swap.
type Droplet struct {
	Component          int
	X, Y, Radius       float64
	Density, Dissolved []float64
}

func (d *Droplet) Densities(
	mask *geom.Mask, components int,
) ([][]float64, error) {
	if d.Radius <= 0 {
		return nil, fmt.Errorf(
			"Droplet radius must be positive, but is %g.", d.Radius,
		)
	}
	r2 := d.Radius * d.Radius
	return twoPhase(
		"Droplet", mask, components, d.Component, d.Density, d.Dissolved,
		func(x, y int) bool {
			dx, dy := float64(x)-d.X, float64(y)-d.Y
			return dx*dx+dy*dy <= r2
		},
	)
}

// FluidRectangle is a Droplet with a rectangular region of half-widths
// HalfX and HalfY.
type FluidRectangle struct {
	Component          int
	X, Y, HalfX, HalfY float64
	Density, Dissolved []float64
}

func (r *FluidRectangle) Densities(
	mask *geom.Mask, components int,
) ([][]float64, error) {
	if r.HalfX <= 0 || r.HalfY <= 0 {
		return nil, fmt.Errorf(
			"FluidRectangle half-widths must be positive, but are %g and %g.",
			r.HalfX, r.HalfY,
		)
	}
	return twoPhase(
		"FluidRectangle", mask, components, r.Component, r.Density, r.Dissolved,
		func(x, y int) bool {
			return math.Abs(float64(x)-r.X) <= r.HalfX &&
				math.Abs(float64(y)-r.Y) <= r.HalfY
		},
	)
}

func twoPhase(
	name string, mask *geom.Mask, components, comp int,
	density, dissolved []float64, inside func(x, y int) bool,
) ([][]float64, error) {
	if comp < 0 || comp >= components {
		return nil, fmt.Errorf(
			"%s component %d is out of range for %d components.",
			name, comp, components,
		)
	}
	if err := checkDensities(name, density, components); err != nil {
		return nil, err
	}
	if err := checkDensities(name, dissolved, components); err != nil {
		return nil, err
	}

	rhos := makeFields(components, mask.Area)
	for idx := 0; idx < mask.Area; idx++ {
		x, y := mask.Coords(idx)
		in := inside(x, y)
		for c := range rhos {
			if (c == comp) == in {
				rhos[c][idx] = density[c]
			} else {
				rhos[c][idx] = dissolved[c]
			}
		}
	}
	return rhos, nil
}

// Perturbed is a uniform mixture with a random relative perturbation of
// size Amplitude, used to seed spinodal decomposition. The same Seed always
// gives the same field.
type Perturbed struct {
	Density   []float64
	Amplitude float64
	Seed      int64
}

func (p *Perturbed) Densities(
	mask *geom.Mask, components int,
) ([][]float64, error) {
	if err := checkDensities("Perturbed", p.Density, components); err != nil {
		return nil, err
	}
	if p.Amplitude < 0 || p.Amplitude >= 1 {
		return nil, fmt.Errorf(
			"Perturbation amplitude must be in [0, 1), but is %g.",
			p.Amplitude,
		)
	}

	gen := rand.New(rand.NewSource(p.Seed))
	rhos := makeFields(components, mask.Area)
	for c := range rhos {
		for idx := range rhos[c] {
			rhos[c][idx] = p.Density[c] * (1 + p.Amplitude*(2*gen.Float64()-1))
		}
	}
	return rhos, nil
}

func checkDensities(name string, rhos []float64, components int) error {
	if len(rhos) != components {
		return fmt.Errorf(
			"%s needs %d densities, but has %d.", name, components, len(rhos),
		)
	}
	for c, rho := range rhos {
		if rho < 0 {
			return fmt.Errorf(
				"%s density %d is negative, %g.", name, c, rho,
			)
		}
	}
	return nil
}

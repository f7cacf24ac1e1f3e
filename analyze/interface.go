package analyze

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// InterfaceRadius measures the radius of a droplet of the component rho
// centered on the node (cx, cy) of an nx x ny periodic grid. Density is read
// along the four axis rays leaving the center, each ray is fit with a natural
// cubic spline, and the radius is the mean distance at which the spline
// crosses halfway between the center density and the density at the end of
// the ray.
func InterfaceRadius(rho []float64, nx, ny, cx, cy int) (float64, error) {
	if len(rho) != nx*ny {
		return 0, fmt.Errorf(
			"Density field has %d nodes, but the grid is %d x %d.",
			len(rho), nx, ny,
		)
	} else if cx < 0 || cx >= nx || cy < 0 || cy >= ny {
		return 0, fmt.Errorf(
			"Center (%d, %d) is outside the %d x %d grid.", cx, cy, nx, ny,
		)
	}

	rays := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	sum := 0.0
	for _, dir := range rays {
		n := nx / 2
		if dir[0] == 0 {
			n = ny / 2
		}
		profile := make([]float64, n+1)
		for d := range profile {
			x := ((cx+d*dir[0])%nx + nx) % nx
			y := ((cy+d*dir[1])%ny + ny) % ny
			profile[d] = rho[x+y*nx]
		}

		r, err := crossing(profile)
		if err != nil {
			return 0, fmt.Errorf(
				"Ray (%d, %d) from (%d, %d): %w", dir[0], dir[1], cx, cy, err,
			)
		}
		sum += r
	}
	return sum / float64(len(rays)), nil
}

// crossing returns the distance along a sampled profile at which it first
// falls to the midpoint of its end values.
func crossing(profile []float64) (float64, error) {
	n := len(profile)
	if n < 3 {
		return 0, fmt.Errorf("Need at least 3 samples, but have %d.", n)
	}
	in, out := profile[0], profile[n-1]
	if in <= out {
		return 0, fmt.Errorf(
			"Center density %g is not larger than the outer density %g.",
			in, out,
		)
	}
	mid := (in + out) / 2

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	var spline interp.NaturalCubic
	if err := spline.Fit(xs, profile); err != nil {
		return 0, err
	}

	for i := 0; i < n-1; i++ {
		if profile[i] >= mid && profile[i+1] < mid {
			return bisect(func(x float64) float64 {
				return spline.Predict(x) - mid
			}, xs[i], xs[i+1]), nil
		}
	}
	return 0, fmt.Errorf("Profile never crosses %g.", mid)
}

// bisect finds a root of f in [lo, hi], where f(lo) >= 0 > f(hi).
func bisect(f func(float64) float64, lo, hi float64) float64 {
	for i := 0; i < 60 && hi-lo > 1e-12; i++ {
		x := (lo + hi) / 2
		if f(x) >= 0 {
			lo = x
		} else {
			hi = x
		}
	}
	return (lo + hi) / 2
}


package analyze

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tanhDroplet returns a periodic droplet with a diffuse interface of width w.
func tanhDroplet(nx, ny, cx, cy int, r, w float64) []float64 {
	rho := make([]float64, nx*ny)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			dx, dy := minImage(x-cx, nx), minImage(y-cy, ny)
			d := math.Sqrt(dx*dx + dy*dy)
			rho[x+y*nx] = 0.06 + (2-0.06)/2*(1-math.Tanh((d-r)/w))
		}
	}
	return rho
}

func minImage(d, n int) float64 {
	if d > n/2 {
		d -= n
	} else if d < -n/2 {
		d += n
	}
	return float64(d)
}

func TestInterfaceRadius(t *testing.T) {
	tests := []struct {
		nx, ny, cx, cy int
		r              float64
	}{
		{60, 50, 30, 25, 10.3},
		{48, 48, 24, 24, 8},
		{40, 40, 3, 37, 6.5},
	}

	for i, test := range tests {
		rho := tanhDroplet(test.nx, test.ny, test.cx, test.cy, test.r, 2)
		r, err := InterfaceRadius(rho, test.nx, test.ny, test.cx, test.cy)
		require.NoError(t, err, "%d)", i)
		assert.InDelta(t, test.r, r, 0.02, "%d)", i)
	}
}

func TestInterfaceRadiusErrors(t *testing.T) {
	rho := tanhDroplet(20, 20, 10, 10, 4, 1)

	_, err := InterfaceRadius(rho[:10], 20, 20, 10, 10)
	assert.Error(t, err)
	_, err = InterfaceRadius(rho, 20, 20, 20, 10)
	assert.Error(t, err)

	flat := make([]float64, 400)
	for i := range flat {
		flat[i] = 1
	}
	_, err = InterfaceRadius(flat, 20, 20, 10, 10)
	assert.Error(t, err)

	_, err = InterfaceRadius(rho[:4], 2, 2, 0, 0)
	assert.Error(t, err)
}

package geom

import (
	"github.com/phil-mansfield/golbm/lattice"
)

// Grid provides an interface for reasoning over a 1D slice as if it were a
// periodic 2D lattice. Indices are row-major: x varies fastest.
type Grid struct {
	Nx, Ny int
	Area   int
}

// NewGrid returns a new Grid instance.
func NewGrid(nx, ny int) *Grid {
	g := &Grid{}
	g.Init(nx, ny)
	return g
}

// Init initializes a Grid instance.
func (g *Grid) Init(nx, ny int) {
	g.Nx, g.Ny = nx, ny
	g.Area = nx * ny
}

// Idx returns the grid index corresponding to a set of coordinates.
func (g *Grid) Idx(x, y int) int {
	return x + y*g.Nx
}

// IdxCheck returns an index and true if the given coordinate are valid and
// false otherwise.
func (g *Grid) IdxCheck(x, y int) (idx int, ok bool) {
	if !g.BoundsCheck(x, y) {
		return -1, false
	}
	return g.Idx(x, y), true
}

// BoundsCheck returns true if the given coordinates are within the Grid and
// false otherwise.
func (g *Grid) BoundsCheck(x, y int) bool {
	return 0 <= x && 0 <= y && x < g.Nx && y < g.Ny
}

// Coords returns the x, y coordinates of a point from its grid index.
func (g *Grid) Coords(idx int) (x, y int) {
	return idx % g.Nx, idx / g.Nx
}

// Wrap maps arbitrary coordinates back into the grid periodically.
func (g *Grid) Wrap(x, y int) (int, int) {
	return pMod(x, g.Nx), pMod(y, g.Ny)
}

// Neighbor returns the index of the node reached from (x, y) by moving
// along lattice direction k, wrapping around the domain edges.
func (g *Grid) Neighbor(x, y, k int) int {
	nx, ny := g.Wrap(x+lattice.Cx[k], y+lattice.Cy[k])
	return g.Idx(nx, ny)
}

// Source returns the index of the node whose direction-k population arrives
// at (x, y) during streaming.
func (g *Grid) Source(x, y, k int) int {
	sx, sy := g.Wrap(x-lattice.Cx[k], y-lattice.Cy[k])
	return g.Idx(sx, sy)
}

// pMod computes the positive modulo x % y.
func pMod(x, y int) int {
	m := x % y
	if m < 0 {
		m += y
	}
	return m
}

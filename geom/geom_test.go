package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridWrap(t *testing.T) {
	g := NewGrid(4, 3)
	require.Equal(t, 12, g.Area)

	tests := []struct {
		x, y, wx, wy int
	}{
		{0, 0, 0, 0},
		{-1, 0, 3, 0},
		{4, 3, 0, 0},
		{-5, -4, 3, 2},
		{9, 7, 1, 1},
	}
	for _, tt := range tests {
		wx, wy := g.Wrap(tt.x, tt.y)
		assert.Equal(t, tt.wx, wx, "x of Wrap(%d, %d)", tt.x, tt.y)
		assert.Equal(t, tt.wy, wy, "y of Wrap(%d, %d)", tt.x, tt.y)
	}

	for idx := 0; idx < g.Area; idx++ {
		x, y := g.Coords(idx)
		assert.Equal(t, idx, g.Idx(x, y))
	}

	_, ok := g.IdxCheck(4, 0)
	assert.False(t, ok)
	idx, ok := g.IdxCheck(3, 2)
	assert.True(t, ok)
	assert.Equal(t, 11, idx)
}

func TestGridNeighbors(t *testing.T) {
	g := NewGrid(4, 3)

	// Moving SW from the origin wraps to the opposite corner.
	assert.Equal(t, g.Idx(3, 2), g.Neighbor(0, 0, 7))
	assert.Equal(t, g.Idx(1, 0), g.Neighbor(0, 0, 1))
	// The E population arriving at the origin comes from the last column.
	assert.Equal(t, g.Idx(3, 0), g.Source(0, 0, 1))
	assert.Equal(t, g.Idx(1, 1), g.Source(0, 0, 7))

	for k := 0; k < 9; k++ {
		n := g.Neighbor(2, 1, k)
		nx, ny := g.Coords(n)
		assert.Equal(t, g.Idx(2, 1), g.Source(nx, ny, k), "direction %d", k)
	}
}

func TestMaskRows(t *testing.T) {
	rows := [][]int{
		{1, 0, 1},
		{1, 1, 0},
	}
	m, err := MaskFromRows(rows)
	require.NoError(t, err)

	assert.Equal(t, 3, m.Nx)
	assert.Equal(t, 2, m.Ny)
	assert.True(t, m.IsSolid(1, 0))
	assert.True(t, m.IsSolid(2, 1))
	assert.True(t, m.IsFluid(0, 1))
	assert.True(t, m.SolidAt(m.Idx(2, 1)))
	assert.Equal(t, 2, m.SolidCount())
	assert.Equal(t, 4, m.FluidCount())
	assert.Equal(t, rows, m.Rows())

	c := m.Clone()
	require.NoError(t, c.SetSolid(0, 0))
	assert.True(t, m.IsFluid(0, 0))
	assert.Equal(t, 3, c.SolidCount())

	assert.Error(t, c.SetSolid(3, 0))
	assert.NoError(t, m.CheckDims(3, 2))
	assert.Error(t, m.CheckDims(2, 3))
}

func TestMaskRowsErrors(t *testing.T) {
	_, err := MaskFromRows(nil)
	assert.Error(t, err)
	_, err = MaskFromRows([][]int{{1, 1}, {1}})
	assert.Error(t, err)
	_, err = MaskFromRows([][]int{{1, 2}})
	assert.Error(t, err)
	_, err = NewMask(0, 4)
	assert.Error(t, err)
}

func TestShapeFidelity(t *testing.T) {
	nx, ny := 40, 30

	tests := []struct {
		name  string
		s     *Shape
		count int
	}{
		{"rectangle", NewRectangle(5, 3, 10, 10), 15},
		{"even rectangle", NewRectangle(6, 4, 10, 10), 15},
		{"square", NewSquare(4, 30, 20), 9},
		{"circle", NewCircle(7, 20, 15), 37},
		{"even circle", NewCircle(8, 20, 15), 37},
		{"small circle", NewCircle(5, 20, 15), 21},
		{"ellipse", NewEllipse(9, 5, 20, 15), 37},
		{"walls x", NewWalls(2, X), 2 * 2 * 40},
		{"walls y", NewWalls(1, Y), 2 * 1 * 30},
		{"thick walls", NewWalls(20, Y), 40 * 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.s.Validate(nx, ny))
			assert.Equal(t, tt.count, tt.s.ExpectedCount(nx, ny))
			assert.Len(t, tt.s.Nodes(nx, ny), tt.count)

			m, err := NewMask(nx, ny)
			require.NoError(t, err)
			require.NoError(t, m.Place(tt.s))
			assert.Equal(t, tt.count, m.SolidCount())

			for y := 0; y < ny; y++ {
				for x := 0; x < nx; x++ {
					assert.Equal(
						t, tt.s.Contains(x, y, nx, ny), m.IsSolid(x, y),
						"node (%d, %d)", x, y,
					)
				}
			}
		})
	}
}

func TestShapeAnalyticBounds(t *testing.T) {
	nx, ny := 40, 30

	rect := NewRectangle(6, 4, 10, 10)
	for _, n := range rect.Nodes(nx, ny) {
		assert.True(t, n[0] >= 8 && n[0] <= 12, "x = %d", n[0])
		assert.True(t, n[1] >= 9 && n[1] <= 11, "y = %d", n[1])
	}

	circ := NewCircle(7, 20, 15)
	for _, n := range circ.Nodes(nx, ny) {
		dx, dy := float64(n[0]-20), float64(n[1]-15)
		assert.LessOrEqual(t, dx*dx+dy*dy, 3.5*3.5)
	}
	// The extremal nodes of the circle are included.
	assert.True(t, circ.Contains(23, 15, nx, ny))
	assert.True(t, circ.Contains(20, 12, nx, ny))
	assert.False(t, circ.Contains(24, 15, nx, ny))

	ell := NewEllipse(9, 5, 20, 15)
	for _, n := range ell.Nodes(nx, ny) {
		dx, dy := float64(n[0]-20), float64(n[1]-15)
		assert.LessOrEqual(t, dx*dx/(4.5*4.5)+dy*dy/(2.5*2.5), 1.0)
	}

	walls := NewWalls(2, X)
	assert.True(t, walls.Contains(7, 0, nx, ny))
	assert.True(t, walls.Contains(7, 1, nx, ny))
	assert.False(t, walls.Contains(7, 2, nx, ny))
	assert.False(t, walls.Contains(7, 27, nx, ny))
	assert.True(t, walls.Contains(7, 28, nx, ny))
}

func TestRegularArray(t *testing.T) {
	nx, ny := 40, 30

	arr := NewRegularArray(NewSquare(3, 0, 0), 5, 30, 5, 20, 4, 4)
	require.NoError(t, arr.Validate(nx, ny))
	assert.Equal(t, [][2]int{
		{5, 5}, {12, 5}, {19, 5}, {26, 5},
		{5, 12}, {12, 12}, {19, 12}, {26, 12},
	}, arr.Centers())
	assert.Equal(t, 8*9, arr.ExpectedCount(nx, ny))

	m, err := NewMask(nx, ny)
	require.NoError(t, err)
	require.NoError(t, m.Place(arr))
	assert.Equal(t, 8*9, m.SolidCount())

	arrN := NewRegularArrayN(NewCircle(5, 0, 0), 4, 34, 4, 24, 3, 2)
	require.NoError(t, arrN.Validate(nx, ny))
	assert.Equal(t, [][2]int{
		{4, 4}, {16, 4}, {28, 4},
		{4, 19}, {16, 19}, {28, 19},
	}, arrN.Centers())
	assert.Equal(t, 6*21, arrN.ExpectedCount(nx, ny))
	assert.Len(t, arrN.Nodes(nx, ny), 6*21)
}

func TestStaggeredArray(t *testing.T) {
	nx, ny := 40, 30

	arr := NewStaggeredArray(NewSquare(3, 0, 0), 2, 37, 2, 27, 3, 60)
	require.NoError(t, arr.Validate(nx, ny))

	centers := arr.Centers()
	require.Len(t, centers, 3*6+2*5)

	assert.Equal(t, [2]int{2, 2}, centers[0])
	assert.Equal(t, [2]int{32, 2}, centers[5])
	// Odd rows are shifted by half a pitch and pitched by floor(sqrt(27)).
	assert.Equal(t, [2]int{5, 7}, centers[6])
	assert.Equal(t, [2]int{29, 7}, centers[10])
	assert.Equal(t, [2]int{2, 12}, centers[11])
	assert.Equal(t, [2]int{32, 22}, centers[len(centers)-1])

	m, err := NewMask(nx, ny)
	require.NoError(t, err)
	require.NoError(t, m.Place(arr))
	assert.Equal(t, len(centers)*9, m.SolidCount())
	assert.Equal(t, len(centers)*9, arr.ExpectedCount(nx, ny))
}

func TestShapeValidation(t *testing.T) {
	nx, ny := 20, 10

	tests := []struct {
		name string
		s    *Shape
	}{
		{"zero length", NewRectangle(0, 3, 5, 5)},
		{"lower bound", NewRectangle(5, 3, 1, 5)},
		{"upper bound", NewCircle(7, 10, 8)},
		{"thin walls", NewWalls(0, X)},
		{"thick walls", NewWalls(11, X)},
		{"wall object", NewRegularArray(NewWalls(1, X), 0, 10, 0, 10, 1, 1)},
		{"no object", NewRegularArray(nil, 0, 10, 0, 10, 1, 1)},
		{"empty bounds", NewRegularArray(NewSquare(3, 0, 0), 10, 5, 2, 8, 1, 1)},
		{"crowded", NewRegularArrayN(NewSquare(5, 0, 0), 3, 10, 3, 7, 4, 1)},
		{"flat angle", NewStaggeredArray(NewSquare(3, 0, 0), 2, 18, 2, 8, 1, 90)},
		{"unknown", &Shape{Kind: Kind(42)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.s.Validate(nx, ny))

			m, err := NewMask(nx, ny)
			require.NoError(t, err)
			assert.Error(t, m.Place(tt.s))
			assert.Equal(t, 0, m.SolidCount())
		})
	}
}

func TestPlaceOverlap(t *testing.T) {
	m, err := NewMask(30, 30)
	require.NoError(t, err)

	require.NoError(t, m.Place(NewSquare(5, 10, 10)))
	require.Equal(t, 25, m.SolidCount())

	assert.Error(t, m.Place(NewCircle(7, 14, 10)))
	assert.Equal(t, 25, m.SolidCount())

	assert.NoError(t, m.Place(NewCircle(7, 20, 20)))
	assert.Equal(t, 25+37, m.SolidCount())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "StaggeredArray", StaggeredArray.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
	assert.Equal(t, "Y", Y.String())
}

func BenchmarkCircleNodes(b *testing.B) {
	s := NewCircle(101, 200, 200)
	for i := 0; i < b.N; i++ {
		s.Nodes(400, 400)
	}
}

package geom

import (
	"fmt"
)

// Mask is the solid/fluid indicator grid of a simulation. Nodes are fluid
// unless marked otherwise. A Mask is built once, by hand or from shapes, and
// must not change while a simulation is using it.
type Mask struct {
	Grid
	solid []bool
}

// NewMask returns an nx x ny mask with every node marked as fluid.
func NewMask(nx, ny int) (*Mask, error) {
	if nx <= 0 || ny <= 0 {
		return nil, fmt.Errorf(
			"Mask dimensions must be positive, but are %d x %d.", nx, ny,
		)
	}
	m := &Mask{}
	m.Grid.Init(nx, ny)
	m.solid = make([]bool, m.Area)
	return m, nil
}

// MaskFromRows builds a mask from rows of 0 (solid) and 1 (fluid)
// indicators. Row i holds the nodes with y = i.
func MaskFromRows(rows [][]int) (*Mask, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("Mask rows are empty.")
	}
	m, err := NewMask(len(rows[0]), len(rows))
	if err != nil {
		return nil, err
	}

	for y, row := range rows {
		if len(row) != m.Nx {
			return nil, fmt.Errorf(
				"Row %d of mask has %d nodes, but row 0 has %d.",
				y, len(row), m.Nx,
			)
		}
		for x, v := range row {
			switch v {
			case 0:
				m.solid[m.Idx(x, y)] = true
			case 1:
			default:
				return nil, fmt.Errorf(
					"Mask node (%d, %d) is %d, but must be 0 or 1.", x, y, v,
				)
			}
		}
	}
	return m, nil
}

// Rows returns the mask as rows of 0/1 indicators, the inverse of
// MaskFromRows.
func (m *Mask) Rows() [][]int {
	rows := make([][]int, m.Ny)
	for y := range rows {
		rows[y] = make([]int, m.Nx)
		for x := range rows[y] {
			if !m.solid[m.Idx(x, y)] {
				rows[y][x] = 1
			}
		}
	}
	return rows
}

// CheckDims returns an error if the mask does not have the given
// dimensions.
func (m *Mask) CheckDims(nx, ny int) error {
	if m.Nx != nx || m.Ny != ny {
		return fmt.Errorf(
			"Geometry is %d x %d, but the simulation is %d x %d.",
			m.Nx, m.Ny, nx, ny,
		)
	}
	return nil
}

func (m *Mask) IsSolid(x, y int) bool { return m.solid[m.Idx(x, y)] }
func (m *Mask) IsFluid(x, y int) bool { return !m.solid[m.Idx(x, y)] }

// SolidAt and FluidAt are the flat-index versions of IsSolid and IsFluid.
func (m *Mask) SolidAt(idx int) bool { return m.solid[idx] }
func (m *Mask) FluidAt(idx int) bool { return !m.solid[idx] }

// SetSolid marks a single node as solid.
func (m *Mask) SetSolid(x, y int) error {
	idx, ok := m.IdxCheck(x, y)
	if !ok {
		return fmt.Errorf(
			"Node (%d, %d) is outside the %d x %d domain.", x, y, m.Nx, m.Ny,
		)
	}
	m.solid[idx] = true
	return nil
}

// SolidCount returns the number of solid nodes.
func (m *Mask) SolidCount() int {
	n := 0
	for _, s := range m.solid {
		if s {
			n++
		}
	}
	return n
}

// FluidCount returns the number of fluid nodes.
func (m *Mask) FluidCount() int { return m.Area - m.SolidCount() }

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	c := &Mask{Grid: m.Grid, solid: make([]bool, len(m.solid))}
	copy(c.solid, m.solid)
	return c
}

// Place marks every node of the shape as solid. The shape must fit inside
// the domain and must not overlap nodes which are already solid, so a
// failed Place leaves the mask unchanged.
func (m *Mask) Place(s *Shape) error {
	if err := s.Validate(m.Nx, m.Ny); err != nil {
		return err
	}

	nodes := s.Nodes(m.Nx, m.Ny)
	for _, n := range nodes {
		if m.solid[m.Idx(n[0], n[1])] {
			return fmt.Errorf(
				"%s overlaps an existing solid node at (%d, %d).",
				s.Kind, n[0], n[1],
			)
		}
	}
	for _, n := range nodes {
		m.solid[m.Idx(n[0], n[1])] = true
	}
	return nil
}

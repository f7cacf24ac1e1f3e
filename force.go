package golbm

import (
	"fmt"
)

// ForceKind tags the variant stored in a Force.
type ForceKind int

const (
	NoneForce ForceKind = iota
	UniformForce
	FieldForce
)

func (k ForceKind) String() string {
	switch k {
	case NoneForce:
		return "None"
	case UniformForce:
		return "Uniform"
	case FieldForce:
		return "Field"
	}
	return fmt.Sprintf("ForceKind(%d)", int(k))
}

// Force is an external body force, applied identically to every component
// at every fluid node. The zero value applies no force.
type Force struct {
	Kind ForceKind
	// X and Y are the components of a UniformForce.
	X, Y float64
	// FieldX and FieldY hold one value per node of a FieldForce, indexed
	// like geom.Grid. They must not be modified during a run.
	FieldX, FieldY []float64
}

func NoForce() Force { return Force{Kind: NoneForce} }

func Uniform(fx, fy float64) Force {
	return Force{Kind: UniformForce, X: fx, Y: fy}
}

func Field(fx, fy []float64) Force {
	return Force{Kind: FieldForce, FieldX: fx, FieldY: fy}
}

// Validate returns an error if the force cannot be applied to a domain with
// the given number of nodes.
func (f *Force) Validate(area int) error {
	switch f.Kind {
	case NoneForce, UniformForce:
		return nil
	case FieldForce:
		if len(f.FieldX) != area || len(f.FieldY) != area {
			return fmt.Errorf(
				"Force field has %d x and %d y values, but the domain has "+
					"%d nodes.", len(f.FieldX), len(f.FieldY), area,
			)
		}
		return nil
	}
	return fmt.Errorf("Unrecognized force kind %d.", int(f.Kind))
}

// IsZero returns true if the force never contributes.
func (f *Force) IsZero() bool {
	return f.Kind == NoneForce || (f.Kind == UniformForce && f.X == 0 && f.Y == 0)
}

// At returns the force at node idx.
func (f *Force) At(idx int) (fx, fy float64) {
	switch f.Kind {
	case UniformForce:
		return f.X, f.Y
	case FieldForce:
		return f.FieldX[idx], f.FieldY[idx]
	}
	return 0, 0
}

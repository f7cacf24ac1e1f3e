package geom

import (
	"fmt"
	"math"
)

// Kind tags the variant stored in a Shape.
type Kind int

const (
	Rectangle Kind = iota
	Square
	Ellipse
	Circle
	Walls
	RegularArray
	StaggeredArray
)

var kindNames = []string{
	"Rectangle", "Square", "Ellipse", "Circle",
	"Walls", "RegularArray", "StaggeredArray",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Axis is the direction a pair of walls spans.
type Axis int

const (
	// X walls fill the bottom and top rows of the domain.
	X Axis = iota
	// Y walls fill the leftmost and rightmost columns of the domain.
	Y
)

func (a Axis) String() string {
	if a == X {
		return "X"
	}
	return "Y"
}

// Shape is a solid obstacle which can be placed into a Mask. Only the fields
// relevant to Kind are read; the New* constructors fill them in.
//
// Object lengths are given as node counts. Even lengths are shortened by one
// so that every object is symmetric about its center node.
type Shape struct {
	Kind Kind

	// Rectangle, Square, Ellipse, Circle. Square and Circle only use Lx.
	Lx, Ly int
	Xc, Yc int

	// Walls
	Thickness int
	Axis      Axis

	// RegularArray, StaggeredArray. Object is the repeated shape; its
	// center is ignored. Object centers start at (X0, Y0) and stay within
	// Xf, Yf. Dx and Dy are the gaps between neighboring objects unless
	// NumX and NumY are set, in which case the pitch is derived from them.
	// Staggered arrays take their row spacing from Alpha and ignore Dy.
	Object         *Shape
	X0, Xf, Y0, Yf int
	Dx, Dy         int
	NumX, NumY     int
	// Alpha is the stagger angle, in degrees, of a StaggeredArray.
	Alpha float64
}

func NewRectangle(lx, ly, xc, yc int) *Shape {
	return &Shape{Kind: Rectangle, Lx: lx, Ly: ly, Xc: xc, Yc: yc}
}

func NewSquare(l, xc, yc int) *Shape {
	return &Shape{Kind: Square, Lx: l, Ly: l, Xc: xc, Yc: yc}
}

func NewEllipse(lx, ly, xc, yc int) *Shape {
	return &Shape{Kind: Ellipse, Lx: lx, Ly: ly, Xc: xc, Yc: yc}
}

func NewCircle(d, xc, yc int) *Shape {
	return &Shape{Kind: Circle, Lx: d, Ly: d, Xc: xc, Yc: yc}
}

func NewWalls(thickness int, axis Axis) *Shape {
	return &Shape{Kind: Walls, Thickness: thickness, Axis: axis}
}

// NewRegularArray creates a rectangular lattice of copies of obj, separated
// by gaps of dx and dy nodes.
func NewRegularArray(obj *Shape, x0, xf, y0, yf, dx, dy int) *Shape {
	return &Shape{
		Kind: RegularArray, Object: obj,
		X0: x0, Xf: xf, Y0: y0, Yf: yf, Dx: dx, Dy: dy,
	}
}

// NewRegularArrayN creates a lattice of nx by ny copies of obj spread evenly
// across the given bounds.
func NewRegularArrayN(obj *Shape, x0, xf, y0, yf, nx, ny int) *Shape {
	return &Shape{
		Kind: RegularArray, Object: obj,
		X0: x0, Xf: xf, Y0: y0, Yf: yf, NumX: nx, NumY: ny,
	}
}

// NewStaggeredArray creates an array where every other row is shifted by
// half a pitch. The row spacing follows from the stagger angle alpha, given
// in degrees: 60 gives an equilateral arrangement.
func NewStaggeredArray(
	obj *Shape, x0, xf, y0, yf, dx int, alpha float64,
) *Shape {
	return &Shape{
		Kind: StaggeredArray, Object: obj,
		X0: x0, Xf: xf, Y0: y0, Yf: yf, Dx: dx, Alpha: alpha,
	}
}

// isObject returns true for the kinds which describe a single object.
func (s *Shape) isObject() bool {
	switch s.Kind {
	case Rectangle, Square, Ellipse, Circle:
		return true
	}
	return false
}

// sides returns the odd node counts actually covered by an object.
func (s *Shape) sides() (lx, ly int) {
	lx, ly = s.Lx, s.Ly
	if s.Kind == Square || s.Kind == Circle {
		ly = lx
	}
	if lx%2 == 0 {
		lx--
	}
	if ly%2 == 0 {
		ly--
	}
	return lx, ly
}

// at returns a copy of an object shape centered on (xc, yc).
func (s *Shape) at(xc, yc int) *Shape {
	c := *s
	c.Xc, c.Yc = xc, yc
	return &c
}

// Validate returns an error if the shape is malformed or does not fit in an
// nx x ny domain.
func (s *Shape) Validate(nx, ny int) error {
	switch s.Kind {
	case Rectangle, Square, Ellipse, Circle:
		if s.Lx <= 0 || (s.Ly <= 0 && s.Kind != Square && s.Kind != Circle) {
			return fmt.Errorf(
				"%s needs positive lengths, but has %d x %d.",
				s.Kind, s.Lx, s.Ly,
			)
		}
		lx, ly := s.sides()
		if s.Xc-lx/2 < 0 || s.Yc-ly/2 < 0 {
			return fmt.Errorf("%s lower bounds do not fit the domain.", s.Kind)
		}
		if s.Xc+lx/2 >= nx || s.Yc+ly/2 >= ny {
			return fmt.Errorf("%s upper bounds do not fit the domain.", s.Kind)
		}
		return nil

	case Walls:
		n := ny
		if s.Axis == Y {
			n = nx
		}
		if s.Thickness <= 0 {
			return fmt.Errorf(
				"Walls need a positive thickness, but have %d.", s.Thickness,
			)
		} else if s.Thickness > n {
			return fmt.Errorf(
				"Wall thickness %d is larger than the domain width %d.",
				s.Thickness, n,
			)
		}
		return nil

	case RegularArray, StaggeredArray:
		return s.validateArray(nx, ny)
	}
	return fmt.Errorf("Unrecognized shape kind %d.", int(s.Kind))
}

func (s *Shape) validateArray(nx, ny int) error {
	if s.Object == nil || !s.Object.isObject() {
		return fmt.Errorf("%s needs a single object to repeat.", s.Kind)
	}
	if s.Object.Lx <= 0 || s.Object.Ly <= 0 &&
		s.Object.Kind != Square && s.Object.Kind != Circle {
		return fmt.Errorf("%s object needs positive lengths.", s.Kind)
	}
	if s.Xf < s.X0 || s.Yf < s.Y0 {
		return fmt.Errorf(
			"%s bounds [%d, %d] x [%d, %d] are empty.",
			s.Kind, s.X0, s.Xf, s.Y0, s.Yf,
		)
	}
	if s.Dx < 0 || s.Dy < 0 {
		return fmt.Errorf("%s gaps must be non-negative.", s.Kind)
	}

	lx, ly := s.Object.sides()
	px, py, err := s.pitch()
	if err != nil {
		return err
	}
	if px < lx || py < ly {
		return fmt.Errorf(
			"%s pitch %d x %d is smaller than its %d x %d objects.",
			s.Kind, px, py, lx, ly,
		)
	}

	centers := s.Centers()
	if len(centers) == 0 {
		return fmt.Errorf("%s contains no objects.", s.Kind)
	}
	for _, c := range centers {
		if err := s.Object.at(c[0], c[1]).Validate(nx, ny); err != nil {
			return fmt.Errorf(
				"%s object at (%d, %d): %s", s.Kind, c[0], c[1], err.Error(),
			)
		}
	}
	return nil
}

// pitch returns the distance between neighboring object centers in a row
// (px) and between rows (py).
func (s *Shape) pitch() (px, py int, err error) {
	a, b := s.Object.Lx, s.Object.Ly
	if s.Object.Kind == Square || s.Object.Kind == Circle {
		b = a
	}

	if s.Kind == StaggeredArray {
		if s.Alpha <= 0 || s.Alpha >= 90 {
			return 0, 0, fmt.Errorf(
				"Stagger angle must be in (0, 90) degrees, but is %g.",
				s.Alpha,
			)
		}
		px = a + s.Dx
		dxs := px / 2
		alpha := s.Alpha * math.Pi / 180
		beta := (180 - 2*s.Alpha) * math.Pi / 180
		dAlpha := math.Sin(alpha) / math.Sin(beta) * float64(px)
		d2 := dAlpha*dAlpha - float64(dxs*dxs)
		if d2 < 1 {
			return 0, 0, fmt.Errorf(
				"Stagger angle %g gives no vertical spacing.", s.Alpha,
			)
		}
		return px, int(math.Sqrt(d2)), nil
	}

	px, py = a+s.Dx, b+s.Dy
	if s.NumX > 1 {
		px = (s.Xf - s.X0 - a) / (s.NumX - 1)
	}
	if s.NumY > 1 {
		py = (s.Yf - s.Y0 - b) / (s.NumY - 1)
	}
	if px <= 0 || py <= 0 {
		return 0, 0, fmt.Errorf("%s has a non-positive pitch.", s.Kind)
	}
	return px, py, nil
}

// count returns the number of pitches of length p which fit between lo and
// hi for an object of length a.
func count(lo, hi, a, p int) int {
	if hi-lo-a < 0 {
		return 0
	}
	return (hi-lo-a)/p + 1
}

// Centers returns the centers of every object in an array. It returns nil
// for other kinds or for malformed arrays.
func (s *Shape) Centers() [][2]int {
	if s.Kind != RegularArray && s.Kind != StaggeredArray {
		return nil
	}
	px, py, err := s.pitch()
	if err != nil {
		return nil
	}
	a, b := s.Object.Lx, s.Object.Ly
	if s.Object.Kind == Square || s.Object.Kind == Circle {
		b = a
	}

	centers := [][2]int{}
	if s.Kind == RegularArray {
		nx, ny := count(s.X0, s.Xf, a, px), count(s.Y0, s.Yf, b, py)
		if s.NumX > 0 && s.NumX < nx {
			nx = s.NumX
		}
		if s.NumY > 0 && s.NumY < ny {
			ny = s.NumY
		}
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				centers = append(centers, [2]int{s.X0 + i*px, s.Y0 + j*py})
			}
		}
		return centers
	}

	dxs := px / 2
	rows := count(s.Y0, s.Yf, b, py)
	for j := 0; j < rows; j++ {
		x0, xf := s.X0, s.Xf
		if j%2 == 1 {
			x0, xf = s.X0+dxs, s.Xf-dxs
		}
		n := count(x0, xf, a, px)
		for i := 0; i < n; i++ {
			centers = append(centers, [2]int{x0 + i*px, s.Y0 + j*py})
		}
	}
	return centers
}

// Contains is the membership predicate of the shape: it returns true if the
// node (x, y) of an nx x ny domain belongs to it.
func (s *Shape) Contains(x, y, nx, ny int) bool {
	switch s.Kind {
	case Rectangle, Square:
		lx, ly := s.sides()
		return iabs(x-s.Xc) <= lx/2 && iabs(y-s.Yc) <= ly/2

	case Ellipse, Circle:
		lx, ly := s.sides()
		dx, dy := int64(x-s.Xc), int64(y-s.Yc)
		a2, b2 := int64(lx*lx), int64(ly*ly)
		return 4*dx*dx*b2+4*dy*dy*a2 <= a2*b2

	case Walls:
		if s.Axis == X {
			return y < s.Thickness || y >= ny-s.Thickness
		}
		return x < s.Thickness || x >= nx-s.Thickness

	case RegularArray, StaggeredArray:
		for _, c := range s.Centers() {
			if s.Object.at(c[0], c[1]).Contains(x, y, nx, ny) {
				return true
			}
		}
	}
	return false
}

// Nodes returns the coordinates of every node covered by a valid shape.
func (s *Shape) Nodes(nx, ny int) [][2]int {
	nodes := [][2]int{}
	switch s.Kind {
	case Rectangle, Square, Ellipse, Circle:
		lx, ly := s.sides()
		for y := s.Yc - ly/2; y <= s.Yc+ly/2; y++ {
			for x := s.Xc - lx/2; x <= s.Xc+lx/2; x++ {
				if s.Contains(x, y, nx, ny) {
					nodes = append(nodes, [2]int{x, y})
				}
			}
		}

	case Walls:
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				if s.Contains(x, y, nx, ny) {
					nodes = append(nodes, [2]int{x, y})
				}
			}
		}

	case RegularArray, StaggeredArray:
		for _, c := range s.Centers() {
			nodes = append(nodes, s.Object.at(c[0], c[1]).Nodes(nx, ny)...)
		}
	}
	return nodes
}

// ExpectedCount returns the analytic number of nodes the shape covers.
func (s *Shape) ExpectedCount(nx, ny int) int {
	switch s.Kind {
	case Rectangle, Square:
		lx, ly := s.sides()
		return lx * ly

	case Ellipse, Circle:
		// Row by row: the widest |dx| with 4 dx^2 b^2 <= a^2 b^2 - 4 dy^2 a^2.
		lx, ly := s.sides()
		a2, b2 := int64(lx*lx), int64(ly*ly)
		n := 0
		for dy := int64(-ly / 2); dy <= int64(ly/2); dy++ {
			rem := a2*b2 - 4*dy*dy*a2
			if rem < 0 {
				continue
			}
			w := isqrt(rem / (4 * b2))
			for 4*(w+1)*(w+1)*b2 <= rem {
				w++
			}
			for w > 0 && 4*w*w*b2 > rem {
				w--
			}
			n += int(2*w + 1)
		}
		return n

	case Walls:
		n, width := ny, nx
		if s.Axis == Y {
			n, width = nx, ny
		}
		if 2*s.Thickness >= n {
			return nx * ny
		}
		return 2 * s.Thickness * width

	case RegularArray, StaggeredArray:
		return len(s.Centers()) * s.Object.ExpectedCount(nx, ny)
	}
	return 0
}

func iabs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func isqrt(x int64) int64 {
	if x <= 0 {
		return 0
	}
	return int64(math.Sqrt(float64(x)))
}

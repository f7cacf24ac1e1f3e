package io

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/golbm/geom"
)

// ExampleGeometryConfig is printed by -ExampleConfig Geometry.
const ExampleGeometryConfig = `# Every section is optional and any number of named sections of each type
# may be given. Lengths are in nodes. Even lengths are shortened by one node
# so that every object is centered on a node. Shapes may not overlap.

[Walls "channel"]
# Axis = X puts walls on the bottom and top rows, Axis = Y on the left and
# right columns.
Thickness = 1
Axis = X

[Rectangle "block"]
LX = 11
LY = 5
X = 40
Y = 25

[Square "box"]
Length = 5
X = 80
Y = 25

[Ellipse "lens"]
LX = 9
LY = 5
X = 120
Y = 25

[Circle "post"]
Diameter = 7
X = 160
Y = 25

[Array "posts"]
# Object is one of Rectangle, Square, Ellipse, Circle. Square and Circle only
# read LX.
Object = Circle
LX = 5
# Layout = Regular places objects on a rectangular lattice separated by gaps
# DX and DY, or spreads NumX x NumY of them evenly if those are set.
# Layout = Staggered shifts every other row by half a pitch and spaces the
# rows using the angle Alpha, in degrees.
Layout = Staggered
X0 = 200
XF = 290
Y0 = 5
YF = 45
DX = 4
Alpha = 60
`

type WallsConfig struct {
	Thickness int
	Axis      string
}

func (c *WallsConfig) CheckInit(name string) (*geom.Shape, error) {
	if c.Thickness <= 0 {
		return nil, fmt.Errorf(
			"Need to specify a positive Thickness for Walls '%s'.", name,
		)
	}
	switch strings.ToUpper(c.Axis) {
	case "X", "":
		return geom.NewWalls(c.Thickness, geom.X), nil
	case "Y":
		return geom.NewWalls(c.Thickness, geom.Y), nil
	}
	return nil, fmt.Errorf(
		"Axis of Walls '%s' must be X or Y, but is '%s'.", name, c.Axis,
	)
}

type RectangleConfig struct {
	LX, LY int
	X, Y   int
}

type SquareConfig struct {
	Length int
	X, Y   int
}

type CircleConfig struct {
	Diameter int
	X, Y     int
}

type ArrayConfig struct {
	Object string
	LX, LY int
	Layout string

	X0, XF, Y0, YF int
	DX, DY         int
	NumX, NumY     int
	Alpha          float64
}

func (c *ArrayConfig) CheckInit(name string) (*geom.Shape, error) {
	var obj *geom.Shape
	switch strings.ToLower(c.Object) {
	case "rectangle":
		obj = geom.NewRectangle(c.LX, c.LY, 0, 0)
	case "square":
		obj = geom.NewSquare(c.LX, 0, 0)
	case "ellipse":
		obj = geom.NewEllipse(c.LX, c.LY, 0, 0)
	case "circle":
		obj = geom.NewCircle(c.LX, 0, 0)
	default:
		return nil, fmt.Errorf(
			"Object of Array '%s' must be one of Rectangle, Square, Ellipse, "+
				"or Circle, but is '%s'.", name, c.Object,
		)
	}

	switch strings.ToLower(c.Layout) {
	case "regular", "":
		if c.NumX > 0 || c.NumY > 0 {
			if c.NumX <= 0 || c.NumY <= 0 {
				return nil, fmt.Errorf(
					"Array '%s' must set both NumX and NumY or neither.", name,
				)
			}
			return geom.NewRegularArrayN(
				obj, c.X0, c.XF, c.Y0, c.YF, c.NumX, c.NumY,
			), nil
		}
		return geom.NewRegularArray(
			obj, c.X0, c.XF, c.Y0, c.YF, c.DX, c.DY,
		), nil
	case "staggered":
		return geom.NewStaggeredArray(
			obj, c.X0, c.XF, c.Y0, c.YF, c.DX, c.Alpha,
		), nil
	}
	return nil, fmt.Errorf(
		"Layout of Array '%s' must be Regular or Staggered, but is '%s'.",
		name, c.Layout,
	)
}

// GeometryConfig is a gcfg file describing solid shapes.
type GeometryConfig struct {
	Walls     map[string]*WallsConfig
	Rectangle map[string]*RectangleConfig
	Square    map[string]*SquareConfig
	Ellipse   map[string]*RectangleConfig
	Circle    map[string]*CircleConfig
	Array     map[string]*ArrayConfig
}

// NamedShape is a shape together with the config section it came from.
type NamedShape struct {
	Name  string
	Shape *geom.Shape
}

// ReadGeometryConfig reads a geometry config file.
func ReadGeometryConfig(fname string) (*GeometryConfig, error) {
	gc := &GeometryConfig{}
	if err := gcfg.ReadFileInto(gc, fname); err != nil {
		return nil, err
	}
	return gc, nil
}

// Shapes converts every section into a shape. Shapes are returned in a fixed
// order: by section type and then by name.
func (gc *GeometryConfig) Shapes() ([]NamedShape, error) {
	shapes := []NamedShape{}

	for _, name := range sortedKeys(gc.Walls) {
		s, err := gc.Walls[name].CheckInit(name)
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, NamedShape{"Walls " + name, s})
	}
	for _, name := range sortedKeys(gc.Rectangle) {
		c := gc.Rectangle[name]
		s := geom.NewRectangle(c.LX, c.LY, c.X, c.Y)
		shapes = append(shapes, NamedShape{"Rectangle " + name, s})
	}
	for _, name := range sortedKeys(gc.Square) {
		c := gc.Square[name]
		s := geom.NewSquare(c.Length, c.X, c.Y)
		shapes = append(shapes, NamedShape{"Square " + name, s})
	}
	for _, name := range sortedKeys(gc.Ellipse) {
		c := gc.Ellipse[name]
		s := geom.NewEllipse(c.LX, c.LY, c.X, c.Y)
		shapes = append(shapes, NamedShape{"Ellipse " + name, s})
	}
	for _, name := range sortedKeys(gc.Circle) {
		c := gc.Circle[name]
		s := geom.NewCircle(c.Diameter, c.X, c.Y)
		shapes = append(shapes, NamedShape{"Circle " + name, s})
	}
	for _, name := range sortedKeys(gc.Array) {
		s, err := gc.Array[name].CheckInit(name)
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, NamedShape{"Array " + name, s})
	}

	return shapes, nil
}

// Mask places every shape into an nx x ny mask.
func (gc *GeometryConfig) Mask(nx, ny int) (*geom.Mask, error) {
	shapes, err := gc.Shapes()
	if err != nil {
		return nil, err
	}
	mask, err := geom.NewMask(nx, ny)
	if err != nil {
		return nil, err
	}
	for _, ns := range shapes {
		if err := mask.Place(ns.Shape); err != nil {
			return nil, fmt.Errorf("Cannot place %s: %w", ns.Name, err)
		}
	}
	return mask, nil
}

func sortedKeys[T any](m map[string]*T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

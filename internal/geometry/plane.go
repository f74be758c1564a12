package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidPlane is returned when the screen extents are not strictly ordered
var ErrInvalidPlane = errors.New("invalid screen plane")

// ScreenPlane describes the flat projection surface in tracker space.
// The surface always lies on a plane of constant Z.
type ScreenPlane struct {
	Z    float64
	XMin float64
	XMax float64
	YMin float64
	YMax float64
}

// DefaultScreenPlane is the middle screen of the curved installation the
// bridge was first set up for.
var DefaultScreenPlane = ScreenPlane{Z: -2.641, XMin: -1.750, XMax: 1.750, YMin: 0.0, YMax: 2.750}

// NewScreenPlane validates and builds a plane
func NewScreenPlane(z, xmin, xmax, ymin, ymax float64) (ScreenPlane, error) {
	p := ScreenPlane{Z: z, XMin: xmin, XMax: xmax, YMin: ymin, YMax: ymax}
	if err := p.Validate(); err != nil {
		return ScreenPlane{}, err
	}
	return p, nil
}

// ParseScreenPlane parses "[z,xmin,xmax,ymin,ymax]"
func ParseScreenPlane(s string) (ScreenPlane, error) {
	v, err := parseList(s, 5)
	if err != nil {
		return ScreenPlane{}, err
	}
	return NewScreenPlane(v[0], v[1], v[2], v[3], v[4])
}

// Validate checks that every value is finite and the extents are ordered
func (p ScreenPlane) Validate() error {
	for _, v := range []float64{p.Z, p.XMin, p.XMax, p.YMin, p.YMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value in %s", ErrInvalidPlane, p)
		}
	}
	if p.XMin >= p.XMax {
		return fmt.Errorf("%w: xmin %g must be less than xmax %g", ErrInvalidPlane, p.XMin, p.XMax)
	}
	if p.YMin >= p.YMax {
		return fmt.Errorf("%w: ymin %g must be less than ymax %g", ErrInvalidPlane, p.YMin, p.YMax)
	}
	return nil
}

// Width returns the physical extent along x
func (p ScreenPlane) Width() float64 {
	return p.XMax - p.XMin
}

// Height returns the physical extent along y
func (p ScreenPlane) Height() float64 {
	return p.YMax - p.YMin
}

// Center returns the middle of the surface in tracker space
func (p ScreenPlane) Center() (x, y float64) {
	return p.XMin + p.Width()/2, p.YMin + p.Height()/2
}

// String renders the plane as "[z,xmin,xmax,ymin,ymax]"
func (p ScreenPlane) String() string {
	return formatList(p.Z, p.XMin, p.XMax, p.YMin, p.YMax)
}

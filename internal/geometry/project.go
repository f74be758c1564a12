package geometry

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrProjectionDegenerate is returned when the pointing ray never meets the
// screen plane, i.e. it runs parallel to it.
var ErrProjectionDegenerate = errors.New("pointing ray is parallel to the screen plane")

const (
	// parallelEpsilon bounds |wand.z| below which the ray counts as parallel
	parallelEpsilon = 1e-12
	// offPlaneEpsilon is the tolerance for the intersection's distance to the plane
	offPlaneEpsilon = 0.0001
)

// forward is the pointing direction in device-local space
var forward = r3.Vec{X: 0, Y: 0, Z: -1}

// Pixel is a pointer position in screen pixels, origin top-left
type Pixel struct {
	X int
	Y int
}

// Projection is the result of mapping one pose onto the screen
type Projection struct {
	Pixel Pixel
	// Hit is the intersection of the pointing ray with the plane
	Hit r3.Vec
	// OffPlane is set when Hit.Z strays from the plane's Z, which points at
	// a modelling or precision problem rather than a hard error.
	OffPlane bool
}

// Project maps a wand pose to a pixel on a screen of w x h pixels.
// The forward ray is rotated by calib first and by orient second.
func Project(pos r3.Vec, orient quat.Number, plane ScreenPlane, calib quat.Number, w, h int) (Projection, error) {
	wand := Rotate(calib, forward)
	wand = Rotate(orient, wand)

	if math.Abs(wand.Z) < parallelEpsilon || !finite(wand) {
		return Projection{}, ErrProjectionDegenerate
	}

	scale := (plane.Z - pos.Z) / wand.Z
	hit := r3.Add(r3.Scale(scale, wand), pos)
	if !finite(hit) {
		return Projection{}, ErrProjectionDegenerate
	}

	// screen (0,0) is top-left, the physical plane's origin is bottom-left
	x := (hit.X - plane.XMin) / plane.Width() * float64(w)
	y := float64(h) - (hit.Y-plane.YMin)/plane.Height()*float64(h)

	return Projection{
		Pixel: Pixel{
			X: int(clamp(x, 0, float64(w))),
			Y: int(clamp(y, 0, float64(h))),
		},
		Hit:      hit,
		OffPlane: math.Abs(plane.Z-hit.Z) >= offPlaneEpsilon,
	}, nil
}

func clamp(v, low, high float64) float64 {
	if v <= low {
		return low
	}
	if v >= high {
		return high
	}
	return v
}

func finite(v r3.Vec) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// testPlane is 4 x 3 units, one unit in front of a wand at z=0
var testPlane = ScreenPlane{Z: -1, XMin: -2, XMax: 2, YMin: 0, YMax: 3}

func axisAngle(axis r3.Vec, angle float64) quat.Number {
	s := math.Sin(angle / 2)
	n := r3.Norm(axis)
	return Quat(axis.X/n*s, axis.Y/n*s, axis.Z/n*s, math.Cos(angle/2))
}

func TestRotate(t *testing.T) {
	tests := []struct {
		name string
		q    quat.Number
		in   r3.Vec
		want r3.Vec
	}{
		{"identity", Identity, r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: 1, Y: 2, Z: 3}},
		{"non-unit identity", quat.Number{Real: 2}, r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: 1, Y: 2, Z: 3}},
		{"quarter turn about y", axisAngle(r3.Vec{Y: 1}, math.Pi/2), r3.Vec{Z: -1}, r3.Vec{X: -1}},
		{"half turn about x", axisAngle(r3.Vec{X: 1}, math.Pi), r3.Vec{Z: -1}, r3.Vec{Z: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rotate(tt.q, tt.in)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.InDelta(t, tt.want.Z, got.Z, 1e-9)
		})
	}
}

func TestInvertUndoesRotation(t *testing.T) {
	q := axisAngle(r3.Vec{X: 1, Y: 2, Z: -0.5}, 1.1)
	v := r3.Vec{X: 0.3, Y: -0.2, Z: -1}

	got := Rotate(Invert(q), Rotate(q, v))
	assert.True(t, scalar.EqualWithinAbs(v.X, got.X, 1e-12))
	assert.True(t, scalar.EqualWithinAbs(v.Y, got.Y, 1e-12))
	assert.True(t, scalar.EqualWithinAbs(v.Z, got.Z, 1e-12))
}

func TestProject_Center(t *testing.T) {
	cx, cy := testPlane.Center()
	pos := r3.Vec{X: cx, Y: cy, Z: testPlane.Z + 1}

	t.Run("identity orientation", func(t *testing.T) {
		p, err := Project(pos, Identity, testPlane, Identity, 1920, 1080)
		require.NoError(t, err)
		assert.Equal(t, Pixel{X: 960, Y: 540}, p.Pixel)
		assert.False(t, p.OffPlane)
	})

	// any orientation that is cancelled by the calibration points straight ahead
	for _, q := range []quat.Number{
		axisAngle(r3.Vec{X: 1}, 0.3),
		axisAngle(r3.Vec{Y: 1, Z: 1}, -2.1),
		axisAngle(r3.Vec{X: 1, Y: -1, Z: 0.5}, 1.7),
	} {
		p, err := Project(pos, q, testPlane, Invert(q), 1920, 1080)
		require.NoError(t, err)
		assert.InDelta(t, 960, p.Pixel.X, 1)
		assert.InDelta(t, 540, p.Pixel.Y, 1)
	}
}

func TestProject_Clamping(t *testing.T) {
	tests := []struct {
		name string
		pos  r3.Vec
		want Pixel
	}{
		{"left of screen", r3.Vec{X: -5, Y: 1.5}, Pixel{X: 0, Y: 540}},
		{"right of screen", r3.Vec{X: 5, Y: 1.5}, Pixel{X: 1920, Y: 540}},
		{"above screen", r3.Vec{X: 0, Y: 10}, Pixel{X: 960, Y: 0}},
		{"below screen", r3.Vec{X: 0, Y: -10}, Pixel{X: 960, Y: 1080}},
		{"top left corner", r3.Vec{X: -2, Y: 3}, Pixel{X: 0, Y: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Project(tt.pos, Identity, testPlane, Identity, 1920, 1080)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Pixel)
		})
	}
}

func TestProject_Orientation(t *testing.T) {
	pos := r3.Vec{X: 0, Y: 1.5, Z: 0}

	// 45 degrees about y swings the ray one unit to the left on a plane one unit away
	p, err := Project(pos, axisAngle(r3.Vec{Y: 1}, math.Pi/4), testPlane, Identity, 1920, 1080)
	require.NoError(t, err)
	assert.InDelta(t, 480, p.Pixel.X, 1)
	assert.InDelta(t, 540, p.Pixel.Y, 1)
	assert.InDelta(t, -1, p.Hit.X, 1e-9)
	assert.InDelta(t, testPlane.Z, p.Hit.Z, 1e-9)

	// calibration is applied before the live orientation
	calib := axisAngle(r3.Vec{Y: 1}, -math.Pi/4)
	p, err = Project(pos, axisAngle(r3.Vec{Y: 1}, math.Pi/4), testPlane, calib, 1920, 1080)
	require.NoError(t, err)
	assert.InDelta(t, 960, p.Pixel.X, 1)
}

func TestProject_Degenerate(t *testing.T) {
	pos := r3.Vec{X: 0, Y: 1.5, Z: 0}

	_, err := Project(pos, axisAngle(r3.Vec{Y: 1}, math.Pi/2), testPlane, Identity, 1920, 1080)
	assert.ErrorIs(t, err, ErrProjectionDegenerate)

	_, err = Project(r3.Vec{X: math.NaN()}, Identity, testPlane, Identity, 1920, 1080)
	assert.ErrorIs(t, err, ErrProjectionDegenerate)
}

func TestParseScreenPlane(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ScreenPlane
		wantErr error
	}{
		{"default syntax", "[-2.641,-1.75,1.75,0,2.75]", DefaultScreenPlane, nil},
		{"spaces", " [ -1 , -2, 2 ,0, 3 ] ", testPlane, nil},
		{"too few values", "[1,2,3,4]", ScreenPlane{}, ErrMalformed},
		{"too many values", "[1,2,3,4,5,6]", ScreenPlane{}, ErrMalformed},
		{"missing brackets", "1,2,3,4,5", ScreenPlane{}, ErrMalformed},
		{"not a number", "[1,2,x,4,5]", ScreenPlane{}, ErrMalformed},
		{"empty", "[]", ScreenPlane{}, ErrMalformed},
		{"x extents reversed", "[0,1,-1,0,1]", ScreenPlane{}, ErrInvalidPlane},
		{"y extents equal", "[0,-1,1,2,2]", ScreenPlane{}, ErrInvalidPlane},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScreenPlane(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseQuat(t *testing.T) {
	q, err := ParseQuat("[0,0,0,1]")
	require.NoError(t, err)
	assert.Equal(t, Identity, q)

	q, err = ParseQuat("[0.1, 0.2, 0.3, 0.9]")
	require.NoError(t, err)
	assert.Equal(t, Quat(0.1, 0.2, 0.3, 0.9), q)
	assert.Equal(t, "[0.1,0.2,0.3,0.9]", FormatQuat(q))

	_, err = ParseQuat("[0,0,0,0]")
	assert.ErrorIs(t, err, ErrZeroQuat)

	_, err = ParseQuat("[0,0,1]")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestScreenPlaneString(t *testing.T) {
	assert.Equal(t, "[-2.641,-1.75,1.75,0,2.75]", DefaultScreenPlane.String())

	p, err := ParseScreenPlane(DefaultScreenPlane.String())
	require.NoError(t, err)
	assert.Equal(t, DefaultScreenPlane, p)
}

// Package geometry projects tracked wand poses onto a flat screen plane.
//
// Quaternions use gonum's quat.Number where Real is the scalar part and
// Imag, Jmag and Kmag are the x, y and z parts. On the command line and in
// the config file they are written in [x,y,z,w] order.
package geometry

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrMalformed is returned when a bracketed value list does not parse
	ErrMalformed = errors.New("malformed value list")
	// ErrZeroQuat is returned for a quaternion that cannot be inverted
	ErrZeroQuat = errors.New("zero quaternion")
)

// Identity is the rotation that leaves every vector unchanged
var Identity = quat.Number{Real: 1}

// Quat builds a quaternion from its x, y, z, w components
func Quat(x, y, z, w float64) quat.Number {
	return quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z}
}

// Rotate rotates v by q, computing q*v*q^-1. Using the true inverse keeps
// non-unit quaternions a pure rotation.
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Inv(q))
	return r3.Vec{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// Invert returns the inverse rotation of q
func Invert(q quat.Number) quat.Number {
	return quat.Inv(q)
}

// IsZero reports whether q has no length
func IsZero(q quat.Number) bool {
	return quat.Abs(q) == 0
}

// ParseQuat parses "[x,y,z,w]"
func ParseQuat(s string) (quat.Number, error) {
	v, err := parseList(s, 4)
	if err != nil {
		return quat.Number{}, err
	}
	q := Quat(v[0], v[1], v[2], v[3])
	if IsZero(q) {
		return quat.Number{}, fmt.Errorf("%w: %s", ErrZeroQuat, s)
	}
	return q, nil
}

// FormatQuat renders q as "[x,y,z,w]", the same syntax ParseQuat accepts
func FormatQuat(q quat.Number) string {
	return formatList(q.Imag, q.Jmag, q.Kmag, q.Real)
}

func parseList(s string, want int) ([]float64, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("%w: %q must be enclosed in brackets", ErrMalformed, s)
	}
	body := strings.TrimSpace(s[1 : len(s)-1])
	if body == "" {
		return nil, fmt.Errorf("%w: %q: expected %d values, got 0", ErrMalformed, s, want)
	}

	fields := strings.Split(body, ",")
	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %q: expected %d values, parsed %d before %q",
				ErrMalformed, s, want, len(values), strings.TrimSpace(f))
		}
		values = append(values, v)
	}
	if len(values) != want {
		return nil, fmt.Errorf("%w: %q: expected %d values, got %d", ErrMalformed, s, want, len(values))
	}
	return values, nil
}

func formatList(values ...float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

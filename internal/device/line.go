package device

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/bnema/wandmouse/internal/event"
)

// ParseLine decodes one line of the text protocol:
//
//	P <sensor> <x> <y> <z> <qx> <qy> <qz> <qw>
//	B <index> <0|1>
//
// Blank lines and # comments yield ok == false.
func ParseLine(line string) (ev event.Event, ok bool, err error) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return event.Event{}, false, nil
	}

	switch strings.ToUpper(fields[0]) {
	case "P":
		pose, err := parsePose(fields[1:])
		if err != nil {
			return event.Event{}, false, err
		}
		return event.PoseEvent(pose), true, nil
	case "B":
		btn, err := parseButton(fields[1:])
		if err != nil {
			return event.Event{}, false, err
		}
		return event.ButtonEvent(btn), true, nil
	default:
		return event.Event{}, false, fmt.Errorf("%w: unknown record %q", ErrMalformed, fields[0])
	}
}

func parsePose(fields []string) (event.Pose, error) {
	if len(fields) != 8 {
		return event.Pose{}, fmt.Errorf("%w: pose needs 8 values, got %d", ErrMalformed, len(fields))
	}

	sensor, err := strconv.Atoi(fields[0])
	if err != nil || sensor < 0 {
		return event.Pose{}, fmt.Errorf("%w: bad sensor %q", ErrMalformed, fields[0])
	}

	var v [7]float64
	for i, f := range fields[1:] {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
			return event.Pose{}, fmt.Errorf("%w: bad number %q", ErrMalformed, f)
		}
		v[i] = x
	}

	return event.Pose{
		Sensor:      sensor,
		Position:    r3.Vec{X: v[0], Y: v[1], Z: v[2]},
		Orientation: quat.Number{Imag: v[3], Jmag: v[4], Kmag: v[5], Real: v[6]},
	}, nil
}

func parseButton(fields []string) (event.Button, error) {
	if len(fields) != 2 {
		return event.Button{}, fmt.Errorf("%w: button needs 2 values, got %d", ErrMalformed, len(fields))
	}

	index, err := strconv.Atoi(fields[0])
	if err != nil {
		return event.Button{}, fmt.Errorf("%w: bad button index %q", ErrMalformed, fields[0])
	}

	switch fields[1] {
	case "0":
		return event.Button{Index: index}, nil
	case "1":
		return event.Button{Index: index, Pressed: true}, nil
	default:
		return event.Button{}, fmt.Errorf("%w: bad button state %q", ErrMalformed, fields[1])
	}
}

// FormatLine is the inverse of ParseLine
func FormatLine(ev event.Event) string {
	switch ev.Kind {
	case event.KindPose:
		p := ev.Pose
		return fmt.Sprintf("P %d %s %s %s %s %s %s %s", p.Sensor,
			formatFloat(p.Position.X), formatFloat(p.Position.Y), formatFloat(p.Position.Z),
			formatFloat(p.Orientation.Imag), formatFloat(p.Orientation.Jmag),
			formatFloat(p.Orientation.Kmag), formatFloat(p.Orientation.Real))
	case event.KindButton:
		state := 0
		if ev.Button.Pressed {
			state = 1
		}
		return fmt.Sprintf("B %d %d", ev.Button.Index, state)
	default:
		return ""
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// readLines feeds every line of r into p until r ends or p is closed
func readLines(p *pump, r io.Reader) {
	var err error
	defer func() { p.finish(err) }()

	scan := bufio.NewScanner(r)
	lineNo := 0
	for scan.Scan() {
		lineNo++
		ev, ok, perr := ParseLine(scan.Text())
		if perr != nil {
			if !p.fail(fmt.Errorf("%s line %d: %w", p.name, lineNo, perr)) {
				return
			}
			continue
		}
		if ok && !p.push(ev) {
			return
		}
	}
	err = scan.Err()
}

package device

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.bug.st/serial"
)

// PortOptions are the serial line parameters taken from a serial:// URI
type PortOptions struct {
	BaudRate int
	DataBits int
	StopBits int
	Parity   string
}

// Normalize validates the options and fills in defaults
func (o PortOptions) Normalize() (PortOptions, error) {
	opts := o

	if opts.BaudRate <= 0 {
		opts.BaudRate = 115200
	}

	if opts.DataBits == 0 {
		opts.DataBits = 8
	}
	if opts.DataBits < 5 || opts.DataBits > 8 {
		return opts, fmt.Errorf("invalid data bits %d: must be between 5 and 8", opts.DataBits)
	}

	if opts.StopBits == 0 {
		opts.StopBits = 1
	}
	if opts.StopBits != 1 && opts.StopBits != 2 {
		return opts, fmt.Errorf("invalid stop bits %d: supported values are 1 or 2", opts.StopBits)
	}

	parity := strings.TrimSpace(strings.ToUpper(opts.Parity))
	switch parity {
	case "", "N", "NONE":
		parity = "N"
	case "E", "EVEN":
		parity = "E"
	case "O", "ODD":
		parity = "O"
	default:
		return opts, fmt.Errorf("unsupported parity %q: expected N, E, or O", opts.Parity)
	}

	opts.Parity = parity
	return opts, nil
}

// SerialMode converts the options for serial.Open
func (o PortOptions) SerialMode() (*serial.Mode, error) {
	opts, err := o.Normalize()
	if err != nil {
		return nil, err
	}

	mode := &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: opts.DataBits,
		StopBits: serial.OneStopBit,
	}
	if opts.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	}

	switch opts.Parity {
	case "E":
		mode.Parity = serial.EvenParity
	case "O":
		mode.Parity = serial.OddParity
	default:
		mode.Parity = serial.NoParity
	}

	return mode, nil
}

func portOptionsFromQuery(q url.Values) (PortOptions, error) {
	var opts PortOptions
	for key, dst := range map[string]*int{
		"baud":     &opts.BaudRate,
		"databits": &opts.DataBits,
		"stopbits": &opts.StopBits,
	} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("invalid %s %q", key, v)
		}
		*dst = n
	}
	opts.Parity = q.Get("parity")
	return opts.Normalize()
}

// OpenSerial reads text protocol lines from a serial port
func OpenSerial(path string, opts PortOptions, buffer int) (Source, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", path, err)
	}

	p := newPump("serial://"+path, buffer, port)
	go readLines(p, port)
	return p, nil
}

// ListSerialPorts returns the serial ports present on the system
func ListSerialPorts() ([]string, error) {
	return serial.GetPortsList()
}

package device

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	evdev "github.com/gvalkov/golang-evdev"

	"github.com/bnema/wandmouse/internal/event"
	"github.com/bnema/wandmouse/internal/logger"
)

// ButtonDevice describes an input device that can act as a button source
type ButtonDevice struct {
	Path string
	// Stable is a /dev/input/by-id or by-path link to Path, or Path itself
	Stable string
	Name   string
	Phys   string
	// Keys lists the key codes in button index order
	Keys []int
}

// keyCodes returns the EV_KEY capabilities of dev in ascending order. The
// position of a code in this list is the button index it is reported as.
func keyCodes(dev *evdev.InputDevice) []int {
	var codes []int
	for capType, caps := range dev.Capabilities {
		if capType.Type != evdev.EV_KEY {
			continue
		}
		for _, c := range caps {
			codes = append(codes, c.Code)
		}
	}
	slices.Sort(codes)
	return slices.Compact(codes)
}

// ListButtonDevices returns the event devices that report key events
func ListButtonDevices() ([]ButtonDevice, error) {
	devices, err := evdev.ListInputDevices("/dev/input/event*")
	if err != nil {
		return nil, fmt.Errorf("failed to list input devices: %w", err)
	}

	var result []ButtonDevice
	for _, dev := range devices {
		keys := keyCodes(dev)
		if len(keys) > 0 {
			result = append(result, ButtonDevice{
				Path:   dev.Fn,
				Stable: StablePath(dev.Fn),
				Name:   dev.Name,
				Phys:   dev.Phys,
				Keys:   keys,
			})
		}
		if dev.File != nil {
			_ = dev.File.Close()
		}
	}
	return result, nil
}

// OpenEvdev reports the key events of an input device as buttons
func OpenEvdev(path string, buffer int) (Source, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input device %s: %w", path, err)
	}

	keys := keyCodes(dev)
	if len(keys) == 0 {
		_ = dev.File.Close()
		return nil, fmt.Errorf("input device %s (%s) has no buttons", path, dev.Name)
	}

	index := make(map[uint16]int, len(keys))
	for i, code := range keys {
		index[uint16(code)] = i //nolint:gosec // key codes fit in uint16
	}
	logger.Debugf("evdev %s: %s with %d buttons", path, dev.Name, len(keys))

	p := newPump("evdev://"+path, buffer, dev.File)
	go readKeys(p, dev, index)
	return p, nil
}

func readKeys(p *pump, dev *evdev.InputDevice, index map[uint16]int) {
	var err error
	defer func() { p.finish(err) }()

	for {
		events, rerr := dev.Read()
		if rerr != nil {
			if errors.Is(rerr, os.ErrClosed) || p.closed() {
				return
			}
			if strings.Contains(rerr.Error(), "resource temporarily unavailable") {
				continue
			}
			err = rerr
			return
		}

		for _, ev := range events {
			if ev.Type != evdev.EV_KEY {
				continue
			}
			btn, ok := keyButton(index, ev.Code, ev.Value)
			if ok && !p.push(event.ButtonEvent(btn)) {
				return
			}
		}
	}
}

// keyButton maps a key event to a button. Autorepeat (value 2) and codes
// outside the capability list are ignored.
func keyButton(index map[uint16]int, code uint16, value int32) (event.Button, bool) {
	i, ok := index[code]
	if !ok {
		return event.Button{}, false
	}
	switch value {
	case 0:
		return event.Button{Index: i}, true
	case 1:
		return event.Button{Index: i, Pressed: true}, true
	default:
		return event.Button{}, false
	}
}

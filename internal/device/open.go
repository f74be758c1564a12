package device

import (
	"fmt"
	"net/url"
)

func parseURI(uri string) (*url.URL, string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %q: %w", ErrUnsupportedURI, uri, err)
	}
	path := u.Path
	if path == "" {
		path = u.Opaque
	}
	return u, path, nil
}

// Open starts a source for uri:
//
//	udp://host:port
//	serial:///dev/ttyACM0?baud=115200&parity=N&databits=8&stopbits=1
//	file:///path/to/recording.txt
//	evdev:///dev/input/eventN
func Open(uri string, buffer int) (Source, error) {
	u, path, err := parseURI(uri)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "udp":
		if u.Host == "" {
			return nil, fmt.Errorf("%w: %q has no address", ErrUnsupportedURI, uri)
		}
		return OpenUDP(u.Host, buffer)
	case "serial":
		if path == "" {
			return nil, fmt.Errorf("%w: %q has no port", ErrUnsupportedURI, uri)
		}
		opts, err := portOptionsFromQuery(u.Query())
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrUnsupportedURI, uri, err)
		}
		return OpenSerial(path, opts, buffer)
	case "file":
		if path == "" {
			return nil, fmt.Errorf("%w: %q has no path", ErrUnsupportedURI, uri)
		}
		return OpenFile(path, buffer)
	case "evdev":
		if path == "" {
			return nil, fmt.Errorf("%w: %q has no device", ErrUnsupportedURI, uri)
		}
		return OpenEvdev(path, buffer)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURI, uri)
	}
}

// CarriesButtons reports whether the transport behind uri delivers button
// events as well as poses
func CarriesButtons(uri string) bool {
	u, _, err := parseURI(uri)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "udp", "serial", "file", "evdev":
		return true
	default:
		return false
	}
}

// CarriesPoses reports whether the transport behind uri can deliver poses
func CarriesPoses(uri string) bool {
	u, _, err := parseURI(uri)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "udp", "serial", "file":
		return true
	default:
		return false
	}
}

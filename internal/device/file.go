package device

import (
	"fmt"
	"os"
)

// OpenFile replays a text protocol recording once. The source ends at EOF.
func OpenFile(path string, buffer int) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording: %w", err)
	}

	p := newPump("file://"+path, buffer, f)
	go readLines(p, f)
	return p, nil
}

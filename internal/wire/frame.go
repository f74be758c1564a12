// Package wire encodes tracker samples and status messages in the protobuf
// wire format and frames them for stream transports.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize bounds a single frame payload
const MaxFrameSize = 64 * 1024

// ErrFrameTooLarge is returned when a length prefix exceeds MaxFrameSize
var ErrFrameTooLarge = errors.New("frame too large")

// WriteFrame writes data with a 4 byte big-endian length prefix
func WriteFrame(w io.Writer, data []byte) error {
	if len(data) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(data))
	}

	length := uint32(len(data)) //nolint:gosec // bounded by MaxFrameSize
	if err := binary.Write(w, binary.BigEndian, length); err != nil {
		return fmt.Errorf("failed to write frame length: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write frame data: %w", err)
	}

	// Force flush if the writer supports it
	if flusher, ok := w.(interface{ Flush() error }); ok {
		_ = flusher.Flush()
	}

	return nil
}

// ReadFrame reads one length-prefixed frame. io.EOF is returned unwrapped
// when the stream ends on a frame boundary.
func ReadFrame(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read frame length: %w", err)
	}
	if length > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("failed to read frame data: %w", err)
	}
	return data, nil
}

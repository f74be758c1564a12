package bridge

import (
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/wandmouse/internal/device"
	"github.com/bnema/wandmouse/internal/event"
	"github.com/bnema/wandmouse/internal/geometry"
	"github.com/bnema/wandmouse/internal/session"
	"github.com/bnema/wandmouse/internal/wire"
)

// TestUDPToPointer covers the whole path: datagrams on a socket, the UDP
// source, the loop, the session and the pointer
func TestUDPToPointer(t *testing.T) {
	tracker, err := device.OpenUDP("127.0.0.1:0", device.DefaultBuffer)
	require.NoError(t, err)
	defer tracker.Close()

	conn, err := net.Dial("udp", strings.TrimPrefix(tracker.Name(), "udp://"))
	require.NoError(t, err)
	defer conn.Close()

	send := func(ev event.Event) {
		data, err := wire.MarshalEvent(ev)
		require.NoError(t, err)
		_, err = conn.Write(data)
		require.NoError(t, err)
	}

	pointer := &recordingPointer{}
	s := newSession(t, pointer, map[int]session.Action{0: session.ActionLeft, 5: session.ActionQuit})
	l := newLoop(t, s, tracker, nil)

	// Queue everything before the loop starts so it is read in order
	send(pose(1.5))
	send(press(0))
	send(pose(0.75))
	send(press(5))
	send(pose(0))

	require.NoError(t, runWithTimeout(t, l))

	pointer.mu.Lock()
	defer pointer.mu.Unlock()
	assert.Equal(t, []geometry.Pixel{{X: 960, Y: 540}, {X: 960, Y: 810}}, pointer.moves)
	assert.Equal(t, []event.PointerButton{event.PointerLeft}, pointer.buttons)
	assert.True(t, l.Snapshot().Quit)
}

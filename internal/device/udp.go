package device

import (
	"errors"
	"fmt"
	"net"

	"github.com/bnema/wandmouse/internal/wire"
)

const maxDatagram = 64 * 1024

// OpenUDP listens on addr for wire encoded pose and button datagrams
func OpenUDP(addr string, buffer int) (Source, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	p := newPump("udp://"+conn.LocalAddr().String(), buffer, conn)
	go readDatagrams(p, conn)
	return p, nil
}

func readDatagrams(p *pump, conn net.PacketConn) {
	var err error
	defer func() { p.finish(err) }()

	buf := make([]byte, maxDatagram)
	for {
		n, from, rerr := conn.ReadFrom(buf)
		if rerr != nil {
			if !errors.Is(rerr, net.ErrClosed) {
				err = rerr
			}
			return
		}

		ev, derr := wire.UnmarshalEvent(buf[:n])
		if derr != nil {
			if !p.fail(fmt.Errorf("%s: datagram from %s: %w: %w", p.name, from, ErrMalformed, derr)) {
				return
			}
			continue
		}
		if !p.push(ev) {
			return
		}
	}
}

package repeater

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/sys/unix"

	"github.com/gabadinho/ca-repeater/internal/log"
)

// CreateUDPSocket is the socket factory from the specification: it
// allocates an IPv4 UDP socket, binds it to (INADDR_ANY, port) when port
// is non-zero, and sets SO_REUSEADDR when requested and a port was bound.
// A failure to set SO_REUSEADDR is logged but not fatal; a bind failure is
// returned verbatim so callers can branch on IsAddressInUse.
func CreateUDPSocket(logger log.Logger, port uint16, reuseAddr bool) (*net.UDPConn, error) {
	if port == 0 {
		conn, err := net.ListenUDP("udp4", nil)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}

	lc := net.ListenConfig{}
	pc, err := lc.ListenPacket(context.Background(), "udp4", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, err
	}
	conn := pc.(*net.UDPConn)
	if reuseAddr {
		// Set only once bound, so the bind above still fails with
		// address-in-use while another socket holds the port.
		rc, err := conn.SyscallConn()
		if err == nil {
			rc.Control(func(fd uintptr) {
				err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
		}
		if err != nil {
			logger.Warn("setsockopt SO_REUSEADDR failed", "err", err)
		}
	}
	return conn, nil
}

// DialClientSocket creates the per-client outbound socket: an
// unconstrained-port UDP socket connect()-ed to addr, so that a later
// Write delivers to exactly that client and a synchronous ECONNREFUSED
// surfaces if the client is gone.
func DialClientSocket(addr *net.UDPAddr) (*net.UDPConn, error) {
	return net.DialUDP("udp4", nil, addr)
}

// probeSocket is the registrar's long-lived locality-check vehicle. It
// manages a raw fd instead of a net.UDPConn because it must be created
// WITHOUT an initial bind and bound only later, against each locality
// candidate in turn -- a sequencing net.ListenUDP cannot express, since it
// binds immediately on creation.
type probeSocket struct {
	fd int
}

func newProbeSocket(logger log.Logger) (*probeSocket, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return nil, err
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		logger.Warn("setsockopt SO_REUSEADDR failed on probe socket", "err", err)
	}
	return &probeSocket{fd: fd}, nil
}

// bindTo attempts to bind the probe socket to (addr, ephemeral port). A
// successful bind proves addr belongs to a local interface, since bind(2)
// only succeeds for addresses the host owns.
func (p *probeSocket) bindTo(addr net.IP) (bool, error) {
	ip4 := addr.To4()
	if ip4 == nil {
		return false, fmt.Errorf("not an IPv4 address: %v", addr)
	}
	var sa unix.SockaddrInet4
	copy(sa.Addr[:], ip4)
	if err := unix.Bind(p.fd, &sa); err != nil {
		return false, err
	}
	return true, nil
}

func (p *probeSocket) Close() error {
	return unix.Close(p.fd)
}

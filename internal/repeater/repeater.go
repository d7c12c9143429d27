// Package repeater implements the CA broadcast repeater's core: a
// single-threaded UDP dispatch loop, its client table, its liveness
// prober, its fan-out engine, and its registrar. Every ambient concern
// (configuration, logging, metrics, process supervision) is injected
// through a narrow interface; this package never reaches out to the
// environment on its own.
package repeater

import (
	"errors"
	"net"

	"github.com/gabadinho/ca-repeater/internal/caproto"
	"github.com/gabadinho/ca-repeater/internal/log"
	"github.com/gabadinho/ca-repeater/internal/metrics"
)

// Repeater owns the service socket, the client table, the lazily-created
// probe socket, and the receive buffer -- the entirety of the process's
// mutable state, per the single-threaded resource model in the
// specification. There is exactly one goroutine that ever touches it.
type Repeater struct {
	logger  log.Logger
	metrics *metrics.Metrics

	conn  *net.UDPConn
	table Table
	probe *probeSocket
	buf   []byte
}

// New creates a Repeater whose service socket is bound to port on every
// local interface with SO_REUSEADDR set. An error satisfying
// IsAddressInUse means another repeater instance already owns the port;
// the caller should treat that as the "already running" clean-exit case.
func New(logger log.Logger, m *metrics.Metrics, port uint16, maxDatagram int) (*Repeater, error) {
	conn, err := CreateUDPSocket(logger, port, true)
	if err != nil {
		return nil, err
	}
	return &Repeater{
		logger:  logger,
		metrics: m,
		conn:    conn,
		buf:     make([]byte, maxDatagram),
	}, nil
}

// Close releases every socket the repeater owns: each client's outbound
// socket, the probe socket if one was ever created, and the service
// socket itself.
func (rp *Repeater) Close() {
	rp.table.Close()
	if rp.probe != nil {
		rp.probe.Close()
	}
	rp.conn.Close()
}

// ClientCount reports how many clients are currently registered.
func (rp *Repeater) ClientCount() int { return rp.table.Len() }

// Run blocks, dispatching inbound datagrams until the service socket is
// closed (typically by a concurrent call to Close from a signal handler).
func (rp *Repeater) Run() error {
	for {
		n, src, err := rp.conn.ReadFromUDP(rp.buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			if IsConnRefused(err) {
				// A stale async ICMP error bubbling up on the service
				// socket from an earlier, unrelated send; not fatal.
				continue
			}
			rp.logger.Warn("unexpected recv error", "err", err)
			continue
		}
		rp.dispatch(src, rp.buf[:n])
	}
}

// dispatch classifies one inbound datagram: a zero-length datagram or one
// beginning with a REPEATER_REGISTER header triggers registration; any
// payload left over (or present to begin with) is fanned out.
func (rp *Repeater) dispatch(src *net.UDPAddr, msg []byte) {
	if len(msg) == 0 {
		rp.Register(src)
		return
	}
	if len(msg) >= caproto.HeaderSize {
		h, _ := caproto.Decode(msg)
		if h.Command == caproto.CmdRepeaterRegister {
			rp.Register(src)
			rest := msg[caproto.HeaderSize:]
			if len(rest) == 0 {
				return
			}
			rp.FanOut(src, rest)
			return
		}
	}
	rp.FanOut(src, msg)
}

package repeater

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/gabadinho/ca-repeater/internal/caproto"
)

// Register validates that src is local, creates or reuses its client
// record, sends REPEATER_CONFIRM, and broadcasts a NOOP to every other
// client so stale peers are discovered even when no beacons are flowing.
func (rp *Repeater) Register(src *net.UDPAddr) {
	if src.IP.To4() == nil {
		return
	}
	if !rp.isLocal(src.IP) {
		rp.metrics.LocalityRejected()
		return
	}
	rp.metrics.Registration()

	record := rp.table.FindByPort(src.Port)
	newClient := false
	if record == nil {
		conn, err := DialClientSocket(src)
		if err != nil {
			rp.logger.Warn("unable to create client socket", "peer", src, "err", err)
			return
		}
		record = &Record{Addr: src, Conn: conn}
		rp.table.Insert(record)
		rp.metrics.IncClients()
		newClient = true
		rp.logger.Debug("registered new client", "peer", src)
	}

	confirm := caproto.ConfirmHeader(ipv4ToUint32(src.IP))
	n, err := record.Conn.Write(confirm.Encode())
	switch {
	case err == nil:
		if n != caproto.HeaderSize {
			panic(fmt.Sprintf("short write sending REPEATER_CONFIRM: wrote %d of %d bytes", n, caproto.HeaderSize))
		}
		rp.metrics.ConfirmSent()
	case IsConnRefused(err):
		rp.metrics.PeerRefused()
		rp.table.Remove(record)
		record.Conn.Close()
		rp.metrics.DecClients()
		rp.logger.Debug("client gone before confirm", "peer", src)
		newClient = false
	default:
		rp.logger.Warn("confirm send failed", "peer", src, "err", err)
	}

	noop := caproto.NoopHeader()
	rp.FanOut(src, noop.Encode())

	if newClient {
		// Deferred until after the confirm and NOOP so a brand new
		// client can never be reaped before it has been confirmed.
		rp.VerifyClients()
	}
}

// isLocal proves that ip belongs to this host. The loopback address is
// always accepted outright; anything else must successfully bind the
// lazily-created probe socket, since bind(2) only succeeds for addresses
// the host actually owns.
func (rp *Repeater) isLocal(ip net.IP) bool {
	if ip.IsLoopback() {
		return true
	}
	if rp.probe == nil {
		probe, err := newProbeSocket(rp.logger)
		if err != nil {
			rp.logger.Warn("unable to create locality probe socket", "err", err)
			return false
		}
		rp.probe = probe
	}
	ok, _ := rp.probe.bindTo(ip)
	return ok
}

func ipv4ToUint32(ip net.IP) uint32 {
	ip4 := ip.To4()
	if ip4 == nil {
		return 0
	}
	return binary.BigEndian.Uint32(ip4)
}

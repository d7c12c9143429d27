package repeater

import "net"

// FanOut replicates payload to every client in the table except the one
// whose (address, port) matches src, sending on each client's connected
// outbound socket. A record is never removed from within this pass even
// if its send is refused -- that would risk deleting a record the
// registrar is still in the middle of confirming (see Register). Instead
// an ECONNREFUSED anywhere in the pass schedules exactly one deferred
// VerifyClients call after every survivor has been reinserted.
func (rp *Repeater) FanOut(src *net.UDPAddr, payload []byte) {
	rp.metrics.FanoutDatagram()
	drained := rp.table.Drain()
	needsVerify := false
	for _, r := range drained {
		if r.Addr.Port == src.Port && r.Addr.IP.Equal(src.IP) {
			continue
		}
		rp.metrics.FanoutSend()
		if _, err := r.Conn.Write(payload); err != nil {
			if IsConnRefused(err) {
				rp.metrics.PeerRefused()
				needsVerify = true
			} else {
				rp.logger.Warn("fan-out send failed", "peer", r.Addr, "err", err)
			}
		}
	}
	rp.table.Concat(drained)
	if needsVerify {
		rp.VerifyClients()
	}
}

package repeater

import "net"

// VerifyClients runs one liveness-probe pass: it drains the client table,
// attempts to bind each record's source port locally without
// SO_REUSEADDR, and reaps any record whose port binds successfully (proof
// the original client's socket is gone -- a bind can only succeed if
// nothing else holds the port). Records that fail to bind because the
// port is in use are kept; any other bind failure is also kept, and
// logged as an anomaly, since an ambiguous result must never cause a
// reap. Survivors are reinserted at the tail of the table in their
// original relative order.
func (rp *Repeater) VerifyClients() {
	rp.metrics.ProbeRun()
	drained := rp.table.Drain()
	survivors := make([]*Record, 0, len(drained))
	for _, r := range drained {
		probe, err := net.ListenUDP("udp4", &net.UDPAddr{Port: r.Addr.Port})
		if err == nil {
			probe.Close()
			r.Conn.Close()
			rp.metrics.ProbeReaped()
			rp.metrics.DecClients()
			rp.logger.Debug("reaped dead client", "peer", r.Addr)
			continue
		}
		if !IsAddressInUse(err) {
			rp.logger.Warn("liveness bind-test failed unexpectedly", "peer", r.Addr, "err", err)
		}
		survivors = append(survivors, r)
	}
	rp.table.Concat(survivors)
}

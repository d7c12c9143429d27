package repeater

import "net"

// Record is one client table entry: the address the client registered
// from, and the outbound socket connected to it. Conn is closed on every
// path that drops the record (the prober, the registrar's refused-confirm
// path, Table.Close); Table.Remove itself leaves closing to its caller.
type Record struct {
	Addr *net.UDPAddr
	Conn *net.UDPConn
}

// Table is the ordered set of live clients, unique by source port.
// Iteration order is insertion order; it is observable only insofar as
// fan-out emits in that order.
type Table struct {
	records []*Record
}

// Insert adds r to the tail of the table.
func (t *Table) Insert(r *Record) {
	t.records = append(t.records, r)
}

// FindByPort returns the record whose source port is port, or nil.
func (t *Table) FindByPort(port int) *Record {
	for _, r := range t.records {
		if r.Addr.Port == port {
			return r
		}
	}
	return nil
}

// Remove detaches r from the table. It does not close r.Conn; callers
// that mean to destroy the record must close it themselves.
func (t *Table) Remove(r *Record) {
	for i, cur := range t.records {
		if cur == r {
			t.records = append(t.records[:i], t.records[i+1:]...)
			return
		}
	}
}

// Iter returns the current records in insertion order. Callers must not
// mutate the table while holding this slice; use Drain for that.
func (t *Table) Iter() []*Record {
	return t.records
}

// Drain removes and returns every record, leaving the table empty. The
// caller owns the returned slice and is expected to reinsert survivors
// with Concat once done iterating -- this is the drain/iterate/reinsert
// discipline the specification requires instead of locking.
func (t *Table) Drain() []*Record {
	out := t.records
	t.records = nil
	return out
}

// Concat appends recs to the tail of the table, preserving their relative
// order.
func (t *Table) Concat(recs []*Record) {
	t.records = append(t.records, recs...)
}

// Len reports the number of records currently in the table.
func (t *Table) Len() int { return len(t.records) }

// Close closes every record's outbound socket and empties the table.
func (t *Table) Close() {
	for _, r := range t.records {
		r.Conn.Close()
	}
	t.records = nil
}

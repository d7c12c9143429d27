package repeater

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLoopbackConn returns a connected UDP socket, the same shape as the
// real per-client outbound socket (DialClientSocket): connected, so Write
// succeeds until the socket is closed.
func newLoopbackConn(t *testing.T) *net.UDPConn {
	t.Helper()
	target, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	require.NoError(t, err)
	t.Cleanup(func() { target.Close() })

	conn, err := net.DialUDP("udp4", nil, target.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestTableInsertFindRemove(t *testing.T) {
	var table Table

	a := &Record{Addr: &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 111}, Conn: newLoopbackConn(t)}
	b := &Record{Addr: &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 222}, Conn: newLoopbackConn(t)}

	table.Insert(a)
	table.Insert(b)
	assert.Equal(t, 2, table.Len())

	assert.Same(t, a, table.FindByPort(111))
	assert.Same(t, b, table.FindByPort(222))
	assert.Nil(t, table.FindByPort(333))

	table.Remove(a)
	assert.Equal(t, 1, table.Len())
	assert.Nil(t, table.FindByPort(111))
	assert.Same(t, b, table.FindByPort(222))
}

func TestTableIterationOrderIsInsertionOrder(t *testing.T) {
	var table Table
	ports := []int{500, 100, 300}
	for _, p := range ports {
		table.Insert(&Record{Addr: &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: p}, Conn: newLoopbackConn(t)})
	}

	var gotPorts []int
	for _, r := range table.Iter() {
		gotPorts = append(gotPorts, r.Addr.Port)
	}
	assert.Equal(t, ports, gotPorts)
}

func TestTableDrainConcatPreservesOrder(t *testing.T) {
	var table Table
	for _, p := range []int{1, 2, 3} {
		table.Insert(&Record{Addr: &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: p}, Conn: newLoopbackConn(t)})
	}

	drained := table.Drain()
	assert.Equal(t, 0, table.Len())
	assert.Len(t, drained, 3)

	table.Concat(drained)
	var gotPorts []int
	for _, r := range table.Iter() {
		gotPorts = append(gotPorts, r.Addr.Port)
	}
	assert.Equal(t, []int{1, 2, 3}, gotPorts)
}

func TestTableCloseClosesEverySocket(t *testing.T) {
	var table Table
	conn := newLoopbackConn(t)
	table.Insert(&Record{Addr: &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1}, Conn: conn})

	table.Close()
	assert.Equal(t, 0, table.Len())

	_, err := conn.Write([]byte("x"))
	assert.Error(t, err)
}

package repeater

import (
	"encoding/binary"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabadinho/ca-repeater/internal/caproto"
)

func TestRegisterSendsExactlyOneConfirmWithOwnAddress(t *testing.T) {
	rp := newTestRepeater(t)
	c1 := newClientListener(t)

	rp.Register(c1.addr())

	got := c1.readOne(t)
	require.Len(t, got, caproto.HeaderSize)

	h, ok := caproto.Decode(got)
	require.True(t, ok)
	assert.Equal(t, caproto.CmdRepeaterConfirm, h.Command)
	assert.Equal(t, binary.BigEndian.Uint32(c1.addr().IP.To4()), h.Parameter2)

	c1.expectSilence(t)
	assert.Equal(t, 1, rp.ClientCount())
}

func TestRegisterIsIdempotent(t *testing.T) {
	rp := newTestRepeater(t)
	c1 := newClientListener(t)

	rp.Register(c1.addr())
	c1.readOne(t) // first CONFIRM

	rp.Register(c1.addr())
	second := c1.readOne(t) // second CONFIRM, no NOOP in between since c1 is the only client

	h, ok := caproto.Decode(second)
	require.True(t, ok)
	assert.Equal(t, caproto.CmdRepeaterConfirm, h.Command)

	assert.Equal(t, 1, rp.ClientCount(), "re-registration must not create a second record")
}

func TestRegisterRefusesNonLocalSource(t *testing.T) {
	rp := newTestRepeater(t)

	// TEST-NET-3 (RFC 5737), guaranteed never to be a local interface
	// address.
	remote := &net.UDPAddr{IP: net.IPv4(203, 0, 113, 42), Port: 9999}

	rp.Register(remote)

	assert.Equal(t, 0, rp.ClientCount())
	assert.Nil(t, rp.table.FindByPort(9999))
}

func TestRegisterPiggybackedPayloadIsFannedOutNotReflected(t *testing.T) {
	rp := newTestRepeater(t)
	c1 := newClientListener(t)
	c2 := newClientListener(t)

	registerClient(t, rp, c1)
	registerClient(t, rp, c2)
	c1.readOne(t) // NOOP from c2's registration

	register := caproto.Header{Command: caproto.CmdRepeaterRegister}
	payload := append(register.Encode(), []byte("twenty-byte-extra-xx")...)

	rp.dispatch(c1.addr(), payload)

	c1.readOne(t)         // c1's own re-CONFIRM
	c2.readOne(t)         // the NOOP the re-registration pokes c2 with
	got := c2.readOne(t) // the piggybacked payload, fanned out separately
	assert.Equal(t, payload[caproto.HeaderSize:], got)
	c1.expectSilence(t)
}

package caproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirmHeaderEchoesAddressInAvailableField(t *testing.T) {
	h := ConfirmHeader(0x7f000001)
	assert.Equal(t, CmdRepeaterConfirm, h.Command)
	assert.Equal(t, uint32(0x7f000001), h.Parameter2)
	assert.Zero(t, h.PayloadSize)
	assert.Zero(t, h.DataType)
	assert.Zero(t, h.Count)
	assert.Zero(t, h.Parameter1)
}

func TestNoopHeaderIsGenuine(t *testing.T) {
	// The original registrar constructed one zeroed header then mutated a
	// different variable's command field before fanning out, so the wire
	// NOOP was never actually set. The fix is that NoopHeader itself
	// carries the command -- not a second, still-zero value.
	h := NoopHeader()
	assert.Equal(t, CmdNoop, h.Command)

	encoded := h.Encode()
	decoded, ok := Decode(encoded)
	assert.True(t, ok)
	assert.Equal(t, CmdNoop, decoded.Command)
	assert.Equal(t, uint32(0), decoded.Parameter2)
}

func TestDecodeRejectsShortBuffer(t *testing.T) {
	_, ok := Decode([]byte{1, 2, 3})
	assert.False(t, ok)
}

// Package caproto defines the small slice of the Channel Access wire
// protocol that the broadcast repeater needs to understand: the fixed-size
// message header and the handful of commands it inspects or originates.
// Everything else in a CA datagram is opaque to the repeater and is
// forwarded byte-for-byte.
package caproto

import "encoding/binary"

// HeaderSize is the on-wire size of a Header in bytes.
const HeaderSize = 16

// Commands the repeater recognises. All other command values are forwarded
// verbatim without interpretation.
const (
	CmdVersion          uint16 = 0
	CmdEventAdd         uint16 = 1
	CmdNoop             uint16 = 8 // CA_PROTO_NOOP, used to poke other clients
	CmdRepeaterConfirm  uint16 = 17
	CmdRepeaterRegister uint16 = 24
)

// Header is the fixed CA message header. The repeater treats every field
// except Command and Parameter2 as opaque: it reads Command to classify
// inbound datagrams and writes Command/Parameter2 only when it originates
// a REPEATER_CONFIRM or CA_PROTO_NOOP message of its own.
type Header struct {
	Command     uint16
	PayloadSize uint16
	DataType    uint16
	Count       uint16
	Parameter1  uint32
	Parameter2  uint32 // "available"; carries the client's own IPv4 address in CONFIRM replies
}

// Decode parses a Header from the front of b. It reports ok=false if b is
// shorter than HeaderSize.
func Decode(b []byte) (h Header, ok bool) {
	if len(b) < HeaderSize {
		return Header{}, false
	}
	h.Command = binary.BigEndian.Uint16(b[0:2])
	h.PayloadSize = binary.BigEndian.Uint16(b[2:4])
	h.DataType = binary.BigEndian.Uint16(b[4:6])
	h.Count = binary.BigEndian.Uint16(b[6:8])
	h.Parameter1 = binary.BigEndian.Uint32(b[8:12])
	h.Parameter2 = binary.BigEndian.Uint32(b[12:16])
	return h, true
}

// Encode serializes h into a freshly allocated HeaderSize-byte slice.
func (h Header) Encode() []byte {
	b := make([]byte, HeaderSize)
	binary.BigEndian.PutUint16(b[0:2], h.Command)
	binary.BigEndian.PutUint16(b[2:4], h.PayloadSize)
	binary.BigEndian.PutUint16(b[4:6], h.DataType)
	binary.BigEndian.PutUint16(b[6:8], h.Count)
	binary.BigEndian.PutUint32(b[8:12], h.Parameter1)
	binary.BigEndian.PutUint32(b[12:16], h.Parameter2)
	return b
}

// ConfirmHeader builds a REPEATER_CONFIRM header echoing the client's own
// IPv4 address (network byte order) in the Parameter2 ("available") field.
func ConfirmHeader(clientIPv4 uint32) Header {
	return Header{Command: CmdRepeaterConfirm, Parameter2: clientIPv4}
}

// NoopHeader builds a genuine, all-else-zeroed CA_PROTO_NOOP header.
func NoopHeader() Header {
	return Header{Command: CmdNoop}
}

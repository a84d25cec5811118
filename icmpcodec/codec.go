package icmpcodec

import (
	"encoding/binary"
	"errors"

	"github.com/tredeske/u/unet"
)

// HeaderLen is the fixed 8 byte ICMP Echo header: type, code, checksum, id, seq.
const HeaderLen = 8

// MaxPayload is the largest payload pingfs ever places in a chunk.
const MaxPayload = 1024

// Family selects which ICMP dialect (and which request/reply type values)
// a frame belongs to.
type Family int

const (
	V4 Family = iota
	V6
)

func (this Family) String() string {
	if V4 == this {
		return "v4"
	}
	return "v6"
}

// RequestType returns the ICMP Echo Request type for this family.
func (this Family) RequestType() byte {
	if V4 == this {
		return unet.ICMP_ECHO
	}
	return unet.ICMPV6_ECHO_REQUEST
}

// ReplyType returns the ICMP Echo Reply type for this family.
func (this Family) ReplyType() byte {
	if V4 == this {
		return byte(unet.ICMP_ECHOREPLY)
	}
	return unet.ICMPV6_ECHO_REPLY
}

// Kind classifies a decoded frame.
type Kind int

const (
	Unknown Kind = iota
	Request
	Reply
)

func (this Kind) String() string {
	switch this {
	case Request:
		return "request"
	case Reply:
		return "reply"
	default:
		return "unknown"
	}
}

// Reason explains why a frame was classified Unknown.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonShortFrame
	ReasonBadType
)

var (
	ErrShortFrame = errors.New("icmpcodec: frame shorter than header")
	ErrBadIHL     = errors.New("icmpcodec: ipv4 header length exceeds frame")
)

// Frame is a decoded ICMP Echo message.
type Frame struct {
	Family  Family
	Kind    Kind
	Reason  Reason // set when Kind == Unknown
	Type    byte
	Code    byte
	Id      uint16
	Seq     uint16
	Payload []byte
}

// Encode builds an ICMP Echo Request frame (pingfs only ever transmits
// requests; peers are the ones replying).
//
// For v4, the checksum is computed and filled in. For v6, the checksum
// field is left zero; the kernel computes it using the pseudo-header at
// send time.
func Encode(family Family, id, seq uint16, payload []byte) (rv []byte, err error) {
	if MaxPayload < len(payload) {
		return nil, errors.New("icmpcodec: payload exceeds 1024 bytes")
	}
	rv = make([]byte, HeaderLen+len(payload))
	rv[0] = family.RequestType()
	rv[1] = 0
	binary.BigEndian.PutUint16(rv[2:4], 0) // checksum filled below
	binary.BigEndian.PutUint16(rv[4:6], id)
	binary.BigEndian.PutUint16(rv[6:8], seq)
	copy(rv[HeaderLen:], payload)

	if V4 == family {
		binary.BigEndian.PutUint16(rv[2:4], Checksum(rv))
	}
	return
}

// Decode parses a raw datagram read off a raw ICMP socket.
//
// For v4, raw begins with the IPv4 header (the kernel does not strip it
// on a raw ICMP socket); the header is stripped here using the IHL field
// (low nibble of the first byte, scaled by 4 to a byte count).
//
// For v6, raw is the bare ICMP6 message; the kernel never delivers the
// IPv6 header on an ICMPv6 raw socket.
func Decode(family Family, raw []byte) (rv Frame, err error) {
	if V4 == family {
		if 0 == len(raw) {
			return Frame{}, ErrShortFrame
		}
		ihl := int(raw[0]&0x0f) * 4
		if ihl > len(raw) {
			return Frame{}, ErrBadIHL
		}
		raw = raw[ihl:]
	}

	rv.Family = family
	if HeaderLen > len(raw) {
		rv.Kind = Unknown
		rv.Reason = ReasonShortFrame
		return rv, nil
	}

	rv.Type = raw[0]
	rv.Code = raw[1]
	rv.Id = binary.BigEndian.Uint16(raw[4:6])
	rv.Seq = binary.BigEndian.Uint16(raw[6:8])
	rv.Payload = raw[HeaderLen:]

	switch rv.Type {
	case family.RequestType():
		rv.Kind = Request
	case family.ReplyType():
		rv.Kind = Reply
	default:
		rv.Kind = Unknown
		rv.Reason = ReasonBadType
	}
	return rv, nil
}

// Checksum computes the standard ICMP 16-bit one's-complement checksum:
// sum the frame as big-endian 16-bit words (the trailing byte of an odd
// length frame padded as the high byte of a final word), fold the carries
// back in, then invert.
func Checksum(b []byte) uint16 {
	var sum uint32
	n := len(b)
	for i := 0; i+1 < n; i += 2 {
		sum += uint32(binary.BigEndian.Uint16(b[i : i+2]))
	}
	if 0 != n%2 {
		sum += uint32(b[n-1]) << 8
	}
	for 0 != sum>>16 {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	return ^uint16(sum)
}

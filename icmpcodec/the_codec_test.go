package icmpcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payloadOfLen(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 256)
	}
	return b
}

func TestRoundTripV4(t *testing.T) {
	for length := 0; length <= 1400 && length <= MaxPayload; length++ {
		payload := payloadOfLen(length)
		raw, err := Encode(V4, 42, 7, payload)
		require.NoError(t, err)

		frame, err := Decode(V4, raw)
		require.NoError(t, err)
		assert.Equal(t, Request, frame.Kind)
		assert.EqualValues(t, 42, frame.Id)
		assert.EqualValues(t, 7, frame.Seq)
		assert.Equal(t, payload, frame.Payload)
	}
}

func TestRoundTripV6NoChecksum(t *testing.T) {
	payload := payloadOfLen(100)
	raw, err := Encode(V6, 1, 1, payload)
	require.NoError(t, err)
	assert.EqualValues(t, 0, raw[2], "v6 checksum left for the kernel")
	assert.EqualValues(t, 0, raw[3])

	frame, err := Decode(V6, raw)
	require.NoError(t, err)
	assert.Equal(t, Request, frame.Kind)
	assert.Equal(t, payload, frame.Payload)
}

func TestChecksumVerifiesToZero(t *testing.T) {
	raw, err := Encode(V4, 99, 3, payloadOfLen(37))
	require.NoError(t, err)

	var sum uint32
	for i := 0; i+1 < len(raw); i += 2 {
		sum += uint32(raw[i])<<8 | uint32(raw[i+1])
	}
	for 0 != sum>>16 {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	assert.EqualValues(t, 0xffff, sum, "one's complement sum over a valid checksum verifies to all-ones (0 after invert)")
}

func TestRejectsPayloadOver1024(t *testing.T) {
	_, err := Encode(V4, 1, 1, payloadOfLen(1025))
	assert.Error(t, err)
}

func TestClassifiesReply(t *testing.T) {
	raw, err := Encode(V4, 5, 5, payloadOfLen(4))
	require.NoError(t, err)
	raw[0] = V4.ReplyType()
	raw[2], raw[3] = 0, 0
	chk := Checksum(raw)
	raw[2] = byte(chk >> 8)
	raw[3] = byte(chk)

	frame, err := Decode(V4, raw)
	require.NoError(t, err)
	assert.Equal(t, Reply, frame.Kind)
}

func TestUnknownTypeRejected(t *testing.T) {
	raw, err := Encode(V4, 1, 1, payloadOfLen(4))
	require.NoError(t, err)
	raw[0] = 99 // neither request nor reply

	frame, err := Decode(V4, raw)
	require.NoError(t, err)
	assert.Equal(t, Unknown, frame.Kind)
	assert.Equal(t, ReasonBadType, frame.Reason)
}

func TestV4HeaderStripped(t *testing.T) {
	icmp, err := Encode(V4, 3, 3, payloadOfLen(8))
	require.NoError(t, err)

	ipHdr := make([]byte, 20)
	ipHdr[0] = 0x45 // version 4, IHL 5 (20 bytes)
	raw := append(ipHdr, icmp...)

	frame, err := Decode(V4, raw)
	require.NoError(t, err)
	assert.Equal(t, Request, frame.Kind)
	assert.EqualValues(t, 3, frame.Id)
}

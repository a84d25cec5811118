package transport

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPacketCounterAccumulates(t *testing.T) {
	var c PacketCounter
	c.add(8)
	c.add(1032)

	packets, bytes := c.Snapshot()
	require.EqualValues(t, 2, packets)
	require.EqualValues(t, 1040, bytes)
}

func TestPacketCounterStartsAtZero(t *testing.T) {
	var c PacketCounter
	packets, bytes := c.Snapshot()
	require.Zero(t, packets)
	require.Zero(t, bytes)
}

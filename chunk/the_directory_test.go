package chunk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tredeske/u/unet"

	"github.com/tredeske/pingfs/hostpeer"
)

func testHost() hostpeer.Host {
	var addr unet.Address
	_ = addr.ResolveIp("127.0.0.1")
	return hostpeer.Host{Addr: addr}
}

func TestDirectoryAddAssignsDistinctIds(t *testing.T) {
	d := NewDirectory(nil)
	host := testHost()
	c1, err := d.Add(host, 4)
	require.NoError(t, err)
	c2, err := d.Add(host, 4)
	require.NoError(t, err)
	assert.NotEqual(t, c1.Id, c2.Id)
	assert.Equal(t, 2, d.Len())
}

func TestDirectoryRemove(t *testing.T) {
	d := NewDirectory(nil)
	c, err := d.Add(testHost(), 4)
	require.NoError(t, err)
	d.Remove(c.Id)
	_, ok := d.Get(c.Id)
	assert.False(t, ok)
}

func TestDispatchDropsUnknownId(t *testing.T) {
	d := NewDirectory(nil)
	// no chunk registered; dispatch must not panic, transport is nil so
	// any re-emit attempt would crash, proving the drop-at-step-1 path.
	d.DispatchReply(unet.Address{}, 1234, 0, []byte{1, 2, 3})
}

func TestDispatchDropsLengthMismatch(t *testing.T) {
	d := NewDirectory(nil)
	c, err := d.Add(testHost(), 3)
	require.NoError(t, err)
	// payload length (4) does not match chunk.len (3): must drop before
	// touching the nil transport.
	d.DispatchReply(c.Host.Addr, c.Id, 0, []byte{1, 2, 3, 4})
	assert.Equal(t, uint16(0), c.Seqno())
}

func TestDispatchDropsSeqnoMismatch(t *testing.T) {
	d := NewDirectory(nil)
	c, err := d.Add(testHost(), 3)
	require.NoError(t, err)
	d.DispatchReply(c.Host.Addr, c.Id, 7, []byte{1, 2, 3})
	assert.Equal(t, uint16(0), c.Seqno())
}

func TestRendezvousBusyOnSecondWait(t *testing.T) {
	c := newChunk(1, testHost(), 3)
	done := make(chan struct{})
	go func() {
		_, _ = WaitFor(c, 200*time.Millisecond)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	_, err := WaitFor(c, time.Millisecond)
	assert.Equal(t, ErrBusy, err)
	<-done
}

func TestRendezvousTimesOutAsLost(t *testing.T) {
	c := newChunk(1, testHost(), 3)
	_, err := WaitFor(c, 10*time.Millisecond)
	assert.Equal(t, ErrLost, err)
}

func TestDoneWithNoRendezvousIsGone(t *testing.T) {
	c := newChunk(1, testHost(), 3)
	err := Done(c, []byte{1, 2, 3})
	assert.Equal(t, ErrGone, err)
}

func TestRendezvousHandshakeReplacesPayload(t *testing.T) {
	c := newChunk(1, testHost(), 3)

	waited := make(chan []byte, 1)
	go func() {
		payload, err := WaitFor(c, time.Second)
		require.NoError(t, err)
		waited <- payload
		require.NoError(t, Done(c, []byte{9, 9}))
	}()

	time.Sleep(10 * time.Millisecond)
	c.mu.Lock()
	s := c.slot
	c.mu.Unlock()
	require.NotNil(t, s)

	out, handed := offerToRendezvous(s, []byte{1, 2, 3})
	assert.True(t, handed)
	assert.Equal(t, []byte{9, 9}, out)
	assert.Equal(t, []byte{1, 2, 3}, <-waited)
	assert.Equal(t, 2, c.Len())
}

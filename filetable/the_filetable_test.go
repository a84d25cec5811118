package filetable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/sys/unix"

	"github.com/tredeske/u/unet"

	"github.com/tredeske/pingfs/chunk"
	"github.com/tredeske/pingfs/hostpeer"
)

// fakeSender stands in for the transport during tests: it just drops
// whatever is sent, since there is no real peer (and no privilege) to
// bounce an echo off of in a unit test.
type fakeSender struct{ sent int }

func (this *fakeSender) Send(peer unet.Address, id, seq uint16, payload []byte) error {
	this.sent++
	return nil
}

func newTestTable(t *testing.T) (*Table, *chunk.Directory, *fakeSender) {
	sender := &fakeSender{}
	dir := chunk.NewDirectory(sender)
	var addr unet.Address
	require.NoError(t, addr.ResolveIp("127.0.0.1"))
	registry, err := hostpeer.NewRegistry([]hostpeer.Host{{Addr: addr}})
	require.NoError(t, err)
	return New(sender, dir, registry, 50*time.Millisecond), dir, sender
}

func TestMknodRefusesNonRegular(t *testing.T) {
	tbl, _, _ := newTestTable(t)
	err := tbl.Mknod("/dir", unix.S_IFDIR|0755)
	assert.Equal(t, ErrNotRegularFile, err)
}

func TestMknodRefusesDuplicate(t *testing.T) {
	tbl, _, _ := newTestTable(t)
	require.NoError(t, tbl.Mknod("/a", unix.S_IFREG|0644))
	err := tbl.Mknod("/a", unix.S_IFREG|0644)
	assert.Equal(t, ErrExists, err)
}

func TestWriteAppendThenGetattr(t *testing.T) {
	tbl, _, sender := newTestTable(t)
	require.NoError(t, tbl.Mknod("/a", unix.S_IFREG|0644))

	n, err := tbl.Write("/a", []byte("hello"), 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 1, sender.sent)

	attr, err := tbl.Getattr("/a")
	require.NoError(t, err)
	assert.EqualValues(t, 5, attr.Size)
	assert.EqualValues(t, 1, attr.Nlink)
}

// simulateReply drives the receiver side of one in-flight echo for c's
// current state, the way the transport's receive loop would, by calling
// the directory's public dispatch entry point directly.
func simulateReply(dir *chunk.Directory, c *chunk.Chunk, payload []byte) {
	dir.DispatchReply(c.Host.Addr, c.Id, c.Seqno(), payload)
}

func TestReadUnmodifiedThroughRendezvous(t *testing.T) {
	tbl, dir, _ := newTestTable(t)
	require.NoError(t, tbl.Mknod("/a", unix.S_IFREG|0644))
	_, err := tbl.Write("/a", []byte("hello"), 0)
	require.NoError(t, err)
	c := tbl.files["/a"].chunks[0]

	readDone := make(chan struct{})
	var data []byte
	var readErr error
	go func() {
		data, readErr = tbl.Read("/a", 5, 0)
		close(readDone)
	}()

	time.Sleep(10 * time.Millisecond)
	simulateReply(dir, c, []byte("hello"))

	<-readDone
	require.NoError(t, readErr)
	assert.Equal(t, []byte("hello"), data)
}

func TestWriteModifyThroughRendezvous(t *testing.T) {
	tbl, dir, _ := newTestTable(t)
	require.NoError(t, tbl.Mknod("/a", unix.S_IFREG|0644))
	_, err := tbl.Write("/a", []byte("hello"), 0)
	require.NoError(t, err)
	c := tbl.files["/a"].chunks[0]

	writeDone := make(chan struct{})
	var n int
	var writeErr error
	go func() {
		n, writeErr = tbl.Write("/a", []byte("HELLO"), 0)
		close(writeDone)
	}()

	time.Sleep(10 * time.Millisecond)
	simulateReply(dir, c, []byte("hello"))

	<-writeDone
	require.NoError(t, writeErr)
	assert.Equal(t, 5, n)
	assert.Equal(t, uint16(1), c.Seqno()) // bumped once, by the accepted reply that carried the rendezvous
}

func TestReadPastEndReturnsNoBytes(t *testing.T) {
	tbl, _, _ := newTestTable(t)
	require.NoError(t, tbl.Mknod("/a", unix.S_IFREG|0644))
	_, err := tbl.Write("/a", []byte("hi"), 0)
	require.NoError(t, err)

	data, err := tbl.Read("/a", 5, 100)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestReadTimesOutAsError(t *testing.T) {
	tbl, _, _ := newTestTable(t)
	require.NoError(t, tbl.Mknod("/a", unix.S_IFREG|0644))
	_, err := tbl.Write("/a", []byte("hi"), 0)
	require.NoError(t, err)

	_, err = tbl.Read("/a", 5, 0)
	assert.Equal(t, chunk.ErrLost, err)
}

func TestUnlinkFreesChunks(t *testing.T) {
	tbl, dir, _ := newTestTable(t)
	require.NoError(t, tbl.Mknod("/a", unix.S_IFREG|0644))
	_, err := tbl.Write("/a", []byte("hi"), 0)
	require.NoError(t, err)
	id := tbl.files["/a"].chunks[0].Id

	require.NoError(t, tbl.Unlink("/a"))
	_, ok := dir.Get(id)
	assert.False(t, ok)
	assert.Empty(t, tbl.Readdir())
}

func TestRenamePreservesData(t *testing.T) {
	tbl, _, _ := newTestTable(t)
	require.NoError(t, tbl.Mknod("/a", unix.S_IFREG|0644))
	_, err := tbl.Write("/a", []byte("hi"), 0)
	require.NoError(t, err)

	require.NoError(t, tbl.Rename("/a", "/b"))
	_, err = tbl.Getattr("/a")
	assert.Equal(t, ErrNotFound, err)
	attr, err := tbl.Getattr("/b")
	require.NoError(t, err)
	assert.EqualValues(t, 2, attr.Size)
}

func TestTruncateShrinkDropsTailChunks(t *testing.T) {
	tbl, dir, _ := newTestTable(t)
	require.NoError(t, tbl.Mknod("/a", unix.S_IFREG|0644))

	big := make([]byte, 1024)
	_, err := tbl.Write("/a", big, 0)
	require.NoError(t, err)
	_, err = tbl.Write("/a", []byte{0xBB}, 1024)
	require.NoError(t, err)
	c0 := tbl.files["/a"].chunks[0]

	attr, err := tbl.Getattr("/a")
	require.NoError(t, err)
	assert.EqualValues(t, 1025, attr.Size)

	// Shrinking mid-chunk requires one rendezvous with the surviving
	// chunk to cut its payload down; answer it with matching length/seqno.
	go func() {
		time.Sleep(10 * time.Millisecond)
		simulateReply(dir, c0, big)
	}()

	require.NoError(t, tbl.Truncate("/a", 10))
	attr, err = tbl.Getattr("/a")
	require.NoError(t, err)
	assert.EqualValues(t, 10, attr.Size)
	assert.Len(t, tbl.files["/a"].chunks, 1)
}

func TestTruncateGrowZeroFills(t *testing.T) {
	tbl, dir, _ := newTestTable(t)
	require.NoError(t, tbl.Mknod("/a", unix.S_IFREG|0644))
	_, err := tbl.Write("/a", []byte("hi"), 0)
	require.NoError(t, err)
	c0 := tbl.files["/a"].chunks[0]

	// Growing past the first chunk's current length requires exactly one
	// rendezvous, to extend that chunk up to 1024 bytes; every chunk
	// after that is a brand new append needing no rendezvous at all.
	// Answer that single rendezvous with the chunk's original 2-byte
	// content, which is all dispatch checks (length and seqno, not
	// bytes).
	go func() {
		time.Sleep(10 * time.Millisecond)
		simulateReply(dir, c0, []byte("hi"))
	}()

	require.NoError(t, tbl.Truncate("/a", 3000))
	attr, err := tbl.Getattr("/a")
	require.NoError(t, err)
	assert.EqualValues(t, 3000, attr.Size)
	assert.GreaterOrEqual(t, len(tbl.files["/a"].chunks), 3)
}

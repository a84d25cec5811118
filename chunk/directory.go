package chunk

import (
	"bytes"
	"sync"

	"github.com/tredeske/u/uerr"
	"github.com/tredeske/u/unet"

	"github.com/tredeske/pingfs/hostpeer"
)

const ErrIdsExhausted = uerr.Const("chunk: no free chunk id available")

// Sender is the one transport capability the chunk package and
// filetable need: placing an echo on the wire. Satisfied by
// *transport.Transport; narrowed to an interface here so directory and
// rendezvous logic can be tested without opening a raw socket.
type Sender interface {
	Send(peer unet.Address, id, seq uint16, payload []byte) error
}

// Directory is the set of currently live chunks, keyed by the 16-bit
// identifier carried in every echo. It owns dispatch of incoming replies
// and id allocation.
type Directory struct {
	t Sender

	mu     sync.Mutex
	byId   map[uint16]*Chunk
	cursor uint32 // next id candidate, wraps mod 2^16
}

func NewDirectory(t Sender) *Directory {
	return &Directory{t: t, byId: make(map[uint16]*Chunk)}
}

// Add allocates a fresh id and registers a new chunk for host holding
// length bytes of (caller-supplied, already in-flight) payload.
//
// The id counter wraps mod 2^16, which risks colliding with a still-live
// id across very long uptimes; rather than aliasing a live id on wrap
// (which would let two chunks fight over one in-flight echo) this probes
// forward for a free slot and only fails once all 65536 ids are live.
func (this *Directory) Add(host hostpeer.Host, length int) (c *Chunk, err error) {
	this.mu.Lock()
	defer this.mu.Unlock()

	if 1<<16 <= len(this.byId) {
		return nil, ErrIdsExhausted
	}
	var id uint16
	for tries := 0; ; tries++ {
		if 1<<16 <= tries {
			return nil, ErrIdsExhausted
		}
		id = uint16(this.cursor)
		this.cursor++
		if _, live := this.byId[id]; !live {
			break
		}
	}
	c = newChunk(id, host, length)
	this.byId[id] = c
	return c, nil
}

// Remove drops id from the directory. The corresponding echo simply
// stops being re-emitted the next time a reply for it arrives (or, if
// one is in flight right now, that final reply is dropped at step 1 of
// dispatch since the id is already gone).
func (this *Directory) Remove(id uint16) {
	this.mu.Lock()
	defer this.mu.Unlock()
	delete(this.byId, id)
}

func (this *Directory) Get(id uint16) (c *Chunk, ok bool) {
	this.mu.Lock()
	defer this.mu.Unlock()
	c, ok = this.byId[id]
	return
}

func (this *Directory) Len() int {
	this.mu.Lock()
	defer this.mu.Unlock()
	return len(this.byId)
}

// DispatchReply runs the dispatch protocol, step by step, for a single
// decoded reply arriving from peer. It is called from the transport's
// receive loop, so it runs on the receiver thread.
func (this *Directory) DispatchReply(peer unet.Address, id, seqno uint16, payload []byte) {
	c, ok := this.Get(id)
	if !ok {
		return // step 1: no such chunk, drop
	}

	c.mu.Lock()
	if len(payload) != c.len || seqno != c.seqno {
		c.mu.Unlock()
		return // step 2: stale or duplicate, drop
	}
	c.seqno++ // step 3
	s := c.slot
	c.mu.Unlock()

	out := payload
	if nil != s {
		// step 4: hand the payload to the waiting filesystem thread and
		// block until it hands the (possibly replaced) payload back.
		replaced, handed := offerToRendezvous(s, payload)
		out = replaced
		if !handed {
			out = payload // nobody there after all; re-send unchanged
		}
		if !bytes.Equal(out, payload) {
			c.mu.Lock()
			c.len = len(out)
			c.mu.Unlock()
		}
	}

	// step 5: unconditional re-emit, keeping the chunk alive on the wire.
	sendErr := this.t.Send(c.Host.Addr, c.Id, c.Seqno(), out)
	_ = sendErr // transport already logs send failures; nothing more to do
}

package chunk

import (
	"time"

	"github.com/tredeske/u/uerr"
)

const (
	// ErrBusy: a rendezvous is already in progress for this chunk.
	ErrBusy = uerr.Const("chunk: rendezvous busy")
	// ErrLost: the deadline elapsed before a reply arrived; the in-flight
	// echo is considered lost.
	ErrLost = uerr.Const("chunk: rendezvous timed out, echo lost")
	// ErrGone: Done was called against a chunk with no active rendezvous
	// (it was never started, or it already timed out).
	ErrGone = uerr.Const("chunk: no rendezvous in progress")
)

// slot is the per-chunk coordination object, implemented as a pair of
// unbuffered channels (a oneshot pair) rather than a condition
// variable/turn flag. deliver carries the fresh reply payload from the
// receiver to the filesystem side; handBack carries the (possibly
// modified) payload back.
type slot struct {
	deliver  chan []byte
	handBack chan []byte
}

// deliverGuard bounds how long the receiver will wait for a filesystem
// side that is mid-timeout-abandonment to actually receive on deliver.
const deliverGuard = 50 * time.Millisecond

// WaitFor begins a rendezvous with chunk. On success, the caller owns the
// turn and may inspect/mutate the returned payload, then must call Done.
// Only one rendezvous at a time is permitted per chunk.
func WaitFor(c *Chunk, timeout time.Duration) (payload []byte, err error) {
	c.mu.Lock()
	if nil != c.slot {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	s := &slot{deliver: make(chan []byte), handBack: make(chan []byte)}
	c.slot = s
	c.mu.Unlock()

	select {
	case payload = <-s.deliver:
		return payload, nil
	case <-time.After(timeout):
		c.mu.Lock()
		if c.slot == s {
			c.slot = nil
		}
		c.mu.Unlock()
		return nil, ErrLost
	}
}

// Done publishes newPayload as the chunk's new content, records its
// length so the next incoming reply is matched against it, and hands the
// turn back to the receiver, which will re-send newPayload.
func Done(c *Chunk, newPayload []byte) (err error) {
	c.mu.Lock()
	s := c.slot
	c.mu.Unlock()
	if nil == s {
		return ErrGone
	}
	c.mu.Lock()
	c.len = len(newPayload)
	c.slot = nil
	c.mu.Unlock()

	s.handBack <- newPayload
	return nil
}

// offerToRendezvous is called from the receiver side (dispatch) when a
// fresh, matching reply arrives for a chunk that has an active
// rendezvous. It hands payload to the waiting filesystem side and blocks
// for the (possibly modified) payload to send back out.
//
// ok is false if nobody was actually listening on deliver within
// deliverGuard (the filesystem side raced a WaitFor timeout against this
// delivery); in that case the receiver should fall back to re-sending the
// original payload unchanged.
func offerToRendezvous(s *slot, payload []byte) (out []byte, ok bool) {
	select {
	case s.deliver <- payload:
	case <-time.After(deliverGuard):
		return payload, false
	}
	out = <-s.handBack
	return out, true
}

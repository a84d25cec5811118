package chunk

import (
	"sync"

	"github.com/tredeske/pingfs/hostpeer"
)

// Chunk is a unit of payload storage in flight: an outstanding echo
// bouncing between pingfs and Host.
//
// Seqno and Len are mutated only while holding mu — by the rendezvous
// handshake (filesystem side, via Done) or by the directory's dispatch
// path (receiver side, incrementing Seqno on every accepted reply). Id
// and Host never change after creation.
type Chunk struct {
	Id   uint16
	Host hostpeer.Host

	mu    sync.Mutex
	seqno uint16
	len   int
	slot  *slot // non-nil while a rendezvous is in progress
}

func newChunk(id uint16, host hostpeer.Host, length int) *Chunk {
	return &Chunk{Id: id, Host: host, len: length}
}

func (this *Chunk) Seqno() uint16 {
	this.mu.Lock()
	defer this.mu.Unlock()
	return this.seqno
}

func (this *Chunk) Len() int {
	this.mu.Lock()
	defer this.mu.Unlock()
	return this.len
}

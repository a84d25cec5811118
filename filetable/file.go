package filetable

import (
	"github.com/tredeske/pingfs/chunk"
)

// File is a named, flat-namespace file: an ordered chain of chunks and
// nothing else. Mode is fixed at mknod time; pingfs stores no other
// metadata (getattr reports fixed 0 timestamps and nlink 1).
type File struct {
	Name   string
	Mode   uint32
	chunks []*chunk.Chunk
}

// Size is the sum of every chunk's current length.
func (this *File) Size() (size int64) {
	for _, c := range this.chunks {
		size += int64(c.Len())
	}
	return
}

// chunkAt walks the chain to find the chunk containing byte offset,
// returning its index and the cumulative length of every chunk before
// it. ok is false if offset is at or past the end of the chain.
func (this *File) chunkAt(offset int64) (index int, base int64, ok bool) {
	for i, c := range this.chunks {
		length := int64(c.Len())
		if offset < base+length {
			return i, base, true
		}
		base += length
	}
	return 0, base, false
}

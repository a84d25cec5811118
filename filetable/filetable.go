package filetable

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/tredeske/u/uerr"

	"github.com/tredeske/pingfs/chunk"
	"github.com/tredeske/pingfs/hostpeer"
)

const maxChunk = 1024

const (
	ErrNotFound       = uerr.Const("filetable: no such file")
	ErrExists         = uerr.Const("filetable: file exists")
	ErrNotRegularFile = uerr.Const("filetable: only regular files are supported")
)

// Attr is the subset of POSIX attributes pingfs actually tracks:
// everything else is fixed (zero timestamps, nlink 1).
type Attr struct {
	Size  int64
	Mode  uint32
	Nlink uint32
}

// Table holds every live file, keyed by name in a flat root directory.
// It is driven by a single kernel-upcall thread at a time and so keeps
// no lock of its own; fusebind must not call it concurrently.
type Table struct {
	dir     *chunk.Directory
	hosts   *hostpeer.Registry
	t       chunk.Sender
	timeout time.Duration

	files map[string]*File
	order []string // insertion order, for a stable Readdir
}

func New(
	t chunk.Sender,
	dir *chunk.Directory,
	hosts *hostpeer.Registry,
	timeout time.Duration,
) *Table {
	return &Table{
		dir:     dir,
		hosts:   hosts,
		t:       t,
		timeout: timeout,
		files:   make(map[string]*File),
	}
}

func isRegular(mode uint32) bool {
	return (mode & unix.S_IFMT) == unix.S_IFREG
}

// Mknod creates a new, empty regular file. Directories and devices are
// refused, as is a duplicate name.
func (this *Table) Mknod(name string, mode uint32) (err error) {
	if !isRegular(mode) {
		return ErrNotRegularFile
	}
	if _, exists := this.files[name]; exists {
		return ErrExists
	}
	this.files[name] = &File{Name: name, Mode: mode}
	this.order = append(this.order, name)
	return nil
}

// Unlink removes name and frees every chunk in its chain. The chunks'
// in-flight echoes are not explicitly cancelled; each is simply received
// once more by the transport and, finding no matching directory entry,
// dropped, ending the loop.
func (this *Table) Unlink(name string) (err error) {
	f, ok := this.files[name]
	if !ok {
		return ErrNotFound
	}
	for _, c := range f.chunks {
		this.dir.Remove(c.Id)
	}
	delete(this.files, name)
	for i, n := range this.order {
		if n == name {
			this.order = append(this.order[:i], this.order[i+1:]...)
			break
		}
	}
	return nil
}

func (this *Table) Getattr(name string) (attr Attr, err error) {
	f, ok := this.files[name]
	if !ok {
		return Attr{}, ErrNotFound
	}
	return Attr{Size: f.Size(), Mode: f.Mode, Nlink: 1}, nil
}

// Readdir lists every file in the flat root, in creation order.
func (this *Table) Readdir() (names []string) {
	names = make([]string, len(this.order))
	copy(names, this.order)
	return
}

func (this *Table) Rename(oldName, newName string) (err error) {
	f, ok := this.files[oldName]
	if !ok {
		return ErrNotFound
	}
	if _, exists := this.files[newName]; exists {
		return ErrExists
	}
	delete(this.files, oldName)
	f.Name = newName
	this.files[newName] = f
	for i, n := range this.order {
		if n == oldName {
			this.order[i] = newName
			break
		}
	}
	return nil
}

// Write locates the chunk (if any) that offset falls into or just past,
// then either modifies it in place via rendezvous or appends a fresh
// chunk placed directly via transport. At most one chunk is touched per
// call; the kernel retries the call for any remainder.
func (this *Table) Write(name string, buf []byte, offset int64) (written int, err error) {
	f, ok := this.files[name]
	if !ok {
		return 0, ErrNotFound
	}
	if 0 == len(buf) {
		return 0, nil
	}

	idx, base, found := f.chunkAt(offset)
	if found {
		return this.writeModify(f.chunks[idx], offset-base, buf)
	}

	// offset is at or past the end of the chain: extend the last chunk if
	// it has room and offset lands exactly at its end, else append new.
	if 0 < len(f.chunks) {
		last := f.chunks[len(f.chunks)-1]
		lastBase := base - int64(last.Len())
		if offset == base && last.Len() < maxChunk {
			return this.writeModify(last, offset-lastBase, buf)
		}
	}
	return this.writeAppend(f, buf)
}

func (this *Table) writeModify(c *chunk.Chunk, localOffset int64, buf []byte) (written int, err error) {
	payload, err := chunk.WaitFor(c, this.timeout)
	if err != nil {
		return 0, err
	}

	newLen := min(int64(maxChunk), localOffset+int64(len(buf)))
	newPayload := make([]byte, newLen)
	copy(newPayload, payload[:min(int64(len(payload)), newLen)])

	n := min(newLen-localOffset, int64(len(buf)))
	if 0 < n {
		copy(newPayload[localOffset:localOffset+n], buf[:n])
	}

	if doneErr := chunk.Done(c, newPayload); doneErr != nil {
		return 0, doneErr
	}
	return int(n), nil
}

func (this *Table) writeAppend(f *File, buf []byte) (written int, err error) {
	n := min(maxChunk, len(buf))
	host := this.hosts.Next()
	c, err := this.dir.Add(host, n)
	if err != nil {
		return 0, err
	}
	payload := make([]byte, n)
	copy(payload, buf[:n])
	if sendErr := this.t.Send(host.Addr, c.Id, c.Seqno(), payload); sendErr != nil {
		this.dir.Remove(c.Id)
		return 0, sendErr
	}
	f.chunks = append(f.chunks, c)
	return n, nil
}

// Read rendezvouses with the chunk containing offset and copies out up
// to size bytes from it, leaving its payload unchanged.
func (this *Table) Read(name string, size int, offset int64) (data []byte, err error) {
	f, ok := this.files[name]
	if !ok {
		return nil, ErrNotFound
	}
	idx, base, found := f.chunkAt(offset)
	if !found {
		return nil, nil // past end: 0 bytes
	}
	c := f.chunks[idx]
	localOffset := offset - base

	payload, err := chunk.WaitFor(c, this.timeout)
	if err != nil {
		return nil, err
	}
	n := min(int64(len(payload))-localOffset, int64(size))
	out := make([]byte, n)
	copy(out, payload[localOffset:localOffset+n])

	if doneErr := chunk.Done(c, payload); doneErr != nil {
		return nil, doneErr
	}
	return out, nil
}

// Truncate grows or shrinks a file to length, zero-filling on growth and
// cutting the chunk chain down on shrink.
func (this *Table) Truncate(name string, length int64) (err error) {
	f, ok := this.files[name]
	if !ok {
		return ErrNotFound
	}
	cur := f.Size()
	switch {
	case length == cur:
		return nil
	case length > cur:
		return this.truncateGrow(name, f, cur, length)
	default:
		return this.truncateShrink(f, length)
	}
}

// truncateGrow zero-fills up to length by issuing ordinary writes
// through the normal append path, one chunk-sized echo per 1024 bytes.
// Slow for large extensions, but correct, and truncate-to-grow is rare.
func (this *Table) truncateGrow(name string, f *File, cur, length int64) (err error) {
	zeros := make([]byte, maxChunk)
	for cur < length {
		n := min(int64(maxChunk), length-cur)
		written, writeErr := this.Write(name, zeros[:n], cur)
		if writeErr != nil {
			return writeErr
		}
		if 0 == written {
			return uerr.Const("filetable: truncate made no progress")
		}
		cur += int64(written)
	}
	return nil
}

// truncateShrink walks to the chunk containing the new boundary,
// rendezvous with it to cut its payload down to the in-chunk offset, and
// detaches every chunk after it.
func (this *Table) truncateShrink(f *File, length int64) (err error) {
	idx, base, found := f.chunkAt(length)
	if !found {
		// length == cur handled above; length < cur and not found only
		// happens when length == 0 and the chain is non-empty, landing
		// exactly at the start of chunk 0.
		idx, base = 0, 0
	}
	localOffset := length - base
	boundary := f.chunks[idx]

	if 0 == localOffset {
		for _, c := range f.chunks[idx:] {
			this.dir.Remove(c.Id)
		}
		f.chunks = f.chunks[:idx]
	} else {
		payload, waitErr := chunk.WaitFor(boundary, this.timeout)
		if waitErr != nil {
			return waitErr
		}
		if doneErr := chunk.Done(boundary, payload[:localOffset]); doneErr != nil {
			return doneErr
		}
		for _, c := range f.chunks[idx+1:] {
			this.dir.Remove(c.Id)
		}
		f.chunks = f.chunks[:idx+1]
	}
	return nil
}

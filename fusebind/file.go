package fusebind

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/tredeske/pingfs/filetable"
)

// fileNode is a leaf in the flat namespace: a name plus the chunk chain
// held entirely in filetable.Table, keyed by this node's name.
type fileNode struct {
	fs.Inode
	table *filetable.Table
	name  string
}

var _ fs.InodeEmbedder = (*fileNode)(nil)
var _ fs.NodeGetattrer = (*fileNode)(nil)
var _ fs.NodeSetattrer = (*fileNode)(nil)
var _ fs.NodeReader = (*fileNode)(nil)
var _ fs.NodeWriter = (*fileNode)(nil)
var _ fs.NodeOpener = (*fileNode)(nil)

func fillAttr(out *fuse.Attr, attr filetable.Attr) {
	out.Size = uint64(attr.Size)
	out.Mode = attr.Mode
	out.Nlink = attr.Nlink
}

func (this *fileNode) Getattr(
	ctx context.Context, f fs.FileHandle, out *fuse.AttrOut,
) syscall.Errno {
	attr, err := this.table.Getattr(this.name)
	if err != nil {
		return toErrno(err)
	}
	fillAttr(&out.Attr, attr)
	return 0
}

// Setattr only handles truncate: every other settable attribute (mode,
// ownership, timestamps) is fixed and ignored.
func (this *fileNode) Setattr(
	ctx context.Context, f fs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut,
) syscall.Errno {
	if size, ok := in.GetSize(); ok {
		if err := this.table.Truncate(this.name, int64(size)); err != nil {
			return toErrno(err)
		}
	}
	attr, err := this.table.Getattr(this.name)
	if err != nil {
		return toErrno(err)
	}
	fillAttr(&out.Attr, attr)
	return 0
}

// Open enables direct I/O: without it the kernel page cache can coalesce
// or split writes in ways that hide chunk boundaries from pingfs.
func (this *fileNode) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	return nil, fuse.FOPEN_DIRECT_IO, 0
}

func (this *fileNode) Read(
	ctx context.Context, f fs.FileHandle, dest []byte, off int64,
) (fuse.ReadResult, syscall.Errno) {
	data, err := this.table.Read(this.name, len(dest), off)
	if err != nil {
		return nil, toErrno(err)
	}
	return fuse.ReadResultData(data), 0
}

func (this *fileNode) Write(
	ctx context.Context, f fs.FileHandle, data []byte, off int64,
) (uint32, syscall.Errno) {
	n, err := this.table.Write(this.name, data, off)
	if err != nil {
		return 0, toErrno(err)
	}
	return uint32(n), 0
}

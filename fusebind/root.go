package fusebind

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/tredeske/pingfs/filetable"
)

// root is the sole directory in pingfs's flat namespace.
type root struct {
	fs.Inode
	table *filetable.Table
}

var _ fs.InodeEmbedder = (*root)(nil)
var _ fs.NodeMknoder = (*root)(nil)
var _ fs.NodeCreater = (*root)(nil)
var _ fs.NodeUnlinker = (*root)(nil)
var _ fs.NodeRenamer = (*root)(nil)

func (this *root) newFileChild(ctx context.Context, name string, mode uint32) *fs.Inode {
	ops := &fileNode{table: this.table, name: name}
	stable := fs.StableAttr{Mode: syscall.S_IFREG}
	child := this.NewPersistentInode(ctx, ops, stable)
	this.AddChild(name, child, true)
	return child
}

func (this *root) fillEntry(name string, out *fuse.EntryOut) {
	attr, err := this.table.Getattr(name)
	if err != nil {
		return
	}
	fillAttr(&out.Attr, attr)
}

// Mknod handles the raw mknod(2) syscall path: regular files only, no
// duplicates.
func (this *root) Mknod(
	ctx context.Context, name string, mode, dev uint32, out *fuse.EntryOut,
) (*fs.Inode, syscall.Errno) {
	if err := this.table.Mknod(name, mode); err != nil {
		return nil, toErrno(err)
	}
	child := this.newFileChild(ctx, name, mode)
	this.fillEntry(name, out)
	return child, 0
}

// Create handles open(O_CREAT) (the common path for editors, shells,
// cp): it is the same table operation as Mknod, followed by handing
// back an open file handle for immediate use.
func (this *root) Create(
	ctx context.Context, name string, flags, mode uint32, out *fuse.EntryOut,
) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	if err := this.table.Mknod(name, mode|syscall.S_IFREG); err != nil {
		return nil, nil, 0, toErrno(err)
	}
	child := this.newFileChild(ctx, name, mode)
	this.fillEntry(name, out)
	return child, nil, 0, 0
}

func (this *root) Unlink(ctx context.Context, name string) syscall.Errno {
	if err := this.table.Unlink(name); err != nil {
		return toErrno(err)
	}
	return 0
}

// Rename only supports renames within this single flat directory;
// newParent is always this, since pingfs has no subdirectories.
func (this *root) Rename(
	ctx context.Context, name string, newParent fs.InodeEmbedder, newName string, flags uint32,
) syscall.Errno {
	if err := this.table.Rename(name, newName); err != nil {
		return toErrno(err)
	}
	if child := this.GetChild(name); child != nil {
		this.RmChild(name)
		this.AddChild(newName, child, true)
	}
	return 0
}

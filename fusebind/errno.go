package fusebind

import (
	"syscall"

	"github.com/tredeske/pingfs/chunk"
	"github.com/tredeske/pingfs/filetable"
)

// toErrno maps the chunk and filetable error sentinels onto POSIX errno.
func toErrno(err error) syscall.Errno {
	switch err {
	case nil:
		return 0
	case filetable.ErrNotFound:
		return syscall.ENOENT
	case filetable.ErrExists:
		return syscall.EEXIST
	case filetable.ErrNotRegularFile:
		return syscall.EPERM
	case chunk.ErrLost:
		return syscall.EIO
	case chunk.ErrBusy:
		return syscall.EBUSY
	case chunk.ErrGone:
		return syscall.EIO
	case chunk.ErrIdsExhausted:
		return syscall.ENOMEM
	default:
		return syscall.EIO
	}
}

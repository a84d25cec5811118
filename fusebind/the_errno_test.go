package fusebind

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tredeske/pingfs/chunk"
	"github.com/tredeske/pingfs/filetable"
)

func TestToErrnoMapsKnownSentinels(t *testing.T) {
	cases := []struct {
		err  error
		want syscall.Errno
	}{
		{nil, 0},
		{filetable.ErrNotFound, syscall.ENOENT},
		{filetable.ErrExists, syscall.EEXIST},
		{filetable.ErrNotRegularFile, syscall.EPERM},
		{chunk.ErrLost, syscall.EIO},
		{chunk.ErrBusy, syscall.EBUSY},
		{chunk.ErrGone, syscall.EIO},
		{chunk.ErrIdsExhausted, syscall.ENOMEM},
	}
	for _, c := range cases {
		require.Equal(t, c.want, toErrno(c.err))
	}
}

func TestToErrnoDefaultsToEIO(t *testing.T) {
	require.Equal(t, syscall.EIO, toErrno(syscall.Errno(9999)))
}

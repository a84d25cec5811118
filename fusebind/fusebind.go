package fusebind

import (
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/tredeske/u/uerr"

	"github.com/tredeske/pingfs/filetable"
)

// Mount attaches table as a FUSE filesystem at mountpoint and returns
// the running server, single-threaded with direct I/O and
// default_permissions,allow_other.
func Mount(table *filetable.Table, mountpoint string) (server *fuse.Server, err error) {
	zero := time.Duration(0)
	opts := &fs.Options{
		EntryTimeout: &zero,
		AttrTimeout:  &zero,
		MountOptions: fuse.MountOptions{
			SingleThreaded: true,
			AllowOther:     true,
			FsName:         "pingfs",
			Name:           "pingfs",
			Options:        []string{"default_permissions"},
		},
	}
	server, err = fs.Mount(mountpoint, &root{table: table}, opts)
	if err != nil {
		return nil, uerr.Chainf(err, "mounting pingfs at %s", mountpoint)
	}
	return server, nil
}

package main

import (
	"os/user"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/tredeske/u/golum"
	"github.com/tredeske/u/uconfig"
	"github.com/tredeske/u/uerr"
	"github.com/tredeske/u/ulog"

	"github.com/tredeske/pingfs/chunk"
	"github.com/tredeske/pingfs/filetable"
	"github.com/tredeske/pingfs/fusebind"
	"github.com/tredeske/pingfs/hostpeer"
	"github.com/tredeske/pingfs/transport"
)

// Daemon is the golum-managed component that owns the process's one
// mount: it resolves and evaluates the host list, opens the raw
// sockets, wires up the chunk engine, and mounts the filesystem.
type Daemon struct {
	name       string
	hostFile   string
	mountPoint string
	username   string
	timeout    time.Duration

	transport *transport.Transport
	server    *fuse.Server
	stopC     chan struct{}
	wg        sync.WaitGroup
}

var _ golum.Reloadable = (*Daemon)(nil)

// Reload parses the component config into a fresh Daemon. The returned
// value carries only configuration; Start acquires every resource.
func (this *Daemon) Reload(name string, c *uconfig.Section,
) (rv golum.Reloadable, err error) {
	g := &Daemon{name: name}
	timeoutSeconds := 1
	err = c.Chain().
		GetString("hostfile", &g.hostFile, uconfig.StringNotBlank()).
		GetString("mountpoint", &g.mountPoint, uconfig.StringNotBlank()).
		GetString("user", &g.username).
		GetInt("timeoutSeconds", &timeoutSeconds, uconfig.IntRange(1, 59)).
		Done()
	if err != nil {
		return nil, err
	}
	g.timeout = time.Duration(timeoutSeconds) * time.Second
	return g, nil
}

// Start resolves the host file, evaluates candidates, opens the raw
// sockets, mounts the filesystem, and launches the receiver and status
// goroutines.
func (this *Daemon) Start() (err error) {
	candidates, err := hostpeer.ResolveHostFile(this.hostFile)
	if err != nil {
		return err
	}

	this.transport, err = transport.Open()
	if err != nil {
		return uerr.Chainf(err, "opening raw sockets")
	}

	passed, avgRTT, err := hostpeer.Evaluate(this.transport, candidates, this.timeout)
	if err != nil {
		this.transport.Close()
		return err
	}
	ulog.Printf("pingfs: %d of %d candidate hosts passed evaluation, avg rtt %s",
		len(passed), len(candidates), avgRTT)

	registry, err := hostpeer.NewRegistry(passed)
	if err != nil {
		this.transport.Close()
		return err
	}

	dir := chunk.NewDirectory(this.transport)
	table := filetable.New(this.transport, dir, registry, this.timeout)

	if 0 != len(this.username) {
		if err = dropPrivileges(this.username); err != nil {
			this.transport.Close()
			return err
		}
	}

	this.server, err = fusebind.Mount(table, this.mountPoint)
	if err != nil {
		this.transport.Close()
		return err
	}

	this.stopC = make(chan struct{})
	this.wg.Add(2)
	go this.receiveLoop(dir)
	go this.statusLoop()

	ulog.Printf("pingfs: mounted %s, serving %d hosts", this.mountPoint, len(passed))
	return nil
}

// Stop unmounts the filesystem, closes the raw sockets (which unblocks
// any outstanding receive), and waits for both background goroutines to
// return.
func (this *Daemon) Stop() {
	if nil != this.server {
		if unmountErr := this.server.Unmount(); unmountErr != nil {
			ulog.Warnf("pingfs: unmount %s: %s", this.mountPoint, unmountErr)
		}
	}
	if nil != this.stopC {
		close(this.stopC)
	}
	if nil != this.transport {
		this.transport.Close()
	}
	this.wg.Wait()
}

// receiveLoop is the sole receiver thread: it blocks in transport.Recv
// with a 1 second timeout and feeds accepted replies straight into the
// chunk directory.
func (this *Daemon) receiveLoop(dir *chunk.Directory) {
	defer this.wg.Done()
	for {
		select {
		case <-this.stopC:
			return
		default:
		}
		_, err := this.transport.Recv(time.Second, dir.DispatchReply)
		if err != nil {
			if transport.ErrClosed == err {
				return
			}
			ulog.Warnf("pingfs: receive: %s", err)
		}
	}
}

// statusLoop wakes once a second and logs the rate deltas of the
// transport's packet counters.
func (this *Daemon) statusLoop() {
	defer this.wg.Done()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var lastTxPkts, lastTxBytes, lastRxPkts, lastRxBytes int64
	for {
		select {
		case <-this.stopC:
			return
		case <-ticker.C:
			txPkts, txBytes := this.transport.Tx.Snapshot()
			rxPkts, rxBytes := this.transport.Rx.Snapshot()
			ulog.Printf("pingfs: tx %d pkt/s %d B/s, rx %d pkt/s %d B/s",
				txPkts-lastTxPkts, txBytes-lastTxBytes,
				rxPkts-lastRxPkts, rxBytes-lastRxBytes)
			lastTxPkts, lastTxBytes = txPkts, txBytes
			lastRxPkts, lastRxBytes = rxPkts, rxBytes
		}
	}
}

// dropPrivileges switches the process to the named local user's uid/gid,
// done after the raw sockets are open since CAP_NET_RAW is only needed
// to construct them, not to use them.
func dropPrivileges(username string) (err error) {
	u, err := user.Lookup(username)
	if err != nil {
		return uerr.Chainf(err, "looking up user %q", username)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return uerr.Chainf(err, "parsing gid for %q", username)
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return uerr.Chainf(err, "parsing uid for %q", username)
	}
	if err = syscall.Setgid(gid); err != nil {
		return uerr.Chainf(err, "setgid %d", gid)
	}
	if err = syscall.Setuid(uid); err != nil {
		return uerr.Chainf(err, "setuid %d", uid)
	}
	return nil
}

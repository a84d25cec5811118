package transport

import (
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/tredeske/u/uerr"
	"github.com/tredeske/u/ulog"
	"github.com/tredeske/u/unet"
	"github.com/tredeske/u/usync"

	"github.com/tredeske/pingfs/icmpcodec"
)

const rcvBufBytes = 1 << 20 // 1 MiB

const (
	ErrClosed  = uerr.Const("transport: closed")
	ErrNoPeers = uerr.Const("transport: no raw socket for peer's address family")
)

// Handler is invoked once per accepted Echo Reply read off either raw
// socket during Recv.
type Handler func(peer unet.Address, id, seq uint16, payload []byte)

// PacketCounter is an atomic (packets, bytes) pair, one held per direction.
//
// Bytes includes the fixed 8 byte ICMP header.
type PacketCounter struct {
	packets usync.AtomicInt
	bytes   usync.AtomicInt
}

func (this *PacketCounter) add(n int) {
	this.packets.Add(1)
	this.bytes.Add(int64(n))
}

func (this *PacketCounter) Snapshot() (packets, bytes int64) {
	return this.packets.Get(), this.bytes.Get()
}

// Transport owns the only raw sockets in the process: one for ICMPv4, one
// for ICMPv6.
type Transport struct {
	v4, v6  *unet.Socket
	poller  unet.Poller
	closed  usync.AtomicBool
	Tx      PacketCounter
	Rx      PacketCounter
	debug   *ulog.Debug
	onReply func(peer unet.Address, id, seq uint16, payload []byte)
}

// Open constructs both raw sockets, sized with a 1 MiB SO_RCVBUF, and
// installs the ICMP6 filter that passes only Echo Reply.
func Open() (rv *Transport, err error) {
	this := &Transport{
		debug: ulog.NewDebug("transport"),
	}

	this.v4, err = unet.NewSocket().
		ResolveNearAddr("0.0.0.0", 0).
		Construct(syscall.SOCK_RAW, syscall.IPPROTO_ICMP).
		SetOptRcvBuf(rcvBufBytes).
		Done()
	if err != nil {
		return nil, uerr.Chainf(err, "opening raw ICMPv4 socket")
	}

	this.v6, err = unet.NewSocket().
		ResolveNearAddr("::", 0).
		Construct(syscall.SOCK_RAW, unix.IPPROTO_ICMPV6).
		SetOptRcvBuf(rcvBufBytes).
		Done()
	if err != nil {
		this.v4.Close()
		return nil, uerr.Chainf(err, "opening raw ICMPv6 socket")
	}

	if err = installEchoReplyFilter(this.v6); err != nil {
		this.v4.Close()
		this.v6.Close()
		return nil, uerr.Chainf(err, "installing ICMP6 echo-reply filter")
	}

	if err = this.poller.Open(); err != nil {
		this.v4.Close()
		this.v6.Close()
		return nil, uerr.Chainf(err, "opening poller")
	}

	if err = this.poller.Add(&unet.Polled{
		Sock:    this.v4,
		OnInput: this.onInput(icmpcodec.V4),
	}); err != nil {
		this.Close()
		return nil, uerr.Chainf(err, "registering v4 socket with poller")
	}
	if err = this.poller.Add(&unet.Polled{
		Sock:    this.v6,
		OnInput: this.onInput(icmpcodec.V6),
	}); err != nil {
		this.Close()
		return nil, uerr.Chainf(err, "registering v6 socket with poller")
	}

	return this, nil
}

// installEchoReplyFilter blocks every ICMPv6 type except Echo Reply.
//
// The ICMP6_FILTER bitmap is 256 bits (8 uint32 words); a set bit blocks
// that type.  Block everything, then clear the one bit we want to pass.
func installEchoReplyFilter(sock *unet.Socket) (err error) {
	var fd int
	sock.GiveMeTheFreakingFd(&fd)
	if -1 == fd {
		return unet.ErrNotInitialized
	}

	filter := unix.ICMPv6Filter{}
	for i := range filter.Data {
		filter.Data[i] = 0xffffffff
	}
	typ := uint32(unet.ICMPV6_ECHO_REPLY)
	filter.Data[typ>>5] &^= 1 << (typ & 31)

	return unix.SetsockoptICMPv6Filter(fd, unix.IPPROTO_ICMPV6, unix.ICMPV6_FILTER, &filter)
}

// the handler bound into the poller for one address family's socket
func (this *Transport) onInput(family icmpcodec.Family) func(*unet.Polled) (bool, error) {
	return func(p *unet.Polled) (ok bool, err error) {
		buff := make([]byte, 2048)
		n, from, err := p.Sock.RecvFrom(buff, 0)
		if err != nil {
			if this.closed.IsSet() {
				return false, nil
			}
			ulog.Warnf("transport: recvfrom %s: %s", family, err)
			return true, nil // keep polling; a single bad recv isn't fatal
		}
		this.Rx.add(n)

		frame, err := icmpcodec.Decode(family, buff[:n])
		if err != nil {
			this.debug.F("decode error from %s: %s", family, err)
			return true, nil
		}
		if icmpcodec.Reply != frame.Kind {
			return true, nil
		}

		var peer unet.Address
		peer.FromSockaddr(from)

		if this.onReply != nil {
			this.onReply(peer, frame.Id, frame.Seq, frame.Payload)
		}
		return true, nil
	}
}

// Send chooses the socket by peer address family, encodes an Echo
// Request, and sends it. On failure the packet is not counted.
func (this *Transport) Send(peer unet.Address, id, seq uint16, payload []byte) (err error) {
	if this.closed.IsSet() {
		return ErrClosed
	}
	family := icmpcodec.V4
	sock := this.v4
	if peer.IsIpv6() {
		family = icmpcodec.V6
		sock = this.v6
	}
	if nil == sock {
		return ErrNoPeers
	}

	raw, err := icmpcodec.Encode(family, id, seq, payload)
	if err != nil {
		return err
	}

	err = sock.SendTo(raw, 0, peer.AsSockaddr())
	if err != nil {
		return uerr.Chainf(err, "sending to %s", peer.String())
	}
	this.Tx.add(len(raw))
	return nil
}

// Recv waits up to timeout for either raw socket to become readable,
// invoking handler once per accepted Echo Reply. Returns the number of
// Echo Replies handed to handler; readable sockets whose datagram was not
// an Echo Reply are not counted, so 0 means either the timeout elapsed or
// no reply arrived. Never blocks past timeout.
func (this *Transport) Recv(timeout time.Duration, handler Handler) (serviced int, err error) {
	if this.closed.IsSet() {
		return 0, ErrClosed
	}
	this.onReply = func(peer unet.Address, id, seq uint16, payload []byte) {
		serviced++
		handler(peer, id, seq, payload)
	}
	defer func() { this.onReply = nil }()

	_, err = this.poller.PollFor(timeout)
	return
}

func (this *Transport) Close() {
	if this.closed.SetUnlessSet() {
		this.poller.Close()
		if nil != this.v4 {
			this.v4.Close()
		}
		if nil != this.v6 {
			this.v6.Close()
		}
	}
}

package hostpeer

import (
	"github.com/tredeske/u/uerr"
	"github.com/tredeske/u/unet"
	"github.com/tredeske/u/usync"
)

// Host is a vetted remote endpoint. It is created once, during startup
// evaluation, and never mutated thereafter.
type Host struct {
	Addr unet.Address
}

func (this Host) String() string { return this.Addr.Ip().String() }

const ErrEmptyRegistry = uerr.Const("hostpeer: registry has no hosts")

// Registry holds the cyclic sequence of vetted peer hosts produced by
// Evaluate, and hands them out round-robin. It is immutable after
// construction, so Next only needs an atomic cursor, no lock.
type Registry struct {
	hosts []Host
	next  usync.AtomicInt
}

func NewRegistry(hosts []Host) (rv *Registry, err error) {
	if 0 == len(hosts) {
		return nil, ErrEmptyRegistry
	}
	cp := make([]Host, len(hosts))
	copy(cp, hosts)
	return &Registry{hosts: cp}, nil
}

func (this *Registry) Len() int { return len(this.hosts) }

// Next returns the next host in round-robin order, wrapping to the head
// after the tail.
func (this *Registry) Next() Host {
	i := this.next.Add(1) - 1
	return this.hosts[int(uint64(i)%uint64(len(this.hosts)))]
}

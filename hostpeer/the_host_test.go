package hostpeer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tredeske/u/unet"
)

func testAddr(t *testing.T, ip string) unet.Address {
	var addr unet.Address
	require.NoError(t, addr.ResolveIp(ip))
	return addr
}

func TestNewRegistryRejectsEmpty(t *testing.T) {
	_, err := NewRegistry(nil)
	require.ErrorIs(t, err, ErrEmptyRegistry)
}

func TestRegistryNextCyclesInOrder(t *testing.T) {
	hosts := []Host{
		{Addr: testAddr(t, "127.0.0.1")},
		{Addr: testAddr(t, "127.0.0.2")},
		{Addr: testAddr(t, "127.0.0.3")},
	}
	reg, err := NewRegistry(hosts)
	require.NoError(t, err)
	require.Equal(t, 3, reg.Len())

	got := []string{
		reg.Next().String(),
		reg.Next().String(),
		reg.Next().String(),
		reg.Next().String(),
	}
	require.Equal(t, []string{
		"127.0.0.1", "127.0.0.2", "127.0.0.3", "127.0.0.1",
	}, got)
}

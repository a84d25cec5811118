package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tredeske/u/uconfig"
)

func newSection(t *testing.T, m map[string]interface{}) *uconfig.Section {
	s, err := uconfig.NewSection(m)
	require.NoError(t, err)
	return s
}

func TestDaemonReloadParsesConfig(t *testing.T) {
	d := &Daemon{}
	section := newSection(t, map[string]interface{}{
		"hostfile":       "hosts.txt",
		"mountpoint":     "/mnt/pingfs",
		"user":           "nobody",
		"timeoutSeconds": 5,
	})

	rv, err := d.Reload("pingfs", section)
	require.NoError(t, err)

	g, ok := rv.(*Daemon)
	require.True(t, ok)
	require.Equal(t, "pingfs", g.name)
	require.Equal(t, "hosts.txt", g.hostFile)
	require.Equal(t, "/mnt/pingfs", g.mountPoint)
	require.Equal(t, "nobody", g.username)
	require.Equal(t, 5*time.Second, g.timeout)
}

func TestDaemonReloadDefaultsTimeout(t *testing.T) {
	d := &Daemon{}
	section := newSection(t, map[string]interface{}{
		"hostfile":   "hosts.txt",
		"mountpoint": "/mnt/pingfs",
	})

	rv, err := d.Reload("pingfs", section)
	require.NoError(t, err)

	g := rv.(*Daemon)
	require.Equal(t, time.Second, g.timeout)
	require.Empty(t, g.username)
}

func TestDaemonReloadRejectsBlankHostfile(t *testing.T) {
	d := &Daemon{}
	section := newSection(t, map[string]interface{}{
		"hostfile":       "",
		"mountpoint":     "/mnt/pingfs",
		"timeoutSeconds": 1,
	})

	_, err := d.Reload("pingfs", section)
	require.Error(t, err)
}

func TestDaemonReloadRejectsTimeoutOutOfRange(t *testing.T) {
	d := &Daemon{}
	section := newSection(t, map[string]interface{}{
		"hostfile":       "hosts.txt",
		"mountpoint":     "/mnt/pingfs",
		"timeoutSeconds": 60,
	})

	_, err := d.Reload("pingfs", section)
	require.Error(t, err)
}

package port

import (
	"net"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/gantry/internal/model"
)

// TestCheckTCP_Available verifies that a free port passes the probe.
func TestCheckTCP_Available(t *testing.T) {
	// Grab an ephemeral port, release it, then probe it. The window
	// between release and probe is small enough for a unit test.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	freePort := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	probe := NewProbe()
	assert.NoError(t, probe.CheckTCP("127.0.0.1", freePort))
}

// TestCheckTCP_InUse verifies that a port held by another listener fails
// the probe.
func TestCheckTCP_InUse(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = listener.Close() }()

	busyPort := listener.Addr().(*net.TCPAddr).Port

	probe := NewProbe()
	assert.Error(t, probe.CheckTCP("127.0.0.1", busyPort))
}

// TestCheckTCP_EphemeralPort verifies that port 0 is always considered
// available: the OS picks the port at bind time.
func TestCheckTCP_EphemeralPort(t *testing.T) {
	probe := NewProbe()
	assert.NoError(t, probe.CheckTCP("127.0.0.1", 0))
}

// TestCheckSocket covers the three socket path states: absent, live, and
// stale.
func TestCheckSocket(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix sockets are not exercised on windows")
	}

	probe := NewProbe()

	t.Run("absent path is available", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.sock")
		assert.NoError(t, probe.CheckSocket(path))
	})

	t.Run("live socket is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.sock")
		listener, err := net.Listen("unix", path)
		require.NoError(t, err)
		defer func() { _ = listener.Close() }()

		err = probe.CheckSocket(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already in use")
	})

	t.Run("stale socket file is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.sock")
		listener, err := net.Listen("unix", path)
		require.NoError(t, err)

		// Keep the socket file around after the listener dies.
		listener.(*net.UnixListener).SetUnlinkOnClose(false)
		require.NoError(t, listener.Close())

		err = probe.CheckSocket(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stale")
	})

	t.Run("non-socket file is rejected", func(t *testing.T) {
		dir := t.TempDir()
		err := probe.CheckSocket(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a socket")
	})
}

// TestCheck_Dispatch verifies the variant dispatch over BindTarget.
func TestCheck_Dispatch(t *testing.T) {
	probe := NewProbe()

	assert.NoError(t, probe.Check(model.BindTarget{
		Kind: model.BindTCP, Host: "127.0.0.1", Port: 0,
	}))

	if runtime.GOOS != "windows" {
		path := filepath.Join(t.TempDir(), "app.sock")
		assert.NoError(t, probe.Check(model.BindTarget{
			Kind: model.BindUnix, SocketPath: path,
		}))
	}
}

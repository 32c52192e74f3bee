package port

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"time"

	"github.com/mmr-tortoise/gantry/internal/model"
)

// dialTimeout bounds the liveness check against an existing unix socket.
// A local socket answers (or refuses) near-instantly; one second is
// already generous.
const dialTimeout = time.Second

// Probe checks whether specific bind targets are available on the host.
//
// The struct is currently stateless, but is defined as a struct (rather
// than bare functions) so that future options can be added without
// breaking the API, and so the Probe is injectable as a dependency.
type Probe struct{}

// NewProbe creates a new Probe instance.
func NewProbe() *Probe {
	return &Probe{}
}

// Check dispatches to the variant-appropriate probe for a bind target.
func (p *Probe) Check(target model.BindTarget) error {
	if target.IsSocket() {
		return p.CheckSocket(target.SocketPath)
	}
	return p.CheckTCP(target.Host, target.Port)
}

// CheckTCP reports whether the host:port endpoint can be bound right now.
// Port 0 requests an ephemeral port from the OS and is always considered
// available.
//
// The check binds the exact requested host rather than all interfaces, so
// a service on 127.0.0.1:8000 does not block binding 10.0.0.1:8000.
func (p *Probe) CheckTCP(host string, portNum int) error {
	if portNum == 0 {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", host, portNum)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind address %s is not available: %w", addr, err)
	}
	// The listener was opened only to test availability.
	_ = listener.Close()
	return nil
}

// CheckSocket reports whether the unix socket path can be bound. A path
// that does not exist yet is available. An existing socket file is probed
// with a dial: a successful dial means another server is live on it, a
// refused dial means the file is stale residue from a dead process. Both
// are reported as errors; the stale file is never removed here, that
// decision belongs to the operator.
func (p *Probe) CheckSocket(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking socket path %s: %w", path, err)
	}

	if info.Mode().Type() != fs.ModeSocket {
		return fmt.Errorf("socket path %s exists and is not a socket", path)
	}

	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err == nil {
		_ = conn.Close()
		return fmt.Errorf("socket path %s is already in use", path)
	}
	return fmt.Errorf("socket path %s holds a stale socket file; remove it to proceed", path)
}

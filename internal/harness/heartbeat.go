package harness

import (
	"os"
	"time"

	"github.com/yanun0323/logs"
)

// Heartbeat touches a file every loop iteration so an external watchdog can
// tell a live process from a hung one. Failures are logged and swallowed; a
// broken heartbeat must not stop trading.
type Heartbeat struct {
	path string
}

// NewHeartbeat returns a disabled heartbeat when path is empty.
func NewHeartbeat(path string) *Heartbeat {
	return &Heartbeat{path: path}
}

func (h *Heartbeat) Beat() {
	if h == nil || h.path == "" {
		return
	}

	stamp := time.Now().UTC().Format(time.RFC3339Nano)
	if err := os.WriteFile(h.path, []byte(stamp+"\n"), 0o644); err != nil {
		logs.Warnf("heartbeat write failed, err: %v", err)
	}
}

package monitor

import (
	"sync"
	"time"
)

// Loop states as reported by the health endpoints.
const (
	StateIdle       = "idle"
	StateScanning   = "scanning"
	StateProcessing = "processing"
	StateWaiting    = "waiting"
	StateStopped    = "stopped"
)

// Health tracks loop liveness for the status endpoints. All methods are
// safe for concurrent use; the loop writes and the HTTP server reads.
type Health struct {
	mu          sync.Mutex
	running     bool
	state       string
	lastPass    time.Time
	lastError   string
	passes      int
	rowsWritten int
}

// HealthSnapshot is a point-in-time copy of the loop's state.
type HealthSnapshot struct {
	Running     bool
	State       string
	LastPass    time.Time
	LastError   string
	Passes      int
	RowsWritten int
}

// NewHealth returns a tracker in the stopped state.
func NewHealth() *Health {
	return &Health{state: StateStopped}
}

func (h *Health) setRunning(running bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.running = running
	if !running {
		h.state = StateStopped
	}
}

func (h *Health) setState(state string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = state
}

func (h *Health) passComplete(rows int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.passes++
	h.rowsWritten += rows
	h.lastPass = time.Now()
	h.lastError = ""
}

func (h *Health) passFailed(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastError = err.Error()
}

// Snapshot returns a copy of the current state.
func (h *Health) Snapshot() HealthSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return HealthSnapshot{
		Running:     h.running,
		State:       h.state,
		LastPass:    h.lastPass,
		LastError:   h.lastError,
		Passes:      h.passes,
		RowsWritten: h.rowsWritten,
	}
}

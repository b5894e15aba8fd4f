package observability

import (
	"sync"
	"time"

	"github.com/danmuck/gbanetboot/internal/transfer"
)

// Status is the JSON view of the current session.
type Status struct {
	SessionID        string            `json:"session_id"`
	State            string            `json:"state"`
	FileSize         int64             `json:"file_size"`
	BytesWritten     int64             `json:"bytes_written"`
	Pending          int64             `json:"pending"`
	Completed        bool              `json:"completed"`
	HandoffRequested bool              `json:"handoff_requested"`
	Discovery        map[string]uint64 `json:"discovery"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Recorder turns receiver callbacks into prometheus samples and a status
// snapshot. Callbacks come from the driver goroutine; Snapshot may be called
// from any goroutine.
type Recorder struct {
	mu     sync.RWMutex
	status Status

	// counters already exported for the current session
	seenReceived int64
	seenWritten  int64
	finished     bool

	now func() time.Time
}

func NewRecorder() *Recorder {
	RegisterMetrics()
	return &Recorder{
		status: Status{
			State:     transfer.StateAwaitingLink.String(),
			Discovery: make(map[string]uint64),
		},
		now: time.Now,
	}
}

func (r *Recorder) OnState(s transfer.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.update(s)
	if s.State.Terminal() && !r.finished {
		r.finished = true
		RecordSession(s.State.String(), s.FileSize)
	}
}

func (r *Recorder) OnProgress(s transfer.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.update(s)
}

func (r *Recorder) OnDiscovery(res transfer.DiscoveryResult) {
	RecordDiscovery(res.String())
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.Discovery[res.String()]++
	r.status.UpdatedAt = r.now()
}

// Snapshot returns a copy of the current status.
func (r *Recorder) Snapshot() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.status
	out.Discovery = make(map[string]uint64, len(r.status.Discovery))
	for k, v := range r.status.Discovery {
		out.Discovery[k] = v
	}
	return out
}

// update must run with mu held.
func (r *Recorder) update(s transfer.Session) {
	if s.ID != r.status.SessionID {
		r.status.SessionID = s.ID
		r.seenReceived = 0
		r.seenWritten = 0
		r.finished = false
	}
	RecordBytes(s.FileSize-r.seenReceived, s.BytesWritten-r.seenWritten)
	r.seenReceived = s.FileSize
	r.seenWritten = s.BytesWritten

	r.status.State = s.State.String()
	r.status.FileSize = s.FileSize
	r.status.BytesWritten = s.BytesWritten
	r.status.Pending = s.Pending()
	r.status.Completed = s.Completed
	r.status.HandoffRequested = s.RebootRequested
	r.status.UpdatedAt = r.now()
}

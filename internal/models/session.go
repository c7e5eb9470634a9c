package models

import (
	"sync"
	"time"
)

// LoopState is where a display loop session currently stands.
type LoopState int

const (
	StateIdle LoopState = iota
	StateRunning
	StateStoppedByFlag
	StateStoppedByFailure
	StateCompleted
	StateNoInput
	StateFailed
)

var loopStateNames = map[LoopState]string{
	StateIdle:             "idle",
	StateRunning:          "running",
	StateStoppedByFlag:    "stopped_by_flag",
	StateStoppedByFailure: "stopped_by_failure",
	StateCompleted:        "completed",
	StateNoInput:          "no_input",
	StateFailed:           "failed",
}

func (s LoopState) String() string {
	if name, ok := loopStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further frames will be produced in this state.
func (s LoopState) Terminal() bool {
	return s != StateIdle && s != StateRunning
}

// Session describes one loop run, continuous or single shot.
type Session struct {
	ID        string
	Source    SourceKind
	State     LoopState
	Frames    int
	StartTime time.Time
	EndTime   time.Time
	Err       error
}

// Duration is the elapsed time of the session, up to now while it runs.
func (s Session) Duration() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// SessionRepository holds the latest session and is safe for concurrent use.
type SessionRepository struct {
	mu      sync.RWMutex
	session Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{session: Session{State: StateIdle}}
}

func (r *SessionRepository) Current() Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.session
}

// Start replaces the current session with a new running one.
func (r *SessionRepository) Start(id string, source SourceKind) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.session = Session{
		ID:        id,
		Source:    source,
		State:     StateRunning,
		StartTime: time.Now(),
	}
}

// FrameDone counts one displayed frame for session id.
func (r *SessionRepository) FrameDone(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session.ID == id && r.session.State == StateRunning {
		r.session.Frames++
	}
}

// Finish moves session id into a terminal state. Stale ids are ignored.
func (r *SessionRepository) Finish(id string, state LoopState, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session.ID != id || r.session.State.Terminal() {
		return
	}
	r.session.State = state
	r.session.Err = err
	r.session.EndTime = time.Now()
}

func (r *SessionRepository) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.session.State == StateRunning
}

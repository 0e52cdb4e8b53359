package store

import (
	"sync"
	"time"

	"chillerd"
)

// StatusStore holds the latest published snapshot together with the control
// mode and pending remote requests. The poll loop is the only snapshot
// writer; remote handlers read and update mode and requests concurrently.
// Every read observes one complete snapshot.
type StatusStore struct {
	mu            sync.RWMutex
	snapshot      chillerd.StatusSnapshot
	mode          chillerd.Mode
	manualEnabled bool
	lastKeepAlive time.Time

	// wake shortens the poll loop's interruptible wait after a remote call.
	// Buffered so notifying never blocks a handler.
	wake chan struct{}
}

func New() *StatusStore {
	return &StatusStore{
		snapshot: chillerd.DisabledSnapshot(time.Now()),
		mode:     chillerd.ModeAutomatic,
		wake:     make(chan struct{}, 1),
	}
}

// Snapshot returns the latest published snapshot.
func (s *StatusStore) Snapshot() chillerd.StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Publish replaces the snapshot wholesale. Timestamps never go backwards.
func (s *StatusStore) Publish(snap chillerd.StatusSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Date.Before(s.snapshot.Date) {
		snap.Date = s.snapshot.Date
	}
	s.snapshot = snap
}

// Report merges the snapshot and mode under a single lock so callers see an
// internally consistent pair.
func (s *StatusStore) Report() chillerd.StatusReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return chillerd.BuildReport(s.snapshot, s.mode)
}

func (s *StatusStore) Mode() chillerd.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

func (s *StatusStore) SetMode(m chillerd.Mode) {
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
	s.notify()
}

func (s *StatusStore) ManualEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manualEnabled
}

func (s *StatusStore) SetManualEnabled(enabled bool) {
	s.mu.Lock()
	s.manualEnabled = enabled
	s.mu.Unlock()
	s.notify()
}

func (s *StatusStore) LastKeepAlive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastKeepAlive
}

func (s *StatusStore) NotifyKeepAlive(t time.Time) {
	s.mu.Lock()
	s.lastKeepAlive = t
	s.mu.Unlock()
	s.notify()
}

// Wake is the channel the poll loop selects on during its interruptible
// wait.
func (s *StatusStore) Wake() <-chan struct{} {
	return s.wake
}

func (s *StatusStore) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

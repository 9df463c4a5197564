package lfg

import (
	"sync"
	"time"
)

// Scheduler owns the one-shot expiry timer per session and the one-shot
// cleanup timer per voice room. Timers carry only the id; callbacks must
// re-fetch current state and tolerate absence. Scheduling over an existing
// timer replaces it, so there is never more than one pending timer per key.
type Scheduler struct {
	mu      sync.Mutex
	expiry  map[string]*time.Timer
	rooms   map[string]*time.Timer
	stopped bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		expiry: make(map[string]*time.Timer),
		rooms:  make(map[string]*time.Timer),
	}
}

// ScheduleExpiry arms the TTL timer for a session. A non-positive duration
// fires immediately (the session is already past its deadline).
func (s *Scheduler) ScheduleExpiry(sessionID string, d time.Duration, fire func(sessionID string)) {
	s.schedule(s.expiry, sessionID, d, fire)
}

func (s *Scheduler) CancelExpiry(sessionID string) {
	s.cancel(s.expiry, sessionID)
}

// ScheduleRoomCleanup arms the empty-room timer for a voice channel.
func (s *Scheduler) ScheduleRoomCleanup(channelID string, d time.Duration, fire func(channelID string)) {
	s.schedule(s.rooms, channelID, d, fire)
}

func (s *Scheduler) CancelRoomCleanup(channelID string) {
	s.cancel(s.rooms, channelID)
}

// Stop cancels every pending timer. Used on shutdown so no callback runs
// against torn-down state.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for id, t := range s.expiry {
		t.Stop()
		delete(s.expiry, id)
	}
	for id, t := range s.rooms {
		t.Stop()
		delete(s.rooms, id)
	}
}

func (s *Scheduler) schedule(table map[string]*time.Timer, id string, d time.Duration, fire func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	if existing, ok := table[id]; ok {
		existing.Stop()
	}

	if d < 0 {
		d = 0
	}

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.mu.Lock()
		// A replaced timer can still fire if it was already in flight when
		// Stop was called on it; only the timer currently in the table may
		// proceed.
		if s.stopped || table[id] != t {
			s.mu.Unlock()
			return
		}
		delete(table, id)
		s.mu.Unlock()

		fire(id)
	})
	table[id] = t
}

func (s *Scheduler) cancel(table map[string]*time.Timer, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := table[id]; ok {
		t.Stop()
		delete(table, id)
	}
}

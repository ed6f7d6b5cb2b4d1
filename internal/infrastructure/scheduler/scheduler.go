package scheduler

import (
	"sync"
	"time"
)

// Scheduler tracks pending delayed continuations by owner key.
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]map[uint64]*time.Timer
	nextID uint64
	closed bool
}

// Handle identifies one scheduled continuation.
type Handle struct {
	owner string
	id    uint64
	s     *Scheduler
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{
		timers: make(map[string]map[uint64]*time.Timer),
	}
}

// After runs fn once after the delay, tracked under owner.
// A closed scheduler discards the request and returns a zero handle.
func (s *Scheduler) After(owner string, delay time.Duration, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Handle{}
	}

	s.nextID++
	id := s.nextID

	timer := time.AfterFunc(delay, func() {
		s.remove(owner, id)
		fn()
	})

	if s.timers[owner] == nil {
		s.timers[owner] = make(map[uint64]*time.Timer)
	}
	s.timers[owner][id] = timer

	return Handle{owner: owner, id: id, s: s}
}

// Stop cancels the continuation if it has not fired yet.
func (h Handle) Stop() bool {
	if h.s == nil {
		return false
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	group, ok := h.s.timers[h.owner]
	if !ok {
		return false
	}
	timer, ok := group[h.id]
	if !ok {
		return false
	}
	delete(group, h.id)
	if len(group) == 0 {
		delete(h.s.timers, h.owner)
	}
	return timer.Stop()
}

// Cancel stops every pending continuation for an owner and returns how
// many were cancelled.
func (s *Scheduler) Cancel(owner string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.timers[owner]
	if !ok {
		return 0
	}
	delete(s.timers, owner)

	n := 0
	for _, timer := range group {
		if timer.Stop() {
			n++
		}
	}
	return n
}

// Close cancels everything and rejects new registrations.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for owner, group := range s.timers {
		for _, timer := range group {
			timer.Stop()
		}
		delete(s.timers, owner)
	}
}

// Pending returns the number of continuations still scheduled for owner.
func (s *Scheduler) Pending(owner string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers[owner])
}

func (s *Scheduler) remove(owner string, id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.timers[owner]
	if !ok {
		return
	}
	delete(group, id)
	if len(group) == 0 {
		delete(s.timers, owner)
	}
}

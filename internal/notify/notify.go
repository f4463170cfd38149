package notify

import (
	"log"
	"sync"
	"time"
)

// Delivery is handed to the delivery callback when a scheduled item fires.
// Payload is opaque to the scheduler; the guardian uses it to mark overtime
// escalations.
type Delivery struct {
	ID      string
	Title   string
	Message string
	Payload map[string]string
}

// Scheduler is the notification collaborator contract. Scheduling an id that
// is already pending replaces it; cancelling an absent id is a no-op.
//
// ScheduleRecurring takes an explicit first-fire delay so a resumed session
// can stay phase-locked to its start instead of resetting the cadence.
type Scheduler interface {
	ScheduleRecurring(id string, delay, interval time.Duration, title, message string) error
	ScheduleOnce(id string, delay time.Duration, title, message string, payload map[string]string) error
	Cancel(id string)
}

type entry struct {
	timer    *time.Timer
	interval time.Duration // zero for one-shot
	cancel   chan struct{}
}

// TimerScheduler is an in-process Scheduler backed by time.Timer. Deliveries
// are pushed to the callback from the timer goroutine.
type TimerScheduler struct {
	mu      sync.Mutex
	pending map[string]*entry
	deliver func(Delivery)
	closed  bool
}

func NewTimerScheduler(deliver func(Delivery)) *TimerScheduler {
	if deliver == nil {
		deliver = func(d Delivery) {
			log.Printf("Notification: [%s] %s", d.Title, d.Message)
		}
	}
	return &TimerScheduler{
		pending: make(map[string]*entry),
		deliver: deliver,
	}
}

func (s *TimerScheduler) ScheduleRecurring(id string, delay, interval time.Duration, title, message string) error {
	if delay <= 0 {
		delay = time.Second
	}
	if interval <= 0 {
		interval = time.Second
	}
	return s.schedule(id, delay, interval, title, message, nil)
}

func (s *TimerScheduler) ScheduleOnce(id string, delay time.Duration, title, message string, payload map[string]string) error {
	if delay <= 0 {
		delay = time.Second
	}
	return s.schedule(id, delay, 0, title, message, payload)
}

func (s *TimerScheduler) schedule(id string, delay, interval time.Duration, title, message string, payload map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	s.cancelLocked(id)

	e := &entry{
		interval: interval,
		cancel:   make(chan struct{}),
	}
	e.timer = time.NewTimer(delay)
	s.pending[id] = e

	go s.run(id, e, Delivery{ID: id, Title: title, Message: message, Payload: payload})
	return nil
}

func (s *TimerScheduler) run(id string, e *entry, d Delivery) {
	for {
		select {
		case <-e.cancel:
			return
		case <-e.timer.C:
			s.deliver(d)
			if e.interval == 0 {
				s.mu.Lock()
				// Only forget the entry if it has not been replaced meanwhile.
				if cur, ok := s.pending[id]; ok && cur == e {
					delete(s.pending, id)
				}
				s.mu.Unlock()
				return
			}
			e.timer.Reset(e.interval)
		}
	}
}

// Cancel stops a pending item. Unknown ids are ignored.
func (s *TimerScheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(id)
}

func (s *TimerScheduler) cancelLocked(id string) {
	e, ok := s.pending[id]
	if !ok {
		return
	}
	delete(s.pending, id)
	close(e.cancel)
	if !e.timer.Stop() {
		select {
		case <-e.timer.C:
		default:
		}
	}
}

// Pending reports whether an id currently has a scheduled item.
func (s *TimerScheduler) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[id]
	return ok
}

// Close cancels everything and rejects further scheduling.
func (s *TimerScheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.pending {
		s.cancelLocked(id)
	}
	s.closed = true
}

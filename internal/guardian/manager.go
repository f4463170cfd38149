package guardian

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"brujula/internal/clock"
	"brujula/internal/model"
	"brujula/internal/notify"
)

// Notification identifiers owned by the manager. Cancellation iterates
// notificationIDs, so every id added here is covered automatically.
const (
	NotifBreak         = "focus-break"
	NotifBedtime       = "focus-bedtime"
	NotifBedtimePlus30 = "focus-bedtime-30"
	NotifBedtimePlus60 = "focus-bedtime-60"
)

var notificationIDs = []string{NotifBreak, NotifBedtime, NotifBedtimePlus30, NotifBedtimePlus60}

// PayloadEscalation marks the +30/+60 bedtime reminders so the UI can present
// an action prompt when it resumes in response.
const PayloadEscalation = "escalation"

var (
	// ErrSessionActive is returned by Start when a session is already
	// running. Starting never supersedes the running session.
	ErrSessionActive = errors.New("a focus session is already active")
	// ErrNoActiveSession signals close/extend/resume with nothing running.
	// Callers treat it as benign (double-tap on the stop button).
	ErrNoActiveSession = errors.New("no active focus session")
)

// SessionStore is the slice of persistence the guardian needs.
type SessionStore interface {
	CreateFocusSession(ctx context.Context, s model.FocusSession) (int64, error)
	CloseFocusSession(ctx context.Context, id int64, end time.Time, reason model.EndReason, overMinutes int) error
	ActiveFocusSession(ctx context.Context) (*model.FocusSession, error)
}

// StartParams are snapshotted into the session row at start; later settings
// changes do not alter a running session.
type StartParams struct {
	BreakMinutes   int
	BedtimeMinutes int
	LinkedTaskID   *int64
	Label          string
}

// Snapshot is the per-second view emitted while a session is active.
type Snapshot struct {
	SessionID        int64 `json:"session_id"`
	ElapsedSeconds   int   `json:"elapsed_seconds"`
	NextBreakSeconds int   `json:"next_break_seconds"`
	IsOvertime       bool  `json:"is_overtime"`
	OverMinutes      int   `json:"over_minutes"`
}

// Manager owns the lifecycle of the single active focus session and the
// timing state derived from it. The persisted row is the source of truth;
// all in-memory state can be rebuilt from it plus the clock, which makes the
// ticker disposable across restarts.
type Manager struct {
	store SessionStore
	sched notify.Scheduler
	clk   clock.Clock

	mu              sync.Mutex
	active          *model.FocusSession
	nextBreakTarget time.Time
	breakOneShot    bool // set while an Extend one-shot replaces the recurring reminder

	updates    chan Snapshot
	tickerStop chan struct{}
}

func NewManager(store SessionStore, sched notify.Scheduler, clk clock.Clock) *Manager {
	if clk == nil {
		clk = clock.System{}
	}
	return &Manager{
		store:   store,
		sched:   sched,
		clk:     clk,
		updates: make(chan Snapshot, 1),
	}
}

// Updates delivers a Snapshot roughly once per second while a session is
// active. Sends are lossy; a slow reader only misses intermediate ticks.
func (m *Manager) Updates() <-chan Snapshot {
	return m.updates
}

// Start creates and persists a new session. Fails with ErrSessionActive if
// one is already running and leaves no partial state when persistence fails.
// Notification scheduling failures are logged and do not abort the start.
func (m *Manager) Start(ctx context.Context, p StartParams) (*model.FocusSession, error) {
	if p.BreakMinutes <= 0 {
		return nil, fmt.Errorf("break interval must be positive, got %d", p.BreakMinutes)
	}
	if p.BedtimeMinutes < 0 || p.BedtimeMinutes > 1439 {
		return nil, fmt.Errorf("bedtime minutes out of range [0,1439]: %d", p.BedtimeMinutes)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		return nil, ErrSessionActive
	}

	now := m.clk.Now()
	sess := model.FocusSession{
		StartTS:        now,
		BreakMinutes:   p.BreakMinutes,
		BedtimeMinutes: p.BedtimeMinutes,
		LinkedTaskID:   p.LinkedTaskID,
		Label:          p.Label,
	}
	id, err := m.store.CreateFocusSession(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("persisting focus session: %w", err)
	}
	sess.ID = id

	m.active = &sess
	interval := time.Duration(p.BreakMinutes) * time.Minute
	m.nextBreakTarget = now.Add(interval)
	m.startTickerLocked()
	m.rescheduleLocked(now, interval, interval)

	out := sess
	return &out, nil
}

// Resume reattaches to a persisted active session after a restart. The break
// cadence is phase-locked to the original start, and the notification
// schedule is reissued (cancel-then-reschedule) because the scheduler's state
// is not guaranteed to survive all restart paths.
func (m *Manager) Resume(ctx context.Context) (*model.FocusSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		out := *m.active
		return &out, nil
	}

	sess, err := m.store.ActiveFocusSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading active focus session: %w", err)
	}
	if sess == nil {
		return nil, ErrNoActiveSession
	}

	now := m.clk.Now()
	interval := time.Duration(sess.BreakMinutes) * time.Minute
	remainder := BreakRemainder(now.Sub(sess.StartTS), interval)

	m.active = sess
	m.nextBreakTarget = now.Add(remainder)
	m.startTickerLocked()
	m.rescheduleLocked(now, remainder, interval)

	out := *sess
	return &out, nil
}

// Extend pushes the next break target out by extraMinutes without touching
// the persisted break_minutes or the bedtime schedule. The break reminder
// becomes a single one-shot for the extension.
func (m *Manager) Extend(extraMinutes int) error {
	if extraMinutes <= 0 {
		return fmt.Errorf("extension must be positive, got %d", extraMinutes)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return ErrNoActiveSession
	}

	extra := time.Duration(extraMinutes) * time.Minute
	m.nextBreakTarget = m.clk.Now().Add(extra)
	m.breakOneShot = true
	if err := m.sched.ScheduleOnce(NotifBreak, extra, breakTitle, breakBody, nil); err != nil {
		log.Printf("Warning: rescheduling break reminder failed: %v", err)
	}
	return nil
}

// Close ends the active session, persisting end time, reason and the
// minutes elapsed past bedtime (0 if closed in time), then cancels every
// pending notification. Returns ErrNoActiveSession when nothing is running.
func (m *Manager) Close(ctx context.Context, reason model.EndReason) (*model.FocusSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return nil, ErrNoActiveSession
	}

	now := m.clk.Now()
	over := MinutesPastBedtime(MinutesOfDay(now), m.active.BedtimeMinutes)

	if err := m.store.CloseFocusSession(ctx, m.active.ID, now, reason, over); err != nil {
		// Keep in-memory state so the caller can retry.
		return nil, fmt.Errorf("closing focus session: %w", err)
	}

	closed := *m.active
	end := now
	closed.EndTS = &end
	closed.EndedReason = reason
	closed.OverBedtimeMins = over

	for _, id := range notificationIDs {
		m.sched.Cancel(id)
	}
	m.stopTickerLocked()
	m.active = nil
	m.nextBreakTarget = time.Time{}
	m.breakOneShot = false

	return &closed, nil
}

// Snapshot returns the current timing view, or false when idle.
func (m *Manager) Snapshot() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return Snapshot{}, false
	}
	return m.snapshotLocked(m.clk.Now()), true
}

func (m *Manager) snapshotLocked(now time.Time) Snapshot {
	interval := time.Duration(m.active.BreakMinutes) * time.Minute

	// Roll an expired break target forward so the countdown keeps phase with
	// the recurring reminder instead of sticking at zero.
	rolled := false
	for interval > 0 && !m.nextBreakTarget.After(now) {
		m.nextBreakTarget = m.nextBreakTarget.Add(interval)
		rolled = true
	}

	// An extension replaced the recurring reminder with a one-shot. Once that
	// one-shot's target has passed, restore the recurring schedule so every
	// future countdown boundary has a reminder behind it again.
	if rolled && m.breakOneShot {
		m.breakOneShot = false
		if err := m.sched.ScheduleRecurring(NotifBreak, m.nextBreakTarget.Sub(now), interval, breakTitle, breakBody); err != nil {
			log.Printf("Warning: restoring break reminder failed: %v", err)
		}
	}

	nextBreak := int(m.nextBreakTarget.Sub(now).Seconds())
	if nextBreak < 0 {
		nextBreak = 0
	}
	over := MinutesPastBedtime(MinutesOfDay(now), m.active.BedtimeMinutes)

	return Snapshot{
		SessionID:        m.active.ID,
		ElapsedSeconds:   int(now.Sub(m.active.StartTS).Seconds()),
		NextBreakSeconds: nextBreak,
		IsOvertime:       over > 0,
		OverMinutes:      over,
	}
}

// Notification copy.
const (
	breakTitle = "Tiempo de corte suave"
	breakBody  = "Es hora de hacer una pausa de 2 minutos. Descansa los ojos."

	bedtimeTitle = "Límite de Hiperfoco"
	bedtimeBody  = "Es hora de dormir. Por tu salud, desconéctate o pide apoyo a un contacto."

	overtime30Body = "Sigues despierto 30 minutos después de tu hora límite."
	overtime60Body = "Llevas 60 minutos sobre tu hora límite. Cierra y duerme."
)

// rescheduleLocked resynchronizes the full notification schedule from the
// session row: the recurring soft-break reminder plus the three-shot bedtime
// sequence (deadline, +30, +60). The escalation series deliberately stops at
// +60. Scheduling failures never block the session; the row is the
// authoritative record, the reminders are best-effort.
func (m *Manager) rescheduleLocked(now time.Time, firstBreak, interval time.Duration) {
	for _, id := range notificationIDs {
		m.sched.Cancel(id)
	}
	m.breakOneShot = false

	if err := m.sched.ScheduleRecurring(NotifBreak, firstBreak, interval, breakTitle, breakBody); err != nil {
		log.Printf("Warning: scheduling break reminder failed: %v", err)
	}

	toBed := time.Duration(SecondsToBedtime(now, m.active.BedtimeMinutes)) * time.Second
	escalation := map[string]string{PayloadEscalation: "overtime"}

	if err := m.sched.ScheduleOnce(NotifBedtime, toBed, bedtimeTitle, bedtimeBody, nil); err != nil {
		log.Printf("Warning: scheduling bedtime reminder failed: %v", err)
	}
	if err := m.sched.ScheduleOnce(NotifBedtimePlus30, toBed+30*time.Minute, bedtimeTitle, overtime30Body, escalation); err != nil {
		log.Printf("Warning: scheduling bedtime escalation failed: %v", err)
	}
	if err := m.sched.ScheduleOnce(NotifBedtimePlus60, toBed+60*time.Minute, bedtimeTitle, overtime60Body, escalation); err != nil {
		log.Printf("Warning: scheduling bedtime escalation failed: %v", err)
	}
}

func (m *Manager) startTickerLocked() {
	if m.tickerStop != nil {
		return
	}
	stop := make(chan struct{})
	m.tickerStop = stop

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.mu.Lock()
				if m.active == nil {
					m.mu.Unlock()
					continue
				}
				snap := m.snapshotLocked(m.clk.Now())
				m.mu.Unlock()

				select {
				case m.updates <- snap:
				default: // drop if nobody is reading
				}
			}
		}
	}()
}

func (m *Manager) stopTickerLocked() {
	if m.tickerStop != nil {
		close(m.tickerStop)
		m.tickerStop = nil
	}
}

// Stop releases the ticker without closing the session; used at daemon
// shutdown. The session row stays open and is resumed on the next boot.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTickerLocked()
}

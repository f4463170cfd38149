package guardian

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brujula/internal/clock"
	"brujula/internal/model"
)

type fakeStore struct {
	nextID     int64
	sessions   map[int64]*model.FocusSession
	failCreate bool
	failClose  bool
	creates    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[int64]*model.FocusSession)}
}

func (f *fakeStore) CreateFocusSession(_ context.Context, s model.FocusSession) (int64, error) {
	if f.failCreate {
		return 0, errors.New("storage unavailable")
	}
	f.creates++
	f.nextID++
	s.ID = f.nextID
	f.sessions[s.ID] = &s
	return s.ID, nil
}

func (f *fakeStore) CloseFocusSession(_ context.Context, id int64, end time.Time, reason model.EndReason, overMinutes int) error {
	if f.failClose {
		return errors.New("storage unavailable")
	}
	s, ok := f.sessions[id]
	if !ok {
		return errors.New("not found")
	}
	s.EndTS = &end
	s.EndedReason = reason
	s.OverBedtimeMins = overMinutes
	return nil
}

func (f *fakeStore) ActiveFocusSession(context.Context) (*model.FocusSession, error) {
	for _, s := range f.sessions {
		if s.EndTS == nil {
			out := *s
			return &out, nil
		}
	}
	return nil, nil
}

type schedCall struct {
	id       string
	delay    time.Duration
	interval time.Duration
	payload  map[string]string
}

type fakeSched struct {
	recurring []schedCall
	once      []schedCall
	cancelled []string
	fail      bool
}

func (f *fakeSched) ScheduleRecurring(id string, delay, interval time.Duration, _, _ string) error {
	if f.fail {
		return errors.New("scheduling failed")
	}
	f.recurring = append(f.recurring, schedCall{id: id, delay: delay, interval: interval})
	return nil
}

func (f *fakeSched) ScheduleOnce(id string, delay time.Duration, _, _ string, payload map[string]string) error {
	if f.fail {
		return errors.New("scheduling failed")
	}
	f.once = append(f.once, schedCall{id: id, delay: delay, payload: payload})
	return nil
}

func (f *fakeSched) Cancel(id string) {
	f.cancelled = append(f.cancelled, id)
}

func (f *fakeSched) onceByID(id string) (schedCall, bool) {
	for _, c := range f.once {
		if c.id == id {
			return c, true
		}
	}
	return schedCall{}, false
}

// Fixture: evening session, bedtime 01:00 (60 minutes past midnight).
func newTestManager(start time.Time) (*Manager, *fakeStore, *fakeSched, *clock.Fixed) {
	store := newFakeStore()
	sched := &fakeSched{}
	clk := clock.NewFixed(start)
	return NewManager(store, sched, clk), store, sched, clk
}

func TestStartPersistsAndSchedules(t *testing.T) {
	start := time.Date(2025, 3, 10, 23, 30, 0, 0, time.Local)
	m, store, sched, _ := newTestManager(start)
	defer m.Stop()

	sess, err := m.Start(context.Background(), StartParams{BreakMinutes: 45, BedtimeMinutes: 60})
	require.NoError(t, err)
	assert.Equal(t, int64(1), sess.ID)
	assert.Equal(t, start, sess.StartTS)
	assert.Nil(t, sess.EndTS)
	assert.Equal(t, 45, store.sessions[1].BreakMinutes)

	require.Len(t, sched.recurring, 1)
	assert.Equal(t, NotifBreak, sched.recurring[0].id)
	assert.Equal(t, 45*time.Minute, sched.recurring[0].delay)
	assert.Equal(t, 45*time.Minute, sched.recurring[0].interval)

	// Bedtime sequence: 23:30 -> 01:00 is 90 minutes, then +30 and +60.
	bed, ok := sched.onceByID(NotifBedtime)
	require.True(t, ok)
	assert.Equal(t, 90*time.Minute, bed.delay)
	assert.Nil(t, bed.payload)

	p30, ok := sched.onceByID(NotifBedtimePlus30)
	require.True(t, ok)
	assert.Equal(t, 120*time.Minute, p30.delay)
	assert.Equal(t, "overtime", p30.payload[PayloadEscalation])

	p60, ok := sched.onceByID(NotifBedtimePlus60)
	require.True(t, ok)
	assert.Equal(t, 150*time.Minute, p60.delay)
	assert.Equal(t, "overtime", p60.payload[PayloadEscalation])
	// Exactly three bedtime shots; the series stops at +60.
	assert.Len(t, sched.once, 3)
}

func TestStartWhileActiveIsRejected(t *testing.T) {
	m, store, _, _ := newTestManager(time.Date(2025, 3, 10, 20, 0, 0, 0, time.Local))
	defer m.Stop()

	_, err := m.Start(context.Background(), StartParams{BreakMinutes: 45, BedtimeMinutes: 60})
	require.NoError(t, err)

	_, err = m.Start(context.Background(), StartParams{BreakMinutes: 30, BedtimeMinutes: 60})
	assert.ErrorIs(t, err, ErrSessionActive)
	assert.Equal(t, 1, store.creates)
}

func TestStartValidatesParams(t *testing.T) {
	m, _, _, _ := newTestManager(time.Now())
	_, err := m.Start(context.Background(), StartParams{BreakMinutes: 0, BedtimeMinutes: 60})
	assert.Error(t, err)
	_, err = m.Start(context.Background(), StartParams{BreakMinutes: 45, BedtimeMinutes: 1440})
	assert.Error(t, err)
}

func TestStartStorageFailureLeavesNoState(t *testing.T) {
	m, store, sched, _ := newTestManager(time.Now())
	store.failCreate = true

	_, err := m.Start(context.Background(), StartParams{BreakMinutes: 45, BedtimeMinutes: 60})
	require.Error(t, err)

	_, active := m.Snapshot()
	assert.False(t, active)
	assert.Empty(t, sched.recurring)
	assert.Empty(t, sched.once)
}

func TestStartSurvivesSchedulerFailure(t *testing.T) {
	m, _, sched, _ := newTestManager(time.Now())
	defer m.Stop()
	sched.fail = true

	sess, err := m.Start(context.Background(), StartParams{BreakMinutes: 45, BedtimeMinutes: 60})
	require.NoError(t, err)
	assert.NotNil(t, sess)

	_, active := m.Snapshot()
	assert.True(t, active)
}

func TestResumePhaseLocksBreakCadence(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 22, 0, 0, 0, time.Local)
	store := newFakeStore()
	_, err := store.CreateFocusSession(context.Background(), model.FocusSession{
		StartTS:        t0,
		BreakMinutes:   45,
		BedtimeMinutes: 60,
	})
	require.NoError(t, err)

	// Reopened 50 minutes in: 40 minutes remain to the next 45-minute cut.
	clk := clock.NewFixed(t0.Add(50 * time.Minute))
	sched := &fakeSched{}
	m := NewManager(store, sched, clk)
	defer m.Stop()

	sess, err := m.Resume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, t0, sess.StartTS)

	snap, active := m.Snapshot()
	require.True(t, active)
	assert.Equal(t, 40*60, snap.NextBreakSeconds)
	assert.Equal(t, 50*60, snap.ElapsedSeconds)

	require.Len(t, sched.recurring, 1)
	assert.Equal(t, 40*time.Minute, sched.recurring[0].delay)
	assert.Equal(t, 45*time.Minute, sched.recurring[0].interval)

	// Resync is cancel-then-reschedule across the whole id set.
	assert.Subset(t, sched.cancelled, notificationIDs)
}

func TestResumeWithNothingPersisted(t *testing.T) {
	m, _, _, _ := newTestManager(time.Now())
	_, err := m.Resume(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestExtendResetsTargetWithoutMutatingRow(t *testing.T) {
	start := time.Date(2025, 3, 10, 22, 0, 0, 0, time.Local)
	m, store, sched, clk := newTestManager(start)
	defer m.Stop()

	_, err := m.Start(context.Background(), StartParams{BreakMinutes: 45, BedtimeMinutes: 60})
	require.NoError(t, err)
	bedtimeShots := len(sched.once)

	clk.Advance(10 * time.Minute)
	require.NoError(t, m.Extend(25))

	snap, active := m.Snapshot()
	require.True(t, active)
	assert.Equal(t, 25*60, snap.NextBreakSeconds)

	// Persisted interval untouched; only the in-memory target moved.
	assert.Equal(t, 45, store.sessions[1].BreakMinutes)

	// One extra one-shot for the break, bedtime schedule untouched.
	assert.Len(t, sched.once, bedtimeShots+1)
	last := sched.once[len(sched.once)-1]
	assert.Equal(t, NotifBreak, last.id)
	assert.Equal(t, 25*time.Minute, last.delay)
}

func TestExtendWithoutSession(t *testing.T) {
	m, _, _, _ := newTestManager(time.Now())
	assert.ErrorIs(t, m.Extend(25), ErrNoActiveSession)
}

func TestCloseComputesOvertimeAcrossMidnight(t *testing.T) {
	// Session starts 23:30, bedtime 01:00, closed 01:15: 15 minutes over.
	start := time.Date(2025, 3, 10, 23, 30, 0, 0, time.Local)
	m, store, sched, clk := newTestManager(start)

	_, err := m.Start(context.Background(), StartParams{BreakMinutes: 45, BedtimeMinutes: 60})
	require.NoError(t, err)

	clk.Advance(105 * time.Minute) // 01:15

	snap, active := m.Snapshot()
	require.True(t, active)
	assert.True(t, snap.IsOvertime)
	assert.Equal(t, 15, snap.OverMinutes)

	closed, err := m.Close(context.Background(), model.EndReasonSleep)
	require.NoError(t, err)
	assert.Equal(t, 15, closed.OverBedtimeMins)
	assert.Equal(t, model.EndReasonSleep, closed.EndedReason)
	require.NotNil(t, closed.EndTS)
	assert.Equal(t, clk.Now(), *closed.EndTS)

	assert.Equal(t, 15, store.sessions[1].OverBedtimeMins)
	assert.NotNil(t, store.sessions[1].EndTS)

	// Every notification id is cancelled on close.
	for _, id := range notificationIDs {
		assert.Contains(t, sched.cancelled, id)
	}

	_, active = m.Snapshot()
	assert.False(t, active)
}

func TestCloseBeforeBedtimeIsZeroOvertime(t *testing.T) {
	start := time.Date(2025, 3, 10, 20, 0, 0, 0, time.Local)
	m, _, _, clk := newTestManager(start)

	_, err := m.Start(context.Background(), StartParams{BreakMinutes: 45, BedtimeMinutes: 60})
	require.NoError(t, err)

	clk.Advance(90 * time.Minute) // 21:30, well before 01:00
	closed, err := m.Close(context.Background(), model.EndReasonClosure)
	require.NoError(t, err)
	assert.Equal(t, 0, closed.OverBedtimeMins)
	assert.GreaterOrEqual(t, closed.OverBedtimeMins, 0)
}

func TestDoubleCloseIsBenign(t *testing.T) {
	m, _, _, _ := newTestManager(time.Now())
	_, err := m.Start(context.Background(), StartParams{BreakMinutes: 45, BedtimeMinutes: 60})
	require.NoError(t, err)

	_, err = m.Close(context.Background(), model.EndReasonClosure)
	require.NoError(t, err)

	_, err = m.Close(context.Background(), model.EndReasonClosure)
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestCloseStorageFailureKeepsSession(t *testing.T) {
	m, store, _, _ := newTestManager(time.Now())
	defer m.Stop()

	_, err := m.Start(context.Background(), StartParams{BreakMinutes: 45, BedtimeMinutes: 60})
	require.NoError(t, err)

	store.failClose = true
	_, err = m.Close(context.Background(), model.EndReasonClosure)
	require.Error(t, err)

	// Still active: the caller can retry.
	_, active := m.Snapshot()
	assert.True(t, active)

	store.failClose = false
	_, err = m.Close(context.Background(), model.EndReasonClosure)
	assert.NoError(t, err)
}

func TestSnapshotRestoresRecurringAfterExtension(t *testing.T) {
	start := time.Date(2025, 3, 10, 20, 0, 0, 0, time.Local)
	m, _, sched, clk := newTestManager(start)
	defer m.Stop()

	_, err := m.Start(context.Background(), StartParams{BreakMinutes: 45, BedtimeMinutes: 60})
	require.NoError(t, err)
	require.Len(t, sched.recurring, 1)

	clk.Advance(10 * time.Minute)
	require.NoError(t, m.Extend(25))

	// One minute past the extension target the countdown rolls to the next
	// 45-minute boundary and the recurring reminder is reinstated behind it.
	clk.Advance(26 * time.Minute)
	snap, active := m.Snapshot()
	require.True(t, active)
	assert.Equal(t, 44*60, snap.NextBreakSeconds)

	require.Len(t, sched.recurring, 2)
	restored := sched.recurring[1]
	assert.Equal(t, NotifBreak, restored.id)
	assert.Equal(t, 44*time.Minute, restored.delay)
	assert.Equal(t, 45*time.Minute, restored.interval)

	// Re-issue happens once, not on every subsequent tick.
	_, _ = m.Snapshot()
	assert.Len(t, sched.recurring, 2)
}

func TestSnapshotRollsExpiredBreakTarget(t *testing.T) {
	start := time.Date(2025, 3, 10, 20, 0, 0, 0, time.Local)
	m, _, _, clk := newTestManager(start)
	defer m.Stop()

	_, err := m.Start(context.Background(), StartParams{BreakMinutes: 45, BedtimeMinutes: 60})
	require.NoError(t, err)

	// 100 minutes in: two boundaries passed, 35 minutes to the third.
	clk.Advance(100 * time.Minute)
	snap, active := m.Snapshot()
	require.True(t, active)
	assert.Equal(t, 35*60, snap.NextBreakSeconds)
}

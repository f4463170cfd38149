package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brujula/internal/model"
	"brujula/internal/protocol"
	"brujula/internal/storage"
)

func setupTestDB(t *testing.T) (storage.Storage, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test_brujula.db")
	store := NewSQLiteStore(dbPath)
	err := store.Init(context.Background())
	require.NoError(t, err, "Failed to initialize test database")

	cleanup := func() {
		assert.NoError(t, store.Close(), "Failed to close test database")
	}
	return store, cleanup
}

func TestSaveAndLoadCheckIn(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now().Truncate(time.Millisecond)

	in := model.CheckIn{
		Timestamp: now,
		Energy:    6,
		Sensory:   7,
		Social:    2,
		Ambiguity: 1,
		Anger:     4,
		Result:    model.SemaphoreYellow,
	}
	id, err := store.SaveCheckIn(ctx, in)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	latest, err := store.LatestCheckIn(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, id, latest.ID)
	assert.Equal(t, in.Energy, latest.Energy)
	assert.Equal(t, in.Sensory, latest.Sensory)
	assert.Equal(t, in.Anger, latest.Anger)
	assert.Equal(t, model.SemaphoreYellow, latest.Result)
	assert.True(t, now.Equal(latest.Timestamp))
}

func TestLatestCheckInEmpty(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	latest, err := store.LatestCheckIn(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestCheckInStatsAndPrune(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	rows := []model.CheckIn{
		{Timestamp: base, Energy: 8, Sensory: 2, Social: 1, Ambiguity: 0, Result: model.SemaphoreGreen},
		{Timestamp: base.Add(time.Minute), Energy: 4, Sensory: 3, Social: 2, Ambiguity: 1, Result: model.SemaphoreYellow},
		{Timestamp: base.Add(2 * time.Minute), Energy: 2, Sensory: 9, Social: 8, Ambiguity: 9, Result: model.SemaphoreRed},
		{Timestamp: base.Add(3 * time.Minute), Energy: 6, Sensory: 2, Social: 1, Ambiguity: 2, Result: model.SemaphoreGreen},
	}
	for _, c := range rows {
		_, err := store.SaveCheckIn(ctx, c)
		require.NoError(t, err)
	}

	stats, err := store.CheckInStats(ctx, base.Add(-time.Minute), base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.CountGreen)
	assert.Equal(t, 1, stats.CountYellow)
	assert.Equal(t, 1, stats.CountRed)
	assert.Equal(t, 5.0, stats.AvgEnergy)
	assert.Equal(t, 4.0, stats.AvgSensory)
	assert.Equal(t, 3.0, stats.AvgSocial)
	assert.Equal(t, 3.0, stats.AvgAmbiguity)

	require.NoError(t, store.PruneCheckIns(ctx, 2))
	remaining, err := store.CheckIns(ctx, base.Add(-time.Minute), base.Add(time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	// Newest first; the two most recent survive.
	assert.Equal(t, model.SemaphoreGreen, remaining[0].Result)
	assert.Equal(t, model.SemaphoreRed, remaining[1].Result)
}

func TestFocusSessionLifecycle(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	start := time.Now().Add(-2 * time.Hour).Truncate(time.Millisecond)
	taskID := int64(7)

	id, err := store.CreateFocusSession(ctx, model.FocusSession{
		StartTS:        start,
		BreakMinutes:   45,
		BedtimeMinutes: 60,
		Label:          "deep work",
		LinkedTaskID:   &taskID,
	})
	require.NoError(t, err)

	active, err := store.ActiveFocusSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, id, active.ID)
	assert.True(t, active.Active())
	assert.True(t, start.Equal(active.StartTS))
	assert.Equal(t, 45, active.BreakMinutes)
	assert.Equal(t, 60, active.BedtimeMinutes)
	assert.Equal(t, "deep work", active.Label)
	require.NotNil(t, active.LinkedTaskID)
	assert.Equal(t, taskID, *active.LinkedTaskID)

	end := time.Now().Truncate(time.Millisecond)
	require.NoError(t, store.CloseFocusSession(ctx, id, end, model.EndReasonSleep, 15))

	active, err = store.ActiveFocusSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)

	history, err := store.FocusSessionHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	closed := history[0]
	require.NotNil(t, closed.EndTS)
	assert.True(t, end.Equal(*closed.EndTS))
	assert.Equal(t, model.EndReasonSleep, closed.EndedReason)
	assert.Equal(t, 15, closed.OverBedtimeMins)
	assert.False(t, closed.Active())
}

func TestCloseUnknownFocusSession(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	err := store.CloseFocusSession(context.Background(), 99, time.Now(), model.EndReasonClosure, 0)
	assert.Error(t, err)
}

func TestDeletingLinkedTaskKeepsSession(t *testing.T) {
	// linked_task_id is a weak reference: no FK constraint, so a vanished
	// task never corrupts or cascades into the session row.
	store, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	taskID, err := store.SaveTask(ctx, model.Task{
		Title:          "balances",
		DoneDefinition: "balances al día",
		StartsAt:       "Archivo",
		FirstStep:      "abrir el archivo",
		MinutesBudget:  2,
		CreatedAt:      time.Now(),
	})
	require.NoError(t, err)

	_, err = store.CreateFocusSession(ctx, model.FocusSession{
		StartTS:        time.Now(),
		BreakMinutes:   45,
		BedtimeMinutes: 60,
		LinkedTaskID:   &taskID,
	})
	require.NoError(t, err)

	active, err := store.ActiveFocusSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	require.NotNil(t, active.LinkedTaskID)
	assert.Equal(t, taskID, *active.LinkedTaskID)
}

func TestTaskLifecycle(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	created := time.Now().Truncate(time.Millisecond)
	id, err := store.SaveTask(ctx, model.Task{
		Title:          "informe",
		DoneDefinition: "borrador enviado",
		StartsAt:       "App",
		FirstStep:      "abrir el documento",
		NeedsTechnique: true,
		MinutesBudget:  15,
		CreatedAt:      created,
	})
	require.NoError(t, err)

	require.NoError(t, store.UpdateTaskState(ctx, id, model.TaskInProgress))

	done := created.Add(20 * time.Minute)
	require.NoError(t, store.CompleteTask(ctx, id, 20, done))

	tasks, err := store.Tasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	task := tasks[0]
	assert.Equal(t, model.TaskDone, task.State)
	assert.True(t, task.NeedsTechnique)
	require.NotNil(t, task.MinutesSpent)
	assert.Equal(t, 20, *task.MinutesSpent)
	require.NotNil(t, task.CompletedAt)
	assert.True(t, done.Equal(*task.CompletedAt))
}

func TestSocialLogRoundTrip(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	_, err := store.SaveSocialLog(ctx, model.SocialLog{
		Timestamp:   time.Now(),
		Phase:       model.SocialBefore,
		Duration:    "1h",
		SensoryRisk: "Alto",
		Earplugs:    true,
	})
	require.NoError(t, err)

	social, sensory := 8, 6
	_, err = store.SaveSocialLog(ctx, model.SocialLog{
		Timestamp:   time.Now().Add(2 * time.Hour),
		Phase:       model.SocialAfter,
		SocialCost:  &social,
		SensoryCost: &sensory,
	})
	require.NoError(t, err)

	logs, err := store.SocialLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	after := logs[0]
	assert.Equal(t, model.SocialAfter, after.Phase)
	require.NotNil(t, after.SocialCost)
	assert.Equal(t, 8, *after.SocialCost)

	before := logs[1]
	assert.Equal(t, model.SocialBefore, before.Phase)
	assert.Equal(t, "1h", before.Duration)
	assert.Equal(t, "Alto", before.SensoryRisk)
	assert.True(t, before.Earplugs)
	assert.Nil(t, before.SocialCost)
}

func TestProtocolsSeededOnce(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	protocols, err := store.Protocols(ctx)
	require.NoError(t, err)
	require.Len(t, protocols, len(protocol.DefaultOrder))
	assert.Equal(t, "Activación / enojo", protocols[0].Name)
	assert.Equal(t, protocol.DefaultSteps["Sensorial"], protocols[3].Steps)

	// Editing steps persists and does not re-seed.
	newSteps := []string{"solo un paso"}
	require.NoError(t, store.UpdateProtocolSteps(ctx, protocols[0].ID, newSteps))

	protocols, err = store.Protocols(ctx)
	require.NoError(t, err)
	require.Len(t, protocols, len(protocol.DefaultOrder))
	assert.Equal(t, newSteps, protocols[0].Steps)
}

func TestPartnerTemplatesSeeded(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	templates, err := store.PartnerTemplates(ctx)
	require.NoError(t, err)
	assert.Len(t, templates, len(protocol.DefaultRequests)+len(protocol.DefaultActions))

	require.NoError(t, store.UpdatePartnerTemplate(ctx, templates[0].ID, "texto editado"))
	templates, err = store.PartnerTemplates(ctx)
	require.NoError(t, err)
	assert.Equal(t, "texto editado", templates[0].Text)
}

func TestSettings(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	_, ok, err := store.GetSetting(ctx, model.SettingBreakMinutes)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetSetting(ctx, model.SettingBreakMinutes, "30"))
	val, ok, err := store.GetSetting(ctx, model.SettingBreakMinutes)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "30", val)

	// Upsert replaces.
	require.NoError(t, store.SetSetting(ctx, model.SettingBreakMinutes, "45"))
	val, _, err = store.GetSetting(ctx, model.SettingBreakMinutes)
	require.NoError(t, err)
	assert.Equal(t, "45", val)
}

func TestCloseDB(t *testing.T) {
	store, cleanup := setupTestDB(t)
	cleanup()

	_, err := store.SaveCheckIn(context.Background(), model.CheckIn{Timestamp: time.Now(), Result: model.SemaphoreGreen})
	assert.Error(t, err)
}

package storage

import (
	"context"
	"time"

	"brujula/internal/model"
)

// Storage is the persistence collaborator for the daemon. Single writer,
// durable, no cross-row transactional invariants.
type Storage interface {
	Init(ctx context.Context) error
	Close() error

	// Check-ins
	SaveCheckIn(ctx context.Context, c model.CheckIn) (int64, error)
	LatestCheckIn(ctx context.Context) (*model.CheckIn, error)
	CheckIns(ctx context.Context, from, to time.Time, limit int) ([]model.CheckIn, error)
	CheckInStats(ctx context.Context, from, to time.Time) (model.CheckInStats, error)
	PruneCheckIns(ctx context.Context, keepLast int) error

	// Focus sessions
	CreateFocusSession(ctx context.Context, s model.FocusSession) (int64, error)
	CloseFocusSession(ctx context.Context, id int64, end time.Time, reason model.EndReason, overMinutes int) error
	ActiveFocusSession(ctx context.Context) (*model.FocusSession, error)
	FocusSessionHistory(ctx context.Context, limit int) ([]model.FocusSession, error)

	// Tasks (2-minute starter wizard)
	SaveTask(ctx context.Context, t model.Task) (int64, error)
	UpdateTaskState(ctx context.Context, id int64, state string) error
	CompleteTask(ctx context.Context, id int64, minutesSpent int, at time.Time) error
	Tasks(ctx context.Context, limit int) ([]model.Task, error)

	// Social logs
	SaveSocialLog(ctx context.Context, l model.SocialLog) (int64, error)
	SocialLogs(ctx context.Context, limit int) ([]model.SocialLog, error)

	// Protocols and partner templates (seeded on first run)
	Protocols(ctx context.Context) ([]model.Protocol, error)
	UpdateProtocolSteps(ctx context.Context, id int64, steps []string) error
	PartnerTemplates(ctx context.Context) ([]model.PartnerTemplate, error)
	UpdatePartnerTemplate(ctx context.Context, id int64, text string) error

	// Settings
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
}

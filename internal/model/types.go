package model

import "time"

// Stored values for the semaphore result. Kept in Spanish because the
// database copy and the advisory strings are Spanish-first.
type Semaphore string

const (
	SemaphoreGreen  Semaphore = "VERDE"
	SemaphoreYellow Semaphore = "AMARILLO"
	SemaphoreRed    Semaphore = "ROJO"
)

// CheckIn is one subjective self-regulation snapshot. All five scores are in
// [0,10]. Anger is recorded but never feeds the semaphore.
type CheckIn struct {
	ID        int64     `db:"id"`
	Timestamp time.Time `db:"timestamp"`
	Energy    int       `db:"energia_fisica"`
	Sensory   int       `db:"carga_sensorial"`
	Social    int       `db:"carga_social"`
	Ambiguity int       `db:"ambiguedad"`
	Anger     int       `db:"ira"`
	Result    Semaphore `db:"semaforo_resultado"`
}

// CheckInStats summarizes a range of check-ins. Averages are rounded to one
// decimal place.
type CheckInStats struct {
	Total        int     `json:"total"`
	AvgEnergy    float64 `json:"avg_energy"`
	AvgSensory   float64 `json:"avg_sensory"`
	AvgSocial    float64 `json:"avg_social"`
	AvgAmbiguity float64 `json:"avg_ambiguity"`
	CountGreen   int     `json:"count_green"`
	CountYellow  int     `json:"count_yellow"`
	CountRed     int     `json:"count_red"`
}

// EndReason tags how a focus session was closed.
type EndReason string

const (
	EndReasonClosure EndReason = "cierre"
	EndReasonSleep   EndReason = "dormir"
)

// FocusSession is the hyperfocus guardian record. EndTS being nil is the sole
// discriminator between an active and a closed session.
type FocusSession struct {
	ID              int64      `db:"id"`
	StartTS         time.Time  `db:"start_ts"`
	EndTS           *time.Time `db:"end_ts"`
	Label           string     `db:"label"`
	LinkedTaskID    *int64     `db:"linked_task_id"`
	BreakMinutes    int        `db:"break_minutes"`
	BedtimeMinutes  int        `db:"bedtime_minutes"` // minutes since midnight, e.g. 01:00 -> 60
	EndedReason     EndReason  `db:"ended_reason"`
	OverBedtimeMins int        `db:"over_bedtime_minutes"`
}

// Active reports whether the session is still open.
func (s *FocusSession) Active() bool {
	return s != nil && s.EndTS == nil
}

// Task states for the 2-minute starter wizard.
const (
	TaskPending    = "pendiente"
	TaskInProgress = "en_curso"
	TaskDone       = "hecha"
)

// Task is a starter-wizard record: what "done" means, where the task
// physically starts, and the 30-second first step.
type Task struct {
	ID             int64      `db:"id"`
	Title          string     `db:"titulo"`
	DoneDefinition string     `db:"definicion_done"`
	StartsAt       string     `db:"donde_empieza"`
	FirstStep      string     `db:"primer_paso"`
	NeedsTechnique bool       `db:"requiere_tecnica"`
	MinutesBudget  int        `db:"tiempo_min"`
	State          string     `db:"estado"`
	CreatedAt      time.Time  `db:"created_at"`
	MinutesSpent   *int       `db:"tiempo_dedicado"`
	CompletedAt    *time.Time `db:"completed_at"`
}

// SocialPhase distinguishes pre-event and post-event social logs.
type SocialPhase string

const (
	SocialBefore SocialPhase = "antes"
	SocialAfter  SocialPhase = "despues"
)

// SocialLog captures either the pre-event plan (duration, sensory risk,
// earplugs) or the post-event cost scores.
type SocialLog struct {
	ID          int64       `db:"id"`
	Timestamp   time.Time   `db:"timestamp"`
	Phase       SocialPhase `db:"fase"`
	Duration    string      `db:"duracion"`
	SensoryRisk string      `db:"riesgo_sensorial"`
	Earplugs    bool        `db:"llevar_tapones"`
	SocialCost  *int        `db:"costo_social"`
	SensoryCost *int        `db:"costo_sensorial"`
}

// Protocol is a guided micro-intervention: an ordered list of steps with
// optional per-step timers (minutes).
type Protocol struct {
	ID     int64    `db:"id"`
	Name   string   `db:"nombre"`
	Steps  []string `db:"pasos_json"`
	Timers []int    `db:"timers_json"`
	Order  int      `db:"orden"`
}

// PartnerTemplate is a canned support request ("pedido") or partner action
// ("accion") shown on the ask-for-support screen.
type PartnerTemplate struct {
	ID    int64  `db:"id"`
	Kind  string `db:"tipo"` // "pedido" or "accion"
	Text  string `db:"texto"`
	Order int    `db:"orden"`
}

// Settings keys shared between the daemon and the CLI. Values are stored as
// strings in the settings table.
const (
	SettingBreakMinutes   = "foco_break_minutes"
	SettingBedtimeMinutes = "foco_bedtime_minutes"
	SettingRojoChecklist  = "rojo_checklist"
	SettingCheckInKeep    = "checkin_keep_last"
)

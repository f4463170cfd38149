package ipc

import "brujula/internal/model"

// DefaultSocketPath is where the daemon listens unless socket_path overrides it.
const DefaultSocketPath = "/tmp/brujula.sock"

// Command represents a command sent over the socket
type Command struct {
	Name string      `json:"name"`
	Args interface{} `json:"args,omitempty"`
}

// Response represents a response sent back over the socket
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"` // Optional data in response
}

// --- Command Argument Structs ---

type CheckInArgs struct {
	Energy    int `json:"energy"`
	Sensory   int `json:"sensory"`
	Social    int `json:"social"`
	Ambiguity int `json:"ambiguity"`
	Anger     int `json:"anger"`
}

type FocusStartArgs struct {
	Label          string `json:"label,omitempty"`
	LinkedTaskID   int64  `json:"linked_task_id,omitempty"` // 0 means unlinked
	BreakMinutes   int    `json:"break_minutes,omitempty"`  // 0 means use configured default
	BedtimeMinutes int    `json:"bedtime_minutes,omitempty"`
	HasBedtime     bool   `json:"has_bedtime,omitempty"` // distinguishes explicit midnight (0) from "use default"
}

type FocusStopArgs struct {
	Reason string `json:"reason"` // "cierre" or "dormir"
}

type FocusExtendArgs struct {
	ExtraMinutes int `json:"extra_minutes"`
}

type SocialAddArgs struct {
	Phase       string `json:"phase"` // "antes" or "despues"
	Duration    string `json:"duration,omitempty"`
	SensoryRisk string `json:"sensory_risk,omitempty"`
	Earplugs    bool   `json:"earplugs,omitempty"`
	SocialCost  *int   `json:"social_cost,omitempty"`
	SensoryCost *int   `json:"sensory_cost,omitempty"`
}

type TaskAddArgs struct {
	Title          string `json:"title"`
	DoneDefinition string `json:"done_definition"`
	StartsAt       string `json:"starts_at"`
	FirstStep      string `json:"first_step"`
	NeedsTechnique bool   `json:"needs_technique"`
	MinutesBudget  int    `json:"minutes_budget"`
}

type TaskStartArgs struct {
	ID int64 `json:"id"`
}

type TaskDoneArgs struct {
	ID           int64 `json:"id"`
	MinutesSpent int   `json:"minutes_spent"`
}

type ProtocolEditArgs struct {
	ID    int64    `json:"id"`
	Steps []string `json:"steps"`
}

type StatsArgs struct {
	Days int `json:"days"` // window size, default 7
}

type SetSettingArgs struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// --- Command Names (Constants) ---

const (
	CmdCheckIn      = "checkin"
	CmdCheckInLast  = "checkin_last"
	CmdFocusStart   = "focus_start"
	CmdFocusStop    = "focus_stop"
	CmdFocusExtend  = "focus_extend"
	CmdFocusStatus  = "focus_status"
	CmdSocialAdd    = "social_add"
	CmdSocialList   = "social_list"
	CmdTaskAdd      = "task_add"
	CmdTaskStart    = "task_start"
	CmdTaskDone     = "task_done"
	CmdTaskList     = "task_list"
	CmdProtocolList = "protocol_list"
	CmdProtocolEdit = "protocol_edit"
	CmdTemplateList = "template_list"
	CmdStats        = "stats"
	CmdSetSetting   = "set_setting"
	CmdPing         = "ping" // Simple health check
)

// --- Response Data ---

type CheckInData struct {
	ID     int64  `json:"id"`
	Result string `json:"result"` // VERDE / AMARILLO / ROJO
	Advice string `json:"advice"`
}

type FocusStatusData struct {
	Active           bool   `json:"active"`
	SessionID        int64  `json:"session_id,omitempty"`
	Label            string `json:"label,omitempty"`
	ElapsedSeconds   int    `json:"elapsed_seconds"`
	NextBreakSeconds int    `json:"next_break_seconds"`
	BedtimeMinutes   int    `json:"bedtime_minutes"`
	IsOvertime       bool   `json:"is_overtime"`
	OverMinutes      int    `json:"over_minutes"`
}

type StatsData struct {
	Days     int                  `json:"days"`
	CheckIns model.CheckInStats   `json:"checkins"`
	Sessions []model.FocusSession `json:"sessions,omitempty"`
}

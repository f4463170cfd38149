package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"brujula/internal/model"
	"brujula/internal/protocol"
	"brujula/internal/storage"
)

// SQLiteStore persists all Brújula rows in a single on-device database.
// Timestamps are stored as integer milliseconds since epoch.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

func NewSQLiteStore(dbPath string) storage.Storage {
	return &SQLiteStore{dbPath: dbPath}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS checkins (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp INTEGER NOT NULL,
	energia_fisica INTEGER NOT NULL,
	carga_sensorial INTEGER NOT NULL,
	carga_social INTEGER NOT NULL,
	ambiguedad INTEGER NOT NULL,
	ira INTEGER NOT NULL,
	semaforo_resultado TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_checkins_timestamp ON checkins (timestamp);

CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	titulo TEXT NOT NULL,
	definicion_done TEXT NOT NULL,
	donde_empieza TEXT NOT NULL,
	primer_paso TEXT NOT NULL,
	requiere_tecnica INTEGER NOT NULL,
	tiempo_min INTEGER NOT NULL,
	estado TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	tiempo_dedicado INTEGER,
	completed_at INTEGER
);

CREATE TABLE IF NOT EXISTS protocols (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	nombre TEXT NOT NULL,
	pasos_json TEXT NOT NULL,
	timers_json TEXT NOT NULL,
	orden INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS partner_templates (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	tipo TEXT NOT NULL,
	texto TEXT NOT NULL,
	orden INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS social_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp INTEGER NOT NULL,
	fase TEXT NOT NULL,
	duracion TEXT,
	riesgo_sensorial TEXT,
	llevar_tapones INTEGER,
	costo_social INTEGER,
	costo_sensorial INTEGER
);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS focus_sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	start_ts INTEGER NOT NULL,
	end_ts INTEGER,
	label TEXT,
	linked_task_id INTEGER,
	break_minutes INTEGER NOT NULL,
	bedtime_minutes INTEGER NOT NULL,
	ended_reason TEXT,
	over_bedtime_minutes INTEGER
);
CREATE INDEX IF NOT EXISTS idx_focus_sessions_end ON focus_sessions (end_ts);
`

func (s *SQLiteStore) Init(ctx context.Context) error {
	dir := filepath.Dir(s.dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create db directory %s: %w", dir, err)
	}

	log.Printf("Initializing SQLite database at: %s", s.dbPath)
	db, err := sql.Open("sqlite3", s.dbPath+"?_journal=WAL&_timeout=5000&_fk=true")
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	s.db = db

	// SQLite behaves best with a single writer connection.
	s.db.SetMaxOpenConns(1)
	s.db.SetMaxIdleConns(1)
	s.db.SetConnMaxLifetime(time.Minute * 5)

	if err := s.db.PingContext(ctx); err != nil {
		s.db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		s.db.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if err := s.migrate(ctx); err != nil {
		s.db.Close()
		return fmt.Errorf("failed to migrate: %w", err)
	}

	if err := s.seed(ctx); err != nil {
		s.db.Close()
		return fmt.Errorf("failed to seed defaults: %w", err)
	}

	log.Println("Database initialized successfully.")
	return nil
}

// migrate runs user_version-gated schema upgrades. Version 1 added the task
// completion columns; version 2 reserved the focus_sessions slot.
func (s *SQLiteStore) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return err
	}

	if version == 0 {
		// Older databases predate the task completion columns. The ALTERs
		// fail harmlessly when the column already exists.
		_, _ = s.db.ExecContext(ctx, "ALTER TABLE tasks ADD COLUMN tiempo_dedicado INTEGER")
		_, _ = s.db.ExecContext(ctx, "ALTER TABLE tasks ADD COLUMN completed_at INTEGER")
		version = 1
	}
	if version == 1 {
		version = 2
	}

	_, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version))
	return err
}

// seed populates protocols and partner templates on an empty database.
func (s *SQLiteStore) seed(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM protocols").Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		for i, name := range protocol.DefaultOrder {
			steps, err := json.Marshal(protocol.DefaultSteps[name])
			if err != nil {
				return err
			}
			if _, err := s.db.ExecContext(ctx,
				"INSERT INTO protocols (nombre, pasos_json, timers_json, orden) VALUES (?, ?, ?, ?)",
				name, string(steps), "[]", i); err != nil {
				return err
			}
		}
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM partner_templates").Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		for i, text := range protocol.DefaultRequests {
			if _, err := s.db.ExecContext(ctx,
				"INSERT INTO partner_templates (tipo, texto, orden) VALUES ('pedido', ?, ?)", text, i); err != nil {
				return err
			}
		}
		for i, text := range protocol.DefaultActions {
			if _, err := s.db.ExecContext(ctx,
				"INSERT INTO partner_templates (tipo, texto, orden) VALUES ('accion', ?, ?)", text, i); err != nil {
				return err
			}
		}
	}
	return nil
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// --- Check-ins ---

func (s *SQLiteStore) SaveCheckIn(ctx context.Context, c model.CheckIn) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO checkins (timestamp, energia_fisica, carga_sensorial, carga_social, ambiguedad, ira, semaforo_resultado)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		millis(c.Timestamp), c.Energy, c.Sensory, c.Social, c.Ambiguity, c.Anger, string(c.Result))
	if err != nil {
		return 0, fmt.Errorf("failed to insert check-in: %w", err)
	}
	return res.LastInsertId()
}

const checkInColumns = `id, timestamp, energia_fisica, carga_sensorial, carga_social, ambiguedad, ira, semaforo_resultado`

func scanCheckIn(row interface{ Scan(...any) error }) (model.CheckIn, error) {
	var c model.CheckIn
	var ts int64
	var result string
	if err := row.Scan(&c.ID, &ts, &c.Energy, &c.Sensory, &c.Social, &c.Ambiguity, &c.Anger, &result); err != nil {
		return model.CheckIn{}, err
	}
	c.Timestamp = fromMillis(ts)
	c.Result = model.Semaphore(result)
	return c, nil
}

func (s *SQLiteStore) LatestCheckIn(ctx context.Context) (*model.CheckIn, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+checkInColumns+` FROM checkins ORDER BY timestamp DESC, id DESC LIMIT 1`)
	c, err := scanCheckIn(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest check-in: %w", err)
	}
	return &c, nil
}

func (s *SQLiteStore) CheckIns(ctx context.Context, from, to time.Time, limit int) ([]model.CheckIn, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+checkInColumns+` FROM checkins
		 WHERE timestamp >= ? AND timestamp <= ? ORDER BY timestamp DESC LIMIT ?`,
		millis(from), millis(to), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query check-ins: %w", err)
	}
	defer rows.Close()

	var out []model.CheckIn
	for rows.Next() {
		c, err := scanCheckIn(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check-in row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CheckInStats(ctx context.Context, from, to time.Time) (model.CheckInStats, error) {
	var st model.CheckInStats
	var avgE, avgS, avgSo, avgA sql.NullFloat64
	var cGreen, cYellow, cRed sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(AVG(energia_fisica), 0),
		        COALESCE(AVG(carga_sensorial), 0),
		        COALESCE(AVG(carga_social), 0),
		        COALESCE(AVG(ambiguedad), 0),
		        SUM(CASE WHEN semaforo_resultado = 'VERDE' THEN 1 ELSE 0 END),
		        SUM(CASE WHEN semaforo_resultado = 'AMARILLO' THEN 1 ELSE 0 END),
		        SUM(CASE WHEN semaforo_resultado = 'ROJO' THEN 1 ELSE 0 END)
		 FROM checkins WHERE timestamp >= ? AND timestamp <= ?`,
		millis(from), millis(to)).
		Scan(&st.Total, &avgE, &avgS, &avgSo, &avgA, &cGreen, &cYellow, &cRed)
	if err != nil {
		return model.CheckInStats{}, fmt.Errorf("failed to compute check-in stats: %w", err)
	}

	round1 := func(v float64) float64 { return float64(int(v*10+0.5)) / 10 }
	st.AvgEnergy = round1(avgE.Float64)
	st.AvgSensory = round1(avgS.Float64)
	st.AvgSocial = round1(avgSo.Float64)
	st.AvgAmbiguity = round1(avgA.Float64)
	st.CountGreen = int(cGreen.Int64)
	st.CountYellow = int(cYellow.Int64)
	st.CountRed = int(cRed.Int64)
	return st, nil
}

func (s *SQLiteStore) PruneCheckIns(ctx context.Context, keepLast int) error {
	if keepLast <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM checkins WHERE id NOT IN (
		   SELECT id FROM checkins ORDER BY timestamp DESC LIMIT ?)`, keepLast)
	if err != nil {
		return fmt.Errorf("failed to prune check-ins: %w", err)
	}
	return nil
}

// --- Focus sessions ---

func (s *SQLiteStore) CreateFocusSession(ctx context.Context, f model.FocusSession) (int64, error) {
	var label sql.NullString
	if f.Label != "" {
		label = sql.NullString{String: f.Label, Valid: true}
	}
	var linked sql.NullInt64
	if f.LinkedTaskID != nil {
		linked = sql.NullInt64{Int64: *f.LinkedTaskID, Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO focus_sessions (start_ts, label, linked_task_id, break_minutes, bedtime_minutes)
		 VALUES (?, ?, ?, ?, ?)`,
		millis(f.StartTS), label, linked, f.BreakMinutes, f.BedtimeMinutes)
	if err != nil {
		return 0, fmt.Errorf("failed to insert focus session: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) CloseFocusSession(ctx context.Context, id int64, end time.Time, reason model.EndReason, overMinutes int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE focus_sessions SET end_ts = ?, ended_reason = ?, over_bedtime_minutes = ? WHERE id = ?`,
		millis(end), string(reason), overMinutes, id)
	if err != nil {
		return fmt.Errorf("failed to close focus session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("focus session %d not found", id)
	}
	return nil
}

const focusColumns = `id, start_ts, end_ts, label, linked_task_id, break_minutes, bedtime_minutes, ended_reason, over_bedtime_minutes`

func scanFocusSession(row interface{ Scan(...any) error }) (model.FocusSession, error) {
	var f model.FocusSession
	var startMs int64
	var endMs, linked, over sql.NullInt64
	var label, reason sql.NullString
	if err := row.Scan(&f.ID, &startMs, &endMs, &label, &linked, &f.BreakMinutes, &f.BedtimeMinutes, &reason, &over); err != nil {
		return model.FocusSession{}, err
	}
	f.StartTS = fromMillis(startMs)
	if endMs.Valid {
		end := fromMillis(endMs.Int64)
		f.EndTS = &end
	}
	f.Label = label.String
	if linked.Valid {
		id := linked.Int64
		f.LinkedTaskID = &id
	}
	f.EndedReason = model.EndReason(reason.String)
	f.OverBedtimeMins = int(over.Int64)
	return f, nil
}

func (s *SQLiteStore) ActiveFocusSession(ctx context.Context) (*model.FocusSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+focusColumns+` FROM focus_sessions WHERE end_ts IS NULL ORDER BY start_ts DESC LIMIT 1`)
	f, err := scanFocusSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load active focus session: %w", err)
	}
	return &f, nil
}

func (s *SQLiteStore) FocusSessionHistory(ctx context.Context, limit int) ([]model.FocusSession, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+focusColumns+` FROM focus_sessions WHERE end_ts IS NOT NULL ORDER BY start_ts DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query focus sessions: %w", err)
	}
	defer rows.Close()

	var out []model.FocusSession
	for rows.Next() {
		f, err := scanFocusSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan focus session row: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// --- Tasks ---

func (s *SQLiteStore) SaveTask(ctx context.Context, t model.Task) (int64, error) {
	state := t.State
	if state == "" {
		state = model.TaskPending
	}
	tech := 0
	if t.NeedsTechnique {
		tech = 1
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (titulo, definicion_done, donde_empieza, primer_paso, requiere_tecnica, tiempo_min, estado, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Title, t.DoneDefinition, t.StartsAt, t.FirstStep, tech, t.MinutesBudget, state, millis(t.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("failed to insert task: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) UpdateTaskState(ctx context.Context, id int64, state string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE tasks SET estado = ? WHERE id = ?`, state, id)
	if err != nil {
		return fmt.Errorf("failed to update task state: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CompleteTask(ctx context.Context, id int64, minutesSpent int, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET estado = ?, tiempo_dedicado = ?, completed_at = ? WHERE id = ?`,
		model.TaskDone, minutesSpent, millis(at), id)
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Tasks(ctx context.Context, limit int) ([]model.Task, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, titulo, definicion_done, donde_empieza, primer_paso, requiere_tecnica, tiempo_min, estado, created_at, tiempo_dedicado, completed_at
		 FROM tasks ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var out []model.Task
	for rows.Next() {
		var t model.Task
		var tech int
		var createdMs int64
		var spent, completedMs sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Title, &t.DoneDefinition, &t.StartsAt, &t.FirstStep, &tech, &t.MinutesBudget, &t.State, &createdMs, &spent, &completedMs); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		t.NeedsTechnique = tech != 0
		t.CreatedAt = fromMillis(createdMs)
		if spent.Valid {
			m := int(spent.Int64)
			t.MinutesSpent = &m
		}
		if completedMs.Valid {
			c := fromMillis(completedMs.Int64)
			t.CompletedAt = &c
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// --- Social logs ---

func (s *SQLiteStore) SaveSocialLog(ctx context.Context, l model.SocialLog) (int64, error) {
	var dur, risk sql.NullString
	if l.Duration != "" {
		dur = sql.NullString{String: l.Duration, Valid: true}
	}
	if l.SensoryRisk != "" {
		risk = sql.NullString{String: l.SensoryRisk, Valid: true}
	}
	earplugs := 0
	if l.Earplugs {
		earplugs = 1
	}
	var socialCost, sensoryCost sql.NullInt64
	if l.SocialCost != nil {
		socialCost = sql.NullInt64{Int64: int64(*l.SocialCost), Valid: true}
	}
	if l.SensoryCost != nil {
		sensoryCost = sql.NullInt64{Int64: int64(*l.SensoryCost), Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO social_logs (timestamp, fase, duracion, riesgo_sensorial, llevar_tapones, costo_social, costo_sensorial)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		millis(l.Timestamp), string(l.Phase), dur, risk, earplugs, socialCost, sensoryCost)
	if err != nil {
		return 0, fmt.Errorf("failed to insert social log: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) SocialLogs(ctx context.Context, limit int) ([]model.SocialLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, fase, duracion, riesgo_sensorial, llevar_tapones, costo_social, costo_sensorial
		 FROM social_logs ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query social logs: %w", err)
	}
	defer rows.Close()

	var out []model.SocialLog
	for rows.Next() {
		var l model.SocialLog
		var ts int64
		var phase string
		var dur, risk sql.NullString
		var earplugs, socialCost, sensoryCost sql.NullInt64
		if err := rows.Scan(&l.ID, &ts, &phase, &dur, &risk, &earplugs, &socialCost, &sensoryCost); err != nil {
			return nil, fmt.Errorf("failed to scan social log row: %w", err)
		}
		l.Timestamp = fromMillis(ts)
		l.Phase = model.SocialPhase(phase)
		l.Duration = dur.String
		l.SensoryRisk = risk.String
		l.Earplugs = earplugs.Int64 != 0
		if socialCost.Valid {
			c := int(socialCost.Int64)
			l.SocialCost = &c
		}
		if sensoryCost.Valid {
			c := int(sensoryCost.Int64)
			l.SensoryCost = &c
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// --- Protocols and partner templates ---

func (s *SQLiteStore) Protocols(ctx context.Context) ([]model.Protocol, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, nombre, pasos_json, timers_json, orden FROM protocols ORDER BY orden`)
	if err != nil {
		return nil, fmt.Errorf("failed to query protocols: %w", err)
	}
	defer rows.Close()

	var out []model.Protocol
	for rows.Next() {
		var p model.Protocol
		var stepsJSON, timersJSON string
		if err := rows.Scan(&p.ID, &p.Name, &stepsJSON, &timersJSON, &p.Order); err != nil {
			return nil, fmt.Errorf("failed to scan protocol row: %w", err)
		}
		if err := json.Unmarshal([]byte(stepsJSON), &p.Steps); err != nil {
			return nil, fmt.Errorf("failed to decode protocol steps: %w", err)
		}
		if err := json.Unmarshal([]byte(timersJSON), &p.Timers); err != nil {
			return nil, fmt.Errorf("failed to decode protocol timers: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateProtocolSteps(ctx context.Context, id int64, steps []string) error {
	encoded, err := json.Marshal(steps)
	if err != nil {
		return fmt.Errorf("failed to encode protocol steps: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `UPDATE protocols SET pasos_json = ? WHERE id = ?`, string(encoded), id)
	if err != nil {
		return fmt.Errorf("failed to update protocol steps: %w", err)
	}
	return nil
}

func (s *SQLiteStore) PartnerTemplates(ctx context.Context) ([]model.PartnerTemplate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tipo, texto, orden FROM partner_templates ORDER BY tipo, orden`)
	if err != nil {
		return nil, fmt.Errorf("failed to query partner templates: %w", err)
	}
	defer rows.Close()

	var out []model.PartnerTemplate
	for rows.Next() {
		var t model.PartnerTemplate
		if err := rows.Scan(&t.ID, &t.Kind, &t.Text, &t.Order); err != nil {
			return nil, fmt.Errorf("failed to scan partner template row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdatePartnerTemplate(ctx context.Context, id int64, text string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE partner_templates SET texto = ? WHERE id = ?`, text, id)
	if err != nil {
		return fmt.Errorf("failed to update partner template: %w", err)
	}
	return nil
}

// --- Settings ---

func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write setting %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		log.Println("Closing database connection.")
		return s.db.Close()
	}
	return nil
}

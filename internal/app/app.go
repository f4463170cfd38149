package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"brujula/internal/config"
	"brujula/internal/guardian"
	"brujula/internal/ipc"
	"brujula/internal/model"
	"brujula/internal/notify"
	"brujula/internal/semaphore"
	"brujula/internal/storage"

	sqlitestore "brujula/internal/storage/sqlite"
)

type App struct {
	cfg      *config.Config
	storage  storage.Storage
	guardian *guardian.Manager
	sched    *notify.TimerScheduler

	// --- Socket Handling ---
	socketPath string
	listener   *net.UnixListener

	deliveryChan chan notify.Delivery

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewApp(cfg *config.Config) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		cfg:          cfg,
		socketPath:   cfg.SocketPath,
		deliveryChan: make(chan notify.Delivery, 50),
		ctx:          ctx,
		cancel:       cancel,
	}
	if a.socketPath == "" {
		a.socketPath = ipc.DefaultSocketPath
	}

	// Initialize Storage
	a.storage = sqlitestore.NewSQLiteStore(cfg.DatabasePath)
	if err := a.storage.Init(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Scheduler pushes deliveries into the main loop instead of logging
	// directly from timer goroutines.
	a.sched = notify.NewTimerScheduler(func(d notify.Delivery) {
		select {
		case a.deliveryChan <- d:
		default:
			log.Printf("Warning: dropped notification delivery %s", d.ID)
		}
	})

	a.guardian = guardian.NewManager(a.storage, a.sched, nil)

	return a, nil
}

// setupSocket checks for existing socket and creates the listener
func (a *App) setupSocket() error {
	// Check if socket file exists and try connecting
	if _, err := os.Stat(a.socketPath); err == nil {
		// Socket file exists, try to connect
		conn, err := net.DialTimeout("unix", a.socketPath, 1*time.Second)
		if err == nil {
			// Connection successful - another instance is likely running
			conn.Close()
			return fmt.Errorf("socket %s already active, another instance might be running", a.socketPath)
		}
		// Connection failed - socket file is stale, remove it
		log.Printf("Stale socket file found at %s, removing.", a.socketPath)
		if err := os.Remove(a.socketPath); err != nil {
			return fmt.Errorf("failed to remove stale socket file %s: %w", a.socketPath, err)
		}
	} else if !os.IsNotExist(err) {
		// Other error stating the file (permission denied?)
		return fmt.Errorf("error checking socket file %s: %w", a.socketPath, err)
	}

	// Resolve the address
	addr, err := net.ResolveUnixAddr("unix", a.socketPath)
	if err != nil {
		return fmt.Errorf("failed to resolve unix addr %s: %w", a.socketPath, err)
	}

	// Listen on the socket
	listener, err := net.ListenUnix("unix", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on socket %s: %w", a.socketPath, err)
	}

	a.listener = listener
	log.Printf("Listening for commands on %s", a.socketPath)
	return nil
}

// listenForCommands accepts connections and handles them
func (a *App) listenForCommands() {
	defer a.wg.Done()
	defer log.Println("Socket command listener stopped.")

	if a.listener == nil {
		log.Println("Error: Socket listener not initialized.")
		return
	}

	for {
		conn, err := a.listener.AcceptUnix()
		if err != nil {
			// Check if the error is due to the listener being closed
			select {
			case <-a.ctx.Done():
				log.Println("Listener closing due to context cancellation.")
				return // Expected error on shutdown
			default:
				log.Printf("Failed to accept connection: %v", err)
				// Avoid tight loop on persistent error
				if ne, ok := err.(net.Error); ok && !ne.Temporary() {
					log.Printf("Non-temporary accept error, stopping listener.")
					return
				}
				time.Sleep(100 * time.Millisecond) // Small delay before retrying
			}
			continue
		}
		// Handle each connection in a new goroutine
		a.wg.Add(1)
		go a.handleConnection(conn)
	}
}

// handleConnection reads command, processes it, and sends response
func (a *App) handleConnection(conn *net.UnixConn) {
	defer conn.Close()
	defer a.wg.Done()

	// Set a deadline for reading the command
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	decoder := json.NewDecoder(conn)
	encoder := json.NewEncoder(conn)

	var cmd ipc.Command
	if err := decoder.Decode(&cmd); err != nil {
		if err != io.EOF {
			log.Printf("Failed to decode command: %v", err)
		}
		// Send error response even if decoding failed partially
		_ = encoder.Encode(ipc.Response{Success: false, Message: "Failed to decode command: " + err.Error()})
		return
	}

	// Reset read deadline
	conn.SetReadDeadline(time.Time{})
	// Set write deadline for response
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	log.Printf("Received command: %s", cmd.Name)

	// Process command
	response := a.processCommand(cmd)

	// Send response
	if err := encoder.Encode(response); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// processCommand routes the command to the correct handler
func (a *App) processCommand(cmd ipc.Command) ipc.Response {
	switch cmd.Name {
	case ipc.CmdPing:
		return ipc.Response{Success: true, Message: "pong"}

	case ipc.CmdCheckIn:
		var args ipc.CheckInArgs
		if err := mapToStruct(cmd.Args, &args); err != nil {
			return ipc.Response{Success: false, Message: fmt.Sprintf("Invalid args for %s: %v", cmd.Name, err)}
		}
		return a.handleCheckIn(args)

	case ipc.CmdCheckInLast:
		latest, err := a.storage.LatestCheckIn(a.ctx)
		if err != nil {
			return ipc.Response{Success: false, Message: err.Error()}
		}
		if latest == nil {
			return ipc.Response{Success: true, Message: "No check-ins recorded yet"}
		}
		return ipc.Response{Success: true, Data: latest}

	case ipc.CmdFocusStart:
		var args ipc.FocusStartArgs
		if err := mapToStruct(cmd.Args, &args); err != nil {
			return ipc.Response{Success: false, Message: fmt.Sprintf("Invalid args for %s: %v", cmd.Name, err)}
		}
		return a.handleFocusStart(args)

	case ipc.CmdFocusStop:
		var args ipc.FocusStopArgs
		if err := mapToStruct(cmd.Args, &args); err != nil {
			return ipc.Response{Success: false, Message: fmt.Sprintf("Invalid args for %s: %v", cmd.Name, err)}
		}
		return a.handleFocusStop(args)

	case ipc.CmdFocusExtend:
		var args ipc.FocusExtendArgs
		if err := mapToStruct(cmd.Args, &args); err != nil {
			return ipc.Response{Success: false, Message: fmt.Sprintf("Invalid args for %s: %v", cmd.Name, err)}
		}
		if err := a.guardian.Extend(args.ExtraMinutes); err != nil {
			if errors.Is(err, guardian.ErrNoActiveSession) {
				return ipc.Response{Success: false, Message: "No active focus session"}
			}
			return ipc.Response{Success: false, Message: err.Error()}
		}
		return ipc.Response{Success: true, Message: fmt.Sprintf("Next break pushed out %d minutes", args.ExtraMinutes)}

	case ipc.CmdFocusStatus:
		return a.handleFocusStatus()

	case ipc.CmdSocialAdd:
		var args ipc.SocialAddArgs
		if err := mapToStruct(cmd.Args, &args); err != nil {
			return ipc.Response{Success: false, Message: fmt.Sprintf("Invalid args for %s: %v", cmd.Name, err)}
		}
		return a.handleSocialAdd(args)

	case ipc.CmdSocialList:
		logs, err := a.storage.SocialLogs(a.ctx, 20)
		if err != nil {
			return ipc.Response{Success: false, Message: err.Error()}
		}
		return ipc.Response{Success: true, Data: logs}

	case ipc.CmdTaskAdd:
		var args ipc.TaskAddArgs
		if err := mapToStruct(cmd.Args, &args); err != nil {
			return ipc.Response{Success: false, Message: fmt.Sprintf("Invalid args for %s: %v", cmd.Name, err)}
		}
		return a.handleTaskAdd(args)

	case ipc.CmdTaskStart:
		var args ipc.TaskStartArgs
		if err := mapToStruct(cmd.Args, &args); err != nil {
			return ipc.Response{Success: false, Message: fmt.Sprintf("Invalid args for %s: %v", cmd.Name, err)}
		}
		if args.ID <= 0 {
			return ipc.Response{Success: false, Message: "Task id required"}
		}
		if err := a.storage.UpdateTaskState(a.ctx, args.ID, model.TaskInProgress); err != nil {
			return ipc.Response{Success: false, Message: err.Error()}
		}
		return ipc.Response{Success: true, Message: fmt.Sprintf("Task %d in progress", args.ID)}

	case ipc.CmdTaskDone:
		var args ipc.TaskDoneArgs
		if err := mapToStruct(cmd.Args, &args); err != nil {
			return ipc.Response{Success: false, Message: fmt.Sprintf("Invalid args for %s: %v", cmd.Name, err)}
		}
		if args.ID <= 0 {
			return ipc.Response{Success: false, Message: "Task id required"}
		}
		if err := a.storage.CompleteTask(a.ctx, args.ID, args.MinutesSpent, time.Now()); err != nil {
			return ipc.Response{Success: false, Message: err.Error()}
		}
		return ipc.Response{Success: true, Message: fmt.Sprintf("Task %d marked done", args.ID)}

	case ipc.CmdTaskList:
		tasks, err := a.storage.Tasks(a.ctx, 20)
		if err != nil {
			return ipc.Response{Success: false, Message: err.Error()}
		}
		return ipc.Response{Success: true, Data: tasks}

	case ipc.CmdProtocolList:
		protocols, err := a.storage.Protocols(a.ctx)
		if err != nil {
			return ipc.Response{Success: false, Message: err.Error()}
		}
		return ipc.Response{Success: true, Data: protocols}

	case ipc.CmdProtocolEdit:
		var args ipc.ProtocolEditArgs
		if err := mapToStruct(cmd.Args, &args); err != nil {
			return ipc.Response{Success: false, Message: fmt.Sprintf("Invalid args for %s: %v", cmd.Name, err)}
		}
		if args.ID <= 0 {
			return ipc.Response{Success: false, Message: "Protocol id required"}
		}
		if len(args.Steps) == 0 {
			return ipc.Response{Success: false, Message: "Protocol needs at least one step"}
		}
		if err := a.storage.UpdateProtocolSteps(a.ctx, args.ID, args.Steps); err != nil {
			return ipc.Response{Success: false, Message: err.Error()}
		}
		return ipc.Response{Success: true, Message: fmt.Sprintf("Protocol %d updated (%d steps)", args.ID, len(args.Steps))}

	case ipc.CmdTemplateList:
		templates, err := a.storage.PartnerTemplates(a.ctx)
		if err != nil {
			return ipc.Response{Success: false, Message: err.Error()}
		}
		return ipc.Response{Success: true, Data: templates}

	case ipc.CmdStats:
		var args ipc.StatsArgs
		if err := mapToStruct(cmd.Args, &args); err != nil {
			return ipc.Response{Success: false, Message: fmt.Sprintf("Invalid args for %s: %v", cmd.Name, err)}
		}
		return a.handleStats(args)

	case ipc.CmdSetSetting:
		var args ipc.SetSettingArgs
		if err := mapToStruct(cmd.Args, &args); err != nil {
			return ipc.Response{Success: false, Message: fmt.Sprintf("Invalid args for %s: %v", cmd.Name, err)}
		}
		if args.Key == "" {
			return ipc.Response{Success: false, Message: "Setting key cannot be empty"}
		}
		if err := a.storage.SetSetting(a.ctx, args.Key, args.Value); err != nil {
			return ipc.Response{Success: false, Message: err.Error()}
		}
		return ipc.Response{Success: true, Message: fmt.Sprintf("Setting %s updated", args.Key)}

	default:
		return ipc.Response{Success: false, Message: fmt.Sprintf("Unknown command: %s", cmd.Name)}
	}
}

func (a *App) handleCheckIn(args ipc.CheckInArgs) ipc.Response {
	c := model.CheckIn{
		Timestamp: time.Now(),
		Energy:    semaphore.Clamp(args.Energy),
		Sensory:   semaphore.Clamp(args.Sensory),
		Social:    semaphore.Clamp(args.Social),
		Ambiguity: semaphore.Clamp(args.Ambiguity),
		Anger:     semaphore.Clamp(args.Anger),
	}
	c.Result = semaphore.EvaluateCheckIn(c)

	id, err := a.storage.SaveCheckIn(a.ctx, c)
	if err != nil {
		return ipc.Response{Success: false, Message: err.Error()}
	}

	if keep := a.checkInKeepLast(); keep > 0 {
		if err := a.storage.PruneCheckIns(a.ctx, keep); err != nil {
			log.Printf("Warning: pruning check-ins failed: %v", err)
		}
	}

	return ipc.Response{Success: true, Data: ipc.CheckInData{
		ID:     id,
		Result: string(c.Result),
		Advice: semaphore.Advice(c.Result),
	}}
}

func (a *App) handleFocusStart(args ipc.FocusStartArgs) ipc.Response {
	breakMin, bedtimeMin := a.guardianDefaults()
	if args.BreakMinutes > 0 {
		breakMin = args.BreakMinutes
	}
	if args.HasBedtime {
		bedtimeMin = args.BedtimeMinutes
	}

	p := guardian.StartParams{
		BreakMinutes:   breakMin,
		BedtimeMinutes: bedtimeMin,
		Label:          args.Label,
	}
	if args.LinkedTaskID > 0 {
		id := args.LinkedTaskID
		p.LinkedTaskID = &id
	}

	sess, err := a.guardian.Start(a.ctx, p)
	if err != nil {
		if errors.Is(err, guardian.ErrSessionActive) {
			return ipc.Response{Success: false, Message: "A focus session is already active; stop it first"}
		}
		return ipc.Response{Success: false, Message: err.Error()}
	}
	log.Printf("Focus session %d started (break every %dm, bedtime at %02d:%02d)",
		sess.ID, sess.BreakMinutes, sess.BedtimeMinutes/60, sess.BedtimeMinutes%60)
	return ipc.Response{Success: true, Message: fmt.Sprintf("Focus session %d started", sess.ID), Data: sess}
}

func (a *App) handleFocusStop(args ipc.FocusStopArgs) ipc.Response {
	reason := model.EndReason(args.Reason)
	if reason == "" {
		reason = model.EndReasonClosure
	}
	if reason != model.EndReasonClosure && reason != model.EndReasonSleep {
		return ipc.Response{Success: false, Message: fmt.Sprintf("Invalid end reason %q", args.Reason)}
	}

	sess, err := a.guardian.Close(a.ctx, reason)
	if err != nil {
		if errors.Is(err, guardian.ErrNoActiveSession) {
			return ipc.Response{Success: false, Message: "No active focus session"}
		}
		return ipc.Response{Success: false, Message: err.Error()}
	}

	msg := fmt.Sprintf("Focus session %d closed (%s)", sess.ID, reason)
	if sess.OverBedtimeMins > 0 {
		msg += fmt.Sprintf(", %d minutes past bedtime", sess.OverBedtimeMins)
	}
	log.Println(msg)
	return ipc.Response{Success: true, Message: msg, Data: sess}
}

func (a *App) handleFocusStatus() ipc.Response {
	snap, ok := a.guardian.Snapshot()
	if !ok {
		return ipc.Response{Success: true, Data: ipc.FocusStatusData{Active: false}}
	}

	data := ipc.FocusStatusData{
		Active:           true,
		SessionID:        snap.SessionID,
		ElapsedSeconds:   snap.ElapsedSeconds,
		NextBreakSeconds: snap.NextBreakSeconds,
		IsOvertime:       snap.IsOvertime,
		OverMinutes:      snap.OverMinutes,
	}
	if sess, err := a.storage.ActiveFocusSession(a.ctx); err == nil && sess != nil {
		data.Label = sess.Label
		data.BedtimeMinutes = sess.BedtimeMinutes
	}
	return ipc.Response{Success: true, Data: data}
}

func (a *App) handleSocialAdd(args ipc.SocialAddArgs) ipc.Response {
	phase := model.SocialPhase(args.Phase)
	if phase != model.SocialBefore && phase != model.SocialAfter {
		return ipc.Response{Success: false, Message: fmt.Sprintf("Invalid social phase %q", args.Phase)}
	}

	l := model.SocialLog{
		Timestamp:   time.Now(),
		Phase:       phase,
		Duration:    args.Duration,
		SensoryRisk: args.SensoryRisk,
		Earplugs:    args.Earplugs,
	}
	if args.SocialCost != nil {
		c := semaphore.Clamp(*args.SocialCost)
		l.SocialCost = &c
	}
	if args.SensoryCost != nil {
		c := semaphore.Clamp(*args.SensoryCost)
		l.SensoryCost = &c
	}

	id, err := a.storage.SaveSocialLog(a.ctx, l)
	if err != nil {
		return ipc.Response{Success: false, Message: err.Error()}
	}

	msg := fmt.Sprintf("Social log %d saved (%s)", id, phase)
	// High post-event cost routes the user to a discharge protocol.
	if phase == model.SocialAfter && (costAtLeast(l.SocialCost, 7) || costAtLeast(l.SensoryCost, 7)) {
		msg += ". Costo alto: activa el protocolo de descarga (brujula-cli protocol list)"
	}
	return ipc.Response{Success: true, Message: msg}
}

func costAtLeast(v *int, threshold int) bool {
	return v != nil && *v >= threshold
}

func (a *App) handleTaskAdd(args ipc.TaskAddArgs) ipc.Response {
	if args.Title == "" {
		return ipc.Response{Success: false, Message: "Task title cannot be empty"}
	}
	if args.FirstStep == "" {
		return ipc.Response{Success: false, Message: "Task first step cannot be empty"}
	}
	budget := args.MinutesBudget
	if budget <= 0 {
		budget = 2
	}
	id, err := a.storage.SaveTask(a.ctx, model.Task{
		Title:          args.Title,
		DoneDefinition: args.DoneDefinition,
		StartsAt:       args.StartsAt,
		FirstStep:      args.FirstStep,
		NeedsTechnique: args.NeedsTechnique,
		MinutesBudget:  budget,
		State:          model.TaskPending,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		return ipc.Response{Success: false, Message: err.Error()}
	}
	return ipc.Response{Success: true, Message: fmt.Sprintf("Task %d created", id)}
}

func (a *App) handleStats(args ipc.StatsArgs) ipc.Response {
	days := args.Days
	if days <= 0 {
		days = 7
	}
	to := time.Now()
	from := to.AddDate(0, 0, -days)

	checkins, err := a.storage.CheckInStats(a.ctx, from, to)
	if err != nil {
		return ipc.Response{Success: false, Message: err.Error()}
	}
	sessions, err := a.storage.FocusSessionHistory(a.ctx, 20)
	if err != nil {
		return ipc.Response{Success: false, Message: err.Error()}
	}
	return ipc.Response{Success: true, Data: ipc.StatsData{
		Days:     days,
		CheckIns: checkins,
		Sessions: sessions,
	}}
}

// guardianDefaults resolves break/bedtime defaults: the settings table wins,
// the config file backs it.
func (a *App) guardianDefaults() (breakMin, bedtimeMin int) {
	breakMin = a.cfg.Guardian.BreakMinutes
	bedtimeMin = a.cfg.Guardian.BedtimeMinutes

	if v, ok, err := a.storage.GetSetting(a.ctx, model.SettingBreakMinutes); err == nil && ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			breakMin = n
		}
	}
	if v, ok, err := a.storage.GetSetting(a.ctx, model.SettingBedtimeMinutes); err == nil && ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 1439 {
			bedtimeMin = n
		}
	}
	return breakMin, bedtimeMin
}

func (a *App) checkInKeepLast() int {
	keep := a.cfg.CheckInKeepLast
	if v, ok, err := a.storage.GetSetting(a.ctx, model.SettingCheckInKeep); err == nil && ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			keep = n
		}
	}
	return keep
}

// Helper function to convert map[string]interface{} (from json unmarshal) to struct
func mapToStruct(input interface{}, output interface{}) error {
	if input == nil {
		return nil // No args provided, might be okay for some commands
	}
	// Convert map to JSON bytes
	jsonBytes, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal args map: %w", err)
	}
	// Unmarshal JSON bytes into the target struct
	if err := json.Unmarshal(jsonBytes, output); err != nil {
		return fmt.Errorf("failed to unmarshal args into struct: %w", err)
	}
	return nil
}

func (a *App) Run() error {
	defer a.cleanup() // Ensure cleanup runs

	log.Println("Starting Brujula Application (Daemon Mode)...")
	log.Printf("Config: %+v", a.cfg)

	// --- Setup Socket ---
	if err := a.setupSocket(); err != nil {
		log.Fatalf("Failed to set up socket: %v", err)
		// No need to return error here, log.Fatalf exits
	}

	// Start signal handling
	a.handleSignals()

	// Reattach to a focus session left open by a previous run.
	if sess, err := a.guardian.Resume(a.ctx); err == nil {
		log.Printf("Resumed focus session %d (started %s)", sess.ID, sess.StartTS.Format(time.RFC3339))
	} else if !errors.Is(err, guardian.ErrNoActiveSession) {
		log.Printf("Warning: resuming focus session failed: %v", err)
	}

	// Start main application loop (guardian ticks + notification deliveries)
	a.wg.Add(1)
	go a.mainLoop()

	// --- Start Socket Listener ---
	a.wg.Add(1)
	go a.listenForCommands()

	log.Println("Brujula daemon running. Send commands via brujula-cli or socket.")
	<-a.ctx.Done() // Block here until context is cancelled

	log.Println("Shutdown signal received, waiting for components...")

	// Close the listener *before* waiting for goroutines to allow accept() to return
	if a.listener != nil {
		log.Println("Closing command socket listener...")
		if err := a.listener.Close(); err != nil {
			log.Printf("Error closing socket listener: %v", err)
		}
	}

	waitChan := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(waitChan)
	}()

	select {
	case <-waitChan:
		log.Println("All application goroutines finished.")
	case <-time.After(5 * time.Second):
		log.Println("Warning: Timeout waiting for application goroutines to stop.")
	}

	log.Println("Brujula Application finished.")
	return nil
}

// mainLoop consumes guardian ticks and notification deliveries
func (a *App) mainLoop() {
	defer a.wg.Done()
	defer log.Println("Main application loop stopped.")

	for {
		select {
		case <-a.ctx.Done():
			return // Exit loop on context cancellation

		case snap := <-a.guardian.Updates():
			// Per-second ticks would flood the log; report once a minute and
			// whenever the session crosses into overtime.
			if snap.ElapsedSeconds%60 == 0 || (snap.IsOvertime && snap.OverMinutes <= 1) {
				log.Printf("Focus session %d: elapsed %s, next break in %s, overtime=%v",
					snap.SessionID,
					formatDuration(time.Duration(snap.ElapsedSeconds)*time.Second),
					formatDuration(time.Duration(snap.NextBreakSeconds)*time.Second),
					snap.IsOvertime)
			}

		case d := <-a.deliveryChan:
			if d.Payload[guardian.PayloadEscalation] != "" {
				log.Printf("Notification (escalation): [%s] %s", d.Title, d.Message)
			} else {
				log.Printf("Notification: [%s] %s", d.Title, d.Message)
			}
			// TODO: forward to desktop notifications via dbus once the daemon
			// grows a session-bus dependency.
		}
	}
}

// handleSignals remains the same
func (a *App) handleSignals() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v. Initiating shutdown...", sig)
		a.cancel() // Trigger context cancellation for graceful shutdown
	}()
}

// cleanup needs to ensure socket removal
func (a *App) cleanup() {
	log.Println("Running cleanup...")

	// Release the guardian ticker; an open session row survives for Resume.
	if a.guardian != nil {
		a.guardian.Stop()
	}
	if a.sched != nil {
		a.sched.Close()
	}

	// Close storage
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			log.Printf("Error closing storage: %v", err)
		}
	}

	// --- Remove Socket File ---
	// Note: Listener is closed in Run() before wg.Wait()
	if _, err := os.Stat(a.socketPath); err == nil {
		log.Printf("Removing socket file: %s", a.socketPath)
		if err := os.Remove(a.socketPath); err != nil {
			log.Printf("Warning: Failed to remove socket file %s: %v", a.socketPath, err)
		}
	}

	log.Println("Cleanup finished.")
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"

	"brujula/internal/ipc"
)

var socketPath string

var rootCmd = &cobra.Command{
	Use:   "brujula-cli",
	Short: "CLI tool to interact with the Brujula daemon",
	Long:  `A command-line interface to send commands (check-ins, focus sessions, social logs) to the running Brujula daemon via its Unix socket.`,
}

// --- Client Helper Functions ---

// queryDaemon sends a command and returns the decoded response.
func queryDaemon(cmd ipc.Command) (ipc.Response, error) {
	conn, err := net.DialTimeout("unix", socketPath, 2*time.Second)
	if err != nil {
		return ipc.Response{}, fmt.Errorf("connecting to daemon socket (%s): %w", socketPath, err)
	}
	defer conn.Close()

	// Set deadlines
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	conn.SetReadDeadline(time.Now().Add(5 * time.Second)) // For response

	encoder := json.NewEncoder(conn)
	decoder := json.NewDecoder(conn)

	if err := encoder.Encode(cmd); err != nil {
		return ipc.Response{}, fmt.Errorf("sending command: %w", err)
	}

	var resp ipc.Response
	if err := decoder.Decode(&resp); err != nil {
		return ipc.Response{}, fmt.Errorf("receiving response: %w", err)
	}
	return resp, nil
}

// sendCommand sends a command, prints the response and exits on failure.
func sendCommand(cmd ipc.Command) {
	resp, err := queryDaemon(cmd)
	if err != nil {
		log.Fatalf("Error: %v\nIs the Brujula daemon running?", err)
	}

	if resp.Success {
		if resp.Message != "" {
			fmt.Println("Success:", resp.Message)
		}
		if resp.Data != nil {
			// Pretty print JSON data if available
			prettyData, err := json.MarshalIndent(resp.Data, "", "  ")
			if err == nil {
				fmt.Println(string(prettyData))
			} else {
				fmt.Println("Data (raw):", resp.Data)
			}
		}
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", resp.Message)
		os.Exit(1) // Exit with error code if command failed server-side
	}
}

// decodeData re-marshals the loosely typed response payload into out.
func decodeData(data interface{}, out interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// parseBedtime converts "HH:MM" into minutes since midnight.
func parseBedtime(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return h*60 + m, nil
}

// --- Command Definitions ---

// Ping Command
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check if the Brujula daemon is running",
	Run: func(cmd *cobra.Command, args []string) {
		sendCommand(ipc.Command{Name: ipc.CmdPing})
	},
}

// Check-in Command Group
var checkinCmd = &cobra.Command{
	Use:   "checkin",
	Short: "Record a self-regulation check-in and get the semaphore verdict",
	Run: func(cmd *cobra.Command, args []string) {
		energy, _ := cmd.Flags().GetInt("energia")
		sensory, _ := cmd.Flags().GetInt("sensorial")
		social, _ := cmd.Flags().GetInt("social")
		ambiguity, _ := cmd.Flags().GetInt("ambiguedad")
		anger, _ := cmd.Flags().GetInt("ira")

		sendCommand(ipc.Command{
			Name: ipc.CmdCheckIn,
			Args: ipc.CheckInArgs{
				Energy:    energy,
				Sensory:   sensory,
				Social:    social,
				Ambiguity: ambiguity,
				Anger:     anger,
			},
		})
	},
}

var checkinLastCmd = &cobra.Command{
	Use:   "last",
	Short: "Show the most recent check-in",
	Run: func(cmd *cobra.Command, args []string) {
		sendCommand(ipc.Command{Name: ipc.CmdCheckInLast})
	},
}

// Focus Command Group
var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Control the hyperfocus guardian",
}

var focusStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a guarded focus session",
	Run: func(cmd *cobra.Command, args []string) {
		label, _ := cmd.Flags().GetString("label")
		taskID, _ := cmd.Flags().GetInt64("task")
		breakMin, _ := cmd.Flags().GetInt("break")
		bedtime, _ := cmd.Flags().GetString("bedtime")

		fsArgs := ipc.FocusStartArgs{
			Label:        label,
			LinkedTaskID: taskID,
			BreakMinutes: breakMin,
		}
		if bedtime != "" {
			minutes, err := parseBedtime(bedtime)
			if err != nil {
				log.Fatalf("Error: %v", err)
			}
			fsArgs.BedtimeMinutes = minutes
			fsArgs.HasBedtime = true
		}
		sendCommand(ipc.Command{Name: ipc.CmdFocusStart, Args: fsArgs})
	},
}

var focusStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Close the active focus session",
	Run: func(cmd *cobra.Command, args []string) {
		reason, _ := cmd.Flags().GetString("reason")
		if reason != "" && reason != "cierre" && reason != "dormir" {
			log.Fatalf("Invalid reason: %s. Use 'cierre' or 'dormir'", reason)
		}
		sendCommand(ipc.Command{Name: ipc.CmdFocusStop, Args: ipc.FocusStopArgs{Reason: reason}})
	},
}

var focusExtendCmd = &cobra.Command{
	Use:   "extend",
	Short: "Push the next break reminder out by N minutes",
	Run: func(cmd *cobra.Command, args []string) {
		minutes, _ := cmd.Flags().GetInt("minutes")
		if minutes <= 0 {
			log.Fatal("Error: --minutes must be positive")
		}
		sendCommand(ipc.Command{Name: ipc.CmdFocusExtend, Args: ipc.FocusExtendArgs{ExtraMinutes: minutes}})
	},
}

var focusStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current focus session status",
	Run: func(cmd *cobra.Command, args []string) {
		watch, _ := cmd.Flags().GetBool("watch")
		if watch {
			runWatch()
			return
		}
		sendCommand(ipc.Command{Name: ipc.CmdFocusStatus})
	},
}

// runWatch renders a live session countdown until 'q' or Esc is pressed.
func runWatch() {
	app := tview.NewApplication()
	view := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	view.SetBorder(true).SetTitle(" Sesión de Foco ")

	app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' {
			app.Stop()
			return nil
		}
		return ev
	})

	refresh := func() string {
		resp, err := queryDaemon(ipc.Command{Name: ipc.CmdFocusStatus})
		if err != nil {
			return fmt.Sprintf("[red]daemon unreachable: %v[-]", err)
		}
		if !resp.Success {
			return fmt.Sprintf("[red]%s[-]", resp.Message)
		}
		var st ipc.FocusStatusData
		if err := decodeData(resp.Data, &st); err != nil {
			return fmt.Sprintf("[red]bad status payload: %v[-]", err)
		}
		return renderStatus(st)
	}

	view.SetText(refresh())

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for range ticker.C {
			text := refresh()
			app.QueueUpdateDraw(func() {
				view.SetText(text)
			})
		}
	}()

	if err := app.SetRoot(view, true).Run(); err != nil {
		log.Fatalf("Error running watch view: %v", err)
	}
}

func renderStatus(st ipc.FocusStatusData) string {
	if !st.Active {
		return "\n[gray]No hay sesión de foco activa.[-]\n\npress q to quit"
	}

	label := st.Label
	if label == "" {
		label = fmt.Sprintf("sesión %d", st.SessionID)
	}

	elapsed := formatClock(st.ElapsedSeconds)
	nextBreak := formatClock(st.NextBreakSeconds)

	body := fmt.Sprintf("\n[::b]%s[-:-:-]\n\nTiempo en foco: [yellow]%s[-]\nPróximo corte:  [green]%s[-]\nHora límite:    %02d:%02d\n",
		label, elapsed, nextBreak, st.BedtimeMinutes/60, st.BedtimeMinutes%60)

	if st.IsOvertime {
		body += fmt.Sprintf("\n[red::b]%d minutos sobre tu hora límite. Cierra y duerme.[-:-:-]\n", st.OverMinutes)
	}
	return body + "\npress q to quit"
}

func formatClock(totalSecs int) string {
	h := totalSecs / 3600
	m := (totalSecs % 3600) / 60
	s := totalSecs % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Social Command Group
var socialCmd = &cobra.Command{
	Use:   "social",
	Short: "Log social event plans and costs",
}

var socialBeforeCmd = &cobra.Command{
	Use:   "before",
	Short: "Log a pre-event plan (duration, sensory risk, earplugs)",
	Run: func(cmd *cobra.Command, args []string) {
		duration, _ := cmd.Flags().GetString("duration")
		risk, _ := cmd.Flags().GetString("risk")
		earplugs, _ := cmd.Flags().GetBool("earplugs")

		sendCommand(ipc.Command{
			Name: ipc.CmdSocialAdd,
			Args: ipc.SocialAddArgs{
				Phase:       "antes",
				Duration:    duration,
				SensoryRisk: risk,
				Earplugs:    earplugs,
			},
		})
	},
}

var socialAfterCmd = &cobra.Command{
	Use:   "after",
	Short: "Log post-event social and sensory cost (0-10)",
	Run: func(cmd *cobra.Command, args []string) {
		socialCost, _ := cmd.Flags().GetInt("social-cost")
		sensoryCost, _ := cmd.Flags().GetInt("sensory-cost")

		sendCommand(ipc.Command{
			Name: ipc.CmdSocialAdd,
			Args: ipc.SocialAddArgs{
				Phase:       "despues",
				SocialCost:  &socialCost,
				SensoryCost: &sensoryCost,
			},
		})
	},
}

var socialListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show recent social logs",
	Run: func(cmd *cobra.Command, args []string) {
		sendCommand(ipc.Command{Name: ipc.CmdSocialList})
	},
}

// Task Command Group
var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage starter-wizard tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a task with its 30-second first step",
	Run: func(cmd *cobra.Command, args []string) {
		title, _ := cmd.Flags().GetString("title")
		doneDef, _ := cmd.Flags().GetString("done")
		startsAt, _ := cmd.Flags().GetString("starts-at")
		firstStep, _ := cmd.Flags().GetString("first-step")
		technique, _ := cmd.Flags().GetBool("technique")
		budget, _ := cmd.Flags().GetInt("minutes")

		sendCommand(ipc.Command{
			Name: ipc.CmdTaskAdd,
			Args: ipc.TaskAddArgs{
				Title:          title,
				DoneDefinition: doneDef,
				StartsAt:       startsAt,
				FirstStep:      firstStep,
				NeedsTechnique: technique,
				MinutesBudget:  budget,
			},
		})
	},
}

var taskStartCmd = &cobra.Command{
	Use:   "start [id]",
	Short: "Mark a task as in progress",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var id int64
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil || id <= 0 {
			log.Fatalf("Invalid task id: %s", args[0])
		}
		sendCommand(ipc.Command{Name: ipc.CmdTaskStart, Args: ipc.TaskStartArgs{ID: id}})
	},
}

var taskDoneCmd = &cobra.Command{
	Use:   "done [id]",
	Short: "Mark a task as done",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var id int64
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil || id <= 0 {
			log.Fatalf("Invalid task id: %s", args[0])
		}
		spent, _ := cmd.Flags().GetInt("minutes")
		sendCommand(ipc.Command{Name: ipc.CmdTaskDone, Args: ipc.TaskDoneArgs{ID: id, MinutesSpent: spent}})
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show recent tasks",
	Run: func(cmd *cobra.Command, args []string) {
		sendCommand(ipc.Command{Name: ipc.CmdTaskList})
	},
}

// Protocol / Template Commands
var protocolCmd = &cobra.Command{
	Use:   "protocol",
	Short: "Discharge protocols",
}

var protocolListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the discharge protocols and their steps",
	Run: func(cmd *cobra.Command, args []string) {
		sendCommand(ipc.Command{Name: ipc.CmdProtocolList})
	},
}

var protocolEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Replace a protocol's steps (repeat --step per line)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var id int64
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil || id <= 0 {
			log.Fatalf("Invalid protocol id: %s", args[0])
		}
		steps, _ := cmd.Flags().GetStringArray("step")
		if len(steps) == 0 {
			log.Fatal("Error: at least one --step is required")
		}
		sendCommand(ipc.Command{Name: ipc.CmdProtocolEdit, Args: ipc.ProtocolEditArgs{ID: id, Steps: steps}})
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Show partner support requests and actions",
	Run: func(cmd *cobra.Command, args []string) {
		sendCommand(ipc.Command{Name: ipc.CmdTemplateList})
	},
}

// Stats Command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize check-ins and focus sessions over the past days",
	Run: func(cmd *cobra.Command, args []string) {
		days, _ := cmd.Flags().GetInt("days")
		sendCommand(ipc.Command{Name: ipc.CmdStats, Args: ipc.StatsArgs{Days: days}})
	},
}

// Settings Command
var setCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Update a daemon setting (e.g. foco_break_minutes 30)",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		sendCommand(ipc.Command{Name: ipc.CmdSetSetting, Args: ipc.SetSettingArgs{Key: args[0], Value: args[1]}})
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", ipc.DefaultSocketPath, "Path to the Brujula daemon socket")

	// --- Check-in Commands ---
	checkinCmd.Flags().IntP("energia", "e", 5, "Physical energy (0-10)")
	checkinCmd.Flags().IntP("sensorial", "s", 0, "Sensory load (0-10)")
	checkinCmd.Flags().IntP("social", "o", 0, "Social load (0-10)")
	checkinCmd.Flags().IntP("ambiguedad", "a", 0, "Ambiguity (0-10)")
	checkinCmd.Flags().IntP("ira", "i", 0, "Anger (0-10, recorded only)")
	checkinCmd.AddCommand(checkinLastCmd)
	rootCmd.AddCommand(checkinCmd)

	// --- Focus Commands ---
	focusStartCmd.Flags().StringP("label", "l", "", "Optional session label")
	focusStartCmd.Flags().Int64P("task", "t", 0, "Link the session to a task id")
	focusStartCmd.Flags().IntP("break", "b", 0, "Break reminder interval in minutes (default: daemon setting)")
	focusStartCmd.Flags().String("bedtime", "", "Bedtime as HH:MM (default: daemon setting)")
	focusStopCmd.Flags().StringP("reason", "r", "cierre", "End reason: 'cierre' or 'dormir'")
	focusExtendCmd.Flags().IntP("minutes", "m", 15, "Minutes to push the next break out")
	focusStatusCmd.Flags().BoolP("watch", "w", false, "Live countdown view (q to quit)")
	focusCmd.AddCommand(focusStartCmd)
	focusCmd.AddCommand(focusStopCmd)
	focusCmd.AddCommand(focusExtendCmd)
	focusCmd.AddCommand(focusStatusCmd)
	rootCmd.AddCommand(focusCmd)

	// --- Social Commands ---
	socialBeforeCmd.Flags().StringP("duration", "d", "", "Planned duration (e.g. '1h', '2h')")
	socialBeforeCmd.Flags().StringP("risk", "r", "", "Expected sensory risk (Bajo/Medio/Alto)")
	socialBeforeCmd.Flags().BoolP("earplugs", "e", false, "Taking earplugs")
	socialAfterCmd.Flags().Int("social-cost", 0, "Social cost (0-10)")
	socialAfterCmd.Flags().Int("sensory-cost", 0, "Sensory cost (0-10)")
	socialCmd.AddCommand(socialBeforeCmd)
	socialCmd.AddCommand(socialAfterCmd)
	socialCmd.AddCommand(socialListCmd)
	rootCmd.AddCommand(socialCmd)

	// --- Task Commands ---
	taskAddCmd.Flags().StringP("title", "t", "", "Task title (required)")
	taskAddCmd.Flags().String("done", "", "What 'done' means for this task")
	taskAddCmd.Flags().String("starts-at", "", "Where the task physically starts")
	taskAddCmd.Flags().StringP("first-step", "f", "", "The 30-second first step (required)")
	taskAddCmd.Flags().Bool("technique", false, "Requires a specific technique")
	taskAddCmd.Flags().IntP("minutes", "m", 2, "Starter time budget in minutes")
	taskAddCmd.MarkFlagRequired("title")
	taskAddCmd.MarkFlagRequired("first-step")
	taskDoneCmd.Flags().IntP("minutes", "m", 0, "Minutes actually spent")
	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskStartCmd)
	taskCmd.AddCommand(taskDoneCmd)
	taskCmd.AddCommand(taskListCmd)
	rootCmd.AddCommand(taskCmd)

	// --- Protocol / Template Commands ---
	protocolEditCmd.Flags().StringArrayP("step", "s", nil, "Protocol step, in order (repeatable)")
	protocolCmd.AddCommand(protocolListCmd)
	protocolCmd.AddCommand(protocolEditCmd)
	rootCmd.AddCommand(protocolCmd)
	rootCmd.AddCommand(templatesCmd)

	// --- Other Commands ---
	statsCmd.Flags().IntP("days", "d", 7, "Number of past days to summarize")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(pingCmd)

	// --- Execute ---
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

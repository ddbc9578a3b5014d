// Package ui is the terminal frontend: a monitor view of the running
// schedule and link status, a schedule view for editing, and the
// confirmation overlay every destructive action goes through.
package ui

import (
	"fmt"
	"log/slog"
	"time"

	"schedsync/internal/calendar"
	"schedsync/internal/config"
	"schedsync/internal/schedule"
	"schedsync/internal/state"

	tea "github.com/charmbracelet/bubbletea"
)

type ViewMode int

const (
	ViewMonitor ViewMode = iota
	ViewSchedule
	ViewHelp
)

// SyncClient is the slice of the protocol client the UI drives.
type SyncClient interface {
	RequestSchedule(fromUser bool)
	RequestStatus()
	CommitSchedule(doc *schedule.Document) error
}

// activityEntry is one line of the monitor activity log.
type activityEntry struct {
	when    time.Time
	level   string
	message string
}

// confirmGate feeds a staged yes into gateway operations. The overlay is
// the only writer: an operation invoked outside it sees false and aborts.
type confirmGate struct {
	granted bool
}

func (g *confirmGate) ask(string) bool { return g.granted }

// pendingConfirm is an overlay question with its resolution actions.
type pendingConfirm struct {
	question string
	onYes    func()
	onNo     func()
}

type Model struct {
	// Core components
	cfg     *config.Config
	store   *state.Store
	client  SyncClient
	set     *calendar.EventSet
	gateway *calendar.Gateway
	gate    *confirmGate

	// View state
	mode      ViewMode
	prevMode  ViewMode
	selected  int // selected row in the schedule view
	topRow    int // first visible row in the schedule view
	nextAfter *schedule.Item
	nextAt    time.Time

	// Activity log ring, newest last.
	activity []activityEntry

	// Overlay / editor state
	confirm     *pendingConfirm
	retiming    string // event id being retimed, "" when idle
	inputBuffer string
	cursorPos   int

	// UI state
	width         int
	height        int
	message       string
	messageExpiry time.Time
	showEventIDs  bool

	styles Styles
}

const (
	activityLimit = 200
	messageTTL    = 4 * time.Second
)

func NewModel(cfg *config.Config, store *state.Store, client SyncClient) *Model {
	m := &Model{
		cfg:    cfg,
		store:  store,
		client: client,
		set:    calendar.NewEventSet(),
		gate:   &confirmGate{},
		styles: DefaultStyles(),
	}
	m.gateway = calendar.NewGateway(m.set, store, m.gate.ask)

	switch cfg.UI.StartupView {
	case "schedule":
		m.mode = ViewSchedule
	case "help":
		m.mode = ViewHelp
	default:
		m.mode = ViewMonitor
	}
	if ws := store.WorkingSchedule(); ws != nil {
		m.gateway.Load(ws)
	}
	return m
}

// Gateway exposes the mutation gateway for collaborators wired in cmd.
func (m *Model) Gateway() *calendar.Gateway {
	return m.gateway
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		m.tickCmd(),
	)
}

// Messages delivered from outside the bubbletea loop.
type (
	// StateChangedMsg carries a store topic.
	StateChangedMsg struct{ Topic string }
	// ActivityMsg is one log line for the monitor view.
	ActivityMsg struct {
		Level   string
		Message string
	}
	// ConfirmLoadMsg raises the overwrite-local-edits question.
	ConfirmLoadMsg struct{ Incoming *schedule.Document }

	tickMsg struct{}
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tickMsg:
		m.refreshPrograms()
		if m.message != "" && time.Now().After(m.messageExpiry) {
			m.message = ""
		}
		return m, m.tickCmd()

	case StateChangedMsg:
		if msg.Topic == state.TopicWorkingSchedule {
			m.reloadEvents()
		}
		return m, nil

	case ActivityMsg:
		m.appendActivity(msg.Level, msg.Message)
		return m, nil

	case ConfirmLoadMsg:
		ed := m.store.Editor()
		m.confirm = &pendingConfirm{
			question: fmt.Sprintf("Discard %s and load the server schedule?", changesWord(ed.ChangeCount)),
			onYes: func() {
				m.store.SetSchedule(msg.Incoming, state.LoadOptions{Force: true})
				m.showMessage("Loaded schedule from server")
			},
		}
		return m, nil

	}

	return m, nil
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.confirm != nil {
		return m.viewConfirm()
	}
	if m.retiming != "" {
		return m.viewRetimeEditor()
	}

	switch m.mode {
	case ViewSchedule:
		return m.viewSchedule()
	case ViewHelp:
		return m.viewHelp()
	default:
		return m.viewMonitor()
	}
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Overlay and editor capture all input first.
	if m.confirm != nil {
		return m.handleConfirmKeys(msg)
	}
	if m.retiming != "" {
		return m.handleRetimeKeys(msg)
	}

	// Global keys
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "?":
		if m.mode == ViewHelp {
			m.mode = m.prevMode
		} else {
			m.prevMode = m.mode
			m.mode = ViewHelp
		}
		return m, nil

	case "1":
		m.setMode(ViewMonitor)
		return m, nil

	case "2":
		m.setMode(ViewSchedule)
		return m, nil

	case "g":
		// Pull from the server; conflicts with local edits surface as a
		// ConfirmLoadMsg, not as silent loss.
		m.client.RequestSchedule(true)
		m.client.RequestStatus()
		m.showMessage("Requested schedule from server")
		return m, nil

	case "c":
		return m, m.commit()

	case "i", "I":
		m.showEventIDs = !m.showEventIDs
		return m, nil
	}

	if m.mode == ViewSchedule {
		return m.handleScheduleKeys(msg)
	}
	if m.mode == ViewHelp {
		m.mode = m.prevMode
	}
	return m, nil
}

func (m *Model) handleScheduleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visibleRows := m.height - 6
	if visibleRows < 5 {
		visibleRows = 5
	}

	switch msg.String() {
	case "j", "down":
		if m.selected < m.set.Len()-1 {
			m.selected++
			if m.selected >= m.topRow+visibleRows {
				m.topRow++
			}
		}

	case "k", "up":
		if m.selected > 0 {
			m.selected--
			if m.selected < m.topRow {
				m.topRow--
			}
		}

	case "e":
		if ev, ok := m.selectedEvent(); ok {
			m.gateway.ToggleEnabled(ev.ID)
			m.showMessage(fmt.Sprintf("Toggled %q", ev.Title))
		}

	case "d":
		if ev, ok := m.selectedEvent(); ok {
			if !m.cfg.UI.ConfirmDelete {
				m.deleteEvent(ev.ID)
				return m, nil
			}
			m.confirm = &pendingConfirm{
				question: fmt.Sprintf("Delete %q?", ev.Title),
				onYes:    func() { m.deleteEvent(ev.ID) },
			}
		}

	case "t":
		if ev, ok := m.selectedEvent(); ok {
			m.retiming = ev.ID
			if ev.IsRecurring() {
				m.inputBuffer = fmt.Sprintf("%s %s", ev.StartTime, ev.EndTime)
			} else {
				m.inputBuffer = fmt.Sprintf("%s %s",
					ev.Start.Format("15:04:05"), ev.End.Format("15:04:05"))
			}
			m.cursorPos = len(m.inputBuffer)
		}

	case "s":
		if m.cfg.Schedule.File == "" {
			m.showMessage("No schedule file configured")
			return m, nil
		}
		ws := m.store.WorkingSchedule()
		if ws == nil {
			m.showMessage("Nothing to save")
			return m, nil
		}
		if err := ws.SaveFile(m.cfg.Schedule.File); err != nil {
			slog.Error("save failed", "error", err)
			m.showMessage(fmt.Sprintf("Save failed: %v", err))
		} else {
			m.showMessage(fmt.Sprintf("Saved to %s", m.cfg.Schedule.File))
		}

	case "o":
		if m.cfg.Schedule.File == "" {
			m.showMessage("No schedule file configured")
			return m, nil
		}
		doc, err := schedule.LoadFile(m.cfg.Schedule.File)
		if err != nil {
			slog.Error("load failed", "error", err)
			m.showMessage(fmt.Sprintf("Load failed: %v", err))
			return m, nil
		}
		m.store.SetWorkingSchedule(doc)
		m.showMessage(fmt.Sprintf("Loaded %s", m.cfg.Schedule.File))
	}

	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	confirm := m.confirm
	switch msg.String() {
	case "y", "Y", "enter":
		m.confirm = nil
		if confirm.onYes != nil {
			confirm.onYes()
		}
	case "n", "N", "esc", "q":
		m.confirm = nil
		if confirm.onNo != nil {
			confirm.onNo()
		}
	}
	return m, nil
}

func (m *Model) handleRetimeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.retiming = ""
		m.inputBuffer = ""
		return m, nil

	case tea.KeyEnter:
		id := m.retiming
		m.retiming = ""
		input := m.inputBuffer
		m.inputBuffer = ""
		m.applyRetime(id, input)
		return m, nil

	case tea.KeyBackspace:
		if m.cursorPos > 0 {
			m.inputBuffer = m.inputBuffer[:m.cursorPos-1] + m.inputBuffer[m.cursorPos:]
			m.cursorPos--
		}

	case tea.KeyLeft:
		if m.cursorPos > 0 {
			m.cursorPos--
		}

	case tea.KeyRight:
		if m.cursorPos < len(m.inputBuffer) {
			m.cursorPos++
		}

	case tea.KeyRunes:
		for _, r := range msg.Runes {
			m.inputBuffer = m.inputBuffer[:m.cursorPos] + string(r) + m.inputBuffer[m.cursorPos:]
			m.cursorPos++
		}
	}
	return m, nil
}

// applyRetime parses "HH:MM[:SS] HH:MM[:SS]" and runs the retime. Moving a
// recurring event means moving the whole series, so that path detours
// through the overlay before the gateway sees a yes.
func (m *Model) applyRetime(id, input string) {
	ev, ok := m.set.Get(id)
	if !ok {
		return
	}
	start, end, err := parseClockRange(input, ev.Start)
	if err != nil {
		m.showMessage(fmt.Sprintf("Bad time range: %v", err))
		return
	}

	if !ev.IsRecurring() {
		m.runConfirmed(func() { m.gateway.Retime(id, start, end, nil) })
		m.showMessage(fmt.Sprintf("Moved %q", ev.Title))
		return
	}

	m.confirm = &pendingConfirm{
		question: fmt.Sprintf("%q repeats. Move every occurrence to %s-%s?",
			ev.Title, start.Format("15:04"), end.Format("15:04")),
		onYes: func() {
			m.runConfirmed(func() { m.gateway.Retime(id, start, end, nil) })
			m.showMessage(fmt.Sprintf("Moved series %q", ev.Title))
		},
		onNo: func() { m.showMessage("Kept original times") },
	}
}

func (m *Model) deleteEvent(id string) {
	m.runConfirmed(func() {
		if m.gateway.Delete(id) {
			m.showMessage("Deleted")
			if m.selected >= m.set.Len() && m.selected > 0 {
				m.selected--
			}
		}
	})
}

// runConfirmed opens the gate, runs a gateway operation and closes it
// again. The user already answered the overlay at this point.
func (m *Model) runConfirmed(fn func()) {
	m.gate.granted = true
	defer func() { m.gate.granted = false }()
	fn()
}

func (m *Model) commit() tea.Cmd {
	ws := m.store.WorkingSchedule()
	if ws == nil {
		m.showMessage("Nothing to commit")
		return nil
	}
	if err := m.client.CommitSchedule(ws); err != nil {
		m.showMessage(fmt.Sprintf("Commit failed: %v", err))
		return nil
	}
	m.showMessage("Committing schedule...")
	return nil
}

func (m *Model) setMode(mode ViewMode) {
	m.mode = mode
	if mode == ViewSchedule {
		m.reloadEvents()
	}
}

func (m *Model) reloadEvents() {
	if ws := m.store.WorkingSchedule(); ws != nil {
		m.gateway.Load(ws)
	}
	if m.selected >= m.set.Len() && m.selected > 0 {
		m.selected = m.set.Len() - 1
	}
}

func (m *Model) selectedEvent() (calendar.Event, bool) {
	events := m.set.Events()
	if m.selected < 0 || m.selected >= len(events) {
		return calendar.Event{}, false
	}
	return events[m.selected], true
}

// refreshPrograms recomputes what is on air now and what comes next.
func (m *Model) refreshPrograms() {
	ws := m.store.WorkingSchedule()
	if ws == nil {
		return
	}
	now := time.Now()
	m.store.SetCurrentProgram(ws.ItemAt(now))
	m.nextAfter, m.nextAt = ws.NextItemAfter(now)
}

func (m *Model) appendActivity(level, message string) {
	m.activity = append(m.activity, activityEntry{
		when:    time.Now(),
		level:   level,
		message: message,
	})
	if len(m.activity) > activityLimit {
		m.activity = m.activity[len(m.activity)-activityLimit:]
	}
}

func (m *Model) showMessage(msg string) {
	m.message = msg
	m.messageExpiry = time.Now().Add(messageTTL)
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.cfg.UI.RefreshRate.Std(), func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func changesWord(count int) string {
	if count == 1 {
		return "1 unsaved change"
	}
	if count > 1 {
		return fmt.Sprintf("%d unsaved changes", count)
	}
	return "unsaved changes"
}

// parseClockRange parses "HH:MM[:SS] HH:MM[:SS]" against a base date. For
// recurring events only the wall clock matters; for single events the date
// of the existing start is kept.
func parseClockRange(input string, base time.Time) (time.Time, time.Time, error) {
	var startClock, endClock string
	if _, err := fmt.Sscanf(input, "%s %s", &startClock, &endClock); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("want \"HH:MM HH:MM\"")
	}
	if base.IsZero() {
		base = time.Now()
	}
	start, err := atClock(base, startClock)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := atClock(base, endClock)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func atClock(base time.Time, clock string) (time.Time, error) {
	var h, min, sec int
	n, err := fmt.Sscanf(clock, "%d:%d:%d", &h, &min, &sec)
	if err != nil && n < 2 {
		return time.Time{}, fmt.Errorf("bad time %q", clock)
	}
	if h < 0 || h > 23 || min < 0 || min > 59 || sec < 0 || sec > 59 {
		return time.Time{}, fmt.Errorf("bad time %q", clock)
	}
	return time.Date(base.Year(), base.Month(), base.Day(), h, min, sec, 0, base.Location()), nil
}

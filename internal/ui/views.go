package ui

import (
	"fmt"
	"strings"
	"time"

	"schedsync/internal/state"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

func (m *Model) viewMonitor() string {
	var sections []string

	sections = append(sections, m.styles.Header.Render("Monitor"), "")

	conn := m.store.Connection()
	remote := m.store.Remote()
	preview := m.store.Preview()
	editor := m.store.Editor()

	sections = append(sections,
		m.statusLine("Server", conn.StatusText, conn.Connected, false),
		m.statusLine("Automation", remote.StatusText, remote.Connected, remote.Unknown),
		m.statusLine("Preview", preview.StatusText, preview.Available, false),
	)
	if remote.VirtualCamActive {
		sections = append(sections, fmt.Sprintf("  %-12s %s", "Virtual Cam", m.styles.Good.Render("Active")))
	}
	sections = append(sections, fmt.Sprintf("  %-12s %s", "Editor", m.editorText(editor)), "")

	// On air / up next
	if current := m.store.CurrentProgram(); current != nil {
		sections = append(sections, fmt.Sprintf("  %-12s %s", "On Air",
			m.styles.OnAir.Render(current.Title)))
	} else {
		sections = append(sections, fmt.Sprintf("  %-12s %s", "On Air",
			m.styles.Help.Render("Nothing scheduled")))
	}
	if m.nextAfter != nil {
		sections = append(sections, fmt.Sprintf("  %-12s %s at %s", "Up Next",
			m.styles.Normal.Render(m.nextAfter.Title),
			m.nextAt.Format(m.cfg.UI.TimeFormat)))
	}
	sections = append(sections, "")

	// Activity log fills the rest of the screen, newest entries last.
	sections = append(sections, m.styles.Header.Render("Activity"))
	used := len(sections) + 2
	sections = append(sections, m.renderActivity(m.height-used)...)

	body := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return m.withStatusBar(body)
}

func (m *Model) statusLine(label, text string, ok, unknown bool) string {
	style := m.styles.Bad
	if unknown {
		style = m.styles.Warn
	} else if ok {
		style = m.styles.Good
	}
	return fmt.Sprintf("  %-12s %s", label, style.Render(text))
}

func (m *Model) editorText(editor state.EditorState) string {
	switch editor.Status {
	case state.EditorDirty:
		return m.styles.Warn.Render(editor.StatusText)
	case state.EditorSyncing:
		return m.styles.Normal.Render(editor.StatusText)
	case state.EditorError:
		return m.styles.Bad.Render(editor.StatusText)
	default:
		text := editor.StatusText
		if !editor.LastSyncTime.IsZero() {
			text = fmt.Sprintf("%s at %s", text, editor.LastSyncTime.Format(m.cfg.UI.TimeFormat))
		}
		return m.styles.Good.Render(text)
	}
}

func (m *Model) renderActivity(maxLines int) []string {
	if maxLines < 1 {
		return nil
	}
	width := m.width - 4
	if width < 20 {
		width = 20
	}

	var lines []string
	for _, entry := range m.activity {
		text := fmt.Sprintf("%s %s", entry.when.Format("15:04:05"), entry.message)
		if m.cfg.UI.WrapText {
			text = wordwrap.String(text, width)
		}
		for _, line := range strings.Split(text, "\n") {
			switch entry.level {
			case "error":
				line = m.styles.Bad.Render(line)
			case "warn", "warning":
				line = m.styles.Warn.Render(line)
			default:
				line = m.styles.Help.Render(line)
			}
			lines = append(lines, "  "+line)
		}
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return lines
}

func (m *Model) viewSchedule() string {
	var sections []string

	name := "Schedule"
	if ws := m.store.WorkingSchedule(); ws != nil && ws.ScheduleName != "" {
		name = ws.ScheduleName
	}
	sections = append(sections, m.styles.Header.Render(name), "")

	events := m.set.Events()
	if len(events) == 0 {
		sections = append(sections, m.styles.Help.Render("  No events. Press g to load from the server."))
		return m.withStatusBar(lipgloss.JoinVertical(lipgloss.Left, sections...))
	}

	visibleRows := m.height - 6
	if visibleRows < 5 {
		visibleRows = 5
	}
	current := m.store.CurrentProgram()

	for i, ev := range events {
		if i < m.topRow || i >= m.topRow+visibleRows {
			continue
		}

		timing := ""
		if ev.IsRecurring() {
			timing = fmt.Sprintf("%s-%s %s",
				clockShort(ev.StartTime), clockShort(ev.EndTime),
				strings.Join(dayAbbrevs(ev.DaysOfWeek), ","))
		} else {
			timing = fmt.Sprintf("%s %s-%s",
				ev.Start.Format(m.cfg.UI.DateFormat),
				ev.Start.Format(m.cfg.UI.TimeFormat),
				ev.End.Format(m.cfg.UI.TimeFormat))
		}

		title := ev.Title
		if m.showEventIDs {
			title = fmt.Sprintf("%s [%s]", title, ev.ID)
		}
		line := fmt.Sprintf(" %-24s %s", timing, title)

		switch {
		case i == m.selected:
			line = m.styles.Selected.Render(line)
		case !ev.Props.Enabled:
			line = m.styles.Disabled.Render(line)
		case current != nil && current.ID == ev.ID:
			line = m.styles.OnAir.Render(line)
		default:
			line = m.styles.Normal.Render(line)
		}
		sections = append(sections, line)
	}

	return m.withStatusBar(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) viewHelp() string {
	help := []string{
		m.styles.Header.Render("Help"),
		"",
		m.styles.Normal.Render("Views:"),
		m.styles.Help.Render("  1       - Monitor view"),
		m.styles.Help.Render("  2       - Schedule view"),
		m.styles.Help.Render("  ?       - Toggle help"),
		"",
		m.styles.Normal.Render("Sync:"),
		m.styles.Help.Render("  g       - Get schedule and status from server"),
		m.styles.Help.Render("  c       - Commit working schedule to server"),
		"",
		m.styles.Normal.Render("Schedule view:"),
		m.styles.Help.Render("  j/↓ k/↑ - Move selection"),
		m.styles.Help.Render("  e       - Enable/disable event"),
		m.styles.Help.Render("  d       - Delete event"),
		m.styles.Help.Render("  t       - Change event times"),
		m.styles.Help.Render("  s       - Save schedule to file"),
		m.styles.Help.Render("  o       - Load schedule from file"),
		m.styles.Help.Render("  i       - Toggle event IDs"),
		"",
		m.styles.Help.Render("  q       - Quit"),
		"",
		m.styles.Help.Render("Press ? to return..."),
	}

	return lipgloss.JoinVertical(lipgloss.Left, help...)
}

func (m *Model) viewConfirm() string {
	question := m.confirm.question
	if m.cfg.UI.WrapText && m.width > 10 {
		question = wordwrap.String(question, m.width-10)
	}
	box := m.styles.Overlay.Render(lipgloss.JoinVertical(lipgloss.Left,
		question,
		"",
		m.styles.Help.Render("y - yes    n - no"),
	))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) viewRetimeEditor() string {
	var sections []string

	sections = append(sections, m.styles.Header.Render("Change Times"), "")
	sections = append(sections, m.styles.Normal.Render("Enter start and end (e.g. '09:00 10:30'):"))

	input := m.inputBuffer
	if m.cursorPos < len(input) {
		input = input[:m.cursorPos] + "█" + input[m.cursorPos:]
	} else {
		input = input + "█"
	}
	sections = append(sections, m.styles.Selected.Render(input), "")
	sections = append(sections, m.styles.Help.Render("Enter to apply, Esc to cancel"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) withStatusBar(body string) string {
	bar := m.renderStatusBar()
	pad := m.height - lipgloss.Height(body) - 1
	if pad < 0 {
		pad = 0
	}
	return body + strings.Repeat("\n", pad+1) + bar
}

func (m *Model) renderStatusBar() string {
	conn := m.store.Connection()
	editor := m.store.Editor()

	left := fmt.Sprintf(" %s | %s | %s",
		time.Now().Format(m.cfg.UI.TimeFormat), conn.StatusText, editor.StatusText)
	right := "? for help | q to quit"
	if m.message != "" {
		right = m.styles.Message.Render(m.message)
	}

	width := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if width < 0 {
		width = 0
	}
	return m.styles.Help.Render(left) + strings.Repeat(" ", width) + right
}

func clockShort(clock string) string {
	if len(clock) >= 5 {
		return clock[:5]
	}
	return clock
}

var dayShort = [...]string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

func dayAbbrevs(days []int) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		if d >= 0 && d < len(dayShort) {
			out = append(out, dayShort[d])
		}
	}
	return out
}

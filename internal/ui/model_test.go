package ui

import (
	"strings"
	"testing"
	"time"

	"schedsync/internal/config"
	"schedsync/internal/schedule"
	"schedsync/internal/state"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeClient struct {
	scheduleRequests []bool
	statusRequests   int
	committed        []*schedule.Document
}

func (f *fakeClient) RequestSchedule(fromUser bool) {
	f.scheduleRequests = append(f.scheduleRequests, fromUser)
}

func (f *fakeClient) RequestStatus() { f.statusRequests++ }

func (f *fakeClient) CommitSchedule(doc *schedule.Document) error {
	f.committed = append(f.committed, doc)
	return nil
}

func testModel(t *testing.T, items ...schedule.Item) (*Model, *fakeClient, *state.Store) {
	t.Helper()
	cfg := config.DefaultConfig()
	store := state.NewStore()
	if items != nil {
		doc := schedule.New("Test")
		doc.Items = items
		store.SetSchedule(doc, state.LoadOptions{Force: true})
	}
	client := &fakeClient{}
	m := NewModel(cfg, store, client)
	m.width = 80
	m.height = 24
	return m, client, store
}

func press(m *Model, key string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
}

func singleItem(id, title string, start time.Time) schedule.Item {
	return schedule.Item{
		ID:      id,
		Title:   title,
		Enabled: true,
		Timing:  schedule.Timing{Start: start, End: start.Add(time.Hour)},
	}
}

func recurringItem(id, title string) schedule.Item {
	start, _ := time.Parse(time.RFC3339, "1970-01-01T09:00:00Z")
	return schedule.Item{
		ID:      id,
		Title:   title,
		Enabled: true,
		Timing: schedule.Timing{
			Start:       start,
			End:         start.Add(90 * time.Minute),
			IsRecurring: true,
			Recurrence: schedule.Recurrence{
				DaysOfWeek: []string{"MON", "WED"},
				StartRecur: "2025-06-01",
			},
		},
	}
}

func TestViewSwitching(t *testing.T) {
	m, _, _ := testModel(t)

	if m.mode != ViewMonitor {
		t.Fatalf("startup mode = %v", m.mode)
	}
	press(m, "2")
	if m.mode != ViewSchedule {
		t.Errorf("mode after 2 = %v", m.mode)
	}
	press(m, "?")
	if m.mode != ViewHelp {
		t.Errorf("mode after ? = %v", m.mode)
	}
	press(m, "?")
	if m.mode != ViewSchedule {
		t.Errorf("help should return to the previous view, got %v", m.mode)
	}
	press(m, "1")
	if m.mode != ViewMonitor {
		t.Errorf("mode after 1 = %v", m.mode)
	}
}

func TestGetFromServer(t *testing.T) {
	m, client, _ := testModel(t)

	press(m, "g")

	if len(client.scheduleRequests) != 1 || !client.scheduleRequests[0] {
		t.Errorf("schedule requests = %v, want one user-initiated", client.scheduleRequests)
	}
	if client.statusRequests != 1 {
		t.Errorf("status requests = %d", client.statusRequests)
	}
}

func TestCommit(t *testing.T) {
	m, client, _ := testModel(t, singleItem("a", "Opening", time.Now()))

	press(m, "c")
	if len(client.committed) != 1 {
		t.Fatalf("committed %d documents, want 1", len(client.committed))
	}
	if len(client.committed[0].Items) != 1 {
		t.Errorf("committed doc has %d items", len(client.committed[0].Items))
	}
}

func TestCommitWithNothingLoaded(t *testing.T) {
	m, client, _ := testModel(t)

	press(m, "c")
	if len(client.committed) != 0 {
		t.Error("committed with no working schedule")
	}
	if m.message == "" {
		t.Error("no feedback message shown")
	}
}

func TestDeleteConfirmFlow(t *testing.T) {
	m, _, store := testModel(t, singleItem("a", "Opening", time.Now()))

	press(m, "2")
	press(m, "d")
	if m.confirm == nil {
		t.Fatal("no confirmation raised")
	}
	if !strings.Contains(m.confirm.question, "Opening") {
		t.Errorf("question %q does not name the event", m.confirm.question)
	}

	press(m, "y")
	if m.confirm != nil {
		t.Error("overlay still up after answer")
	}
	if m.set.Len() != 0 {
		t.Errorf("event not deleted, set has %d", m.set.Len())
	}
	if ws := store.WorkingSchedule(); len(ws.Items) != 0 {
		t.Errorf("working schedule still has %d items", len(ws.Items))
	}
	if !store.Editor().IsDirty {
		t.Error("delete should dirty the editor")
	}
}

func TestDeleteDeclined(t *testing.T) {
	m, _, store := testModel(t, singleItem("a", "Opening", time.Now()))

	press(m, "2")
	press(m, "d")
	press(m, "n")

	if m.set.Len() != 1 {
		t.Error("declined delete removed the event")
	}
	if store.Editor().IsDirty {
		t.Error("declined delete dirtied the editor")
	}
}

func TestToggleEnabled(t *testing.T) {
	m, _, store := testModel(t, singleItem("a", "Opening", time.Now()))

	press(m, "2")
	press(m, "e")

	if ws := store.WorkingSchedule(); ws.Items[0].Enabled {
		t.Error("event still enabled")
	}
}

func TestRetimeRecurringSeries(t *testing.T) {
	m, _, store := testModel(t, recurringItem("r1", "Daily News"))

	press(m, "2")
	press(m, "t")
	if m.retiming != "r1" {
		t.Fatalf("retiming = %q", m.retiming)
	}
	if !strings.Contains(m.inputBuffer, "09:00:00") {
		t.Errorf("input not prefilled: %q", m.inputBuffer)
	}

	m.inputBuffer = "14:00 14:30"
	m.cursorPos = len(m.inputBuffer)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.confirm == nil {
		t.Fatal("series move did not ask for confirmation")
	}
	press(m, "y")

	ev, ok := m.set.Get("r1")
	if !ok {
		t.Fatal("event gone after retime")
	}
	if ev.StartTime != "14:00:00" || ev.EndTime != "14:30:00" {
		t.Errorf("wall clock = %s-%s", ev.StartTime, ev.EndTime)
	}
	if ws := store.WorkingSchedule(); ws.Items[0].Timing.Start.Format("15:04:05") != "14:00:00" {
		t.Errorf("exported start = %v", ws.Items[0].Timing.Start)
	}
}

func TestRetimeDeclinedKeepsTimes(t *testing.T) {
	m, _, _ := testModel(t, recurringItem("r1", "Daily News"))

	press(m, "2")
	press(m, "t")
	m.inputBuffer = "14:00 14:30"
	m.cursorPos = len(m.inputBuffer)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	press(m, "n")

	if ev, _ := m.set.Get("r1"); ev.StartTime != "09:00:00" {
		t.Errorf("declined move changed wall clock to %s", ev.StartTime)
	}
}

func TestConfirmLoadOverwrite(t *testing.T) {
	m, _, store := testModel(t, singleItem("a", "Opening", time.Now()))

	edited := store.WorkingSchedule()
	edited.Items[0].Title = "edited"
	store.SetWorkingSchedule(edited)

	incoming := schedule.New("Test")
	incoming.Items = []schedule.Item{
		singleItem("a", "Opening", time.Now()),
		singleItem("b", "Closing", time.Now().Add(2*time.Hour)),
	}
	m.Update(ConfirmLoadMsg{Incoming: incoming})
	if m.confirm == nil {
		t.Fatal("no confirmation raised")
	}
	press(m, "y")

	if got := len(store.WorkingSchedule().Items); got != 2 {
		t.Errorf("working copy has %d items after forced load, want 2", got)
	}
	if store.Editor().IsDirty {
		t.Error("still dirty after forced load")
	}
}

func TestWorkingScheduleChangeReloadsEvents(t *testing.T) {
	m, _, store := testModel(t, singleItem("a", "Opening", time.Now()))

	doc := store.WorkingSchedule()
	doc.Items = append(doc.Items, singleItem("b", "Closing", time.Now().Add(2*time.Hour)))
	store.SetWorkingSchedule(doc)
	m.Update(StateChangedMsg{Topic: state.TopicWorkingSchedule})

	if m.set.Len() != 2 {
		t.Errorf("event set has %d events, want 2", m.set.Len())
	}
}

func TestStatusMessageExpires(t *testing.T) {
	m, _, _ := testModel(t)
	m.showMessage("Saved")

	m.Update(tickMsg{})
	if m.message != "Saved" {
		t.Fatal("message cleared before its expiry")
	}

	m.messageExpiry = time.Now().Add(-time.Second)
	m.Update(tickMsg{})
	if m.message != "" {
		t.Errorf("message = %q, want cleared after expiry", m.message)
	}
}

func TestParseClockRange(t *testing.T) {
	base := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		input   string
		wantErr bool
		start   string
		end     string
	}{
		{"09:00 10:30", false, "09:00:00", "10:30:00"},
		{"09:00:15 10:30:45", false, "09:00:15", "10:30:45"},
		{"garbage", true, "", ""},
		{"25:00 26:00", true, "", ""},
		{"09:75 10:00", true, "", ""},
	}
	for _, tt := range tests {
		start, end, err := parseClockRange(tt.input, base)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseClockRange(%q) err = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		if got := start.Format("15:04:05"); got != tt.start {
			t.Errorf("parseClockRange(%q) start = %s, want %s", tt.input, got, tt.start)
		}
		if got := end.Format("15:04:05"); got != tt.end {
			t.Errorf("parseClockRange(%q) end = %s, want %s", tt.input, got, tt.end)
		}
	}
}

func TestMonitorViewRenders(t *testing.T) {
	m, _, store := testModel(t, singleItem("a", "Opening", time.Now().Add(-time.Minute)))
	store.SetConnectionStatus(true, state.ConnConnected, "Connected")
	m.refreshPrograms()
	m.appendActivity("info", "scene switched to Opening")

	out := m.View()
	if !strings.Contains(out, "Connected") {
		t.Error("monitor view missing connection status")
	}
	if !strings.Contains(out, "Opening") {
		t.Error("monitor view missing current program")
	}
	if !strings.Contains(out, "scene switched") {
		t.Error("monitor view missing activity log")
	}
}

func TestScheduleViewRenders(t *testing.T) {
	m, _, _ := testModel(t,
		singleItem("a", "Opening Ceremony", time.Date(2025, 6, 5, 8, 0, 0, 0, time.UTC)),
		recurringItem("r1", "Daily News"))

	press(m, "2")
	out := m.View()
	if !strings.Contains(out, "Opening Ceremony") || !strings.Contains(out, "Daily News") {
		t.Errorf("schedule view missing events:\n%s", out)
	}
	if !strings.Contains(out, "Mo,We") {
		t.Errorf("schedule view missing recurrence days:\n%s", out)
	}
}

package calendar

import (
	"reflect"
	"testing"
	"time"

	"schedsync/internal/schedule"
)

func mustInstant(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return ts
}

func testDoc(items ...schedule.Item) *schedule.Document {
	if items == nil {
		items = []schedule.Item{}
	}
	return &schedule.Document{Version: schedule.Version, ScheduleName: "Test", Items: items}
}

func testSingleItem(t *testing.T, id, title, start, end string) schedule.Item {
	t.Helper()
	return schedule.Item{
		ID:      id,
		Title:   title,
		Enabled: true,
		General: schedule.General{
			Tags:            []string{},
			ClassNames:      []string{},
			BackgroundColor: "#3788d8",
		},
		Source: schedule.Source{
			Name:          title,
			InputKind:     schedule.InputBrowser,
			URI:           "https://example.com/feed",
			InputSettings: map[string]any{},
			Transform:     map[string]any{},
		},
		Timing: schedule.Timing{
			Start:      mustInstant(t, start),
			End:        mustInstant(t, end),
			Recurrence: schedule.Recurrence{DaysOfWeek: []string{}},
		},
		Behavior: schedule.Behavior{OnEndAction: schedule.OnEndHide},
	}
}

func testRecurringItem(t *testing.T, id, title string, days []string, startClock, endClock string) schedule.Item {
	t.Helper()
	item := testSingleItem(t, id, title, "1970-01-01T"+startClock+"Z", "1970-01-01T"+endClock+"Z")
	item.Timing.IsRecurring = true
	item.Timing.Recurrence = schedule.Recurrence{
		DaysOfWeek: days,
		StartRecur: "2025-06-01",
		EndRecur:   "2025-06-30",
	}
	return item
}

func TestToCalendarEventsRecurring(t *testing.T) {
	doc := testDoc(testRecurringItem(t, "show-1", "Morning Show", []string{"MON", "WED"}, "09:00:00", "10:30:00"))

	events := ToCalendarEvents(doc)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]

	if !ev.IsRecurring() {
		t.Fatal("event should be recurring")
	}
	if want := []int{1, 3}; !reflect.DeepEqual(ev.DaysOfWeek, want) {
		t.Errorf("DaysOfWeek = %v, want %v", ev.DaysOfWeek, want)
	}
	if ev.StartTime != "09:00:00" || ev.EndTime != "10:30:00" {
		t.Errorf("wall clock = %s-%s, want 09:00:00-10:30:00", ev.StartTime, ev.EndTime)
	}
	if ev.StartRecur != "2025-06-01" || ev.EndRecur != "2025-06-30" {
		t.Errorf("recur bounds = %s..%s", ev.StartRecur, ev.EndRecur)
	}
	if !containsString(ev.ClassNames, RecurringClass) {
		t.Errorf("ClassNames %v missing %q", ev.ClassNames, RecurringClass)
	}
	if ev.Props.Recurrence == nil {
		t.Fatal("Props.Recurrence is nil")
	}
	if !reflect.DeepEqual(ev.Props.Recurrence.DaysOfWeek, []int{1, 3}) {
		t.Errorf("Props.Recurrence.DaysOfWeek = %v", ev.Props.Recurrence.DaysOfWeek)
	}
}

func TestToCalendarEventsSingle(t *testing.T) {
	doc := testDoc(testSingleItem(t, "one-off", "Premiere", "2025-06-05T20:00:00Z", "2025-06-05T22:00:00Z"))

	events := ToCalendarEvents(doc)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]

	if ev.IsRecurring() {
		t.Fatal("one-off event reported recurring")
	}
	if !ev.Start.Equal(mustInstant(t, "2025-06-05T20:00:00Z")) {
		t.Errorf("Start = %v", ev.Start)
	}
	if containsString(ev.ClassNames, RecurringClass) {
		t.Errorf("one-off event carries %q", RecurringClass)
	}
	if ev.Props.InputName != "Premiere" {
		t.Errorf("InputName = %q, want title fallback", ev.Props.InputName)
	}
	if ev.Props.InputURI != "https://example.com/feed" {
		t.Errorf("InputURI = %q", ev.Props.InputURI)
	}
}

func TestAdapterDefaults(t *testing.T) {
	doc := testDoc(schedule.Item{
		ID:      "bare",
		Title:   "Bare Item",
		Enabled: true,
		Timing: schedule.Timing{
			Start: mustInstant(t, "2025-06-05T08:00:00Z"),
			End:   mustInstant(t, "2025-06-05T09:00:00Z"),
		},
	})

	ev := ToCalendarEvents(doc)[0]
	if ev.Props.InputKind != schedule.InputBrowser {
		t.Errorf("InputKind = %q, want %q", ev.Props.InputKind, schedule.InputBrowser)
	}
	if ev.Props.Automation.OnEndAction != schedule.OnEndHide {
		t.Errorf("OnEndAction = %q, want %q", ev.Props.Automation.OnEndAction, schedule.OnEndHide)
	}
	if ev.Props.Tags == nil {
		t.Error("Tags should default to empty, not nil")
	}
}

func TestMalformedRecurrenceDemoted(t *testing.T) {
	item := testSingleItem(t, "odd", "Flagged But Empty", "2025-06-05T20:00:00Z", "2025-06-05T21:00:00Z")
	item.Timing.IsRecurring = true // flag set, but no rule at all

	ev := ToCalendarEvents(testDoc(item))[0]
	if ev.IsRecurring() {
		t.Fatal("empty recurrence rule should demote the item to a single event")
	}
	if containsString(ev.ClassNames, RecurringClass) {
		t.Errorf("demoted event carries %q", RecurringClass)
	}
}

func TestRoundTripPreservesDocument(t *testing.T) {
	doc := testDoc(
		testSingleItem(t, "a", "Opening", "2025-06-05T08:00:00Z", "2025-06-05T09:00:00Z"),
		testSingleItem(t, "b", "Closing", "2025-06-05T22:00:00Z", "2025-06-05T23:00:00Z"),
		testRecurringItem(t, "c", "Daily News", []string{"MON", "WED"}, "12:00:00", "12:30:00"),
	)

	out := ToScheduleDocument(ToCalendarEvents(doc), ExportOptions{ScheduleName: "Test"})
	if !schedule.Equal(doc, out) {
		t.Errorf("round trip changed the document:\nin:  %+v\nout: %+v", doc, out)
	}
}

func TestExportPartitionsAndOrders(t *testing.T) {
	doc := testDoc(
		testRecurringItem(t, "r1", "Daily News", []string{"TUE"}, "12:00:00", "12:30:00"),
		testSingleItem(t, "s1", "First", "2025-06-05T08:00:00Z", "2025-06-05T09:00:00Z"),
		testSingleItem(t, "s2", "Second", "2025-06-05T10:00:00Z", "2025-06-05T11:00:00Z"),
	)

	out := ToScheduleDocument(ToCalendarEvents(doc), ExportOptions{})
	if len(out.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(out.Items))
	}
	// Singles first in encounter order, recurring series after.
	if out.Items[0].ID != "s1" || out.Items[1].ID != "s2" || out.Items[2].ID != "r1" {
		t.Errorf("item order = %s, %s, %s", out.Items[0].ID, out.Items[1].ID, out.Items[2].ID)
	}
}

func TestExportDeduplicatesSeries(t *testing.T) {
	item := testRecurringItem(t, "r1", "Daily News", []string{"MON"}, "12:00:00", "12:30:00")
	events := ToCalendarEvents(testDoc(item))

	// A renderer may materialize one event per visible occurrence; all of
	// them describe the same series and must collapse back into one item.
	dup := events[0].Clone()
	dup.ID = "r1-occurrence-2"
	events = append(events, dup)

	out := ToScheduleDocument(events, ExportOptions{})
	if len(out.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(out.Items))
	}
	if out.Items[0].ID != "r1" {
		t.Errorf("kept id = %q, want first-seen %q", out.Items[0].ID, "r1")
	}
}

func TestExportKeepsDistinctSeries(t *testing.T) {
	a := testRecurringItem(t, "r1", "Daily News", []string{"MON"}, "12:00:00", "12:30:00")
	b := testRecurringItem(t, "r2", "Daily News", []string{"MON"}, "18:00:00", "18:30:00")

	out := ToScheduleDocument(ToCalendarEvents(testDoc(a, b)), ExportOptions{})
	if len(out.Items) != 2 {
		t.Fatalf("got %d items, want 2: series differing in time must not merge", len(out.Items))
	}
}

func TestExportStripsRecurringClass(t *testing.T) {
	item := testRecurringItem(t, "r1", "Daily News", []string{"MON"}, "12:00:00", "12:30:00")
	item.General.ClassNames = []string{"featured"}

	out := ToScheduleDocument(ToCalendarEvents(testDoc(item)), ExportOptions{})
	got := out.Items[0].General.ClassNames
	if !reflect.DeepEqual(got, []string{"featured"}) {
		t.Errorf("ClassNames = %v, want [featured]: %q is display-only", got, RecurringClass)
	}
}

func TestExportGeneratesMissingIDs(t *testing.T) {
	ev := Event{Title: "Unsaved", Start: time.Now(), End: time.Now().Add(time.Hour)}
	out := ToScheduleDocument([]Event{ev}, ExportOptions{})
	if out.Items[0].ID == "" {
		t.Error("exported item has no id")
	}
}

func TestExportDocumentMetadata(t *testing.T) {
	out := ToScheduleDocument(nil, ExportOptions{})
	if out.Version != schedule.Version {
		t.Errorf("Version = %q, want %q", out.Version, schedule.Version)
	}
	if out.ScheduleName != "Schedule" {
		t.Errorf("ScheduleName = %q, want default", out.ScheduleName)
	}
	if out.Items == nil {
		t.Error("Items should be empty, not nil")
	}
}

func containsString(in []string, want string) bool {
	for _, s := range in {
		if s == want {
			return true
		}
	}
	return false
}

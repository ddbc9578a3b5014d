// Package calendar holds the generic calendar-event representation used by
// display frontends, the adapter that maps it to and from the canonical
// Schedule Document, and the gateway every event mutation goes through.
package calendar

import (
	"time"

	"github.com/google/uuid"
)

// RecurringClass is the display marker attached to events of a recurring
// series. It is derived, never authoritative: recurrence state lives in
// Props.Recurrence.
const RecurringClass = "recurring-event"

// Event is the in-memory calendar representation of one schedule entry.
// For single events Start/End in Props are unused and the recurrence pointer
// is nil; for series events the recurrence rule is the source of truth and
// the top-level DaysOfWeek/StartTime/EndTime mirror it for renderers.
type Event struct {
	ID              string
	Title           string
	TextColor       string
	BackgroundColor string
	BorderColor     string
	ClassNames      []string

	// Single-occurrence shape.
	Start time.Time // zero for recurring events
	End   time.Time

	// Recurring shape, mirrored from Props.Recurrence for display.
	DaysOfWeek []int
	StartTime  string // HH:MM:SS wall clock
	EndTime    string
	StartRecur string // YYYY-MM-DD
	EndRecur   string

	Props Props
}

// Props carries the full semantic payload mirrored from the ScheduleItem.
type Props struct {
	Description   string
	Tags          []string
	Enabled       bool
	Automation    Automation
	InputName     string
	InputKind     string
	InputURI      string
	InputSettings map[string]any
	Transform     map[string]any
	Recurrence    *Recurrence
}

// Automation mirrors the item's behavior section.
type Automation struct {
	OnEndAction    string
	PreloadSeconds int
}

// Recurrence is the authoritative recurrence rule of a series event.
type Recurrence struct {
	DaysOfWeek []int
	StartRecur string
	EndRecur   string
	StartTime  string
	EndTime    string
}

// IsRecurring reports whether the event belongs to a recurring series.
// An absent recurrence means a single event; a malformed rule is treated
// the same way rather than rejected.
func (e *Event) IsRecurring() bool {
	return e.Props.Recurrence != nil
}

// Clone returns a deep copy of the event.
func (e *Event) Clone() Event {
	out := *e
	out.ClassNames = append([]string(nil), e.ClassNames...)
	out.DaysOfWeek = append([]int(nil), e.DaysOfWeek...)
	out.Props.Tags = append([]string(nil), e.Props.Tags...)
	out.Props.InputSettings = cloneMap(e.Props.InputSettings)
	out.Props.Transform = cloneMap(e.Props.Transform)
	if e.Props.Recurrence != nil {
		rec := *e.Props.Recurrence
		rec.DaysOfWeek = append([]int(nil), e.Props.Recurrence.DaysOfWeek...)
		out.Props.Recurrence = &rec
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// GenerateID returns a fresh event id for items that arrive without one.
func GenerateID() string {
	return "evt-" + uuid.NewString()
}

// uniqStrings drops duplicates and empty entries, preserving first-seen order.
func uniqStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

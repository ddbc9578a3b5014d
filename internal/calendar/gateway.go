package calendar

import (
	"fmt"
	"time"

	"schedsync/internal/schedule"
	"schedsync/internal/state"
	"schedsync/internal/timecodec"
)

// ConfirmFunc answers a yes/no question posed to the user. The gateway
// never mutates anything destructive without a true answer.
type ConfirmFunc func(question string) bool

// RevertFunc undoes a provisional UI change, typically snapping a dragged
// event back to where it was.
type RevertFunc func()

// EventSet is the ordered collection of calendar events backing the editor.
// Order is preserved across mutations because export emits events in set
// order.
type EventSet struct {
	events []Event
}

// NewEventSet returns an empty set.
func NewEventSet() *EventSet {
	return &EventSet{events: []Event{}}
}

// ReplaceAll swaps in a new event list wholesale.
func (s *EventSet) ReplaceAll(events []Event) {
	s.events = make([]Event, len(events))
	for i := range events {
		s.events[i] = events[i].Clone()
	}
}

// Events returns a copy of the events in set order.
func (s *EventSet) Events() []Event {
	out := make([]Event, len(s.events))
	for i := range s.events {
		out[i] = s.events[i].Clone()
	}
	return out
}

// Get returns the event with the given id.
func (s *EventSet) Get(id string) (Event, bool) {
	for i := range s.events {
		if s.events[i].ID == id {
			return s.events[i].Clone(), true
		}
	}
	return Event{}, false
}

// Len returns the number of events in the set.
func (s *EventSet) Len() int {
	return len(s.events)
}

func (s *EventSet) add(ev Event) {
	s.events = append(s.events, ev.Clone())
}

func (s *EventSet) remove(id string) bool {
	for i := range s.events {
		if s.events[i].ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return true
		}
	}
	return false
}

// replace removes the event with the given id and appends the replacement,
// as one step. Callers see either the old event or the new one, never both
// and never neither.
func (s *EventSet) replace(id string, ev Event) bool {
	if !s.remove(id) {
		return false
	}
	s.add(ev)
	return true
}

// Gateway applies user-initiated event mutations to the event set and
// publishes the re-exported document as the new working schedule after
// every successful change.
type Gateway struct {
	set     *EventSet
	store   *state.Store
	confirm ConfirmFunc
}

// NewGateway wires a gateway. confirm may not be nil; destructive
// operations would otherwise be unanswerable.
func NewGateway(set *EventSet, store *state.Store, confirm ConfirmFunc) *Gateway {
	return &Gateway{set: set, store: store, confirm: confirm}
}

// Load rebuilds the event set from a schedule document, typically the
// working copy after a server load. It does not publish: the document it
// was built from is already the working schedule.
func (g *Gateway) Load(doc *schedule.Document) {
	g.set.ReplaceAll(ToCalendarEvents(doc))
}

// Create adds a new event. An event arriving without an id gets one.
func (g *Gateway) Create(ev Event) Event {
	if ev.ID == "" {
		ev.ID = GenerateID()
	}
	g.set.add(ev)
	g.publish()
	return ev
}

// Update replaces the event with ev.ID by ev. Unknown ids are a silent
// no-op so a stale editor form cannot corrupt the set.
func (g *Gateway) Update(ev Event) bool {
	if !g.set.replace(ev.ID, ev) {
		return false
	}
	g.publish()
	return true
}

// Delete removes an event after user confirmation. Asking about an event
// that no longer exists would be nonsense, so a missing id returns false
// before any question is posed.
func (g *Gateway) Delete(id string) bool {
	ev, ok := g.set.Get(id)
	if !ok {
		return false
	}
	if !g.confirm(fmt.Sprintf("Delete %q?", ev.Title)) {
		return false
	}
	g.set.remove(id)
	g.publish()
	return true
}

// ToggleEnabled flips the enabled flag of an event.
func (g *Gateway) ToggleEnabled(id string) bool {
	ev, ok := g.set.Get(id)
	if !ok {
		return false
	}
	ev.Props.Enabled = !ev.Props.Enabled
	return g.Update(ev)
}

// Retime handles a drag or resize of an event to a new start and end
// instant.
//
// For a one-off event the window simply moves. For a recurring event a
// single occurrence cannot move on its own: the whole series shifts to the
// new wall-clock times, and because that is a much bigger change than the
// gesture suggests, it goes through confirmation first. On decline the
// revert callback restores the UI and nothing is published.
func (g *Gateway) Retime(id string, start, end time.Time, revert RevertFunc) bool {
	ev, ok := g.set.Get(id)
	if !ok {
		if revert != nil {
			revert()
		}
		return false
	}

	if !ev.IsRecurring() {
		ev.Start = start
		ev.End = end
		return g.Update(ev)
	}

	newStart := timecodec.TimeOfDay(start)
	newEnd := timecodec.TimeOfDay(end)
	question := fmt.Sprintf(
		"%q is a recurring event. Move every occurrence to %s-%s?",
		ev.Title, newStart, newEnd,
	)
	if !g.confirm(question) {
		if revert != nil {
			revert()
		}
		return false
	}

	replacement := ev.Clone()
	replacement.StartTime = newStart
	replacement.EndTime = newEnd
	replacement.Props.Recurrence.StartTime = newStart
	replacement.Props.Recurrence.EndTime = newEnd
	if !g.set.replace(id, replacement) {
		return false
	}
	g.publish()
	return true
}

// publish re-exports the event set and installs it as the working
// schedule, preserving the document name and version of the current one.
func (g *Gateway) publish() {
	opts := ExportOptions{}
	if ws := g.store.WorkingSchedule(); ws != nil {
		opts.ScheduleName = ws.ScheduleName
		opts.Version = ws.Version
	}
	g.store.SetWorkingSchedule(ToScheduleDocument(g.set.Events(), opts))
}

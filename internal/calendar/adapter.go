package calendar

import (
	"encoding/json"
	"time"

	"schedsync/internal/schedule"
	"schedsync/internal/timecodec"
)

// placeholderDate is the fixed date used to synthesize the absolute
// start/end instants of recurring items. Only the wall-clock portion of
// those instants carries meaning; sharing one date keeps recurring and
// single items in the same timing field shape.
const placeholderDate = "1970-01-01"

// ExportOptions name the document metadata written by ToScheduleDocument.
type ExportOptions struct {
	ScheduleName string
	Version      string
}

// ToCalendarEvents maps every schedule item to exactly one calendar event.
// The mapping never fails: missing colors, tags and settings default to
// empty values and a malformed recurrence section demotes the item to a
// single event.
func ToCalendarEvents(doc *schedule.Document) []Event {
	if doc == nil {
		return nil
	}
	events := make([]Event, 0, len(doc.Items))
	for i := range doc.Items {
		events = append(events, itemToEvent(&doc.Items[i]))
	}
	return events
}

// ToScheduleDocument partitions events into singles and recurring series and
// rebuilds a canonical document. Singles keep encounter order. Recurring
// events collapse into one item per distinct series, keyed by every visible
// and behavioral attribute; the first-seen event of a series wins and later
// duplicates merge away silently.
func ToScheduleDocument(events []Event, opts ExportOptions) *schedule.Document {
	if opts.ScheduleName == "" {
		opts.ScheduleName = "Schedule"
	}
	if opts.Version == "" {
		opts.Version = schedule.Version
	}

	var singles []schedule.Item
	var series []schedule.Item
	seen := make(map[string]bool)

	for i := range events {
		item := eventToItem(&events[i])
		if item.Timing.IsRecurring {
			key := seriesKey(&item)
			if seen[key] {
				continue
			}
			seen[key] = true
			series = append(series, item)
		} else {
			singles = append(singles, item)
		}
	}

	items := make([]schedule.Item, 0, len(singles)+len(series))
	items = append(items, singles...)
	items = append(items, series...)
	return &schedule.Document{
		Version:      opts.Version,
		ScheduleName: opts.ScheduleName,
		Items:        items,
	}
}

func itemToEvent(item *schedule.Item) Event {
	id := item.ID
	if id == "" {
		id = GenerateID()
	}

	ev := Event{
		ID:              id,
		Title:           item.Title,
		TextColor:       item.General.TextColor,
		BackgroundColor: item.General.BackgroundColor,
		BorderColor:     item.General.BorderColor,
		ClassNames:      uniqStrings(item.General.ClassNames),
		Props: Props{
			Description: item.General.Description,
			Tags:        append([]string(nil), item.General.Tags...),
			Enabled:     item.Enabled,
			Automation: Automation{
				OnEndAction:    defaultString(item.Behavior.OnEndAction, schedule.OnEndHide),
				PreloadSeconds: item.Behavior.PreloadSeconds,
			},
			InputName:     defaultString(item.Source.Name, item.Title),
			InputKind:     defaultString(item.Source.InputKind, schedule.InputBrowser),
			InputURI:      item.Source.URI,
			InputSettings: cloneMap(item.Source.InputSettings),
			Transform:     cloneMap(item.Source.Transform),
		},
	}
	if ev.Props.Tags == nil {
		ev.Props.Tags = []string{}
	}

	if !item.Timing.IsRecurring || emptyRecurrence(item.Timing.Recurrence) {
		ev.Start = item.Timing.Start
		ev.End = item.Timing.End
		return ev
	}

	// Recurrence wall-clock times come from the stored instants with the
	// date (a meaningless placeholder) stripped. Recurrence times are local
	// wall clock by contract, not instants, so the UTC marker goes too.
	rec := &Recurrence{
		DaysOfWeek: timecodec.WeekdayNamesToNumbers(item.Timing.Recurrence.DaysOfWeek),
		StartRecur: item.Timing.Recurrence.StartRecur,
		EndRecur:   item.Timing.Recurrence.EndRecur,
		StartTime:  timecodec.NormalizeTime(timecodec.TimeOfDay(item.Timing.Start)),
		EndTime:    timecodec.NormalizeTime(timecodec.TimeOfDay(item.Timing.End)),
	}
	ev.Props.Recurrence = rec
	ev.DaysOfWeek = append([]int(nil), rec.DaysOfWeek...)
	ev.StartTime = rec.StartTime
	ev.EndTime = rec.EndTime
	ev.StartRecur = rec.StartRecur
	ev.EndRecur = rec.EndRecur
	ev.ClassNames = uniqStrings(append(ev.ClassNames, RecurringClass))
	return ev
}

func eventToItem(ev *Event) schedule.Item {
	id := ev.ID
	if id == "" {
		id = GenerateID()
	}

	item := schedule.Item{
		ID:      id,
		Title:   ev.Title,
		Enabled: ev.Props.Enabled,
		General: schedule.General{
			Description:     ev.Props.Description,
			Tags:            orEmpty(ev.Props.Tags),
			ClassNames:      stripRecurringClass(ev.ClassNames),
			TextColor:       ev.TextColor,
			BackgroundColor: ev.BackgroundColor,
			BorderColor:     ev.BorderColor,
		},
		Source: schedule.Source{
			Name:          defaultString(ev.Props.InputName, ev.Title),
			InputKind:     defaultString(ev.Props.InputKind, schedule.InputBrowser),
			URI:           ev.Props.InputURI,
			InputSettings: orEmptyMap(ev.Props.InputSettings),
			Transform:     orEmptyMap(ev.Props.Transform),
		},
		Behavior: schedule.Behavior{
			OnEndAction:    defaultString(ev.Props.Automation.OnEndAction, schedule.OnEndHide),
			PreloadSeconds: ev.Props.Automation.PreloadSeconds,
		},
	}

	if !ev.IsRecurring() {
		item.Timing = schedule.Timing{
			Start:      ev.Start,
			End:        ev.End,
			Recurrence: schedule.Recurrence{DaysOfWeek: []string{}},
		}
		return item
	}

	rec := ev.Props.Recurrence
	item.Timing = schedule.Timing{
		Start:       placeholderInstant(rec.StartTime),
		End:         placeholderInstant(rec.EndTime),
		IsRecurring: true,
		Recurrence: schedule.Recurrence{
			DaysOfWeek: timecodec.WeekdayNumbersToNames(rec.DaysOfWeek),
			StartRecur: rec.StartRecur,
			EndRecur:   rec.EndRecur,
		},
	}
	return item
}

// placeholderInstant combines the fixed placeholder date with a wall-clock
// time, marked UTC to satisfy the document's strict instant format.
func placeholderInstant(clock string) time.Time {
	h, m, s := timecodec.SplitClock(clock)
	t, _ := time.Parse(time.RFC3339, placeholderDate+"T00:00:00Z")
	return t.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second)
}

// seriesKey fingerprints a recurring series: two recurring events belong to
// the same series iff every visible and behavioral attribute matches, not
// merely the id. Canonical JSON keeps the key stable (struct fields are
// emitted in declaration order and map keys sorted).
func seriesKey(item *schedule.Item) string {
	key := struct {
		Title    string            `json:"title"`
		Enabled  bool              `json:"enabled"`
		General  schedule.General  `json:"general"`
		Source   schedule.Source   `json:"source"`
		Behavior schedule.Behavior `json:"behavior"`
		Timing   schedule.Timing   `json:"timing"`
	}{item.Title, item.Enabled, item.General, item.Source, item.Behavior, item.Timing}
	data, err := json.Marshal(key)
	if err != nil {
		return item.ID
	}
	return string(data)
}

// emptyRecurrence reports whether a recurrence section carries no rule at
// all. An item flagged recurring but missing its rule falls back to a
// single event rather than being rejected.
func emptyRecurrence(r schedule.Recurrence) bool {
	return len(r.DaysOfWeek) == 0 && r.StartRecur == "" && r.EndRecur == ""
}

func stripRecurringClass(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range uniqStrings(names) {
		if n != RecurringClass {
			out = append(out, n)
		}
	}
	return out
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func orEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string(nil), in...)
}

func orEmptyMap(in map[string]any) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	return cloneMap(in)
}

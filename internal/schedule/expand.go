package schedule

import (
	"sort"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// defaultMaxOccurrences caps expansion of a single series so an unbounded
// rule cannot produce an arbitrarily large agenda.
const defaultMaxOccurrences = 1000

// Occurrence is one concrete run of an item inside an expansion window.
type Occurrence struct {
	Item  *Item
	Start time.Time
	End   time.Time
}

// Expand flattens the document into concrete occurrences between from and to
// (inclusive), sorted by start time. Recurring items are expanded through a
// weekly RRULE built from their weekday set and date bounds; disabled items
// are skipped. Items with no usable timing are dropped silently, matching
// the permissive posture of the rest of the pipeline.
func (d *Document) Expand(from, to time.Time) []Occurrence {
	if d == nil || to.Before(from) {
		return nil
	}

	var out []Occurrence
	for i := range d.Items {
		item := &d.Items[i]
		if !item.Enabled {
			continue
		}

		if !item.Timing.IsRecurring {
			start := item.Timing.Start.Local()
			end := item.Timing.End.Local()
			if start.IsZero() {
				continue
			}
			if start.Before(from) || start.After(to) {
				continue
			}
			out = append(out, Occurrence{Item: item, Start: start, End: end})
			continue
		}

		out = append(out, expandSeries(item, from, to)...)
	}

	sort.Slice(out, func(a, b int) bool { return out[a].Start.Before(out[b].Start) })
	return out
}

func expandSeries(item *Item, from, to time.Time) []Occurrence {
	days := byWeekdays(item.Timing.Recurrence.DaysOfWeek)
	if len(days) == 0 {
		return nil
	}

	dtstart := seriesDtstart(item, from)
	opt := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: days,
		Dtstart:   dtstart,
	}
	if until, ok := parseRecurDate(item.Timing.Recurrence.EndRecur); ok {
		// Inclusive bound: the series may still run on its last day.
		opt.Until = until.Add(24*time.Hour - time.Second)
	}
	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil
	}

	duration := occurrenceDuration(item)
	starts := rule.Between(from.Add(-duration), to, true)
	if len(starts) > defaultMaxOccurrences {
		starts = starts[:defaultMaxOccurrences]
	}

	out := make([]Occurrence, 0, len(starts))
	for _, start := range starts {
		start = start.Local()
		end := start.Add(duration)
		if end.Before(from) || start.After(to) {
			continue
		}
		out = append(out, Occurrence{Item: item, Start: start, End: end})
	}
	return out
}

// seriesDtstart anchors the rule at the series start date (or the window
// start when unbounded) combined with the wall-clock start time.
func seriesDtstart(item *Item, from time.Time) time.Time {
	day := from.Local()
	if d, ok := parseRecurDate(item.Timing.Recurrence.StartRecur); ok {
		day = d
	}
	ts := item.Timing.Start
	return time.Date(day.Year(), day.Month(), day.Day(),
		ts.Hour(), ts.Minute(), ts.Second(), 0, time.Local)
}

func occurrenceDuration(item *Item) time.Duration {
	start, end := occurrenceWindow(item, item.Timing.Start)
	return end.Sub(start)
}

func parseRecurDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(dateFormat, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var rruleWeekdays = map[string]rrule.Weekday{
	"SUN": rrule.SU, "MON": rrule.MO, "TUE": rrule.TU, "WED": rrule.WE,
	"THU": rrule.TH, "FRI": rrule.FR, "SAT": rrule.SA,
}

func byWeekdays(names []string) []rrule.Weekday {
	out := make([]rrule.Weekday, 0, len(names))
	for _, name := range names {
		if wd, ok := rruleWeekdays[strings.ToUpper(strings.TrimSpace(name))]; ok {
			out = append(out, wd)
		}
	}
	return out
}

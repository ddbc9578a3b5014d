package schedule

import (
	"time"

	"schedsync/internal/timecodec"
)

const dateFormat = "2006-01-02"

// ItemAt returns the item active at time t, or nil. Recurring items store
// their times as local wall-clock templates: only the H:M:S of Timing.Start
// and Timing.End is meaningful, the date and zone are ignored. Both today
// and yesterday are checked so an overnight series (end at or before start,
// which wraps past midnight) still matches after 00:00.
func (d *Document) ItemAt(t time.Time) *Item {
	if d == nil {
		return nil
	}
	local := t.Local()

	for i := range d.Items {
		item := &d.Items[i]
		if !item.Enabled {
			continue
		}

		if item.Timing.IsRecurring {
			if matchRecurringAt(item, local) {
				return item
			}
			continue
		}

		start := item.Timing.Start.Local()
		end := item.Timing.End.Local()
		if start.IsZero() || end.IsZero() {
			continue
		}
		if !local.Before(start) && local.Before(end) {
			return item
		}
	}
	return nil
}

// NextItemAfter returns the enabled item whose next occurrence starts
// soonest after t, looking up to seven days ahead for recurring series.
func (d *Document) NextItemAfter(t time.Time) (*Item, time.Time) {
	if d == nil {
		return nil, time.Time{}
	}
	local := t.Local()

	var next *Item
	var nextStart time.Time
	for i := range d.Items {
		item := &d.Items[i]
		if !item.Enabled {
			continue
		}

		var candidate time.Time
		if item.Timing.IsRecurring {
			candidate = nextRecurrenceAfter(item, local)
		} else {
			start := item.Timing.Start.Local()
			if !start.IsZero() && start.After(local) {
				candidate = start
			}
		}
		if candidate.IsZero() {
			continue
		}
		if next == nil || candidate.Before(nextStart) {
			next = item
			nextStart = candidate
		}
	}
	return next, nextStart
}

// OccurrenceEnd returns when the occurrence of item active around t ends.
func (item *Item) OccurrenceEnd(t time.Time) time.Time {
	if !item.Timing.IsRecurring {
		return item.Timing.End.Local()
	}
	local := t.Local()
	start, end := occurrenceWindow(item, local)
	if local.Before(start) {
		// Active occurrence started yesterday.
		start, end = occurrenceWindow(item, local.AddDate(0, 0, -1))
	}
	return end
}

func matchRecurringAt(item *Item, local time.Time) bool {
	// Check today and yesterday for overnight windows.
	for offset := 0; offset >= -1; offset-- {
		day := local.AddDate(0, 0, offset)
		if !recurrenceActiveOn(item, day) {
			continue
		}
		start, end := occurrenceWindow(item, day)
		if !local.Before(start) && local.Before(end) {
			return true
		}
	}
	return false
}

// recurrenceActiveOn reports whether the series has an occurrence on the
// given calendar day: within the date bounds and on a listed weekday.
func recurrenceActiveOn(item *Item, day time.Time) bool {
	ds := day.Format(dateFormat)
	rec := item.Timing.Recurrence
	if rec.StartRecur != "" && ds < rec.StartRecur {
		return false
	}
	if rec.EndRecur != "" && ds > rec.EndRecur {
		return false
	}
	for _, name := range rec.DaysOfWeek {
		if wd, ok := timecodec.WeekdayFromName(name); ok && wd == day.Weekday() {
			return true
		}
	}
	return false
}

// occurrenceWindow builds the concrete [start, end) window of the series on
// the given day from the wall-clock templates. An end at or before the start
// wraps to the next day.
func occurrenceWindow(item *Item, day time.Time) (time.Time, time.Time) {
	ts := item.Timing.Start
	te := item.Timing.End
	start := time.Date(day.Year(), day.Month(), day.Day(),
		ts.Hour(), ts.Minute(), ts.Second(), 0, time.Local)
	end := time.Date(day.Year(), day.Month(), day.Day(),
		te.Hour(), te.Minute(), te.Second(), 0, time.Local)
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}
	return start, end
}

// nextRecurrenceAfter finds the next occurrence start of a recurring item
// after the given time, scanning up to seven days ahead.
func nextRecurrenceAfter(item *Item, after time.Time) time.Time {
	if item.Timing.Start.IsZero() {
		return time.Time{}
	}
	for offset := 0; offset <= 7; offset++ {
		day := after.AddDate(0, 0, offset)
		if !recurrenceActiveOn(item, day) {
			continue
		}
		start, _ := occurrenceWindow(item, day)
		if start.After(after) {
			return start
		}
	}
	return time.Time{}
}

package schedule

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// icsByDay maps wire weekday names to iCalendar BYDAY codes.
var icsByDay = map[string]string{
	"SUN": "SU", "MON": "MO", "TUE": "TU", "WED": "WE",
	"THU": "TH", "FRI": "FR", "SAT": "SA",
}

// ToICS renders the document as an iCalendar feed. Single items become plain
// VEVENTs; recurring series carry a weekly RRULE built from their weekday
// set and end bound. Disabled items are marked with STATUS:CANCELLED rather
// than dropped, so the export stays a faithful picture of the document.
func (d *Document) ToICS() string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//schedsync//Schedule 1.0//EN")
	if d == nil {
		return cal.Serialize()
	}
	if d.ScheduleName != "" {
		cal.SetXWRCalName(d.ScheduleName)
	}

	for i := range d.Items {
		item := &d.Items[i]
		ev := cal.AddEvent(item.ID)
		ev.SetSummary(item.Title)
		if item.General.Description != "" {
			ev.SetDescription(item.General.Description)
		}
		if len(item.General.Tags) > 0 {
			ev.SetProperty(ics.ComponentPropertyCategories, strings.Join(item.General.Tags, ","))
		}
		if !item.Enabled {
			ev.SetStatus(ics.ObjectStatusCancelled)
		}
		if item.Source.URI != "" {
			ev.SetURL(item.Source.URI)
		}

		if item.Timing.IsRecurring {
			start, end := seriesExportWindow(item)
			ev.SetStartAt(start)
			ev.SetEndAt(end)
			if rule := seriesRRule(item); rule != "" {
				ev.AddRrule(rule)
			}
			continue
		}
		ev.SetStartAt(item.Timing.Start.UTC())
		ev.SetEndAt(item.Timing.End.UTC())
	}
	return cal.Serialize()
}

// seriesExportWindow picks the first concrete occurrence of the series as
// the VEVENT DTSTART/DTEND the rule repeats from.
func seriesExportWindow(item *Item) (time.Time, time.Time) {
	anchor := item.Timing.Start
	if d, ok := parseRecurDate(item.Timing.Recurrence.StartRecur); ok {
		anchor = time.Date(d.Year(), d.Month(), d.Day(),
			anchor.Hour(), anchor.Minute(), anchor.Second(), 0, time.Local)
		// Advance to the first listed weekday on or after the start bound.
		for i := 0; i < 7; i++ {
			if recurrenceActiveOn(item, anchor) {
				break
			}
			anchor = anchor.AddDate(0, 0, 1)
		}
	}
	return occurrenceWindow(item, anchor)
}

func seriesRRule(item *Item) string {
	days := make([]string, 0, len(item.Timing.Recurrence.DaysOfWeek))
	for _, name := range item.Timing.Recurrence.DaysOfWeek {
		if code, ok := icsByDay[strings.ToUpper(strings.TrimSpace(name))]; ok {
			days = append(days, code)
		}
	}
	if len(days) == 0 {
		return ""
	}
	rule := "FREQ=WEEKLY;BYDAY=" + strings.Join(days, ",")
	if until, ok := parseRecurDate(item.Timing.Recurrence.EndRecur); ok {
		last := until.Add(24*time.Hour - time.Second).UTC()
		rule += fmt.Sprintf(";UNTIL=%s", last.Format("20060102T150405Z"))
	}
	return rule
}

// Package timecodec converts between wall-clock strings, duration strings,
// millisecond counts and weekday name/number pairs.
//
// Every function is total: malformed input degrades to a defined default
// instead of returning an error. Schedules written by older tools are often
// missing components, and the adapter that sits on top of this package must
// never fail on them.
package timecodec

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultDurationMs is returned by DurationToMs for input that is not a
// duration string at all (one hour).
const DefaultDurationMs = 3600000

// Weekday names in wire order, Sunday = 0 through Saturday = 6.
var weekdayNames = [7]string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}

var weekdayNumbers = map[string]int{
	"SUN": 0, "MON": 1, "TUE": 2, "WED": 3, "THU": 4, "FRI": 5, "SAT": 6,
}

// NormalizeTime pads an "H:M:S"-shaped string to two-digit "HH:MM:SS".
// Missing or non-numeric components default to 0.
func NormalizeTime(s string) string {
	parts := strings.SplitN(s, ":", 3)
	var c [3]int
	for i := 0; i < len(parts) && i < 3; i++ {
		if n, err := strconv.Atoi(strings.TrimSpace(parts[i])); err == nil && n >= 0 {
			c[i] = n
		}
	}
	return fmt.Sprintf("%02d:%02d:%02d", c[0], c[1], c[2])
}

// DurationToMs converts a "HH:MM:SS" duration string to milliseconds.
// An empty string yields DefaultDurationMs; malformed or missing components
// count as zero.
func DurationToMs(s string) int64 {
	if strings.TrimSpace(s) == "" {
		return DefaultDurationMs
	}
	parts := strings.SplitN(s, ":", 3)
	var c [3]int64
	for i := 0; i < len(parts) && i < 3; i++ {
		if n, err := strconv.ParseInt(strings.TrimSpace(parts[i]), 10, 64); err == nil {
			c[i] = n
		}
	}
	return (c[0]*3600 + c[1]*60 + c[2]) * 1000
}

// MsToDuration converts milliseconds to a "HH:MM:SS" string. The hour
// component wraps at 24 so the result stays a wall-clock time.
func MsToDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	h := (total / 3600) % 24
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// WeekdayNamesToNumbers maps names like "MON" to calendar-grid numbers
// (Sunday = 0). Unknown names are dropped, not reported.
func WeekdayNamesToNumbers(names []string) []int {
	out := make([]int, 0, len(names))
	for _, name := range names {
		if n, ok := weekdayNumbers[strings.ToUpper(strings.TrimSpace(name))]; ok {
			out = append(out, n)
		}
	}
	return out
}

// WeekdayNumbersToNames is the inverse of WeekdayNamesToNumbers. Numbers
// outside 0..6 are dropped.
func WeekdayNumbersToNames(nums []int) []string {
	out := make([]string, 0, len(nums))
	for _, n := range nums {
		if n >= 0 && n < len(weekdayNames) {
			out = append(out, weekdayNames[n])
		}
	}
	return out
}

// WeekdayFromName resolves a single wire name to a time.Weekday.
func WeekdayFromName(name string) (time.Weekday, bool) {
	n, ok := weekdayNumbers[strings.ToUpper(strings.TrimSpace(name))]
	return time.Weekday(n), ok
}

// TimeOfDay formats the wall-clock portion of t as "HH:MM:SS".
func TimeOfDay(t time.Time) string {
	return t.Format("15:04:05")
}

// SplitClock parses a normalized "HH:MM:SS" string into components.
func SplitClock(s string) (h, m, sec int) {
	parts := strings.SplitN(NormalizeTime(s), ":", 3)
	h, _ = strconv.Atoi(parts[0])
	m, _ = strconv.Atoi(parts[1])
	sec, _ = strconv.Atoi(parts[2])
	return h, m, sec
}

// Package schedule defines the canonical Schedule Document format and the
// operations on it: file I/O, cloning and comparison, evaluation of the
// active program, and recurrence expansion.
package schedule

import "time"

// Version is the document format tag written by this client. Incoming
// documents carry their own tag which is passed through unvalidated.
const Version = "1.0"

// Document is the root object of the Schedule 1.0 format. It maps directly
// to the schedule JSON file and to the currentSchedule wire payload.
type Document struct {
	Version      string `json:"version"`
	ScheduleName string `json:"scheduleName"`
	Items        []Item `json:"schedule"`
}

// Item is one playable entry: either a single timed occurrence or a
// recurring series.
type Item struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Enabled  bool     `json:"enabled"`
	General  General  `json:"general"`
	Source   Source   `json:"source"`
	Timing   Timing   `json:"timing"`
	Behavior Behavior `json:"behavior"`
}

// General holds display metadata for the calendar UI.
type General struct {
	Description     string   `json:"description"`
	Tags            []string `json:"tags"`
	ClassNames      []string `json:"classNames"`
	TextColor       string   `json:"textColor"`
	BackgroundColor string   `json:"backgroundColor"`
	BorderColor     string   `json:"borderColor"`
}

// Source describes the playback input activated while the item runs.
type Source struct {
	Name          string         `json:"name"`
	InputKind     string         `json:"inputKind"`
	URI           string         `json:"uri"`
	InputSettings map[string]any `json:"inputSettings"`
	Transform     map[string]any `json:"transform"`
}

// Timing carries both shapes: absolute instants for single items, and a
// recurrence rule for series. Both field groups are always present; the
// recurrence values are authoritative when IsRecurring is set. For recurring
// items Start and End hold a placeholder date combined with the series
// wall-clock times.
type Timing struct {
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	IsRecurring bool       `json:"isRecurring"`
	Recurrence  Recurrence `json:"recurrence"`
}

// Recurrence bounds a weekly series: which weekdays it runs, and the
// calendar dates (YYYY-MM-DD, inclusive) between which the series is active.
// Empty bounds mean unbounded.
type Recurrence struct {
	DaysOfWeek []string `json:"daysOfWeek"`
	StartRecur string   `json:"startRecur"`
	EndRecur   string   `json:"endRecur"`
}

// Behavior controls what happens around an occurrence's runtime.
type Behavior struct {
	OnEndAction    string `json:"onEndAction"`
	PreloadSeconds int    `json:"preloadSeconds"`
}

// OnEndAction values understood by the playout server.
const (
	OnEndHide = "hide"
	OnEndNone = "none"
	OnEndStop = "stop"
)

// Input kinds understood by the playout server.
const (
	InputBrowser = "browser_source"
	InputImage   = "image_source"
	InputMedia   = "media_source"
	InputVLC     = "vlc_source"
	InputFFmpeg  = "ffmpeg_source"
)

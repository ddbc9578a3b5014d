// Package state holds the process-wide application state: connection
// status, the authoritative schedule, the editable working copy, and the
// editor dirty/sync status. All mutation goes through named setters which
// notify subscribers by topic; nothing outside this package writes fields
// directly.
package state

import (
	"fmt"
	"sync"
	"time"

	"schedsync/internal/schedule"
)

// Topics passed to subscribers when the corresponding state changes.
const (
	TopicConnection      = "connection"
	TopicRemote          = "remote"
	TopicPreview         = "preview"
	TopicEditor          = "editor"
	TopicSchedule        = "schedule"
	TopicWorkingSchedule = "workingSchedule"
	TopicCurrentView     = "currentView"
	TopicCurrentProgram  = "currentProgram"
)

// Connection statuses for the client-server link.
const (
	ConnDisconnected = "disconnected"
	ConnConnecting   = "connecting"
	ConnConnected    = "connected"
	ConnError        = "error"
)

// Editor statuses. Exactly one is observable at a time.
const (
	EditorClean   = "clean"
	EditorDirty   = "dirty"
	EditorSyncing = "syncing"
	EditorError   = "error"
)

// Preview stream statuses.
const (
	PreviewUnavailable = "unavailable"
	PreviewAvailable   = "available"
	PreviewConnecting  = "connecting"
	PreviewConnected   = "connected"
	PreviewUnknown     = "unknown"
)

// ConnectionState describes the client-server link.
type ConnectionState struct {
	Connected  bool
	Status     string
	StatusText string
}

// RemoteState describes the downstream automation link (server to playout
// engine), independent of the client-server link. Unknown is set while the
// client itself is disconnected and cannot know the real remote state.
type RemoteState struct {
	Connected        bool
	Version          string
	Status           string
	StatusText       string
	Unknown          bool
	VirtualCamActive bool
}

// PreviewState describes availability of the preview video stream.
type PreviewState struct {
	Available  bool
	Status     string
	StatusText string
}

// EditorState tracks the working copy relative to the authoritative one.
type EditorState struct {
	IsDirty      bool
	ChangeCount  int
	IsSyncing    bool
	Status       string
	StatusText   string
	LastSyncTime time.Time
}

// LoadOptions control how SetSchedule arbitrates against local edits.
type LoadOptions struct {
	// Force overwrites the working copy even if it has unsaved edits.
	Force bool
	// FromUser marks an explicit user request; a conflict with unsaved
	// edits then raises a confirmation request instead of dropping the
	// incoming document silently.
	FromUser bool
}

// Listener receives the topic of each state change.
type Listener func(topic string)

// ConfirmLoadFunc receives the incoming document when a user-initiated load
// collides with unsaved edits. Resolution is the collaborator's business:
// it typically asks the user and, on consent, calls SetSchedule again with
// Force set.
type ConfirmLoadFunc func(incoming *schedule.Document)

// ErrorFunc receives listener panics so one broken subscriber cannot take
// the store down or starve the others.
type ErrorFunc func(topic string, recovered any)

// Store is the single shared mutable object of the application. A RWMutex
// guards the fields; notifications are delivered outside the lock.
type Store struct {
	mu sync.RWMutex

	connection ConnectionState
	remote     RemoteState
	preview    PreviewState
	editor     EditorState

	schedule       *schedule.Document // authoritative, last received from server
	working        *schedule.Document // local editable copy
	currentView    string
	currentProgram *schedule.Item

	listeners   map[int]Listener
	nextID      int
	confirmLoad ConfirmLoadFunc
	onPanic     ErrorFunc
}

// NewStore returns a store with everything disconnected and no schedule.
func NewStore() *Store {
	return &Store{
		connection:  ConnectionState{Status: ConnDisconnected, StatusText: "Disconnected"},
		remote:      RemoteState{Status: ConnDisconnected, StatusText: "Disconnected"},
		preview:     PreviewState{Status: PreviewUnavailable, StatusText: "No Stream"},
		editor:      EditorState{Status: EditorClean, StatusText: "Synced"},
		currentView: "monitor",
		listeners:   make(map[int]Listener),
	}
}

// Subscribe registers a listener and returns its unsubscribe function.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// SetConfirmLoadHandler installs the conflict-resolution collaborator.
func (s *Store) SetConfirmLoadHandler(fn ConfirmLoadFunc) {
	s.mu.Lock()
	s.confirmLoad = fn
	s.mu.Unlock()
}

// SetPanicHandler installs a sink for listener panics.
func (s *Store) SetPanicHandler(fn ErrorFunc) {
	s.mu.Lock()
	s.onPanic = fn
	s.mu.Unlock()
}

func (s *Store) notify(topics ...string) {
	s.mu.RLock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	onPanic := s.onPanic
	s.mu.RUnlock()

	for _, topic := range topics {
		for _, l := range ls {
			func() {
				defer func() {
					if r := recover(); r != nil && onPanic != nil {
						onPanic(topic, r)
					}
				}()
				l(topic)
			}()
		}
	}
}

// SetConnectionStatus updates the client-server link state.
func (s *Store) SetConnectionStatus(connected bool, status, statusText string) {
	s.mu.Lock()
	s.connection = ConnectionState{Connected: connected, Status: status, StatusText: statusText}
	s.mu.Unlock()
	s.notify(TopicConnection)
}

// SetRemoteStatus updates the downstream automation link state.
func (s *Store) SetRemoteStatus(connected bool, version string) {
	s.mu.Lock()
	s.remote.Connected = connected
	s.remote.Unknown = false
	if version != "" {
		s.remote.Version = version
	}
	if connected {
		s.remote.Status = ConnConnected
		if s.remote.Version != "" {
			s.remote.StatusText = fmt.Sprintf("Connected (%s)", s.remote.Version)
		} else {
			s.remote.StatusText = "Connected"
		}
	} else {
		s.remote.Status = ConnDisconnected
		s.remote.StatusText = "Disconnected"
		s.remote.VirtualCamActive = false
	}
	s.mu.Unlock()
	s.notify(TopicRemote)
}

// SetRemoteUnknown marks the automation link state as unknowable, used while
// the client itself has no server connection.
func (s *Store) SetRemoteUnknown() {
	s.mu.Lock()
	s.remote.Connected = false
	s.remote.Unknown = true
	s.remote.Status = "unknown"
	s.remote.StatusText = "Unknown"
	s.mu.Unlock()
	s.notify(TopicRemote)
}

// SetVirtualCam records whether the output virtual camera is running.
func (s *Store) SetVirtualCam(active bool) {
	s.mu.Lock()
	s.remote.VirtualCamActive = active
	s.mu.Unlock()
	s.notify(TopicRemote)
}

// SetPreviewStatus updates the preview stream availability.
func (s *Store) SetPreviewStatus(status string) {
	s.mu.Lock()
	s.preview.Status = status
	s.preview.Available = status == PreviewAvailable || status == PreviewConnected
	switch status {
	case PreviewAvailable:
		s.preview.StatusText = "Stream Ready"
	case PreviewConnecting:
		s.preview.StatusText = "Connecting..."
	case PreviewConnected:
		s.preview.StatusText = "Stream Active"
	case PreviewUnknown:
		s.preview.StatusText = "Unknown"
	default:
		s.preview.Status = PreviewUnavailable
		s.preview.StatusText = "No Stream"
	}
	s.mu.Unlock()
	s.notify(TopicPreview)
}

// SetEditorDirty updates the dirty flag and derives the editor status.
func (s *Store) SetEditorDirty(dirty bool, changeCount int) {
	s.mu.Lock()
	s.setEditorDirtyLocked(dirty, changeCount)
	s.mu.Unlock()
	s.notify(TopicEditor)
}

func (s *Store) setEditorDirtyLocked(dirty bool, changeCount int) {
	s.editor.IsDirty = dirty
	s.editor.ChangeCount = changeCount
	if dirty {
		s.editor.Status = EditorDirty
		s.editor.StatusText = dirtyStatusText(changeCount)
	} else {
		s.editor.Status = EditorClean
		s.editor.StatusText = "Synced"
	}
}

// SetEditorSyncing toggles the syncing status. Ending a sync without error
// restores the prior clean/dirty status; a clean finish records the sync
// time.
func (s *Store) SetEditorSyncing(syncing bool) {
	s.mu.Lock()
	s.editor.IsSyncing = syncing
	if syncing {
		s.editor.Status = EditorSyncing
		s.editor.StatusText = "Syncing..."
	} else if s.editor.IsDirty {
		s.editor.Status = EditorDirty
		s.editor.StatusText = dirtyStatusText(s.editor.ChangeCount)
	} else {
		s.editor.Status = EditorClean
		s.editor.StatusText = "Synced"
		s.editor.LastSyncTime = time.Now()
	}
	s.mu.Unlock()
	s.notify(TopicEditor)
}

// SetEditorError puts the editor into the error status.
func (s *Store) SetEditorError(message string) {
	s.mu.Lock()
	s.editor.Status = EditorError
	if message == "" {
		message = "Error syncing"
	}
	s.editor.StatusText = message
	s.mu.Unlock()
	s.notify(TopicEditor)
}

// SetSchedule installs a document received from the server as the
// authoritative schedule and arbitrates the working copy:
//
//   - forced load, no working copy yet, or clean working copy: the working
//     copy becomes a clone of the document and dirty state clears;
//   - user-initiated load over a dirty working copy: local edits stay and
//     the confirm-load handler receives the incoming document;
//   - background update over a dirty working copy: dropped silently, local
//     edits win until the user acts.
func (s *Store) SetSchedule(doc *schedule.Document, opts LoadOptions) {
	s.mu.Lock()
	s.schedule = doc.Clone()

	topics := []string{}
	var confirm ConfirmLoadFunc

	switch {
	case opts.Force || s.working == nil || !s.editor.IsDirty:
		s.working = doc.Clone()
		topics = append(topics, TopicWorkingSchedule)
		if s.editor.IsDirty {
			s.setEditorDirtyLocked(false, 0)
			topics = append(topics, TopicEditor)
		}
	case opts.FromUser:
		confirm = s.confirmLoad
	}
	topics = append(topics, TopicSchedule)
	s.mu.Unlock()

	if confirm != nil {
		confirm(doc.Clone())
	}
	s.notify(topics...)
}

// SetWorkingSchedule replaces the working copy and recomputes dirtiness by
// value comparison against the authoritative schedule. Editing the working
// copy back into equality clears the dirty flag again.
func (s *Store) SetWorkingSchedule(doc *schedule.Document) {
	s.mu.Lock()
	s.working = doc.Clone()
	differs := !schedule.Equal(s.schedule, s.working)

	topics := []string{TopicWorkingSchedule}
	if differs && !s.editor.IsDirty {
		s.setEditorDirtyLocked(true, 1)
		topics = append(topics, TopicEditor)
	} else if !differs && s.editor.IsDirty {
		s.setEditorDirtyLocked(false, 0)
		topics = append(topics, TopicEditor)
	} else if differs {
		s.editor.ChangeCount++
		s.editor.StatusText = dirtyStatusText(s.editor.ChangeCount)
		topics = append(topics, TopicEditor)
	}
	s.mu.Unlock()
	s.notify(topics...)
}

// SetCurrentView records which view the UI shows.
func (s *Store) SetCurrentView(view string) {
	s.mu.Lock()
	s.currentView = view
	s.mu.Unlock()
	s.notify(TopicCurrentView)
}

// SetCurrentProgram records the item currently on air, for monitor
// highlighting.
func (s *Store) SetCurrentProgram(item *schedule.Item) {
	s.mu.Lock()
	s.currentProgram = item
	s.mu.Unlock()
	s.notify(TopicCurrentProgram)
}

// Connection returns the client-server link state.
func (s *Store) Connection() ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connection
}

// Remote returns the automation link state.
func (s *Store) Remote() RemoteState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remote
}

// Preview returns the preview stream state.
func (s *Store) Preview() PreviewState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preview
}

// Editor returns the editor state.
func (s *Store) Editor() EditorState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editor
}

// Schedule returns a clone of the authoritative schedule, or nil.
func (s *Store) Schedule() *schedule.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schedule.Clone()
}

// WorkingSchedule returns a clone of the working copy, or nil.
func (s *Store) WorkingSchedule() *schedule.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.working.Clone()
}

// CurrentView returns the active view name.
func (s *Store) CurrentView() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentView
}

// CurrentProgram returns the item currently on air, or nil.
func (s *Store) CurrentProgram() *schedule.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentProgram
}

func dirtyStatusText(count int) string {
	switch {
	case count == 1:
		return "1 unsaved change"
	case count > 1:
		return fmt.Sprintf("%d unsaved changes", count)
	default:
		return "Unsaved changes"
	}
}

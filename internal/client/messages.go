package client

import "encoding/json"

// Message is the wire envelope. Every frame in either direction is one
// JSON object with an action name and an action-specific payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Outbound actions.
const (
	ActionGetSchedule    = "getSchedule"
	ActionGetStatus      = "getStatus"
	ActionCommitSchedule = "commitSchedule"
)

// Inbound actions. Anything else is ignored; the server is free to grow
// new actions without breaking old clients.
const (
	ActionCurrentSchedule   = "currentSchedule"
	ActionCurrentStatus     = "currentStatus"
	ActionLog               = "log"
	ActionObsConnected      = "obsConnected"
	ActionObsDisconnected   = "obsDisconnected"
	ActionVirtualCamStarted = "virtualCamStarted"
	ActionVirtualCamStopped = "virtualCamStopped"
	ActionPreviewReady      = "previewReady"
	ActionPreviewError      = "previewError"
	ActionPreviewStopped    = "previewStopped"
)

// StatusPayload is the body of a currentStatus frame.
type StatusPayload struct {
	ObsConnected     bool   `json:"obsConnected"`
	ObsVersion       string `json:"obsVersion,omitempty"`
	VirtualCamActive bool   `json:"virtualCamActive"`
}

// ConnectedPayload is the body of an obsConnected frame.
type ConnectedPayload struct {
	ObsVersion string `json:"obsVersion,omitempty"`
}

// LogPayload is the body of a log frame, one server-side activity entry.
type LogPayload struct {
	Level     string `json:"level"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
}

// PreviewErrorPayload is the body of a previewError frame.
type PreviewErrorPayload struct {
	Error string `json:"error,omitempty"`
}

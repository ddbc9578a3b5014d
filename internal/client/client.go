// Package client maintains the websocket link to the schedule server: a
// perpetual connect/read/reconnect loop, outbound requests, and dispatch
// of inbound frames into the state store.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"schedsync/internal/schedule"
	"schedsync/internal/state"
)

// DefaultReconnectDelay is the fixed pause between connection attempts.
// The server lives on the same box or LAN, so there is nothing to gain
// from backoff; a steady retry keeps reconnection prompt.
const DefaultReconnectDelay = 5 * time.Second

// ActivityFunc receives server-side activity log entries for display.
type ActivityFunc func(level, message string)

// Client is the sync protocol client. One Run loop owns the connection;
// request methods are safe to call from any goroutine and silently drop
// when the link is down, mirroring how a send on a closed socket is lost.
type Client struct {
	url            string
	store          *state.Store
	log            *slog.Logger
	reconnectDelay time.Duration

	mu       sync.Mutex
	conn     *websocket.Conn
	attempts int

	// pending tracks the provenance of the next currentSchedule frame.
	// Last write wins when requests overlap; the flag is consumed by the
	// first response.
	pending         bool
	pendingFromUser bool

	onActivity ActivityFunc
}

// New returns a client for the given websocket URL.
func New(url string, store *state.Store, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		url:            url,
		store:          store,
		log:            log,
		reconnectDelay: DefaultReconnectDelay,
	}
}

// SetReconnectDelay overrides the pause between connection attempts.
func (c *Client) SetReconnectDelay(d time.Duration) {
	if d > 0 {
		c.reconnectDelay = d
	}
}

// SetActivityHandler installs the sink for server activity log frames.
func (c *Client) SetActivityHandler(fn ActivityFunc) {
	c.onActivity = fn
}

// Run connects and keeps reconnecting until the context is cancelled.
// Repeated failures are logged once at warning level and then demoted to
// debug so an absent server does not flood the log.
func (c *Client) Run(ctx context.Context) {
	for {
		if err := ctx.Err(); err != nil {
			return
		}

		c.store.SetConnectionStatus(false, state.ConnConnecting, "Connecting...")
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
		if err != nil {
			c.dialFailed(err)
			if !sleep(ctx, c.reconnectDelay) {
				return
			}
			continue
		}

		c.connected(conn)
		c.readLoop(conn)
		c.disconnected()

		if !sleep(ctx, c.reconnectDelay) {
			return
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func (c *Client) dialFailed(err error) {
	c.mu.Lock()
	c.attempts++
	attempts := c.attempts
	c.mu.Unlock()

	if attempts == 1 {
		c.log.Warn("server unreachable, retrying", "url", c.url, "error", err)
	} else {
		c.log.Debug("reconnect failed", "url", c.url, "attempt", attempts, "error", err)
	}
	c.store.SetConnectionStatus(false, state.ConnDisconnected, "Disconnected")
}

func (c *Client) connected(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	wasRetrying := c.attempts > 0
	c.attempts = 0
	c.mu.Unlock()

	if wasRetrying {
		c.log.Info("reconnected", "url", c.url)
	} else {
		c.log.Info("connected", "url", c.url)
	}
	c.store.SetConnectionStatus(true, state.ConnConnected, "Connected")

	// Fresh link, fresh state: pull the schedule and status rather than
	// trusting anything cached from before the outage.
	c.RequestSchedule(false)
	c.RequestStatus()
}

func (c *Client) disconnected() {
	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	c.log.Info("connection lost", "url", c.url)
	c.store.SetConnectionStatus(false, state.ConnDisconnected, "Disconnected")
	// With no link the downstream states are unknowable, not "off".
	c.store.SetRemoteUnknown()
	c.store.SetPreviewStatus(state.PreviewUnknown)
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug("read failed", "error", err)
			}
			return
		}
		c.handleMessage(msg)
	}
}

// Send writes one frame. A send while disconnected is dropped: request
// methods are fire-and-forget and the connect handshake re-requests
// whatever matters once the link is back.
func (c *Client) Send(action string, payload any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		c.log.Debug("dropping frame, not connected", "action", action)
		return nil
	}

	msg := Message{Action: action}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", action, err)
		}
		msg.Payload = data
	}
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("send %s: %w", action, err)
	}
	return nil
}

// RequestSchedule asks the server for the current schedule. fromUser marks
// an explicit user request so the eventual response may override local
// edits after confirmation; background refreshes never do.
func (c *Client) RequestSchedule(fromUser bool) {
	c.mu.Lock()
	c.pending = true
	c.pendingFromUser = fromUser
	c.mu.Unlock()

	if err := c.Send(ActionGetSchedule, nil); err != nil {
		c.log.Warn("schedule request failed", "error", err)
	}
}

// RequestStatus asks the server for the automation link status.
func (c *Client) RequestStatus() {
	if err := c.Send(ActionGetStatus, nil); err != nil {
		c.log.Warn("status request failed", "error", err)
	}
}

// CommitSchedule pushes the working schedule to the server. The editor
// enters syncing; the server's currentSchedule echo ends it.
func (c *Client) CommitSchedule(doc *schedule.Document) error {
	if doc == nil {
		return fmt.Errorf("no schedule to commit")
	}
	c.store.SetEditorSyncing(true)
	if err := c.Send(ActionCommitSchedule, doc); err != nil {
		c.store.SetEditorError("Error saving schedule")
		return err
	}
	return nil
}

// handleMessage dispatches one inbound frame. Unknown actions are ignored.
func (c *Client) handleMessage(msg Message) {
	switch msg.Action {
	case ActionCurrentSchedule:
		c.handleCurrentSchedule(msg.Payload)
	case ActionCurrentStatus:
		var p StatusPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.log.Warn("bad currentStatus payload", "error", err)
			return
		}
		c.store.SetRemoteStatus(p.ObsConnected, p.ObsVersion)
		c.store.SetVirtualCam(p.VirtualCamActive)
	case ActionObsConnected:
		var p ConnectedPayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				c.log.Warn("bad obsConnected payload", "error", err)
			}
		}
		c.store.SetRemoteStatus(true, p.ObsVersion)
	case ActionObsDisconnected:
		c.store.SetRemoteStatus(false, "")
	case ActionVirtualCamStarted:
		c.store.SetVirtualCam(true)
	case ActionVirtualCamStopped:
		c.store.SetVirtualCam(false)
	case ActionPreviewReady:
		c.store.SetPreviewStatus(state.PreviewAvailable)
	case ActionPreviewError:
		var p PreviewErrorPayload
		if len(msg.Payload) > 0 {
			_ = json.Unmarshal(msg.Payload, &p)
		}
		if p.Error != "" {
			c.log.Warn("preview error", "error", p.Error)
		}
		c.store.SetPreviewStatus(state.PreviewUnavailable)
	case ActionPreviewStopped:
		c.store.SetPreviewStatus(state.PreviewUnavailable)
	case ActionLog:
		// The payload is either free text or a structured entry.
		var text string
		if err := json.Unmarshal(msg.Payload, &text); err == nil {
			if c.onActivity != nil {
				c.onActivity("info", text)
			}
			return
		}
		var p LogPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.log.Warn("bad log payload", "error", err)
			return
		}
		if p.Level == "" {
			p.Level = "info"
		}
		if c.onActivity != nil {
			c.onActivity(p.Level, p.Message)
		}
	default:
		c.log.Debug("ignoring unknown action", "action", msg.Action)
	}
}

func (c *Client) handleCurrentSchedule(payload json.RawMessage) {
	doc, err := schedule.Parse(payload)
	if err != nil {
		c.log.Warn("bad schedule from server", "error", err)
		return
	}

	c.mu.Lock()
	fromUser := c.pending && c.pendingFromUser
	c.pending = false
	c.pendingFromUser = false
	c.mu.Unlock()

	syncing := c.store.Editor().IsSyncing
	if syncing {
		// The echo of our own commit: the server state now matches what
		// the user saved, so it replaces the working copy outright.
		c.store.SetSchedule(doc, state.LoadOptions{Force: true})
		c.store.SetEditorSyncing(false)
		return
	}
	c.store.SetSchedule(doc, state.LoadOptions{FromUser: fromUser})
}

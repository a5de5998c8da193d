// Package notify delivers transient user notifications (toasts). The
// core depends only on the Notifier interface; the concrete delivery
// channel (WebSocket hub, log, nothing) is injected.
package notify

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Severity is the toast severity level.
type Severity string

const (
	SeverityPending Severity = "pending"
	SeveritySuccess Severity = "success"
	SeverityFailure Severity = "failure"
)

// EventToast is the WebSocket event type carrying a toast.
const EventToast = "toast"

// Notifier is the toast capability the action layer depends on.
// Pending returns a toast ID; passing it to Success or Failure lets the
// UI replace the in-progress toast with the outcome.
type Notifier interface {
	Pending(msg string) string
	Success(id, msg string)
	Failure(id, msg string)
}

// Broadcaster is the slice of the WebSocket hub the notifier uses.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{}) error
}

// Toast is the payload pushed to connected UIs.
type Toast struct {
	ID       string   `json:"id"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// HubNotifier broadcasts toasts over the WebSocket hub.
type HubNotifier struct {
	hub    Broadcaster
	logger zerolog.Logger
}

var _ Notifier = (*HubNotifier)(nil)

// NewHubNotifier creates a hub-backed notifier.
func NewHubNotifier(hub Broadcaster, logger zerolog.Logger) *HubNotifier {
	return &HubNotifier{
		hub:    hub,
		logger: logger.With().Str("component", "notify").Logger(),
	}
}

func (n *HubNotifier) Pending(msg string) string {
	id := uuid.NewString()
	n.push(Toast{ID: id, Severity: SeverityPending, Message: msg})
	return id
}

func (n *HubNotifier) Success(id, msg string) {
	n.push(Toast{ID: id, Severity: SeveritySuccess, Message: msg})
}

func (n *HubNotifier) Failure(id, msg string) {
	n.push(Toast{ID: id, Severity: SeverityFailure, Message: msg})
}

func (n *HubNotifier) push(t Toast) {
	if err := n.hub.Broadcast(EventToast, t); err != nil {
		n.logger.Warn().Err(err).Str("severity", string(t.Severity)).Msg("failed to broadcast toast")
	}
}

// Nop is a no-op notifier for tests and headless runs.
type Nop struct{}

var _ Notifier = Nop{}

func (Nop) Pending(msg string) string { return "" }
func (Nop) Success(id, msg string)    {}
func (Nop) Failure(id, msg string)    {}

package downloads

// WebSocket event types emitted by this package.
const (
	// EventUpdated fires after a refresh replaces the aggregated list.
	EventUpdated = "downloads:updated"

	// EventError fires when a refresh fails. The previous list stays
	// visible; the event carries the failure message.
	EventError = "downloads:error"
)

// UpdatedPayload is the payload of EventUpdated.
type UpdatedPayload struct {
	Count int `json:"count"`
}

// ErrorPayload is the payload of EventError.
type ErrorPayload struct {
	Error string `json:"error"`
}

package models

// EventStatus describes how far an in-app event progressed through the
// SDK delivery pipeline.
type EventStatus string

const (
	// EventPrepared means a "preparing data" entry was seen but no send
	// confirmation followed.
	EventPrepared EventStatus = "prepared"
	// EventSent means the prepare entry was matched with a successful
	// send confirmation for the same task id.
	EventSent EventStatus = "sent"
)

// PreparedEvent is an in-app event staged by the SDK, keyed by the task
// id that links its prepare entry to a later send confirmation.
type PreparedEvent struct {
	TaskID    string                 `json:"task_id"`
	Payload   map[string]interface{} `json:"payload"`
	EventName string                 `json:"event_name,omitempty"`
}

// CorrelatedEvent is a PreparedEvent annotated with its delivery
// outcome and the log lines that justify it.
type CorrelatedEvent struct {
	PreparedEvent
	Sent     bool        `json:"sent"`
	Status   EventStatus `json:"status"`
	Evidence []string    `json:"evidence"`
}

// EventVerdict is the result of an in-app event verification query.
type EventVerdict struct {
	Found  bool             `json:"found"`
	Event  *CorrelatedEvent `json:"event,omitempty"`
	Reason string           `json:"reason,omitempty"`
}

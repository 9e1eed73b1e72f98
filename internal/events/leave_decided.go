package events

import "time"

const LeaveDecidedTopic = "hr.leave.decided.v1"

type LeaveDecidedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	LeaveID    string    `json:"leave_id"`
	LeaveRef   string    `json:"leave_ref"`
	EmployeeID string    `json:"employee_id"`
	Action     string    `json:"action"`
	DecidedBy  string    `json:"decided_by"`
	OccurredAt time.Time `json:"occurred_at"`
}

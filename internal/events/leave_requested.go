package events

import "time"

const LeaveRequestedTopic = "hr.leave.requested.v1"

type LeaveRequestedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	LeaveID    string    `json:"leave_id"`
	LeaveRef   string    `json:"leave_ref"`
	EmployeeID string    `json:"employee_id"`
	TotalDays  int       `json:"total_days"`
	OccurredAt time.Time `json:"occurred_at"`
}

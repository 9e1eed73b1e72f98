package audit

type AuditResponse struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	ActorID   string `json:"actor_id"`
	ActorName string `json:"actor_name,omitempty"`
	LeaveID   string `json:"leave_id"`
	Details   string `json:"details"`
	Timestamp string `json:"timestamp"`
}

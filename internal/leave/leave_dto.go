package leave

type CreateLeaveRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason" binding:"required,min=10"`
}

type DecideLeaveRequest struct {
	Comment string `json:"comment"`
}

type LeaveResponse struct {
	ID              string  `json:"id"`
	LeaveRef        string  `json:"leave_ref"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    string  `json:"employee_name,omitempty"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	TotalDays       int     `json:"total_days"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	DecidedBy       *string `json:"decided_by,omitempty"`
	DeciderName     *string `json:"decider_name,omitempty"`
	DecidedAt       *string `json:"decided_at,omitempty"`
	DecisionComment *string `json:"decision_comment,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

package leave

import (
	"time"

	"go-leavetrack/internal/auth"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Leave struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LeaveRef string    `gorm:"type:varchar(20);uniqueIndex;not null"`

	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_employee_created"`
	StartDate  time.Time `gorm:"type:date;not null"`
	EndDate    time.Time `gorm:"type:date;not null"`
	TotalDays  int       `gorm:"type:int;not null;default:1"`
	Reason     string    `gorm:"type:text;not null"`

	Status          string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_leaves_status"`
	DecidedBy       *uuid.UUID `gorm:"type:uuid"`
	DecidedAt       *time.Time
	DecisionComment *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"index:idx_leaves_employee_created"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_leaves_deleted_at"`

	Employee *auth.User `gorm:"foreignKey:EmployeeID"`
	Decider  *auth.User `gorm:"foreignKey:DecidedBy"`
}

package audit

import (
	"time"

	"go-leavetrack/internal/auth"

	"github.com/google/uuid"
)

const (
	ActionApproved = "approved"
	ActionRejected = "rejected"
)

// AuditLog rows are append-only: created once after a completed decision,
// never updated or deleted. They reference the decided leave request by id
// only, so removing a request could never cascade into its trail.
type AuditLog struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Action  string    `gorm:"type:varchar(10);not null"`
	ActorID uuid.UUID `gorm:"type:uuid;not null"`
	LeaveID uuid.UUID `gorm:"type:uuid;not null;index"`
	Details string    `gorm:"type:text;not null"`

	CreatedAt time.Time `gorm:"index"`

	Actor *auth.User `gorm:"foreignKey:ActorID"`
}

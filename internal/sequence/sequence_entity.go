package sequence

import "time"

// Counter is a named monotonic counter row. last_value only ever moves
// forward via the atomic upsert in Repository.Next.
type Counter struct {
	Name      string `gorm:"type:varchar(50);primaryKey"`
	LastValue int64  `gorm:"type:bigint;not null;default:0"`
	UpdatedAt time.Time
}

func (Counter) TableName() string {
	return "sequence_counters"
}

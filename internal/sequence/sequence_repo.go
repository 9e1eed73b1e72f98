package sequence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// LeaveRefCounter is the counter backing human-readable leave identifiers.
const LeaveRefCounter = "leaveId"

//go:generate mockgen -destination=mock/sequence_repo_mock.go -package=mock . Repository
type Repository interface {
	// Next returns the next value of the named counter. Every call returns
	// a distinct value, increasing by 1 per call. A caller that discards a
	// value after a downstream failure leaves a gap; that is acceptable
	// and not compensated for here.
	Next(ctx context.Context, name string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Next(ctx context.Context, name string) (int64, error) {
	var nextValue int64

	// Single atomic UPSERT-and-increment so concurrent callers never
	// observe a lost update. A read-then-write pair would race.
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO sequence_counters (name, last_value, updated_at)
		VALUES (?, 1, now())
		ON CONFLICT (name) DO UPDATE
		SET last_value = sequence_counters.last_value + 1, updated_at = now()
		RETURNING last_value
	`, name).Scan(&nextValue).Error

	if err != nil {
		return 0, err
	}

	return nextValue, nil
}

// FormatLeaveRef renders a counter value in the persisted LV-#### form:
// zero-padded to 4 digits, growing unbounded above that (1 -> LV-0001,
// 12345 -> LV-12345). External references carry this exact format.
func FormatLeaveRef(n int64) string {
	return fmt.Sprintf("LV-%04d", n)
}

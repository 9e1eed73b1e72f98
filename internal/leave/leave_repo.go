package leave

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Leave) error
	FindByID(ctx context.Context, id string) (*Leave, error)
	FindAllByEmployee(ctx context.Context, employeeID string) ([]Leave, error)
	FindAll(ctx context.Context, status string) ([]Leave, error)
	// UpdateDecision conditionally moves a pending request into a terminal
	// status. Returns the number of rows changed: 0 means another decision
	// won the race (or the request is already decided).
	UpdateDecision(ctx context.Context, id, status string, decidedBy uuid.UUID, decidedAt time.Time, comment string) (int64, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, l *Leave) error {
	if r.tx == nil {
		return r.db.WithContext(ctx).Create(l).Error
	}

	// Inside a caller transaction the insert must ride that tx, not
	// gorm's own connection, or a later rollback leaves the row behind.
	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now

	_, err := r.tx.ExecContext(ctx, `
		INSERT INTO leaves (
			id, leave_ref, employee_id, start_date, end_date,
			total_days, reason, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, l.ID, l.LeaveRef, l.EmployeeID, l.StartDate, l.EndDate,
		l.TotalDays, l.Reason, l.Status, l.CreatedAt, l.UpdatedAt)
	return err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Leave, error) {
	var l Leave
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Preload("Decider").
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindAllByEmployee(ctx context.Context, employeeID string) ([]Leave, error) {
	var leaves []Leave
	err := r.db.WithContext(ctx).
		Preload("Decider").
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindAll(ctx context.Context, status string) ([]Leave, error) {
	db := r.db.WithContext(ctx).
		Preload("Employee").
		Preload("Decider").
		Order("created_at DESC")

	if status != "" {
		db = db.Where("status = ?", status)
	}

	var leaves []Leave
	err := db.Find(&leaves).Error
	return leaves, err
}

func (r *repository) UpdateDecision(ctx context.Context, id, status string, decidedBy uuid.UUID, decidedAt time.Time, comment string) (int64, error) {
	// The status guard in the WHERE clause is what makes two concurrent
	// decisions on the same request mutually exclusive.
	if r.tx != nil {
		res, err := r.tx.ExecContext(ctx, `
			UPDATE leaves
			SET status = $2, decided_by = $3, decided_at = $4,
				decision_comment = $5, updated_at = now()
			WHERE id = $1 AND status = $6 AND deleted_at IS NULL
		`, id, status, decidedBy, decidedAt, comment, StatusPending)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	}

	res := r.db.WithContext(ctx).
		Model(&Leave{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"status":           status,
			"decided_by":       decidedBy,
			"decided_at":       decidedAt,
			"decision_comment": comment,
		})
	return res.RowsAffected, res.Error
}

package audit

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=audit_repo.go -destination=mock/audit_repo_mock.go -package=mock
type Repository interface {
	// Create appends one entry. There is deliberately no update or delete.
	Create(ctx context.Context, entry *AuditLog) error
	FindRecent(ctx context.Context, limit int) ([]AuditLog, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, entry *AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindRecent(ctx context.Context, limit int) ([]AuditLog, error) {
	var entries []AuditLog
	err := r.db.WithContext(ctx).
		Preload("Actor").
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

package repo

import (
	"RecipeKeeper/internal/model"
	"context"

	"gorm.io/gorm"
)

// AuditRepository — журнал действий, только добавление и чтение.
type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, limit, offset int) ([]model.AuditLog, error)
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) Create(ctx context.Context, entry *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepo) List(ctx context.Context, limit, offset int) ([]model.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var entries []model.AuditLog
	err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Offset(offset).Find(&entries).Error
	return entries, err
}

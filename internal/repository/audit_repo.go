package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/amjkhan-git/HMCC-Calendar/internal/models"
)

type AuditRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.AuditEntry) error
	ListByDateRecord(ctx context.Context, dateRecordID string) ([]models.AuditEntry, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Create appends an entry inside tx so it commits or rolls back together with
// the state change it describes.
func (r *auditRepository) Create(ctx context.Context, tx *gorm.DB, entry *models.AuditEntry) error {
	return tx.WithContext(ctx).Create(entry).Error
}

// ListByDateRecord returns the history of one record, newest first.
func (r *auditRepository) ListByDateRecord(ctx context.Context, dateRecordID string) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	err := r.db.WithContext(ctx).
		Where("date_record_id = ?", dateRecordID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

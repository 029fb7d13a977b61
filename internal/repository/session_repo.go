package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/amjkhan-git/HMCC-Calendar/internal/models"
)

type SessionRepository interface {
	Create(ctx context.Context, session *models.AdminSession) error
	FindValid(ctx context.Context, token string, now time.Time) (*models.AdminSession, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.AdminSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) FindValid(ctx context.Context, token string, now time.Time) (*models.AdminSession, error) {
	var s models.AdminSession
	err := r.db.WithContext(ctx).
		Where("token = ? AND expires_at > ?", token, now).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) DeleteByToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.AdminSession{}).Error
}

// DeleteExpired removes sessions past their expiry and returns how many went.
func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.AdminSession{})
	return res.RowsAffected, res.Error
}

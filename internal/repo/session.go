package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/attendance/internal/models"
	"gorm.io/gorm/clause"
)

func (r *GormRepo) CreateSession(ctx context.Context, s *models.Session) error {
	return translate(r.DB.WithContext(ctx).Omit(clause.Associations).Create(s).Error)
}

// FindSessionWithUser loads the session together with its owner in one
// query.
func (r *GormRepo) FindSessionWithUser(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	err := r.DB.WithContext(ctx).
		Joins("User").
		Where("sessions.id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *GormRepo) UpdateSessionExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	return translate(r.DB.WithContext(ctx).Model(&models.Session{}).
		Where("id = ?", id).
		Update("expires_at", expiresAt).Error)
}

// DeleteSession is idempotent: deleting a missing session is not an error.
func (r *GormRepo) DeleteSession(ctx context.Context, id string) error {
	return translate(r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error)
}

func (r *GormRepo) DeleteUserSessions(ctx context.Context, userID string) (int64, error) {
	res := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Session{})
	return res.RowsAffected, translate(res.Error)
}

package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/attendance/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *GormRepo) CreateResetToken(ctx context.Context, t *models.PasswordResetToken) error {
	return translate(r.DB.WithContext(ctx).Omit(clause.Associations).Create(t).Error)
}

func (r *GormRepo) FindResetTokenByHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	if err := r.DB.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// ConsumeResetToken burns the token and stores the new password hash in one
// transaction. The password is only written when this caller won the
// conditional update.
func (r *GormRepo) ConsumeResetToken(ctx context.Context, tokenID, userID, passwordHash string, usedAt time.Time) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := markUsed(tx, tokenID, usedAt); err != nil {
			return err
		}

		res := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("password_hash", passwordHash)
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// markUsed sets used_at only if it is still NULL. A zero-row update means
// another caller consumed the token first.
func markUsed(db *gorm.DB, tokenID string, usedAt time.Time) error {
	res := db.Model(&models.PasswordResetToken{}).
		Where("id = ? AND used_at IS NULL", tokenID).
		Update("used_at", usedAt)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyConsumed
	}
	return nil
}

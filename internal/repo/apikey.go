package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/attendance/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *GormRepo) CreateAPIKey(ctx context.Context, k *models.APIKey) error {
	return translate(r.DB.WithContext(ctx).Omit(clause.Associations).Create(k).Error)
}

func (r *GormRepo) FindAPIKeyByHash(ctx context.Context, keyHash string) (*models.APIKey, error) {
	var k models.APIKey
	if err := r.DB.WithContext(ctx).Where("key_hash = ?", keyHash).First(&k).Error; err != nil {
		return nil, translate(err)
	}
	return &k, nil
}

func (r *GormRepo) FindAPIKeyByID(ctx context.Context, id string) (*models.APIKey, error) {
	var k models.APIKey
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&k).Error; err != nil {
		return nil, translate(err)
	}
	return &k, nil
}

func (r *GormRepo) ListAPIKeys(ctx context.Context) ([]models.APIKey, error) {
	var keys []models.APIKey
	if err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&keys).Error; err != nil {
		return nil, translate(err)
	}
	return keys, nil
}

// ToggleAPIKey flips is_active in a single statement and returns the row as
// it is after the flip.
func (r *GormRepo) ToggleAPIKey(ctx context.Context, id string) (*models.APIKey, error) {
	var k models.APIKey
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.APIKey{}).
			Where("id = ?", id).
			Update("is_active", gorm.Expr("NOT is_active"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("id = ?", id).First(&k).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &k, nil
}

func (r *GormRepo) TouchAPIKey(ctx context.Context, id string, at time.Time) error {
	return translate(r.DB.WithContext(ctx).Model(&models.APIKey{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error)
}

func (r *GormRepo) DeleteAPIKey(ctx context.Context, id string) (bool, error) {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.APIKey{})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

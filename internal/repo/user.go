package repo

import (
	"context"

	"github.com/Skotchmaster/attendance/internal/models"
	"gorm.io/gorm/clause"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return translate(r.DB.WithContext(ctx).Omit(clause.Associations).Create(u).Error)
}

func (r *GormRepo) userBy(ctx context.Context, column, value string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where(column+" = ?", value).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormRepo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.userBy(ctx, "id", id)
}

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.userBy(ctx, "email", email)
}

func (r *GormRepo) FindUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.userBy(ctx, "phone", phone)
}

func (r *GormRepo) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

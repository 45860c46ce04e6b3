package repository

import (
	"context"
	"errors"
	"fmt"

	"coaching-payments/internal/apperror"
	"coaching-payments/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdminUserRepository interface {
	Upsert(ctx context.Context, user *model.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*model.AdminUser, error)
}

type adminUserRepoImpl struct {
	db *gorm.DB
}

func NewAdminUserRepository(db *gorm.DB) AdminUserRepository {
	return &adminUserRepoImpl{db: db}
}

// Upsert creates the admin or resets name, password and role of an existing one.
func (r *adminUserRepoImpl) Upsert(ctx context.Context, user *model.AdminUser) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "password_hash", "role", "updated_at"}),
	}).Create(user).Error
}

func (r *adminUserRepoImpl) FindByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
	var user model.AdminUser
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Admin user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find admin user: %w", err)
	}

	return &user, nil
}

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

type CourseAccessRepository interface {
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, access *model.CourseAccess) (created bool, err error)
	FindByPaymentID(ctx context.Context, paymentID string) (*model.CourseAccess, error)
	CountByPaymentID(ctx context.Context, paymentID string) (int64, error)
}

type courseAccessRepoImpl struct {
	db *gorm.DB
}

func NewCourseAccessRepository(db *gorm.DB) CourseAccessRepository {
	return &courseAccessRepoImpl{
		db: db,
	}
}

// CreateIfAbsent inserts access unless one already exists for its payment.
// created is false when the insert was a no-op.
func (r *courseAccessRepoImpl) CreateIfAbsent(ctx context.Context, tx *gorm.DB, access *model.CourseAccess) (bool, error) {
	if access.ID == "" {
		access.ID = uuid.NewString()
	}

	result := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_id"}},
		DoNothing: true,
	}).Create(access)
	if result.Error != nil {
		return false, fmt.Errorf("create course access for payment %s: %w", access.PaymentID, result.Error)
	}

	return result.RowsAffected > 0, nil
}

func (r *courseAccessRepoImpl) FindByPaymentID(ctx context.Context, paymentID string) (*model.CourseAccess, error) {
	var access model.CourseAccess
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		First(&access).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Course access not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find course access: %w", err)
	}

	return &access, nil
}

func (r *courseAccessRepoImpl) CountByPaymentID(ctx context.Context, paymentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CourseAccess{}).
		Where("payment_id = ?", paymentID).
		Count(&count).Error

	return count, err
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coaching-payments/internal/apperror"
	"coaching-payments/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository interface {
	CreatePending(ctx context.Context, payment *model.Payment) error
	FindByID(ctx context.Context, paymentID string) (*model.Payment, error)
	FindByOrderRef(ctx context.Context, orderRef string) (*model.Payment, error)
	FindByOrderRefForUpdate(ctx context.Context, tx *gorm.DB, orderRef string) (*model.Payment, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, orderRef string, status model.PaymentStatus, metadata *model.PaymentMetadata) (*model.Payment, error)
}

type paymentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepoImpl{
		db: db,
	}
}

// CreatePending inserts payment as pending. An existing orderRef is a
// Conflict error and the stored row is left untouched.
func (r *paymentRepoImpl) CreatePending(ctx context.Context, payment *model.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	payment.Status = model.PaymentStatusPending

	err := r.db.WithContext(ctx).Create(payment).Error
	if isDuplicateKey(err) {
		return apperror.Conflict("Payment with this order reference already exists", err)
	}
	if err != nil {
		return fmt.Errorf("create payment %s: %w", payment.OrderRef, err)
	}
	return nil
}

func (r *paymentRepoImpl) FindByID(ctx context.Context, paymentID string) (*model.Payment, error) {
	return r.findOne(r.db.WithContext(ctx), "id = ?", paymentID)
}

func (r *paymentRepoImpl) FindByOrderRef(ctx context.Context, orderRef string) (*model.Payment, error) {
	return r.findOne(r.db.WithContext(ctx), "order_ref = ?", orderRef)
}

// FindByOrderRefForUpdate locks the row until tx ends. sqlite ignores the lock
// clause; its writer lock serialises the transaction instead.
func (r *paymentRepoImpl) FindByOrderRefForUpdate(ctx context.Context, tx *gorm.DB, orderRef string) (*model.Payment, error) {
	return r.findOne(tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "order_ref = ?", orderRef)
}

func (r *paymentRepoImpl) UpdateStatus(ctx context.Context, tx *gorm.DB, orderRef string, status model.PaymentStatus, metadata *model.PaymentMetadata) (*model.Payment, error) {
	payment, err := r.findOne(tx.WithContext(ctx), "order_ref = ?", orderRef)
	if err != nil {
		return nil, err
	}

	payment.Status = status
	payment.Metadata = metadata
	payment.UpdatedAt = time.Now()

	result := tx.WithContext(ctx).Model(payment).
		Select("status", "metadata", "updated_at").
		Updates(payment)
	if result.Error != nil {
		return nil, fmt.Errorf("update payment %s: %w", orderRef, result.Error)
	}

	return payment, nil
}

func (r *paymentRepoImpl) findOne(q *gorm.DB, query string, arg string) (*model.Payment, error) {
	var payment model.Payment
	err := q.Where(query, arg).First(&payment).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Payment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find payment: %w", err)
	}

	return &payment, nil
}

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
)

type ContactRepository interface {
	Create(ctx context.Context, contact *model.Contact) error
	UpdateStatus(ctx context.Context, id string, status model.ContactStatus) (*model.Contact, error)
	Delete(ctx context.Context, id string) error
}

type contactRepoImpl struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepoImpl{
		db: db,
	}
}

func (r *contactRepoImpl) Create(ctx context.Context, contact *model.Contact) error {
	if contact.ID == "" {
		contact.ID = uuid.NewString()
	}
	if contact.Status == "" {
		contact.Status = model.ContactStatusNew
	}
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *contactRepoImpl) UpdateStatus(ctx context.Context, id string, status model.ContactStatus) (*model.Contact, error) {
	var contact model.Contact
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Contact{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":     status,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Where("id = ?", id).First(&contact).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Contact not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update contact %s: %w", id, err)
	}

	return &contact, nil
}

func (r *contactRepoImpl) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Contact{})
	if result.Error != nil {
		return fmt.Errorf("delete contact %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("Contact not found")
	}
	return nil
}

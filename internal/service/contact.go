package service

import (
	"context"
	"strings"

	"coaching-payments/internal/dto"
	"coaching-payments/internal/model"
	"coaching-payments/internal/repository"
	"coaching-payments/internal/validation"

	"go.uber.org/zap"
)

type ContactService interface {
	Submit(ctx context.Context, req dto.ContactRequest) (*model.Contact, error)
	UpdateStatus(ctx context.Context, id string, req dto.UpdateContactStatusRequest) (*model.Contact, error)
	Delete(ctx context.Context, id string) error
}

type contactServiceImpl struct {
	contactRepo repository.ContactRepository
	validator   *validation.Validator
	logger      *zap.Logger
}

func NewContactService(contactRepo repository.ContactRepository, validator *validation.Validator, logger *zap.Logger) ContactService {
	return &contactServiceImpl{
		contactRepo: contactRepo,
		validator:   validator,
		logger:      logger.With(zap.String("component", "contact_service")),
	}
}

func (s *contactServiceImpl) Submit(ctx context.Context, req dto.ContactRequest) (*model.Contact, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Message = strings.TrimSpace(req.Message)
	if req.CourseInterest != nil {
		ci := strings.TrimSpace(*req.CourseInterest)
		if ci == "" {
			req.CourseInterest = nil
		} else {
			req.CourseInterest = &ci
		}
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	contact := &model.Contact{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Message:        req.Message,
		CourseInterest: req.CourseInterest,
		Status:         model.ContactStatusNew,
	}
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, err
	}

	s.logger.Info("contact request saved", zap.String("contact_id", contact.ID))
	return contact, nil
}

func (s *contactServiceImpl) UpdateStatus(ctx context.Context, id string, req dto.UpdateContactStatusRequest) (*model.Contact, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.contactRepo.UpdateStatus(ctx, id, model.ContactStatus(req.Status))
}

func (s *contactServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.contactRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("contact request deleted", zap.String("contact_id", id))
	return nil
}

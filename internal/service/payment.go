package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coaching-payments/internal/apperror"
	"coaching-payments/internal/client"
	"coaching-payments/internal/dto"
	"coaching-payments/internal/events"
	"coaching-payments/internal/model"
	"coaching-payments/internal/repository"
	"coaching-payments/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const paymentCurrency = "UAH"

type PaymentService interface {
	Checkout(ctx context.Context, req dto.CheckoutRequest, withForm bool) (*dto.CheckoutResponse, error)
	HandleWebhook(ctx context.Context, data, signature string) (*dto.WebhookResponse, error)
	GetPayment(ctx context.Context, paymentID string) (*dto.PaymentStatusResponse, error)
}

type PaymentServiceConfig struct {
	BaseURL        string
	AccessValidity time.Duration
	EventsTopic    string
}

type paymentServiceImpl struct {
	db           *gorm.DB
	liqpayClient client.LiqpayClient
	courseRepo   repository.CourseRepository
	paymentRepo  repository.PaymentRepository
	accessRepo   repository.CourseAccessRepository
	outboxRepo   repository.OutboxRepository
	validator    *validation.Validator
	cfg          PaymentServiceConfig
	logger       *zap.Logger
	now          func() time.Time
}

func NewPaymentService(
	db *gorm.DB,
	liqpayClient client.LiqpayClient,
	courseRepo repository.CourseRepository,
	paymentRepo repository.PaymentRepository,
	accessRepo repository.CourseAccessRepository,
	outboxRepo repository.OutboxRepository,
	validator *validation.Validator,
	cfg PaymentServiceConfig,
	logger *zap.Logger,
) PaymentService {
	if cfg.AccessValidity <= 0 {
		cfg.AccessValidity = 365 * 24 * time.Hour
	}
	return &paymentServiceImpl{
		db:           db,
		liqpayClient: liqpayClient,
		courseRepo:   courseRepo,
		paymentRepo:  paymentRepo,
		accessRepo:   accessRepo,
		outboxRepo:   outboxRepo,
		validator:    validator,
		cfg:          cfg,
		logger:       logger.With(zap.String("component", "payment_service")),
		now:          time.Now,
	}
}

func newOrderRef(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("liqpay_%d_%s", now.UnixMilli(), suffix)
}

// Checkout records a pending Payment and returns the signed gateway request.
// The Payment row is kept even if signing fails afterwards.
func (s *paymentServiceImpl) Checkout(ctx context.Context, req dto.CheckoutRequest, withForm bool) (*dto.CheckoutResponse, error) {
	req.CourseID = strings.TrimSpace(req.CourseID)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course, err := s.courseRepo.FindByID(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	payment := &model.Payment{
		ID:            uuid.NewString(),
		OrderRef:      newOrderRef(s.now()),
		CourseID:      course.ID,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		Amount:        course.Price,
		Currency:      paymentCurrency,
	}
	if err := s.paymentRepo.CreatePending(ctx, payment); err != nil {
		return nil, err
	}

	signed, err := s.liqpayClient.BuildSignedRequest(client.CheckoutParams{
		Amount:             payment.Amount,
		Currency:           payment.Currency,
		Description:        "Оплата курсу: " + course.Title,
		OrderRef:           payment.OrderRef,
		ResultURL:          fmt.Sprintf("%s/payment/success?payment_id=%s", s.cfg.BaseURL, payment.ID),
		ServerURL:          s.cfg.BaseURL + "/api/payments/webhook",
		CustomerEmail:      payment.CustomerEmail,
		CustomerName:       payment.CustomerName,
		ProductName:        course.Title,
		ProductDescription: course.Description,
	})
	if err != nil {
		s.logger.Error("sign checkout request",
			zap.String("payment_id", payment.ID),
			zap.String("order_ref", payment.OrderRef),
			zap.Error(err),
		)
		return nil, apperror.Integration("Failed to prepare payment", err)
	}

	resp := &dto.CheckoutResponse{
		PaymentID:          payment.ID,
		OrderRef:           payment.OrderRef,
		EncodedPayload:     signed.Data,
		Signature:          signed.Signature,
		GatewayCheckoutURL: s.liqpayClient.CheckoutURL(),
		Course: dto.CheckoutCourse{
			ID:    course.ID,
			Title: course.Title,
			Price: course.Price.InexactFloat64(),
		},
	}
	if withForm {
		form, err := s.liqpayClient.CheckoutForm(signed)
		if err != nil {
			return nil, apperror.Internal("Failed to render payment form", err)
		}
		resp.Form = form
	}

	s.logger.Info("checkout created",
		zap.String("payment_id", payment.ID),
		zap.String("order_ref", payment.OrderRef),
		zap.String("course_id", course.ID),
	)
	return resp, nil
}

// HandleWebhook applies one gateway notification. Nothing is written unless
// the signature verifies.
func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, data, signature string) (*dto.WebhookResponse, error) {
	if data == "" || signature == "" {
		return nil, apperror.Validation("Missing data or signature")
	}
	if !s.liqpayClient.VerifyWebhookSignature(data, signature) {
		s.logger.Warn("webhook rejected: invalid signature")
		return nil, apperror.InvalidSignature()
	}

	payload, raw, err := s.liqpayClient.DecodePayload(data)
	if err != nil {
		s.logger.Warn("webhook rejected: malformed payload", zap.Error(err))
		return nil, err
	}

	orderRef, _ := payload["order_id"].(string)
	orderRef = strings.TrimSpace(orderRef)
	if orderRef == "" {
		return nil, apperror.Validation("Missing order_id")
	}
	gatewayStatus, _ := payload["status"].(string)
	if gatewayStatus == "" {
		return nil, apperror.Validation("Missing status")
	}

	incoming, known := model.StatusFromGateway(gatewayStatus)
	if !known {
		s.logger.Warn("unknown gateway status", zap.String("status", gatewayStatus), zap.String("order_ref", orderRef))
	}

	now := s.now()
	metadata := model.NewPaymentMetadata(raw, now)

	var updated *model.Payment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.paymentRepo.FindByOrderRefForUpdate(ctx, tx, orderRef)
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.Integration("Payment not found for order", err)
		}
		if err != nil {
			return err
		}

		next := current.Status.Next(incoming)
		if next != incoming {
			s.logger.Info("terminal status kept",
				zap.String("order_ref", orderRef),
				zap.String("status", string(current.Status)),
				zap.String("incoming", string(incoming)),
			)
		}

		updated, err = s.paymentRepo.UpdateStatus(ctx, tx, orderRef, next, metadata)
		if err != nil {
			return fmt.Errorf("update payment status: %w", err)
		}
		if next != model.PaymentStatusSucceeded {
			return nil
		}

		return s.grantAccess(ctx, tx, updated, now)
	})
	if err != nil {
		if errors.Is(err, apperror.ErrIntegration) {
			s.logger.Error("webhook for unknown order", zap.String("order_ref", orderRef), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("webhook processed",
		zap.String("payment_id", updated.ID),
		zap.String("order_ref", orderRef),
		zap.String("gateway_status", gatewayStatus),
		zap.String("status", string(updated.Status)),
	)
	return &dto.WebhookResponse{
		Received:  true,
		PaymentID: updated.ID,
		Status:    string(updated.Status),
	}, nil
}

// grantAccess runs inside the webhook transaction. The AccessGranted event is
// only recorded when this call created the access.
func (s *paymentServiceImpl) grantAccess(ctx context.Context, tx *gorm.DB, payment *model.Payment, now time.Time) error {
	access := &model.CourseAccess{
		ID:            uuid.NewString(),
		CourseID:      payment.CourseID,
		CustomerEmail: payment.CustomerEmail,
		CustomerName:  payment.CustomerName,
		PaymentID:     payment.ID,
		GrantedAt:     now,
		ExpiresAt:     now.Add(s.cfg.AccessValidity),
	}
	created, err := s.accessRepo.CreateIfAbsent(ctx, tx, access)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	msg, err := events.NewAccessGrantedMessage(s.cfg.EventsTopic, payment, access)
	if err != nil {
		return err
	}
	if err := s.outboxRepo.Enqueue(ctx, tx, msg); err != nil {
		return fmt.Errorf("enqueue access granted: %w", err)
	}

	s.logger.Info("course access granted",
		zap.String("payment_id", payment.ID),
		zap.String("course_id", payment.CourseID),
		zap.Time("expires_at", access.ExpiresAt),
	)
	return nil
}

func (s *paymentServiceImpl) GetPayment(ctx context.Context, paymentID string) (*dto.PaymentStatusResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	return &dto.PaymentStatusResponse{
		ID:        payment.ID,
		OrderRef:  payment.OrderRef,
		CourseID:  payment.CourseID,
		Status:    string(payment.Status),
		Amount:    payment.Amount.InexactFloat64(),
		Currency:  payment.Currency,
		UpdatedAt: payment.UpdatedAt,
	}, nil
}

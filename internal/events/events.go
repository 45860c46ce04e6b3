package events

import (
	"encoding/json"
	"fmt"
	"time"

	"coaching-payments/internal/model"

	"github.com/google/uuid"
)

const TypeAccessGranted = "AccessGranted"

type AccessGranted struct {
	EventID       string    `json:"eventId"`
	Type          string    `json:"type"`
	PaymentID     string    `json:"paymentId"`
	OrderRef      string    `json:"orderRef"`
	CourseID      string    `json:"courseId"`
	CustomerEmail string    `json:"customerEmail"`
	CustomerName  string    `json:"customerName"`
	AccessID      string    `json:"accessId"`
	ExpiresAt     time.Time `json:"expiresAt"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// NewAccessGrantedMessage builds the outbox row for a freshly granted access.
func NewAccessGrantedMessage(topic string, payment *model.Payment, access *model.CourseAccess) (*model.OutboxMessage, error) {
	event := AccessGranted{
		EventID:       uuid.NewString(),
		Type:          TypeAccessGranted,
		PaymentID:     payment.ID,
		OrderRef:      payment.OrderRef,
		CourseID:      access.CourseID,
		CustomerEmail: access.CustomerEmail,
		CustomerName:  access.CustomerName,
		AccessID:      access.ID,
		ExpiresAt:     access.ExpiresAt,
		OccurredAt:    access.GrantedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", TypeAccessGranted, err)
	}

	return &model.OutboxMessage{
		ID:          event.EventID,
		AggregateID: payment.ID,
		EventType:   TypeAccessGranted,
		Topic:       topic,
		Key:         payment.ID,
		Payload:     payload,
	}, nil
}

package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending      PaymentStatus = "pending"
	PaymentStatusProcessing   PaymentStatus = "processing"
	PaymentStatusWaiting3DS   PaymentStatus = "waiting_3ds"
	PaymentStatusWaitingFunds PaymentStatus = "waiting_funds"
	PaymentStatusSucceeded    PaymentStatus = "succeeded"
	PaymentStatusFailed       PaymentStatus = "failed"
	PaymentStatusRefunded     PaymentStatus = "refunded"
)

var gatewayStatuses = map[string]PaymentStatus{
	"success":     PaymentStatusSucceeded,
	"sandbox":     PaymentStatusSucceeded,
	"failure":     PaymentStatusFailed,
	"error":       PaymentStatusFailed,
	"wait_accept": PaymentStatusProcessing,
	"wait_secure": PaymentStatusWaiting3DS,
	"wait_lc":     PaymentStatusWaitingFunds,
	"reversed":    PaymentStatusRefunded,
}

// StatusFromGateway maps a LiqPay status to ours. Unrecognised values pass
// through verbatim and known is false.
func StatusFromGateway(raw string) (status PaymentStatus, known bool) {
	if s, ok := gatewayStatuses[raw]; ok {
		return s, true
	}
	return PaymentStatus(raw), false
}

func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// Next returns the status to persist when incoming arrives for a payment
// currently in s. Terminal statuses never move.
func (s PaymentStatus) Next(incoming PaymentStatus) PaymentStatus {
	if s.Terminal() {
		return s
	}
	return incoming
}

// LiqpayRequest is the checkout payload. Field order is the encoding order.
type LiqpayRequest struct {
	PublicKey          string      `json:"public_key"`
	Version            string      `json:"version"`
	Action             string      `json:"action"`
	Amount             json.Number `json:"amount"`
	Currency           string      `json:"currency"`
	Description        string      `json:"description"`
	OrderID            string      `json:"order_id"`
	ResultURL          string      `json:"result_url"`
	ServerURL          string      `json:"server_url"`
	Customer           string      `json:"customer"`
	CustomerName       string      `json:"customer_name"`
	ProductName        string      `json:"product_name"`
	ProductDescription string      `json:"product_description,omitempty"`
	ProductCategory    string      `json:"product_category"`
	Language           string      `json:"language"`
	Sandbox            int         `json:"sandbox"`
}

// LiqpayCallback is the subset of the server callback we read.
type LiqpayCallback struct {
	Action           string          `json:"action"`
	PaymentID        int64           `json:"payment_id"`
	Status           string          `json:"status"`
	Version          int             `json:"version"`
	Type             string          `json:"type"`
	PayType          string          `json:"paytype"`
	PublicKey        string          `json:"public_key"`
	OrderID          string          `json:"order_id"`
	LiqpayOrderID    string          `json:"liqpay_order_id"`
	Description      string          `json:"description"`
	SenderCardMask2  string          `json:"sender_card_mask2,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	SenderCommission decimal.Decimal `json:"sender_commission"`
	TransactionID    int64           `json:"transaction_id"`
	ErrCode          string          `json:"err_code,omitempty"`
	ErrDescription   string          `json:"err_description,omitempty"`
	CreateDate       int64           `json:"create_date"`
	EndDate          int64           `json:"end_date"`
}

type MetadataKind string

const (
	MetadataKindLiqpayCallback MetadataKind = "liqpay.callback"
	MetadataKindOpaque         MetadataKind = "opaque"
)

// PaymentMetadata keeps the last gateway notification. Raw is always the
// full decoded payload; Callback is set only when it parsed.
type PaymentMetadata struct {
	Kind       MetadataKind    `json:"kind"`
	Callback   *LiqpayCallback `json:"callback,omitempty"`
	Raw        json.RawMessage `json:"raw"`
	ReceivedAt time.Time       `json:"receivedAt"`
}

func NewPaymentMetadata(raw []byte, receivedAt time.Time) *PaymentMetadata {
	meta := &PaymentMetadata{
		Kind:       MetadataKindOpaque,
		Raw:        json.RawMessage(raw),
		ReceivedAt: receivedAt,
	}
	var cb LiqpayCallback
	if err := json.Unmarshal(raw, &cb); err == nil {
		meta.Kind = MetadataKindLiqpayCallback
		meta.Callback = &cb
	}
	return meta
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Course struct {
	ID          string          `gorm:"primaryKey;size:64;not null"`
	Title       string          `gorm:"size:255;not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"` // UAH
	Duration    string          `gorm:"size:64"`
	Level       *string         `gorm:"size:32;index"` // beginner, advanced, ...
	Features    []string        `gorm:"serializer:json"`
	CreatedAt   time.Time
}

type Payment struct {
	ID            string           `gorm:"primaryKey;size:36;not null"`
	OrderRef      string           `gorm:"size:64;uniqueIndex;not null"` // gateway order_id
	CourseID      string           `gorm:"size:64;index;not null"`
	CustomerEmail string           `gorm:"size:255;index;not null"`
	CustomerName  string           `gorm:"size:255;not null"`
	Amount        decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Currency      string           `gorm:"size:8;not null"`
	Status        PaymentStatus    `gorm:"size:32;index;not null"`
	Metadata      *PaymentMetadata `gorm:"serializer:json"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Course *Course `gorm:"foreignKey:CourseID"`
}

// One access per payment: the unique index on payment_id makes a second grant a no-op.
type CourseAccess struct {
	ID            string    `gorm:"primaryKey;size:36;not null"`
	CourseID      string    `gorm:"size:64;index;not null"`
	CustomerEmail string    `gorm:"size:255;index;not null"`
	CustomerName  string    `gorm:"size:255;not null"`
	PaymentID     string    `gorm:"size:36;uniqueIndex;not null"`
	ExpiresAt     time.Time `gorm:"not null"`
	GrantedAt     time.Time `gorm:"not null"`
}

type ContactStatus string

const (
	ContactStatusNew       ContactStatus = "new"
	ContactStatusContacted ContactStatus = "contacted"
	ContactStatusCompleted ContactStatus = "completed"
)

type Contact struct {
	ID             string        `gorm:"primaryKey;size:36;not null" json:"id"`
	Name           string        `gorm:"size:64;not null" json:"name"`
	Email          string        `gorm:"size:255;not null" json:"email"`
	Phone          string        `gorm:"size:32;not null" json:"phone"`
	Message        string        `gorm:"type:text;not null" json:"message"`
	CourseInterest *string       `gorm:"size:64" json:"courseInterest"`
	Status         ContactStatus `gorm:"size:16;index;not null" json:"status"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

type AdminUser struct {
	ID           string `gorm:"primaryKey;size:36;not null"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	Name         string `gorm:"size:255"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:16;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "PENDING"
	OutboxStatusSent    OutboxStatus = "SENT"
	OutboxStatusFailed  OutboxStatus = "FAILED"
)

type OutboxMessage struct {
	ID          string       `gorm:"primaryKey;size:36;not null"`
	AggregateID string       `gorm:"size:36;index;not null"` // payment id
	EventType   string       `gorm:"size:64;not null"`
	Topic       string       `gorm:"size:128;not null"`
	Key         string       `gorm:"size:128"`
	Payload     []byte       `gorm:"not null"`
	Status      OutboxStatus `gorm:"size:16;index;not null"`
	Attempts    int          `gorm:"not null;default:0"`
	LastError   string       `gorm:"type:text"`
	CreatedAt   time.Time    `gorm:"index"`
	SentAt      *time.Time
}

// AllModels is the AutoMigrate set.
func AllModels() []interface{} {
	return []interface{}{
		&Course{},
		&Payment{},
		&CourseAccess{},
		&Contact{},
		&AdminUser{},
		&OutboxMessage{},
	}
}

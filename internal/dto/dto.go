package dto

import "time"

type CheckoutRequest struct {
	CourseID      string `json:"courseId" form:"courseId" validate:"required"`
	CustomerEmail string `json:"customerEmail" form:"customerEmail" validate:"required,email"`
	CustomerName  string `json:"customerName" form:"customerName" validate:"required"`
}

type CheckoutCourse struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

type CheckoutResponse struct {
	PaymentID          string         `json:"paymentId"`
	OrderRef           string         `json:"orderRef"`
	EncodedPayload     string         `json:"encodedPayload"`
	Signature          string         `json:"signature"`
	GatewayCheckoutURL string         `json:"gatewayCheckoutUrl"`
	Course             CheckoutCourse `json:"course"`

	// Form is the auto-submitting HTML form; only rendered for text/html clients.
	Form string `json:"-"`
}

type WebhookRequest struct {
	Data      string `form:"data"`
	Signature string `form:"signature"`
}

type WebhookResponse struct {
	Received  bool   `json:"received"`
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"`
}

type PaymentStatusResponse struct {
	ID        string    `json:"id"`
	OrderRef  string    `json:"orderRef"`
	CourseID  string    `json:"courseId"`
	Status    string    `json:"status"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CourseResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Duration    string    `json:"duration"`
	Level       *string   `json:"level"`
	Features    []string  `json:"features"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CourseListResponse struct {
	Success bool              `json:"success"`
	Courses []*CourseResponse `json:"courses"`
	Total   int               `json:"total"`
}

type ContactRequest struct {
	Name           string  `json:"name" validate:"required,min=2,max=50"`
	Email          string  `json:"email" validate:"required,email"`
	Phone          string  `json:"phone" validate:"required,min=10,phone"`
	Message        string  `json:"message" validate:"required,min=10,max=500"`
	CourseInterest *string `json:"courseInterest" validate:"omitempty,max=64"`
}

type ContactResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ContactID string `json:"contactId,omitempty"`
}

type UpdateContactStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted completed"`
}

type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AdminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

package server_test

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"coaching-payments/internal/client"
	"coaching-payments/internal/config"
	"coaching-payments/internal/dbtest"
	"coaching-payments/internal/dto"
	"coaching-payments/internal/model"
	"coaching-payments/internal/repository"
	"coaching-payments/internal/server"
	"coaching-payments/internal/service"
	"coaching-payments/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const privateKey = "sandbox_private_key"

type testApp struct {
	db   *gorm.DB
	srv  *server.Server
	auth service.AuthService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithLimit(t, config.RateLimit{RPS: 1000, Burst: 1000})
}

func newTestAppWithLimit(t *testing.T, limit config.RateLimit) *testApp {
	t.Helper()
	db := dbtest.New(t)
	ctx := context.Background()
	v := validation.New()

	courseRepo := repository.NewCourseRepository(db)
	require.NoError(t, courseRepo.Seed(ctx))

	liqpay, err := client.NewLiqpayClient(&config.Liqpay{
		PublicKey:   "sandbox_i000000",
		PrivateKey:  privateKey,
		CheckoutURL: "https://www.liqpay.ua/api/3/checkout",
		Sandbox:     true,
	})
	require.NoError(t, err)

	payments := service.NewPaymentService(db, liqpay, courseRepo,
		repository.NewPaymentRepository(db),
		repository.NewCourseAccessRepository(db),
		repository.NewOutboxRepository(db),
		v,
		service.PaymentServiceConfig{
			BaseURL:        "https://coach.example.ua",
			AccessValidity: 365 * 24 * time.Hour,
			EventsTopic:    "course-access",
		}, zap.NewNop())
	auth := service.NewAuthService(repository.NewAdminUserRepository(db), v, "test-secret", time.Hour)

	srv := server.NewServer(db, server.Services{
		Payment: payments,
		Course:  service.NewCourseService(courseRepo),
		Contact: service.NewContactService(repository.NewContactRepository(db), v, zap.NewNop()),
		Auth:    auth,
	}, limit, zap.NewNop())

	return &testApp{db: db, srv: srv, auth: auth}
}

func (a *testApp) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	a.srv.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func webhookRequest(data, signature string) *http.Request {
	form := url.Values{}
	form.Set("data", data)
	form.Set("signature", signature)
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func sign(t *testing.T, payload map[string]interface{}) (string, string) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	data := base64.StdEncoding.EncodeToString(raw)
	sum := sha1.Sum([]byte(privateKey + data + privateKey))
	return data, base64.StdEncoding.EncodeToString(sum[:])
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func (a *testApp) checkout(t *testing.T) dto.CheckoutResponse {
	t.Helper()
	rec := a.do(t, jsonRequest(http.MethodPost, "/api/payments/checkout",
		`{"courseId":"course-football-beginners","customerEmail":"ivan@example.com","customerName":"Іван"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.CheckoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCheckoutEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp := app.checkout(t)
	assert.NotEmpty(t, resp.PaymentID)
	assert.True(t, strings.HasPrefix(resp.OrderRef, "liqpay_"))
	assert.NotEmpty(t, resp.EncodedPayload)
	assert.NotEmpty(t, resp.Signature)
	assert.Equal(t, "https://www.liqpay.ua/api/3/checkout", resp.GatewayCheckoutURL)
	assert.Equal(t, "course-football-beginners", resp.Course.ID)
	assert.Equal(t, 1500.0, resp.Course.Price)
}

func TestCheckoutEndpointErrors(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{
			name:    "missing course",
			body:    `{"customerEmail":"ivan@example.com","customerName":"Іван"}`,
			status:  http.StatusBadRequest,
			message: "courseId is required",
		},
		{
			name:    "bad email",
			body:    `{"courseId":"course-football-beginners","customerEmail":"nope","customerName":"Іван"}`,
			status:  http.StatusBadRequest,
			message: "customerEmail must be a valid email address",
		},
		{
			name:    "unknown course",
			body:    `{"courseId":"course-chess","customerEmail":"ivan@example.com","customerName":"Іван"}`,
			status:  http.StatusNotFound,
			message: "Course not found",
		},
		{
			name:    "broken json",
			body:    `{"courseId":`,
			status:  http.StatusBadRequest,
			message: "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, jsonRequest(http.MethodPost, "/api/payments/checkout", tt.body))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decodeError(t, rec))
		})
	}
}

func TestCheckoutRendersFormForBrowsers(t *testing.T) {
	app := newTestApp(t)

	req := jsonRequest(http.MethodPost, "/api/payments/checkout",
		`{"courseId":"course-football-beginners","customerEmail":"ivan@example.com","customerName":"Іван"}`)
	req.Header.Set(echo.HeaderAccept, "text/html,application/xhtml+xml")
	rec := app.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextHTML)
	assert.Contains(t, rec.Body.String(), `action="https://www.liqpay.ua/api/3/checkout"`)
	assert.Contains(t, rec.Body.String(), `name="signature"`)
}

func TestWebhookEndpointGrantsAccess(t *testing.T) {
	app := newTestApp(t)
	checkout := app.checkout(t)

	data, sig := sign(t, map[string]interface{}{
		"status":   "success",
		"order_id": checkout.OrderRef,
		"amount":   1500,
		"currency": "UAH",
	})
	rec := app.do(t, webhookRequest(data, sig))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.WebhookResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Received)
	assert.Equal(t, checkout.PaymentID, resp.PaymentID)
	assert.Equal(t, string(model.PaymentStatusSucceeded), resp.Status)

	var accesses int64
	require.NoError(t, app.db.Model(&model.CourseAccess{}).Where("payment_id = ?", checkout.PaymentID).Count(&accesses).Error)
	assert.EqualValues(t, 1, accesses)

	// redelivery is acknowledged without a second grant
	rec = app.do(t, webhookRequest(data, sig))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, app.db.Model(&model.CourseAccess{}).Where("payment_id = ?", checkout.PaymentID).Count(&accesses).Error)
	assert.EqualValues(t, 1, accesses)

	rec = app.do(t, httptest.NewRequest(http.MethodGet, "/api/payments/"+checkout.PaymentID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var status dto.PaymentStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "succeeded", status.Status)
}

func TestWebhookEndpointRejections(t *testing.T) {
	app := newTestApp(t)
	checkout := app.checkout(t)

	data, _ := sign(t, map[string]interface{}{"status": "success", "order_id": checkout.OrderRef})
	unknownData, unknownSig := sign(t, map[string]interface{}{"status": "success", "order_id": "liqpay_1_missing"})

	tests := []struct {
		name    string
		req     *http.Request
		status  int
		message string
	}{
		{
			name:    "invalid signature",
			req:     webhookRequest(data, "AAAAAAAAAAAAAAAAAAAAAAAAAAA="),
			status:  http.StatusBadRequest,
			message: "Invalid signature",
		},
		{
			name:    "missing fields",
			req:     webhookRequest("", ""),
			status:  http.StatusBadRequest,
			message: "Missing data or signature",
		},
		{
			name:    "unknown order",
			req:     webhookRequest(unknownData, unknownSig),
			status:  http.StatusInternalServerError,
			message: "Payment not found for order",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, tt.req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decodeError(t, rec))
		})
	}

	var payment model.Payment
	require.NoError(t, app.db.First(&payment, "id = ?", checkout.PaymentID).Error)
	assert.Equal(t, model.PaymentStatusPending, payment.Status)
}

func TestWebhookInfoAlias(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/payments/webhook", "/api/payments/liqpay-webhook"} {
		rec := app.do(t, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "webhook endpoint is active")
	}
}

func TestCoursesEndpoints(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, httptest.NewRequest(http.MethodGet, "/api/courses?maxPrice=3000", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list dto.CourseListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.True(t, list.Success)
	assert.Equal(t, 2, list.Total)

	rec = app.do(t, httptest.NewRequest(http.MethodGet, "/api/courses?minPrice=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "minPrice must be a number", decodeError(t, rec))

	rec = app.do(t, httptest.NewRequest(http.MethodGet, "/api/courses/course-chess", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Course not found", decodeError(t, rec))
}

func TestContactAdminFlow(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	rec := app.do(t, jsonRequest(http.MethodPost, "/api/contact",
		`{"name":"Олена","email":"olena@example.com","phone":"+380 (67) 123-45-67","message":"Хочу записати сина на футбол"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created dto.ContactResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ContactID)

	target := "/api/contact/" + created.ContactID
	rec = app.do(t, jsonRequest(http.MethodPatch, target, `{"status":"contacted"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	_, err := app.auth.CreateAdmin(ctx, "coach@example.com", "correct horse", "Coach")
	require.NoError(t, err)
	rec = app.do(t, jsonRequest(http.MethodPost, "/api/admin/login", `{"email":"coach@example.com","password":"correct horse"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	var login dto.AdminLoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	req := jsonRequest(http.MethodPatch, target, `{"status":"contacted"}`)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+login.Token)
	rec = app.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"contacted"`)

	req = httptest.NewRequest(http.MethodDelete, target, nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+login.Token)
	rec = app.do(t, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, target, nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+login.Token)
	rec = app.do(t, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.Contains(t, rec.Body.String(), `"database":"connected"`)
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decodeError(t, rec))
}

func TestSuccessPage(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, httptest.NewRequest(http.MethodGet, "/payment/success?payment_id=abc", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextHTML)
	assert.Contains(t, rec.Body.String(), "/api/payments/")
}

func TestRateLimitIsSharedAcrossRoutes(t *testing.T) {
	app := newTestAppWithLimit(t, config.RateLimit{RPS: 0.001, Burst: 1})

	rec := app.do(t, jsonRequest(http.MethodPost, "/api/contact",
		`{"name":"Олена","email":"olena@example.com","phone":"+380671234567","message":"Хочу записати сина на футбол"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(t, jsonRequest(http.MethodPost, "/api/payments/checkout",
		`{"courseId":"course-football-beginners","customerEmail":"ivan@example.com","customerName":"Іван"}`))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// unlimited routes are unaffected
	rec = app.do(t, httptest.NewRequest(http.MethodGet, "/api/courses", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

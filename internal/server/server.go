package server

import (
	"context"
	"net/http"
	"time"

	"coaching-payments/internal/config"
	"coaching-payments/internal/handler"
	"coaching-payments/internal/middleware"
	"coaching-payments/internal/service"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type Services struct {
	Payment service.PaymentService
	Course  service.CourseService
	Contact service.ContactService
	Auth    service.AuthService
}

type Server struct {
	echo           *echo.Echo
	logger         *zap.Logger
	limiter        echo.MiddlewareFunc
	auth           service.AuthService
	paymentHandler *handler.PaymentHandler
	courseHandler  *handler.CourseHandler
	contactHandler *handler.ContactHandler
	adminHandler   *handler.AdminHandler
	healthHandler  *handler.HealthHandler
}

func NewServer(db *gorm.DB, services Services, rateLimit config.RateLimit, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(echomw.RequestLoggerWithConfig(requestLoggerConfig(logger)))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:           e,
		logger:         logger,
		limiter:        newLimiter(rateLimit),
		auth:           services.Auth,
		paymentHandler: handler.NewPaymentHandler(services.Payment),
		courseHandler:  handler.NewCourseHandler(services.Course),
		contactHandler: handler.NewContactHandler(services.Contact),
		adminHandler:   handler.NewAdminHandler(services.Auth),
		healthHandler:  handler.NewHealthHandler(db),
	}

	s.setupRoutes()
	return s
}

func requestLoggerConfig(logger *zap.Logger) echomw.RequestLoggerConfig {
	return echomw.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("ip", v.RemoteIP),
			}
			if v.RequestID != "" {
				fields = append(fields, zap.String("request_id", v.RequestID))
			}
			switch {
			case v.Status >= http.StatusInternalServerError:
				logger.Error("request", fields...)
			case v.Status >= http.StatusBadRequest:
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}
			return nil
		},
	}
}

// newLimiter bounds unauthenticated writes per client IP. All limited routes
// draw from the same per-IP budget.
func newLimiter(cfg config.RateLimit) echo.MiddlewareFunc {
	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.RPS),
		Burst:     cfg.Burst,
		ExpiresIn: 3 * time.Minute,
	})
	return echomw.RateLimiter(store)
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", s.healthHandler.Health)

	// -------- catalogue --------
	api.GET("/courses", s.courseHandler.ListCourses)
	api.GET("/courses/:id", s.courseHandler.GetCourse)

	// -------- liqpay --------
	payments := api.Group("/payments")
	payments.POST("/checkout", s.paymentHandler.Checkout, s.limiter)
	payments.GET("/:id", s.paymentHandler.GetPayment)

	// -------- liqpay server callback --------
	payments.POST("/webhook", s.paymentHandler.LiqpayWebhook)
	payments.POST("/liqpay-webhook", s.paymentHandler.LiqpayWebhook)
	payments.GET("/webhook", s.paymentHandler.WebhookInfo)
	payments.GET("/liqpay-webhook", s.paymentHandler.WebhookInfo)

	s.echo.GET("/payment/success", s.paymentHandler.HandleSuccess)

	// -------- contact form + admin --------
	api.POST("/contact", s.contactHandler.CreateContact, s.limiter)
	api.POST("/admin/login", s.adminHandler.Login, s.limiter)

	adminAuth := middleware.AdminAuth(s.auth)
	api.PATCH("/contact/:id", s.contactHandler.UpdateStatus, adminAuth)
	api.DELETE("/contact/:id", s.contactHandler.DeleteContact, adminAuth)
}

// ServeHTTP lets tests drive the router directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) Start(address string) error {
	s.logger.Info("starting HTTP server", zap.String("addr", address))
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

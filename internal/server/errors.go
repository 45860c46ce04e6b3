package server

import (
	"errors"
	"fmt"
	"net/http"

	"coaching-payments/internal/apperror"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

// errorHandler renders every failure as {"error": message}. Causes are
// logged, never sent to the client.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Internal server error"

		var httpErr *echo.HTTPError
		if appErr := apperror.From(err); appErr != nil {
			status = appErr.Kind.HTTPStatus()
			// internal and configuration causes stay in the log
			if status < http.StatusInternalServerError || appErr.Kind == apperror.KindIntegration {
				message = appErr.Message
			}
		} else if errors.As(err, &httpErr) {
			status = httpErr.Code
			if status < http.StatusInternalServerError {
				message = fmt.Sprint(httpErr.Message)
			}
		}

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
		} else {
			logger.Debug("request rejected", fields...)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, errorResponse{Error: message})
		}
		if writeErr != nil {
			logger.Error("write error response", zap.Error(writeErr))
		}
	}
}

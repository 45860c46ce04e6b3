package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	now := time.Now().UTC().Format(time.RFC3339)

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status":    "unhealthy",
			"database":  "disconnected",
			"timestamp": now,
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": now,
	})
}

package handler

import (
	"net/http"

	"coaching-payments/internal/apperror"
	"coaching-payments/internal/dto"
	"coaching-payments/internal/service"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	authService service.AuthService
}

func NewAdminHandler(authService service.AuthService) *AdminHandler {
	return &AdminHandler{authService: authService}
}

func (h *AdminHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AdminLoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}

	result, err := h.authService.Login(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

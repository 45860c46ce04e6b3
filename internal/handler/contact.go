package handler

import (
	"net/http"

	"coaching-payments/internal/apperror"
	"coaching-payments/internal/dto"
	"coaching-payments/internal/service"

	"github.com/labstack/echo/v4"
)

type ContactHandler struct {
	contactService service.ContactService
}

func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
	}
}

func (h *ContactHandler) CreateContact(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ContactRequest
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}

	contact, err := h.contactService.Submit(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.ContactResponse{
		Success:   true,
		Message:   "Заявка успішно відправлена",
		ContactID: contact.ID,
	})
}

func (h *ContactHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UpdateContactStatusRequest
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}

	contact, err := h.contactService.UpdateStatus(ctx, c.Param("id"), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Статус оновлено",
		"contact": contact,
	})
}

func (h *ContactHandler) DeleteContact(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.contactService.Delete(ctx, c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.ContactResponse{
		Success: true,
		Message: "Заявку видалено",
	})
}

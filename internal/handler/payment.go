package handler

import (
	"net/http"
	"strings"

	"coaching-payments/internal/apperror"
	"coaching-payments/internal/dto"
	"coaching-payments/internal/service"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

func wantsHTML(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}

func (h *PaymentHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}

	withForm := wantsHTML(c)
	result, err := h.paymentService.Checkout(ctx, req, withForm)
	if err != nil {
		return err
	}

	if withForm {
		return c.HTML(http.StatusOK, result.Form)
	}
	return c.JSON(http.StatusOK, result)
}

// LiqpayWebhook receives the gateway's server callback (form fields data and signature).
func (h *PaymentHandler) LiqpayWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.WebhookRequest
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("Invalid form data")
	}

	result, err := h.paymentService.HandleWebhook(ctx, req.Data, req.Signature)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) WebhookInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "LiqPay webhook endpoint is active",
	})
}

func (h *PaymentHandler) GetPayment(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.paymentService.GetPayment(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// HandleSuccess is the result_url landing page. It polls the payment status
// because the server callback may arrive after the redirect.
func (h *PaymentHandler) HandleSuccess(c echo.Context) error {
	html := `
	<!DOCTYPE html>
	<html>
	<head>
		<meta charset="utf-8">
		<title>Оплата</title>
		<style>
			body {
				font-family: Arial, sans-serif;
				text-align: center;
				margin-top: 80px;
			}
			.status {
				font-size: 24px;
				font-weight: bold;
			}
		</style>
	</head>
	<body>
		<h2>Дякуємо за оплату!</h2>
		<p>Статус платежу: <span class="status" id="status">обробляється…</span></p>
		<p><a href="/">На головну</a></p>

		<script>
			const labels = {
				succeeded: "успішно, доступ до курсу активовано",
				failed: "не вдалося",
				refunded: "повернено"
			};
			const id = new URLSearchParams(window.location.search).get("payment_id");
			const el = document.getElementById("status");
			let tries = 0;

			async function poll() {
				if (!id) { return; }
				const res = await fetch("/api/payments/" + encodeURIComponent(id));
				if (res.ok) {
					const p = await res.json();
					if (labels[p.status]) {
						el.textContent = labels[p.status];
						return;
					}
				}
				if (++tries < 20) { setTimeout(poll, 3000); }
			}
			poll();
		</script>
	</body>
	</html>
	`

	return c.HTML(http.StatusOK, html)
}

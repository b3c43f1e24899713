package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clearcut/entitlement-system/internal/api/metrics"
	"github.com/clearcut/entitlement-system/internal/core/ports"
)

type PaymentHandler struct {
	paymentService ports.PaymentService
}

func NewPaymentHandler(paymentService ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

type checkoutSessionResponse struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
}

// webhookRequest tolerates the provider's loose field naming: the payment
// reference may arrive as payment_id, external_id, or id.
type webhookRequest struct {
	PaymentID  string  `json:"payment_id"`
	ExternalID string  `json:"external_id"`
	ID         string  `json:"id"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	Status     string  `json:"status"`
}

func (r webhookRequest) externalPaymentID() string {
	switch {
	case r.PaymentID != "":
		return r.PaymentID
	case r.ExternalID != "":
		return r.ExternalID
	default:
		return r.ID
	}
}

// CreateCheckoutSession opens a pending payment and returns its identifiers.
//
// @Summary      Create a checkout session
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  checkoutSessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/create-checkout-session [post]
func (h *PaymentHandler) CreateCheckoutSession(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	payment, err := h.paymentService.CreateCheckoutSession(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	metrics.CheckoutSessionsTotal.Inc()

	return c.JSON(http.StatusOK, checkoutSessionResponse{
		ID:        payment.ID,
		PaymentID: payment.ExternalPaymentID,
	})
}

// Webhook receives the out-of-band payment confirmation from the provider.
// Unauthenticated: providers do not carry our bearer tokens.
//
// @Summary      Payment provider webhook
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        body  body      webhookRequest  true  "Provider notification"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/webhook [post]
func (h *PaymentHandler) Webhook(c echo.Context) error {
	var req webhookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	in := ports.WebhookInput{
		ExternalPaymentID: req.externalPaymentID(),
		Amount:            req.Amount,
		Currency:          req.Currency,
		Status:            req.Status,
	}
	if err := h.paymentService.HandleWebhook(c.Request().Context(), in); err != nil {
		return err
	}
	metrics.WebhooksTotal.WithLabelValues(req.Status).Inc()

	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}

// History returns the caller's payment records.
//
// @Summary      Payment history
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.PaymentRecord
// @Router       /api/payments/history [get]
func (h *PaymentHandler) History(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	payments, err := h.paymentService.History(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payments)
}

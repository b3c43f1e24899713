package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clearcut/entitlement-system/internal/core/ports"
)

// UsageEnqueuer decouples the handler from the dispatcher: the handler only
// needs to hand the event off.
type UsageEnqueuer interface {
	Enqueue(event ports.UsageEventInput)
}

type UsageHandler struct {
	enqueuer     UsageEnqueuer
	usageService ports.UsageService
}

func NewUsageHandler(enqueuer UsageEnqueuer, usageService ports.UsageService) *UsageHandler {
	return &UsageHandler{enqueuer: enqueuer, usageService: usageService}
}

type usageEventRequest struct {
	Action   string         `json:"action"`
	Metadata map[string]any `json:"metadata_json"`
}

// Record appends one usage event. The write goes through the sharded worker
// queue; the handler answers as soon as the event is accepted.
//
// @Summary      Record a usage event
// @Tags         usage
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      usageEventRequest  true  "Action and free-form metadata"
// @Success      201   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/usage [post]
func (h *UsageHandler) Record(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req usageEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	h.enqueuer.Enqueue(ports.UsageEventInput{
		UserID:    userID,
		Action:    req.Action,
		Timestamp: time.Now().UTC(),
		Metadata:  req.Metadata,
	})

	return c.JSON(http.StatusCreated, map[string]string{"status": "success"})
}

// History returns the caller's full ordered usage log.
//
// @Summary      Usage history
// @Tags         usage
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.UsageRecord
// @Router       /api/usage/history [get]
func (h *UsageHandler) History(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	records, err := h.usageService.History(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}

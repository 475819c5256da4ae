package v1

import (
	"errors"
	"io"
	"net/http"

	"github.com/flexprice/marketplace/internal/api/dto"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/flexprice/marketplace/internal/service"
	"github.com/flexprice/marketplace/internal/types"
	"github.com/gin-gonic/gin"
)

// MaxWebhookBodyBytes caps the payload read from the processor
const MaxWebhookBodyBytes = 1 << 20

// WebhookHandler handles processor webhook deliveries
type WebhookHandler struct {
	service service.WebhookService
	logger  *logger.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(service service.WebhookService, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Handle Stripe webhook events
// @Description Verify, log and process a Stripe event. The raw body is required for signature verification.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Stripe webhook signature"
// @Success 200 {object} dto.WebhookAckResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 413 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /webhooks/stripe [post]
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	// Read the raw request body
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warnw("webhook body over limit", "limit", tooLarge.Limit)
			c.Error(ierr.WithError(err).
				WithHintf("Webhook payload exceeds %d bytes", tooLarge.Limit).
				Mark(ierr.ErrPayloadTooLarge))
			return
		}
		h.logger.Errorw("failed to read request body", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Failed to read request body").
			Mark(ierr.ErrValidation))
		return
	}

	signature := c.GetHeader(types.HeaderStripeSignature)

	result, err := h.service.HandleStripeWebhook(c.Request.Context(), body, signature)
	if err != nil {
		c.Error(err)
		return
	}

	h.logger.Debugw("acknowledged stripe webhook",
		"event_id", result.EventID,
		"event_type", result.EventType,
		"duplicate", result.Duplicate)

	c.JSON(http.StatusOK, dto.WebhookAckResponse{Received: true})
}

package v1

import (
	"net/http"

	"github.com/flexprice/marketplace/internal/api/dto"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/flexprice/marketplace/internal/service"
	"github.com/gin-gonic/gin"
)

type PayoutHandler struct {
	service service.PayoutService
	log     *logger.Logger
}

func NewPayoutHandler(service service.PayoutService, log *logger.Logger) *PayoutHandler {
	return &PayoutHandler{
		service: service,
		log:     log,
	}
}

// @Summary Create a manual payout
// @Description Transfer platform-held funds to a provider's connected account
// @Tags Payouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateManualPayoutRequest true "Payout request"
// @Success 201 {object} dto.PayoutResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /payouts [post]
func (h *PayoutHandler) CreateManualPayout(c *gin.Context) {
	var req dto.CreateManualPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateManualPayout(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

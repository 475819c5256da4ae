package v1

import (
	"io"
	"net/http"
	"strconv"

	"github.com/flexprice/marketplace/internal/api/dto"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/flexprice/marketplace/internal/service"
	"github.com/gin-gonic/gin"
)

type ProviderHandler struct {
	service service.OnboardingService
	log     *logger.Logger
}

func NewProviderHandler(service service.OnboardingService, log *logger.Logger) *ProviderHandler {
	return &ProviderHandler{
		service: service,
		log:     log,
	}
}

// @Summary Start provider onboarding
// @Description Create the caller's connected account if needed and return a fresh onboarding link
// @Tags Providers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StartOnboardingRequest false "Return and refresh URLs"
// @Success 200 {object} dto.OnboardingResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /providers/onboarding [post]
func (h *ProviderHandler) StartOnboarding(c *gin.Context) {
	var req dto.StartOnboardingRequest
	// the body is optional; configured URLs apply when it is absent
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.StartOnboarding(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get payment routing
// @Description Show how a payment of the given amount to the provider would be routed
// @Tags Providers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Provider ID"
// @Param amount query int true "Amount in minor units"
// @Success 200 {object} dto.RoutingResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /providers/{id}/routing [get]
func (h *ProviderHandler) GetRouting(c *gin.Context) {
	id := c.Param("id")

	amount, err := strconv.ParseInt(c.Query("amount"), 10, 64)
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("amount must be an integer in minor units").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetRouting(c.Request.Context(), id, amount)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

package v1

import (
	"net/http"

	"github.com/flexprice/marketplace/internal/api/dto"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/flexprice/marketplace/internal/service"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	service service.CheckoutService
	log     *logger.Logger
}

func NewPaymentHandler(service service.CheckoutService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log,
	}
}

// @Summary Create a payment sheet
// @Description Create a payment intent for a booking and return everything the mobile payment sheet needs
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePaymentSheetRequest true "Payment sheet request"
// @Success 200 {object} dto.PaymentSheetResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /payments/sheet [post]
func (h *PaymentHandler) CreatePaymentSheet(c *gin.Context) {
	var req dto.CreatePaymentSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreatePaymentSheet(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Ensure a customer
// @Description Return the caller's processor customer, creating it on first use
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.EnsureCustomerResponse
// @Failure 401 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /customers/ensure [post]
func (h *PaymentHandler) EnsureCustomer(c *gin.Context) {
	resp, err := h.service.EnsureCustomer(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

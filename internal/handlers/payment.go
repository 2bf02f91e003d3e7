// internal/handlers/payment.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/rufinostore/bubastore/internal/services"
	"github.com/rufinostore/bubastore/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// CreateStripeCheckout starts a Stripe payment for a product.
// POST /api/checkout/stripe
func (h *PaymentHandler) CreateStripeCheckout(c *gin.Context) {
	var input services.CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, "", nil)
		return
	}

	if err := utils.ValidateStruct(&input); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	resp, err := h.paymentService.CreateStripeCheckout(&input)
	if err != nil {
		if errors.Is(err, services.ErrProductUnavailable) {
			utils.NotFoundResponse(c, "product")
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.CreatedResponse(c, resp)
}

// CreateMercadoPagoCheckout starts a MercadoPago payment for a product.
// POST /api/checkout/mercadopago
func (h *PaymentHandler) CreateMercadoPagoCheckout(c *gin.Context) {
	var input services.CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, "", nil)
		return
	}

	if err := utils.ValidateStruct(&input); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	resp, err := h.paymentService.CreateMercadoPagoCheckout(c.Request.Context(), &input)
	if err != nil {
		if errors.Is(err, services.ErrProductUnavailable) {
			utils.NotFoundResponse(c, "product")
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.CreatedResponse(c, resp)
}

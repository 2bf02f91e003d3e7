// internal/handlers/sale.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rufinostore/bubastore/internal/models"
	"github.com/rufinostore/bubastore/internal/services"
	"github.com/rufinostore/bubastore/internal/utils"
)

type SaleHandler struct {
	saleService *services.SaleService
}

func NewSaleHandler(saleService *services.SaleService) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
	}
}

// ListMine lists the authenticated seller's sales.
// GET /api/sales
func (h *SaleHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	filter := saleFilterFromQuery(c)
	filter.SellerID = &userID

	sales, total, err := h.saleService.List(filter)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(sales, total, filter.PaginationParams))
}

// Summary returns the seller's revenue aggregates.
// GET /api/sales/summary
func (h *SaleHandler) Summary(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	summary, err := h.saleService.SellerSummary(userID)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, summary)
}

// Get returns one sale belonging to the authenticated seller.
// GET /api/sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid sale id", nil)
		return
	}

	sale, err := h.saleService.GetByID(saleID)
	if err != nil {
		utils.NotFoundResponse(c, "sale")
		return
	}

	if sale.SellerID != userID {
		utils.ForbiddenResponse(c, "")
		return
	}

	utils.SuccessResponse(c, sale)
}

func saleFilterFromQuery(c *gin.Context) *services.SaleFilter {
	filter := &services.SaleFilter{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if raw := c.Query("product_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.ProductID = &id
		}
	}
	if raw := c.Query("status"); raw != "" {
		status := models.PaymentStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("payment_method"); raw != "" {
		method := models.PaymentMethod(raw)
		filter.PaymentMethod = &method
	}
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedAfter = &t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedBefore = &t
		}
	}

	return filter
}

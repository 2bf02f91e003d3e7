// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rufinostore/bubastore/internal/i18n"
	"github.com/rufinostore/bubastore/internal/models"
	"github.com/rufinostore/bubastore/internal/services"
	"github.com/rufinostore/bubastore/internal/utils"
)

type AdminHandler struct {
	adminService *services.AdminService
	saleService  *services.SaleService
}

func NewAdminHandler(adminService *services.AdminService, saleService *services.SaleService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		saleService:  saleService,
	}
}

// Dashboard returns platform-wide stats.
// GET /api/admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats()
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, stats)
}

// ListUsers lists platform users with filters.
// GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	filter := &services.UserFilter{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if raw := c.Query("status"); raw != "" {
		status := models.UserStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("user_type"); raw != "" {
		userType := models.UserType(raw)
		filter.UserType = &userType
	}

	users, total, err := h.adminService.ListUsers(filter)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(users, total, filter.PaginationParams))
}

// UpdateUserStatus suspends, bans, or reactivates a user.
// PUT /api/admin/users/:id/status
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid user id", nil)
		return
	}

	var input struct {
		Status models.UserStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, "", nil)
		return
	}

	switch input.Status {
	case models.UserStatusActive, models.UserStatusSuspended, models.UserStatusBanned:
	default:
		utils.BadRequestResponse(c, "invalid status", nil)
		return
	}

	user, err := h.adminService.UpdateUserStatus(userID, input.Status)
	if err != nil {
		utils.NotFoundResponse(c, "user")
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponseWithMeta(c, user, gin.H{
		"message": i18n.T(lang, i18n.KeyAdminUserStatusUpdated),
	})
}

// ListProducts lists all products across sellers.
// GET /api/admin/products
func (h *AdminHandler) ListProducts(c *gin.Context) {
	filter := &services.ProductFilter{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if raw := c.Query("user_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.UserID = &id
		}
	}
	filter.ActiveOnly = c.Query("active") == "true"

	products, total, err := h.adminService.ListProducts(filter)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(products, total, filter.PaginationParams))
}

// ListSales lists all sales across sellers.
// GET /api/admin/sales
func (h *AdminHandler) ListSales(c *gin.Context) {
	filter := saleFilterFromQuery(c)

	if raw := c.Query("seller_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.SellerID = &id
		}
	}

	sales, total, err := h.saleService.List(filter)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(sales, total, filter.PaginationParams))
}

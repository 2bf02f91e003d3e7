// internal/handlers/product.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rufinostore/bubastore/internal/services"
	"github.com/rufinostore/bubastore/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// Create registers a new product for the authenticated creator.
// POST /api/products
func (h *ProductHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var input services.CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, "", nil)
		return
	}

	if err := utils.ValidateStruct(&input); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	product, err := h.productService.Create(userID, &input)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.CreatedResponse(c, product)
}

// ListMine lists the authenticated creator's products.
// GET /api/products
func (h *ProductHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	filter := &services.ProductFilter{
		PaginationParams: utils.GetPaginationParams(c),
		UserID:           &userID,
	}

	products, total, err := h.productService.List(filter)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(products, total, filter.PaginationParams))
}

// Get returns one product owned by the caller.
// GET /api/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid product id", nil)
		return
	}

	product, err := h.productService.GetOwned(productID, userID)
	if err != nil {
		respondProductError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// Update changes product fields.
// PUT /api/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid product id", nil)
		return
	}

	var input services.UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, "", nil)
		return
	}

	if err := utils.ValidateStruct(&input); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	product, err := h.productService.Update(productID, userID, &input)
	if err != nil {
		respondProductError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// UploadFile attaches the deliverable file.
// POST /api/products/:id/file
func (h *ProductHandler) UploadFile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid product id", nil)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "file is required", nil)
		return
	}
	defer file.Close()

	product, err := h.productService.AttachFile(productID, userID, file, header)
	if err != nil {
		respondProductError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// UploadCover attaches the cover image.
// POST /api/products/:id/cover
func (h *ProductHandler) UploadCover(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid product id", nil)
		return
	}

	file, header, err := c.Request.FormFile("cover")
	if err != nil {
		utils.BadRequestResponse(c, "cover is required", nil)
		return
	}
	defer file.Close()

	product, err := h.productService.AttachCover(productID, userID, file, header)
	if err != nil {
		respondProductError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// Delete removes a product from sale.
// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid product id", nil)
		return
	}

	if err := h.productService.Delete(productID, userID); err != nil {
		respondProductError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}

func respondProductError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		utils.NotFoundResponse(c, "product")
	case errors.Is(err, services.ErrNotProductOwner):
		utils.ForbiddenResponse(c, "")
	default:
		utils.BadRequestResponse(c, err.Error(), nil)
	}
}

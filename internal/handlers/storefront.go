// internal/handlers/storefront.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/rufinostore/bubastore/internal/services"
	"github.com/rufinostore/bubastore/internal/utils"
)

type StorefrontHandler struct {
	userService *services.UserService
}

func NewStorefrontHandler(userService *services.UserService) *StorefrontHandler {
	return &StorefrontHandler{
		userService: userService,
	}
}

// Get returns a creator's public page: profile and active products. A
// logged-in owner also sees their inactive products.
// GET /api/storefront/:username
func (h *StorefrontHandler) Get(c *gin.Context) {
	username := c.Param("username")
	viewerID, _ := currentUserID(c)

	storefront, err := h.userService.GetStorefront(username, viewerID)
	if err != nil {
		if errors.Is(err, services.ErrStorefrontNotFound) {
			utils.NotFoundResponse(c, "storefront")
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, storefront)
}

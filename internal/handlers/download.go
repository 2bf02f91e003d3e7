// internal/handlers/download.go
package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rufinostore/bubastore/internal/i18n"
	"github.com/rufinostore/bubastore/internal/services"
	"github.com/rufinostore/bubastore/internal/utils"
)

type DownloadHandler struct {
	downloadService *services.DownloadService
	productService  *services.ProductService
	storageService  *services.StorageService
}

func NewDownloadHandler(downloadService *services.DownloadService, productService *services.ProductService, storageService *services.StorageService) *DownloadHandler {
	return &DownloadHandler{
		downloadService: downloadService,
		productService:  productService,
		storageService:  storageService,
	}
}

// Redeem validates a download token and streams the product file. The
// file goes through the server; the storage URL is never exposed.
// GET /api/download/:token
func (h *DownloadHandler) Redeem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	token := c.Param("token")
	if token == "" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyDownloadMissingToken), nil)
		return
	}

	claims, err := h.downloadService.Verify(token)
	if err != nil {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyDownloadTokenInvalid))
		return
	}

	productID, err := h.downloadService.ProductIDFromClaims(claims)
	if err != nil {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyDownloadTokenInvalid))
		return
	}

	product, err := h.productService.GetByID(productID)
	if err != nil {
		utils.NotFoundResponse(c, "product")
		return
	}

	if err := h.downloadService.ValidateAgainstProduct(claims, product); err != nil {
		if errors.Is(err, services.ErrLinkStale) {
			utils.GoneResponse(c, "LINK_STALE", i18n.T(lang, i18n.KeyDownloadLinkStale))
			return
		}
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyDownloadTokenInvalid))
		return
	}

	body, contentType, err := h.storageService.OpenFile(product.FileKey)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"product_id": product.ID,
			"error":      err.Error(),
		}).Error("Failed to open product file for download")
		utils.InternalErrorResponse(c, "")
		return
	}
	defer body.Close()

	filename := filepath.Base(product.FileKey)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, body); err != nil {
		// Headers already sent; nothing to do but log.
		logrus.WithError(err).Warn("Download stream interrupted")
	}
}

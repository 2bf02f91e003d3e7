// internal/handlers/auth.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rufinostore/bubastore/internal/i18n"
	"github.com/rufinostore/bubastore/internal/services"
	"github.com/rufinostore/bubastore/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

func NewAuthHandler(authService *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// Register creates a creator account.
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, "", nil)
		return
	}

	if err := utils.ValidateStruct(&input); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	resp, err := h.authService.Register(&input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken), errors.Is(err, services.ErrUsernameTaken):
			lang := utils.GetLangFromContext(c)
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyAuthUserExists))
		default:
			utils.InternalErrorResponse(c, "")
		}
		return
	}

	utils.CreatedResponse(c, resp)
}

// Login authenticates with email and password.
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input services.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, "", nil)
		return
	}

	if err := utils.ValidateStruct(&input); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	resp, err := h.authService.Login(&input)
	if err != nil {
		lang := utils.GetLangFromContext(c)
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCredentials))
		case errors.Is(err, services.ErrUserNotActive):
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyUserSuspended))
		default:
			utils.InternalErrorResponse(c, "")
		}
		return
	}

	utils.SuccessResponse(c, resp)
}

// RefreshToken exchanges a refresh token for a new pair.
// POST /api/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, "", nil)
		return
	}

	resp, err := h.authService.RefreshToken(input.RefreshToken)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	utils.SuccessResponse(c, resp)
}

// GetProfile returns the authenticated user.
// GET /api/auth/me
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	user, err := h.authService.GetProfile(userID)
	if err != nil {
		utils.NotFoundResponse(c, "user")
		return
	}

	utils.SuccessResponse(c, user)
}

// UpdateProfile updates the authenticated user's storefront profile.
// PUT /api/auth/me
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var input services.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, "", nil)
		return
	}

	if err := utils.ValidateStruct(&input); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	user, err := h.userService.UpdateProfile(userID, &input)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, user)
}

// UploadAvatar replaces the authenticated user's avatar.
// POST /api/auth/me/avatar
func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		utils.BadRequestResponse(c, "avatar file is required", nil)
		return
	}
	defer file.Close()

	user, err := h.userService.UploadAvatar(userID, file, header)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, user)
}

// currentUserID parses the authenticated user id set by the auth
// middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

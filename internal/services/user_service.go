// internal/services/user_service.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rufinostore/bubastore/internal/config"
	"github.com/rufinostore/bubastore/internal/models"
)

var ErrStorefrontNotFound = errors.New("storefront not found")

type UserService struct {
	db      *gorm.DB
	cfg     *config.Config
	storage *StorageService
}

type UpdateProfileInput struct {
	StoreName   *string       `json:"store_name" validate:"omitempty,max=100"`
	Bio         *string       `json:"bio" validate:"omitempty,max=2000"`
	ProfileData *models.JSONB `json:"profile_data"`
}

// Storefront is the public view of a creator's page: profile plus
// active products, nothing private.
type Storefront struct {
	Username  string           `json:"username"`
	StoreName string           `json:"store_name"`
	Bio       string           `json:"bio"`
	AvatarURL string           `json:"avatar_url"`
	Products  []models.Product `json:"products"`
}

func NewUserService(db *gorm.DB, cfg *config.Config, storage *StorageService) *UserService {
	return &UserService{
		db:      db,
		cfg:     cfg,
		storage: storage,
	}
}

// GetStorefront resolves a public page by username. Suspended or banned
// sellers have no public page. When the viewer is the storefront owner
// the listing also includes inactive products, so creators can preview
// drafts on their own page.
func (s *UserService) GetStorefront(username string, viewerID uuid.UUID) (*Storefront, error) {
	var user models.User
	err := s.db.Where("username = ? AND status = ?", strings.ToLower(username), models.UserStatusActive).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStorefrontNotFound
		}
		return nil, fmt.Errorf("failed to load storefront: %w", err)
	}

	productQuery := s.db.Where("user_id = ?", user.ID)
	if viewerID != user.ID {
		productQuery = productQuery.Where("active = ?", true)
	}

	var products []models.Product
	err = productQuery.Order("created_at desc").Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load storefront products: %w", err)
	}

	return &Storefront{
		Username:  user.Username,
		StoreName: user.StoreName,
		Bio:       user.Bio,
		AvatarURL: user.AvatarURL,
		Products:  products,
	}, nil
}

func (s *UserService) UpdateProfile(userID uuid.UUID, input *UpdateProfileInput) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.StoreName != nil {
		updates["store_name"] = *input.StoreName
	}
	if input.Bio != nil {
		updates["bio"] = *input.Bio
	}
	if input.ProfileData != nil {
		updates["profile_data"] = *input.ProfileData
	}

	if len(updates) > 0 {
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	return &user, nil
}

// UploadAvatar replaces the user's avatar image.
func (s *UserService) UploadAvatar(userID uuid.UUID, file multipart.File, header *multipart.FileHeader) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}

	result, err := s.storage.UploadFile(file, header, s.storage.GetDefaultUploadOptions("avatars"))
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(&user).Update("avatar_url", result.URL).Error; err != nil {
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}

	user.AvatarURL = result.URL
	return &user, nil
}

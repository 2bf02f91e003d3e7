// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/rufinostore/bubastore/internal/config"
	"github.com/rufinostore/bubastore/internal/models"
	"github.com/rufinostore/bubastore/internal/utils"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNotProductOwner = errors.New("not the product owner")
)

type ProductService struct {
	db      *gorm.DB
	cfg     *config.Config
	storage *StorageService
}

type CreateProductInput struct {
	Title       string   `json:"title" validate:"required,min=3,max=255"`
	Description string   `json:"description" validate:"max=5000"`
	PriceBRL    float64  `json:"price_brl" validate:"required,gt=0"`
	PriceUSD    float64  `json:"price_usd" validate:"required,gt=0"`
	Tags        []string `json:"tags" validate:"max=10,dive,max=50"`
}

type UpdateProductInput struct {
	Title       *string  `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	PriceBRL    *float64 `json:"price_brl" validate:"omitempty,gt=0"`
	PriceUSD    *float64 `json:"price_usd" validate:"omitempty,gt=0"`
	Tags        []string `json:"tags" validate:"omitempty,max=10,dive,max=50"`
	Active      *bool    `json:"active"`
}

type ProductFilter struct {
	utils.PaginationParams
	UserID     *uuid.UUID
	ActiveOnly bool
}

func NewProductService(db *gorm.DB, cfg *config.Config, storage *StorageService) *ProductService {
	return &ProductService{
		db:      db,
		cfg:     cfg,
		storage: storage,
	}
}

// Create registers a product without its file; the file is attached via
// AttachFile once uploaded. Products stay inactive until a file exists.
func (s *ProductService) Create(userID uuid.UUID, input *CreateProductInput) (*models.Product, error) {
	product := &models.Product{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		PriceBRL:    input.PriceBRL,
		PriceUSD:    input.PriceUSD,
		Tags:        pq.StringArray(input.Tags),
		Active:      false,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func (s *ProductService) GetByID(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("User").First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// GetOwned loads a product and enforces ownership.
func (s *ProductService) GetOwned(id, userID uuid.UUID) (*models.Product, error) {
	product, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product.UserID != userID {
		return nil, ErrNotProductOwner
	}
	return product, nil
}

func (s *ProductService) Update(id, userID uuid.UUID, input *UpdateProductInput) (*models.Product, error) {
	product, err := s.GetOwned(id, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.PriceBRL != nil {
		updates["price_brl"] = *input.PriceBRL
	}
	if input.PriceUSD != nil {
		updates["price_usd"] = *input.PriceUSD
	}
	if input.Tags != nil {
		updates["tags"] = pq.StringArray(input.Tags)
	}
	if input.Active != nil {
		// A product cannot go active without a file to deliver.
		if *input.Active && product.FileURL == "" {
			return nil, fmt.Errorf("product has no file to deliver")
		}
		updates["active"] = *input.Active
	}

	if len(updates) > 0 {
		if err := s.db.Model(product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	return product, nil
}

// AttachFile uploads the deliverable and points the product at it.
// Replacing the file invalidates download links issued for the old one.
func (s *ProductService) AttachFile(id, userID uuid.UUID, file multipart.File, header *multipart.FileHeader) (*models.Product, error) {
	product, err := s.GetOwned(id, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.storage.UploadFile(file, header, s.storage.GetDefaultUploadOptions("product_files"))
	if err != nil {
		return nil, err
	}

	oldKey := product.FileKey
	updates := map[string]interface{}{
		"file_url": result.URL,
		"file_key": result.Key,
	}
	if err := s.db.Model(product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to attach product file: %w", err)
	}

	if oldKey != "" && oldKey != result.Key {
		if err := s.storage.DeleteFile(oldKey); err != nil {
			// Orphaned object, not a failed attach.
			logrus.WithField("key", oldKey).WithError(err).Warn("Failed to delete replaced product file")
		}
	}

	product.FileURL = result.URL
	product.FileKey = result.Key
	return product, nil
}

// AttachCover uploads a cover image for the product page.
func (s *ProductService) AttachCover(id, userID uuid.UUID, file multipart.File, header *multipart.FileHeader) (*models.Product, error) {
	product, err := s.GetOwned(id, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.storage.UploadFile(file, header, s.storage.GetDefaultUploadOptions("covers"))
	if err != nil {
		return nil, err
	}

	oldKey := product.CoverKey
	updates := map[string]interface{}{
		"cover_url": result.URL,
		"cover_key": result.Key,
	}
	if err := s.db.Model(product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to attach product cover: %w", err)
	}

	if oldKey != "" && oldKey != result.Key {
		s.storage.DeleteFile(oldKey)
	}

	product.CoverURL = result.URL
	product.CoverKey = result.Key
	return product, nil
}

// Delete soft-deletes the product and deactivates it. Sale rows keep
// referencing it for history.
func (s *ProductService) Delete(id, userID uuid.UUID) error {
	product, err := s.GetOwned(id, userID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(product).Update("active", false).Error; err != nil {
			return err
		}
		return tx.Delete(product).Error
	})
}

func (s *ProductService) List(filter *ProductFilter) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if filter.Search != "" {
		query = query.Where(
			"to_tsvector('portuguese', title || ' ' || COALESCE(description, '')) @@ plainto_tsquery('portuguese', ?)",
			filter.Search,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "title", "price_brl", "price_usd", "sales_count"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

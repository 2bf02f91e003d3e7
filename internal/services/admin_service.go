// internal/services/admin_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rufinostore/bubastore/internal/config"
	"github.com/rufinostore/bubastore/internal/models"
	"github.com/rufinostore/bubastore/internal/utils"
)

type AdminService struct {
	db  *gorm.DB
	cfg *config.Config
}

type DashboardStats struct {
	TotalUsers        int64   `json:"total_users"`
	ActiveUsers       int64   `json:"active_users"`
	TotalProducts     int64   `json:"total_products"`
	ActiveProducts    int64   `json:"active_products"`
	TotalSales        int64   `json:"total_sales"`
	GrossRevenue      float64 `json:"gross_revenue"`
	CommissionRevenue float64 `json:"commission_revenue"`
	PendingNotify     int64   `json:"pending_notify"`
}

type UserFilter struct {
	utils.PaginationParams
	Status   *models.UserStatus
	UserType *models.UserType
}

func NewAdminService(db *gorm.DB, cfg *config.Config) *AdminService {
	return &AdminService{
		db:  db,
		cfg: cfg,
	}
}

// GetDashboardStats aggregates the platform-wide numbers for the admin
// dashboard. Commission revenue is the platform's take of paid sales.
func (s *AdminService) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	if err := s.db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if err := s.db.Model(&models.User{}).Where("status = ?", models.UserStatusActive).
		Count(&stats.ActiveUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count active users: %w", err)
	}

	if err := s.db.Model(&models.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if err := s.db.Model(&models.Product{}).Where("active = ?", true).
		Count(&stats.ActiveProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count active products: %w", err)
	}

	if err := s.db.Model(&models.Sale{}).Where("status = ?", models.PaymentStatusPaid).
		Count(&stats.TotalSales).Error; err != nil {
		return nil, fmt.Errorf("failed to count sales: %w", err)
	}
	s.db.Model(&models.Sale{}).Where("status = ?", models.PaymentStatusPaid).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.GrossRevenue)
	s.db.Model(&models.Sale{}).Where("status = ?", models.PaymentStatusPaid).
		Select("COALESCE(SUM(commission_amount), 0)").Scan(&stats.CommissionRevenue)
	s.db.Model(&models.Sale{}).
		Where("status = ? AND notify_status = ?", models.PaymentStatusPaid, models.NotifyStatusPending).
		Count(&stats.PendingNotify)

	return stats, nil
}

func (s *AdminService) ListUsers(filter *UserFilter) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.UserType != nil {
		query = query.Where("user_type = ?", *filter.UserType)
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("username ILIKE ? OR email ILIKE ? OR store_name ILIKE ?", search, search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	allowedSortFields := []string{"created_at", "username", "email", "last_login_at"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

// UpdateUserStatus suspends, bans, or reactivates a user. Products of a
// non-active user disappear from storefronts and cannot be bought.
func (s *AdminService) UpdateUserStatus(userID uuid.UUID, status models.UserStatus) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&user).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}

	user.Status = status
	return &user, nil
}

func (s *AdminService) ListProducts(filter *ProductFilter) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).Preload("User")

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if filter.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "title", "sales_count"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

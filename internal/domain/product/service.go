// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/your-org/inventory-backend/internal/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrProductNotFound is returned when a SKU is not in the catalog
	ErrProductNotFound = errors.New("product not found")

	// ErrProductExists is returned when creating a SKU that is already taken
	ErrProductExists = errors.New("product already exists")

	// ErrInvalidProduct wraps validation failures of a create request
	ErrInvalidProduct = errors.New("invalid product")
)

// Service is the product catalog
type Service struct {
	db       *gorm.DB
	validate *validator.Validate
}

// NewService creates a new product service
func NewService(db *gorm.DB) *Service {
	return &Service{
		db:       db,
		validate: validator.New(),
	}
}

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	SKU          string          `json:"sku" binding:"required" validate:"required,max=50"`
	Name         string          `json:"name" binding:"required" validate:"required,max=200"`
	Category     string          `json:"category" binding:"required" validate:"required,max=50"`
	Subcategory  string          `json:"subcategory" validate:"max=50"`
	Brand        string          `json:"brand" validate:"max=100"`
	Size         string          `json:"size" validate:"max=20"`
	Color        string          `json:"color" validate:"max=50"`
	Fabric       string          `json:"fabric" validate:"max=50"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellPrice    decimal.Decimal `json:"sell_price"`
	ReorderPoint *int            `json:"reorder_point" validate:"omitempty,min=0"`
	LeadTimeDays *int            `json:"lead_time_days" validate:"omitempty,min=1"`
	HSNCode      string          `json:"hsn_code" validate:"max=10"`
}

// ListRequest filters the catalog listing
type ListRequest struct {
	Category   string
	ActiveOnly bool
	Offset     int
	Limit      int
}

// Create adds a product to the catalog
func (s *Service) Create(ctx context.Context, req *CreateProductRequest) (*Product, error) {
	req.SKU = strings.TrimSpace(req.SKU)
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}
	if !req.CostPrice.IsPositive() || !req.SellPrice.IsPositive() {
		return nil, fmt.Errorf("%w: cost_price and sell_price must be greater than 0", ErrInvalidProduct)
	}

	p := &Product{
		SKU:          req.SKU,
		Name:         req.Name,
		Category:     req.Category,
		Subcategory:  req.Subcategory,
		Brand:        req.Brand,
		Size:         req.Size,
		Color:        req.Color,
		Fabric:       req.Fabric,
		CostPrice:    req.CostPrice.Round(2),
		SellPrice:    req.SellPrice.Round(2),
		ReorderPoint: 5,
		LeadTimeDays: 7,
		HSNCode:      req.HSNCode,
		Active:       true,
	}
	if req.ReorderPoint != nil {
		p.ReorderPoint = *req.ReorderPoint
	}
	if req.LeadTimeDays != nil {
		p.LeadTimeDays = *req.LeadTimeDays
	}

	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrProductExists, p.SKU)
		}
		return nil, apperr.Storage("create product", err)
	}

	return p, nil
}

// Get returns a product by SKU
func (s *Service) Get(ctx context.Context, sku string) (*Product, error) {
	var p Product
	if err := s.db.WithContext(ctx).Where("sku = ?", sku).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, sku)
		}
		return nil, apperr.Storage("get product", err)
	}
	return &p, nil
}

// Exists reports whether the SKU is in the catalog
func (s *Service) Exists(ctx context.Context, sku string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Product{}).Where("sku = ?", sku).Count(&count).Error; err != nil {
		return false, apperr.Storage("check product", err)
	}
	return count > 0, nil
}

// List returns catalog entries ordered by SKU
func (s *Service) List(ctx context.Context, req ListRequest) ([]Product, error) {
	query := s.db.WithContext(ctx).Model(&Product{})
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}
	if req.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if req.Limit > 0 {
		query = query.Offset(req.Offset).Limit(req.Limit)
	}

	var products []Product
	if err := query.Order("sku ASC").Find(&products).Error; err != nil {
		return nil, apperr.Storage("list products", err)
	}
	return products, nil
}

// Deactivate hides a product from listings and forecasts. Its ledger stays intact.
func (s *Service) Deactivate(ctx context.Context, sku string) error {
	res := s.db.WithContext(ctx).Model(&Product{}).Where("sku = ?", sku).Update("active", false)
	if res.Error != nil {
		return apperr.Storage("deactivate product", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrProductNotFound, sku)
	}
	return nil
}

// LockForStockChange loads the product row inside tx with a row lock so that
// concurrent stock writers for the same SKU queue behind each other.
// Databases without row locks (SQLite) ignore the locking clause.
func LockForStockChange(ctx context.Context, tx *gorm.DB, sku string) (*Product, error) {
	var p Product
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("sku = ?", sku).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, sku)
		}
		return nil, apperr.Storage("lock product", err)
	}
	return &p, nil
}

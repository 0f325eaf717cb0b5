package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/norvik-erp/jobcard-api/internal/domain"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetByIDWithComponents loads a product including its bill-of-materials lines
func (r *ProductRepository) GetByIDWithComponents(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).
		Preload("Components").
		Preload("Components.Component").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindServiceProductByName looks up an active service product by exact name
func (r *ProductRepository) FindServiceProductByName(ctx context.Context, name string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).
		Where("name = ? AND product_type = ? AND is_active = ?", name, domain.ProductTypeService, true).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

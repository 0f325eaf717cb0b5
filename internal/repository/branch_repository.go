package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/norvik-erp/jobcard-api/internal/domain"
	"gorm.io/gorm"
)

type BranchRepository struct {
	db *gorm.DB
}

func NewBranchRepository(db *gorm.DB) *BranchRepository {
	return &BranchRepository{db: db}
}

func (r *BranchRepository) Create(ctx context.Context, branch *domain.Branch) error {
	return r.db.WithContext(ctx).Create(branch).Error
}

func (r *BranchRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Branch, error) {
	var branch domain.Branch
	err := r.db.WithContext(ctx).First(&branch, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

// GetHeadquarters returns the branch flagged as headquarters
func (r *BranchRepository) GetHeadquarters(ctx context.Context) (*domain.Branch, error) {
	var branch domain.Branch
	err := r.db.WithContext(ctx).
		Where("is_headquarters = ? AND is_active = ?", true, true).
		First(&branch).Error
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *BranchRepository) List(ctx context.Context) ([]domain.Branch, error) {
	var branches []domain.Branch
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&branches).Error
	return branches, err
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/norvik-erp/jobcard-api/internal/domain"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Preload("Branch").
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListActiveByRole returns active users carrying the given role, optionally
// restricted to users compatible with a branch (assigned to it or unassigned).
// Roles are stored as a postgres text array, so the role filter matches the
// serialized array literal.
func (r *UserRepository) ListActiveByRole(ctx context.Context, role string, branchID *uuid.UUID, search string) ([]domain.User, error) {
	var users []domain.User

	query := r.db.WithContext(ctx).
		Preload("Branch").
		Where("is_active = ?", true)

	if role != "" {
		// Cast keeps the filter portable: the array literal is matched as
		// text on postgres and sqlite alike.
		query = query.Where("CAST(roles AS TEXT) LIKE ?", "%"+role+"%")
	}
	if branchID != nil {
		query = query.Where("branch_id = ? OR branch_id IS NULL", *branchID)
	}
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", pattern, pattern)
	}

	err := query.Order("name ASC").Find(&users).Error
	return users, err
}

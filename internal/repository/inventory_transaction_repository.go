package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/norvik-erp/jobcard-api/internal/domain"
	"gorm.io/gorm"
)

type InventoryTransactionRepository struct {
	db *gorm.DB
}

func NewInventoryTransactionRepository(db *gorm.DB) *InventoryTransactionRepository {
	return &InventoryTransactionRepository{db: db}
}

func (r *InventoryTransactionRepository) Create(ctx context.Context, txn *domain.InventoryTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// UnlinkJobCard clears the job card back-reference on all transactions
// for the job. The transactions themselves are kept as audit history.
func (r *InventoryTransactionRepository) UnlinkJobCard(ctx context.Context, jobCardID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&domain.InventoryTransaction{}).
		Where("job_card_id = ?", jobCardID).
		Update("job_card_id", nil).Error
}

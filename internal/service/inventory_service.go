package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/norvik-erp/jobcard-api/internal/domain"
	"github.com/norvik-erp/jobcard-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryService is the in-process inventory collaborator. It adjusts
// product stock and writes one audit transaction per movement. Stock may
// go negative; physical count corrections are handled elsewhere.
type InventoryService struct {
	logger *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(logger *zap.Logger) *InventoryService {
	return &InventoryService{logger: logger}
}

// UpdateQuantity applies one stock movement inside the caller's
// transaction. Service products keep no stock; the audit row is still
// written so the movement stays traceable.
func (s *InventoryService) UpdateQuantity(ctx context.Context, tx *gorm.DB, upd InventoryUpdate) (*domain.InventoryTransaction, error) {
	var product domain.Product
	query := tx.Where("id = ?", upd.ProductID)
	if tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, upd.ProductID)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product.ProductType == domain.ProductTypeStock {
		newQuantity := product.StockQuantity.Add(upd.QuantityDelta)
		if err := tx.Model(&domain.Product{}).
			Where("id = ?", product.ID).
			Update("stock_quantity", newQuantity).Error; err != nil {
			return nil, fmt.Errorf("failed to update stock: %w", err)
		}
	}

	txn := domain.InventoryTransaction{
		ProductID:       product.ID,
		BranchID:        upd.BranchID,
		TransactionType: upd.TransactionType,
		QuantityDelta:   upd.QuantityDelta,
		Reference:       upd.Reference,
		JobCardID:       upd.JobCardID,
		Note:            upd.Note,
		CreatedByID:     upd.ActorID,
	}
	if err := repository.NewInventoryTransactionRepository(tx).Create(ctx, &txn); err != nil {
		return nil, fmt.Errorf("failed to record inventory transaction: %w", err)
	}

	s.logger.Debug("applied inventory movement",
		zap.String("productID", product.ID.String()),
		zap.String("type", string(upd.TransactionType)),
		zap.String("delta", upd.QuantityDelta.String()))
	return &txn, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/norvik-erp/jobcard-api/internal/domain"
	"github.com/norvik-erp/jobcard-api/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ManufacturingService is the in-process manufacturing collaborator. A
// production run consumes the product's bill-of-materials components and
// books the finished quantity into stock at the headquarters branch.
type ManufacturingService struct {
	inventory InventoryCollaborator
	logger    *zap.Logger
}

// NewManufacturingService creates a new ManufacturingService
func NewManufacturingService(inventory InventoryCollaborator, logger *zap.Logger) *ManufacturingService {
	return &ManufacturingService{inventory: inventory, logger: logger}
}

// ProduceToHeadquarters consumes components and produces finished goods
// inside the caller's transaction. Labor and overhead costs are recorded
// on the audit note of the production-in movement.
func (s *ManufacturingService) ProduceToHeadquarters(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity, laborCost, overheadCost decimal.Decimal, actorID, notes string) (*ProductionResult, error) {
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("production quantity must be positive, got %s", quantity)
	}

	product, err := repository.NewProductRepository(tx).GetByIDWithComponents(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	var hq domain.Branch
	if err := tx.Where("is_headquarters = ? AND is_active = ?", true, true).First(&hq).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no active headquarters branch", ErrBranchNotFound)
		}
		return nil, fmt.Errorf("failed to get headquarters branch: %w", err)
	}

	reference := fmt.Sprintf("Production %s x %s", quantity, product.Name)

	for _, component := range product.Components {
		consumed := component.Quantity.Mul(quantity)
		if _, err := s.inventory.UpdateQuantity(ctx, tx, InventoryUpdate{
			ProductID:       component.ComponentID,
			QuantityDelta:   consumed.Neg(),
			TransactionType: domain.TransactionTypeProductionOut,
			Reference:       reference,
			BranchID:        &hq.ID,
			Note:            notes,
			ActorID:         actorID,
		}); err != nil {
			return nil, fmt.Errorf("failed to consume component %s: %w", component.ComponentID, err)
		}
	}

	auditNote := notes
	if laborCost.IsPositive() || overheadCost.IsPositive() {
		auditNote = fmt.Sprintf("%s (labor %s, overhead %s)", notes, laborCost, overheadCost)
	}
	if _, err := s.inventory.UpdateQuantity(ctx, tx, InventoryUpdate{
		ProductID:       product.ID,
		QuantityDelta:   quantity,
		TransactionType: domain.TransactionTypeProductionIn,
		Reference:       reference,
		BranchID:        &hq.ID,
		Note:            auditNote,
		ActorID:         actorID,
	}); err != nil {
		return nil, fmt.Errorf("failed to book finished goods: %w", err)
	}

	s.logger.Info("completed production run",
		zap.String("productID", product.ID.String()),
		zap.String("product", product.Name),
		zap.String("quantity", quantity.String()),
		zap.String("branch", hq.Name))

	return &ProductionResult{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
	}, nil
}

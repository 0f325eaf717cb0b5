package service

import (
	"context"
	"fmt"

	"github.com/norvik-erp/jobcard-api/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// completeProduction runs the manufacturing hook for production job cards
// with a bill-of-materials product. The labor contribution to the
// production cost is the billed labor price of the job card; overhead is
// not charged here. A system note records the produced quantity.
func (s *JobCardService) completeProduction(ctx context.Context, tx *gorm.DB, job *domain.JobCard, actorID string) error {
	quantity := job.ProductionQty
	if !quantity.IsPositive() {
		quantity = decimal.NewFromInt(1)
	}

	laborCost := decimal.Zero
	for _, l := range job.Labor {
		laborCost = laborCost.Add(l.TotalPrice)
	}

	result, err := s.manufacturing.ProduceToHeadquarters(ctx, tx,
		*job.BomProductID, quantity, laborCost, decimal.Zero,
		actorID, fmt.Sprintf("Job card %s production", job.JobNumber))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrManufacturingFailed, err)
	}

	note := domain.JobCardNote{
		JobCardID: job.ID,
		Note:      fmt.Sprintf("Produced %s x %s", quantity.String(), result.ProductName),
		AuthorID:  actorID,
	}
	if err := tx.Create(&note).Error; err != nil {
		return fmt.Errorf("failed to record production note: %w", err)
	}

	s.logger.Info("completed production for job card",
		zap.String("jobCardID", job.ID.String()),
		zap.String("productID", result.ProductID.String()),
		zap.String("quantity", quantity.String()))
	return nil
}

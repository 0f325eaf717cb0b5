package service

import (
	"context"
	"fmt"
	"time"

	"github.com/norvik-erp/jobcard-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// issueMaterials deducts stock for every material line that has not been
// issued yet. Already-issued lines and non-positive quantities are
// skipped, so repeated calls settle only the delta.
func (s *JobCardService) issueMaterials(ctx context.Context, tx *gorm.DB, job *domain.JobCard, actorID string) error {
	for i := range job.Materials {
		line := &job.Materials[i]
		if line.IsIssued || !line.Quantity.IsPositive() {
			continue
		}

		txn, err := s.inventory.UpdateQuantity(ctx, tx, InventoryUpdate{
			ProductID:       line.ProductID,
			QuantityDelta:   line.Quantity.Neg(),
			TransactionType: domain.TransactionTypeJobIssue,
			Reference:       fmt.Sprintf("JobCard %s Material %s", job.JobNumber, line.ProductID),
			BranchID:        &job.BranchID,
			JobCardID:       &job.ID,
			ActorID:         actorID,
		})
		if err != nil {
			return fmt.Errorf("%w: issue of product %s: %v", ErrInventoryUpdateFailed, line.ProductID, err)
		}

		now := time.Now().UTC()
		line.IsIssued = true
		line.IssuedAt = &now
		line.InventoryTransactionID = &txn.ID
		if err := tx.Omit(clause.Associations).Save(line).Error; err != nil {
			return fmt.Errorf("failed to mark material issued: %w", err)
		}
	}
	return nil
}

// returnMaterials restocks every issued material line and clears its
// issuance markers, the exact inverse of issueMaterials. The original
// issue transactions stay in the audit trail.
func (s *JobCardService) returnMaterials(ctx context.Context, tx *gorm.DB, job *domain.JobCard, actorID string) error {
	for i := range job.Materials {
		line := &job.Materials[i]
		if !line.IsIssued {
			continue
		}

		_, err := s.inventory.UpdateQuantity(ctx, tx, InventoryUpdate{
			ProductID:       line.ProductID,
			QuantityDelta:   line.Quantity,
			TransactionType: domain.TransactionTypeJobReturn,
			Reference:       fmt.Sprintf("JobCard %s Material %s", job.JobNumber, line.ProductID),
			BranchID:        &job.BranchID,
			JobCardID:       &job.ID,
			ActorID:         actorID,
		})
		if err != nil {
			return fmt.Errorf("%w: return of product %s: %v", ErrInventoryUpdateFailed, line.ProductID, err)
		}

		line.IsIssued = false
		line.IssuedAt = nil
		line.InventoryTransactionID = nil
		if err := tx.Omit(clause.Associations).Save(line).Error; err != nil {
			return fmt.Errorf("failed to mark material returned: %w", err)
		}
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/norvik-erp/jobcard-api/internal/domain"
	"github.com/norvik-erp/jobcard-api/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// syncMaterials writes incoming material lines for a job card. In replace
// mode all existing lines are deleted first, which also discards their
// issuance markers; in append mode existing lines are untouched. Lines
// with a non-positive quantity are skipped. Unit cost and price default
// to the product's cost and selling price.
func (s *JobCardService) syncMaterials(ctx context.Context, tx *gorm.DB, job *domain.JobCard, inputs []domain.JobCardMaterialInput, mode domain.LineSyncMode) error {
	if mode == domain.SyncModeReplace {
		if err := tx.Where("job_card_id = ?", job.ID).Delete(&domain.JobCardMaterial{}).Error; err != nil {
			return fmt.Errorf("failed to clear material lines: %w", err)
		}
		job.Materials = nil
	}

	products := repository.NewProductRepository(tx)
	for _, in := range inputs {
		product, err := products.GetByID(ctx, in.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrProductNotFound, in.ProductID)
			}
			return fmt.Errorf("failed to get product: %w", err)
		}
		if product.BranchID != nil && *product.BranchID != job.BranchID {
			return fmt.Errorf("%w: product %s belongs to another branch", ErrProductBranchMismatch, product.Name)
		}

		if !in.Quantity.IsPositive() {
			continue
		}

		unitCost := product.CostPrice
		if in.UnitCost != nil {
			unitCost = *in.UnitCost
		}
		unitPrice := product.SellingPrice
		if in.UnitPrice != nil {
			unitPrice = *in.UnitPrice
		}

		line := domain.JobCardMaterial{
			JobCardID:  job.ID,
			ProductID:  product.ID,
			Quantity:   in.Quantity,
			UnitCost:   unitCost,
			UnitPrice:  unitPrice,
			TotalCost:  unitCost.Mul(in.Quantity).Round(2),
			TotalPrice: unitPrice.Mul(in.Quantity).Round(2),
			Notes:      in.Notes,
		}
		if err := tx.Create(&line).Error; err != nil {
			return fmt.Errorf("failed to create material line: %w", err)
		}
		line.Product = product
		job.Materials = append(job.Materials, line)
	}

	return nil
}

// syncLabor writes incoming labor lines for a job card. Cost rate defaults
// to the billing rate when not given. A referenced technician must be
// active and compatible with the job card's branch.
func (s *JobCardService) syncLabor(tx *gorm.DB, job *domain.JobCard, inputs []domain.JobCardLaborInput, mode domain.LineSyncMode) error {
	if mode == domain.SyncModeReplace {
		if err := tx.Where("job_card_id = ?", job.ID).Delete(&domain.JobCardLabor{}).Error; err != nil {
			return fmt.Errorf("failed to clear labor lines: %w", err)
		}
		job.Labor = nil
	}

	for _, in := range inputs {
		if strings.TrimSpace(in.Description) == "" {
			return fmt.Errorf("%w: labor line requires a description", ErrInvalidInput)
		}

		if in.TechnicianID != nil && *in.TechnicianID != "" {
			if _, err := s.validateTechnician(tx, in.TechnicianID, job.BranchID); err != nil {
				return err
			}
		}

		costRate := in.Rate
		if in.CostRate != nil {
			costRate = *in.CostRate
		}

		line := domain.JobCardLabor{
			JobCardID:    job.ID,
			Description:  in.Description,
			Hours:        in.Hours,
			Rate:         in.Rate,
			CostRate:     costRate,
			TotalPrice:   in.Rate.Mul(in.Hours).Round(2),
			TotalCost:    costRate.Mul(in.Hours).Round(2),
			TechnicianID: in.TechnicianID,
			ProductID:    in.ProductID,
			Notes:        in.Notes,
		}
		if err := tx.Create(&line).Error; err != nil {
			return fmt.Errorf("failed to create labor line: %w", err)
		}
		job.Labor = append(job.Labor, line)
	}

	return nil
}

// CalculateTotals recomputes every derived money field on the job card
// from its in-memory lines:
//
//	subtotal  = material price + labor price
//	vat       = subtotal * vatRate / 100, rounded to 2 decimals
//	total     = subtotal + vat
//	amountDue = total - amountPaid
//
// The mutated job card is not persisted here.
func CalculateTotals(job *domain.JobCard) {
	materialCost := decimal.Zero
	materialPrice := decimal.Zero
	for _, m := range job.Materials {
		materialCost = materialCost.Add(m.TotalCost)
		materialPrice = materialPrice.Add(m.TotalPrice)
	}

	laborCost := decimal.Zero
	laborPrice := decimal.Zero
	for _, l := range job.Labor {
		laborCost = laborCost.Add(l.TotalCost)
		laborPrice = laborPrice.Add(l.TotalPrice)
	}

	job.TotalMaterialCost = materialCost
	job.TotalMaterialPrice = materialPrice
	job.TotalLaborCost = laborCost
	job.TotalLaborPrice = laborPrice

	job.Subtotal = materialPrice.Add(laborPrice)
	job.VatAmount = job.Subtotal.Mul(job.VatRate).Div(hundred).Round(2)
	job.TotalAmount = job.Subtotal.Add(job.VatAmount)
	job.AmountDue = job.TotalAmount.Sub(job.AmountPaid)
}

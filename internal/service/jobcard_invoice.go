package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/norvik-erp/jobcard-api/internal/domain"
	"github.com/norvik-erp/jobcard-api/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobLabourProductName names the shared service product that carries
// labor charges on invoices. It is created on first use.
const JobLabourProductName = "Job Labour"

// GenerateInvoice creates an invoice for a job card's billable lines and
// links it back. Calling it on an already invoiced job card is a no-op.
func (s *JobCardService) GenerateInvoice(ctx context.Context, id uuid.UUID, actorID string, saveDraft, isCashSale bool) (*domain.JobCardDTO, error) {
	job, err := s.jobCardRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobCardNotFound
		}
		return nil, fmt.Errorf("failed to get job card: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.generateInvoiceTx(ctx, tx, job, actorID, saveDraft, isCashSale)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, job.ID)
}

// generateInvoiceTx builds the invoice inside the caller's transaction.
// Billable lines are materials with a positive quantity and labor lines
// with a positive total price; labor rides on the shared labor service
// product unless the line names its own.
func (s *JobCardService) generateInvoiceTx(ctx context.Context, tx *gorm.DB, job *domain.JobCard, actorID string, saveDraft, isCashSale bool) error {
	if job.InvoiceGenerated && job.InvoiceID != nil {
		return nil
	}
	if job.CustomerID == nil {
		return ErrCustomerRequired
	}

	var customer domain.Customer
	if err := tx.First(&customer, "id = ?", *job.CustomerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to get customer: %w", err)
	}

	var lines []InvoiceLineInput
	for i := range job.Materials {
		m := &job.Materials[i]
		if !m.Quantity.IsPositive() {
			continue
		}
		description := m.Notes
		if m.Product != nil {
			description = m.Product.Name
		}
		lines = append(lines, InvoiceLineInput{
			ProductID:   m.ProductID,
			Description: description,
			Quantity:    m.Quantity,
			UnitPrice:   m.UnitPrice,
			VatRate:     job.VatRate,
		})
	}

	var laborProduct *domain.Product
	for i := range job.Labor {
		l := &job.Labor[i]
		if !l.TotalPrice.IsPositive() {
			continue
		}

		productID := uuid.Nil
		if l.ProductID != nil {
			productID = *l.ProductID
		} else {
			if laborProduct == nil {
				p, err := s.resolveLaborProduct(ctx, tx)
				if err != nil {
					return err
				}
				laborProduct = p
			}
			productID = laborProduct.ID
		}

		quantity := l.Hours
		unitPrice := l.Rate
		if !quantity.IsPositive() {
			quantity = decimal.NewFromInt(1)
			unitPrice = l.TotalPrice
		}

		lines = append(lines, InvoiceLineInput{
			ProductID:   productID,
			Description: l.Description,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			VatRate:     job.VatRate,
		})
	}

	if len(lines) == 0 {
		return ErrNoBillableItems
	}

	dueDate := time.Now().UTC()
	if job.DueDate != nil {
		dueDate = *job.DueDate
	}

	invoice, err := s.invoicing.CreateInvoice(ctx, tx, CreateInvoiceInput{
		CustomerID:         customer.ID,
		BranchID:           job.BranchID,
		Lines:              lines,
		DueDate:            dueDate,
		PaymentTermDays:    customer.PaymentTermDays,
		DiscountPercentage: decimal.Zero,
		Notes:              fmt.Sprintf("Job card %s", job.JobNumber),
		ActorID:            actorID,
		SaveDraft:          saveDraft,
		IsCashSale:         isCashSale,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvoiceCreationFailed, err)
	}

	job.InvoiceGenerated = true
	job.InvoiceID = &invoice.ID
	job.AmountDue = invoice.TotalAmount.Sub(invoice.AmountPaid)
	if actorID != "" {
		job.UpdatedByID = actorID
	}
	if err := tx.Omit(clause.Associations).Save(job).Error; err != nil {
		return fmt.Errorf("failed to link invoice: %w", err)
	}

	s.logger.Info("generated invoice for job card",
		zap.String("jobCardID", job.ID.String()),
		zap.String("jobNumber", job.JobNumber),
		zap.String("invoiceNumber", invoice.InvoiceNumber))
	return nil
}

// resolveLaborProduct finds the shared labor service product, creating it
// the first time labor is invoiced.
func (s *JobCardService) resolveLaborProduct(ctx context.Context, tx *gorm.DB) (*domain.Product, error) {
	products := repository.NewProductRepository(tx)

	product, err := products.FindServiceProductByName(ctx, JobLabourProductName)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up labor product: %w", err)
	}

	product = &domain.Product{
		SKU:         "JOB-LABOUR",
		Name:        JobLabourProductName,
		Description: "Labour charged through job cards",
		ProductType: domain.ProductTypeService,
		IsActive:    true,
	}
	if err := products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create labor product: %w", err)
	}
	return product, nil
}

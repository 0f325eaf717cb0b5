package service

import (
	"context"
	"fmt"
	"time"

	"github.com/norvik-erp/jobcard-api/internal/domain"
	"github.com/norvik-erp/jobcard-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InvoiceNumberPrefix prefixes every invoice number
const InvoiceNumberPrefix = "INV"

// InvoiceService is the in-process invoicing collaborator. It numbers
// invoices through the same counter table as job cards, under its own
// scope.
type InvoiceService struct {
	logger *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(logger *zap.Logger) *InvoiceService {
	return &InvoiceService{logger: logger}
}

// CreateInvoice creates an invoice with its items inside the caller's
// transaction. Line totals, subtotal and VAT are computed here; the due
// date falls back to today plus the customer's payment terms when the
// caller gives none.
func (s *InvoiceService) CreateInvoice(ctx context.Context, tx *gorm.DB, in CreateInvoiceInput) (*domain.Invoice, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("invoice requires at least one line")
	}

	dateKey := time.Now().UTC().Format("20060102")
	numberPrefix := fmt.Sprintf("%s-%s-", InvoiceNumberPrefix, dateKey)
	seqRepo := repository.NewJobNumberSequenceRepository(tx)
	nextSeq, err := seqRepo.NextSequence(ctx, repository.SequenceScopeInvoice, in.BranchID, dateKey, numberPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice number: %w", err)
	}

	status := domain.InvoiceStatusIssued
	if in.SaveDraft {
		status = domain.InvoiceStatusDraft
	}

	dueDate := in.DueDate
	if dueDate.IsZero() {
		dueDate = time.Now().UTC().AddDate(0, 0, in.PaymentTermDays)
	}

	invoice := domain.Invoice{
		InvoiceNumber:      fmt.Sprintf("%s%04d", numberPrefix, nextSeq),
		CustomerID:         in.CustomerID,
		BranchID:           in.BranchID,
		Status:             status,
		IsCashSale:         in.IsCashSale,
		DueDate:            dueDate,
		PaymentTermDays:    in.PaymentTermDays,
		DiscountPercentage: in.DiscountPercentage,
		Notes:              in.Notes,
		CreatedByID:        in.ActorID,
	}

	for _, line := range in.Lines {
		lineTotal := line.UnitPrice.Mul(line.Quantity).Round(2)
		invoice.Subtotal = invoice.Subtotal.Add(lineTotal)
		invoice.VatAmount = invoice.VatAmount.Add(lineTotal.Mul(line.VatRate).Div(hundred).Round(2))
		invoice.Items = append(invoice.Items, domain.InvoiceItem{
			ProductID:   line.ProductID,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			VatRate:     line.VatRate,
			LineTotal:   lineTotal,
		})
	}

	if in.DiscountPercentage.IsPositive() {
		discount := invoice.Subtotal.Mul(in.DiscountPercentage).Div(hundred).Round(2)
		invoice.Subtotal = invoice.Subtotal.Sub(discount)
	}
	invoice.TotalAmount = invoice.Subtotal.Add(invoice.VatAmount)

	if err := repository.NewInvoiceRepository(tx).Create(ctx, &invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.logger.Info("created invoice",
		zap.String("invoiceNumber", invoice.InvoiceNumber),
		zap.String("customerID", in.CustomerID.String()),
		zap.String("total", invoice.TotalAmount.String()))
	return &invoice, nil
}

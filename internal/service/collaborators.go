package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/norvik-erp/jobcard-api/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// The job card engine consumes three collaborators. Each call receives the
// enclosing gorm transaction so a collaborator failure rolls back the whole
// orchestrator operation; collaborators never commit on their own.

// InventoryUpdate describes one requested stock movement
type InventoryUpdate struct {
	ProductID       uuid.UUID
	QuantityDelta   decimal.Decimal
	TransactionType domain.InventoryTransactionType
	Reference       string
	BranchID        *uuid.UUID
	JobCardID       *uuid.UUID
	Note            string
	ActorID         string
}

// InventoryCollaborator mutates stock on behalf of the engine. The engine
// never touches stock quantities directly.
type InventoryCollaborator interface {
	UpdateQuantity(ctx context.Context, tx *gorm.DB, upd InventoryUpdate) (*domain.InventoryTransaction, error)
}

// InvoiceLineInput is one billable line handed to the invoicing collaborator
type InvoiceLineInput struct {
	ProductID   uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	VatRate     decimal.Decimal
}

// CreateInvoiceInput is the full invoice request
type CreateInvoiceInput struct {
	CustomerID         uuid.UUID
	BranchID           uuid.UUID
	Lines              []InvoiceLineInput
	DueDate            time.Time
	PaymentTermDays    int
	DiscountPercentage decimal.Decimal
	Notes              string
	ActorID            string
	SaveDraft          bool
	IsCashSale         bool
}

// InvoicingCollaborator creates customer invoices
type InvoicingCollaborator interface {
	CreateInvoice(ctx context.Context, tx *gorm.DB, in CreateInvoiceInput) (*domain.Invoice, error)
}

// ProductionResult reports a completed production run
type ProductionResult struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    decimal.Decimal
}

// ManufacturingCollaborator turns bill-of-materials components into
// finished goods at the headquarters branch
type ManufacturingCollaborator interface {
	ProduceToHeadquarters(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity, laborCost, overheadCost decimal.Decimal, actorID, notes string) (*ProductionResult, error)
}

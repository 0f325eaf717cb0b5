package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============================================================================
// Request payloads
// ============================================================================

// JobCardMaterialInput is one incoming material line
type JobCardMaterialInput struct {
	ProductID uuid.UUID        `json:"productId" validate:"required"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unitCost,omitempty"`
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
	Notes     string           `json:"notes,omitempty" validate:"max=2000"`
}

// JobCardLaborInput is one incoming labor line
type JobCardLaborInput struct {
	Description  string           `json:"description" validate:"required,max=500"`
	Hours        decimal.Decimal  `json:"hours"`
	Rate         decimal.Decimal  `json:"rate"`
	CostRate     *decimal.Decimal `json:"costRate,omitempty"`
	TechnicianID *string          `json:"technicianId,omitempty"`
	ProductID    *uuid.UUID       `json:"productId,omitempty"`
	Notes        string           `json:"notes,omitempty" validate:"max=2000"`
}

// CreateJobCardRequest creates a new job card in draft status
type CreateJobCardRequest struct {
	CustomerID    *uuid.UUID             `json:"customerId,omitempty"`
	BranchID      uuid.UUID              `json:"branchId" validate:"required"`
	JobType       JobType                `json:"jobType,omitempty"`
	Priority      JobPriority            `json:"priority,omitempty"`
	Description   string                 `json:"description,omitempty" validate:"max=5000"`
	Notes         string                 `json:"notes,omitempty" validate:"max=5000"`
	StartDate     *time.Time             `json:"startDate,omitempty"`
	DueDate       *time.Time             `json:"dueDate,omitempty"`
	TechnicianID  *string                `json:"technicianId,omitempty"`
	Currency      string                 `json:"currency,omitempty" validate:"omitempty,len=3"`
	VatRate       decimal.Decimal        `json:"vatRate"`
	BomProductID  *uuid.UUID             `json:"bomProductId,omitempty"`
	ProductionQty decimal.Decimal        `json:"productionQty"`
	Materials     []JobCardMaterialInput `json:"materials,omitempty" validate:"dive"`
	Labor         []JobCardLaborInput    `json:"labor,omitempty" validate:"dive"`
}

// UpdateJobCardRequest updates scalar fields; nil pointers leave the field unchanged
type UpdateJobCardRequest struct {
	CustomerID    *uuid.UUID             `json:"customerId,omitempty"`
	JobType       *JobType               `json:"jobType,omitempty"`
	Priority      *JobPriority           `json:"priority,omitempty"`
	Description   *string                `json:"description,omitempty"`
	Notes         *string                `json:"notes,omitempty"`
	StartDate     *time.Time             `json:"startDate,omitempty"`
	DueDate       *time.Time             `json:"dueDate,omitempty"`
	TechnicianID  *string                `json:"technicianId,omitempty"`
	VatRate       *decimal.Decimal       `json:"vatRate,omitempty"`
	AmountPaid    *decimal.Decimal       `json:"amountPaid,omitempty"`
	BomProductID  *uuid.UUID             `json:"bomProductId,omitempty"`
	ProductionQty *decimal.Decimal       `json:"productionQty,omitempty"`
	Materials     []JobCardMaterialInput `json:"materials,omitempty" validate:"dive"`
	Labor         []JobCardLaborInput    `json:"labor,omitempty" validate:"dive"`
}

// SyncMaterialsRequest replaces or appends material lines
type SyncMaterialsRequest struct {
	Mode      LineSyncMode           `json:"mode" validate:"required,oneof=replace append"`
	Materials []JobCardMaterialInput `json:"materials" validate:"dive"`
}

// SyncLaborRequest replaces or appends labor lines
type SyncLaborRequest struct {
	Mode  LineSyncMode        `json:"mode" validate:"required,oneof=replace append"`
	Labor []JobCardLaborInput `json:"labor" validate:"dive"`
}

// AddNoteRequest appends an immutable note to a job card
type AddNoteRequest struct {
	Note string `json:"note" validate:"required,max=5000"`
}

// ChangeStatusRequest requests a status transition
type ChangeStatusRequest struct {
	Status      JobCardStatus `json:"status" validate:"required"`
	AutoInvoice bool          `json:"autoInvoice"`
}

// GenerateInvoiceRequest triggers manual invoice generation
type GenerateInvoiceRequest struct {
	SaveDraft  bool `json:"saveDraft"`
	IsCashSale bool `json:"isCashSale"`
}

// ============================================================================
// Response DTOs
// ============================================================================

// JobCardMaterialDTO is the API representation of a material line
type JobCardMaterialDTO struct {
	ID                     uuid.UUID       `json:"id"`
	ProductID              uuid.UUID       `json:"productId"`
	ProductName            string          `json:"productName,omitempty"`
	Quantity               decimal.Decimal `json:"quantity"`
	UnitCost               decimal.Decimal `json:"unitCost"`
	UnitPrice              decimal.Decimal `json:"unitPrice"`
	TotalCost              decimal.Decimal `json:"totalCost"`
	TotalPrice             decimal.Decimal `json:"totalPrice"`
	IsIssued               bool            `json:"isIssued"`
	IssuedAt               *time.Time      `json:"issuedAt,omitempty"`
	InventoryTransactionID *uuid.UUID      `json:"inventoryTransactionId,omitempty"`
	Notes                  string          `json:"notes,omitempty"`
}

// JobCardLaborDTO is the API representation of a labor line
type JobCardLaborDTO struct {
	ID             uuid.UUID       `json:"id"`
	Description    string          `json:"description"`
	Hours          decimal.Decimal `json:"hours"`
	Rate           decimal.Decimal `json:"rate"`
	CostRate       decimal.Decimal `json:"costRate"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	TotalCost      decimal.Decimal `json:"totalCost"`
	TechnicianID   *string         `json:"technicianId,omitempty"`
	TechnicianName string          `json:"technicianName,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

// JobCardNoteDTO is the API representation of a note
type JobCardNoteDTO struct {
	ID        uuid.UUID `json:"id"`
	Note      string    `json:"note"`
	AuthorID  string    `json:"authorId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// InvoiceDTO is the API representation of a linked invoice
type InvoiceDTO struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoiceNumber"`
	Status        InvoiceStatus   `json:"status"`
	DueDate       time.Time       `json:"dueDate"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	VatAmount     decimal.Decimal `json:"vatAmount"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	AmountPaid    decimal.Decimal `json:"amountPaid"`
	AmountDue     decimal.Decimal `json:"amountDue"`
}

// JobCardDTO is the API representation of a job card
type JobCardDTO struct {
	ID                 uuid.UUID            `json:"id"`
	JobNumber          string               `json:"jobNumber"`
	CustomerID         *uuid.UUID           `json:"customerId,omitempty"`
	CustomerName       string               `json:"customerName,omitempty"`
	BranchID           uuid.UUID            `json:"branchId"`
	BranchName         string               `json:"branchName,omitempty"`
	Status             JobCardStatus        `json:"status"`
	JobType            JobType              `json:"jobType"`
	Priority           JobPriority          `json:"priority"`
	Description        string               `json:"description,omitempty"`
	Notes              string               `json:"notes,omitempty"`
	StartDate          *time.Time           `json:"startDate,omitempty"`
	DueDate            *time.Time           `json:"dueDate,omitempty"`
	CompletedDate      *time.Time           `json:"completedDate,omitempty"`
	TechnicianID       *string              `json:"technicianId,omitempty"`
	TechnicianName     string               `json:"technicianName,omitempty"`
	Currency           string               `json:"currency"`
	VatRate            decimal.Decimal      `json:"vatRate"`
	TotalMaterialCost  decimal.Decimal      `json:"totalMaterialCost"`
	TotalMaterialPrice decimal.Decimal      `json:"totalMaterialPrice"`
	TotalLaborCost     decimal.Decimal      `json:"totalLaborCost"`
	TotalLaborPrice    decimal.Decimal      `json:"totalLaborPrice"`
	Subtotal           decimal.Decimal      `json:"subtotal"`
	VatAmount          decimal.Decimal      `json:"vatAmount"`
	TotalAmount        decimal.Decimal      `json:"totalAmount"`
	AmountPaid         decimal.Decimal      `json:"amountPaid"`
	AmountDue          decimal.Decimal      `json:"amountDue"`
	InvoiceGenerated   bool                 `json:"invoiceGenerated"`
	Invoice            *InvoiceDTO          `json:"invoice,omitempty"`
	BomProductID       *uuid.UUID           `json:"bomProductId,omitempty"`
	ProductionQty      decimal.Decimal      `json:"productionQty"`
	Materials          []JobCardMaterialDTO `json:"materials,omitempty"`
	Labor              []JobCardLaborDTO    `json:"labor,omitempty"`
	JobNotes           []JobCardNoteDTO     `json:"jobNotes,omitempty"`
	CreatedAt          time.Time            `json:"createdAt"`
	UpdatedAt          time.Time            `json:"updatedAt"`
}

// TechnicianDTO is the API representation of an assignable technician
type TechnicianDTO struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"displayName"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	BranchID    *uuid.UUID `json:"branchId,omitempty"`
	BranchName  string     `json:"branchName,omitempty"`
}

// PaginatedResponse wraps a list response with paging metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalItems int64       `json:"totalItems"`
	TotalPages int         `json:"totalPages"`
}

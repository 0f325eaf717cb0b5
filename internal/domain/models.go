package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the database cannot (sqlite in tests
// has no gen_random_uuid default).
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Branch represents a physical location that owns stock and job cards
type Branch struct {
	BaseModel
	Name           string `gorm:"type:varchar(200);not null;index"`
	Code           string `gorm:"type:varchar(20);unique;index"`
	IsHeadquarters bool   `gorm:"not null;default:false;column:is_headquarters"`
	Address        string `gorm:"type:varchar(500)"`
	Phone          string `gorm:"type:varchar(50)"`
	IsActive       bool   `gorm:"not null;default:true;column:is_active"`
}

// ProductType represents the kind of product
type ProductType string

const (
	ProductTypeStock   ProductType = "stock"
	ProductTypeService ProductType = "service"
)

// Product represents a sellable/stockable item
type Product struct {
	BaseModel
	SKU           string             `gorm:"type:varchar(100);unique;index;column:sku"`
	Name          string             `gorm:"type:varchar(200);not null;index"`
	Description   string             `gorm:"type:text"`
	ProductType   ProductType        `gorm:"type:varchar(50);not null;default:'stock';column:product_type"`
	CostPrice     decimal.Decimal    `gorm:"type:decimal(15,2);not null;default:0;column:cost_price"`
	SellingPrice  decimal.Decimal    `gorm:"type:decimal(15,2);not null;default:0;column:selling_price"`
	StockQuantity decimal.Decimal    `gorm:"type:decimal(15,3);not null;default:0;column:stock_quantity"`
	VatRate       decimal.Decimal    `gorm:"type:decimal(5,2);not null;default:0;column:vat_rate"`
	BranchID      *uuid.UUID         `gorm:"type:uuid;index;column:branch_id"`
	Branch        *Branch            `gorm:"foreignKey:BranchID"`
	IsActive      bool               `gorm:"not null;default:true;column:is_active"`
	Components    []ProductComponent `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// ProductComponent represents one bill-of-materials line of a finished product
type ProductComponent struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index;column:product_id"`
	ComponentID uuid.UUID       `gorm:"type:uuid;not null;column:component_id"`
	Component   *Product        `gorm:"foreignKey:ComponentID"`
	Quantity    decimal.Decimal `gorm:"type:decimal(15,3);not null"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the database default is unavailable
func (c *ProductComponent) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// RoleTechnician is the role required to be assignable to job cards
const RoleTechnician = "technician"

// User represents a system user; technicians are users with the technician role
type User struct {
	ID          string         `gorm:"type:varchar(100);primaryKey"`
	Email       string         `gorm:"type:varchar(255);not null;unique"`
	DisplayName string         `gorm:"type:varchar(200);not null;column:name"`
	Roles       pq.StringArray `gorm:"type:text[];not null"`
	Phone       string         `gorm:"type:varchar(50)"`
	BranchID    *uuid.UUID     `gorm:"type:uuid;column:branch_id;index"`
	Branch      *Branch        `gorm:"foreignKey:BranchID"`
	IsActive    bool           `gorm:"not null;default:true;column:is_active"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// HasRole reports whether the user carries the given role
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Customer represents a billable customer
type Customer struct {
	BaseModel
	Name            string `gorm:"type:varchar(200);not null;index"`
	Email           string `gorm:"type:varchar(255)"`
	Phone           string `gorm:"type:varchar(50)"`
	Address         string `gorm:"type:varchar(500)"`
	PaymentTermDays int    `gorm:"not null;default:14;column:payment_term_days"`
	IsActive        bool   `gorm:"not null;default:true;column:is_active"`
}

// JobType represents the kind of work a job card tracks
type JobType string

const (
	JobTypeService      JobType = "service"
	JobTypeRepair       JobType = "repair"
	JobTypeMaintenance  JobType = "maintenance"
	JobTypeInstallation JobType = "installation"
	JobTypeProduction   JobType = "production"
)

// IsValid checks if the JobType is a valid enum value
func (jt JobType) IsValid() bool {
	switch jt {
	case JobTypeService, JobTypeRepair, JobTypeMaintenance, JobTypeInstallation, JobTypeProduction:
		return true
	}
	return false
}

// IsProduction reports whether the job type triggers the manufacturing hook
func (jt JobType) IsProduction() bool {
	return jt == JobTypeProduction
}

// JobPriority represents the urgency of a job card
type JobPriority string

const (
	JobPriorityLow    JobPriority = "low"
	JobPriorityNormal JobPriority = "normal"
	JobPriorityHigh   JobPriority = "high"
	JobPriorityUrgent JobPriority = "urgent"
)

// IsValid checks if the JobPriority is a valid enum value
func (jp JobPriority) IsValid() bool {
	switch jp {
	case JobPriorityLow, JobPriorityNormal, JobPriorityHigh, JobPriorityUrgent:
		return true
	}
	return false
}

// JobCard represents one service/repair/production engagement
type JobCard struct {
	BaseModel
	JobNumber          string            `gorm:"type:varchar(50);unique;index;column:job_number"`
	CustomerID         *uuid.UUID        `gorm:"type:uuid;index;column:customer_id"`
	Customer           *Customer         `gorm:"foreignKey:CustomerID"`
	BranchID           uuid.UUID         `gorm:"type:uuid;not null;index;column:branch_id"`
	Branch             *Branch           `gorm:"foreignKey:BranchID"`
	Status             JobCardStatus     `gorm:"type:varchar(50);not null;default:'draft';index"`
	JobType            JobType           `gorm:"type:varchar(50);not null;default:'service';column:job_type"`
	Priority           JobPriority       `gorm:"type:varchar(50);not null;default:'normal'"`
	Description        string            `gorm:"type:text"`
	Notes              string            `gorm:"type:text"`
	StartDate          *time.Time        `gorm:"type:date;column:start_date"`
	DueDate            *time.Time        `gorm:"type:date;column:due_date"`
	CompletedDate      *time.Time        `gorm:"type:date;column:completed_date"`
	TechnicianID       *string           `gorm:"type:varchar(100);column:technician_id;index"`
	Technician         *User             `gorm:"foreignKey:TechnicianID"`
	Currency           string            `gorm:"type:varchar(3);not null;default:'NOK'"`
	VatRate            decimal.Decimal   `gorm:"type:decimal(5,2);not null;default:0;column:vat_rate"`
	TotalMaterialCost  decimal.Decimal   `gorm:"type:decimal(15,2);not null;default:0;column:total_material_cost"`
	TotalMaterialPrice decimal.Decimal   `gorm:"type:decimal(15,2);not null;default:0;column:total_material_price"`
	TotalLaborCost     decimal.Decimal   `gorm:"type:decimal(15,2);not null;default:0;column:total_labor_cost"`
	TotalLaborPrice    decimal.Decimal   `gorm:"type:decimal(15,2);not null;default:0;column:total_labor_price"`
	Subtotal           decimal.Decimal   `gorm:"type:decimal(15,2);not null;default:0"`
	VatAmount          decimal.Decimal   `gorm:"type:decimal(15,2);not null;default:0;column:vat_amount"`
	TotalAmount        decimal.Decimal   `gorm:"type:decimal(15,2);not null;default:0;column:total_amount"`
	AmountPaid         decimal.Decimal   `gorm:"type:decimal(15,2);not null;default:0;column:amount_paid"`
	AmountDue          decimal.Decimal   `gorm:"type:decimal(15,2);not null;default:0;column:amount_due"`
	InvoiceGenerated   bool              `gorm:"not null;default:false;column:invoice_generated"`
	InvoiceID          *uuid.UUID        `gorm:"type:uuid;index;column:invoice_id"`
	Invoice            *Invoice          `gorm:"foreignKey:InvoiceID"`
	BomProductID       *uuid.UUID        `gorm:"type:uuid;column:bom_product_id"`
	BomProduct         *Product          `gorm:"foreignKey:BomProductID"`
	ProductionQty      decimal.Decimal   `gorm:"type:decimal(15,3);not null;default:0;column:production_qty"`
	CreatedByID        string            `gorm:"type:varchar(100);column:created_by_id"`
	UpdatedByID        string            `gorm:"type:varchar(100);column:updated_by_id"`
	Materials          []JobCardMaterial `gorm:"foreignKey:JobCardID;constraint:OnDelete:CASCADE"`
	Labor              []JobCardLabor    `gorm:"foreignKey:JobCardID;constraint:OnDelete:CASCADE"`
	JobNotes           []JobCardNote     `gorm:"foreignKey:JobCardID;constraint:OnDelete:CASCADE"`
}

// JobCardMaterial represents one billable inventory line of a job card
type JobCardMaterial struct {
	BaseModel
	JobCardID              uuid.UUID       `gorm:"type:uuid;not null;index;column:job_card_id"`
	ProductID              uuid.UUID       `gorm:"type:uuid;not null;column:product_id"`
	Product                *Product        `gorm:"foreignKey:ProductID"`
	Quantity               decimal.Decimal `gorm:"type:decimal(15,3);not null;default:0"`
	UnitCost               decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:unit_cost"`
	UnitPrice              decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:unit_price"`
	TotalCost              decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:total_cost"`
	TotalPrice             decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:total_price"`
	IsIssued               bool            `gorm:"not null;default:false;column:is_issued"`
	IssuedAt               *time.Time      `gorm:"column:issued_at"`
	InventoryTransactionID *uuid.UUID      `gorm:"type:uuid;column:inventory_transaction_id"`
	Notes                  string          `gorm:"type:text"`
}

// JobCardLabor represents one billable labor line of a job card
type JobCardLabor struct {
	BaseModel
	JobCardID    uuid.UUID       `gorm:"type:uuid;not null;index;column:job_card_id"`
	Description  string          `gorm:"type:varchar(500);not null"`
	Hours        decimal.Decimal `gorm:"type:decimal(15,3);not null;default:0"`
	Rate         decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	CostRate     decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:cost_rate"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:total_price"`
	TotalCost    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:total_cost"`
	TechnicianID *string         `gorm:"type:varchar(100);column:technician_id"`
	Technician   *User           `gorm:"foreignKey:TechnicianID"`
	ProductID    *uuid.UUID      `gorm:"type:uuid;column:product_id"`
	Notes        string          `gorm:"type:text"`
}

// JobCardNote is an append-only commentary entry on a job card.
// Notes are never updated after creation.
type JobCardNote struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	JobCardID uuid.UUID `gorm:"type:uuid;not null;index;column:job_card_id"`
	Note      string    `gorm:"type:text;not null"`
	AuthorID  string    `gorm:"type:varchar(100);column:author_id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the database default is unavailable
func (n *JobCardNote) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft  InvoiceStatus = "draft"
	InvoiceStatusIssued InvoiceStatus = "issued"
	InvoiceStatusPaid   InvoiceStatus = "paid"
)

// Invoice represents a customer invoice created by the invoicing collaborator
type Invoice struct {
	BaseModel
	InvoiceNumber      string          `gorm:"type:varchar(50);unique;index;column:invoice_number"`
	CustomerID         uuid.UUID       `gorm:"type:uuid;not null;index;column:customer_id"`
	Customer           *Customer       `gorm:"foreignKey:CustomerID"`
	BranchID           uuid.UUID       `gorm:"type:uuid;not null;column:branch_id"`
	Status             InvoiceStatus   `gorm:"type:varchar(50);not null;default:'issued'"`
	IsCashSale         bool            `gorm:"not null;default:false;column:is_cash_sale"`
	DueDate            time.Time       `gorm:"type:date;not null;column:due_date"`
	PaymentTermDays    int             `gorm:"not null;default:14;column:payment_term_days"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0;column:discount_percentage"`
	Subtotal           decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	VatAmount          decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:vat_amount"`
	TotalAmount        decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:total_amount"`
	AmountPaid         decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:amount_paid"`
	Notes              string          `gorm:"type:text"`
	CreatedByID        string          `gorm:"type:varchar(100);column:created_by_id"`
	Items              []InvoiceItem   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// AmountDue returns the outstanding balance of the invoice
func (i *Invoice) AmountDue() decimal.Decimal {
	return i.TotalAmount.Sub(i.AmountPaid)
}

// InvoiceItem represents one line of an invoice
type InvoiceItem struct {
	BaseModel
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index;column:invoice_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;column:product_id"`
	Product     *Product        `gorm:"foreignKey:ProductID"`
	Description string          `gorm:"type:varchar(500)"`
	Quantity    decimal.Decimal `gorm:"type:decimal(15,3);not null;default:0"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:unit_price"`
	VatRate     decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0;column:vat_rate"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:line_total"`
}

// InventoryTransactionType classifies a stock movement
type InventoryTransactionType string

const (
	TransactionTypeJobIssue      InventoryTransactionType = "job_issue"
	TransactionTypeJobReturn     InventoryTransactionType = "job_return"
	TransactionTypeProductionIn  InventoryTransactionType = "production_in"
	TransactionTypeProductionOut InventoryTransactionType = "production_out"
)

// InventoryTransaction is the audit row for one stock movement
type InventoryTransaction struct {
	BaseModel
	ProductID       uuid.UUID                `gorm:"type:uuid;not null;index;column:product_id"`
	Product         *Product                 `gorm:"foreignKey:ProductID"`
	BranchID        *uuid.UUID               `gorm:"type:uuid;column:branch_id"`
	TransactionType InventoryTransactionType `gorm:"type:varchar(50);not null;column:transaction_type"`
	QuantityDelta   decimal.Decimal          `gorm:"type:decimal(15,3);not null;column:quantity_delta"`
	Reference       string                   `gorm:"type:varchar(500)"`
	JobCardID       *uuid.UUID               `gorm:"type:uuid;index;column:job_card_id"`
	Note            string                   `gorm:"type:text"`
	CreatedByID     string                   `gorm:"type:varchar(100);column:created_by_id"`
}

// JobNumberSequence tracks the last used sequence per branch and date,
// so job numbers can be generated without scanning existing job rows.
type JobNumberSequence struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	BranchID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_seq_branch_date;column:branch_id"`
	DateKey      string    `gorm:"type:varchar(8);not null;uniqueIndex:idx_seq_branch_date;column:date_key"`
	Scope        string    `gorm:"type:varchar(20);not null;default:'job_card';uniqueIndex:idx_seq_branch_date"`
	LastSequence int       `gorm:"not null;default:0;column:last_sequence"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the database default is unavailable
func (s *JobNumberSequence) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

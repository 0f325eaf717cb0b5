// Package testutil provides shared database fixtures for tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/norvik-erp/jobcard-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens an isolated in-memory sqlite database and migrates the
// full schema. Each call gets its own database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err, "failed to open test database")

	err = db.AutoMigrate(
		&domain.Branch{},
		&domain.Product{},
		&domain.ProductComponent{},
		&domain.User{},
		&domain.Customer{},
		&domain.JobCard{},
		&domain.JobCardMaterial{},
		&domain.JobCardLabor{},
		&domain.JobCardNote{},
		&domain.Invoice{},
		&domain.InvoiceItem{},
		&domain.InventoryTransaction{},
		&domain.JobNumberSequence{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// CreateTestBranch creates a branch with the given code
func CreateTestBranch(t *testing.T, db *gorm.DB, name, code string) *domain.Branch {
	t.Helper()
	branch := &domain.Branch{
		Name:     name,
		Code:     code,
		IsActive: true,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(branch).Error)
	return branch
}

// CreateTestHeadquarters creates the active headquarters branch
func CreateTestHeadquarters(t *testing.T, db *gorm.DB) *domain.Branch {
	t.Helper()
	branch := &domain.Branch{
		Name:           "Headquarters",
		Code:           "HQ",
		IsHeadquarters: true,
		IsActive:       true,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(branch).Error)
	return branch
}

// CreateTestProduct creates a stock product with the given prices
func CreateTestProduct(t *testing.T, db *gorm.DB, name string, cost, price float64) *domain.Product {
	t.Helper()
	product := &domain.Product{
		SKU:           fmt.Sprintf("%s-%d", name, time.Now().UnixNano()),
		Name:          name,
		ProductType:   domain.ProductTypeStock,
		CostPrice:     decimal.NewFromFloat(cost),
		SellingPrice:  decimal.NewFromFloat(price),
		StockQuantity: decimal.NewFromInt(100),
		IsActive:      true,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(product).Error)
	return product
}

// CreateTestCustomer creates a customer with default payment terms
func CreateTestCustomer(t *testing.T, db *gorm.DB, name string) *domain.Customer {
	t.Helper()
	customer := &domain.Customer{
		Name:            name,
		Email:           "test@example.com",
		PaymentTermDays: 14,
		IsActive:        true,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(customer).Error)
	return customer
}

// CreateTestTechnician creates an active user with the technician role
func CreateTestTechnician(t *testing.T, db *gorm.DB, id, name string, branchID *uuid.UUID) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:          id,
		Email:       fmt.Sprintf("%s@example.com", id),
		DisplayName: name,
		Roles:       pq.StringArray{domain.RoleTechnician},
		BranchID:    branchID,
		IsActive:    true,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(user).Error)
	return user
}
